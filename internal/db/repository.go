package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/culinara/culinara/internal/feed"
	"github.com/culinara/culinara/internal/models"
)

// Repository provides database access methods
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// likesCountColumn computes a post's like count at query time
const likesCountColumn = "(SELECT COUNT(*) FROM post_likes WHERE post_likes.post_id = posts.id) AS likes_count"

// PostStore answers feed queries from the relational database. It
// implements feed.Store and never writes.
type PostStore struct {
	*Repository
}

var _ feed.Store = (*PostStore)(nil)

// NewPostStore creates a feed store
func NewPostStore(repo *Repository) *PostStore {
	return &PostStore{Repository: repo}
}

func (s *PostStore) filtered(ctx context.Context, where clause) *gorm.DB {
	return s.db.WithContext(ctx).Model(&models.Post{}).Where(where.sql, where.args...)
}

// FindPosts implements feed.Store
func (s *PostStore) FindPosts(ctx context.Context, q feed.Query) (*feed.Result, error) {
	where, err := compilePredicate(q.Filter)
	if err != nil {
		return nil, err
	}

	res := &feed.Result{}
	if q.CountTotal {
		if err := s.filtered(ctx, where).Count(&res.Total).Error; err != nil {
			return nil, fmt.Errorf("count posts: %w", err)
		}
		if res.Total == 0 || int64(q.Offset) >= res.Total {
			res.Posts = []models.Post{}
			return res, nil
		}
	}

	tx := s.filtered(ctx, where).
		Select("posts.*, " + likesCountColumn).
		Order(orderClause(q.Order)).
		Preload("Author").
		Preload("Tags").
		Preload("Likes")
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	posts := make([]models.Post, 0)
	if err := tx.Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("find posts: %w", err)
	}
	res.Posts = posts
	return res, nil
}

// TagExists implements feed.Store
func (s *PostStore) TagExists(ctx context.Context, name string) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Tag{}).Where("name = ?", name).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// UserIDByUsername implements feed.Store
func (s *PostStore) UserIDByUsername(ctx context.Context, username string) (string, error) {
	var user models.User
	err := s.db.WithContext(ctx).Select("id").Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

// PostRepository provides post writes used by seeding and tests
type PostRepository struct {
	*Repository
}

// NewPostRepository creates a new post repository
func NewPostRepository(repo *Repository) *PostRepository {
	return &PostRepository{Repository: repo}
}

// Create creates a new post together with its tag links
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// Like records that user likes post. Liking twice is a no-op.
func (r *PostRepository) Like(ctx context.Context, post *models.Post, user *models.User) error {
	return r.db.WithContext(ctx).Model(post).Association("Likes").Append(user)
}

// TagRepository provides tag-related database operations
type TagRepository struct {
	*Repository
}

// NewTagRepository creates a new tag repository
func NewTagRepository(repo *Repository) *TagRepository {
	return &TagRepository{Repository: repo}
}

// Ensure returns the tag with the given name, creating it if needed
func (r *TagRepository) Ensure(ctx context.Context, name string) (*models.Tag, error) {
	tag := models.Tag{Name: name}
	if err := r.db.WithContext(ctx).Where("name = ?", name).FirstOrCreate(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// UserRepository provides user-related database operations
type UserRepository struct {
	*Repository
}

// NewUserRepository creates a new user repository
func NewUserRepository(repo *Repository) *UserRepository {
	return &UserRepository{Repository: repo}
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// Follow records that follower follows following
func (r *UserRepository) Follow(ctx context.Context, follower, following *models.User) error {
	return r.db.WithContext(ctx).Model(follower).Association("Following").Append(following)
}

// FollowTag records that user follows tag
func (r *UserRepository) FollowTag(ctx context.Context, user *models.User, tag *models.Tag) error {
	return r.db.WithContext(ctx).Model(user).Association("FollowedTags").Append(tag)
}
