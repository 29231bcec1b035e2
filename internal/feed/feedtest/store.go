// Package feedtest provides an in-memory feed.Store for tests.
package feedtest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/culinara/culinara/internal/feed"
	"github.com/culinara/culinara/internal/models"
)

// Store keeps users, tags and posts in memory and evaluates predicates
// directly against them.
type Store struct {
	mu     sync.RWMutex
	users  map[string]*models.User
	tags   []models.Tag
	posts  []*models.Post
	nextID int64

	// Err, when set, is returned by every query.
	Err error
}

// New creates an empty store
func New() *Store {
	return &Store{users: make(map[string]*models.User)}
}

// AddUser registers a user with the given username
func (s *Store) AddUser(username string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := username
	u := &models.User{
		ID:       uuid.NewString(),
		Email:    username + "@example.com",
		Username: &name,
	}
	s.users[u.ID] = u
	return u
}

// AddTag registers a tag
func (s *Store) AddTag(name string) models.Tag {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	t := models.Tag{ID: s.nextID, Name: name, CreatedAt: time.Now().UTC()}
	s.tags = append(s.tags, t)
	return t
}

// AddPost stores a post written by author (which may be nil) and returns it.
// A zero CreatedAt is set to now.
func (s *Store) AddPost(author *models.User, title string, createdAt time.Time, tags ...models.Tag) *models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	p := &models.Post{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   title,
		CreatedAt: createdAt,
		Tags:      append([]models.Tag(nil), tags...),
	}
	if author != nil {
		p.AuthorID = &author.ID
		p.Author = author
	}
	s.posts = append(s.posts, p)
	return p
}

// Like records that u likes p
func (s *Store) Like(u *models.User, p *models.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, liker := range p.Likes {
		if liker.ID == u.ID {
			return
		}
	}
	p.Likes = append(p.Likes, *u)
}

// Follow records that follower follows following
func (s *Store) Follow(follower, following *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	follower.Following = append(follower.Following, following)
}

// FollowTag records that u follows tag
func (s *Store) FollowTag(u *models.User, tag models.Tag) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.FollowedTags = append(u.FollowedTags, tag)
}

// FindPosts implements feed.Store
func (s *Store) FindPosts(ctx context.Context, q feed.Query) (*feed.Result, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	filter := q.Filter
	if filter == nil {
		filter = feed.All
	}

	matched := make([]models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if feed.Match(filter, s.matcher(p)) {
			cp := *p
			cp.LikesCount = int64(len(p.Likes))
			matched = append(matched, cp)
		}
	}
	q.Order.Sort(matched)

	res := &feed.Result{}
	if q.CountTotal {
		res.Total = int64(len(matched))
	}
	if q.Offset >= len(matched) {
		res.Posts = []models.Post{}
		return res, nil
	}
	matched = matched[q.Offset:]
	if q.Limit > 0 && q.Limit < len(matched) {
		matched = matched[:q.Limit]
	}
	res.Posts = matched
	return res, nil
}

// TagExists implements feed.Store
func (s *Store) TagExists(ctx context.Context, name string) (bool, error) {
	if s.Err != nil {
		return false, s.Err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tags {
		if t.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// UserIDByUsername implements feed.Store
func (s *Store) UserIDByUsername(ctx context.Context, username string) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.DisplayName() == username {
			return u.ID, nil
		}
	}
	return "", nil
}

func (s *Store) matcher(p *models.Post) feed.LeafMatcher {
	return feed.LeafMatcherFunc(func(l feed.Leaf) bool {
		switch l.Field {
		case feed.FieldTitle:
			return matchString(p.Title, l)
		case feed.FieldShortDescription:
			return matchString(p.ShortDescription, l)
		case feed.FieldContent:
			return matchString(p.Content, l)
		case feed.FieldTagName:
			for _, t := range p.Tags {
				if matchString(t.Name, l) {
					return true
				}
			}
			return false
		case feed.FieldAuthorUsername:
			return p.Author != nil && p.Author.Username != nil && matchString(*p.Author.Username, l)
		case feed.FieldAuthorID:
			return p.AuthorID != nil && *p.AuthorID == fmt.Sprint(l.Value)
		case feed.FieldCreatedAt:
			t, ok := l.Value.(time.Time)
			if !ok {
				return false
			}
			switch l.Op {
			case feed.OpLTE:
				return !p.CreatedAt.After(t)
			case feed.OpGTE:
				return !p.CreatedAt.Before(t)
			case feed.OpEquals:
				return p.CreatedAt.Equal(t)
			}
			return false
		case feed.FieldLikedBy:
			for _, u := range p.Likes {
				if u.ID == l.Value {
					return true
				}
			}
			return false
		case feed.FieldAuthorFollowedBy:
			viewer := s.users[fmt.Sprint(l.Value)]
			if viewer == nil || p.AuthorID == nil {
				return false
			}
			for _, f := range viewer.Following {
				if f.ID == *p.AuthorID {
					return true
				}
			}
			return false
		case feed.FieldTagFollowedBy:
			viewer := s.users[fmt.Sprint(l.Value)]
			if viewer == nil {
				return false
			}
			for _, followed := range viewer.FollowedTags {
				for _, t := range p.Tags {
					if t.ID == followed.ID {
						return true
					}
				}
			}
			return false
		}
		return false
	})
}

func matchString(value string, l feed.Leaf) bool {
	want, ok := l.Value.(string)
	if !ok {
		return false
	}
	switch l.Op {
	case feed.OpContains:
		return feed.ContainsFold(value, want)
	case feed.OpEquals:
		return value == want
	}
	return false
}
