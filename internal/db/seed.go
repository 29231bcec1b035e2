package db

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/culinara/culinara/internal/models"
	"github.com/culinara/culinara/pkg/logging"
)

type seedPost struct {
	author string
	title  string
	desc   string
	age    time.Duration
	tags   []string
	likers []string
}

var seedUsers = []string{"amara", "bruno", "chen", "dalia"}

var seedPosts = []seedPost{
	{"amara", "Spicy Garlic Noodles", "Weeknight noodles with chili oil", 2 * time.Hour, []string{"noodles", "quick"}, []string{"bruno", "chen"}},
	{"bruno", "Sourdough Starter Basics", "Feeding schedules and flour ratios", 30 * time.Hour, []string{"baking"}, []string{"amara", "chen", "dalia"}},
	{"chen", "Charred Corn Salad", "Summer salad with lime and feta", 50 * time.Hour, []string{"salad", "vegetarian"}, []string{"dalia"}},
	{"dalia", "Slow Braised Short Ribs", "Red wine braise for Sunday dinner", 72 * time.Hour, []string{"braise"}, []string{"amara", "bruno"}},
	{"amara", "Lemon Tart", "Crisp shell and a tangy curd", 5 * time.Hour, []string{"baking", "dessert"}, nil},
}

// Seed inserts a small demo corpus. Existing rows with the same usernames or
// tag names are reused, so running it twice only adds duplicate posts.
func Seed(ctx context.Context, repo *Repository) error {
	logger := logging.WithComponent("seed")
	users := NewUserRepository(repo)
	tags := NewTagRepository(repo)
	posts := NewPostRepository(repo)

	byName := make(map[string]*models.User, len(seedUsers))
	for _, name := range seedUsers {
		u, err := users.GetByUsername(ctx, name)
		if err != nil {
			return fmt.Errorf("look up user %s: %w", name, err)
		}
		if u == nil {
			username := name
			u = &models.User{Email: name + "@culinara.example", Username: &username, IsActive: true}
			if err := users.Create(ctx, u); err != nil {
				return fmt.Errorf("create user %s: %w", name, err)
			}
		}
		byName[name] = u
	}

	now := time.Now().UTC()
	for _, sp := range seedPosts {
		p := &models.Post{
			AuthorID:         &byName[sp.author].ID,
			CreatedAt:        now.Add(-sp.age),
			Title:            sp.title,
			ShortDescription: sp.desc,
			Content:          sp.desc,
			Thumbnail:        datatypes.JSON(`{"alt":"` + sp.title + `"}`),
		}
		for _, name := range sp.tags {
			tag, err := tags.Ensure(ctx, name)
			if err != nil {
				return fmt.Errorf("ensure tag %s: %w", name, err)
			}
			p.Tags = append(p.Tags, *tag)
		}
		if err := posts.Create(ctx, p); err != nil {
			return fmt.Errorf("create post %q: %w", sp.title, err)
		}
		for _, liker := range sp.likers {
			if err := posts.Like(ctx, p, byName[liker]); err != nil {
				return fmt.Errorf("like post %q: %w", sp.title, err)
			}
		}
	}

	if err := users.Follow(ctx, byName["chen"], byName["amara"]); err != nil {
		return fmt.Errorf("follow: %w", err)
	}
	baking, err := tags.Ensure(ctx, "baking")
	if err != nil {
		return fmt.Errorf("ensure tag baking: %w", err)
	}
	if err := users.FollowTag(ctx, byName["chen"], baking); err != nil {
		return fmt.Errorf("follow tag: %w", err)
	}

	logger.Info("demo corpus seeded",
		zap.Int("users", len(seedUsers)),
		zap.Int("posts", len(seedPosts)),
	)
	return nil
}
