package feed

import (
	"context"

	"github.com/culinara/culinara/internal/models"
)

// Query asks a Store for one slice of a filtered, ordered post set
type Query struct {
	Filter Predicate
	Order  Ordering
	Offset int
	// Limit of zero or less returns every match.
	Limit int
	// CountTotal requests the size of the whole filtered set.
	CountTotal bool
}

// Result is the answer to a Query. Posts carry a freshly computed
// LikesCount and have Author, Tags and Likes loaded.
type Result struct {
	Total int64
	Posts []models.Post
}

// Store is the read-only datastore the engine ranks against. Each call must
// see a consistent snapshot; nothing is cached between calls.
type Store interface {
	FindPosts(ctx context.Context, q Query) (*Result, error)
	TagExists(ctx context.Context, name string) (bool, error)
	// UserIDByUsername returns "" when no user has the name.
	UserIDByUsername(ctx context.Context, username string) (string, error)
}
