package feed

import (
	"sort"

	"github.com/culinara/culinara/internal/models"
)

// Ordering is a total order over scored posts. Every ordering breaks
// remaining ties on post id so repeated queries return identical pages.
type Ordering int

const (
	// OrderEngagement ranks by likes descending, newest first on ties.
	OrderEngagement Ordering = iota
	// OrderRecent ranks by creation time only, newest first.
	OrderRecent
	// OrderEngagementOldest ranks by likes descending, oldest first on ties.
	OrderEngagementOldest
)

func (o Ordering) String() string {
	switch o {
	case OrderEngagement:
		return "engagement"
	case OrderRecent:
		return "recent"
	case OrderEngagementOldest:
		return "engagement_oldest"
	default:
		return "unknown"
	}
}

// Less reports whether a ranks before b
func (o Ordering) Less(a, b *models.Post) bool {
	if o != OrderRecent && a.LikesCount != b.LikesCount {
		return a.LikesCount > b.LikesCount
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		if o == OrderEngagementOldest {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

// Sort orders posts in place
func (o Ordering) Sort(posts []models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return o.Less(&posts[i], &posts[j])
	})
}

// ScoredPost is a post ranked within one feed response
type ScoredPost struct {
	*models.Post
	// Rank is the 1-based position across the whole result set.
	Rank int
}

// rank wraps posts with their positions, starting after offset
func rank(posts []models.Post, offset int) []ScoredPost {
	out := make([]ScoredPost, len(posts))
	for i := range posts {
		out[i] = ScoredPost{Post: &posts[i], Rank: offset + i + 1}
	}
	return out
}

// mergeTrending unions candidate lists, drops repeated posts, re-ranks the
// union by engagement and keeps the first n.
func mergeTrending(n int, lists ...[]models.Post) []models.Post {
	seen := make(map[string]struct{})
	merged := make([]models.Post, 0, n*len(lists))
	for _, list := range lists {
		for _, p := range list {
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			merged = append(merged, p)
		}
	}
	OrderEngagement.Sort(merged)
	if len(merged) > n {
		merged = merged[:n]
	}
	return merged
}
