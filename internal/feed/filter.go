package feed

import (
	"strings"
	"time"
)

// Tab selects a feed view
type Tab string

const (
	TabTrending Tab = "trending"
	TabRecent   Tab = "recent"
	TabPopular  Tab = "popular"
	TabForMe    Tab = "for-me"
	TabAll      Tab = "all"
)

// ParseTab maps a raw tab parameter to a Tab. Matching ignores case and
// surrounding space; unknown or empty values select TabAll.
func ParseTab(raw string) Tab {
	switch t := Tab(strings.ToLower(strings.TrimSpace(raw))); t {
	case TabTrending, TabRecent, TabPopular, TabForMe:
		return t
	default:
		return TabAll
	}
}

// Ordering returns the ranking used for the tab
func (t Tab) Ordering() Ordering {
	switch t {
	case TabTrending, TabPopular, TabForMe:
		return OrderEngagement
	default:
		return OrderRecent
	}
}

// Viewer is the principal a request runs as
type Viewer struct {
	UserID string
}

// IsAuthenticated reports whether v identifies a signed-in user
func (v *Viewer) IsAuthenticated() bool {
	return v != nil && v.UserID != ""
}

// FilterBuilder turns tab selectors, tag names and search queries into
// predicates over the post corpus.
type FilterBuilder struct {
	// TrendingWindow is how old a post must be to qualify as trending.
	TrendingWindow time.Duration
	Now            func() time.Time
}

// NewFilterBuilder creates a filter builder using the wall clock
func NewFilterBuilder(trendingWindow time.Duration) *FilterBuilder {
	return &FilterBuilder{
		TrendingWindow: trendingWindow,
		Now:            time.Now,
	}
}

// ForTab builds the base predicate for a feed tab. The for-me tab needs an
// authenticated viewer.
func (b *FilterBuilder) ForTab(tab Tab, viewer *Viewer) (Predicate, error) {
	switch tab {
	case TabTrending:
		// Only posts that have been around for a full window qualify, so
		// sustained engagement wins over a fresh spike.
		return CreatedAtOrBefore(b.Now().Add(-b.TrendingWindow)), nil
	case TabForMe:
		if !viewer.IsAuthenticated() {
			return nil, newError(KindUnauthenticated, "Authentication required for personalized posts.")
		}
		return AnyOf(
			Equals(FieldLikedBy, viewer.UserID),
			Equals(FieldAuthorFollowedBy, viewer.UserID),
			Equals(FieldTagFollowedBy, viewer.UserID),
		), nil
	default:
		return All, nil
	}
}

// ForTag matches posts carrying the tag with exactly this name. A nil name
// means the tag parameter is missing.
func (b *FilterBuilder) ForTag(name *string) (Predicate, error) {
	if name == nil {
		return nil, newError(KindBadRequest, "Tag query parameter is required.")
	}
	return Equals(FieldTagName, *name), nil
}

// ForSearch matches posts containing the whole query, or any viable word of
// it, in a text field.
func (b *FilterBuilder) ForSearch(q string) (Predicate, error) {
	if strings.TrimSpace(q) == "" {
		return nil, newError(KindBadRequest, "Please provide a search query")
	}

	words := Tokenize(q)
	wordFilters := make([]Predicate, len(words))
	for i, w := range words {
		wordFilters[i] = MatchText(w)
	}
	return AnyOf(MatchText(q), AnyOf(wordFilters...)), nil
}

// ForAuthor matches posts written by the user with the given id
func (b *FilterBuilder) ForAuthor(userID string) Predicate {
	return Equals(FieldAuthorID, userID)
}

// LikedBy matches posts the user has liked
func (b *FilterBuilder) LikedBy(userID string) Predicate {
	return Equals(FieldLikedBy, userID)
}
