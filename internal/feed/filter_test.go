package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTab(t *testing.T) {
	tests := map[string]Tab{
		"trending":  TabTrending,
		"Recent":    TabRecent,
		" POPULAR ": TabPopular,
		"for-me":    TabForMe,
		"all":       TabAll,
		"":          TabAll,
		"whatever":  TabAll,
	}
	for raw, want := range tests {
		assert.Equal(t, want, ParseTab(raw), raw)
	}
}

func TestTabOrdering(t *testing.T) {
	assert.Equal(t, OrderEngagement, TabTrending.Ordering())
	assert.Equal(t, OrderEngagement, TabPopular.Ordering())
	assert.Equal(t, OrderEngagement, TabForMe.Ordering())
	assert.Equal(t, OrderRecent, TabRecent.Ordering())
	assert.Equal(t, OrderRecent, TabAll.Ordering())
}

func TestFilterBuilderForTab(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	b := &FilterBuilder{TrendingWindow: 24 * time.Hour, Now: func() time.Time { return now }}

	t.Run("trending keeps aged posts", func(t *testing.T) {
		p, err := b.ForTab(TabTrending, nil)
		require.NoError(t, err)
		assert.Equal(t, CreatedAtOrBefore(now.Add(-24*time.Hour)), p)
	})

	for _, tab := range []Tab{TabRecent, TabPopular, TabAll} {
		t.Run(string(tab)+" is unfiltered", func(t *testing.T) {
			p, err := b.ForTab(tab, nil)
			require.NoError(t, err)
			assert.Equal(t, All, p)
		})
	}

	t.Run("for-me needs a viewer", func(t *testing.T) {
		_, err := b.ForTab(TabForMe, nil)
		assert.True(t, IsKind(err, KindUnauthenticated))

		_, err = b.ForTab(TabForMe, &Viewer{})
		assert.True(t, IsKind(err, KindUnauthenticated))
	})

	t.Run("for-me unions the three relations", func(t *testing.T) {
		p, err := b.ForTab(TabForMe, &Viewer{UserID: "u1"})
		require.NoError(t, err)
		assert.Equal(t, Or{
			Equals(FieldLikedBy, "u1"),
			Equals(FieldAuthorFollowedBy, "u1"),
			Equals(FieldTagFollowedBy, "u1"),
		}, p)
	})
}

func TestFilterBuilderForTag(t *testing.T) {
	b := NewFilterBuilder(24 * time.Hour)

	vegan, empty := "vegan", ""

	p, err := b.ForTag(&vegan)
	require.NoError(t, err)
	assert.Equal(t, Equals(FieldTagName, "vegan"), p)

	p, err = b.ForTag(&empty)
	require.NoError(t, err, "an empty name is looked up like any other")
	assert.Equal(t, Equals(FieldTagName, ""), p)

	_, err = b.ForTag(nil)
	assert.True(t, IsKind(err, KindBadRequest))
}

func TestFilterBuilderForSearch(t *testing.T) {
	b := NewFilterBuilder(24 * time.Hour)

	t.Run("empty query is rejected", func(t *testing.T) {
		for _, q := range []string{"", "   "} {
			_, err := b.ForSearch(q)
			assert.True(t, IsKind(err, KindBadRequest), "%q", q)
		}
	})

	t.Run("phrase and viable words", func(t *testing.T) {
		p, err := b.ForSearch("the garlic recipes")
		require.NoError(t, err)

		or, ok := p.(Or)
		require.True(t, ok)
		// phrase, "garlic" and "recipes" against every text field
		assert.Len(t, or, 3*len(TextFields))
		assert.Contains(t, or, Contains(FieldTitle, "the garlic recipes"))
		assert.Contains(t, or, Contains(FieldAuthorUsername, "garlic"))
		assert.Contains(t, or, Contains(FieldTagName, "recipes"))
		assert.NotContains(t, or, Contains(FieldTitle, "the"))
	})

	t.Run("stopword-only query keeps the phrase filter", func(t *testing.T) {
		p, err := b.ForSearch("the and")
		require.NoError(t, err)
		assert.Equal(t, MatchText("the and"), p)
	})
}
