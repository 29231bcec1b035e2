package feed_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/culinara/culinara/internal/feed"
	"github.com/culinara/culinara/internal/feed/feedtest"
	"github.com/culinara/culinara/internal/models"
	"github.com/culinara/culinara/pkg/config"
)

func testConfig() config.FeedConfig {
	return config.FeedConfig{
		TrendingWindow:       24 * time.Hour,
		TrendingDefaultCount: 3,
		TrendingMaxCount:     100,
		ExplorePageSize:      8,
		StandardPageSize:     10,
		NextPageSize:         2,
		MaxPageSize:          100,
	}
}

func postIDs(posts []feed.ScoredPost) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

func likeN(store *feedtest.Store, p *models.Post, n int) {
	for i := 0; i < n; i++ {
		store.Like(store.AddUser(fmt.Sprintf("fan-%s-%d", p.ID[:8], i)), p)
	}
}

func assertEngagementOrder(t *testing.T, posts []feed.ScoredPost) {
	t.Helper()
	for i := 1; i < len(posts); i++ {
		a, b := posts[i-1], posts[i]
		ok := a.LikesCount > b.LikesCount ||
			(a.LikesCount == b.LikesCount && !a.CreatedAt.Before(b.CreatedAt))
		assert.True(t, ok, "rank %d (%d likes) before rank %d (%d likes)", a.Rank, a.LikesCount, b.Rank, b.LikesCount)
	}
}

func TestExplorePopularOrdering(t *testing.T) {
	store := feedtest.New()
	now := time.Now().UTC()
	for i := 0; i < 7; i++ {
		p := store.AddPost(nil, fmt.Sprintf("post %d", i), now.Add(-time.Duration(i)*time.Hour))
		likeN(store, p, (i*3)%4)
	}
	engine := feed.NewEngine(store, testConfig())

	page, err := engine.Explore(context.Background(), feed.TabPopular, nil, feed.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(7), page.Count)
	assert.Len(t, page.Results, 7)
	assertEngagementOrder(t, page.Results)
	assert.Equal(t, 1, page.Results[0].Rank)
}

func TestExploreTrendingExcludesFreshPosts(t *testing.T) {
	store := feedtest.New()
	now := time.Now().UTC()
	fresh := store.AddPost(nil, "fresh", now.Add(-time.Hour))
	aged := store.AddPost(nil, "aged", now.Add(-48*time.Hour))
	likeN(store, fresh, 5)
	likeN(store, aged, 1)
	engine := feed.NewEngine(store, testConfig())

	page, err := engine.Explore(context.Background(), feed.TabTrending, nil, feed.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{aged.ID}, postIDs(page.Results))
}

func TestExploreRecentIgnoresLikes(t *testing.T) {
	store := feedtest.New()
	now := time.Now().UTC()
	older := store.AddPost(nil, "older", now.Add(-2*time.Hour))
	newer := store.AddPost(nil, "newer", now.Add(-time.Hour))
	likeN(store, older, 3)
	engine := feed.NewEngine(store, testConfig())

	for _, tab := range []feed.Tab{feed.TabRecent, feed.TabAll} {
		page, err := engine.Explore(context.Background(), tab, nil, feed.PageRequest{})
		require.NoError(t, err)
		assert.Equal(t, []string{newer.ID, older.ID}, postIDs(page.Results), string(tab))
	}
}

func TestExploreForMe(t *testing.T) {
	store := feedtest.New()
	viewer := store.AddUser("viewer")
	chef := store.AddUser("chef")
	stranger := store.AddUser("stranger")
	baking := store.AddTag("baking")
	grilling := store.AddTag("grilling")

	liked := store.AddPost(stranger, "liked", time.Time{})
	followedAuthor := store.AddPost(chef, "by chef", time.Time{})
	followedTag := store.AddPost(stranger, "bread", time.Time{}, baking)
	store.AddPost(stranger, "unrelated", time.Time{}, grilling)
	// Matches all three clauses and must still appear once.
	everything := store.AddPost(chef, "chef bread", time.Time{}, baking)

	store.Like(viewer, liked)
	store.Like(viewer, everything)
	store.Follow(viewer, chef)
	store.FollowTag(viewer, baking)
	// Following is directed.
	store.Follow(stranger, viewer)

	engine := feed.NewEngine(store, testConfig())

	t.Run("anonymous viewer is rejected", func(t *testing.T) {
		_, err := engine.Explore(context.Background(), feed.TabForMe, nil, feed.PageRequest{})
		assert.True(t, feed.IsKind(err, feed.KindUnauthenticated))
	})

	t.Run("union of liked, followed authors and followed tags", func(t *testing.T) {
		page, err := engine.Explore(context.Background(), feed.TabForMe, &feed.Viewer{UserID: viewer.ID}, feed.PageRequest{})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{liked.ID, followedAuthor.ID, followedTag.ID, everything.ID}, postIDs(page.Results))
		assert.Equal(t, int64(4), page.Count)
	})
}

func TestPostsByTag(t *testing.T) {
	store := feedtest.New()
	vegan := store.AddTag("vegan")
	store.AddTag("empty")
	a := store.AddPost(nil, "a", time.Now().Add(-3*time.Hour), vegan)
	b := store.AddPost(nil, "b", time.Now().Add(-2*time.Hour), vegan)
	store.AddPost(nil, "c", time.Now().Add(-time.Hour))
	likeN(store, a, 2)
	engine := feed.NewEngine(store, testConfig())

	tag := func(s string) *string { return &s }

	page, err := engine.PostsByTag(context.Background(), tag("vegan"), feed.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, b.ID}, postIDs(page.Results))

	page, err = engine.PostsByTag(context.Background(), tag("empty"), feed.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, page.Results)

	_, err = engine.PostsByTag(context.Background(), tag("vega"), feed.PageRequest{})
	assert.True(t, feed.IsKind(err, feed.KindNotFound))

	_, err = engine.PostsByTag(context.Background(), tag(""), feed.PageRequest{})
	assert.True(t, feed.IsKind(err, feed.KindNotFound), "an empty tag name is an unknown tag")

	_, err = engine.PostsByTag(context.Background(), nil, feed.PageRequest{})
	assert.True(t, feed.IsKind(err, feed.KindBadRequest))
}

func TestSearch(t *testing.T) {
	store := feedtest.New()
	cook := store.AddUser("noodlemaster")
	spicy := store.AddPost(nil, "Spicy Garlic Noodles", time.Now().Add(-time.Hour))
	byAuthor := store.AddPost(cook, "Dinner", time.Now().Add(-2*time.Hour))
	tagged := store.AddPost(nil, "Roast", time.Now().Add(-3*time.Hour), store.AddTag("garlic-lovers"))
	store.AddPost(nil, "Lemon tart", time.Now())
	engine := feed.NewEngine(store, testConfig())

	t.Run("any viable word matches", func(t *testing.T) {
		page, err := engine.Search(context.Background(), "garlic recipes", feed.PageRequest{})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{spicy.ID, tagged.ID}, postIDs(page.Results))
	})

	t.Run("author username matches", func(t *testing.T) {
		page, err := engine.Search(context.Background(), "the noodle", feed.PageRequest{})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{spicy.ID, byAuthor.ID}, postIDs(page.Results))
	})

	t.Run("stopword-only query matches only the phrase", func(t *testing.T) {
		page, err := engine.Search(context.Background(), "the", feed.PageRequest{})
		require.NoError(t, err)
		assert.Empty(t, page.Results)
	})

	t.Run("empty query is a bad request", func(t *testing.T) {
		_, err := engine.Search(context.Background(), "", feed.PageRequest{})
		assert.True(t, feed.IsKind(err, feed.KindBadRequest))
	})
}

func TestTrending(t *testing.T) {
	store := feedtest.New()
	now := time.Now().UTC()
	byLikes := make(map[int]*models.Post)
	for i := 0; i < 10; i++ {
		p := store.AddPost(nil, fmt.Sprintf("post %d", i), now.Add(-time.Duration(i)*time.Minute))
		likeN(store, p, i)
		byLikes[i] = p
	}
	engine := feed.NewEngine(store, testConfig())

	t.Run("count bounds the list to the top posts", func(t *testing.T) {
		posts, err := engine.Trending(context.Background(), "2")
		require.NoError(t, err)
		assert.Equal(t, []string{byLikes[9].ID, byLikes[8].ID}, postIDs(posts))
	})

	t.Run("unparsable count uses the default", func(t *testing.T) {
		posts, err := engine.Trending(context.Background(), "many")
		require.NoError(t, err)
		assert.Len(t, posts, 3)
	})

	t.Run("missing count uses the default", func(t *testing.T) {
		posts, err := engine.Trending(context.Background(), "")
		require.NoError(t, err)
		assert.Len(t, posts, 3)
	})

	t.Run("count larger than corpus", func(t *testing.T) {
		posts, err := engine.Trending(context.Background(), "50")
		require.NoError(t, err)
		assert.Len(t, posts, 10)
		assertEngagementOrder(t, posts)
	})
}

func TestParseTrendingCount(t *testing.T) {
	engine := feed.NewEngine(feedtest.New(), testConfig())
	tests := map[string]int{"": 3, "5": 5, " 7 ": 7, "abc": 3, "2.5": 3, "0": 3, "-4": 3, "1000": 100}
	for raw, want := range tests {
		assert.Equal(t, want, engine.ParseTrendingCount(raw), raw)
	}
}

func TestTrendingMixesFreshAndEnduring(t *testing.T) {
	store := feedtest.New()
	now := time.Now().UTC()
	old := store.AddPost(nil, "old", now.Add(-72*time.Hour))
	mid := store.AddPost(nil, "mid", now.Add(-48*time.Hour))
	fresh := store.AddPost(nil, "fresh", now.Add(-time.Hour))
	for _, p := range []*models.Post{old, mid, fresh} {
		likeN(store, p, 4)
	}
	engine := feed.NewEngine(store, testConfig())

	posts, err := engine.Trending(context.Background(), "2")
	require.NoError(t, err)
	// newest-first window holds fresh and mid, oldest-first holds old and
	// mid; after re-ranking the two newest survive.
	assert.Equal(t, []string{fresh.ID, mid.ID}, postIDs(posts))
}

func TestIdempotentRead(t *testing.T) {
	store := feedtest.New()
	ts := time.Now().Add(-time.Hour)
	for i := 0; i < 12; i++ {
		p := store.AddPost(nil, "same", ts)
		likeN(store, p, i%2)
	}
	engine := feed.NewEngine(store, testConfig())

	first, err := engine.Explore(context.Background(), feed.TabPopular, nil, feed.PageRequest{Page: "2"})
	require.NoError(t, err)
	second, err := engine.Explore(context.Background(), feed.TabPopular, nil, feed.PageRequest{Page: "2"})
	require.NoError(t, err)
	assert.Equal(t, postIDs(first.Results), postIDs(second.Results))
}

func TestExplorePagination(t *testing.T) {
	store := feedtest.New()
	for i := 0; i < 10; i++ {
		store.AddPost(nil, "p", time.Now().Add(-time.Duration(i)*time.Minute))
	}
	engine := feed.NewEngine(store, testConfig())

	page, err := engine.Explore(context.Background(), feed.TabRecent, nil, feed.PageRequest{Page: "2", PageSize: "50"})
	require.NoError(t, err)
	assert.Len(t, page.Results, 2)
	assert.Equal(t, 9, page.Results[0].Rank)
	assert.Nil(t, page.Next)
	require.NotNil(t, page.Previous)
	assert.Equal(t, 1, *page.Previous)

	_, err = engine.Explore(context.Background(), feed.TabRecent, nil, feed.PageRequest{Page: "3"})
	assert.True(t, feed.IsKind(err, feed.KindNotFound))
}

func TestFavorites(t *testing.T) {
	store := feedtest.New()
	viewer := store.AddUser("viewer")
	older := store.AddPost(nil, "older", time.Now().Add(-2*time.Hour))
	newer := store.AddPost(nil, "newer", time.Now().Add(-time.Hour))
	store.AddPost(nil, "not liked", time.Now())
	store.Like(viewer, older)
	store.Like(viewer, newer)
	engine := feed.NewEngine(store, testConfig())

	page, err := engine.Favorites(context.Background(), &feed.Viewer{UserID: viewer.ID}, feed.PageRequest{PageSize: "1"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Count)
	assert.Equal(t, []string{newer.ID}, postIDs(page.Results))
	require.NotNil(t, page.Next)
	assert.Equal(t, 2, *page.Next)

	_, err = engine.Favorites(context.Background(), nil, feed.PageRequest{})
	assert.True(t, feed.IsKind(err, feed.KindUnauthenticated))
}

func TestUserPosts(t *testing.T) {
	store := feedtest.New()
	author := store.AddUser("chef")
	for i := 0; i < 3; i++ {
		store.AddPost(author, "mine", time.Now().Add(-time.Duration(i)*time.Hour))
	}
	store.AddPost(store.AddUser("other"), "theirs", time.Now())
	viewer := &feed.Viewer{UserID: store.AddUser("reader").ID}

	t.Run("anonymous viewer is rejected", func(t *testing.T) {
		engine := feed.NewEngine(store, testConfig())
		_, err := engine.UserPosts(context.Background(), nil, "chef", feed.PageRequest{})
		assert.True(t, feed.IsKind(err, feed.KindUnauthenticated))
	})

	t.Run("adjacent page numbers", func(t *testing.T) {
		engine := feed.NewEngine(store, testConfig())
		page, err := engine.UserPosts(context.Background(), viewer, "chef", feed.PageRequest{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.Count)
		assert.Len(t, page.Results, 2)
		assert.Equal(t, 2, *page.Next)
		assert.Nil(t, page.Previous)
	})

	t.Run("legacy cursor echoes the current page", func(t *testing.T) {
		cfg := testConfig()
		cfg.LegacyPageCursor = true
		engine := feed.NewEngine(store, cfg)
		page, err := engine.UserPosts(context.Background(), viewer, "chef", feed.PageRequest{Page: "2"})
		require.NoError(t, err)
		assert.Len(t, page.Results, 1)
		assert.Equal(t, 2, *page.Next)
		assert.Equal(t, 2, *page.Previous)
	})

	t.Run("unknown user", func(t *testing.T) {
		engine := feed.NewEngine(store, testConfig())
		_, err := engine.UserPosts(context.Background(), viewer, "nobody", feed.PageRequest{})
		assert.True(t, feed.IsKind(err, feed.KindNotFound))
	})
}

func TestStoreFailureIsWrapped(t *testing.T) {
	store := feedtest.New()
	store.Err = errors.New("connection reset")
	engine := feed.NewEngine(store, testConfig())

	_, err := engine.Explore(context.Background(), feed.TabAll, nil, feed.PageRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, store.Err)
	var fe *feed.Error
	assert.False(t, errors.As(err, &fe))
}
