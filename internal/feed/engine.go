package feed

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/culinara/culinara/pkg/config"
	"github.com/culinara/culinara/pkg/logging"
	"github.com/culinara/culinara/pkg/telemetry"
)

// Engine serves the ranked feed views. It holds no per-request state and is
// safe for concurrent use.
type Engine struct {
	store   Store
	filters *FilterBuilder

	explorePager  Paginator
	standardPager Paginator
	nextPager     Paginator

	trendingDefault int
	trendingMax     int

	logger *zap.Logger
}

// NewEngine creates a feed engine over store
func NewEngine(store Store, cfg config.FeedConfig) *Engine {
	return &Engine{
		store:   store,
		filters: NewFilterBuilder(cfg.TrendingWindow),
		explorePager: Paginator{
			PageSize: cfg.ExplorePageSize,
		},
		standardPager: Paginator{
			PageSize:    cfg.StandardPageSize,
			MaxPageSize: cfg.MaxPageSize,
		},
		nextPager: Paginator{
			PageSize:        cfg.NextPageSize,
			MaxPageSize:     cfg.MaxPageSize,
			EchoCurrentPage: cfg.LegacyPageCursor,
		},
		trendingDefault: cfg.TrendingDefaultCount,
		trendingMax:     cfg.TrendingMaxCount,
		logger:          logging.WithComponent("feed-engine"),
	}
}

// Explore serves one page of a feed tab
func (e *Engine) Explore(ctx context.Context, tab Tab, viewer *Viewer, req PageRequest) (page *Page, err error) {
	ctx, finish := e.observe(ctx, "explore", attribute.String("feed.tab", string(tab)))
	defer func() { finish(err) }()

	filter, err := e.filters.ForTab(tab, viewer)
	if err != nil {
		return nil, err
	}
	return e.paginate(ctx, e.explorePager, req, filter, tab.Ordering())
}

// PostsByTag serves one page of posts carrying the named tag, ranked by
// engagement. A nil tag means the parameter was not given; unknown tags,
// including the empty name, are reported as not found.
func (e *Engine) PostsByTag(ctx context.Context, tag *string, req PageRequest) (page *Page, err error) {
	ctx, finish := e.observe(ctx, "posts_by_tag")
	defer func() { finish(err) }()

	filter, err := e.filters.ForTag(tag)
	if err != nil {
		return nil, err
	}
	name := *tag
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("feed.tag", name))

	exists, err := e.store.TagExists(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up tag: %w", err)
	}
	if !exists {
		return nil, newError(KindNotFound, "Tag '%s' not found.", name)
	}
	return e.paginate(ctx, e.explorePager, req, filter, OrderEngagement)
}

// Search serves one page of posts matching a free-text query, ranked by
// engagement.
func (e *Engine) Search(ctx context.Context, q string, req PageRequest) (page *Page, err error) {
	ctx, finish := e.observe(ctx, "search")
	defer func() { finish(err) }()

	filter, err := e.filters.ForSearch(q)
	if err != nil {
		return nil, err
	}
	return e.paginate(ctx, e.explorePager, req, filter, OrderEngagement)
}

// Favorites serves one page of the posts the viewer liked, newest first
func (e *Engine) Favorites(ctx context.Context, viewer *Viewer, req PageRequest) (page *Page, err error) {
	ctx, finish := e.observe(ctx, "favorites")
	defer func() { finish(err) }()

	if !viewer.IsAuthenticated() {
		return nil, newError(KindUnauthenticated, "Authentication credentials were not provided.")
	}
	return e.paginate(ctx, e.standardPager, req, e.filters.LikedBy(viewer.UserID), OrderRecent)
}

// UserPosts serves one page of a user's own posts, newest first. Only
// signed-in viewers may list them.
func (e *Engine) UserPosts(ctx context.Context, viewer *Viewer, username string, req PageRequest) (page *Page, err error) {
	ctx, finish := e.observe(ctx, "user_posts")
	defer func() { finish(err) }()

	if !viewer.IsAuthenticated() {
		return nil, newError(KindUnauthenticated, "Authentication credentials were not provided.")
	}
	userID, err := e.store.UserIDByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if userID == "" {
		return nil, newError(KindNotFound, "No User matches the given query.")
	}
	return e.paginate(ctx, e.nextPager, req, e.filters.ForAuthor(userID), OrderRecent)
}

// ParseTrendingCount reads the count parameter of the trending list. Values
// that are missing, unparsable or below one give the default; large values
// are capped.
func (e *Engine) ParseTrendingCount(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return e.trendingDefault
	}
	if n > e.trendingMax {
		return e.trendingMax
	}
	return n
}

// Trending returns the combined trending list: the most liked posts with
// newest-first and oldest-first tie-breaks merged, so both freshly and
// enduringly popular posts surface.
func (e *Engine) Trending(ctx context.Context, countParam string) (posts []ScoredPost, err error) {
	ctx, finish := e.observe(ctx, "trending")
	defer func() { finish(err) }()

	n := e.ParseTrendingCount(countParam)

	newest, err := e.store.FindPosts(ctx, Query{Filter: All, Order: OrderEngagement, Limit: n})
	if err != nil {
		return nil, fmt.Errorf("failed to load trending posts: %w", err)
	}
	oldest, err := e.store.FindPosts(ctx, Query{Filter: All, Order: OrderEngagementOldest, Limit: n})
	if err != nil {
		return nil, fmt.Errorf("failed to load trending posts: %w", err)
	}

	return rank(mergeTrending(n, newest.Posts, oldest.Posts), 0), nil
}

func (e *Engine) paginate(ctx context.Context, pager Paginator, req PageRequest, filter Predicate, order Ordering) (*Page, error) {
	w, err := pager.Resolve(req)
	if err != nil {
		return nil, err
	}

	res, err := e.store.FindPosts(ctx, Query{
		Filter:     filter,
		Order:      order,
		Offset:     w.Offset(),
		Limit:      w.Size,
		CountTotal: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}

	e.logger.Debug("feed query",
		zap.Stringer("filter", filter),
		zap.Stringer("order", order),
		zap.Int("page", w.Number),
		zap.Int("page_size", w.Size),
		zap.Int64("total", res.Total),
	)

	return pager.Build(w, res.Total, rank(res.Posts, w.Offset()))
}

// observe opens a span for one engine operation and returns a function that
// ends it and records the outcome.
func (e *Engine) observe(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "feed."+operation)
	span.SetAttributes(attrs...)

	return ctx, func(err error) {
		outcome := "ok"
		switch {
		case err == nil:
		case IsKind(err, KindBadRequest), IsKind(err, KindUnauthenticated), IsKind(err, KindNotFound):
			outcome = "rejected"
			span.SetAttributes(attribute.String("feed.rejection", err.Error()))
		default:
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			e.logger.Error("feed operation failed", zap.String("operation", operation), zap.Error(err))
		}
		telemetry.RecordFeedRequest(ctx, operation, outcome, time.Since(start))
		span.End()
	}
}
