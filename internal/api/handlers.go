package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/culinara/culinara/internal/api/objects"
	"github.com/culinara/culinara/internal/feed"
	"github.com/culinara/culinara/internal/middleware"
)

const trendingMessage = "Trending Posts fetched successfully"

// explore handles GET /api/posts/explore/?tab=
func (r *Router) explore(c *gin.Context) {
	tab := feed.ParseTab(c.Query("tab"))
	page, err := r.engine.Explore(c.Request.Context(), tab, middleware.ViewerFrom(c), pageRequest(c))
	if err != nil {
		r.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newLinkPage(c.Request, page))
}

// postsByTag handles GET /api/posts/tags/?tag=
func (r *Router) postsByTag(c *gin.Context) {
	var tag *string
	if v, ok := c.GetQuery("tag"); ok {
		tag = &v
	}
	page, err := r.engine.PostsByTag(c.Request.Context(), tag, pageRequest(c))
	if err != nil {
		r.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newLinkPage(c.Request, page))
}

// search handles GET /api/posts/search/?q=
func (r *Router) search(c *gin.Context) {
	page, err := r.engine.Search(c.Request.Context(), c.Query("q"), pageRequest(c))
	if err != nil {
		r.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newLinkPage(c.Request, page))
}

// trending handles GET /api/posts/trending/?count=
func (r *Router) trending(c *gin.Context) {
	posts, err := r.engine.Trending(c.Request.Context(), c.Query("count"))
	if err != nil {
		r.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": trendingMessage,
		"data":    objects.NewPosts(posts),
	})
}

// favorites handles GET /api/recipes/favorites/
func (r *Router) favorites(c *gin.Context) {
	page, err := r.engine.Favorites(c.Request.Context(), middleware.ViewerFrom(c), pageRequest(c))
	if err != nil {
		r.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newLinkPage(c.Request, page))
}

// userPosts handles GET /api/users/:username/posts/
func (r *Router) userPosts(c *gin.Context) {
	page, err := r.engine.UserPosts(c.Request.Context(), middleware.ViewerFrom(c), c.Param("username"), pageRequest(c))
	if err != nil {
		r.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newNumberPage(page))
}
