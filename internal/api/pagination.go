package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/culinara/culinara/internal/api/objects"
	"github.com/culinara/culinara/internal/feed"
)

// linkPage is a page whose next and previous entries are absolute URLs
type linkPage struct {
	Count    int64          `json:"count"`
	Next     *string        `json:"next"`
	Previous *string        `json:"previous"`
	Results  []objects.Post `json:"results"`
}

// numberPage is a page whose next and previous entries are page numbers
type numberPage struct {
	Count    int64          `json:"count"`
	Next     *int           `json:"next"`
	Previous *int           `json:"previous"`
	Results  []objects.Post `json:"results"`
}

func pageRequest(c *gin.Context) feed.PageRequest {
	return feed.PageRequest{
		Page:     c.Query("page"),
		PageSize: c.Query("page_size"),
	}
}

func newLinkPage(req *http.Request, page *feed.Page) linkPage {
	out := linkPage{
		Count:   page.Count,
		Results: objects.NewPosts(page.Results),
	}
	if page.Next != nil {
		link := pageURL(req, *page.Next)
		out.Next = &link
	}
	if page.Previous != nil {
		link := pageURL(req, *page.Previous)
		out.Previous = &link
	}
	return out
}

func newNumberPage(page *feed.Page) numberPage {
	return numberPage{
		Count:    page.Count,
		Next:     page.Next,
		Previous: page.Previous,
		Results:  objects.NewPosts(page.Results),
	}
}

// pageURL rewrites the request URL to point at page n. The first page is
// addressed without a page parameter.
func pageURL(req *http.Request, n int) string {
	scheme := "http"
	if req.TLS != nil {
		scheme = "https"
	}
	if proto := req.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}

	q := req.URL.Query()
	if n <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(n))
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     req.Host,
		Path:     req.URL.Path,
		RawQuery: q.Encode(),
	}
	return u.String()
}
