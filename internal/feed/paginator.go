package feed

import (
	"strconv"
	"strings"
)

// PageRequest carries the raw page and page_size query parameters
type PageRequest struct {
	Page     string
	PageSize string
}

// Paginator slices ranked results into numbered pages
type Paginator struct {
	PageSize int
	// MaxPageSize caps caller overrides. Zero disables the page_size
	// parameter entirely.
	MaxPageSize int
	// EchoCurrentPage reports the requested page number as both next and
	// previous instead of the adjacent pages.
	EchoCurrentPage bool
}

// Window is a resolved page: its 1-based number and size
type Window struct {
	Number int
	Size   int
}

// Offset is the number of results before the window
func (w Window) Offset() int {
	return (w.Number - 1) * w.Size
}

// Page is one page of a ranked feed
type Page struct {
	Count    int64
	Number   int
	Size     int
	Next     *int
	Previous *int
	Results  []ScoredPost
}

var errInvalidPage = newError(KindNotFound, "Invalid page.")

// Resolve validates the requested page number and applies the page size
// override. A missing page means the first page; anything that is not a
// positive integer is rejected. Bad page sizes fall back to the default and
// large ones are capped.
func (p Paginator) Resolve(req PageRequest) (Window, error) {
	w := Window{Number: 1, Size: p.PageSize}

	if raw := strings.TrimSpace(req.Page); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return Window{}, errInvalidPage
		}
		w.Number = n
	}

	if p.MaxPageSize > 0 && req.PageSize != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(req.PageSize)); err == nil && n > 0 {
			if n > p.MaxPageSize {
				n = p.MaxPageSize
			}
			w.Size = n
		}
	}
	return w, nil
}

// Build assembles the page for window w from one slice of results and the
// total result count. Pages past the end are rejected, except the first page
// of an empty result.
func (p Paginator) Build(w Window, total int64, posts []ScoredPost) (*Page, error) {
	if w.Number > 1 && int64(w.Offset()) >= total {
		return nil, errInvalidPage
	}

	page := &Page{
		Count:   total,
		Number:  w.Number,
		Size:    w.Size,
		Results: posts,
	}

	if p.EchoCurrentPage {
		current := w.Number
		page.Next = &current
		page.Previous = &current
		return page, nil
	}

	if int64(w.Number)*int64(w.Size) < total {
		next := w.Number + 1
		page.Next = &next
	}
	if w.Number > 1 {
		prev := w.Number - 1
		page.Previous = &prev
	}
	return page, nil
}
