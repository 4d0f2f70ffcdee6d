package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/aleksej-tulko/foodgram/internal/apperror"
	"github.com/aleksej-tulko/foodgram/internal/repository"
)

const defaultPageLimit = 20

// pageEnvelope is the list response shape: the total count, absolute links to
// the neighbouring pages (null at the edges) and the current page's results.
type pageEnvelope struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  any     `json:"results"`
}

// pageParams reads the page and limit query parameters. page is 1-based.
func pageParams(r *http.Request) (page, limit int, err error) {
	page, err = positiveIntParam(r, "page", 1)
	if err != nil {
		return 0, 0, err
	}
	limit, err = positiveIntParam(r, "limit", defaultPageLimit)
	if err != nil {
		return 0, 0, err
	}
	return page, limit, nil
}

func positiveIntParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, apperror.ValidationFailed(name, name+" must be a positive integer")
	}
	return n, nil
}

func listOptions(page, limit int) repository.ListOptions {
	return repository.ListOptions{Limit: limit, Offset: (page - 1) * limit}
}

// paginate builds the envelope around results, deriving the next/previous
// links from the request URL with only the page parameter swapped.
func paginate(r *http.Request, count, page, limit int, results any) pageEnvelope {
	env := pageEnvelope{Count: count, Results: results}
	if page*limit < count {
		env.Next = pageLink(r.URL, page+1)
	}
	if page > 1 {
		env.Previous = pageLink(r.URL, page-1)
	}
	return env
}

func pageLink(u *url.URL, page int) *string {
	link := *u
	q := link.Query()
	q.Set("page", strconv.Itoa(page))
	link.RawQuery = q.Encode()
	s := link.String()
	return &s
}
