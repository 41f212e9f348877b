package pagination

import (
	"math"
	"net/http"
	"strconv"
)

const (
	// DefaultPerPage is used when the caller does not ask for a page size.
	DefaultPerPage = 10
	// MaxPerPage bounds a single page so a list never turns into a full scan.
	MaxPerPage = 100
)

// Params holds pagination parameters extracted from query strings.
type Params struct {
	Page    int `json:"page"`
	PerPage int `json:"limit"`
	Offset  int `json:"-"`
}

// DefaultParams returns sensible pagination defaults.
func DefaultParams() Params {
	return Params{
		Page:    1,
		PerPage: DefaultPerPage,
		Offset:  0,
	}
}

// New builds Params from raw values. A page below 1 becomes 1, a page size
// below 1 becomes DefaultPerPage and anything above MaxPerPage is capped.
// The page is capped so that Offset never overflows.
func New(page, perPage int) Params {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	if maxPage := math.MaxInt / perPage; page > maxPage {
		page = maxPage
	}
	return Params{
		Page:    page,
		PerPage: perPage,
		Offset:  (page - 1) * perPage,
	}
}

// FromRequest extracts pagination parameters from an HTTP request. The page
// size is read from "limit", falling back to "per_page". Unparseable values
// fall back to the defaults.
func FromRequest(r *http.Request) Params {
	q := r.URL.Query()

	page := 1
	if v := q.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			page = n
		}
	}

	perPage := DefaultPerPage
	raw := q.Get("limit")
	if raw == "" {
		raw = q.Get("per_page")
	}
	if raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			perPage = n
		}
	}

	return New(page, perPage)
}
