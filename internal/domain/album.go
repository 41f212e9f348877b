package domain

import "github.com/maxcasase/BDPW-Back-End/internal/identity"

// Album is catalog metadata for a reviewed item, served by the catalog
// service.
type Album struct {
	ID       identity.Key `json:"id"`
	Title    string       `json:"title"`
	Artist   string       `json:"artist,omitempty"`
	CoverURL string       `json:"cover_url,omitempty"`
	Year     int          `json:"year,omitempty"`
}
