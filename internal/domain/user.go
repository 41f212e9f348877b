package domain

import "github.com/maxcasase/BDPW-Back-End/internal/identity"

// DirectoryUser is the canonical profile owned by the relational user
// directory. This service only reads it.
type DirectoryUser struct {
	Key         identity.Key
	Username    string
	DisplayName string
	Email       string
	AvatarURL   string
}

// Author is the public projection of a DirectoryUser attached to reviews.
// Email is deliberately left out.
type Author struct {
	ID          identity.Key `json:"id"`
	Username    string       `json:"username"`
	ProfileName string       `json:"profile_name,omitempty"`
	AvatarURL   string       `json:"avatar_url,omitempty"`
}

// AuthorFrom projects u for public listings.
func AuthorFrom(u DirectoryUser) *Author {
	return &Author{
		ID:          u.Key,
		Username:    u.Username,
		ProfileName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
	}
}
