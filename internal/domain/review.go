package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/maxcasase/BDPW-Back-End/internal/identity"
)

// Rating bounds, both inclusive.
const (
	MinRating = 0
	MaxRating = 10
)

// Errors reported by review stores. Services translate them into
// application errors.
var (
	ErrDuplicateReview = errors.New("review already exists for this user and album")
	ErrReviewNotOwned  = errors.New("review not found or not owned by caller")
)

// Review is one user's rating of one album. At most one exists per
// (UserKey, ItemKey).
type Review struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserKey   identity.Key       `json:"user_id" bson:"user_key"`
	ItemKey   identity.Key       `json:"album_id" bson:"item_key"`
	Rating    int                `json:"rating" bson:"rating"`
	Title     string             `json:"title,omitempty" bson:"title,omitempty"`
	Content   string             `json:"content,omitempty" bson:"content,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// ValidRating reports whether r is within [MinRating, MaxRating].
func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}

// EnrichedReview is a Review with its author's directory profile attached.
// Author is nil when the directory has no row for the review's user.
type EnrichedReview struct {
	Review
	Author *Author `json:"author"`
}

// UserReview is one of the caller's own reviews, optionally carrying
// catalog metadata for its album.
type UserReview struct {
	Review
	Album *Album `json:"album,omitempty"`
}
