package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/maxcasase/BDPW-Back-End/internal/identity"
)

// Notification is a one-way message to a user. It is created from an
// external event and only ever transitions read false -> true.
type Notification struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserKey   identity.Key       `json:"user_id" bson:"user_key"`
	Title     string             `json:"title" bson:"title"`
	Body      string             `json:"body,omitempty" bson:"body,omitempty"`
	Read      bool               `json:"read" bson:"read"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}
