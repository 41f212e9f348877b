package repository

import (
	"context"

	"github.com/maxcasase/BDPW-Back-End/internal/domain"
	"github.com/maxcasase/BDPW-Back-End/internal/identity"
	"github.com/maxcasase/BDPW-Back-End/pkg/pagination"
)

// ReviewFilter restricts a review listing. Zero keys are ignored.
type ReviewFilter struct {
	UserKey identity.Key
	ItemKey identity.Key
}

// ReviewRepository persists reviews. Implementations must enforce the
// (user, item) uniqueness at the store and report a lost race as
// domain.ErrDuplicateReview.
type ReviewRepository interface {
	// Exists reports whether user already reviewed item.
	Exists(ctx context.Context, user, item identity.Key) (bool, error)

	// Create inserts review, filling its ID.
	Create(ctx context.Context, review *domain.Review) error

	// Find returns one page ordered by created_at then id, newest first.
	Find(ctx context.Context, filter ReviewFilter, page pagination.Params) ([]domain.Review, error)

	// DeleteOwned removes the review only if user owns it. A missing review,
	// a foreign review and a malformed id all yield domain.ErrReviewNotOwned.
	DeleteOwned(ctx context.Context, reviewID string, user identity.Key) error
}

// DirectoryRepository reads canonical user profiles.
type DirectoryRepository interface {
	// FetchBatch returns the profiles found for keys in one round trip.
	// Keys without a row are absent from the map.
	FetchBatch(ctx context.Context, keys []identity.Key) (map[identity.Key]domain.DirectoryUser, error)
}

// NotificationRepository persists notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error

	// ListForUser returns the newest notifications first, at most limit.
	ListForUser(ctx context.Context, user identity.Key, limit int) ([]domain.Notification, error)

	// MarkAllRead flips every unread notification of user and returns how
	// many changed.
	MarkAllRead(ctx context.Context, user identity.Key) (int64, error)
}
