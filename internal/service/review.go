package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/maxcasase/BDPW-Back-End/internal/domain"
	"github.com/maxcasase/BDPW-Back-End/internal/identity"
	"github.com/maxcasase/BDPW-Back-End/internal/repository"
	apperrors "github.com/maxcasase/BDPW-Back-End/pkg/errors"
	"github.com/maxcasase/BDPW-Back-End/pkg/pagination"
)

// AlbumLookup resolves album metadata. Implementations degrade to an empty
// map instead of failing.
type AlbumLookup interface {
	Albums(ctx context.Context, keys []identity.Key) map[identity.Key]domain.Album
}

// ReviewEvents publishes review lifecycle events.
type ReviewEvents interface {
	PublishReviewCreated(ctx context.Context, review *domain.Review) error
	PublishReviewDeleted(ctx context.Context, reviewID string, user identity.Key) error
}

// CreateReviewInput holds the parameters for creating a review. UserID and
// AlbumID are raw references, normalised by the service.
type CreateReviewInput struct {
	UserID  any
	AlbumID any
	Rating  int
	Title   string
	Content string
}

// ListReviewsInput selects a page of reviews. A nil AlbumID lists every
// album.
type ListReviewsInput struct {
	AlbumID any
	Page    pagination.Params
}

// ReviewService implements review creation, listing with author enrichment
// and owner-only deletion.
type ReviewService struct {
	scheme    identity.Scheme
	reviews   repository.ReviewRepository
	directory repository.DirectoryRepository
	albums    AlbumLookup
	events    ReviewEvents
	timeout   time.Duration
	logger    *slog.Logger
}

// NewReviewService creates a review service. A non-positive timeout falls
// back to DefaultStoreTimeout.
func NewReviewService(
	scheme identity.Scheme,
	reviews repository.ReviewRepository,
	directory repository.DirectoryRepository,
	timeout time.Duration,
	logger *slog.Logger,
) *ReviewService {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return &ReviewService{
		scheme:    scheme,
		reviews:   reviews,
		directory: directory,
		timeout:   timeout,
		logger:    logger,
	}
}

// WithAlbums attaches catalog metadata to the caller's own reviews.
func (s *ReviewService) WithAlbums(albums AlbumLookup) *ReviewService {
	s.albums = albums
	return s
}

// WithEvents publishes lifecycle events after successful writes.
func (s *ReviewService) WithEvents(events ReviewEvents) *ReviewService {
	s.events = events
	return s
}

// CreateReview stores a new review and returns it with its author attached.
// Identity and rating are checked before any store call.
func (s *ReviewService) CreateReview(ctx context.Context, in CreateReviewInput) (*domain.EnrichedReview, error) {
	user, err := s.scheme.UserKey(in.UserID)
	if err != nil {
		return nil, err
	}
	item, err := s.scheme.ItemKey(in.AlbumID)
	if err != nil {
		return nil, err
	}
	if !domain.ValidRating(in.Rating) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("rating must be between %d and %d", domain.MinRating, domain.MaxRating))
	}

	exists, err := bounded(ctx, s.timeout, func(ctx context.Context) (bool, error) {
		return s.reviews.Exists(ctx, user, item)
	})
	if err != nil {
		return nil, classify("check existing review", err)
	}
	if exists {
		return nil, classify("create review", domain.ErrDuplicateReview)
	}

	review := &domain.Review{
		UserKey: user,
		ItemKey: item,
		Rating:  in.Rating,
		Title:   in.Title,
		Content: in.Content,
	}
	if _, err := bounded(ctx, s.timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.reviews.Create(ctx, review)
	}); err != nil {
		return nil, classify("create review", err)
	}

	s.logger.InfoContext(ctx, "review created",
		slog.String("review_id", review.ID.Hex()),
		slog.String("album_id", item.String()),
		slog.String("user_id", user.String()),
		slog.Int("rating", review.Rating),
	)

	if s.events != nil {
		if err := s.events.PublishReviewCreated(ctx, review); err != nil {
			s.logger.WarnContext(ctx, "failed to publish review.created event",
				slog.String("review_id", review.ID.Hex()),
				slog.String("error", err.Error()),
			)
		}
	}

	enriched := &domain.EnrichedReview{Review: *review}
	users, err := s.fetchAuthors(ctx, []identity.Key{user})
	if err != nil {
		// The review is stored; answer without the author rather than fail.
		s.logger.WarnContext(ctx, "author lookup failed after create",
			slog.String("review_id", review.ID.Hex()),
			slog.String("error", err.Error()),
		)
		return enriched, nil
	}
	if u, ok := users[user]; ok {
		enriched.Author = domain.AuthorFrom(u)
	}
	return enriched, nil
}

// ListReviews returns one page of reviews, newest first, each joined with
// its author. The directory is queried once per non-empty page.
func (s *ReviewService) ListReviews(ctx context.Context, in ListReviewsInput) ([]domain.EnrichedReview, error) {
	var filter repository.ReviewFilter
	if in.AlbumID != nil {
		item, err := s.scheme.ItemKey(in.AlbumID)
		if err != nil {
			return nil, err
		}
		filter.ItemKey = item
	}

	reviews, err := s.find(ctx, filter, in.Page)
	if err != nil {
		return nil, err
	}

	out := make([]domain.EnrichedReview, len(reviews))
	if len(reviews) == 0 {
		return out, nil
	}

	keys := make([]identity.Key, len(reviews))
	for i := range reviews {
		keys[i] = reviews[i].UserKey
	}
	users, err := s.fetchAuthors(ctx, identity.Distinct(keys))
	if err != nil {
		return nil, classify("fetch review authors", err)
	}

	for i := range reviews {
		out[i].Review = reviews[i]
		if u, ok := users[reviews[i].UserKey]; ok {
			out[i].Author = domain.AuthorFrom(u)
		}
	}
	return out, nil
}

// GetUserReviews returns the caller's own reviews, newest first, with album
// metadata when a catalog is configured.
func (s *ReviewService) GetUserReviews(ctx context.Context, rawUser any, page pagination.Params) ([]domain.UserReview, error) {
	user, err := s.scheme.UserKey(rawUser)
	if err != nil {
		return nil, err
	}

	reviews, err := s.find(ctx, repository.ReviewFilter{UserKey: user}, page)
	if err != nil {
		return nil, err
	}

	out := make([]domain.UserReview, len(reviews))
	for i := range reviews {
		out[i].Review = reviews[i]
	}
	if s.albums == nil || len(reviews) == 0 {
		return out, nil
	}

	items := make([]identity.Key, len(reviews))
	for i := range reviews {
		items[i] = reviews[i].ItemKey
	}
	albums := s.albums.Albums(ctx, items)
	for i := range out {
		if a, ok := albums[out[i].ItemKey]; ok {
			album := a
			out[i].Album = &album
		}
	}
	return out, nil
}

// DeleteReview removes the caller's review. A missing review and someone
// else's review produce the same not-found error.
func (s *ReviewService) DeleteReview(ctx context.Context, rawUser any, reviewID string) error {
	user, err := s.scheme.UserKey(rawUser)
	if err != nil {
		return err
	}

	if _, err := bounded(ctx, s.timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.reviews.DeleteOwned(ctx, reviewID, user)
	}); err != nil {
		return classify("delete review", err)
	}

	s.logger.InfoContext(ctx, "review deleted",
		slog.String("review_id", reviewID),
		slog.String("user_id", user.String()),
	)

	if s.events != nil {
		if err := s.events.PublishReviewDeleted(ctx, reviewID, user); err != nil {
			s.logger.WarnContext(ctx, "failed to publish review.deleted event",
				slog.String("review_id", reviewID),
				slog.String("error", err.Error()),
			)
		}
	}
	return nil
}

func (s *ReviewService) find(ctx context.Context, filter repository.ReviewFilter, page pagination.Params) ([]domain.Review, error) {
	page = pagination.New(page.Page, page.PerPage)
	reviews, err := bounded(ctx, s.timeout, func(ctx context.Context) ([]domain.Review, error) {
		return s.reviews.Find(ctx, filter, page)
	})
	if err != nil {
		return nil, classify("find reviews", err)
	}
	return reviews, nil
}

func (s *ReviewService) fetchAuthors(ctx context.Context, keys []identity.Key) (map[identity.Key]domain.DirectoryUser, error) {
	return bounded(ctx, s.timeout, func(ctx context.Context) (map[identity.Key]domain.DirectoryUser, error) {
		return s.directory.FetchBatch(ctx, keys)
	})
}
