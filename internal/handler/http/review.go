package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/maxcasase/BDPW-Back-End/internal/domain"
	"github.com/maxcasase/BDPW-Back-End/internal/service"
	"github.com/maxcasase/BDPW-Back-End/pkg/httputil"
	"github.com/maxcasase/BDPW-Back-End/pkg/middleware"
	"github.com/maxcasase/BDPW-Back-End/pkg/pagination"
	"github.com/maxcasase/BDPW-Back-End/pkg/validator"
)

// ReviewService is the review use-case surface the handlers need.
type ReviewService interface {
	CreateReview(ctx context.Context, in service.CreateReviewInput) (*domain.EnrichedReview, error)
	ListReviews(ctx context.Context, in service.ListReviewsInput) ([]domain.EnrichedReview, error)
	GetUserReviews(ctx context.Context, rawUser any, page pagination.Params) ([]domain.UserReview, error)
	DeleteReview(ctx context.Context, rawUser any, reviewID string) error
}

// ReviewHandler handles HTTP requests for review endpoints.
type ReviewHandler struct {
	service ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(svc ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CreateReviewRequest is the JSON request body for creating a review.
// album_id may be a number or a string.
type CreateReviewRequest struct {
	AlbumID any    `json:"album_id" validate:"required"`
	Rating  *int   `json:"rating" validate:"required"`
	Title   string `json:"title" validate:"max=200"`
	Content string `json:"content" validate:"max=5000"`
}

// DeleteReviewResponse confirms a deletion.
type DeleteReviewResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// --- Handlers ---

// CreateReview handles POST /api/v1/reviews
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())

	var req CreateReviewRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	review, err := h.service.CreateReview(r.Context(), service.CreateReviewInput{
		UserID:  caller,
		AlbumID: req.AlbumID,
		Rating:  *req.Rating,
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: review})
}

// ListReviews handles GET /api/v1/reviews?album_id=&page=&limit=
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	page := pagination.FromRequest(r)
	in := service.ListReviewsInput{Page: page}
	if v := r.URL.Query().Get("album_id"); v != "" {
		in.AlbumID = v
	}

	reviews, err := h.service.ListReviews(r.Context(), in)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewListResponse(reviews, page))
}

// GetUserReviews handles GET /api/v1/reviews/user
func (h *ReviewHandler) GetUserReviews(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())
	page := pagination.FromRequest(r)

	reviews, err := h.service.GetUserReviews(r.Context(), caller, page)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewListResponse(reviews, page))
}

// DeleteReview handles DELETE /api/v1/reviews/{id}
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteReview(r.Context(), caller, id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: DeleteReviewResponse{ID: id, Deleted: true}})
}
