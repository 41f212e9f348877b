package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/maxcasase/BDPW-Back-End/internal/domain"
	"github.com/maxcasase/BDPW-Back-End/internal/service"
	"github.com/maxcasase/BDPW-Back-End/pkg/httputil"
	"github.com/maxcasase/BDPW-Back-End/pkg/middleware"
	"github.com/maxcasase/BDPW-Back-End/pkg/pagination"
)

// NotificationService is the notification use-case surface the handlers
// need.
type NotificationService interface {
	ListForUser(ctx context.Context, rawUser any, limit int) ([]domain.Notification, error)
	MarkAllRead(ctx context.Context, rawUser any) (int64, error)
}

// NotificationHandler handles HTTP requests for notification endpoints.
type NotificationHandler struct {
	service NotificationService
	logger  *slog.Logger
}

// NewNotificationHandler creates a new notification HTTP handler.
func NewNotificationHandler(svc NotificationService, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: svc,
		logger:  logger,
	}
}

// MarkAllReadResponse reports how many notifications changed state.
type MarkAllReadResponse struct {
	Count int64 `json:"count"`
}

// ListNotifications handles GET /api/v1/notifications?limit=
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	limit = service.ClampNotificationLimit(limit)

	notifications, err := h.service.ListForUser(r.Context(), caller, limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewListResponse(notifications, pagination.Params{PerPage: limit}))
}

// MarkAllRead handles PATCH /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())

	n, err := h.service.MarkAllRead(r.Context(), caller)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: MarkAllReadResponse{Count: n}})
}
