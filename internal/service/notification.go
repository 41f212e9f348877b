package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/maxcasase/BDPW-Back-End/internal/domain"
	"github.com/maxcasase/BDPW-Back-End/internal/identity"
	"github.com/maxcasase/BDPW-Back-End/internal/repository"
	apperrors "github.com/maxcasase/BDPW-Back-End/pkg/errors"
)

// Notification list bounds.
const (
	DefaultNotificationLimit = 20
	MaxNotificationLimit     = 50
)

// NotificationService lists notifications and tracks their read state.
type NotificationService struct {
	scheme  identity.Scheme
	repo    repository.NotificationRepository
	timeout time.Duration
	logger  *slog.Logger
}

// NewNotificationService creates a notification service.
func NewNotificationService(scheme identity.Scheme, repo repository.NotificationRepository, timeout time.Duration, logger *slog.Logger) *NotificationService {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return &NotificationService{scheme: scheme, repo: repo, timeout: timeout, logger: logger}
}

// ClampNotificationLimit maps a requested limit into [1, MaxNotificationLimit].
// Zero or negative asks for the default.
func ClampNotificationLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultNotificationLimit
	case limit > MaxNotificationLimit:
		return MaxNotificationLimit
	default:
		return limit
	}
}

// ListForUser returns the newest notifications of the caller.
func (s *NotificationService) ListForUser(ctx context.Context, rawUser any, limit int) ([]domain.Notification, error) {
	user, err := s.scheme.UserKey(rawUser)
	if err != nil {
		return nil, err
	}

	out, err := bounded(ctx, s.timeout, func(ctx context.Context) ([]domain.Notification, error) {
		return s.repo.ListForUser(ctx, user, ClampNotificationLimit(limit))
	})
	if err != nil {
		return nil, classify("list notifications", err)
	}
	return out, nil
}

// MarkAllRead marks every unread notification of the caller as read and
// returns how many changed. Repeating it returns 0.
func (s *NotificationService) MarkAllRead(ctx context.Context, rawUser any) (int64, error) {
	user, err := s.scheme.UserKey(rawUser)
	if err != nil {
		return 0, err
	}

	n, err := bounded(ctx, s.timeout, func(ctx context.Context) (int64, error) {
		return s.repo.MarkAllRead(ctx, user)
	})
	if err != nil {
		return 0, classify("mark notifications read", err)
	}

	s.logger.InfoContext(ctx, "notifications marked read",
		slog.String("user_id", user.String()),
		slog.Int64("count", n),
	)
	return n, nil
}

// CreateNotification stores an unread notification for rawUser.
func (s *NotificationService) CreateNotification(ctx context.Context, rawUser any, title, body string) (*domain.Notification, error) {
	user, err := s.scheme.UserKey(rawUser)
	if err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.InvalidInput("notification title is required")
	}

	n := &domain.Notification{UserKey: user, Title: title, Body: body}
	if _, err := bounded(ctx, s.timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.repo.Create(ctx, n)
	}); err != nil {
		return nil, classify("create notification", err)
	}

	s.logger.InfoContext(ctx, "notification created",
		slog.String("notification_id", n.ID.Hex()),
		slog.String("user_id", user.String()),
	)
	return n, nil
}
