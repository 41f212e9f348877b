package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/maxcasase/BDPW-Back-End/internal/domain"
	"github.com/maxcasase/BDPW-Back-End/pkg/database"
	apperrors "github.com/maxcasase/BDPW-Back-End/pkg/errors"
)

// DefaultStoreTimeout bounds a store call when none is configured.
const DefaultStoreTimeout = 5 * time.Second

// bounded runs fn under its own deadline so one slow store cannot hold a
// request indefinitely.
func bounded[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(ctx)
}

// classify turns a store error into an application error. Errors that are
// already application errors pass through unchanged.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, domain.ErrDuplicateReview):
		return apperrors.Conflict("DUPLICATE_REVIEW", "you have already reviewed this album")
	case errors.Is(err, domain.ErrReviewNotOwned):
		return apperrors.NotFoundOrForbidden("review")
	case database.IsTransient(err):
		return apperrors.Transient(fmt.Errorf("%s: %w", op, err))
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
