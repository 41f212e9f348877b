package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/maxcasase/BDPW-Back-End/internal/domain"
	"github.com/maxcasase/BDPW-Back-End/internal/identity"
	"github.com/maxcasase/BDPW-Back-End/internal/repository"
	"github.com/maxcasase/BDPW-Back-End/pkg/database"
	"github.com/maxcasase/BDPW-Back-End/pkg/logger"
)

// Querier is the subset of pgxpool.Pool the directory reads through.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const fetchUsersQuery = `
	SELECT id::text, username, COALESCE(display_name, ''), email, COALESCE(avatar_url, '')
	FROM users
	WHERE id = ANY($1)`

// DirectoryRepository reads user profiles from the relational directory.
type DirectoryRepository struct {
	db   Querier
	form identity.Form
}

var _ repository.DirectoryRepository = (*DirectoryRepository)(nil)

// NewDirectoryRepository creates a directory reader. form is the identity
// form of the users.id column.
func NewDirectoryRepository(db Querier, form identity.Form) *DirectoryRepository {
	return &DirectoryRepository{db: db, form: form}
}

// FetchBatch loads every distinct key in a single query. Keys of another
// form can never match a row, so they are logged and left out of the
// result. An empty key set issues no query at all.
func (r *DirectoryRepository) FetchBatch(ctx context.Context, keys []identity.Key) (users map[identity.Key]domain.DirectoryUser, err error) {
	keys = r.matching(ctx, identity.Distinct(keys))
	users = make(map[identity.Key]domain.DirectoryUser, len(keys))
	if len(keys) == 0 {
		return users, nil
	}

	args, err := r.queryArgs(keys)
	if err != nil {
		return nil, err
	}

	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "FetchUsers", fetchUsersQuery)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, fetchUsersQuery, args)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rawID string
			u     domain.DirectoryUser
		)
		if err := rows.Scan(&rawID, &u.Username, &u.DisplayName, &u.Email, &u.AvatarURL); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.Key, err = identity.Normalize(rawID, r.form)
		if err != nil {
			return nil, fmt.Errorf("user row id %q: %w", rawID, err)
		}
		users[u.Key] = u
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// matching drops keys whose form differs from the users.id column.
func (r *DirectoryRepository) matching(ctx context.Context, keys []identity.Key) []identity.Key {
	out := keys[:0:0]
	for _, k := range keys {
		if k.Form() != r.form {
			logger.FromContext(ctx).WarnContext(ctx, "skipping directory key of another identity form",
				slog.String("key", k.String()),
				slog.String("form", string(k.Form())),
				slog.String("directory_form", string(r.form)),
			)
			continue
		}
		out = append(out, k)
	}
	return out
}

// queryArgs renders keys as a typed array for ANY($1).
func (r *DirectoryRepository) queryArgs(keys []identity.Key) (any, error) {
	switch r.form {
	case identity.Numeric:
		ids := make([]int64, 0, len(keys))
		for _, k := range keys {
			n, ok := k.Int64()
			if !ok {
				return nil, fmt.Errorf("directory key %s is not %s", k, r.form)
			}
			ids = append(ids, n)
		}
		return ids, nil
	case identity.Opaque:
		ids := make([]string, 0, len(keys))
		for _, k := range keys {
			oid, ok := k.ObjectID()
			if !ok {
				return nil, fmt.Errorf("directory key %s is not %s", k, r.form)
			}
			ids = append(ids, oid.Hex())
		}
		return ids, nil
	default:
		return nil, fmt.Errorf("unknown identity form %q", r.form)
	}
}
