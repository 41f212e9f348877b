package service

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/maxcasase/BDPW-Back-End/internal/domain"
	"github.com/maxcasase/BDPW-Back-End/internal/identity"
	"github.com/maxcasase/BDPW-Back-End/internal/repository"
	"github.com/maxcasase/BDPW-Back-End/pkg/pagination"
)

// memReviewStore is an in-memory ReviewRepository whose Create enforces the
// (user, item) uniqueness the way the unique index does.
type memReviewStore struct {
	mu      sync.Mutex
	reviews []domain.Review
	clock   time.Time

	calls atomic.Int32
	// existsGate, when set, holds every Exists caller until all arrived.
	existsGate *sync.WaitGroup
	// err, when set, is returned by every call.
	err error
	// block makes every call wait for its context to end.
	block bool
}

var _ repository.ReviewRepository = (*memReviewStore)(nil)

func newMemReviewStore() *memReviewStore {
	return &memReviewStore{clock: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (m *memReviewStore) enter(ctx context.Context) error {
	m.calls.Add(1)
	if m.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return m.err
}

func (m *memReviewStore) Exists(ctx context.Context, user, item identity.Key) (bool, error) {
	if err := m.enter(ctx); err != nil {
		return false, err
	}
	if m.existsGate != nil {
		m.existsGate.Done()
		m.existsGate.Wait()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reviews {
		if r.UserKey == user && r.ItemKey == item {
			return true, nil
		}
	}
	return false, nil
}

func (m *memReviewStore) Create(ctx context.Context, review *domain.Review) error {
	if err := m.enter(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reviews {
		if r.UserKey == review.UserKey && r.ItemKey == review.ItemKey {
			return domain.ErrDuplicateReview
		}
	}
	m.clock = m.clock.Add(time.Second)
	review.ID = primitive.NewObjectID()
	review.CreatedAt, review.UpdatedAt = m.clock, m.clock
	m.reviews = append(m.reviews, *review)
	return nil
}

func (m *memReviewStore) Find(ctx context.Context, filter repository.ReviewFilter, page pagination.Params) ([]domain.Review, error) {
	if err := m.enter(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	matched := []domain.Review{}
	for _, r := range m.reviews {
		if !filter.UserKey.IsZero() && r.UserKey != filter.UserKey {
			continue
		}
		if !filter.ItemKey.IsZero() && r.ItemKey != filter.ItemKey {
			continue
		}
		matched = append(matched, r)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID.Hex() > matched[j].ID.Hex()
	})

	if page.Offset >= len(matched) {
		return []domain.Review{}, nil
	}
	end := page.Offset + page.PerPage
	if end > len(matched) {
		end = len(matched)
	}
	return matched[page.Offset:end], nil
}

func (m *memReviewStore) DeleteOwned(ctx context.Context, reviewID string, user identity.Key) error {
	if err := m.enter(ctx); err != nil {
		return err
	}
	oid, err := primitive.ObjectIDFromHex(reviewID)
	if err != nil {
		return domain.ErrReviewNotOwned
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.reviews {
		if r.ID == oid && r.UserKey == user {
			m.reviews = append(m.reviews[:i], m.reviews[i+1:]...)
			return nil
		}
	}
	return domain.ErrReviewNotOwned
}

// --- Mock Directory ---

type mockDirectory struct {
	mock.Mock
}

func (m *mockDirectory) FetchBatch(ctx context.Context, keys []identity.Key) (map[identity.Key]domain.DirectoryUser, error) {
	args := m.Called(ctx, keys)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[identity.Key]domain.DirectoryUser), args.Error(1)
}

// --- Mock Events ---

type mockEvents struct {
	mock.Mock
}

func (m *mockEvents) PublishReviewCreated(ctx context.Context, review *domain.Review) error {
	return m.Called(ctx, review).Error(0)
}

func (m *mockEvents) PublishReviewDeleted(ctx context.Context, reviewID string, user identity.Key) error {
	return m.Called(ctx, reviewID, user).Error(0)
}

// --- Fake Albums ---

type fakeAlbums map[identity.Key]domain.Album

func (f fakeAlbums) Albums(_ context.Context, keys []identity.Key) map[identity.Key]domain.Album {
	out := make(map[identity.Key]domain.Album)
	for _, k := range keys {
		if a, ok := f[k]; ok {
			out[k] = a
		}
	}
	return out
}

// --- Notification store ---

type memNotificationStore struct {
	mu    sync.Mutex
	items []domain.Notification
	err   error
	limit int
}

var _ repository.NotificationRepository = (*memNotificationStore)(nil)

func (m *memNotificationStore) Create(_ context.Context, n *domain.Notification) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n.ID = primitive.NewObjectID()
	n.Read = false
	m.items = append(m.items, *n)
	return nil
}

func (m *memNotificationStore) ListForUser(_ context.Context, user identity.Key, limit int) ([]domain.Notification, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.limit = limit
	out := []domain.Notification{}
	for i := len(m.items) - 1; i >= 0 && len(out) < limit; i-- {
		if m.items[i].UserKey == user {
			out = append(out, m.items[i])
		}
	}
	return out, nil
}

func (m *memNotificationStore) MarkAllRead(_ context.Context, user identity.Key) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for i := range m.items {
		if m.items[i].UserKey == user && !m.items[i].Read {
			m.items[i].Read = true
			n++
		}
	}
	return n, nil
}
