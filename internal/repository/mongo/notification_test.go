package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/maxcasase/BDPW-Back-End/internal/domain"
	"github.com/maxcasase/BDPW-Back-End/internal/identity"
)

func newNotificationRepo(mt *mtest.T) *NotificationRepository {
	repo := NewNotificationRepository(mt.Coll)
	repo.now = func() time.Time { return fixedNow }
	return repo
}

func TestNotificationRepository_Create(t *testing.T) {
	mt := newMockT(t)

	mt.Run("stored unread", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		n := &domain.Notification{UserKey: identity.NumericKey(3), Title: "Welcome", Read: true}
		require.NoError(mt, newNotificationRepo(mt).Create(context.Background(), n))

		assert.False(mt, n.ID.IsZero())
		assert.False(mt, n.Read)
		doc := decodeDoc(mt, command(mt).Lookup("documents", "0"))
		assert.Equal(mt, false, doc["read"])
		assert.Equal(mt, int64(3), doc["user_key"])
	})
}

func TestNotificationRepository_ListForUser(t *testing.T) {
	mt := newMockT(t)

	mt.Run("newest first with limit", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: primitive.NewObjectID()},
				{Key: "user_key", Value: int64(3)},
				{Key: "title", Value: "Welcome to MPT!"},
				{Key: "read", Value: false},
				{Key: "created_at", Value: fixedNow},
				{Key: "updated_at", Value: fixedNow},
			},
		))

		out, err := newNotificationRepo(mt).ListForUser(context.Background(), identity.NumericKey(3), 20)
		require.NoError(mt, err)
		require.Len(mt, out, 1)
		assert.Equal(mt, "Welcome to MPT!", out[0].Title)
		assert.Equal(mt, identity.NumericKey(3), out[0].UserKey)

		cmd := command(mt)
		assert.Equal(mt, int64(20), cmd.Lookup("limit").Int64())
		assert.Equal(mt, bson.M{"user_key": int64(3)}, decodeDoc(mt, cmd.Lookup("filter")))
	})
}

func TestNotificationRepository_MarkAllRead(t *testing.T) {
	mt := newMockT(t)

	mt.Run("second call changes nothing", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 3}, bson.E{Key: "nModified", Value: 3}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
		)
		repo := newNotificationRepo(mt)
		user := identity.NumericKey(3)

		first, err := repo.MarkAllRead(context.Background(), user)
		require.NoError(mt, err)
		second, err := repo.MarkAllRead(context.Background(), user)
		require.NoError(mt, err)

		assert.Equal(mt, int64(3), first)
		assert.Equal(mt, int64(0), second)

		cmd := command(mt)
		q := decodeDoc(mt, cmd.Lookup("updates", "0", "q"))
		assert.Equal(mt, bson.M{"user_key": int64(3), "read": false}, q)
		assert.True(mt, cmd.Lookup("updates", "0", "u", "$set", "read").Boolean())
		assert.True(mt, cmd.Lookup("updates", "0", "multi").Boolean())
	})

	mt.Run("server error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 11600, Name: "InterruptedAtShutdown", Message: "shutting down"}))

		_, err := newNotificationRepo(mt).MarkAllRead(context.Background(), identity.NumericKey(3))
		assert.Error(mt, err)
	})
}
