package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/maxcasase/BDPW-Back-End/internal/domain"
	"github.com/maxcasase/BDPW-Back-End/internal/identity"
	"github.com/maxcasase/BDPW-Back-End/internal/repository"
	"github.com/maxcasase/BDPW-Back-End/pkg/pagination"
)

func newReviewRepo(mt *mtest.T) *ReviewRepository {
	repo := NewReviewRepository(mt.Coll)
	repo.now = func() time.Time { return fixedNow }
	return repo
}

func TestReviewRepository_Exists(t *testing.T) {
	mt := newMockT(t)
	user, item := identity.NumericKey(1), identity.NumericKey(42)

	mt.Run("absent", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))

		found, err := newReviewRepo(mt).Exists(context.Background(), user, item)
		require.NoError(mt, err)
		assert.False(mt, found)

		filter := decodeDoc(mt, command(mt).Lookup("filter"))
		assert.Equal(mt, bson.M{"user_key": int64(1), "item_key": int64(42)}, filter)
	})

	mt.Run("present", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}}))

		found, err := newReviewRepo(mt).Exists(context.Background(), user, item)
		require.NoError(mt, err)
		assert.True(mt, found)
	})

	mt.Run("server error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "bad query"}))

		_, err := newReviewRepo(mt).Exists(context.Background(), user, item)
		assert.Error(mt, err)
	})
}

func TestReviewRepository_Create(t *testing.T) {
	mt := newMockT(t)

	mt.Run("assigns id and timestamps", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		review := &domain.Review{
			UserKey: identity.NumericKey(1),
			ItemKey: identity.NumericKey(42),
			Rating:  8,
			Title:   "Great",
		}
		require.NoError(mt, newReviewRepo(mt).Create(context.Background(), review))

		assert.False(mt, review.ID.IsZero())
		assert.Equal(mt, fixedNow, review.CreatedAt)
		assert.Equal(mt, fixedNow, review.UpdatedAt)

		doc := decodeDoc(mt, command(mt).Lookup("documents", "0"))
		assert.Equal(mt, int64(1), doc["user_key"])
		assert.Equal(mt, int64(42), doc["item_key"])
		assert.Equal(mt, review.ID, doc["_id"])
		assert.NotContains(mt, doc, "content")
	})

	mt.Run("unique index violation becomes duplicate review", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: mpt.reviews index: uniq_user_item",
		}))

		err := newReviewRepo(mt).Create(context.Background(), &domain.Review{
			UserKey: identity.NumericKey(1),
			ItemKey: identity.NumericKey(42),
		})
		assert.ErrorIs(mt, err, domain.ErrDuplicateReview)
	})

	mt.Run("other write errors are not duplicates", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 121, Message: "document failed validation"}))

		err := newReviewRepo(mt).Create(context.Background(), &domain.Review{
			UserKey: identity.NumericKey(1),
			ItemKey: identity.NumericKey(42),
		})
		require.Error(mt, err)
		assert.False(mt, errors.Is(err, domain.ErrDuplicateReview))
	})
}

func TestReviewRepository_Find(t *testing.T) {
	mt := newMockT(t)

	mt.Run("second page of an album", func(mt *mtest.T) {
		id1, id2 := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			reviewDoc(id2, 2, 42, 9, fixedNow),
			reviewDoc(id1, 1, 42, 8, fixedNow.Add(-time.Minute)),
		))

		reviews, err := newReviewRepo(mt).Find(context.Background(),
			repository.ReviewFilter{ItemKey: identity.NumericKey(42)},
			pagination.New(2, 10),
		)
		require.NoError(mt, err)
		require.Len(mt, reviews, 2)
		assert.Equal(mt, id2, reviews[0].ID)
		assert.Equal(mt, identity.NumericKey(2), reviews[0].UserKey)
		assert.Equal(mt, identity.NumericKey(42), reviews[0].ItemKey)
		assert.Equal(mt, 9, reviews[0].Rating)
		assert.True(mt, fixedNow.Equal(reviews[0].CreatedAt))

		cmd := command(mt)
		assert.Equal(mt, bson.M{"item_key": int64(42)}, decodeDoc(mt, cmd.Lookup("filter")))
		assert.Equal(mt, int64(10), cmd.Lookup("skip").Int64())
		assert.Equal(mt, int64(10), cmd.Lookup("limit").Int64())

		var sort bson.D
		require.NoError(mt, cmd.Lookup("sort").Unmarshal(&sort))
		assert.Equal(mt, bson.D{{Key: "created_at", Value: int32(-1)}, {Key: "_id", Value: int32(-1)}}, sort)
	})

	mt.Run("unfiltered empty page", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))

		reviews, err := newReviewRepo(mt).Find(context.Background(), repository.ReviewFilter{}, pagination.DefaultParams())
		require.NoError(mt, err)
		assert.NotNil(mt, reviews)
		assert.Empty(mt, reviews)
		assert.Empty(mt, decodeDoc(mt, command(mt).Lookup("filter")))
	})

	mt.Run("filter by user", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))

		_, err := newReviewRepo(mt).Find(context.Background(),
			repository.ReviewFilter{UserKey: identity.NumericKey(7)}, pagination.DefaultParams())
		require.NoError(mt, err)
		assert.Equal(mt, bson.M{"user_key": int64(7)}, decodeDoc(mt, command(mt).Lookup("filter")))
	})
}

func TestReviewRepository_DeleteOwned(t *testing.T) {
	mt := newMockT(t)
	owner := identity.NumericKey(1)

	mt.Run("owner deletes", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		require.NoError(mt, newReviewRepo(mt).DeleteOwned(context.Background(), id.Hex(), owner))

		q := decodeDoc(mt, command(mt).Lookup("deletes", "0", "q"))
		assert.Equal(mt, bson.M{"_id": id, "user_key": int64(1)}, q)
	})

	mt.Run("foreign and missing look the same", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
		)
		repo := newReviewRepo(mt)

		foreign := repo.DeleteOwned(context.Background(), primitive.NewObjectID().Hex(), identity.NumericKey(2))
		missing := repo.DeleteOwned(context.Background(), primitive.NewObjectID().Hex(), owner)

		assert.ErrorIs(mt, foreign, domain.ErrReviewNotOwned)
		assert.ErrorIs(mt, missing, domain.ErrReviewNotOwned)
		assert.Equal(mt, foreign.Error(), missing.Error())
	})

	mt.Run("malformed id never reaches the store", func(mt *mtest.T) {
		err := newReviewRepo(mt).DeleteOwned(context.Background(), "not-an-id", owner)

		assert.ErrorIs(mt, err, domain.ErrReviewNotOwned)
		assert.Nil(mt, mt.GetStartedEvent())
	})
}
