package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/maxcasase/BDPW-Back-End/internal/domain"
	"github.com/maxcasase/BDPW-Back-End/internal/identity"
	"github.com/maxcasase/BDPW-Back-End/internal/repository"
	"github.com/maxcasase/BDPW-Back-End/pkg/database"
	"github.com/maxcasase/BDPW-Back-End/pkg/pagination"
)

// newestFirst orders by creation time with the id as tie breaker.
var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

// ReviewRepository implements repository.ReviewRepository on MongoDB.
type ReviewRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

var _ repository.ReviewRepository = (*ReviewRepository)(nil)

// NewReviewRepository creates a review repository over coll.
func NewReviewRepository(coll *mongo.Collection) *ReviewRepository {
	return &ReviewRepository{coll: coll, now: time.Now}
}

// Exists reports whether user already reviewed item.
func (r *ReviewRepository) Exists(ctx context.Context, user, item identity.Key) (found bool, err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemMongo, "ReviewExists", "reviews.findOne")
	defer func() { end(err) }()

	opts := options.FindOne().SetProjection(bson.D{{Key: "_id", Value: 1}})
	err = r.coll.FindOne(ctx, pairFilter(user, item), opts).Err()
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("find review by user and album: %w", err)
	}
	return true, nil
}

// Create inserts review. A unique index violation means a concurrent create
// for the same pair won and is reported as domain.ErrDuplicateReview.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemMongo, "InsertReview", "reviews.insertOne")
	defer func() { end(err) }()

	now := r.now().UTC().Truncate(time.Millisecond)
	review.CreatedAt, review.UpdatedAt = now, now

	res, err := r.coll.InsertOne(ctx, review)
	if err != nil {
		if database.IsDuplicateKey(err) {
			return domain.ErrDuplicateReview
		}
		return fmt.Errorf("insert review: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		review.ID = oid
	}
	return nil
}

// Find returns one page of reviews, newest first.
func (r *ReviewRepository) Find(ctx context.Context, filter repository.ReviewFilter, page pagination.Params) (reviews []domain.Review, err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemMongo, "FindReviews", "reviews.find")
	defer func() { end(err) }()

	q := bson.D{}
	if !filter.UserKey.IsZero() {
		q = append(q, bson.E{Key: "user_key", Value: filter.UserKey})
	}
	if !filter.ItemKey.IsZero() {
		q = append(q, bson.E{Key: "item_key", Value: filter.ItemKey})
	}
	opts := options.Find().
		SetSort(newestFirst).
		SetSkip(int64(page.Offset)).
		SetLimit(int64(page.PerPage))

	cur, err := r.coll.Find(ctx, q, opts)
	if err != nil {
		return nil, fmt.Errorf("find reviews: %w", err)
	}
	reviews = []domain.Review{}
	if err := cur.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("decode reviews: %w", err)
	}
	return reviews, nil
}

// DeleteOwned deletes with a single filter on id and owner, so a foreign
// review and a missing one are indistinguishable.
func (r *ReviewRepository) DeleteOwned(ctx context.Context, reviewID string, user identity.Key) (err error) {
	oid, err := primitive.ObjectIDFromHex(reviewID)
	if err != nil {
		return domain.ErrReviewNotOwned
	}

	ctx, end := database.TraceQuery(ctx, database.SystemMongo, "DeleteReview", "reviews.deleteOne")
	defer func() { end(err) }()

	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}, {Key: "user_key", Value: user}})
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrReviewNotOwned
	}
	return nil
}

func pairFilter(user, item identity.Key) bson.D {
	return bson.D{{Key: "user_key", Value: user}, {Key: "item_key", Value: item}}
}
