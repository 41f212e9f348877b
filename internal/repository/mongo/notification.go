package mongo

import (
	"context"
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
)

// NotificationRepository implements repository.NotificationRepository on
// MongoDB.
type NotificationRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

var _ repository.NotificationRepository = (*NotificationRepository)(nil)

// NewNotificationRepository creates a notification repository over coll.
func NewNotificationRepository(coll *mongo.Collection) *NotificationRepository {
	return &NotificationRepository{coll: coll, now: time.Now}
}

// Create inserts n as unread.
func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemMongo, "InsertNotification", "notifications.insertOne")
	defer func() { end(err) }()

	now := r.now().UTC().Truncate(time.Millisecond)
	n.CreatedAt, n.UpdatedAt = now, now
	n.Read = false

	res, err := r.coll.InsertOne(ctx, n)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		n.ID = oid
	}
	return nil
}

// ListForUser returns at most limit notifications, newest first.
func (r *NotificationRepository) ListForUser(ctx context.Context, user identity.Key, limit int) (out []domain.Notification, err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemMongo, "ListNotifications", "notifications.find")
	defer func() { end(err) }()

	opts := options.Find().SetSort(newestFirst).SetLimit(int64(limit))
	cur, err := r.coll.Find(ctx, bson.D{{Key: "user_key", Value: user}}, opts)
	if err != nil {
		return nil, fmt.Errorf("find notifications: %w", err)
	}
	out = []domain.Notification{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode notifications: %w", err)
	}
	return out, nil
}

// MarkAllRead flips the user's unread notifications in one update. Already
// read ones are excluded by the filter, so a repeat call changes nothing.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, user identity.Key) (modified int64, err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemMongo, "MarkAllRead", "notifications.updateMany")
	defer func() { end(err) }()

	filter := bson.D{{Key: "user_key", Value: user}, {Key: "read", Value: false}}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "read", Value: true},
		{Key: "updated_at", Value: r.now().UTC()},
	}}}

	res, err := r.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	return res.ModifiedCount, nil
}
