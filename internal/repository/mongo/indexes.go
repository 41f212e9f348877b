package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	ReviewsCollection       = "reviews"
	NotificationsCollection = "notifications"
)

// UniqueReviewIndex is the name of the index that arbitrates concurrent
// creates for one (user, album) pair.
const UniqueReviewIndex = "uniq_user_item"

func reviewIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_key", Value: 1}, {Key: "item_key", Value: 1}},
			Options: options.Index().SetName(UniqueReviewIndex).SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "item_key", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("item_recent"),
		},
		{
			Keys:    bson.D{{Key: "user_key", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("user_recent"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("recent"),
		},
	}
}

func notificationIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_key", Value: 1}, {Key: "read", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("user_unread"),
		},
		{
			Keys:    bson.D{{Key: "user_key", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("user_recent"),
		},
	}
}

// EnsureIndexes declares the indexes both collections rely on. Creating an
// index that already exists with the same definition is a no-op on the server.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection(ReviewsCollection).Indexes().CreateMany(ctx, reviewIndexes()); err != nil {
		return fmt.Errorf("create review indexes: %w", err)
	}
	if _, err := db.Collection(NotificationsCollection).Indexes().CreateMany(ctx, notificationIndexes()); err != nil {
		return fmt.Errorf("create notification indexes: %w", err)
	}
	return nil
}
