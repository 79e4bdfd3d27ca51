package repo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nethra1406/whatsappbot/internal/usecase"
)

type MongoVendorRepo struct {
	col *mongo.Collection
	now func() time.Time
}

func NewMongoVendorRepo(db *mongo.Database) *MongoVendorRepo {
	return &MongoVendorRepo{col: db.Collection("vendors"), now: time.Now}
}

// EnsureIndexes creates the unique index on phone, the key Upsert and
// LinkOrder address vendors by.
func (r *MongoVendorRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "phone", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("ensure vendor indexes: %w", err)
	}
	return nil
}

// Upsert creates the vendor document on first claim; $setOnInsert keeps a
// re-run from touching an existing record.
func (r *MongoVendorRepo) Upsert(ctx context.Context, phone string) error {
	update := bson.M{"$setOnInsert": bson.M{
		"phone":          phone,
		"assignedOrders": []string{},
		"createdAt":      r.now(),
	}}
	_, err := r.col.UpdateOne(ctx, bson.M{"phone": phone}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert vendor %s: %w", phone, err)
	}
	return nil
}

// LinkOrder records the claim on the vendor; $addToSet makes replays a no-op.
func (r *MongoVendorRepo) LinkOrder(ctx context.Context, phone, orderID string) error {
	update := bson.M{"$addToSet": bson.M{"assignedOrders": orderID}}
	_, err := r.col.UpdateOne(ctx, bson.M{"phone": phone}, update)
	if err != nil {
		return fmt.Errorf("link order %s to vendor %s: %w", orderID, phone, err)
	}
	return nil
}

var _ usecase.VendorRepo = (*MongoVendorRepo)(nil)
