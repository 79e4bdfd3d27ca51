package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domain "github.com/nethra1406/whatsappbot/internal/entity"
	"github.com/nethra1406/whatsappbot/internal/usecase"
)

type MongoOrderRepo struct {
	col *mongo.Collection
}

func NewMongoOrderRepo(db *mongo.Database) *MongoOrderRepo {
	return &MongoOrderRepo{col: db.Collection("orders")}
}

// EnsureIndexes creates the unique index on orderId. The id allocator is
// collision-free in process; the index rejects duplicates across restarts
// or multiple writers.
func (r *MongoOrderRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "orderId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("ensure order indexes: %w", err)
	}
	return nil
}

func (r *MongoOrderRepo) Insert(ctx context.Context, o *domain.Order) error {
	if _, err := r.col.InsertOne(ctx, o); err != nil {
		return fmt.Errorf("insert order %s: %w", o.OrderID, err)
	}
	return nil
}

func (r *MongoOrderRepo) GetByID(ctx context.Context, orderID string) (*domain.Order, error) {
	var o domain.Order
	err := r.col.FindOne(ctx, bson.M{"orderId": orderID}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find order %s: %w", orderID, err)
	}
	return &o, nil
}

// AssignIf is the single-claim compare-and-set: the filter pins both the id
// and the pending status, so of N racing claims exactly one update matches.
func (r *MongoOrderRepo) AssignIf(ctx context.Context, orderID, vendorID string, at time.Time) (*domain.Order, error) {
	filter := bson.M{"orderId": orderID, "status": domain.StatusPending}
	update := bson.M{"$set": bson.M{
		"status":     domain.StatusAssigned,
		"vendorId":   vendorID,
		"assignedAt": at,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var o domain.Order
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("assign order %s: %w", orderID, err)
	}
	return &o, nil
}

func (r *MongoOrderRepo) ListPending(ctx context.Context) ([]domain.Order, error) {
	return r.ListByStatus(ctx, domain.StatusPending)
}

// ListByStatus returns orders most recently created first.
func (r *MongoOrderRepo) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{"status": status}, opts)
	if err != nil {
		return nil, fmt.Errorf("list %s orders: %w", status, err)
	}
	var orders []domain.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("decode %s orders: %w", status, err)
	}
	return orders, nil
}

var _ usecase.OrderRepo = (*MongoOrderRepo)(nil)
