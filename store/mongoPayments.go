package store

import (
	"context"
	"fmt"

	"cityfixer-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoPayments is the MongoDB-backed PaymentStore.
type MongoPayments struct {
	coll *mongo.Collection
}

func NewMongoPayments(db *mongo.Database) *MongoPayments {
	return &MongoPayments{coll: db.Collection(models.PaymentsCollection)}
}

func (s *MongoPayments) Create(ctx context.Context, payment *models.Payment) (InsertResult, error) {
	if payment.ID.IsZero() {
		payment.ID = primitive.NewObjectID()
	}
	payment.CreatedAt = now()

	if _, err := s.coll.InsertOne(ctx, payment); err != nil {
		return InsertResult{}, fmt.Errorf("insert payment: %w", err)
	}
	return InsertResult{Acknowledged: true, InsertedID: payment.ID}, nil
}

func (s *MongoPayments) List(ctx context.Context) ([]models.Payment, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := s.coll.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("find payments: %w", err)
	}
	defer cursor.Close(ctx)

	payments := []models.Payment{}
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("decode payments: %w", err)
	}
	return payments, nil
}
