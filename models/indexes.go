package models

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	IssuesCollection   = "issues"
	PaymentsCollection = "payments"
	CountersCollection = "counters"
)

// EnsureIssueIndexes creates a unique index on trackingId and the index backing the resolved feed
func EnsureIssueIndexes(collection *mongo.Collection) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "trackingId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexModels)
	return err
}

// EnsurePaymentIndex creates the index used to list payments newest first
func EnsurePaymentIndex(collection *mongo.Collection) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	}

	_, err := collection.Indexes().CreateOne(ctx, indexModel)
	return err
}

// EnsureIndexes creates every index the service relies on
func EnsureIndexes(db *mongo.Database) error {
	if err := EnsureIssueIndexes(db.Collection(IssuesCollection)); err != nil {
		return err
	}
	return EnsurePaymentIndex(db.Collection(PaymentsCollection))
}
