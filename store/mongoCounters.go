package store

import (
	"context"
	"fmt"

	"cityfixer-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCounters is the MongoDB-backed Sequencer.
type MongoCounters struct {
	coll *mongo.Collection
}

func NewMongoCounters(db *mongo.Database) *MongoCounters {
	return &MongoCounters{coll: db.Collection(models.CountersCollection)}
}

func (s *MongoCounters) Next(ctx context.Context, name string) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter models.SequenceCounter
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"sequence_value": 1}},
		opts,
	).Decode(&counter)

	// Two first-time upserts can race on _id; the loser wrote nothing, so the
	// increment is simply reissued against the now-existing document.
	if mongo.IsDuplicateKeyError(err) {
		err = s.coll.FindOneAndUpdate(ctx,
			bson.M{"_id": name},
			bson.M{"$inc": bson.M{"sequence_value": 1}},
			opts,
		).Decode(&counter)
	}
	if err != nil {
		return 0, fmt.Errorf("increment sequence %q: %w", name, err)
	}

	return counter.Value, nil
}
