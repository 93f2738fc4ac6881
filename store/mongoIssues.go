package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cityfixer-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoIssues is the MongoDB-backed IssueStore.
type MongoIssues struct {
	coll *mongo.Collection
}

func NewMongoIssues(db *mongo.Database) *MongoIssues {
	return &MongoIssues{coll: db.Collection(models.IssuesCollection)}
}

// now truncates to the millisecond precision BSON dates carry.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func (s *MongoIssues) Create(ctx context.Context, issue *models.Issue) (InsertResult, error) {
	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	if issue.CreatedAt.IsZero() {
		issue.CreatedAt = now()
	}
	if issue.UpvotedBy == nil {
		issue.UpvotedBy = []string{}
	}

	if _, err := s.coll.InsertOne(ctx, issue); err != nil {
		return InsertResult{}, fmt.Errorf("insert issue: %w", err)
	}
	return InsertResult{Acknowledged: true, InsertedID: issue.ID}, nil
}

func (s *MongoIssues) Find(ctx context.Context, q IssueQuery) ([]models.Issue, error) {
	cursor, err := s.coll.Aggregate(ctx, q.Pipeline())
	if err != nil {
		return nil, fmt.Errorf("aggregate issues: %w", err)
	}
	defer cursor.Close(ctx)

	issues := []models.Issue{}
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, fmt.Errorf("decode issues: %w", err)
	}
	return issues, nil
}

func (s *MongoIssues) Get(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	var issue models.Issue
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&issue)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find issue: %w", err)
	}
	return &issue, nil
}

func (s *MongoIssues) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	count, err := s.coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count issue: %w", err)
	}
	return count > 0, nil
}

func (s *MongoIssues) Resolved(ctx context.Context) ([]models.Issue, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(ResolvedLimit)

	cursor, err := s.coll.Find(ctx, bson.M{"status": models.Resolved}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("find resolved issues: %w", err)
	}
	defer cursor.Close(ctx)

	issues := []models.Issue{}
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, fmt.Errorf("decode resolved issues: %w", err)
	}
	return issues, nil
}

// EstimatedCount reads collection metadata and ignores every filter.
func (s *MongoIssues) EstimatedCount(ctx context.Context) (int64, error) {
	count, err := s.coll.EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("estimate issue count: %w", err)
	}
	return count, nil
}

func (s *MongoIssues) Update(ctx context.Context, id primitive.ObjectID, update models.IssueUpdate) (UpdateResult, error) {
	fields := update.Fields()
	fields["updatedAt"] = now()

	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return UpdateResult{}, fmt.Errorf("update issue: %w", err)
	}
	return UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
	}, nil
}

// Upvote is a single pipeline update so that documents whose upvote fields
// are null or missing are treated as zero votes instead of failing the update.
func (s *MongoIssues) Upvote(ctx context.Context, id primitive.ObjectID, email string) error {
	filter := bson.M{
		"_id":       id,
		"upvotedBy": bson.M{"$ne": email},
	}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"upvotes": bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$upvotes", 0}}, 1}},
			"upvotedBy": bson.M{"$concatArrays": bson.A{
				bson.M{"$ifNull": bson.A{"$upvotedBy", bson.A{}}},
				bson.A{bson.M{"$literal": email}},
			}},
		}}},
	}

	res, err := s.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("upvote issue: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrAlreadyUpvoted
	}
	return nil
}

func (s *MongoIssues) Delete(ctx context.Context, id primitive.ObjectID) (DeleteResult, error) {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return DeleteResult{}, fmt.Errorf("delete issue: %w", err)
	}
	return DeleteResult{Acknowledged: true, DeletedCount: res.DeletedCount}, nil
}
