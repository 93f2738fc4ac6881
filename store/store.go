// Package store is the document-store layer behind the issue and payment
// handlers. Every mutation that guards an invariant (sequence allocation,
// vote de-duplication) is a single atomic call against the backing store.
package store

import (
	"context"
	"errors"

	"cityfixer-be/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrAlreadyUpvoted = errors.New("already upvoted")
	ErrInvalidID      = errors.New("invalid id")
)

// InsertResult mirrors the acknowledgement returned for a single insert.
type InsertResult struct {
	Acknowledged bool               `json:"acknowledged"`
	InsertedID   primitive.ObjectID `json:"insertedId"`
}

// UpdateResult mirrors the acknowledgement returned for a single update.
type UpdateResult struct {
	Acknowledged  bool  `json:"acknowledged"`
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

// DeleteResult mirrors the acknowledgement returned for a single delete.
type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

// Sequencer hands out monotonically increasing values per sequence name.
// Next increments and returns the post-increment value in one atomic step,
// creating the sequence on first use so the first value is 1.
type Sequencer interface {
	Next(ctx context.Context, name string) (int64, error)
}

// IssueStore persists issues.
type IssueStore interface {
	Create(ctx context.Context, issue *models.Issue) (InsertResult, error)
	Find(ctx context.Context, q IssueQuery) ([]models.Issue, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Issue, error)
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
	Resolved(ctx context.Context) ([]models.Issue, error)
	EstimatedCount(ctx context.Context) (int64, error)
	Update(ctx context.Context, id primitive.ObjectID, update models.IssueUpdate) (UpdateResult, error)
	// Upvote records email's vote on the issue, or returns ErrAlreadyUpvoted
	// when no issue with that id lacks the vote.
	Upvote(ctx context.Context, id primitive.ObjectID, email string) error
	Delete(ctx context.Context, id primitive.ObjectID) (DeleteResult, error)
}

// PaymentStore persists payments. Payments are never updated or deleted.
type PaymentStore interface {
	Create(ctx context.Context, payment *models.Payment) (InsertResult, error)
	List(ctx context.Context) ([]models.Payment, error)
}

// ResolvedLimit caps the resolved-issues feed.
const ResolvedLimit = 6

// ParseObjectID converts a hex id into an ObjectID, returning ErrInvalidID on malformed input.
func ParseObjectID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return id, nil
}
