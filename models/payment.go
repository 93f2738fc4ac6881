package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment records a completed checkout for an issue. Payments are append-only.
type Payment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	IssueID       primitive.ObjectID `bson:"issueId" json:"issueId"`
	Title         string             `bson:"title,omitempty" json:"title,omitempty"`
	Email         string             `bson:"email,omitempty" json:"email,omitempty"`
	Amount        int64              `bson:"amount,omitempty" json:"amount,omitempty"`
	Currency      string             `bson:"currency,omitempty" json:"currency,omitempty"`
	TransactionID string             `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}
