package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueStatus is open-ended; these are the values the service itself assigns or reads.
type IssueStatus string

const (
	Pending    IssueStatus = "Pending"
	InProgress IssueStatus = "In Progress"
	Resolved   IssueStatus = "Resolved"
)

// IssuePriority enum
type IssuePriority string

const (
	High   IssuePriority = "High"
	Medium IssuePriority = "Medium"
	Low    IssuePriority = "Low"
)

// UnrankedPriority is the sort rank of an issue with no (or an unknown) priority.
const UnrankedPriority = 4

// PriorityRanks maps each known priority to its ascending sort rank.
var PriorityRanks = []struct {
	Priority IssuePriority
	Rank     int
}{
	{High, 1},
	{Medium, 2},
	{Low, 3},
}

// PriorityRank returns the sort rank for p, UnrankedPriority when p is unset or unknown.
func PriorityRank(p IssuePriority) int {
	for _, r := range PriorityRanks {
		if r.Priority == p {
			return r.Rank
		}
	}
	return UnrankedPriority
}

// Issue represents a civic issue reported by a citizen
type Issue struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	TrackingID    string             `bson:"trackingId" json:"trackingId"`
	Title         string             `bson:"title" json:"title"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	Category      string             `bson:"category" json:"category"`
	Location      string             `bson:"location" json:"location"`
	Image         string             `bson:"image,omitempty" json:"image,omitempty"`
	Status        IssueStatus        `bson:"status" json:"status"`
	Priority      IssuePriority      `bson:"priority,omitempty" json:"priority,omitempty"`
	ReporterEmail string             `bson:"reporterEmail,omitempty" json:"reporterEmail,omitempty"`
	Upvotes       int64              `bson:"upvotes" json:"upvotes"`
	UpvotedBy     []string           `bson:"upvotedBy" json:"upvotedBy"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     *time.Time         `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// IssueUpdate holds the fields a partial update may set. Nil fields are left untouched.
type IssueUpdate struct {
	Title       *string        `json:"title,omitempty"`
	Description *string        `json:"description,omitempty"`
	Category    *string        `json:"category,omitempty"`
	Location    *string        `json:"location,omitempty"`
	Image       *string        `json:"image,omitempty"`
	Status      *IssueStatus   `json:"status,omitempty"`
	Priority    *IssuePriority `json:"priority,omitempty" binding:"omitempty,oneof=High Medium Low"`
}

// Fields returns the update as a bson-ready field map keyed by document field name.
func (u IssueUpdate) Fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if u.Title != nil {
		fields["title"] = *u.Title
	}
	if u.Description != nil {
		fields["description"] = *u.Description
	}
	if u.Category != nil {
		fields["category"] = *u.Category
	}
	if u.Location != nil {
		fields["location"] = *u.Location
	}
	if u.Image != nil {
		fields["image"] = *u.Image
	}
	if u.Status != nil {
		fields["status"] = *u.Status
	}
	if u.Priority != nil {
		fields["priority"] = *u.Priority
	}
	return fields
}

// TrackingSequence is the counter name backing issue tracking ids.
const TrackingSequence = "issueTracking"

// FormatTrackingID renders a tracking id as CF-<year>-<seq>, padding seq to five digits.
func FormatTrackingID(year int, seq int64) string {
	return fmt.Sprintf("CF-%d-%05d", year, seq)
}
