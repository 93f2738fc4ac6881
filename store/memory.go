package store

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"sync"

	"cityfixer-be/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The in-memory stores mirror the MongoDB ones for tests and local runs.
// Each call holds the store's mutex for its whole duration, which gives the
// same single-call atomicity the MongoDB implementation relies on.

// MemoryIssues is an in-process IssueStore.
type MemoryIssues struct {
	mu     sync.Mutex
	issues map[primitive.ObjectID]*models.Issue
}

func NewMemoryIssues() *MemoryIssues {
	return &MemoryIssues{issues: make(map[primitive.ObjectID]*models.Issue)}
}

func cloneIssue(issue *models.Issue) models.Issue {
	out := *issue
	out.UpvotedBy = append([]string{}, issue.UpvotedBy...)
	if issue.UpdatedAt != nil {
		t := *issue.UpdatedAt
		out.UpdatedAt = &t
	}
	return out
}

// newerID reports whether a was generated after b.
func newerID(a, b primitive.ObjectID) bool {
	return bytes.Compare(a[:], b[:]) > 0
}

func (s *MemoryIssues) Create(_ context.Context, issue *models.Issue) (InsertResult, error) {
	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	if issue.CreatedAt.IsZero() {
		issue.CreatedAt = now()
	}
	if issue.UpvotedBy == nil {
		issue.UpvotedBy = []string{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := cloneIssue(issue)
	s.issues[issue.ID] = &stored
	return InsertResult{Acknowledged: true, InsertedID: issue.ID}, nil
}

func (s *MemoryIssues) Find(_ context.Context, q IssueQuery) ([]models.Issue, error) {
	s.mu.Lock()
	matched := make([]models.Issue, 0, len(s.issues))
	for _, issue := range s.issues {
		if matches(q, issue) {
			matched = append(matched, cloneIssue(issue))
		}
	}
	s.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool {
		if q.Order == OrderPriority {
			ri, rj := models.PriorityRank(matched[i].Priority), models.PriorityRank(matched[j].Priority)
			if ri != rj {
				return ri < rj
			}
		}
		return newerID(matched[i].ID, matched[j].ID)
	})

	if q.Skip > 0 {
		if q.Skip >= int64(len(matched)) {
			return []models.Issue{}, nil
		}
		matched = matched[q.Skip:]
	}
	if q.Limit > 0 && q.Limit < int64(len(matched)) {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

func matches(q IssueQuery, issue *models.Issue) bool {
	if q.ID != nil && *q.ID != issue.ID {
		return false
	}
	if len(q.Status) > 0 && !contains(q.Status, string(issue.Status)) {
		return false
	}
	if len(q.Priority) > 0 && !contains(q.Priority, string(issue.Priority)) {
		return false
	}
	if len(q.Category) > 0 && !contains(q.Category, issue.Category) {
		return false
	}
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		hit := false
		for _, field := range []string{issue.Title, issue.Category, issue.Location} {
			if strings.Contains(strings.ToLower(field), needle) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func (s *MemoryIssues) Get(_ context.Context, id primitive.ObjectID) (*models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	issue, ok := s.issues[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneIssue(issue)
	return &out, nil
}

func (s *MemoryIssues) Exists(_ context.Context, id primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.issues[id]
	return ok, nil
}

func (s *MemoryIssues) Resolved(_ context.Context) ([]models.Issue, error) {
	s.mu.Lock()
	resolved := []models.Issue{}
	for _, issue := range s.issues {
		if issue.Status == models.Resolved {
			resolved = append(resolved, cloneIssue(issue))
		}
	}
	s.mu.Unlock()

	sort.Slice(resolved, func(i, j int) bool {
		if !resolved[i].CreatedAt.Equal(resolved[j].CreatedAt) {
			return resolved[i].CreatedAt.After(resolved[j].CreatedAt)
		}
		return newerID(resolved[i].ID, resolved[j].ID)
	})
	if len(resolved) > ResolvedLimit {
		resolved = resolved[:ResolvedLimit]
	}
	return resolved, nil
}

func (s *MemoryIssues) EstimatedCount(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return int64(len(s.issues)), nil
}

func (s *MemoryIssues) Update(_ context.Context, id primitive.ObjectID, update models.IssueUpdate) (UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	issue, ok := s.issues[id]
	if !ok {
		return UpdateResult{Acknowledged: true}, nil
	}

	if update.Title != nil {
		issue.Title = *update.Title
	}
	if update.Description != nil {
		issue.Description = *update.Description
	}
	if update.Category != nil {
		issue.Category = *update.Category
	}
	if update.Location != nil {
		issue.Location = *update.Location
	}
	if update.Image != nil {
		issue.Image = *update.Image
	}
	if update.Status != nil {
		issue.Status = *update.Status
	}
	if update.Priority != nil {
		issue.Priority = *update.Priority
	}
	at := now()
	issue.UpdatedAt = &at

	return UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
}

func (s *MemoryIssues) Upvote(_ context.Context, id primitive.ObjectID, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	issue, ok := s.issues[id]
	if !ok || contains(issue.UpvotedBy, email) {
		return ErrAlreadyUpvoted
	}
	issue.Upvotes++
	issue.UpvotedBy = append(issue.UpvotedBy, email)
	return nil
}

func (s *MemoryIssues) Delete(_ context.Context, id primitive.ObjectID) (DeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.issues[id]; !ok {
		return DeleteResult{Acknowledged: true}, nil
	}
	delete(s.issues, id)
	return DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
}

// MemoryPayments is an in-process PaymentStore.
type MemoryPayments struct {
	mu       sync.Mutex
	payments []models.Payment
}

func NewMemoryPayments() *MemoryPayments {
	return &MemoryPayments{}
}

func (s *MemoryPayments) Create(_ context.Context, payment *models.Payment) (InsertResult, error) {
	if payment.ID.IsZero() {
		payment.ID = primitive.NewObjectID()
	}
	payment.CreatedAt = now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.payments = append(s.payments, *payment)
	return InsertResult{Acknowledged: true, InsertedID: payment.ID}, nil
}

func (s *MemoryPayments) List(_ context.Context) ([]models.Payment, error) {
	s.mu.Lock()
	out := append([]models.Payment{}, s.payments...)
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return newerID(out[i].ID, out[j].ID)
	})
	return out, nil
}

// MemoryCounters is an in-process Sequencer.
type MemoryCounters struct {
	mu     sync.Mutex
	values map[string]int64
}

func NewMemoryCounters() *MemoryCounters {
	return &MemoryCounters{values: make(map[string]int64)}
}

func (s *MemoryCounters) Next(_ context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[name]++
	return s.values[name], nil
}
