// Package tracking allocates human-readable issue tracking ids.
package tracking

import (
	"context"
	"fmt"
	"time"

	"cityfixer-be/models"
	"cityfixer-be/store"
)

// Allocator turns increments of the issueTracking sequence into CF-<year>-<seq> ids.
// Callers need no coordination: uniqueness comes from the Sequencer's atomic increment.
// The sequence never resets, so numbering keeps growing across years.
type Allocator struct {
	seq store.Sequencer
	now func() time.Time
}

func NewAllocator(seq store.Sequencer) *Allocator {
	return &Allocator{seq: seq, now: time.Now}
}

// WithClock replaces the clock used to stamp the year.
func (a *Allocator) WithClock(now func() time.Time) *Allocator {
	a.now = now
	return a
}

// Allocate returns the next tracking id.
func (a *Allocator) Allocate(ctx context.Context) (string, error) {
	n, err := a.seq.Next(ctx, models.TrackingSequence)
	if err != nil {
		return "", fmt.Errorf("allocate tracking id: %w", err)
	}
	return models.FormatTrackingID(a.now().Year(), n), nil
}
