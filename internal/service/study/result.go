package study

import (
	"time"

	"github.com/google/uuid"

	"github.com/lalabalavujon-a11y/Professional-Diver.app-sub002/internal/domain"
)

// QueueResult is the outcome of building the daily study queue: the ordered
// entries (due first, then new), the resolved deck options, and the snapshot
// time the selection was made against.
type QueueResult struct {
	Options domain.DeckOptions
	Items   []domain.QueueEntry
	Now     time.Time
}

// ReviewResult is the outcome of one review submission.
type ReviewResult struct {
	EventID   uuid.UUID
	State     domain.StudyState
	Suspended bool
}
