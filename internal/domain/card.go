package domain

import (
	"time"

	"github.com/google/uuid"
)

// Card is a front/back content pair belonging to one deck. The optional
// source fields record where the card was generated from (e.g. a lesson).
type Card struct {
	ID         uuid.UUID
	DeckID     uuid.UUID
	Front      string
	Back       string
	SourceType *string
	SourceID   *uuid.UUID
	CreatedAt  time.Time
}

// Tag is a named label attached to cards via a many-to-many relation.
type Tag struct {
	ID   uuid.UUID
	Name string
}

// StudyState is the per-(user, card) scheduling state. The row does not
// exist until the user's first encounter with the card; a missing row is
// equivalent to NewStudyState.
type StudyState struct {
	UserID uuid.UUID
	CardID uuid.UUID

	State CardState

	// DueAt is when the card next becomes eligible for review. It always
	// reflects the most recent scheduling decision.
	DueAt time.Time

	// IntervalDays is the current spacing interval, meaningful once the
	// card is in REVIEW state.
	IntervalDays float64

	// Ease is the per-card SM-2 ease factor, always within [1.3, 3.0].
	Ease float64

	// Reps counts consecutive successful repetitions since the last lapse.
	Reps int

	// Lapses counts cumulative AGAIN outcomes.
	Lapses int

	// Suspended is set once Lapses reaches the deck's leech threshold.
	// Suspended cards are excluded from queues and reject review submission.
	Suspended bool

	LastReviewedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewStudyState returns the implicit default state for a card the user has
// never reviewed: NEW, due immediately, default ease.
func NewStudyState(userID, cardID uuid.UUID, now time.Time) StudyState {
	return StudyState{
		UserID: userID,
		CardID: cardID,
		State:  CardStateNew,
		DueAt:  now,
		Ease:   DefaultEase,
	}
}

// IsDue reports whether the card needs review at the given time.
// NEW cards are always due.
func (s *StudyState) IsDue(now time.Time) bool {
	if s.State == CardStateNew {
		return true
	}
	return !s.DueAt.After(now)
}

// Snapshot captures the scheduling-relevant fields of a study state, stored
// on both sides of every review event.
type Snapshot struct {
	State        CardState
	DueAt        time.Time
	IntervalDays float64
	Ease         float64
}

// Snapshot extracts the event snapshot from a study state.
func (s *StudyState) Snapshot() Snapshot {
	return Snapshot{
		State:        s.State,
		DueAt:        s.DueAt,
		IntervalDays: s.IntervalDays,
		Ease:         s.Ease,
	}
}

// ReviewEvent is the immutable, append-only record of one review. Events are
// never updated or deleted; they are the audit trail and the sync source.
type ReviewEvent struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	DeckID     uuid.UUID
	CardID     uuid.UUID
	Grade      ReviewGrade
	Confidence *Confidence
	Prev       Snapshot
	Next       Snapshot
	DurationMs *int
	ReviewedAt time.Time
}
