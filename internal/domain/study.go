package domain

import (
	"time"

	"github.com/google/uuid"
)

// QueueEntry pairs a card with the user's study state in a queue result.
// For never-seen cards the state is the implicit NEW default.
type QueueEntry struct {
	Card  Card
	State StudyState
}

// QueueFilter describes the ad-hoc (filtered/tag) queue query. Unlike the
// daily queue it applies no new-card cap and may include cards that are not
// yet due.
type QueueFilter struct {
	UserID  uuid.UUID
	DeckID  uuid.UUID
	TagID   *uuid.UUID
	DueOnly bool
	Now     time.Time
	Limit   int
}

// StateCounts holds the count of a user's cards per scheduling state within
// one deck.
type StateCounts struct {
	New        int
	Learning   int
	Review     int
	Relearning int
	Total      int
}

// DeckProgress holds aggregated study statistics for one (user, deck) pair.
type DeckProgress struct {
	StateCounts    StateCounts
	DueCount       int
	SuspendedCount int
}

// SyncPage is one incremental page of a user's review history and study
// states, produced by the sync pull operation.
type SyncPage struct {
	Events []ReviewEvent
	States []StudyState

	// NextCursor is the cursor to resume from: the maximum of the request
	// cursor and every timestamp seen in this page.
	NextCursor time.Time
}
