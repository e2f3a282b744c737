package study

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lalabalavujon-a11y/Professional-Diver.app-sub002/internal/domain"
)

// GetDeckProgress returns aggregated study statistics for one (user, deck)
// pair: card counts per state, the number currently due, and the number of
// suspended (leech) cards.
func (s *Service) GetDeckProgress(ctx context.Context, userID, deckID uuid.UUID) (*domain.DeckProgress, error) {
	if userID == uuid.Nil {
		return nil, domain.NewValidationError("user_id", "required")
	}
	if deckID == uuid.Nil {
		return nil, domain.NewValidationError("deck_id", "required")
	}

	counts, err := s.states.CountByState(ctx, userID, deckID)
	if err != nil {
		return nil, fmt.Errorf("count by state: %w", err)
	}

	due, err := s.states.CountDue(ctx, userID, deckID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("count due: %w", err)
	}

	suspended, err := s.states.CountSuspended(ctx, userID, deckID)
	if err != nil {
		return nil, fmt.Errorf("count suspended: %w", err)
	}

	return &domain.DeckProgress{
		StateCounts:    counts,
		DueCount:       due,
		SuspendedCount: suspended,
	}, nil
}

// GetCardHistory returns the card's review events, newest first, with
// limit/offset pagination, plus the total count.
func (s *Service) GetCardHistory(ctx context.Context, input HistoryInput) ([]domain.ReviewEvent, int, error) {
	if err := input.Validate(); err != nil {
		return nil, 0, err
	}

	events, total, err := s.events.ListByCard(ctx, input.UserID, input.CardID, input.Limit, input.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list card history: %w", err)
	}

	return events, total, nil
}

// ListLeeches returns the user's suspended cards in a deck so they can be
// surfaced for manual intervention. Suspension itself is algorithm-driven
// and sticky; this is a read-only view.
func (s *Service) ListLeeches(ctx context.Context, userID, deckID uuid.UUID, limit int) ([]domain.QueueEntry, error) {
	if userID == uuid.Nil {
		return nil, domain.NewValidationError("user_id", "required")
	}
	if deckID == uuid.Nil {
		return nil, domain.NewValidationError("deck_id", "required")
	}
	if limit <= 0 {
		limit = defaultQueueLimit
	}

	entries, err := s.states.ListSuspended(ctx, userID, deckID, limit)
	if err != nil {
		return nil, fmt.Errorf("list suspended cards: %w", err)
	}

	return entries, nil
}
