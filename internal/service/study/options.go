package study

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lalabalavujon-a11y/Professional-Diver.app-sub002/internal/domain"
)

// GetOptions resolves the scheduling options for a deck, lazily creating the
// options row with defaults on first access. Unknown decks fail with
// domain.ErrNotFound.
func (s *Service) GetOptions(ctx context.Context, deckID uuid.UUID) (domain.DeckOptions, error) {
	if deckID == uuid.Nil {
		return domain.DeckOptions{}, domain.NewValidationError("deck_id", "required")
	}

	opts, err := s.options.GetOrCreate(ctx, deckID)
	if err != nil {
		return domain.DeckOptions{}, fmt.Errorf("get deck options: %w", err)
	}

	return opts, nil
}

// UpdateOptions merges the supplied fields over the deck's current options.
// Unset fields are retained.
func (s *Service) UpdateOptions(ctx context.Context, input UpdateOptionsInput) (domain.DeckOptions, error) {
	if err := input.Validate(); err != nil {
		return domain.DeckOptions{}, err
	}

	// Resolve first so a deck reviewed for the first time through an
	// options edit still gets its row initialized with defaults.
	if _, err := s.options.GetOrCreate(ctx, input.DeckID); err != nil {
		return domain.DeckOptions{}, fmt.Errorf("resolve deck options: %w", err)
	}

	opts, err := s.options.Update(ctx, input.DeckID, input.Patch)
	if err != nil {
		return domain.DeckOptions{}, fmt.Errorf("update deck options: %w", err)
	}

	s.log.InfoContext(ctx, "deck options updated",
		slog.String("deck_id", input.DeckID.String()),
		slog.Int("new_per_day", opts.NewPerDay),
		slog.Int("leech_threshold", opts.LeechThreshold),
	)

	return opts, nil
}
