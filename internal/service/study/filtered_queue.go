package study

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lalabalavujon-a11y/Professional-Diver.app-sub002/internal/domain"
)

// GetFilteredQueue builds an ad-hoc study queue, optionally restricted to one
// tag and/or to due cards only. Unlike GetDueQueue it applies no new-card
// daily cap: any matching non-suspended card is returned, ordered by due time
// (never-seen cards sort as due now), then by card creation time.
func (s *Service) GetFilteredQueue(ctx context.Context, input FilteredQueueInput) ([]domain.QueueEntry, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit == 0 {
		limit = defaultQueueLimit
	}

	now := time.Now().UTC()

	entries, err := s.states.ListFiltered(ctx, domain.QueueFilter{
		UserID:  input.UserID,
		DeckID:  input.DeckID,
		TagID:   input.TagID,
		DueOnly: input.DueOnly,
		Now:     now,
		Limit:   limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list filtered cards: %w", err)
	}

	s.log.InfoContext(ctx, "filtered queue generated",
		slog.String("user_id", input.UserID.String()),
		slog.String("deck_id", input.DeckID.String()),
		slog.Bool("due_only", input.DueOnly),
		slog.Bool("by_tag", input.TagID != nil),
		slog.Int("total", len(entries)),
	)

	return entries, nil
}
