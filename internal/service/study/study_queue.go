package study

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lalabalavujon-a11y/Professional-Diver.app-sub002/internal/domain"
)

// GetDueQueue builds the daily study queue for one (user, deck) pair: all
// non-suspended cards whose due time has passed, ordered by due time, topped
// up with never-seen cards capped by the deck's new-per-day limit.
//
// The due portion is intentionally not capped by ReviewsPerDay; that option
// is stored but not enforced here.
func (s *Service) GetDueQueue(ctx context.Context, input DueQueueInput) (*QueueResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit == 0 {
		limit = defaultQueueLimit
	}

	now := input.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	opts, err := s.options.GetOrCreate(ctx, input.DeckID)
	if err != nil {
		return nil, fmt.Errorf("resolve deck options: %w", err)
	}

	due, err := s.states.ListDue(ctx, input.UserID, input.DeckID, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list due cards: %w", err)
	}

	items := due
	if remaining := limit - len(due); remaining > 0 && opts.NewPerDay > 0 {
		newLimit := min(remaining, opts.NewPerDay)

		unseen, err := s.states.ListUnseen(ctx, input.UserID, input.DeckID, newLimit)
		if err != nil {
			return nil, fmt.Errorf("list unseen cards: %w", err)
		}

		for _, card := range unseen {
			items = append(items, domain.QueueEntry{
				Card:  card,
				State: domain.NewStudyState(input.UserID, card.ID, now),
			})
		}
	}

	s.log.InfoContext(ctx, "study queue generated",
		slog.String("user_id", input.UserID.String()),
		slog.String("deck_id", input.DeckID.String()),
		slog.Int("due_count", len(due)),
		slog.Int("new_count", len(items)-len(due)),
		slog.Int("total", len(items)),
	)

	return &QueueResult{
		Options: opts,
		Items:   items,
		Now:     now,
	}, nil
}
