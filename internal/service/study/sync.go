package study

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lalabalavujon-a11y/Professional-Diver.app-sub002/internal/domain"
)

// Pull returns one incremental sync page: all review events recorded after
// the cursor and all study states updated after it, each capped at the
// configured page size, plus the cursor to resume from.
//
// Pulling is strictly additive and idempotent: the same cursor yields the
// same results (or a superset if new data arrived in between).
func (s *Service) Pull(ctx context.Context, input PullInput) (*domain.SyncPage, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	since := time.UnixMilli(input.Since).UTC()

	events, err := s.events.ListSince(ctx, input.UserID, since, s.syncPageSize)
	if err != nil {
		return nil, fmt.Errorf("list events since cursor: %w", err)
	}

	states, err := s.states.ListUpdatedSince(ctx, input.UserID, since, s.syncPageSize)
	if err != nil {
		return nil, fmt.Errorf("list states since cursor: %w", err)
	}

	cursor := since
	for _, e := range events {
		if e.ReviewedAt.After(cursor) {
			cursor = e.ReviewedAt
		}
	}
	for _, st := range states {
		if st.UpdatedAt.After(cursor) {
			cursor = st.UpdatedAt
		}
	}

	s.log.DebugContext(ctx, "sync pull served",
		slog.String("user_id", input.UserID.String()),
		slog.Int("events", len(events)),
		slog.Int("states", len(states)),
		slog.Time("next_cursor", cursor),
	)

	return &domain.SyncPage{
		Events:     events,
		States:     states,
		NextCursor: cursor,
	}, nil
}
