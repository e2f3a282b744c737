package study

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lalabalavujon-a11y/Professional-Diver.app-sub002/internal/domain"
	"github.com/lalabalavujon-a11y/Professional-Diver.app-sub002/internal/service/study/sm2"
)

// SubmitReview records one review and advances the card's study state.
//
// The read-modify-write runs inside a transaction with the state row locked
// (FOR UPDATE), so concurrent submissions for the same (user, card) pair are
// serialized. The state update and the event append commit together or not
// at all. Suspended cards are rejected with domain.ErrSuspended.
func (s *Service) SubmitReview(ctx context.Context, input SubmitReviewInput) (*ReviewResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	// Out-of-range values are clamped, never rejected.
	grade := input.Grade.Clamp()
	var confidence *domain.Confidence
	if input.Confidence != nil {
		c := input.Confidence.Clamp()
		confidence = &c
	}

	now := time.Now().UTC()

	opts, err := s.options.GetOrCreate(ctx, input.DeckID)
	if err != nil {
		return nil, fmt.Errorf("resolve deck options: %w", err)
	}

	var (
		prev  domain.StudyState
		next  domain.StudyState
		event domain.ReviewEvent
	)

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		// First encounter creates the implicit NEW row, so the lock below
		// always has a row to take.
		if err := s.states.EnsureExists(txCtx, input.UserID, input.CardID, now); err != nil {
			return fmt.Errorf("ensure study state: %w", err)
		}

		var lockErr error
		prev, lockErr = s.states.GetForUpdate(txCtx, input.UserID, input.CardID)
		if lockErr != nil {
			return fmt.Errorf("lock study state: %w", lockErr)
		}

		if prev.Suspended {
			return fmt.Errorf("card %s: %w", input.CardID, domain.ErrSuspended)
		}

		computed := sm2.Review(prev, grade, opts, now)

		var updateErr error
		next, updateErr = s.states.Update(txCtx, computed)
		if updateErr != nil {
			return fmt.Errorf("update study state: %w", updateErr)
		}

		event = domain.ReviewEvent{
			ID:         uuid.New(),
			UserID:     input.UserID,
			DeckID:     input.DeckID,
			CardID:     input.CardID,
			Grade:      grade,
			Confidence: confidence,
			Prev:       prev.Snapshot(),
			Next:       next.Snapshot(),
			DurationMs: input.DurationMs,
			ReviewedAt: now,
		}

		if err := s.events.Append(txCtx, &event); err != nil {
			return fmt.Errorf("append review event: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "card reviewed",
		slog.String("user_id", input.UserID.String()),
		slog.String("card_id", input.CardID.String()),
		slog.String("grade", grade.String()),
		slog.String("old_state", prev.State.String()),
		slog.String("new_state", next.State.String()),
		slog.Float64("interval_days", next.IntervalDays),
		slog.Bool("suspended", next.Suspended),
	)

	return &ReviewResult{
		EventID:   event.ID,
		State:     next,
		Suspended: next.Suspended,
	}, nil
}
