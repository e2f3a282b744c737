// Package reviewevent implements the append-only review event repository
// using PostgreSQL. Prev/next scheduling snapshots are stored as JSONB.
package reviewevent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/lalabalavujon-a11y/Professional-Diver.app-sub002/internal/adapter/postgres"
	"github.com/lalabalavujon-a11y/Professional-Diver.app-sub002/internal/domain"
)

// Repo provides review event persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new review event repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const eventColumns = `id, user_id, deck_id, card_id, grade, confidence, prev_state, next_state,
	duration_ms, reviewed_at`

const appendSQL = `
INSERT INTO review_events (` + eventColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

const listByCardSQL = `
SELECT ` + eventColumns + `
FROM review_events
WHERE user_id = $1 AND card_id = $2
ORDER BY reviewed_at DESC
LIMIT $3 OFFSET $4`

const countByCardSQL = `
SELECT count(*) FROM review_events WHERE user_id = $1 AND card_id = $2`

const listSinceSQL = `
SELECT ` + eventColumns + `
FROM review_events
WHERE user_id = $1 AND reviewed_at > $2
ORDER BY reviewed_at, id
LIMIT $3`

// Append inserts a review event. Events are immutable; there is no update or
// delete.
func (r *Repo) Append(ctx context.Context, event *domain.ReviewEvent) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	prevBytes, err := marshalSnapshot(event.Prev)
	if err != nil {
		return fmt.Errorf("review_event marshal prev_state: %w", err)
	}
	nextBytes, err := marshalSnapshot(event.Next)
	if err != nil {
		return fmt.Errorf("review_event marshal next_state: %w", err)
	}

	var confidence pgtype.Int2
	if event.Confidence != nil {
		confidence = pgtype.Int2{Int16: int16(*event.Confidence), Valid: true}
	}

	var durationMs pgtype.Int4
	if event.DurationMs != nil {
		durationMs = pgtype.Int4{Int32: int32(*event.DurationMs), Valid: true}
	}

	_, err = querier.Exec(ctx, appendSQL,
		event.ID, event.UserID, event.DeckID, event.CardID,
		int16(event.Grade), confidence, prevBytes, nextBytes,
		durationMs, event.ReviewedAt,
	)
	if err != nil {
		return mapError(err, "review_event", event.ID)
	}

	return nil
}

// ListByCard returns a card's review events, newest first, with limit/offset
// pagination. Returns events, total count, and error.
func (r *Repo) ListByCard(ctx context.Context, userID, cardID uuid.UUID, limit, offset int) ([]domain.ReviewEvent, int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var total int
	if err := querier.QueryRow(ctx, countByCardSQL, userID, cardID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count review_events by card: %w", err)
	}

	// limit=0 means "no limit"
	effectiveLimit := limit
	if effectiveLimit <= 0 {
		effectiveLimit = 2147483647
	}

	rows, err := querier.Query(ctx, listByCardSQL, userID, cardID, effectiveLimit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list review_events by card: %w", err)
	}
	defer rows.Close()

	events, err := scanEvents(rows)
	if err != nil {
		return nil, 0, err
	}

	return events, total, nil
}

// ListSince returns the user's review events recorded strictly after the
// cursor, oldest first, for incremental sync.
func (r *Repo) ListSince(ctx context.Context, userID uuid.UUID, since time.Time, limit int) ([]domain.ReviewEvent, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listSinceSQL, userID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("list review_events since cursor: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ---------------------------------------------------------------------------
// JSONB serialization for scheduling snapshots
// ---------------------------------------------------------------------------

// snapshotJSON is an intermediate struct for JSON marshaling of
// domain.Snapshot. Domain types carry no json tags, so the repo layer handles
// serialization.
type snapshotJSON struct {
	State        string  `json:"state"`
	DueAt        string  `json:"due_at"`
	IntervalDays float64 `json:"interval_days"`
	Ease         float64 `json:"ease"`
}

func marshalSnapshot(s domain.Snapshot) ([]byte, error) {
	return json.Marshal(snapshotJSON{
		State:        string(s.State),
		DueAt:        s.DueAt.UTC().Format(time.RFC3339Nano),
		IntervalDays: s.IntervalDays,
		Ease:         s.Ease,
	})
}

func unmarshalSnapshot(data []byte) (domain.Snapshot, error) {
	var j snapshotJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return domain.Snapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	dueAt, err := time.Parse(time.RFC3339Nano, j.DueAt)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("parse snapshot due_at: %w", err)
	}

	return domain.Snapshot{
		State:        domain.CardState(j.State),
		DueAt:        dueAt,
		IntervalDays: j.IntervalDays,
		Ease:         j.Ease,
	}, nil
}

// ---------------------------------------------------------------------------
// Scan helpers
// ---------------------------------------------------------------------------

func scanEvents(rows pgx.Rows) ([]domain.ReviewEvent, error) {
	var events []domain.ReviewEvent
	for rows.Next() {
		var (
			event      domain.ReviewEvent
			grade      int16
			confidence pgtype.Int2
			prevBytes  []byte
			nextBytes  []byte
			durationMs pgtype.Int4
		)

		err := rows.Scan(
			&event.ID, &event.UserID, &event.DeckID, &event.CardID,
			&grade, &confidence, &prevBytes, &nextBytes,
			&durationMs, &event.ReviewedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan review_event: %w", err)
		}

		event.Grade = domain.ReviewGrade(grade)
		if confidence.Valid {
			c := domain.Confidence(confidence.Int16)
			event.Confidence = &c
		}
		if durationMs.Valid {
			d := int(durationMs.Int32)
			event.DurationMs = &d
		}

		prev, err := unmarshalSnapshot(prevBytes)
		if err != nil {
			return nil, fmt.Errorf("review_event %s: %w", event.ID, err)
		}
		event.Prev = prev

		next, err := unmarshalSnapshot(nextBytes)
		if err != nil {
			return nil, fmt.Errorf("review_event %s: %w", event.ID, err)
		}
		event.Next = next

		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review_events: %w", err)
	}

	if events == nil {
		events = []domain.ReviewEvent{}
	}

	return events, nil
}

// ---------------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------------

// mapError converts pgx/pgconn errors into domain errors.
func mapError(err error, entity string, id uuid.UUID) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s: %w", entity, id, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrAlreadyExists)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
		case "23514": // check_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrValidation)
		}
	}

	return fmt.Errorf("%s %s: %w", entity, id, err)
}
