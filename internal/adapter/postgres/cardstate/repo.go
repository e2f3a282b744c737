// Package cardstate implements the study state repository using PostgreSQL.
// Fixed queries use raw SQL constants; the filtered queue query is built
// dynamically with squirrel.
package cardstate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/lalabalavujon-a11y/Professional-Diver.app-sub002/internal/adapter/postgres"
	"github.com/lalabalavujon-a11y/Professional-Diver.app-sub002/internal/domain"
)

// Repo provides study state persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new study state repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const stateColumns = `user_id, card_id, state, due_at, interval_days, ease, reps, lapses,
	suspended, last_reviewed_at, created_at, updated_at`

const cardColumns = `c.id, c.deck_id, c.front, c.back, c.source_type, c.source_id, c.created_at`

const getSQL = `
SELECT ` + stateColumns + `
FROM card_states WHERE user_id = $1 AND card_id = $2`

const getForUpdateSQL = getSQL + ` FOR UPDATE`

const ensureExistsSQL = `
INSERT INTO card_states (user_id, card_id, state, due_at, ease, created_at, updated_at)
VALUES ($1, $2, 'NEW', $3, $4, $3, $3)
ON CONFLICT (user_id, card_id) DO NOTHING`

const updateSQL = `
UPDATE card_states
SET state = $3, due_at = $4, interval_days = $5, ease = $6, reps = $7, lapses = $8,
    suspended = $9, last_reviewed_at = $10, updated_at = now()
WHERE user_id = $1 AND card_id = $2
RETURNING ` + stateColumns

const listDueSQL = `
SELECT ` + cardColumns + `, cs.user_id, cs.card_id, cs.state, cs.due_at, cs.interval_days,
	cs.ease, cs.reps, cs.lapses, cs.suspended, cs.last_reviewed_at, cs.created_at, cs.updated_at
FROM card_states cs
JOIN cards c ON c.id = cs.card_id
WHERE cs.user_id = $1 AND c.deck_id = $2
  AND NOT cs.suspended
  AND (cs.state = 'NEW' OR cs.due_at <= $3)
ORDER BY cs.due_at, cs.card_id
LIMIT $4`

const listUnseenSQL = `
SELECT ` + cardColumns + `
FROM cards c
LEFT JOIN card_states cs ON cs.card_id = c.id AND cs.user_id = $1
WHERE c.deck_id = $2 AND cs.card_id IS NULL
ORDER BY c.created_at, c.id
LIMIT $3`

const listUpdatedSinceSQL = `
SELECT ` + stateColumns + `
FROM card_states
WHERE user_id = $1 AND updated_at > $2
ORDER BY updated_at, card_id
LIMIT $3`

const listSuspendedSQL = `
SELECT ` + cardColumns + `, cs.user_id, cs.card_id, cs.state, cs.due_at, cs.interval_days,
	cs.ease, cs.reps, cs.lapses, cs.suspended, cs.last_reviewed_at, cs.created_at, cs.updated_at
FROM card_states cs
JOIN cards c ON c.id = cs.card_id
WHERE cs.user_id = $1 AND c.deck_id = $2 AND cs.suspended
ORDER BY cs.updated_at DESC
LIMIT $3`

// countByStateSQL counts over all cards in the deck via LEFT JOIN, so cards
// without a state row are counted as NEW.
const countByStateSQL = `
SELECT
    count(*) FILTER (WHERE cs.card_id IS NULL OR cs.state = 'NEW') AS new_count,
    count(*) FILTER (WHERE cs.state = 'LEARNING') AS learning_count,
    count(*) FILTER (WHERE cs.state = 'REVIEW') AS review_count,
    count(*) FILTER (WHERE cs.state = 'RELEARNING') AS relearning_count,
    count(*) AS total
FROM cards c
LEFT JOIN card_states cs ON cs.card_id = c.id AND cs.user_id = $1
WHERE c.deck_id = $2`

const countDueSQL = `
SELECT count(*)
FROM card_states cs
JOIN cards c ON c.id = cs.card_id
WHERE cs.user_id = $1 AND c.deck_id = $2
  AND NOT cs.suspended
  AND (cs.state = 'NEW' OR cs.due_at <= $3)`

const countSuspendedSQL = `
SELECT count(*)
FROM card_states cs
JOIN cards c ON c.id = cs.card_id
WHERE cs.user_id = $1 AND c.deck_id = $2 AND cs.suspended`

// ---------------------------------------------------------------------------
// Single-row operations
// ---------------------------------------------------------------------------

// Get returns the study state for one (user, card) pair.
// Returns domain.ErrNotFound if the user has never encountered the card.
func (r *Repo) Get(ctx context.Context, userID, cardID uuid.UUID) (domain.StudyState, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	state, err := scanState(querier.QueryRow(ctx, getSQL, userID, cardID))
	if err != nil {
		return domain.StudyState{}, mapError(err, "card_state", cardID)
	}

	return state, nil
}

// EnsureExists inserts the implicit NEW state row if the pair has none yet.
// Idempotent; run inside the review transaction so the subsequent row lock
// always has a row to grab.
func (r *Repo) EnsureExists(ctx context.Context, userID, cardID uuid.UUID, now time.Time) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := querier.Exec(ctx, ensureExistsSQL, userID, cardID, now, domain.DefaultEase); err != nil {
		return mapError(err, "card_state", cardID)
	}

	return nil
}

// GetForUpdate reads the state row with a FOR UPDATE lock. Concurrent reviews
// of the same (user, card) serialize on this lock.
func (r *Repo) GetForUpdate(ctx context.Context, userID, cardID uuid.UUID) (domain.StudyState, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	state, err := scanState(querier.QueryRow(ctx, getForUpdateSQL, userID, cardID))
	if err != nil {
		return domain.StudyState{}, mapError(err, "card_state", cardID)
	}

	return state, nil
}

// Update overwrites the scheduling fields of an existing state row and
// returns the persisted row. updated_at is set by the database.
func (r *Repo) Update(ctx context.Context, state domain.StudyState) (domain.StudyState, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	updated, err := scanState(querier.QueryRow(ctx, updateSQL,
		state.UserID, state.CardID,
		string(state.State), state.DueAt, state.IntervalDays, state.Ease,
		state.Reps, state.Lapses, state.Suspended, state.LastReviewedAt,
	))
	if err != nil {
		return domain.StudyState{}, mapError(err, "card_state", state.CardID)
	}

	return updated, nil
}

// ---------------------------------------------------------------------------
// Queue queries
// ---------------------------------------------------------------------------

// ListDue returns the user's due cards in a deck, oldest due first.
// Suspended cards are excluded; NEW rows are always due.
func (r *Repo) ListDue(ctx context.Context, userID, deckID uuid.UUID, now time.Time, limit int) ([]domain.QueueEntry, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listDueSQL, userID, deckID, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list due card_states: %w", err)
	}
	defer rows.Close()

	return scanQueueEntries(rows)
}

// ListUnseen returns cards in the deck the user has no state row for,
// oldest first.
func (r *Repo) ListUnseen(ctx context.Context, userID, deckID uuid.UUID, limit int) ([]domain.Card, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listUnseenSQL, userID, deckID, limit)
	if err != nil {
		return nil, fmt.Errorf("list unseen cards: %w", err)
	}
	defer rows.Close()

	var cards []domain.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan unseen card: %w", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate unseen cards: %w", err)
	}

	if cards == nil {
		cards = []domain.Card{}
	}

	return cards, nil
}

// ListFiltered returns an ad-hoc queue built from the filter: optional tag
// restriction and optional due-only cutoff, no new-card cap. Cards without a
// state row are returned with the implicit NEW state.
func (r *Repo) ListFiltered(ctx context.Context, filter domain.QueueFilter) ([]domain.QueueEntry, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	b := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select(
			"c.id", "c.deck_id", "c.front", "c.back", "c.source_type", "c.source_id", "c.created_at",
			"cs.user_id", "cs.card_id", "cs.state", "cs.due_at", "cs.interval_days",
			"cs.ease", "cs.reps", "cs.lapses", "cs.suspended", "cs.last_reviewed_at",
			"cs.created_at", "cs.updated_at",
		).
		From("cards c").
		LeftJoin("card_states cs ON cs.card_id = c.id AND cs.user_id = ?", filter.UserID).
		Where(squirrel.Eq{"c.deck_id": filter.DeckID}).
		Where("COALESCE(cs.suspended, false) = false").
		OrderByClause("COALESCE(cs.due_at, ?), c.created_at, c.id", filter.Now).
		Limit(uint64(filter.Limit))

	if filter.TagID != nil {
		b = b.Join("card_tags ct ON ct.card_id = c.id").
			Where(squirrel.Eq{"ct.tag_id": *filter.TagID})
	}
	if filter.DueOnly {
		// Unseen cards count as due.
		b = b.Where("(COALESCE(cs.due_at, ?) <= ? OR cs.card_id IS NULL)",
			filter.Now, filter.Now)
	}

	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build filtered queue query: %w", err)
	}

	rows, err := querier.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list filtered queue: %w", err)
	}
	defer rows.Close()

	return scanFilteredEntries(rows, filter.UserID, filter.Now)
}

// ListUpdatedSince returns the user's state rows changed strictly after the
// cursor, oldest change first, for incremental sync.
func (r *Repo) ListUpdatedSince(ctx context.Context, userID uuid.UUID, since time.Time, limit int) ([]domain.StudyState, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listUpdatedSinceSQL, userID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("list card_states updated since: %w", err)
	}
	defer rows.Close()

	var states []domain.StudyState
	for rows.Next() {
		state, err := scanState(rows)
		if err != nil {
			return nil, fmt.Errorf("scan card_state: %w", err)
		}
		states = append(states, state)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate card_states: %w", err)
	}

	if states == nil {
		states = []domain.StudyState{}
	}

	return states, nil
}

// ListSuspended returns the user's suspended (leech) cards in a deck,
// most recently touched first.
func (r *Repo) ListSuspended(ctx context.Context, userID, deckID uuid.UUID, limit int) ([]domain.QueueEntry, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listSuspendedSQL, userID, deckID, limit)
	if err != nil {
		return nil, fmt.Errorf("list suspended card_states: %w", err)
	}
	defer rows.Close()

	return scanQueueEntries(rows)
}

// ---------------------------------------------------------------------------
// Aggregations
// ---------------------------------------------------------------------------

// CountByState returns per-state card counts for one (user, deck) pair.
// Cards the user has never seen count as NEW.
func (r *Repo) CountByState(ctx context.Context, userID, deckID uuid.UUID) (domain.StateCounts, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var counts domain.StateCounts
	err := querier.QueryRow(ctx, countByStateSQL, userID, deckID).Scan(
		&counts.New, &counts.Learning, &counts.Review, &counts.Relearning, &counts.Total,
	)
	if err != nil {
		return domain.StateCounts{}, fmt.Errorf("count card_states by state: %w", err)
	}

	return counts, nil
}

// CountDue returns the number of non-suspended cards currently due,
// consistent with ListDue.
func (r *Repo) CountDue(ctx context.Context, userID, deckID uuid.UUID, now time.Time) (int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var count int
	if err := querier.QueryRow(ctx, countDueSQL, userID, deckID, now).Scan(&count); err != nil {
		return 0, fmt.Errorf("count due card_states: %w", err)
	}

	return count, nil
}

// CountSuspended returns the number of suspended cards.
func (r *Repo) CountSuspended(ctx context.Context, userID, deckID uuid.UUID) (int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var count int
	if err := querier.QueryRow(ctx, countSuspendedSQL, userID, deckID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count suspended card_states: %w", err)
	}

	return count, nil
}

// ---------------------------------------------------------------------------
// Scan helpers
// ---------------------------------------------------------------------------

func scanState(row pgx.Row) (domain.StudyState, error) {
	var (
		state          domain.StudyState
		stateStr       string
		lastReviewedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&state.UserID, &state.CardID, &stateStr, &state.DueAt, &state.IntervalDays,
		&state.Ease, &state.Reps, &state.Lapses, &state.Suspended,
		&lastReviewedAt, &state.CreatedAt, &state.UpdatedAt,
	)
	if err != nil {
		return domain.StudyState{}, err
	}

	state.State = domain.CardState(stateStr)
	if lastReviewedAt.Valid {
		t := lastReviewedAt.Time
		state.LastReviewedAt = &t
	}

	return state, nil
}

func scanCard(row pgx.Row) (domain.Card, error) {
	var card domain.Card
	err := row.Scan(
		&card.ID, &card.DeckID, &card.Front, &card.Back,
		&card.SourceType, &card.SourceID, &card.CreatedAt,
	)
	return card, err
}

// scanQueueEntries scans joined card + state rows where the state row is
// guaranteed present.
func scanQueueEntries(rows pgx.Rows) ([]domain.QueueEntry, error) {
	var entries []domain.QueueEntry
	for rows.Next() {
		var (
			entry          domain.QueueEntry
			stateStr       string
			lastReviewedAt pgtype.Timestamptz
		)

		err := rows.Scan(
			&entry.Card.ID, &entry.Card.DeckID, &entry.Card.Front, &entry.Card.Back,
			&entry.Card.SourceType, &entry.Card.SourceID, &entry.Card.CreatedAt,
			&entry.State.UserID, &entry.State.CardID, &stateStr, &entry.State.DueAt,
			&entry.State.IntervalDays, &entry.State.Ease, &entry.State.Reps,
			&entry.State.Lapses, &entry.State.Suspended, &lastReviewedAt,
			&entry.State.CreatedAt, &entry.State.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan queue entry: %w", err)
		}

		entry.State.State = domain.CardState(stateStr)
		if lastReviewedAt.Valid {
			t := lastReviewedAt.Time
			entry.State.LastReviewedAt = &t
		}

		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate queue entries: %w", err)
	}

	if entries == nil {
		entries = []domain.QueueEntry{}
	}

	return entries, nil
}

// scanFilteredEntries scans LEFT-JOINed rows where every state column may be
// NULL; missing rows materialize as the implicit NEW state.
func scanFilteredEntries(rows pgx.Rows, userID uuid.UUID, now time.Time) ([]domain.QueueEntry, error) {
	var entries []domain.QueueEntry
	for rows.Next() {
		var (
			entry          domain.QueueEntry
			stateUserID    pgtype.UUID
			stateCardID    pgtype.UUID
			stateStr       pgtype.Text
			dueAt          pgtype.Timestamptz
			intervalDays   pgtype.Float8
			ease           pgtype.Float8
			reps           pgtype.Int4
			lapses         pgtype.Int4
			suspended      pgtype.Bool
			lastReviewedAt pgtype.Timestamptz
			createdAt      pgtype.Timestamptz
			updatedAt      pgtype.Timestamptz
		)

		err := rows.Scan(
			&entry.Card.ID, &entry.Card.DeckID, &entry.Card.Front, &entry.Card.Back,
			&entry.Card.SourceType, &entry.Card.SourceID, &entry.Card.CreatedAt,
			&stateUserID, &stateCardID, &stateStr, &dueAt, &intervalDays,
			&ease, &reps, &lapses, &suspended, &lastReviewedAt,
			&createdAt, &updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan filtered entry: %w", err)
		}

		if !stateCardID.Valid {
			entry.State = domain.NewStudyState(userID, entry.Card.ID, now)
		} else {
			entry.State = domain.StudyState{
				UserID:       uuid.UUID(stateUserID.Bytes),
				CardID:       uuid.UUID(stateCardID.Bytes),
				State:        domain.CardState(stateStr.String),
				DueAt:        dueAt.Time,
				IntervalDays: intervalDays.Float64,
				Ease:         ease.Float64,
				Reps:         int(reps.Int32),
				Lapses:       int(lapses.Int32),
				Suspended:    suspended.Bool,
				CreatedAt:    createdAt.Time,
				UpdatedAt:    updatedAt.Time,
			}
			if lastReviewedAt.Valid {
				t := lastReviewedAt.Time
				entry.State.LastReviewedAt = &t
			}
		}

		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate filtered entries: %w", err)
	}

	if entries == nil {
		entries = []domain.QueueEntry{}
	}

	return entries, nil
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
