// Package deckoptions implements the deck options repository using
// PostgreSQL. The options row is materialized lazily: GetOrCreate inserts the
// defaults on first access, so callers never observe a missing row.
package deckoptions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/lalabalavujon-a11y/Professional-Diver.app-sub002/internal/adapter/postgres"
	"github.com/lalabalavujon-a11y/Professional-Diver.app-sub002/internal/domain"
)

// Repo provides deck options persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new deck options repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const optionsColumns = `deck_id, new_per_day, reviews_per_day, learning_steps, relearn_steps,
	leech_threshold, bury_siblings, created_at, updated_at`

const insertDefaultsSQL = `
INSERT INTO deck_options (deck_id) VALUES ($1)
ON CONFLICT (deck_id) DO NOTHING`

const getSQL = `
SELECT ` + optionsColumns + `
FROM deck_options WHERE deck_id = $1`

// GetOrCreate returns the options row for a deck, inserting the defaults
// first if the deck has never been configured. The deck itself must exist.
func (r *Repo) GetOrCreate(ctx context.Context, deckID uuid.UUID) (domain.DeckOptions, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := querier.Exec(ctx, insertDefaultsSQL, deckID); err != nil {
		return domain.DeckOptions{}, mapError(err, "deck_options", deckID)
	}

	opts, err := scanOptions(querier.QueryRow(ctx, getSQL, deckID))
	if err != nil {
		return domain.DeckOptions{}, mapError(err, "deck_options", deckID)
	}

	return opts, nil
}

// Update applies a partial options update and returns the merged row.
// Nil patch fields keep their current values. Callers are expected to have
// materialized the row first (GetOrCreate).
func (r *Repo) Update(ctx context.Context, deckID uuid.UUID, patch domain.DeckOptionsPatch) (domain.DeckOptions, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	b := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Update("deck_options").
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"deck_id": deckID}).
		Suffix("RETURNING " + optionsColumns)

	if patch.NewPerDay != nil {
		b = b.Set("new_per_day", *patch.NewPerDay)
	}
	if patch.ReviewsPerDay != nil {
		b = b.Set("reviews_per_day", *patch.ReviewsPerDay)
	}
	if patch.LearningSteps != nil {
		b = b.Set("learning_steps", stepsToMinutes(patch.LearningSteps))
	}
	if patch.RelearnSteps != nil {
		b = b.Set("relearn_steps", stepsToMinutes(patch.RelearnSteps))
	}
	if patch.LeechThreshold != nil {
		b = b.Set("leech_threshold", *patch.LeechThreshold)
	}
	if patch.BurySiblings != nil {
		b = b.Set("bury_siblings", *patch.BurySiblings)
	}

	sql, args, err := b.ToSql()
	if err != nil {
		return domain.DeckOptions{}, fmt.Errorf("build deck_options update: %w", err)
	}

	opts, err := scanOptions(querier.QueryRow(ctx, sql, args...))
	if err != nil {
		return domain.DeckOptions{}, mapError(err, "deck_options", deckID)
	}

	return opts, nil
}

// ---------------------------------------------------------------------------
// Mapping helpers
// ---------------------------------------------------------------------------

func scanOptions(row pgx.Row) (domain.DeckOptions, error) {
	var (
		opts          domain.DeckOptions
		learningSteps []int32
		relearnSteps  []int32
	)

	err := row.Scan(
		&opts.DeckID, &opts.NewPerDay, &opts.ReviewsPerDay,
		&learningSteps, &relearnSteps,
		&opts.LeechThreshold, &opts.BurySiblings,
		&opts.CreatedAt, &opts.UpdatedAt,
	)
	if err != nil {
		return domain.DeckOptions{}, err
	}

	opts.LearningSteps = minutesToSteps(learningSteps)
	opts.RelearnSteps = minutesToSteps(relearnSteps)

	return opts, nil
}

// stepsToMinutes converts a step ladder to the integer-minute representation
// stored in the database.
func stepsToMinutes(steps []time.Duration) []int32 {
	minutes := make([]int32, len(steps))
	for i, s := range steps {
		minutes[i] = int32(s / time.Minute)
	}
	return minutes
}

func minutesToSteps(minutes []int32) []time.Duration {
	steps := make([]time.Duration, len(minutes))
	for i, m := range minutes {
		steps[i] = time.Duration(m) * time.Minute
	}
	return steps
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
