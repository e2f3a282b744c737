package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lalabalavujon-a11y/Professional-Diver.app-sub002/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedDeck creates a deck row. Deck options are NOT created; repositories
// materialize them lazily, and tests that need explicit options should use
// SeedDeckOptions.
func SeedDeck(t *testing.T, pool *pgxpool.Pool) domain.Deck {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	deck := domain.Deck{
		ID:        uuid.New(),
		Title:     "Test Deck " + suffix,
		CreatedAt: now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO decks (id, title, created_at) VALUES ($1, $2, $3)`,
		deck.ID, deck.Title, deck.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedDeck insert deck: %v", err)
	}

	return deck
}

// SeedDeckOptions inserts an explicit deck_options row with the defaults.
func SeedDeckOptions(t *testing.T, pool *pgxpool.Pool, deckID uuid.UUID) domain.DeckOptions {
	t.Helper()
	ctx := context.Background()

	opts := domain.DefaultDeckOptions(deckID)
	now := time.Now().UTC().Truncate(time.Microsecond)
	opts.CreatedAt = now
	opts.UpdatedAt = now

	_, err := pool.Exec(ctx,
		`INSERT INTO deck_options
		 (deck_id, new_per_day, reviews_per_day, learning_steps, relearn_steps, leech_threshold, bury_siblings, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		opts.DeckID, opts.NewPerDay, opts.ReviewsPerDay,
		stepsToMinutes(opts.LearningSteps), stepsToMinutes(opts.RelearnSteps),
		opts.LeechThreshold, opts.BurySiblings, opts.CreatedAt, opts.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedDeckOptions insert: %v", err)
	}

	return opts
}

// SeedCard creates a card in the given deck.
func SeedCard(t *testing.T, pool *pgxpool.Pool, deckID uuid.UUID) domain.Card {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	card := domain.Card{
		ID:        uuid.New(),
		DeckID:    deckID,
		Front:     "front-" + suffix,
		Back:      "back-" + suffix,
		CreatedAt: now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO cards (id, deck_id, front, back, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		card.ID, card.DeckID, card.Front, card.Back, card.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedCard insert card: %v", err)
	}

	return card
}

// SeedTag creates a tag and attaches it to the given cards.
func SeedTag(t *testing.T, pool *pgxpool.Pool, cardIDs ...uuid.UUID) domain.Tag {
	t.Helper()
	ctx := context.Background()

	tag := domain.Tag{
		ID:   uuid.New(),
		Name: "tag-" + uniqueSuffix(),
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO tags (id, name) VALUES ($1, $2)`,
		tag.ID, tag.Name,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedTag insert tag: %v", err)
	}

	for _, cardID := range cardIDs {
		_, err := pool.Exec(ctx,
			`INSERT INTO card_tags (card_id, tag_id) VALUES ($1, $2)`,
			cardID, tag.ID,
		)
		if err != nil {
			t.Fatalf("testhelper: SeedTag attach card %s: %v", cardID, err)
		}
	}

	return tag
}

// SeedStudyState inserts a card_states row as-is. Zero timestamps are filled
// with now.
func SeedStudyState(t *testing.T, pool *pgxpool.Pool, state domain.StudyState) domain.StudyState {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	if state.DueAt.IsZero() {
		state.DueAt = now
	}
	if state.CreatedAt.IsZero() {
		state.CreatedAt = now
	}
	if state.UpdatedAt.IsZero() {
		state.UpdatedAt = now
	}
	if state.Ease == 0 {
		state.Ease = domain.DefaultEase
	}
	if state.State == "" {
		state.State = domain.CardStateNew
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO card_states
		 (user_id, card_id, state, due_at, interval_days, ease, reps, lapses, suspended, last_reviewed_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		state.UserID, state.CardID, string(state.State), state.DueAt, state.IntervalDays,
		state.Ease, state.Reps, state.Lapses, state.Suspended, state.LastReviewedAt,
		state.CreatedAt, state.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedStudyState insert: %v", err)
	}

	return state
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
