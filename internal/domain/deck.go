package domain

import (
	"time"

	"github.com/google/uuid"
)

// Deck is an identified collection of cards with exactly one options record.
type Deck struct {
	ID          uuid.UUID
	Title       string
	Description string
	CreatedAt   time.Time
}

// DeckOptions holds the per-deck scheduling configuration. The options row is
// created lazily with defaults on first access.
type DeckOptions struct {
	DeckID uuid.UUID

	// NewPerDay caps the number of never-seen cards added to a study queue.
	NewPerDay int

	// ReviewsPerDay is persisted but not enforced by the queue builder.
	// Due cards are always shown regardless of this limit.
	ReviewsPerDay int

	// LearningSteps is the step ladder for cards in LEARNING state.
	// Always non-empty; every step is a positive whole number of minutes.
	LearningSteps []time.Duration

	// RelearnSteps is the step ladder for cards in RELEARNING state.
	// Same shape constraints as LearningSteps.
	RelearnSteps []time.Duration

	// LeechThreshold is the lapse count at which a card is auto-suspended.
	LeechThreshold int

	// BurySiblings is persisted but not consulted by queue construction.
	BurySiblings bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Default deck option values, applied when an options row is lazily created.
const (
	DefaultNewPerDay      = 10
	DefaultReviewsPerDay  = 50
	DefaultLeechThreshold = 8
	DefaultBurySiblings   = true
	DefaultEase           = 2.5
)

// DefaultSteps returns the default step ladder (10 minutes, then 1 day),
// shared by learning and relearning.
func DefaultSteps() []time.Duration {
	return []time.Duration{10 * time.Minute, 24 * time.Hour}
}

// DefaultDeckOptions returns a DeckOptions populated with documented defaults.
func DefaultDeckOptions(deckID uuid.UUID) DeckOptions {
	return DeckOptions{
		DeckID:         deckID,
		NewPerDay:      DefaultNewPerDay,
		ReviewsPerDay:  DefaultReviewsPerDay,
		LearningSteps:  DefaultSteps(),
		RelearnSteps:   DefaultSteps(),
		LeechThreshold: DefaultLeechThreshold,
		BurySiblings:   DefaultBurySiblings,
	}
}

// DeckOptionsPatch carries a partial options update. Nil fields keep their
// current values.
type DeckOptionsPatch struct {
	NewPerDay      *int
	ReviewsPerDay  *int
	LearningSteps  []time.Duration
	RelearnSteps   []time.Duration
	LeechThreshold *int
	BurySiblings   *bool
}

// Validate checks the set fields of the patch and collects all errors.
func (p *DeckOptionsPatch) Validate() error {
	var errs []FieldError

	if p.NewPerDay != nil && *p.NewPerDay < 0 {
		errs = append(errs, FieldError{Field: "new_per_day", Message: "must be >= 0"})
	}
	if p.ReviewsPerDay != nil && *p.ReviewsPerDay < 0 {
		errs = append(errs, FieldError{Field: "reviews_per_day", Message: "must be >= 0"})
	}
	if p.LeechThreshold != nil && *p.LeechThreshold < 1 {
		errs = append(errs, FieldError{Field: "leech_threshold", Message: "must be >= 1"})
	}
	if err := validateSteps(p.LearningSteps, "learning_steps", false); err != nil {
		errs = append(errs, *err)
	}
	if err := validateSteps(p.RelearnSteps, "relearn_steps", false); err != nil {
		errs = append(errs, *err)
	}

	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}
	return nil
}

// ValidateSteps checks a step ladder: non-empty, whole positive minutes.
func ValidateSteps(steps []time.Duration, field string) error {
	if err := validateSteps(steps, field, true); err != nil {
		return NewValidationErrors([]FieldError{*err})
	}
	return nil
}

func validateSteps(steps []time.Duration, field string, required bool) *FieldError {
	if len(steps) == 0 {
		if required {
			return &FieldError{Field: field, Message: "must contain at least one step"}
		}
		return nil
	}
	for _, s := range steps {
		if s < time.Minute || s%time.Minute != 0 {
			return &FieldError{Field: field, Message: "steps must be positive whole minutes"}
		}
	}
	return nil
}
