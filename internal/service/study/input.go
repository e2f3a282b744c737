package study

import (
	"time"

	"github.com/google/uuid"

	"github.com/lalabalavujon-a11y/Professional-Diver.app-sub002/internal/domain"
)

const (
	defaultQueueLimit = 50
	maxQueueLimit     = 200
	maxDurationMs     = 600_000
)

// DueQueueInput holds the parameters for building the daily study queue.
// A zero Now means "use the current time"; a zero Limit means the default.
type DueQueueInput struct {
	UserID uuid.UUID
	DeckID uuid.UUID
	Now    time.Time
	Limit  int
}

// Validate checks all fields and collects all errors.
func (i *DueQueueInput) Validate() error {
	var errs []domain.FieldError

	if i.UserID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "user_id", Message: "required"})
	}
	if i.DeckID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "deck_id", Message: "required"})
	}
	if i.Limit < 0 || i.Limit > maxQueueLimit {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "must be between 0 and 200"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// FilteredQueueInput holds the parameters for the ad-hoc (tag) queue.
type FilteredQueueInput struct {
	UserID  uuid.UUID
	DeckID  uuid.UUID
	TagID   *uuid.UUID
	DueOnly bool
	Limit   int
}

// Validate checks all fields and collects all errors.
func (i *FilteredQueueInput) Validate() error {
	var errs []domain.FieldError

	if i.UserID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "user_id", Message: "required"})
	}
	if i.DeckID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "deck_id", Message: "required"})
	}
	if i.TagID != nil && *i.TagID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "tag_id", Message: "must be a valid id when set"})
	}
	if i.Limit < 0 || i.Limit > maxQueueLimit {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "must be between 0 and 200"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// SubmitReviewInput holds the parameters for submitting one review.
// Grade and Confidence are clamped into range, never rejected.
type SubmitReviewInput struct {
	UserID     uuid.UUID
	DeckID     uuid.UUID
	CardID     uuid.UUID
	Grade      domain.ReviewGrade
	Confidence *domain.Confidence
	DurationMs *int
}

// Validate checks all fields and collects all errors.
func (i *SubmitReviewInput) Validate() error {
	var errs []domain.FieldError

	if i.UserID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "user_id", Message: "required"})
	}
	if i.DeckID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "deck_id", Message: "required"})
	}
	if i.CardID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "card_id", Message: "required"})
	}
	if i.DurationMs != nil && *i.DurationMs < 0 {
		errs = append(errs, domain.FieldError{Field: "duration_ms", Message: "must be non-negative"})
	}
	if i.DurationMs != nil && *i.DurationMs > maxDurationMs {
		errs = append(errs, domain.FieldError{Field: "duration_ms", Message: "max 10 minutes"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// PullInput holds the parameters for an incremental sync pull. A zero Since
// pulls from the beginning of the user's history.
type PullInput struct {
	UserID uuid.UUID
	Since  int64 // cursor, unix milliseconds
}

// Validate checks all fields and collects all errors.
func (i *PullInput) Validate() error {
	var errs []domain.FieldError

	if i.UserID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "user_id", Message: "required"})
	}
	if i.Since < 0 {
		errs = append(errs, domain.FieldError{Field: "since", Message: "must be >= 0"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// UpdateOptionsInput holds a partial deck-options update.
type UpdateOptionsInput struct {
	DeckID uuid.UUID
	Patch  domain.DeckOptionsPatch
}

// Validate checks all fields and collects all errors.
func (i *UpdateOptionsInput) Validate() error {
	if i.DeckID == uuid.Nil {
		return domain.NewValidationError("deck_id", "required")
	}
	return i.Patch.Validate()
}

// HistoryInput holds the parameters for fetching a card's review history.
type HistoryInput struct {
	UserID uuid.UUID
	CardID uuid.UUID
	Limit  int
	Offset int
}

// Validate checks all fields and collects all errors.
func (i *HistoryInput) Validate() error {
	var errs []domain.FieldError

	if i.UserID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "user_id", Message: "required"})
	}
	if i.CardID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "card_id", Message: "required"})
	}
	if i.Limit < 0 || i.Limit > maxQueueLimit {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "must be between 0 and 200"})
	}
	if i.Offset < 0 {
		errs = append(errs, domain.FieldError{Field: "offset", Message: "must be >= 0"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
