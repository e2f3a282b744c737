// Package study implements the spaced-repetition scheduling core: deck
// options resolution, queue construction, review submission, and sync pull.
package study

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lalabalavujon-a11y/Professional-Diver.app-sub002/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type optionsRepo interface {
	GetOrCreate(ctx context.Context, deckID uuid.UUID) (domain.DeckOptions, error)
	Update(ctx context.Context, deckID uuid.UUID, patch domain.DeckOptionsPatch) (domain.DeckOptions, error)
}

type stateRepo interface {
	Get(ctx context.Context, userID, cardID uuid.UUID) (domain.StudyState, error)
	EnsureExists(ctx context.Context, userID, cardID uuid.UUID, now time.Time) error
	GetForUpdate(ctx context.Context, userID, cardID uuid.UUID) (domain.StudyState, error)
	Update(ctx context.Context, state domain.StudyState) (domain.StudyState, error)
	ListDue(ctx context.Context, userID, deckID uuid.UUID, now time.Time, limit int) ([]domain.QueueEntry, error)
	ListUnseen(ctx context.Context, userID, deckID uuid.UUID, limit int) ([]domain.Card, error)
	ListFiltered(ctx context.Context, filter domain.QueueFilter) ([]domain.QueueEntry, error)
	ListUpdatedSince(ctx context.Context, userID uuid.UUID, since time.Time, limit int) ([]domain.StudyState, error)
	ListSuspended(ctx context.Context, userID, deckID uuid.UUID, limit int) ([]domain.QueueEntry, error)
	CountByState(ctx context.Context, userID, deckID uuid.UUID) (domain.StateCounts, error)
	CountDue(ctx context.Context, userID, deckID uuid.UUID, now time.Time) (int, error)
	CountSuspended(ctx context.Context, userID, deckID uuid.UUID) (int, error)
}

type eventRepo interface {
	Append(ctx context.Context, event *domain.ReviewEvent) error
	ListByCard(ctx context.Context, userID, cardID uuid.UUID, limit, offset int) ([]domain.ReviewEvent, int, error)
	ListSince(ctx context.Context, userID uuid.UUID, since time.Time, limit int) ([]domain.ReviewEvent, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the scheduling business logic.
type Service struct {
	options optionsRepo
	states  stateRepo
	events  eventRepo
	tx      txManager
	log     *slog.Logger

	syncPageSize int
}

const defaultSyncPageSize = 500

// NewService creates a new study service. syncPageSize bounds the page size
// of sync pulls; values < 1 fall back to the default.
func NewService(
	log *slog.Logger,
	options optionsRepo,
	states stateRepo,
	events eventRepo,
	tx txManager,
	syncPageSize int,
) *Service {
	if syncPageSize < 1 {
		syncPageSize = defaultSyncPageSize
	}

	return &Service{
		options:      options,
		states:       states,
		events:       events,
		tx:           tx,
		log:          log.With("service", "study"),
		syncPageSize: syncPageSize,
	}
}
