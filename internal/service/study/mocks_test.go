package study

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lalabalavujon-a11y/Professional-Diver.app-sub002/internal/domain"
)

// Hand-rolled mocks for the consumer-defined repo interfaces. A nil func
// panics, which marks the call as unexpected for that test.

type optionsRepoMock struct {
	GetOrCreateFunc func(ctx context.Context, deckID uuid.UUID) (domain.DeckOptions, error)
	UpdateFunc      func(ctx context.Context, deckID uuid.UUID, patch domain.DeckOptionsPatch) (domain.DeckOptions, error)
}

func (m *optionsRepoMock) GetOrCreate(ctx context.Context, deckID uuid.UUID) (domain.DeckOptions, error) {
	return m.GetOrCreateFunc(ctx, deckID)
}

func (m *optionsRepoMock) Update(ctx context.Context, deckID uuid.UUID, patch domain.DeckOptionsPatch) (domain.DeckOptions, error) {
	return m.UpdateFunc(ctx, deckID, patch)
}

type stateRepoMock struct {
	GetFunc              func(ctx context.Context, userID, cardID uuid.UUID) (domain.StudyState, error)
	EnsureExistsFunc     func(ctx context.Context, userID, cardID uuid.UUID, now time.Time) error
	GetForUpdateFunc     func(ctx context.Context, userID, cardID uuid.UUID) (domain.StudyState, error)
	UpdateFunc           func(ctx context.Context, state domain.StudyState) (domain.StudyState, error)
	ListDueFunc          func(ctx context.Context, userID, deckID uuid.UUID, now time.Time, limit int) ([]domain.QueueEntry, error)
	ListUnseenFunc       func(ctx context.Context, userID, deckID uuid.UUID, limit int) ([]domain.Card, error)
	ListFilteredFunc     func(ctx context.Context, filter domain.QueueFilter) ([]domain.QueueEntry, error)
	ListUpdatedSinceFunc func(ctx context.Context, userID uuid.UUID, since time.Time, limit int) ([]domain.StudyState, error)
	ListSuspendedFunc    func(ctx context.Context, userID, deckID uuid.UUID, limit int) ([]domain.QueueEntry, error)
	CountByStateFunc     func(ctx context.Context, userID, deckID uuid.UUID) (domain.StateCounts, error)
	CountDueFunc         func(ctx context.Context, userID, deckID uuid.UUID, now time.Time) (int, error)
	CountSuspendedFunc   func(ctx context.Context, userID, deckID uuid.UUID) (int, error)
}

func (m *stateRepoMock) Get(ctx context.Context, userID, cardID uuid.UUID) (domain.StudyState, error) {
	return m.GetFunc(ctx, userID, cardID)
}

func (m *stateRepoMock) EnsureExists(ctx context.Context, userID, cardID uuid.UUID, now time.Time) error {
	return m.EnsureExistsFunc(ctx, userID, cardID, now)
}

func (m *stateRepoMock) GetForUpdate(ctx context.Context, userID, cardID uuid.UUID) (domain.StudyState, error) {
	return m.GetForUpdateFunc(ctx, userID, cardID)
}

func (m *stateRepoMock) Update(ctx context.Context, state domain.StudyState) (domain.StudyState, error) {
	return m.UpdateFunc(ctx, state)
}

func (m *stateRepoMock) ListDue(ctx context.Context, userID, deckID uuid.UUID, now time.Time, limit int) ([]domain.QueueEntry, error) {
	return m.ListDueFunc(ctx, userID, deckID, now, limit)
}

func (m *stateRepoMock) ListUnseen(ctx context.Context, userID, deckID uuid.UUID, limit int) ([]domain.Card, error) {
	return m.ListUnseenFunc(ctx, userID, deckID, limit)
}

func (m *stateRepoMock) ListFiltered(ctx context.Context, filter domain.QueueFilter) ([]domain.QueueEntry, error) {
	return m.ListFilteredFunc(ctx, filter)
}

func (m *stateRepoMock) ListUpdatedSince(ctx context.Context, userID uuid.UUID, since time.Time, limit int) ([]domain.StudyState, error) {
	return m.ListUpdatedSinceFunc(ctx, userID, since, limit)
}

func (m *stateRepoMock) ListSuspended(ctx context.Context, userID, deckID uuid.UUID, limit int) ([]domain.QueueEntry, error) {
	return m.ListSuspendedFunc(ctx, userID, deckID, limit)
}

func (m *stateRepoMock) CountByState(ctx context.Context, userID, deckID uuid.UUID) (domain.StateCounts, error) {
	return m.CountByStateFunc(ctx, userID, deckID)
}

func (m *stateRepoMock) CountDue(ctx context.Context, userID, deckID uuid.UUID, now time.Time) (int, error) {
	return m.CountDueFunc(ctx, userID, deckID, now)
}

func (m *stateRepoMock) CountSuspended(ctx context.Context, userID, deckID uuid.UUID) (int, error) {
	return m.CountSuspendedFunc(ctx, userID, deckID)
}

type eventRepoMock struct {
	AppendFunc     func(ctx context.Context, event *domain.ReviewEvent) error
	ListByCardFunc func(ctx context.Context, userID, cardID uuid.UUID, limit, offset int) ([]domain.ReviewEvent, int, error)
	ListSinceFunc  func(ctx context.Context, userID uuid.UUID, since time.Time, limit int) ([]domain.ReviewEvent, error)
}

func (m *eventRepoMock) Append(ctx context.Context, event *domain.ReviewEvent) error {
	return m.AppendFunc(ctx, event)
}

func (m *eventRepoMock) ListByCard(ctx context.Context, userID, cardID uuid.UUID, limit, offset int) ([]domain.ReviewEvent, int, error) {
	return m.ListByCardFunc(ctx, userID, cardID, limit, offset)
}

func (m *eventRepoMock) ListSince(ctx context.Context, userID uuid.UUID, since time.Time, limit int) ([]domain.ReviewEvent, error) {
	return m.ListSinceFunc(ctx, userID, since, limit)
}

// txManagerMock runs the callback directly, without a database.
type txManagerMock struct{}

func (txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
