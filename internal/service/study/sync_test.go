package study

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lalabalavujon-a11y/Professional-Diver.app-sub002/internal/domain"
)

func TestService_Pull_CursorAdvancesToNewestChange(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	since := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	eventAt := since.Add(30 * time.Minute)
	stateAt := since.Add(2 * time.Hour)

	mockStates := &stateRepoMock{
		ListUpdatedSinceFunc: func(ctx context.Context, uid uuid.UUID, s time.Time, limit int) ([]domain.StudyState, error) {
			if !s.Equal(since) {
				t.Errorf("since = %v, want %v", s, since)
			}
			return []domain.StudyState{{UserID: uid, CardID: uuid.New(), UpdatedAt: stateAt}}, nil
		},
	}
	mockEvents := &eventRepoMock{
		ListSinceFunc: func(ctx context.Context, uid uuid.UUID, s time.Time, limit int) ([]domain.ReviewEvent, error) {
			return []domain.ReviewEvent{{ID: uuid.New(), UserID: uid, ReviewedAt: eventAt}}, nil
		},
	}

	svc := newTestService(&optionsRepoMock{}, mockStates, mockEvents)

	page, err := svc.Pull(context.Background(), PullInput{
		UserID: userID,
		Since:  since.UnixMilli(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(page.Events) != 1 || len(page.States) != 1 {
		t.Fatalf("got %d events, %d states, want 1 each", len(page.Events), len(page.States))
	}
	if !page.NextCursor.Equal(stateAt) {
		t.Errorf("next cursor = %v, want %v (the newest change)", page.NextCursor, stateAt)
	}
}

func TestService_Pull_EmptyPageKeepsCursor(t *testing.T) {
	t.Parallel()

	since := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mockStates := &stateRepoMock{
		ListUpdatedSinceFunc: func(ctx context.Context, uid uuid.UUID, s time.Time, limit int) ([]domain.StudyState, error) {
			return nil, nil
		},
	}
	mockEvents := &eventRepoMock{
		ListSinceFunc: func(ctx context.Context, uid uuid.UUID, s time.Time, limit int) ([]domain.ReviewEvent, error) {
			return nil, nil
		},
	}

	svc := newTestService(&optionsRepoMock{}, mockStates, mockEvents)

	page, err := svc.Pull(context.Background(), PullInput{
		UserID: uuid.New(),
		Since:  since.UnixMilli(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !page.NextCursor.Equal(since) {
		t.Errorf("next cursor = %v, want unchanged %v", page.NextCursor, since)
	}
	if len(page.Events) != 0 || len(page.States) != 0 {
		t.Errorf("empty pull must return empty slices")
	}
}

// Pulling twice with the same cursor and no writes in between must return
// identical pages.
func TestService_Pull_Idempotent(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	eventID := uuid.New()
	cardID := uuid.New()
	eventAt := since.Add(time.Hour)

	mockStates := &stateRepoMock{
		ListUpdatedSinceFunc: func(ctx context.Context, uid uuid.UUID, s time.Time, limit int) ([]domain.StudyState, error) {
			return []domain.StudyState{{UserID: uid, CardID: cardID, UpdatedAt: eventAt}}, nil
		},
	}
	mockEvents := &eventRepoMock{
		ListSinceFunc: func(ctx context.Context, uid uuid.UUID, s time.Time, limit int) ([]domain.ReviewEvent, error) {
			return []domain.ReviewEvent{{ID: eventID, UserID: uid, CardID: cardID, ReviewedAt: eventAt}}, nil
		},
	}

	svc := newTestService(&optionsRepoMock{}, mockStates, mockEvents)

	input := PullInput{UserID: userID, Since: since.UnixMilli()}

	first, err := svc.Pull(context.Background(), input)
	if err != nil {
		t.Fatalf("first pull: %v", err)
	}
	second, err := svc.Pull(context.Background(), input)
	if err != nil {
		t.Fatalf("second pull: %v", err)
	}

	if len(first.Events) != len(second.Events) || first.Events[0].ID != second.Events[0].ID {
		t.Error("repeated pull returned different events")
	}
	if !first.NextCursor.Equal(second.NextCursor) {
		t.Errorf("cursors differ: %v vs %v", first.NextCursor, second.NextCursor)
	}
}

func TestService_Pull_RejectsNegativeCursor(t *testing.T) {
	t.Parallel()

	svc := newTestService(&optionsRepoMock{}, &stateRepoMock{}, &eventRepoMock{})

	_, err := svc.Pull(context.Background(), PullInput{
		UserID: uuid.New(),
		Since:  -1,
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}
