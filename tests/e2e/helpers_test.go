//go:build e2e

package e2e_test

import (
	"log/slog"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lalabalavujon-a11y/Professional-Diver.app-sub002/internal/adapter/postgres"
	"github.com/lalabalavujon-a11y/Professional-Diver.app-sub002/internal/adapter/postgres/cardstate"
	"github.com/lalabalavujon-a11y/Professional-Diver.app-sub002/internal/adapter/postgres/deckoptions"
	"github.com/lalabalavujon-a11y/Professional-Diver.app-sub002/internal/adapter/postgres/reviewevent"
	"github.com/lalabalavujon-a11y/Professional-Diver.app-sub002/internal/adapter/postgres/testhelper"
	"github.com/lalabalavujon-a11y/Professional-Diver.app-sub002/internal/service/study"
)

const syncPageSize = 500

// newStudyStack wires the study service against a real database, the same
// way the composition root does.
func newStudyStack(t *testing.T) (*study.Service, *pgxpool.Pool) {
	t.Helper()

	pool := testhelper.SetupTestDB(t)

	svc := study.NewService(
		slog.Default(),
		deckoptions.New(pool),
		cardstate.New(pool),
		reviewevent.New(pool),
		postgres.NewTxManager(pool),
		syncPageSize,
	)

	return svc, pool
}
