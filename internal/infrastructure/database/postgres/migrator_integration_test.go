//go:build integration

package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qaioz/molstore/internal/infrastructure/database/postgres"
	"github.com/qaioz/molstore/internal/infrastructure/monitoring/logging"
	"github.com/qaioz/molstore/internal/testutil"
)

func TestMigrator_Lifecycle(t *testing.T) {
	cfg := testutil.StartPostgres(t)
	log := logging.NewNopLogger()

	mg, err := postgres.NewMigrator(cfg, log)
	require.NoError(t, err)
	defer mg.Close()

	version, dirty, err := mg.Status()
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)
	assert.False(t, dirty)

	require.NoError(t, mg.Up())
	version, _, err = mg.Status()
	require.NoError(t, err)
	assert.Equal(t, uint(3), version)

	// Already up to date.
	require.NoError(t, mg.Up())

	require.NoError(t, mg.Down(1))
	version, _, err = mg.Status()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)

	require.NoError(t, mg.Force(2))
	require.NoError(t, mg.Up())
}

func TestRunMigrations_CreatesExpectedTables(t *testing.T) {
	cfg := testutil.StartPostgres(t)
	log := logging.NewNopLogger()

	require.NoError(t, postgres.RunMigrations(cfg, log))

	conn, err := postgres.NewConnection(cfg, log)
	require.NoError(t, err)
	defer conn.Close()

	for _, table := range []string{"molecules", "drugs", "drug_molecule"} {
		var exists bool
		err := conn.DB().QueryRowContext(context.Background(),
			`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)`, table).Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, table)
	}
}

//Personal.AI order the ending
