package postgres

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qaioz/molstore/internal/infrastructure/monitoring/logging"
)

func TestEmbeddedMigrations_UpAndDownPaired(t *testing.T) {
	entries, err := fs.ReadDir(embeddedMigrations, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	names := make(map[string]bool, len(entries))
	for _, e := range entries {
		names[e.Name()] = true
	}

	ups := 0
	for name := range names {
		if !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		ups++
		down := strings.TrimSuffix(name, ".up.sql") + ".down.sql"
		assert.True(t, names[down], "missing %s", down)
	}
	assert.Equal(t, len(names), ups*2, "every migration has exactly one up and one down file")
}

func TestEmbeddedMigrations_CreateCoreTables(t *testing.T) {
	data, err := fs.ReadFile(embeddedMigrations, "migrations/000001_create_molecules.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(data), "molecules")

	data, err = fs.ReadFile(embeddedMigrations, "migrations/000002_create_drugs.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(data), "drug_molecule")
}

func TestSourceURL(t *testing.T) {
	cases := map[string]string{
		"internal/migrations":  "file://internal/migrations",
		"/abs/path/migrations": "file:///abs/path/migrations",
		"file://./migrations":  "file://./migrations",
		"github://owner/repo":  "github://owner/repo",
	}
	for in, want := range cases {
		assert.Equal(t, want, sourceURL(in), in)
	}
}

func TestMigrator_DownRejectsNonPositiveSteps(t *testing.T) {
	mg := &Migrator{logger: logging.NewNopLogger()}
	for _, steps := range []int{0, -1} {
		err := mg.Down(steps)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "steps must be greater than 0")
	}
}

//Personal.AI order the ending
