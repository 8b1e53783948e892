//go:build integration

package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qaioz/molstore/internal/domain/drug"
	"github.com/qaioz/molstore/internal/domain/molecule"
	"github.com/qaioz/molstore/internal/infrastructure/database/postgres"
	"github.com/qaioz/molstore/internal/infrastructure/monitoring/logging"
	"github.com/qaioz/molstore/internal/testutil"
	pkgerrors "github.com/qaioz/molstore/pkg/errors"
)

func TestRepositories_AgainstPostgres(t *testing.T) {
	cfg := testutil.StartPostgres(t)
	log := logging.NewNopLogger()
	require.NoError(t, postgres.RunMigrations(cfg, log))

	conn, err := postgres.NewConnection(cfg, log)
	require.NoError(t, err)
	defer conn.Close()

	ctx := context.Background()
	mols := NewPostgresMoleculeRepo(conn, log)
	drugs := NewPostgresDrugRepo(conn, log)

	ethanol, err := mols.Save(ctx, &molecule.Molecule{SMILES: "CCO", Name: strPtr("Ethanol"), Mass: 46.069})
	require.NoError(t, err)

	_, err = mols.Save(ctx, &molecule.Molecule{SMILES: "CCO"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeMoleculeAlreadyExists))

	n, err := mols.BulkInsert(ctx, []*molecule.Molecule{
		{SMILES: "CCO"},
		{SMILES: "C", Name: strPtr("Methane"), Mass: 16.043},
		{SMILES: "CC", Name: strPtr("Ethane"), Mass: 30.07},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	total, err := mols.Count(ctx, molecule.SearchParams{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	byMass, err := mols.FindAll(ctx, 0, 10, molecule.SearchParams{OrderBy: strPtr("mass"), Order: strPtr("desc")})
	require.NoError(t, err)
	require.Len(t, byMass, 3)
	assert.Equal(t, "CCO", byMass[0].SMILES)

	fuzzy, err := mols.FindAll(ctx, 0, 10, molecule.SearchParams{Name: strPtr("Ethanl")})
	require.NoError(t, err)
	require.NotEmpty(t, fuzzy)
	assert.Equal(t, "Ethanol", *fuzzy[0].Name)

	d, err := drugs.Save(ctx, &drug.Drug{
		Name:      "Spirit",
		Molecules: []drug.Component{{MoleculeID: ethanol.ID, Quantity: 40, QuantityUnit: drug.UnitVolume}},
	})
	require.NoError(t, err)

	err = mols.Delete(ctx, ethanol.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeMoleculeInUse))

	_, err = drugs.Save(ctx, &drug.Drug{
		Name:      "Ghost",
		Molecules: []drug.Component{{MoleculeID: 9999, Quantity: 1, QuantityUnit: drug.UnitMass}},
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeBadRequest))

	require.NoError(t, drugs.Delete(ctx, d.ID))
	require.NoError(t, mols.Delete(ctx, ethanol.ID))
}

//Personal.AI order the ending
