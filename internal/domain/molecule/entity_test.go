package molecule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qaioz/molstore/internal/chem"
	"github.com/qaioz/molstore/pkg/errors"
)

func strPtr(s string) *string      { return &s }
func floatPtr(f float64) *float64 { return &f }

func TestNewMolecule_ComputesMass(t *testing.T) {
	mol, err := NewMolecule(chem.NewToolkit(), " CCO ", strPtr("ethanol"))
	require.NoError(t, err)
	assert.Equal(t, "CCO", mol.SMILES)
	assert.Equal(t, "ethanol", mol.DisplayName())
	assert.InDelta(t, 46.069, mol.Mass, 1e-3)
	assert.Zero(t, mol.ID)
}

func TestNewMolecule_InvalidSMILES(t *testing.T) {
	_, err := NewMolecule(chem.NewToolkit(), "C((", nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeMoleculeInvalidSMILES))
	assert.Contains(t, err.Error(), "smiles=C((")
}

func TestNewUnvalidated_BestEffortMass(t *testing.T) {
	tk := chem.NewToolkit()
	assert.InDelta(t, 16.043, NewUnvalidated(tk, "C", nil).Mass, 1e-3)
	assert.Zero(t, NewUnvalidated(tk, "not smiles", nil).Mass)
}

func TestMolecule_Rename(t *testing.T) {
	mol := &Molecule{Name: strPtr("old")}
	mol.Rename(strPtr("  new  "))
	assert.Equal(t, "new", mol.DisplayName())

	mol.Rename(strPtr("   "))
	assert.Nil(t, mol.Name)

	mol.Rename(nil)
	assert.Equal(t, "", mol.DisplayName())
}

func TestNotFound(t *testing.T) {
	err := NotFound(42)
	assert.True(t, errors.IsNotFound(err))
	assert.Contains(t, err.Error(), "molecule_id=42")
}

func TestSearchParams_Validate(t *testing.T) {
	assert.NoError(t, SearchParams{}.Validate())
	assert.NoError(t, SearchParams{
		MinMass: floatPtr(10), MaxMass: floatPtr(10), OrderBy: strPtr("mass"), Order: strPtr("desc"),
	}.Validate())

	bad := []SearchParams{
		{MinMass: floatPtr(-1)},
		{MaxMass: floatPtr(-0.5)},
		{MinMass: floatPtr(20), MaxMass: floatPtr(10)},
		{OrderBy: strPtr("name")},
		{Order: strPtr("sideways")},
	}
	for _, p := range bad {
		err := p.Validate()
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
	}
}

func TestSearchParams_SortOrderAndZero(t *testing.T) {
	assert.True(t, SearchParams{}.IsZero())
	assert.False(t, SearchParams{Name: strPtr("x")}.IsZero())
	assert.Equal(t, "asc", string(SearchParams{}.SortOrder()))
	assert.Equal(t, "desc", string(SearchParams{Order: strPtr("desc")}.SortOrder()))
}

func TestSearchParams_CacheArgs(t *testing.T) {
	args := SearchParams{Name: strPtr("aspirin")}.CacheArgs()
	assert.Len(t, args, 5)
	assert.Equal(t, "aspirin", *args["name"].(*string))
	assert.Nil(t, args["min_mass"].(*float64))
}

//Personal.AI order the ending
