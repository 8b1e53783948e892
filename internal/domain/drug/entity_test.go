package drug

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qaioz/molstore/pkg/errors"
)

func TestQuantityUnit_IsValid(t *testing.T) {
	for _, u := range []QuantityUnit{UnitMolar, UnitMass, UnitVolume} {
		assert.True(t, u.IsValid(), u)
	}
	assert.False(t, QuantityUnit("GRAMS").IsValid())
	assert.False(t, QuantityUnit("molar").IsValid())
}

func TestNewDrug_Valid(t *testing.T) {
	desc := "pain relief"
	d, err := NewDrug("  Aspirin ", &desc, []Component{
		{MoleculeID: 1, Quantity: 0.5, QuantityUnit: UnitMass},
		{MoleculeID: 2, Quantity: 1, QuantityUnit: UnitMolar},
	})
	require.NoError(t, err)
	assert.Equal(t, "Aspirin", d.Name)
	assert.Equal(t, &desc, d.Description)
	assert.Len(t, d.Molecules, 2)
}

func TestNewDrug_NilComponentsBecomeEmpty(t *testing.T) {
	d, err := NewDrug("Placebo", nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, d.Molecules)
	assert.Empty(t, d.Molecules)
}

func TestNewDrug_Invalid(t *testing.T) {
	cases := []struct {
		name       string
		drugName   string
		components []Component
		code       errors.ErrorCode
	}{
		{"blank name", " ", nil, errors.ErrCodeValidation},
		{"bad unit", "X", []Component{{MoleculeID: 1, Quantity: 1, QuantityUnit: "LITRE"}}, errors.ErrCodeDrugInvalidQuantityUnit},
		{"zero quantity", "X", []Component{{MoleculeID: 1, Quantity: 0, QuantityUnit: UnitMass}}, errors.ErrCodeValidation},
		{"duplicate molecule", "X", []Component{
			{MoleculeID: 1, Quantity: 1, QuantityUnit: UnitMass},
			{MoleculeID: 1, Quantity: 2, QuantityUnit: UnitMass},
		}, errors.ErrCodeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewDrug(tc.drugName, nil, tc.components)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, tc.code))
			assert.Equal(t, 400, errors.HTTPStatusForCode(errors.GetCode(err)))
		})
	}
}

func TestNotFound(t *testing.T) {
	err := NotFound(9)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDrugNotFound))
	assert.True(t, errors.IsNotFound(err))
}

//Personal.AI order the ending
