package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatientIDValidator_Default(t *testing.T) {
	v, err := NewPatientIDValidator("")
	require.NoError(t, err)
	assert.True(t, v.Valid("patient_4"))
	assert.True(t, v.Valid("patient_15"))
	assert.False(t, v.Valid("patient_"))
	assert.False(t, v.Valid("patientX4"))
	assert.False(t, v.Valid(""))
	assert.Equal(t, DefaultPatientIDPattern, v.Pattern())
}

func TestPatientIDValidator_CustomPattern(t *testing.T) {
	v, err := NewPatientIDValidator(`^pt-[a-z]+$`)
	require.NoError(t, err)
	assert.True(t, v.Valid("pt-abc"))
	assert.False(t, v.Valid("patient_4"))
}

func TestPatientIDValidator_BadPattern(t *testing.T) {
	_, err := NewPatientIDValidator("(")
	assert.Error(t, err)
}

func TestPatientContextClone(t *testing.T) {
	p := NewPatientContext("c1", "patient_4", fixedNow())
	p.Facts["k"] = "v"
	clone := p.Clone()
	clone.Facts["k"] = "changed"
	assert.Equal(t, "v", p.Facts["k"])
}
