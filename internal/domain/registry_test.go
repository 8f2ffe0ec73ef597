package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryValid(t *testing.T) {
	r := NewRegistry("c1")
	assert.True(t, r.Valid(), "empty registry with no active patient is valid")

	r.ActivePatientID = "patient_4"
	assert.False(t, r.Valid(), "active patient not in roster violates invariant")

	r.PatientRegistry["patient_4"] = NewPatientContext("c1", "patient_4", fixedNow())
	assert.True(t, r.Valid())
}

func TestRegistrySortedPatientIDs(t *testing.T) {
	r := NewRegistry("c1")
	r.PatientRegistry["patient_15"] = NewPatientContext("c1", "patient_15", fixedNow())
	r.PatientRegistry["patient_4"] = NewPatientContext("c1", "patient_4", fixedNow())
	assert.Equal(t, []string{"patient_15", "patient_4"}, r.SortedPatientIDs())
}

func TestRegistryUpsert(t *testing.T) {
	r := NewRegistry("c1")
	ctx := NewPatientContext("c1", "patient_4", fixedNow())
	active := "patient_4"
	r.Upsert(ctx, &active, fixedNow())

	assert.Equal(t, "patient_4", r.ActivePatientID)
	assert.True(t, r.HasPatient("patient_4"))
	assert.Equal(t, fixedNow(), r.LastUpdated)
}

func TestRegistryClone(t *testing.T) {
	r := NewRegistry("c1")
	r.PatientRegistry["patient_4"] = NewPatientContext("c1", "patient_4", fixedNow())
	clone := r.Clone()
	clone.PatientRegistry["patient_4"].Facts["x"] = "y"
	assert.NotContains(t, r.PatientRegistry["patient_4"].Facts, "x")
}
