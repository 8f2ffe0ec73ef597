package registrystore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/carecore/internal/blobstore"
	"github.com/viant/carecore/internal/domain"
)

func newTestStore() *Store {
	return New(blobstore.New(afs.New(), "mem://localhost/carecore-registry-test"))
}

func fixedNow() time.Time {
	return time.Date(2025, 9, 30, 16, 45, 0, 0, time.UTC)
}

func TestStore_ReadMissingIsEmpty(t *testing.T) {
	store := newTestStore()
	reg, err := store.Read(context.Background(), "c1")
	require.NoError(t, err)
	assert.Empty(t, reg.PatientRegistry)
	assert.Empty(t, reg.ActivePatientID)
}

func TestStore_WriteRejectsInvalidActivePatient(t *testing.T) {
	store := newTestStore()
	reg := domain.NewRegistry("c1")
	reg.ActivePatientID = "patient_4"
	err := store.Write(context.Background(), reg)
	require.Error(t, err)
}

func TestStore_UpsertRoundTrip(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	patient := domain.NewPatientContext("c1", "patient_4", fixedNow())
	active := "patient_4"
	reg, err := store.Upsert(ctx, "c1", patient, &active, fixedNow())
	require.NoError(t, err)
	assert.Equal(t, "patient_4", reg.ActivePatientID)

	reloaded, err := store.Read(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "patient_4", reloaded.ActivePatientID)
	assert.True(t, reloaded.HasPatient("patient_4"))
}

func TestStore_ArchiveIdempotent(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	reg := domain.NewRegistry("c2")
	require.NoError(t, store.Write(ctx, reg))

	require.NoError(t, store.Archive(ctx, "c2", "archive", fixedNow()))

	exists, err := store.blobs.Exists(ctx, Path("c2"))
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.Archive(ctx, "c2", "archive", fixedNow()))
}
