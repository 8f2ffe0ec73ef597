package snapshotinjector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/carecore/internal/domain"
)

func fixedNow() time.Time {
	return time.Date(2025, 9, 30, 16, 45, 0, 0, time.UTC)
}

func TestStrip(t *testing.T) {
	history := domain.ChatHistory{
		domain.NewSnapshotMessage("c1", "patient_4", []string{"patient_4"}, fixedNow()),
		{Role: domain.RoleUser, Content: "hi"},
	}
	out := Strip(history)
	assert.Len(t, out, 1)
	assert.Equal(t, "hi", out[0].Content)
}

func TestInject_NoKnownPatientLeavesHistoryUntouched(t *testing.T) {
	history := domain.ChatHistory{{Role: domain.RoleUser, Content: "hi"}}
	out := Inject(history, "c1", "", nil, fixedNow())
	assert.Equal(t, history, out)
}

func TestInject_PrependsSortedSnapshot(t *testing.T) {
	history := domain.ChatHistory{{Role: domain.RoleUser, Content: "hi"}}
	out := Inject(history, "c1", "patient_4", []string{"patient_15", "patient_4"}, fixedNow())
	assert.Len(t, out, 2)
	assert.True(t, domain.IsSnapshot(out[0]))
	assert.Equal(t, "hi", out[1].Content)
}

func TestApply_Idempotent(t *testing.T) {
	history := domain.ChatHistory{{Role: domain.RoleUser, Content: "hi"}}
	once := Apply(history, "c1", "patient_4", []string{"patient_4"}, fixedNow())
	twice := Apply(once, "c1", "patient_4", []string{"patient_4"}, fixedNow())
	assert.Len(t, twice, 2, "re-applying must not accumulate duplicate snapshots")
}
