package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSnapshot(t *testing.T) {
	snap := NewSnapshotMessage("c1", "patient_4", []string{"patient_4"}, fixedNow())
	assert.True(t, IsSnapshot(snap))
	assert.False(t, IsSnapshot(Message{Role: RoleUser, Content: SnapshotPrefix + " {}"}))
	assert.False(t, IsSnapshot(Message{Role: RoleSystem, Content: "unrelated"}))
}

func TestNewSnapshotMessage_Format(t *testing.T) {
	snap := NewSnapshotMessage("c1", "patient_4", []string{"patient_15", "patient_4"}, fixedNow())
	require.True(t, strings.HasPrefix(snap.Content, SnapshotPrefix))
	body := strings.TrimSpace(strings.TrimPrefix(snap.Content, SnapshotPrefix))
	assert.Contains(t, body, `"conversation_id":"c1"`)
	assert.Contains(t, body, `"patient_id":"patient_4"`)
	assert.Contains(t, body, `"all_patient_ids":["patient_15","patient_4"]`)
	assert.Contains(t, body, "2025-09-30T16:45:00.000Z")
}
