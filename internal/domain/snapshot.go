package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// SnapshotPrefix is the literal prefix that marks a system message as the
// ephemeral patient-context grounding snapshot. Persistence must never
// retain a message carrying it; the History Store's write filter is the
// final safety net for that rule.
const SnapshotPrefix = "PATIENT_CONTEXT_JSON:"

// SnapshotBody is the compact JSON object that follows SnapshotPrefix.
type SnapshotBody struct {
	ConversationID string   `json:"conversation_id"`
	PatientID      string   `json:"patient_id,omitempty"`
	AllPatientIDs  []string `json:"all_patient_ids"`
	GeneratedAt    string   `json:"generated_at"`
}

// IsSnapshot reports whether msg is the ephemeral grounding snapshot: a
// system-role message whose text begins with SnapshotPrefix.
func IsSnapshot(msg Message) bool {
	return msg.Role == RoleSystem && strings.HasPrefix(msg.Content, SnapshotPrefix)
}

// NewSnapshotMessage builds a fresh snapshot message for the given registry
// state. now must be UTC; the body's generated_at is ISO-8601 with a
// trailing "Z".
func NewSnapshotMessage(conversationID, patientID string, allPatientIDs []string, now time.Time) Message {
	body := SnapshotBody{
		ConversationID: conversationID,
		PatientID:      patientID,
		AllPatientIDs:  allPatientIDs,
		GeneratedAt:    now.UTC().Format("2006-01-02T15:04:05.000Z"),
	}
	encoded, _ := json.Marshal(body)
	return Message{
		Role:    RoleSystem,
		Content: SnapshotPrefix + " " + string(encoded),
	}
}

// ChatContext is the in-memory state the Context Service and Turn
// Controller thread through one turn.
type ChatContext struct {
	ConversationID  string
	PatientID       string
	PatientContexts map[string]*PatientContext
	ChatHistory     ChatHistory
}

// NewChatContext returns an empty ChatContext for conversationID.
func NewChatContext(conversationID string) *ChatContext {
	return &ChatContext{
		ConversationID:  conversationID,
		PatientContexts: map[string]*PatientContext{},
	}
}

// HasPatient reports whether id is a known patient context this turn.
func (c *ChatContext) HasPatient(id string) bool {
	_, ok := c.PatientContexts[id]
	return ok
}
