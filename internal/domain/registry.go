package domain

import (
	"sort"
	"time"
)

// Registry is the source of truth for which patient is active in a
// conversation and the full roster of patients known to it. Exactly one
// Registry exists per conversation.
type Registry struct {
	ConversationID  string                      `json:"conversation_id"`
	ActivePatientID string                      `json:"active_patient_id,omitempty"`
	PatientRegistry map[string]*PatientContext  `json:"patient_registry"`
	LastUpdated     time.Time                   `json:"last_updated"`
}

// NewRegistry returns an empty registry for conversationID.
func NewRegistry(conversationID string) *Registry {
	return &Registry{
		ConversationID:  conversationID,
		PatientRegistry: map[string]*PatientContext{},
	}
}

// HasPatient reports whether id is a roster member.
func (r *Registry) HasPatient(id string) bool {
	if r == nil || r.PatientRegistry == nil {
		return false
	}
	_, ok := r.PatientRegistry[id]
	return ok
}

// Valid reports the Registry invariant: if ActivePatientID is set, it must
// be a key of PatientRegistry.
func (r *Registry) Valid() bool {
	if r == nil {
		return true
	}
	if r.ActivePatientID == "" {
		return true
	}
	return r.HasPatient(r.ActivePatientID)
}

// SortedPatientIDs returns the roster keys, lexicographically sorted - the
// exact shape the ephemeral snapshot's all_patient_ids field requires.
func (r *Registry) SortedPatientIDs() []string {
	if r == nil || len(r.PatientRegistry) == 0 {
		return nil
	}
	ids := make([]string, 0, len(r.PatientRegistry))
	for id := range r.PatientRegistry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Upsert sets ctx in the roster and, when active is non-nil, updates the
// active pointer. updated_at on both the entry and the envelope advance to
// now; the registry's last_updated is documented as non-CAS - safe only
// under the single-writer-per-conversation assumption the whole core relies on.
func (r *Registry) Upsert(ctx *PatientContext, active *string, now time.Time) {
	if r.PatientRegistry == nil {
		r.PatientRegistry = map[string]*PatientContext{}
	}
	ctx.UpdatedAt = now
	r.PatientRegistry[ctx.PatientID] = ctx
	if active != nil {
		r.ActivePatientID = *active
	}
	r.LastUpdated = now
}

// Clone returns a deep copy of the registry.
func (r *Registry) Clone() *Registry {
	if r == nil {
		return nil
	}
	clone := &Registry{
		ConversationID:  r.ConversationID,
		ActivePatientID: r.ActivePatientID,
		LastUpdated:     r.LastUpdated,
		PatientRegistry: make(map[string]*PatientContext, len(r.PatientRegistry)),
	}
	for id, ctx := range r.PatientRegistry {
		clone.PatientRegistry[id] = ctx.Clone()
	}
	return clone
}
