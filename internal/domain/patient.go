package domain

import (
	"fmt"
	"regexp"
	"time"

	"github.com/viant/carecore/internal/cerrors"
)

// DefaultPatientIDPattern is used when no PATIENT_ID_PATTERN override is configured.
const DefaultPatientIDPattern = `^patient_[0-9]+$`

// PatientIDValidator validates candidate patient ids against a configurable
// regular expression. Rejecting malformed ids is a core contract, so every
// component that accepts a patient id from analyzer output or user text
// must route it through a validator built from the same pattern.
type PatientIDValidator struct {
	pattern *regexp.Regexp
	raw     string
}

// NewPatientIDValidator compiles pattern, falling back to DefaultPatientIDPattern
// when pattern is empty.
func NewPatientIDValidator(pattern string) (*PatientIDValidator, error) {
	if pattern == "" {
		pattern = DefaultPatientIDPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, cerrors.Validation("compile patient id pattern", err)
	}
	return &PatientIDValidator{pattern: re, raw: pattern}, nil
}

// Pattern returns the raw regular expression source, used to compose the
// NEEDS_PATIENT_ID guidance message.
func (v *PatientIDValidator) Pattern() string { return v.raw }

// Valid reports whether id matches the configured pattern.
func (v *PatientIDValidator) Valid(id string) bool {
	if id == "" {
		return false
	}
	return v.pattern.MatchString(id)
}

// PatientContext is the Registry's durable record for one patient within one
// conversation.
type PatientContext struct {
	PatientID      string                 `json:"patient_id"`
	Facts          map[string]interface{} `json:"facts"`
	ConversationID string                 `json:"conversation_id"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// NewPatientContext creates a fresh PatientContext with created_at=updated_at=now.
func NewPatientContext(conversationID, patientID string, now time.Time) *PatientContext {
	return &PatientContext{
		PatientID:      patientID,
		Facts:          map[string]interface{}{},
		ConversationID: conversationID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Clone returns a deep-enough copy safe for caching in a different owner.
func (p *PatientContext) Clone() *PatientContext {
	if p == nil {
		return nil
	}
	facts := make(map[string]interface{}, len(p.Facts))
	for k, v := range p.Facts {
		facts[k] = v
	}
	clone := *p
	clone.Facts = facts
	return &clone
}

// String implements fmt.Stringer for debug logging.
func (p *PatientContext) String() string {
	if p == nil {
		return "<nil>"
	}
	return fmt.Sprintf("PatientContext{id=%s, updated_at=%s}", p.PatientID, p.UpdatedAt.Format(time.RFC3339))
}
