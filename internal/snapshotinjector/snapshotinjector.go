// Package snapshotinjector implements the Snapshot Injector: the
// strip-then-inject pipeline that keeps exactly one fresh
// PATIENT_CONTEXT_JSON system message at the head of a turn's history.
package snapshotinjector

import (
	"sort"
	"time"

	"github.com/viant/carecore/internal/domain"
)

// Strip removes every message where role=system and text starts with the
// snapshot prefix, preserving the order of the remaining messages.
func Strip(history domain.ChatHistory) domain.ChatHistory {
	out := make(domain.ChatHistory, 0, len(history))
	for _, msg := range history {
		if domain.IsSnapshot(msg) {
			continue
		}
		out = append(out, msg)
	}
	return out
}

// Inject prepends exactly one fresh snapshot system message ahead of
// history, listing allPatientIDs lexicographically sorted. If
// allPatientIDs is empty and patientID is empty (no patient or roster entry
// known this turn), history is returned unchanged with no snapshot
// injected.
func Inject(history domain.ChatHistory, conversationID, patientID string, allPatientIDs []string, now time.Time) domain.ChatHistory {
	if patientID == "" && len(allPatientIDs) == 0 {
		return history
	}
	sorted := append([]string(nil), allPatientIDs...)
	sort.Strings(sorted)

	snapshot := domain.NewSnapshotMessage(conversationID, patientID, sorted, now)
	out := make(domain.ChatHistory, 0, len(history)+1)
	out = append(out, snapshot)
	out = append(out, history...)
	return out
}

// Apply runs Strip then Inject against history, per the mandated Turn
// Controller order.
func Apply(history domain.ChatHistory, conversationID, patientID string, allPatientIDs []string, now time.Time) domain.ChatHistory {
	return Inject(Strip(history), conversationID, patientID, allPatientIDs, now)
}
