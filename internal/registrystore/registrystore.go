// Package registrystore implements the Registry Store: durable
// read/write/upsert/archive of the per-conversation patient roster.
package registrystore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/viant/carecore/internal/blobstore"
	"github.com/viant/carecore/internal/cerrors"
	"github.com/viant/carecore/internal/domain"
)

const schemaVersion = 2

// document is the on-disk shape for a Registry.
type document struct {
	SchemaVersion   int                         `json:"schema_version"`
	ConversationID  string                      `json:"conversation_id"`
	ActivePatientID *string                     `json:"active_patient_id"`
	PatientRegistry map[string]*domain.PatientContext `json:"patient_registry"`
	LastUpdated     time.Time                   `json:"last_updated"`
}

// Store is the Registry Store.
type Store struct {
	blobs *blobstore.Store
}

// New wraps a Blob Store Facade.
func New(blobs *blobstore.Store) *Store {
	return &Store{blobs: blobs}
}

// Path returns the object path holding conversationID's registry.
func Path(conversationID string) string {
	return fmt.Sprintf("%s/patient_context_registry.json", conversationID)
}

// Read returns the Registry for conversationID. A missing object is not an
// error: it yields an empty registry.
func (s *Store) Read(ctx context.Context, conversationID string) (*domain.Registry, error) {
	data, err := s.blobs.Get(ctx, Path(conversationID))
	if err != nil {
		if cerrors.Is(err, cerrors.KindNotFound) {
			return domain.NewRegistry(conversationID), nil
		}
		return nil, err
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, cerrors.Validation("registrystore.Read: unmarshal", err)
	}
	out := domain.NewRegistry(conversationID)
	if doc.ActivePatientID != nil {
		out.ActivePatientID = *doc.ActivePatientID
	}
	for id, pc := range doc.PatientRegistry {
		out.PatientRegistry[id] = pc
	}
	out.LastUpdated = doc.LastUpdated
	return out, nil
}

// Write serializes reg to its derived path in full.
func (s *Store) Write(ctx context.Context, reg *domain.Registry) error {
	if !reg.Valid() {
		return cerrors.Validation("registrystore.Write", fmt.Errorf("active patient %q is not in the roster", reg.ActivePatientID))
	}
	doc := document{
		SchemaVersion:   schemaVersion,
		ConversationID:  reg.ConversationID,
		PatientRegistry: reg.PatientRegistry,
		LastUpdated:     reg.LastUpdated,
	}
	if reg.ActivePatientID != "" {
		id := reg.ActivePatientID
		doc.ActivePatientID = &id
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return cerrors.Validation("registrystore.Write: marshal", err)
	}
	return s.blobs.Put(ctx, Path(reg.ConversationID), data)
}

// Upsert reads the live registry, applies ctx/active via domain.Registry.Upsert,
// writes it back, and returns the updated registry. last_updated is a plain
// timestamp, not a compare-and-swap token: concurrent writers to the same
// conversation overwrite each other, so a single writer per conversation is
// assumed.
func (s *Store) Upsert(ctx context.Context, conversationID string, patient *domain.PatientContext, active *string, now time.Time) (*domain.Registry, error) {
	reg, err := s.Read(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	reg.Upsert(patient, active, now)
	if err := s.Write(ctx, reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// Archive copies the live registry file to
// {archiveFolder}/{ts}_patient_context_registry_archived.json and deletes the
// source. archiveFolder is expected to already be the caller-composed,
// per-conversation, per-timestamp directory (see internal/contextsvc), not
// the bare configured archive root. Idempotent on repeated invocation.
func (s *Store) Archive(ctx context.Context, conversationID, archiveFolder string, now time.Time) error {
	src := Path(conversationID)
	ts := now.UTC().Format("20060102T150405")
	dst := fmt.Sprintf("%s/%s_patient_context_registry_archived.json", archiveFolder, ts)

	if err := s.blobs.Copy(ctx, src, dst); err != nil {
		return err
	}
	return s.blobs.Delete(ctx, src)
}
