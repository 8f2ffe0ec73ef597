// Package historystore implements the History Store: per-conversation,
// per-patient (or session) chat history serialization with snapshot
// filtering on write.
package historystore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/viant/carecore/internal/blobstore"
	"github.com/viant/carecore/internal/cerrors"
	"github.com/viant/carecore/internal/domain"
)

// schemaVersion is the serialized document's schema_version field.
const schemaVersion = 2

// document is the on-disk shape: {schema_version, conversation_id, patient_id
// (nullable), chat_history: [{role, name?, content}, ...]}.
type document struct {
	SchemaVersion  int             `json:"schema_version"`
	ConversationID string          `json:"conversation_id"`
	PatientID      *string         `json:"patient_id"`
	ChatHistory    []historyEntry  `json:"chat_history"`
}

type historyEntry struct {
	Role    domain.Role `json:"role"`
	Name    string      `json:"name,omitempty"`
	Content string      `json:"content"`
}

// Store is the History Store.
type Store struct {
	blobs *blobstore.Store
}

// New wraps a Blob Store Facade.
func New(blobs *blobstore.Store) *Store {
	return &Store{blobs: blobs}
}

// Path returns the object path for conversationID/patientID, following the
// rule: session_context.json when patientID is empty, otherwise
// patient_{patientID}_context.json.
func Path(conversationID, patientID string) string {
	if patientID == "" {
		return fmt.Sprintf("%s/session_context.json", conversationID)
	}
	return fmt.Sprintf("%s/patient_%s_context.json", conversationID, patientID)
}

func kind(patientID string) string {
	if patientID == "" {
		return "session"
	}
	return "patient_" + patientID
}

// Read returns a ChatContext for conversationID/patientID. A missing object
// is not an error: it yields an empty history.
func (s *Store) Read(ctx context.Context, conversationID, patientID string) (*domain.ChatContext, error) {
	out := domain.NewChatContext(conversationID)
	out.PatientID = patientID

	path := Path(conversationID, patientID)
	data, err := s.blobs.Get(ctx, path)
	if err != nil {
		if cerrors.Is(err, cerrors.KindNotFound) {
			return out, nil
		}
		return nil, err
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, cerrors.Validation("historystore.Read: unmarshal", err)
	}
	history := make(domain.ChatHistory, 0, len(doc.ChatHistory))
	for _, entry := range doc.ChatHistory {
		history = append(history, domain.Message{Role: entry.Role, Name: entry.Name, Content: entry.Content})
	}
	out.ChatHistory = history
	return out, nil
}

// Write serializes chatCtx to its derived path. Every system message whose
// text starts with the ephemeral snapshot prefix is filtered out before
// encoding - this is the correctness boundary: no other code may assume the
// filter ran elsewhere.
func (s *Store) Write(ctx context.Context, chatCtx *domain.ChatContext) error {
	doc := document{
		SchemaVersion:  schemaVersion,
		ConversationID: chatCtx.ConversationID,
		ChatHistory:    make([]historyEntry, 0, len(chatCtx.ChatHistory)),
	}
	if chatCtx.PatientID != "" {
		id := chatCtx.PatientID
		doc.PatientID = &id
	}
	for _, msg := range chatCtx.ChatHistory {
		if domain.IsSnapshot(msg) {
			continue
		}
		doc.ChatHistory = append(doc.ChatHistory, historyEntry{Role: msg.Role, Name: msg.Name, Content: msg.Content})
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return cerrors.Validation("historystore.Write: marshal", err)
	}
	path := Path(chatCtx.ConversationID, chatCtx.PatientID)
	return s.blobs.Put(ctx, path, data)
}

// ArchiveToFolder copies the live file for conversationID/patientID to
// {archiveFolder}/{conversationID}/{ts}_{kind}_archived.json and deletes the
// source. archiveFolder is expected to already be the caller-composed,
// per-conversation, per-timestamp directory (see internal/contextsvc), not
// the bare configured archive root. Idempotent: if the source is already
// missing, the copy is skipped and no error is returned.
func (s *Store) ArchiveToFolder(ctx context.Context, conversationID, patientID, archiveFolder string, now time.Time) error {
	src := Path(conversationID, patientID)
	ts := now.UTC().Format("20060102T150405")
	dst := fmt.Sprintf("%s/%s/%s_%s_archived.json", archiveFolder, conversationID, ts, kind(patientID))

	if err := s.blobs.Copy(ctx, src, dst); err != nil {
		return err
	}
	return s.blobs.Delete(ctx, src)
}
