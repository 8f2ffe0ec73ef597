// Package contextsvc implements the Context Service: the component that
// validates and applies the Context Analyzer's decision against the
// registry and a turn's in-memory ChatContext.
package contextsvc

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/viant/carecore/internal/analyzer"
	"github.com/viant/carecore/internal/domain"
	"github.com/viant/carecore/internal/historystore"
	"github.com/viant/carecore/internal/registrystore"
)

// Decision is one of the seven outcomes DecideAndApply can report.
type Decision string

const (
	DecisionNone                Decision = "NONE"
	DecisionUnchanged           Decision = "UNCHANGED"
	DecisionNewBlank            Decision = "NEW_BLANK"
	DecisionSwitchExisting      Decision = "SWITCH_EXISTING"
	DecisionClear               Decision = "CLEAR"
	DecisionRestoredFromStorage Decision = "RESTORED_FROM_STORAGE"
	DecisionNeedsPatientID      Decision = "NEEDS_PATIENT_ID"
)

// TimingInfo records how long each pipeline stage took.
type TimingInfo struct {
	Hydrate   time.Duration
	Analyze   time.Duration
	Transform time.Duration
	Total     time.Duration
}

// ClearReport is the best-effort outcome of a clear operation: archival of
// one patient's history failing must not prevent archival of the others,
// so failures are collected rather than aborting early.
type ClearReport struct {
	ArchivedSession  bool
	ArchivedPatients []string
	FailedPatients   map[string]error
	ArchivedRegistry bool
	RegistryError    error
}

// Failed reports whether any part of the clear operation did not succeed.
func (r *ClearReport) Failed() bool {
	return r.RegistryError != nil || len(r.FailedPatients) > 0
}

// Service is the Context Service.
type Service struct {
	registry      *registrystore.Store
	history       *historystore.Store
	analyzer      *analyzer.Analyzer
	validator     *domain.PatientIDValidator
	archiveFolder string
	now           func() time.Time
}

// New constructs a Service. now defaults to time.Now when nil.
func New(registry *registrystore.Store, history *historystore.Store, an *analyzer.Analyzer, validator *domain.PatientIDValidator, archiveFolder string, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{registry: registry, history: history, analyzer: an, validator: validator, archiveFolder: archiveFolder, now: now}
}

// DecideAndApply runs the mandatory hydrate -> heuristic/analyze ->
// validate&transform pipeline against chatCtx, mutating it in place.
func (s *Service) DecideAndApply(ctx context.Context, userText string, chatCtx *domain.ChatContext) (Decision, TimingInfo, *ClearReport, error) {
	start := s.now()
	var timing TimingInfo

	hydrateStart := s.now()
	restored, err := s.hydrate(ctx, chatCtx)
	if err != nil {
		return DecisionNone, timing, nil, err
	}
	timing.Hydrate = s.now().Sub(hydrateStart)

	analyzeStart := s.now()
	decision := s.classify(ctx, userText, chatCtx)
	timing.Analyze = s.now().Sub(analyzeStart)

	transformStart := s.now()
	result, report, err := s.transform(ctx, decision, chatCtx, restored)
	timing.Transform = s.now().Sub(transformStart)
	timing.Total = s.now().Sub(start)
	return result, timing, report, err
}

// hydrate reads the registry, replaces chat_ctx.patient_contexts verbatim,
// and restores an unset patient_id from the registry's active pointer.
// It reports whether the restoration happened.
func (s *Service) hydrate(ctx context.Context, chatCtx *domain.ChatContext) (bool, error) {
	reg, err := s.registry.Read(ctx, chatCtx.ConversationID)
	if err != nil {
		return false, fmt.Errorf("contextsvc: hydrate: %w", err)
	}
	chatCtx.PatientContexts = reg.PatientRegistry

	if chatCtx.PatientID == "" && reg.ActivePatientID != "" {
		chatCtx.PatientID = reg.ActivePatientID
		return true, nil
	}
	return false, nil
}

// classify applies the short-message heuristic, falling back to the
// Analyzer. Analyzer errors degrade to NONE with empty reasoning, per the
// Turn Controller's failure semantics.
func (s *Service) classify(ctx context.Context, userText string, chatCtx *domain.ChatContext) analyzer.Decision {
	if decision, ok := analyzer.ApplyShortMessageHeuristic(userText, chatCtx.PatientID != ""); ok {
		return decision
	}
	known := knownPatientIDs(chatCtx)
	decision, err := s.analyzer.Analyze(ctx, userText, chatCtx.PatientID, known)
	if err != nil {
		return analyzer.Decision{Action: analyzer.ActionNone, Reasoning: ""}
	}
	return decision
}

func knownPatientIDs(chatCtx *domain.ChatContext) []string {
	ids := make([]string, 0, len(chatCtx.PatientContexts))
	for id := range chatCtx.PatientContexts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Service) transform(ctx context.Context, decision analyzer.Decision, chatCtx *domain.ChatContext, restored bool) (Decision, *ClearReport, error) {
	fallback := DecisionUnchanged
	if restored {
		fallback = DecisionRestoredFromStorage
	}

	switch decision.Action {
	case analyzer.ActionClear:
		report := s.clear(ctx, chatCtx)
		return DecisionClear, report, nil

	case analyzer.ActionUnchanged:
		return fallback, nil, nil

	case analyzer.ActionNone:
		if restored {
			return DecisionRestoredFromStorage, nil, nil
		}
		return DecisionNone, nil, nil

	case analyzer.ActionActivateNew:
		if !s.validator.Valid(decision.PatientID) {
			return DecisionNeedsPatientID, nil, nil
		}
		if chatCtx.HasPatient(decision.PatientID) {
			return s.switchExisting(ctx, chatCtx, decision.PatientID, fallback)
		}
		now := s.now()
		patient := domain.NewPatientContext(chatCtx.ConversationID, decision.PatientID, now)
		active := decision.PatientID
		if _, err := s.registry.Upsert(ctx, chatCtx.ConversationID, patient, &active, now); err != nil {
			return DecisionNone, nil, fmt.Errorf("contextsvc: activate new: %w", err)
		}
		chatCtx.PatientID = decision.PatientID
		if chatCtx.PatientContexts == nil {
			chatCtx.PatientContexts = map[string]*domain.PatientContext{}
		}
		chatCtx.PatientContexts[decision.PatientID] = patient
		s.analyzer.Reset()
		return DecisionNewBlank, nil, nil

	case analyzer.ActionSwitchExisting:
		if !s.validator.Valid(decision.PatientID) || !chatCtx.HasPatient(decision.PatientID) {
			return DecisionNeedsPatientID, nil, nil
		}
		return s.switchExisting(ctx, chatCtx, decision.PatientID, fallback)

	default:
		return DecisionNone, nil, nil
	}
}

func (s *Service) switchExisting(ctx context.Context, chatCtx *domain.ChatContext, patientID string, fallback Decision) (Decision, *ClearReport, error) {
	if patientID == chatCtx.PatientID {
		return fallback, nil, nil
	}
	now := s.now()
	active := patientID
	if _, err := s.registry.Upsert(ctx, chatCtx.ConversationID, chatCtx.PatientContexts[patientID], &active, now); err != nil {
		return DecisionNone, nil, fmt.Errorf("contextsvc: switch existing: %w", err)
	}
	chatCtx.PatientID = patientID
	s.analyzer.Reset()
	return DecisionSwitchExisting, nil, nil
}

// clear archives the session file, every roster patient history file, and
// the registry file into a single timestamped archive folder, then deletes
// the live versions. Archival is best-effort: a failure archiving one
// patient file does not stop archival of the others.
func (s *Service) clear(ctx context.Context, chatCtx *domain.ChatContext) *ClearReport {
	report := &ClearReport{FailedPatients: map[string]error{}}
	now := s.now()
	// The stable, compatibility-relevant archive layout nests every archived
	// object under {conversation_id}/{archiveFolder}/{ts}/..., so the folder
	// handed to the stores' Archive/ArchiveToFolder methods must already
	// carry the conversation id and this turn's timestamp.
	ts := now.UTC().Format("20060102T150405")
	folder := fmt.Sprintf("%s/%s/%s", chatCtx.ConversationID, s.archiveFolder, ts)

	if err := s.history.ArchiveToFolder(ctx, chatCtx.ConversationID, "", folder, now); err != nil {
		report.FailedPatients["session"] = err
	} else {
		report.ArchivedSession = true
	}
	for id := range chatCtx.PatientContexts {
		if err := s.history.ArchiveToFolder(ctx, chatCtx.ConversationID, id, folder, now); err != nil {
			report.FailedPatients[id] = err
			continue
		}
		report.ArchivedPatients = append(report.ArchivedPatients, id)
	}

	if err := s.registry.Archive(ctx, chatCtx.ConversationID, folder, now); err != nil {
		report.RegistryError = err
	} else {
		report.ArchivedRegistry = true
	}

	chatCtx.PatientID = ""
	chatCtx.PatientContexts = map[string]*domain.PatientContext{}
	chatCtx.ChatHistory = nil
	return report
}

// ClearConversation is the Turn Controller's entry point for the literal
// clear-command path (step 2 of the pipeline): it hydrates the roster for
// conversationID, archives everything, and writes a fresh empty session
// file so the conversation starts clean on the next turn.
func (s *Service) ClearConversation(ctx context.Context, conversationID string) (*ClearReport, error) {
	chatCtx := domain.NewChatContext(conversationID)
	if _, err := s.hydrate(ctx, chatCtx); err != nil {
		return nil, err
	}
	report := s.clear(ctx, chatCtx)
	if err := s.history.Write(ctx, chatCtx); err != nil {
		return report, fmt.Errorf("contextsvc: write fresh session after clear: %w", err)
	}
	s.analyzer.Reset()
	return report, nil
}
