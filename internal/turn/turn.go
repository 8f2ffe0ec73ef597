// Package turn implements the Turn Controller: the 8-step per-message
// pipeline that is the only component permitted to issue user-visible
// replies or observe both the pre- and post-Scheduler history.
package turn

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/viant/carecore/internal/contextsvc"
	"github.com/viant/carecore/internal/domain"
	"github.com/viant/carecore/internal/historystore"
	"github.com/viant/carecore/internal/retry"
	"github.com/viant/carecore/internal/scheduler"
	"github.com/viant/carecore/internal/snapshotinjector"
)

// DefaultDeadline is the recommended per-turn timeout.
const DefaultDeadline = 120 * time.Second

// clearCommands is the literal, case-insensitive, trimmed command set that
// triggers the early clear path in step 2.
var clearCommands = map[string]bool{
	"clear":                 true,
	"clear patient":         true,
	"clear context":         true,
	"clear patient context": true,
}

// Reply is the single user-visible outcome of one turn.
type Reply struct {
	Text        string
	Decision    contextsvc.Decision
	ClearReport *contextsvc.ClearReport
	Outcome     scheduler.Outcome
	TimedOut    bool
}

// Controller is the Turn Controller.
type Controller struct {
	history   *historystore.Store
	context   *contextsvc.Service
	validator *domain.PatientIDValidator
	scheduler *scheduler.Scheduler
	deadline  time.Duration
	now       func() time.Time
}

// New constructs a Controller. deadline defaults to DefaultDeadline when
// zero; now defaults to time.Now when nil.
func New(history *historystore.Store, contextSvc *contextsvc.Service, validator *domain.PatientIDValidator, sched *scheduler.Scheduler, deadline time.Duration, now func() time.Time) *Controller {
	if deadline <= 0 {
		deadline = DefaultDeadline
	}
	if now == nil {
		now = time.Now
	}
	return &Controller{history: history, context: contextSvc, validator: validator, scheduler: sched, deadline: deadline, now: now}
}

// Handle runs the 8-step pipeline for one user message in conversationID.
func (c *Controller) Handle(ctx context.Context, conversationID, userText string) (Reply, error) {
	ctx, cancel := context.WithTimeout(ctx, c.deadline)
	defer cancel()

	// Step 2 runs before any history load, per the clear command set being
	// checked against the raw input only.
	if isClearCommand(userText) {
		report, err := c.context.ClearConversation(ctx, conversationID)
		if err != nil {
			return Reply{}, fmt.Errorf("turn: clear: %w", err)
		}
		return Reply{Text: clearConfirmation(report), ClearReport: report, Decision: contextsvc.DecisionClear}, nil
	}

	// Step 1: patient-agnostic session load.
	var chatCtx *domain.ChatContext
	if err := retry.Do(ctx, func() error {
		var readErr error
		chatCtx, readErr = c.history.Read(ctx, conversationID, "")
		return readErr
	}); err != nil {
		return Reply{}, fmt.Errorf("turn: load session: %w", err)
	}

	// Step 3.
	decision, _, clearReport, err := c.context.DecideAndApply(ctx, userText, chatCtx)
	if err != nil {
		return Reply{}, fmt.Errorf("turn: decide and apply: %w", err)
	}

	// Step 4.
	if decision == contextsvc.DecisionNeedsPatientID {
		return Reply{
			Text:     fmt.Sprintf("I need a valid patient id (matching %s) before I can continue.", c.validator.Pattern()),
			Decision: decision,
		}, nil
	}

	if decision == contextsvc.DecisionClear {
		return Reply{Text: clearConfirmation(clearReport), ClearReport: clearReport, Decision: decision}, nil
	}

	// Step 5: patient-scoped history replaces the session-scoped one once a
	// patient is active.
	if chatCtx.PatientID != "" {
		if err := retry.Do(ctx, func() error {
			patientCtx, readErr := c.history.Read(ctx, conversationID, chatCtx.PatientID)
			if readErr != nil {
				return readErr
			}
			chatCtx.ChatHistory = patientCtx.ChatHistory
			return nil
		}); err != nil {
			return Reply{}, fmt.Errorf("turn: load patient history: %w", err)
		}
	}

	// Step 6: strip + inject the grounding snapshot.
	chatCtx.ChatHistory = snapshotinjector.Apply(chatCtx.ChatHistory, conversationID, chatCtx.PatientID, knownPatientIDs(chatCtx), c.now())

	// Step 7: append the user's raw message and run the Scheduler.
	chatCtx.ChatHistory = append(chatCtx.ChatHistory, domain.Message{Role: domain.RoleUser, Content: userText})

	runCtx, runCancel := context.WithTimeout(ctx, c.deadline)
	defer runCancel()
	finalHistory, outcome, err := c.scheduler.Run(runCtx, chatCtx.ChatHistory)
	timedOut := runCtx.Err() == context.DeadlineExceeded
	chatCtx.ChatHistory = finalHistory
	if err != nil && !timedOut {
		return Reply{}, fmt.Errorf("turn: scheduler: %w", err)
	}

	// Step 8: persist, snapshot filtered by the store's write.
	if writeErr := retry.Do(ctx, func() error {
		return c.history.Write(ctx, chatCtx)
	}); writeErr != nil {
		return Reply{}, fmt.Errorf("turn: persist history: %w", writeErr)
	}

	reply := Reply{Decision: decision, Outcome: outcome, TimedOut: timedOut}
	if timedOut {
		reply.Text = "This is taking longer than expected; your progress so far has been saved."
		return reply, nil
	}
	if last, ok := finalHistory.Last(); ok {
		reply.Text = last.Content
	}
	return reply, nil
}

func isClearCommand(userText string) bool {
	return clearCommands[strings.ToLower(strings.TrimSpace(userText))]
}

func clearConfirmation(report *contextsvc.ClearReport) string {
	if report != nil && report.Failed() {
		return "Patient context has been cleared, though some archival steps did not complete."
	}
	return "Patient context has been cleared."
}

func knownPatientIDs(chatCtx *domain.ChatContext) []string {
	ids := make([]string, 0, len(chatCtx.PatientContexts))
	for id := range chatCtx.PatientContexts {
		ids = append(ids, id)
	}
	return ids
}
