// Package analyzer implements the Context Analyzer: an LLM-backed
// classifier that turns a user utterance into a structured action over
// patient context.
package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/viant/carecore/genai/llm"
)

// Action is one of the five decision actions the analyzer can produce.
type Action string

const (
	ActionNone            Action = "NONE"
	ActionActivateNew     Action = "ACTIVATE_NEW"
	ActionSwitchExisting  Action = "SWITCH_EXISTING"
	ActionUnchanged       Action = "UNCHANGED"
	ActionClear           Action = "CLEAR"
)

// Decision is the analyzer's structured output.
type Decision struct {
	Action    Action `json:"action"`
	PatientID string `json:"patient_id,omitempty"`
	Reasoning string `json:"reasoning"`
}

// shortMessageTokens are the tokens whose presence in a short message
// disqualifies it from the short-message heuristic.
var shortMessageTokens = []string{"patient", "clear", "switch"}

// ApplyShortMessageHeuristic applies the Service's pre-analyzer heuristic:
// if text is at most 15 runes and contains none of the disqualifying
// tokens (case-insensitive), skip the analyzer entirely. ok reports
// whether the heuristic fired.
func ApplyShortMessageHeuristic(userText string, patientActive bool) (decision Decision, ok bool) {
	if len([]rune(userText)) > 15 {
		return Decision{}, false
	}
	lower := strings.ToLower(userText)
	for _, tok := range shortMessageTokens {
		if strings.Contains(lower, tok) {
			return Decision{}, false
		}
	}
	if patientActive {
		return Decision{Action: ActionUnchanged, Reasoning: "short message heuristic"}, true
	}
	return Decision{Action: ActionNone, Reasoning: "short message heuristic"}, true
}

// Analyzer is the LLM-backed classifier. It carries conversational state
// across calls (so the model can reason about drift) that MUST be reset
// whenever the active patient changes, preventing reasoning leakage
// between patients.
type Analyzer struct {
	model llm.Model

	mu      sync.Mutex
	history []llm.Message
}

// New constructs an Analyzer bound to model.
func New(model llm.Model) *Analyzer {
	return &Analyzer{model: model}
}

// Reset clears the analyzer's accumulated conversational state.
func (a *Analyzer) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = nil
}

// Analyze classifies userText given the currently active patient (empty if
// none) and the known roster patient ids. On unparseable model output it
// returns an error; callers (the Context Service) must degrade to NONE.
func (a *Analyzer) Analyze(ctx context.Context, userText, priorPatientID string, knownPatientIDs []string) (Decision, error) {
	prompt := buildPrompt(userText, priorPatientID, knownPatientIDs)

	a.mu.Lock()
	messages := append([]llm.Message{}, a.history...)
	messages = append(messages, llm.NewUserMessage(prompt))
	a.mu.Unlock()

	resp, err := a.model.Generate(ctx, &llm.GenerateRequest{
		Instructions: systemInstructions,
		Messages:     messages,
	})
	if err != nil {
		return Decision{}, fmt.Errorf("analyzer: generate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Decision{}, fmt.Errorf("analyzer: empty response")
	}
	text := llm.MessageText(resp.Choices[0].Message)

	decision, err := parseDecision(text)
	if err != nil {
		return Decision{}, err
	}

	a.mu.Lock()
	a.history = append(messages, resp.Choices[0].Message)
	a.mu.Unlock()

	return decision, nil
}

const systemInstructions = `You classify a patient-care conversation message into one discrete action.
Respond with exactly one JSON object: {"action": "...", "patient_id": "...", "reasoning": "..."}.
action must be one of NONE, ACTIVATE_NEW, SWITCH_EXISTING, UNCHANGED, CLEAR.
patient_id is required (non-empty) for ACTIVATE_NEW and SWITCH_EXISTING, and must be omitted or empty otherwise.`

func buildPrompt(userText, priorPatientID string, knownPatientIDs []string) string {
	active := priorPatientID
	if active == "" {
		active = "(none)"
	}
	return fmt.Sprintf("active_patient_id: %s\nknown_patient_ids: %v\nmessage: %s", active, knownPatientIDs, userText)
}

func parseDecision(text string) (Decision, error) {
	text = strings.TrimSpace(text)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return Decision{}, fmt.Errorf("analyzer: no JSON object in response")
	}
	var decision Decision
	if err := json.Unmarshal([]byte(text[start:end+1]), &decision); err != nil {
		return Decision{}, fmt.Errorf("analyzer: unmarshal: %w", err)
	}
	switch decision.Action {
	case ActionNone, ActionActivateNew, ActionSwitchExisting, ActionUnchanged, ActionClear:
	default:
		return Decision{}, fmt.Errorf("analyzer: unknown action %q", decision.Action)
	}
	needsID := decision.Action == ActionActivateNew || decision.Action == ActionSwitchExisting
	if needsID && decision.PatientID == "" {
		return Decision{}, fmt.Errorf("analyzer: action %s requires patient_id", decision.Action)
	}
	if !needsID {
		decision.PatientID = ""
	}
	return decision, nil
}
