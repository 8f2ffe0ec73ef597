// Package scheduler implements the Group-Chat Scheduler: per-turn speaker
// selection, agent invocation, and termination evaluation over a shared
// chat history.
package scheduler

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/viant/carecore/internal/agentfactory"
	"github.com/viant/carecore/internal/domain"
)

// DefaultIterationCap bounds how many agent turns one user turn may take
// before the scheduler forces termination regardless of the termination
// evaluator's verdict.
const DefaultIterationCap = 30

// Outcome is the terminal state a Run reached.
type Outcome string

const (
	OutcomeAwaitUser  Outcome = "await-user"
	OutcomeDone       Outcome = "done"
	OutcomeCapReached Outcome = "cap-reached"
)

// handoffPattern matches an asterisk-wrapped agent name token, e.g. "*Doc*".
var handoffPattern = regexp.MustCompile(`\*([A-Za-z0-9_\-]+)\*`)

// planIndicators are the literal tokens that mark a facilitator message as
// presenting a plan awaiting user confirmation.
var planIndicators = []string{"Plan", "plan:"}

var numberedListItem = regexp.MustCompile(`(?m)^\s*\d+\.`)
var bulletListItem = regexp.MustCompile(`(?m)^\s*-`)

// TerminationEvaluator is the LLM-backed fallback rule consulted when no
// deterministic termination override applies.
type TerminationEvaluator interface {
	// ShouldContinue reports whether the group chat should keep going given
	// the last message's text.
	ShouldContinue(ctx context.Context, lastMessageText string) (bool, error)
}

// Scheduler runs the selection/invocation/termination loop for one turn.
type Scheduler struct {
	agents        []agentfactory.Agent
	facilitator   agentfactory.Agent
	termination   TerminationEvaluator
	iterationCap  int
}

// New constructs a Scheduler. agents must include exactly the facilitator
// named facilitatorName among its members.
func New(agents []agentfactory.Agent, facilitatorName string, termination TerminationEvaluator, iterationCap int) (*Scheduler, error) {
	if iterationCap <= 0 {
		iterationCap = DefaultIterationCap
	}
	var facilitator agentfactory.Agent
	for _, a := range agents {
		if a.Name() == facilitatorName {
			facilitator = a
			break
		}
	}
	if facilitator == nil {
		return nil, fmt.Errorf("scheduler: no agent named %q found for facilitator role", facilitatorName)
	}
	return &Scheduler{agents: agents, facilitator: facilitator, termination: termination, iterationCap: iterationCap}, nil
}

// Run drives the turn loop starting from history (which already contains
// the freshly appended user message) and returns the updated history plus
// the terminal outcome.
func (s *Scheduler) Run(ctx context.Context, history domain.ChatHistory) (domain.ChatHistory, Outcome, error) {
	spoken := map[string]bool{}

	for iteration := 0; ; iteration++ {
		if iteration >= s.iterationCap {
			return history, OutcomeCapReached, nil
		}

		selected, gated := s.selectSpeaker(history, spoken)
		if gated {
			return history, OutcomeAwaitUser, nil
		}

		msg, err := selected.Invoke(ctx, history)
		if err != nil {
			// Agent invocation failures abort that agent's turn only: a
			// synthetic assistant message records the failure and the next
			// selection defers to the facilitator.
			history = append(history, domain.Message{
				Role:    domain.RoleAssistant,
				Name:    selected.Name(),
				Content: fmt.Sprintf("(%s was unable to respond: %v)", selected.Name(), err),
			})
			spoken[selected.Name()] = true
			continue
		}
		history = append(history, msg)
		spoken[selected.Name()] = true

		shouldContinue, err := s.evaluateTermination(ctx, msg)
		if err != nil {
			return history, OutcomeDone, err
		}
		if !shouldContinue {
			return history, OutcomeDone, nil
		}
	}
}

// selectSpeaker applies the selection rules in order. gated reports whether
// the confirmation gate fired, meaning the turn loop must end immediately
// and yield control back to the user.
func (s *Scheduler) selectSpeaker(history domain.ChatHistory, spoken map[string]bool) (agentfactory.Agent, bool) {
	last, ok := lastNonSystem(history)

	// (a) confirmation gate
	if ok && last.Role == domain.RoleAssistant && last.Name == s.facilitator.Name() && looksLikePlan(last.Content) && !userMessageAfter(history, last) {
		return nil, true
	}

	// (b) explicit handoff token
	if ok {
		if name, found := parseHandoff(last.Content); found {
			if agent, exists := s.findAgent(name); exists && !spoken[agent.Name()] {
				return agent, false
			}
		}
	}

	// (c) default to facilitator, (d) enforce once-per-turn for non-facilitator agents
	return s.facilitator, false
}

func (s *Scheduler) findAgent(name string) (agentfactory.Agent, bool) {
	for _, a := range s.agents {
		if a.Name() == name {
			return a, true
		}
	}
	return nil, false
}

func (s *Scheduler) evaluateTermination(ctx context.Context, last domain.Message) (bool, error) {
	lower := strings.ToLower(last.Content)
	if strings.HasPrefix(lower, "patient_context_json") {
		return true, nil
	}
	if strings.Contains(lower, "back to you") {
		return true, nil
	}
	if s.termination == nil {
		return false, nil
	}
	return s.termination.ShouldContinue(ctx, last.Content)
}

func lastNonSystem(history domain.ChatHistory) (domain.Message, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role != domain.RoleSystem {
			return history[i], true
		}
	}
	return domain.Message{}, false
}

// userMessageAfter reports whether a user message was appended after msg.
func userMessageAfter(history domain.ChatHistory, msg domain.Message) bool {
	found := false
	for _, m := range history {
		if found && m.Role == domain.RoleUser {
			return true
		}
		if !found && sameMessage(m, msg) {
			found = true
		}
	}
	return false
}

func sameMessage(a, b domain.Message) bool {
	return a.Role == b.Role && a.Name == b.Name && a.Content == b.Content
}

func parseHandoff(text string) (string, bool) {
	matches := handoffPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return "", false
	}
	return matches[len(matches)-1][1], true
}

// looksLikePlan reports whether text exhibits the facilitator's plan
// presentation indicators: the literal tokens "Plan"/"plan:", or at least
// two numbered/bulleted list items at line start.
func looksLikePlan(text string) bool {
	for _, indicator := range planIndicators {
		if strings.Contains(text, indicator) {
			return true
		}
	}
	if len(numberedListItem.FindAllString(text, -1)) >= 2 {
		return true
	}
	if len(bulletListItem.FindAllString(text, -1)) >= 2 {
		return true
	}
	return false
}
