package scheduler

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/carecore/internal/agentfactory"
	"github.com/viant/carecore/internal/domain"
)

type scriptedAgent struct {
	name        string
	facilitator bool
	replies     []string
	calls       int
}

func (a *scriptedAgent) Name() string       { return a.name }
func (a *scriptedAgent) IsFacilitator() bool { return a.facilitator }
func (a *scriptedAgent) Invoke(ctx context.Context, history domain.ChatHistory) (domain.Message, error) {
	reply := ""
	if a.calls < len(a.replies) {
		reply = a.replies[a.calls]
	}
	a.calls++
	return domain.Message{Role: domain.RoleAssistant, Name: a.name, Content: reply}, nil
}

// alwaysContinue is a TerminationEvaluator that never terminates, used to
// exercise the iteration cap and the confirmation gate.
type alwaysContinue struct{}

func (alwaysContinue) ShouldContinue(ctx context.Context, text string) (bool, error) { return true, nil }

// stopWhenContains terminates once text contains marker.
type stopWhenContains struct{ marker string }

func (s stopWhenContains) ShouldContinue(ctx context.Context, text string) (bool, error) {
	return !strings.Contains(strings.ToLower(text), s.marker), nil
}

func TestScheduler_BasicRunTerminatesViaEvaluator(t *testing.T) {
	facilitator := &scriptedAgent{name: "Doc", facilitator: true, replies: []string{"All set for now."}}
	agents := []agentfactory.Agent{facilitator}
	sched, err := New(agents, "Doc", stopWhenContains{marker: "all set"}, 5)
	require.NoError(t, err)

	history := domain.ChatHistory{{Role: domain.RoleUser, Content: "hello"}}
	out, outcome, err := sched.Run(context.Background(), history)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDone, outcome)
	assert.Len(t, out, 2)
}

func TestScheduler_HandoffSelectsNamedAgent(t *testing.T) {
	lab := &scriptedAgent{name: "Lab", replies: []string{"Labs are normal."}}
	facilitator := &scriptedAgent{name: "Doc", facilitator: true, replies: []string{"*Lab* please check the labs."}}
	agents := []agentfactory.Agent{facilitator, lab}
	sched, err := New(agents, "Doc", stopWhenContains{marker: "normal"}, 5)
	require.NoError(t, err)

	history := domain.ChatHistory{{Role: domain.RoleUser, Content: "how are the labs?"}}
	out, outcome, err := sched.Run(context.Background(), history)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDone, outcome)
	require.Len(t, out, 3)
	assert.Equal(t, "Lab", out[2].Name)
}

func TestScheduler_ConfirmationGateAwaitsUser(t *testing.T) {
	facilitator := &scriptedAgent{name: "Doc", facilitator: true, replies: []string{"Plan:\n1. step one\n2. step two"}}
	agents := []agentfactory.Agent{facilitator}
	sched, err := New(agents, "Doc", alwaysContinue{}, 5)
	require.NoError(t, err)

	history := domain.ChatHistory{{Role: domain.RoleUser, Content: "what should we do?"}}
	out, outcome, err := sched.Run(context.Background(), history)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAwaitUser, outcome)
	require.Len(t, out, 2)
}

func TestScheduler_DeterministicOverridesContinueTheLoop(t *testing.T) {
	// "back to you" is a deterministic *continue* override, not a
	// terminator: the loop keeps selecting until the cap or the evaluator
	// says stop.
	facilitator := &scriptedAgent{name: "Doc", facilitator: true, replies: []string{"Back to you on this one.", "Back to you on this one."}}
	agents := []agentfactory.Agent{facilitator}
	sched, err := New(agents, "Doc", nil, 2)
	require.NoError(t, err)

	history := domain.ChatHistory{{Role: domain.RoleUser, Content: "hello"}}
	out, outcome, err := sched.Run(context.Background(), history)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCapReached, outcome)
	assert.Len(t, out, 3) // user + 2 capped iterations, none of them terminating early
}

func TestScheduler_IterationCapStopsLoop(t *testing.T) {
	facilitator := &scriptedAgent{name: "Doc", facilitator: true, replies: []string{"keep going", "keep going", "keep going"}}
	agents := []agentfactory.Agent{facilitator}
	sched, err := New(agents, "Doc", alwaysContinue{}, 2)
	require.NoError(t, err)

	history := domain.ChatHistory{{Role: domain.RoleUser, Content: "hello"}}
	out, outcome, err := sched.Run(context.Background(), history)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCapReached, outcome)
	assert.Len(t, out, 3) // 1 user message + 2 capped iterations
}
