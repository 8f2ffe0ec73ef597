package analyzer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/carecore/genai/llm"
)

type fakeModel struct {
	response string
	calls    int
}

func (f *fakeModel) Implements(feature string) bool { return false }

func (f *fakeModel) Generate(ctx context.Context, req *llm.GenerateRequest) (*llm.GenerateResponse, error) {
	f.calls++
	return &llm.GenerateResponse{Choices: []llm.Choice{{Message: llm.NewAssistantMessage(f.response)}}}, nil
}

func TestApplyShortMessageHeuristic(t *testing.T) {
	decision, ok := ApplyShortMessageHeuristic("hi there", true)
	require.True(t, ok)
	assert.Equal(t, ActionUnchanged, decision.Action)

	decision, ok = ApplyShortMessageHeuristic("hi there", false)
	require.True(t, ok)
	assert.Equal(t, ActionNone, decision.Action)

	_, ok = ApplyShortMessageHeuristic("please switch to patient_4 now", true)
	assert.False(t, ok, "disqualifying token must skip the heuristic")

	_, ok = ApplyShortMessageHeuristic("this message is clearly longer than fifteen runes", true)
	assert.False(t, ok)
}

func TestAnalyzer_ParsesValidDecision(t *testing.T) {
	model := &fakeModel{response: `{"action":"ACTIVATE_NEW","patient_id":"patient_4","reasoning":"new patient mentioned"}`}
	a := New(model)
	decision, err := a.Analyze(context.Background(), "let's talk about patient_4", "", nil)
	require.NoError(t, err)
	assert.Equal(t, ActionActivateNew, decision.Action)
	assert.Equal(t, "patient_4", decision.PatientID)
}

func TestAnalyzer_RejectsMissingPatientID(t *testing.T) {
	model := &fakeModel{response: `{"action":"SWITCH_EXISTING","reasoning":"no id"}`}
	a := New(model)
	_, err := a.Analyze(context.Background(), "switch", "", nil)
	assert.Error(t, err)
}

func TestAnalyzer_RejectsUnparseableOutput(t *testing.T) {
	model := &fakeModel{response: "not json at all"}
	a := New(model)
	_, err := a.Analyze(context.Background(), "hello", "", nil)
	assert.Error(t, err)
}

func TestAnalyzer_ResetClearsHistory(t *testing.T) {
	model := &fakeModel{response: `{"action":"NONE","reasoning":"ok"}`}
	a := New(model)
	_, err := a.Analyze(context.Background(), "hello", "", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, a.history)
	a.Reset()
	assert.Empty(t, a.history)
}
