package agentfactory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/carecore/genai/agent"
	"github.com/viant/carecore/genai/llm"
	"github.com/viant/carecore/genai/tool"
	"github.com/viant/carecore/internal/domain"
)

type fakeModel struct{ reply string }

func (f *fakeModel) Implements(feature string) bool { return false }
func (f *fakeModel) Generate(ctx context.Context, req *llm.GenerateRequest) (*llm.GenerateResponse, error) {
	return &llm.GenerateResponse{Choices: []llm.Choice{{Message: llm.NewAssistantMessage(f.reply)}}}, nil
}

// capturingModel records the last GenerateRequest it was handed, so tests
// can assert on the prompt llmAgent.Invoke actually built.
type capturingModel struct {
	reply string
	last  *llm.GenerateRequest
}

func (f *capturingModel) Implements(feature string) bool { return false }
func (f *capturingModel) Generate(ctx context.Context, req *llm.GenerateRequest) (*llm.GenerateResponse, error) {
	f.last = req
	return &llm.GenerateResponse{Choices: []llm.Choice{{Message: llm.NewAssistantMessage(f.reply)}}}, nil
}

type fakeExternal struct{ reply string }

func (f *fakeExternal) Invoke(ctx context.Context, endpointURL string, history domain.ChatHistory) (domain.Message, error) {
	return domain.Message{Role: domain.RoleAssistant, Content: f.reply}, nil
}

func TestBuild_LLMAgentInvoke(t *testing.T) {
	configs := []agent.Agent{{Identity: agent.Identity{Name: "Doc"}, Model: "claude", Instructions: "be helpful", Facilitator: true}}
	model := &fakeModel{reply: "hello"}
	agents, err := Build(configs, func(ref string) (llm.Model, error) { return model, nil }, tool.NewRegistry(), nil)
	require.NoError(t, err)
	require.Len(t, agents, 1)
	assert.True(t, agents[0].IsFacilitator())

	msg, err := agents[0].Invoke(context.Background(), domain.ChatHistory{{Role: domain.RoleUser, Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Content)
	assert.Equal(t, "Doc", msg.Name)
}

func TestBuild_LLMAgentInvoke_RendersVeltyPrompt(t *testing.T) {
	configs := []agent.Agent{{
		Identity:     agent.Identity{Name: "Doc"},
		Model:        "claude",
		Instructions: "Patient question: ${Query}\nKnown context: ${Enrichment}",
		Facilitator:  true,
	}}
	model := &capturingModel{reply: "ok"}
	agents, err := Build(configs, func(ref string) (llm.Model, error) { return model, nil }, tool.NewRegistry(), nil)
	require.NoError(t, err)
	require.Len(t, agents, 1)

	history := domain.ChatHistory{
		{Role: domain.RoleSystem, Content: domain.SnapshotPrefix + " {\"conversation_id\":\"c1\"}"},
		{Role: domain.RoleUser, Content: "how is the patient doing"},
	}
	_, err = agents[0].Invoke(context.Background(), history)
	require.NoError(t, err)
	require.NotNil(t, model.last)
	assert.Equal(t, "Patient question: how is the patient doing\nKnown context: {\"conversation_id\":\"c1\"}", model.last.Instructions)
}

func TestBuild_ExternalAgentInvoke(t *testing.T) {
	configs := []agent.Agent{{Identity: agent.Identity{Name: "Lab"}, External: true, Source: &agent.Source{URL: "https://lab.example/invoke"}}}
	agents, err := Build(configs, nil, nil, &fakeExternal{reply: "result ready"})
	require.NoError(t, err)
	require.Len(t, agents, 1)

	msg, err := agents[0].Invoke(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "result ready", msg.Content)
	assert.Equal(t, "Lab", msg.Name)
}

func TestBuild_ExternalAgentMissingEndpointErrors(t *testing.T) {
	configs := []agent.Agent{{Identity: agent.Identity{Name: "Lab"}, External: true}}
	_, err := Build(configs, nil, nil, &fakeExternal{})
	assert.Error(t, err)
}
