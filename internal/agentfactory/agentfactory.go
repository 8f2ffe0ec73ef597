// Package agentfactory materializes the polymorphic runtime agents (LLM or
// external) that the Group-Chat Scheduler drives, from their static
// AgentConfig definitions.
package agentfactory

import (
	"context"
	"fmt"
	"strings"

	"github.com/viant/carecore/genai/agent"
	"github.com/viant/carecore/genai/llm"
	"github.com/viant/carecore/genai/tool"
	"github.com/viant/carecore/internal/domain"
)

// fixedSeed is the deterministic sampling seed used whenever the underlying
// model supports one.
const fixedSeed = 42

// Agent is the runtime participant the Group-Chat Scheduler invokes. Both
// variants share this single surface; there is no inheritance hierarchy,
// only two concrete implementations of the same small interface.
type Agent interface {
	Name() string
	IsFacilitator() bool
	Invoke(ctx context.Context, history domain.ChatHistory) (domain.Message, error)
}

// ModelResolver returns the llm.Model bound to a model reference name.
type ModelResolver func(modelRef string) (llm.Model, error)

// ExternalInvoker calls out to an external agent's opaque endpoint.
type ExternalInvoker interface {
	Invoke(ctx context.Context, endpointURL string, history domain.ChatHistory) (domain.Message, error)
}

// Build materializes one Agent per configs entry.
func Build(configs []agent.Agent, resolveModel ModelResolver, tools *tool.Registry, external ExternalInvoker) ([]Agent, error) {
	agents := make([]Agent, 0, len(configs))
	for i := range configs {
		cfg := &configs[i]
		if cfg.External {
			if cfg.Source == nil || cfg.Source.URL == "" {
				return nil, fmt.Errorf("agentfactory: external agent %q has no endpoint", cfg.Name)
			}
			agents = append(agents, &externalAgent{cfg: cfg, invoker: external})
			continue
		}
		model, err := resolveModel(cfg.Model)
		if err != nil {
			return nil, fmt.Errorf("agentfactory: resolve model for %q: %w", cfg.Name, err)
		}
		agents = append(agents, &llmAgent{cfg: cfg, model: model, tools: tools})
	}
	return agents, nil
}

// llmAgent invokes a configured LLM handle, with its instructions as the
// system prompt and its declared tools resolved dynamically by name.
type llmAgent struct {
	cfg   *agent.Agent
	model llm.Model
	tools *tool.Registry
}

func (a *llmAgent) Name() string         { return a.cfg.Name }
func (a *llmAgent) IsFacilitator() bool   { return a.cfg.Facilitator }

func (a *llmAgent) Invoke(ctx context.Context, history domain.ChatHistory) (domain.Message, error) {
	instructions, err := a.cfg.GeneratePrompt(lastUserMessage(history), lastSnapshotContent(history))
	if err != nil {
		return domain.Message{}, fmt.Errorf("agentfactory: %s: generate prompt: %w", a.cfg.Name, err)
	}

	req := &llm.GenerateRequest{
		Instructions: instructions,
		Messages:     toLLMMessages(history),
		Options: &llm.Options{
			Temperature: a.cfg.Temperature,
			Seed:        fixedSeed,
		},
	}
	if defs := a.cfg.ToolDefinitions(a.tools.GetDefinition); len(defs) > 0 {
		req.Options.Tools = defs
	}

	resp, err := a.model.Generate(ctx, req)
	if err != nil {
		return domain.Message{}, fmt.Errorf("agentfactory: %s: generate: %w", a.cfg.Name, err)
	}
	if len(resp.Choices) == 0 {
		return domain.Message{}, fmt.Errorf("agentfactory: %s: empty response", a.cfg.Name)
	}
	text := llm.MessageText(resp.Choices[0].Message)
	return domain.Message{Role: domain.RoleAssistant, Name: a.cfg.Name, Content: text}, nil
}

// externalAgent delegates to an opaque endpoint rather than an LLM handle.
type externalAgent struct {
	cfg     *agent.Agent
	invoker ExternalInvoker
}

func (a *externalAgent) Name() string       { return a.cfg.Name }
func (a *externalAgent) IsFacilitator() bool { return a.cfg.Facilitator }

func (a *externalAgent) Invoke(ctx context.Context, history domain.ChatHistory) (domain.Message, error) {
	msg, err := a.invoker.Invoke(ctx, a.cfg.Source.URL, history)
	if err != nil {
		return domain.Message{}, fmt.Errorf("agentfactory: %s: external invoke: %w", a.cfg.Name, err)
	}
	msg.Name = a.cfg.Name
	return msg, nil
}

func toLLMMessages(history domain.ChatHistory) []llm.Message {
	out := make([]llm.Message, 0, len(history))
	for _, msg := range history {
		out = append(out, llm.Message{Role: llm.MessageRole(msg.Role), Name: msg.Name, Content: msg.Content})
	}
	return out
}

// lastUserMessage returns the most recent user turn's text, the "Query" an
// llmAgent's prompt template is rendered against.
func lastUserMessage(history domain.ChatHistory) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == domain.RoleUser {
			return history[i].Content
		}
	}
	return ""
}

// lastSnapshotContent returns the body of the most recent ephemeral patient
// snapshot message, the "Enrichment" an llmAgent's prompt template is
// rendered against, or "" when no snapshot has been injected this turn.
func lastSnapshotContent(history domain.ChatHistory) string {
	for i := len(history) - 1; i >= 0; i-- {
		if domain.IsSnapshot(history[i]) {
			return strings.TrimPrefix(history[i].Content, domain.SnapshotPrefix+" ")
		}
	}
	return ""
}
