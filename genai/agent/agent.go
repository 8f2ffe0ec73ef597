package agent

import (
	"bytes"
	"sync"
	"text/template"

	"github.com/viant/carecore/genai/llm"
	"github.com/viant/carecore/internal/templating"
)

type (
	// Identity is the minimal naming information shared by any addressable
	// actor in the system (an agent, a facilitator, an external delegate).
	Identity struct {
		Name string `yaml:"name,omitempty" json:"name,omitempty"`
	}

	Source struct {
		URL string `yaml:"url,omitempty" json:"url,omitempty"`
	}

	// Agent is the static, startup-loaded definition of a participant in the
	// group chat. It is the Go shape of an AgentConfig document: a name, its
	// system instructions, optional facilitator/external flags, a sampling
	// temperature, and the capability (tool) references it is allowed to use.
	Agent struct {
		Identity `yaml:",inline" json:",inline"`

		Source      *Source `yaml:"source,omitempty" json:"source,omitempty"`
		Model       string  `yaml:"modelRef,omitempty" json:"model,omitempty"`
		Temperature float64 `yaml:"temperature,omitempty" json:"temperature,omitempty"`
		Description string  `yaml:"description,omitempty" json:"description,omitempty"`

		// Instructions is the agent's system prompt. Prompt is kept as an
		// alternate name for backward compatibility with template-based
		// prompt generation below.
		Instructions string `yaml:"instructions,omitempty" json:"instructions,omitempty"`
		Prompt       string `yaml:"prompt,omitempty" json:"prompt,omitempty"`

		// Facilitator marks the single agent that moderates the group chat.
		// Exactly one loaded Agent is expected to set this to true.
		Facilitator bool `yaml:"facilitator,omitempty" json:"facilitator,omitempty"`

		// External marks an agent whose invoke() delegates to an opaque
		// transport endpoint (Source.URL) rather than an LLM handle.
		External bool `yaml:"external,omitempty" json:"external,omitempty"`

		// Tools names the capability references (resolved by name against the
		// dynamic tool registry) this agent may call.
		Tools []string `yaml:"tools,omitempty" json:"tools,omitempty"`

		// Persona defines the default conversational persona the agent uses when
		// sending messages. When nil the role defaults to "assistant".
		Persona *Persona `yaml:"persona,omitempty" json:"persona,omitempty"`

		// cached compiled go template for prompt (if Prompt is static)
		parsedTemplate *template.Template `yaml:"-" json:"-"`
		once           sync.Once          `yaml:"-" json:"-"`
		parseErr       error              `yaml:"-" json:"-"`
	}
)

// Validate performs no checks on the agent's static configuration; it always
// returns nil.
func (a *Agent) Validate() error {
	return nil
}

// ToolDefinitions returns the llm.Tool definitions resolvable for this
// agent's configured tool names against the supplied registry lookup.
func (a *Agent) ToolDefinitions(lookup func(name string) (llm.ToolDefinition, bool)) []llm.Tool {
	if len(a.Tools) == 0 || lookup == nil {
		return nil
	}
	var tools []llm.Tool
	for _, name := range a.Tools {
		if def, ok := lookup(name); ok {
			tools = append(tools, llm.NewFunctionTool(def))
		}
	}
	return tools
}

// GeneratePrompt generates a prompt from the agent's template using provided query and enrichment data
func (a *Agent) GeneratePrompt(query string, enrichment string) (string, error) {
	tmpl := a.Prompt
	if tmpl == "" {
		tmpl = a.Instructions
	}
	if tmpl == "" {
		return a.generateDefaultPrompt(query, enrichment), nil
	}

	promptText, err := a.generateVeltyPrompt(tmpl, query, enrichment)
	if err == nil {
		return promptText, nil
	}

	return a.generateGoTemplatePrompt(tmpl, query, enrichment)
}

// generateVeltyPrompt uses velty engine to process the template
func (a *Agent) generateVeltyPrompt(tmpl string, query string, enrichment string) (string, error) {
	vars := map[string]interface{}{
		"Find":       a,
		"Query":      query,
		"Enrichment": enrichment,
	}
	return templating.Expand(tmpl, vars)
}

// generateGoTemplatePrompt uses Go's text/template to process the template
func (a *Agent) generateGoTemplatePrompt(tmpl string, query string, enrichment string) (string, error) {
	a.once.Do(func() {
		a.parsedTemplate, a.parseErr = template.New("prompt").Parse(tmpl)
	})
	if a.parseErr != nil {
		return "", a.parseErr
	}

	data := map[string]interface{}{
		"Find":       a,
		"Query":      query,
		"Enrichment": enrichment,
	}

	var buf bytes.Buffer
	if err := a.parsedTemplate.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// generateDefaultPrompt creates a simple default prompt if no template is provided
func (a *Agent) generateDefaultPrompt(query string, enrichment string) string {
	var buf bytes.Buffer

	buf.WriteString("You are ")
	if a.Name != "" {
		buf.WriteString(a.Name)
	} else {
		buf.WriteString("an AI assistant")
	}

	if a.Description != "" {
		buf.WriteString(", ")
		buf.WriteString(a.Description)
	}

	buf.WriteString("\n\n")

	if enrichment != "" {
		buf.WriteString("Document details:\n")
		buf.WriteString(enrichment)
		buf.WriteString("\n\n")
	}

	return buf.String()
}
