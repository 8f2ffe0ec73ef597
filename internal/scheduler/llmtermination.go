package scheduler

import (
	"context"
	"fmt"
	"strings"

	"github.com/viant/carecore/genai/llm"
)

// LLMTerminationEvaluator is the fallback rule consulted once neither
// deterministic override applies: it asks the model whether the last
// message addresses the human user (or a collective "we"/"us"), which
// means the turn is done, versus addressing another named agent, which
// means the group chat should continue.
type LLMTerminationEvaluator struct {
	model llm.Model
}

// NewLLMTerminationEvaluator wraps model.
func NewLLMTerminationEvaluator(model llm.Model) *LLMTerminationEvaluator {
	return &LLMTerminationEvaluator{model: model}
}

const terminationInstructions = `Decide whether a multi-agent clinical discussion should continue.
Reply with exactly one word: "yes" if the discussion should continue (the last message addresses another named agent, not the human user), or "no" if the last message concludes the group's turn (it addresses the human user directly, or uses "we"/"us").`

// ShouldContinue asks the model for a yes/no verdict on lastMessageText.
func (e *LLMTerminationEvaluator) ShouldContinue(ctx context.Context, lastMessageText string) (bool, error) {
	resp, err := e.model.Generate(ctx, &llm.GenerateRequest{
		Instructions: terminationInstructions,
		Messages:     []llm.Message{llm.NewUserMessage(lastMessageText)},
	})
	if err != nil {
		return false, fmt.Errorf("scheduler: termination evaluator: %w", err)
	}
	if len(resp.Choices) == 0 {
		return false, fmt.Errorf("scheduler: termination evaluator: empty response")
	}
	verdict := strings.ToLower(strings.TrimSpace(llm.MessageText(resp.Choices[0].Message)))
	return strings.HasPrefix(verdict, "yes"), nil
}

var _ TerminationEvaluator = (*LLMTerminationEvaluator)(nil)
