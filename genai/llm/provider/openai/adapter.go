package openai

import (
	"encoding/json"
	"strings"

	"github.com/viant/carecore/genai/llm"
)

// toRequest converts a generic llm.GenerateRequest into the chat-completions
// wire format, placing non-empty top-level Instructions as the leading system
// message ahead of any system messages the caller supplied.
func (c *Client) toRequest(req *llm.GenerateRequest) *request {
	out := &request{
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
	}

	if instructions := strings.TrimSpace(req.Instructions); instructions != "" {
		out.Messages = append(out.Messages, chatMessage{Role: string(llm.RoleSystem), Content: instructions})
	}

	for _, msg := range req.Messages {
		out.Messages = append(out.Messages, toChatMessage(msg))
	}

	if req.Options != nil {
		opts := req.Options
		if opts.MaxTokens > 0 {
			out.MaxTokens = opts.MaxTokens
		}
		if opts.Temperature > 0 {
			out.Temperature = &opts.Temperature
		}
		out.TopP = opts.TopP
		out.Stop = opts.StopWords
		for _, tool := range opts.Tools {
			out.Tools = append(out.Tools, chatTool{
				Type: "function",
				Function: chatToolDefinition{
					Name:        tool.Definition.Name,
					Description: tool.Definition.Description,
					Parameters:  tool.Definition.Parameters,
				},
			})
		}
	}
	return out
}

func toChatMessage(msg llm.Message) chatMessage {
	out := chatMessage{
		Role:       string(msg.Role),
		Content:    llm.MessageText(msg),
		Name:       msg.Name,
		ToolCallID: msg.ToolCallId,
	}
	for _, call := range msg.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, chatToolCall{
			ID:   call.ID,
			Type: "function",
			Function: chatToolFunction{
				Name:      call.Name,
				Arguments: call.Function.Arguments,
			},
		})
	}
	return out
}

// toGenerateResponse converts a chat-completions response into the generic
// llm.GenerateResponse shape.
func toGenerateResponse(resp *response) *llm.GenerateResponse {
	out := &llm.GenerateResponse{
		Model: resp.Model,
		Usage: &llm.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}
	for _, choice := range resp.Choices {
		msg := llm.Message{
			Role:    llm.MessageRole(choice.Message.Role),
			Content: choice.Message.Content,
		}
		for _, call := range choice.Message.ToolCalls {
			var args map[string]interface{}
			_ = json.Unmarshal([]byte(call.Function.Arguments), &args)
			msg.ToolCalls = append(msg.ToolCalls, llm.NewToolCall(call.ID, call.Function.Name, args))
		}
		out.Choices = append(out.Choices, llm.Choice{
			Index:        choice.Index,
			Message:      msg,
			FinishReason: choice.FinishReason,
		})
	}
	return out
}
