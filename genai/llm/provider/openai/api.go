package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/viant/carecore/genai/llm"
	basecfg "github.com/viant/carecore/genai/llm/provider/base"
)

// Implements reports which optional provider features this client supports.
func (c *Client) Implements(feature string) bool {
	switch feature {
	case basecfg.CanUseTools:
		return true
	case basecfg.CanStream:
		return false
	case basecfg.IsMultimodal:
		return false
	case basecfg.SupportsInstructions:
		return true
	}
	return false
}

// Generate sends a chat-completions request and returns the parsed response.
func (c *Client) Generate(ctx context.Context, req *llm.GenerateRequest) (*llm.GenerateResponse, error) {
	if c.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	wireReq := c.toRequest(req)

	data, err := json.Marshal(wireReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var wireResp response
	if err := json.Unmarshal(body, &wireResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if wireResp.Error != nil {
			return nil, fmt.Errorf("openai API error (%s): %s", wireResp.Error.Code, wireResp.Error.Message)
		}
		return nil, fmt.Errorf("openai API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	genResp := toGenerateResponse(&wireResp)
	if c.UsageListener != nil && genResp.Usage != nil && genResp.Usage.TotalTokens > 0 {
		c.UsageListener.OnUsage(c.Model, genResp.Usage)
	}
	return genResp, nil
}
