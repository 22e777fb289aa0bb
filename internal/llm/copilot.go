package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// CopilotProvider implements Provider against a hosted DBA-copilot style
// endpoint: a single-prompt chat API authenticated with an X-API-Key
// header, returning either {"response": ...} or {"message": ...} where the
// value may be a string or a structured object.
type CopilotProvider struct {
	endpoint string
	apiKey   string
	agentID  string
	client   *http.Client
}

// NewCopilotProvider creates a provider for the given chat endpoint.
func NewCopilotProvider(endpoint, apiKey, agentID string) *CopilotProvider {
	return &CopilotProvider{
		endpoint: endpoint,
		apiKey:   apiKey,
		agentID:  agentID,
		client:   &http.Client{},
	}
}

func (p *CopilotProvider) Name() string {
	return "copilot"
}

type copilotRequest struct {
	Prompt  string `json:"prompt"`
	AgentID string `json:"agent_id,omitempty"`
}

type copilotResponse struct {
	Response json.RawMessage `json:"response"`
	Message  json.RawMessage `json:"message"`
}

func (p *CopilotProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	// The endpoint takes one prompt, not a message list.
	var prompt strings.Builder
	for _, msg := range req.Messages {
		if prompt.Len() > 0 {
			prompt.WriteString("\n\n")
		}
		prompt.WriteString(msg.Content)
	}

	body, err := json.Marshal(copilotRequest{Prompt: prompt.String(), AgentID: p.agentID})
	if err != nil {
		return nil, fmt.Errorf("marshal copilot request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create copilot request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-API-Key", p.apiKey)

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("copilot request failed: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read copilot response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("copilot returned status %d: %s", httpResp.StatusCode, string(respBody))
	}

	var resp copilotResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal copilot response: %w", err)
	}

	raw := resp.Response
	if len(raw) == 0 {
		raw = resp.Message
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("copilot response carries neither response nor message")
	}

	return &CompletionResponse{
		Content: rawToString(raw),
		Model:   "copilot",
	}, nil
}

// rawToString unwraps a JSON string payload; structured payloads pass
// through as their JSON text so the caller's parser sees them unchanged.
func rawToString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
