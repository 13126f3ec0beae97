package explain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"failtrack/internal/types"
)

// LLMExplainer uses a local LLM (e.g., Ollama) to generate explanations
type LLMExplainer struct {
	url    string
	model  string
	client *http.Client
}

func NewLLMExplainer(url, model string) *LLMExplainer {
	if url == "" {
		url = "http://localhost:11434/api/generate"
	}
	if model == "" {
		model = "tinyllama"
	}
	return &LLMExplainer{
		url:   url,
		model: model,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// OllamaRequest represents the payload for Ollama
type OllamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// OllamaResponse represents the response from Ollama
type OllamaResponse struct {
	Response string `json:"response"`
}

func (e *LLMExplainer) Explain(ctx context.Context, event *types.Event) error {
	body, err := json.Marshal(OllamaRequest{
		Model:  e.model,
		Prompt: e.buildPrompt(event),
		Stream: false,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal llm request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build llm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("llm connection failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("llm returned status: %s", resp.Status)
	}

	var llmResp OllamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&llmResp); err != nil {
		return fmt.Errorf("failed to decode llm response: %w", err)
	}
	if llmResp.Response == "" {
		return fmt.Errorf("llm returned an empty explanation")
	}

	event.Explanation = llmResp.Response
	return nil
}

func (e *LLMExplainer) buildPrompt(event *types.Event) string {
	return fmt.Sprintf(`You are a security analyst. Explain the risk of this event in 1 sentence.
Event: %s
Source: %s
Risk: %s
Details: %s
Evidence: %v
Explanation:`, event.Summary, event.Source, event.Risk, event.Explanation, event.Evidence)
}
