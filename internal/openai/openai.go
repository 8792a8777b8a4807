package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/readhacker/readhacker/internal/providers"
)

// OpenAI is a provider for OpenAI
type OpenAI struct {
	baseURL string
	client  *http.Client
}

// New returns a new OpenAI provider
func New() *OpenAI {
	return &OpenAI{
		baseURL: "https://api.openai.com/v1",
		client:  &http.Client{},
	}
}

// ExtractText extracts text from the given prompt using OpenAI
func (o *OpenAI) ExtractText(ctx context.Context, config providers.Config) (string, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	url := o.baseURL + "/chat/completions"

	messages := []map[string]string{}
	if config.SystemPrompt != "" {
		messages = append(messages, map[string]string{
			"role":    "system",
			"content": config.SystemPrompt,
		})
	}
	messages = append(messages, map[string]string{
		"role":    "user",
		"content": config.Prompt,
	})

	body := map[string]interface{}{
		"model":       config.Model,
		"messages":    messages,
		"temperature": config.Temperature,
	}
	if config.JSONOutput {
		body["response_format"] = map[string]string{"type": "json_object"}
	}
	if config.ReasoningEffort != "" && config.ReasoningEffort != "none" {
		body["reasoning"] = map[string]string{"effort": config.ReasoningEffort}
	}
	if config.WebSearch {
		body["web_search"] = map[string]bool{"enabled": true}
	}

	requestBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", &providers.StatusError{Code: resp.StatusCode, Body: string(respBody)}
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from OpenAI")
	}

	return response.Choices[0].Message.Content, nil
}
