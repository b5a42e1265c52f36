// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bidwise/tender-engine/internal/httputil"
	"github.com/bidwise/tender-engine/pkg/types"
)

// OllamaClient calls a local Ollama server's generate endpoint. Failures
// are reported in-band with the "Error:" prefix so that callers degrade to
// the next fallback stage instead of aborting the pipeline.
type OllamaClient struct {
	Host       string
	Model      string
	MaxRetries int
	HTTPClient *http.Client
}

// NewOllamaClient builds a client from config, applying defaults for any
// zero field.
func NewOllamaClient(cfg types.OracleConfig) *OllamaClient {
	def := types.DefaultOracleConfig()
	if cfg.Host == "" {
		cfg.Host = def.Host
	}
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = def.MaxRetries
	}
	return &OllamaClient{
		Host:       cfg.Host,
		Model:      cfg.Model,
		MaxRetries: cfg.MaxRetries,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// generateRequest is the request body for the Ollama generate API.
type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

// generateOptions constrains sampling for extraction consistency.
type generateOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	NumPredict  int     `json:"num_predict"`
}

// generateResponse is the response body from the Ollama generate API.
type generateResponse struct {
	Response string `json:"response"`
}

// Complete sends one instruction and returns the completion text. Network
// and decode failures are folded into an "Error:"-prefixed response with a
// nil error; the pipeline treats both shapes identically via IsFailure.
func (c *OllamaClient) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := generateRequest{
		Model:  c.Model,
		Prompt: prompt,
		Stream: false,
		Options: generateOptions{
			Temperature: 0.7,
			TopP:        0.9,
			NumPredict:  2048,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.Host+"/api/generate", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, c.MaxRetries)
	if err != nil {
		return fmt.Sprintf("%s could not reach completion service at %s: %v",
			ErrorPrefix, c.Host, err), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Sprintf("%s completion service returned %d: %s",
			ErrorPrefix, resp.StatusCode, string(body)), nil
	}

	var gResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gResp); err != nil {
		return fmt.Sprintf("%s decoding completion response: %v", ErrorPrefix, err), nil
	}

	return strings.TrimSpace(gResp.Response), nil
}
