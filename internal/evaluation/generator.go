package evaluation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/core"
)

// Generator produces trail map text for a payload. The returned status is the
// HTTP status of the call, or the equivalent for in-process generators.
type Generator interface {
	Generate(ctx context.Context, payload core.IntakePayload) (text string, status int, err error)
}

// TrailMapper is satisfied by narrative.Generator.
type TrailMapper interface {
	TrailMap(ctx context.Context, payload core.IntakePayload) (string, error)
}

// LocalGenerator calls a TrailMapper in process.
type LocalGenerator struct {
	mapper TrailMapper
}

// NewLocalGenerator wraps mapper.
func NewLocalGenerator(mapper TrailMapper) *LocalGenerator {
	return &LocalGenerator{mapper: mapper}
}

// Generate implements Generator.
func (g *LocalGenerator) Generate(ctx context.Context, payload core.IntakePayload) (string, int, error) {
	text, err := g.mapper.TrailMap(ctx, payload)
	if err != nil {
		return "", http.StatusInternalServerError, err
	}
	return text, http.StatusOK, nil
}

// HTTPGenerator posts payloads to a running server's trail endpoint.
type HTTPGenerator struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewHTTPGenerator targets <endpoint>/api/trail. Per-attempt timeouts come
// from the caller's context.
func NewHTTPGenerator(endpoint, apiKey string) *HTTPGenerator {
	return &HTTPGenerator{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		client:   &http.Client{},
	}
}

// maxResponseBytes caps how much of a trail response is read.
const maxResponseBytes = 1 << 20

type trailResponse struct {
	Text  string `json:"text"`
	Error string `json:"error"`
}

// Generate implements Generator.
func (g *HTTPGenerator) Generate(ctx context.Context, payload core.IntakePayload) (string, int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", 0, fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint+"/api/trail", bytes.NewReader(body))
	if err != nil {
		return "", 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}
	if len(raw) > maxResponseBytes {
		return "", resp.StatusCode, fmt.Errorf("response exceeds %d bytes", maxResponseBytes)
	}

	var decoded trailResponse
	decodeErr := json.Unmarshal(raw, &decoded)

	if resp.StatusCode != http.StatusOK {
		msg := decoded.Error
		if decodeErr != nil || msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return "", resp.StatusCode, fmt.Errorf("trail endpoint returned %d: %s", resp.StatusCode, msg)
	}
	if decodeErr != nil {
		return "", resp.StatusCode, fmt.Errorf("failed to decode response: %w", decodeErr)
	}
	if strings.TrimSpace(decoded.Text) == "" {
		return "", resp.StatusCode, fmt.Errorf("trail endpoint returned no text")
	}
	return decoded.Text, resp.StatusCode, nil
}
