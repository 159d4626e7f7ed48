package llm

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/genai"
)

const (
	// DefaultModel is the default Gemini model used for narrative and campaign generation.
	DefaultModel = "gemini-flash-lite-latest"
	// DefaultTemperature is applied when a request leaves Temperature unset.
	DefaultTemperature = float32(0.7)
)

// TextGenerator is the text-generation service boundary. Implementations
// return UTF-8 text and may fail transiently.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, options TextGenerationOptions) (string, error)
}

// TextGenerationOptions contains options for text generation
type TextGenerationOptions struct {
	SystemInstruction string  // Persona/tone fragment, sent separately from the task prompt
	MaxTokens         int32   // Maximum number of tokens to generate
	Temperature       float32 // Temperature for randomness (0.0 to 1.0)
	Model             string  // Model to use (optional, defaults to client's model)
	JSON              bool    // Ask for application/json output
}

// Client talks to Gemini through the genai SDK.
type Client struct {
	apiKey    string
	modelName string
	gClient   *genai.Client
}

// NewClient creates a Gemini client.
// The API key is taken from apiKey, then GEMINI_API_KEY, then GOOGLE_AI_API_KEY.
func NewClient(ctx context.Context, apiKey, modelName string) (*Client, error) {
	if apiKey == "" {
		if apiKey = os.Getenv("GEMINI_API_KEY"); apiKey == "" {
			apiKey = os.Getenv("GOOGLE_AI_API_KEY")
		}
	}
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required. Set GEMINI_API_KEY or ai.gemini.api_key in the config file")
	}
	if modelName == "" {
		modelName = DefaultModel
	}

	gClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		apiKey:    apiKey,
		modelName: modelName,
		gClient:   gClient,
	}, nil
}

// ModelName returns the default model used by the client.
func (c *Client) ModelName() string {
	return c.modelName
}

// GenerateText generates text using the LLM with specified options
func (c *Client) GenerateText(ctx context.Context, prompt string, options TextGenerationOptions) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}

	modelName := c.modelName
	if options.Model != "" {
		modelName = options.Model
	}

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}

	resp, err := c.gClient.Models.GenerateContent(ctx, modelName, contents, buildConfig(options))
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from LLM")
	}

	return text, nil
}

func buildConfig(options TextGenerationOptions) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}

	temp := options.Temperature
	if temp <= 0 {
		temp = DefaultTemperature
	}
	config.Temperature = &temp

	if options.MaxTokens > 0 {
		config.MaxOutputTokens = options.MaxTokens
	}
	if options.SystemInstruction != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: options.SystemInstruction}},
		}
	}
	if options.JSON {
		config.ResponseMIMEType = "application/json"
	}
	return config
}
