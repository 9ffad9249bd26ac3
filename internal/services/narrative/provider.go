package narrative

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured
const DefaultModel = "gemini-2.0-flash"

// Request is one text generation call
type Request struct {
	System      string
	Prompt      string
	JSON        bool
	Temperature float32
}

// Provider generates advisory text
type Provider interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeminiProvider calls the Gemini API
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini client for apiKey
func NewGemini(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is not set")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiProvider{client: client, model: model}, nil
}

// Generate sends a single generateContent request
func (p *GeminiProvider) Generate(ctx context.Context, req Request) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if req.JSON {
		config.ResponseMIMEType = "application/json"
	}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}

	result, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(req.Prompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}
	return result.Text(), nil
}
