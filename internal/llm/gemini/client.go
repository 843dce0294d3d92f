package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"legalens-backend/internal/llm"
)

// Client implements llm.Client on the Gemini API.
type Client struct {
	model  string
	client *genai.Client
}

// NewClient constructs a Gemini client.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("GEMINI_API_KEY (or GOOGLE_API_KEY) is required")
	}
	if strings.TrimSpace(model) == "" {
		model = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gemini client: %w", err)
	}
	return &Client{model: model, client: client}, nil
}

func (g *Client) Name() string {
	return "gemini"
}

func (g *Client) Generate(ctx context.Context, in llm.GenerateInput) (json.RawMessage, error) {
	cfg := &genai.GenerateContentConfig{}
	if in.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(in.System, genai.RoleUser)
	}
	if in.WantJSON {
		cfg.ResponseMIMEType = "application/json"
	}

	response, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(in.Prompt), cfg)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(response.Text())
	if text == "" {
		return nil, llm.ErrEmptyOutput
	}
	return json.RawMessage(text), nil
}
