package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultGeminiModel is the model used when none is configured.
const DefaultGeminiModel = "gemini-1.5-flash"

// Gemini is a Client backed by the Google Generative AI API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini client. The API key is read from GOOGLE_API_KEY
// or GEMINI_API_KEY. An empty model selects DefaultGeminiModel.
func NewGemini(ctx context.Context, model string) (*Gemini, error) {
	apiKey := os.Getenv("GOOGLE_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("missing GOOGLE_API_KEY or GEMINI_API_KEY")
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Generate sends the prompt and returns the concatenated text parts of the
// first candidate.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.model)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini: empty response")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", errors.New("gemini: response contained no text parts")
	}
	return b.String(), nil
}

// Close releases the underlying API client.
func (g *Gemini) Close() error {
	return g.client.Close()
}

// Model returns the configured model name.
func (g *Gemini) Model() string {
	return g.model
}
