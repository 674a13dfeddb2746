package gcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/Lllllllleong/storyflow/internal/models"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GeminiClient talks to the Gemini API using an API key.
type GeminiClient struct {
	baseClient *genai.Client
}

// NewGeminiClient creates a Gemini API client authenticated with apiKey.
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("NewGeminiClient: apiKey cannot be empty")
	}
	baseClient, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	return &GeminiClient{baseClient: baseClient}, nil
}

// ListModels enumerates the provider's model catalog. If iteration fails
// partway, the models read so far are returned with the error.
func (c *GeminiClient) ListModels(ctx context.Context) ([]models.ModelInfo, error) {
	var out []models.ModelInfo
	it := c.baseClient.ListModels(ctx)
	for {
		m, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return out, fmt.Errorf("failed to list models: %w", err)
		}
		out = append(out, models.ModelInfo{
			Name:                       m.Name,
			SupportedGenerationMethods: m.SupportedGenerationMethods,
		})
	}
	return out, nil
}

// GenerateText sends a single text prompt to modelID and returns the joined text parts.
func (c *GeminiClient) GenerateText(ctx context.Context, modelID, prompt string) (string, error) {
	model := c.baseClient.GenerativeModel(modelID)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini %s: %w", modelID, err)
	}
	return geminiResponseText(resp), nil
}

func (c *GeminiClient) Close() error {
	if c.baseClient != nil {
		return c.baseClient.Close()
	}
	return nil
}

func geminiResponseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return b.String()
}
