package gcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"github.com/Lllllllleong/storyflow/internal/models"
)

// ErrModelListingUnsupported is returned by backends without a model catalog.
var ErrModelListingUnsupported = errors.New("model listing is not supported by this backend")

// VertexClient generates content through Vertex AI using the runtime service account.
type VertexClient struct {
	baseClient *genai.Client
}

// NewVertexClient creates a Vertex AI client for the given project and region.
func NewVertexClient(ctx context.Context, projectID, region string) (*VertexClient, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("NewVertexClient: projectID and region cannot be empty")
	}

	baseClient, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	return &VertexClient{baseClient: baseClient}, nil
}

// ListModels always fails: the Vertex generative SDK exposes no catalog.
func (c *VertexClient) ListModels(ctx context.Context) ([]models.ModelInfo, error) {
	return nil, ErrModelListingUnsupported
}

// GenerateText sends a single text prompt to modelID and returns the joined text parts.
func (c *VertexClient) GenerateText(ctx context.Context, modelID, prompt string) (string, error) {
	model := c.baseClient.GenerativeModel(modelID)
	model.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockOnlyHigh},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockOnlyHigh},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockOnlyHigh},
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockOnlyHigh},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("vertex %s: %w", modelID, err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return b.String(), nil
}

func (c *VertexClient) Close() error {
	if c.baseClient != nil {
		return c.baseClient.Close()
	}
	return nil
}
