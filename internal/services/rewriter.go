package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Lllllllleong/storyflow/internal/gcp"
	"github.com/Lllllllleong/storyflow/internal/models"
)

// RewriteStory asks the model for a new version of originalText shaped by the
// flowchart and the user's request. The model's text is returned as is.
func RewriteStory(ctx context.Context, model TextGenerator, originalText string, flowchart models.Flowchart, userPrompt string) (string, error) {
	flowchartJSON, err := MarshalFlowchart(flowchart)
	if err != nil {
		return "", fmt.Errorf("failed to marshal flowchart for prompt: %w", err)
	}
	prompt := fmt.Sprintf(gcp.RewritePromptTemplate, originalText, flowchartJSON, userPrompt)

	slog.Info("Step 2: Sending flowchart and user prompt to model for story rewrite.")
	story, err := model.GenerateText(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate rewritten story: %w", err)
	}
	if story == "" {
		return "", fmt.Errorf("rewrite step: %w", ErrEmptyModelResponse)
	}
	slog.Info("Step 2: Received new story from model.")
	return story, nil
}
