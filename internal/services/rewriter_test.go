package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/storyflow/internal/models"
)

func TestRewriteStory(t *testing.T) {
	gen := &fakeGenerator{response: "The fox spread its wings and flew."}
	flowchart := models.Flowchart{
		"diagram_type": "flowchart",
		"nodes":        []any{map[string]any{"id": "n1", "label": "Fox", "shape": "oval"}},
	}

	story, err := RewriteStory(context.Background(), gen, "The fox ran.", flowchart, "what if the fox could fly")
	require.NoError(t, err)
	assert.Equal(t, "The fox spread its wings and flew.", story)

	require.Len(t, gen.prompts, 1)
	prompt := gen.prompts[0]
	assert.Contains(t, prompt, "The fox ran.")
	assert.Contains(t, prompt, "what if the fox could fly")
	assert.Contains(t, prompt, "{\n  \"diagram_type\": \"flowchart\",")
}

func TestRewriteStory_EmptyResponse(t *testing.T) {
	_, err := RewriteStory(context.Background(), &fakeGenerator{}, "text", models.Flowchart{}, "prompt")
	assert.ErrorIs(t, err, ErrEmptyModelResponse)
}
