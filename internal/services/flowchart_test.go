package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json tagged fence",
			input:    "```json\n{\"a\": 1}\n```",
			expected: `{"a": 1}`,
		},
		{
			name:     "upper case tag",
			input:    "```JSON\n{\"a\": 1}\n```",
			expected: `{"a": 1}`,
		},
		{
			name:     "mixed case tag",
			input:    "```Json {\"a\": 1} ```",
			expected: `{"a": 1}`,
		},
		{
			name:     "untagged fence",
			input:    "```\n{\"a\": 1}\n```",
			expected: `{"a": 1}`,
		},
		{
			name:     "fence surrounded by prose",
			input:    "Here is the flowchart:\n```json\n{\"a\": 1}\n```\nHope this helps!",
			expected: `{"a": 1}`,
		},
		{
			name:     "first fence wins",
			input:    "```json\n{\"a\": 1}\n```\n```json\n{\"b\": 2}\n```",
			expected: `{"a": 1}`,
		},
		{
			name:     "unfenced is trimmed",
			input:    "  \n{\"a\": 1}\n\t",
			expected: `{"a": 1}`,
		},
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ExtractJSON(tc.input))
		})
	}
}

const foxFlowchart = `{
  "diagram_type": "flowchart",
  "nodes": [{"id": "n1", "label": "Fox wakes", "shape": "oval"}, {"id": "n2", "label": "Fox hunts", "shape": "box"}],
  "edges": [{"from": "n1", "to": "n2", "label": "then"}]
}`

func TestBuildFlowchart_FencedAndUnfencedParseIdentically(t *testing.T) {
	ctx := context.Background()
	inputs := []string{
		"```json\n" + foxFlowchart + "\n```",
		"```JSON\n" + foxFlowchart + "\n```",
		"```\n" + foxFlowchart + "\n```",
		"\n" + foxFlowchart + "\n",
	}

	var first map[string]any
	for i, in := range inputs {
		flowchart, err := BuildFlowchart(ctx, &fakeGenerator{response: in}, "The fox story.")
		require.NoError(t, err, "input %d", i)
		if first == nil {
			first = flowchart
			continue
		}
		assert.Equal(t, first, map[string]any(flowchart), "input %d", i)
	}
	assert.Equal(t, "flowchart", first["diagram_type"])
}

func TestBuildFlowchart_PromptEmbedsStory(t *testing.T) {
	gen := &fakeGenerator{response: foxFlowchart}
	story := "Once upon a time, a fox had 100% confidence."

	_, err := BuildFlowchart(context.Background(), gen, story)
	require.NoError(t, err)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], story)
	assert.Contains(t, gen.prompts[0], `"diagram_type": "flowchart"`)
}

func TestBuildFlowchart_RejectsNonObjects(t *testing.T) {
	for _, response := range []string{`[1, 2, 3]`, `"just a string"`, `42`, `null`, "```json\n[]\n```"} {
		t.Run(response, func(t *testing.T) {
			flowchart, err := BuildFlowchart(context.Background(), &fakeGenerator{response: response}, "story")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedModelOutput)
			assert.Nil(t, flowchart)
		})
	}
}

func TestBuildFlowchart_InvalidJSON(t *testing.T) {
	flowchart, err := BuildFlowchart(context.Background(), &fakeGenerator{response: "```json\n{not json\n```"}, "story")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedModelOutput)
	assert.Nil(t, flowchart)
}

func TestBuildFlowchart_EmptyResponse(t *testing.T) {
	_, err := BuildFlowchart(context.Background(), &fakeGenerator{response: ""}, "story")
	assert.ErrorIs(t, err, ErrEmptyModelResponse)
}

func TestBuildFlowchart_ModelError(t *testing.T) {
	modelErr := errors.New("quota exceeded")
	_, err := BuildFlowchart(context.Background(), &fakeGenerator{err: modelErr}, "story")
	assert.ErrorIs(t, err, modelErr)
}

func TestBuildFlowchart_NoReferentialValidation(t *testing.T) {
	response := `{"diagram_type":"flowchart","nodes":[],"edges":[{"from":"ghost","to":"nowhere","label":"?"}]}`
	flowchart, err := BuildFlowchart(context.Background(), &fakeGenerator{response: response}, "story")
	require.NoError(t, err)
	assert.Len(t, flowchart["edges"], 1)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab", truncate("abc", 2))
	assert.Equal(t, "ü", truncate("üü", 1))
	assert.Len(t, []rune(truncate(strings.Repeat("x", 3000), maxLoggedOutput)), maxLoggedOutput)
}

func TestBuildFlowchart_TrailingDataIsMalformed(t *testing.T) {
	_, err := BuildFlowchart(context.Background(), &fakeGenerator{response: `{"a": 1} {"b": 2}`}, "story")
	assert.ErrorIs(t, err, ErrMalformedModelOutput)
}

const exactFlowchart = `{"diagram_type":"flowchart","nodes":[{"id":12345678901234567891,"label":"Fox & Crow <meet>","weight":0.1}],"edges":[]}`

func TestMarshalFlowchart_KeepsModelOutputExact(t *testing.T) {
	flowchart, err := BuildFlowchart(context.Background(), &fakeGenerator{response: exactFlowchart}, "story")
	require.NoError(t, err)

	out, err := MarshalFlowchart(flowchart)
	require.NoError(t, err)
	rendered := string(out)
	assert.Contains(t, rendered, `"id": 12345678901234567891`)
	assert.Contains(t, rendered, `"label": "Fox & Crow <meet>"`)
	assert.Contains(t, rendered, `"weight": 0.1`)
	assert.True(t, strings.HasPrefix(rendered, "{\n  \""), rendered)
	assert.False(t, strings.HasSuffix(rendered, "\n"))
}
