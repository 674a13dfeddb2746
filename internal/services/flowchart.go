package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Lllllllleong/storyflow/internal/gcp"
	"github.com/Lllllllleong/storyflow/internal/models"
)

// maxLoggedOutput bounds how much unparseable model output is logged.
const maxLoggedOutput = 2000

var jsonFenceRegex = regexp.MustCompile("(?i)```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// ExtractJSON returns the contents of the first fenced code block in text,
// or the whole text when there is none, trimmed of surrounding whitespace.
func ExtractJSON(text string) string {
	if m := jsonFenceRegex.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(text)
}

// BuildFlowchart asks the model for a flowchart of storyText. The result is only
// checked to be a JSON object; nodes and edges are not validated.
func BuildFlowchart(ctx context.Context, model TextGenerator, storyText string) (models.Flowchart, error) {
	prompt := fmt.Sprintf(gcp.FlowchartPromptTemplate, storyText)

	slog.Info("Step 1: Sending story to model for flowchart analysis.")
	raw, err := model.GenerateText(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate flowchart: %w", err)
	}
	if raw == "" {
		return nil, fmt.Errorf("flowchart step: %w", ErrEmptyModelResponse)
	}

	flowchart, err := parseFlowchart(ExtractJSON(raw))
	if err != nil {
		return nil, err
	}
	slog.Info("Step 1: Received structured flowchart from model.", "nodeCount", countItems(flowchart, "nodes"), "edgeCount", countItems(flowchart, "edges"))
	return flowchart, nil
}

// parseFlowchart keeps numbers as json.Number so large integer ids survive
// re-encoding unchanged.
func parseFlowchart(jsonText string) (models.Flowchart, error) {
	dec := json.NewDecoder(strings.NewReader(jsonText))
	dec.UseNumber()

	var data any
	err := dec.Decode(&data)
	if err == nil && !errors.Is(dec.Decode(&struct{}{}), io.EOF) {
		err = errors.New("unexpected data after top-level value")
	}
	if err != nil {
		slog.Error("Failed to parse model output as JSON", "error", err, "output", truncate(jsonText, maxLoggedOutput))
		return nil, fmt.Errorf("%w: %w", ErrMalformedModelOutput, err)
	}
	obj, ok := data.(map[string]any)
	if !ok {
		slog.Error("Model output is not a JSON object", "output", truncate(jsonText, maxLoggedOutput))
		return nil, fmt.Errorf("%w: expected a JSON object, got %T", ErrMalformedModelOutput, data)
	}
	return models.Flowchart(obj), nil
}

// MarshalFlowchart renders a flowchart with two-space indentation and without
// HTML escaping, so labels are stored as the model wrote them.
func MarshalFlowchart(flowchart models.Flowchart) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(flowchart); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// countItems is best-effort; a missing or non-array key counts as zero.
func countItems(flowchart models.Flowchart, key string) int {
	items, _ := flowchart[key].([]any)
	return len(items)
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
