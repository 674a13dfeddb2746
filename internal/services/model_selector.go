package services

import (
	"context"
	"log/slog"
	"slices"
	"sort"
	"strings"
)

const (
	// DefaultPreferredModel is used when GEMINI_MODEL is not set.
	DefaultPreferredModel = "gemini-2.5-pro"

	generateContentMethod = "generateContent"
)

// FallbackModels are tried in order when the preferred model is not available.
var FallbackModels = []string{"gemini-2.0-flash", "gemini-flash-latest"}

// Reasons recorded on a ModelSelection.
const (
	SelectedPreferred     = "preferred"
	SelectedFallback      = "fallback"
	SelectedUnconditional = "unconditional"
)

// ModelSelection is the model resolved at cold start. It is never mutated afterwards.
type ModelSelection struct {
	ModelID   string
	Reason    string
	Available []string
}

// SelectModel resolves which model to use: the preferred one if the catalog
// offers it for content generation, otherwise the first available fallback,
// otherwise the preferred one regardless of availability.
func SelectModel(ctx context.Context, catalog ModelCatalog, preferred string, fallbacks []string) ModelSelection {
	available := availableModels(ctx, catalog)
	ids := make([]string, 0, len(available))
	for id := range available {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	slog.Info("Models available for generateContent.", "models", ids)

	if _, ok := available[preferred]; ok {
		return ModelSelection{ModelID: preferred, Reason: SelectedPreferred, Available: ids}
	}
	for _, fb := range fallbacks {
		if _, ok := available[fb]; ok {
			slog.Info("Using fallback model.", "model", fb, "preferred", preferred)
			return ModelSelection{ModelID: fb, Reason: SelectedFallback, Available: ids}
		}
	}
	slog.Info("Using preferred model; it may be unavailable.", "model", preferred)
	return ModelSelection{ModelID: preferred, Reason: SelectedUnconditional, Available: ids}
}

// availableModels returns the short IDs of models supporting content generation.
// A catalog error is logged; models listed before it still count.
func availableModels(ctx context.Context, catalog ModelCatalog) map[string]struct{} {
	ids := make(map[string]struct{})
	if catalog == nil {
		return ids
	}
	infos, err := catalog.ListModels(ctx)
	if err != nil {
		slog.Warn("Could not list all models; using the ones listed so far.", "error", err, "listed", len(infos))
	}
	for _, m := range infos {
		if !slices.Contains(m.SupportedGenerationMethods, generateContentMethod) {
			continue
		}
		ids[shortModelID(m.Name)] = struct{}{}
	}
	return ids
}

// shortModelID returns the last path segment of a model resource name.
func shortModelID(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}
