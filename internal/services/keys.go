package services

import (
	"path"
	"strings"
)

const (
	textSuffix      = ".txt"
	flowchartSuffix = ".flowchart.json"
	rewrittenSuffix = ".rewritten.txt"
)

// baseKey strips the final extension of the last path element.
// A leading dot is part of the name, not an extension.
func baseKey(key string) string {
	ext := path.Ext(key)
	if ext == "" {
		return key
	}
	base := strings.TrimSuffix(key, ext)
	if base == "" || strings.HasSuffix(base, "/") {
		return key
	}
	return base
}

// TextKeyFor derives the extracted-text key for an uploaded document key.
func TextKeyFor(sourceKey string) string {
	return baseKey(sourceKey) + textSuffix
}

// ArtifactKeysFor derives the flowchart and rewritten-story keys for a text key.
func ArtifactKeysFor(sourceKey string) (flowchartKey, storyKey string) {
	base := baseKey(sourceKey)
	return base + flowchartSuffix, base + rewrittenSuffix
}
