package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextKeyFor(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		expected string
	}{
		{name: "pdf in folder", key: "stories/fox.pdf", expected: "stories/fox.txt"},
		{name: "only final extension replaced", key: "archive/fox.v2.pdf", expected: "archive/fox.v2.txt"},
		{name: "no extension", key: "stories/fox", expected: "stories/fox.txt"},
		{name: "dot in folder only", key: "v1.0/fox", expected: "v1.0/fox.txt"},
		{name: "dotfile keeps its name", key: "stories/.fox", expected: "stories/.fox.txt"},
		{name: "top level", key: "fox.PDF", expected: "fox.txt"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, TextKeyFor(tc.key))
		})
	}
}

func TestArtifactKeysFor(t *testing.T) {
	flowchartKey, storyKey := ArtifactKeysFor("stories/fox.txt")
	assert.Equal(t, "stories/fox.flowchart.json", flowchartKey)
	assert.Equal(t, "stories/fox.rewritten.txt", storyKey)

	flowchartKey, storyKey = ArtifactKeysFor("fox")
	assert.Equal(t, "fox.flowchart.json", flowchartKey)
	assert.Equal(t, "fox.rewritten.txt", storyKey)
}
