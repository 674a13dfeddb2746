package models

import "time"

// Ledger statuses shared by extraction and story records.
const (
	StatusSucceeded    = "SUCCEEDED"
	StatusSkippedEmpty = "SKIPPED_EMPTY"
	StatusFailed       = "FAILED"
)

// ExtractionRecord is the Firestore record written for each processed upload.
// RunID doubles as the document ID.
type ExtractionRecord struct {
	RunID        string    `firestore:"-"`
	FileHash     string    `firestore:"fileHash,omitempty"`
	SourceBucket string    `firestore:"sourceBucket,omitempty"`
	SourceKey    string    `firestore:"sourceKey,omitempty"`
	TextKey      string    `firestore:"textKey,omitempty"`
	PageCount    int       `firestore:"pageCount,omitempty"`
	Status       string    `firestore:"status,omitempty"`
	ErrorDetails string    `firestore:"errorDetails,omitempty"`
	CreatedAt    time.Time `firestore:"createdAt,omitempty"`
}

// StoryRun records one story transformation request.
type StoryRun struct {
	RunID        string    `firestore:"-"`
	SourceKey    string    `firestore:"sourceKey,omitempty"`
	UserPrompt   string    `firestore:"userPrompt,omitempty"`
	FlowchartKey string    `firestore:"flowchartKey,omitempty"`
	StoryKey     string    `firestore:"storyKey,omitempty"`
	Model        string    `firestore:"model,omitempty"`
	Status       string    `firestore:"status,omitempty"`
	ErrorDetails string    `firestore:"errorDetails,omitempty"`
	CreatedAt    time.Time `firestore:"createdAt,omitempty"`
}

// Flowchart is the model-produced description of a story. Only its top-level
// shape (a JSON object) is guaranteed; "nodes" and "edges" are best-effort.
type Flowchart map[string]any

// ModelInfo is the provider-neutral view of one entry in a model catalog.
type ModelInfo struct {
	Name                       string
	SupportedGenerationMethods []string
}
