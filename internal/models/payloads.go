package models

// These structs define the JSON payloads exchanged with the functions' callers
// and with downstream workflows.

// StoryTransformRequest is the input for the story-transformer function.
type StoryTransformRequest struct {
	SourceKey  string `json:"sourceKey"`
	UserPrompt string `json:"userPrompt"`
}

// StoryTransformResponse is the output of the story-transformer function.
type StoryTransformResponse struct {
	FlowchartKey string `json:"flowchartKey"`
	StoryKey     string `json:"storyKey"`
	Model        string `json:"model"`
}

// ErrorResponse is returned for requests the caller can fix.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ObjectRef identifies an object in a bucket.
type ObjectRef struct {
	Bucket string
	Key    string
}

// ExtractionHandoff is the argument passed to a workflow once text is extracted.
type ExtractionHandoff struct {
	TextBucket   string `json:"textBucket"`
	TextKey      string `json:"textKey"`
	SourceBucket string `json:"sourceBucket"`
	SourceKey    string `json:"sourceKey"`
}
