package services

import (
	"context"
	"io"
	"log/slog"

	"github.com/Lllllllleong/storyflow/internal/models"
)

// ObjectStore reads and writes whole objects. Implemented by gcp.Storage.
type ObjectStore interface {
	Read(ctx context.Context, bucket, key string) ([]byte, error)
	Write(ctx context.Context, bucket, key string, content []byte, contentType string) error
}

// ModelBackend is a generative model provider. Implemented by gcp.GeminiClient
// and gcp.VertexClient.
type ModelBackend interface {
	ModelCatalog
	GenerateText(ctx context.Context, modelID, prompt string) (string, error)
	io.Closer
}

// ModelCatalog enumerates the models a provider exposes. On error it may still
// return the models listed before the failure.
type ModelCatalog interface {
	ListModels(ctx context.Context) ([]models.ModelInfo, error)
}

// TextGenerator sends one prompt to an already chosen model.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// ExtractionRecorder stores extraction outcomes. Implemented by gcp.Ledger.
type ExtractionRecorder interface {
	RecordExtraction(ctx context.Context, rec models.ExtractionRecord) (string, error)
}

// StoryRunRecorder stores transformation outcomes. Implemented by gcp.Ledger.
type StoryRunRecorder interface {
	RecordStoryRun(ctx context.Context, run models.StoryRun) (string, error)
}

// WorkflowTrigger hands extracted text to a downstream workflow. Implemented by gcp.WorkflowLauncher.
type WorkflowTrigger interface {
	Trigger(ctx context.Context, handoff models.ExtractionHandoff) (string, error)
}

// boundModel pins a ModelBackend to one model ID.
type boundModel struct {
	backend ModelBackend
	modelID string
}

func (m boundModel) GenerateText(ctx context.Context, prompt string) (string, error) {
	return m.backend.GenerateText(ctx, m.modelID, prompt)
}

// closeAll releases clients created before an initialization step failed.
// Nil entries are skipped and close errors are only logged.
func closeAll(closers ...io.Closer) {
	for _, c := range closers {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			slog.Warn("Failed to close client.", "error", err)
		}
	}
}
