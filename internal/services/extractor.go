package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Lllllllleong/storyflow/internal/gcp"
	"github.com/Lllllllleong/storyflow/internal/models"
)

// ExtractorConfig holds configuration for the text-extractor service.
type ExtractorConfig struct {
	ProjectID        string
	TextBucket       string
	CollectionName   string
	WorkflowID       string
	WorkflowLocation string
}

// ExtractorFunction holds dependencies for the text extraction logic.
type ExtractorFunction struct {
	store    ObjectStore
	pages    PageReader
	ledger   ExtractionRecorder
	workflow WorkflowTrigger
	config   ExtractorConfig
}

func loadExtractorConfig() (ExtractorConfig, error) {
	config := ExtractorConfig{
		ProjectID:        gcp.GetEnv("PROJECT_ID", ""),
		TextBucket:       gcp.GetEnv("TEXT_BUCKET", ""), // Destination bucket
		CollectionName:   gcp.GetEnv("FIRESTORE_COLLECTION", ""),
		WorkflowID:       gcp.GetEnv("WORKFLOW_ID", ""),
		WorkflowLocation: gcp.GetEnv("WORKFLOW_LOCATION", "us-central1"),
	}
	if config.TextBucket == "" {
		return config, fmt.Errorf("TEXT_BUCKET environment variable must be set")
	}
	if (config.CollectionName != "" || config.WorkflowID != "") && config.ProjectID == "" {
		return config, fmt.Errorf("PROJECT_ID must be set when FIRESTORE_COLLECTION or WORKFLOW_ID is used")
	}
	return config, nil
}

// NewExtractor creates a new ExtractorFunction instance.
func NewExtractor(ctx context.Context) (*ExtractorFunction, error) {
	config, err := loadExtractorConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	store, err := gcp.NewStorage(ctx)
	if err != nil {
		return nil, err
	}

	f := &ExtractorFunction{
		store:  store,
		pages:  PDFPageReader{},
		config: config,
	}

	opened := []io.Closer{store}
	if config.CollectionName != "" {
		ledger, err := gcp.NewLedger(ctx, config.ProjectID, config.CollectionName)
		if err != nil {
			closeAll(opened...)
			return nil, fmt.Errorf("failed to create ledger: %w", err)
		}
		f.ledger = ledger
		opened = append(opened, ledger)
	}
	if config.WorkflowID != "" {
		launcher, err := gcp.NewWorkflowLauncher(ctx, config.ProjectID, config.WorkflowLocation, config.WorkflowID)
		if err != nil {
			closeAll(opened...)
			return nil, fmt.Errorf("failed to create workflow launcher: %w", err)
		}
		f.workflow = launcher
	}

	slog.Info("Text extractor initialized.", "textBucket", config.TextBucket, "workflowId", config.WorkflowID)
	return f, nil
}

// ProcessEvent extracts text for every object referenced by an upload event.
func (f *ExtractorFunction) ProcessEvent(ctx context.Context, data []byte) error {
	refs, err := ParseStorageEvent(data)
	if err != nil {
		slog.Error("Failed to parse storage event", "error", err, "data", string(data))
		return err
	}
	for _, ref := range refs {
		if err := f.Process(ctx, ref); err != nil {
			return err
		}
	}
	return nil
}

// Process extracts the text of one uploaded PDF into TEXT_BUCKET.
// A document without any text is skipped with a warning, not an error.
func (f *ExtractorFunction) Process(ctx context.Context, ref models.ObjectRef) error {
	runID := uuid.New().String()
	logCtx := slog.With("runId", runID, "gcsBucket", ref.Bucket, "gcsObject", ref.Key)
	logCtx.Info("New document detected.")

	if ref.Bucket == f.config.TextBucket {
		logCtx.Warn("Object is in the text bucket itself. Skipping to avoid re-processing output.")
		return nil
	}

	textKey := TextKeyFor(ref.Key)
	rec := models.ExtractionRecord{
		RunID:        runID,
		SourceBucket: ref.Bucket,
		SourceKey:    ref.Key,
		TextKey:      textKey,
		CreatedAt:    time.Now(),
	}

	data, err := f.store.Read(ctx, ref.Bucket, ref.Key)
	if err != nil {
		return f.handleError(ctx, logCtx, rec, "failed to read source document", err)
	}
	rec.FileHash = hashContent(data)
	logCtx = logCtx.With("fileHash", rec.FileHash)

	pages, err := f.pages.ReadPages(data)
	if err != nil {
		return f.handleError(ctx, logCtx, rec, "failed to parse document", err)
	}
	rec.PageCount = len(pages)

	text := strings.Join(pages, "")
	if strings.TrimSpace(text) == "" {
		logCtx.Warn("Could not extract any text from document.", "pageCount", len(pages))
		rec.Status = models.StatusSkippedEmpty
		f.record(ctx, logCtx, rec)
		return nil
	}

	if err := f.store.Write(ctx, f.config.TextBucket, textKey, []byte(text), gcp.ContentTypeText); err != nil {
		return f.handleError(ctx, logCtx, rec, "failed to save extracted text", err)
	}
	logCtx.Info("Extracted text saved.", "textBucket", f.config.TextBucket, "textKey", textKey, "pageCount", len(pages))

	if f.workflow != nil {
		execution, err := f.workflow.Trigger(ctx, models.ExtractionHandoff{
			TextBucket:   f.config.TextBucket,
			TextKey:      textKey,
			SourceBucket: ref.Bucket,
			SourceKey:    ref.Key,
		})
		if err != nil {
			return f.handleError(ctx, logCtx, rec, "failed to hand off to workflow", err)
		}
		logCtx.Info("Hand-off to workflow complete.", "execution", execution)
	}

	rec.Status = models.StatusSucceeded
	f.record(ctx, logCtx, rec)
	return nil
}

func (f *ExtractorFunction) handleError(ctx context.Context, logCtx *slog.Logger, rec models.ExtractionRecord, message string, originalErr error) error {
	logCtx.Error(message, "error", originalErr)
	rec.Status = models.StatusFailed
	rec.ErrorDetails = fmt.Sprintf("%s: %v", message, originalErr)
	f.record(ctx, logCtx, rec)
	return fmt.Errorf("%s: %w", message, originalErr)
}

// record writes to the ledger when one is configured. Ledger failures never fail the invocation.
func (f *ExtractorFunction) record(ctx context.Context, logCtx *slog.Logger, rec models.ExtractionRecord) {
	if f.ledger == nil {
		return
	}
	if _, err := f.ledger.RecordExtraction(ctx, rec); err != nil {
		logCtx.Warn("Failed to record extraction in ledger.", "error", err, "status", rec.Status)
	}
}

func hashContent(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
