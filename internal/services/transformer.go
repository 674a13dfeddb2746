package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Lllllllleong/storyflow/internal/gcp"
	"github.com/Lllllllleong/storyflow/internal/models"
)

// Model backends selectable through MODEL_BACKEND.
const (
	BackendGemini = "gemini"
	BackendVertex = "vertex"
)

// TransformerConfig holds configuration for the story-transformer service.
type TransformerConfig struct {
	ProjectID      string
	TextBucket     string
	FinalBucket    string
	APIKeySecret   string
	PreferredModel string
	Backend        string
	VertexAIRegion string
	CollectionName string
}

// TransformerFunction holds dependencies for the story transformation logic.
// It is fully built, model selection included, before it serves any request.
type TransformerFunction struct {
	store     ObjectStore
	model     TextGenerator
	selection ModelSelection
	ledger    StoryRunRecorder
	config    TransformerConfig
}

func loadTransformerConfig() (TransformerConfig, error) {
	config := TransformerConfig{
		ProjectID:      gcp.GetEnv("PROJECT_ID", ""),
		TextBucket:     gcp.GetEnv("TEXT_BUCKET", ""),  // Source bucket
		FinalBucket:    gcp.GetEnv("FINAL_BUCKET", ""), // Destination bucket
		APIKeySecret:   gcp.GetEnv("GEMINI_API_KEY_SECRET", ""),
		PreferredModel: gcp.GetEnv("GEMINI_MODEL", DefaultPreferredModel),
		Backend:        gcp.GetEnv("MODEL_BACKEND", BackendGemini),
		VertexAIRegion: gcp.GetEnv("VERTEX_AI_REGION", "us-central1"),
		CollectionName: gcp.GetEnv("FIRESTORE_COLLECTION", ""),
	}
	if config.TextBucket == "" || config.FinalBucket == "" {
		return config, fmt.Errorf("TEXT_BUCKET and FINAL_BUCKET must be set")
	}
	if config.PreferredModel == "" {
		config.PreferredModel = DefaultPreferredModel
	}
	switch config.Backend {
	case BackendGemini:
		if config.APIKeySecret == "" {
			return config, fmt.Errorf("GEMINI_API_KEY_SECRET must be set for the %s backend", BackendGemini)
		}
	case BackendVertex:
		if config.ProjectID == "" {
			return config, fmt.Errorf("PROJECT_ID must be set for the %s backend", BackendVertex)
		}
	default:
		return config, fmt.Errorf("unknown MODEL_BACKEND %q", config.Backend)
	}
	if config.CollectionName != "" && config.ProjectID == "" {
		return config, fmt.Errorf("PROJECT_ID must be set when FIRESTORE_COLLECTION is used")
	}
	return config, nil
}

// NewTransformer loads configuration, retrieves the model credential and
// resolves the model. Any failure here is fatal for the instance.
func NewTransformer(ctx context.Context) (*TransformerFunction, error) {
	config, err := loadTransformerConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	store, err := gcp.NewStorage(ctx)
	if err != nil {
		return nil, err
	}

	backend, err := newModelBackend(ctx, config)
	if err != nil {
		closeAll(store)
		return nil, err
	}

	var ledger StoryRunRecorder
	if config.CollectionName != "" {
		l, err := gcp.NewLedger(ctx, config.ProjectID, config.CollectionName)
		if err != nil {
			closeAll(store, backend)
			return nil, fmt.Errorf("failed to create ledger: %w", err)
		}
		ledger = l
	}

	return newTransformerFunction(ctx, config, store, backend, ledger), nil
}

func newModelBackend(ctx context.Context, config TransformerConfig) (ModelBackend, error) {
	if config.Backend == BackendVertex {
		vertexClient, err := gcp.NewVertexClient(ctx, config.ProjectID, config.VertexAIRegion)
		if err != nil {
			return nil, fmt.Errorf("failed to create vertex client: %w", err)
		}
		return vertexClient, nil
	}

	slog.Info("Fetching model API key from Secret Manager.", "secret", config.APIKeySecret)
	secrets, err := gcp.NewSecretStore(ctx, config.ProjectID)
	if err != nil {
		return nil, err
	}
	defer secrets.Close()

	apiKey, err := secrets.Access(ctx, config.APIKeySecret)
	if err != nil {
		slog.Error("FATAL: Could not retrieve model API key.", "error", err)
		return nil, fmt.Errorf("failed to retrieve model API key: %w", err)
	}
	geminiClient, err := gcp.NewGeminiClient(ctx, apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	slog.Info("Successfully configured model client.")
	return geminiClient, nil
}

// newTransformerFunction resolves the model once and binds it to the instance.
func newTransformerFunction(ctx context.Context, config TransformerConfig, store ObjectStore, backend ModelBackend, ledger StoryRunRecorder) *TransformerFunction {
	selection := SelectModel(ctx, backend, config.PreferredModel, FallbackModels)
	slog.Info("Story transformer initialized.", "model", selection.ModelID, "reason", selection.Reason, "backend", config.Backend)
	return &TransformerFunction{
		store:     store,
		model:     boundModel{backend: backend, modelID: selection.ModelID},
		selection: selection,
		ledger:    ledger,
		config:    config,
	}
}

// Selection returns the model resolved at initialization.
func (f *TransformerFunction) Selection() ModelSelection {
	return f.selection
}

// Process runs one transformation: load text, build the flowchart, rewrite the
// story and store both artifacts in FINAL_BUCKET.
func (f *TransformerFunction) Process(ctx context.Context, req *models.StoryTransformRequest) (*models.StoryTransformResponse, error) {
	if req == nil || req.SourceKey == "" || req.UserPrompt == "" {
		slog.Error("Missing sourceKey or userPrompt in request body.")
		return nil, fmt.Errorf("%w: missing sourceKey or userPrompt", ErrInvalidRequest)
	}

	runID := uuid.New().String()
	logCtx := slog.With("runId", runID, "sourceKey", req.SourceKey, "model", f.selection.ModelID)
	logCtx.Info("Starting story transformation.")

	flowchartKey, storyKey := ArtifactKeysFor(req.SourceKey)
	run := models.StoryRun{
		RunID:        runID,
		SourceKey:    req.SourceKey,
		UserPrompt:   req.UserPrompt,
		FlowchartKey: flowchartKey,
		StoryKey:     storyKey,
		Model:        f.selection.ModelID,
		CreatedAt:    time.Now(),
	}

	// --- 1. Read the original story text ---
	storyBytes, err := f.store.Read(ctx, f.config.TextBucket, req.SourceKey)
	if err != nil {
		return nil, f.handleError(ctx, logCtx, run, "failed to read source text", err)
	}
	storyText := string(storyBytes)

	// --- 2. Structure it as a flowchart ---
	flowchart, err := BuildFlowchart(ctx, f.model, storyText)
	if err != nil {
		return nil, f.handleError(ctx, logCtx, run, "flowchart step failed", err)
	}

	// --- 3. Rewrite the story ---
	newStory, err := RewriteStory(ctx, f.model, storyText, flowchart, req.UserPrompt)
	if err != nil {
		return nil, f.handleError(ctx, logCtx, run, "rewrite step failed", err)
	}

	// --- 4. Save both artifacts ---
	flowchartJSON, err := MarshalFlowchart(flowchart)
	if err != nil {
		return nil, f.handleError(ctx, logCtx, run, "failed to marshal flowchart", err)
	}
	if err := f.store.Write(ctx, f.config.FinalBucket, flowchartKey, flowchartJSON, gcp.ContentTypeJSON); err != nil {
		return nil, f.handleError(ctx, logCtx, run, "failed to save flowchart", err)
	}
	if err := f.store.Write(ctx, f.config.FinalBucket, storyKey, []byte(newStory), gcp.ContentTypeText); err != nil {
		return nil, f.handleError(ctx, logCtx, run, "failed to save rewritten story", err)
	}

	logCtx.Info("Story transformation complete.",
		"flowchartUri", fmt.Sprintf("gs://%s/%s", f.config.FinalBucket, flowchartKey),
		"storyUri", fmt.Sprintf("gs://%s/%s", f.config.FinalBucket, storyKey),
	)
	run.Status = models.StatusSucceeded
	f.record(ctx, logCtx, run)

	return &models.StoryTransformResponse{
		FlowchartKey: flowchartKey,
		StoryKey:     storyKey,
		Model:        f.selection.ModelID,
	}, nil
}

func (f *TransformerFunction) handleError(ctx context.Context, logCtx *slog.Logger, run models.StoryRun, message string, originalErr error) error {
	logCtx.Error(message, "error", originalErr)
	run.Status = models.StatusFailed
	run.ErrorDetails = fmt.Sprintf("%s: %v", message, originalErr)
	f.record(ctx, logCtx, run)
	return fmt.Errorf("%s: %w", message, originalErr)
}

func (f *TransformerFunction) record(ctx context.Context, logCtx *slog.Logger, run models.StoryRun) {
	if f.ledger == nil {
		return
	}
	if _, err := f.ledger.RecordStoryRun(ctx, run); err != nil {
		logCtx.Warn("Failed to record story run in ledger.", "error", err, "status", run.Status)
	}
}
