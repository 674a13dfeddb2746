package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/Lllllllleong/storyflow/internal/services"
)

var (
	transformerInstance *services.TransformerFunction
	once                sync.Once
	initErr             error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// "HandleTransformStory" is the entry point name configured in GCP.
	functions.HTTP("HandleTransformStory", handleTransformStory)
}

// main is required by the Go Functions Framework.
func main() {}

// handleTransformStory is the HTTP handler for the story transformation service.
func handleTransformStory(w http.ResponseWriter, r *http.Request) {
	// Credential retrieval and model selection run once, before the first request
	// is processed. A failure is sticky: the instance never serves.
	once.Do(func() {
		transformerInstance, initErr = services.NewTransformer(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical: Transformer initialization failed", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	transformerInstance.HandleHTTP(w, r)
}
