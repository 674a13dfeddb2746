package main

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/Lllllllleong/storyflow/internal/services"
	cloudevents "github.com/cloudevents/sdk-go/v2"
)

var (
	extractorInstance *services.ExtractorFunction
	once              sync.Once
	initErr           error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Register the CloudEvent function. The framework routes upload events here.
	functions.CloudEvent("ExtractText", extractText)
}

// main is required by the Go Functions Framework.
func main() {}

// extractText is the Cloud Function entry point for uploaded documents.
func extractText(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		extractorInstance, initErr = services.NewExtractor(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	slog.Info("Received storage event.", "eventId", e.ID(), "eventType", e.Type(), "subject", e.Subject())

	// Returning an error marks the invocation as failed; the platform decides on retries.
	return extractorInstance.ProcessEvent(ctx, e.Data())
}
