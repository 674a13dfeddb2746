package gcp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"cloud.google.com/go/storage"
)

// Content types used for stored artifacts.
const (
	ContentTypeJSON = "application/json"
	ContentTypeText = "text/plain; charset=utf-8"
)

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// Storage reads and writes whole objects in Cloud Storage.
type Storage struct {
	client *storage.Client
}

// NewStorage creates a Storage backed by a new Cloud Storage client.
func NewStorage(ctx context.Context) (*Storage, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &Storage{client: client}, nil
}

// Read returns the full content of gs://bucket/key.
func (s *Storage) Read(ctx context.Context, bucket, key string) ([]byte, error) {
	reader, err := s.client.Bucket(bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get GCS object reader for gs://%s/%s: %w", bucket, key, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read gs://%s/%s: %w", bucket, key, err)
	}
	return data, nil
}

// Write stores content at gs://bucket/key, replacing any existing object.
// The object only becomes visible once the writer is closed successfully.
func (s *Storage) Write(ctx context.Context, bucket, key string, content []byte, contentType string) error {
	writer := s.client.Bucket(bucket).Object(key).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := io.Copy(writer, bytes.NewReader(content)); err != nil {
		_ = writer.Close()
		slog.Error("Failed to copy content to GCS object", "bucket", bucket, "object", key, "error", err)
		return fmt.Errorf("failed to write to GCS: %w", err)
	}

	if err := writer.Close(); err != nil {
		slog.Error("Failed to close GCS writer", "bucket", bucket, "object", key, "error", err)
		return fmt.Errorf("failed to finalize GCS write: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *Storage) Close() error {
	return s.client.Close()
}
