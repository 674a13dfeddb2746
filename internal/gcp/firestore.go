package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/Lllllllleong/storyflow/internal/models"
)

// NewFirestoreClient creates and returns a new Firestore client for the given project ID.
func NewFirestoreClient(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return client, nil
}

// Ledger appends extraction and story records to a Firestore collection.
type Ledger struct {
	client     *firestore.Client
	collection string
}

// NewLedger creates a Ledger writing into collection.
func NewLedger(ctx context.Context, projectID, collection string) (*Ledger, error) {
	if collection == "" {
		return nil, fmt.Errorf("collection must be provided to create a ledger")
	}
	client, err := NewFirestoreClient(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return &Ledger{client: client, collection: collection}, nil
}

// RecordExtraction stores one extraction outcome and returns its document ID.
func (l *Ledger) RecordExtraction(ctx context.Context, rec models.ExtractionRecord) (string, error) {
	return l.add(ctx, rec.RunID, rec)
}

// RecordStoryRun stores one story transformation outcome and returns its document ID.
func (l *Ledger) RecordStoryRun(ctx context.Context, run models.StoryRun) (string, error) {
	return l.add(ctx, run.RunID, run)
}

// add writes data under id, or under a generated ID when id is empty.
func (l *Ledger) add(ctx context.Context, id string, data any) (string, error) {
	coll := l.client.Collection(l.collection)
	if id == "" {
		docRef, _, err := coll.Add(ctx, data)
		if err != nil {
			return "", fmt.Errorf("failed to add ledger document to %s: %w", l.collection, err)
		}
		return docRef.ID, nil
	}
	if _, err := coll.Doc(id).Set(ctx, data); err != nil {
		return "", fmt.Errorf("failed to set ledger document %s/%s: %w", l.collection, id, err)
	}
	return id, nil
}

func (l *Ledger) Close() error {
	return l.client.Close()
}
