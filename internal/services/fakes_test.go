package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Lllllllleong/storyflow/internal/models"
)

// storedObject is one write observed by fakeStore.
type storedObject struct {
	Bucket      string
	Key         string
	Content     string
	ContentType string
}

// fakeStore is an in-memory ObjectStore.
type fakeStore struct {
	mu       sync.Mutex
	objects  map[string][]byte
	writes   []storedObject
	reads    int
	readErr  error
	writeErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (s *fakeStore) put(bucket, key string, content []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[bucket+"/"+key] = content
}

func (s *fakeStore) Read(_ context.Context, bucket, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.readErr != nil {
		return nil, s.readErr
	}
	data, ok := s.objects[bucket+"/"+key]
	if !ok {
		return nil, fmt.Errorf("object gs://%s/%s not found", bucket, key)
	}
	return data, nil
}

func (s *fakeStore) Write(_ context.Context, bucket, key string, content []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.objects[bucket+"/"+key] = content
	s.writes = append(s.writes, storedObject{Bucket: bucket, Key: key, Content: string(content), ContentType: contentType})
	return nil
}

// fakeBackend is a scripted ModelBackend. Responses are returned in call order.
type fakeBackend struct {
	catalog    []models.ModelInfo
	catalogErr error
	responses  []string
	errs       []error
	prompts    []string
	modelIDs   []string
	closed     bool
}

func (b *fakeBackend) Close() error {
	b.closed = true
	return nil
}

func (b *fakeBackend) ListModels(context.Context) ([]models.ModelInfo, error) {
	return b.catalog, b.catalogErr
}

func (b *fakeBackend) GenerateText(_ context.Context, modelID, prompt string) (string, error) {
	call := len(b.prompts)
	b.prompts = append(b.prompts, prompt)
	b.modelIDs = append(b.modelIDs, modelID)
	if call < len(b.errs) && b.errs[call] != nil {
		return "", b.errs[call]
	}
	if call < len(b.responses) {
		return b.responses[call], nil
	}
	return "", errors.New("unexpected model call")
}

// fakeGenerator is a TextGenerator returning a fixed response.
type fakeGenerator struct {
	response string
	err      error
	prompts  []string
}

func (g *fakeGenerator) GenerateText(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.response, g.err
}

// fakePages is a PageReader returning fixed pages.
type fakePages struct {
	pages []string
	err   error
	calls int
}

func (p *fakePages) ReadPages([]byte) ([]string, error) {
	p.calls++
	return p.pages, p.err
}

// fakeLedger records everything it is given.
type fakeLedger struct {
	extractions []models.ExtractionRecord
	runs        []models.StoryRun
	err         error
}

func (l *fakeLedger) RecordExtraction(_ context.Context, rec models.ExtractionRecord) (string, error) {
	l.extractions = append(l.extractions, rec)
	return "doc-1", l.err
}

func (l *fakeLedger) RecordStoryRun(_ context.Context, run models.StoryRun) (string, error) {
	l.runs = append(l.runs, run)
	return "run-1", l.err
}

// fakeWorkflow records hand-offs.
type fakeWorkflow struct {
	handoffs []models.ExtractionHandoff
	err      error
}

func (w *fakeWorkflow) Trigger(_ context.Context, handoff models.ExtractionHandoff) (string, error) {
	w.handoffs = append(w.handoffs, handoff)
	return "executions/1", w.err
}

func catalogOf(names ...string) []models.ModelInfo {
	infos := make([]models.ModelInfo, 0, len(names))
	for _, n := range names {
		infos = append(infos, models.ModelInfo{
			Name:                       "models/" + n,
			SupportedGenerationMethods: []string{"generateContent", "countTokens"},
		})
	}
	return infos
}

// fakeCloser counts Close calls.
type fakeCloser struct {
	calls int
	err   error
}

func (c *fakeCloser) Close() error {
	c.calls++
	return c.err
}
