package store

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"

	"ai-canvas-be/pkg/canvas/catalog"
	"ai-canvas-be/pkg/canvas/document"
)

// flakyStore fails a configured number of writes before succeeding.
type flakyStore struct {
	mu        sync.Mutex
	failFirst int
	attempts  int
	saved     []SectionRecord
}

func (f *flakyStore) SaveSection(ctx context.Context, rec SectionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	if f.attempts <= f.failFirst {
		return errors.New("connection reset")
	}
	f.saved = append(f.saved, rec)
	return nil
}

func (f *flakyStore) GetSection(ctx context.Context, userID, threadID string, sectionID catalog.SectionID) (*SectionRecord, error) {
	return nil, nil
}

func testRecord() SectionRecord {
	doc := document.FromPlainText("content")
	return SectionRecord{
		UserID:    "u",
		ThreadID:  "t",
		SectionID: catalog.SectionInterview,
		Content:   doc,
		PlainText: doc.PlainText(),
		Status:    catalog.StatusDone,
	}
}

func TestRetryingSaveSucceedsFirstTry(t *testing.T) {
	inner := &flakyStore{}
	s := NewRetryingSectionStore(inner, log.New(io.Discard, "", 0))

	if err := s.SaveSection(context.Background(), testRecord()); err != nil {
		t.Fatalf("SaveSection error: %v", err)
	}
	if inner.attempts != 1 {
		t.Errorf("attempts = %d, want 1", inner.attempts)
	}
}

func TestRetryingSaveRecoversFromTransientFailures(t *testing.T) {
	inner := &flakyStore{failFirst: 2}
	s := NewRetryingSectionStore(inner, log.New(io.Discard, "", 0))

	if err := s.SaveSection(context.Background(), testRecord()); err != nil {
		t.Fatalf("SaveSection error after retries: %v", err)
	}
	if inner.attempts != 3 {
		t.Errorf("attempts = %d, want 3", inner.attempts)
	}
	if len(inner.saved) != 1 {
		t.Errorf("saved %d records, want 1", len(inner.saved))
	}
}

func TestRetryingSaveGivesUpAfterThreeAttempts(t *testing.T) {
	inner := &flakyStore{failFirst: 100}
	s := NewRetryingSectionStore(inner, log.New(io.Discard, "", 0))

	err := s.SaveSection(context.Background(), testRecord())
	if err == nil {
		t.Fatal("expected an error after exhausting retries")
	}
	if inner.attempts != 3 {
		t.Errorf("attempts = %d, want 3", inner.attempts)
	}
}

func TestRetryingReadIsNotRetried(t *testing.T) {
	memStore := NewInMemoryStore()
	s := NewRetryingSectionStore(memStore, log.New(io.Discard, "", 0))

	rec, err := s.GetSection(context.Background(), "u", "t", catalog.SectionICP)
	if err != nil {
		t.Fatalf("GetSection error: %v", err)
	}
	if rec != nil {
		t.Error("missing section should come back nil, not an error")
	}
}
