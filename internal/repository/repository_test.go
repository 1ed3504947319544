package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gravywork/assessment-backend/internal/entity"
)

func TestSessionStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(NewMemoryStore())

	session := &entity.Session{
		AssessmentID:     "abc123",
		Role:             "bartender",
		QuestionSequence: []string{"intro", "experience_1", "goodbye"},
		Status:           entity.SessionStatusInProgress,
		Responses:        map[string]entity.Response{},
		CreatedAt:        time.Now().UTC(),
	}

	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save session: %v", err)
	}

	got, err := store.Get(ctx, "abc123")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.Role != "bartender" || got.CurrentIndex != 0 {
		t.Fatalf("unexpected session: %+v", got)
	}
	if got.CurrentQuestion() != "intro" {
		t.Fatalf("expected current question intro, got %q", got.CurrentQuestion())
	}
}

func TestSessionStoreGetMissing(t *testing.T) {
	store := NewSessionStore(NewMemoryStore())

	_, err := store.Get(context.Background(), "nope")
	if !errors.Is(err, entity.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionStoreListIDs(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	store := NewSessionStore(mem)

	for _, id := range []string{"a1", "b2"} {
		if err := store.Save(ctx, &entity.Session{AssessmentID: id}); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}
	// Non-state objects under the same prefix must not show up as sessions.
	if err := mem.Put(ctx, "assessments/a1/recordings/intro.mp3", []byte{1}, "audio/mpeg"); err != nil {
		t.Fatalf("put recording: %v", err)
	}

	ids, err := store.ListIDs(ctx)
	if err != nil {
		t.Fatalf("list ids: %v", err)
	}
	if len(ids) != 2 || ids[0] != "a1" || ids[1] != "b2" {
		t.Fatalf("unexpected ids: %v", ids)
	}
}

func TestTranscriptStoreMissReadsAsAbsent(t *testing.T) {
	ctx := context.Background()
	store := NewTranscriptStore(NewMemoryStore())

	_, ok, err := store.Get(ctx, "abc", "experience_1")
	if err != nil {
		t.Fatalf("get transcript: %v", err)
	}
	if ok {
		t.Fatal("expected cache miss")
	}

	if err := store.Save(ctx, "abc", "experience_1", "I worked two years at a hotel bar"); err != nil {
		t.Fatalf("save transcript: %v", err)
	}

	text, ok, err := store.Get(ctx, "abc", "experience_1")
	if err != nil || !ok {
		t.Fatalf("expected cached transcript, ok=%v err=%v", ok, err)
	}
	if text != "I worked two years at a hotel bar" {
		t.Fatalf("unexpected transcript: %q", text)
	}
}

func TestResultStoreMissing(t *testing.T) {
	store := NewResultStore(NewMemoryStore())

	_, err := store.Get(context.Background(), "ghost")
	if !errors.Is(err, entity.ErrResultNotFound) {
		t.Fatalf("expected ErrResultNotFound, got %v", err)
	}
}

func TestIndexStoreUpsertAndOrder(t *testing.T) {
	ctx := context.Background()
	store := NewIndexStore(NewMemoryStore())

	older := entity.IndexEntry{ID: "a", Role: "host", AnalyzedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	newer := entity.IndexEntry{ID: "b", Role: "bartender", AnalyzedAt: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)}

	if err := store.Update(ctx, older); err != nil {
		t.Fatalf("update older: %v", err)
	}
	if err := store.Update(ctx, newer); err != nil {
		t.Fatalf("update newer: %v", err)
	}

	index, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("get index: %v", err)
	}
	if index.TotalCount != 2 {
		t.Fatalf("expected 2 entries, got %d", index.TotalCount)
	}
	if index.Assessments[0].ID != "b" || index.Assessments[1].ID != "a" {
		t.Fatalf("expected newest first, got %+v", index.Assessments)
	}

	// Reprocessing the same assessment replaces its entry instead of duplicating it.
	older.AnalyzedAt = time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC)
	if err := store.Update(ctx, older); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	index, err = store.Get(ctx)
	if err != nil {
		t.Fatalf("get index: %v", err)
	}
	if index.TotalCount != 2 {
		t.Fatalf("expected upsert to keep 2 entries, got %d", index.TotalCount)
	}
	if index.Assessments[0].ID != "a" {
		t.Fatalf("expected rescored assessment first, got %+v", index.Assessments)
	}
	if index.LastUpdated == nil {
		t.Fatal("expected last_updated to be set")
	}
}

func TestIndexStoreEmptyReadsAsEmptyIndex(t *testing.T) {
	store := NewIndexStore(NewMemoryStore())

	index, err := store.Get(context.Background())
	if err != nil {
		t.Fatalf("get index: %v", err)
	}
	if index.TotalCount != 0 || len(index.Assessments) != 0 {
		t.Fatalf("expected empty index, got %+v", index)
	}
}
