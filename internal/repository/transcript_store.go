package repository

import (
	"context"
	"errors"

	"github.com/gravywork/assessment-backend/internal/entity"
)

// TranscriptStore caches finished transcripts so reprocessing an
// assessment never re-transcribes an already transcribed answer.
type TranscriptStore struct {
	store ObjectStore
}

func NewTranscriptStore(store ObjectStore) *TranscriptStore {
	return &TranscriptStore{store: store}
}

func (s *TranscriptStore) Save(ctx context.Context, assessmentID, questionID, transcript string) error {
	return s.store.Put(ctx, transcriptKey(assessmentID, questionID), []byte(transcript), "text/plain; charset=utf-8")
}

// Get returns the cached transcript, or ok=false when none exists yet.
func (s *TranscriptStore) Get(ctx context.Context, assessmentID, questionID string) (string, bool, error) {
	data, err := s.store.Get(ctx, transcriptKey(assessmentID, questionID))
	if err != nil {
		if errors.Is(err, entity.ErrObjectNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(data), true, nil
}
