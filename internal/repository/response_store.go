package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gravywork/assessment-backend/internal/entity"
)

// ResponseArchive stores raw answer recordings and their per-question
// metadata objects. Written once per question during the call.
type ResponseArchive struct {
	store ObjectStore
}

func NewResponseArchive(store ObjectStore) *ResponseArchive {
	return &ResponseArchive{store: store}
}

// SaveRecording archives the audio bytes of one answer and returns the
// storage key the recording now lives under.
func (a *ResponseArchive) SaveRecording(ctx context.Context, assessmentID, questionID string, audio []byte) (string, error) {
	key := recordingKey(assessmentID, questionID)
	if err := a.store.Put(ctx, key, audio, "audio/mpeg"); err != nil {
		return "", err
	}
	return key, nil
}

// SaveMeta writes the response metadata object next to the session state.
func (a *ResponseArchive) SaveMeta(ctx context.Context, assessmentID, questionID string, resp entity.Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("marshal response meta: %w", err)
	}
	return a.store.Put(ctx, responseKey(assessmentID, questionID), data, "application/json")
}
