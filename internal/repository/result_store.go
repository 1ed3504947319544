package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gravywork/assessment-backend/internal/entity"
)

// ResultStore persists the authoritative per-assessment scoring outcome.
type ResultStore struct {
	store ObjectStore
}

func NewResultStore(store ObjectStore) *ResultStore {
	return &ResultStore{store: store}
}

func (s *ResultStore) Save(ctx context.Context, result *entity.AssessmentResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return s.store.Put(ctx, resultKey(result.AssessmentID), data, "application/json")
}

func (s *ResultStore) Get(ctx context.Context, assessmentID string) (*entity.AssessmentResult, error) {
	data, err := s.store.Get(ctx, resultKey(assessmentID))
	if err != nil {
		if errors.Is(err, entity.ErrObjectNotFound) {
			return nil, fmt.Errorf("%w: %s", entity.ErrResultNotFound, assessmentID)
		}
		return nil, err
	}

	var result entity.AssessmentResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("unmarshal result %s: %w", assessmentID, err)
	}

	return &result, nil
}

// Key returns the storage key a result lives under. The listing index
// records it so clients can locate the full document.
func (s *ResultStore) Key(assessmentID string) string {
	return resultKey(assessmentID)
}
