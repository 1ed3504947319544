package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/gravywork/assessment-backend/internal/entity"
)

// IndexStore maintains the shared assessment listing document with
// read-merge-write updates. Concurrent updaters can lose entries; the
// per-assessment results stay authoritative, so the index is best effort.
type IndexStore struct {
	store ObjectStore
}

func NewIndexStore(store ObjectStore) *IndexStore {
	return &IndexStore{store: store}
}

// Get returns the current index. A missing index object reads as empty.
func (s *IndexStore) Get(ctx context.Context) (*entity.AssessmentIndex, error) {
	data, err := s.store.Get(ctx, indexKey)
	if err != nil {
		if errors.Is(err, entity.ErrObjectNotFound) {
			return &entity.AssessmentIndex{Assessments: []entity.IndexEntry{}}, nil
		}
		return nil, err
	}

	var index entity.AssessmentIndex
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("unmarshal index: %w", err)
	}
	if index.Assessments == nil {
		index.Assessments = []entity.IndexEntry{}
	}

	return &index, nil
}

// Update upserts one entry by assessment id and rewrites the whole index,
// newest first.
func (s *IndexStore) Update(ctx context.Context, entry entity.IndexEntry) error {
	index, err := s.Get(ctx)
	if err != nil {
		return err
	}

	replaced := false
	for i, existing := range index.Assessments {
		if existing.ID == entry.ID {
			index.Assessments[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		index.Assessments = append(index.Assessments, entry)
	}

	sort.SliceStable(index.Assessments, func(i, j int) bool {
		return index.Assessments[i].AnalyzedAt.After(index.Assessments[j].AnalyzedAt)
	})

	now := time.Now().UTC()
	index.LastUpdated = &now
	index.TotalCount = len(index.Assessments)

	data, err := json.Marshal(index)
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}
	return s.store.Put(ctx, indexKey, data, "application/json")
}
