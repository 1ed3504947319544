package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gravywork/assessment-backend/internal/entity"
)

// SessionStore persists assessment sessions as single JSON state objects.
type SessionStore struct {
	store ObjectStore
}

func NewSessionStore(store ObjectStore) *SessionStore {
	return &SessionStore{store: store}
}

func (s *SessionStore) Save(ctx context.Context, session *entity.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.store.Put(ctx, sessionKey(session.AssessmentID), data, "application/json")
}

func (s *SessionStore) Get(ctx context.Context, assessmentID string) (*entity.Session, error) {
	data, err := s.store.Get(ctx, sessionKey(assessmentID))
	if err != nil {
		if errors.Is(err, entity.ErrObjectNotFound) {
			return nil, fmt.Errorf("%w: %s", entity.ErrSessionNotFound, assessmentID)
		}
		return nil, err
	}

	var session entity.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", assessmentID, err)
	}

	return &session, nil
}

// ListIDs returns the assessment ids of every stored session.
// Used by the sweeper; listing walks state objects only.
func (s *SessionStore) ListIDs(ctx context.Context) ([]string, error) {
	keys, err := s.store.List(ctx, "assessments/")
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, key := range keys {
		rest, ok := strings.CutPrefix(key, "assessments/")
		if !ok {
			continue
		}
		id, ok := strings.CutSuffix(rest, "/state.json")
		if !ok || strings.Contains(id, "/") {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
