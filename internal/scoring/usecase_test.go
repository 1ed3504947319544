package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gravywork/assessment-backend/internal/catalog"
	"github.com/gravywork/assessment-backend/internal/entity"
	"github.com/gravywork/assessment-backend/internal/repository"
	"github.com/gravywork/assessment-backend/internal/transcribe"
)

const testRoles = `{
  "bartender": {
    "name": "Bartender",
    "questions_sequence": ["intro", "experience_1", "knowledge_margarita", "knowledge_service", "goodbye"],
    "scoring_categories": {
      "baseline": {"name": "Baseline", "questions": ["knowledge_service"], "description": "Service judgment"},
      "experience": {"name": "Experience", "questions": ["experience_1"], "description": "Work history"},
      "knowledge": {"name": "Knowledge", "questions": ["knowledge_margarita"], "description": "Recipes"}
    },
    "questions": {
      "knowledge_margarita": {
        "question": "What are the basic ingredients in a Margarita?",
        "ideal": "Tequila, triple sec, lime",
        "acceptable": "Tequila, lime",
        "red_flag": "Leaves out tequila"
      },
      "knowledge_service": {
        "question": "If a guest is overly intoxicated, how do you handle it?",
        "ideal": "Cut them off, offer water",
        "acceptable": "Stop serving",
        "red_flag": "Keep serving"
      }
    }
  }
}`

type stubTranscriber struct {
	transcripts map[string]string
	calls       int
}

func (s *stubTranscriber) TranscribeAll(_ context.Context, _ *entity.Session) map[string]string {
	s.calls++
	return s.transcripts
}

type stubEvaluator struct {
	output string
	err    error
	calls  int
	prompt string
}

func (s *stubEvaluator) Evaluate(_ context.Context, prompt string) (string, error) {
	s.calls++
	s.prompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.output, nil
}

func stubAnalysis(t *testing.T, scores map[string]entity.QuestionScore) string {
	t.Helper()
	data, err := json.Marshal(entity.ModelAnalysis{
		QuestionScores: scores,
		Overall: entity.OverallAssessment{
			Recommendation: entity.RecommendationPass,
			Reasoning:      "Model reasoning",
		},
		Summary: &entity.ResultSummary{Strengths: []string{"clear communication"}},
	})
	if err != nil {
		t.Fatalf("marshal stub analysis: %v", err)
	}
	return string(data)
}

func newFixture(t *testing.T, transcripts map[string]string, modelOutput string) (*Usecase, *repository.MemoryStore, *stubEvaluator) {
	t.Helper()

	cat, err := catalog.Parse([]byte(testRoles))
	if err != nil {
		t.Fatalf("parse catalog: %v", err)
	}

	store := repository.NewMemoryStore()
	sessions := repository.NewSessionStore(store)

	completedAt := time.Now().UTC()
	session := &entity.Session{
		AssessmentID:     "bartender_20260301_100000_1234",
		Role:             "bartender",
		QuestionSequence: []string{"intro", "experience_1", "knowledge_margarita", "knowledge_service", "goodbye"},
		CurrentIndex:     5,
		Status:           entity.SessionStatusCompleted,
		Responses: map[string]entity.Response{
			"experience_1":       {RecordingRef: "https://rec/1"},
			"knowledge_margarita": {RecordingRef: "https://rec/2"},
			"knowledge_service":   {RecordingRef: "https://rec/3"},
		},
		CreatedAt:   completedAt.Add(-10 * time.Minute),
		CompletedAt: &completedAt,
	}
	if err := sessions.Save(context.Background(), session); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	evaluator := &stubEvaluator{output: modelOutput}
	uc := NewUsecase(
		cat,
		sessions,
		repository.NewResultStore(store),
		repository.NewIndexStore(store),
		&stubTranscriber{transcripts: transcripts},
		evaluator,
	)
	return uc, store, evaluator
}

func TestProcessHappyPath(t *testing.T) {
	transcripts := map[string]string{
		"experience_1":       "Three years at a hotel bar",
		"knowledge_margarita": "Tequila, triple sec, lime juice",
		"knowledge_service":   "Stop serving and offer water",
	}
	output := stubAnalysis(t, map[string]entity.QuestionScore{
		"experience_1":       {Score: 8, Level: entity.LevelAcceptable, Reasoning: "Credible"},
		"knowledge_margarita": {Score: 10, Level: entity.LevelIdeal, Reasoning: "Complete"},
		"knowledge_service":   {Score: 9, Level: entity.LevelIdeal, Reasoning: "Responsible"},
	})

	uc, store, evaluator := newFixture(t, transcripts, output)

	result, err := uc.Process(context.Background(), "bartender_20260301_100000_1234")
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	if result.Recommendation != entity.RecommendationPass {
		t.Fatalf("expected PASS, got %s", result.Recommendation)
	}
	if got := result.CategoryScores["knowledge"].Percentage; got != 100 {
		t.Fatalf("expected knowledge at 100%%, got %v", got)
	}
	if evaluator.calls != 1 {
		t.Fatalf("expected one model call, got %d", evaluator.calls)
	}
	if !strings.Contains(evaluator.prompt, "Question ID: knowledge_margarita") {
		t.Fatalf("prompt missing question id:\n%s", evaluator.prompt)
	}

	// Result object persisted, index projected.
	saved, err := repository.NewResultStore(store).Get(context.Background(), "bartender_20260301_100000_1234")
	if err != nil {
		t.Fatalf("load saved result: %v", err)
	}
	if saved.Recommendation != entity.RecommendationPass {
		t.Fatalf("persisted result differs: %s", saved.Recommendation)
	}

	index, err := repository.NewIndexStore(store).Get(context.Background())
	if err != nil || index.TotalCount != 1 {
		t.Fatalf("expected one index entry, got %+v err=%v", index, err)
	}
	entry := index.Assessments[0]
	if entry.Date != "20260301" || entry.Time != "100000" {
		t.Fatalf("expected date/time parsed from id, got %+v", entry)
	}
	if entry.Status != string(entity.RecommendationPass) {
		t.Fatalf("unexpected index status: %s", entry.Status)
	}
}

func TestProcessOneWeakCategoryIsReview(t *testing.T) {
	transcripts := map[string]string{
		"experience_1":       "Three years at a hotel bar",
		"knowledge_margarita": "Just pour tequila I guess",
		"knowledge_service":   "Stop serving and offer water",
	}
	output := stubAnalysis(t, map[string]entity.QuestionScore{
		"experience_1":       {Score: 8, Level: entity.LevelAcceptable},
		"knowledge_margarita": {Score: 4, Level: entity.LevelRedFlag},
		"knowledge_service":   {Score: 9, Level: entity.LevelIdeal},
	})

	uc, _, _ := newFixture(t, transcripts, output)

	result, err := uc.Process(context.Background(), "bartender_20260301_100000_1234")
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if result.Recommendation != entity.RecommendationReview {
		t.Fatalf("expected REVIEW, got %s", result.Recommendation)
	}
}

func TestProcessClampsSilenceAndAttempts(t *testing.T) {
	transcripts := map[string]string{
		"experience_1":       "",
		"knowledge_margarita": transcribe.FailedSentinel,
		"knowledge_service":   "I don't know",
	}
	// The model wrongly scores the attempted answer as no_response and
	// invents a score for a silent one.
	output := stubAnalysis(t, map[string]entity.QuestionScore{
		"experience_1":       {Score: 7, Level: entity.LevelAcceptable},
		"knowledge_margarita": {Score: 5, Level: entity.LevelAcceptable},
		"knowledge_service":   {Score: 0, Level: entity.LevelNoResponse},
	})

	uc, _, _ := newFixture(t, transcripts, output)

	result, err := uc.Process(context.Background(), "bartender_20260301_100000_1234")
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	if qs := result.QuestionScores["experience_1"]; qs.Level != entity.LevelNoResponse || qs.Score != 0 {
		t.Fatalf("empty transcript must clamp to no_response, got %+v", qs)
	}
	if qs := result.QuestionScores["knowledge_margarita"]; qs.Level != entity.LevelNoResponse || qs.Score != 0 {
		t.Fatalf("failed transcript must clamp to no_response, got %+v", qs)
	}
	if qs := result.QuestionScores["knowledge_service"]; qs.Level != entity.LevelRedFlag || qs.Score != 3 {
		t.Fatalf("attempted answer must clamp up to red_flag, got %+v", qs)
	}
	if result.Recommendation != entity.RecommendationFail {
		t.Fatalf("expected FAIL, got %s", result.Recommendation)
	}
}

func TestProcessUnparseableOutputDegradesToReview(t *testing.T) {
	transcripts := map[string]string{"experience_1": "Some answer"}

	uc, store, _ := newFixture(t, transcripts, "I cannot produce JSON today, sorry.")

	result, err := uc.Process(context.Background(), "bartender_20260301_100000_1234")
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if result.Recommendation != entity.RecommendationReview {
		t.Fatalf("expected degraded REVIEW, got %s", result.Recommendation)
	}
	if result.RawAnalysis == "" {
		t.Fatal("expected raw output preserved for review")
	}

	// Even the degraded result must be persisted.
	if _, err := repository.NewResultStore(store).Get(context.Background(), "bartender_20260301_100000_1234"); err != nil {
		t.Fatalf("expected persisted degraded result: %v", err)
	}
}

func TestProcessReprocessingOverwritesResult(t *testing.T) {
	transcripts := map[string]string{
		"experience_1":       "Three years at a hotel bar",
		"knowledge_margarita": "Tequila, triple sec, lime juice",
		"knowledge_service":   "Stop serving and offer water",
	}
	output := stubAnalysis(t, map[string]entity.QuestionScore{
		"experience_1":       {Score: 8, Level: entity.LevelAcceptable},
		"knowledge_margarita": {Score: 10, Level: entity.LevelIdeal},
		"knowledge_service":   {Score: 9, Level: entity.LevelIdeal},
	})

	uc, store, _ := newFixture(t, transcripts, output)

	for i := 0; i < 2; i++ {
		if _, err := uc.Process(context.Background(), "bartender_20260301_100000_1234"); err != nil {
			t.Fatalf("process run %d: %v", i, err)
		}
	}

	index, err := repository.NewIndexStore(store).Get(context.Background())
	if err != nil {
		t.Fatalf("get index: %v", err)
	}
	if index.TotalCount != 1 {
		t.Fatalf("reprocessing must upsert, got %d entries", index.TotalCount)
	}
}

func TestProcessRejectsUnfinishedSession(t *testing.T) {
	uc, store, _ := newFixture(t, map[string]string{}, "{}")

	sessions := repository.NewSessionStore(store)
	session, err := sessions.Get(context.Background(), "bartender_20260301_100000_1234")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	session.Status = entity.SessionStatusInProgress
	if err := sessions.Save(context.Background(), session); err != nil {
		t.Fatalf("save session: %v", err)
	}

	_, err = uc.Process(context.Background(), "bartender_20260301_100000_1234")
	if !errors.Is(err, entity.ErrSessionNotCompleted) {
		t.Fatalf("expected ErrSessionNotCompleted, got %v", err)
	}
}
