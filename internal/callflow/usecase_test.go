package callflow

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gravywork/assessment-backend/internal/catalog"
	"github.com/gravywork/assessment-backend/internal/config"
	"github.com/gravywork/assessment-backend/internal/entity"
	"github.com/gravywork/assessment-backend/internal/repository"
)

const testRoles = `{
  "bartender": {
    "name": "Bartender",
    "questions_sequence": ["intro", "experience_1", "knowledge_margarita", "goodbye"],
    "scoring_categories": {
      "experience": {"name": "Experience", "questions": ["experience_1"]},
      "knowledge": {"name": "Knowledge", "questions": ["knowledge_margarita"]}
    },
    "questions": {
      "knowledge_margarita": {
        "question": "What are the basic ingredients in a Margarita?",
        "ideal": "Tequila, triple sec, lime",
        "acceptable": "Tequila, lime",
        "red_flag": "Leaves out tequila"
      }
    }
  }
}`

type fakeTelephony struct {
	calls      int
	lastTo     string
	lastURL    string
}

func (f *fakeTelephony) CreateCall(_ context.Context, toNumber, webhookURL string) (*entity.TelephonyCall, error) {
	f.calls++
	f.lastTo = toNumber
	f.lastURL = webhookURL
	return &entity.TelephonyCall{SID: "CA123", Status: "queued"}, nil
}

func testCallFlowConfig() config.CallFlowConfig {
	return config.CallFlowConfig{
		RecordTimeoutSeconds:  5,
		MaxRecordingSeconds:   120,
		RetryRecordingSeconds: 120,
		FinishKeys:            "#*",
		RepeatDigit:           "*",
		ReplayWindow:          time.Minute,
	}
}

func newTestUsecase(t *testing.T) (*Usecase, *repository.SessionStore, *fakeTelephony) {
	t.Helper()

	cat, err := catalog.Parse([]byte(testRoles))
	if err != nil {
		t.Fatalf("parse catalog: %v", err)
	}

	store := repository.NewMemoryStore()
	sessions := repository.NewSessionStore(store)
	telephony := &fakeTelephony{}

	uc := NewUsecase(
		cat,
		sessions,
		repository.NewResponseArchive(store),
		telephony,
		testCallFlowConfig(),
		"https://api.example.com",
		"https://media.example.com",
	)
	return uc, sessions, telephony
}

func startSession(t *testing.T, uc *Usecase) string {
	t.Helper()
	resp, err := uc.Initiate(context.Background(), &entity.InitiateRequest{
		WorkerPhone: "+15551234567",
		Role:        "bartender",
	})
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	return resp.AssessmentID
}

func TestInitiateCreatesSessionAndCall(t *testing.T) {
	uc, sessions, telephony := newTestUsecase(t)

	resp, err := uc.Initiate(context.Background(), &entity.InitiateRequest{
		WorkerPhone: "+15551234567",
		Role:        "bartender",
	})
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}

	if !strings.HasPrefix(resp.AssessmentID, "bartender_") || !strings.HasSuffix(resp.AssessmentID, "_4567") {
		t.Fatalf("unexpected assessment id: %s", resp.AssessmentID)
	}
	if resp.CallSID != "CA123" {
		t.Fatalf("unexpected call sid: %s", resp.CallSID)
	}
	if telephony.calls != 1 || telephony.lastTo != "+15551234567" {
		t.Fatalf("unexpected telephony call: %+v", telephony)
	}
	if !strings.Contains(telephony.lastURL, "assessment_id="+resp.AssessmentID) {
		t.Fatalf("webhook URL missing assessment id: %s", telephony.lastURL)
	}

	session, err := sessions.Get(context.Background(), resp.AssessmentID)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if session.Status != entity.SessionStatusInProgress || session.CurrentQuestion() != "intro" {
		t.Fatalf("unexpected session: %+v", session)
	}
}

func TestInitiateUnknownRole(t *testing.T) {
	uc, _, _ := newTestUsecase(t)

	_, err := uc.Initiate(context.Background(), &entity.InitiateRequest{
		WorkerPhone: "+15551234567",
		Role:        "astronaut",
	})
	if err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestAnswerChainsIntroAndFirstQuestion(t *testing.T) {
	uc, sessions, _ := newTestUsecase(t)
	id := startSession(t, uc)

	turn, err := uc.Answer(context.Background(), id)
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if turn.Completed {
		t.Fatal("intro turn must not complete the call")
	}

	doc := string(turn.Markup)
	for _, want := range []string{
		"bartender/intro.mp3",
		"bartender/experience_1.mp3",
		"audio/instructions.mp3",
		"question=experience_1",
	} {
		if !strings.Contains(doc, want) {
			t.Fatalf("intro markup missing %q:\n%s", want, doc)
		}
	}

	// The intro is presentation only; the session now sits on question 1.
	session, err := sessions.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if session.CurrentQuestion() != "experience_1" {
		t.Fatalf("expected advance past intro, at %q", session.CurrentQuestion())
	}
}

func TestHandleRecordingSavesAndAdvances(t *testing.T) {
	uc, sessions, _ := newTestUsecase(t)
	id := startSession(t, uc)
	if _, err := uc.Answer(context.Background(), id); err != nil {
		t.Fatalf("answer: %v", err)
	}

	turn, err := uc.HandleRecording(context.Background(), id, "experience_1", &entity.RecordingCallback{
		RecordingURL:      "https://provider.example.com/rec/1",
		RecordingDuration: 42,
	})
	if err != nil {
		t.Fatalf("handle recording: %v", err)
	}
	if !strings.Contains(string(turn.Markup), "bartender/knowledge_margarita.mp3") {
		t.Fatalf("expected next question markup:\n%s", turn.Markup)
	}

	session, err := sessions.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if session.CurrentQuestion() != "knowledge_margarita" {
		t.Fatalf("expected advance, at %q", session.CurrentQuestion())
	}
	if session.Responses["experience_1"].RecordingRef != "https://provider.example.com/rec/1" {
		t.Fatalf("response not saved: %+v", session.Responses)
	}
}

func TestHandleRecordingRepeatDigitDoesNotAdvance(t *testing.T) {
	uc, sessions, _ := newTestUsecase(t)
	id := startSession(t, uc)
	if _, err := uc.Answer(context.Background(), id); err != nil {
		t.Fatalf("answer: %v", err)
	}

	turn, err := uc.HandleRecording(context.Background(), id, "experience_1", &entity.RecordingCallback{
		Digits:            "*",
		RecordingURL:      "https://provider.example.com/rec/ignored",
		RecordingDuration: 3,
	})
	if err != nil {
		t.Fatalf("handle recording: %v", err)
	}
	if !strings.Contains(string(turn.Markup), "bartender/experience_1.mp3") {
		t.Fatalf("expected same question replayed:\n%s", turn.Markup)
	}

	session, _ := sessions.Get(context.Background(), id)
	if session.CurrentQuestion() != "experience_1" {
		t.Fatalf("repeat must not advance, at %q", session.CurrentQuestion())
	}
	if len(session.Responses) != 0 {
		t.Fatalf("repeat must not save a response: %+v", session.Responses)
	}
}

func TestHandleRecordingSilenceReprompts(t *testing.T) {
	uc, sessions, _ := newTestUsecase(t)
	id := startSession(t, uc)
	if _, err := uc.Answer(context.Background(), id); err != nil {
		t.Fatalf("answer: %v", err)
	}

	turn, err := uc.HandleRecording(context.Background(), id, "experience_1", &entity.RecordingCallback{
		RecordingURL:      "https://provider.example.com/rec/silent",
		RecordingDuration: 5,
	})
	if err != nil {
		t.Fatalf("handle recording: %v", err)
	}

	doc := string(turn.Markup)
	if !strings.Contains(doc, "audio/instructions.mp3") {
		t.Fatalf("expected instructions re-prompt:\n%s", doc)
	}
	if !strings.Contains(doc, `timeout="120"`) {
		t.Fatalf("expected long recording window:\n%s", doc)
	}

	session, _ := sessions.Get(context.Background(), id)
	if session.CurrentQuestion() != "experience_1" {
		t.Fatalf("silence must not advance, at %q", session.CurrentQuestion())
	}
	if len(session.Responses) != 0 {
		t.Fatalf("silence must not save a response: %+v", session.Responses)
	}
}

func TestHandleRecordingStaleQuestionDoesNotRewind(t *testing.T) {
	uc, sessions, _ := newTestUsecase(t)
	id := startSession(t, uc)
	if _, err := uc.Answer(context.Background(), id); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if _, err := uc.HandleRecording(context.Background(), id, "experience_1", &entity.RecordingCallback{
		RecordingURL:      "https://provider.example.com/rec/1",
		RecordingDuration: 42,
	}); err != nil {
		t.Fatalf("first recording: %v", err)
	}

	// A late duplicate for the already-answered question arrives with a
	// different recording reference.
	turn, err := uc.HandleRecording(context.Background(), id, "experience_1", &entity.RecordingCallback{
		RecordingURL:      "https://provider.example.com/rec/1-retry",
		RecordingDuration: 42,
	})
	if err != nil {
		t.Fatalf("stale recording: %v", err)
	}
	if !strings.Contains(string(turn.Markup), "bartender/knowledge_margarita.mp3") {
		t.Fatalf("expected current question markup:\n%s", turn.Markup)
	}

	session, _ := sessions.Get(context.Background(), id)
	if session.CurrentQuestion() != "knowledge_margarita" {
		t.Fatalf("stale callback must not move the session, at %q", session.CurrentQuestion())
	}
	if session.Responses["experience_1"].RecordingRef != "https://provider.example.com/rec/1" {
		t.Fatalf("stale callback must not overwrite the answer: %+v", session.Responses)
	}
}

func TestHandleRecordingDuplicateDeliveryReplaysMarkup(t *testing.T) {
	uc, _, _ := newTestUsecase(t)
	id := startSession(t, uc)
	if _, err := uc.Answer(context.Background(), id); err != nil {
		t.Fatalf("answer: %v", err)
	}

	cb := &entity.RecordingCallback{
		RecordingURL:      "https://provider.example.com/rec/1",
		RecordingDuration: 42,
	}
	first, err := uc.HandleRecording(context.Background(), id, "experience_1", cb)
	if err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	second, err := uc.HandleRecording(context.Background(), id, "experience_1", cb)
	if err != nil {
		t.Fatalf("second delivery: %v", err)
	}

	if !bytes.Equal(first.Markup, second.Markup) {
		t.Fatal("duplicate delivery must replay the identical markup")
	}
}

func TestCompletionAfterLastQuestion(t *testing.T) {
	uc, sessions, _ := newTestUsecase(t)
	id := startSession(t, uc)
	if _, err := uc.Answer(context.Background(), id); err != nil {
		t.Fatalf("answer: %v", err)
	}

	for _, q := range []string{"experience_1", "knowledge_margarita"} {
		turn, err := uc.HandleRecording(context.Background(), id, q, &entity.RecordingCallback{
			RecordingURL:      "https://provider.example.com/rec/" + q,
			RecordingDuration: 42,
		})
		if err != nil {
			t.Fatalf("recording %s: %v", q, err)
		}
		if q == "knowledge_margarita" {
			if !turn.Completed {
				t.Fatal("expected completion after last question")
			}
			if !strings.Contains(string(turn.Markup), "bartender/goodbye.mp3") {
				t.Fatalf("expected goodbye markup:\n%s", turn.Markup)
			}
		}
	}

	session, err := sessions.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if session.Status != entity.SessionStatusCompleted || session.CompletedAt == nil {
		t.Fatalf("expected completed session: %+v", session)
	}

	// Completion is idempotent.
	completedAt := *session.CompletedAt
	turn, err := uc.Answer(context.Background(), id)
	if err != nil {
		t.Fatalf("answer after completion: %v", err)
	}
	if !turn.Completed {
		t.Fatal("expected completion turn")
	}
	session, _ = sessions.Get(context.Background(), id)
	if !session.CompletedAt.Equal(completedAt) {
		t.Fatal("completion timestamp must not move")
	}
}

func TestHandleGatherRepeats(t *testing.T) {
	uc, _, _ := newTestUsecase(t)
	id := startSession(t, uc)
	if _, err := uc.Answer(context.Background(), id); err != nil {
		t.Fatalf("answer: %v", err)
	}

	turn, err := uc.HandleGather(context.Background(), id, "experience_1", "*")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if !strings.Contains(string(turn.Markup), "bartender/experience_1.mp3") {
		t.Fatalf("expected question replay:\n%s", turn.Markup)
	}

	// Any other key just reopens the recording window.
	turn, err = uc.HandleGather(context.Background(), id, "experience_1", "5")
	if err != nil {
		t.Fatalf("gather other key: %v", err)
	}
	if !strings.Contains(string(turn.Markup), "question=experience_1") {
		t.Fatalf("expected recording window:\n%s", turn.Markup)
	}
}
