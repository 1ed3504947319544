package entity

import "time"

type SessionStatus string

// Session status values for a phone assessment. There is no failed state:
// a broken call degrades to a spoken apology and the session stays wherever
// it got to until the sweeper expires it.
const (
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusExpired    SessionStatus = "expired"
)

// Session is the mutable progress record of one phone assessment.
// It is owned by the call-flow; the scoring pipeline only reads it
// after the status becomes completed.
type Session struct {
	AssessmentID     string              `json:"assessment_id"`
	Role             string              `json:"role"`
	QuestionSequence []string            `json:"question_sequence"`
	CurrentIndex     int                 `json:"current_question_index"`
	Status           SessionStatus       `json:"status"`
	Responses        map[string]Response `json:"responses"`
	CreatedAt        time.Time           `json:"created_at"`
	CompletedAt      *time.Time          `json:"completed_at,omitempty"`
}

// CurrentQuestion returns the question id at the current index,
// or "" when the sequence is exhausted.
func (s *Session) CurrentQuestion() string {
	if s.CurrentIndex < len(s.QuestionSequence) {
		return s.QuestionSequence[s.CurrentIndex]
	}
	return ""
}

// Advance moves the session to the next question. CurrentIndex only ever grows.
func (s *Session) Advance() {
	s.CurrentIndex++
}

// Response references one archived answer recording for one question.
// Immutable once the session has advanced past the question.
type Response struct {
	RecordingRef string    `json:"recording_ref"`
	RecordedAt   time.Time `json:"recorded_at"`
}

type Recommendation string

const (
	RecommendationPass   Recommendation = "PASS"
	RecommendationReview Recommendation = "REVIEW"
	RecommendationFail   Recommendation = "FAIL"
)

type ScoreLevel string

const (
	LevelIdeal      ScoreLevel = "ideal"
	LevelAcceptable ScoreLevel = "acceptable"
	LevelRedFlag    ScoreLevel = "red_flag"
	LevelNoResponse ScoreLevel = "no_response"
)

// QuestionScore is the model's verdict for a single answer on the 0-10 scale.
type QuestionScore struct {
	Score     int        `json:"score"`
	Level     ScoreLevel `json:"level"`
	Reasoning string     `json:"reasoning"`
}

// CategoryScore aggregates the question scores of one scoring category.
type CategoryScore struct {
	AverageScore float64  `json:"average_score"`
	Percentage   float64  `json:"percentage"`
	QuestionIDs  []string `json:"question_ids"`
}

// ResultSummary carries the model's free-form strengths/concerns lists.
type ResultSummary struct {
	Strengths           []string `json:"strengths,omitempty"`
	AreasForImprovement []string `json:"areas_for_improvement,omitempty"`
}

// AssessmentResult is the authoritative scoring outcome for one assessment.
// It is written wholesale; reprocessing overwrites it entirely.
type AssessmentResult struct {
	AssessmentID   string                   `json:"assessment_id"`
	Role           string                   `json:"role"`
	Transcripts    map[string]string        `json:"transcripts"`
	QuestionScores map[string]QuestionScore `json:"question_scores"`
	CategoryScores map[string]CategoryScore `json:"category_scores"`
	Recommendation Recommendation           `json:"overall_recommendation"`
	Reasoning      string                   `json:"reasoning"`
	Summary        *ResultSummary           `json:"summary,omitempty"`
	RawAnalysis    string                   `json:"raw_analysis,omitempty"`
	AnalyzedAt     time.Time                `json:"analyzed_at"`
}

// IndexEntry is the denormalized listing projection of one result.
type IndexEntry struct {
	ID         string    `json:"id"`
	Role       string    `json:"role"`
	Date       string    `json:"date"`
	Time       string    `json:"time"`
	Status     string    `json:"status"`
	AnalyzedAt time.Time `json:"analyzed_at"`
	FilePath   string    `json:"file_path"`
}

// AssessmentIndex is the single shared listing document. Best-effort
// projection only; per-assessment results remain the source of truth.
type AssessmentIndex struct {
	Assessments []IndexEntry `json:"assessments"`
	LastUpdated *time.Time   `json:"last_updated"`
	TotalCount  int          `json:"total_count"`
}
