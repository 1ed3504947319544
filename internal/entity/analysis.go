package entity

// ModelAnalysis is the structured schema the evaluation model is instructed
// to return for a whole assessment in one batched request.
type ModelAnalysis struct {
	QuestionScores map[string]QuestionScore      `json:"question_scores"`
	CategoryScores map[string]ModelCategoryScore `json:"category_scores"`
	Overall        OverallAssessment             `json:"overall_assessment"`
	Summary        *ResultSummary                `json:"summary,omitempty"`
}

type ModelCategoryScore struct {
	AverageScore float64  `json:"average_score"`
	Percentage   float64  `json:"percentage"`
	Questions    []string `json:"questions"`
}

type OverallAssessment struct {
	Recommendation    Recommendation `json:"recommendation"`
	Reasoning         string         `json:"reasoning"`
	CategoriesAbove70 int            `json:"categories_above_70_percent"`
}

// SpeechJobStatus mirrors the transcription provider's job lifecycle.
type SpeechJobStatus string

const (
	SpeechJobQueued     SpeechJobStatus = "QUEUED"
	SpeechJobInProgress SpeechJobStatus = "IN_PROGRESS"
	SpeechJobCompleted  SpeechJobStatus = "COMPLETED"
	SpeechJobFailed     SpeechJobStatus = "FAILED"
)

// SpeechJobRequest submits one recording for asynchronous transcription.
// JobName is derived deterministically so reruns reuse finished jobs.
type SpeechJobRequest struct {
	JobName      string `json:"job_name"`
	MediaRef     string `json:"media_ref"`
	MediaFormat  string `json:"media_format"`
	LanguageCode string `json:"language_code"`
}

// SpeechJob is the provider's view of a transcription job.
type SpeechJob struct {
	JobName       string          `json:"job_name"`
	Status        SpeechJobStatus `json:"status"`
	Transcript    string          `json:"transcript,omitempty"`
	FailureReason string          `json:"failure_reason,omitempty"`
}

// TelephonyCall is the provider's response to an outbound call request.
type TelephonyCall struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}
