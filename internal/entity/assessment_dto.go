package entity

// InitiateRequest asks the service to place an outbound assessment call.
type InitiateRequest struct {
	WorkerPhone string `json:"worker_phone"`
	Role        string `json:"role"`
	WorkerID    string `json:"worker_id,omitempty"`
}

// InitiateResponse reports the allocated assessment and telephony call ids.
type InitiateResponse struct {
	AssessmentID string `json:"assessment_id"`
	CallSID      string `json:"call_sid"`
	WorkerPhone  string `json:"worker_phone"`
	Role         string `json:"role"`
	Status       string `json:"status"`
}

// ProcessRequest triggers (re)scoring of a completed assessment.
type ProcessRequest struct {
	Role string `json:"role"`
}

// RecordingCallback is the form payload the telephony provider posts
// when a recording window closes.
type RecordingCallback struct {
	Digits            string
	RecordingURL      string
	RecordingDuration int
	CallSID           string
}

type ResultFormat string

const (
	FormatJSON     ResultFormat = "json"
	FormatMarkdown ResultFormat = "markdown"
	FormatPDF      ResultFormat = "pdf"
	FormatDOCX     ResultFormat = "docx"
)

func (f ResultFormat) IsValid() bool {
	switch f {
	case FormatJSON, FormatMarkdown, FormatPDF, FormatDOCX:
		return true
	default:
		return false
	}
}

// ErrorResponse is the JSON error envelope of the REST surface.
// Webhook endpoints never use it; they answer with telephony markup.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
