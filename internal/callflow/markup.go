package callflow

import (
	"fmt"
	"net/url"

	"github.com/gravywork/assessment-backend/internal/twiml"
)

// Markup builders for each call turn. Every document must leave the callee
// with something to do or end the call; a dead-air response is a defect.

func (u *Usecase) audioURL(role, questionID string) string {
	return fmt.Sprintf("%s/audio/%s/%s.mp3", u.mediaBaseURL, role, questionID)
}

func (u *Usecase) instructionsURL() string {
	return fmt.Sprintf("%s/audio/instructions.mp3", u.mediaBaseURL)
}

func (u *Usecase) recordingAction(assessmentID, role, questionID string, firstAttempt bool) string {
	q := url.Values{}
	q.Set("assessment_id", assessmentID)
	q.Set("role", role)
	q.Set("question", questionID)
	if firstAttempt {
		q.Set("timeout", "true")
	}
	return fmt.Sprintf("%s/webhook/recording?%s", u.publicBaseURL, q.Encode())
}

func (u *Usecase) shortRecord(assessmentID, role, questionID string, firstAttempt bool) twiml.Record {
	return twiml.Record{
		Action:      u.recordingAction(assessmentID, role, questionID, firstAttempt),
		Method:      "POST",
		MaxLength:   u.cfg.MaxRecordingSeconds,
		Timeout:     u.cfg.RecordTimeoutSeconds,
		FinishOnKey: u.cfg.FinishKeys,
	}
}

func (u *Usecase) longRecord(assessmentID, role, questionID string) twiml.Record {
	return twiml.Record{
		Action:      u.recordingAction(assessmentID, role, questionID, false),
		Method:      "POST",
		MaxLength:   u.cfg.MaxRecordingSeconds,
		Timeout:     u.cfg.RetryRecordingSeconds,
		FinishOnKey: u.cfg.FinishKeys,
	}
}

const noResponseFallback = "I didn't receive your response. Please try again."

// questionMarkup plays a question and opens the recording window, with the
// instructions re-prompt chained in as the silence fallback.
func (u *Usecase) questionMarkup(assessmentID, role, questionID string) ([]byte, error) {
	resp := (&twiml.Response{}).Add(
		twiml.Play{URL: u.audioURL(role, questionID)},
		u.shortRecord(assessmentID, role, questionID, false),
		twiml.Say{Voice: sayVoice, Text: noResponseFallback},
		twiml.Hangup{},
	)
	return resp.Encode()
}

// introMarkup plays the intro and the first real question in one document.
// The intro itself never records; the session has already advanced past it.
func (u *Usecase) introMarkup(assessmentID, role, firstQuestion string) ([]byte, error) {
	resp := (&twiml.Response{}).Add(
		twiml.Play{URL: u.audioURL(role, "intro")},
		twiml.Pause{Length: 1},
		twiml.Play{URL: u.audioURL(role, firstQuestion)},
		u.shortRecord(assessmentID, role, firstQuestion, true),
		twiml.Play{URL: u.instructionsURL()},
		u.longRecord(assessmentID, role, firstQuestion),
		twiml.Say{Voice: sayVoice, Text: noResponseFallback},
		twiml.Hangup{},
	)
	return resp.Encode()
}

// repeatMarkup replays the question after a star press, instructions chained.
func (u *Usecase) repeatMarkup(assessmentID, role, questionID string) ([]byte, error) {
	resp := (&twiml.Response{}).Add(
		twiml.Play{URL: u.audioURL(role, questionID)},
		u.shortRecord(assessmentID, role, questionID, true),
		twiml.Play{URL: u.instructionsURL()},
		u.longRecord(assessmentID, role, questionID),
		twiml.Say{Voice: sayVoice, Text: noResponseFallback},
		twiml.Hangup{},
	)
	return resp.Encode()
}

// timeoutMarkup plays the instructions after silence and reopens a long
// recording window for the same question.
func (u *Usecase) timeoutMarkup(assessmentID, role, questionID string) ([]byte, error) {
	resp := (&twiml.Response{}).Add(
		twiml.Play{URL: u.instructionsURL()},
		u.longRecord(assessmentID, role, questionID),
		twiml.Say{Voice: sayVoice, Text: noResponseFallback},
		twiml.Hangup{},
	)
	return resp.Encode()
}

// completionMarkup plays the goodbye and hangs up.
func (u *Usecase) completionMarkup(role string) ([]byte, error) {
	resp := (&twiml.Response{}).Add(
		twiml.Play{URL: u.audioURL(role, "goodbye")},
		twiml.Hangup{},
	)
	return resp.Encode()
}

const sayVoice = "Polly.Joanna"

// ApologyMarkup is the degraded document for broken webhook turns. It must
// never fail, so encoding errors collapse to a static body.
func ApologyMarkup() []byte {
	resp := (&twiml.Response{}).Add(
		twiml.Say{Voice: sayVoice, Text: "Sorry, there was an error. Please try again later."},
		twiml.Hangup{},
	)
	out, err := resp.Encode()
	if err != nil {
		return []byte(`<?xml version="1.0" encoding="UTF-8"?><Response><Hangup/></Response>`)
	}
	return out
}
