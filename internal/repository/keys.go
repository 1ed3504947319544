package repository

import "fmt"

// Object key layout. Everything about one assessment lives under a single
// assessments/{id}/ prefix; scoring results and the listing index are global.
const indexKey = "assessments_index.json"

func sessionKey(assessmentID string) string {
	return fmt.Sprintf("assessments/%s/state.json", assessmentID)
}

func responseKey(assessmentID, questionID string) string {
	return fmt.Sprintf("assessments/%s/responses/%s", assessmentID, questionID)
}

func recordingKey(assessmentID, questionID string) string {
	return fmt.Sprintf("assessments/%s/recordings/%s.mp3", assessmentID, questionID)
}

func transcriptKey(assessmentID, questionID string) string {
	return fmt.Sprintf("assessments/%s/transcripts/%s", assessmentID, questionID)
}

func resultKey(assessmentID string) string {
	return fmt.Sprintf("assessments/%s/analysis_results.json", assessmentID)
}
