// Package transcribe turns archived call recordings into transcripts via
// the asynchronous speech provider, reusing finished work across reruns.
package transcribe

import (
	"context"
	"errors"
	"fmt"

	"github.com/avast/retry-go/v4"
	"github.com/gravywork/assessment-backend/internal/config"
	"github.com/gravywork/assessment-backend/internal/entity"
	"github.com/gravywork/assessment-backend/internal/integration/speech"
	"github.com/gravywork/assessment-backend/internal/repository"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// FailedSentinel marks an answer whose transcription never produced text.
// The scorer treats it the same as silence.
const FailedSentinel = "[TRANSCRIPTION_FAILED]"

type SpeechProvider interface {
	SubmitJob(ctx context.Context, req entity.SpeechJobRequest) (*entity.SpeechJob, error)
	GetJob(ctx context.Context, jobName string) (*entity.SpeechJob, error)
}

type RecordingFetcher interface {
	FetchRecording(ctx context.Context, recordingURL string) ([]byte, error)
}

// JobName derives the deterministic provider job name for one answer.
// Reprocessing the same assessment resolves to the same job.
func JobName(assessmentID, questionID string) string {
	return fmt.Sprintf("assessment-%s-%s", assessmentID, questionID)
}

type Coordinator struct {
	speech      SpeechProvider
	telephony   RecordingFetcher
	archive     *repository.ResponseArchive
	transcripts *repository.TranscriptStore
	cfg         config.SpeechConnectorConfig
}

func NewCoordinator(
	speechProvider SpeechProvider,
	telephony RecordingFetcher,
	archive *repository.ResponseArchive,
	transcripts *repository.TranscriptStore,
	cfg config.SpeechConnectorConfig,
) *Coordinator {
	return &Coordinator{
		speech:      speechProvider,
		telephony:   telephony,
		archive:     archive,
		transcripts: transcripts,
		cfg:         cfg,
	}
}

// TranscribeAll produces a transcript per answered question, in sequence
// order. A failed question degrades to the sentinel instead of failing the
// whole assessment.
func (c *Coordinator) TranscribeAll(ctx context.Context, session *entity.Session) map[string]string {
	transcripts := make(map[string]string, len(session.Responses))

	for _, questionID := range session.QuestionSequence {
		resp, ok := session.Responses[questionID]
		if !ok {
			continue
		}

		text, err := c.transcribeOne(ctx, session.AssessmentID, questionID, resp)
		if err != nil {
			ctxzap.Warn(ctx, "transcription failed, degrading to sentinel",
				zap.String("question_id", questionID),
				zap.Error(err),
			)
			text = FailedSentinel
		}
		transcripts[questionID] = text
	}

	return transcripts
}

func (c *Coordinator) transcribeOne(ctx context.Context, assessmentID, questionID string, resp entity.Response) (string, error) {
	if text, ok, err := c.transcripts.Get(ctx, assessmentID, questionID); err != nil {
		return "", fmt.Errorf("read transcript cache: %w", err)
	} else if ok {
		return text, nil
	}

	jobName := JobName(assessmentID, questionID)

	// A previous run may have left a job behind. Reuse it before paying
	// for a download and resubmission.
	job, err := c.speech.GetJob(ctx, jobName)
	switch {
	case err == nil && job.Status == entity.SpeechJobCompleted:
		return c.finish(ctx, assessmentID, questionID, job.Transcript)
	case err == nil && job.Status == entity.SpeechJobFailed:
		return "", fmt.Errorf("transcription job %s failed: %s", jobName, job.FailureReason)
	case err == nil:
		return c.poll(ctx, assessmentID, questionID, jobName)
	case !errors.Is(err, speech.ErrJobNotFound):
		return "", err
	}

	audio, err := c.telephony.FetchRecording(ctx, resp.RecordingRef)
	if err != nil {
		return "", err
	}

	mediaRef, err := c.archive.SaveRecording(ctx, assessmentID, questionID, audio)
	if err != nil {
		return "", fmt.Errorf("archive recording: %w", err)
	}

	_, err = c.speech.SubmitJob(ctx, entity.SpeechJobRequest{
		JobName:      jobName,
		MediaRef:     mediaRef,
		MediaFormat:  "mp3",
		LanguageCode: c.cfg.LanguageCode,
	})
	if err != nil && !errors.Is(err, speech.ErrJobAlreadyExists) {
		return "", err
	}

	return c.poll(ctx, assessmentID, questionID, jobName)
}

// poll waits for the job to finish, bounded by the configured max wait.
func (c *Coordinator) poll(ctx context.Context, assessmentID, questionID, jobName string) (string, error) {
	pollCtx, cancel := context.WithTimeout(ctx, c.cfg.MaxWait)
	defer cancel()

	var transcript string
	err := retry.Do(
		func() error {
			job, err := c.speech.GetJob(pollCtx, jobName)
			if err != nil {
				return err
			}
			switch job.Status {
			case entity.SpeechJobCompleted:
				transcript = job.Transcript
				return nil
			case entity.SpeechJobFailed:
				return retry.Unrecoverable(fmt.Errorf("transcription job %s failed: %s", jobName, job.FailureReason))
			default:
				return fmt.Errorf("transcription job %s still %s", jobName, job.Status)
			}
		},
		retry.Context(pollCtx),
		retry.Attempts(0),
		retry.Delay(c.cfg.PollInterval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return "", err
	}

	return c.finish(ctx, assessmentID, questionID, transcript)
}

func (c *Coordinator) finish(ctx context.Context, assessmentID, questionID, transcript string) (string, error) {
	if err := c.transcripts.Save(ctx, assessmentID, questionID, transcript); err != nil {
		// Cache write failure is not worth failing the transcript for.
		ctxzap.Warn(ctx, "failed to cache transcript",
			zap.String("question_id", questionID),
			zap.Error(err),
		)
	}
	return transcript, nil
}
