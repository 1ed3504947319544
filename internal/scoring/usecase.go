package scoring

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gravywork/assessment-backend/internal/catalog"
	"github.com/gravywork/assessment-backend/internal/entity"
	"github.com/gravywork/assessment-backend/internal/repository"
	"github.com/gravywork/assessment-backend/internal/transcribe"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Transcriber interface {
	TranscribeAll(ctx context.Context, session *entity.Session) map[string]string
}

type Evaluator interface {
	Evaluate(ctx context.Context, prompt string) (string, error)
}

// Usecase runs the post-call pipeline: transcribe, evaluate, recompute
// scores, persist the result, refresh the listing index.
type Usecase struct {
	catalog     *catalog.Catalog
	sessions    *repository.SessionStore
	results     *repository.ResultStore
	index       *repository.IndexStore
	transcriber Transcriber
	model       Evaluator
}

func NewUsecase(
	cat *catalog.Catalog,
	sessions *repository.SessionStore,
	results *repository.ResultStore,
	index *repository.IndexStore,
	transcriber Transcriber,
	model Evaluator,
) *Usecase {
	return &Usecase{
		catalog:     cat,
		sessions:    sessions,
		results:     results,
		index:       index,
		transcriber: transcriber,
		model:       model,
	}
}

// Process scores one completed assessment end to end. Reprocessing is safe:
// transcripts are cached and the result object is overwritten wholesale.
func (u *Usecase) Process(ctx context.Context, assessmentID string) (*entity.AssessmentResult, error) {
	session, err := u.sessions.Get(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	if session.Status != entity.SessionStatusCompleted {
		return nil, fmt.Errorf("%w: %s is %s", entity.ErrSessionNotCompleted, assessmentID, session.Status)
	}
	if len(session.Responses) == 0 {
		return nil, fmt.Errorf("%w: %s", entity.ErrNoResponses, assessmentID)
	}

	role, ok := u.catalog.Role(session.Role)
	if !ok {
		return nil, fmt.Errorf("%w: %q", entity.ErrUnknownRole, session.Role)
	}

	transcripts := u.transcriber.TranscribeAll(ctx, session)

	prompt := BuildPrompt(role, transcripts)
	raw, err := u.model.Evaluate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("evaluate assessment: %w", err)
	}

	result := u.buildResult(ctx, role, session, transcripts, raw)

	if err := u.results.Save(ctx, result); err != nil {
		return nil, fmt.Errorf("save result: %w", err)
	}

	// The index is a best-effort projection; a failed update never fails
	// the scoring run.
	if err := u.index.Update(ctx, u.indexEntry(result)); err != nil {
		ctxzap.Warn(ctx, "failed to update assessment index",
			zap.String("assessment_id", assessmentID),
			zap.Error(err),
		)
	}

	ctxzap.Info(ctx, "assessment scored",
		zap.String("assessment_id", assessmentID),
		zap.String("recommendation", string(result.Recommendation)),
	)

	return result, nil
}

// Result returns the persisted scoring outcome for one assessment.
func (u *Usecase) Result(ctx context.Context, assessmentID string) (*entity.AssessmentResult, error) {
	return u.results.Get(ctx, assessmentID)
}

// Index returns the listing projection across all scored assessments.
func (u *Usecase) Index(ctx context.Context) (*entity.AssessmentIndex, error) {
	return u.index.Get(ctx)
}

func (u *Usecase) buildResult(ctx context.Context, role catalog.Role, session *entity.Session, transcripts map[string]string, raw string) *entity.AssessmentResult {
	result := &entity.AssessmentResult{
		AssessmentID: session.AssessmentID,
		Role:         session.Role,
		Transcripts:  transcripts,
		AnalyzedAt:   time.Now().UTC(),
	}

	analysis, err := ParseAnalysis(raw)
	if err != nil {
		// Degraded outcome: keep the raw output for a human to review.
		ctxzap.Warn(ctx, "model output not parseable, flagging for review",
			zap.String("assessment_id", session.AssessmentID),
			zap.Error(err),
		)
		result.Recommendation = entity.RecommendationReview
		result.Reasoning = "Analysis completed but response format needs review"
		result.RawAnalysis = raw
		return result
	}

	result.QuestionScores = clampScores(analysis.QuestionScores, transcripts)
	result.CategoryScores = aggregateCategories(role, result.QuestionScores, transcripts)

	percentages := make(map[string]float64, len(result.CategoryScores))
	for key, cs := range result.CategoryScores {
		percentages[key] = cs.Percentage
	}

	recommendation, _ := Recommend(percentages)
	result.Recommendation = recommendation
	result.Reasoning = analysis.Overall.Reasoning
	result.Summary = analysis.Summary

	return result
}

// clampScores enforces the silence rules regardless of what the model said:
// an empty or failed transcript is always no_response, and any attempted
// answer scores at least red_flag.
func clampScores(scores map[string]entity.QuestionScore, transcripts map[string]string) map[string]entity.QuestionScore {
	clamped := make(map[string]entity.QuestionScore, len(transcripts))

	for questionID, transcript := range transcripts {
		qs, scored := scores[questionID]

		if isSilent(transcript) {
			clamped[questionID] = entity.QuestionScore{
				Score:     pointsNoResponse,
				Level:     entity.LevelNoResponse,
				Reasoning: "No usable answer was recorded",
			}
			continue
		}

		if !scored {
			qs = entity.QuestionScore{Reasoning: "Not scored by the model"}
		}
		if qs.Score < pointsRedFlag {
			qs.Score = pointsRedFlag
		}
		if qs.Level == entity.LevelNoResponse || qs.Level == "" {
			qs.Level = entity.LevelRedFlag
		}
		clamped[questionID] = qs
	}

	return clamped
}

func isSilent(transcript string) bool {
	trimmed := strings.TrimSpace(transcript)
	return trimmed == "" || trimmed == transcribe.FailedSentinel
}

// aggregateCategories recomputes category averages from the clamped
// question scores. Only questions that were actually asked count.
func aggregateCategories(role catalog.Role, scores map[string]entity.QuestionScore, transcripts map[string]string) map[string]entity.CategoryScore {
	categories := make(map[string]entity.CategoryScore, len(role.Categories))

	for _, catKey := range role.CategoryKeys() {
		cat := role.Categories[catKey]

		var sum, count float64
		var questionIDs []string
		for _, questionID := range cat.Questions {
			if _, asked := transcripts[questionID]; !asked {
				continue
			}
			qs, ok := scores[questionID]
			if !ok {
				continue
			}
			sum += float64(qs.Score)
			count++
			questionIDs = append(questionIDs, questionID)
		}

		if count == 0 {
			categories[catKey] = entity.CategoryScore{QuestionIDs: []string{}}
			continue
		}

		avg := sum / count
		categories[catKey] = entity.CategoryScore{
			AverageScore: avg,
			Percentage:   avg * 10,
			QuestionIDs:  questionIDs,
		}
	}

	return categories
}

// indexEntry projects a result into the listing index. Assessment ids carry
// their creation timestamp ({role}_{yyyymmdd}_{hhmmss}_{suffix}); fall back
// to the analysis time when the id does not parse.
func (u *Usecase) indexEntry(result *entity.AssessmentResult) entity.IndexEntry {
	date := result.AnalyzedAt.Format("20060102")
	clock := result.AnalyzedAt.Format("150405")

	if rest, ok := strings.CutPrefix(result.AssessmentID, result.Role+"_"); ok {
		parts := strings.Split(rest, "_")
		if len(parts) >= 2 && len(parts[0]) == 8 && len(parts[1]) == 6 {
			date, clock = parts[0], parts[1]
		}
	}

	return entity.IndexEntry{
		ID:         result.AssessmentID,
		Role:       result.Role,
		Date:       date,
		Time:       clock,
		Status:     string(result.Recommendation),
		AnalyzedAt: result.AnalyzedAt,
		FilePath:   u.results.Key(result.AssessmentID),
	}
}
