package scoring

import (
	"testing"

	"github.com/gravywork/assessment-backend/internal/entity"
)

const analysisJSON = `{
  "question_scores": {
    "knowledge_margarita": {"score": 9, "level": "ideal", "reasoning": "All ingredients named"}
  },
  "category_scores": {
    "knowledge": {"average_score": 9.0, "percentage": 90.0, "questions": ["knowledge_margarita"]}
  },
  "overall_assessment": {
    "recommendation": "PASS",
    "reasoning": "Strong knowledge across the board",
    "categories_above_70_percent": 3
  }
}`

func TestParseAnalysisRawJSON(t *testing.T) {
	analysis, err := ParseAnalysis(analysisJSON)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if analysis.QuestionScores["knowledge_margarita"].Score != 9 {
		t.Fatalf("unexpected score: %+v", analysis.QuestionScores)
	}
	if analysis.Overall.Recommendation != entity.RecommendationPass {
		t.Fatalf("unexpected recommendation: %s", analysis.Overall.Recommendation)
	}
}

func TestParseAnalysisMarkdownFenced(t *testing.T) {
	wrapped := "Here is the evaluation:\n```json\n" + analysisJSON + "\n```\nLet me know if you need anything else."

	analysis, err := ParseAnalysis(wrapped)
	if err != nil {
		t.Fatalf("parse fenced: %v", err)
	}
	if analysis.QuestionScores["knowledge_margarita"].Level != entity.LevelIdeal {
		t.Fatalf("unexpected level: %+v", analysis.QuestionScores)
	}
}

func TestParseAnalysisBareFence(t *testing.T) {
	wrapped := "```\n" + analysisJSON + "\n```"

	if _, err := ParseAnalysis(wrapped); err != nil {
		t.Fatalf("parse bare fence: %v", err)
	}
}

func TestParseAnalysisSurroundingProse(t *testing.T) {
	wrapped := "Sure! " + analysisJSON + " Hope this helps."

	if _, err := ParseAnalysis(wrapped); err != nil {
		t.Fatalf("parse with prose: %v", err)
	}
}

func TestParseAnalysisRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "not json at all", `{"question_scores": {}}`} {
		if _, err := ParseAnalysis(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}
