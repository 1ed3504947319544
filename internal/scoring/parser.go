package scoring

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/gravywork/assessment-backend/internal/entity"
)

var fencedJSONPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*\\})\\s*```")

// ParseAnalysis decodes the model's output into the analysis schema.
// Models wrap JSON in markdown fences despite instructions, so the parser
// tolerates that and falls back to the outermost brace pair.
func ParseAnalysis(raw string) (*entity.ModelAnalysis, error) {
	candidate := strings.TrimSpace(raw)

	if analysis, err := decodeAnalysis(candidate); err == nil {
		return analysis, nil
	}

	if match := fencedJSONPattern.FindStringSubmatch(candidate); match != nil {
		if analysis, err := decodeAnalysis(match[1]); err == nil {
			return analysis, nil
		}
	}

	start := strings.Index(candidate, "{")
	end := strings.LastIndex(candidate, "}")
	if start >= 0 && end > start {
		if analysis, err := decodeAnalysis(candidate[start : end+1]); err == nil {
			return analysis, nil
		}
	}

	return nil, fmt.Errorf("model output is not parseable analysis JSON")
}

func decodeAnalysis(candidate string) (*entity.ModelAnalysis, error) {
	var analysis entity.ModelAnalysis
	if err := json.Unmarshal([]byte(candidate), &analysis); err != nil {
		return nil, err
	}
	if len(analysis.QuestionScores) == 0 {
		return nil, fmt.Errorf("analysis carries no question scores")
	}
	return &analysis, nil
}
