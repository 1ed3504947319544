package scoring

import "github.com/gravywork/assessment-backend/internal/entity"

// passThreshold is the category percentage a candidate must reach.
const passThreshold = 70.0

// Recommend applies the threshold rule to recomputed category percentages
// and returns the verdict plus the number of categories at or above the
// threshold. The model's own recommendation is advisory only.
func Recommend(percentages map[string]float64) (entity.Recommendation, int) {
	above := 0
	for _, pct := range percentages {
		if pct >= passThreshold {
			above++
		}
	}

	below := len(percentages) - above
	switch {
	case len(percentages) == 0:
		return entity.RecommendationFail, 0
	case below == 0:
		return entity.RecommendationPass, above
	case below == 1:
		return entity.RecommendationReview, above
	default:
		return entity.RecommendationFail, above
	}
}
