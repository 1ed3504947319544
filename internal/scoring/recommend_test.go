package scoring

import (
	"testing"

	"github.com/gravywork/assessment-backend/internal/entity"
)

func TestRecommendThresholds(t *testing.T) {
	cases := []struct {
		name        string
		percentages map[string]float64
		want        entity.Recommendation
		wantAbove   int
	}{
		{
			name:        "all categories above threshold",
			percentages: map[string]float64{"baseline": 80, "experience": 75, "knowledge": 70},
			want:        entity.RecommendationPass,
			wantAbove:   3,
		},
		{
			name:        "exactly one category below",
			percentages: map[string]float64{"baseline": 80, "experience": 75, "knowledge": 40},
			want:        entity.RecommendationReview,
			wantAbove:   2,
		},
		{
			name:        "two categories below",
			percentages: map[string]float64{"baseline": 80, "experience": 60, "knowledge": 40},
			want:        entity.RecommendationFail,
			wantAbove:   1,
		},
		{
			name:        "all below",
			percentages: map[string]float64{"baseline": 30, "experience": 20, "knowledge": 10},
			want:        entity.RecommendationFail,
			wantAbove:   0,
		},
		{
			name:        "boundary exactly at threshold counts as above",
			percentages: map[string]float64{"baseline": 70, "experience": 70, "knowledge": 70},
			want:        entity.RecommendationPass,
			wantAbove:   3,
		},
		{
			name:        "just under threshold counts as below",
			percentages: map[string]float64{"baseline": 69.9, "experience": 90, "knowledge": 90},
			want:        entity.RecommendationReview,
			wantAbove:   2,
		},
		{
			name:        "no categories",
			percentages: map[string]float64{},
			want:        entity.RecommendationFail,
			wantAbove:   0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, above := Recommend(tc.percentages)
			if got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
			if above != tc.wantAbove {
				t.Fatalf("expected %d categories above, got %d", tc.wantAbove, above)
			}
		})
	}
}
