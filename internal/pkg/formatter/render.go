package formatter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gravywork/assessment-backend/internal/entity"
)

// reportSection is one titled block of the rendered report. The PDF and
// DOCX formatters lay the same sections out with their own typography.
type reportSection struct {
	Title string
	Lines []string
}

func buildSections(result *entity.AssessmentResult) []reportSection {
	sections := []reportSection{
		{
			Title: "Overview",
			Lines: []string{
				fmt.Sprintf("Assessment ID: %s", result.AssessmentID),
				fmt.Sprintf("Role: %s", result.Role),
				fmt.Sprintf("Analyzed at: %s", result.AnalyzedAt.Format("2006-01-02 15:04:05 MST")),
				fmt.Sprintf("Recommendation: %s", result.Recommendation),
			},
		},
	}

	if result.Reasoning != "" {
		sections = append(sections, reportSection{
			Title: "Reasoning",
			Lines: []string{result.Reasoning},
		})
	}

	if len(result.CategoryScores) > 0 {
		lines := make([]string, 0, len(result.CategoryScores))
		for _, key := range sortedKeys(result.CategoryScores) {
			cs := result.CategoryScores[key]
			lines = append(lines, fmt.Sprintf("%s: %.1f/10 (%.0f%%)", key, cs.AverageScore, cs.Percentage))
		}
		sections = append(sections, reportSection{Title: "Category Scores", Lines: lines})
	}

	if len(result.QuestionScores) > 0 {
		lines := make([]string, 0, len(result.QuestionScores)*3)
		for _, id := range sortedKeys(result.QuestionScores) {
			qs := result.QuestionScores[id]
			lines = append(lines, fmt.Sprintf("%s: %d/10 (%s)", id, qs.Score, qs.Level))
			if transcript := result.Transcripts[id]; transcript != "" {
				lines = append(lines, fmt.Sprintf("  Answer: %s", transcript))
			}
			if qs.Reasoning != "" {
				lines = append(lines, fmt.Sprintf("  Notes: %s", qs.Reasoning))
			}
		}
		sections = append(sections, reportSection{Title: "Question Scores", Lines: lines})
	}

	if result.Summary != nil {
		if len(result.Summary.Strengths) > 0 {
			sections = append(sections, reportSection{
				Title: "Strengths",
				Lines: bulleted(result.Summary.Strengths),
			})
		}
		if len(result.Summary.AreasForImprovement) > 0 {
			sections = append(sections, reportSection{
				Title: "Areas for Improvement",
				Lines: bulleted(result.Summary.AreasForImprovement),
			})
		}
	}

	return sections
}

func bulleted(items []string) []string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, "- "+item)
	}
	return lines
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// renderText flattens the report sections into plain text for the
// single-flow formatters.
func renderText(result *entity.AssessmentResult) string {
	var b strings.Builder
	for i, section := range buildSections(result) {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(section.Title)
		b.WriteString("\n")
		for _, line := range section.Lines {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String()
}
