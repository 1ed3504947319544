package scoring

import (
	"fmt"
	"strings"

	"github.com/gravywork/assessment-backend/internal/catalog"
)

// Rubric point anchors on the 0-10 scale.
const (
	pointsIdeal      = 10
	pointsAcceptable = 7
	pointsRedFlag    = 3
	pointsNoResponse = 0
)

// BuildPrompt renders the single batched evaluation prompt: every answered
// question with its rubric, grouped by scoring category, plus the strict
// JSON output contract.
func BuildPrompt(role catalog.Role, transcripts map[string]string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are evaluating a %s skills assessment using a detailed 0-10 scoring system.\n\nSCORING CATEGORIES:\n", role.Name)

	for _, catKey := range role.CategoryKeys() {
		cat := role.Categories[catKey]
		fmt.Fprintf(&b, "\n%s:\n- Questions: %s\n- Description: %s\n", cat.Name, strings.Join(cat.Questions, ", "), cat.Description)
	}

	b.WriteString("\nCANDIDATE RESPONSES:\n")

	var scored []string
	for _, catKey := range role.CategoryKeys() {
		cat := role.Categories[catKey]
		fmt.Fprintf(&b, "\n%s:\n", strings.ToUpper(cat.Name))

		for _, questionID := range cat.Questions {
			transcript, ok := transcripts[questionID]
			if !ok {
				continue
			}
			scored = append(scored, questionID)

			if entry, ok := role.Entry(questionID); ok {
				fmt.Fprintf(&b, `
Question ID: %s
Question: %s
Candidate Response: %q
Scoring Criteria:
- Ideal (%d points): %s
- Acceptable (%d points): %s (Note: Answers are acceptable if they contain the key concepts mentioned, even if worded differently or in different order)
- Red Flag (%d points): %s
- No Response (%d points): No meaningful answer
`,
					questionID, entry.Question, transcript,
					pointsIdeal, entry.Rubric.Ideal,
					pointsAcceptable, entry.Rubric.Acceptable,
					pointsRedFlag, entry.Rubric.RedFlag,
					pointsNoResponse)
			} else {
				// Experience questions carry no rubric; score on credibility.
				fmt.Fprintf(&b, `
Question ID: %s
Question: %s
Candidate Response: %q
Scoring Criteria:
- Ideal (%d points): Detailed, credible experience with specific examples
- Acceptable (%d points): Some relevant experience mentioned
- Red Flag (%d points): Vague, unclear, or irrelevant experience
- No Response (%d points): No meaningful answer provided
`,
					questionID, titleFromID(questionID), transcript,
					pointsIdeal, pointsAcceptable, pointsRedFlag, pointsNoResponse)
			}
		}
	}

	if exp := role.Experience; exp != nil {
		fmt.Fprintf(&b, "\nEXPERIENCE EVALUATION CRITERIA:\nCore Duties (must mention at least %d):\n", exp.MinimumDuties)
		for _, duty := range exp.CoreDuties {
			fmt.Fprintf(&b, "- %s\n", duty)
		}
		fmt.Fprintf(&b, `
Experience Scoring Guidelines:
- Pass (7-10 points): %s
- Review (4-6 points): %s
- Fail (0-3 points): %s
`, exp.Evaluation.Pass, exp.Evaluation.Review, exp.Evaluation.Fail)
	}

	b.WriteString(`
SCORING INSTRUCTIONS:
Provide detailed 0-10 scoring for each question and category averages.

CRITICAL: Respond with ONLY the JSON object below. Do not wrap in markdown code blocks or add any other text. Return the raw JSON structure only:

{
  "question_scores": {
    "question_id": {
      "score": 0,
      "level": "ideal|acceptable|red_flag|no_response",
      "reasoning": "specific explanation for this score"
    }
  },
  "category_scores": {
    "category_key": {
      "average_score": 0.0,
      "percentage": 0.0,
      "questions": ["list of questions in this category"]
    }
  },
  "overall_assessment": {
    "recommendation": "PASS|REVIEW|FAIL",
    "reasoning": "Overall assessment explanation based on 70% threshold rules",
    "categories_above_70_percent": 0
  },
  "summary": {
    "strengths": ["specific strengths identified"],
    "areas_for_improvement": ["specific concerns or gaps"]
  }
}

PASS/REVIEW/FAIL CRITERIA:
- PASS: 70% or higher across ALL categories
- REVIEW: below 70% in exactly ONE category
- FAIL: below 70% in TWO or more categories

EVALUATION GUIDELINES:
- Focus on substance over exact wording
- If the candidate mentions the key concepts, tools or ingredients, consider it acceptable even if phrased differently
- Be flexible with order and minor variations in responses
- Only mark as "red_flag" if the candidate clearly lacks knowledge or gives wrong information
- Mark as "no_response" ONLY if there is literally no answer or a completely unintelligible response
- If there is ANY response (even a bad one), classify it as "red_flag", NOT "no_response"

CRITICAL: MATCH RESPONSES TO CORRECT QUESTION IDS
- Each question has a unique Question ID. You MUST match the candidate's response to the correct Question ID.
- Do NOT mix up responses between different questions.
- Use the Question ID exactly as provided in each section above.

`)
	fmt.Fprintf(&b, "YOU MUST PROVIDE SCORES FOR ALL QUESTIONS INCLUDING: %s\n", strings.Join(scored, ", "))
	b.WriteString("\nScore each question 0-10 based on criteria, calculate category averages, then determine the final recommendation.\n\nIMPORTANT: Return ONLY the JSON object. No markdown formatting, no code blocks, no additional text.\n")

	return b.String()
}

func titleFromID(questionID string) string {
	words := strings.Split(questionID, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
