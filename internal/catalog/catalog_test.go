package catalog

import "testing"

const rolesFixture = `{
  "bartender": {
    "name": "Bartender",
    "questions_sequence": ["intro", "experience_1", "knowledge_margarita", "knowledge_service", "goodbye"],
    "scoring_categories": {
      "baseline": {"name": "Baseline", "questions": ["knowledge_service"]},
      "experience": {"name": "Experience", "questions": ["experience_1"]},
      "knowledge": {"name": "Knowledge", "questions": ["knowledge_margarita"]}
    },
    "questions": {
      "knowledge_margarita": {
        "question": "What are the basic ingredients in a Margarita?",
        "ideal": "Tequila, triple sec, lime juice",
        "acceptable": "Tequila, lime",
        "red_flag": "Leaves out tequila"
      },
      "knowledge_service": {
        "question": "If a guest is overly intoxicated, how do you handle it?",
        "ideal": "Politely cut them off, offer water",
        "acceptable": "Stop serving",
        "red_flag": "Keep serving"
      }
    }
  }
}`

func TestParseResolvesCategoriesAtLoadTime(t *testing.T) {
	c, err := Parse([]byte(rolesFixture))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	role, ok := c.Role("bartender")
	if !ok {
		t.Fatal("expected bartender role")
	}

	entry, ok := role.Entry("knowledge_margarita")
	if !ok {
		t.Fatal("expected knowledge_margarita entry")
	}
	if entry.Category != "knowledge" {
		t.Fatalf("expected category knowledge, got %q", entry.Category)
	}
	if entry.AudioRef != "bartender/knowledge_margarita.mp3" {
		t.Fatalf("unexpected audio ref: %q", entry.AudioRef)
	}
	if entry.Rubric.Ideal == "" || entry.Rubric.RedFlag == "" {
		t.Fatalf("rubric not populated: %+v", entry.Rubric)
	}
}

func TestCategoryOfExperienceQuestionsWithoutRubric(t *testing.T) {
	c, err := Parse([]byte(rolesFixture))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	role, _ := c.Role("bartender")

	// Experience questions carry no rubric entry but still belong to a category.
	if got := role.CategoryOf("experience_1"); got != "experience" {
		t.Fatalf("expected experience, got %q", got)
	}
	// Presentation-only markers belong to no category.
	if got := role.CategoryOf("intro"); got != "" {
		t.Fatalf("expected no category for intro, got %q", got)
	}
	if got := role.CategoryOf("goodbye"); got != "" {
		t.Fatalf("expected no category for goodbye, got %q", got)
	}
}

func TestParseRejectsCategoryMemberOutsideSequence(t *testing.T) {
	const broken = `{
	  "host": {
	    "name": "Host",
	    "questions_sequence": ["intro", "goodbye"],
	    "scoring_categories": {
	      "knowledge": {"name": "Knowledge", "questions": ["knowledge_pos"]}
	    },
	    "questions": {}
	  }
	}`

	if _, err := Parse([]byte(broken)); err == nil {
		t.Fatal("expected error for category member missing from sequence")
	}
}

func TestParseRejectsEmptyAndShortSequences(t *testing.T) {
	if _, err := Parse([]byte(`{}`)); err == nil {
		t.Fatal("expected error for empty roles file")
	}

	const short = `{"host": {"name": "Host", "questions_sequence": ["intro"], "scoring_categories": {}, "questions": {}}}`
	if _, err := Parse([]byte(short)); err == nil {
		t.Fatal("expected error for single-entry sequence")
	}
}

func TestRolesSorted(t *testing.T) {
	c, err := Parse([]byte(rolesFixture))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	roles := c.Roles()
	if len(roles) != 1 || roles[0] != "bartender" {
		t.Fatalf("unexpected roles: %v", roles)
	}
}
