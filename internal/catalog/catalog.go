package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Rubric describes what an ideal, acceptable and red-flag answer to a
// question looks like. It is embedded verbatim into the evaluation prompt.
type Rubric struct {
	Ideal      string `json:"ideal"`
	Acceptable string `json:"acceptable"`
	RedFlag    string `json:"red_flag"`
}

// Entry is one question of a role: its id, resolved scoring category,
// audio reference and rubric. Category is assigned once at load time from
// the category membership lists, never derived from the id at runtime.
type Entry struct {
	ID       string
	Category string
	AudioRef string
	Question string `json:"question"`
	Rubric   Rubric
}

// Category groups questions that share a scoring theme.
type Category struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Questions   []string `json:"questions"`
}

// ExperienceCriteria guides the model when scoring open experience answers.
type ExperienceCriteria struct {
	CoreDuties    []string `json:"core_duties"`
	MinimumDuties int      `json:"minimum_duties"`
	Evaluation    struct {
		Pass   string `json:"pass"`
		Review string `json:"review"`
		Fail   string `json:"fail"`
	} `json:"evaluation"`
}

// Role is the immutable per-role assessment definition: the ordered question
// sequence the call plays and the rubric metadata the scorer needs.
type Role struct {
	Key        string
	Name       string
	Sequence   []string
	Categories map[string]Category
	Entries    map[string]Entry
	Experience *ExperienceCriteria
}

// Entry returns the catalog entry for a question id, if the question
// carries a rubric. Presentation-only and experience questions have none.
func (r Role) Entry(questionID string) (Entry, bool) {
	e, ok := r.Entries[questionID]
	return e, ok
}

// CategoryOf returns the scoring category a question belongs to,
// or "" for questions outside every category (intro, goodbye).
func (r Role) CategoryOf(questionID string) string {
	if e, ok := r.Entries[questionID]; ok && e.Category != "" {
		return e.Category
	}
	for key, cat := range r.Categories {
		for _, q := range cat.Questions {
			if q == questionID {
				return key
			}
		}
	}
	return ""
}

// CategoryKeys returns the category keys in stable order.
func (r Role) CategoryKeys() []string {
	keys := make([]string, 0, len(r.Categories))
	for k := range r.Categories {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Catalog is the full set of role definitions, loaded once at startup and
// passed explicitly to the call-flow and the scorer.
type Catalog struct {
	roles map[string]Role
}

// Role looks up a role definition by key.
func (c *Catalog) Role(key string) (Role, bool) {
	r, ok := c.roles[key]
	return r, ok
}

// Roles returns the sorted role keys.
func (c *Catalog) Roles() []string {
	keys := make([]string, 0, len(c.roles))
	for k := range c.roles {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// roleFile mirrors the JSON layout of the roles data file.
type roleFile struct {
	Name              string              `json:"name"`
	QuestionsSequence []string            `json:"questions_sequence"`
	ScoringCategories map[string]Category `json:"scoring_categories"`
	Questions         map[string]struct {
		Question   string `json:"question"`
		Ideal      string `json:"ideal"`
		Acceptable string `json:"acceptable"`
		RedFlag    string `json:"red_flag"`
	} `json:"questions"`
	ExperienceCriteria *ExperienceCriteria `json:"experience_criteria"`
}

// Load reads the role definitions from a JSON file and resolves every
// question's category once.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roles file: %w", err)
	}
	return Parse(data)
}

// Parse builds a catalog from raw JSON role definitions.
func Parse(data []byte) (*Catalog, error) {
	var raw map[string]roleFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse roles JSON: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("roles file contains no roles")
	}

	roles := make(map[string]Role, len(raw))
	for key, rf := range raw {
		role := Role{
			Key:        key,
			Name:       rf.Name,
			Sequence:   rf.QuestionsSequence,
			Categories: rf.ScoringCategories,
			Entries:    make(map[string]Entry, len(rf.Questions)),
			Experience: rf.ExperienceCriteria,
		}

		if len(role.Sequence) < 2 {
			return nil, fmt.Errorf("role %q: questions_sequence must hold at least intro and goodbye", key)
		}

		categoryByQuestion := make(map[string]string)
		for catKey, cat := range rf.ScoringCategories {
			for _, q := range cat.Questions {
				categoryByQuestion[q] = catKey
			}
		}

		for id, q := range rf.Questions {
			role.Entries[id] = Entry{
				ID:       id,
				Category: categoryByQuestion[id],
				AudioRef: fmt.Sprintf("%s/%s.mp3", key, id),
				Question: q.Question,
				Rubric: Rubric{
					Ideal:      q.Ideal,
					Acceptable: q.Acceptable,
					RedFlag:    q.RedFlag,
				},
			}
		}

		// Every category member must be part of the call sequence.
		inSequence := make(map[string]bool, len(role.Sequence))
		for _, q := range role.Sequence {
			inSequence[q] = true
		}
		for catKey, cat := range rf.ScoringCategories {
			for _, q := range cat.Questions {
				if !inSequence[q] {
					return nil, fmt.Errorf("role %q: category %q lists question %q missing from sequence", key, catKey, q)
				}
			}
		}

		roles[key] = role
	}

	return &Catalog{roles: roles}, nil
}
