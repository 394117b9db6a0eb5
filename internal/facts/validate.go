package facts

import (
	"fmt"
	"strings"
)

// Limits bounds fact text. MaxLength applies to the text alone; Ceiling
// applies to the text with its link appended.
type Limits struct {
	MaxLength int
	Ceiling   int
}

// DefaultLimits leaves room for a link within a 280 character post.
var DefaultLimits = Limits{MaxLength: 260, Ceiling: 280}

// Problem is a single validation failure. ID is zero when the problem is
// not tied to one fact.
type Problem struct {
	ID      int
	Message string
}

func (p Problem) String() string {
	if p.ID == 0 {
		return p.Message
	}
	return fmt.Sprintf("fact id %d: %s", p.ID, p.Message)
}

// ValidationError lists every problem found in one validation pass.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "validation failed: " + e.Problems[0].String()
	}
	lines := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		lines[i] = p.String()
	}
	return fmt.Sprintf("validation failed with %d problems:\n%s", len(e.Problems), strings.Join(lines, "\n"))
}

// IDs returns the distinct fact ids named by the problems, in order.
func (e *ValidationError) IDs() []int {
	var ids []int
	seen := make(map[int]bool)
	for _, p := range e.Problems {
		if p.ID != 0 && !seen[p.ID] {
			seen[p.ID] = true
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// Validate checks id presence and uniqueness, text presence, uniqueness and
// length bounds. It never stops at the first offense: the returned
// *ValidationError lists every problem. Validate returns nil when facts are
// clean.
func Validate(facts []Fact, limits Limits) error {
	var problems []Problem
	ids := make(map[int]int)
	texts := make(map[string]int)

	for i, f := range facts {
		if f.ID <= 0 {
			problems = append(problems, Problem{Message: fmt.Sprintf("fact at position %d has no id", i+1)})
		} else if _, dup := ids[f.ID]; dup {
			problems = append(problems, Problem{ID: f.ID, Message: "duplicate id"})
		} else {
			ids[f.ID] = i
		}

		text := strings.TrimSpace(f.Text)
		if text == "" {
			problems = append(problems, Problem{ID: f.ID, Message: "empty text"})
			continue
		}
		if first, dup := texts[text]; dup {
			problems = append(problems, Problem{ID: f.ID, Message: fmt.Sprintf("duplicate text (same as fact id %d)", first)})
		} else {
			texts[text] = f.ID
		}

		if n := f.Length(); limits.MaxLength > 0 && n > limits.MaxLength {
			problems = append(problems, Problem{ID: f.ID, Message: fmt.Sprintf("exceeds max length (%d > %d)", n, limits.MaxLength)})
		}
		if n := PostLength(f); limits.Ceiling > 0 && n > limits.Ceiling {
			problems = append(problems, Problem{ID: f.ID, Message: fmt.Sprintf("text with link exceeds post limit (%d > %d)", n, limits.Ceiling)})
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: problems}
}
