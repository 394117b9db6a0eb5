package facts

import (
	"regexp"
	"strings"
)

// TrimRulesVersion identifies the trim table below. Bump it whenever a
// rule is added, removed or changed so backfilled pools can be traced to
// the table that produced them.
const TrimRulesVersion = 1

// TrimRule rewrites one commentary pattern.
type TrimRule struct {
	Pattern     *regexp.Regexp
	Replacement string
}

func rule(pattern, replacement string) TrimRule {
	return TrimRule{Pattern: regexp.MustCompile(pattern), Replacement: replacement}
}

// DefaultTrimRules strips editorial commentary that older generators
// appended after a dash or as a trailing sentence.
func DefaultTrimRules() []TrimRule {
	return []TrimRule{
		// Commentary after an em-dash, up to the end of the sentence.
		rule(`—(?:a meditation on|the power of|proof that|where|sometimes|even|the blog|one|a true|a surprisingly|this is|the intersection|a rare|a classic|roughly|approximately|nearly|two|mathematics|the word|one of only)\b[^.]*\.`, "."),

		// Trailing commentary sentences.
		rule(`\. (?:A meditation|The blog|Ancient computing|Word origins|Back when|A math blog|Even a math blog|A shoutout|Literary references|Explanatory writing|The statistical|Some topics need|Theory meets|Curiosity drives|High praise|The best proofs|Mathematics has|Both paths|Creative insights|The best ideas)[^.]*\.$`, "."),
		rule(` (?:Composition matters|Maximum density achieved|One tool, many domains|Indivisible and essential|Let chance do the heavy lifting)\.$`, ""),
		rule(` Concision as an art form\. Sometimes less really is more\.$`, ""),
		rule(` Sometimes the best proof is a picture\.$`, ""),

		// Cleanup left behind by the rules above.
		rule(`\.{2,}`, "."),
		rule(`\s+\.`, "."),
		rule(`\s{2,}`, " "),
	}
}

// Change records one rewritten fact.
type Change struct {
	ID     int
	Before string
	After  string
}

// Trimmer applies a fixed table of rewrite rules to fact text. It is a
// backfill tool for pools produced by older generators.
type Trimmer struct {
	Rules []TrimRule
}

// NewTrimmer returns a Trimmer using DefaultTrimRules.
func NewTrimmer() *Trimmer {
	return &Trimmer{Rules: DefaultTrimRules()}
}

// Text applies every rule once, in table order.
func (t *Trimmer) Text(s string) string {
	for _, r := range t.Rules {
		s = r.Pattern.ReplaceAllString(s, r.Replacement)
	}
	return strings.TrimSpace(s)
}

// Apply returns a copy of facts with trimmed text and the list of facts
// whose text changed. A rewrite that would empty a fact is skipped.
func (t *Trimmer) Apply(facts []Fact) ([]Fact, []Change) {
	out := make([]Fact, len(facts))
	var changes []Change
	for i, f := range facts {
		trimmed := t.Text(f.Text)
		if trimmed != f.Text && trimmed != "" {
			changes = append(changes, Change{ID: f.ID, Before: f.Text, After: trimmed})
			f.Text = trimmed
		}
		out[i] = f
	}
	return out, changes
}
