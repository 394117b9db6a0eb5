package facts

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Fact types emitted by the miner. The vocabulary is open; curated and
// hand-written sources may carry other types.
const (
	TypeRarity   = "rarity"
	TypeFirst    = "first"
	TypeLast     = "last"
	TypeDensity  = "density"
	TypeConstant = "constant"
	TypeOTD      = "otd"
	TypeQuirk    = "quirk"
	TypeGeneral  = "general"
)

// Fact is one rendered fact string plus its provenance.
type Fact struct {
	ID         int
	Type       string
	Text       string
	SourceLink string
	Date       string
	Slug       string
	SourceFile string
}

// Length returns the text length in characters.
func (f Fact) Length() int {
	return utf8.RuneCountInString(f.Text)
}

// FormatPost renders the text to publish: the fact text, followed by a
// blank line and the source link when the result fits within ceiling.
func FormatPost(f Fact, ceiling int) string {
	if f.SourceLink == "" {
		return f.Text
	}
	candidate := f.Text + "\n\n" + f.SourceLink
	if utf8.RuneCountInString(candidate) <= ceiling {
		return candidate
	}
	return f.Text
}

// PostLength is the length of the text with its link appended.
func PostLength(f Fact) int {
	if f.SourceLink == "" {
		return f.Length()
	}
	return utf8.RuneCountInString(f.Text + "\n\n" + f.SourceLink)
}

// FormatNumber renders n with thousands separators.
func FormatNumber(n int) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}
	s := strconv.Itoa(n)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return s
}

// Pool accumulates candidate facts, dropping exact-duplicate text. The
// first fact with a given text wins regardless of type.
type Pool struct {
	facts []Fact
	seen  map[string]int
}

// NewPool returns an empty Pool.
func NewPool() *Pool {
	return &Pool{seen: make(map[string]int)}
}

// Add appends f unless its trimmed text is empty or already present.
// It reports whether f was kept.
func (p *Pool) Add(f Fact) bool {
	f.Text = strings.TrimSpace(f.Text)
	if f.Text == "" {
		return false
	}
	if _, dup := p.seen[f.Text]; dup {
		return false
	}
	p.seen[f.Text] = len(p.facts)
	p.facts = append(p.facts, f)
	return true
}

// Len returns the number of facts kept so far.
func (p *Pool) Len() int {
	return len(p.facts)
}

// Facts returns the kept facts in insertion order.
func (p *Pool) Facts() []Fact {
	out := make([]Fact, len(p.facts))
	copy(out, p.facts)
	return out
}

// Renumber returns a copy of facts with dense ids 1..N in slice order.
func Renumber(facts []Fact) []Fact {
	out := make([]Fact, len(facts))
	for i, f := range facts {
		f.ID = i + 1
		out[i] = f
	}
	return out
}
