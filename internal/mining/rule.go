// Package mining turns a post corpus into candidate facts.
//
// Each Rule is a pure function of its Input. Rules share no mutable state,
// so the Miner runs them concurrently and only the final merge enforces
// global text uniqueness and assigns ids.
package mining

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/runnerr0/factbook/internal/config"
	"github.com/runnerr0/factbook/internal/corpus"
	"github.com/runnerr0/factbook/internal/facts"
)

// DateLayout renders publication dates inside fact text.
const DateLayout = "January 02, 2006"

// dateField is the layout stored in the Fact.Date column.
const dateField = "2006-01-02T15:04:05"

// Input is the read-only view every rule receives.
type Input struct {
	// Posts is sorted by date, then id.
	Posts []corpus.Post
	// Terms indexes the notable, quirky and first/last vocabularies.
	Terms *corpus.TermStatistics
	// Symbols indexes the configured symbol names.
	Symbols *corpus.TermStatistics
	Config  config.MiningConfig
}

// NewInput sorts posts and builds both term indexes.
func NewInput(posts []corpus.Post, cfg config.MiningConfig) *Input {
	sorted := corpus.Sorted(posts)

	vocab := make([]string, 0, len(cfg.NotableTerms)+len(cfg.QuirkyTerms)+len(cfg.FirstLastTerms))
	vocab = append(vocab, cfg.NotableTerms...)
	vocab = append(vocab, cfg.QuirkyTerms...)
	vocab = append(vocab, cfg.FirstLastTerms...)

	return &Input{
		Posts:   sorted,
		Terms:   corpus.IndexTerms(sorted, vocab),
		Symbols: corpus.IndexSymbols(sorted, cfg.Symbols),
		Config:  cfg,
	}
}

// Latest returns the most recent post. Aggregate facts link to it.
func (in *Input) Latest() (corpus.Post, bool) {
	if len(in.Posts) == 0 {
		return corpus.Post{}, false
	}
	return in.Posts[len(in.Posts)-1], true
}

// Rule emits candidate facts of one family. Output order must depend only
// on the Input.
type Rule interface {
	Name() string
	Mine(ctx context.Context, in *Input) ([]facts.Fact, error)
}

// DefaultRules returns every rule in assembly order.
func DefaultRules() []Rule {
	return []Rule{
		WatchRarity{},
		QuirkyRarity{},
		CorpusRarity{},
		FirstLast{},
		Outliers{},
		Constants{},
		OnThisDay{},
		Quirks{},
	}
}

// postFact builds a fact that cites p.
func postFact(typ, text string, p corpus.Post) facts.Fact {
	return facts.Fact{
		Type:       typ,
		Text:       text,
		SourceLink: p.Link,
		Date:       p.Date.Format(dateField),
		Slug:       p.Slug,
	}
}

// linkFact builds a fact that only links to p.
func linkFact(typ, text string, p corpus.Post) facts.Fact {
	return facts.Fact{Type: typ, Text: text, SourceLink: p.Link}
}

func formatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ordinal renders n as 1st, 2nd, 3rd, 11th, 22nd and so on.
func ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}

// years renders a year range, collapsing equal endpoints.
func years(from, to int) string {
	if from == to {
		return strconv.Itoa(from)
	}
	return fmt.Sprintf("%d-%d", from, to)
}
