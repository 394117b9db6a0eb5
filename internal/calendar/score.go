// Package calendar curates the canonical 365-fact calendar and guards it
// with a checksum sidecar.
package calendar

import (
	"slices"
	"strconv"

	"github.com/runnerr0/factbook/internal/config"
	"github.com/runnerr0/factbook/internal/corpus"
	"github.com/runnerr0/factbook/internal/facts"
)

// Scoring is the quality signal used when a fact type has more candidates
// than slots. Keywords match whole words; multi-word keywords match
// consecutive words. Each keyword list counts once per fact.
type Scoring struct {
	Anchors       []string
	AnchorWeight  int
	Topics        []string
	TopicWeight   int
	Penalties     []string
	PenaltyWeight int
	RecentYear    int
	RecentBonus   int

	// RarityKeywords lift rarity facts about language over arbitrary tokens.
	RarityKeywords []string
	RarityWeight   int
}

// ScoringFromConfig copies the score table out of the calendar config.
func ScoringFromConfig(cfg config.CalendarConfig) Scoring {
	return Scoring{
		Anchors:        cfg.Anchors,
		AnchorWeight:   cfg.AnchorWeight,
		Topics:         cfg.Topics,
		TopicWeight:    cfg.TopicWeight,
		Penalties:      cfg.Penalties,
		PenaltyWeight:  cfg.PenaltyWeight,
		RecentYear:     cfg.RecentYear,
		RecentBonus:    cfg.RecentBonus,
		RarityKeywords: cfg.RarityKeywords,
		RarityWeight:   cfg.RarityWeight,
	}
}

// Score rates one fact. Higher is better.
func (s Scoring) Score(f facts.Fact) int {
	words := corpus.Tokenize(f.Text)
	score := 0
	if matchesAny(words, s.Anchors) {
		score += s.AnchorWeight
	}
	if matchesAny(words, s.Topics) {
		score += s.TopicWeight
	}
	if matchesAny(words, s.Penalties) {
		score -= s.PenaltyWeight
	}
	if s.RecentYear > 0 && len(f.Date) >= 4 {
		if year, err := strconv.Atoi(f.Date[:4]); err == nil && year >= s.RecentYear {
			score += s.RecentBonus
		}
	}
	if f.Type == facts.TypeRarity && matchesAny(words, s.RarityKeywords) {
		score += s.RarityWeight
	}
	return score
}

func matchesAny(words []string, keywords []string) bool {
	for _, kw := range keywords {
		seq := corpus.Tokenize(kw)
		if len(seq) == 0 {
			continue
		}
		for i := 0; i+len(seq) <= len(words); i++ {
			if slices.Equal(words[i:i+len(seq)], seq) {
				return true
			}
		}
	}
	return false
}
