package config

import "time"

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			DataDir:    "~/.local/share/factbook",
			Posts:      "posts.jsonl",
			Candidates: "calendar_candidates.csv",
			Calendar:   "calendar_365.csv",
			Checksum:   "calendar/final/canonical.sha256",
			Snapshots:  "calendar/final",
			Facts:      "bot/facts.json",
			State:      "bot/state.json",
		},
		Mining: MiningConfig{
			RarityBands:      []Band{{Min: 1, Max: 1}, {Min: 2, Max: 3}, {Min: 4, Max: 10}},
			QuirkyBands:      []Band{{Min: 1, Max: 1}, {Min: 2, Max: 5}, {Min: 21}},
			SymbolBands:      []Band{{Min: 1, Max: 1}, {Min: 2, Max: 5}, {Min: 10}},
			LastMinPosts:     4,
			TopK:             20,
			CodeTopK:         15,
			ShortestFloor:    10,
			LinkFloor:        3,
			ImageFloor:       2,
			CodeFloor:        200,
			YearChangePct:    20,
			StreakMin:        5,
			TagTopK:          50,
			TitleListLimit:   30,
			RareWordMinLen:   6,
			RareWordLimit:    200,
			Milestones:       DefaultMilestones(),
			NotableTerms:     DefaultNotableTerms(),
			QuirkyTerms:      DefaultQuirkyTerms(),
			FirstLastTerms:   DefaultFirstLastTerms(),
			Symbols:          DefaultSymbols(),
			Stopwords:        DefaultStopwords(),
			SkipCategories:   []string{"Uncategorized"},
			SpecialDateLimit: 5,
			SpecialDates:     DefaultSpecialDates(),
		},
		Calendar: CalendarConfig{
			Target:         365,
			MaxLength:      260,
			Ceiling:        280,
			TypeCaps:       map[string]int{},
			Anchors:        []string{"theorem", "formula", "function", "equation", "algorithm", "proof"},
			AnchorWeight:   3,
			Topics:         []string{"pi", "euler", "fibonacci", "fractal", "chaos", "crypto", "quantum"},
			TopicWeight:    2,
			Penalties:      []string{"highlight", "posts", "help wanted", "monthly", "carnival"},
			PenaltyWeight:  2,
			RecentYear:     2020,
			RecentBonus:    1,
			RarityKeywords: DefaultRarityKeywords(),
			RarityWeight:   3,
		},
		Bot: BotConfig{
			Sources:   []string{"calendar_365.csv", "hn_facts.csv", "new_analysis_facts.csv", "additional_facts.csv"},
			Window:    50,
			Retries:   2,
			Backoff:   2 * time.Second,
			MaxLength: 260,
			Ceiling:   280,
			PerDay:    2,
		},
		Publish: PublishConfig{
			Endpoint:    "",
			TokenEnv:    "FACTBOOK_PUBLISH_TOKEN",
			Timeout:     10 * time.Second,
			MinInterval: time.Second,
		},
		History: HistoryConfig{
			Enabled:    false,
			SQLiteFile: "bot/history.db",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}
