package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Default config file path.
const DefaultConfigPath = "~/.config/factbook/config.yaml"

// DataDirEnv overrides Paths.DataDir when set.
const DataDirEnv = "FACTBOOK_DATA_DIR"

// Config holds all factbook configuration.
type Config struct {
	Paths    PathsConfig    `yaml:"paths"`
	Mining   MiningConfig   `yaml:"mining"`
	Calendar CalendarConfig `yaml:"calendar"`
	Bot      BotConfig      `yaml:"bot"`
	Publish  PublishConfig  `yaml:"publish"`
	History  HistoryConfig  `yaml:"history"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type PathsConfig struct {
	DataDir    string `yaml:"data_dir"`
	Posts      string `yaml:"posts"`
	Candidates string `yaml:"candidates"`
	Calendar   string `yaml:"calendar"`
	Checksum   string `yaml:"checksum"`
	Snapshots  string `yaml:"snapshots"`
	Facts      string `yaml:"facts"`
	State      string `yaml:"state"`
}

// Band is an inclusive document-frequency range. Max of zero means unbounded.
type Band struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Contains reports whether n falls inside the band.
func (b Band) Contains(n int) bool {
	if n < b.Min {
		return false
	}
	return b.Max == 0 || n <= b.Max
}

type MiningConfig struct {
	RarityBands      []Band   `yaml:"rarity_bands"`
	QuirkyBands      []Band   `yaml:"quirky_bands"`
	SymbolBands      []Band   `yaml:"symbol_bands"`
	LastMinPosts     int      `yaml:"last_min_posts"`
	TopK             int      `yaml:"top_k"`
	CodeTopK         int      `yaml:"code_top_k"`
	ShortestFloor    int      `yaml:"shortest_floor"`
	LinkFloor        int      `yaml:"link_floor"`
	ImageFloor       int      `yaml:"image_floor"`
	CodeFloor        int      `yaml:"code_floor"`
	YearChangePct    float64  `yaml:"year_change_pct"`
	StreakMin        int      `yaml:"streak_min"`
	TagTopK          int      `yaml:"tag_top_k"`
	TitleListLimit   int      `yaml:"title_list_limit"`
	RareWordMinLen   int      `yaml:"rare_word_min_len"`
	RareWordLimit    int      `yaml:"rare_word_limit"`
	Milestones       []int    `yaml:"milestones"`
	NotableTerms     []string `yaml:"notable_terms"`
	QuirkyTerms      []string `yaml:"quirky_terms"`
	FirstLastTerms   []string `yaml:"first_last_terms"`
	Symbols          []string `yaml:"symbols"`
	Stopwords        []string `yaml:"stopwords"`
	SkipCategories   []string `yaml:"skip_categories"`
	SpecialDateLimit int      `yaml:"special_date_limit"`

	SpecialDates []SpecialDate `yaml:"special_dates"`
}

type CalendarConfig struct {
	Target         int            `yaml:"target"`
	MaxLength      int            `yaml:"max_length"`
	Ceiling        int            `yaml:"ceiling"`
	TypeCaps       map[string]int `yaml:"type_caps"`
	Anchors        []string       `yaml:"anchors"`
	AnchorWeight   int            `yaml:"anchor_weight"`
	Topics         []string       `yaml:"topics"`
	TopicWeight    int            `yaml:"topic_weight"`
	Penalties      []string       `yaml:"penalties"`
	PenaltyWeight  int            `yaml:"penalty_weight"`
	RecentYear     int            `yaml:"recent_year"`
	RecentBonus    int            `yaml:"recent_bonus"`
	RarityKeywords []string       `yaml:"rarity_keywords"`
	RarityWeight   int            `yaml:"rarity_weight"`
}

type BotConfig struct {
	Sources   []string      `yaml:"sources"`
	Window    int           `yaml:"window"`
	Retries   int           `yaml:"retries"`
	Backoff   time.Duration `yaml:"backoff"`
	MaxLength int           `yaml:"max_length"`
	Ceiling   int           `yaml:"ceiling"`
	PerDay    int           `yaml:"per_day"`
}

type PublishConfig struct {
	Endpoint    string        `yaml:"endpoint"`
	TokenEnv    string        `yaml:"token_env"`
	Timeout     time.Duration `yaml:"timeout"`
	MinInterval time.Duration `yaml:"min_interval"`
}

type HistoryConfig struct {
	Enabled    bool   `yaml:"enabled"`
	SQLiteFile string `yaml:"sqlite_file"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Load reads a YAML config file at path and merges it with defaults.
// Returns an error if the file cannot be read or contains invalid YAML.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if dir := os.Getenv(DataDirEnv); dir != "" {
		c.Paths.DataDir = dir
	}
}

// Validate rejects settings that leave the pipeline unable to run.
func (c *Config) Validate() error {
	var errs []error
	if c.Calendar.Target <= 0 {
		errs = append(errs, fmt.Errorf("calendar.target must be positive, got %d", c.Calendar.Target))
	}
	if c.Calendar.MaxLength <= 0 || c.Calendar.MaxLength > c.Calendar.Ceiling {
		errs = append(errs, fmt.Errorf("calendar.max_length %d must be in 1..%d", c.Calendar.MaxLength, c.Calendar.Ceiling))
	}
	if c.Bot.Window < 0 {
		errs = append(errs, fmt.Errorf("bot.window must not be negative, got %d", c.Bot.Window))
	}
	if c.Bot.Retries < 0 {
		errs = append(errs, fmt.Errorf("bot.retries must not be negative, got %d", c.Bot.Retries))
	}
	if c.Bot.MaxLength <= 0 || c.Bot.MaxLength > c.Bot.Ceiling {
		errs = append(errs, fmt.Errorf("bot.max_length %d must be in 1..%d", c.Bot.MaxLength, c.Bot.Ceiling))
	}
	for i, b := range c.Mining.RarityBands {
		if b.Min < 1 || (b.Max != 0 && b.Max < b.Min) {
			errs = append(errs, fmt.Errorf("mining.rarity_bands[%d] is inverted: %d..%d", i, b.Min, b.Max))
		}
	}
	for i, b := range c.Mining.QuirkyBands {
		if b.Min < 1 || (b.Max != 0 && b.Max < b.Min) {
			errs = append(errs, fmt.Errorf("mining.quirky_bands[%d] is inverted: %d..%d", i, b.Min, b.Max))
		}
	}
	for i, b := range c.Mining.SymbolBands {
		if b.Min < 1 || (b.Max != 0 && b.Max < b.Min) {
			errs = append(errs, fmt.Errorf("mining.symbol_bands[%d] is inverted: %d..%d", i, b.Min, b.Max))
		}
	}
	return errors.Join(errs...)
}

// ResolvePath expands ~ and joins relative paths onto the data directory.
func (c *Config) ResolvePath(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	p, err := expandPath(p)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(p) {
		return p, nil
	}
	dir, err := expandPath(c.Paths.DataDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, p), nil
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// LoadOrCreate loads the config from the default path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreate() (*Config, error) {
	path, err := expandPath(DefaultConfigPath)
	if err != nil {
		return nil, err
	}
	return LoadOrCreateAt(path)
}

// LoadOrCreateAt loads the config from the given path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreateAt(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()

		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating config directory: %w", err)
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("marshaling default config: %w", err)
		}

		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}

		cfg.applyEnv()
		return cfg, nil
	}

	return Load(path)
}
