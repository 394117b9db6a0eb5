package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/runnerr0/factbook/internal/config"
	"github.com/runnerr0/factbook/internal/facts"
	"github.com/runnerr0/factbook/internal/logging"
	"github.com/runnerr0/factbook/internal/storage"
)

// loadConfig reads the config named by --config, or the default one,
// validates it and configures logging from it.
func loadConfig(g *GlobalFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if g == nil || g.Config == "" {
		cfg, err = config.LoadOrCreate()
	} else {
		cfg, err = config.LoadOrCreateAt(g.Config)
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	level := cfg.Logging.Level
	if g != nil && g.Verbose {
		level = log.DebugLevel.String()
	}
	logFile, err := cfg.ResolvePath(cfg.Logging.File)
	if err != nil {
		return nil, err
	}
	if err := logging.Init(level, logFile); err != nil {
		return nil, err
	}
	logging.Debug("config loaded", "data_dir", cfg.Paths.DataDir, "level", level)
	return cfg, nil
}

// pathOr returns flag when set, otherwise def resolved against the data
// directory.
func pathOr(cfg *config.Config, flag, def string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	return cfg.ResolvePath(def)
}

// openHistory opens the history ledger when history is enabled. It
// returns nil, nil when it is not.
func openHistory(ctx context.Context, cfg *config.Config) (*storage.SQLiteLedger, error) {
	if !cfg.History.Enabled {
		return nil, nil
	}
	path, err := cfg.ResolvePath(cfg.History.SQLiteFile)
	if err != nil {
		return nil, err
	}
	ledger, err := storage.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	logging.Info("history ledger open", "path", path)
	return ledger, nil
}

// loadPool reads a fact pool in JSON, or CSV when the name ends in .csv.
func loadPool(path string) ([]facts.Fact, error) {
	if strings.HasSuffix(strings.ToLower(path), ".csv") {
		return facts.ReadCSVFile(path)
	}
	return facts.ReadJSONFile(path)
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// printProblems lists every validation problem, one per line.
func printProblems(verr *facts.ValidationError) {
	for _, p := range verr.Problems {
		fmt.Printf("  - %s\n", p)
	}
}

// sortedTypes returns the keys of a per-type count, sorted.
func sortedTypes(m map[string]int) []string {
	return slices.Sorted(maps.Keys(m))
}
