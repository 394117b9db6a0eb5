package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/runnerr0/factbook/internal/config"
	"github.com/runnerr0/factbook/internal/facts"
	"github.com/runnerr0/factbook/internal/logging"
	"github.com/runnerr0/factbook/internal/storage"
)

// Execute implements the go-flags Commander interface for BotBuildCommand.
func (c *BotBuildCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	return c.run(cfg)
}

func (c *BotBuildCommand) run(cfg *config.Config) error {
	sources := c.Sources
	if len(sources) == 0 {
		for _, s := range cfg.Bot.Sources {
			p, err := cfg.ResolvePath(s)
			if err != nil {
				return err
			}
			sources = append(sources, p)
		}
	}
	outPath, err := pathOr(cfg, c.Out, cfg.Paths.Facts)
	if err != nil {
		return err
	}
	maxLength := c.MaxLength
	if maxLength <= 0 {
		maxLength = cfg.Bot.MaxLength
	}

	limits := facts.Limits{MaxLength: maxLength, Ceiling: cfg.Bot.Ceiling}
	res, err := facts.Build(sources, limits, logging.WithPrefix("build"))
	if err != nil {
		return err
	}
	if len(res.Sources) == 0 {
		return fmt.Errorf("build fact pool: none of %d sources exist", len(sources))
	}
	if err := facts.WriteJSONFile(outPath, res.Facts); err != nil {
		return err
	}

	if c.globals != nil && c.globals.JSON {
		return printJSON(map[string]any{
			"facts":        len(res.Facts),
			"sources":      res.Sources,
			"missing":      res.Missing,
			"duplicates":   res.Duplicates,
			"too_long":     res.TooLong,
			"over_ceiling": res.OverCeiling,
			"out":          outPath,
		})
	}
	for _, m := range res.Missing {
		fmt.Printf("Skipped missing source %s\n", m)
	}
	fmt.Printf("Wrote %s facts to %s (%d duplicates, %d too long, %d over the post ceiling)\n",
		facts.FormatNumber(len(res.Facts)), outPath, res.Duplicates, res.TooLong, res.OverCeiling)
	return nil
}

// Execute implements the go-flags Commander interface for BotValidateCommand.
func (c *BotValidateCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	return c.run(cfg)
}

func (c *BotValidateCommand) run(cfg *config.Config) error {
	path, err := pathOr(cfg, c.Facts, cfg.Paths.Facts)
	if err != nil {
		return err
	}
	pool, err := loadPool(path)
	if err != nil {
		return err
	}

	limits := facts.Limits{MaxLength: cfg.Bot.MaxLength, Ceiling: cfg.Bot.Ceiling}
	if c.MaxLength > 0 {
		limits.MaxLength = c.MaxLength
	}

	err = facts.Validate(pool, limits)
	var verr *facts.ValidationError
	if errors.As(err, &verr) {
		if c.globals != nil && c.globals.JSON {
			if perr := printJSON(map[string]any{"valid": false, "ids": verr.IDs(), "problems": problemStrings(verr)}); perr != nil {
				return perr
			}
		} else {
			fmt.Printf("%s is invalid (%d problems):\n", path, len(verr.Problems))
			printProblems(verr)
		}
		return err
	}
	if err != nil {
		return err
	}

	if c.globals != nil && c.globals.JSON {
		return printJSON(map[string]any{"valid": true, "facts": len(pool)})
	}
	fmt.Printf("%s is valid: %s facts\n", path, facts.FormatNumber(len(pool)))
	return nil
}

// Execute implements the go-flags Commander interface for BotTrimCommand.
func (c *BotTrimCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	return c.run(cfg)
}

func (c *BotTrimCommand) run(cfg *config.Config) error {
	path, err := pathOr(cfg, c.Facts, cfg.Paths.Facts)
	if err != nil {
		return err
	}
	pool, err := facts.ReadJSONFile(path)
	if err != nil {
		return err
	}

	trimmed, changes := facts.NewTrimmer().Apply(pool)
	if !c.DryRun && len(changes) > 0 {
		if err := facts.WriteJSONFile(path, trimmed); err != nil {
			return err
		}
	}

	if c.globals != nil && c.globals.JSON {
		type change struct {
			ID     int    `json:"id"`
			Before string `json:"before"`
			After  string `json:"after"`
		}
		out := make([]change, len(changes))
		for i, ch := range changes {
			out[i] = change{ID: ch.ID, Before: ch.Before, After: ch.After}
		}
		return printJSON(map[string]any{"changed": out, "dry_run": c.DryRun})
	}

	for _, ch := range changes {
		fmt.Printf("#%d\n  - %s\n  + %s\n", ch.ID, ch.Before, ch.After)
	}
	verb := "Trimmed"
	if c.DryRun {
		verb = "Would trim"
	}
	fmt.Printf("%s %d of %s facts\n", verb, len(changes), facts.FormatNumber(len(pool)))
	return nil
}

// Execute implements the go-flags Commander interface for BotHistoryCommand.
func (c *BotHistoryCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	return c.run(context.Background(), cfg)
}

func (c *BotHistoryCommand) run(ctx context.Context, cfg *config.Config) error {
	ledger, err := openHistory(ctx, cfg)
	if err != nil {
		return err
	}
	if ledger == nil {
		return errors.New("posting history is disabled; set history.enabled in the config")
	}
	defer ledger.Close()

	attempts, err := ledger.RecentAttempts(ctx, c.Limit)
	if err != nil {
		return err
	}
	stats, err := ledger.GetStats(ctx)
	if err != nil {
		return err
	}

	if c.globals != nil && c.globals.JSON {
		type attemptJSON struct {
			ID       string `json:"id"`
			FactID   int    `json:"fact_id"`
			Status   string `json:"status"`
			RemoteID string `json:"remote_id,omitempty"`
			Tries    int    `json:"tries"`
			Warning  string `json:"warning,omitempty"`
			Error    string `json:"error,omitempty"`
			At       string `json:"at"`
		}
		out := make([]attemptJSON, len(attempts))
		for i, a := range attempts {
			out[i] = attemptJSON{
				ID: a.ID, FactID: a.FactID, Status: a.Status, RemoteID: a.RemoteID,
				Tries: a.Tries, Warning: a.Warning, Error: a.Error,
				At: a.At.UTC().Format(time.RFC3339),
			}
		}
		summary := map[string]any{
			"posted":         stats.Posted,
			"failed":         stats.Failed,
			"distinct_facts": stats.DistinctFacts,
			"attempts":       out,
		}
		if !stats.LastPosted.IsZero() {
			summary["last_posted"] = stats.LastPosted.UTC().Format(time.RFC3339)
		}
		return printJSON(summary)
	}

	fmt.Println("Posting History")
	fmt.Println("===============")
	fmt.Printf("Posted:        %d (%d distinct facts)\n", stats.Posted, stats.DistinctFacts)
	fmt.Printf("Failed:        %d\n", stats.Failed)
	if !stats.LastPosted.IsZero() {
		fmt.Printf("Last posted:   %s\n", stats.LastPosted.Local().Format("2006-01-02 15:04"))
	}
	if len(attempts) == 0 {
		return nil
	}
	fmt.Println()
	for _, a := range attempts {
		detail := a.RemoteID
		if a.Status != storage.StatusPosted {
			detail = a.Error
		}
		fmt.Printf("  %s  #%-4d %-7s %d tries  %s\n",
			a.At.Local().Format("2006-01-02 15:04"), a.FactID, a.Status, a.Tries, firstLine(detail))
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
