package cli

import (
	"fmt"

	"github.com/runnerr0/factbook/internal/config"
	"github.com/runnerr0/factbook/internal/facts"
	"github.com/runnerr0/factbook/internal/posting"
)

// statusJSON is the JSON output structure for the bot status command.
type statusJSON struct {
	Version  string `json:"version"`
	Facts    string `json:"facts"`
	State    string `json:"state"`
	Total    int    `json:"total"`
	Posted   int    `json:"posted"`
	Remain   int    `json:"remaining"`
	Window   int    `json:"window"`
	InWindow int    `json:"in_window"`
	Eligible int    `json:"eligible"`
	PerDay   int    `json:"per_day"`
	Days     int    `json:"days_remaining"`
}

// Execute implements the go-flags Commander interface for BotStatusCommand.
func (c *BotStatusCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	return c.run(cfg)
}

func (c *BotStatusCommand) run(cfg *config.Config) error {
	factsPath, err := pathOr(cfg, c.Facts, cfg.Paths.Facts)
	if err != nil {
		return err
	}
	statePath, err := pathOr(cfg, c.State, cfg.Paths.State)
	if err != nil {
		return err
	}

	pool, err := loadPool(factsPath)
	if err != nil {
		return err
	}
	state, err := posting.LoadState(statePath)
	if err != nil {
		return err
	}
	r := posting.Status(pool, state, cfg.Bot.Window, cfg.Bot.PerDay)

	if c.globals != nil && c.globals.JSON {
		return printJSON(statusJSON{
			Version:  c.version,
			Facts:    factsPath,
			State:    statePath,
			Total:    r.Total,
			Posted:   r.Posted,
			Remain:   r.Remain,
			Window:   cfg.Bot.Window,
			InWindow: r.InWindow,
			Eligible: r.Eligible,
			PerDay:   r.PerDay,
			Days:     r.Days,
		})
	}

	fmt.Println("Factbook Bot Status")
	fmt.Println("===================")
	fmt.Printf("Version:       %s\n", c.version)
	fmt.Printf("Facts:         %s\n", factsPath)
	fmt.Printf("Posted:        %s/%s\n", facts.FormatNumber(r.Posted), facts.FormatNumber(r.Total))
	if r.PerDay > 0 {
		fmt.Printf("Remaining:     %s (~%d days at %d/day)\n", facts.FormatNumber(r.Remain), r.Days, r.PerDay)
	} else {
		fmt.Printf("Remaining:     %s\n", facts.FormatNumber(r.Remain))
	}
	fmt.Printf("Window:        %d recent (%d in pool)\n", cfg.Bot.Window, r.InWindow)
	fmt.Printf("Eligible:      %s\n", facts.FormatNumber(r.Eligible))
	if r.Eligible == 0 {
		fmt.Println()
		fmt.Println("No fact can be posted: the pool is no larger than the posting window.")
	}
	return nil
}
