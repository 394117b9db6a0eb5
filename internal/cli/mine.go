package cli

import (
	"context"
	"fmt"

	"github.com/runnerr0/factbook/internal/config"
	"github.com/runnerr0/factbook/internal/corpus"
	"github.com/runnerr0/factbook/internal/facts"
	"github.com/runnerr0/factbook/internal/logging"
	"github.com/runnerr0/factbook/internal/mining"
)

// Execute implements the go-flags Commander interface for MineCommand.
func (c *MineCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	return c.run(context.Background(), cfg)
}

func (c *MineCommand) run(ctx context.Context, cfg *config.Config) error {
	postsPath, err := pathOr(cfg, c.Posts, cfg.Paths.Posts)
	if err != nil {
		return err
	}
	outPath, err := pathOr(cfg, c.Out, cfg.Paths.Candidates)
	if err != nil {
		return err
	}

	posts, err := corpus.LoadFile(postsPath)
	if err != nil {
		return err
	}

	miner := mining.NewMiner(cfg.Mining, logging.WithPrefix("mine"))
	candidates, err := miner.Run(ctx, posts)
	if err != nil {
		return fmt.Errorf("mine facts: %w", err)
	}
	if err := facts.WriteCSVFile(outPath, candidates); err != nil {
		return fmt.Errorf("write candidates: %w", err)
	}

	byType := make(map[string]int)
	for _, f := range candidates {
		byType[f.Type]++
	}

	if c.globals != nil && c.globals.JSON {
		return printJSON(map[string]any{
			"posts":      len(posts),
			"candidates": len(candidates),
			"by_type":    byType,
			"out":        outPath,
		})
	}

	fmt.Printf("Mined %s candidates from %s posts\n", facts.FormatNumber(len(candidates)), facts.FormatNumber(len(posts)))
	for _, t := range sortedTypes(byType) {
		fmt.Printf("  %-10s %s\n", t, facts.FormatNumber(byType[t]))
	}
	fmt.Printf("Wrote %s\n", outPath)
	return nil
}
