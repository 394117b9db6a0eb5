package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/runnerr0/factbook/internal/config"
	"github.com/runnerr0/factbook/internal/facts"
	"github.com/runnerr0/factbook/internal/logging"
	"github.com/runnerr0/factbook/internal/posting"
)

// Execute implements the go-flags Commander interface for BotPostCommand.
func (c *BotPostCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	return c.run(context.Background(), cfg)
}

func (c *BotPostCommand) run(ctx context.Context, cfg *config.Config) error {
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
	limits := facts.Limits{MaxLength: cfg.Bot.MaxLength, Ceiling: cfg.Bot.Ceiling}
	if err := facts.Validate(pool, limits); err != nil {
		var verr *facts.ValidationError
		if errors.As(err, &verr) {
			fmt.Printf("%s is invalid; fix it before posting:\n", factsPath)
			printProblems(verr)
		}
		return err
	}

	sched := posting.NewScheduler(cfg.Bot, nil, logging.WithPrefix("post"))
	if !c.DryRun {
		pub := c.publisher
		if pub == nil {
			webhook, err := posting.NewWebhookPublisher(cfg.Publish.Endpoint, cfg.Publish.TokenEnv, cfg.Publish.Timeout, cfg.Publish.MinInterval)
			if err != nil {
				return err
			}
			pub = webhook
		}
		sched.Publisher = pub

		ledger, err := openHistory(ctx, cfg)
		if err != nil {
			return err
		}
		if ledger != nil {
			defer ledger.Close()
			sched.History = ledger
		}
	}

	out, state, err := sched.Post(ctx, pool, statePath, c.DryRun)
	if err != nil {
		var cerr *posting.ConfigurationError
		if errors.As(err, &cerr) {
			return fmt.Errorf("cannot post: %w", err)
		}
		logging.Error("post failed", "facts", factsPath, "err", err)
		return err
	}

	if c.globals != nil && c.globals.JSON {
		res := map[string]any{
			"status":  out.Status,
			"fact_id": out.FactID,
			"text":    out.Text,
		}
		if out.Status == posting.StatusPosted {
			res["remote_id"] = out.RemoteID
			res["attempts"] = out.Attempts
			res["posted_count"] = len(state.RecentIDs)
			if out.Warning != "" {
				res["warning"] = out.Warning
			}
		}
		return printJSON(res)
	}

	if out.Status == posting.StatusDryRun {
		fmt.Printf("DRY RUN: %s\n", out.Text)
		return nil
	}
	fmt.Printf("Posted fact #%d (remote id %s)\n", out.FactID, out.RemoteID)
	fmt.Printf("State updated: %d facts in log\n", len(state.RecentIDs))
	if out.Warning != "" {
		fmt.Printf("Warning: %s\n", out.Warning)
	}
	return nil
}
