package mining

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/runnerr0/factbook/internal/config"
	"github.com/runnerr0/factbook/internal/corpus"
	"github.com/runnerr0/factbook/internal/facts"
	"github.com/runnerr0/factbook/internal/logging"
)

// Miner runs a fixed, ordered set of rules over one corpus.
type Miner struct {
	Rules  []Rule
	Config config.MiningConfig
	Logger *log.Logger
}

// NewMiner returns a Miner with DefaultRules.
func NewMiner(cfg config.MiningConfig, logger *log.Logger) *Miner {
	return &Miner{
		Rules:  DefaultRules(),
		Config: cfg,
		Logger: logging.Or(logger),
	}
}

// Run mines posts and returns deduplicated candidates numbered 1..N.
// Rule outputs are concatenated in declared rule order regardless of
// which rule finishes first, so identical input yields identical output.
// Any rule error aborts the whole run.
func (m *Miner) Run(ctx context.Context, posts []corpus.Post) ([]facts.Fact, error) {
	logger := logging.Or(m.Logger)
	in := NewInput(posts, m.Config)

	results := make([][]facts.Fact, len(m.Rules))
	g, gctx := errgroup.WithContext(ctx)
	for i, r := range m.Rules {
		g.Go(func() error {
			out, err := r.Mine(gctx, in)
			if err != nil {
				return fmt.Errorf("rule %s: %w", r.Name(), err)
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	pool := facts.NewPool()
	for i, out := range results {
		kept := 0
		for _, f := range out {
			if pool.Add(f) {
				kept++
			}
		}
		logger.Debug("rule mined", "rule", m.Rules[i].Name(), "emitted", len(out), "kept", kept)
	}

	candidates := facts.Renumber(pool.Facts())
	logger.Info("mining complete", "posts", len(in.Posts), "rules", len(m.Rules), "candidates", len(candidates))
	return candidates, nil
}
