package posting

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"

	"github.com/runnerr0/factbook/internal/config"
	"github.com/runnerr0/factbook/internal/facts"
	"github.com/runnerr0/factbook/internal/logging"
	"github.com/runnerr0/factbook/internal/storage"
)

// Outcome statuses.
const (
	StatusPosted = "posted"
	StatusDryRun = "dry-run"
)

// ConfigurationError means no fact can be posted until the pool or the
// window changes. It is never retried.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// PublishError is a terminal publish failure. The state is left as it was.
type PublishError struct {
	FactID   int
	Attempts int
	Err      error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish fact %d failed after %d attempt(s): %v", e.FactID, e.Attempts, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// Outcome describes one scheduler run.
type Outcome struct {
	Status   string
	FactID   int
	Text     string
	RemoteID string
	Attempts int
	// Warning is set when the post went out only after failed attempts.
	Warning string
}

// Scheduler runs LOAD, SELECT, FORMAT, PUBLISH and RECORD for one post.
type Scheduler struct {
	Window  int
	Retries int
	// Backoff is multiplied by the number of failed attempts so far to
	// get the delay before the next one.
	Backoff time.Duration
	Ceiling int

	Publisher Publisher
	// History receives every publish outcome when set.
	History storage.Ledger

	Rand   *rand.Rand
	Sleep  func(ctx context.Context, d time.Duration) error
	Now    func() time.Time
	Logger *log.Logger
}

// NewScheduler builds a Scheduler from the bot config.
func NewScheduler(cfg config.BotConfig, pub Publisher, logger *log.Logger) *Scheduler {
	return &Scheduler{
		Window:    cfg.Window,
		Retries:   cfg.Retries,
		Backoff:   cfg.Backoff,
		Ceiling:   cfg.Ceiling,
		Publisher: pub,
		Logger:    logging.Or(logger),
	}
}

// Eligible returns the pool facts outside the recent window, in pool order.
func (s *Scheduler) Eligible(pool []facts.Fact, state *State) []facts.Fact {
	recent := make(map[int]bool, s.Window)
	for _, id := range state.Window(s.Window) {
		recent[id] = true
	}
	var out []facts.Fact
	for _, f := range pool {
		if !recent[f.ID] {
			out = append(out, f)
		}
	}
	return out
}

// Select picks a fact uniformly at random among the eligible ones.
func (s *Scheduler) Select(pool []facts.Fact, state *State) (facts.Fact, error) {
	if len(pool) == 0 {
		return facts.Fact{}, &ConfigurationError{Reason: "fact pool is empty"}
	}
	eligible := s.Eligible(pool, state)
	if len(eligible) == 0 {
		return facts.Fact{}, &ConfigurationError{
			Reason: fmt.Sprintf("all %d facts are inside the posting window of %d; grow the pool or shrink bot.window", len(pool), s.Window),
		}
	}
	return eligible[s.rand().IntN(len(eligible))], nil
}

// Run selects, formats and, unless dryRun, publishes one fact and records
// it in state. Persisting state is left to the caller.
func (s *Scheduler) Run(ctx context.Context, pool []facts.Fact, state *State, dryRun bool) (*Outcome, error) {
	logger := logging.Or(s.Logger)

	fact, err := s.Select(pool, state)
	if err != nil {
		return nil, err
	}
	out := &Outcome{FactID: fact.ID, Text: facts.FormatPost(fact, s.Ceiling)}

	if dryRun {
		out.Status = StatusDryRun
		logger.Info("dry run", "fact", fact.ID)
		return out, nil
	}
	if s.Publisher == nil {
		return nil, &ConfigurationError{Reason: "no publisher configured"}
	}

	remoteID, attempts, failures, err := s.publish(ctx, out.Text)
	out.Attempts = attempts
	if err != nil {
		last := err
		if n := len(failures); n > 0 {
			last = failures[n-1]
		}
		s.remember(ctx, storage.Attempt{
			FactID: fact.ID, Status: storage.StatusFailed, Tries: attempts,
			Error: last.Error(), Text: out.Text,
		})
		logger.Error("publish failed", "fact", fact.ID, "attempts", attempts, "err", last)
		return nil, &PublishError{FactID: fact.ID, Attempts: attempts, Err: last}
	}

	out.Status = StatusPosted
	out.RemoteID = remoteID
	if n := len(failures); n > 0 {
		out.Warning = fmt.Sprintf("succeeded after %d failed attempt(s): %v", n, failures[n-1])
		logger.Warn("publish needed retries", "fact", fact.ID, "attempts", attempts)
	}
	state.Record(fact.ID)
	s.remember(ctx, storage.Attempt{
		FactID: fact.ID, Status: storage.StatusPosted, RemoteID: remoteID,
		Tries: attempts, Warning: out.Warning, Text: out.Text,
	})
	logger.Info("posted fact", "fact", fact.ID, "remote_id", remoteID)
	return out, nil
}

// Post loads the state at statePath, runs once and saves the state when
// a fact was published.
func (s *Scheduler) Post(ctx context.Context, pool []facts.Fact, statePath string, dryRun bool) (*Outcome, *State, error) {
	state, err := LoadState(statePath)
	if err != nil {
		return nil, nil, err
	}
	out, err := s.Run(ctx, pool, state, dryRun)
	if err != nil {
		return nil, state, err
	}
	if out.Status == StatusPosted {
		if err := state.Save(statePath); err != nil {
			return out, state, err
		}
	}
	return out, state, nil
}

// publish sends text through a failsafe retry policy. It returns the
// remote id, the number of attempts made and every failure seen.
func (s *Scheduler) publish(ctx context.Context, text string) (string, int, []error, error) {
	logger := logging.Or(s.Logger)
	policy := retrypolicy.NewBuilder[string]().
		HandleIf(func(_ string, err error) bool {
			return err != nil && !IsPermanent(err)
		}).
		WithMaxRetries(max(s.Retries, 0)).
		Build()

	attempts := 0
	var failures []error
	id, err := failsafe.With(policy).WithContext(ctx).Get(func() (string, error) {
		attempts++
		if attempts > 1 {
			delay := s.Backoff * time.Duration(attempts-1)
			if err := s.sleep(ctx, delay); err != nil {
				return "", Permanent(err)
			}
		}
		id, err := s.Publisher.Publish(ctx, text)
		if err != nil {
			failures = append(failures, err)
			logger.Warn("publish attempt failed", "attempt", attempts, "permanent", IsPermanent(err), "err", err)
		}
		return id, err
	})
	return id, attempts, failures, err
}

func (s *Scheduler) remember(ctx context.Context, a storage.Attempt) {
	if s.History == nil {
		return
	}
	a.At = s.now()
	if err := s.History.RecordAttempt(ctx, &a); err != nil {
		logging.Or(s.Logger).Warn("could not record publish attempt", "fact", a.FactID, "err", err)
	}
}

func (s *Scheduler) rand() *rand.Rand {
	if s.Rand == nil {
		s.Rand = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	return s.Rand
}

func (s *Scheduler) sleep(ctx context.Context, d time.Duration) error {
	if s.Sleep != nil {
		return s.Sleep(ctx, d)
	}
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *Scheduler) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Report summarizes how far through the pool the bot is.
type Report struct {
	Total    int
	Posted   int
	Remain   int
	InWindow int
	Eligible int
	// Days is how long the never-posted facts last at PerDay posts a day.
	Days   int
	PerDay int
}

// Status reports progress through pool given state.
func Status(pool []facts.Fact, state *State, window, perDay int) Report {
	ids := make(map[int]bool, len(pool))
	for _, f := range pool {
		ids[f.ID] = true
	}
	posted := make(map[int]bool)
	for _, id := range state.RecentIDs {
		if ids[id] {
			posted[id] = true
		}
	}
	inWindow := make(map[int]bool)
	for _, id := range state.Window(window) {
		if ids[id] {
			inWindow[id] = true
		}
	}

	r := Report{
		Total:    len(pool),
		Posted:   len(posted),
		InWindow: len(inWindow),
		PerDay:   perDay,
	}
	r.Remain = r.Total - r.Posted
	r.Eligible = r.Total - r.InWindow
	if perDay > 0 {
		r.Days = r.Remain / perDay
	}
	return r
}
