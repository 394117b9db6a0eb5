package calendar

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/runnerr0/factbook/internal/config"
	"github.com/runnerr0/factbook/internal/facts"
	"github.com/runnerr0/factbook/internal/logging"
)

// ErrTooFewCandidates is returned when filtering or type caps leave fewer
// facts than the calendar needs. No partial calendar is produced.
var ErrTooFewCandidates = errors.New("too few candidates")

// Drop reasons reported by Curate.
const (
	DropEmpty     = "empty"
	DropNoType    = "no_type"
	DropDuplicate = "duplicate"
	DropTooLong   = "too_long"
)

// Curator reduces a candidate pool to exactly Target facts.
type Curator struct {
	Target  int
	Limits  facts.Limits
	Scoring Scoring
	// Caps bounds the slots of individual types. Types absent from Caps
	// are unbounded.
	Caps   map[string]int
	Logger *log.Logger
}

// NewCurator builds a Curator from the calendar config.
func NewCurator(cfg config.CalendarConfig, logger *log.Logger) *Curator {
	return &Curator{
		Target:  cfg.Target,
		Limits:  facts.Limits{MaxLength: cfg.MaxLength, Ceiling: cfg.Ceiling},
		Scoring: ScoringFromConfig(cfg),
		Caps:    cfg.TypeCaps,
		Logger:  logging.Or(logger),
	}
}

// Result is a curated calendar plus what was cut to get there.
type Result struct {
	Facts []facts.Fact
	// Quotas is the number of slots granted to each type.
	Quotas map[string]int
	// Dropped counts candidates removed before allocation, by reason.
	Dropped map[string]int
	// Cut counts eligible candidates that lost out to higher scores, by type.
	Cut map[string]int
}

// Curate filters, rebalances and renumbers candidates. Identical input
// and configuration always yield identical output.
//
// Slots are shared between types by max-min fairness: every type gets an
// equal share unless it has fewer eligible facts, and the slack goes to
// the remaining types. Within a type the highest scores win; equal scores
// keep the earlier candidate. Survivors keep their relative order and are
// numbered 1..Target.
func (c *Curator) Curate(candidates []facts.Fact) (*Result, error) {
	logger := logging.Or(c.Logger)
	res := &Result{
		Quotas:  make(map[string]int),
		Dropped: make(map[string]int),
		Cut:     make(map[string]int),
	}

	eligible := c.filter(candidates, res.Dropped)
	for _, reason := range []string{DropEmpty, DropNoType, DropDuplicate, DropTooLong} {
		if n := res.Dropped[reason]; n > 0 {
			logger.Info("dropped candidates", "reason", reason, "count", n)
		}
	}
	if len(eligible) < c.Target {
		return nil, fmt.Errorf("curate calendar: %w: %d eligible, need %d", ErrTooFewCandidates, len(eligible), c.Target)
	}

	// Types in order of first appearance.
	var types []string
	byType := make(map[string][]int)
	for i, f := range eligible {
		if _, ok := byType[f.Type]; !ok {
			types = append(types, f.Type)
		}
		byType[f.Type] = append(byType[f.Type], i)
	}

	limits := make(map[string]int, len(types))
	for _, t := range types {
		limits[t] = len(byType[t])
		if limit, ok := c.Caps[t]; ok && limit >= 0 && limit < limits[t] {
			limits[t] = limit
		}
	}
	quotas, err := allocate(types, limits, c.Target)
	if err != nil {
		return nil, fmt.Errorf("curate calendar: %w", err)
	}

	keep := make([]bool, len(eligible))
	for _, t := range types {
		idx := slices.Clone(byType[t])
		scores := make(map[int]int, len(idx))
		for _, i := range idx {
			scores[i] = c.Scoring.Score(eligible[i])
		}
		slices.SortStableFunc(idx, func(a, b int) int {
			return cmp.Or(cmp.Compare(scores[b], scores[a]), cmp.Compare(a, b))
		})
		for _, i := range idx[:quotas[t]] {
			keep[i] = true
		}
		res.Quotas[t] = quotas[t]
		if cut := len(idx) - quotas[t]; cut > 0 {
			res.Cut[t] = cut
			logger.Debug("rebalanced type", "type", t, "eligible", len(idx), "kept", quotas[t])
		}
	}

	kept := make([]facts.Fact, 0, c.Target)
	for i, f := range eligible {
		if keep[i] {
			kept = append(kept, f)
		}
	}
	res.Facts = facts.Renumber(kept)

	logger.Info("calendar curated", "candidates", len(candidates), "eligible", len(eligible), "kept", len(res.Facts), "types", len(types))
	return res, nil
}

// filter drops empty, untyped, duplicate and over-length candidates. The
// first typed occurrence of a text wins regardless of type.
func (c *Curator) filter(candidates []facts.Fact, dropped map[string]int) []facts.Fact {
	seen := make(map[string]bool, len(candidates))
	var out []facts.Fact
	for _, f := range candidates {
		f.Text = strings.TrimSpace(f.Text)
		f.Type = strings.TrimSpace(f.Type)
		switch {
		case f.Text == "":
			dropped[DropEmpty]++
		case f.Type == "":
			dropped[DropNoType]++
		case seen[f.Text]:
			dropped[DropDuplicate]++
		case c.Limits.MaxLength > 0 && f.Length() > c.Limits.MaxLength,
			c.Limits.Ceiling > 0 && facts.PostLength(f) > c.Limits.Ceiling:
			seen[f.Text] = true
			dropped[DropTooLong]++
		default:
			seen[f.Text] = true
			out = append(out, f)
		}
	}
	return out
}

// allocate shares target slots between types by water-filling. Any type
// whose limit fits within an even share of the remaining slots is
// saturated; the rest split what is left evenly, with rounding remainders
// going one slot each to the earliest types.
func allocate(types []string, limits map[string]int, target int) (map[string]int, error) {
	total := 0
	for _, t := range types {
		total += limits[t]
	}
	if total < target {
		return nil, fmt.Errorf("%w: type caps allow %d facts, need %d", ErrTooFewCandidates, total, target)
	}

	quotas := make(map[string]int, len(types))
	remaining := target
	active := slices.Clone(types)
	for len(active) > 0 {
		share := remaining / len(active)
		var next []string
		for _, t := range active {
			if limits[t] <= share {
				quotas[t] = limits[t]
				remaining -= limits[t]
			} else {
				next = append(next, t)
			}
		}
		if len(next) == len(active) {
			break
		}
		active = next
	}
	if len(active) == 0 {
		return quotas, nil
	}

	share, extra := remaining/len(active), remaining%len(active)
	for i, t := range active {
		quotas[t] = share
		if i < extra {
			quotas[t]++
		}
	}
	return quotas, nil
}
