package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/runnerr0/factbook/internal/calendar"
	"github.com/runnerr0/factbook/internal/config"
	"github.com/runnerr0/factbook/internal/facts"
	"github.com/runnerr0/factbook/internal/logging"
)

// Execute implements the go-flags Commander interface for CalendarCurateCommand.
func (c *CalendarCurateCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	return c.run(context.Background(), cfg)
}

func (c *CalendarCurateCommand) run(_ context.Context, cfg *config.Config) error {
	sources := c.Candidates
	if len(sources) == 0 {
		p, err := cfg.ResolvePath(cfg.Paths.Candidates)
		if err != nil {
			return err
		}
		sources = []string{p}
	}
	outPath, err := pathOr(cfg, c.Out, cfg.Paths.Calendar)
	if err != nil {
		return err
	}
	hashPath, err := pathOr(cfg, c.Hash, cfg.Paths.Checksum)
	if err != nil {
		return err
	}

	var candidates []facts.Fact
	for _, src := range sources {
		fs, err := facts.ReadCSVFile(src)
		if err != nil {
			return err
		}
		candidates = append(candidates, fs...)
	}

	curator := calendar.NewCurator(cfg.Calendar, logging.WithPrefix("curate"))
	res, err := curator.Curate(candidates)
	if err != nil {
		return err
	}
	digest, err := calendar.WriteCanonical(outPath, hashPath, res.Facts)
	if err != nil {
		return err
	}

	if c.globals != nil && c.globals.JSON {
		return printJSON(map[string]any{
			"candidates": len(candidates),
			"facts":      len(res.Facts),
			"quotas":     res.Quotas,
			"dropped":    res.Dropped,
			"cut":        res.Cut,
			"calendar":   outPath,
			"checksum":   digest,
		})
	}

	fmt.Printf("Curated %d facts from %s candidates\n", len(res.Facts), facts.FormatNumber(len(candidates)))
	for _, t := range sortedTypes(res.Quotas) {
		fmt.Printf("  %-10s %4d kept  %4d cut\n", t, res.Quotas[t], res.Cut[t])
	}
	fmt.Printf("Wrote %s\n", outPath)
	fmt.Printf("SHA-256 %s\n", digest)
	return nil
}

// Execute implements the go-flags Commander interface for CalendarValidateCommand.
func (c *CalendarValidateCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	return c.run(cfg)
}

func (c *CalendarValidateCommand) run(cfg *config.Config) error {
	calPath, err := pathOr(cfg, c.Calendar, cfg.Paths.Calendar)
	if err != nil {
		return err
	}
	hashPath, err := pathOr(cfg, c.Hash, cfg.Paths.Checksum)
	if err != nil {
		return err
	}

	limits := facts.Limits{MaxLength: cfg.Calendar.MaxLength, Ceiling: cfg.Calendar.Ceiling}
	v, err := calendar.VerifyCanonical(calPath, hashPath, cfg.Calendar.Target, limits)
	var verr *facts.ValidationError
	if errors.As(err, &verr) {
		if c.globals != nil && c.globals.JSON {
			if perr := printJSON(map[string]any{"valid": false, "ids": verr.IDs(), "problems": problemStrings(verr)}); perr != nil {
				return perr
			}
		} else {
			fmt.Printf("%s is invalid (%d problems):\n", calPath, len(verr.Problems))
			printProblems(verr)
		}
		return err
	}
	if err != nil {
		return err
	}

	if c.globals != nil && c.globals.JSON {
		return printJSON(map[string]any{
			"valid":            true,
			"rows":             v.Rows,
			"checksum":         v.Digest,
			"checksum_checked": v.ChecksumChecked,
		})
	}
	fmt.Printf("%s is valid: %d facts\n", calPath, v.Rows)
	if v.ChecksumChecked {
		fmt.Printf("Checksum matches %s\n", hashPath)
	} else {
		logging.Warn("checksum sidecar missing", "path", hashPath)
		fmt.Printf("No checksum sidecar at %s; checksum not verified\n", hashPath)
	}
	return nil
}

// Execute implements the go-flags Commander interface for CalendarChecksumCommand.
func (c *CalendarChecksumCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	return c.run(cfg)
}

func (c *CalendarChecksumCommand) run(cfg *config.Config) error {
	calPath, err := pathOr(cfg, c.Calendar, cfg.Paths.Calendar)
	if err != nil {
		return err
	}
	digest, err := calendar.Checksum(calPath)
	if err != nil {
		return err
	}

	var hashPath string
	if c.Write {
		hashPath, err = pathOr(cfg, c.Hash, cfg.Paths.Checksum)
		if err != nil {
			return err
		}
		if err := facts.WriteAtomic(hashPath, []byte(calendar.ChecksumLine(digest, calPath))); err != nil {
			return fmt.Errorf("write checksum: %w", err)
		}
	}

	if c.globals != nil && c.globals.JSON {
		out := map[string]any{"calendar": calPath, "checksum": digest}
		if hashPath != "" {
			out["written"] = hashPath
		}
		return printJSON(out)
	}
	fmt.Print(calendar.ChecksumLine(digest, calPath))
	return nil
}

// Execute implements the go-flags Commander interface for CalendarSnapshotCommand.
func (c *CalendarSnapshotCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	return c.run(cfg, time.Now())
}

func (c *CalendarSnapshotCommand) run(cfg *config.Config, now time.Time) error {
	calPath, err := pathOr(cfg, c.Calendar, cfg.Paths.Calendar)
	if err != nil {
		return err
	}
	dest, err := pathOr(cfg, c.Dest, cfg.Paths.Snapshots)
	if err != nil {
		return err
	}

	path, err := calendar.Snapshot(calPath, dest, now)
	if err != nil {
		return err
	}
	if c.globals != nil && c.globals.JSON {
		return printJSON(map[string]any{"snapshot": path})
	}
	fmt.Printf("Snapshot written to %s\n", path)
	return nil
}

func problemStrings(verr *facts.ValidationError) []string {
	out := make([]string, len(verr.Problems))
	for i, p := range verr.Problems {
		out[i] = p.String()
	}
	return out
}
