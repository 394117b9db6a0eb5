package facts

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/charmbracelet/log"
)

// BuildResult describes a pool assembled from CSV sources.
type BuildResult struct {
	Facts      []Fact
	Sources    []string
	Missing    []string
	Duplicates int
	TooLong    int
	// OverCeiling counts facts that fit MaxLength but not the post
	// ceiling once their link is appended.
	OverCeiling int
}

// Build concatenates the CSV sources in order, skipping files that do not
// exist. Duplicate text is dropped (first wins), ids are assigned 1..N over
// the deduplicated sequence, then facts that break limits are dropped so
// the result always passes Validate.
func Build(sources []string, limits Limits, logger *log.Logger) (*BuildResult, error) {
	res := &BuildResult{}
	pool := NewPool()

	for _, path := range sources {
		facts, err := ReadCSVFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			res.Missing = append(res.Missing, path)
			if logger != nil {
				logger.Warn("fact source missing, skipping", "path", path)
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("build fact pool: %w", err)
		}
		res.Sources = append(res.Sources, path)

		for _, f := range facts {
			f.ID = 0
			if !pool.Add(f) {
				res.Duplicates++
			}
		}
	}

	for _, f := range Renumber(pool.Facts()) {
		switch {
		case limits.MaxLength > 0 && f.Length() > limits.MaxLength:
			res.TooLong++
			continue
		case limits.Ceiling > 0 && PostLength(f) > limits.Ceiling:
			res.OverCeiling++
			continue
		}
		res.Facts = append(res.Facts, f)
	}

	if logger != nil {
		logger.Info("fact pool built",
			"sources", len(res.Sources),
			"facts", len(res.Facts),
			"duplicates", res.Duplicates,
			"too_long", res.TooLong,
			"over_ceiling", res.OverCeiling)
	}
	return res, nil
}
