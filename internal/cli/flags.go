package cli

import "github.com/runnerr0/factbook/internal/posting"

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable debug logging"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// MineCommand runs every mining rule over the post corpus.
type MineCommand struct {
	Posts string `long:"posts" description:"Post corpus in JSON Lines (default: paths.posts)"`
	Out   string `long:"out" description:"Candidate CSV to write (default: paths.candidates)"`

	globals *GlobalFlags
	version string
}

// CalendarCommand groups the canonical calendar subcommands.
type CalendarCommand struct{}

// CalendarCurateCommand reduces candidates to the canonical calendar.
type CalendarCurateCommand struct {
	Candidates []string `long:"candidates" description:"Candidate CSV (repeatable, default: paths.candidates)"`
	Out        string   `long:"out" description:"Calendar CSV to write (default: paths.calendar)"`
	Hash       string   `long:"hash" description:"Checksum sidecar to write (default: paths.checksum)"`

	globals *GlobalFlags
	version string
}

// CalendarValidateCommand checks the calendar and its checksum.
type CalendarValidateCommand struct {
	Calendar string `long:"calendar" description:"Calendar CSV (default: paths.calendar)"`
	Hash     string `long:"hash" description:"Checksum sidecar (default: paths.checksum)"`

	globals *GlobalFlags
	version string
}

// CalendarChecksumCommand prints, and optionally writes, the calendar digest.
type CalendarChecksumCommand struct {
	Calendar string `long:"calendar" description:"Calendar CSV (default: paths.calendar)"`
	Write    bool   `long:"write" description:"Write the digest to the checksum sidecar"`
	Hash     string `long:"hash" description:"Checksum sidecar (default: paths.checksum)"`

	globals *GlobalFlags
	version string
}

// CalendarSnapshotCommand copies the calendar under a timestamped name.
type CalendarSnapshotCommand struct {
	Calendar string `long:"calendar" description:"Calendar CSV (default: paths.calendar)"`
	Dest     string `long:"dest" description:"Snapshot directory (default: paths.snapshots)"`

	globals *GlobalFlags
	version string
}

// BotCommand groups the posting bot subcommands.
type BotCommand struct{}

// BotBuildCommand assembles the posting pool from CSV sources.
type BotBuildCommand struct {
	Sources   []string `long:"source" description:"Fact CSV (repeatable, default: bot.sources)"`
	Out       string   `long:"out" description:"Fact pool JSON to write (default: paths.facts)"`
	MaxLength int      `long:"max-length" description:"Drop facts longer than this (default: bot.max_length)"`

	globals *GlobalFlags
	version string
}

// BotValidateCommand checks the posting pool.
type BotValidateCommand struct {
	Facts     string `long:"facts" description:"Fact pool JSON (default: paths.facts)"`
	MaxLength int    `long:"max-length" description:"Maximum text length (default: bot.max_length)"`

	globals *GlobalFlags
	version string
}

// BotTrimCommand rewrites fact text with the trim rule table.
type BotTrimCommand struct {
	Facts  string `long:"facts" description:"Fact pool JSON (default: paths.facts)"`
	DryRun bool   `long:"dry-run" description:"Show changes without writing"`

	globals *GlobalFlags
	version string
}

// BotStatusCommand reports progress through the pool.
type BotStatusCommand struct {
	Facts string `long:"facts" description:"Fact pool JSON (default: paths.facts)"`
	State string `long:"state" description:"Posting state JSON (default: paths.state)"`

	globals *GlobalFlags
	version string
}

// BotPostCommand publishes one fact.
type BotPostCommand struct {
	Facts  string `long:"facts" description:"Fact pool JSON (default: paths.facts)"`
	State  string `long:"state" description:"Posting state JSON (default: paths.state)"`
	DryRun bool   `long:"dry-run" description:"Print the post instead of publishing it"`

	globals *GlobalFlags
	version string
	// publisher replaces the configured webhook when set.
	publisher posting.Publisher
}

// BotHistoryCommand lists recent publish attempts.
type BotHistoryCommand struct {
	Limit int `long:"limit" description:"Maximum attempts to show" default:"20"`

	globals *GlobalFlags
	version string
}
