package cli

import (
	"errors"
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"

	"github.com/runnerr0/factbook/internal/logging"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Mine             *MineCommand
	CalendarCurate   *CalendarCurateCommand
	CalendarValidate *CalendarValidateCommand
	CalendarChecksum *CalendarChecksumCommand
	CalendarSnapshot *CalendarSnapshotCommand
	BotBuild         *BotBuildCommand
	BotValidate      *BotValidateCommand
	BotTrim          *BotTrimCommand
	BotStatus        *BotStatusCommand
	BotPost          *BotPostCommand
	BotHistory       *BotHistoryCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "factbook"
	parser.LongDescription = "Mine blog facts, curate the 365-fact calendar and post facts on a schedule."

	g := &globals
	cmds := &commands{
		Mine:             &MineCommand{globals: g, version: version},
		CalendarCurate:   &CalendarCurateCommand{globals: g, version: version},
		CalendarValidate: &CalendarValidateCommand{globals: g, version: version},
		CalendarChecksum: &CalendarChecksumCommand{globals: g, version: version},
		CalendarSnapshot: &CalendarSnapshotCommand{globals: g, version: version},
		BotBuild:         &BotBuildCommand{globals: g, version: version},
		BotValidate:      &BotValidateCommand{globals: g, version: version},
		BotTrim:          &BotTrimCommand{globals: g, version: version},
		BotStatus:        &BotStatusCommand{globals: g, version: version},
		BotPost:          &BotPostCommand{globals: g, version: version},
		BotHistory:       &BotHistoryCommand{globals: g, version: version},
	}

	parser.AddCommand("mine", "Generate calendar candidates", "Run every mining rule over the post corpus and write the candidate CSV.", cmds.Mine)

	cal, _ := parser.AddCommand("calendar", "Curate and check the canonical calendar", "Curate, validate, checksum and snapshot the canonical 365-fact calendar.", &CalendarCommand{})
	cal.AddCommand("curate", "Curate candidates into the calendar", "Filter, rebalance and renumber candidates into the canonical calendar and write its checksum.", cmds.CalendarCurate)
	cal.AddCommand("validate", "Validate the calendar", "Check row count, ids, types, fact rules and the checksum sidecar.", cmds.CalendarValidate)
	cal.AddCommand("checksum", "Print the calendar checksum", "Print the SHA-256 of the calendar, optionally writing the sidecar.", cmds.CalendarChecksum)
	cal.AddCommand("snapshot", "Snapshot the calendar", "Copy the calendar to a timestamped file.", cmds.CalendarSnapshot)

	bot, _ := parser.AddCommand("bot", "Build the fact pool and post facts", "Build, check and post from the posting-ready fact pool.", &BotCommand{})
	bot.AddCommand("build", "Build the fact pool", "Concatenate fact CSVs into the posting-ready JSON pool.", cmds.BotBuild)
	bot.AddCommand("validate", "Validate the fact pool", "Check ids, uniqueness and length limits, listing every offending fact.", cmds.BotValidate)
	bot.AddCommand("trim", "Trim commentary from facts", "Apply the trim rule table to fact text.", cmds.BotTrim)
	bot.AddCommand("status", "Show posting progress", "Show how many facts are posted, in the window and remaining.", cmds.BotStatus)
	bot.AddCommand("post", "Post one fact", "Select a fact outside the posting window and publish it.", cmds.BotPost)
	bot.AddCommand("history", "Show publish history", "List recent publish attempts from the history ledger.", cmds.BotHistory)

	return parser, &globals, cmds
}

// Run is the main entry point for the factbook CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// --version is valid without a subcommand.
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("factbook %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)
	defer logging.Close()

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	var flagsErr *goflags.Error
	if errors.As(err, &flagsErr) && flagsErr.Type == goflags.ErrHelp {
		return nil
	}
	return err
}
