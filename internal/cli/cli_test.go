package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	goflags "github.com/jessevdk/go-flags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseOnly builds a parser that records the matched command without running it.
func parseOnly(t *testing.T, args ...string) (*GlobalFlags, *commands, goflags.Commander) {
	t.Helper()
	parser, globals, cmds := buildParser("test")
	var matched goflags.Commander
	parser.CommandHandler = func(cmd goflags.Commander, _ []string) error {
		matched = cmd
		return nil
	}
	_, err := parser.ParseArgs(args)
	require.NoError(t, err)
	return globals, cmds, matched
}

func TestVersionFlag(t *testing.T) {
	var err error
	output := captureOutput(t, func() {
		err = RunWithArgs("1.2.3", []string{"--version"})
	})
	assert.NoError(t, err)
	assert.Equal(t, "factbook 1.2.3", strings.TrimSpace(output))
}

func TestHelpFlagDoesNotError(t *testing.T) {
	err := RunWithArgs("test", []string{"--help"})
	assert.NoError(t, err)
}

func TestAllSubcommandsExist(t *testing.T) {
	parser, _, _ := buildParser("test")

	assert.NotNil(t, parser.Find("mine"))
	cal := parser.Find("calendar")
	require.NotNil(t, cal)
	for _, name := range []string{"curate", "validate", "checksum", "snapshot"} {
		assert.NotNil(t, cal.Find(name), "calendar %s should exist", name)
	}
	bot := parser.Find("bot")
	require.NotNil(t, bot)
	for _, name := range []string{"build", "validate", "trim", "status", "post", "history"} {
		assert.NotNil(t, bot.Find(name), "bot %s should exist", name)
	}
}

func TestUnknownSubcommandFails(t *testing.T) {
	parser, _, _ := buildParser("test")
	parser.Options &^= goflags.PrintErrors
	_, err := parser.ParseArgs([]string{"nonexistent"})
	require.Error(t, err)
}

func TestGroupRequiresSubcommand(t *testing.T) {
	parser, _, _ := buildParser("test")
	parser.Options &^= goflags.PrintErrors
	_, err := parser.ParseArgs([]string{"calendar"})
	require.Error(t, err)
}

// --- Flags ---

func TestGlobalFlags(t *testing.T) {
	globals, _, _ := parseOnly(t, "--json", "--verbose", "--config", "/tmp/test.yaml", "bot", "status")
	assert.True(t, globals.JSON)
	assert.True(t, globals.Verbose)
	assert.Equal(t, "/tmp/test.yaml", globals.Config)
}

func TestRepeatableCandidates(t *testing.T) {
	_, cmds, matched := parseOnly(t, "calendar", "curate", "--candidates", "a.csv", "--candidates", "b.csv", "--out", "cal.csv")
	assert.Same(t, cmds.CalendarCurate, matched)
	assert.Equal(t, []string{"a.csv", "b.csv"}, cmds.CalendarCurate.Candidates)
	assert.Equal(t, "cal.csv", cmds.CalendarCurate.Out)
}

func TestBotFlags(t *testing.T) {
	_, cmds, _ := parseOnly(t, "bot", "build", "--source", "x.csv", "--source", "y.csv", "--max-length", "200")
	assert.Equal(t, []string{"x.csv", "y.csv"}, cmds.BotBuild.Sources)
	assert.Equal(t, 200, cmds.BotBuild.MaxLength)

	_, cmds, _ = parseOnly(t, "bot", "post", "--dry-run", "--facts", "f.json", "--state", "s.json")
	assert.True(t, cmds.BotPost.DryRun)
	assert.Equal(t, "f.json", cmds.BotPost.Facts)
	assert.Equal(t, "s.json", cmds.BotPost.State)

	_, cmds, _ = parseOnly(t, "bot", "trim", "--dry-run")
	assert.True(t, cmds.BotTrim.DryRun)
}

func TestHistoryLimitDefault(t *testing.T) {
	_, cmds, _ := parseOnly(t, "bot", "history")
	assert.Equal(t, 20, cmds.BotHistory.Limit)
}

// --- End to end ---

func TestRunWithArgs_BotStatusFromConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FACTBOOK_DATA_DIR", "")
	writeFile(t, filepath.Join(dir, "bot", "facts.json"), `[
  {"id": 1, "text": "One.", "source_url": null, "type": "quirk", "slug": null, "source_file": "a.csv"},
  {"id": 2, "text": "Two.", "source_url": null, "type": "quirk", "slug": null, "source_file": "a.csv"}
]`)
	configPath := filepath.Join(dir, "config.yaml")
	writeFile(t, configPath, "paths:\n  data_dir: "+dir+"\nbot:\n  window: 1\n")

	var err error
	output := captureOutput(t, func() {
		err = RunWithArgs("9.9.9", []string{"--config", configPath, "--json", "bot", "status"})
	})
	require.NoError(t, err)
	assert.Contains(t, output, `"version": "9.9.9"`)
	assert.Contains(t, output, `"total": 2`)
	assert.Contains(t, output, `"eligible": 2`)
}

func TestRunWithArgs_InvalidConfigFails(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	writeFile(t, configPath, "calendar:\n  target: 0\n")

	err := RunWithArgs("test", []string{"--config", configPath, "bot", "status"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "calendar.target")
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}
