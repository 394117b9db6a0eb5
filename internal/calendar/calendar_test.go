package calendar

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/factbook/internal/config"
	"github.com/runnerr0/factbook/internal/facts"
	"github.com/runnerr0/factbook/internal/logging"
)

func testCurator(target int) *Curator {
	cfg := config.DefaultConfig().Calendar
	cfg.Target = target
	return NewCurator(cfg, logging.Discard())
}

func fact(typ, text string) facts.Fact {
	return facts.Fact{Type: typ, Text: text, SourceLink: "https://blog.example.com/p"}
}

// --- Scoring ---

func TestScore(t *testing.T) {
	s := ScoringFromConfig(config.DefaultConfig().Calendar)

	tests := []struct {
		name string
		fact facts.Fact
		want int
	}{
		{"plain", fact(facts.TypeOTD, "A quiet Tuesday."), 0},
		{"anchor", fact(facts.TypeOTD, "A theorem about primes."), 3},
		{"anchor counts once", fact(facts.TypeOTD, "A theorem and its proof."), 3},
		{"topic", fact(facts.TypeOTD, "Euler's favorite identity."), 2},
		{"whole words only", fact(facts.TypeOTD, "A spiral staircase."), 0},
		{"penalty", fact(facts.TypeQuirk, "Monday has 12 blog posts."), -2},
		{"phrase penalty", fact(facts.TypeQuirk, "A help wanted note."), -2},
		{"recent", facts.Fact{Type: facts.TypeOTD, Text: "Hello.", Date: "2021-05-01T00:00:00"}, 1},
		{"old", facts.Fact{Type: facts.TypeOTD, Text: "Hello.", Date: "2019-05-01T00:00:00"}, 0},
		{"rarity keyword", fact(facts.TypeRarity, "The word 'syzygy' appears once."), 3},
		{"rarity keyword on other type", fact(facts.TypeQuirk, "The word 'syzygy' appears once."), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Score(tt.fact))
		})
	}
}

// --- Allocation ---

func TestAllocate(t *testing.T) {
	tests := []struct {
		name   string
		types  []string
		limits map[string]int
		target int
		want   map[string]int
	}{
		{"even split", []string{"a", "b", "c"}, map[string]int{"a": 10, "b": 10, "c": 10}, 9, map[string]int{"a": 3, "b": 3, "c": 3}},
		{"remainder to earliest", []string{"a", "b", "c"}, map[string]int{"a": 10, "b": 10, "c": 10}, 10, map[string]int{"a": 4, "b": 3, "c": 3}},
		{"small types saturate", []string{"a", "b", "c"}, map[string]int{"a": 10, "b": 2, "c": 5}, 12, map[string]int{"a": 5, "b": 2, "c": 5}},
		{"exact fit", []string{"a", "b"}, map[string]int{"a": 1, "b": 4}, 5, map[string]int{"a": 1, "b": 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := allocate(tt.types, tt.limits, tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := allocate([]string{"a"}, map[string]int{"a": 3}, 4)
	assert.ErrorIs(t, err, ErrTooFewCandidates)
}

// --- Curate ---

func curationPool() []facts.Fact {
	return []facts.Fact{
		fact(facts.TypeRarity, "Token qwxz appears once."),
		fact(facts.TypeOTD, "On March 14, 2015: Circles was published."),
		fact(facts.TypeQuirk, "Monday has 2 blog posts."),
		fact(facts.TypeRarity, "The word syzygy appears once."),
		fact(facts.TypeQuirk, "Token qwxz appears once."),
		fact(facts.TypeOTD, "The earliest March 14 post was Circles."),
		fact(facts.TypeRarity, "Token blorp shows up once."),
		fact(facts.TypeQuirk, "   "),
		fact(facts.TypeQuirk, "Fibonacci numbers appear often."),
		fact(facts.TypeRarity, "The theorem of Zorn is cited once."),
		fact(facts.TypeRarity, strings.Repeat("x", 261)),
		fact(facts.TypeOTD, "The most recent March 14 post was Spigots."),
		fact(facts.TypeRarity, "The palindrome racecar appears once."),
		fact(facts.TypeQuirk, "The longest streak was 9 days."),
		fact(facts.TypeRarity, "Token spiral appears once."),
	}
}

func TestCurate_RebalancesByScoreAndKeepsOrder(t *testing.T) {
	res, err := testCurator(8).Curate(curationPool())
	require.NoError(t, err)

	var got []string
	for _, f := range res.Facts {
		got = append(got, f.Text)
	}
	assert.Equal(t, []string{
		"On March 14, 2015: Circles was published.",
		"The word syzygy appears once.",
		"The earliest March 14 post was Circles.",
		"Fibonacci numbers appear often.",
		"The theorem of Zorn is cited once.",
		"The most recent March 14 post was Spigots.",
		"The palindrome racecar appears once.",
		"The longest streak was 9 days.",
	}, got)

	for i, f := range res.Facts {
		assert.Equal(t, i+1, f.ID)
	}
	assert.Equal(t, map[string]int{facts.TypeRarity: 3, facts.TypeOTD: 3, facts.TypeQuirk: 2}, res.Quotas)
	assert.Equal(t, map[string]int{DropEmpty: 1, DropDuplicate: 1, DropTooLong: 1}, res.Dropped)
	assert.Equal(t, map[string]int{facts.TypeRarity: 3, facts.TypeQuirk: 1}, res.Cut)
}

func TestCurate_TiesFallBackToPosition(t *testing.T) {
	pool := []facts.Fact{
		fact(facts.TypeQuirk, "First."),
		fact(facts.TypeQuirk, "Second."),
		fact(facts.TypeQuirk, "Third."),
	}
	res, err := testCurator(2).Curate(pool)
	require.NoError(t, err)
	assert.Equal(t, "First.", res.Facts[0].Text)
	assert.Equal(t, "Second.", res.Facts[1].Text)
}

func TestCurate_DropsUntypedCandidates(t *testing.T) {
	dir := t.TempDir()
	pool := []facts.Fact{
		{Text: "Typeless fact from an API caller."},
		fact(facts.TypeQuirk, "Typeless fact from an API caller."),
		fact(facts.TypeQuirk, "Second."),
		{Type: "  ", Text: "Blank type."},
	}
	res, err := testCurator(2).Curate(pool)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{DropNoType: 2}, res.Dropped)
	require.Len(t, res.Facts, 2)
	assert.Equal(t, "Typeless fact from an API caller.", res.Facts[0].Text)
	assert.Equal(t, facts.TypeQuirk, res.Facts[0].Type)

	calPath := filepath.Join(dir, "calendar.csv")
	hashPath := filepath.Join(dir, "calendar.sha256")
	_, err = WriteCanonical(calPath, hashPath, res.Facts)
	require.NoError(t, err)
	_, err = VerifyCanonical(calPath, hashPath, 2, facts.DefaultLimits)
	assert.NoError(t, err)
}

func TestCurate_TooFewCandidates(t *testing.T) {
	_, err := testCurator(20).Curate(curationPool())
	assert.ErrorIs(t, err, ErrTooFewCandidates)
	assert.ErrorContains(t, err, "12 eligible, need 20")
}

func TestCurate_CapsCanLeaveTooFew(t *testing.T) {
	c := testCurator(8)
	c.Caps = map[string]int{facts.TypeRarity: 1, facts.TypeQuirk: 1}

	_, err := c.Curate(curationPool())
	assert.ErrorIs(t, err, ErrTooFewCandidates)
	assert.ErrorContains(t, err, "type caps allow 5 facts")
}

// bigPool returns n unique candidates spread unevenly over four types.
func bigPool(n int) []facts.Fact {
	types := []string{facts.TypeRarity, facts.TypeRarity, facts.TypeOTD, facts.TypeQuirk, facts.TypeRarity, facts.TypeFirst}
	out := make([]facts.Fact, n)
	for i := range out {
		out[i] = facts.Fact{
			Type:       types[i%len(types)],
			Text:       fmt.Sprintf("Candidate fact number %d about a theorem.", i),
			SourceLink: fmt.Sprintf("https://blog.example.com/%d", i),
			Date:       fmt.Sprintf("%d-01-01T00:00:00", 2008+i%16),
		}
	}
	return out
}

func TestCurate_FullCalendarIsDenseAndValid(t *testing.T) {
	res, err := testCurator(365).Curate(bigPool(900))
	require.NoError(t, err)

	require.Len(t, res.Facts, 365)
	for i, f := range res.Facts {
		assert.Equal(t, i+1, f.ID)
	}
	assert.NoError(t, facts.Validate(res.Facts, facts.DefaultLimits))
}

func TestCurate_Idempotent(t *testing.T) {
	pool := bigPool(700)

	first, err := testCurator(365).Curate(pool)
	require.NoError(t, err)
	second, err := testCurator(365).Curate(pool)
	require.NoError(t, err)

	if diff := cmp.Diff(first.Facts, second.Facts); diff != "" {
		t.Fatalf("curation is not idempotent (-first +second):\n%s", diff)
	}

	a, err := facts.EncodeCSV(first.Facts)
	require.NoError(t, err)
	b, err := facts.EncodeCSV(second.Facts)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(a, b))
}

// --- Canonical file ---

func writeCalendar(t *testing.T) (string, string, string) {
	t.Helper()
	dir := t.TempDir()
	calPath := filepath.Join(dir, "calendar_365.csv")
	hashPath := filepath.Join(dir, "final", "canonical.sha256")

	res, err := testCurator(365).Curate(bigPool(400))
	require.NoError(t, err)
	digest, err := WriteCanonical(calPath, hashPath, res.Facts)
	require.NoError(t, err)
	return calPath, hashPath, digest
}

func TestWriteCanonical_ChecksumRoundTrip(t *testing.T) {
	calPath, hashPath, digest := writeCalendar(t)

	onDisk, err := Checksum(calPath)
	require.NoError(t, err)
	assert.Equal(t, digest, onDisk)

	sidecar, err := os.ReadFile(hashPath)
	require.NoError(t, err)
	assert.Equal(t, digest+"  calendar_365.csv\n", string(sidecar))

	v, err := VerifyCanonical(calPath, hashPath, 365, facts.DefaultLimits)
	require.NoError(t, err)
	assert.Equal(t, 365, v.Rows)
	assert.True(t, v.ChecksumChecked)
	assert.Equal(t, digest, v.Digest)
}

func TestVerifyCanonical_DetectsMutation(t *testing.T) {
	calPath, hashPath, _ := writeCalendar(t)

	data, err := os.ReadFile(calPath)
	require.NoError(t, err)
	i := bytes.Index(data, []byte("Candidate"))
	require.Positive(t, i)
	data[i] = 'c'
	require.NoError(t, os.WriteFile(calPath, data, 0644))

	_, err = VerifyCanonical(calPath, hashPath, 365, facts.DefaultLimits)
	var verr *facts.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, err.Error(), "checksum mismatch")
}

func TestVerifyCanonical_MissingSidecarSkipsChecksum(t *testing.T) {
	calPath, hashPath, _ := writeCalendar(t)
	require.NoError(t, os.Remove(hashPath))

	v, err := VerifyCanonical(calPath, hashPath, 365, facts.DefaultLimits)
	require.NoError(t, err)
	assert.False(t, v.ChecksumChecked)
}

func TestVerifyCanonical_CollectsEveryProblem(t *testing.T) {
	dir := t.TempDir()
	calPath := filepath.Join(dir, "calendar.csv")
	content := "id,type,fact,source_link,date,slug\n" +
		"1,rarity,Alpha.,,,\n" +
		"3,,Beta.,,,\n" +
		"4,otd,Alpha.,,,\n"
	require.NoError(t, os.WriteFile(calPath, []byte(content), 0644))

	_, err := VerifyCanonical(calPath, "", 365, facts.DefaultLimits)
	var verr *facts.ValidationError
	require.True(t, errors.As(err, &verr))

	msg := err.Error()
	assert.Contains(t, msg, "expected 365 rows, found 3")
	assert.Contains(t, msg, `row 2 has id "3", want 2`)
	assert.Contains(t, msg, `row 3 has id "4", want 3`)
	assert.Contains(t, msg, "row 2 has an empty type")
	assert.Contains(t, msg, "fact id 4: duplicate text (same as fact id 1)")
}

func TestVerifyCanonical_MissingColumns(t *testing.T) {
	dir := t.TempDir()
	calPath := filepath.Join(dir, "calendar.csv")
	require.NoError(t, os.WriteFile(calPath, []byte("id,fact\n1,Alpha.\n"), 0644))

	_, err := VerifyCanonical(calPath, "", 1, facts.DefaultLimits)
	assert.ErrorContains(t, err, "missing required columns: type, source_link, date, slug")
}

func TestReadChecksumFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.sha256")
	require.NoError(t, os.WriteFile(path, []byte("ABCDEF  calendar.csv\n"), 0644))

	got, err := ReadChecksumFile(path)
	require.NoError(t, err)
	assert.Equal(t, "abcdef", got)

	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0644))
	_, err = ReadChecksumFile(path)
	assert.ErrorContains(t, err, "is empty")
}

// --- Snapshot ---

func TestSnapshot(t *testing.T) {
	calPath, _, _ := writeCalendar(t)
	before, err := os.ReadFile(calPath)
	require.NoError(t, err)

	dest := t.TempDir()
	now := time.Date(2024, 3, 14, 15, 9, 26, 0, time.FixedZone("EST", -5*3600))
	path, err := Snapshot(calPath, dest, now)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dest, "calendar_365-20240314-200926.csv"), path)
	copied, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, copied)

	after, err := os.ReadFile(calPath)
	require.NoError(t, err)
	assert.Equal(t, before, after, "source untouched")
}
