package mining

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/factbook/internal/config"
	"github.com/runnerr0/factbook/internal/corpus"
	"github.com/runnerr0/factbook/internal/facts"
	"github.com/runnerr0/factbook/internal/logging"
)

// --- Fixtures ---

func mkPost(id int, title, date string, tokens ...string) corpus.Post {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	slug := strings.ToLower(strings.ReplaceAll(title, " ", "-"))
	return corpus.Post{
		ID:        id,
		Title:     title,
		Link:      "https://blog.example.com/" + slug,
		Slug:      slug,
		Date:      d,
		WordCount: 100 + id,
		Tokens:    tokens,
	}
}

// emptyConfig disables every vocabulary so each test opts in to what it needs.
func emptyConfig() config.MiningConfig {
	cfg := config.DefaultConfig().Mining
	cfg.NotableTerms = nil
	cfg.QuirkyTerms = nil
	cfg.FirstLastTerms = nil
	cfg.Symbols = nil
	cfg.SpecialDates = nil
	return cfg
}

func mine(t *testing.T, r Rule, posts []corpus.Post, cfg config.MiningConfig) []facts.Fact {
	t.Helper()
	out, err := r.Mine(context.Background(), NewInput(posts, cfg))
	require.NoError(t, err)
	return out
}

func texts(fs []facts.Fact) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Text
	}
	return out
}

// --- Rarity ---

func TestWatchRarity_ExactlyOnePost(t *testing.T) {
	cfg := emptyConfig()
	cfg.NotableTerms = []string{"zigzag"}

	posts := []corpus.Post{
		mkPost(1, "Zigzag patterns", "2020-01-01", "zigzag", "patterns"),
		mkPost(2, "Straight lines", "2020-02-01", "straight", "lines"),
	}
	out := mine(t, WatchRarity{}, posts, cfg)

	require.Len(t, out, 1)
	f := out[0]
	assert.Equal(t, facts.TypeRarity, f.Type)
	assert.Equal(t, `The word 'zigzag' appears in only one blog post: "Zigzag patterns" on January 01, 2020.`, f.Text)
	assert.Equal(t, "https://blog.example.com/zigzag-patterns", f.SourceLink)
	assert.Equal(t, "2020-01-01T00:00:00", f.Date)
	assert.Equal(t, "zigzag-patterns", f.Slug)
}

func TestWatchRarity_BandsAreExclusive(t *testing.T) {
	cfg := emptyConfig()
	cfg.NotableTerms = []string{"pancake", "fourier", "matrix"}

	var posts []corpus.Post
	posts = append(posts,
		mkPost(1, "Breakfast", "2011-03-01", "pancake"),
		mkPost(2, "Brunch", "2013-03-01", "pancake"),
	)
	for i := 0; i < 5; i++ {
		posts = append(posts, mkPost(10+i, fmt.Sprintf("Series %d", i), fmt.Sprintf("%d-06-01", 2010+i), "fourier"))
	}
	for i := 0; i < 11; i++ {
		posts = append(posts, mkPost(30+i, fmt.Sprintf("Matrix %d", i), fmt.Sprintf("%d-07-01", 2000+i), "matrix"))
	}

	out := mine(t, WatchRarity{}, posts, cfg)
	require.Len(t, out, 2, "df 11 falls outside every band")

	assert.Equal(t, `The term 'pancake' appears in only 2 posts across the entire blog: "Breakfast" (2011), "Brunch" (2013).`, out[0].Text)
	assert.NotContains(t, out[0].Text, "only one")
	assert.Equal(t, "The term 'fourier' appears in exactly 5 posts, spanning from 2010 to 2014.", out[1].Text)
	assert.Empty(t, out[1].Date, "span facts cite no single post")
}

func TestCorpusRarity(t *testing.T) {
	cfg := emptyConfig()
	cfg.RareWordMinLen = 6
	cfg.RareWordLimit = 2
	cfg.Stopwords = []string{"because"}

	posts := []corpus.Post{
		mkPost(1, "One", "2019-01-01", "syzygy", "because", "common"),
		mkPost(2, "Two", "2019-01-02", "palindromes", "common"),
		mkPost(3, "Three", "2019-01-03", "quokka", "short"),
	}
	out := mine(t, CorpusRarity{}, posts, cfg)

	assert.Equal(t, []string{
		`Only one post mentions 'palindromes': "Two" on January 02, 2019.`,
		`Only one post mentions 'quokka': "Three" on January 03, 2019.`,
	}, texts(out))
}

func TestQuirkyRarity_Bands(t *testing.T) {
	cfg := emptyConfig()
	cfg.QuirkyTerms = []string{"zephyr", "cherry", "grape", "banana", "absent"}

	var posts []corpus.Post
	id := 1
	add := func(n int, token string) {
		for i := 0; i < n; i++ {
			posts = append(posts, mkPost(id, fmt.Sprintf("%s %d", token, i), fmt.Sprintf("%d-05-01", 1990+id), token))
			id++
		}
	}
	add(1, "zephyr")
	add(5, "cherry")
	add(10, "grape")
	add(25, "banana")

	out := mine(t, QuirkyRarity{}, posts, cfg)
	require.Len(t, out, 3, "df 10 falls between the rare and popular bands")

	assert.Equal(t, facts.TypeRarity, out[0].Type)
	assert.Equal(t, `Only one post mentions 'zephyr': "zephyr 0" on May 01, 1991.`, out[0].Text)
	assert.Equal(t, "zephyr-0", out[0].Slug)

	assert.Equal(t, facts.TypeRarity, out[1].Type)
	assert.Equal(t, "The word 'cherry' appears in only 5 posts across the entire blog.", out[1].Text)
	assert.Equal(t, "https://blog.example.com/cherry-0", out[1].SourceLink)
	assert.Empty(t, out[1].Date)

	assert.Equal(t, facts.TypeQuirk, out[2].Type)
	assert.Equal(t, "The word 'banana' appears in 25 posts.", out[2].Text)
	assert.Equal(t, "https://blog.example.com/banana-0", out[2].SourceLink)
}

func TestQuirkyRarity_PopularBandStartsAboveTwenty(t *testing.T) {
	cfg := emptyConfig()
	cfg.QuirkyTerms = []string{"banana"}

	var posts []corpus.Post
	for i := 1; i <= 20; i++ {
		posts = append(posts, mkPost(i, fmt.Sprintf("Fruit %d", i), fmt.Sprintf("%d-01-01", 2000+i), "banana"))
	}
	assert.Empty(t, mine(t, QuirkyRarity{}, posts, cfg))

	posts = append(posts, mkPost(21, "Fruit 21", "2021-06-01", "banana"))
	assert.Equal(t, []string{"The word 'banana' appears in 21 posts."}, texts(mine(t, QuirkyRarity{}, posts, cfg)))
}

func TestWatchRarity_IgnoresQuirkyTerms(t *testing.T) {
	cfg := emptyConfig()
	cfg.QuirkyTerms = []string{"cherry"}

	var posts []corpus.Post
	for i := 1; i <= 5; i++ {
		posts = append(posts, mkPost(i, fmt.Sprintf("Pie %d", i), fmt.Sprintf("%d-01-01", 2000+i), "cherry"))
	}
	assert.Empty(t, mine(t, WatchRarity{}, posts, cfg))
}

// --- First/last ---

func TestFirstLast(t *testing.T) {
	cfg := emptyConfig()
	cfg.FirstLastTerms = []string{"Bayesian", "Monero", "Absent"}

	posts := []corpus.Post{
		mkPost(1, "Priors", "2010-05-01", "bayesian"),
		mkPost(2, "Posteriors", "2013-05-01", "bayesian"),
		mkPost(3, "Privacy coins", "2014-05-01", "monero"),
		mkPost(4, "Conjugacy", "2016-05-01", "bayesian"),
		mkPost(5, "Hierarchies", "2018-05-01", "bayesian"),
		mkPost(6, "Revisited", "2020-05-01", "bayesian"),
	}
	out := mine(t, FirstLast{}, posts, cfg)

	require.Len(t, out, 3)
	assert.Equal(t, facts.TypeFirst, out[0].Type)
	assert.Equal(t, `The first mention of 'Bayesian' on the blog was on May 01, 2010 in "Priors".`, out[0].Text)
	assert.Equal(t, facts.TypeLast, out[1].Type)
	assert.Equal(t, `The most recent post mentioning 'Bayesian' is "Revisited" from May 01, 2020.`, out[1].Text)
	assert.Equal(t, facts.TypeFirst, out[2].Type)
	assert.Contains(t, out[2].Text, "'Monero'")
}

func TestFirstLast_LastNeedsMinimumPosts(t *testing.T) {
	cfg := emptyConfig()
	cfg.FirstLastTerms = []string{"tensor"}
	cfg.LastMinPosts = 4

	posts := []corpus.Post{
		mkPost(1, "A", "2010-01-01", "tensor"),
		mkPost(2, "B", "2011-01-01", "tensor"),
		mkPost(3, "C", "2012-01-01", "tensor"),
	}
	out := mine(t, FirstLast{}, posts, cfg)
	require.Len(t, out, 1)
	assert.Equal(t, facts.TypeFirst, out[0].Type)
}

// --- Outliers ---

func TestOutliers_FloorsAndTopK(t *testing.T) {
	cfg := emptyConfig()
	cfg.TopK = 2
	cfg.CodeTopK = 1

	posts := []corpus.Post{
		{ID: 1, Title: "Stub", Date: time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC), WordCount: 5},
		{ID: 2, Title: "Tome", Date: time.Date(2016, 2, 3, 0, 0, 0, 0, time.UTC), WordCount: 12500, LinkCount: 9, LongestCode: 800},
		{ID: 3, Title: "Note", Date: time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC), WordCount: 40, LinkCount: 3, ImageCount: 3},
		{ID: 4, Title: "Essay", Date: time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC), WordCount: 900, LongestCode: 150},
	}
	out := mine(t, Outliers{}, posts, cfg)

	assert.Equal(t, []string{
		`The #1 longest post is "Tome" with 12,500 words, published February 03, 2016.`,
		`The #2 longest post is "Essay" with 900 words, published January 01, 2018.`,
		`One of the shortest posts is "Note" with just 40 words (2017).`,
		`One of the shortest posts is "Essay" with just 900 words (2018).`,
		`"Tome" contains 9 links, making it one of the most link-rich posts on the blog.`,
		`"Note" includes 3 images, one of the most visual posts on the blog.`,
		`"Tome" contains a code block of 800 characters, one of the longest on the blog.`,
	}, texts(out))
}

// --- Constants ---

func TestConstants_SymbolBands(t *testing.T) {
	cfg := emptyConfig()
	cfg.Symbols = []string{"pi", "phi", "Phi", "infty"}

	var posts []corpus.Post
	for i := 1; i <= 12; i++ {
		p := mkPost(i, fmt.Sprintf("Post %d", i), fmt.Sprintf("20%02d-01-01", i))
		p.Symbols = map[string]int{"infty": 1}
		switch {
		case i == 1:
			p.Symbols["pi"] = 4
		case i <= 4:
			p.Symbols["phi"] = 1
		}
		if i <= 7 {
			p.Symbols["Phi"] = 2
		}
		posts = append(posts, p)
	}

	out := mine(t, Constants{}, posts, cfg)
	assert.Equal(t, []string{
		`The symbol π appears in only one post: "Post 1" (2001).`,
		"The Greek letter φ appears in exactly 3 posts on the blog.",
		"The mathematical symbol ∞ appears across 12 different posts on the blog.",
	}, texts(out), "7 posts fall between bands")
	for _, f := range out {
		assert.Equal(t, facts.TypeConstant, f.Type)
	}
}

// --- On this day ---

func otdPosts() []corpus.Post {
	posts := []corpus.Post{
		mkPost(1, "Circles", "2015-03-14"),
		mkPost(2, "Digits", "2018-03-14"),
		mkPost(3, "Spigots", "2021-03-14"),
		mkPost(4, "Resolutions", "2019-01-02"),
	}
	posts[1].WordCount = 2000
	return posts
}

func TestOnThisDay(t *testing.T) {
	cfg := emptyConfig()
	cfg.SpecialDates = []config.SpecialDate{
		{Month: 3, Day: 14, Name: "Pi Day", Reason: "π ≈ 3.14"},
		{Month: 12, Day: 25, Name: "Christmas Day", Reason: "holiday"},
	}
	cfg.SpecialDateLimit = 2

	out := mine(t, OnThisDay{}, otdPosts(), cfg)
	got := texts(out)

	require.Len(t, got, 9)
	assert.Equal(t, `On January 2, 2019: "Resolutions" was published (104 words).`, got[0])
	assert.Equal(t, `On March 14, 2018: "Digits" was published (2000 words).`, got[1])
	assert.Equal(t, `The earliest March 14 post was "Circles" in 2015.`, got[2])
	assert.Equal(t, `The most recent March 14 post was "Spigots" in 2021.`, got[3])
	assert.Equal(t, "March 14 has seen 3 blog posts over the years (2015-2021).", got[4])
	assert.True(t, strings.HasPrefix(got[5], "A March 14 highlight: "))
	assert.Equal(t, "Pi Day (3/14, π ≈ 3.14) has seen 3 blog posts.", got[6])
	assert.Equal(t, `On Pi Day 2015: "Circles" was published.`, got[7])
	assert.Equal(t, `On Pi Day 2018: "Digits" was published.`, got[8])

	for _, f := range out {
		assert.Equal(t, facts.TypeOTD, f.Type)
	}
}

func TestOnThisDay_HighlightIsReproducible(t *testing.T) {
	cfg := emptyConfig()
	first := mine(t, OnThisDay{}, otdPosts(), cfg)

	for i := 0; i < 5; i++ {
		again := mine(t, OnThisDay{}, otdPosts(), cfg)
		assert.Equal(t, first, again)
	}
}

// --- Quirks ---

func TestQuirks_YearOverYear(t *testing.T) {
	cfg := emptyConfig()
	var posts []corpus.Post
	id := 1
	for year, n := range map[int]int{2018: 5, 2019: 2, 2020: 2} {
		for i := 0; i < n; i++ {
			posts = append(posts, mkPost(id, fmt.Sprintf("P%d", id), fmt.Sprintf("%d-0%d-1%d", year, i+1, i)))
			id++
		}
	}
	got := texts(mine(t, Quirks{}, posts, cfg))

	assert.Contains(t, got, "The blog contains 9 posts spanning from 2018 to 2020.")
	assert.Contains(t, got, "In 2018, 5 posts were published on the blog.")
	assert.Contains(t, got, "Blog output decreased by 60% from 2018 (5 posts) to 2019 (2 posts).")
	for _, s := range got {
		assert.NotContains(t, s, "from 2019 (2 posts) to 2020", "0% change is below the threshold")
	}
	assert.Contains(t, got, "The 2010s saw 7 posts published on the blog.")
	assert.Contains(t, got, "The 2020s saw 2 posts published on the blog.")
}

func TestQuirks_TagsTitlesAndMilestones(t *testing.T) {
	cfg := emptyConfig()
	cfg.Milestones = []int{1, 2, 3, 10}

	posts := []corpus.Post{
		mkPost(3, "Why primes?", "2020-01-01"),
		mkPost(1, "How to sum 100 terms", "2020-01-02"),
		mkPost(2, "Plain", "2020-01-03"),
	}
	posts[0].Tags = []string{"primes", "common"}
	posts[1].Tags = []string{"series", "common"}
	posts[2].Tags = []string{"series", "common"}
	posts[2].Categories = []string{"Math", "Uncategorized"}
	posts[1].Categories = []string{"Math"}

	out := mine(t, Quirks{}, posts, cfg)
	got := texts(out)

	assert.Contains(t, got, "The tag 'common' has been used 3 times across the blog.")
	assert.Contains(t, got, `The tag 'primes' was used exactly once, in "Why primes?" (2020).`)
	assert.Contains(t, got, `The tag 'series' was used exactly twice: "How to sum 100 terms" and "Plain".`)
	assert.Contains(t, got, "The 'Math' category contains 2 posts.")
	assert.NotContains(t, got, "The 'Uncategorized' category contains 1 posts.")
	assert.Contains(t, got, `"Plain" spans 2 categories: Math, Uncategorized.`)
	assert.Contains(t, got, "1 posts have titles containing a question mark.")
	assert.Contains(t, got, `The question "Why primes?" was explored on January 01, 2020.`)
	assert.Contains(t, got, `"How to sum 100 terms" is a how-to from 2020.`)
	assert.Contains(t, got, `"Why primes?" explores the why, from 2020.`)
	assert.Contains(t, got, `"How to sum 100 terms" (2020) is one of 1 posts with numbers in the title.`)
	assert.Contains(t, got, `The 1st post on the blog was "How to sum 100 terms" on January 02, 2020.`)
	assert.Contains(t, got, `The 3rd post on the blog was "Why primes?" on January 01, 2020.`)

	for _, f := range out {
		if strings.HasPrefix(f.Text, "The tag 'primes' was used exactly once") {
			assert.Equal(t, facts.TypeRarity, f.Type)
		}
	}
}

func TestQuirks_StreakAndWordCounts(t *testing.T) {
	cfg := emptyConfig()
	cfg.StreakMin = 5

	var posts []corpus.Post
	for i := 0; i < 6; i++ {
		p := mkPost(i+1, fmt.Sprintf("Day %d", i), fmt.Sprintf("2021-07-%02d", 10+i))
		p.WordCount = 150
		posts = append(posts, p)
	}
	extra := mkPost(20, "Later", "2021-09-01")
	extra.WordCount = 850
	posts = append(posts, extra)

	got := texts(mine(t, Quirks{}, posts, cfg))
	assert.Contains(t, got, "The longest consecutive posting streak was 6 days, starting July 10, 2021.")
	assert.Contains(t, got, "The average blog post is 250 words long.")
	assert.Contains(t, got, "6 posts are between 100 and 200 words long.")
	assert.Contains(t, got, "1 posts are between 750 and 1,000 words long.")
}

func TestLongestStreak(t *testing.T) {
	posts := []corpus.Post{
		mkPost(1, "a", "2020-01-01"),
		mkPost(2, "b", "2020-01-01"),
		mkPost(3, "c", "2020-01-02"),
		mkPost(4, "d", "2020-01-04"),
		mkPost(5, "e", "2020-01-05"),
	}
	n, start := longestStreak(posts)
	assert.Equal(t, 2, n)
	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), start, "earliest run wins ties")

	n, _ = longestStreak(nil)
	assert.Zero(t, n)
}

// --- Empty corpus ---

func TestRulesTolerateEmptyCorpus(t *testing.T) {
	cfg := config.DefaultConfig().Mining
	for _, r := range DefaultRules() {
		t.Run(r.Name(), func(t *testing.T) {
			out, err := r.Mine(context.Background(), NewInput(nil, cfg))
			require.NoError(t, err)
			assert.Empty(t, out)
		})
	}
}

// --- Miner ---

type stubRule struct {
	name  string
	texts []string
	wait  <-chan struct{}
	done  chan<- struct{}
	err   error
}

func (s stubRule) Name() string { return s.name }

func (s stubRule) Mine(ctx context.Context, _ *Input) ([]facts.Fact, error) {
	if s.wait != nil {
		select {
		case <-s.wait:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.done != nil {
		close(s.done)
	}
	if s.err != nil {
		return nil, s.err
	}
	out := make([]facts.Fact, len(s.texts))
	for i, t := range s.texts {
		out[i] = facts.Fact{ID: 99, Type: facts.TypeQuirk, Text: t}
	}
	return out, nil
}

func TestMiner_DeclaredOrderAndDedup(t *testing.T) {
	secondDone := make(chan struct{})
	m := &Miner{
		Rules: []Rule{
			stubRule{name: "slow", texts: []string{"A", "B"}, wait: secondDone},
			stubRule{name: "fast", texts: []string{"B", "C"}, done: secondDone},
		},
		Config: emptyConfig(),
		Logger: logging.Discard(),
	}

	out, err := m.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, texts(out), "slow rule still comes first")
	assert.Equal(t, []int{1, 2, 3}, []int{out[0].ID, out[1].ID, out[2].ID})
}

func TestMiner_RuleErrorAbortsRun(t *testing.T) {
	boom := errors.New("boom")
	m := &Miner{
		Rules: []Rule{
			stubRule{name: "ok", texts: []string{"A"}},
			stubRule{name: "broken", err: boom},
		},
		Logger: logging.Discard(),
	}

	out, err := m.Run(context.Background(), nil)
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "rule broken")
	assert.Nil(t, out)
}

func TestMiner_DefaultRulesAreReproducible(t *testing.T) {
	cfg := config.DefaultConfig().Mining
	posts := []corpus.Post{
		mkPost(1, "Zigzag patterns", "2020-01-01", "zigzag", "bayesian", "python"),
		mkPost(2, "Bayesian updates", "2020-01-02", "bayesian", "python"),
		mkPost(3, "Why Python?", "2021-01-02", "python", "bayesian"),
		mkPost(4, "Python at 10", "2022-01-02", "python", "bayesian", "pancake"),
		mkPost(5, "Last word", "2023-03-14", "bayesian", "zephyr"),
	}
	posts[0].Tags = []string{"geometry"}
	posts[2].Categories = []string{"Math", "Computing"}

	m := NewMiner(cfg, logging.Discard())
	first, err := m.Run(context.Background(), posts)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	reversed := make([]corpus.Post, len(posts))
	for i, p := range posts {
		reversed[len(posts)-1-i] = p
	}
	second, err := m.Run(context.Background(), reversed)
	require.NoError(t, err)
	assert.Equal(t, first, second, "input order does not matter")

	seen := make(map[string]bool)
	for i, f := range first {
		assert.Equal(t, i+1, f.ID)
		assert.False(t, seen[f.Text], "duplicate text %q", f.Text)
		seen[f.Text] = true
	}
	assert.Contains(t, texts(first), `Only one post mentions 'zigzag': "Zigzag patterns" on January 01, 2020.`)
}

// --- Helpers ---

func TestOrdinal(t *testing.T) {
	cases := map[int]string{1: "1st", 2: "2nd", 3: "3rd", 4: "4th", 11: "11th", 12: "12th", 13: "13th", 21: "21st", 112: "112th", 1000: "1000th"}
	for n, want := range cases {
		assert.Equal(t, want, ordinal(n))
	}
}
