package mining

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/runnerr0/factbook/internal/corpus"
	"github.com/runnerr0/factbook/internal/facts"
)

// wordRanges are the half-open word-count buckets reported by Quirks.
var wordRanges = [][2]int{
	{0, 100}, {100, 200}, {200, 300}, {300, 500}, {500, 750},
	{750, 1000}, {1000, 1500}, {1500, 2000}, {2000, 5000},
}

// Quirks reports corpus-wide aggregates: volume over time, weekday and
// category mix, tags, title patterns, milestones and streaks.
type Quirks struct{}

func (Quirks) Name() string { return "quirks" }

func (Quirks) Mine(ctx context.Context, in *Input) ([]facts.Fact, error) {
	latest, ok := in.Latest()
	if !ok {
		return nil, nil
	}
	q := &quirkSet{in: in, latest: latest}

	steps := []func(){
		q.volume,
		q.calendar,
		q.categories,
		q.tags,
		q.titles,
		q.milestones,
		q.streak,
		q.wordCounts,
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		step()
	}
	return q.out, nil
}

type quirkSet struct {
	in     *Input
	latest corpus.Post
	out    []facts.Fact
}

// aggregate emits a corpus-wide fact linked to the latest post.
func (q *quirkSet) aggregate(format string, args ...any) {
	q.out = append(q.out, linkFact(facts.TypeQuirk, fmt.Sprintf(format, args...), q.latest))
}

func (q *quirkSet) cite(typ string, p corpus.Post, format string, args ...any) {
	q.out = append(q.out, postFact(typ, fmt.Sprintf(format, args...), p))
}

func (q *quirkSet) limit(n int) int {
	if l := q.in.Config.TitleListLimit; l > 0 && n > l {
		return l
	}
	return n
}

func (q *quirkSet) volume() {
	posts := q.in.Posts
	q.aggregate("The blog contains %d posts spanning from %d to %d.", len(posts), posts[0].Year(), q.latest.Year())

	perYear := tally(posts, func(p corpus.Post) []int { return []int{p.Year()} })
	for _, e := range perYear.byCount() {
		q.aggregate("In %d, %d posts were published on the blog.", e.key, e.count)
	}

	yrs := perYear.keys()
	for i := 1; i < len(yrs); i++ {
		prev, curr := perYear[yrs[i-1]], perYear[yrs[i]]
		if prev == 0 {
			continue
		}
		change := float64(curr-prev) / float64(prev) * 100
		if math.Abs(change) <= q.in.Config.YearChangePct {
			continue
		}
		direction := "increased"
		if change < 0 {
			direction = "decreased"
		}
		q.aggregate("Blog output %s by %.0f%% from %d (%d posts) to %d (%d posts).",
			direction, math.Abs(change), yrs[i-1], prev, yrs[i], curr)
	}

	decades := tally(posts, func(p corpus.Post) []int { return []int{p.Year() / 10 * 10} })
	for _, d := range decades.keys() {
		q.aggregate("The %ds saw %d posts published on the blog.", d, decades[d])
	}
}

func (q *quirkSet) calendar() {
	posts := q.in.Posts

	weekdays := tally(posts, func(p corpus.Post) []time.Weekday { return []time.Weekday{p.Date.Weekday()} })
	for _, e := range weekdays.byCount() {
		q.aggregate("%s has %d blog posts published on that day of the week.", e.key, e.count)
	}

	months := tally(posts, func(p corpus.Post) []time.Month { return []time.Month{p.Date.Month()} })
	for _, e := range months.byCount() {
		q.aggregate("%s has seen %d blog posts over the years.", e.key, e.count)
	}

	perMonth := tally(posts, func(p corpus.Post) []int { return []int{p.Year()*100 + int(p.Date.Month())} })
	for i, e := range perMonth.byCount() {
		if i >= q.in.Config.TopK {
			break
		}
		q.aggregate("%s %d had %d posts.", time.Month(e.key%100), e.key/100, e.count)
	}
}

func (q *quirkSet) categories() {
	skip := make(map[string]bool)
	for _, c := range q.in.Config.SkipCategories {
		skip[c] = true
	}

	cats := tally(q.in.Posts, func(p corpus.Post) []string { return p.Categories })
	for _, e := range cats.byCount() {
		if skip[e.key] {
			continue
		}
		q.aggregate("The '%s' category contains %d posts.", e.key, e.count)
	}

	var multi []corpus.Post
	for _, p := range q.in.Posts {
		if len(p.Categories) >= 2 {
			multi = append(multi, p)
		}
	}
	for _, p := range multi[:q.limit(len(multi))] {
		q.cite(facts.TypeQuirk, p, "\"%s\" spans %d categories: %s.", p.Title, len(p.Categories), strings.Join(p.Categories, ", "))
	}
}

func (q *quirkSet) tags() {
	posts := q.in.Posts
	counts := tally(posts, func(p corpus.Post) []string { return p.Tags })

	for i, e := range counts.byCount() {
		if i >= q.in.Config.TagTopK {
			break
		}
		q.aggregate("The tag '%s' has been used %d times across the blog.", e.key, e.count)
	}

	for _, tag := range counts.keys() {
		if counts[tag] > 2 {
			continue
		}
		var tagged []corpus.Post
		for _, p := range posts {
			if p.HasTag(tag) {
				tagged = append(tagged, p)
			}
		}
		if len(tagged) == 1 {
			p := tagged[0]
			q.cite(facts.TypeRarity, p, "The tag '%s' was used exactly once, in \"%s\" (%d).", tag, p.Title, p.Year())
		} else if len(tagged) == 2 {
			q.out = append(q.out, linkFact(facts.TypeRarity,
				fmt.Sprintf("The tag '%s' was used exactly twice: \"%s\" and \"%s\".", tag, tagged[0].Title, tagged[1].Title),
				tagged[0]))
		}
	}
}

func (q *quirkSet) titles() {
	var questions, hows, whys, numbered []corpus.Post
	for _, p := range q.in.Posts {
		lower := strings.ToLower(p.Title)
		if strings.Contains(p.Title, "?") {
			questions = append(questions, p)
		}
		if strings.HasPrefix(lower, "how") {
			hows = append(hows, p)
		}
		if strings.HasPrefix(lower, "why") {
			whys = append(whys, p)
		}
		if strings.IndexFunc(p.Title, unicode.IsDigit) >= 0 {
			numbered = append(numbered, p)
		}
	}

	if len(questions) > 0 {
		q.out = append(q.out, linkFact(facts.TypeQuirk,
			fmt.Sprintf("%d posts have titles containing a question mark.", len(questions)),
			questions[0]))
	}
	for _, p := range questions[:q.limit(len(questions))] {
		q.cite(facts.TypeQuirk, p, "The question \"%s\" was explored on %s.", p.Title, formatDate(p.Date))
	}
	for _, p := range hows[:q.limit(len(hows))] {
		q.cite(facts.TypeQuirk, p, "\"%s\" is a how-to from %d.", p.Title, p.Year())
	}
	for _, p := range whys[:q.limit(len(whys))] {
		q.cite(facts.TypeQuirk, p, "\"%s\" explores the why, from %d.", p.Title, p.Year())
	}
	for _, p := range numbered[:q.limit(len(numbered))] {
		q.cite(facts.TypeQuirk, p, "\"%s\" (%d) is one of %d posts with numbers in the title.", p.Title, p.Year(), len(numbered))
	}
}

// milestones reports posts by sequence position in id order.
func (q *quirkSet) milestones() {
	byID := slices.Clone(q.in.Posts)
	slices.SortFunc(byID, func(a, b corpus.Post) int { return cmp.Compare(a.ID, b.ID) })

	for _, m := range q.in.Config.Milestones {
		if m < 1 || m > len(byID) {
			continue
		}
		p := byID[m-1]
		q.cite(facts.TypeQuirk, p, "The %s post on the blog was \"%s\" on %s.", ordinal(m), p.Title, formatDate(p.Date))
	}
}

// streak reports the longest run of consecutive posting days.
func (q *quirkSet) streak() {
	length, start := longestStreak(q.in.Posts)
	if length < q.in.Config.StreakMin {
		return
	}
	q.aggregate("The longest consecutive posting streak was %d days, starting %s.", length, formatDate(start))
}

// longestStreak returns the longest run of distinct post days whose gaps
// are exactly one day, and the day it started. The earliest run wins ties.
func longestStreak(posts []corpus.Post) (int, time.Time) {
	if len(posts) == 0 {
		return 0, time.Time{}
	}
	var days []time.Time
	for _, p := range posts {
		d := p.Day()
		if len(days) == 0 || !days[len(days)-1].Equal(d) {
			days = append(days, d)
		}
	}

	best, bestStart := 1, days[0]
	run, runStart := 1, days[0]
	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == 24*time.Hour {
			run++
			if run > best {
				best, bestStart = run, runStart
			}
		} else {
			run, runStart = 1, days[i]
		}
	}
	return best, bestStart
}

func (q *quirkSet) wordCounts() {
	posts := q.in.Posts
	total := 0
	for _, p := range posts {
		total += p.WordCount
	}
	if len(posts) > 0 {
		q.aggregate("The average blog post is %s words long.", facts.FormatNumber(int(math.Round(float64(total)/float64(len(posts))))))
	}

	for _, r := range wordRanges {
		n := 0
		for _, p := range posts {
			if p.WordCount >= r[0] && p.WordCount < r[1] {
				n++
			}
		}
		if n > 0 {
			q.aggregate("%d posts are between %s and %s words long.", n, facts.FormatNumber(r[0]), facts.FormatNumber(r[1]))
		}
	}
}

// counts maps a key to the number of posts carrying it.
type counts[K cmp.Ordered] map[K]int

type entry[K cmp.Ordered] struct {
	key   K
	count int
}

// tally counts posts per key. A post contributes once per distinct key.
func tally[K cmp.Ordered](posts []corpus.Post, keys func(corpus.Post) []K) counts[K] {
	c := make(counts[K])
	for _, p := range posts {
		seen := make(map[K]bool)
		for _, k := range keys(p) {
			if !seen[k] {
				seen[k] = true
				c[k]++
			}
		}
	}
	return c
}

// keys returns the keys in ascending order.
func (c counts[K]) keys() []K {
	out := make([]K, 0, len(c))
	for k := range c {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// byCount returns entries by descending count, ties by ascending key.
func (c counts[K]) byCount() []entry[K] {
	out := make([]entry[K], 0, len(c))
	for _, k := range c.keys() {
		out = append(out, entry[K]{key: k, count: c[k]})
	}
	slices.SortStableFunc(out, func(a, b entry[K]) int { return cmp.Compare(b.count, a.count) })
	return out
}
