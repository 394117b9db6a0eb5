package mining

import (
	"cmp"
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/runnerr0/factbook/internal/corpus"
	"github.com/runnerr0/factbook/internal/facts"
)

// OnThisDay groups posts by calendar day ignoring the year. Larger groups
// earn more facts: the best post always, earliest and most recent from two
// posts, and a count summary plus a seeded highlight from three.
type OnThisDay struct{}

func (OnThisDay) Name() string { return "on-this-day" }

type monthDay struct {
	month time.Month
	day   int
}

func (OnThisDay) Mine(ctx context.Context, in *Input) ([]facts.Fact, error) {
	groups := make(map[monthDay][]corpus.Post)
	for _, p := range in.Posts {
		k := monthDay{p.Date.Month(), p.Date.Day()}
		groups[k] = append(groups[k], p)
	}

	keys := make([]monthDay, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b monthDay) int {
		return cmp.Or(cmp.Compare(a.month, b.month), cmp.Compare(a.day, b.day))
	})

	var out []facts.Fact
	for _, k := range keys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, dayFacts(k, groups[k])...)
	}

	for _, sd := range in.Config.SpecialDates {
		posts := groups[monthDay{time.Month(sd.Month), sd.Day}]
		if len(posts) == 0 {
			continue
		}
		out = append(out, linkFact(facts.TypeOTD,
			fmt.Sprintf("%s (%d/%d, %s) has seen %d blog posts.", sd.Name, sd.Month, sd.Day, sd.Reason, len(posts)),
			posts[0]))
		for i, p := range posts {
			if i >= in.Config.SpecialDateLimit {
				break
			}
			out = append(out, postFact(facts.TypeOTD,
				fmt.Sprintf("On %s %d: \"%s\" was published.", sd.Name, p.Year(), p.Title),
				p))
		}
	}
	return out, nil
}

// dayFacts emits the facts for one (month, day) group. posts is sorted by
// date, then id.
func dayFacts(k monthDay, posts []corpus.Post) []facts.Fact {
	label := fmt.Sprintf("%s %d", k.month, k.day)
	var out []facts.Fact

	best := posts[0]
	for _, p := range posts[1:] {
		if p.WordCount > best.WordCount {
			best = p
		}
	}
	out = append(out, postFact(facts.TypeOTD,
		fmt.Sprintf("On %s, %d: \"%s\" was published (%d words).", label, best.Year(), best.Title, best.WordCount),
		best))

	if len(posts) >= 2 {
		oldest, newest := posts[0], posts[len(posts)-1]
		out = append(out,
			postFact(facts.TypeOTD,
				fmt.Sprintf("The earliest %s post was \"%s\" in %d.", label, oldest.Title, oldest.Year()),
				oldest),
			postFact(facts.TypeOTD,
				fmt.Sprintf("The most recent %s post was \"%s\" in %d.", label, newest.Title, newest.Year()),
				newest))
	}

	if len(posts) >= 3 {
		out = append(out, linkFact(facts.TypeOTD,
			fmt.Sprintf("%s has seen %d blog posts over the years (%s).", label, len(posts), years(posts[0].Year(), posts[len(posts)-1].Year())),
			posts[0]))

		pick := highlightRand(k).IntN(len(posts))
		p := posts[pick]
		out = append(out, postFact(facts.TypeOTD,
			fmt.Sprintf("A %s highlight: \"%s\" (%d).", label, p.Title, p.Year()),
			p))
	}
	return out
}

// highlightRand is seeded by the calendar day alone so reruns pick the
// same highlight.
func highlightRand(k monthDay) *rand.Rand {
	seed := uint64(k.month)*100 + uint64(k.day)
	return rand.New(rand.NewPCG(seed, 0))
}
