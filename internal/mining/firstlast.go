package mining

import (
	"context"
	"errors"
	"fmt"

	"github.com/runnerr0/factbook/internal/corpus"
	"github.com/runnerr0/factbook/internal/facts"
)

// FirstLast reports the first and most recent post mentioning each
// first/last term. The "last" fact needs more than LastMinPosts - 1 posts
// and a different post than the first.
type FirstLast struct{}

func (FirstLast) Name() string { return "first-last" }

func (FirstLast) Mine(ctx context.Context, in *Input) ([]facts.Fact, error) {
	var out []facts.Fact
	for _, term := range in.Config.FirstLastTerms {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		first, err := in.Terms.First(term)
		if errors.Is(err, corpus.ErrEmptyResult) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, postFact(facts.TypeFirst,
			fmt.Sprintf("The first mention of '%s' on the blog was on %s in \"%s\".", term, formatDate(first.Date), first.Title),
			first))

		if in.Terms.DocumentFrequency(term) < in.Config.LastMinPosts {
			continue
		}
		last, err := in.Terms.Last(term)
		if err != nil {
			return nil, err
		}
		if last.ID == first.ID {
			continue
		}
		out = append(out, postFact(facts.TypeLast,
			fmt.Sprintf("The most recent post mentioning '%s' is \"%s\" from %s.", term, last.Title, formatDate(last.Date)),
			last))
	}
	return out, nil
}
