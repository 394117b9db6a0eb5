package mining

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/runnerr0/factbook/internal/corpus"
	"github.com/runnerr0/factbook/internal/facts"
)

// Outliers ranks posts by length, links, images and code block size.
type Outliers struct{}

func (Outliers) Name() string { return "outliers" }

func (Outliers) Mine(ctx context.Context, in *Input) ([]facts.Fact, error) {
	cfg := in.Config
	var out []facts.Fact

	for i, p := range rank(in.Posts, func(p corpus.Post) int { return p.WordCount }, true, cfg.TopK, -1) {
		out = append(out, postFact(facts.TypeDensity,
			fmt.Sprintf("The #%d longest post is \"%s\" with %s words, published %s.", i+1, p.Title, facts.FormatNumber(p.WordCount), formatDate(p.Date)),
			p))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, p := range rank(in.Posts, func(p corpus.Post) int { return p.WordCount }, false, cfg.TopK, cfg.ShortestFloor) {
		out = append(out, postFact(facts.TypeDensity,
			fmt.Sprintf("One of the shortest posts is \"%s\" with just %d words (%d).", p.Title, p.WordCount, p.Year()),
			p))
	}

	for _, p := range rank(in.Posts, func(p corpus.Post) int { return p.LinkCount }, true, cfg.TopK, cfg.LinkFloor) {
		out = append(out, postFact(facts.TypeDensity,
			fmt.Sprintf("\"%s\" contains %d links, making it one of the most link-rich posts on the blog.", p.Title, p.LinkCount),
			p))
	}

	for _, p := range rank(in.Posts, func(p corpus.Post) int { return p.ImageCount }, true, cfg.TopK, cfg.ImageFloor) {
		out = append(out, postFact(facts.TypeDensity,
			fmt.Sprintf("\"%s\" includes %d images, one of the most visual posts on the blog.", p.Title, p.ImageCount),
			p))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, p := range rank(in.Posts, func(p corpus.Post) int { return p.LongestCode }, true, cfg.CodeTopK, cfg.CodeFloor) {
		out = append(out, postFact(facts.TypeDensity,
			fmt.Sprintf("\"%s\" contains a code block of %s characters, one of the longest on the blog.", p.Title, facts.FormatNumber(p.LongestCode)),
			p))
	}
	return out, nil
}

// rank orders posts by attr and keeps the top k whose value is strictly
// above floor. A negative floor disables the filter. Equal values keep
// corpus order.
func rank(posts []corpus.Post, attr func(corpus.Post) int, desc bool, k, floor int) []corpus.Post {
	if k <= 0 {
		return nil
	}
	var kept []corpus.Post
	for _, p := range posts {
		if floor < 0 || attr(p) > floor {
			kept = append(kept, p)
		}
	}
	slices.SortStableFunc(kept, func(a, b corpus.Post) int {
		if desc {
			return cmp.Compare(attr(b), attr(a))
		}
		return cmp.Compare(attr(a), attr(b))
	})
	if len(kept) > k {
		kept = kept[:k]
	}
	return kept
}
