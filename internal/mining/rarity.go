package mining

import (
	"context"
	"fmt"
	"strings"

	"github.com/runnerr0/factbook/internal/config"
	"github.com/runnerr0/factbook/internal/corpus"
	"github.com/runnerr0/factbook/internal/facts"
)

// WatchRarity reports how rarely notable terms occur. Each term lands in
// the first configured band containing its document frequency and yields
// at most one fact.
type WatchRarity struct{}

func (WatchRarity) Name() string { return "watch-rarity" }

func (WatchRarity) Mine(ctx context.Context, in *Input) ([]facts.Fact, error) {
	var out []facts.Fact
	for _, term := range in.Config.NotableTerms {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n := in.Terms.DocumentFrequency(term)
		band := bandIndex(in.Config.RarityBands, n)
		if n == 0 || band < 0 {
			continue
		}
		posts := in.Terms.PostingList(term)
		out = append(out, rarityFact(term, band, posts, in.Config.TitleListLimit))
	}
	return out, nil
}

// bandIndex returns the position of the first band containing n, or -1.
func bandIndex(bands []config.Band, n int) int {
	for i, b := range bands {
		if b.Contains(n) {
			return i
		}
	}
	return -1
}

// rarityFact phrases a band hit. Exactly one post names the post; the
// second band lists titles; wider bands summarize the year span.
func rarityFact(term string, band int, posts []corpus.Post, listLimit int) facts.Fact {
	first, last := posts[0], posts[len(posts)-1]
	switch {
	case len(posts) == 1:
		return postFact(facts.TypeRarity,
			fmt.Sprintf("The word '%s' appears in only one blog post: \"%s\" on %s.", term, first.Title, formatDate(first.Date)),
			first)
	case band <= 1:
		titles := make([]string, 0, len(posts))
		for i, p := range posts {
			if listLimit > 0 && i >= listLimit {
				break
			}
			titles = append(titles, fmt.Sprintf("\"%s\" (%d)", p.Title, p.Year()))
		}
		return postFact(facts.TypeRarity,
			fmt.Sprintf("The term '%s' appears in only %d posts across the entire blog: %s.", term, len(posts), strings.Join(titles, ", ")),
			first)
	default:
		return linkFact(facts.TypeRarity,
			fmt.Sprintf("The term '%s' appears in exactly %d posts, spanning from %d to %d.", term, len(posts), first.Year(), last.Year()),
			first)
	}
}

// QuirkyRarity reports everyday words that are either rare or, in an
// unbounded band, surprisingly popular.
type QuirkyRarity struct{}

func (QuirkyRarity) Name() string { return "quirky-rarity" }

func (QuirkyRarity) Mine(ctx context.Context, in *Input) ([]facts.Fact, error) {
	var out []facts.Fact
	for _, term := range in.Config.QuirkyTerms {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n := in.Terms.DocumentFrequency(term)
		band := bandIndex(in.Config.QuirkyBands, n)
		if n == 0 || band < 0 {
			continue
		}
		posts := in.Terms.PostingList(term)
		first := posts[0]
		switch {
		case n == 1:
			out = append(out, postFact(facts.TypeRarity,
				fmt.Sprintf("Only one post mentions '%s': \"%s\" on %s.", term, first.Title, formatDate(first.Date)),
				first))
		case in.Config.QuirkyBands[band].Max == 0:
			out = append(out, linkFact(facts.TypeQuirk,
				fmt.Sprintf("The word '%s' appears in %d posts.", term, n),
				first))
		default:
			out = append(out, linkFact(facts.TypeRarity,
				fmt.Sprintf("The word '%s' appears in only %d posts across the entire blog.", term, n),
				first))
		}
	}
	return out, nil
}

// CorpusRarity reports words that occur in exactly one post across the
// whole corpus, longest words first.
type CorpusRarity struct{}

func (CorpusRarity) Name() string { return "corpus-rarity" }

func (CorpusRarity) Mine(ctx context.Context, in *Input) ([]facts.Fact, error) {
	if len(in.Posts) == 0 || in.Config.RareWordLimit <= 0 {
		return nil, nil
	}
	singles := corpus.Singletons(in.Posts, in.Config.RareWordMinLen, in.Config.Stopwords)
	if len(singles) > in.Config.RareWordLimit {
		singles = singles[:in.Config.RareWordLimit]
	}

	out := make([]facts.Fact, 0, len(singles))
	for _, s := range singles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, postFact(facts.TypeRarity,
			fmt.Sprintf("Only one post mentions '%s': \"%s\" on %s.", s.Token, s.Post.Title, formatDate(s.Post.Date)),
			s.Post))
	}
	return out, nil
}
