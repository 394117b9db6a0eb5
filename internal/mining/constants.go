package mining

import (
	"context"
	"fmt"

	"github.com/runnerr0/factbook/internal/config"
	"github.com/runnerr0/factbook/internal/facts"
)

// Constants buckets mathematical symbols by how many posts use them. The
// bands mirror the rarity bands: exactly one post, a handful, and many.
type Constants struct{}

func (Constants) Name() string { return "constants" }

func (Constants) Mine(ctx context.Context, in *Input) ([]facts.Fact, error) {
	glyphs := config.SymbolGlyphs()
	bands := in.Config.SymbolBands

	var out []facts.Fact
	for _, name := range in.Symbols.Terms() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n := in.Symbols.DocumentFrequency(name)
		band := bandIndex(bands, n)
		if n == 0 || band < 0 {
			continue
		}

		sym := name
		if g, ok := glyphs[name]; ok {
			sym = g
		}
		posts := in.Symbols.PostingList(name)
		first := posts[0]

		switch {
		case n == 1:
			out = append(out, postFact(facts.TypeConstant,
				fmt.Sprintf("The symbol %s appears in only one post: \"%s\" (%d).", sym, first.Title, first.Year()),
				first))
		case band < len(bands)-1:
			out = append(out, linkFact(facts.TypeConstant,
				fmt.Sprintf("The Greek letter %s appears in exactly %d posts on the blog.", sym, n),
				first))
		default:
			out = append(out, linkFact(facts.TypeConstant,
				fmt.Sprintf("The mathematical symbol %s appears across %d different posts on the blog.", sym, n),
				first))
		}
	}
	return out, nil
}
