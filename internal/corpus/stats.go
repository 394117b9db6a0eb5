package corpus

import (
	"cmp"
	"errors"
	"slices"
	"strings"
)

// ErrEmptyResult is returned by lookups that find no posts.
var ErrEmptyResult = errors.New("empty result")

// TermStatistics answers document-frequency and first/last occurrence
// queries for a fixed vocabulary over one corpus.
type TermStatistics struct {
	posts    []Post
	terms    []string
	key      func(string) string
	postings map[string][]int // key -> indexes into posts, sorted by date then id
}

// termKey folds a term into the token form used for matching.
func termKey(term string) string {
	return strings.Join(Tokenize(term), " ")
}

// IndexTerms builds statistics for words and phrases. Terms match whole
// tokens case-insensitively; multi-word terms match contiguous tokens.
// Terms that reduce to the same token sequence share one posting list.
func IndexTerms(posts []Post, terms []string) *TermStatistics {
	s := newStats(posts, terms, termKey)

	single := make(map[string]bool)
	phrases := make(map[string][][]string) // first token -> candidate phrases
	for _, t := range s.terms {
		toks := Tokenize(t)
		switch len(toks) {
		case 0:
		case 1:
			single[toks[0]] = true
		default:
			if !slices.ContainsFunc(phrases[toks[0]], func(p []string) bool { return slices.Equal(p, toks) }) {
				phrases[toks[0]] = append(phrases[toks[0]], toks)
			}
		}
	}

	for i, p := range s.posts {
		hit := make(map[string]bool)
		for j, tok := range p.Tokens {
			if single[tok] {
				hit[tok] = true
			}
			for _, phrase := range phrases[tok] {
				if j+len(phrase) <= len(p.Tokens) && slices.Equal(p.Tokens[j:j+len(phrase)], phrase) {
					hit[strings.Join(phrase, " ")] = true
				}
			}
		}
		for k := range hit {
			s.postings[k] = append(s.postings[k], i)
		}
	}

	s.sortPostings()
	return s
}

// IndexSymbols builds statistics from the per-post symbol counts. Symbol
// names are matched exactly, so "phi" and "Phi" are distinct.
func IndexSymbols(posts []Post, names []string) *TermStatistics {
	s := newStats(posts, names, func(n string) string { return n })
	for i, p := range s.posts {
		for _, name := range s.terms {
			if p.Symbols[name] > 0 {
				s.postings[name] = append(s.postings[name], i)
			}
		}
	}
	s.sortPostings()
	return s
}

func newStats(posts []Post, terms []string, key func(string) string) *TermStatistics {
	s := &TermStatistics{
		posts:    posts,
		key:      key,
		postings: make(map[string][]int),
	}
	seen := make(map[string]bool)
	for _, t := range terms {
		k := key(t)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		s.terms = append(s.terms, t)
	}
	return s
}

func (s *TermStatistics) sortPostings() {
	for _, idx := range s.postings {
		slices.SortFunc(idx, func(a, b int) int {
			return cmp.Or(Compare(s.posts[a], s.posts[b]), a-b)
		})
	}
}

// Terms returns the indexed vocabulary in the order it was supplied,
// without duplicates.
func (s *TermStatistics) Terms() []string {
	return slices.Clone(s.terms)
}

// DocumentFrequency returns the number of distinct posts containing term.
func (s *TermStatistics) DocumentFrequency(term string) int {
	return len(s.postings[s.key(term)])
}

// PostingList returns every post containing term, oldest first. Posts
// sharing a date are ordered by id.
func (s *TermStatistics) PostingList(term string) []Post {
	idx := s.postings[s.key(term)]
	out := make([]Post, len(idx))
	for i, j := range idx {
		out[i] = s.posts[j]
	}
	return out
}

// First returns the earliest post containing term.
func (s *TermStatistics) First(term string) (Post, error) {
	idx := s.postings[s.key(term)]
	if len(idx) == 0 {
		return Post{}, ErrEmptyResult
	}
	return s.posts[idx[0]], nil
}

// Last returns the latest post containing term.
func (s *TermStatistics) Last(term string) (Post, error) {
	idx := s.postings[s.key(term)]
	if len(idx) == 0 {
		return Post{}, ErrEmptyResult
	}
	return s.posts[idx[len(idx)-1]], nil
}

// Singleton is a token found in exactly one post.
type Singleton struct {
	Token string
	Post  Post
}

// Singletons returns every token of at least minLen letters that appears in
// exactly one post, skipping stopwords. Longer tokens come first; ties are
// alphabetical.
func Singletons(posts []Post, minLen int, stopwords []string) []Singleton {
	stop := make(map[string]bool, len(stopwords))
	for _, w := range stopwords {
		stop[strings.ToLower(w)] = true
	}

	df := make(map[string]int)
	owner := make(map[string]int)
	for i, p := range posts {
		for tok := range p.TokenSet() {
			if len(tok) < minLen || stop[tok] {
				continue
			}
			df[tok]++
			owner[tok] = i
		}
	}

	var out []Singleton
	for tok, n := range df {
		if n == 1 {
			out = append(out, Singleton{Token: tok, Post: posts[owner[tok]]})
		}
	}
	slices.SortFunc(out, func(a, b Singleton) int {
		return cmp.Or(cmp.Compare(len(b.Token), len(a.Token)), strings.Compare(a.Token, b.Token))
	})
	return out
}
