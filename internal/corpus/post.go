package corpus

import (
	"slices"
	"strings"
	"time"
	"unicode"
)

// Post is a normalized, read-only view of one blog post.
type Post struct {
	ID          int
	Title       string
	Link        string
	Slug        string
	Date        time.Time
	WordCount   int
	LinkCount   int
	ImageCount  int
	LongestCode int
	Categories  []string
	Tags        []string
	Tokens      []string
	Symbols     map[string]int
}

// Year returns the calendar year the post was published.
func (p Post) Year() int {
	return p.Date.Year()
}

// Day returns the publication date truncated to midnight UTC.
func (p Post) Day() time.Time {
	y, m, d := p.Date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// HasCategory reports whether the post is filed under name.
func (p Post) HasCategory(name string) bool {
	return slices.Contains(p.Categories, name)
}

// HasTag reports whether the post carries tag.
func (p Post) HasTag(tag string) bool {
	return slices.Contains(p.Tags, tag)
}

// TokenSet returns the distinct tokens of the post.
func (p Post) TokenSet() map[string]struct{} {
	set := make(map[string]struct{}, len(p.Tokens))
	for _, t := range p.Tokens {
		set[t] = struct{}{}
	}
	return set
}

// Compare orders posts by date, then id.
func Compare(a, b Post) int {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	return a.ID - b.ID
}

// Sorted returns a copy of posts ordered by date, then id.
func Sorted(posts []Post) []Post {
	out := slices.Clone(posts)
	slices.SortStableFunc(out, Compare)
	return out
}

// Tokenize lowercases s and splits it on every non-letter rune.
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}
