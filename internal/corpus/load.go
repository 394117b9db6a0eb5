package corpus

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"os"
	"strings"
	"time"
)

// maxLineBytes bounds a single JSONL record; token arrays make lines long.
const maxLineBytes = 64 << 20

// DataError reports a malformed or incomplete input record.
type DataError struct {
	Line   int
	Field  string
	Reason string
}

func (e *DataError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("line %d: field %q: %s", e.Line, e.Field, e.Reason)
}

// record mirrors one line of the post index JSONL file.
type record struct {
	ID          *int           `json:"id"`
	Title       string         `json:"title"`
	Link        string         `json:"link"`
	Date        string         `json:"date"`
	Slug        string         `json:"slug"`
	WordCount   int            `json:"word_count"`
	LinkCount   int            `json:"link_count"`
	ImageCount  int            `json:"image_count"`
	LongestCode int            `json:"longest_code_block"`
	Symbols     map[string]int `json:"symbols"`
	Tokens      []string       `json:"tokens"`
	Categories  []string       `json:"category_names"`
	Tags        []string       `json:"tag_names"`
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate accepts the timestamp layouts produced by the ingestion tools.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// LoadFile reads a JSONL post index from path.
func LoadFile(path string) ([]Post, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open post index: %w", err)
	}
	defer f.Close()
	return LoadJSONL(f)
}

// LoadJSONL decodes one post per line. Any malformed record aborts the load
// with a *DataError; no partial result is returned.
func LoadJSONL(r io.Reader) ([]Post, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1<<20), maxLineBytes)

	var posts []Post
	seen := make(map[int]int)
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		var rec record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, &DataError{Line: line, Reason: fmt.Sprintf("invalid JSON: %v", err)}
		}

		p, err := rec.toPost(line)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[p.ID]; dup {
			return nil, &DataError{Line: line, Field: "id", Reason: fmt.Sprintf("duplicate id %d (first seen on line %d)", p.ID, prev)}
		}
		seen[p.ID] = line
		posts = append(posts, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read post index: %w", err)
	}
	return posts, nil
}

func (r record) toPost(line int) (Post, error) {
	if r.ID == nil {
		return Post{}, &DataError{Line: line, Field: "id", Reason: "missing"}
	}
	if strings.TrimSpace(r.Date) == "" {
		return Post{}, &DataError{Line: line, Field: "date", Reason: "missing"}
	}
	date, err := ParseDate(r.Date)
	if err != nil {
		return Post{}, &DataError{Line: line, Field: "date", Reason: err.Error()}
	}

	counts := []struct {
		field string
		value int
	}{
		{"word_count", r.WordCount},
		{"link_count", r.LinkCount},
		{"image_count", r.ImageCount},
		{"longest_code_block", r.LongestCode},
	}
	for _, c := range counts {
		if c.value < 0 {
			return Post{}, &DataError{Line: line, Field: c.field, Reason: fmt.Sprintf("negative value %d", c.value)}
		}
	}
	for name, n := range r.Symbols {
		if n < 0 {
			return Post{}, &DataError{Line: line, Field: "symbols." + name, Reason: fmt.Sprintf("negative value %d", n)}
		}
	}

	tokens := make([]string, 0, len(r.Tokens))
	for _, t := range r.Tokens {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			tokens = append(tokens, t)
		}
	}

	return Post{
		ID:          *r.ID,
		Title:       strings.TrimSpace(html.UnescapeString(r.Title)),
		Link:        r.Link,
		Slug:        r.Slug,
		Date:        date,
		WordCount:   r.WordCount,
		LinkCount:   r.LinkCount,
		ImageCount:  r.ImageCount,
		LongestCode: r.LongestCode,
		Categories:  unescapeAll(r.Categories),
		Tags:        unescapeAll(r.Tags),
		Tokens:      tokens,
		Symbols:     r.Symbols,
	}, nil
}

func unescapeAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(html.UnescapeString(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
