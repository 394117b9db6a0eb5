package facts

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// CSVHeader is the column layout of candidate and calendar files.
var CSVHeader = []string{"id", "type", "fact", "source_link", "date", "slug"}

// ReadCSV decodes facts from a CSV with a header row. Only the "fact"
// column is required; rows with empty text are skipped and a missing type
// defaults to TypeGeneral. An id column, when present, must hold integers.
func ReadCSV(r io.Reader) ([]Fact, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	if _, ok := col["fact"]; !ok {
		return nil, errors.New("read csv: missing \"fact\" column")
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var out []Fact
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", line, err)
		}

		text := field(row, "fact")
		if text == "" {
			continue
		}
		f := Fact{
			Type:       field(row, "type"),
			Text:       text,
			SourceLink: field(row, "source_link"),
			Date:       field(row, "date"),
			Slug:       field(row, "slug"),
		}
		if f.Type == "" {
			f.Type = TypeGeneral
		}
		if raw := field(row, "id"); raw != "" {
			id, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("read csv row %d: invalid id %q", line, raw)
			}
			f.ID = id
		}
		out = append(out, f)
	}
	return out, nil
}

// ReadCSVFile reads facts from a CSV file and stamps SourceFile with its
// base name.
func ReadCSVFile(path string) ([]Fact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open facts csv: %w", err)
	}
	defer f.Close()

	out, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for i := range out {
		out[i].SourceFile = filepath.Base(path)
	}
	return out, nil
}

// EncodeCSV renders facts with CSVHeader. Output depends only on the
// facts, so identical input yields identical bytes.
func EncodeCSV(facts []Fact) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(CSVHeader); err != nil {
		return nil, err
	}
	for _, f := range facts {
		row := []string{strconv.Itoa(f.ID), f.Type, f.Text, f.SourceLink, f.Date, f.Slug}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteCSVFile atomically replaces path with facts rendered as CSV.
func WriteCSVFile(path string, facts []Fact) error {
	data, err := EncodeCSV(facts)
	if err != nil {
		return fmt.Errorf("encode facts csv: %w", err)
	}
	return WriteAtomic(path, data)
}

// jsonFact is the posting-ready pool representation.
type jsonFact struct {
	ID         int     `json:"id"`
	Text       string  `json:"text"`
	SourceURL  *string `json:"source_url"`
	Type       string  `json:"type"`
	Slug       *string `json:"slug"`
	SourceFile string  `json:"source_file"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// ReadJSON decodes a fact pool array.
func ReadJSON(r io.Reader) ([]Fact, error) {
	var raw []jsonFact
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode fact pool: %w", err)
	}
	out := make([]Fact, len(raw))
	for i, j := range raw {
		out[i] = Fact{
			ID:         j.ID,
			Type:       j.Type,
			Text:       j.Text,
			SourceLink: deref(j.SourceURL),
			Slug:       deref(j.Slug),
			SourceFile: j.SourceFile,
		}
	}
	return out, nil
}

// ReadJSONFile reads a fact pool from path.
func ReadJSONFile(path string) ([]Fact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fact pool: %w", err)
	}
	defer f.Close()
	return ReadJSON(f)
}

// EncodeJSON renders a fact pool as an indented JSON array.
func EncodeJSON(facts []Fact) ([]byte, error) {
	raw := make([]jsonFact, len(facts))
	for i, f := range facts {
		raw[i] = jsonFact{
			ID:         f.ID,
			Text:       f.Text,
			SourceURL:  optional(f.SourceLink),
			Type:       f.Type,
			Slug:       optional(f.Slug),
			SourceFile: f.SourceFile,
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(raw); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteJSONFile atomically replaces path with the fact pool.
func WriteJSONFile(path string, facts []Fact) error {
	data, err := EncodeJSON(facts)
	if err != nil {
		return fmt.Errorf("encode fact pool: %w", err)
	}
	return WriteAtomic(path, data)
}

// WriteAtomic writes data to a temporary file next to path and renames it
// into place, so readers never observe a partial file.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
