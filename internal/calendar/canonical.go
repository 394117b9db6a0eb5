package calendar

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/runnerr0/factbook/internal/facts"
)

// RequiredColumns must all be present in the canonical header.
var RequiredColumns = facts.CSVHeader

// WriteCanonical writes the calendar CSV, hashes the bytes now on disk and
// writes the sidecar. Both writes are atomic; the digest always describes
// the file actually written. It returns the hex digest.
func WriteCanonical(calPath, hashPath string, cal []facts.Fact) (string, error) {
	if err := facts.WriteCSVFile(calPath, cal); err != nil {
		return "", fmt.Errorf("write calendar: %w", err)
	}
	digest, err := Checksum(calPath)
	if err != nil {
		return "", err
	}
	if hashPath == "" {
		return digest, nil
	}
	if err := facts.WriteAtomic(hashPath, []byte(ChecksumLine(digest, calPath))); err != nil {
		return "", fmt.Errorf("write checksum: %w", err)
	}
	return digest, nil
}

// Checksum returns the hex SHA-256 of the file at path.
func Checksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open calendar: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash calendar: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ChecksumLine renders a sidecar line in sha256sum format.
func ChecksumLine(digest, path string) string {
	return digest + "  " + filepath.Base(path) + "\n"
}

// ReadChecksumFile returns the digest stored in a sidecar: its first
// whitespace-separated token.
func ReadChecksumFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read checksum: %w", err)
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return "", fmt.Errorf("read checksum: %s is empty", path)
	}
	return strings.ToLower(fields[0]), nil
}

// Verification summarizes a successful VerifyCanonical run.
type Verification struct {
	Rows   int
	Digest string
	// ChecksumChecked is false when no sidecar was found.
	ChecksumChecked bool
}

// VerifyCanonical checks the calendar at calPath: required columns, exactly
// target rows, dense ids 1..target, non-empty types, the fact validation
// rules and, when the sidecar exists, the checksum. Every problem found is
// returned together in a *facts.ValidationError.
func VerifyCanonical(calPath, hashPath string, target int, limits facts.Limits) (*Verification, error) {
	data, err := os.ReadFile(calPath)
	if err != nil {
		return nil, fmt.Errorf("read calendar: %w", err)
	}

	var problems []facts.Problem
	add := func(id int, format string, args ...any) {
		problems = append(problems, facts.Problem{ID: id, Message: fmt.Sprintf(format, args...)})
	}

	header, rows, err := readRaw(data)
	if err != nil {
		return nil, fmt.Errorf("parse calendar: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	var missing []string
	for _, name := range RequiredColumns {
		if _, ok := col[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		add(0, "missing required columns: %s", strings.Join(missing, ", "))
		return nil, &facts.ValidationError{Problems: problems}
	}

	if len(rows) != target {
		add(0, "expected %d rows, found %d", target, len(rows))
	}
	for i, row := range rows {
		id := strings.TrimSpace(field(row, col["id"]))
		if id != strconv.Itoa(i+1) {
			add(0, "row %d has id %q, want %d", i+1, id, i+1)
		}
		if strings.TrimSpace(field(row, col["type"])) == "" {
			add(0, "row %d has an empty type", i+1)
		}
		if strings.TrimSpace(field(row, col["fact"])) == "" {
			add(0, "row %d has empty fact text", i+1)
		}
	}
	cal, err := facts.ReadCSV(bytes.NewReader(data))
	if err != nil {
		if len(problems) > 0 {
			return nil, &facts.ValidationError{Problems: problems}
		}
		return nil, fmt.Errorf("parse calendar: %w", err)
	}
	if err := facts.Validate(cal, limits); err != nil {
		var verr *facts.ValidationError
		if !errors.As(err, &verr) {
			return nil, err
		}
		problems = append(problems, verr.Problems...)
	}

	v := &Verification{Rows: len(rows)}
	v.Digest = hex.EncodeToString(sha256Sum(data))
	if hashPath != "" {
		want, err := ReadChecksumFile(hashPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			v.ChecksumChecked = true
			if want != v.Digest {
				add(0, "checksum mismatch: sidecar has %s, file hashes to %s", want, v.Digest)
			}
		}
	}

	if len(problems) > 0 {
		return nil, &facts.ValidationError{Problems: problems}
	}
	return v, nil
}

func sha256Sum(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// readRaw returns the header and data rows without interpretation.
func readRaw(data []byte) ([]string, [][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, nil
	}
	return records[0], records[1:], nil
}

func field(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
