package events

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"
	"time"
)

const maxProblems = 5

// headerWords are the column names that mark a header row
var headerWords = []string{"timestamp", "time", "date", "kind", "event", "status", "state"}

// Reader parses door logs
type Reader struct {
	Delimiter rune
}

// NewReader creates a reader for the given column delimiter
func NewReader(delimiter rune) *Reader {
	if delimiter == 0 {
		delimiter = ','
	}
	return &Reader{Delimiter: delimiter}
}

// Load reads the door log at path
func (r *Reader) Load(path string) (*LoadResult, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingInput, path)
		}
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return r.Read(file)
}

// Read parses a door log. Malformed rows are skipped and counted; only a
// log whose rows all fail to parse is an error.
func (r *Reader) Read(in io.Reader) (*LoadResult, error) {
	reader := csv.NewReader(in)
	reader.Comma = r.Delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	result := &LoadResult{}
	headerAllowed := true
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				result.Rows++
				result.skip(parseErr.StartLine, parseErr.Err.Error())
				continue
			}
			return nil, fmt.Errorf("failed to read input: %w", err)
		}

		if isBlank(row) {
			continue
		}
		line, _ := reader.FieldPos(0)

		record, perr := parseRow(row)
		if perr != nil {
			if headerAllowed && isHeader(row) {
				headerAllowed = false
				continue
			}
			headerAllowed = false
			result.Rows++
			result.skip(line, perr.Error())
			continue
		}
		headerAllowed = false
		result.Rows++
		result.Records = append(result.Records, record)
	}

	if result.Rows > 0 && len(result.Records) == 0 {
		return result, fmt.Errorf("%w: %d rows skipped", ErrNoUsableRows, result.Skipped)
	}

	sort.SliceStable(result.Records, func(i, j int) bool {
		return result.Records[i].Time.Before(result.Records[j].Time)
	})
	return result, nil
}

// Load reads a comma separated door log at path
func Load(path string) (*LoadResult, error) {
	return NewReader(',').Load(path)
}

func (r *LoadResult) skip(line int, reason string) {
	r.Skipped++
	if len(r.Problems) < maxProblems {
		r.Problems = append(r.Problems, RowError{Line: line, Reason: reason})
	}
}

// parseRow accepts {timestamp, kind} and the legacy {kind, timestamp} order
func parseRow(row []string) (Record, error) {
	if len(row) != 2 {
		return Record{}, fmt.Errorf("expected 2 columns, got %d", len(row))
	}

	first, second := strings.TrimSpace(row[0]), strings.TrimSpace(row[1])
	if ts, err := parseTimestamp(first); err == nil {
		kind, err := ParseKind(second)
		if err != nil {
			return Record{}, err
		}
		return Record{Time: ts, Kind: kind}, nil
	}

	ts, err := parseTimestamp(second)
	if err != nil {
		return Record{}, fmt.Errorf("invalid timestamp %q", first)
	}
	kind, err := ParseKind(first)
	if err != nil {
		return Record{}, err
	}
	return Record{Time: ts, Kind: kind}, nil
}

func parseTimestamp(s string) (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, s, time.UTC)
}

func isBlank(row []string) bool {
	for _, field := range row {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

// isHeader reports whether a row names its columns. A row carrying a
// timestamp is data, even when its other field is a header word.
func isHeader(row []string) bool {
	for _, field := range row {
		if _, err := parseTimestamp(strings.TrimSpace(field)); err == nil {
			return false
		}
	}
	for _, field := range row {
		field = strings.ToLower(strings.TrimSpace(field))
		for _, word := range headerWords {
			if field == word {
				return true
			}
		}
	}
	return false
}
