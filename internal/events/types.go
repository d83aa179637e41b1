package events

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the fixed timestamp format of the door log
const TimestampLayout = "2006-01-02 15:04:05"

var (
	// ErrMissingInput is returned when the door log does not exist
	ErrMissingInput = errors.New("input file not found")
	// ErrNoUsableRows is returned when the door log has rows but none of them parse
	ErrNoUsableRows = errors.New("no usable rows in input")
)

// Kind is the door state an event reports
type Kind uint8

const (
	Close Kind = iota
	Open
)

func (k Kind) String() string {
	if k == Open {
		return "open"
	}
	return "close"
}

// ParseKind parses the event kind vocabulary: open/opened/1 and close/closed/0
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "open", "opened", "1":
		return Open, nil
	case "close", "closed", "0":
		return Close, nil
	}
	return Close, fmt.Errorf("unknown event kind %q", s)
}

// Record is a single door observation
type Record struct {
	Time time.Time
	Kind Kind
}

// RowError describes a row that was skipped
type RowError struct {
	Line   int
	Reason string
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// LoadResult holds the parsed records together with the parse bookkeeping
type LoadResult struct {
	Records []Record
	// Rows counts the data rows seen, excluding blank lines and a header.
	Rows    int
	Skipped int
	// Problems keeps the first few skipped rows for reporting.
	Problems []RowError
}

// First returns the earliest record time
func (r *LoadResult) First() time.Time {
	if len(r.Records) == 0 {
		return time.Time{}
	}
	return r.Records[0].Time
}

// Last returns the latest record time
func (r *LoadResult) Last() time.Time {
	if len(r.Records) == 0 {
		return time.Time{}
	}
	return r.Records[len(r.Records)-1].Time
}
