package events

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func read(t *testing.T, input string) *LoadResult {
	t.Helper()
	result, err := NewReader(',').Read(strings.NewReader(input))
	require.NoError(t, err)
	return result
}

func TestRead_TimestampKindRows(t *testing.T) {
	result := read(t, "2014-11-01 08:00:00,open\n2014-11-01 18:00:00,close\n2014-11-02 08:00:00,open\n")

	require.Len(t, result.Records, 3)
	assert.Equal(t, 3, result.Rows)
	assert.Zero(t, result.Skipped)
	assert.Equal(t, time.Date(2014, 11, 1, 8, 0, 0, 0, time.UTC), result.Records[0].Time)
	assert.Equal(t, Open, result.Records[0].Kind)
	assert.Equal(t, Close, result.Records[1].Kind)
	assert.Equal(t, result.Records[0].Time, result.First())
	assert.Equal(t, time.Date(2014, 11, 2, 8, 0, 0, 0, time.UTC), result.Last())
}

func TestRead_LegacyStatusTimestampRows(t *testing.T) {
	result := read(t, "1,2015-01-05 09:00:00\n0,2015-01-05 09:15:00\n")

	require.Len(t, result.Records, 2)
	assert.Equal(t, Open, result.Records[0].Kind)
	assert.Equal(t, Close, result.Records[1].Kind)
}

func TestRead_HeaderAndBlankLinesIgnored(t *testing.T) {
	result := read(t, "timestamp,kind\n\n2015-01-05 09:00:00,OPENED\n   \n2015-01-05 09:15:00,Closed\n")

	assert.Len(t, result.Records, 2)
	assert.Equal(t, 2, result.Rows)
	assert.Zero(t, result.Skipped)
}

func TestRead_TimestampedFirstRowIsNotAHeader(t *testing.T) {
	result := read(t, "2015-01-05 09:00:00,state\n2015-01-05 09:15:00,close\n")

	assert.Len(t, result.Records, 1)
	assert.Equal(t, 2, result.Rows)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Problems, 1)
	assert.Equal(t, 1, result.Problems[0].Line)
}

func TestRead_MalformedRowsSkippedAndCounted(t *testing.T) {
	input := strings.Join([]string{
		"2015-01-05 09:00:00,open",
		"bad-timestamp,close",
		"2015-01-05 09:30:00,ajar",
		"2015-01-05 09:45:00",
		"2015-01-05 10:00:00,close",
	}, "\n")

	result := read(t, input)

	assert.Len(t, result.Records, 2)
	assert.Equal(t, 5, result.Rows)
	assert.Equal(t, 3, result.Skipped)
	require.Len(t, result.Problems, 3)
	assert.Equal(t, 2, result.Problems[0].Line)
	assert.Contains(t, result.Problems[0].Error(), "line 2")
	assert.Contains(t, result.Problems[1].Reason, "unknown event kind")
	assert.Contains(t, result.Problems[2].Reason, "expected 2 columns")
}

func TestRead_SortsByTimeKeepingTies(t *testing.T) {
	result := read(t, "2015-01-05 10:00:00,close\n2015-01-05 09:00:00,open\n2015-01-05 09:00:00,close\n")

	require.Len(t, result.Records, 3)
	assert.Equal(t, Open, result.Records[0].Kind)
	assert.Equal(t, Close, result.Records[1].Kind)
	assert.Equal(t, 10, result.Records[2].Time.Hour())
}

func TestRead_EmptyInput(t *testing.T) {
	result := read(t, "")

	assert.Empty(t, result.Records)
	assert.Zero(t, result.Rows)
	assert.True(t, result.First().IsZero())
}

func TestRead_AllRowsMalformed(t *testing.T) {
	result, err := NewReader(',').Read(strings.NewReader("x,y\nfoo,bar\n"))

	assert.True(t, errors.Is(err, ErrNoUsableRows))
	require.NotNil(t, result)
	assert.Equal(t, 2, result.Skipped)
}

func TestRead_CustomDelimiter(t *testing.T) {
	result, err := NewReader(';').Read(strings.NewReader("2015-01-05 09:00:00;open\n"))
	require.NoError(t, err)
	assert.Len(t, result.Records, 1)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "door.csv"))
	assert.True(t, errors.Is(err, ErrMissingInput))
}

func TestLoad_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "door.csv")
	require.NoError(t, os.WriteFile(path, []byte("2015-01-05 09:00:00,open\n2015-01-05 09:15:00,close\n"), 0o644))

	first, err := Load(path)
	require.NoError(t, err)
	second, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestParseKind(t *testing.T) {
	for input, want := range map[string]Kind{"open": Open, " 1 ": Open, "Opened": Open, "close": Close, "0": Close, "CLOSED": Close} {
		got, err := ParseKind(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseKind("2")
	assert.Error(t, err)
	assert.Equal(t, "open", Open.String())
	assert.Equal(t, "close", Close.String())
}
