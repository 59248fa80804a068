package cli

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("hello world\n"), "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
	assert.Equal(t, "Name?\n> ", out.String())
}

func TestGetSimpleTextEOF(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("lastline"), "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "lastline", got)

	_, err = GetSimpleText(rdr(""), "Name?", &out)
	require.Error(t, err)
}

func TestGetMultiline_DoubleEnter(t *testing.T) {
	var out bytes.Buffer
	got, err := GetMultiline(rdr("a\nb\n\n\n"), "Enter text", &out)
	require.NoError(t, err)
	assert.Equal(t, "a\nb", got)
}

func TestGetPassword(t *testing.T) {
	old := readPassword
	t.Cleanup(func() { readPassword = old })

	readPassword = func(int) ([]byte, error) { return []byte("s3cret"), nil }
	var out bytes.Buffer
	pw, err := GetPassword(&out)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", string(pw))

	readPassword = func(int) ([]byte, error) { return nil, errors.New("boom") }
	_, err = GetPassword(&out)
	require.Error(t, err)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"gluten", "lait", "oeufs"}, splitList("gluten, lait ,, oeufs"))
	assert.Nil(t, splitList(" , "))
}

func TestParseAssignments(t *testing.T) {
	got, err := parseAssignments([]string{"title=Pain", "de", "campagne", "Quantity=3"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"title": "Pain de campagne", "quantity": "3"}, got)

	_, err = parseAssignments([]string{"oops"})
	require.Error(t, err)

	_, err = parseAssignments([]string{"=x"})
	require.Error(t, err)
}

func TestParseDeadline(t *testing.T) {
	now := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		in   string
		want time.Time
	}{
		{"3h", now.Add(3 * time.Hour)},
		{"18:00", time.Date(2026, 10, 19, 18, 0, 0, 0, time.UTC)},
		{"2026-10-20 18:00", time.Date(2026, 10, 20, 18, 0, 0, 0, time.UTC)},
		{"2026-10-20T18:00:00Z", time.Date(2026, 10, 20, 18, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseDeadline(tt.in, now)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got.Time), "got %v", got.Time)
		})
	}

	empty, err := parseDeadline("", now)
	require.NoError(t, err)
	assert.True(t, empty.IsZero())

	_, err = parseDeadline("Aujourd'hui 20h", now)
	require.Error(t, err)
}
