package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Timestamp is the canonical representation of deadlines and creation times.
// Server values are converted here, at the boundary: ISO forms and unix
// seconds are parsed, free-text labels ("Aujourd'hui 20h") decode to the zero
// time, meaning "unknown".
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp { return Timestamp{Time: t} }

// ParseTimestamp tries every accepted layout. ok is false for free text.
func ParseTimestamp(s string) (Timestamp, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t}, true
		}
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Timestamp{Time: time.Unix(secs, 0).UTC()}, true
	}
	return Timestamp{}, false
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.UTC().Format(time.RFC3339))
}

func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) || len(b) == 0 {
		*ts = Timestamp{}
		return nil
	}
	if b[0] != '"' {
		secs, err := strconv.ParseInt(string(b), 10, 64)
		if err != nil {
			*ts = Timestamp{}
			return nil
		}
		*ts = Timestamp{Time: time.Unix(secs, 0).UTC()}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, _ := ParseTimestamp(s)
	*ts = parsed
	return nil
}
