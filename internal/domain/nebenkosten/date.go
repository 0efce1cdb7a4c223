package nebenkosten

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// dateLayouts are tried in order when a date arrives as a string.
// Layouts without a zone are read as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02.01.2006",
}

// ParseDate coerces a JSON value into a date. It accepts ISO-8601 strings,
// German DD.MM.YYYY dates and numbers (Unix milliseconds). null and "" yield
// the zero time, which validation reports as a missing date.
func ParseDate(raw json.RawMessage) (time.Time, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}, nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return time.Time{}, err
		}
		return ParseDateString(s)
	}

	var ms float64
	if err := json.Unmarshal(raw, &ms); err != nil {
		return time.Time{}, fmt.Errorf("invalid date %s", raw)
	}
	if math.IsNaN(ms) || math.Abs(ms) > maxUnixMilli {
		return time.Time{}, fmt.Errorf("invalid date %s", raw)
	}
	return checkYear(time.UnixMilli(int64(ms)).UTC())
}

// maxUnixMilli is the largest timestamp a JavaScript Date can hold.
const maxUnixMilli = 8.64e15

// checkYear rejects dates that cannot be written back as ISO-8601, in their
// own zone or after normalization to UTC.
func checkYear(t time.Time) (time.Time, error) {
	for _, y := range []int{t.Year(), t.UTC().Year()} {
		if y < 0 || y > 9999 {
			return time.Time{}, fmt.Errorf("date %s out of range", t.Format(time.RFC3339))
		}
	}
	return t, nil
}

// ParseDateString parses s with the accepted layouts.
func ParseDateString(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return checkYear(t)
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// NormalizeDate converts t to UTC and drops the monotonic clock reading.
func NormalizeDate(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	return t.UTC().Round(0)
}

// UnmarshalJSON coerces both bounds with ParseDate. A key missing from the
// input keeps the bound's current value.
func (p *Period) UnmarshalJSON(data []byte) error {
	var raw struct {
		From json.RawMessage `json:"from"`
		To   json.RawMessage `json:"to"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.From != nil {
		from, err := ParseDate(raw.From)
		if err != nil {
			return fmt.Errorf("from: %w", err)
		}
		p.From = from
	}
	if raw.To != nil {
		to, err := ParseDate(raw.To)
		if err != nil {
			return fmt.Errorf("to: %w", err)
		}
		p.To = to
	}
	return nil
}

// Normalize returns p with both bounds normalized.
func (p Period) Normalize() Period {
	return Period{From: NormalizeDate(p.From), To: NormalizeDate(p.To)}
}

// Equal compares two periods by instant, ignoring location and monotonic data.
func (p Period) Equal(o Period) bool {
	return p.From.Equal(o.From) && p.To.Equal(o.To)
}

// Days returns the number of calendar days covered, both bounds inclusive.
func (p Period) Days() int {
	from := time.Date(p.From.Year(), p.From.Month(), p.From.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(p.To.Year(), p.To.Month(), p.To.Day(), 0, 0, 0, 0, time.UTC)
	if to.Before(from) {
		return 0
	}
	return int(to.Sub(from).Hours()/24) + 1
}
