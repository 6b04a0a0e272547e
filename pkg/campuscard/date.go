package campuscard

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Date is a custom type that handles date-only JSON values
type Date struct {
	time.Time
}

// NewDate returns the calendar date of t
func NewDate(t time.Time) Date {
	return Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// CalendarYear returns January 1 and December 31 of t's year in t's location
func CalendarYear(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	end := time.Date(t.Year(), time.December, 31, 0, 0, 0, 0, t.Location())
	return start, end
}

// ParseDate parses a YYYY-MM-DD string
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("unable to parse date: %s", s)
	}
	return Date{Time: t}, nil
}

// UnmarshalJSON implements json.Unmarshaler for Date
func (d *Date) UnmarshalJSON(data []byte) error {
	str := strings.Trim(string(data), `"`)

	if str == "" || str == "null" {
		d.Time = time.Time{}
		return nil
	}

	parsed, err := ParseDate(str)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON implements json.Marshaler for Date
func (d Date) MarshalJSON() ([]byte, error) {
	if d.Time.IsZero() {
		return []byte("null"), nil
	}
	return []byte(fmt.Sprintf(`"%s"`, d.Time.Format("2006-01-02"))), nil
}

// String returns the date as a string
func (d Date) String() string {
	if d.Time.IsZero() {
		return ""
	}
	return d.Time.Format("2006-01-02")
}

// timestampLayouts are tried in order for string time values
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006/01/02 15:04:05",
	"2006-01-02 15:04",
	"20060102150405",
	"2006-01-02",
	"2006/01/02",
	"20060102",
}

// epochMillisThreshold separates epoch seconds from epoch milliseconds
const epochMillisThreshold = 100000000000

// parseTimestamp reads a time value from a raw record. Values without a zone
// are read in loc.
func parseTimestamp(value interface{}, loc *time.Location) (time.Time, error) {
	switch v := value.(type) {
	case nil:
		return time.Time{}, fmt.Errorf("empty time value")
	case string:
		return parseTimestampString(v, loc)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return fromEpoch(n, loc), nil
		}
		return time.Time{}, fmt.Errorf("non-integer epoch %s", v.String())
	case float64:
		return fromEpoch(int64(v), loc), nil
	case int64:
		return fromEpoch(v, loc), nil
	case int:
		return fromEpoch(int64(v), loc), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported time value of type %T", value)
	}
}

func parseTimestampString(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty time value")
	}

	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}

	// Some API versions send epoch values as strings
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && len(s) >= 10 {
		return fromEpoch(n, loc), nil
	}

	return time.Time{}, fmt.Errorf("unable to parse timestamp: %s", s)
}

func fromEpoch(n int64, loc *time.Location) time.Time {
	if n >= epochMillisThreshold || n <= -epochMillisThreshold {
		return time.UnixMilli(n).In(loc)
	}
	return time.Unix(n, 0).In(loc)
}
