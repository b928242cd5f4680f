package timestamp

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"google.golang.org/protobuf/types/known/timestamppb"
)

// Kind identifies which representation a raw timestamp arrived in.
type Kind int

const (
	Absent Kind = iota
	Native
	ISOString
	Wrapped
	EpochSeconds
)

func (k Kind) String() string {
	switch k {
	case Native:
		return "native"
	case ISOString:
		return "iso_string"
	case Wrapped:
		return "wrapped"
	case EpochSeconds:
		return "epoch_seconds"
	default:
		return "absent"
	}
}

// Converter is implemented by timestamp wrappers that know how to turn
// themselves into a time.Time (timestamppb.Timestamp does).
type Converter interface {
	AsTime() time.Time
}

// Raw is the decoded form of a timestamp field as stored by the intake
// pipelines. Only the members matching Kind are meaningful.
type Raw struct {
	Kind    Kind
	Time    time.Time
	Text    string
	Wrapper Converter
	Seconds int64
	Nanos   int64
}

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Decode classifies an arbitrary field value coming from the document store.
func Decode(v any) Raw {
	switch t := v.(type) {
	case nil:
		return Raw{Kind: Absent}
	case time.Time:
		return Raw{Kind: Native, Time: t}
	case *time.Time:
		if t == nil {
			return Raw{Kind: Absent}
		}
		return Raw{Kind: Native, Time: *t}
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return Raw{Kind: Absent}
		}
		return Raw{Kind: ISOString, Text: s}
	case *timestamppb.Timestamp:
		if t == nil || !t.IsValid() {
			return Raw{Kind: Absent}
		}
		return Raw{Kind: Wrapped, Wrapper: t}
	case Converter:
		if isNilConverter(t) {
			return Raw{Kind: Absent}
		}
		return Raw{Kind: Wrapped, Wrapper: t}
	case map[string]any:
		return decodeEpoch(t)
	default:
		return Raw{Kind: Absent}
	}
}

// isNilConverter also catches a nil pointer stored in a non-nil interface.
func isNilConverter(c Converter) bool {
	if c == nil {
		return true
	}
	v := reflect.ValueOf(c)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return v.IsNil()
	}
	return false
}

func decodeEpoch(m map[string]any) Raw {
	secs, ok := firstNumber(m, "seconds", "_seconds")
	if !ok {
		return Raw{Kind: Absent}
	}
	nanos, _ := firstNumber(m, "nanoseconds", "_nanoseconds", "nanos")
	return Raw{Kind: EpochSeconds, Seconds: secs, Nanos: nanos}
}

func firstNumber(m map[string]any, keys ...string) (int64, bool) {
	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			continue
		}
		if n, ok := toInt64(v); ok {
			return n, true
		}
	}
	return 0, false
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			f, ferr := n.Float64()
			if ferr != nil {
				return 0, false
			}
			return int64(f), true
		}
		return i, true
	default:
		return 0, false
	}
}

// Normalize resolves a decoded timestamp to an absolute instant in UTC.
// The boolean is false for absent or invalid values.
func Normalize(r Raw) (time.Time, bool) {
	var t time.Time
	switch r.Kind {
	case Absent:
		return time.Time{}, false
	case Native:
		t = r.Time
	case ISOString:
		parsed, ok := parseISO(r.Text)
		if !ok {
			return time.Time{}, false
		}
		t = parsed
	case Wrapped:
		if isNilConverter(r.Wrapper) {
			return time.Time{}, false
		}
		t = r.Wrapper.AsTime()
	case EpochSeconds:
		// a zero epoch is how the intake forms write "unset"
		if r.Seconds == 0 && r.Nanos == 0 {
			return time.Time{}, false
		}
		t = time.Unix(r.Seconds, r.Nanos)
	default:
		return time.Time{}, false
	}

	if t.IsZero() || t.Year() < 1 || t.Year() > 9999 {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// Parse is Decode followed by Normalize.
func Parse(v any) (time.Time, bool) {
	return Normalize(Decode(v))
}

// ParsePtr returns nil when the value has no usable instant.
func ParsePtr(v any) *time.Time {
	t, ok := Parse(v)
	if !ok {
		return nil
	}
	return &t
}

func parseISO(s string) (time.Time, bool) {
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Date is a calendar day with no time or zone attached.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate reads a YYYY-MM-DD date as sent by a date picker.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid calendar date %q: %w", s, err)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Start returns midnight of the day in the given offset zone.
func (d Date) Start(offsetMinutes int) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, Zone(offsetMinutes))
}

// Zone builds a fixed zone east of UTC by offsetMinutes (330 for IST).
func Zone(offsetMinutes int) *time.Location {
	if offsetMinutes == 0 {
		return time.UTC
	}
	sign := "+"
	m := offsetMinutes
	if m < 0 {
		sign = "-"
		m = -m
	}
	name := fmt.Sprintf("UTC%s%02d:%02d", sign, m/60, m%60)
	return time.FixedZone(name, offsetMinutes*60)
}

// CalendarDay shifts t by offsetMinutes and truncates it to a date. The host
// timezone is never consulted.
func CalendarDay(t time.Time, offsetMinutes int) Date {
	y, m, d := t.In(Zone(offsetMinutes)).Date()
	return Date{Year: y, Month: m, Day: d}
}

func SameCalendarDay(a, b time.Time, offsetMinutes int) bool {
	return CalendarDay(a, offsetMinutes) == CalendarDay(b, offsetMinutes)
}

// Format renders t in the offset zone using layout.
func Format(t time.Time, offsetMinutes int, layout string) string {
	return t.In(Zone(offsetMinutes)).Format(layout)
}
