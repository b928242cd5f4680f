package usecase

import (
	"strings"
	"time"

	"github.com/xavierca1/lead-dashboard/internal/entity"
	"github.com/xavierca1/lead-dashboard/internal/timestamp"
)

// StatusAll disables the status predicate.
const StatusAll = "all"

type DateRange string

const (
	RangeAll   DateRange = "all"
	RangeToday DateRange = "today"
	RangeWeek  DateRange = "week"
	RangeMonth DateRange = "month"
)

func ParseDateRange(s string) (DateRange, bool) {
	switch DateRange(s) {
	case RangeAll, RangeToday, RangeWeek, RangeMonth:
		return DateRange(s), true
	}
	return "", false
}

type FilterCriteria struct {
	SearchTerm      string
	Status          string
	CalendarDate    *timestamp.Date
	Range           DateRange
	OffsetMinutes   int
	SearchFullPhone bool
	// Now anchors the relative date ranges.
	Now time.Time
}

// FilterLeads returns the leads matching every active predicate. The input
// slice and its leads are left untouched.
func FilterLeads(leads []entity.Lead, c FilterCriteria) []entity.Lead {
	term := strings.ToLower(strings.TrimSpace(c.SearchTerm))
	rangeStart, hasRange := c.rangeStart()

	out := make([]entity.Lead, 0, len(leads))
	for _, lead := range leads {
		if term != "" && !matchesSearch(lead, term, c.SearchFullPhone) {
			continue
		}
		if c.Status != "" && c.Status != StatusAll && string(lead.Status.OrDefault()) != c.Status {
			continue
		}
		if c.CalendarDate != nil {
			if lead.SubmittedAt == nil {
				continue
			}
			if timestamp.CalendarDay(*lead.SubmittedAt, c.OffsetMinutes) != *c.CalendarDate {
				continue
			}
		}
		if hasRange {
			if lead.SubmittedAt == nil || lead.SubmittedAt.Before(rangeStart) {
				continue
			}
		}
		out = append(out, lead)
	}
	return out
}

func matchesSearch(l entity.Lead, term string, fullPhone bool) bool {
	fields := []string{l.Name, l.Phone, l.Email, l.ID}
	if fullPhone {
		fields = append(fields, l.FullPhoneNumber)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// rangeStart is the inclusive lower bound of the relative range, computed in
// the collection zone. Weeks start on Sunday.
func (c FilterCriteria) rangeStart() (time.Time, bool) {
	if c.Range == "" || c.Range == RangeAll {
		return time.Time{}, false
	}
	now := c.Now
	if now.IsZero() {
		now = time.Now()
	}
	local := now.In(timestamp.Zone(c.OffsetMinutes))
	y, m, d := local.Date()
	startOfToday := time.Date(y, m, d, 0, 0, 0, 0, local.Location())

	switch c.Range {
	case RangeToday:
		return startOfToday, true
	case RangeWeek:
		return startOfToday.AddDate(0, 0, -int(local.Weekday())), true
	case RangeMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, local.Location()), true
	}
	return time.Time{}, false
}
