package usecase

import (
	"time"

	"github.com/xavierca1/lead-dashboard/internal/entity"
	"github.com/xavierca1/lead-dashboard/internal/timestamp"
)

// ViewState is everything the list view depends on besides the data. It is a
// value: every With method returns a modified copy, and any change to the
// filters or the ordering sends the view back to page 1.
type ViewState struct {
	SearchTerm    string          `json:"search"`
	Status        string          `json:"status"`
	CalendarDate  *timestamp.Date `json:"-"`
	DateRange     DateRange       `json:"range"`
	SortKey       string          `json:"sort"`
	SortDirection SortDirection   `json:"dir"`
	Page          int             `json:"page"`
}

func DefaultViewState() ViewState {
	return ViewState{
		Status:        StatusAll,
		DateRange:     RangeAll,
		SortKey:       SortSubmittedAt,
		SortDirection: SortDesc,
		Page:          1,
	}
}

func (v ViewState) WithSearch(term string) ViewState {
	v.SearchTerm = term
	v.Page = 1
	return v
}

func (v ViewState) WithStatus(status string) ViewState {
	v.Status = status
	v.Page = 1
	return v
}

func (v ViewState) WithCalendarDate(d *timestamp.Date) ViewState {
	if d != nil {
		cp := *d
		d = &cp
	}
	v.CalendarDate = d
	v.Page = 1
	return v
}

func (v ViewState) WithDateRange(r DateRange) ViewState {
	v.DateRange = r
	v.Page = 1
	return v
}

// WithSort behaves like clicking a column header: the same key while
// descending flips to ascending, anything else sorts descending.
func (v ViewState) WithSort(key string) ViewState {
	if v.SortKey == key && v.SortDirection == SortDesc {
		v.SortDirection = SortAsc
	} else {
		v.SortDirection = SortDesc
	}
	v.SortKey = key
	v.Page = 1
	return v
}

func (v ViewState) WithSortOrder(key string, dir SortDirection) ViewState {
	v.SortKey = key
	v.SortDirection = dir
	v.Page = 1
	return v
}

func (v ViewState) WithPage(page int) ViewState {
	v.Page = page
	return v
}

func (v ViewState) Reset() ViewState {
	return DefaultViewState()
}

// DateLabel is the calendar filter as YYYY-MM-DD, empty when unset.
func (v ViewState) DateLabel() string {
	if v.CalendarDate == nil {
		return ""
	}
	return v.CalendarDate.String()
}

// Criteria turns the state into filter criteria for a collection.
func (v ViewState) Criteria(c entity.Collection, now time.Time) FilterCriteria {
	return FilterCriteria{
		SearchTerm:      v.SearchTerm,
		Status:          v.Status,
		CalendarDate:    v.CalendarDate,
		Range:           v.DateRange,
		OffsetMinutes:   c.OffsetMinutes,
		SearchFullPhone: c.SearchFullPhone,
		Now:             now,
	}
}
