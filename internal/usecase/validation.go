package usecase

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xavierca1/lead-dashboard/internal/entity"
	"github.com/xavierca1/lead-dashboard/internal/timestamp"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ViewQuery is the raw, unvalidated view state as it arrives on the wire.
type ViewQuery struct {
	Search    string
	Status    string
	Date      string
	Range     string
	Sort      string
	Direction string
	Page      string
}

// BuildViewState validates q against the collection and folds it into a
// ViewState. The page is applied last because every other change resets it.
func BuildViewState(c entity.Collection, q ViewQuery) (ViewState, []ValidationError) {
	var errs []ValidationError
	state := DefaultViewState()

	if strings.TrimSpace(q.Search) != "" {
		state = state.WithSearch(q.Search)
	}

	if q.Status != "" && q.Status != StatusAll {
		st, ok := entity.ParseStatus(q.Status)
		if !ok || !c.Supports(st) {
			errs = append(errs, ValidationError{"status", "is not a status of this collection"})
		} else {
			state = state.WithStatus(q.Status)
		}
	}

	if strings.TrimSpace(q.Date) != "" {
		d, err := timestamp.ParseDate(q.Date)
		if err != nil {
			errs = append(errs, ValidationError{"date", "must be a valid date (YYYY-MM-DD)"})
		} else {
			state = state.WithCalendarDate(&d)
		}
	}

	if q.Range != "" {
		r, ok := ParseDateRange(q.Range)
		if !ok {
			errs = append(errs, ValidationError{"range", "must be all, today, week or month"})
		} else {
			state = state.WithDateRange(r)
		}
	}

	if q.Sort != "" || q.Direction != "" {
		key := state.SortKey
		if q.Sort != "" {
			k, ok := ParseSortKey(q.Sort)
			if !ok {
				errs = append(errs, ValidationError{"sort", "is not a sortable field"})
			} else {
				key = k
			}
		}
		dir := state.SortDirection
		if q.Direction != "" {
			d, ok := ParseSortDirection(q.Direction)
			if !ok {
				errs = append(errs, ValidationError{"dir", "must be asc or desc"})
			} else {
				dir = d
			}
		}
		state = state.WithSortOrder(key, dir)
	}

	if q.Page != "" {
		p, err := strconv.Atoi(q.Page)
		if err != nil || p < 1 {
			errs = append(errs, ValidationError{"page", "must be a positive integer"})
		} else {
			state = state.WithPage(p)
		}
	}

	return state, errs
}
