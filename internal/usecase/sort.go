package usecase

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/xavierca1/lead-dashboard/internal/entity"
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

func ParseSortDirection(s string) (SortDirection, bool) {
	switch SortDirection(strings.ToLower(s)) {
	case SortAsc:
		return SortAsc, true
	case SortDesc:
		return SortDesc, true
	}
	return "", false
}

const (
	SortSubmittedAt       = "submittedAt"
	SortPushedAt          = "pushedAt"
	SortDuplicateMarkedAt = "duplicateMarkedAt"
)

type sortKind int

const (
	sortText sortKind = iota
	sortTemporal
	sortNumeric
)

var sortKeys = map[string]sortKind{
	SortSubmittedAt:       sortTemporal,
	"timestamp":           sortTemporal,
	SortPushedAt:          sortTemporal,
	SortDuplicateMarkedAt: sortTemporal,
	"age":                 sortNumeric,
	"yearOfBirth":         sortNumeric,
	"id":                  sortText,
	"name":                sortText,
	"email":               sortText,
	"phone":               sortText,
	"countryCode":         sortText,
	"income":              sortText,
	"city":                sortText,
	"campaign":            sortText,
	"source":              sortText,
	"language":            sortText,
	"status":              sortText,
}

// ParseSortKey accepts the sortable field names. "timestamp" is the legacy
// name of submittedAt in some collections.
func ParseSortKey(s string) (string, bool) {
	if s == "timestamp" {
		return SortSubmittedAt, true
	}
	_, ok := sortKeys[s]
	return s, ok
}

// SortLeads returns a new slice ordered by key. Leads without a value for a
// temporal key always come last, whatever the direction. Equal keys keep
// their input order.
func SortLeads(leads []entity.Lead, key string, dir SortDirection) []entity.Lead {
	out := make([]entity.Lead, len(leads))
	copy(out, leads)

	desc := dir == SortDesc

	switch sortKeys[key] {
	case sortTemporal:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := temporalValue(out[i], key), temporalValue(out[j], key)
			if a == nil || b == nil {
				return a != nil && b == nil
			}
			if desc {
				return a.After(*b)
			}
			return a.Before(*b)
		})
	case sortNumeric:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := parseIntPrefix(textValue(out[i], key)), parseIntPrefix(textValue(out[j], key))
			if desc {
				return a > b
			}
			return a < b
		})
	default:
		// collators keep internal buffers, one per call
		col := collate.New(language.English)
		sort.SliceStable(out, func(i, j int) bool {
			c := col.CompareString(textValue(out[i], key), textValue(out[j], key))
			if desc {
				return c > 0
			}
			return c < 0
		})
	}
	return out
}

func temporalValue(l entity.Lead, key string) *time.Time {
	switch key {
	case SortPushedAt:
		return l.PushedAt
	case SortDuplicateMarkedAt:
		return l.DuplicateMarkedAt
	default:
		return l.SubmittedAt
	}
}

func textValue(l entity.Lead, key string) string {
	switch key {
	case "id":
		return l.ID
	case "name":
		return l.Name
	case "email":
		return l.Email
	case "phone":
		return l.Phone
	case "countryCode":
		return l.CountryCode
	case "age":
		return l.Age
	case "yearOfBirth":
		return l.YearOfBirth
	case "income":
		return l.Income
	case "city":
		return l.City
	case "campaign":
		return l.Campaign
	case "source":
		return l.Source
	case "language":
		return l.Language
	case "status":
		return string(l.Status.OrDefault())
	}
	return ""
}

// parseIntPrefix reads a leading integer the way form inputs are usually
// typed ("32", " 41 years"). Anything unparseable counts as 0; values too
// wide for int64 saturate.
func parseIntPrefix(s string) int64 {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	// on ErrRange n already holds the saturated value
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0
	}
	return n
}
