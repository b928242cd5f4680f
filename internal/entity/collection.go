package entity

// TimestampEncoding controls how the dashboard writes audit timestamps back.
type TimestampEncoding string

const (
	TimestampNative TimestampEncoding = "native"
	TimestampISO    TimestampEncoding = "iso"
)

// OffsetIST is India Standard Time in minutes east of UTC.
const OffsetIST = 330

// Collection describes one lead collection and the per-variant differences
// the pipeline has to honor.
type Collection struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Label string `json:"label"`
	Title string `json:"title"`

	// TemporalField is the field the intake form stamps on creation and
	// the one the live query orders by.
	TemporalField   string            `json:"temporal_field"`
	Statuses        []Status          `json:"statuses"`
	OffsetMinutes   int               `json:"offset_minutes"`
	ZoneLabel       string            `json:"zone_label,omitempty"`
	PageSize        int               `json:"page_size"`
	TimestampWrites TimestampEncoding `json:"timestamp_writes"`
	SearchFullPhone bool              `json:"search_full_phone"`
	DefaultLanguage string            `json:"default_language,omitempty"`
	ExportColumns   []string          `json:"export_columns"`
}

func (c Collection) Supports(s Status) bool {
	for _, st := range c.Statuses {
		if st == s {
			return true
		}
	}
	return false
}

var baseColumns = []string{
	"id", "name", "phone", "email", "age", "yearOfBirth", "income", "countryCode",
	"status", "submittedAt", "pushedAt", "ipAddress", "language", "notes",
}

// DefaultCollections mirrors the dashboard pages in production.
func DefaultCollections() []Collection {
	return []Collection{
		{
			Name:            "nri-1501",
			Slug:            "nri-1501",
			Label:           "NRI-1501",
			Title:           "NRI 1501 Leads",
			TemporalField:   "submittedAt",
			Statuses:        []Status{StatusNew, StatusPushed, StatusContacted, StatusConverted},
			OffsetMinutes:   OffsetIST,
			PageSize:        20,
			TimestampWrites: TimestampNative,
			ExportColumns:   baseColumns,
		},
		{
			Name:            "nri-1503",
			Slug:            "nri-1503",
			Label:           "NRI-1503",
			Title:           "NRI 1503 Leads",
			TemporalField:   "submittedAt",
			Statuses:        []Status{StatusNew, StatusPushed, StatusContacted, StatusConverted},
			OffsetMinutes:   OffsetIST,
			PageSize:        20,
			TimestampWrites: TimestampNative,
			ExportColumns:   baseColumns,
		},
		{
			Name:            "nri-1504",
			Slug:            "nri-1504",
			Label:           "NRI-1504",
			Title:           "NRI 1504 Leads",
			TemporalField:   "timestamp",
			Statuses:        []Status{StatusNew, StatusPushed, StatusDuplicate},
			OffsetMinutes:   OffsetIST,
			ZoneLabel:       "IST",
			PageSize:        100,
			TimestampWrites: TimestampISO,
			SearchFullPhone: true,
			DefaultLanguage: "English",
			ExportColumns: []string{
				"id", "name", "phone", "fullPhoneNumber", "email", "age", "yearOfBirth", "income",
				"countryCode", "campaign", "status", "submittedAt", "pushedAt", "duplicateMarkedAt",
				"duplicateMarkedBy", "ipAddress", "language", "source", "notes", "verifiedAt",
			},
		},
		{
			Name:            "health-nri-1",
			Slug:            "health-nri-1",
			Label:           "Health-NRI",
			Title:           "Health NRI Leads",
			TemporalField:   "submittedAt",
			Statuses:        []Status{StatusNew, StatusPushed, StatusDuplicate},
			OffsetMinutes:   OffsetIST,
			ZoneLabel:       "IST",
			PageSize:        30,
			TimestampWrites: TimestampNative,
			ExportColumns: []string{
				"id", "name", "phone", "email", "age", "yearOfBirth", "income", "city", "countryCode",
				"status", "submittedAt", "pushedAt", "duplicateMarkedAt", "duplicateMarkedBy",
				"ipAddress", "language", "notes",
			},
		},
		{
			Name:            "dom-gujrati-01",
			Slug:            "dom-guj-01",
			Label:           "DOM-GUJ-01",
			Title:           "DOM Gujarati Leads",
			TemporalField:   "timestamp",
			Statuses:        []Status{StatusNew, StatusPushed, StatusContacted, StatusConverted},
			OffsetMinutes:   OffsetIST,
			PageSize:        20,
			TimestampWrites: TimestampNative,
			ExportColumns: []string{
				"id", "name", "firstName", "phone", "email", "age", "yearOfBirth", "income",
				"countryCode", "status", "submittedAt", "pushedAt", "ipAddress", "language",
				"source", "notes",
			},
		},
	}
}

// SelectCollections keeps the named collections, in registry order. An empty
// selection keeps everything.
func SelectCollections(all []Collection, names []string) []Collection {
	if len(names) == 0 {
		return all
	}
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	var out []Collection
	for _, c := range all {
		if wanted[c.Name] || wanted[c.Slug] {
			out = append(out, c)
		}
	}
	return out
}
