package usecase

import (
	"fmt"
	"time"

	"github.com/xavierca1/lead-dashboard/internal/entity"
	"github.com/xavierca1/lead-dashboard/internal/timestamp"
)

const (
	ExportPlaceholder = "N/A"
	ExportSheetName   = "Leads"
	// en-IN medium date and time style
	ExportTimeLayout = "2 Jan 2006, 3:04:05 pm"
)

type exportColumn struct {
	label    string
	temporal bool
	value    func(l entity.Lead) string
	instant  func(l entity.Lead) *time.Time
}

var exportColumns = map[string]exportColumn{
	"id":                {label: "ID", value: func(l entity.Lead) string { return l.ID }},
	"name":              {label: "Name", value: func(l entity.Lead) string { return l.Name }},
	"firstName":         {label: "First Name", value: func(l entity.Lead) string { return l.FirstName }},
	"phone":             {label: "Phone", value: func(l entity.Lead) string { return l.Phone }},
	"fullPhoneNumber":   {label: "Full Phone Number", value: func(l entity.Lead) string { return l.FullPhoneNumber }},
	"email":             {label: "Email", value: func(l entity.Lead) string { return l.Email }},
	"age":               {label: "Age", value: func(l entity.Lead) string { return l.Age }},
	"yearOfBirth":       {label: "Year of Birth", value: func(l entity.Lead) string { return l.YearOfBirth }},
	"income":            {label: "Income", value: func(l entity.Lead) string { return l.Income }},
	"city":              {label: "City", value: func(l entity.Lead) string { return l.City }},
	"countryCode":       {label: "Country Code", value: func(l entity.Lead) string { return l.CountryCode }},
	"campaign":          {label: "Campaign", value: func(l entity.Lead) string { return l.Campaign }},
	"status":            {label: "Status", value: func(l entity.Lead) string { return string(l.Status.OrDefault()) }},
	"submittedAt":       {label: "Submitted At", temporal: true, instant: func(l entity.Lead) *time.Time { return l.SubmittedAt }},
	"pushedAt":          {label: "Pushed At", temporal: true, instant: func(l entity.Lead) *time.Time { return l.PushedAt }},
	"duplicateMarkedAt": {label: "Duplicate Marked At", temporal: true, instant: func(l entity.Lead) *time.Time { return l.DuplicateMarkedAt }},
	"duplicateMarkedBy": {label: "Duplicate Marked By", value: func(l entity.Lead) string { return l.DuplicateMarkedBy }},
	"ipAddress":         {label: "IP Address", value: func(l entity.Lead) string { return l.IPAddress }},
	"language":          {label: "Language", value: func(l entity.Lead) string { return l.Language }},
	"source":            {label: "Source", value: func(l entity.Lead) string { return l.Source }},
	"notes":             {label: "Notes", value: func(l entity.Lead) string { return l.Notes }},
	"verifiedAt":        {label: "Verified At", value: func(l entity.Lead) string { return l.VerifiedAt }},
}

// ExportTable is a flat, labeled projection ready for a spreadsheet encoder.
type ExportTable struct {
	Sheet   string
	Columns []string
	Rows    [][]string
}

// ColumnIndex returns the position of a column label, or -1.
func (t ExportTable) ColumnIndex(label string) int {
	for i, c := range t.Columns {
		if c == label {
			return i
		}
	}
	return -1
}

// ToRows projects leads onto the collection's export columns, one row per
// lead in input order. Temporal columns are rendered in the collection zone.
func ToRows(leads []entity.Lead, c entity.Collection) ExportTable {
	cols := resolveColumns(c.ExportColumns)

	table := ExportTable{
		Sheet:   ExportSheetName,
		Columns: make([]string, len(cols)),
		Rows:    make([][]string, 0, len(leads)),
	}
	for i, col := range cols {
		table.Columns[i] = col.label
		if col.temporal && c.ZoneLabel != "" {
			table.Columns[i] = fmt.Sprintf("%s (%s)", col.label, c.ZoneLabel)
		}
	}

	for _, l := range leads {
		row := make([]string, len(cols))
		for i, col := range cols {
			var v string
			if col.temporal {
				if t := col.instant(l); t != nil {
					v = timestamp.Format(*t, c.OffsetMinutes, ExportTimeLayout)
				}
			} else {
				v = col.value(l)
			}
			if v == "" {
				v = ExportPlaceholder
			}
			row[i] = v
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

func resolveColumns(keys []string) []exportColumn {
	if len(keys) == 0 {
		keys = []string{"id", "name", "phone", "email", "status", "submittedAt", "pushedAt"}
	}
	cols := make([]exportColumn, 0, len(keys))
	for _, k := range keys {
		if col, ok := exportColumns[k]; ok {
			cols = append(cols, col)
		}
	}
	return cols
}

// ExportFilename follows <Label>-Leads-<YYYY-MM-DD>.xlsx with the UTC date.
func ExportFilename(c entity.Collection, now time.Time) string {
	label := c.Label
	if label == "" {
		label = c.Name
	}
	return fmt.Sprintf("%s-Leads-%s.xlsx", label, now.UTC().Format("2006-01-02"))
}
