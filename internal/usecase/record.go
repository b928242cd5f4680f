package usecase

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xavierca1/lead-dashboard/internal/entity"
	"github.com/xavierca1/lead-dashboard/internal/timestamp"
)

// NormalizeRecord maps a raw document onto the canonical Lead, resolving the
// legacy field aliases used by the different intake forms.
func NormalizeRecord(rec entity.RawRecord, c entity.Collection) entity.Lead {
	f := rec.Fields

	lead := entity.Lead{
		ID:                rec.ID,
		Name:              stringField(f, "name", "firstName"),
		FirstName:         stringField(f, "firstName"),
		Email:             stringField(f, "email"),
		Phone:             stringField(f, "phone"),
		FullPhoneNumber:   stringField(f, "fullPhoneNumber", "phone"),
		CountryCode:       stringField(f, "countryCode"),
		Age:               stringField(f, "age"),
		YearOfBirth:       stringField(f, "year_of_birth", "yearOfBirth", "year"),
		Income:            stringField(f, "income"),
		City:              stringField(f, "city"),
		Campaign:          stringField(f, "campaign"),
		Source:            stringField(f, "source"),
		Language:          stringField(f, "language"),
		IPAddress:         stringField(f, "ipAddress"),
		Notes:             stringField(f, "notes"),
		VerifiedAt:        stringField(f, "verifiedAt"),
		Status:            entity.Status(stringField(f, "status")).OrDefault(),
		PushedAt:          timeField(f, "pushedAt"),
		DuplicateMarkedAt: timeField(f, "duplicateMarkedAt"),
		DuplicateMarkedBy: stringField(f, "duplicateMarkedBy"),
	}

	if lead.Language == "" {
		lead.Language = c.DefaultLanguage
	}

	lead.SubmittedAt = submittedAt(rec, c)
	return lead
}

// NormalizeSnapshot keeps the snapshot's order.
func NormalizeSnapshot(snap entity.Snapshot, c entity.Collection) []entity.Lead {
	leads := make([]entity.Lead, 0, len(snap.Records))
	for _, rec := range snap.Records {
		leads = append(leads, NormalizeRecord(rec, c))
	}
	return leads
}

func submittedAt(rec entity.RawRecord, c entity.Collection) *time.Time {
	keys := []string{"submittedAt", "timestamp"}
	if c.TemporalField != "" {
		keys = append([]string{c.TemporalField}, keys...)
	}
	if t := timeField(rec.Fields, keys...); t != nil {
		return t
	}
	if !rec.CreateTime.IsZero() {
		t := rec.CreateTime.UTC()
		return &t
	}
	return nil
}

func timeField(f map[string]any, keys ...string) *time.Time {
	for _, k := range keys {
		if t := timestamp.ParsePtr(f[k]); t != nil {
			return t
		}
	}
	return nil
}

func stringField(f map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := toString(f[k]); s != "" {
			return s
		}
	}
	return ""
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return ""
		}
		// phone numbers stored as numbers must not come out as 9.87e+09
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(t)
	}
}
