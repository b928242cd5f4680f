package entity

import (
	"context"
	"errors"
	"time"
)

type Status string

const (
	StatusNew       Status = "new"
	StatusPushed    Status = "pushed"
	StatusDuplicate Status = "duplicate"
	StatusContacted Status = "contacted"
	StatusConverted Status = "converted"
)

var AllStatuses = []Status{StatusNew, StatusPushed, StatusDuplicate, StatusContacted, StatusConverted}

// OrDefault treats an unset status as new.
func (s Status) OrDefault() Status {
	if s == "" {
		return StatusNew
	}
	return s
}

func ParseStatus(s string) (Status, bool) {
	for _, st := range AllStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Lead is the canonical form of an inbound inquiry, whatever collection it
// was read from. String attributes are never nil-like: missing means "".
type Lead struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	FirstName       string `json:"first_name,omitempty"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	FullPhoneNumber string `json:"full_phone_number,omitempty"`
	CountryCode     string `json:"country_code"`
	Age             string `json:"age"`
	YearOfBirth     string `json:"year_of_birth"`
	Income          string `json:"income"`
	City            string `json:"city"`
	Campaign        string `json:"campaign"`
	Source          string `json:"source"`
	Language        string `json:"language"`
	IPAddress       string `json:"ip_address"`
	Notes           string `json:"notes"`
	VerifiedAt      string `json:"verified_at,omitempty"`
	Status          Status `json:"status"`

	SubmittedAt       *time.Time `json:"submitted_at,omitempty"`
	PushedAt          *time.Time `json:"pushed_at,omitempty"`
	DuplicateMarkedAt *time.Time `json:"duplicate_marked_at,omitempty"`
	DuplicateMarkedBy string     `json:"duplicate_marked_by,omitempty"`
}

// RawRecord is a document exactly as the store delivered it.
type RawRecord struct {
	ID         string
	Fields     map[string]any
	CreateTime time.Time
	UpdateTime time.Time
}

// Snapshot is a full copy of a collection at ReadTime, ordered by creation.
type Snapshot struct {
	Collection string
	Records    []RawRecord
	ReadTime   time.Time
}

// LeadDocument is the persisted state the status guard reads before writing.
type LeadDocument struct {
	ID         string
	Status     Status
	UpdateTime time.Time
}

var (
	ErrLeadNotFound     = errors.New("lead not found")
	ErrConcurrentUpdate = errors.New("lead changed since it was read")
)

type LeadRepositoryInterface interface {
	Get(ctx context.Context, collection, id string) (*LeadDocument, error)
	// UpdateFields writes a partial update. It fails with ErrConcurrentUpdate
	// when the document's update time no longer matches readAt.
	UpdateFields(ctx context.Context, collection, id string, readAt time.Time, fields map[string]any) error
}
