package entity

import (
	"time"

	"github.com/google/uuid"
)

// Record represents one Price Paid Data transaction entry
type Record struct {
	ID             uuid.UUID `json:"id"`
	Price          int       `json:"price"`
	DateOfTransfer time.Time `json:"date_of_transfer"`
	Postcode       string    `json:"postcode"`
	PropertyType   string    `json:"property_type"`
	IsResidential  string    `json:"is_residential"`
	EstateType     string    `json:"estate_type"`
	Duration       int       `json:"duration"`
	PAON           string    `json:"paon"`
	SAON           string    `json:"saon"`
	Street         string    `json:"street"`
	Locality       string    `json:"locality"`
	Town           string    `json:"town"`
	District       string    `json:"district"`
	CategoryType   string    `json:"category_type"`
	RecordStatus   string    `json:"record_status"`
}

// Filter holds the optional predicates applied to a record query.
// A nil field means the predicate is not set.
type Filter struct {
	Limit        *int
	Price        *int
	RecordStatus *string
}

// Matches reports whether the record satisfies the price and status predicates.
// Limit is not a per-record predicate and is ignored here.
func (f Filter) Matches(r *Record) bool {
	if f.Price != nil && r.Price != *f.Price {
		return false
	}
	if f.RecordStatus != nil && r.RecordStatus != *f.RecordStatus {
		return false
	}
	return true
}

// Validate ensures the filter can be sent to a store
func (f Filter) Validate() error {
	if f.Limit != nil && *f.Limit < 0 {
		return &ValidationError{Field: "limit", Message: "limit must not be negative"}
	}
	return nil
}
