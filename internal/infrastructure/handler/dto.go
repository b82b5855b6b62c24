package handler

import (
	"time"

	"github.com/damon-houk/ppd-ingest-service/internal/domain/entity"
)

// ErrorResponse represents the body of every 4xx and 5xx response
type ErrorResponse struct {
	Error       string `json:"error"`
	Status      int    `json:"status"`
	Description string `json:"description"`
	RequestID   string `json:"request_id"`
}

// RecordResponse represents one price paid record
type RecordResponse struct {
	ID             string `json:"id"`
	Price          int    `json:"price"`
	DateOfTransfer string `json:"date_of_transfer"`
	Postcode       string `json:"postcode"`
	PropertyType   string `json:"property_type"`
	IsResidential  string `json:"is_residential"`
	EstateType     string `json:"estate_type"`
	Duration       int    `json:"duration"`
	PAON           string `json:"paon"`
	SAON           string `json:"saon"`
	Street         string `json:"street"`
	Locality       string `json:"locality"`
	Town           string `json:"town"`
	District       string `json:"district"`
	CategoryType   string `json:"category_type"`
	RecordStatus   string `json:"record_status"`
}

// PopulateResponse represents the outcome of a populate request
type PopulateResponse struct {
	Requested int `json:"requested"`
	Saved     int `json:"saved"`
	Skipped   int `json:"skipped"`
	LinesRead int `json:"lines_read"`
}

// StatusResponse is returned by truncate and health
type StatusResponse struct {
	Status string `json:"status"`
}

func toRecordResponses(records []*entity.Record) []RecordResponse {
	resp := make([]RecordResponse, 0, len(records))
	for _, r := range records {
		resp = append(resp, RecordResponse{
			ID:             r.ID.String(),
			Price:          r.Price,
			DateOfTransfer: r.DateOfTransfer.UTC().Format(time.RFC3339),
			Postcode:       r.Postcode,
			PropertyType:   r.PropertyType,
			IsResidential:  r.IsResidential,
			EstateType:     r.EstateType,
			Duration:       r.Duration,
			PAON:           r.PAON,
			SAON:           r.SAON,
			Street:         r.Street,
			Locality:       r.Locality,
			Town:           r.Town,
			District:       r.District,
			CategoryType:   r.CategoryType,
			RecordStatus:   r.RecordStatus,
		})
	}
	return resp
}
