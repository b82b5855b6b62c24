package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/damon-houk/ppd-ingest-service/internal/application/service"
	"github.com/damon-houk/ppd-ingest-service/internal/domain/entity"
	domainservice "github.com/damon-houk/ppd-ingest-service/internal/domain/service"
	"github.com/damon-houk/ppd-ingest-service/internal/infrastructure/logger"
	"github.com/damon-houk/ppd-ingest-service/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// RecordHandler handles HTTP requests for price paid records
type RecordHandler struct {
	ingestion *service.IngestionService
	records   *service.RecordService
	logger    logger.Logger
}

// NewRecordHandler creates a new record handler
func NewRecordHandler(ingestion *service.IngestionService, records *service.RecordService, log logger.Logger) *RecordHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &RecordHandler{
		ingestion: ingestion,
		records:   records,
		logger:    log,
	}
}

// PopulateRecords godoc
// @Summary      Populate records from the feed
// @Description  Streams the Land Registry feed and saves up to count records, one transaction per record. Malformed lines are skipped.
// @Tags         records
// @Produce      json
// @Param        count  path      int  true  "Number of records to save"
// @Success      201    {object}  PopulateResponse
// @Failure      400    {object}  ErrorResponse
// @Failure      500    {object}  ErrorResponse
// @Failure      502    {object}  ErrorResponse
// @Router       /populate/{count} [post]
func (h *RecordHandler) PopulateRecords(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	raw := mux.Vars(r)["count"]

	h.logger.Info("Handling populate request", map[string]interface{}{
		"request_id": requestID,
		"count":      raw,
	})

	count, err := strconv.Atoi(raw)
	if err != nil || count <= 0 {
		h.logger.Warn("Invalid count", map[string]interface{}{
			"request_id": requestID,
			"count":      raw,
		})
		sendErrorResponse(w, h.logger, "Invalid count",
			"count must be a positive integer", http.StatusBadRequest, requestID)
		return
	}

	report, err := h.ingestion.Populate(r.Context(), count)
	if err != nil {
		h.sendServiceError(w, err, requestID, "populating records")
		return
	}

	writeJSON(w, http.StatusCreated, PopulateResponse{
		Requested: report.Requested,
		Saved:     report.Saved,
		Skipped:   report.Skipped,
		LinesRead: report.LinesRead,
	})
}

// GetRecords godoc
// @Summary      Query records
// @Description  Returns records filtered by price and record status, capped by limit. Filters are combined with AND.
// @Tags         records
// @Produce      json
// @Param        limit          query     int     false  "Maximum number of records"
// @Param        price          query     int     false  "Exact price"
// @Param        record_status  query     string  false  "Record status code"
// @Success      200            {array}   RecordResponse
// @Failure      400            {object}  ErrorResponse
// @Failure      500            {object}  ErrorResponse
// @Router       /get [get]
func (h *RecordHandler) GetRecords(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	filter, err := parseFilter(r)
	if err != nil {
		h.sendServiceError(w, err, requestID, "querying records")
		return
	}

	records, err := h.records.Query(r.Context(), filter)
	if err != nil {
		h.sendServiceError(w, err, requestID, "querying records")
		return
	}

	h.logger.Info("Records retrieved", map[string]interface{}{
		"request_id": requestID,
		"count":      len(records),
	})

	writeJSON(w, http.StatusOK, toRecordResponses(records))
}

// TruncateRecords godoc
// @Summary      Remove all records
// @Tags         records
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /truncate [get]
func (h *RecordHandler) TruncateRecords(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	if err := h.records.Clear(r.Context()); err != nil {
		h.sendServiceError(w, err, requestID, "truncating records")
		return
	}

	writeJSON(w, http.StatusOK, StatusResponse{Status: "truncated"})
}

// RegisterRoutes registers the record handler routes
func (h *RecordHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/populate/{count}", h.PopulateRecords).Methods("POST")
	router.HandleFunc("/get", h.GetRecords).Methods("GET")
	router.HandleFunc("/truncate", h.TruncateRecords).Methods("GET")

	h.logger.Info("Record routes registered", map[string]interface{}{
		"routes": []string{
			"POST /populate/{count}",
			"GET /get",
			"GET /truncate",
		},
	})
}

func parseFilter(r *http.Request) (entity.Filter, error) {
	var filter entity.Filter
	q := r.URL.Query()

	if q.Has("limit") {
		limit, err := strconv.Atoi(q.Get("limit"))
		if err != nil {
			return filter, &entity.ValidationError{Field: "limit", Message: "must be an integer"}
		}
		filter.Limit = &limit
	}
	if q.Has("price") {
		price, err := strconv.Atoi(q.Get("price"))
		if err != nil {
			return filter, &entity.ValidationError{Field: "price", Message: "must be an integer"}
		}
		filter.Price = &price
	}
	if q.Has("record_status") {
		status := q.Get("record_status")
		filter.RecordStatus = &status
	}

	return filter, filter.Validate()
}

// sendServiceError maps a service error to its HTTP status
func (h *RecordHandler) sendServiceError(w http.ResponseWriter, err error, requestID, action string) {
	var (
		validationErr  *entity.ValidationError
		persistenceErr *entity.PersistenceError
	)

	switch {
	case errors.As(err, &validationErr):
		h.logger.Warn("Request validation failed", map[string]interface{}{
			"request_id": requestID,
			"field":      validationErr.Field,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Invalid request parameter",
			validationErr.Error(), http.StatusBadRequest, requestID)
	case errors.Is(err, domainservice.ErrFeedUnavailable):
		h.logger.Error("Feed unavailable", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Feed unavailable",
			"The price paid data feed could not be read while "+action, http.StatusBadGateway, requestID)
	case errors.As(err, &persistenceErr):
		h.logger.Error("Persistence failure", map[string]interface{}{
			"request_id": requestID,
			"op":         persistenceErr.Op,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Internal server error",
			"A storage error occurred while "+action, http.StatusInternalServerError, requestID)
	default:
		h.logger.Error("Unexpected error", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Internal server error",
			"An unexpected error occurred while "+action, http.StatusInternalServerError, requestID)
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// sendErrorResponse sends a standardized error response
func sendErrorResponse(w http.ResponseWriter, log logger.Logger, message, description string, statusCode int, requestID string) {
	log.Debug("Sending error response", map[string]interface{}{
		"request_id":  requestID,
		"status_code": statusCode,
		"message":     message,
	})

	writeJSON(w, statusCode, ErrorResponse{
		Error:       message,
		Status:      statusCode,
		Description: description,
		RequestID:   requestID,
	})
}
