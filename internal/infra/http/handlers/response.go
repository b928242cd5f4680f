package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/xavierca1/lead-dashboard/internal/usecase"
)

type ErrorResponse struct {
	Success bool         `json:"success"`
	Code    string       `json:"code,omitempty"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.WithError(err).Warn("failed to encode response")
	}
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Success: false, Code: code, Message: message})
}

func writeValidationErrors(w http.ResponseWriter, errs []usecase.ValidationError) {
	writeFieldErrors(w, "INVALID_QUERY", "Invalid query parameters", errs)
}

func writeFieldErrors(w http.ResponseWriter, code, message string, errs []usecase.ValidationError) {
	fields := make([]FieldError, len(errs))
	for i, e := range errs {
		fields[i] = FieldError{Field: e.Field, Message: e.Message}
	}
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Success: false,
		Code:    code,
		Message: message,
		Errors:  fields,
	})
}

// writeUseCaseError maps use case failures onto HTTP statuses.
func writeUseCaseError(w http.ResponseWriter, err error) {
	var de *usecase.DomainError
	if errors.As(err, &de) {
		writeErrorResponse(w, domainStatus(de.Code), de.Code, de.Message)
		return
	}

	var te *usecase.TechnicalError
	if errors.As(err, &te) {
		logrus.WithError(te.Err).WithField("code", te.Code).Error(te.Message)
		writeErrorResponse(w, http.StatusBadGateway, te.Code, te.Message)
		return
	}

	logrus.WithError(err).Error("unexpected error")
	writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
}

func domainStatus(code string) int {
	switch code {
	case usecase.CodeLeadNotFound:
		return http.StatusNotFound
	case usecase.CodeTransitionInFlight, usecase.CodeLeadChanged, usecase.CodeInvalidTransition:
		return http.StatusConflict
	case usecase.CodeConfirmationRequired, usecase.CodeStatusNotSupported, usecase.CodePageOutOfRange:
		return http.StatusBadRequest
	case usecase.CodeSnapshotNotReady:
		return http.StatusServiceUnavailable
	default:
		return http.StatusUnprocessableEntity
	}
}
