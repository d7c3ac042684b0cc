package handlers

import (
	"errors"
	"net/http"

	"railbook/internal/domain"
	"railbook/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the error body every handler returns.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	c.JSON(status, ErrorResponse{
		Error:     message,
		Code:      code,
		Details:   details,
		RequestID: middleware.GetRequestID(c),
	})
}

// RespondDomainError maps domain errors to HTTP responses.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "invalid_credentials", err.Error(), nil)
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, errorCode(err, "validation_error"), err.Error(), validationDetails(err))
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, errorCode(err, "not_found"), err.Error(), nil)
	case domain.IsConflict(err):
		var details any
		if seats := domain.ConflictingSeats(err); len(seats) > 0 {
			details = gin.H{"seats": seats}
		}
		respondError(c, http.StatusConflict, errorCode(err, "conflict"), err.Error(), details)
	default:
		respondError(c, http.StatusInternalServerError, "internal_error", "something went wrong", nil)
	}
}

var errorCodes = []struct {
	err  error
	code string
}{
	{domain.ErrInvalidSeat, "invalid_seat"},
	{domain.ErrSelectionLimitExceeded, "selection_limit_exceeded"},
	{domain.ErrSeatUnavailable, "seat_unavailable"},
	{domain.ErrUnknownClass, "unknown_class"},
	{domain.ErrInvalidPassengerDetails, "invalid_passenger_details"},
	{domain.ErrInvalidPaymentDetails, "invalid_payment_details"},
	{domain.ErrNotFound, "booking_not_found"},
	{domain.ErrAlreadyCancelled, "already_cancelled"},
	{domain.ErrTrainNotFound, "train_not_found"},
	{domain.ErrSessionNotFound, "session_not_found"},
	{domain.ErrSessionStage, "invalid_session_stage"},
	{domain.ErrEmptySelection, "empty_selection"},
	{domain.ErrInvalidPax, "invalid_pax"},
	{domain.ErrInvalidDate, "invalid_date"},
	{domain.ErrEmailTaken, "email_taken"},
}

// errorCode names the sentinel behind err, or returns fallback.
func errorCode(err error, fallback string) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return fallback
}

func validationDetails(err error) any {
	var ve domain.ValidationError
	if errors.As(err, &ve) && ve.Field != "" {
		return gin.H{"field": ve.Field}
	}
	return nil
}
