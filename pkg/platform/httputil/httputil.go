package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	id "aurum/pkg/domain"
	dErrors "aurum/pkg/domain-errors"
	"aurum/pkg/requestcontext"
)

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; an encoding error cannot change the status.
	_ = json.NewEncoder(w).Encode(response)
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteError translates transport-agnostic domain errors into HTTP responses.
// Internal errors never leak their message.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		response := ErrorResponse{Error: DomainCodeToHTTPCode(domainErr.Code)}
		if domainErr.Code != dErrors.CodeInternal {
			response.ErrorDescription = domainErr.Message
		}
		WriteJSON(w, DomainCodeToHTTPStatus(domainErr.Code), response)
		return
	}

	WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error: DomainCodeToHTTPCode(dErrors.CodeInternal),
	})
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound, dErrors.CodeAddressNotBlacklisted:
		return http.StatusNotFound
	case dErrors.CodeBadRequest, dErrors.CodeValidation, dErrors.CodeInvalidInput, dErrors.CodeInvariantViolation:
		return http.StatusBadRequest
	case dErrors.CodeInvalidAmount, dErrors.CodeInvalidRequestStatus, dErrors.CodeInsufficientBalance, dErrors.CodeCounterOverflow:
		return http.StatusUnprocessableEntity
	case dErrors.CodeConflict, dErrors.CodeContractPaused:
		return http.StatusConflict
	case dErrors.CodeUnauthorized, dErrors.CodeForbidden, dErrors.CodeAddressBlacklisted:
		return http.StatusForbidden
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	case dErrors.CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// DomainCodeToHTTPCode translates domain error codes to the JSON error field.
func DomainCodeToHTTPCode(code dErrors.Code) string {
	switch code {
	case dErrors.CodeNotFound:
		return "not_found"
	case dErrors.CodeBadRequest, dErrors.CodeInvalidInput:
		return "bad_request"
	case dErrors.CodeValidation, dErrors.CodeInvariantViolation:
		return "validation_error"
	case dErrors.CodeConflict:
		return "conflict"
	case dErrors.CodeForbidden:
		return "forbidden"
	case dErrors.CodeTimeout:
		return "timeout"
	case dErrors.CodeInvalidAmount, dErrors.CodeInvalidRequestStatus, dErrors.CodeAddressNotBlacklisted,
		dErrors.CodeCounterOverflow, dErrors.CodeInsufficientBalance, dErrors.CodeUnauthorized,
		dErrors.CodeContractPaused, dErrors.CodeAddressBlacklisted:
		return string(code)
	default:
		return "internal_error"
	}
}

// RequireSigner extracts the authenticated signer from context.
// The signer middleware guarantees one on protected routes, so a missing
// signer is a wiring bug and reported as internal.
func RequireSigner(ctx context.Context, logger *slog.Logger) (id.Address, error) {
	signer := requestcontext.Signer(ctx)
	if signer.IsZero() {
		if logger != nil {
			logger.ErrorContext(ctx, "signer missing from context despite signer middleware",
				"request_id", requestcontext.RequestID(ctx))
		}
		return id.Address{}, dErrors.New(dErrors.CodeInternal, "authentication context error")
	}
	return signer, nil
}
