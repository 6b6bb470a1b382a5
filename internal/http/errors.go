package http

import (
	"errors"
	"net/http"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/export"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
)

// badRequest lists the sentinels that describe invalid client input.
var badRequest = []error{
	core.ErrInvalidAmount,
	core.ErrInvalidType,
	core.ErrInvalidStatus,
	core.ErrInvalidRecurrence,
	core.ErrInvalidInstallments,
	core.ErrNotRecurring,
	core.ErrEmptyDescription,
	core.ErrMissingCategory,
	core.ErrMissingDate,
	core.ErrEmptyCategoryName,
	services.ErrMissingIdentity,
	services.ErrNoInvoiceContent,
	services.ErrUnsupportedFile,
	auth.ErrPasswordTooShort,
	export.ErrUnknownFormat,
}

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	var fe FieldErrors
	switch {
	case errors.As(err, &fe):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, core.ErrInvalidCredentials):
		return http.StatusUnauthorized
	}
	for _, target := range badRequest {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

// writeError reports err to the client. Unexpected errors are logged and hidden.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		fe.Response().Write(w)
		return
	}

	status := statusFor(err)
	if status == http.StatusInternalServerError {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldError, err)
		InternalServerError().Write(w)
		return
	}
	ErrorResponse(status, err.Error()).Write(w)
}
