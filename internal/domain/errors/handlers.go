package errors

import (
	"net/http"

	"beacon/internal/errors"
)

// Describe reduces any error to the code and message that may be shown to a client.
// Details are appended for client errors only. Errors that are not AppErrors are reported
// as internal errors without leaking their text.
func Describe(err error) (code, message string, clientErr bool) {
	appErr, ok := errors.AsType[AppError](err)
	if !ok {
		return ErrInternalError.ErrorCode(), ErrInternalError.Message(), false
	}

	if appErr.HTTPCode() >= http.StatusInternalServerError {
		return appErr.ErrorCode(), appErr.Message(), false
	}

	message = appErr.Message()
	if appErr.Details() != "" {
		message += ": " + appErr.Details()
	}

	return appErr.ErrorCode(), message, true
}
