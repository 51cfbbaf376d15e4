package web

// errors.go turns conversion errors into JSON responses.
//
// The technical error is logged with the request ID; the client gets the
// user message from core.MapError. The HTTP status follows from the message
// code, so a handler never picks a status for a core error itself.

import (
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/sheetmap/internal/core"
	"github.com/JonMunkholm/sheetmap/internal/logging"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// errNoFile is returned when a multipart import has no "file" part.
var errNoFile = errors.New("no file provided")

// respondError logs err and writes its user-facing form.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	msg := core.MapError(err)
	status := statusFor(err, msg.Code)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request error", attrs...)
	}

	writeError(w, status, ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error, code string) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}

	switch code {
	case "DS001":
		return http.StatusNotFound
	case "FILE001":
		return http.StatusRequestEntityTooLarge
	case "BUSY001":
		return http.StatusServiceUnavailable
	case "REQ002":
		return http.StatusGatewayTimeout
	case "ERR000":
		return http.StatusInternalServerError
	}

	for _, prefix := range []string{"CFG", "CONV", "WB", "VAL", "REQ", "FILE"} {
		if strings.HasPrefix(code, prefix) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

// writeError writes a JSON error body with the given status.
func writeError(w http.ResponseWriter, status int, body ErrorResponse) {
	writeJSON(w, status, body)
}
