package web

// errors.go provides unified error response handling for the web layer.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err)
//  3. Error is mapped via core.MapError to a user message and code
//  4. The code selects the HTTP status
//  5. Technical error + context is logged with request ID for correlation
//  6. User message is rendered as an HTMX fragment or JSON

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/JonMunkholm/csvcell/internal/core"
	"github.com/JonMunkholm/csvcell/internal/logging"
	"github.com/JonMunkholm/csvcell/internal/web/templates"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusByCode overrides the status derived from an error code's prefix.
var statusByCode = map[string]int{
	"ATTR001": http.StatusInternalServerError,
	"ATTR002": http.StatusUnprocessableEntity,
	"OP001":   http.StatusNotImplemented,
	"REQ001":  http.StatusBadRequest,
	"REQ002":  http.StatusRequestEntityTooLarge,
	"REQ003":  http.StatusServiceUnavailable,
	"REQ004":  http.StatusRequestTimeout,
	"REQ005":  http.StatusGatewayTimeout,
}

// statusByPrefix maps code families to a status.
var statusByPrefix = map[string]int{
	"CFG":  http.StatusInternalServerError,
	"VAL":  http.StatusUnprocessableEntity,
	"DB":   http.StatusServiceUnavailable,
	"RATE": http.StatusTooManyRequests,
}

// statusForCode returns the HTTP status for a user message code.
func statusForCode(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	prefix := strings.TrimRight(code, "0123456789")
	if status, ok := statusByPrefix[prefix]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// respondError handles error responses with user-friendly messages.
// It logs the technical error server-side and returns an HTMX fragment or
// JSON depending on the request.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	userMsg := core.MapError(err)
	statusCode := statusForCode(userMsg.Code)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if statusCode >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request error", attrs...)
	}

	if isHTMX(r) {
		renderErrorPartial(w, r, userMsg, statusCode)
		return
	}
	respondErrorJSON(w, userMsg, statusCode)
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// renderErrorPartial renders an HTMX-compatible error fragment.
func renderErrorPartial(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)

	if err := templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render error alert", "error", err)
	}
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// sensitiveMarkers flag messages that may carry connection details or SQL.
var sensitiveMarkers = []string{
	"postgres://",
	"postgresql://",
	"password",
	"SQLSTATE",
	"dial tcp",
}

// sanitizeErrorMessage strips details that must not reach clients: anything
// after the first newline, and whole messages that mention credentials,
// addresses or SQL state.
func sanitizeErrorMessage(msg string) string {
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	for _, marker := range sensitiveMarkers {
		if strings.Contains(msg, marker) {
			return "internal error"
		}
	}
	const maxLen = 200
	if len(msg) > maxLen {
		msg = msg[:maxLen] + "..."
	}
	return msg
}
