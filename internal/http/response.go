package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"ecom/internal/core"
	applog "ecom/internal/log"
)

// envelope is the body of every API response: success and message plus any
// payload keys.
type envelope map[string]any

// statusError is a client error with the status and message to send.
type statusError struct {
	status  int
	message string
}

func (e *statusError) Error() string { return e.message }

func httpError(status int, message string) error {
	return &statusError{status: status, message: message}
}

func badRequest(message string) error { return httpError(http.StatusBadRequest, message) }

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// respond writes a successful envelope. payload may be nil.
func respond(w http.ResponseWriter, status int, message string, payload envelope) {
	body := envelope{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range payload {
		body[k] = v
	}
	writeJSON(w, status, body)
}

// fail maps err to a status and writes the failure envelope. Unexpected
// errors are logged and reported as a generic 500.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	status, message := http.StatusInternalServerError, "Internal Server Error"

	var se *statusError
	var ve *core.ValidationError
	switch {
	case errors.As(err, &se):
		status, message = se.status, se.message
	case errors.As(err, &ve):
		status, message = http.StatusBadRequest, ve.Message
	case errors.Is(err, core.ErrNotFound):
		status, message = http.StatusNotFound, "Resource not Found"
	case errors.Is(err, core.ErrConflict):
		status, message = http.StatusConflict, "Resource already Exists"
	default:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldError, err)
	}

	writeJSON(w, status, envelope{"success": false, "message": message})
}

// notFoundAs rewrites core.ErrNotFound into a 400 carrying message, the way
// the API reports unknown ids.
func notFoundAs(err error, message string) error {
	if errors.Is(err, core.ErrNotFound) {
		return badRequest(message)
	}
	return err
}
