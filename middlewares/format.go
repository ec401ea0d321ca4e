package middlewares

import (
	"encoding/json"
	"net/http"

	"blog-api/validation"

	"github.com/sirupsen/logrus"
)

var responseLog logrus.FieldLogger = logrus.StandardLogger()

// SetResponseLogger sets where response encoding failures are reported.
// nil restores the logrus standard logger.
func SetResponseLogger(log logrus.FieldLogger) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	responseLog = log
}

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	StatusCode int                     `json:"statusCode"`
	Message    string                  `json:"message"`
	Errors     []validation.FieldError `json:"errors,omitempty"`
}

func RespondJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; the client sees a truncated body.
			responseLog.WithError(err).Debug("failed to encode JSON response")
		}
	}
}

// RespondError writes an ErrorResponse with the given status and message.
func RespondError(w http.ResponseWriter, status int, message string, fields ...validation.FieldError) {
	RespondJSON(w, ErrorResponse{StatusCode: status, Message: message, Errors: fields}, status)
}
