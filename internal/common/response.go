package common

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

// MsgInternal is the only text a client sees for unexpected failures.
const MsgInternal = "Внутренняя ошибка сервера."

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, ErrorResponse{Error: message})
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// RespondWithServiceError writes err using HTTPStatusFromError. Server-side
// failures are logged and answered with MsgInternal so internals never leak.
func RespondWithServiceError(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	code := HTTPStatusFromError(err)
	if code == http.StatusInternalServerError {
		log.WithError(err).Error("request failed")
		RespondWithError(w, code, MsgInternal)
		return
	}
	RespondWithError(w, code, PublicMessage(err, http.StatusText(code)))
}
