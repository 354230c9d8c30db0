package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/camden-git/personasapi/models"
	"github.com/camden-git/personasapi/services"
)

// APIResponse is the envelope used by every write endpoint and every failure.
type APIResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Persona *models.Persona     `json:"persona,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
	Error   string              `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("Error encoding JSON response: %v", err)
		}
	}
}

// WriteAPIError writes a failure envelope with the given HTTP status.
func WriteAPIError(w http.ResponseWriter, httpStatus int, message string, detail string) {
	writeJSON(w, httpStatus, APIResponse{Success: false, Message: message, Error: detail})
}

// writeServiceError maps service errors onto status codes and envelopes.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *services.ValidationError
	var serr *services.StorageError
	switch {
	case errors.As(err, &verr):
		status := http.StatusUnprocessableEntity
		if errors.Is(err, services.ErrInvalidID) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, APIResponse{Success: false, Message: verr.Message, Errors: verr.Fields})
	case errors.Is(err, services.ErrNotFound):
		writeJSON(w, http.StatusNotFound, APIResponse{Success: false, Message: services.MsgNotFound})
	case errors.As(err, &serr):
		log.Printf("Storage error on %s %s: %v", r.Method, r.URL.Path, err)
		WriteAPIError(w, http.StatusInternalServerError, services.MsgStorage, serr.Err.Error())
	default:
		log.Printf("Internal error on %s %s: %v", r.Method, r.URL.Path, err)
		detail := err.Error()
		var ierr *services.InternalError
		if errors.As(err, &ierr) {
			detail = ierr.Err.Error()
		}
		WriteAPIError(w, http.StatusInternalServerError, services.MsgInternal, detail)
	}
}
