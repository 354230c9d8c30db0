package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/camden-git/personasapi/models"
	"github.com/camden-git/personasapi/services"
	"github.com/go-chi/chi/v5"
)

const (
	msgCreated = "Persona creada con éxito"
	msgUpdated = "Persona actualizada con éxito"
	msgDeleted = "Persona eliminada con éxito."
	msgBadBody = "Cuerpo de la solicitud inválido"
)

type PersonaHandler struct {
	Service        *services.PersonaService
	MaxUploadBytes int64
}

func NewPersonaHandler(svc *services.PersonaService, maxUploadBytes int64) *PersonaHandler {
	return &PersonaHandler{Service: svc, MaxUploadBytes: maxUploadBytes}
}

func (ph *PersonaHandler) ListPersonas(w http.ResponseWriter, r *http.Request) {
	personas, err := ph.Service.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, personas)
}

func (ph *PersonaHandler) GetPersona(w http.ResponseWriter, r *http.Request) {
	personaID, err := services.ParseID(chi.URLParam(r, "persona_id"), services.MsgValidation)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	persona, err := ph.Service.Get(r.Context(), personaID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, persona)
}

func (ph *PersonaHandler) CreatePersona(w http.ResponseWriter, r *http.Request) {
	req, cleanup, err := decodePersonaRequest(w, r, ph.MaxUploadBytes)
	if err != nil {
		writeBodyError(w, err)
		return
	}
	defer cleanup()

	persona, err := ph.Service.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, APIResponse{Success: true, Message: msgCreated, Persona: persona})
}

func (ph *PersonaHandler) ReplacePersona(w http.ResponseWriter, r *http.Request) {
	ph.update(w, r, ph.Service.Replace)
}

func (ph *PersonaHandler) PatchPersona(w http.ResponseWriter, r *http.Request) {
	ph.update(w, r, ph.Service.Patch)
}

type updateFunc func(ctx context.Context, id uint, req services.PersonaRequest) (*models.Persona, error)

// update validates the id before reading the body, so a bad id never costs an upload.
func (ph *PersonaHandler) update(w http.ResponseWriter, r *http.Request, apply updateFunc) {
	personaID, err := services.ParseID(chi.URLParam(r, "persona_id"), services.MsgIDValidation)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	req, cleanup, err := decodePersonaRequest(w, r, ph.MaxUploadBytes)
	if err != nil {
		writeBodyError(w, err)
		return
	}
	defer cleanup()

	persona, err := apply(r.Context(), personaID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: msgUpdated, Persona: persona})
}

func (ph *PersonaHandler) DeletePersona(w http.ResponseWriter, r *http.Request) {
	personaID, err := services.ParseID(chi.URLParam(r, "persona_id"), services.MsgIDValidation)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := ph.Service.Delete(r.Context(), personaID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: msgDeleted})
}

func writeBodyError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	if errors.Is(err, errBodyTooLarge) {
		status = http.StatusRequestEntityTooLarge
	}
	WriteAPIError(w, status, msgBadBody, err.Error())
}
