package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/camden-git/personasapi/media"
	"github.com/camden-git/personasapi/models"
	"github.com/camden-git/personasapi/repository"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// ImageStore persists uploaded persona images and returns their reference.
type ImageStore interface {
	ProcessPersonaImage(fileData io.Reader) (string, error)
	RemovePersonaImage(reference string) error
}

// PersonaService validates requests and translates them into repository calls.
// It holds no per-request state.
type PersonaService struct {
	repo     repository.PersonaRepositoryInterface
	images   ImageStore
	validate *validator.Validate
}

func NewPersonaService(repo repository.PersonaRepositoryInterface, images ImageStore) *PersonaService {
	return &PersonaService{repo: repo, images: images, validate: newValidator()}
}

// ParseID validates a raw path id. message becomes the envelope message when
// the id is rejected.
func ParseID(raw, message string) (uint, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, &ValidationError{
			Message: message,
			Fields:  map[string][]string{"id": {"El campo id debe ser un número entero."}},
			cause:   ErrInvalidID,
		}
	}
	if n < 1 {
		return 0, invalidIDError(message)
	}
	return uint(n), nil
}

func invalidIDError(message string) *ValidationError {
	return &ValidationError{
		Message: message,
		Fields:  map[string][]string{"id": {"El campo id debe ser al menos 1."}},
		cause:   ErrInvalidID,
	}
}

// List returns every persona in store order.
func (s *PersonaService) List(ctx context.Context) ([]models.Persona, error) {
	personas, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, &StorageError{Err: err}
	}
	return personas, nil
}

// Get returns one persona by id.
func (s *PersonaService) Get(ctx context.Context, id uint) (*models.Persona, error) {
	if id == 0 {
		return nil, invalidIDError(MsgValidation)
	}
	return s.find(ctx, id)
}

func (s *PersonaService) find(ctx context.Context, id uint) (*models.Persona, error) {
	persona, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, &StorageError{Err: err}
	}
	return persona, nil
}

// Create validates the full field set and stores a new persona. A missing image
// is recorded as the default image.
func (s *PersonaService) Create(ctx context.Context, req PersonaRequest) (*models.Persona, error) {
	in, err := s.checkFields(ctx, req, 0, false)
	if err != nil {
		return nil, err
	}

	imagen, uploaded, err := s.resolveImage(req, in)
	if err != nil {
		return nil, err
	}
	if imagen == "" {
		imagen = models.DefaultImagen
	}

	persona := &models.Persona{
		Nombre: *in.Nombre,
		Email:  *in.Email,
		Edad:   *in.Edad,
		Sexo:   *in.Sexo,
		Imagen: imagen,
	}
	if err := s.repo.Create(ctx, persona); err != nil {
		s.discardUpload(uploaded)
		return nil, &StorageError{Err: err}
	}
	return persona, nil
}

// Replace requires every field again. The stored image is kept unless a new one
// is supplied.
func (s *PersonaService) Replace(ctx context.Context, id uint, req PersonaRequest) (*models.Persona, error) {
	return s.update(ctx, id, req, false)
}

// Patch validates and applies only the fields present in the request.
func (s *PersonaService) Patch(ctx context.Context, id uint, req PersonaRequest) (*models.Persona, error) {
	return s.update(ctx, id, req, true)
}

func (s *PersonaService) update(ctx context.Context, id uint, req PersonaRequest, partial bool) (*models.Persona, error) {
	if id == 0 {
		return nil, invalidIDError(MsgIDValidation)
	}
	// resolve the record before looking at the body
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}

	in, err := s.checkFields(ctx, req, id, partial)
	if err != nil {
		return nil, err
	}

	imagen, uploaded, err := s.resolveImage(req, in)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if in.Nombre != nil {
		fields["nombre"] = *in.Nombre
	}
	if in.Email != nil {
		fields["email"] = *in.Email
	}
	if in.Edad != nil {
		fields["edad"] = *in.Edad
	}
	if in.Sexo != nil {
		fields["sexo"] = *in.Sexo
	}
	if imagen != "" {
		fields["imagen"] = imagen
	} else if _, sent := req.Fields["imagen"]; sent {
		// explicit null clears back to the default
		fields["imagen"] = models.DefaultImagen
	}

	persona, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		s.discardUpload(uploaded)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, &StorageError{Err: err}
	}
	return persona, nil
}

// Delete removes a persona permanently.
func (s *PersonaService) Delete(ctx context.Context, id uint) error {
	if id == 0 {
		return invalidIDError(MsgIDValidation)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return &StorageError{Err: err}
	}
	return nil
}

// checkFields decodes and validates the request body. excludeID is the persona
// allowed to keep its email.
func (s *PersonaService) checkFields(ctx context.Context, req PersonaRequest, excludeID uint, partial bool) (PersonaInput, error) {
	in, present, errs := decodePersonaFields(req.Fields)
	errs.merge(s.validateInput(in, present, partial))

	if _, bad := errs["email"]; !bad && in.Email != nil {
		taken, err := s.repo.EmailTaken(ctx, *in.Email, excludeID)
		if err != nil {
			return in, &StorageError{Err: err}
		}
		if taken {
			errs.add("email", "El valor del campo email ya está en uso.")
		}
	}

	if len(errs) > 0 {
		return in, newValidationError(MsgValidation, errs)
	}
	return in, nil
}

// resolveImage returns the reference to store: the processed upload when a file
// was sent, otherwise the submitted string (empty when none). uploaded is set
// only when a file was written.
func (s *PersonaService) resolveImage(req PersonaRequest, in PersonaInput) (string, string, error) {
	if req.Image == nil {
		if in.Imagen != nil {
			return *in.Imagen, "", nil
		}
		return "", "", nil
	}
	if s.images == nil {
		return "", "", &InternalError{Err: errors.New("image uploads are not configured")}
	}

	ref, err := s.images.ProcessPersonaImage(req.Image)
	if err != nil {
		switch {
		case errors.Is(err, media.ErrInvalidImage):
			return "", "", newValidationError(MsgValidation, map[string][]string{
				"imagen": {"El campo imagen debe ser una imagen."},
			})
		case errors.Is(err, media.ErrImageTooLarge):
			return "", "", newValidationError(MsgValidation, map[string][]string{
				"imagen": {"El campo imagen excede el tamaño máximo permitido."},
			})
		default:
			return "", "", &InternalError{Err: fmt.Errorf("store uploaded image: %w", err)}
		}
	}
	return ref, ref, nil
}

func (s *PersonaService) discardUpload(reference string) {
	if reference == "" {
		return
	}
	if err := s.images.RemovePersonaImage(reference); err != nil {
		log.Printf("persona.service: failed to remove orphaned upload %s: %v", reference, err)
	}
}
