package repository

import (
	"context"

	"github.com/camden-git/personasapi/models"
)

// PersonaRepositoryInterface defines the methods for persona data operations
type PersonaRepositoryInterface interface {
	Create(ctx context.Context, persona *models.Persona) error
	GetByID(ctx context.Context, id uint) (*models.Persona, error)
	ListAll(ctx context.Context) ([]models.Persona, error)
	// Update writes only the given columns (keyed by column name) and returns the fresh record
	Update(ctx context.Context, id uint, fields map[string]interface{}) (*models.Persona, error)
	Delete(ctx context.Context, id uint) error
	// EmailTaken reports whether another persona (id != excludeID) already uses email
	EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error)
}
