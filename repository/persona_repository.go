package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/camden-git/personasapi/models"
	"gorm.io/gorm"
)

// ErrDuplicateEmail is returned when a write collides with the unique email index.
var ErrDuplicateEmail = errors.New("persona email already exists")

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// PersonaRepository handles database operations for Persona entities
type PersonaRepository struct {
	DB *gorm.DB
}

// NewPersonaRepository creates a new instance of PersonaRepository
func NewPersonaRepository(db *gorm.DB) *PersonaRepository {
	return &PersonaRepository{DB: db}
}

// withDefaultImage applies the read-time default so a stored NULL or empty image
// never reaches a caller.
func withDefaultImage(p *models.Persona) {
	if strings.TrimSpace(p.Imagen) == "" {
		p.Imagen = models.DefaultImagen
	}
}

func translateWriteError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %w", ErrDuplicateEmail, err)
	}
	return err
}

// Create creates a new persona record in the database
func (r *PersonaRepository) Create(ctx context.Context, persona *models.Persona) error {
	err := r.DB.WithContext(ctx).Create(persona).Error
	if err != nil {
		return fmt.Errorf("failed to create persona %s: %w", persona.Email, translateWriteError(err))
	}
	withDefaultImage(persona)
	return nil
}

// GetByID retrieves a persona by its ID
func (r *PersonaRepository) GetByID(ctx context.Context, id uint) (*models.Persona, error) {
	var persona models.Persona
	err := r.DB.WithContext(ctx).First(&persona, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get persona by ID %d: %w", id, err)
	}
	withDefaultImage(&persona)
	return &persona, nil
}

// ListAll retrieves all personas in insertion (id) order
func (r *PersonaRepository) ListAll(ctx context.Context) ([]models.Persona, error) {
	personas := []models.Persona{}
	err := r.DB.WithContext(ctx).Order("id ASC").Find(&personas).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list personas: %w", err)
	}
	for i := range personas {
		withDefaultImage(&personas[i])
	}
	return personas, nil
}

// Update applies the given column values to an existing persona
func (r *PersonaRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) (*models.Persona, error) {
	updates := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		updates[k] = v
	}
	updates["updated_at"] = time.Now()

	var persona *models.Persona
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Persona{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return translateWriteError(result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		var updated models.Persona
		if err := tx.First(&updated, id).Error; err != nil {
			return err
		}
		persona = &updated
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update persona ID %d: %w", id, err)
	}

	withDefaultImage(persona)
	return persona, nil
}

// Delete removes a persona by its ID
func (r *PersonaRepository) Delete(ctx context.Context, id uint) error {
	result := r.DB.WithContext(ctx).Delete(&models.Persona{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete persona ID %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// EmailTaken checks the email against every persona except excludeID (0 excludes none)
func (r *PersonaRepository) EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error) {
	queryBuilder := psql.Select("COUNT(1)").
		From(models.Persona{}.TableName()).
		Where(sq.Eq{"email": email})
	if excludeID != 0 {
		queryBuilder = queryBuilder.Where(sq.NotEq{"id": excludeID})
	}

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build SQL query for EmailTaken: %w", err)
	}

	var count int64
	if err := r.DB.WithContext(ctx).Raw(sqlStr, args...).Scan(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check email %s: %w", email, err)
	}
	return count > 0, nil
}
