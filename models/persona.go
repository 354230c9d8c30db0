package models

import "time"

// DefaultImagen is presented whenever a persona has no stored image.
const DefaultImagen = "storage/images/default.jpg"

// Persona represents a person record in the database using GORM.
// It corresponds to the 'persona' table.
type Persona struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Nombre    string    `gorm:"size:255;not null" json:"nombre"`
	Email     string    `gorm:"size:255;not null;uniqueIndex:idx_persona_email" json:"email"`
	Edad      int       `gorm:"not null" json:"edad"`
	Sexo      string    `gorm:"size:1;not null" json:"sexo"`
	Imagen    string    `gorm:"size:2048" json:"imagen"` // storage-relative reference, see repository for the default
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName explicitly sets the table name for GORM.
func (Persona) TableName() string {
	return "persona"
}
