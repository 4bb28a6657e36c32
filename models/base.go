package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base holds the primary key and audit timestamps shared by relational entities.
type Base struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedOn  time.Time `gorm:"autoCreateTime" json:"createdOn"`
	ModifiedOn time.Time `gorm:"autoUpdateTime" json:"modifiedOn"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Deletable marks an entity as soft deleted. Queries skip rows where DeletedOn is set.
type Deletable struct {
	DeletedOn gorm.DeletedAt `gorm:"index" json:"-"`
}
