package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ProjectStatusActive    = "active"
	ProjectStatusArchived  = "archived"
	ProjectStatusCompleted = "completed"
)

// DevProject is the generation context documents belong to.
type DevProject struct {
	ID                 uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	Title              string            `gorm:"type:text;not null" json:"title"`
	Description        string            `gorm:"type:text;not null;default:''" json:"description"`
	IsGenerated        bool              `gorm:"not null;default:false" json:"is_generated"`
	GenerationMetadata datatypes.JSONMap `gorm:"type:jsonb" swaggertype:"object" json:"generation_metadata,omitempty"`
	Status             string            `gorm:"type:text;not null;default:'active';index;check:chk_dev_projects_status,status IN ('active','archived','completed')" json:"status"`
	CreatedByID        uuid.UUID         `gorm:"type:uuid;not null;index" json:"created_by_id"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// DevProject <-> User
	Creator *User `gorm:"foreignKey:CreatedByID;references:ID;constraint:OnDelete:RESTRICT,OnUpdate:CASCADE;" json:"creator,omitempty"`

	// DevProject <-> Document
	Documents []Document `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (DevProject) TableName() string { return "dev_projects" }

func (p *DevProject) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = ProjectStatusActive
	}
	return nil
}

func ValidProjectStatus(s string) bool {
	switch s {
	case ProjectStatusActive, ProjectStatusArchived, ProjectStatusCompleted:
		return true
	}
	return false
}
