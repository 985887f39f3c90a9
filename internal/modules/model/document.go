package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GenerationMetadata records how a generated document was produced.
type GenerationMetadata struct {
	Prompt     string         `json:"prompt"`
	Model      string         `json:"model"`
	TokensUsed int            `json:"tokens_used"`
	Cost       string         `json:"cost,omitempty"`
	Options    map[string]any `json:"options,omitempty"`
}

// Document is one version of a logical document. Rows sharing
// (project_id, name, type) form a group; at most one row per group is active.
type Document struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_documents_group_version,priority:1;uniqueIndex:uq_documents_group_active,priority:1,where:is_active = true" json:"project_id"`
	Name      string    `gorm:"type:text;not null;uniqueIndex:uq_documents_group_version,priority:2;uniqueIndex:uq_documents_group_active,priority:2,where:is_active = true" json:"name"`
	Type      string    `gorm:"type:text;not null;uniqueIndex:uq_documents_group_version,priority:3;uniqueIndex:uq_documents_group_active,priority:3,where:is_active = true" json:"type"`
	Version   int       `gorm:"not null;default:1;uniqueIndex:uq_documents_group_version,priority:4" json:"version"`

	Description string `gorm:"type:text;not null;default:''" json:"description"`
	Content     string `gorm:"type:text;not null" json:"content"`

	// File-backed attributes are all set or all nil.
	FilePath *string `gorm:"type:text;index" json:"file_path,omitempty"`
	FileName *string `gorm:"type:text" json:"file_name,omitempty"`
	MimeType *string `gorm:"type:text" json:"mime_type,omitempty"`
	FileSize *int64  `gorm:"type:bigint" json:"file_size,omitempty"`

	IsGenerated        bool                                  `gorm:"not null;default:false;index" json:"is_generated"`
	GenerationMetadata *GenerationMetadata                   `gorm:"type:jsonb;serializer:json" json:"generation_metadata,omitempty"`
	Variables          datatypes.JSONType[map[string]string] `gorm:"type:jsonb" swaggertype:"object" json:"variables"`
	IsTemplate         bool                                  `gorm:"not null;default:false;index" json:"is_template"`
	IsActive           bool                                  `gorm:"not null;default:false;index" json:"is_active"`

	CreatedByID uuid.UUID  `gorm:"type:uuid;not null;index" json:"created_by_id"`
	UpdatedByID *uuid.UUID `gorm:"type:uuid" json:"updated_by_id,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Document <-> DevProject
	Project *DevProject `gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"project,omitempty"`

	// Document <-> User
	Creator *User `gorm:"foreignKey:CreatedByID;references:ID;constraint:OnDelete:RESTRICT,OnUpdate:CASCADE;" json:"creator,omitempty"`
	Updater *User `gorm:"foreignKey:UpdatedByID;references:ID;constraint:OnDelete:SET NULL,OnUpdate:CASCADE;" json:"updater,omitempty"`
}

func (Document) TableName() string { return "documents" }

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.Version == 0 {
		d.Version = 1
	}
	return nil
}

// HasFile reports whether the document is backed by an uploaded original.
func (d *Document) HasFile() bool {
	return d.FilePath != nil && *d.FilePath != ""
}

// GroupKey identifies the version group of a document.
type GroupKey struct {
	ProjectID uuid.UUID
	Name      string
	Type      string
}

func (d *Document) Group() GroupKey {
	return GroupKey{ProjectID: d.ProjectID, Name: d.Name, Type: d.Type}
}

func (k GroupKey) String() string {
	return k.ProjectID.String() + "/" + k.Type + "/" + k.Name
}
