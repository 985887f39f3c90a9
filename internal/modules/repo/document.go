package repo

import (
	"context"
	"errors"
	"maps"
	"time"

	"github.com/Yolxander/businki-sub003/internal/modules/model"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DocumentListFilter struct {
	ProjectID      uuid.UUID
	Type           string
	ActiveOnly     bool
	TemplatesOnly  bool
	GeneratedOnly  bool
	AfterCreatedAt time.Time
	AfterID        uuid.UUID
	Limit          int
	TimeDesc       bool
}

type DocumentRepo interface {
	// Create inserts the first row of a new group. It fails with ErrGroupExists
	// when the (project, name, type) group already has rows.
	Create(ctx context.Context, d *model.Document) error
	Get(ctx context.Context, id uuid.UUID) (*model.Document, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f DocumentListFilter) ([]*model.Document, error)
	ListGroup(ctx context.Context, key model.GroupKey) ([]*model.Document, error)
	// CreateVersion clones sourceID into a new inactive row with version max+1.
	CreateVersion(ctx context.Context, sourceID, actorID uuid.UUID) (*model.Document, error)
	// Activate makes id the only active row of its group.
	Activate(ctx context.Context, id, actorID uuid.UUID) (*model.Document, error)
	CountByFilePath(ctx context.Context, path string) (int64, error)
}

type documentRepo struct{ db *gorm.DB }

func NewDocumentRepo(db *gorm.DB) DocumentRepo {
	return &documentRepo{db: db}
}

func groupScope(key model.GroupKey) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("project_id = ? AND name = ? AND type = ?", key.ProjectID, key.Name, key.Type)
	}
}

func (r *documentRepo) Create(ctx context.Context, d *model.Document) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.Document{}).Scopes(groupScope(d.Group())).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrGroupExists
		}
		return tx.Omit(clause.Associations).Create(d).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrGroupExists
	}
	return err
}

func (r *documentRepo) Get(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	var d model.Document
	err := r.db.WithContext(ctx).
		Preload("Project").
		Preload("Creator").
		Preload("Updater").
		Where("id = ?", id).
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *documentRepo) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.Document{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *documentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Document{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *documentRepo) List(ctx context.Context, f DocumentListFilter) ([]*model.Document, error) {
	q := r.db.WithContext(ctx).Preload("Creator").Where("project_id = ?", f.ProjectID)
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	if f.TemplatesOnly {
		q = q.Where("is_template = ?", true)
	}
	if f.GeneratedOnly {
		q = q.Where("is_generated = ?", true)
	}
	q = applyCursor(q, f.AfterCreatedAt, f.AfterID, f.TimeDesc)

	var items []*model.Document
	return items, q.Order(cursorOrder(f.TimeDesc)).Limit(f.Limit).Find(&items).Error
}

func (r *documentRepo) ListGroup(ctx context.Context, key model.GroupKey) ([]*model.Document, error) {
	var items []*model.Document
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Scopes(groupScope(key)).
		Order("version ASC").
		Find(&items).Error
	return items, err
}

// lockGroup row-locks every row of the group for the rest of tx and returns the highest version.
func lockGroup(tx *gorm.DB, key model.GroupKey) (int, error) {
	var versions []int
	err := tx.Model(&model.Document{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(groupScope(key)).
		Order("version ASC").
		Pluck("version", &versions).Error
	if err != nil {
		return 0, err
	}
	if len(versions) == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return versions[len(versions)-1], nil
}

func (r *documentRepo) CreateVersion(ctx context.Context, sourceID, actorID uuid.UUID) (*model.Document, error) {
	var clone model.Document
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var src model.Document
		if err := tx.Where("id = ?", sourceID).First(&src).Error; err != nil {
			return err
		}
		maxVersion, err := lockGroup(tx, src.Group())
		if err != nil {
			return err
		}

		clone = src
		clone.ID = uuid.Nil
		clone.Version = maxVersion + 1
		clone.IsActive = false
		clone.CreatedByID = actorID
		clone.UpdatedByID = nil
		clone.CreatedAt = time.Time{}
		clone.UpdatedAt = time.Time{}
		clone.Project, clone.Creator, clone.Updater = nil, nil, nil
		clone.Variables = datatypes.NewJSONType(maps.Clone(src.Variables.Data()))
		if src.GenerationMetadata != nil {
			md := *src.GenerationMetadata
			clone.GenerationMetadata = &md
		}

		return tx.Omit(clause.Associations).Create(&clone).Error
	})
	if err != nil {
		return nil, err
	}
	return &clone, nil
}

func (r *documentRepo) Activate(ctx context.Context, id, actorID uuid.UUID) (*model.Document, error) {
	var target model.Document
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&target).Error; err != nil {
			return err
		}
		if _, err := lockGroup(tx, target.Group()); err != nil {
			return err
		}
		// the first read was unlocked; another activation may have committed since
		if err := tx.Where("id = ?", id).First(&target).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.Document{}).
			Scopes(groupScope(target.Group())).
			Where("is_active = ? AND id <> ?", true, id).
			Update("is_active", false).Error; err != nil {
			return err
		}
		if target.IsActive {
			return nil
		}
		if err := tx.Model(&model.Document{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{"is_active": true, "updated_by_id": actorID}).Error; err != nil {
			return err
		}
		target.IsActive = true
		target.UpdatedByID = &actorID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &target, nil
}

func (r *documentRepo) CountByFilePath(ctx context.Context, path string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Document{}).Where("file_path = ?", path).Count(&n).Error
	return n, err
}
