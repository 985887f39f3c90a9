package repo

import (
	"context"
	"time"

	"github.com/Yolxander/businki-sub003/internal/modules/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectListFilter struct {
	Status         string
	AfterCreatedAt time.Time
	AfterID        uuid.UUID
	Limit          int
	TimeDesc       bool
}

type ProjectRepo interface {
	Create(ctx context.Context, p *model.DevProject) error
	Get(ctx context.Context, id uuid.UUID) (*model.DevProject, error)
	List(ctx context.Context, f ProjectListFilter) ([]*model.DevProject, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	// Delete removes the project and its documents and returns the distinct
	// file paths the removed documents referenced.
	Delete(ctx context.Context, id uuid.UUID) ([]string, error)
}

type projectRepo struct{ db *gorm.DB }

func NewProjectRepo(db *gorm.DB) ProjectRepo {
	return &projectRepo{db: db}
}

func (r *projectRepo) Create(ctx context.Context, p *model.DevProject) error {
	return r.db.WithContext(ctx).Omit("Creator", "Documents").Create(p).Error
}

func (r *projectRepo) Get(ctx context.Context, id uuid.UUID) (*model.DevProject, error) {
	var p model.DevProject
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Where("id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *projectRepo) List(ctx context.Context, f ProjectListFilter) ([]*model.DevProject, error) {
	q := r.db.WithContext(ctx).Model(&model.DevProject{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	q = applyCursor(q, f.AfterCreatedAt, f.AfterID, f.TimeDesc)

	var items []*model.DevProject
	return items, q.Order(cursorOrder(f.TimeDesc)).Limit(f.Limit).Find(&items).Error
}

func (r *projectRepo) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.DevProject{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *projectRepo) Delete(ctx context.Context, id uuid.UUID) ([]string, error) {
	var paths []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Document{}).
			Where("project_id = ? AND file_path IS NOT NULL AND file_path <> ''", id).
			Distinct().
			Pluck("file_path", &paths).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&model.Document{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.DevProject{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// applyCursor filters rows strictly after the (created_at, id) position.
func applyCursor(q *gorm.DB, afterCreatedAt time.Time, afterID uuid.UUID, timeDesc bool) *gorm.DB {
	if afterCreatedAt.IsZero() || afterID == uuid.Nil {
		return q
	}
	comparisonOp := ">"
	if timeDesc {
		comparisonOp = "<"
	}
	return q.Where(
		"(created_at "+comparisonOp+" ?) OR (created_at = ? AND id "+comparisonOp+" ?)",
		afterCreatedAt, afterCreatedAt, afterID,
	)
}

func cursorOrder(timeDesc bool) string {
	if timeDesc {
		return "created_at DESC, id DESC"
	}
	return "created_at ASC, id ASC"
}
