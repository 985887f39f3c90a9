package service

import (
	"context"
	"fmt"

	"github.com/Yolxander/businki-sub003/internal/infra/blob"
	"github.com/Yolxander/businki-sub003/internal/modules/model"
	"github.com/Yolxander/businki-sub003/internal/modules/repo"
	"github.com/Yolxander/businki-sub003/internal/pkg/paging"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const blobCleanupConcurrency = 8

type ProjectService interface {
	Create(ctx context.Context, in CreateProjectInput) (*model.DevProject, error)
	Get(ctx context.Context, id uuid.UUID) (*model.DevProject, error)
	List(ctx context.Context, in ListProjectsInput) (*ListProjectsOutput, error)
	Update(ctx context.Context, in UpdateProjectInput) (*model.DevProject, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) (*model.DevProject, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type projectService struct {
	r     repo.ProjectRepo
	store blob.Store
	log   *zap.Logger
}

func NewProjectService(r repo.ProjectRepo, store blob.Store, log *zap.Logger) ProjectService {
	return &projectService{r: r, store: store, log: log}
}

type CreateProjectInput struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ActorID     uuid.UUID `json:"-"`
}

func (in CreateProjectInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.Length(1, maxNameLength)),
	)
}

func (s *projectService) Create(ctx context.Context, in CreateProjectInput) (*model.DevProject, error) {
	if err := in.Validate(); err != nil {
		return nil, fromOzzo(err)
	}
	p := &model.DevProject{
		Title:       in.Title,
		Description: in.Description,
		Status:      model.ProjectStatusActive,
		CreatedByID: in.ActorID,
	}
	if err := s.r.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return s.Get(ctx, p.ID)
}

func (s *projectService) Get(ctx context.Context, id uuid.UUID) (*model.DevProject, error) {
	p, err := s.r.Get(ctx, id)
	if err != nil {
		return nil, notFound("project", err)
	}
	return p, nil
}

type ListProjectsInput struct {
	Status   string `json:"status"`
	Limit    int    `json:"limit"`
	Cursor   string `json:"cursor"`
	TimeDesc bool   `json:"time_desc"`
}

func (in ListProjectsInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Status, validation.In(model.ProjectStatusActive, model.ProjectStatusArchived, model.ProjectStatusCompleted)),
		validation.Field(&in.Limit, validation.Min(0), validation.Max(MaxPageSize)),
	)
}

type ListProjectsOutput struct {
	Items      []*model.DevProject `json:"items"`
	NextCursor string              `json:"next_cursor,omitempty"`
	HasMore    bool                `json:"has_more"`
}

func (s *projectService) List(ctx context.Context, in ListProjectsInput) (*ListProjectsOutput, error) {
	if err := in.Validate(); err != nil {
		return nil, fromOzzo(err)
	}
	if in.Limit == 0 {
		in.Limit = DefaultPageSize
	}

	f := repo.ProjectListFilter{
		Status:   in.Status,
		Limit:    in.Limit + 1,
		TimeDesc: in.TimeDesc,
	}
	if in.Cursor != "" {
		t, id, err := paging.DecodeCursor(in.Cursor)
		if err != nil {
			return nil, NewValidationError("cursor", err.Error())
		}
		f.AfterCreatedAt, f.AfterID = t, id
	}

	items, err := s.r.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	out := &ListProjectsOutput{Items: items}
	if len(items) > in.Limit {
		out.HasMore = true
		out.Items = items[:in.Limit]
		last := out.Items[len(out.Items)-1]
		out.NextCursor = paging.EncodeCursor(last.CreatedAt, last.ID)
	}
	if out.Items == nil {
		out.Items = []*model.DevProject{}
	}
	return out, nil
}

type UpdateProjectInput struct {
	ID          uuid.UUID `json:"-"`
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
}

func (in UpdateProjectInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.NilOrNotEmpty, validation.Length(1, maxNameLength)),
	)
}

func (s *projectService) Update(ctx context.Context, in UpdateProjectInput) (*model.DevProject, error) {
	if err := in.Validate(); err != nil {
		return nil, fromOzzo(err)
	}
	fields := map[string]interface{}{}
	if in.Title != nil {
		fields["title"] = *in.Title
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if len(fields) == 0 {
		return nil, NewValidationError("body", "at least one of title, description is required")
	}
	if err := s.r.Update(ctx, in.ID, fields); err != nil {
		return nil, notFound("project", err)
	}
	return s.Get(ctx, in.ID)
}

// SetStatus moves the project to any of the three statuses; there is no enforced order.
func (s *projectService) SetStatus(ctx context.Context, id uuid.UUID, status string) (*model.DevProject, error) {
	if !model.ValidProjectStatus(status) {
		return nil, NewValidationError("status", "must be one of: active, archived, completed")
	}
	if err := s.r.Update(ctx, id, map[string]interface{}{"status": status}); err != nil {
		return nil, notFound("project", err)
	}
	return s.Get(ctx, id)
}

// Delete removes the project with all of its documents, then the files
// those documents referenced. File cleanup failures are only logged.
func (s *projectService) Delete(ctx context.Context, id uuid.UUID) error {
	paths, err := s.r.Delete(ctx, id)
	if err != nil {
		return notFound("project", err)
	}
	if len(paths) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(context.WithoutCancel(ctx))
	g.SetLimit(blobCleanupConcurrency)
	for _, key := range paths {
		g.Go(func() error {
			if err := s.store.Delete(gctx, key); err != nil {
				s.log.Warn("delete project file", zap.String("project_id", id.String()), zap.String("key", key), zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()
	s.log.Info("project deleted", zap.String("project_id", id.String()), zap.Int("files", len(paths)))
	return nil
}
