package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Yolxander/businki-sub003/internal/infra/blob"
	"github.com/Yolxander/businki-sub003/internal/infra/cache"
	"github.com/Yolxander/businki-sub003/internal/modules/model"
	"github.com/Yolxander/businki-sub003/internal/modules/repo"
	"github.com/Yolxander/businki-sub003/internal/pkg/doctype"
	"github.com/Yolxander/businki-sub003/internal/pkg/materialize"
	"github.com/Yolxander/businki-sub003/internal/pkg/paging"
	"github.com/Yolxander/businki-sub003/internal/pkg/prompt"
	"github.com/Yolxander/businki-sub003/internal/pkg/utils/mime"
	"github.com/Yolxander/businki-sub003/internal/pkg/utils/path"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	maxNameLength   = 255
	DefaultPageSize = 20
	MaxPageSize     = 200
)

type DocumentService interface {
	Create(ctx context.Context, in CreateDocumentInput) (*model.Document, error)
	Upload(ctx context.Context, in UploadDocumentInput) (*model.Document, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Document, error)
	List(ctx context.Context, in ListDocumentsInput) (*ListDocumentsOutput, error)
	ListVersions(ctx context.Context, id uuid.UUID) ([]*model.Document, error)
	Update(ctx context.Context, in UpdateDocumentInput) (*model.Document, error)
	CreateNewVersion(ctx context.Context, id, actorID uuid.UUID) (*model.Document, error)
	Activate(ctx context.Context, id, actorID uuid.UUID) (*model.Document, error)
	Delete(ctx context.Context, id, actorID uuid.UUID) error
	Download(ctx context.Context, id uuid.UUID) (*materialize.File, error)
	OpenOriginal(ctx context.Context, id uuid.UUID) (*OriginalFile, error)
	Instantiate(ctx context.Context, in InstantiateInput) (*model.Document, error)
}

type documentService struct {
	docs      repo.DocumentRepo
	projects  repo.ProjectRepo
	store     blob.Store
	locker    cache.Locker
	events    *Events
	maxUpload int64
	log       *zap.Logger
}

func NewDocumentService(docs repo.DocumentRepo, projects repo.ProjectRepo, store blob.Store, locker cache.Locker, events *Events, maxUpload int64, log *zap.Logger) DocumentService {
	return &documentService{
		docs:      docs,
		projects:  projects,
		store:     store,
		locker:    locker,
		events:    events,
		maxUpload: maxUpload,
		log:       log,
	}
}

var typeRule = validation.In(toAny(doctype.Keys())...).Error("must be one of: " + fmt.Sprint(doctype.Keys()))

func toAny(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

var notNilUUID = validation.By(func(v interface{}) error {
	if id, ok := v.(uuid.UUID); ok && id == uuid.Nil {
		return errors.New("cannot be blank")
	}
	return nil
})

type CreateDocumentInput struct {
	ProjectID   uuid.UUID         `json:"project_id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Type        string            `json:"type"`
	Content     string            `json:"content"`
	Variables   map[string]string `json:"variables"`
	IsTemplate  bool              `json:"is_template"`
	IsActive    *bool             `json:"is_active"`
	ActorID     uuid.UUID         `json:"-"`
}

func (in CreateDocumentInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.ProjectID, notNilUUID),
		validation.Field(&in.Name, validation.Required, validation.Length(1, maxNameLength)),
		validation.Field(&in.Type, validation.Required, typeRule),
		validation.Field(&in.Content, validation.Required),
	)
}

// requireProject loads a project referenced from a request body. A missing
// project is a validation failure on field rather than a 404.
func requireProject(ctx context.Context, projects repo.ProjectRepo, id uuid.UUID, field string) (*model.DevProject, error) {
	p, err := projects.Get(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewValidationError(field, "project not found")
	}
	return p, err
}

func (s *documentService) Create(ctx context.Context, in CreateDocumentInput) (*model.Document, error) {
	if err := in.Validate(); err != nil {
		return nil, fromOzzo(err)
	}
	if _, err := requireProject(ctx, s.projects, in.ProjectID, "project_id"); err != nil {
		return nil, err
	}

	d := &model.Document{
		ProjectID:   in.ProjectID,
		Name:        in.Name,
		Description: in.Description,
		Type:        in.Type,
		Content:     in.Content,
		Variables:   datatypes.NewJSONType(in.Variables),
		IsTemplate:  in.IsTemplate,
		IsActive:    activeOrDefault(in.IsActive),
		Version:     1,
		CreatedByID: in.ActorID,
	}
	if err := insertDocument(ctx, s.docs, d); err != nil {
		return nil, err
	}
	s.events.Created(ctx, d, in.ActorID)
	return s.Get(ctx, d.ID)
}

func activeOrDefault(v *bool) bool {
	if v == nil {
		return true
	}
	return *v
}

// insertDocument creates the first version of a new group.
func insertDocument(ctx context.Context, docs repo.DocumentRepo, d *model.Document) error {
	if err := docs.Create(ctx, d); err != nil {
		if errors.Is(err, repo.ErrGroupExists) {
			return groupConflict(d.Group())
		}
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

// ensureGroupFree fails with ErrConflict when key already names a version group.
func ensureGroupFree(ctx context.Context, docs repo.DocumentRepo, key model.GroupKey) error {
	items, err := docs.ListGroup(ctx, key)
	if err != nil {
		return fmt.Errorf("list document group: %w", err)
	}
	if len(items) > 0 {
		return groupConflict(key)
	}
	return nil
}

func groupConflict(key model.GroupKey) error {
	return fmt.Errorf("document %q of type %s already exists in this project, create a new version instead: %w", key.Name, key.Type, ErrConflict)
}

type UploadDocumentInput struct {
	ProjectID   uuid.UUID `json:"project_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	IsTemplate  bool      `json:"is_template"`
	IsActive    *bool     `json:"is_active"`
	Filename    string    `json:"filename"`
	Body        io.Reader `json:"-"`
	ActorID     uuid.UUID `json:"-"`
}

func (in UploadDocumentInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.ProjectID, notNilUUID),
		validation.Field(&in.Name, validation.Required, validation.Length(1, maxNameLength)),
		validation.Field(&in.Type, validation.Required, typeRule),
		validation.Field(&in.Filename, validation.Required),
	)
}

func (s *documentService) Upload(ctx context.Context, in UploadDocumentInput) (*model.Document, error) {
	if err := in.Validate(); err != nil {
		return nil, fromOzzo(err)
	}
	if in.Body == nil {
		return nil, NewValidationError("file", "cannot be blank")
	}
	if _, err := requireProject(ctx, s.projects, in.ProjectID, "project_id"); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(in.Body, s.maxUpload+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxUpload {
		return nil, NewValidationError("file", fmt.Sprintf("must not exceed %d bytes", s.maxUpload))
	}
	if len(data) == 0 {
		return nil, NewValidationError("file", "cannot be empty")
	}

	filename := path.SanitizeFilename(in.Filename)
	contentType := mime.DetectMimeType(data, filename)
	content := "Uploaded file: " + filename
	if mime.IsText(contentType) {
		content = string(data)
	}

	size := int64(len(data))
	d := &model.Document{
		ID:          uuid.New(),
		ProjectID:   in.ProjectID,
		Name:        in.Name,
		Description: in.Description,
		Type:        in.Type,
		Content:     content,
		FileName:    &filename,
		MimeType:    &contentType,
		FileSize:    &size,
		IsTemplate:  in.IsTemplate,
		IsActive:    activeOrDefault(in.IsActive),
		Version:     1,
		CreatedByID: in.ActorID,
	}
	key := path.DocumentKey(in.ProjectID.String(), d.ID.String(), filename)
	d.FilePath = &key

	if err := s.store.Put(ctx, key, bytes.NewReader(data), size, contentType); err != nil {
		return nil, fmt.Errorf("store upload %s: %v: %w", key, err, ErrStorageFailure)
	}
	if err := insertDocument(ctx, s.docs, d); err != nil {
		if delErr := s.store.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			s.log.Warn("remove orphaned upload", zap.String("key", key), zap.Error(delErr))
		}
		return nil, err
	}

	s.events.Created(ctx, d, in.ActorID)
	return s.Get(ctx, d.ID)
}

func (s *documentService) Get(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	d, err := s.docs.Get(ctx, id)
	if err != nil {
		return nil, notFound("document", err)
	}
	return d, nil
}

type ListDocumentsInput struct {
	ProjectID     uuid.UUID `json:"project_id"`
	Type          string    `json:"type"`
	ActiveOnly    bool      `json:"active_only"`
	TemplatesOnly bool      `json:"templates_only"`
	GeneratedOnly bool      `json:"generated_only"`
	Limit         int       `json:"limit"`
	Cursor        string    `json:"cursor"`
	TimeDesc      bool      `json:"time_desc"`
}

func (in ListDocumentsInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Type, typeRule),
		validation.Field(&in.Limit, validation.Min(0), validation.Max(MaxPageSize)),
	)
}

type ListDocumentsOutput struct {
	Items      []*model.Document `json:"items"`
	NextCursor string            `json:"next_cursor,omitempty"`
	HasMore    bool              `json:"has_more"`
}

func (s *documentService) List(ctx context.Context, in ListDocumentsInput) (*ListDocumentsOutput, error) {
	if err := in.Validate(); err != nil {
		return nil, fromOzzo(err)
	}
	if _, err := s.projects.Get(ctx, in.ProjectID); err != nil {
		return nil, notFound("project", err)
	}
	if in.Limit == 0 {
		in.Limit = DefaultPageSize
	}

	f := repo.DocumentListFilter{
		ProjectID:     in.ProjectID,
		Type:          in.Type,
		ActiveOnly:    in.ActiveOnly,
		TemplatesOnly: in.TemplatesOnly,
		GeneratedOnly: in.GeneratedOnly,
		Limit:         in.Limit + 1,
		TimeDesc:      in.TimeDesc,
	}
	if in.Cursor != "" {
		t, id, err := paging.DecodeCursor(in.Cursor)
		if err != nil {
			return nil, NewValidationError("cursor", err.Error())
		}
		f.AfterCreatedAt, f.AfterID = t, id
	}

	items, err := s.docs.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	out := &ListDocumentsOutput{Items: items}
	if len(items) > in.Limit {
		out.HasMore = true
		out.Items = items[:in.Limit]
		last := out.Items[len(out.Items)-1]
		out.NextCursor = paging.EncodeCursor(last.CreatedAt, last.ID)
	}
	if out.Items == nil {
		out.Items = []*model.Document{}
	}
	return out, nil
}

func (s *documentService) ListVersions(ctx context.Context, id uuid.UUID) ([]*model.Document, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.docs.ListGroup(ctx, d.Group())
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	return items, nil
}

type UpdateDocumentInput struct {
	ID          uuid.UUID          `json:"-"`
	Description *string            `json:"description"`
	Content     *string            `json:"content"`
	Variables   *map[string]string `json:"variables"`
	IsTemplate  *bool              `json:"is_template"`
	ActorID     uuid.UUID          `json:"-"`
}

func (in UpdateDocumentInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Content, validation.NilOrNotEmpty),
	)
}

// Update edits a document in place. It never changes the version or the group key.
func (s *documentService) Update(ctx context.Context, in UpdateDocumentInput) (*model.Document, error) {
	if err := in.Validate(); err != nil {
		return nil, fromOzzo(err)
	}

	fields := map[string]interface{}{}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Content != nil {
		fields["content"] = *in.Content
	}
	if in.Variables != nil {
		fields["variables"] = datatypes.NewJSONType(*in.Variables)
	}
	if in.IsTemplate != nil {
		fields["is_template"] = *in.IsTemplate
	}
	if len(fields) == 0 {
		return nil, NewValidationError("body", "at least one of description, content, variables, is_template is required")
	}
	fields["updated_by_id"] = in.ActorID

	if err := s.docs.Update(ctx, in.ID, fields); err != nil {
		return nil, notFound("document", err)
	}
	return s.Get(ctx, in.ID)
}

// withGroupLock runs fn while holding the cross-request lock for the group of d.
func (s *documentService) withGroupLock(ctx context.Context, d *model.Document, fn func() error) error {
	release, err := s.locker.Acquire(ctx, "document-group:"+d.Group().String())
	if err != nil {
		if errors.Is(err, cache.ErrLockTimeout) {
			return fmt.Errorf("document group %s is busy: %w", d.Group(), ErrConcurrencyViolation)
		}
		return fmt.Errorf("acquire group lock: %w", err)
	}
	defer release()
	return fn()
}

// CreateNewVersion clones the document into version max+1. The clone starts
// inactive and the source row is left as is.
func (s *documentService) CreateNewVersion(ctx context.Context, id, actorID uuid.UUID) (*model.Document, error) {
	src, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var clone *model.Document
	err = s.withGroupLock(ctx, src, func() error {
		var err error
		clone, err = s.docs.CreateVersion(ctx, id, actorID)
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("version already taken: %w", ErrConcurrencyViolation)
		}
		return nil, notFound("document", err)
	}

	s.events.VersionCreated(ctx, clone, actorID)
	return s.Get(ctx, clone.ID)
}

// Activate makes the document the single active version of its group.
func (s *documentService) Activate(ctx context.Context, id, actorID uuid.UUID) (*model.Document, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "document.activate")
	defer span.End()
	span.SetAttributes(attribute.String("document.id", id.String()))

	target, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.withGroupLock(ctx, target, func() error {
		_, err := s.docs.Activate(ctx, id, actorID)
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("another version became active concurrently: %w", ErrConcurrencyViolation)
		}
		return nil, notFound("document", err)
	}

	activated, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.events.Activated(ctx, activated, actorID)
	return activated, nil
}

// Delete removes the backing file when no other version references it, then
// the row. File removal is best-effort and never blocks the row deletion.
func (s *documentService) Delete(ctx context.Context, id, actorID uuid.UUID) error {
	d, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if d.HasFile() {
		refs, err := s.docs.CountByFilePath(ctx, *d.FilePath)
		switch {
		case err != nil:
			s.log.Warn("count file references", zap.String("key", *d.FilePath), zap.Error(err))
		case refs <= 1:
			if err := s.store.Delete(ctx, *d.FilePath); err != nil {
				s.log.Error("delete document file", zap.String("document_id", id.String()), zap.String("key", *d.FilePath), zap.Error(err))
			}
		}
	}

	if err := s.docs.Delete(ctx, id); err != nil {
		return notFound("document", err)
	}
	s.events.Deleted(ctx, d, actorID)
	return nil
}

func (s *documentService) Download(ctx context.Context, id uuid.UUID) (*materialize.File, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return materialize.Render(sourceOf(d))
}

func sourceOf(d *model.Document) materialize.Source {
	src := materialize.Source{
		Name:        d.Name,
		Description: d.Description,
		Type:        d.Type,
		Version:     d.Version,
		Content:     d.Content,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
		IsGenerated: d.IsGenerated,
		IsTemplate:  d.IsTemplate,
	}
	if d.MimeType != nil {
		src.MimeType = *d.MimeType
	}
	if d.Project != nil {
		src.ProjectTitle = d.Project.Title
	}
	if d.Creator != nil {
		src.CreatorName = d.Creator.Name
	}
	return src
}

// OriginalFile is an open handle on an uploaded original. Callers must close Body.
type OriginalFile struct {
	Body        io.ReadCloser
	Filename    string
	ContentType string
	Size        int64
}

func (s *documentService) OpenOriginal(ctx context.Context, id uuid.UUID) (*OriginalFile, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !d.HasFile() {
		return nil, fmt.Errorf("document has no uploaded file: %w", ErrNotFound)
	}

	body, err := s.store.Get(ctx, *d.FilePath)
	if err != nil {
		if errors.Is(err, blob.ErrNotExist) {
			return nil, fmt.Errorf("uploaded file is missing from storage: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("open %s: %v: %w", *d.FilePath, err, ErrStorageFailure)
	}

	of := &OriginalFile{Body: body, ContentType: mime.DefaultTextType}
	if d.FileName != nil {
		of.Filename = *d.FileName
	}
	if d.MimeType != nil {
		of.ContentType = *d.MimeType
	}
	if d.FileSize != nil {
		of.Size = *d.FileSize
	}
	return of, nil
}

type InstantiateInput struct {
	TemplateID uuid.UUID         `json:"-"`
	Name       string            `json:"name"`
	Variables  map[string]string `json:"variables"`
	ActorID    uuid.UUID         `json:"-"`
}

func (in InstantiateInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, maxNameLength)),
	)
}

// Instantiate renders a template into a new active, non-template document at version 1.
func (s *documentService) Instantiate(ctx context.Context, in InstantiateInput) (*model.Document, error) {
	if err := in.Validate(); err != nil {
		return nil, fromOzzo(err)
	}
	tpl, err := s.Get(ctx, in.TemplateID)
	if err != nil {
		return nil, err
	}
	if !tpl.IsTemplate {
		return nil, NewValidationError("id", "document is not a template")
	}

	vars := prompt.MergeVars(tpl.Variables.Data(), in.Variables)
	d := &model.Document{
		ProjectID:   tpl.ProjectID,
		Name:        in.Name,
		Description: tpl.Description,
		Type:        tpl.Type,
		Content:     prompt.Render(tpl.Content, vars),
		Variables:   datatypes.NewJSONType(vars),
		IsActive:    true,
		Version:     1,
		CreatedByID: in.ActorID,
	}
	if err := insertDocument(ctx, s.docs, d); err != nil {
		return nil, err
	}
	s.events.Created(ctx, d, in.ActorID)
	return s.Get(ctx, d.ID)
}
