package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Yolxander/businki-sub003/internal/config"
	"github.com/Yolxander/businki-sub003/internal/infra/llm"
	"github.com/Yolxander/businki-sub003/internal/modules/model"
	"github.com/Yolxander/businki-sub003/internal/modules/repo"
	"github.com/Yolxander/businki-sub003/internal/pkg/doctype"
	"github.com/Yolxander/businki-sub003/internal/pkg/prompt"
	"github.com/Yolxander/businki-sub003/internal/telemetry"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

type GenerationService interface {
	Generate(ctx context.Context, in GenerateDocumentInput) (*model.Document, error)
	GenerateProject(ctx context.Context, in GenerateProjectInput) (*model.DevProject, error)
}

type generationService struct {
	docs      repo.DocumentRepo
	projects  repo.ProjectRepo
	completer llm.Completer
	events    *Events
	cfg       *config.Config
	log       *zap.Logger
	now       func() time.Time
}

func NewGenerationService(docs repo.DocumentRepo, projects repo.ProjectRepo, completer llm.Completer, events *Events, cfg *config.Config, log *zap.Logger) GenerationService {
	return &generationService{
		docs:      docs,
		projects:  projects,
		completer: completer,
		events:    events,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
	}
}

// GenerationOptions override the configured model parameters for one call.
type GenerationOptions struct {
	Model       string   `json:"model,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
}

func (o GenerationOptions) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Temperature, validation.Min(0.0), validation.Max(2.0)),
		validation.Field(&o.MaxTokens, validation.Min(0), validation.Max(128000)),
	)
}

type GenerateDocumentInput struct {
	ProjectID   uuid.UUID         `json:"project_id"`
	Type        string            `json:"type"`
	Prompt      string            `json:"prompt"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Options     GenerationOptions `json:"options"`
	ActorID     uuid.UUID         `json:"-"`
}

func (in GenerateDocumentInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.ProjectID, notNilUUID),
		validation.Field(&in.Type, validation.Required, typeRule),
		validation.Field(&in.Prompt, validation.Required, validation.Length(1, 10000)),
		validation.Field(&in.Name, validation.Length(0, maxNameLength)),
		validation.Field(&in.Options),
	)
}

// request resolves the completion parameters from opts over the configured defaults.
func (s *generationService) request(text string, opts GenerationOptions) llm.Request {
	req := llm.Request{
		Prompt:      text,
		Model:       s.cfg.LLM.Model,
		Temperature: s.cfg.LLM.Temperature,
		MaxTokens:   s.cfg.LLM.MaxTokens,
	}
	if opts.Model != "" {
		req.Model = opts.Model
	}
	if opts.Temperature != nil {
		req.Temperature = *opts.Temperature
	}
	if opts.MaxTokens > 0 {
		req.MaxTokens = opts.MaxTokens
	}
	return req
}

func (s *generationService) complete(ctx context.Context, kind string, req llm.Request) (*llm.Result, error) {
	start := time.Now()
	res, err := s.completer.Complete(ctx, req)
	elapsed := float64(time.Since(start).Milliseconds())
	if err == nil {
		telemetry.RecordGenerationSuccess(ctx, kind, res.Model, elapsed, int64(res.Usage.TotalTokens))
		return res, nil
	}
	msg, errType := err.Error(), "completion"
	var upstream *llm.UpstreamError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		msg, errType = "completion timed out", "timeout"
	case errors.As(err, &upstream):
		msg, errType = upstream.Message, "upstream"
	case errors.Is(err, llm.ErrEmptyContent):
		msg, errType = "completion returned no content", "empty"
	}
	telemetry.RecordGenerationError(ctx, kind, errType, elapsed)
	return nil, &GenerationError{Message: msg, Err: err}
}

// Generate asks the completer for a document and stores it as version 1 of a
// new group. Nothing is persisted when the completion fails.
func (s *generationService) Generate(ctx context.Context, in GenerateDocumentInput) (*model.Document, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "document.generate")
	defer span.End()

	if err := in.Validate(); err != nil {
		return nil, fromOzzo(err)
	}
	span.SetAttributes(
		attribute.String("project.id", in.ProjectID.String()),
		attribute.String("document.type", in.Type),
	)

	project, err := requireProject(ctx, s.projects, in.ProjectID, "project_id")
	if err != nil {
		return nil, err
	}

	name := in.Name
	if name == "" {
		name = generatedName(in.Type, s.now())
	}
	// a taken group fails the insert anyway; fail before paying for a completion
	if err := ensureGroupFree(ctx, s.docs, model.GroupKey{ProjectID: project.ID, Name: name, Type: in.Type}); err != nil {
		return nil, err
	}

	text := prompt.Build(prompt.ProjectContext{Title: project.Title, Description: project.Description}, in.Type, in.Prompt)
	req := s.request(text, in.Options)
	res, err := s.complete(ctx, "document", req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		return nil, err
	}

	d := &model.Document{
		ProjectID:   project.ID,
		Name:        name,
		Description: in.Description,
		Type:        in.Type,
		Content:     res.Content,
		IsGenerated: true,
		GenerationMetadata: &model.GenerationMetadata{
			Prompt:     in.Prompt,
			Model:      res.Model,
			TokensUsed: res.Usage.TotalTokens,
			Cost:       res.Cost,
			Options: map[string]any{
				"temperature": req.Temperature,
				"max_tokens":  req.MaxTokens,
			},
		},
		IsActive:    true,
		Version:     1,
		CreatedByID: in.ActorID,
	}
	if err := insertDocument(ctx, s.docs, d); err != nil {
		return nil, err
	}

	s.log.Info("document generated",
		zap.String("document_id", d.ID.String()),
		zap.String("project_id", project.ID.String()),
		zap.String("type", in.Type),
		zap.String("model", res.Model),
		zap.Int("tokens", res.Usage.TotalTokens))
	s.events.Generated(ctx, d, in.ActorID)

	out, err := s.docs.Get(ctx, d.ID)
	if err != nil {
		return nil, notFound("document", err)
	}
	return out, nil
}

// generatedName is the default name of a generated document. The random
// suffix keeps two generations within the same second in separate groups.
func generatedName(docType string, now time.Time) string {
	return doctype.Label(docType) + " " + now.UTC().Format("2006-01-02 15:04:05") + " " + uuid.NewString()[:8]
}

type GenerateProjectInput struct {
	Prompt  string            `json:"prompt"`
	Options GenerationOptions `json:"options"`
	ActorID uuid.UUID         `json:"-"`
}

func (in GenerateProjectInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Prompt, validation.Required, validation.Length(1, 10000)),
		validation.Field(&in.Options),
	)
}

// GenerateProject lets the completer title and describe a new project.
func (s *generationService) GenerateProject(ctx context.Context, in GenerateProjectInput) (*model.DevProject, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "project.generate")
	defer span.End()

	if err := in.Validate(); err != nil {
		return nil, fromOzzo(err)
	}

	req := s.request(prompt.BuildProject(in.Prompt), in.Options)
	res, err := s.complete(ctx, "project", req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		return nil, err
	}

	title, description := prompt.ParseProject(res.Content)
	if title == "" {
		return nil, &GenerationError{Message: "completion returned no project title", Err: llm.ErrEmptyContent}
	}
	p := &model.DevProject{
		Title:       title,
		Description: description,
		IsGenerated: true,
		GenerationMetadata: map[string]interface{}{
			"prompt":      in.Prompt,
			"model":       res.Model,
			"tokens_used": res.Usage.TotalTokens,
			"cost":        res.Cost,
		},
		Status:      model.ProjectStatusActive,
		CreatedByID: in.ActorID,
	}
	if err := s.projects.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	out, err := s.projects.Get(ctx, p.ID)
	if err != nil {
		return nil, notFound("project", err)
	}
	return out, nil
}
