package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Yolxander/businki-sub003/internal/modules/serializer"
	"github.com/Yolxander/businki-sub003/internal/modules/service"
)

type ProjectHandler struct {
	svc  service.ProjectService
	gen  service.GenerationService
	docs service.DocumentService
}

func NewProjectHandler(s service.ProjectService, gen service.GenerationService, docs service.DocumentService) *ProjectHandler {
	return &ProjectHandler{svc: s, gen: gen, docs: docs}
}

type ListProjectsReq struct {
	Status   string `form:"status" json:"status" binding:"omitempty,oneof=active archived completed" example:"active"`
	Limit    int    `form:"limit,default=20" json:"limit" binding:"min=1,max=200" example:"20"`
	Cursor   string `form:"cursor" json:"cursor"`
	TimeDesc bool   `form:"time_desc,default=false" json:"time_desc" example:"false"`
}

// ListProjects godoc
//
//	@Summary		List projects
//	@Description	List dev projects, optionally filtered by status
//	@Tags			project
//	@Produce		json
//	@Param			status		query	string	false	"Status filter"	Enums(active, archived, completed)
//	@Param			limit		query	integer	false	"Limit of projects to return, default 20. Max 200."
//	@Param			cursor		query	string	false	"Cursor from the previous page"
//	@Param			time_desc	query	boolean	false	"Order by created_at descending"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=service.ListProjectsOutput}
//	@Router			/projects [get]
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	req := ListProjectsReq{}
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	out, err := h.svc.List(c.Request.Context(), service.ListProjectsInput{
		Status:   req.Status,
		Limit:    req.Limit,
		Cursor:   req.Cursor,
		TimeDesc: req.TimeDesc,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: out})
}

type CreateProjectReq struct {
	Title       string `json:"title" binding:"required,max=255" example:"Acme Redesign"`
	Description string `json:"description" example:"Storefront refresh"`
}

// CreateProject godoc
//
//	@Summary		Create project
//	@Tags			project
//	@Accept			json
//	@Produce		json
//	@Param			payload	body	handler.CreateProjectReq	true	"CreateProject payload"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.DevProject}
//	@Router			/projects [post]
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	req := CreateProjectReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	user, ok := currentUser(c)
	if !ok {
		return
	}

	p, err := h.svc.Create(c.Request.Context(), service.CreateProjectInput{
		Title:       req.Title,
		Description: req.Description,
		ActorID:     user.ID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, serializer.Response{Data: p})
}

type GenerateProjectReq struct {
	Prompt  string                    `json:"prompt" binding:"required" example:"a booking app for hair salons"`
	Options service.GenerationOptions `json:"options"`
}

// GenerateProject godoc
//
//	@Summary		Generate project
//	@Description	Let the completion model title and describe a new project
//	@Tags			project
//	@Accept			json
//	@Produce		json
//	@Param			payload	body	handler.GenerateProjectReq	true	"GenerateProject payload"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.DevProject}
//	@Failure		502	{object}	serializer.Response
//	@Router			/projects/generate [post]
func (h *ProjectHandler) GenerateProject(c *gin.Context) {
	req := GenerateProjectReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	user, ok := currentUser(c)
	if !ok {
		return
	}

	p, err := h.gen.GenerateProject(c.Request.Context(), service.GenerateProjectInput{
		Prompt:  req.Prompt,
		Options: req.Options,
		ActorID: user.ID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, serializer.Response{Data: p})
}

// GetProject godoc
//
//	@Summary		Get project
//	@Tags			project
//	@Produce		json
//	@Param			project_id	path	string	true	"Project ID"	Format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.DevProject}
//	@Router			/projects/{project_id} [get]
func (h *ProjectHandler) GetProject(c *gin.Context) {
	id, ok := pathUUID(c, "project_id")
	if !ok {
		return
	}
	p, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: p})
}

type UpdateProjectReq struct {
	Title       *string `json:"title" binding:"omitempty,max=255"`
	Description *string `json:"description"`
}

// UpdateProject godoc
//
//	@Summary		Update project
//	@Tags			project
//	@Accept			json
//	@Produce		json
//	@Param			project_id	path	string						true	"Project ID"	Format(uuid)
//	@Param			payload		body	handler.UpdateProjectReq	true	"UpdateProject payload"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.DevProject}
//	@Router			/projects/{project_id} [patch]
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	id, ok := pathUUID(c, "project_id")
	if !ok {
		return
	}
	req := UpdateProjectReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	p, err := h.svc.Update(c.Request.Context(), service.UpdateProjectInput{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: p})
}

// DeleteProject godoc
//
//	@Summary		Delete project
//	@Description	Delete a project with all of its documents and their uploaded files
//	@Tags			project
//	@Produce		json
//	@Param			project_id	path	string	true	"Project ID"	Format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response
//	@Router			/projects/{project_id} [delete]
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	id, ok := pathUUID(c, "project_id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{})
}

// SetStatus returns a handler that moves the project to status.
//
//	@Summary		Set project status
//	@Tags			project
//	@Produce		json
//	@Param			project_id	path	string	true	"Project ID"	Format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.DevProject}
//	@Router			/projects/{project_id}/activate [patch]
//	@Router			/projects/{project_id}/archive [patch]
//	@Router			/projects/{project_id}/complete [patch]
func (h *ProjectHandler) SetStatus(status string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathUUID(c, "project_id")
		if !ok {
			return
		}
		p, err := h.svc.SetStatus(c.Request.Context(), id, status)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, serializer.Response{Data: p})
	}
}

type ListDocumentsReq struct {
	Type          string `form:"type" json:"type" example:"implementation"`
	ActiveOnly    bool   `form:"active_only,default=false" json:"active_only"`
	Templates     bool   `form:"templates,default=false" json:"templates"`
	GeneratedOnly bool   `form:"generated_only,default=false" json:"generated_only"`
	Limit         int    `form:"limit,default=20" json:"limit" binding:"min=1,max=200" example:"20"`
	Cursor        string `form:"cursor" json:"cursor"`
	TimeDesc      bool   `form:"time_desc,default=false" json:"time_desc"`
}

// ListProjectDocuments godoc
//
//	@Summary		List project documents
//	@Tags			document
//	@Produce		json
//	@Param			project_id		path	string	true	"Project ID"	Format(uuid)
//	@Param			type			query	string	false	"Document type"
//	@Param			active_only		query	boolean	false	"Only active versions"
//	@Param			templates		query	boolean	false	"Only templates"
//	@Param			generated_only	query	boolean	false	"Only AI-generated documents"
//	@Param			limit			query	integer	false	"Limit, default 20. Max 200."
//	@Param			cursor			query	string	false	"Cursor from the previous page"
//	@Param			time_desc		query	boolean	false	"Order by created_at descending"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=service.ListDocumentsOutput}
//	@Router			/projects/{project_id}/documents [get]
func (h *ProjectHandler) ListProjectDocuments(c *gin.Context) {
	h.listDocuments(c, false)
}

// ListProjectTemplates godoc
//
//	@Summary		List project templates
//	@Tags			document
//	@Produce		json
//	@Param			project_id	path	string	true	"Project ID"	Format(uuid)
//	@Param			type		query	string	false	"Document type"
//	@Param			limit		query	integer	false	"Limit, default 20. Max 200."
//	@Param			cursor		query	string	false	"Cursor from the previous page"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=service.ListDocumentsOutput}
//	@Router			/projects/{project_id}/templates [get]
func (h *ProjectHandler) ListProjectTemplates(c *gin.Context) {
	h.listDocuments(c, true)
}

func (h *ProjectHandler) listDocuments(c *gin.Context, templates bool) {
	id, ok := pathUUID(c, "project_id")
	if !ok {
		return
	}
	req := ListDocumentsReq{}
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	out, err := h.docs.List(c.Request.Context(), service.ListDocumentsInput{
		ProjectID:     id,
		Type:          req.Type,
		ActiveOnly:    req.ActiveOnly,
		TemplatesOnly: templates || req.Templates,
		GeneratedOnly: req.GeneratedOnly,
		Limit:         req.Limit,
		Cursor:        req.Cursor,
		TimeDesc:      req.TimeDesc,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: out})
}
