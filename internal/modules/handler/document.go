package handler

import (
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Yolxander/businki-sub003/internal/modules/serializer"
	"github.com/Yolxander/businki-sub003/internal/modules/service"
)

type DocumentHandler struct {
	svc service.DocumentService
	gen service.GenerationService
}

func NewDocumentHandler(s service.DocumentService, gen service.GenerationService) *DocumentHandler {
	return &DocumentHandler{svc: s, gen: gen}
}

type CreateDocumentReq struct {
	ProjectID   string            `json:"project_id" binding:"required,uuid" format:"uuid"`
	Name        string            `json:"name" binding:"required,max=255" example:"Rollout Plan"`
	Description string            `json:"description"`
	Type        string            `json:"type" binding:"required" example:"implementation"`
	Content     string            `json:"content" binding:"required"`
	Variables   map[string]string `json:"variables"`
	IsTemplate  bool              `json:"is_template"`
	IsActive    *bool             `json:"is_active"`
}

type UploadDocumentReq struct {
	ProjectID   string `form:"project_id" binding:"required,uuid"`
	Name        string `form:"name" binding:"required,max=255"`
	Description string `form:"description"`
	Type        string `form:"type" binding:"required"`
	IsTemplate  bool   `form:"is_template"`
	IsActive    *bool  `form:"is_active"`
}

// CreateDocument godoc
//
//	@Summary		Create document
//	@Description	Create a document from JSON, or upload a file with multipart/form-data (fields project_id, name, type, description, is_template, is_active and file)
//	@Tags			document
//	@Accept			json,mpfd
//	@Produce		json
//	@Param			payload	body		handler.CreateDocumentReq	false	"CreateDocument payload"
//	@Param			file	formData	file						false	"Uploaded original"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.Document}
//	@Failure		409	{object}	serializer.Response
//	@Router			/documents [post]
func (h *DocumentHandler) CreateDocument(c *gin.Context) {
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		h.uploadDocument(c)
		return
	}

	req := CreateDocumentReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	user, ok := currentUser(c)
	if !ok {
		return
	}

	d, err := h.svc.Create(c.Request.Context(), service.CreateDocumentInput{
		ProjectID:   uuid.MustParse(req.ProjectID),
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		Content:     req.Content,
		Variables:   req.Variables,
		IsTemplate:  req.IsTemplate,
		IsActive:    req.IsActive,
		ActorID:     user.ID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, serializer.Response{Data: d})
}

func (h *DocumentHandler) uploadDocument(c *gin.Context) {
	req := UploadDocumentReq{}
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ValidationErr("", map[string]string{"file": "is required"}))
		return
	}
	user, ok := currentUser(c)
	if !ok {
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("cannot read uploaded file", err))
		return
	}
	defer f.Close()

	d, err := h.svc.Upload(c.Request.Context(), service.UploadDocumentInput{
		ProjectID:   uuid.MustParse(req.ProjectID),
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		IsTemplate:  req.IsTemplate,
		IsActive:    req.IsActive,
		Filename:    fh.Filename,
		Body:        f,
		ActorID:     user.ID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, serializer.Response{Data: d})
}

type GenerateDocumentReq struct {
	ProjectID   string                    `json:"project_id" binding:"required,uuid" format:"uuid"`
	Type        string                    `json:"type" binding:"required" example:"implementation"`
	Prompt      string                    `json:"prompt" binding:"required" example:"plan a 3-phase rollout"`
	Name        string                    `json:"name" binding:"omitempty,max=255"`
	Description string                    `json:"description"`
	Options     service.GenerationOptions `json:"options"`
}

// GenerateDocument godoc
//
//	@Summary		Generate document
//	@Description	Generate a document with the completion model and store it as version 1 of a new group. Nothing is stored when generation fails.
//	@Tags			document
//	@Accept			json
//	@Produce		json
//	@Param			payload	body	handler.GenerateDocumentReq	true	"GenerateDocument payload"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.Document}
//	@Failure		400	{object}	serializer.Response
//	@Failure		502	{object}	serializer.Response
//	@Router			/documents/generate [post]
func (h *DocumentHandler) GenerateDocument(c *gin.Context) {
	req := GenerateDocumentReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	user, ok := currentUser(c)
	if !ok {
		return
	}

	d, err := h.gen.Generate(c.Request.Context(), service.GenerateDocumentInput{
		ProjectID:   uuid.MustParse(req.ProjectID),
		Type:        req.Type,
		Prompt:      req.Prompt,
		Name:        req.Name,
		Description: req.Description,
		Options:     req.Options,
		ActorID:     user.ID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, serializer.Response{Data: d})
}

// GetDocument godoc
//
//	@Summary		Get document
//	@Tags			document
//	@Produce		json
//	@Param			document_id	path	string	true	"Document ID"	Format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Document}
//	@Router			/documents/{document_id} [get]
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	id, ok := pathUUID(c, "document_id")
	if !ok {
		return
	}
	d, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: d})
}

type UpdateDocumentReq struct {
	Description *string            `json:"description"`
	Content     *string            `json:"content"`
	Variables   *map[string]string `json:"variables"`
	IsTemplate  *bool              `json:"is_template"`
}

// UpdateDocument godoc
//
//	@Summary		Update document
//	@Description	Edit a document in place. The version is not bumped; name and type cannot change.
//	@Tags			document
//	@Accept			json
//	@Produce		json
//	@Param			document_id	path	string						true	"Document ID"	Format(uuid)
//	@Param			payload		body	handler.UpdateDocumentReq	true	"UpdateDocument payload"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Document}
//	@Router			/documents/{document_id} [patch]
func (h *DocumentHandler) UpdateDocument(c *gin.Context) {
	id, ok := pathUUID(c, "document_id")
	if !ok {
		return
	}
	req := UpdateDocumentReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	user, ok := currentUser(c)
	if !ok {
		return
	}

	d, err := h.svc.Update(c.Request.Context(), service.UpdateDocumentInput{
		ID:          id,
		Description: req.Description,
		Content:     req.Content,
		Variables:   req.Variables,
		IsTemplate:  req.IsTemplate,
		ActorID:     user.ID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: d})
}

// DeleteDocument godoc
//
//	@Summary		Delete document
//	@Description	Delete a document and, when no other version references it, its uploaded file
//	@Tags			document
//	@Produce		json
//	@Param			document_id	path	string	true	"Document ID"	Format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response
//	@Router			/documents/{document_id} [delete]
func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	id, ok := pathUUID(c, "document_id")
	if !ok {
		return
	}
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id, user.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{})
}

// ListVersions godoc
//
//	@Summary		List document versions
//	@Description	All versions sharing the document's project, name and type, by version ascending
//	@Tags			document
//	@Produce		json
//	@Param			document_id	path	string	true	"Document ID"	Format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=[]model.Document}
//	@Router			/documents/{document_id}/versions [get]
func (h *DocumentHandler) ListVersions(c *gin.Context) {
	id, ok := pathUUID(c, "document_id")
	if !ok {
		return
	}
	items, err := h.svc.ListVersions(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: items})
}

// CreateVersion godoc
//
//	@Summary		Create new version
//	@Description	Clone the document as the next version of its group. The clone starts inactive.
//	@Tags			document
//	@Produce		json
//	@Param			document_id	path	string	true	"Document ID"	Format(uuid)
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.Document}
//	@Failure		409	{object}	serializer.Response
//	@Router			/documents/{document_id}/version [post]
func (h *DocumentHandler) CreateVersion(c *gin.Context) {
	id, ok := pathUUID(c, "document_id")
	if !ok {
		return
	}
	user, ok := currentUser(c)
	if !ok {
		return
	}
	d, err := h.svc.CreateNewVersion(c.Request.Context(), id, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, serializer.Response{Data: d})
}

// ActivateDocument godoc
//
//	@Summary		Activate document version
//	@Description	Make this version the only active one of its group
//	@Tags			document
//	@Produce		json
//	@Param			document_id	path	string	true	"Document ID"	Format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Document}
//	@Failure		409	{object}	serializer.Response
//	@Router			/documents/{document_id}/activate [patch]
func (h *DocumentHandler) ActivateDocument(c *gin.Context) {
	id, ok := pathUUID(c, "document_id")
	if !ok {
		return
	}
	user, ok := currentUser(c)
	if !ok {
		return
	}
	d, err := h.svc.Activate(c.Request.Context(), id, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: d})
}

type InstantiateDocumentReq struct {
	Name      string            `json:"name" binding:"required,max=255" example:"Acme Kickoff"`
	Variables map[string]string `json:"variables"`
}

// InstantiateDocument godoc
//
//	@Summary		Instantiate template
//	@Description	Render a template's {{placeholders}} into a new active document
//	@Tags			document
//	@Accept			json
//	@Produce		json
//	@Param			document_id	path	string							true	"Template document ID"	Format(uuid)
//	@Param			payload		body	handler.InstantiateDocumentReq	true	"InstantiateDocument payload"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.Document}
//	@Router			/documents/{document_id}/instantiate [post]
func (h *DocumentHandler) InstantiateDocument(c *gin.Context) {
	id, ok := pathUUID(c, "document_id")
	if !ok {
		return
	}
	req := InstantiateDocumentReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	user, ok := currentUser(c)
	if !ok {
		return
	}

	d, err := h.svc.Instantiate(c.Request.Context(), service.InstantiateInput{
		TemplateID: id,
		Name:       req.Name,
		Variables:  req.Variables,
		ActorID:    user.ID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, serializer.Response{Data: d})
}

func attachment(filename string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": filename})
}

// DownloadDocument godoc
//
//	@Summary		Download document
//	@Description	Markdown types get a YAML front matter block; custom documents are served as plain text
//	@Tags			document
//	@Produce		plain
//	@Param			document_id	path	string	true	"Document ID"	Format(uuid)
//	@Security		BearerAuth
//	@Success		200	{file}	file
//	@Router			/documents/{document_id}/download [get]
func (h *DocumentHandler) DownloadDocument(c *gin.Context) {
	id, ok := pathUUID(c, "document_id")
	if !ok {
		return
	}
	f, err := h.svc.Download(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", attachment(f.Filename))
	c.Data(http.StatusOK, f.ContentType, f.Body)
}

// DownloadOriginal godoc
//
//	@Summary		Download uploaded original
//	@Tags			document
//	@Produce		octet-stream
//	@Param			document_id	path	string	true	"Document ID"	Format(uuid)
//	@Security		BearerAuth
//	@Success		200	{file}	file
//	@Failure		404	{object}	serializer.Response
//	@Router			/documents/{document_id}/original [get]
func (h *DocumentHandler) DownloadOriginal(c *gin.Context) {
	id, ok := pathUUID(c, "document_id")
	if !ok {
		return
	}
	of, err := h.svc.OpenOriginal(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	defer of.Body.Close()

	size := of.Size
	if size <= 0 {
		size = -1
	}
	c.DataFromReader(http.StatusOK, size, of.ContentType, of.Body, map[string]string{
		"Content-Disposition": attachment(of.Filename),
	})
}
