package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Yolxander/businki-sub003/internal/modules/serializer"
	"github.com/Yolxander/businki-sub003/internal/pkg/doctype"
)

// ListDocumentTypes godoc
//
//	@Summary		List document types
//	@Tags			document
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=[]doctype.Definition}
//	@Router			/document-types [get]
func ListDocumentTypes(c *gin.Context) {
	c.JSON(http.StatusOK, serializer.Response{Data: doctype.All()})
}
