package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Yolxander/businki-sub003/internal/modules/model"
	"github.com/Yolxander/businki-sub003/internal/modules/serializer"
	"github.com/Yolxander/businki-sub003/internal/modules/service"
)

// UseJSONFieldNames makes binding errors report json/form field names instead of Go field names.
func UseJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
}

// respondError maps service errors onto the response envelope.
func respondError(c *gin.Context, err error) {
	var ve *service.ValidationError
	var ge *service.GenerationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, serializer.ValidationErr("", ve.Fields))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, serializer.NotFoundErr(err.Error(), nil))
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, serializer.ConflictErr(err.Error(), nil))
	case errors.Is(err, service.ErrConcurrencyViolation):
		c.JSON(http.StatusConflict, serializer.ConflictErr(err.Error(), nil))
	case errors.As(err, &ge):
		c.JSON(http.StatusBadGateway, serializer.UpstreamErr("generation failed", errors.New(ge.Message)))
	case errors.Is(err, service.ErrStorageFailure):
		c.JSON(http.StatusInternalServerError, serializer.Err(http.StatusInternalServerError, "storage failure", err))
	default:
		c.JSON(http.StatusInternalServerError, serializer.Err(http.StatusInternalServerError, "internal error", err))
	}
}

// respondBindError reports request binding failures, field by field when possible.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = bindMessage(fe)
	}
	c.JSON(http.StatusBadRequest, serializer.ValidationErr("", fields))
}

func bindMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "uuid":
		return "must be a valid UUID"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	}
	return "is invalid"
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ValidationErr("", map[string]string{name: "must be a valid UUID"}))
		return uuid.Nil, false
	}
	return id, true
}

// currentUser returns the caller set by the auth middleware.
func currentUser(c *gin.Context) (*model.User, bool) {
	u, ok := c.MustGet("user").(*model.User)
	if !ok || u == nil {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
		return nil, false
	}
	return u, true
}
