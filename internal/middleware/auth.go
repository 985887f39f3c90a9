package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Yolxander/businki-sub003/internal/config"
	"github.com/Yolxander/businki-sub003/internal/modules/model"
	"github.com/Yolxander/businki-sub003/internal/modules/serializer"
	"github.com/Yolxander/businki-sub003/internal/modules/service"
	"github.com/Yolxander/businki-sub003/internal/pkg/jwtauth"
)

// UserAuth returns a middleware that resolves the calling user and sets it in the context.
// With auth disabled every request runs as systemUser. Otherwise the bearer token is
// verified and its subject mapped onto a local user, created on first sight.
func UserAuth(cfg *config.Config, verifier jwtauth.Verifier, users service.UserService, systemUser *model.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Auth.Enabled {
			c.Set("user", systemUser)
			c.Next()
			return
		}

		ctx, authSpan := otel.Tracer("middleware").Start(c.Request.Context(), "user_auth",
			trace.WithAttributes(attribute.String("middleware", "user_auth")))

		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") || verifier == nil {
			authSpan.SetAttributes(attribute.Bool("authenticated", false))
			authSpan.End()
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
			return
		}

		claims, err := verifier.Verify(strings.TrimPrefix(auth, "Bearer "))
		if err != nil || claims.Subject == "" {
			authSpan.SetAttributes(attribute.Bool("authenticated", false))
			authSpan.End()
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
			return
		}

		user, err := users.Resolve(ctx, service.ResolveUserInput{
			Subject: claims.Subject,
			Name:    claims.DisplayName(),
			Email:   claims.Email,
		})
		if err != nil {
			authSpan.RecordError(err)
			authSpan.End()
			c.AbortWithStatusJSON(http.StatusInternalServerError, serializer.DBErr("", err))
			return
		}

		rootSpan := trace.SpanFromContext(c.Request.Context())
		if rootSpan.SpanContext().IsValid() {
			rootSpan.SetAttributes(attribute.String("user_id", user.ID.String()))
		}

		authSpan.SetAttributes(
			attribute.String("user_id", user.ID.String()),
			attribute.Bool("authenticated", true),
		)
		authSpan.End()

		c.Set("user", user)
		c.Next()
	}
}
