package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/Yolxander/businki-sub003/docs"
	"github.com/Yolxander/businki-sub003/internal/config"
	"github.com/Yolxander/businki-sub003/internal/middleware"
	"github.com/Yolxander/businki-sub003/internal/modules/handler"
	"github.com/Yolxander/businki-sub003/internal/modules/model"
	"github.com/Yolxander/businki-sub003/internal/modules/serializer"
	"github.com/Yolxander/businki-sub003/internal/modules/service"
	"github.com/Yolxander/businki-sub003/internal/pkg/jwtauth"
	"github.com/Yolxander/businki-sub003/internal/telemetry"
)

type RouterDeps struct {
	Config          *config.Config
	Log             *zap.Logger
	Verifier        jwtauth.Verifier
	UserService     service.UserService
	SystemUser      *model.User
	ProjectHandler  *handler.ProjectHandler
	DocumentHandler *handler.DocumentHandler
	UserHandler     *handler.UserHandler
}

func NewRouter(d RouterDeps) *gin.Engine {
	binding.EnableDecoderDisallowUnknownFields = true
	handler.UseJSONFieldNames()

	r := gin.New()
	r.MaxMultipartMemory = 8 << 20
	r.Use(gin.Recovery())

	if d.Config.Telemetry.Enabled && d.Config.Telemetry.OtlpEndpoint != "" {
		r.Use(telemetry.GinMiddleware(d.Config.App.Name))
		r.Use(telemetry.TraceIDMiddleware())
	}
	r.Use(middleware.ZapLogger(d.Log))
	if len(d.Config.CORS.AllowOrigins) > 0 {
		r.Use(middleware.CORS(d.Config.CORS.AllowOrigins))
	}

	// health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "ok"}) })

	// swagger
	r.GET("/swagger", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		v1.Use(middleware.UserAuth(d.Config, d.Verifier, d.UserService, d.SystemUser))

		v1.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "pong"}) })
		v1.GET("/me", d.UserHandler.GetMe)
		v1.GET("/document-types", handler.ListDocumentTypes)

		project := v1.Group("/projects")
		{
			project.GET("", d.ProjectHandler.ListProjects)
			project.POST("", d.ProjectHandler.CreateProject)
			project.POST("/generate", d.ProjectHandler.GenerateProject)
			project.GET("/:project_id", d.ProjectHandler.GetProject)
			project.PATCH("/:project_id", d.ProjectHandler.UpdateProject)
			project.DELETE("/:project_id", d.ProjectHandler.DeleteProject)

			project.PATCH("/:project_id/activate", d.ProjectHandler.SetStatus(model.ProjectStatusActive))
			project.PATCH("/:project_id/archive", d.ProjectHandler.SetStatus(model.ProjectStatusArchived))
			project.PATCH("/:project_id/complete", d.ProjectHandler.SetStatus(model.ProjectStatusCompleted))

			project.GET("/:project_id/documents", d.ProjectHandler.ListProjectDocuments)
			project.GET("/:project_id/templates", d.ProjectHandler.ListProjectTemplates)
		}

		document := v1.Group("/documents")
		{
			document.POST("", d.DocumentHandler.CreateDocument)
			document.POST("/generate", d.DocumentHandler.GenerateDocument)
			document.GET("/:document_id", d.DocumentHandler.GetDocument)
			document.PATCH("/:document_id", d.DocumentHandler.UpdateDocument)
			document.DELETE("/:document_id", d.DocumentHandler.DeleteDocument)

			document.GET("/:document_id/versions", d.DocumentHandler.ListVersions)
			document.POST("/:document_id/version", d.DocumentHandler.CreateVersion)
			document.PATCH("/:document_id/activate", d.DocumentHandler.ActivateDocument)
			document.POST("/:document_id/instantiate", d.DocumentHandler.InstantiateDocument)

			document.GET("/:document_id/download", d.DocumentHandler.DownloadDocument)
			document.GET("/:document_id/original", d.DocumentHandler.DownloadOriginal)
		}
	}
	return r
}
