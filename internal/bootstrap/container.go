package bootstrap

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Yolxander/businki-sub003/internal/config"
	"github.com/Yolxander/businki-sub003/internal/infra/blob"
	"github.com/Yolxander/businki-sub003/internal/infra/cache"
	"github.com/Yolxander/businki-sub003/internal/infra/db"
	"github.com/Yolxander/businki-sub003/internal/infra/llm"
	"github.com/Yolxander/businki-sub003/internal/infra/logger"
	mq "github.com/Yolxander/businki-sub003/internal/infra/queue"
	"github.com/Yolxander/businki-sub003/internal/modules/handler"
	"github.com/Yolxander/businki-sub003/internal/modules/model"
	"github.com/Yolxander/businki-sub003/internal/modules/repo"
	"github.com/Yolxander/businki-sub003/internal/modules/service"
	"github.com/Yolxander/businki-sub003/internal/pkg/jwtauth"
	"github.com/Yolxander/businki-sub003/internal/telemetry"
)

func BuildContainer() *do.Injector {
	inj := do.New()

	// config
	do.Provide(inj, func(i *do.Injector) (*config.Config, error) {
		return config.Load()
	})

	// logger
	do.Provide(inj, func(i *do.Injector) (*zap.Logger, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return logger.New(cfg.Log.Level)
	})

	// DB
	do.Provide(inj, func(i *do.Injector) (*gorm.DB, error) {
		cfg := do.MustInvoke[*config.Config](i)
		d, err := db.New(cfg)
		if err != nil {
			return nil, err
		}
		if cfg.Telemetry.Enabled {
			if err := db.RegisterOpenTelemetryPlugin(d); err != nil {
				return nil, err
			}
		}
		if cfg.Database.AutoMigrate {
			if err := d.AutoMigrate(
				&model.User{},
				&model.DevProject{},
				&model.Document{},
			); err != nil {
				return nil, err
			}
		}
		return d, nil
	})

	// Redis
	do.Provide(inj, func(i *do.Injector) (*redis.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		rdb, err := cache.New(cfg)
		if err != nil {
			return nil, err
		}
		if cfg.Telemetry.Enabled {
			if err := cache.RegisterOpenTelemetryPlugin(rdb); err != nil {
				return nil, err
			}
		}
		return rdb, nil
	})

	// group locks: redis when available, in-process otherwise
	do.Provide(inj, func(i *do.Injector) (cache.Locker, error) {
		cfg := do.MustInvoke[*config.Config](i)
		wait := time.Duration(cfg.Redis.LockWaitMs) * time.Millisecond
		if !cfg.Redis.Enabled {
			return cache.NewLocalLocker(wait), nil
		}
		return cache.NewRedisLocker(
			do.MustInvoke[*redis.Client](i),
			"businki:lock:",
			time.Duration(cfg.Redis.LockTTLMs)*time.Millisecond,
			wait,
		), nil
	})

	// RabbitMQ
	do.Provide(inj, func(i *do.Injector) (mq.DialFunc, error) {
		return mq.NewDialFunc(do.MustInvoke[*config.Config](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*mq.Publisher, error) {
		return mq.NewPublisher(
			do.MustInvoke[mq.DialFunc](i),
			do.MustInvoke[*zap.Logger](i),
			do.MustInvoke[*config.Config](i),
		)
	})

	// Blob storage
	do.Provide(inj, func(i *do.Injector) (blob.Store, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if cfg.Storage.Driver == config.StorageS3 {
			return blob.NewS3Store(context.Background(), cfg)
		}
		return blob.NewLocalStore(cfg.Storage.LocalRoot)
	})

	// Completion client
	do.Provide(inj, func(i *do.Injector) (llm.Completer, error) {
		if err := telemetry.InitGenerationMetrics(); err != nil {
			return nil, err
		}
		return llm.New(context.Background(), do.MustInvoke[*config.Config](i), do.MustInvoke[*zap.Logger](i))
	})

	// Token verification; nil while auth is disabled
	do.Provide(inj, func(i *do.Injector) (jwtauth.Verifier, error) {
		cfg := do.MustInvoke[*config.Config](i)
		switch {
		case !cfg.Auth.Enabled:
			return nil, nil
		case cfg.Auth.JWKSURL != "":
			return jwtauth.NewJWKSVerifier(context.Background(), cfg.Auth.JWKSURL)
		default:
			return jwtauth.NewHMACVerifier(cfg.Auth.JWTSecret)
		}
	})

	// Repo
	do.Provide(inj, func(i *do.Injector) (repo.UserRepo, error) {
		return repo.NewUserRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.ProjectRepo, error) {
		return repo.NewProjectRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.DocumentRepo, error) {
		return repo.NewDocumentRepo(do.MustInvoke[*gorm.DB](i)), nil
	})

	// system user
	do.Provide(inj, func(i *do.Injector) (*model.User, error) {
		return EnsureSystemUser(
			context.Background(),
			do.MustInvoke[repo.UserRepo](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
		)
	})

	// Service
	do.Provide(inj, func(i *do.Injector) (*service.Events, error) {
		cfg := do.MustInvoke[*config.Config](i)
		var pub service.EventPublisher
		if cfg.RabbitMQ.Enabled {
			pub = do.MustInvoke[*mq.Publisher](i)
		}
		return service.NewEvents(pub, cfg, do.MustInvoke[*zap.Logger](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.UserService, error) {
		return service.NewUserService(do.MustInvoke[repo.UserRepo](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.ProjectService, error) {
		return service.NewProjectService(
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[blob.Store](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.DocumentService, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return service.NewDocumentService(
			do.MustInvoke[repo.DocumentRepo](i),
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[blob.Store](i),
			do.MustInvoke[cache.Locker](i),
			do.MustInvoke[*service.Events](i),
			cfg.Document.MaxUploadSizeBytes,
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.GenerationService, error) {
		return service.NewGenerationService(
			do.MustInvoke[repo.DocumentRepo](i),
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[llm.Completer](i),
			do.MustInvoke[*service.Events](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	// Handler
	do.Provide(inj, func(i *do.Injector) (*handler.ProjectHandler, error) {
		return handler.NewProjectHandler(
			do.MustInvoke[service.ProjectService](i),
			do.MustInvoke[service.GenerationService](i),
			do.MustInvoke[service.DocumentService](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.DocumentHandler, error) {
		return handler.NewDocumentHandler(
			do.MustInvoke[service.DocumentService](i),
			do.MustInvoke[service.GenerationService](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.UserHandler, error) {
		return handler.NewUserHandler(do.MustInvoke[service.UserService](i)), nil
	})
	return inj
}
