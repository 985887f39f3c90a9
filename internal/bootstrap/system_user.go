package bootstrap

import (
	"context"

	"go.uber.org/zap"

	"github.com/Yolxander/businki-sub003/internal/config"
	"github.com/Yolxander/businki-sub003/internal/modules/model"
	"github.com/Yolxander/businki-sub003/internal/modules/repo"
)

// EnsureSystemUser creates or aligns the user that owns requests while auth is disabled.
func EnsureSystemUser(ctx context.Context, users repo.UserRepo, cfg *config.Config, log *zap.Logger) (*model.User, error) {
	name := cfg.Auth.SystemUserName
	if name == "" {
		name = "System"
	}
	u, err := users.GetOrCreate(ctx, model.SystemSubject, name, "")
	if err != nil {
		return nil, err
	}
	log.Sugar().Infow("system user ready", "user", u.ID)
	return u, nil
}
