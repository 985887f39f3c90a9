package service

import (
	"context"

	"github.com/Yolxander/businki-sub003/internal/modules/model"
	"github.com/Yolxander/businki-sub003/internal/modules/repo"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

type UserService interface {
	// Resolve maps a verified identity onto a local user, creating it on first sight.
	Resolve(ctx context.Context, in ResolveUserInput) (*model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

type userService struct {
	r repo.UserRepo
}

func NewUserService(r repo.UserRepo) UserService {
	return &userService{r: r}
}

type ResolveUserInput struct {
	Subject string `json:"subject"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

func (in ResolveUserInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Subject, validation.Required),
	)
}

func (s *userService) Resolve(ctx context.Context, in ResolveUserInput) (*model.User, error) {
	if err := in.Validate(); err != nil {
		return nil, fromOzzo(err)
	}
	return s.r.GetOrCreate(ctx, in.Subject, in.Name, in.Email)
}

func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, err := s.r.GetByID(ctx, id)
	if err != nil {
		return nil, notFound("user", err)
	}
	return u, nil
}
