package repo

import (
	"context"
	"errors"

	"github.com/Yolxander/businki-sub003/internal/modules/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetBySubject(ctx context.Context, subject string) (*model.User, error)
	GetOrCreate(ctx context.Context, subject, name, email string) (*model.User, error)
}

type userRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) UserRepo {
	return &userRepo{db: db}
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetBySubject(ctx context.Context, subject string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("subject = ?", subject).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetOrCreate returns the user for subject, creating it on first sight and
// aligning name and email with the latest token claims.
func (r *userRepo) GetOrCreate(ctx context.Context, subject, name, email string) (*model.User, error) {
	u, err := r.GetBySubject(ctx, subject)
	if err == nil {
		if (name != "" && u.Name != name) || (email != "" && u.Email != email) {
			updates := map[string]interface{}{}
			if name != "" {
				updates["name"] = name
				u.Name = name
			}
			if email != "" {
				updates["email"] = email
				u.Email = email
			}
			if err := r.db.WithContext(ctx).Model(u).Updates(updates).Error; err != nil {
				return nil, err
			}
		}
		return u, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if name == "" {
		name = subject
	}
	nu := model.User{Subject: subject, Name: name, Email: email}
	if err := r.db.WithContext(ctx).Create(&nu).Error; err != nil {
		// another request may have created it first
		if existing, getErr := r.GetBySubject(ctx, subject); getErr == nil {
			return existing, nil
		}
		return nil, err
	}
	return &nu, nil
}
