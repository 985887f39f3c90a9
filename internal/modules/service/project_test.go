package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Yolxander/businki-sub003/internal/modules/model"
	"github.com/Yolxander/businki-sub003/internal/modules/repo"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestProjectService_Create(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New()

	tests := []struct {
		name    string
		input   CreateProjectInput
		setup   func(*MockProjectRepo)
		wantErr error
	}{
		{
			name:  "successful project creation",
			input: CreateProjectInput{Title: "Acme Redesign", Description: "Storefront refresh", ActorID: actorID},
			setup: func(r *MockProjectRepo) {
				r.On("Create", mock.Anything, mock.MatchedBy(func(p *model.DevProject) bool {
					return p.Title == "Acme Redesign" && p.Status == model.ProjectStatusActive && p.CreatedByID == actorID
				})).Run(func(args mock.Arguments) {
					args.Get(1).(*model.DevProject).ID = uuid.New()
				}).Return(nil)
				r.On("Get", mock.Anything, mock.AnythingOfType("uuid.UUID")).Return(&model.DevProject{Title: "Acme Redesign"}, nil)
			},
		},
		{
			name:    "empty title",
			input:   CreateProjectInput{ActorID: actorID},
			setup:   func(r *MockProjectRepo) {},
			wantErr: ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &MockProjectRepo{}
			tt.setup(r)

			_, err := NewProjectService(r, &MockBlobStore{}, zap.NewNop()).Create(ctx, tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			r.AssertExpectations(t)
		})
	}
}

func TestProjectService_List(t *testing.T) {
	ctx := context.Background()

	r := &MockProjectRepo{}
	r.On("List", mock.Anything, repo.ProjectListFilter{Status: "archived", Limit: DefaultPageSize + 1}).
		Return([]*model.DevProject{{ID: uuid.New()}}, nil)

	out, err := NewProjectService(r, &MockBlobStore{}, zap.NewNop()).List(ctx, ListProjectsInput{Status: "archived"})
	require.NoError(t, err)
	assert.Len(t, out.Items, 1)
	assert.False(t, out.HasMore)
	assert.Empty(t, out.NextCursor)

	_, err = NewProjectService(r, &MockBlobStore{}, zap.NewNop()).List(ctx, ListProjectsInput{Status: "deleted"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestProjectService_SetStatus(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	tests := []struct {
		name    string
		status  string
		setup   func(*MockProjectRepo)
		wantErr error
	}{
		{
			name:   "archive",
			status: model.ProjectStatusArchived,
			setup: func(r *MockProjectRepo) {
				r.On("Update", mock.Anything, id, map[string]interface{}{"status": "archived"}).Return(nil)
				r.On("Get", mock.Anything, id).Return(&model.DevProject{ID: id, Status: "archived"}, nil)
			},
		},
		{
			name:   "completed back to active",
			status: model.ProjectStatusActive,
			setup: func(r *MockProjectRepo) {
				r.On("Update", mock.Anything, id, map[string]interface{}{"status": "active"}).Return(nil)
				r.On("Get", mock.Anything, id).Return(&model.DevProject{ID: id, Status: "active"}, nil)
			},
		},
		{
			name:    "unknown status",
			status:  "paused",
			setup:   func(r *MockProjectRepo) {},
			wantErr: ErrValidation,
		},
		{
			name:   "missing project",
			status: model.ProjectStatusCompleted,
			setup: func(r *MockProjectRepo) {
				r.On("Update", mock.Anything, id, mock.Anything).Return(gorm.ErrRecordNotFound)
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &MockProjectRepo{}
			tt.setup(r)

			p, err := NewProjectService(r, &MockBlobStore{}, zap.NewNop()).SetStatus(ctx, id, tt.status)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.status, p.Status)
			}
			r.AssertExpectations(t)
		})
	}
}

func TestProjectService_Update(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	title := "Acme Relaunch"

	r := &MockProjectRepo{}
	r.On("Update", mock.Anything, id, map[string]interface{}{"title": title}).Return(nil)
	r.On("Get", mock.Anything, id).Return(&model.DevProject{ID: id, Title: title}, nil)

	p, err := NewProjectService(r, &MockBlobStore{}, zap.NewNop()).Update(ctx, UpdateProjectInput{ID: id, Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, p.Title)

	_, err = NewProjectService(r, &MockBlobStore{}, zap.NewNop()).Update(ctx, UpdateProjectInput{ID: id})
	assert.ErrorIs(t, err, ErrValidation)
}

// syncBlobStore records deletes from concurrent goroutines.
type syncBlobStore struct {
	MockBlobStore
	mu      sync.Mutex
	deleted []string
}

func (s *syncBlobStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, key)
	if key == "documents/p/bad/x.pdf" {
		return errors.New("access denied")
	}
	return nil
}

func TestProjectService_Delete(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("removes files of deleted documents", func(t *testing.T) {
		r := &MockProjectRepo{}
		paths := []string{"documents/p/a/x.pdf", "documents/p/bad/x.pdf", "documents/p/c/y.md"}
		r.On("Delete", mock.Anything, id).Return(paths, nil)
		store := &syncBlobStore{}

		require.NoError(t, NewProjectService(r, store, zap.NewNop()).Delete(ctx, id))
		assert.ElementsMatch(t, paths, store.deleted)
		r.AssertExpectations(t)
	})

	t.Run("missing project", func(t *testing.T) {
		r := &MockProjectRepo{}
		r.On("Delete", mock.Anything, id).Return(nil, gorm.ErrRecordNotFound)

		err := NewProjectService(r, &MockBlobStore{}, zap.NewNop()).Delete(ctx, id)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
