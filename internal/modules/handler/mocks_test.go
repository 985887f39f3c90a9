package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/Yolxander/businki-sub003/internal/modules/model"
	"github.com/Yolxander/businki-sub003/internal/modules/service"
	"github.com/Yolxander/businki-sub003/internal/pkg/materialize"
)

// MockDocumentService is a mock implementation of DocumentService
type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) doc(args mock.Arguments) (*model.Document, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Create(ctx context.Context, in service.CreateDocumentInput) (*model.Document, error) {
	return m.doc(m.Called(ctx, in))
}

func (m *MockDocumentService) Upload(ctx context.Context, in service.UploadDocumentInput) (*model.Document, error) {
	return m.doc(m.Called(ctx, in))
}

func (m *MockDocumentService) Get(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	return m.doc(m.Called(ctx, id))
}

func (m *MockDocumentService) List(ctx context.Context, in service.ListDocumentsInput) (*service.ListDocumentsOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListDocumentsOutput), args.Error(1)
}

func (m *MockDocumentService) ListVersions(ctx context.Context, id uuid.UUID) ([]*model.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Document), args.Error(1)
}

func (m *MockDocumentService) Update(ctx context.Context, in service.UpdateDocumentInput) (*model.Document, error) {
	return m.doc(m.Called(ctx, in))
}

func (m *MockDocumentService) CreateNewVersion(ctx context.Context, id, actorID uuid.UUID) (*model.Document, error) {
	return m.doc(m.Called(ctx, id, actorID))
}

func (m *MockDocumentService) Activate(ctx context.Context, id, actorID uuid.UUID) (*model.Document, error) {
	return m.doc(m.Called(ctx, id, actorID))
}

func (m *MockDocumentService) Delete(ctx context.Context, id, actorID uuid.UUID) error {
	args := m.Called(ctx, id, actorID)
	return args.Error(0)
}

func (m *MockDocumentService) Download(ctx context.Context, id uuid.UUID) (*materialize.File, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*materialize.File), args.Error(1)
}

func (m *MockDocumentService) OpenOriginal(ctx context.Context, id uuid.UUID) (*service.OriginalFile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.OriginalFile), args.Error(1)
}

func (m *MockDocumentService) Instantiate(ctx context.Context, in service.InstantiateInput) (*model.Document, error) {
	return m.doc(m.Called(ctx, in))
}

// MockGenerationService is a mock implementation of GenerationService
type MockGenerationService struct {
	mock.Mock
}

func (m *MockGenerationService) Generate(ctx context.Context, in service.GenerateDocumentInput) (*model.Document, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockGenerationService) GenerateProject(ctx context.Context, in service.GenerateProjectInput) (*model.DevProject, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DevProject), args.Error(1)
}

// MockProjectService is a mock implementation of ProjectService
type MockProjectService struct {
	mock.Mock
}

func (m *MockProjectService) project(args mock.Arguments) (*model.DevProject, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DevProject), args.Error(1)
}

func (m *MockProjectService) Create(ctx context.Context, in service.CreateProjectInput) (*model.DevProject, error) {
	return m.project(m.Called(ctx, in))
}

func (m *MockProjectService) Get(ctx context.Context, id uuid.UUID) (*model.DevProject, error) {
	return m.project(m.Called(ctx, id))
}

func (m *MockProjectService) List(ctx context.Context, in service.ListProjectsInput) (*service.ListProjectsOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListProjectsOutput), args.Error(1)
}

func (m *MockProjectService) Update(ctx context.Context, in service.UpdateProjectInput) (*model.DevProject, error) {
	return m.project(m.Called(ctx, in))
}

func (m *MockProjectService) SetStatus(ctx context.Context, id uuid.UUID, status string) (*model.DevProject, error) {
	return m.project(m.Called(ctx, id, status))
}

func (m *MockProjectService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockUserService is a mock implementation of UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Resolve(ctx context.Context, in service.ResolveUserInput) (*model.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

var testUser = &model.User{ID: uuid.MustParse("6f0c2f4e-8a4b-4d52-9d4c-1b2a3c4d5e6f"), Subject: "sub-dana", Name: "Dana"}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	binding.EnableDecoderDisallowUnknownFields = true
	UseJSONFieldNames()
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user", testUser)
		c.Next()
	})
	return r
}
