package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"storycraft-server/internal/models"
)

// Mock PageRepository
type PageRepository struct {
	mock.Mock
}

func (m *PageRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Page, error) {
	args := m.Called(ctx, id)
	page, _ := args.Get(0).(*models.Page)
	return page, args.Error(1)
}

func (m *PageRepository) List(ctx context.Context, ownerUser string, projectID uuid.UUID, status *models.PageStatus) ([]models.Page, error) {
	args := m.Called(ctx, ownerUser, projectID, status)
	pages, _ := args.Get(0).([]models.Page)
	return pages, args.Error(1)
}

func (m *PageRepository) Upsert(ctx context.Context, page *models.Page) error {
	args := m.Called(ctx, page)
	return args.Error(0)
}

func (m *PageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Mock ProjectRepository
type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	args := m.Called(ctx, id)
	project, _ := args.Get(0).(*models.Project)
	return project, args.Error(1)
}

func (m *ProjectRepository) GetByName(ctx context.Context, ownerUser, name string) (*models.Project, error) {
	args := m.Called(ctx, ownerUser, name)
	project, _ := args.Get(0).(*models.Project)
	return project, args.Error(1)
}

func (m *ProjectRepository) ListByOwner(ctx context.Context, ownerUser string) ([]models.Project, error) {
	args := m.Called(ctx, ownerUser)
	projects, _ := args.Get(0).([]models.Project)
	return projects, args.Error(1)
}

func (m *ProjectRepository) Update(ctx context.Context, project *models.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
