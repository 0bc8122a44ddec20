package repository

import (
	"context"
	"errors"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"storycraft-server/internal/models"
)

// Compile-time check to ensure pgProjectRepository implements ProjectRepository
var _ ProjectRepository = (*pgProjectRepository)(nil)

type pgProjectRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewPgProjectRepository creates a new PostgreSQL-backed ProjectRepository.
func NewPgProjectRepository(db DBTX, logger *zap.Logger) ProjectRepository {
	return &pgProjectRepository{
		db:     db,
		logger: logger.Named("PgProjectRepo"),
	}
}

const projectColumns = `id, owner_user, name, overview, global_context, status, created_at, updated_at`

func (r *pgProjectRepository) Create(ctx context.Context, project *models.Project) error {
	query := `
		INSERT INTO projects (id, owner_user, name, overview, global_context, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		project.ID, project.OwnerUser, project.Name, project.Overview,
		project.GlobalContext, project.Status, project.CreatedAt, project.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			r.logger.Warn("Attempted to create duplicate project",
				zap.String("ownerUser", project.OwnerUser), zap.String("name", project.Name))
			return models.ErrProjectAlreadyExists
		}
		r.logger.Error("Failed to create project in postgres", zap.Error(err), zap.String("name", project.Name))
		return wrapStoreError("create project", err)
	}
	r.logger.Info("Project created",
		zap.String("projectID", project.ID.String()), zap.String("ownerUser", project.OwnerUser), zap.String("name", project.Name))
	return nil
}

func (r *pgProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	var project models.Project
	if err := pgxscan.Get(ctx, r.db, &project, query, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrProjectNotFound
		}
		r.logger.Error("Failed to get project from postgres", zap.Error(err), zap.String("projectID", id.String()))
		return nil, wrapStoreError("get project", err)
	}
	return &project, nil
}

func (r *pgProjectRepository) GetByName(ctx context.Context, ownerUser, name string) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE owner_user = $1 AND name = $2`
	var project models.Project
	if err := pgxscan.Get(ctx, r.db, &project, query, ownerUser, name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrProjectNotFound
		}
		r.logger.Error("Failed to get project by name from postgres",
			zap.Error(err), zap.String("ownerUser", ownerUser), zap.String("name", name))
		return nil, wrapStoreError("get project by name", err)
	}
	return &project, nil
}

func (r *pgProjectRepository) ListByOwner(ctx context.Context, ownerUser string) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE owner_user = $1 ORDER BY created_at ASC, id ASC`
	var projects []models.Project
	if err := pgxscan.Select(ctx, r.db, &projects, query, ownerUser); err != nil {
		r.logger.Error("Failed to list projects from postgres", zap.Error(err), zap.String("ownerUser", ownerUser))
		return nil, wrapStoreError("list projects", err)
	}
	return projects, nil
}

func (r *pgProjectRepository) Update(ctx context.Context, project *models.Project) error {
	query := `
		UPDATE projects
		SET name = $2, overview = $3, global_context = $4, status = $5, updated_at = $6
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		project.ID, project.Name, project.Overview, project.GlobalContext, project.Status, project.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.ErrProjectAlreadyExists
		}
		r.logger.Error("Failed to update project in postgres", zap.Error(err), zap.String("projectID", project.ID.String()))
		return wrapStoreError("update project", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrProjectNotFound
	}
	return nil
}

func (r *pgProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete project from postgres", zap.Error(err), zap.String("projectID", id.String()))
		return wrapStoreError("delete project", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrProjectNotFound
	}
	return nil
}
