package repository

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"storycraft-server/internal/models"
)

// Compile-time check to ensure pgPageRepository implements PageRepository
var _ PageRepository = (*pgPageRepository)(nil)

type pgPageRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewPgPageRepository creates a new PostgreSQL-backed PageRepository.
func NewPgPageRepository(db DBTX, logger *zap.Logger) PageRepository {
	return &pgPageRepository{
		db:     db,
		logger: logger.Named("PgPageRepo"),
	}
}

const pageColumns = `id, owner_user, project_id, story_text, image_description,
	generated_image_description, asset_id, image_path, icon_path, status, "position",
	created_at, updated_at`

func (r *pgPageRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Page, error) {
	query := `SELECT ` + pageColumns + ` FROM pages WHERE id = $1`
	var page models.Page
	err := pgxscan.Get(ctx, r.db, &page, query, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("Page not found", zap.String("pageID", id.String()))
			return nil, models.ErrPageNotFound
		}
		r.logger.Error("Failed to get page from postgres", zap.Error(err), zap.String("pageID", id.String()))
		return nil, wrapStoreError("get page", err)
	}
	return &page, nil
}

func (r *pgPageRepository) List(ctx context.Context, ownerUser string, projectID uuid.UUID, status *models.PageStatus) ([]models.Page, error) {
	query := `SELECT ` + pageColumns + ` FROM pages WHERE owner_user = $1 AND project_id = $2`
	args := []any{ownerUser, projectID}
	if status != nil {
		query += ` AND status = $3`
		args = append(args, *status)
	}
	query += ` ORDER BY "position" ASC NULLS LAST, id ASC`

	var pages []models.Page
	if err := pgxscan.Select(ctx, r.db, &pages, query, args...); err != nil {
		r.logger.Error("Failed to list pages from postgres",
			zap.Error(err), zap.String("ownerUser", ownerUser), zap.String("projectID", projectID.String()))
		return nil, wrapStoreError("list pages", err)
	}
	return pages, nil
}

func (r *pgPageRepository) Upsert(ctx context.Context, page *models.Page) error {
	query := `
		INSERT INTO pages (id, owner_user, project_id, story_text, image_description,
			generated_image_description, asset_id, image_path, icon_path, status, "position",
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			owner_user = EXCLUDED.owner_user,
			project_id = EXCLUDED.project_id,
			story_text = EXCLUDED.story_text,
			image_description = EXCLUDED.image_description,
			generated_image_description = EXCLUDED.generated_image_description,
			asset_id = EXCLUDED.asset_id,
			image_path = EXCLUDED.image_path,
			icon_path = EXCLUDED.icon_path,
			status = EXCLUDED.status,
			"position" = EXCLUDED."position",
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.Exec(ctx, query,
		page.ID, page.OwnerUser, page.ProjectID, page.StoryText, page.ImageDescription,
		page.GeneratedImageDescription, page.AssetID, page.ImagePath, page.IconPath, page.Status, page.Position,
		page.CreatedAt, page.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to upsert page in postgres", zap.Error(err), zap.String("pageID", page.ID.String()))
		return wrapStoreError("upsert page", err)
	}
	r.logger.Debug("Page upserted",
		zap.String("pageID", page.ID.String()), zap.String("status", string(page.Status)))
	return nil
}

func (r *pgPageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM pages WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete page from postgres", zap.Error(err), zap.String("pageID", id.String()))
		return wrapStoreError("delete page", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrPageNotFound
	}
	return nil
}

// wrapStoreError folds connectivity failures into ErrStoreUnavailable so the
// caller can distinguish "store down" from a plain query error.
func wrapStoreError(op string, err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) || pgconn.Timeout(err) {
		return fmt.Errorf("%w: %s: %v", models.ErrStoreUnavailable, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
