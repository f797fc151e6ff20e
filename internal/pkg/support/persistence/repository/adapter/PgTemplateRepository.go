package adapter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	support "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/domain"
	repository "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/persistence/repository/port"
)

const templateColumns = "plantilla_id, usuario_id, contenido, activo, fecha_creacion, fecha_actualizacion"

// PgTemplateRepository implements repository.TemplateRepository on PostgreSQL.
type PgTemplateRepository struct {
	pool *pgxpool.Pool
}

func NewPgTemplateRepository(pool *pgxpool.Pool) *PgTemplateRepository {
	return &PgTemplateRepository{pool: pool}
}

var _ repository.TemplateRepository = (*PgTemplateRepository)(nil)

func scanTemplate(row pgx.Row) (*support.Template, error) {
	var t support.Template
	err := row.Scan(&t.ID, &t.UserID, &t.Content, &t.Active, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func collectTemplates(rows pgx.Rows) ([]support.Template, error) {
	defer rows.Close()
	var out []support.Template
	for rows.Next() {
		var t support.Template
		if err := rows.Scan(&t.ID, &t.UserID, &t.Content, &t.Active, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PgTemplateRepository) GetTemplate(ctx context.Context, id int64) (*support.Template, error) {
	return scanTemplate(r.pool.QueryRow(ctx,
		"SELECT "+templateColumns+" FROM tbl_plantillas WHERE plantilla_id = $1", id))
}

func (r *PgTemplateRepository) ListDefaultTemplates(ctx context.Context) ([]support.Template, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+templateColumns+" FROM tbl_plantillas WHERE usuario_id IS NULL AND activo ORDER BY plantilla_id")
	if err != nil {
		return nil, err
	}
	return collectTemplates(rows)
}

func (r *PgTemplateRepository) ListUserTemplates(ctx context.Context, userID int64) ([]support.Template, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+templateColumns+" FROM tbl_plantillas WHERE usuario_id = $1 AND activo ORDER BY plantilla_id",
		userID)
	if err != nil {
		return nil, err
	}
	return collectTemplates(rows)
}

func (r *PgTemplateRepository) CreateTemplate(ctx context.Context, t support.Template) (*support.Template, error) {
	return scanTemplate(r.pool.QueryRow(ctx, `
		INSERT INTO tbl_plantillas (usuario_id, contenido, activo, fecha_creacion, fecha_actualizacion)
		VALUES ($1, $2, true, now(), now())
		RETURNING `+templateColumns,
		t.UserID, t.Content))
}

func (r *PgTemplateRepository) UpdateTemplate(ctx context.Context, id int64, content string, active *bool) (*support.Template, error) {
	return scanTemplate(r.pool.QueryRow(ctx, `
		UPDATE tbl_plantillas
		SET contenido = $2, activo = COALESCE($3, activo), fecha_actualizacion = now()
		WHERE plantilla_id = $1
		RETURNING `+templateColumns,
		id, content, active))
}

func (r *PgTemplateRepository) DeleteTemplate(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, "DELETE FROM tbl_plantillas WHERE plantilla_id = $1", id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
