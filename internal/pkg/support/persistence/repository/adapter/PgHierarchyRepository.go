package adapter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	support "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/domain"
	repository "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/persistence/repository/port"
)

const edgeColumns = "jerarquia_id, jefe_usuario_id, dependiente_usuario_id, estado, fecha_creacion, fecha_actualizacion"

// PgHierarchyRepository implements repository.HierarchyRepository on
// PostgreSQL.
type PgHierarchyRepository struct {
	pool *pgxpool.Pool
}

func NewPgHierarchyRepository(pool *pgxpool.Pool) *PgHierarchyRepository {
	return &PgHierarchyRepository{pool: pool}
}

var _ repository.HierarchyRepository = (*PgHierarchyRepository)(nil)

func (r *PgHierarchyRepository) ActiveParent(ctx context.Context, childID int64) (*support.HierarchyEdge, error) {
	var e support.HierarchyEdge
	err := r.pool.QueryRow(ctx,
		"SELECT "+edgeColumns+" FROM tbl_usuarios_jerarquias WHERE dependiente_usuario_id = $1 AND estado LIMIT 1",
		childID,
	).Scan(&e.ID, &e.ParentID, &e.ChildID, &e.Active, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *PgHierarchyRepository) ActiveChildren(ctx context.Context, parentID int64) ([]support.HierarchyEdge, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+edgeColumns+" FROM tbl_usuarios_jerarquias WHERE jefe_usuario_id = $1 AND estado ORDER BY dependiente_usuario_id",
		parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []support.HierarchyEdge
	for rows.Next() {
		var e support.HierarchyEdge
		if err := rows.Scan(&e.ID, &e.ParentID, &e.ChildID, &e.Active, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

func (r *PgHierarchyRepository) CreateEdge(ctx context.Context, parentID, childID int64) (*support.HierarchyEdge, error) {
	var e support.HierarchyEdge
	err := r.pool.QueryRow(ctx, `
		INSERT INTO tbl_usuarios_jerarquias (jefe_usuario_id, dependiente_usuario_id, estado, fecha_creacion, fecha_actualizacion)
		VALUES ($1, $2, true, now(), now())
		RETURNING `+edgeColumns,
		parentID, childID,
	).Scan(&e.ID, &e.ParentID, &e.ChildID, &e.Active, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
