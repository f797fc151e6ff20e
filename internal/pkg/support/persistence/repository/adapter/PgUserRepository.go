package adapter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	support "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/domain"
	repository "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/persistence/repository/port"
)

const userColumns = "usuario_id, usuario, nombre, correo, rol_id, estado_id, activo, fecha_creacion, fecha_actualizacion"

// PgUserRepository implements repository.UserRepository on PostgreSQL.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

var _ repository.UserRepository = (*PgUserRepository)(nil)

func scanUser(row pgx.Row) (*support.User, error) {
	var u support.User
	err := row.Scan(&u.ID, &u.Username, &u.FullName, &u.Email, &u.Role, &u.Presence, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PgUserRepository) GetUser(ctx context.Context, id int64) (*support.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM tbl_usuarios WHERE usuario_id = $1", id))
}

func (r *PgUserRepository) GetUserByUsername(ctx context.Context, username string) (*support.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM tbl_usuarios WHERE usuario = $1", username))
}

func (r *PgUserRepository) ListUsersByRole(ctx context.Context, role support.UserRole) ([]support.User, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+userColumns+" FROM tbl_usuarios WHERE rol_id = $1 AND activo ORDER BY usuario_id", role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []support.User
	for rows.Next() {
		var u support.User
		if err := rows.Scan(&u.ID, &u.Username, &u.FullName, &u.Email, &u.Role, &u.Presence, &u.Active, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *PgUserRepository) SetUserPresence(ctx context.Context, id int64, p support.UserPresence) error {
	ct, err := r.pool.Exec(ctx,
		"UPDATE tbl_usuarios SET estado_id = $2, fecha_actualizacion = now() WHERE usuario_id = $1", id, p)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PgUserRepository) AppendUserLog(ctx context.Context, log support.UserLog) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO tbl_usuarios_logs (usuario_id, evento_id, detalle_evento, fecha_creacion)
		VALUES ($1, $2, $3, now())
	`, log.UserID, log.EventType, log.Details)
	return err
}
