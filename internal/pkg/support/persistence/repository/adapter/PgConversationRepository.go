package adapter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	support "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/domain"
	repository "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/persistence/repository/port"
)

const conversationColumns = "id, conversacion_id, telefono_asociado, usuario_id, numero_credito_seleccionado, mensajes_no_leidos, estado_id, ultimo_mensaje, fecha_creacion, fecha_ultimo_mensaje"

// PgConversationRepository implements repository.ConversationRepository on
// PostgreSQL.
type PgConversationRepository struct {
	pool *pgxpool.Pool
}

func NewPgConversationRepository(pool *pgxpool.Pool) *PgConversationRepository {
	return &PgConversationRepository{pool: pool}
}

var _ repository.ConversationRepository = (*PgConversationRepository)(nil)

func scanConversation(row pgx.Row) (*support.Conversation, error) {
	var c support.Conversation
	err := row.Scan(&c.ID, &c.ThreadID, &c.ClientPhone, &c.AssignedUserID, &c.CreditNumber,
		&c.UnreadCount, &c.State, &c.LastMessage, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func collectConversations(rows pgx.Rows) ([]support.Conversation, error) {
	defer rows.Close()
	var out []support.Conversation
	for rows.Next() {
		var c support.Conversation
		if err := rows.Scan(&c.ID, &c.ThreadID, &c.ClientPhone, &c.AssignedUserID, &c.CreditNumber,
			&c.UnreadCount, &c.State, &c.LastMessage, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PgConversationRepository) GetConversation(ctx context.Context, id int64) (*support.Conversation, error) {
	return scanConversation(r.pool.QueryRow(ctx,
		"SELECT "+conversationColumns+" FROM tbl_conversaciones WHERE id = $1", id))
}

func (r *PgConversationRepository) GetConversationByThread(ctx context.Context, threadID string) (*support.Conversation, error) {
	return scanConversation(r.pool.QueryRow(ctx,
		"SELECT "+conversationColumns+" FROM tbl_conversaciones WHERE conversacion_id = $1", threadID))
}

func (r *PgConversationRepository) CreateConversation(ctx context.Context, c support.Conversation) (*support.Conversation, error) {
	return scanConversation(r.pool.QueryRow(ctx, `
		INSERT INTO tbl_conversaciones
			(conversacion_id, telefono_asociado, usuario_id, numero_credito_seleccionado, mensajes_no_leidos, estado_id, ultimo_mensaje, fecha_creacion, fecha_ultimo_mensaje)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		RETURNING `+conversationColumns,
		c.ThreadID, c.ClientPhone, c.AssignedUserID, c.CreditNumber, c.UnreadCount, c.State, c.LastMessage))
}

func (r *PgConversationRepository) ListPending(ctx context.Context) ([]support.Conversation, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+conversationColumns+" FROM tbl_conversaciones WHERE estado_id = $1 ORDER BY fecha_creacion DESC",
		support.StatePending)
	if err != nil {
		return nil, err
	}
	return collectConversations(rows)
}

func (r *PgConversationRepository) ListAll(ctx context.Context, assignedTo []int64) ([]support.Conversation, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if assignedTo == nil {
		rows, err = r.pool.Query(ctx,
			"SELECT "+conversationColumns+" FROM tbl_conversaciones ORDER BY fecha_ultimo_mensaje DESC")
	} else {
		rows, err = r.pool.Query(ctx,
			"SELECT "+conversationColumns+" FROM tbl_conversaciones WHERE usuario_id = ANY($1) ORDER BY fecha_ultimo_mensaje DESC",
			assignedTo)
	}
	if err != nil {
		return nil, err
	}
	return collectConversations(rows)
}

func (r *PgConversationRepository) ListAssignedTo(ctx context.Context, userID int64) ([]support.Conversation, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+conversationColumns+" FROM tbl_conversaciones WHERE usuario_id = $1 ORDER BY fecha_ultimo_mensaje DESC",
		userID)
	if err != nil {
		return nil, err
	}
	return collectConversations(rows)
}

func (r *PgConversationRepository) CountOpenAssignedTo(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM tbl_conversaciones WHERE usuario_id = $1 AND estado_id = $2",
		userID, support.StateOpen).Scan(&count)
	return count, err
}

func (r *PgConversationRepository) ListAgentLoads(ctx context.Context) ([]support.AgentLoad, error) {
	// Open count and last assignment come from separate correlated subqueries:
	// the load is the number of open conversations, not assignment rows, and an
	// agent accumulates assignment rows with every transfer.
	rows, err := r.pool.Query(ctx, `
		SELECT u.usuario_id, u.usuario, u.nombre, u.correo, u.rol_id, u.estado_id, u.activo, u.fecha_creacion, u.fecha_actualizacion,
		       (SELECT COUNT(*) FROM tbl_conversaciones c
		        WHERE c.usuario_id = u.usuario_id AND c.estado_id = $1) AS abiertas,
		       (SELECT MAX(a.fecha_creacion) FROM tbl_asignaciones a
		        WHERE a.usuario_id = u.usuario_id) AS ultima_asignacion
		FROM tbl_usuarios u
		WHERE u.rol_id = $2 AND u.estado_id = $3 AND u.activo
		ORDER BY u.usuario_id
	`, support.StateOpen, support.RoleAgent, support.PresenceOnline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loads []support.AgentLoad
	for rows.Next() {
		var l support.AgentLoad
		if err := rows.Scan(&l.User.ID, &l.User.Username, &l.User.FullName, &l.User.Email, &l.User.Role,
			&l.User.Presence, &l.User.Active, &l.User.CreatedAt, &l.User.UpdatedAt,
			&l.OpenCount, &l.LastAssignedAt); err != nil {
			return nil, err
		}
		loads = append(loads, l)
	}
	return loads, rows.Err()
}

// RecordAssignment re-checks the assignee, retargets, promotes Pending to
// Open, and appends the assignment event in one transaction. The conditional
// UPDATE is the compare-and-set: zero rows means somebody else moved the
// conversation first.
func (r *PgConversationRepository) RecordAssignment(ctx context.Context, rec support.Assignment, expectedPrev *int64, retarget bool) (*support.Assignment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx, `
		UPDATE tbl_conversaciones
		SET usuario_id = CASE WHEN $4 THEN $2 ELSE usuario_id END,
		    estado_id = CASE WHEN estado_id = $5 THEN $6 ELSE estado_id END
		WHERE id = $1 AND usuario_id IS NOT DISTINCT FROM $3 AND estado_id <> $7
	`, rec.ConversationID, rec.UserID, expectedPrev, retarget,
		support.StatePending, support.StateOpen, support.StateClosed)
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() == 0 {
		return nil, repository.ErrAssignmentConflict
	}

	var saved support.Assignment
	err = tx.QueryRow(ctx, `
		INSERT INTO tbl_asignaciones (usuario_id, conversacion_id, evento_id, fecha_creacion, fecha_actualizacion)
		VALUES ($1, $2, $3, now(), now())
		RETURNING asignacion_id, usuario_id, conversacion_id, evento_id, fecha_creacion, fecha_actualizacion
	`, rec.UserID, rec.ConversationID, rec.Event,
	).Scan(&saved.ID, &saved.UserID, &saved.ConversationID, &saved.Event, &saved.CreatedAt, &saved.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *PgConversationRepository) Close(ctx context.Context, id int64, t *support.Typification) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx,
		"UPDATE tbl_conversaciones SET estado_id = $2 WHERE id = $1", id, support.StateClosed)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	if t != nil {
		_, err = tx.Exec(ctx, `
			INSERT INTO tbl_tipificaciones (conversacion_id, motivo, comentario, numero_credito, documento, fecha_creacion)
			VALUES ($1, $2, $3, $4, $5, now())
		`, id, t.Motive, t.Comment, t.CreditNumber, t.ClientID)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *PgConversationRepository) SetUnreadCount(ctx context.Context, id int64, count int) error {
	ct, err := r.pool.Exec(ctx,
		"UPDATE tbl_conversaciones SET mensajes_no_leidos = $2 WHERE id = $1", id, count)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
