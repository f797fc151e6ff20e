package adapter

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	support "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/domain"
	repository "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/persistence/repository/port"
)

// PgMessageRepository implements repository.MessageRepository on PostgreSQL.
type PgMessageRepository struct {
	pool *pgxpool.Pool
}

func NewPgMessageRepository(pool *pgxpool.Pool) *PgMessageRepository {
	return &PgMessageRepository{pool: pool}
}

var _ repository.MessageRepository = (*PgMessageRepository)(nil)

// SaveMessage stores the message and optional media, refreshes the
// conversation's last-message cache, and bumps the unread counter when asked,
// all in one transaction.
func (r *PgMessageRepository) SaveMessage(ctx context.Context, m support.Message, media *support.MessageMedia, bumpUnread bool) (*support.Message, *support.MessageMedia, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	var savedMedia *support.MessageMedia
	if media != nil {
		var sm support.MessageMedia
		err := tx.QueryRow(ctx, `
			INSERT INTO tbl_archivos_adjuntos (nombre_archivo, url, metatipo, tamano, remitente, fecha_creacion)
			VALUES ($1, $2, $3, $4, $5, now())
			RETURNING archivo_id, nombre_archivo, url, metatipo, tamano, remitente, fecha_creacion
		`, media.Filename, media.URL, media.MimeType, media.Size, media.Sender,
		).Scan(&sm.ID, &sm.Filename, &sm.URL, &sm.MimeType, &sm.Size, &sm.Sender, &sm.CreatedAt)
		if err != nil {
			return nil, nil, err
		}
		savedMedia = &sm
		m.MediaID = &sm.ID
	}

	var saved support.Message
	err = tx.QueryRow(ctx, `
		INSERT INTO tbl_mensajes (conversacion_id, contenido, remitente, usuario_id, archivo_id, fecha_creacion)
		VALUES ($1, $2, $3, $4, $5, now())
		RETURNING mensaje_id, conversacion_id, contenido, remitente, usuario_id, archivo_id, fecha_creacion
	`, m.ConversationID, m.Content, m.Sender, m.UserID, m.MediaID,
	).Scan(&saved.ID, &saved.ConversationID, &saved.Content, &saved.Sender, &saved.UserID, &saved.MediaID, &saved.CreatedAt)
	if err != nil {
		return nil, nil, err
	}

	lastMessage := m.Content
	if lastMessage == "" && savedMedia != nil {
		lastMessage = "Archivo adjunto"
	}
	bump := 0
	if bumpUnread {
		bump = 1
	}
	_, err = tx.Exec(ctx, `
		UPDATE tbl_conversaciones
		SET ultimo_mensaje = $2,
		    mensajes_no_leidos = mensajes_no_leidos + $3,
		    fecha_ultimo_mensaje = now()
		WHERE id = $1
	`, m.ConversationID, lastMessage, bump)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return &saved, savedMedia, nil
}

func (r *PgMessageRepository) ListConversationMessages(ctx context.Context, conversationID int64) ([]support.MessageView, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT m.mensaje_id, m.contenido, m.fecha_creacion, m.remitente,
		       COALESCE(u.nombre, ''), COALESCE(a.url, ''), COALESCE(a.metatipo, ''), COALESCE(a.nombre_archivo, '')
		FROM tbl_mensajes m
		LEFT JOIN tbl_usuarios u ON u.usuario_id = m.usuario_id
		LEFT JOIN tbl_archivos_adjuntos a ON a.archivo_id = m.archivo_id
		WHERE m.conversacion_id = $1
		ORDER BY m.fecha_creacion
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []support.MessageView
	for rows.Next() {
		var v support.MessageView
		if err := rows.Scan(&v.ID, &v.Content, &v.CreatedAt, &v.Sender,
			&v.UserName, &v.Attachment, &v.AttachmentType, &v.AttachmentName); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

func (r *PgMessageRepository) DeleteMessage(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, "DELETE FROM tbl_mensajes WHERE mensaje_id = $1", id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PgMessageRepository) CountAgentMessages(ctx context.Context, conversationID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM tbl_mensajes WHERE conversacion_id = $1 AND remitente = $2",
		conversationID, support.SenderAgent).Scan(&count)
	return count, err
}
