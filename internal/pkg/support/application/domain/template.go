package support

import "time"

// Template is a canned reply agents insert while chatting. Templates without
// an owner are platform defaults offered to every user; owned templates are
// visible only to their owner.
type Template struct {
	ID        int64     `db:"plantilla_id" json:"id"`
	UserID    *int64    `db:"usuario_id" json:"user_id"`
	Content   string    `db:"contenido" json:"content"`
	Active    bool      `db:"activo" json:"is_active"`
	CreatedAt time.Time `db:"fecha_creacion" json:"created_at"`
	UpdatedAt time.Time `db:"fecha_actualizacion" json:"updated_at"`
}

// Owned reports whether the template belongs to a specific user rather than
// being a platform default.
func (t *Template) Owned() bool { return t.UserID != nil }

// TemplateSet is the template listing served to one user.
type TemplateSet struct {
	Defaults []Template `json:"default_templates"`
	Own      []Template `json:"user_templates"`
}
