package support

import "time"

// UserRole identifies the position of a user in the platform.
// Agents handle conversations; every other role has elevated scope and sees
// all conversations.
type UserRole int16

const (
	RoleAgent        UserRole = 1
	RoleSupervisor   UserRole = 2
	RolePrincipal    UserRole = 3
	RoleAdmin        UserRole = 4
	RoleSupport      UserRole = 5
	RoleDataSecurity UserRole = 6
	RoleAudit        UserRole = 7
)

// Elevated reports whether the role sees conversations beyond its own
// assignments.
func (r UserRole) Elevated() bool {
	switch r {
	case RoleSupervisor, RolePrincipal, RoleAdmin, RoleSupport, RoleDataSecurity, RoleAudit:
		return true
	}
	return false
}

// CanTransferForeign reports whether the role may transfer a conversation that
// is currently assigned to somebody else.
func (r UserRole) CanTransferForeign() bool {
	return r == RoleSupervisor || r == RolePrincipal
}

// UserPresence is the availability state of a user.
type UserPresence int16

const (
	PresenceOnline  UserPresence = 1
	PresenceBreak   UserPresence = 2
	PresenceOffline UserPresence = 3
)

func (p UserPresence) String() string {
	switch p {
	case PresenceOnline:
		return "ONLINE"
	case PresenceBreak:
		return "BREAK"
	case PresenceOffline:
		return "OFFLINE"
	}
	return "UNKNOWN"
}

type User struct {
	ID        int64        `db:"usuario_id"`
	Username  string       `db:"usuario"`
	FullName  string       `db:"nombre"`
	Email     string       `db:"correo"`
	Role      UserRole     `db:"rol_id"`
	Presence  UserPresence `db:"estado_id"`
	Active    bool         `db:"activo"`
	CreatedAt time.Time    `db:"fecha_creacion"`
	UpdatedAt time.Time    `db:"fecha_actualizacion"`
}

// HierarchyEdge is a directed parent -> child relation between two users.
// The active subgraph forms a forest: each child has at most one active
// parent.
type HierarchyEdge struct {
	ID        int64     `db:"jerarquia_id"`
	ParentID  int64     `db:"jefe_usuario_id"`
	ChildID   int64     `db:"dependiente_usuario_id"`
	Active    bool      `db:"estado"`
	CreatedAt time.Time `db:"fecha_creacion"`
	UpdatedAt time.Time `db:"fecha_actualizacion"`
}

// UserEventType categorizes audit log entries.
type UserEventType int16

const (
	EventStateChange UserEventType = 1
	EventTransfer    UserEventType = 2
	EventEndChat     UserEventType = 3
)

// UserLog is an append-only audit entry for a user action.
type UserLog struct {
	ID        int64         `db:"log_id"`
	UserID    int64         `db:"usuario_id"`
	EventType UserEventType `db:"evento_id"`
	Details   string        `db:"detalle_evento"`
	CreatedAt time.Time     `db:"fecha_creacion"`
}
