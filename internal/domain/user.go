package domain

import "time"

// Role user role within the dashboard.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleOperator Role = "operator"
	RoleViewer   Role = "viewer"
)

// Elevated reports whether the role is admin-equivalent (may issue
// device commands and receives project-wide events without an explicit
// access grant).
func (r Role) Elevated() bool {
	return r == RoleAdmin || r == RoleManager
}

// User a dashboard account. Authentication itself happens at the
// gateway; this service only consumes the resulting identity.
type User struct {
	ID        string
	Username  string
	Role      Role
	Status    string // 'active' or 'disabled'
	CreatedAt time.Time
}
