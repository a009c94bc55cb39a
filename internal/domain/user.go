package domain

// Role enumerates the portal roles.
type Role string

const (
	RoleOperationStaff Role = "OperationStaff"
	RoleHQ             Role = "HQ"
	RoleAdmin          Role = "Admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOperationStaff, RoleHQ, RoleAdmin:
		return true
	}
	return false
}

// User is a directory entry. Credentials live in the directory only and
// are never carried on this type.
type User struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Role       Role   `json:"role"`
	Department string `json:"department,omitempty"`
	Username   string `json:"username"`
}
