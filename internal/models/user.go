package models

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Principal is the authenticated identity supplied by the upstream identity
// service. The core never issues or validates credentials itself.
type Principal struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
