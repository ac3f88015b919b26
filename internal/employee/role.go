package employee

import (
	"strconv"
	"strings"
)

// Role is the access level carried in the access token.
type Role int

const (
	RoleEmployee Role = 1
	RoleManager  Role = 2
	RoleAdmin    Role = 3
)

func (r Role) Valid() bool {
	return r == RoleEmployee || r == RoleManager || r == RoleAdmin
}

func (r Role) IsAdminOrManager() bool {
	return r == RoleManager || r == RoleAdmin
}

func (r Role) String() string {
	switch r {
	case RoleEmployee:
		return "employee"
	case RoleManager:
		return "manager"
	case RoleAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// ParseRole accepts the numeric form (1, "2", 3.0 from JSON) and the names.
func ParseRole(v any) (Role, bool) {
	var r Role
	switch t := v.(type) {
	case Role:
		r = t
	case int:
		r = Role(t)
	case int64:
		r = Role(t)
	case float64:
		if t != float64(int(t)) {
			return 0, false
		}
		r = Role(int(t))
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		switch s {
		case "employee":
			return RoleEmployee, true
		case "manager":
			return RoleManager, true
		case "admin":
			return RoleAdmin, true
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, false
		}
		r = Role(n)
	default:
		return 0, false
	}
	return r, r.Valid()
}
