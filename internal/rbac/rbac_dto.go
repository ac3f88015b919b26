package rbac

import "worksync/internal/employee"

type EnforceRequest struct {
	Role     employee.Role
	Resource string
	Action   string
}

type PermissionResponse struct {
	Resource string `json:"resource"`
	Action   string `json:"action"`
}

type PermissionsResponse struct {
	Role        string               `json:"role"`
	Permissions []PermissionResponse `json:"permissions"`
}
