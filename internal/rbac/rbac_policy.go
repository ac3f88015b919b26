package rbac

import "worksync/internal/employee"

// Resources and actions guarded at route level. Per-record rules (owner,
// status) are decided by the leave permission matrix, not here.
const (
	ResourceLeave        = "leave"
	ResourceLeaveBalance = "leave_balance"
	ResourceLeaveStatus  = "leave_status"
	ResourceAttendance   = "attendance"

	ActionCreate       = "create"
	ActionRead         = "read"
	ActionReadAll      = "read_all"
	ActionUpdate       = "update"
	ActionDelete       = "delete"
	ActionChangeStatus = "change_status"
	ActionClock        = "clock"
)

// DefaultPermissions seeds role_permissions on first start. Roles inherit
// downwards: admin has everything a manager has, a manager everything an
// employee has.
func DefaultPermissions() []RolePermissionRow {
	return []RolePermissionRow{
		{Role: employee.RoleEmployee, Resource: ResourceLeave, Action: ActionCreate},
		{Role: employee.RoleEmployee, Resource: ResourceLeave, Action: ActionRead},
		{Role: employee.RoleEmployee, Resource: ResourceLeave, Action: ActionUpdate},
		{Role: employee.RoleEmployee, Resource: ResourceLeave, Action: ActionDelete},
		{Role: employee.RoleEmployee, Resource: ResourceLeave, Action: ActionChangeStatus},
		{Role: employee.RoleEmployee, Resource: ResourceLeaveBalance, Action: ActionRead},
		{Role: employee.RoleEmployee, Resource: ResourceLeaveStatus, Action: ActionRead},
		{Role: employee.RoleEmployee, Resource: ResourceAttendance, Action: ActionClock},
		{Role: employee.RoleEmployee, Resource: ResourceAttendance, Action: ActionRead},

		{Role: employee.RoleManager, Resource: ResourceLeave, Action: ActionReadAll},
		{Role: employee.RoleManager, Resource: ResourceLeaveStatus, Action: ActionReadAll},
		{Role: employee.RoleManager, Resource: ResourceAttendance, Action: ActionReadAll},
	}
}

// roleInheritance lists (child, parent) pairs for casbin grouping policies.
var roleInheritance = [][2]employee.Role{
	{employee.RoleManager, employee.RoleEmployee},
	{employee.RoleAdmin, employee.RoleManager},
}
