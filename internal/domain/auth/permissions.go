package auth

const (
	RoleHR       = "hr"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

const (
	PermEmployeesRead  = "directory.employees.read"
	PermEmployeesWrite = "directory.employees.write"
	PermShiftsRead     = "directory.shifts.read"
	PermShiftsWrite    = "directory.shifts.write"
	PermRosterRead     = "roster.read"
	PermRosterWrite    = "roster.write"
	PermRosterPublish  = "roster.publish"
	PermAuditRead      = "audit.read"
)

var DefaultPermissions = []string{
	PermEmployeesRead,
	PermEmployeesWrite,
	PermShiftsRead,
	PermShiftsWrite,
	PermRosterRead,
	PermRosterWrite,
	PermRosterPublish,
	PermAuditRead,
}

// RolePermissions is the seeded grant set per role. Employees can look at the
// published roster, managers run the draft -> publish -> lock workflow, HR
// additionally owns the directory and the audit trail.
var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermEmployeesRead,
		PermShiftsRead,
		PermRosterRead,
	},
	RoleManager: {
		PermEmployeesRead,
		PermShiftsRead,
		PermRosterRead,
		PermRosterWrite,
		PermRosterPublish,
	},
	RoleHR: {
		PermEmployeesRead,
		PermEmployeesWrite,
		PermShiftsRead,
		PermShiftsWrite,
		PermRosterRead,
		PermRosterWrite,
		PermRosterPublish,
		PermAuditRead,
	},
}
