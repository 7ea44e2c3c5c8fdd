package enums

// EmployeeRole represents the register-level role of a store employee.
type EmployeeRole string

const (
	EmployeeRoleCashier EmployeeRole = "CASHIER"
	EmployeeRoleManager EmployeeRole = "MANAGER"
	EmployeeRoleAdmin   EmployeeRole = "ADMIN"
)

var validEmployeeRoles = []EmployeeRole{
	EmployeeRoleCashier,
	EmployeeRoleManager,
	EmployeeRoleAdmin,
}

func (r EmployeeRole) String() string { return string(r) }

func (r EmployeeRole) IsValid() bool { return isMember(validEmployeeRoles, r) }

func ParseEmployeeRole(value string) (EmployeeRole, error) {
	return parseMember(validEmployeeRoles, value, "employee role")
}
