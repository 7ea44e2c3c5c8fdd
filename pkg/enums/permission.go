package enums

import "slices"

// Permission names a single capability granted to an employee role.
type Permission string

const (
	PermissionTransactionsCreate      Permission = "transactions:create"
	PermissionTransactionsRead        Permission = "transactions:read"
	PermissionTransactionsPrint       Permission = "transactions:print"
	PermissionCustomersRead           Permission = "customers:read"
	PermissionCustomersWrite          Permission = "customers:write"
	PermissionProductsRead            Permission = "products:read"
	PermissionProductsWrite           Permission = "products:write"
	PermissionAgeVerificationCreate   Permission = "age_verification:create"
	PermissionAgeVerificationRead     Permission = "age_verification:read"
	PermissionAgeVerificationOverride Permission = "age_verification:override"
)

var validPermissions = []Permission{
	PermissionTransactionsCreate,
	PermissionTransactionsRead,
	PermissionTransactionsPrint,
	PermissionCustomersRead,
	PermissionCustomersWrite,
	PermissionProductsRead,
	PermissionProductsWrite,
	PermissionAgeVerificationCreate,
	PermissionAgeVerificationRead,
	PermissionAgeVerificationOverride,
}

var cashierPermissions = []Permission{
	PermissionTransactionsCreate,
	PermissionTransactionsRead,
	PermissionTransactionsPrint,
	PermissionCustomersRead,
	PermissionCustomersWrite,
	PermissionProductsRead,
	PermissionAgeVerificationCreate,
	PermissionAgeVerificationRead,
}

var rolePermissions = map[EmployeeRole][]Permission{
	EmployeeRoleCashier: cashierPermissions,
	EmployeeRoleManager: append(append([]Permission{}, cashierPermissions...),
		PermissionProductsWrite,
		PermissionAgeVerificationOverride,
	),
	EmployeeRoleAdmin: validPermissions,
}

func (p Permission) String() string { return string(p) }

func (p Permission) IsValid() bool { return isMember(validPermissions, p) }

func ParsePermission(value string) (Permission, error) {
	return parseMember(validPermissions, value, "permission")
}

// PermissionsFor returns a copy of the permission set granted to role.
func PermissionsFor(role EmployeeRole) []Permission {
	return slices.Clone(rolePermissions[role])
}

// HasPermission reports whether role grants perm.
func (r EmployeeRole) HasPermission(perm Permission) bool {
	return isMember(rolePermissions[r], perm)
}
