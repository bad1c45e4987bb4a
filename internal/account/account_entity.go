package account

const (
	RoleAdmin    = "Admin"
	RoleHR       = "HR"
	RoleDean     = "Dean"
	RoleEmployee = "Employee"
)

// Account links an employee to a sign-in identity and a role. Only role
// resolution is consumed by this core; credentials belong to the auth layer.
type Account struct {
	EmployeeID string `gorm:"column:EmployeeID;type:varchar(20);primaryKey"`
	Username   string `gorm:"column:Username;type:varchar(50);not null;uniqueIndex"`
	Role       string `gorm:"column:Role;type:varchar(20);not null"`
}

func (Account) TableName() string { return "account" }

// IsAdministrative reports whether a role may change employment records.
func IsAdministrative(role string) bool {
	return role == RoleAdmin || role == RoleHR
}
