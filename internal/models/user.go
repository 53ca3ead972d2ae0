package models

// Roles recognized by the API. Everything that is not an operator carries
// supervisory capability.
const (
	RoleOperator   = "operator"
	RoleSupervisor = "pengawas"
	RoleAdmin      = "admin"
)

// User is an identity record keyed by employee id.
type User struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	EmployeeID  string `gorm:"size:50;uniqueIndex;not null" json:"employeeId"`
	Name        string `gorm:"size:100" json:"name"`
	Password    string `gorm:"size:100" json:"-"`
	Position    string `gorm:"size:100" json:"position"`
	Department  string `gorm:"size:100" json:"department"`
	Role        string `gorm:"size:20" json:"role"`
	PhoneNumber string `gorm:"size:30" json:"-"`
	PhotoURL    string `gorm:"size:255" json:"photoUrl,omitempty"`
}

// TableName keeps the table name the deployed schema uses.
func (User) TableName() string {
	return "users"
}

// Supervisory reports whether the role may finalize approvals.
func Supervisory(role string) bool {
	return role == RoleSupervisor || role == RoleAdmin
}
