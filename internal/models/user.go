package models

import "time"

// Role identifies what a user is allowed to do.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleAdmin, RoleOperator:
		return true
	}
	return false
}

// IsStaff reports whether r handles orders on behalf of the laundromat.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleOperator
}

// User represents a customer or a member of staff.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Password  string    `json:"-" gorm:"type:varchar(255);not null"` // bcrypt hash, never serialized
	Role      Role      `json:"role" gorm:"type:varchar(20);not null;index"`
	Active    bool      `json:"active" gorm:"not null"`
	Phone     string    `json:"phone,omitempty" gorm:"type:varchar(30)"`
	Address   string    `json:"address,omitempty" gorm:"type:varchar(255)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
