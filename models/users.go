package models

import "time"

// Roles recognized by the role middleware.
const (
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
	RoleLaborer    = "laborer"
)

type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FullName   string    `gorm:"type:varchar(255);not null" json:"full_name"`
	Email      string    `gorm:"type:varchar(255);unique;not null" json:"email"`
	Password   string    `gorm:"type:varchar(255);not null" json:"-"`
	EmployeeID string    `gorm:"type:varchar(50);unique;not null" json:"employee_id"`
	Phone      string    `gorm:"type:varchar(30)" json:"phone"`
	Role       string    `gorm:"type:varchar(20);not null;default:'laborer'" json:"role"`
	AvatarURL  string    `gorm:"type:varchar(500)" json:"avatar_url"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleSupervisor, RoleLaborer:
		return true
	}
	return false
}
