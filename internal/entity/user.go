package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserType string

const (
	UserTypeAdmin          UserType = "ADMIN"
	UserTypeInstructor     UserType = "INSTRUCTOR"
	UserTypeStudent        UserType = "STUDENT"
	UserTypeCompanyManager UserType = "COMPANY_MANAGER"
)

type UserStatus string

const (
	UserStatusActive          UserStatus = "ACTIVE"
	UserStatusInactive        UserStatus = "INACTIVE"
	UserStatusPendingApproval UserStatus = "PENDING_APPROVAL"
	UserStatusSuspended       UserStatus = "SUSPENDED"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Username     string    `gorm:"type:varchar(20);uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:text;not null"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Name         string    `gorm:"type:varchar(30);not null"`
	PhoneNumber  string    `gorm:"type:varchar(13)"`

	UserType   UserType   `gorm:"type:varchar(20);not null"`
	Status     UserStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	IsEmployee bool       `gorm:"not null;default:false"`

	// Department holds the desired job field for job seekers.
	Department string `gorm:"type:varchar(50)"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) CanLogin() bool {
	return u.Status == UserStatusActive
}
