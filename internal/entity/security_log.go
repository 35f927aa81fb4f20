package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SecurityAction string

const (
	LoginSuccess SecurityAction = "login_success"
	LoginFailed  SecurityAction = "login_failed"
	Logout       SecurityAction = "logout"
	AccessDenied SecurityAction = "access_denied"
)

type SecurityLog struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	Username  string         `gorm:"type:varchar(20);index"`
	IPAddress *string        `gorm:"type:varchar(45)"`
	Action    SecurityAction `gorm:"type:varchar(32);not null"`

	Metadata datatypes.JSON

	CreatedAt time.Time
}
