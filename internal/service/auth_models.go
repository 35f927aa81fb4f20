package service

import (
	"time"

	"lms/internal/entity"
)

type LoginInput struct {
	Username  string
	Password  string
	IPAddress *string
}

type LoginResult struct {
	AccessToken string
	ExpiresIn   int64
	User        entity.User
}

type SessionSummary struct {
	ActiveSessions int       `json:"active_sessions"`
	CheckedAt      time.Time `json:"checked_at"`
}
