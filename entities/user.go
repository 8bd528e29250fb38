package entities

import (
	"github.com/google/uuid"
	"time"
)

type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email        string    `json:"email" gorm:"type:varchar(255);not null;uniqueIndex:unique_user_email"`
	PasswordHash string    `json:"-" gorm:"type:varchar(100);not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
}

func (User) TableName() string {
	return "users"
}

type Session struct {
	Token     uuid.UUID `json:"token" gorm:"type:uuid;primary_key"`
	UserId    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index:idx_sessions_user_id"`
	ExpiresAt time.Time `json:"expires_at" gorm:"type:timestamptz;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
}

func (Session) TableName() string {
	return "sessions"
}

func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
