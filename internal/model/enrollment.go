package model

import (
	"time"

	"github.com/google/uuid"
)

// Enrollment участие студента в сессии, уникально на пару (session, user)
type Enrollment struct {
	ID        int64     `json:"id"`
	SessionID uuid.UUID `json:"session_id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
