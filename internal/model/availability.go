package model

import (
	"time"

	"github.com/google/uuid"
)

// AvailabilityRequest заявка студента: предмет, дата и окно времени.
// Запись неизменяемая, новая заявка того же студента вытесняет старую
// при пересчёте окна сессии (берётся последняя по created_at).
type AvailabilityRequest struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	Subject   string     `json:"subject"`
	Date      time.Time  `json:"date"`
	StartMin  int        `json:"start_min"`
	EndMin    int        `json:"end_min"`
	SessionID *uuid.UUID `json:"session_id"` // заполняется после привязки к сессии
	CreatedAt time.Time  `json:"created_at"`
}
