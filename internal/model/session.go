package model

import (
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusCanceled  SessionStatus = "canceled"
)

// Session групповое занятие по предмету на конкретную дату.
// Для пары (subject, date) одновременно активна максимум одна сессия,
// время пересчитывается при каждом изменении состава участников.
type Session struct {
	ID          uuid.UUID     `json:"id"`
	Subject     string        `json:"subject"` // канонический предмет
	Date        time.Time     `json:"date"`    // дата без времени
	StartMin    int           `json:"start_min"` // минуты от полуночи
	EndMin      int           `json:"end_min"`
	Status      SessionStatus `json:"status"`
	MemberCount int           `json:"member_count"`
	MeetLink    string        `json:"meet_link"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Overlaps проверяет пересечение с полуоткрытым интервалом [startMin, endMin)
func (s *Session) Overlaps(startMin, endMin int) bool {
	return !(endMin <= s.StartMin || startMin >= s.EndMin)
}
