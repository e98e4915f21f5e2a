package model

import "time"

// TeacherWindow окно доступности учителя на дату.
// Сессии на эту дату могут назначаться только внутри окна,
// если включена проверка (ENFORCE_TEACHER_WINDOWS).
type TeacherWindow struct {
	ID        int64     `json:"id"`
	TeacherID int64     `json:"teacher_id"`
	Date      time.Time `json:"date"`
	StartMin  int       `json:"start_min"`
	EndMin    int       `json:"end_min"`
	CreatedAt time.Time `json:"created_at"`
}
