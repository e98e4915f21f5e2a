package model

import "time"

// Role роль пользователя, определяется один раз на границе
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

type User struct {
	ID           int64     `json:"id"`
	TelegramID   int64     `json:"telegram_id"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	LanguageCode string    `json:"language_code"`
	IsTeacher    bool      `json:"is_teacher"`
	CreatedAt    time.Time `json:"created_at"`
}

// Role возвращает типизированную роль пользователя
func (u *User) Role() Role {
	if u.IsTeacher {
		return RoleTeacher
	}
	return RoleStudent
}
