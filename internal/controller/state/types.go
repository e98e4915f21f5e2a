package state

import "time"

// UserState представляет текущее состояние пользователя в диалоге
type UserState string

const (
	StateNone UserState = "" // Нет активного состояния

	// Состояния подачи заявки
	StateAwaitingRequestText UserState = "awaiting_request_text"
	StateConfirmingRequest   UserState = "confirming_request"

	// Состояния диалога учителя: окно доступности
	StateSetWindowDate UserState = "set_window_date"
	StateSetWindowTime UserState = "set_window_time"
)

// PendingRequest разобранная, но ещё не подтверждённая заявка
type PendingRequest struct {
	RawSubject string
	Subject    string // канонический предмет
	Date       time.Time
	StartMin   int
	EndMin     int
}

// UserData хранит временные данные пользователя во время диалога
type UserData struct {
	State   UserState
	Pending *PendingRequest
	Date    time.Time // дата, выбранная в диалоге окна учителя
}
