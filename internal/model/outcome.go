package model

import "github.com/google/uuid"

// OutcomeKind результат обработки заявки, определяется один раз
type OutcomeKind string

const (
	OutcomeCreated         OutcomeKind = "created"          // создана новая сессия
	OutcomeJoined          OutcomeKind = "joined"           // студент добавлен в существующую
	OutcomeAlreadyEnrolled OutcomeKind = "already_enrolled" // повторная заявка, без изменений
	OutcomeBlocked         OutcomeKind = "blocked"          // конфликт с сессией другого предмета
	OutcomeRejected        OutcomeKind = "rejected"         // заявка отклонена
)

// Outcome типизированный результат SubmitRequest
type Outcome struct {
	Kind        OutcomeKind
	SessionID   uuid.UUID
	Subject     string
	StartMin    int
	EndMin      int
	MemberCount int
	MeetLink    string
	Conflict    *Session // заполнен для Blocked
	Reason      string   // заполнен для Rejected
}
