package model

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTimeFormat время не разобрано или вне суток
	ErrInvalidTimeFormat = errors.New("invalid time format")

	// ErrInvalidDate дата не разобрана или в прошлом
	ErrInvalidDate = errors.New("invalid date")

	// ErrBusy не удалось захватить ячейку (subject, date) за отведённое время,
	// вызывающая сторона должна повторить с backoff
	ErrBusy = errors.New("cell is busy, retry later")

	// ErrTeacherUnavailable окно заявки вне доступности учителей
	ErrTeacherUnavailable = errors.New("no teacher available for the requested window")
)

// TeacherUnavailableError несёт реальные окна учителей,
// чтобы студент мог выбрать другое время
type TeacherUnavailableError struct {
	Windows []*TeacherWindow
}

func (e *TeacherUnavailableError) Error() string {
	return fmt.Sprintf("no teacher available for the requested window (%d windows registered)", len(e.Windows))
}

func (e *TeacherUnavailableError) Unwrap() error {
	return ErrTeacherUnavailable
}

// StorageError ошибка записи/чтения хранилища; заявку можно повторить,
// счётчики участников восстанавливаются при следующей успешной заявке
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
