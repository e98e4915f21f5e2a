package handlers

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"tutormatch/internal/model"
)

func TestFormatOutcomeCreated(t *testing.T) {
	out := &model.Outcome{
		Kind:        model.OutcomeCreated,
		SessionID:   uuid.New(),
		Subject:     "python",
		StartMin:    14 * 60,
		EndMin:      16 * 60,
		MemberCount: 1,
		MeetLink:    "https://meet.jit.si/tutormatch-python-2026-09-15-abc12345",
	}

	text := FormatOutcome(out)

	assert.Contains(t, text, "python")
	assert.Contains(t, text, "14:00")
	assert.Contains(t, text, "16:00")
	assert.Contains(t, text, "https://meet.jit.si/")
	assert.Contains(t, text, "Создана новая сессия")
}

func TestFormatOutcomeBlocked(t *testing.T) {
	out := &model.Outcome{
		Kind: model.OutcomeBlocked,
		Conflict: &model.Session{
			Subject:  "java",
			StartMin: 14 * 60,
			EndMin:   15 * 60,
		},
	}

	text := FormatOutcome(out)

	assert.Contains(t, text, "java")
	assert.Contains(t, text, "14:00-15:00")
	assert.Contains(t, text, "занято")
}

func TestFormatSubmitErrorTeacherUnavailable(t *testing.T) {
	err := &model.TeacherUnavailableError{
		Windows: []*model.TeacherWindow{
			{StartMin: 10 * 60, EndMin: 18 * 60},
		},
	}

	text := FormatSubmitError(err)

	assert.Contains(t, text, "10:00-18:00")
	assert.Contains(t, text, "недоступны")
}

func TestFormatSubmitErrorBusy(t *testing.T) {
	text := FormatSubmitError(model.ErrBusy)
	assert.Contains(t, text, "занят обработкой")
}

func TestFormatSessionsEmpty(t *testing.T) {
	text := FormatSessions("📋 Активные сессии:", nil)
	assert.Contains(t, text, "Сессий пока нет")
}

func TestFormatSessionsList(t *testing.T) {
	sessions := []*model.Session{
		{
			Subject:     "react",
			Date:        time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
			StartMin:    12 * 60,
			EndMin:      14 * 60,
			MemberCount: 3,
			MeetLink:    "https://meet.jit.si/x",
		},
	}

	text := FormatSessions("📋 Активные сессии:", sessions)

	assert.Contains(t, text, "react")
	assert.Contains(t, text, "15.09.2026")
	assert.Contains(t, text, "участников: 3")
}
