package handlers

import (
	"errors"
	"fmt"
	"strings"

	"tutormatch/internal/model"
	"tutormatch/internal/timeutil"
)

// FormatOutcome превращает типизированный исход в сообщение для чата.
// Ядро текстов не знает, вся подача живёт здесь.
func FormatOutcome(out *model.Outcome) string {
	switch out.Kind {
	case model.OutcomeCreated:
		return fmt.Sprintf(
			"✅ Создана новая сессия по %s\n\n"+
				"🕘 Время: %s\n"+
				"👥 Участников: %d\n"+
				"🔗 %s\n\n"+
				"Время может сдвинуться, когда присоединятся другие студенты.",
			out.Subject,
			timeutil.FormatWindow(out.StartMin, out.EndMin),
			out.MemberCount,
			out.MeetLink,
		)

	case model.OutcomeJoined:
		return fmt.Sprintf(
			"✅ Вы записаны в сессию по %s\n\n"+
				"🕘 Время сессии: %s\n"+
				"👥 Участников: %d\n"+
				"🔗 %s",
			out.Subject,
			timeutil.FormatWindow(out.StartMin, out.EndMin),
			out.MemberCount,
			out.MeetLink,
		)

	case model.OutcomeAlreadyEnrolled:
		return fmt.Sprintf(
			"ℹ️ Вы уже записаны в сессию по %s\n\n"+
				"🕘 Время: %s\n"+
				"👥 Участников: %d",
			out.Subject,
			timeutil.FormatWindow(out.StartMin, out.EndMin),
			out.MemberCount,
		)

	case model.OutcomeBlocked:
		return fmt.Sprintf(
			"⛔ Это время занято сессией по %s (%s).\n\n"+
				"Выберите другое время и отправьте заявку ещё раз.",
			out.Conflict.Subject,
			timeutil.FormatWindow(out.Conflict.StartMin, out.Conflict.EndMin),
		)

	case model.OutcomeRejected:
		return "❌ Заявка отклонена: " + out.Reason

	default:
		return "❌ Неизвестный результат обработки заявки."
	}
}

// FormatSubmitError сообщение для ошибок из таксономии ядра
func FormatSubmitError(err error) string {
	var unavailable *model.TeacherUnavailableError
	if errors.As(err, &unavailable) {
		if len(unavailable.Windows) == 0 {
			return "❌ На эту дату нет доступных учителей. Попробуйте другую дату."
		}

		var sb strings.Builder
		sb.WriteString("❌ Учителя недоступны в это время. Доступные окна:\n")
		for _, w := range unavailable.Windows {
			sb.WriteString(fmt.Sprintf("  • %s\n", timeutil.FormatWindow(w.StartMin, w.EndMin)))
		}
		sb.WriteString("\nВыберите время внутри окна и отправьте заявку ещё раз.")
		return sb.String()
	}

	switch {
	case errors.Is(err, model.ErrBusy):
		return "⏳ Сервис занят обработкой заявок на это время. Попробуйте через пару секунд."
	case errors.Is(err, model.ErrInvalidTimeFormat):
		return "❌ Не удалось понять время. Пример: \"python session tomorrow 2pm to 4pm\"."
	case errors.Is(err, model.ErrInvalidDate):
		return "❌ Не удалось понять дату. Укажите день недели, tomorrow или дату в формате 2025-07-01."
	default:
		return "❌ Не получилось обработать заявку. Попробуйте позже."
	}
}

// FormatSessions список сессий для /sessions и /mysessions
func FormatSessions(title string, sessions []*model.Session) string {
	if len(sessions) == 0 {
		return title + "\n\nСессий пока нет."
	}

	var sb strings.Builder
	sb.WriteString(title + "\n")
	for _, s := range sessions {
		sb.WriteString(fmt.Sprintf(
			"\n📚 %s — %s\n🕘 %s, участников: %d\n🔗 %s\n",
			s.Subject,
			s.Date.Format("02.01.2006"),
			timeutil.FormatWindow(s.StartMin, s.EndMin),
			s.MemberCount,
			s.MeetLink,
		))
	}
	return sb.String()
}

// FormatWindows окна доступности учителя
func FormatWindows(windows []*model.TeacherWindow) string {
	if len(windows) == 0 {
		return "🗓 У вас нет окон доступности.\n\nДобавить: /setwindow"
	}

	var sb strings.Builder
	sb.WriteString("🗓 Ваши окна доступности:\n")
	for _, w := range windows {
		sb.WriteString(fmt.Sprintf("  • %s: %s\n",
			w.Date.Format("02.01.2006"),
			timeutil.FormatWindow(w.StartMin, w.EndMin),
		))
	}
	return sb.String()
}
