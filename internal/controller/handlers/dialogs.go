package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"tutormatch/internal/controller/keyboard"
	"tutormatch/internal/controller/state"
	"tutormatch/internal/model"
	"tutormatch/internal/timeutil"
)

// HandleTextMessage обрабатывает текстовые сообщения по текущему состоянию.
// Без активного диалога текст трактуется как заявка на занятие.
func (h *Handlers) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}
	if strings.HasPrefix(update.Message.Text, "/") {
		return
	}

	telegramID := update.Message.From.ID

	switch h.stateManager.GetState(telegramID) {
	case state.StateAwaitingRequestText:
		h.handleRequestText(ctx, b, update)
	case state.StateSetWindowDate:
		h.handleWindowDate(ctx, b, update)
	case state.StateSetWindowTime:
		h.handleWindowTime(ctx, b, update)
	default:
		h.handleRequestText(ctx, b, update)
	}
}

// handleRequestText разбирает текст заявки и просит подтверждение
func (h *Handlers) handleRequestText(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	text := update.Message.Text

	req, err := h.requestParser.Parse(text)
	if err != nil {
		h.logger.Debug("Failed to parse request text",
			zap.Int64("telegram_id", user.TelegramID),
			zap.String("text", text),
			zap.Error(err),
		)
		h.sendError(ctx, b, update.Message.Chat.ID, FormatSubmitError(err))
		return
	}

	canonical, err := h.normalizer.Normalize(ctx, req.RawSubject)
	if err != nil {
		h.logger.Warn("Subject normalization failed",
			zap.String("raw_subject", req.RawSubject),
			zap.Error(err),
		)
		canonical = req.RawSubject
	}

	h.stateManager.Set(user.TelegramID, &state.UserData{
		State: state.StateConfirmingRequest,
		Pending: &state.PendingRequest{
			RawSubject: req.RawSubject,
			Subject:    canonical,
			Date:       req.Date,
			StartMin:   req.StartMin,
			EndMin:     req.EndMin,
		},
	})

	kb := keyboard.NewBuilder().
		Row(
			keyboard.Button("✅ Отправить", "req_confirm"),
			keyboard.Button("❌ Отменить", "req_discard"),
		).
		Build()

	confirmText := fmt.Sprintf(
		"Проверьте заявку:\n\n"+
			"📚 Предмет: %s\n"+
			"🗓 Дата: %s\n"+
			"🕘 Время: %s\n\n"+
			"Отправить?",
		canonical,
		req.Date.Format("02.01.2006"),
		timeutil.FormatWindow(req.StartMin, req.EndMin),
	)

	_, err = b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      update.Message.Chat.ID,
		Text:        confirmText,
		ReplyMarkup: kb,
	})
	if err != nil {
		h.logger.Error("Failed to send confirmation", zap.Error(err))
	}
}

// handleWindowDate принимает дату окна доступности учителя
func (h *Handlers) handleWindowDate(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireTeacher(ctx, b, update)
	if !ok {
		return
	}

	date, err := h.requestParser.ParseDate(update.Message.Text)
	if err != nil {
		h.sendError(ctx, b, update.Message.Chat.ID,
			"❌ Не удалось понять дату. Форматы: 2026-09-15, tomorrow, friday.\n\nОтменить: /cancel")
		return
	}

	h.stateManager.Set(user.TelegramID, &state.UserData{
		State: state.StateSetWindowTime,
		Date:  date,
	})

	h.sendMessage(ctx, b, update.Message.Chat.ID,
		fmt.Sprintf("🕘 Окно на %s. Укажите время, например: 10:00 to 18:00",
			date.Format("02.01.2006")))
}

// handleWindowTime принимает время окна и сохраняет его
func (h *Handlers) handleWindowTime(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireTeacher(ctx, b, update)
	if !ok {
		return
	}

	data := h.stateManager.Get(user.TelegramID)
	if data == nil || data.Date.IsZero() {
		h.stateManager.Clear(user.TelegramID)
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Диалог потерян, начните заново: /setwindow")
		return
	}

	startMin, endMin, err := h.requestParser.ParseTimeRange(update.Message.Text)
	if err != nil {
		h.sendError(ctx, b, update.Message.Chat.ID,
			"❌ Не удалось понять время. Пример: 10:00 to 18:00\n\nОтменить: /cancel")
		return
	}

	window, err := h.teacherService.SetWindow(ctx, user.TelegramID, data.Date, startMin, endMin)
	if err != nil {
		h.logger.Error("Failed to set teacher window",
			zap.Int64("telegram_id", user.TelegramID),
			zap.Error(err),
		)
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Не удалось сохранить окно доступности.")
		return
	}

	h.stateManager.Clear(user.TelegramID)
	h.sendMessage(ctx, b, update.Message.Chat.ID,
		fmt.Sprintf("✅ Окно сохранено: %s, %s",
			window.Date.Format("02.01.2006"),
			timeutil.FormatWindow(window.StartMin, window.EndMin)))
}

// cancelSessionKeyboard клавиатура выбора сессии для отмены
func (h *Handlers) cancelSessionKeyboard(sessions []*model.Session) *models.InlineKeyboardMarkup {
	builder := keyboard.NewBuilder()
	for _, s := range sessions {
		label := fmt.Sprintf("%s %s", s.Subject, timeutil.FormatWindow(s.StartMin, s.EndMin))
		builder.Row(keyboard.Button(label, "cancel_session:"+s.ID.String()))
	}
	return builder.Build()
}
