package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"tutormatch/internal/model"
)

// HandleCallbackQuery обрабатывает нажатия inline-кнопок
func (h *Handlers) HandleCallbackQuery(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}

	query := update.CallbackQuery
	data := query.Data

	// Убираем "часики" на кнопке
	_, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: query.ID,
	})
	if err != nil {
		h.logger.Warn("Failed to answer callback query", zap.Error(err))
	}

	if query.Message.Message == nil {
		h.logger.Warn("Callback without accessible message", zap.String("data", data))
		return
	}

	switch {
	case data == "req_confirm":
		h.handleRequestConfirm(ctx, b, query)
	case data == "req_discard":
		h.handleRequestDiscard(ctx, b, query)
	case strings.HasPrefix(data, "cancel_session:"):
		h.handleSessionCancel(ctx, b, query, strings.TrimPrefix(data, "cancel_session:"))
	default:
		h.logger.Warn("Unknown callback data", zap.String("data", data))
	}
}

// handleRequestConfirm отправляет подтверждённую заявку в ядро.
// Занятую ячейку (предмет, дата) переживаем короткими ретраями,
// остальные ошибки отдаём пользователю сразу.
func (h *Handlers) handleRequestConfirm(ctx context.Context, b *bot.Bot, query *models.CallbackQuery) {
	telegramID := query.From.ID
	chatID := query.Message.Message.Chat.ID

	userData := h.stateManager.Get(telegramID)
	if userData == nil || userData.Pending == nil {
		h.sendError(ctx, b, chatID, "❌ Заявка устарела, отправьте её заново: /request")
		return
	}
	pending := userData.Pending
	h.stateManager.Clear(telegramID)

	var outcome *model.Outcome
	backoff := retry.WithMaxRetries(3, retry.NewExponential(200*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var submitErr error
		outcome, submitErr = h.sessionService.SubmitRequest(
			ctx,
			telegramID,
			pending.RawSubject,
			pending.Date,
			pending.StartMin,
			pending.EndMin,
		)
		if errors.Is(submitErr, model.ErrBusy) {
			return retry.RetryableError(submitErr)
		}
		return submitErr
	})

	if err != nil {
		h.logger.Error("Failed to submit request",
			zap.Int64("telegram_id", telegramID),
			zap.String("subject", pending.Subject),
			zap.Error(err),
		)
		h.sendError(ctx, b, chatID, FormatSubmitError(err))
		return
	}

	h.logger.Info("Request processed",
		zap.Int64("telegram_id", telegramID),
		zap.String("subject", outcome.Subject),
		zap.String("outcome", string(outcome.Kind)),
		zap.String("session_id", outcome.SessionID.String()),
	)

	h.sendMessage(ctx, b, chatID, FormatOutcome(outcome))
}

// handleRequestDiscard отменяет неподтверждённую заявку
func (h *Handlers) handleRequestDiscard(ctx context.Context, b *bot.Bot, query *models.CallbackQuery) {
	h.stateManager.Clear(query.From.ID)
	h.sendMessage(ctx, b, query.Message.Message.Chat.ID, "✅ Заявка отменена.")
}

// handleSessionCancel отменяет активную сессию по выбору учителя
func (h *Handlers) handleSessionCancel(ctx context.Context, b *bot.Bot, query *models.CallbackQuery, rawID string) {
	telegramID := query.From.ID
	chatID := query.Message.Message.Chat.ID

	user, err := h.userService.GetByTelegramID(ctx, telegramID)
	if err != nil || user == nil || user.Role() != model.RoleTeacher {
		h.sendError(ctx, b, chatID, "❌ Отменять сессии могут только учителя.")
		return
	}

	sessionID, err := uuid.Parse(rawID)
	if err != nil {
		h.logger.Warn("Bad session id in callback", zap.String("raw_id", rawID))
		h.sendError(ctx, b, chatID, "❌ Некорректный идентификатор сессии.")
		return
	}

	if err := h.sessionService.CancelSession(ctx, sessionID); err != nil {
		h.logger.Error("Failed to cancel session",
			zap.String("session_id", sessionID.String()),
			zap.Error(err),
		)
		h.sendError(ctx, b, chatID, "❌ Не удалось отменить сессию.")
		return
	}

	h.sendMessage(ctx, b, chatID, "✅ Сессия отменена, участники смогут записаться на другое время.")
}
