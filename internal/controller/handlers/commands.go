package handlers

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"tutormatch/internal/controller/render"
	"tutormatch/internal/controller/state"
	"tutormatch/internal/model"
)

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	user := update.Message.From

	// Регистрируем пользователя
	registeredUser, err := h.userService.RegisterUser(
		ctx,
		user.ID,
		user.Username,
		user.FirstName,
		user.LastName,
		user.LanguageCode,
	)

	if err != nil {
		h.logger.Error("Failed to register user", zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Произошла ошибка при регистрации. Попробуйте позже.")
		return
	}

	welcomeText := fmt.Sprintf(
		"👋 Привет, %s!\n\n"+
			"Это бот подбора групповых занятий: отправьте заявку с предметом и временем, "+
			"а бот найдёт или создаст сессию и подберёт общее время для группы.\n\n"+
			"Например: python session tomorrow 2pm to 4pm\n\n"+
			"Доступные команды:\n"+
			"/request - Отправить заявку на занятие\n"+
			"/sessions - Активные сессии\n"+
			"/mysessions - Мои сессии\n"+
			"/schedule - Расписание дня картинкой\n"+
			"/help - Справка\n\n"+
			"Для учителей:\n"+
			"/becometeacher - Стать учителем\n"+
			"/setwindow - Указать окно доступности\n"+
			"/mywindows - Мои окна доступности",
		registeredUser.FirstName,
	)

	h.sendMessage(ctx, b, update.Message.Chat.ID, welcomeText)
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	helpText := "📚 Справка по командам:\n\n" +
		"Для студентов:\n" +
		"/start - Начать работу с ботом\n" +
		"/request - Отправить заявку на занятие\n" +
		"/sessions - Активные сессии на сегодня\n" +
		"/mysessions - Сессии, в которые вы записаны\n" +
		"/schedule - Расписание дня картинкой\n" +
		"/cancel - Отменить текущий диалог\n\n" +
		"Для учителей:\n" +
		"/becometeacher - Зарегистрироваться как учитель\n" +
		"/setwindow - Указать окно доступности\n" +
		"/mywindows - Посмотреть свои окна\n" +
		"/cancelsession - Отменить свою сессию\n\n" +
		"Заявку можно отправить и простым текстом: " +
		"\"react lesson friday 11am to 1pm\""

	h.sendMessage(ctx, b, update.Message.Chat.ID, helpText)
}

// HandleCancel обрабатывает команду /cancel, сбрасывает текущий диалог
func (h *Handlers) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	telegramID := update.Message.From.ID
	if h.stateManager.GetState(telegramID) == state.StateNone {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "Нечего отменять.")
		return
	}

	h.stateManager.Clear(telegramID)
	h.sendMessage(ctx, b, update.Message.Chat.ID, "✅ Диалог отменён.")
}

// HandleRequest обрабатывает команду /request, запускает диалог заявки
func (h *Handlers) HandleRequest(ctx context.Context, b *bot.Bot, update *models.Update) {
	if _, ok := h.requireUser(ctx, b, update); !ok {
		return
	}

	h.stateManager.Set(update.Message.From.ID, &state.UserData{
		State: state.StateAwaitingRequestText,
	})

	h.sendMessage(ctx, b, update.Message.Chat.ID,
		"📝 Опишите занятие одной строкой: предмет, день и время.\n\n"+
			"Примеры:\n"+
			"  python session tomorrow 2pm to 4pm\n"+
			"  react lesson friday 11-1pm\n"+
			"  math class 2026-09-15 10:00 to 12:00\n\n"+
			"Отменить: /cancel")
}

// HandleSessions обрабатывает команду /sessions, активные сессии на сегодня
func (h *Handlers) HandleSessions(ctx context.Context, b *bot.Bot, update *models.Update) {
	if _, ok := h.requireUser(ctx, b, update); !ok {
		return
	}

	sessions, err := h.sessionService.ListActive(ctx, time.Now())
	if err != nil {
		h.logger.Error("Failed to list active sessions", zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Не удалось получить список сессий.")
		return
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID,
		FormatSessions("📋 Активные сессии на сегодня:", sessions))
}

// HandleMySessions обрабатывает команду /mysessions
func (h *Handlers) HandleMySessions(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	sessions, err := h.sessionService.ListForUser(ctx, user.TelegramID)
	if err != nil {
		h.logger.Error("Failed to list user sessions",
			zap.Int64("telegram_id", user.TelegramID),
			zap.Error(err),
		)
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Не удалось получить ваши сессии.")
		return
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID,
		FormatSessions("📋 Ваши сессии:", sessions))
}

// HandleSchedule обрабатывает команду /schedule, отправляет картинку дня
func (h *Handlers) HandleSchedule(ctx context.Context, b *bot.Bot, update *models.Update) {
	if _, ok := h.requireUser(ctx, b, update); !ok {
		return
	}

	today := time.Now()
	sessions, err := h.sessionService.ListActive(ctx, today)
	if err != nil {
		h.logger.Error("Failed to load sessions for schedule", zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Не удалось построить расписание.")
		return
	}

	if len(sessions) == 0 {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "🗓 На сегодня активных сессий нет.")
		return
	}

	png, err := render.DayImage(today, sessions)
	if err != nil {
		h.logger.Error("Failed to render day image", zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Не удалось построить расписание.")
		return
	}

	_, err = b.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID: update.Message.Chat.ID,
		Photo: &models.InputFileUpload{
			Filename: "schedule.png",
			Data:     bytes.NewReader(png),
		},
		Caption: fmt.Sprintf("🗓 Расписание на %s", today.Format("02.01.2006")),
	})
	if err != nil {
		h.logger.Error("Failed to send schedule photo", zap.Error(err))
	}
}

// HandleBecomeTeacher обрабатывает команду /becometeacher
func (h *Handlers) HandleBecomeTeacher(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	if user.Role() == model.RoleTeacher {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "ℹ️ Вы уже зарегистрированы как учитель.")
		return
	}

	if _, err := h.userService.MakeTeacher(ctx, user.TelegramID); err != nil {
		h.logger.Error("Failed to make teacher",
			zap.Int64("telegram_id", user.TelegramID),
			zap.Error(err),
		)
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Не удалось зарегистрировать вас как учителя.")
		return
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID,
		"🎉 Вы зарегистрированы как учитель!\n\n"+
			"Теперь укажите окна доступности: /setwindow")
}

// HandleSetWindow обрабатывает команду /setwindow, запускает диалог окна
func (h *Handlers) HandleSetWindow(ctx context.Context, b *bot.Bot, update *models.Update) {
	if _, ok := h.requireTeacher(ctx, b, update); !ok {
		return
	}

	h.stateManager.Set(update.Message.From.ID, &state.UserData{
		State: state.StateSetWindowDate,
	})

	h.sendMessage(ctx, b, update.Message.Chat.ID,
		"🗓 На какую дату добавить окно доступности?\n\n"+
			"Форматы: 2026-09-15, tomorrow, friday\n"+
			"Отменить: /cancel")
}

// HandleMyWindows обрабатывает команду /mywindows
func (h *Handlers) HandleMyWindows(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireTeacher(ctx, b, update)
	if !ok {
		return
	}

	windows, err := h.teacherService.GetWindows(ctx, user.TelegramID)
	if err != nil {
		h.logger.Error("Failed to get teacher windows",
			zap.Int64("telegram_id", user.TelegramID),
			zap.Error(err),
		)
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Не удалось получить окна доступности.")
		return
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID, FormatWindows(windows))
}

// HandleCancelSession обрабатывает команду /cancelsession,
// предлагает учителю выбрать сессию для отмены
func (h *Handlers) HandleCancelSession(ctx context.Context, b *bot.Bot, update *models.Update) {
	if _, ok := h.requireTeacher(ctx, b, update); !ok {
		return
	}

	sessions, err := h.sessionService.ListActive(ctx, time.Now())
	if err != nil {
		h.logger.Error("Failed to list sessions for cancellation", zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Не удалось получить список сессий.")
		return
	}

	if len(sessions) == 0 {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "🗓 Активных сессий на сегодня нет.")
		return
	}

	kb := h.cancelSessionKeyboard(sessions)
	_, err = b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      update.Message.Chat.ID,
		Text:        "Выберите сессию для отмены:",
		ReplyMarkup: kb,
	})
	if err != nil {
		h.logger.Error("Failed to send cancel session keyboard", zap.Error(err))
	}
}
