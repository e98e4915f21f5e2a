package handlers

import (
	"go.uber.org/zap"

	"tutormatch/internal/controller/state"
	"tutormatch/internal/parser"
	"tutormatch/internal/service"
	"tutormatch/internal/subject"
)

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	userService    *service.UserService
	sessionService *service.SessionService
	teacherService *service.TeacherService
	requestParser  *parser.Parser
	normalizer     subject.Normalizer
	stateManager   *state.Manager
	logger         *zap.Logger
}

// NewHandlers создаёт новый обработчик команд
func NewHandlers(
	userService *service.UserService,
	sessionService *service.SessionService,
	teacherService *service.TeacherService,
	requestParser *parser.Parser,
	normalizer subject.Normalizer,
	stateManager *state.Manager,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		userService:    userService,
		sessionService: sessionService,
		teacherService: teacherService,
		requestParser:  requestParser,
		normalizer:     normalizer,
		stateManager:   stateManager,
		logger:         logger,
	}
}
