package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"tutormatch/internal/service"
)

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	sessionService *service.SessionService
	logger         *zap.Logger
	stopChan       chan struct{}
}

// NewScheduler создаёт новый планировщик
func NewScheduler(sessionService *service.SessionService, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		sessionService: sessionService,
		logger:         logger,
		stopChan:       make(chan struct{}),
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler")

	go s.runCompletionTask(ctx)
}

// Stop останавливает фоновые задачи
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
}

// runCompletionTask периодически завершает сессии прошедших дат,
// освобождая ячейки (subject, date) для новых заявок
func (s *Scheduler) runCompletionTask(ctx context.Context) {
	// Первый запуск сразу при старте
	s.completePast(ctx)

	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.completePast(ctx)
		case <-s.stopChan:
			s.logger.Info("Session completion task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Session completion task cancelled")
			return
		}
	}
}

func (s *Scheduler) completePast(ctx context.Context) {
	n, err := s.sessionService.CompletePast(ctx)
	if err != nil {
		s.logger.Error("Failed to complete past sessions", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("Past sessions completed", zap.Int64("count", n))
	}
}
