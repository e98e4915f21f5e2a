package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tutormatch/internal/model"
	"tutormatch/internal/repository"
	"tutormatch/internal/timeutil"
)

type TeacherService struct {
	windowRepo *repository.TeacherWindowRepository
	logger     *zap.Logger
}

func NewTeacherService(windowRepo *repository.TeacherWindowRepository, logger *zap.Logger) *TeacherService {
	return &TeacherService{
		windowRepo: windowRepo,
		logger:     logger,
	}
}

// SetWindow сохраняет окно доступности учителя на дату
func (s *TeacherService) SetWindow(ctx context.Context, teacherID int64, date time.Time, startMin, endMin int) (*model.TeacherWindow, error) {
	if endMin <= startMin {
		return nil, fmt.Errorf("%w: window must end after it starts", model.ErrInvalidTimeFormat)
	}

	window := &model.TeacherWindow{
		TeacherID: teacherID,
		Date:      date,
		StartMin:  startMin,
		EndMin:    endMin,
	}
	if err := s.windowRepo.Upsert(ctx, window); err != nil {
		return nil, fmt.Errorf("set teacher window: %w", err)
	}

	s.logger.Info("Teacher window set",
		zap.Int64("teacher_id", teacherID),
		zap.String("date", date.Format("2006-01-02")),
		zap.String("window", timeutil.FormatWindow(startMin, endMin)),
	)

	return window, nil
}

// GetWindows окна учителя начиная с сегодняшнего дня
func (s *TeacherService) GetWindows(ctx context.Context, teacherID int64) ([]*model.TeacherWindow, error) {
	return s.windowRepo.GetByTeacher(ctx, teacherID, truncateToDay(time.Now()))
}
