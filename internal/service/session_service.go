package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tutormatch/internal/config"
	"tutormatch/internal/model"
	"tutormatch/internal/schedule"
	"tutormatch/internal/subject"
	"tutormatch/internal/timeutil"
)

// SessionService управляет жизненным циклом ячейки (subject, date):
// EMPTY -> ACTIVE -> COMPLETED/CANCELED. Решение создать/присоединить/
// отклонить принимается здесь и только здесь; оптимизатор и классификатор
// чистые и состояние сессий не трогают.
type SessionService struct {
	store      Store
	normalizer subject.Normalizer
	optimizer  *schedule.Optimizer
	locks      *schedule.KeyLock
	cfg        config.Scheduling
	logger     *zap.Logger
	now        func() time.Time
}

func NewSessionService(
	store Store,
	normalizer subject.Normalizer,
	cfg config.Scheduling,
	logger *zap.Logger,
) *SessionService {
	return &SessionService{
		store:      store,
		normalizer: normalizer,
		optimizer: schedule.NewOptimizer(schedule.OptimizerConfig{
			MinOverlapMin:    cfg.MinOverlapMin,
			ClusterRadiusMin: cfg.ClusterRadiusMin,
			GranularityMin:   cfg.GranularityMin,
			MinSessionMin:    cfg.MinSessionMin,
			DefaultStartMin:  cfg.DefaultStartMin,
			DefaultEndMin:    cfg.DefaultEndMin,
		}),
		locks:  schedule.NewKeyLock(cfg.LockWait),
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// SubmitRequest обрабатывает заявку студента и возвращает типизированный
// исход. Последовательность "прочитать участников - посчитать окно -
// записать сессию" сериализована по ячейке (subject, date); при частичном
// сбое записи счётчик и окно восстановятся на следующей успешной заявке,
// потому что всегда пересчитываются из хранилища.
func (s *SessionService) SubmitRequest(ctx context.Context, userID int64, rawSubject string, date time.Time, startMin, endMin int) (*model.Outcome, error) {
	if err := s.validate(date, startMin, endMin); err != nil {
		return nil, err
	}

	canonical, err := s.normalizer.Normalize(ctx, rawSubject)
	if err != nil {
		return nil, fmt.Errorf("normalize subject: %w", err)
	}

	date = truncateToDay(date)
	release, err := s.locks.Acquire(ctx, cellKey(canonical, date))
	if err != nil {
		return nil, err
	}
	defer release()

	active, err := s.store.GetActiveSessions(ctx, date)
	if err != nil {
		return nil, &model.StorageError{Op: "get active sessions", Err: err}
	}

	decision := schedule.Classify(canonical, startMin, endMin, active)
	switch decision.Kind {
	case schedule.DecisionBlocked:
		s.logger.Info("Request blocked by conflicting session",
			zap.Int64("user_id", userID),
			zap.String("subject", canonical),
			zap.String("conflict_subject", decision.Session.Subject),
		)
		return &model.Outcome{
			Kind:     model.OutcomeBlocked,
			Subject:  canonical,
			Conflict: decision.Session,
		}, nil

	case schedule.DecisionJoin:
		return s.join(ctx, decision.Session, userID, canonical, date, startMin, endMin)

	default:
		return s.create(ctx, userID, canonical, date, startMin, endMin)
	}
}

// create переход EMPTY -> ACTIVE: сессия с окном самой заявки
func (s *SessionService) create(ctx context.Context, userID int64, canonical string, date time.Time, startMin, endMin int) (*model.Outcome, error) {
	if err := s.checkTeacherWindows(ctx, date, startMin, endMin); err != nil {
		return nil, err
	}

	session := &model.Session{
		ID:          uuid.New(),
		Subject:     canonical,
		Date:        date,
		StartMin:    startMin,
		EndMin:      endMin,
		Status:      model.SessionStatusActive,
		MemberCount: 1,
	}
	session.MeetLink = meetLink(session)

	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, &model.StorageError{Op: "create session", Err: err}
	}
	if err := s.recordAvailability(ctx, userID, session, startMin, endMin); err != nil {
		return nil, err
	}
	if err := s.store.AddEnrollment(ctx, session.ID, userID); err != nil {
		return nil, &model.StorageError{Op: "add enrollment", Err: err}
	}

	s.logger.Info("Session created",
		zap.String("session_id", session.ID.String()),
		zap.String("subject", canonical),
		zap.String("date", date.Format("2006-01-02")),
		zap.String("window", timeutil.FormatWindow(startMin, endMin)),
		zap.Int64("user_id", userID),
	)

	return &model.Outcome{
		Kind:        model.OutcomeCreated,
		SessionID:   session.ID,
		Subject:     canonical,
		StartMin:    startMin,
		EndMin:      endMin,
		MemberCount: 1,
		MeetLink:    session.MeetLink,
	}, nil
}

// join присоединение к активной сессии с пересчётом окна по всем участникам
func (s *SessionService) join(ctx context.Context, session *model.Session, userID int64, canonical string, date time.Time, startMin, endMin int) (*model.Outcome, error) {
	enrolled, err := s.store.IsEnrolled(ctx, session.ID, userID)
	if err != nil {
		return nil, &model.StorageError{Op: "check enrollment", Err: err}
	}
	if enrolled {
		return &model.Outcome{
			Kind:        model.OutcomeAlreadyEnrolled,
			SessionID:   session.ID,
			Subject:     canonical,
			StartMin:    session.StartMin,
			EndMin:      session.EndMin,
			MemberCount: session.MemberCount,
			MeetLink:    session.MeetLink,
		}, nil
	}

	if s.cfg.MaxJoinGapMin > 0 {
		gap := startMin - session.StartMin
		if gap < 0 {
			gap = -gap
		}
		if gap > s.cfg.MaxJoinGapMin {
			return &model.Outcome{
				Kind:    model.OutcomeRejected,
				Subject: canonical,
				Reason: fmt.Sprintf("requested time is more than %s away from the session",
					time.Duration(s.cfg.MaxJoinGapMin)*time.Minute),
			}, nil
		}
	}

	if err := s.checkTeacherWindows(ctx, date, startMin, endMin); err != nil {
		return nil, err
	}

	if err := s.recordAvailability(ctx, userID, session, startMin, endMin); err != nil {
		return nil, err
	}
	if err := s.store.AddEnrollment(ctx, session.ID, userID); err != nil {
		return nil, &model.StorageError{Op: "add enrollment", Err: err}
	}

	members, err := s.store.GetSessionAvailability(ctx, session.ID)
	if err != nil {
		return nil, &model.StorageError{Op: "get session availability", Err: err}
	}

	window := s.optimizer.OptimalWindow(toIntervals(members))
	if window.StartMin != session.StartMin || window.EndMin != session.EndMin {
		if err := s.store.UpdateSessionWindow(ctx, session.ID, window.StartMin, window.EndMin); err != nil {
			return nil, &model.StorageError{Op: "update session window", Err: err}
		}
		s.logger.Info("Session window recomputed",
			zap.String("session_id", session.ID.String()),
			zap.String("old", timeutil.FormatWindow(session.StartMin, session.EndMin)),
			zap.String("new", timeutil.FormatWindow(window.StartMin, window.EndMin)),
			zap.Int("satisfied", window.Count),
		)
	}

	// счётчик всегда из фактических записей, бегущим значениям не верим
	count, err := s.store.CountEnrollments(ctx, session.ID)
	if err != nil {
		return nil, &model.StorageError{Op: "count enrollments", Err: err}
	}
	if err := s.store.UpdateMemberCount(ctx, session.ID, count); err != nil {
		return nil, &model.StorageError{Op: "update member count", Err: err}
	}

	s.logger.Info("User joined session",
		zap.String("session_id", session.ID.String()),
		zap.Int64("user_id", userID),
		zap.Int("member_count", count),
	)

	return &model.Outcome{
		Kind:        model.OutcomeJoined,
		SessionID:   session.ID,
		Subject:     canonical,
		StartMin:    window.StartMin,
		EndMin:      window.EndMin,
		MemberCount: count,
		MeetLink:    session.MeetLink,
	}, nil
}

// CancelSession отменяет сессию и освобождает ячейку (subject, date)
func (s *SessionService) CancelSession(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.store.SetSessionStatus(ctx, sessionID, model.SessionStatusCanceled); err != nil {
		return &model.StorageError{Op: "cancel session", Err: err}
	}
	if err := s.store.RemoveEnrollments(ctx, sessionID); err != nil {
		return &model.StorageError{Op: "remove enrollments", Err: err}
	}

	s.logger.Info("Session canceled", zap.String("session_id", sessionID.String()))
	return nil
}

// ListActive активные сессии на дату
func (s *SessionService) ListActive(ctx context.Context, date time.Time) ([]*model.Session, error) {
	return s.store.GetActiveSessions(ctx, truncateToDay(date))
}

// ListForUser активные сессии, в которые записан пользователь
func (s *SessionService) ListForUser(ctx context.Context, userID int64) ([]*model.Session, error) {
	return s.store.GetSessionsByUser(ctx, userID)
}

// CompletePast завершает сессии прошедших дат
func (s *SessionService) CompletePast(ctx context.Context) (int64, error) {
	return s.store.CompletePastSessions(ctx, truncateToDay(s.now()))
}

func (s *SessionService) validate(date time.Time, startMin, endMin int) error {
	if startMin < 0 || startMin >= timeutil.MinutesPerDay || endMin < 0 || endMin > timeutil.MinutesPerDay {
		return fmt.Errorf("%w: window %d-%d", model.ErrInvalidTimeFormat, startMin, endMin)
	}
	if endMin <= startMin {
		return fmt.Errorf("%w: window must end after it starts", model.ErrInvalidTimeFormat)
	}
	if date.IsZero() {
		return fmt.Errorf("%w: zero date", model.ErrInvalidDate)
	}
	if truncateToDay(date).Before(truncateToDay(s.now())) {
		return fmt.Errorf("%w: %s is in the past", model.ErrInvalidDate, date.Format("2006-01-02"))
	}
	return nil
}

// checkTeacherWindows проверяет что окно заявки укладывается в окно
// какого-нибудь учителя; проверка включается конфигом
func (s *SessionService) checkTeacherWindows(ctx context.Context, date time.Time, startMin, endMin int) error {
	if !s.cfg.EnforceWindows {
		return nil
	}

	windows, err := s.store.GetTeacherWindows(ctx, date)
	if err != nil {
		return &model.StorageError{Op: "get teacher windows", Err: err}
	}

	for _, w := range windows {
		if w.StartMin <= startMin && endMin <= w.EndMin {
			return nil
		}
	}
	return &model.TeacherUnavailableError{Windows: windows}
}

func (s *SessionService) recordAvailability(ctx context.Context, userID int64, session *model.Session, startMin, endMin int) error {
	av := &model.AvailabilityRequest{
		UserID:   userID,
		Subject:  session.Subject,
		Date:     session.Date,
		StartMin: startMin,
		EndMin:   endMin,
	}
	if err := s.store.AddAvailability(ctx, av); err != nil {
		return &model.StorageError{Op: "add availability", Err: err}
	}
	if err := s.store.BindAvailability(ctx, av.ID, session.ID); err != nil {
		return &model.StorageError{Op: "bind availability", Err: err}
	}
	return nil
}

func toIntervals(requests []*model.AvailabilityRequest) []schedule.Interval {
	intervals := make([]schedule.Interval, 0, len(requests))
	for _, av := range requests {
		intervals = append(intervals, schedule.Interval{
			UserID:   av.UserID,
			StartMin: av.StartMin,
			EndMin:   av.EndMin,
		})
	}
	return intervals
}

func cellKey(subject string, date time.Time) string {
	return subject + "|" + date.Format("2006-01-02")
}

func meetLink(s *model.Session) string {
	return fmt.Sprintf("https://meet.jit.si/tutormatch-%s-%s-%s",
		s.Subject, s.Date.Format("2006-01-02"), s.ID.String()[:8])
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
