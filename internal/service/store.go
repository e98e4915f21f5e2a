package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"tutormatch/internal/model"
	"tutormatch/internal/repository"
)

// Store узкий интерфейс хранилища, который потребляет SessionService.
// Реализация на pgx ниже; в тестах подставляется память.
type Store interface {
	GetActiveSessions(ctx context.Context, date time.Time) ([]*model.Session, error)
	CreateSession(ctx context.Context, session *model.Session) error
	UpdateSessionWindow(ctx context.Context, id uuid.UUID, startMin, endMin int) error
	UpdateMemberCount(ctx context.Context, id uuid.UUID, count int) error
	SetSessionStatus(ctx context.Context, id uuid.UUID, status model.SessionStatus) error
	GetSessionsByUser(ctx context.Context, userID int64) ([]*model.Session, error)
	CompletePastSessions(ctx context.Context, before time.Time) (int64, error)

	AddAvailability(ctx context.Context, av *model.AvailabilityRequest) error
	BindAvailability(ctx context.Context, id int64, sessionID uuid.UUID) error
	GetSessionAvailability(ctx context.Context, sessionID uuid.UUID) ([]*model.AvailabilityRequest, error)

	AddEnrollment(ctx context.Context, sessionID uuid.UUID, userID int64) error
	IsEnrolled(ctx context.Context, sessionID uuid.UUID, userID int64) (bool, error)
	CountEnrollments(ctx context.Context, sessionID uuid.UUID) (int, error)
	RemoveEnrollments(ctx context.Context, sessionID uuid.UUID) error

	GetTeacherWindows(ctx context.Context, date time.Time) ([]*model.TeacherWindow, error)
}

// PgStore реализация Store поверх pgx-репозиториев
type PgStore struct {
	sessions     *repository.SessionRepository
	availability *repository.AvailabilityRepository
	enrollments  *repository.EnrollmentRepository
	windows      *repository.TeacherWindowRepository
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{
		sessions:     repository.NewSessionRepository(pool),
		availability: repository.NewAvailabilityRepository(pool),
		enrollments:  repository.NewEnrollmentRepository(pool),
		windows:      repository.NewTeacherWindowRepository(pool),
	}
}

func (s *PgStore) GetActiveSessions(ctx context.Context, date time.Time) ([]*model.Session, error) {
	return s.sessions.GetActiveByDate(ctx, date)
}

func (s *PgStore) CreateSession(ctx context.Context, session *model.Session) error {
	return s.sessions.Create(ctx, session)
}

func (s *PgStore) UpdateSessionWindow(ctx context.Context, id uuid.UUID, startMin, endMin int) error {
	return s.sessions.UpdateWindow(ctx, id, startMin, endMin)
}

func (s *PgStore) UpdateMemberCount(ctx context.Context, id uuid.UUID, count int) error {
	return s.sessions.UpdateMemberCount(ctx, id, count)
}

func (s *PgStore) SetSessionStatus(ctx context.Context, id uuid.UUID, status model.SessionStatus) error {
	return s.sessions.SetStatus(ctx, id, status)
}

func (s *PgStore) GetSessionsByUser(ctx context.Context, userID int64) ([]*model.Session, error) {
	return s.sessions.GetByUser(ctx, userID)
}

func (s *PgStore) CompletePastSessions(ctx context.Context, before time.Time) (int64, error) {
	return s.sessions.CompletePast(ctx, before)
}

func (s *PgStore) AddAvailability(ctx context.Context, av *model.AvailabilityRequest) error {
	return s.availability.Create(ctx, av)
}

func (s *PgStore) BindAvailability(ctx context.Context, id int64, sessionID uuid.UUID) error {
	return s.availability.BindSession(ctx, id, sessionID)
}

func (s *PgStore) GetSessionAvailability(ctx context.Context, sessionID uuid.UUID) ([]*model.AvailabilityRequest, error) {
	return s.availability.GetBySession(ctx, sessionID)
}

func (s *PgStore) AddEnrollment(ctx context.Context, sessionID uuid.UUID, userID int64) error {
	return s.enrollments.Create(ctx, sessionID, userID)
}

func (s *PgStore) IsEnrolled(ctx context.Context, sessionID uuid.UUID, userID int64) (bool, error) {
	return s.enrollments.Exists(ctx, sessionID, userID)
}

func (s *PgStore) CountEnrollments(ctx context.Context, sessionID uuid.UUID) (int, error) {
	return s.enrollments.CountBySession(ctx, sessionID)
}

func (s *PgStore) RemoveEnrollments(ctx context.Context, sessionID uuid.UUID) error {
	return s.enrollments.DeleteBySession(ctx, sessionID)
}

func (s *PgStore) GetTeacherWindows(ctx context.Context, date time.Time) ([]*model.TeacherWindow, error) {
	return s.windows.GetByDate(ctx, date)
}
