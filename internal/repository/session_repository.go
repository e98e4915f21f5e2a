package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"tutormatch/internal/model"
	"tutormatch/internal/repository/base"
)

type SessionRepository struct {
	*base.Repository
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{Repository: base.NewRepository(pool)}
}

const sessionColumns = `id, subject, date, start_min, end_min, status, member_count, meet_link, created_at, updated_at`

// Create создаёт новую сессию.
// Частичный уникальный индекс по (subject, date) для активных сессий
// страхует инвариант "одна активная сессия на ячейку" на уровне БД.
func (r *SessionRepository) Create(ctx context.Context, session *model.Session) error {
	query := `
		INSERT INTO sessions (id, subject, date, start_min, end_min, status, member_count, meet_link)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		session.ID,
		session.Subject,
		session.Date,
		session.StartMin,
		session.EndMin,
		session.Status,
		session.MemberCount,
		session.MeetLink,
	).Scan(&session.CreatedAt, &session.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	return nil
}

// GetActive получает активную сессию по предмету и дате
func (r *SessionRepository) GetActive(ctx context.Context, subject string, date time.Time) (*model.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE subject = $1 AND date = $2 AND status = 'active'
	`

	session, err := r.scanOne(r.QueryRow(ctx, query, subject, date))
	if err != nil {
		return nil, fmt.Errorf("get active session: %w", err)
	}
	return session, nil
}

// GetActiveByDate получает все активные сессии на дату
func (r *SessionRepository) GetActiveByDate(ctx context.Context, date time.Time) ([]*model.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE date = $1 AND status = 'active'
		ORDER BY start_min, subject
	`

	rows, err := r.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("get active sessions by date: %w", err)
	}
	defer rows.Close()

	var sessions []*model.Session
	for rows.Next() {
		var s model.Session
		err := rows.Scan(
			&s.ID,
			&s.Subject,
			&s.Date,
			&s.StartMin,
			&s.EndMin,
			&s.Status,
			&s.MemberCount,
			&s.MeetLink,
			&s.CreatedAt,
			&s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, &s)
	}

	return sessions, nil
}

// GetByUser получает активные сессии, в которые записан пользователь
func (r *SessionRepository) GetByUser(ctx context.Context, userID int64) ([]*model.Session, error) {
	query := `
		SELECT s.id, s.subject, s.date, s.start_min, s.end_min, s.status, s.member_count, s.meet_link, s.created_at, s.updated_at
		FROM sessions s
		JOIN session_enrollments e ON e.session_id = s.id
		WHERE e.user_id = $1 AND s.status = 'active'
		ORDER BY s.date, s.start_min
	`

	rows, err := r.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get sessions by user: %w", err)
	}
	defer rows.Close()

	var sessions []*model.Session
	for rows.Next() {
		var s model.Session
		err := rows.Scan(
			&s.ID,
			&s.Subject,
			&s.Date,
			&s.StartMin,
			&s.EndMin,
			&s.Status,
			&s.MemberCount,
			&s.MeetLink,
			&s.CreatedAt,
			&s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, &s)
	}

	return sessions, nil
}

// UpdateWindow обновляет окно сессии после пересчёта оптимизатором
func (r *SessionRepository) UpdateWindow(ctx context.Context, id uuid.UUID, startMin, endMin int) error {
	query := `
		UPDATE sessions
		SET start_min = $1, end_min = $2, updated_at = now()
		WHERE id = $3
	`

	affected, err := r.ExecAffected(ctx, query, startMin, endMin, id)
	if err != nil {
		return fmt.Errorf("update session window: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("session not found")
	}

	return nil
}

// UpdateMemberCount выставляет счётчик участников.
// Значение всегда пересчитано из session_enrollments, не из памяти.
func (r *SessionRepository) UpdateMemberCount(ctx context.Context, id uuid.UUID, count int) error {
	query := `
		UPDATE sessions
		SET member_count = $1, updated_at = now()
		WHERE id = $2
	`

	affected, err := r.ExecAffected(ctx, query, count, id)
	if err != nil {
		return fmt.Errorf("update member count: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("session not found")
	}

	return nil
}

// SetStatus переводит сессию в новый статус
func (r *SessionRepository) SetStatus(ctx context.Context, id uuid.UUID, status model.SessionStatus) error {
	query := `
		UPDATE sessions
		SET status = $1, updated_at = now()
		WHERE id = $2
	`

	affected, err := r.ExecAffected(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("set session status: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("session not found")
	}

	return nil
}

// CompletePast завершает активные сессии с датой раньше указанной,
// освобождая ячейки (subject, date)
func (r *SessionRepository) CompletePast(ctx context.Context, before time.Time) (int64, error) {
	query := `
		UPDATE sessions
		SET status = 'completed', updated_at = now()
		WHERE status = 'active' AND date < $1
	`

	affected, err := r.ExecAffected(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("complete past sessions: %w", err)
	}
	return affected, nil
}

func (r *SessionRepository) scanOne(row interface{ Scan(...any) error }) (*model.Session, error) {
	var s model.Session
	err := row.Scan(
		&s.ID,
		&s.Subject,
		&s.Date,
		&s.StartMin,
		&s.EndMin,
		&s.Status,
		&s.MemberCount,
		&s.MeetLink,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}
