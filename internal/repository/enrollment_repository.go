package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"tutormatch/internal/repository/base"
)

type EnrollmentRepository struct {
	*base.Repository
}

func NewEnrollmentRepository(pool *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{Repository: base.NewRepository(pool)}
}

// Create записывает студента в сессию.
// Уникальный индекс (session_id, user_id) гарантирует одну запись на пару,
// повторная вставка молча игнорируется.
func (r *EnrollmentRepository) Create(ctx context.Context, sessionID uuid.UUID, userID int64) error {
	query := `
		INSERT INTO session_enrollments (session_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (session_id, user_id) DO NOTHING
	`

	_, err := r.ExecAffected(ctx, query, sessionID, userID)
	if err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}

	return nil
}

// Exists проверяет записан ли студент в сессию
func (r *EnrollmentRepository) Exists(ctx context.Context, sessionID uuid.UUID, userID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM session_enrollments
			WHERE session_id = $1 AND user_id = $2
		)
	`

	var exists bool
	err := r.QueryRow(ctx, query, sessionID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}

	return exists, nil
}

// CountBySession считает участников сессии по фактическим записям
func (r *EnrollmentRepository) CountBySession(ctx context.Context, sessionID uuid.UUID) (int, error) {
	query := `
		SELECT count(*) FROM session_enrollments
		WHERE session_id = $1
	`

	var count int
	err := r.QueryRow(ctx, query, sessionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count enrollments: %w", err)
	}

	return count, nil
}

// DeleteBySession удаляет записи отменённой сессии
func (r *EnrollmentRepository) DeleteBySession(ctx context.Context, sessionID uuid.UUID) error {
	query := `DELETE FROM session_enrollments WHERE session_id = $1`

	_, err := r.ExecAffected(ctx, query, sessionID)
	if err != nil {
		return fmt.Errorf("delete enrollments: %w", err)
	}

	return nil
}
