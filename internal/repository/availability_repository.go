package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"tutormatch/internal/model"
	"tutormatch/internal/repository/base"
)

type AvailabilityRepository struct {
	*base.Repository
}

func NewAvailabilityRepository(pool *pgxpool.Pool) *AvailabilityRepository {
	return &AvailabilityRepository{Repository: base.NewRepository(pool)}
}

// Create записывает заявку студента
func (r *AvailabilityRepository) Create(ctx context.Context, av *model.AvailabilityRequest) error {
	query := `
		INSERT INTO availability_requests (user_id, subject, date, start_min, end_min, session_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		av.UserID,
		av.Subject,
		av.Date,
		av.StartMin,
		av.EndMin,
		av.SessionID,
	).Scan(&av.ID, &av.CreatedAt)

	if err != nil {
		return fmt.Errorf("create availability request: %w", err)
	}

	return nil
}

// BindSession привязывает заявку к сессии
func (r *AvailabilityRepository) BindSession(ctx context.Context, id int64, sessionID uuid.UUID) error {
	query := `
		UPDATE availability_requests
		SET session_id = $1
		WHERE id = $2
	`

	affected, err := r.ExecAffected(ctx, query, sessionID, id)
	if err != nil {
		return fmt.Errorf("bind availability to session: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("availability request not found")
	}

	return nil
}

// GetBySession получает по одной заявке на участника сессии,
// последней по времени подачи - она вытесняет предыдущие
func (r *AvailabilityRepository) GetBySession(ctx context.Context, sessionID uuid.UUID) ([]*model.AvailabilityRequest, error) {
	query := `
		SELECT DISTINCT ON (user_id) id, user_id, subject, date, start_min, end_min, session_id, created_at
		FROM availability_requests
		WHERE session_id = $1
		ORDER BY user_id, created_at DESC
	`

	rows, err := r.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get availability by session: %w", err)
	}
	defer rows.Close()

	var requests []*model.AvailabilityRequest
	for rows.Next() {
		var av model.AvailabilityRequest
		err := rows.Scan(
			&av.ID,
			&av.UserID,
			&av.Subject,
			&av.Date,
			&av.StartMin,
			&av.EndMin,
			&av.SessionID,
			&av.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan availability request: %w", err)
		}
		requests = append(requests, &av)
	}

	return requests, nil
}
