package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"tutormatch/internal/model"
	"tutormatch/internal/repository/base"
)

type TeacherWindowRepository struct {
	*base.Repository
}

func NewTeacherWindowRepository(pool *pgxpool.Pool) *TeacherWindowRepository {
	return &TeacherWindowRepository{Repository: base.NewRepository(pool)}
}

// Upsert сохраняет окно доступности учителя на дату,
// повторная установка перезаписывает старое окно
func (r *TeacherWindowRepository) Upsert(ctx context.Context, w *model.TeacherWindow) error {
	query := `
		INSERT INTO teacher_windows (teacher_id, date, start_min, end_min)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (teacher_id, date)
		DO UPDATE SET start_min = EXCLUDED.start_min, end_min = EXCLUDED.end_min
		RETURNING id, created_at
	`

	err := r.QueryRow(ctx, query, w.TeacherID, w.Date, w.StartMin, w.EndMin).
		Scan(&w.ID, &w.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert teacher window: %w", err)
	}

	return nil
}

// GetByDate получает все окна учителей на дату
func (r *TeacherWindowRepository) GetByDate(ctx context.Context, date time.Time) ([]*model.TeacherWindow, error) {
	query := `
		SELECT id, teacher_id, date, start_min, end_min, created_at
		FROM teacher_windows
		WHERE date = $1
		ORDER BY start_min
	`

	rows, err := r.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("get teacher windows: %w", err)
	}
	defer rows.Close()

	var windows []*model.TeacherWindow
	for rows.Next() {
		var w model.TeacherWindow
		err := rows.Scan(&w.ID, &w.TeacherID, &w.Date, &w.StartMin, &w.EndMin, &w.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan teacher window: %w", err)
		}
		windows = append(windows, &w)
	}

	return windows, nil
}

// GetByTeacher получает окна учителя начиная с даты
func (r *TeacherWindowRepository) GetByTeacher(ctx context.Context, teacherID int64, from time.Time) ([]*model.TeacherWindow, error) {
	query := `
		SELECT id, teacher_id, date, start_min, end_min, created_at
		FROM teacher_windows
		WHERE teacher_id = $1 AND date >= $2
		ORDER BY date, start_min
	`

	rows, err := r.Query(ctx, query, teacherID, from)
	if err != nil {
		return nil, fmt.Errorf("get windows by teacher: %w", err)
	}
	defer rows.Close()

	var windows []*model.TeacherWindow
	for rows.Next() {
		var w model.TeacherWindow
		err := rows.Scan(&w.ID, &w.TeacherID, &w.Date, &w.StartMin, &w.EndMin, &w.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan teacher window: %w", err)
		}
		windows = append(windows, &w)
	}

	return windows, nil
}
