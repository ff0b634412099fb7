package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/clinic_scheduler/internal/model"
	"github.com/Freeeeeet/clinic_scheduler/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type WorkWindowRepo struct {
	*base.Repository
}

func NewWorkWindowRepository(q base.Querier) *WorkWindowRepo {
	return &WorkWindowRepo{Repository: base.NewRepository(q)}
}

const workWindowColumns = `id, clinic_id, weekday, opening, closing, updated_at`

func scanWorkWindow(row interface{ Scan(dest ...any) error }) (*model.WorkWindow, error) {
	var (
		w                model.WorkWindow
		opening, closing pgtype.Time
	)
	if err := row.Scan(&w.ID, &w.ClinicID, &w.Weekday, &opening, &closing, &w.UpdatedAt); err != nil {
		return nil, err
	}
	w.Opening = fromPGTime(opening)
	w.Closing = fromPGTime(closing)
	return &w, nil
}

// GetByClinicAndWeekday получает часы работы клиники в день недели
func (r *WorkWindowRepo) GetByClinicAndWeekday(ctx context.Context, clinicID uuid.UUID, weekday model.Weekday) (*model.WorkWindow, error) {
	query := `SELECT ` + workWindowColumns + `
		FROM work_windows
		WHERE clinic_id = $1 AND weekday = $2`

	w, err := scanWorkWindow(r.QueryRow(ctx, query, clinicID, weekday))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get work window: %w", err)
	}
	return w, nil
}

// ListByClinic все часы работы клиники
func (r *WorkWindowRepo) ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]*model.WorkWindow, error) {
	query := `SELECT ` + workWindowColumns + `
		FROM work_windows
		WHERE clinic_id = $1
		ORDER BY CASE weekday
			WHEN 'MONDAY' THEN 1 WHEN 'TUESDAY' THEN 2 WHEN 'WEDNESDAY' THEN 3
			WHEN 'THURSDAY' THEN 4 WHEN 'FRIDAY' THEN 5 WHEN 'SATURDAY' THEN 6
			ELSE 7 END`

	rows, err := r.Query(ctx, query, clinicID)
	if err != nil {
		return nil, fmt.Errorf("list work windows: %w", err)
	}
	defer rows.Close()

	var windows []*model.WorkWindow
	for rows.Next() {
		w, err := scanWorkWindow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan work window: %w", err)
		}
		windows = append(windows, w)
	}
	return windows, rows.Err()
}

// Upsert создаёт или заменяет часы работы на день недели
func (r *WorkWindowRepo) Upsert(ctx context.Context, w *model.WorkWindow) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	query := `
		INSERT INTO work_windows (id, clinic_id, weekday, opening, closing)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (clinic_id, weekday)
		DO UPDATE SET opening = EXCLUDED.opening, closing = EXCLUDED.closing, updated_at = NOW()
		RETURNING id, updated_at`

	err := r.QueryRow(ctx, query, w.ID, w.ClinicID, w.Weekday, toPGTime(w.Opening), toPGTime(w.Closing)).
		Scan(&w.ID, &w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert work window: %w", err)
	}
	return nil
}
