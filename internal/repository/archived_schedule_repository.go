package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/clinic_scheduler/internal/model"
	"github.com/Freeeeeet/clinic_scheduler/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type ArchivedScheduleRepo struct {
	*base.Repository
}

func NewArchivedScheduleRepository(q base.Querier) *ArchivedScheduleRepo {
	return &ArchivedScheduleRepo{Repository: base.NewRepository(q)}
}

// CreateBatch сохраняет архивные записи одним пакетом
func (r *ArchivedScheduleRepo) CreateBatch(ctx context.Context, rows []model.ArchivedSchedule) error {
	if len(rows) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i := range rows {
		a := &rows[i]
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		batch.Queue(`
			INSERT INTO archived_schedules (id, physician_id, date, status, patient_id, start_time, duration_minutes, archived_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			a.ID, a.PhysicianID, toPGDate(a.Date), a.Status, a.PatientID, toPGTime(a.StartTime), a.DurationMinutes, a.ArchivedAt)
	}

	br := r.Querier().SendBatch(ctx, batch)
	defer br.Close()
	for range rows {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("archive slots batch: %w", err)
		}
	}
	return nil
}

// ListByPhysician архив врача по возрастанию даты и времени
func (r *ArchivedScheduleRepo) ListByPhysician(ctx context.Context, physicianID uuid.UUID) ([]*model.ArchivedSchedule, error) {
	query := `
		SELECT id, physician_id, date, status, patient_id, start_time, duration_minutes, archived_at
		FROM archived_schedules
		WHERE physician_id = $1
		ORDER BY date, start_time`

	rows, err := r.Query(ctx, query, physicianID)
	if err != nil {
		return nil, fmt.Errorf("list archived schedules: %w", err)
	}
	defer rows.Close()

	var result []*model.ArchivedSchedule
	for rows.Next() {
		var (
			a     model.ArchivedSchedule
			date  pgtype.Date
			start pgtype.Time
		)
		if err := rows.Scan(&a.ID, &a.PhysicianID, &date, &a.Status, &a.PatientID, &start, &a.DurationMinutes, &a.ArchivedAt); err != nil {
			return nil, fmt.Errorf("scan archived schedule: %w", err)
		}
		a.Date = date.Time
		a.StartTime = fromPGTime(start)
		result = append(result, &a)
	}
	return result, rows.Err()
}
