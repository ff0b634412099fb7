package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/clinic_scheduler/internal/model"
	"github.com/Freeeeeet/clinic_scheduler/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type DailyScheduleRepo struct {
	*base.Repository
}

func NewDailyScheduleRepository(q base.Querier) *DailyScheduleRepo {
	return &DailyScheduleRepo{Repository: base.NewRepository(q)}
}

const scheduleColumns = `id, physician_id, date, start_time, end_time, created_at, updated_at`

func scanSchedule(row interface{ Scan(dest ...any) error }) (*model.DailySchedule, error) {
	var (
		s          model.DailySchedule
		date       pgtype.Date
		start, end pgtype.Time
	)
	if err := row.Scan(&s.ID, &s.PhysicianID, &date, &start, &end, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.Date = date.Time
	s.StartTime = fromPGTime(start)
	s.EndTime = fromPGTime(end)
	return &s, nil
}

func (r *DailyScheduleRepo) getOne(ctx context.Context, query string, args ...any) (*model.DailySchedule, error) {
	s, err := scanSchedule(r.QueryRow(ctx, query, args...))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.attachSlots(ctx, []*model.DailySchedule{s}); err != nil {
		return nil, err
	}
	return s, nil
}

// GetByPhysicianAndDate получает расписание врача на дату вместе со слотами
func (r *DailyScheduleRepo) GetByPhysicianAndDate(ctx context.Context, physicianID uuid.UUID, date time.Time) (*model.DailySchedule, error) {
	query := `SELECT ` + scheduleColumns + `
		FROM daily_schedules
		WHERE physician_id = $1 AND date = $2`

	s, err := r.getOne(ctx, query, physicianID, toPGDate(date))
	if err != nil {
		return nil, fmt.Errorf("get schedule by physician and date: %w", err)
	}
	return s, nil
}

// LockByPhysicianAndDate как GetByPhysicianAndDate, но блокирует строку до конца транзакции
func (r *DailyScheduleRepo) LockByPhysicianAndDate(ctx context.Context, physicianID uuid.UUID, date time.Time) (*model.DailySchedule, error) {
	query := `SELECT ` + scheduleColumns + `
		FROM daily_schedules
		WHERE physician_id = $1 AND date = $2
		FOR UPDATE`

	s, err := r.getOne(ctx, query, physicianID, toPGDate(date))
	if err != nil {
		return nil, fmt.Errorf("lock schedule by physician and date: %w", err)
	}
	return s, nil
}

// Create создаёт расписание без слотов
func (r *DailyScheduleRepo) Create(ctx context.Context, s *model.DailySchedule) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	query := `
		INSERT INTO daily_schedules (id, physician_id, date, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := r.QueryRow(ctx, query, s.ID, s.PhysicianID, toPGDate(s.Date), toPGTime(s.StartTime), toPGTime(s.EndTime)).
		Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}
	return nil
}

// UpdateRange расширяет границы окна приёма
func (r *DailyScheduleRepo) UpdateRange(ctx context.Context, id uuid.UUID, start, end model.TimeOfDay) error {
	query := `UPDATE daily_schedules SET start_time = $2, end_time = $3, updated_at = NOW() WHERE id = $1`
	if _, err := r.ExecAffected(ctx, query, id, toPGTime(start), toPGTime(end)); err != nil {
		return fmt.Errorf("update schedule range: %w", err)
	}
	return nil
}

func (r *DailyScheduleRepo) list(ctx context.Context, query string, args ...any) ([]*model.DailySchedule, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	var schedules []*model.DailySchedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		schedules = append(schedules, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachSlots(ctx, schedules); err != nil {
		return nil, err
	}
	return schedules, nil
}

// ListByPhysician все расписания врача по возрастанию даты
func (r *DailyScheduleRepo) ListByPhysician(ctx context.Context, physicianID uuid.UUID) ([]*model.DailySchedule, error) {
	query := `SELECT ` + scheduleColumns + `
		FROM daily_schedules
		WHERE physician_id = $1
		ORDER BY date`

	schedules, err := r.list(ctx, query, physicianID)
	if err != nil {
		return nil, fmt.Errorf("list schedules by physician: %w", err)
	}
	return schedules, nil
}

// ListBefore расписания всех врачей с датой раньше date
func (r *DailyScheduleRepo) ListBefore(ctx context.Context, date time.Time) ([]*model.DailySchedule, error) {
	query := `SELECT ` + scheduleColumns + `
		FROM daily_schedules
		WHERE date < $1
		ORDER BY date, physician_id`

	schedules, err := r.list(ctx, query, toPGDate(date))
	if err != nil {
		return nil, fmt.Errorf("list schedules before date: %w", err)
	}
	return schedules, nil
}

// ListByPhysicianAfter расписания врача с датой позже date
func (r *DailyScheduleRepo) ListByPhysicianAfter(ctx context.Context, physicianID uuid.UUID, date time.Time) ([]*model.DailySchedule, error) {
	query := `SELECT ` + scheduleColumns + `
		FROM daily_schedules
		WHERE physician_id = $1 AND date > $2
		ORDER BY date`

	schedules, err := r.list(ctx, query, physicianID, toPGDate(date))
	if err != nil {
		return nil, fmt.Errorf("list future schedules: %w", err)
	}
	return schedules, nil
}

// Delete удаляет расписание; слоты удаляются каскадом
func (r *DailyScheduleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.ExecAffected(ctx, `DELETE FROM daily_schedules WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	return nil
}

// attachSlots загружает слоты одним запросом и раскладывает по расписаниям
func (r *DailyScheduleRepo) attachSlots(ctx context.Context, schedules []*model.DailySchedule) error {
	if len(schedules) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(schedules))
	byID := make(map[uuid.UUID]*model.DailySchedule, len(schedules))
	for _, s := range schedules {
		ids = append(ids, s.ID)
		byID[s.ID] = s
	}

	query := `SELECT ` + slotColumns + `
		FROM time_slots
		WHERE schedule_id = ANY($1)
		ORDER BY schedule_id, start_time`

	rows, err := r.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("load slots: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return fmt.Errorf("scan slot: %w", err)
		}
		if s, ok := byID[slot.ScheduleID]; ok {
			s.Slots = append(s.Slots, *slot)
		}
	}
	return rows.Err()
}
