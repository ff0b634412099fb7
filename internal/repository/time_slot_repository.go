package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/clinic_scheduler/internal/model"
	"github.com/Freeeeeet/clinic_scheduler/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type TimeSlotRepo struct {
	*base.Repository
}

func NewTimeSlotRepository(q base.Querier) *TimeSlotRepo {
	return &TimeSlotRepo{Repository: base.NewRepository(q)}
}

const slotColumns = `id, schedule_id, start_time, duration_minutes, status, patient_id, created_at`

func scanSlot(row interface{ Scan(dest ...any) error }) (*model.TimeSlot, error) {
	var (
		s     model.TimeSlot
		start pgtype.Time
	)
	if err := row.Scan(&s.ID, &s.ScheduleID, &start, &s.DurationMinutes, &s.Status, &s.PatientID, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.StartTime = fromPGTime(start)
	return &s, nil
}

const slotWithScheduleQuery = `
	SELECT ts.id, ts.schedule_id, ts.start_time, ts.duration_minutes, ts.status, ts.patient_id, ts.created_at,
	       ds.date, ds.physician_id
	FROM time_slots ts
	JOIN daily_schedules ds ON ds.id = ts.schedule_id`

func scanSlotWithSchedule(row interface{ Scan(dest ...any) error }) (*model.SlotWithSchedule, error) {
	var (
		s     model.SlotWithSchedule
		start pgtype.Time
		date  pgtype.Date
	)
	err := row.Scan(&s.ID, &s.ScheduleID, &start, &s.DurationMinutes, &s.Status, &s.PatientID, &s.CreatedAt,
		&date, &s.PhysicianID)
	if err != nil {
		return nil, err
	}
	s.StartTime = fromPGTime(start)
	s.Date = date.Time
	return &s, nil
}

// CreateBatch вставляет слоты одним пакетом
func (r *TimeSlotRepo) CreateBatch(ctx context.Context, slots []model.TimeSlot) error {
	if len(slots) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i := range slots {
		s := &slots[i]
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
		batch.Queue(`
			INSERT INTO time_slots (id, schedule_id, start_time, duration_minutes, status, patient_id)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			s.ID, s.ScheduleID, toPGTime(s.StartTime), s.DurationMinutes, s.Status, s.PatientID)
	}

	br := r.Querier().SendBatch(ctx, batch)
	defer br.Close()
	for range slots {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("create slots batch: %w", err)
		}
	}
	return nil
}

// GetByID получает слот с датой и врачом расписания
func (r *TimeSlotRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.SlotWithSchedule, error) {
	s, err := scanSlotWithSchedule(r.QueryRow(ctx, slotWithScheduleQuery+` WHERE ts.id = $1`, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get slot by id: %w", err)
	}
	return s, nil
}

// GetByIDForUpdate как GetByID, но блокирует строку слота до конца транзакции
func (r *TimeSlotRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.SlotWithSchedule, error) {
	s, err := scanSlotWithSchedule(r.QueryRow(ctx, slotWithScheduleQuery+` WHERE ts.id = $1 FOR UPDATE OF ts`, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock slot by id: %w", err)
	}
	return s, nil
}

// Reserve бронирует слот; условие по статусу защищает от двойной записи
func (r *TimeSlotRepo) Reserve(ctx context.Context, slotID, patientID uuid.UUID) (bool, error) {
	query := `
		UPDATE time_slots
		SET status = 'reserved', patient_id = $2
		WHERE id = $1 AND status = 'free'`

	n, err := r.ExecAffected(ctx, query, slotID, patientID)
	if err != nil {
		return false, fmt.Errorf("reserve slot: %w", err)
	}
	return n > 0, nil
}

// Release освобождает слот, забронированный patientID
func (r *TimeSlotRepo) Release(ctx context.Context, slotID, patientID uuid.UUID) (bool, error) {
	query := `
		UPDATE time_slots
		SET status = 'free', patient_id = NULL
		WHERE id = $1 AND status = 'reserved' AND patient_id = $2`

	n, err := r.ExecAffected(ctx, query, slotID, patientID)
	if err != nil {
		return false, fmt.Errorf("release slot: %w", err)
	}
	return n > 0, nil
}

// SetStatus меняет статус слота без проверок
func (r *TimeSlotRepo) SetStatus(ctx context.Context, slotID uuid.UUID, status model.SlotStatus) error {
	if _, err := r.ExecAffected(ctx, `UPDATE time_slots SET status = $2 WHERE id = $1`, slotID, status); err != nil {
		return fmt.Errorf("set slot status: %w", err)
	}
	return nil
}

// MarkPassed переводит free/reserved слот в passed
func (r *TimeSlotRepo) MarkPassed(ctx context.Context, slotID uuid.UUID) (bool, error) {
	query := `
		UPDATE time_slots
		SET status = 'passed'
		WHERE id = $1 AND status IN ('free', 'reserved')`

	n, err := r.ExecAffected(ctx, query, slotID)
	if err != nil {
		return false, fmt.Errorf("mark slot passed: %w", err)
	}
	return n > 0, nil
}

// MarkPassedBefore переводит в passed все free/reserved слоты, начавшиеся до now
func (r *TimeSlotRepo) MarkPassedBefore(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE time_slots ts
		SET status = 'passed'
		FROM daily_schedules ds
		WHERE ts.schedule_id = ds.id
		  AND ts.status IN ('free', 'reserved')
		  AND ds.date + ts.start_time < $1::timestamp`

	n, err := r.ExecAffected(ctx, query, wallClock(now))
	if err != nil {
		return 0, fmt.Errorf("mark passed slots: %w", err)
	}
	return n, nil
}

// ListByPatient слоты, в которых записан пациент (включая прошедшие), по возрастанию даты и времени
func (r *TimeSlotRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.SlotWithSchedule, error) {
	query := slotWithScheduleQuery + `
		WHERE ts.patient_id = $1
		ORDER BY ds.date, ts.start_time`

	rows, err := r.Query(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("list patient slots: %w", err)
	}
	defer rows.Close()

	var slots []*model.SlotWithSchedule
	for rows.Next() {
		s, err := scanSlotWithSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan patient slot: %w", err)
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}
