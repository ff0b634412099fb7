package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/clinic_scheduler/internal/metrics"
	"github.com/Freeeeeet/clinic_scheduler/internal/model"
	"github.com/Freeeeeet/clinic_scheduler/internal/repository"
	"github.com/Freeeeeet/clinic_scheduler/internal/repository/base"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var scheduleTracer = otel.Tracer("clinic_scheduler/schedule")

type ScheduleService struct {
	repos   repository.Repositories
	tx      repository.TxManager
	metrics *metrics.SchedulerMetrics
	clock   func() time.Time
	logger  *zap.Logger
}

func NewScheduleService(
	repos repository.Repositories,
	tx repository.TxManager,
	m *metrics.SchedulerMetrics,
	clock func() time.Time,
	logger *zap.Logger,
) *ScheduleService {
	if clock == nil {
		clock = time.Now
	}
	return &ScheduleService{
		repos:   repos,
		tx:      tx,
		metrics: m,
		clock:   clock,
		logger:  logger,
	}
}

// GenerateSchedule публикует окно приёма врача на один день
func (s *ScheduleService) GenerateSchedule(ctx context.Context, physicianID uuid.UUID, req model.NewDaySchedule) (*model.PublishResult, error) {
	results, err := s.GenerateSchedules(ctx, physicianID, []model.NewDaySchedule{req})
	if err != nil {
		return nil, err
	}
	return &results[0], nil
}

// GenerateSchedules публикует несколько дней в одной транзакции: либо все, либо ни одного
func (s *ScheduleService) GenerateSchedules(ctx context.Context, physicianID uuid.UUID, reqs []model.NewDaySchedule) ([]model.PublishResult, error) {
	ctx, span := scheduleTracer.Start(ctx, "schedule.generate", trace.WithAttributes(
		attribute.String("physician_id", physicianID.String()),
		attribute.Int("days", len(reqs)),
	))
	defer span.End()

	for _, req := range reqs {
		if err := ValidateInterval(req.TimeSlotInterval); err != nil {
			return nil, err
		}
		if err := ValidateTimeRange(req.StartTime, req.EndTime); err != nil {
			return nil, err
		}
	}

	physician, err := s.repos.Physicians.GetByID(ctx, physicianID)
	if err != nil {
		s.logger.Error("Failed to get physician", zap.String("physician_id", physicianID.String()), zap.Error(err))
		return nil, fmt.Errorf("get physician: %w", err)
	}
	if physician == nil {
		return nil, ErrPhysicianNotFound
	}

	results := make([]model.PublishResult, 0, len(reqs))
	err = s.tx.WithTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		results = results[:0]
		for _, req := range reqs {
			res, err := s.publishDay(ctx, repos, physician, req)
			if err != nil {
				return err
			}
			results = append(results, res)
		}
		return nil
	})
	if err != nil {
		if base.IsUniqueViolation(err) {
			err = fmt.Errorf("%w: schedule was published concurrently", ErrScheduleConflict)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "publish failed")
		s.logger.Warn("Schedule publication rejected",
			zap.String("physician_id", physicianID.String()),
			zap.Error(err))
		return nil, err
	}

	for _, res := range results {
		s.metrics.ObservePublication(string(res.Outcome), res.SlotsCreated)
		s.logger.Info("Schedule published",
			zap.String("physician_id", physicianID.String()),
			zap.String("schedule_id", res.ScheduleID.String()),
			zap.String("date", res.Date.Format(model.DateLayout)),
			zap.String("outcome", string(res.Outcome)),
			zap.Int("slots_created", res.SlotsCreated))
	}
	return results, nil
}

func (s *ScheduleService) publishDay(ctx context.Context, repos repository.Repositories, physician *model.Physician, req model.NewDaySchedule) (model.PublishResult, error) {
	date := model.DateOf(req.Date)
	weekday := model.WeekdayOf(date)

	window, err := repos.WorkWindows.GetByClinicAndWeekday(ctx, physician.ClinicID, weekday)
	if err != nil {
		return model.PublishResult{}, fmt.Errorf("get work window: %w", err)
	}
	if err := ValidateWorkWindow(window, weekday, req.StartTime, req.EndTime); err != nil {
		return model.PublishResult{}, err
	}

	existing, err := repos.Schedules.LockByPhysicianAndDate(ctx, physician.ID, date)
	if err != nil {
		return model.PublishResult{}, fmt.Errorf("get schedule: %w", err)
	}

	plan := PlanMerge(existing, req.StartTime, req.EndTime)
	res := model.PublishResult{
		Date:      date,
		Outcome:   plan.Outcome,
		StartTime: plan.Start,
		EndTime:   plan.End,
	}

	var scheduleID uuid.UUID
	switch plan.Outcome {
	case model.MergeUnchanged:
		res.ScheduleID = existing.ID
		return res, nil
	case model.MergeCreated:
		schedule := &model.DailySchedule{
			ID:          uuid.New(),
			PhysicianID: physician.ID,
			Date:        date,
			StartTime:   plan.Start,
			EndTime:     plan.End,
		}
		if err := repos.Schedules.Create(ctx, schedule); err != nil {
			return model.PublishResult{}, err
		}
		scheduleID = schedule.ID
	case model.MergeExtended:
		if err := repos.Schedules.UpdateRange(ctx, existing.ID, plan.Start, plan.End); err != nil {
			return model.PublishResult{}, err
		}
		scheduleID = existing.ID
	}
	res.ScheduleID = scheduleID

	var slots []model.TimeSlot
	for _, delta := range plan.Deltas {
		for slot := range GenerateSlots(delta.Start, delta.End, req.TimeSlotInterval) {
			slot.ID = uuid.New()
			slot.ScheduleID = scheduleID
			slots = append(slots, slot)
		}
	}
	if err := repos.Slots.CreateBatch(ctx, slots); err != nil {
		return model.PublishResult{}, err
	}
	res.SlotsCreated = len(slots)
	return res, nil
}

// ListPublic расписание врача без данных пациентов
func (s *ScheduleService) ListPublic(ctx context.Context, physicianID uuid.UUID) ([]model.PhysicianDaySchedule, error) {
	return s.list(ctx, physicianID, false)
}

// ListPrivate расписание врача с данными записанных пациентов
func (s *ScheduleService) ListPrivate(ctx context.Context, physicianID uuid.UUID) ([]model.PhysicianDaySchedule, error) {
	return s.list(ctx, physicianID, true)
}

func (s *ScheduleService) list(ctx context.Context, physicianID uuid.UUID, withPatients bool) ([]model.PhysicianDaySchedule, error) {
	physician, err := s.repos.Physicians.GetByID(ctx, physicianID)
	if err != nil {
		return nil, fmt.Errorf("get physician: %w", err)
	}
	if physician == nil {
		return nil, ErrPhysicianNotFound
	}

	schedules, err := s.repos.Schedules.ListByPhysician(ctx, physicianID)
	if err != nil {
		s.logger.Error("Failed to list schedules", zap.String("physician_id", physicianID.String()), zap.Error(err))
		return nil, fmt.Errorf("list schedules: %w", err)
	}

	var patients map[uuid.UUID]*model.Patient
	if withPatients {
		var ids []uuid.UUID
		for _, sc := range schedules {
			for _, slot := range sc.Slots {
				if slot.PatientID != nil {
					ids = append(ids, *slot.PatientID)
				}
			}
		}
		patients, err = s.repos.Patients.GetByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("get patients: %w", err)
		}
	}

	now := s.clock()
	views := make([]model.PhysicianDaySchedule, 0, len(schedules))
	for _, sc := range schedules {
		view := model.PhysicianDaySchedule{
			ID:        sc.ID,
			Date:      sc.Date,
			StartTime: sc.StartTime,
			EndTime:   sc.EndTime,
			Schedule:  make([]model.DayAppointment, 0, len(sc.Slots)),
		}
		for i := range sc.Slots {
			slot := &sc.Slots[i]
			appointment := model.DayAppointment{
				ID:        slot.ID,
				StartTime: slot.StartTime,
				Duration:  slot.DurationMinutes,
				Status:    effectiveStatus(slot, sc.Date, now),
			}
			if withPatients && slot.PatientID != nil {
				appointment.Patient = patients[*slot.PatientID].Info()
			}
			view.Schedule = append(view.Schedule, appointment)
		}
		views = append(views, view)
	}
	return views, nil
}

// effectiveStatus показывает начавшийся слот как passed, не дожидаясь фоновой проверки
func effectiveStatus(slot *model.TimeSlot, date, now time.Time) model.SlotStatus {
	if (slot.Status == model.SlotStatusFree || slot.Status == model.SlotStatusReserved) && slot.HasPassed(date, now) {
		return model.SlotStatusPassed
	}
	return slot.Status
}

// InactivateDay выключает все слоты дня. Начавшиеся слоты остаются passed;
// если хоть один будущий слот забронирован, день не меняется.
func (s *ScheduleService) InactivateDay(ctx context.Context, physicianID uuid.UUID, date time.Time) (int, error) {
	ctx, span := scheduleTracer.Start(ctx, "schedule.inactivate_day", trace.WithAttributes(
		attribute.String("physician_id", physicianID.String()),
		attribute.String("date", date.Format(model.DateLayout)),
	))
	defer span.End()

	now := s.clock()
	inactivated := 0
	err := s.tx.WithTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		inactivated = 0
		schedule, err := repos.Schedules.LockByPhysicianAndDate(ctx, physicianID, date)
		if err != nil {
			return fmt.Errorf("get schedule: %w", err)
		}
		if schedule == nil {
			return ErrScheduleNotFound
		}

		for i := range schedule.Slots {
			slot := &schedule.Slots[i]
			switch {
			case slot.Status == model.SlotStatusPassed || slot.Status == model.SlotStatusInactive:
				continue
			case slot.HasPassed(schedule.Date, now):
				if _, err := repos.Slots.MarkPassed(ctx, slot.ID); err != nil {
					return err
				}
			case slot.Status == model.SlotStatusReserved:
				return fmt.Errorf("%w: slot %s at %s is reserved", ErrScheduleConflict, slot.ID, slot.StartTime)
			default:
				if err := repos.Slots.SetStatus(ctx, slot.ID, model.SlotStatusInactive); err != nil {
					return err
				}
				inactivated++
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, ErrScheduleNotFound) || errors.Is(err, ErrScheduleConflict) {
			s.logger.Info("Day inactivation rejected",
				zap.String("physician_id", physicianID.String()),
				zap.String("date", date.Format(model.DateLayout)),
				zap.Error(err))
		} else {
			s.logger.Error("Failed to inactivate day",
				zap.String("physician_id", physicianID.String()),
				zap.Error(err))
		}
		return 0, err
	}

	s.logger.Info("Day inactivated",
		zap.String("physician_id", physicianID.String()),
		zap.String("date", date.Format(model.DateLayout)),
		zap.Int("slots", inactivated))
	return inactivated, nil
}

// RetireFutureSchedules архивирует и удаляет расписания врача начиная с завтрашнего дня.
// Используется при увольнении врача.
func (s *ScheduleService) RetireFutureSchedules(ctx context.Context, physicianID uuid.UUID) (*ArchiveResult, error) {
	ctx, span := scheduleTracer.Start(ctx, "schedule.retire_future", trace.WithAttributes(
		attribute.String("physician_id", physicianID.String()),
	))
	defer span.End()

	now := s.clock()
	today := model.DateOf(now)

	var result ArchiveResult
	err := s.tx.WithTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		schedules, err := repos.Schedules.ListByPhysicianAfter(ctx, physicianID, today)
		if err != nil {
			return err
		}
		result, err = archiveAndDelete(ctx, repos, schedules, now)
		return err
	})
	if err != nil {
		span.RecordError(err)
		s.logger.Error("Failed to retire future schedules",
			zap.String("physician_id", physicianID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("retire future schedules: %w", err)
	}

	s.metrics.AddArchived(result.Slots)
	s.logger.Info("Future schedules retired",
		zap.String("physician_id", physicianID.String()),
		zap.Int("schedules", result.Schedules),
		zap.Int("slots", result.Slots))
	return &result, nil
}
