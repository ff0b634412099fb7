package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/clinic_scheduler/internal/metrics"
	"github.com/Freeeeeet/clinic_scheduler/internal/model"
	"github.com/Freeeeeet/clinic_scheduler/internal/repository"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var slotTracer = otel.Tracer("clinic_scheduler/timeslot")

type SlotService struct {
	repos   repository.Repositories
	tx      repository.TxManager
	metrics *metrics.SchedulerMetrics
	clock   func() time.Time
	logger  *zap.Logger
}

func NewSlotService(
	repos repository.Repositories,
	tx repository.TxManager,
	m *metrics.SchedulerMetrics,
	clock func() time.Time,
	logger *zap.Logger,
) *SlotService {
	if clock == nil {
		clock = time.Now
	}
	return &SlotService{
		repos:   repos,
		tx:      tx,
		metrics: m,
		clock:   clock,
		logger:  logger,
	}
}

// resultLabel метка результата для метрик
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrScheduleConflict):
		return "conflict"
	case errors.Is(err, ErrSlotNotFound), errors.Is(err, ErrPatientNotFound):
		return "not_found"
	default:
		return "error"
	}
}

// MakeAppointment бронирует свободный слот для пациента с учётной записью accountID.
// Из двух одновременных запросов на один слот успешен ровно один.
func (s *SlotService) MakeAppointment(ctx context.Context, accountID, slotID uuid.UUID) error {
	ctx, span := slotTracer.Start(ctx, "timeslot.make_appointment", trace.WithAttributes(
		attribute.String("slot_id", slotID.String()),
	))
	defer span.End()

	now := s.clock()
	var passed bool
	err := s.tx.WithTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		passed = false
		slot, err := repos.Slots.GetByIDForUpdate(ctx, slotID)
		if err != nil {
			return fmt.Errorf("get slot: %w", err)
		}
		if slot == nil {
			return ErrSlotNotFound
		}

		// начавшийся слот фиксируем как passed и коммитим это изменение
		if slot.HasPassed(now) {
			if _, err := repos.Slots.MarkPassed(ctx, slot.ID); err != nil {
				return err
			}
			passed = true
			return nil
		}

		if slot.Status != model.SlotStatusFree {
			return fmt.Errorf("%w: slot is %s", ErrScheduleConflict, slot.Status)
		}

		patient, err := repos.Patients.GetByAccountID(ctx, accountID)
		if err != nil {
			return fmt.Errorf("get patient: %w", err)
		}
		if patient == nil {
			return ErrPatientNotFound
		}

		ok, err := repos.Slots.Reserve(ctx, slot.ID, patient.ID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: slot was reserved concurrently", ErrScheduleConflict)
		}
		return nil
	})
	if err == nil && passed {
		s.metrics.AddPassed(1)
		err = fmt.Errorf("%w: slot has passed", ErrScheduleConflict)
	}

	s.metrics.ObserveBooking(resultLabel(err))
	if err != nil {
		span.RecordError(err)
		s.logRejection("Appointment rejected", err,
			zap.String("slot_id", slotID.String()),
			zap.String("account_id", accountID.String()))
		return err
	}

	s.logger.Info("Appointment made",
		zap.String("slot_id", slotID.String()),
		zap.String("account_id", accountID.String()))
	return nil
}

// ReleaseAppointment отменяет бронь. Для начавшегося слота ничего не делает.
func (s *SlotService) ReleaseAppointment(ctx context.Context, accountID, slotID uuid.UUID) error {
	ctx, span := slotTracer.Start(ctx, "timeslot.release_appointment", trace.WithAttributes(
		attribute.String("slot_id", slotID.String()),
	))
	defer span.End()

	now := s.clock()
	var skipped bool
	err := s.tx.WithTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		skipped = false
		slot, err := repos.Slots.GetByIDForUpdate(ctx, slotID)
		if err != nil {
			return fmt.Errorf("get slot: %w", err)
		}
		if slot == nil {
			return ErrSlotNotFound
		}

		if slot.Status == model.SlotStatusPassed || slot.HasPassed(now) {
			skipped = true
			return nil
		}

		if slot.Status != model.SlotStatusReserved || slot.PatientID == nil {
			return fmt.Errorf("%w: slot is not reserved", ErrScheduleConflict)
		}

		patient, err := repos.Patients.GetByAccountID(ctx, accountID)
		if err != nil {
			return fmt.Errorf("get patient: %w", err)
		}
		if patient == nil || patient.ID != *slot.PatientID {
			return fmt.Errorf("%w: slot is reserved by another patient", ErrScheduleConflict)
		}

		ok, err := repos.Slots.Release(ctx, slot.ID, patient.ID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: slot changed concurrently", ErrScheduleConflict)
		}
		return nil
	})

	s.metrics.ObserveRelease(resultLabel(err))
	if err != nil {
		span.RecordError(err)
		s.logRejection("Release rejected", err,
			zap.String("slot_id", slotID.String()),
			zap.String("account_id", accountID.String()))
		return err
	}

	if skipped {
		s.logger.Info("Release skipped, slot has passed", zap.String("slot_id", slotID.String()))
		return nil
	}
	s.logger.Info("Appointment released",
		zap.String("slot_id", slotID.String()),
		zap.String("account_id", accountID.String()))
	return nil
}

// Inactivate выключает слот. Забронированный или прошедший слот выключить нельзя,
// повторное выключение ничего не меняет.
func (s *SlotService) Inactivate(ctx context.Context, slotID uuid.UUID) error {
	ctx, span := slotTracer.Start(ctx, "timeslot.inactivate", trace.WithAttributes(
		attribute.String("slot_id", slotID.String()),
	))
	defer span.End()

	now := s.clock()
	var passed bool
	err := s.tx.WithTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		passed = false
		slot, err := repos.Slots.GetByIDForUpdate(ctx, slotID)
		if err != nil {
			return fmt.Errorf("get slot: %w", err)
		}
		if slot == nil {
			return ErrSlotNotFound
		}

		switch {
		case slot.Status == model.SlotStatusInactive:
			return nil
		case slot.Status == model.SlotStatusPassed:
			return fmt.Errorf("%w: slot has passed", ErrScheduleConflict)
		case slot.HasPassed(now):
			if _, err := repos.Slots.MarkPassed(ctx, slot.ID); err != nil {
				return err
			}
			passed = true
			return nil
		case slot.Status == model.SlotStatusReserved || slot.PatientID != nil:
			return fmt.Errorf("%w: slot is reserved", ErrScheduleConflict)
		}
		return repos.Slots.SetStatus(ctx, slot.ID, model.SlotStatusInactive)
	})
	if err == nil && passed {
		s.metrics.AddPassed(1)
		err = fmt.Errorf("%w: slot has passed", ErrScheduleConflict)
	}
	if err != nil {
		span.RecordError(err)
		s.logRejection("Slot inactivation rejected", err, zap.String("slot_id", slotID.String()))
		return err
	}

	s.logger.Info("Slot inactivated", zap.String("slot_id", slotID.String()))
	return nil
}

// GetPatientAppointments записи пациента с врачом и адресом клиники
func (s *SlotService) GetPatientAppointments(ctx context.Context, patientID uuid.UUID) ([]model.PatientAppointment, error) {
	patient, err := s.repos.Patients.GetByID(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("get patient: %w", err)
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	slots, err := s.repos.Slots.ListByPatient(ctx, patientID)
	if err != nil {
		s.logger.Error("Failed to list patient slots", zap.String("patient_id", patientID.String()), zap.Error(err))
		return nil, fmt.Errorf("list patient slots: %w", err)
	}

	physicians := make(map[uuid.UUID]*model.Physician)
	appointments := make([]model.PatientAppointment, 0, len(slots))
	for _, slot := range slots {
		physician, ok := physicians[slot.PhysicianID]
		if !ok {
			physician, err = s.repos.Physicians.GetByID(ctx, slot.PhysicianID)
			if err != nil {
				return nil, fmt.Errorf("get physician: %w", err)
			}
			physicians[slot.PhysicianID] = physician
		}

		appointment := model.PatientAppointment{
			ID:              slot.ID,
			AppointmentDate: slot.Date,
			StartTime:       slot.StartTime,
			PhysicianID:     slot.PhysicianID,
		}
		if physician != nil {
			appointment.Physician = physician.DisplayName()
			if physician.Clinic != nil {
				appointment.Address = physician.Clinic.City + ", " + physician.Clinic.Address
			}
		}
		appointments = append(appointments, appointment)
	}
	return appointments, nil
}

// CheckForPassedTimeSlots переводит в passed все начавшиеся свободные и забронированные слоты
func (s *SlotService) CheckForPassedTimeSlots(ctx context.Context) (int64, error) {
	ctx, span := slotTracer.Start(ctx, "timeslot.check_passed")
	defer span.End()

	n, err := s.repos.Slots.MarkPassedBefore(ctx, s.clock())
	if err != nil {
		span.RecordError(err)
		s.logger.Error("Failed to mark passed slots", zap.Error(err))
		return 0, fmt.Errorf("check passed slots: %w", err)
	}

	span.SetAttributes(attribute.Int64("slots_passed", n))
	s.metrics.AddPassed(n)
	if n > 0 {
		s.logger.Info("Passed slots marked", zap.Int64("count", n))
	}
	return n, nil
}

// logRejection пишет отказы по состоянию на уровне Info, остальное как ошибку
func (s *SlotService) logRejection(msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	switch {
	case errors.Is(err, ErrScheduleConflict), errors.Is(err, ErrSlotNotFound), errors.Is(err, ErrPatientNotFound):
		s.logger.Info(msg, fields...)
	default:
		s.logger.Error(msg, fields...)
	}
}
