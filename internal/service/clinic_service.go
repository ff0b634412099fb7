package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/clinic_scheduler/internal/model"
	"github.com/Freeeeeet/clinic_scheduler/internal/repository"
	"github.com/Freeeeeet/clinic_scheduler/internal/repository/base"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ClinicService часы работы клиник
type ClinicService struct {
	windows repository.WorkWindowRepository
	logger  *zap.Logger
}

func NewClinicService(windows repository.WorkWindowRepository, logger *zap.Logger) *ClinicService {
	return &ClinicService{
		windows: windows,
		logger:  logger,
	}
}

// SetWorkWindow задаёт часы работы клиники на день недели
func (s *ClinicService) SetWorkWindow(ctx context.Context, clinicID uuid.UUID, weekday model.Weekday, opening, closing model.TimeOfDay) (*model.WorkWindow, error) {
	if !weekday.Valid() {
		return nil, fmt.Errorf("%w: unknown weekday %q", ErrInvalidTimeRange, weekday)
	}
	if err := ValidateTimeRange(opening, closing); err != nil {
		return nil, err
	}

	window := &model.WorkWindow{
		ClinicID: clinicID,
		Weekday:  weekday,
		Opening:  opening,
		Closing:  closing,
	}
	if err := s.windows.Upsert(ctx, window); err != nil {
		if base.IsForeignKeyViolation(err) {
			return nil, ErrClinicNotFound
		}
		s.logger.Error("Failed to save work window",
			zap.String("clinic_id", clinicID.String()),
			zap.String("weekday", string(weekday)),
			zap.Error(err))
		return nil, fmt.Errorf("save work window: %w", err)
	}

	s.logger.Info("Work window saved",
		zap.String("clinic_id", clinicID.String()),
		zap.String("weekday", string(weekday)),
		zap.String("opening", opening.String()),
		zap.String("closing", closing.String()))
	return window, nil
}

// ListWorkWindows часы работы клиники с понедельника по воскресенье
func (s *ClinicService) ListWorkWindows(ctx context.Context, clinicID uuid.UUID) ([]*model.WorkWindow, error) {
	windows, err := s.windows.ListByClinic(ctx, clinicID)
	if err != nil {
		return nil, fmt.Errorf("list work windows: %w", err)
	}
	return windows, nil
}
