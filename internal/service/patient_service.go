package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/clinic_scheduler/internal/model"
	"github.com/Freeeeeet/clinic_scheduler/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PatientService struct {
	patients repository.PatientRepository
	logger   *zap.Logger
}

func NewPatientService(patients repository.PatientRepository, logger *zap.Logger) *PatientService {
	return &PatientService{
		patients: patients,
		logger:   logger,
	}
}

// LinkTelegram привязывает чат Telegram к пациенту по ID учётной записи
func (s *PatientService) LinkTelegram(ctx context.Context, accountID uuid.UUID, telegramID int64) (*model.Patient, error) {
	ok, err := s.patients.LinkTelegram(ctx, accountID, telegramID)
	if err != nil {
		s.logger.Error("Failed to link telegram",
			zap.String("account_id", accountID.String()),
			zap.Int64("telegram_id", telegramID),
			zap.Error(err))
		return nil, fmt.Errorf("link telegram: %w", err)
	}
	if !ok {
		return nil, ErrPatientNotFound
	}

	patient, err := s.patients.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("get patient: %w", err)
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	s.logger.Info("Telegram linked",
		zap.String("patient_id", patient.ID.String()),
		zap.Int64("telegram_id", telegramID))
	return patient, nil
}

// GetByTelegramID пациент, привязанный к чату
func (s *PatientService) GetByTelegramID(ctx context.Context, telegramID int64) (*model.Patient, error) {
	patient, err := s.patients.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("get patient by telegram id: %w", err)
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}
	return patient, nil
}
