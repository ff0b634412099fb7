package callbacks

import (
	"github.com/Freeeeeet/clinic_scheduler/internal/service"
	"go.uber.org/zap"
)

// Handler обрабатывает нажатия на inline кнопки
type Handler struct {
	patientService *service.PatientService
	slotService    *service.SlotService
	logger         *zap.Logger
}

func NewHandler(patientService *service.PatientService, slotService *service.SlotService, logger *zap.Logger) *Handler {
	return &Handler{
		patientService: patientService,
		slotService:    slotService,
		logger:         logger,
	}
}
