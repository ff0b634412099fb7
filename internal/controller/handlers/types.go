package handlers

import (
	"time"

	"github.com/Freeeeeet/clinic_scheduler/internal/service"
	"go.uber.org/zap"
)

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	patientService  *service.PatientService
	scheduleService *service.ScheduleService
	slotService     *service.SlotService
	clock           func() time.Time
	logger          *zap.Logger
}

// NewHandlers создаёт новый обработчик команд
func NewHandlers(
	patientService *service.PatientService,
	scheduleService *service.ScheduleService,
	slotService *service.SlotService,
	clock func() time.Time,
	logger *zap.Logger,
) *Handlers {
	if clock == nil {
		clock = time.Now
	}
	return &Handlers{
		patientService:  patientService,
		scheduleService: scheduleService,
		slotService:     slotService,
		clock:           clock,
		logger:          logger,
	}
}
