package model

import (
	"time"

	"github.com/google/uuid"
)

// DayAppointment слот в представлении расписания.
// Patient заполняется только в приватном представлении.
type DayAppointment struct {
	ID        uuid.UUID    `json:"id"`
	StartTime TimeOfDay    `json:"start_time"`
	Duration  int          `json:"duration_minutes"`
	Status    SlotStatus   `json:"status"`
	Patient   *PatientInfo `json:"patient_info,omitempty"`
}

// PhysicianDaySchedule день расписания врача
type PhysicianDaySchedule struct {
	ID        uuid.UUID        `json:"id"`
	Date      time.Time        `json:"date"`
	StartTime TimeOfDay        `json:"start_time"`
	EndTime   TimeOfDay        `json:"end_time"`
	Schedule  []DayAppointment `json:"schedule"`
}

// PatientAppointment запись пациента с контекстом врача и адресом клиники
type PatientAppointment struct {
	ID              uuid.UUID `json:"id"`
	AppointmentDate time.Time `json:"appointment_date"`
	StartTime       TimeOfDay `json:"start_time"`
	PhysicianID     uuid.UUID `json:"physician_id"`
	Physician       string    `json:"physician"`
	Address         string    `json:"address"`
}
