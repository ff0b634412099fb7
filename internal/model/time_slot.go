package model

import (
	"time"

	"github.com/google/uuid"
)

type SlotStatus string

const (
	SlotStatusFree     SlotStatus = "free"
	SlotStatusReserved SlotStatus = "reserved"
	SlotStatusPassed   SlotStatus = "passed"
	SlotStatusInactive SlotStatus = "inactive"
)

// TimeSlot интервал записи внутри дневного расписания врача
type TimeSlot struct {
	ID              uuid.UUID  `json:"id"`
	ScheduleID      uuid.UUID  `json:"schedule_id"`
	StartTime       TimeOfDay  `json:"start_time"`
	DurationMinutes int        `json:"duration_minutes"`
	Status          SlotStatus `json:"status"`
	PatientID       *uuid.UUID `json:"patient_id"` // nil пока слот не забронирован
	CreatedAt       time.Time  `json:"created_at"`
}

// EndTime время окончания слота
func (s *TimeSlot) EndTime() TimeOfDay {
	return s.StartTime.Add(s.DurationMinutes)
}

// StartsAt момент начала слота для даты расписания в часовом поясе loc.
// Дата из БД приходит полночью UTC, поэтому берём только год, месяц и день.
func (s *TimeSlot) StartsAt(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, s.StartTime.Hour(), s.StartTime.Minute(), 0, 0, loc)
}

// HasPassed сообщает, что начало слота строго раньше now
func (s *TimeSlot) HasPassed(date, now time.Time) bool {
	return s.StartsAt(date, now.Location()).Before(now)
}

// SlotWithSchedule слот вместе с контекстом расписания (дата и врач)
type SlotWithSchedule struct {
	TimeSlot
	Date        time.Time `json:"date"`
	PhysicianID uuid.UUID `json:"physician_id"`
}

// HasPassed сообщает, что слот уже начался относительно now
func (s *SlotWithSchedule) HasPassed(now time.Time) bool {
	return s.TimeSlot.HasPassed(s.Date, now)
}
