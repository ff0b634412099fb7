package model

import (
	"time"

	"github.com/google/uuid"
)

// DailySchedule опубликованное окно приёма врача на одну дату.
// Владеет своими слотами: они удаляются и архивируются вместе с ним.
type DailySchedule struct {
	ID          uuid.UUID  `json:"id"`
	PhysicianID uuid.UUID  `json:"physician_id"`
	Date        time.Time  `json:"date"`
	StartTime   TimeOfDay  `json:"start_time"`
	EndTime     TimeOfDay  `json:"end_time"`
	Slots       []TimeSlot `json:"slots,omitempty"` // отсортированы по StartTime
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewDaySchedule запрос на публикацию окна приёма
type NewDaySchedule struct {
	Date             time.Time
	StartTime        TimeOfDay
	EndTime          TimeOfDay
	TimeSlotInterval int
}

// ArchivedSchedule плоская историческая запись о прошедшем слоте
type ArchivedSchedule struct {
	ID              uuid.UUID  `json:"id"`
	PhysicianID     uuid.UUID  `json:"physician_id"`
	Date            time.Time  `json:"date"`
	Status          SlotStatus `json:"status"`
	PatientID       *uuid.UUID `json:"patient_id"`
	StartTime       TimeOfDay  `json:"start_time"`
	DurationMinutes int        `json:"duration_minutes"`
	ArchivedAt      time.Time  `json:"archived_at"`
}

// ArchiveSlot снимает архивную копию слота расписания
func ArchiveSlot(schedule *DailySchedule, slot *TimeSlot, archivedAt time.Time) ArchivedSchedule {
	var patientID *uuid.UUID
	if slot.PatientID != nil {
		id := *slot.PatientID
		patientID = &id
	}
	return ArchivedSchedule{
		ID:              uuid.New(),
		PhysicianID:     schedule.PhysicianID,
		Date:            schedule.Date,
		Status:          slot.Status,
		PatientID:       patientID,
		StartTime:       slot.StartTime,
		DurationMinutes: slot.DurationMinutes,
		ArchivedAt:      archivedAt,
	}
}

// MergeOutcome результат согласования нового окна с существующим расписанием
type MergeOutcome string

const (
	MergeCreated   MergeOutcome = "created"
	MergeUnchanged MergeOutcome = "unchanged"
	MergeExtended  MergeOutcome = "extended"
)

// PublishResult итог публикации одного дня
type PublishResult struct {
	ScheduleID   uuid.UUID    `json:"schedule_id"`
	Date         time.Time    `json:"date"`
	Outcome      MergeOutcome `json:"outcome"`
	SlotsCreated int          `json:"slots_created"`
	StartTime    TimeOfDay    `json:"start_time"`
	EndTime      TimeOfDay    `json:"end_time"`
}
