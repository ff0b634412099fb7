package service

import "errors"

var (
	ErrNoMatchingWorkWindow = errors.New("clinic has no working hours for this weekday")
	ErrOutsideWorkingHours  = errors.New("schedule is outside clinic working hours")
	ErrInvalidTimeRange     = errors.New("start time must be before end time")
	ErrInvalidInterval      = errors.New("time slot interval must be between 15 and 60 minutes")

	ErrSlotNotFound      = errors.New("time slot not found")
	ErrScheduleNotFound  = errors.New("schedule not found")
	ErrPatientNotFound   = errors.New("patient not found")
	ErrPhysicianNotFound = errors.New("physician not found")
	ErrClinicNotFound    = errors.New("clinic not found")

	// ErrScheduleConflict отказ по состоянию: слот занят, прошёл, неактивен или чужой
	ErrScheduleConflict = errors.New("schedule conflict")
)
