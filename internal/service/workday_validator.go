package service

import (
	"fmt"

	"github.com/Freeeeeet/clinic_scheduler/internal/model"
)

// ValidateTimeRange проверяет что окно непустое и лежит внутри суток
func ValidateTimeRange(start, end model.TimeOfDay) error {
	if !start.Valid() || !end.Valid() || !start.Before(end) {
		return fmt.Errorf("%w: %s-%s", ErrInvalidTimeRange, start, end)
	}
	return nil
}

// ValidateWorkWindow сверяет окно приёма с часами работы клиники на этот день недели.
// window == nil означает, что в этот день клиника закрыта.
func ValidateWorkWindow(window *model.WorkWindow, weekday model.Weekday, start, end model.TimeOfDay) error {
	if window == nil {
		return fmt.Errorf("%w: %s", ErrNoMatchingWorkWindow, weekday)
	}
	if !window.Contains(start, end) {
		return fmt.Errorf("%w: %s-%s not within %s-%s on %s",
			ErrOutsideWorkingHours, start, end, window.Opening, window.Closing, weekday)
	}
	return nil
}
