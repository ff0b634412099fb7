package service

import (
	"fmt"
	"iter"

	"github.com/Freeeeeet/clinic_scheduler/internal/model"
)

const (
	MinSlotInterval = 15
	MaxSlotInterval = 60
)

func ValidateInterval(interval int) error {
	if interval < MinSlotInterval || interval > MaxSlotInterval {
		return fmt.Errorf("%w: got %d", ErrInvalidInterval, interval)
	}
	return nil
}

// GenerateSlots нарезает [start, end) на свободные слоты длиной interval.
// Слот создаётся только если целиком помещается до end. Последовательность
// ленивая и может обходиться повторно.
func GenerateSlots(start, end model.TimeOfDay, interval int) iter.Seq[model.TimeSlot] {
	return func(yield func(model.TimeSlot) bool) {
		if interval <= 0 {
			return
		}
		for t := start; t <= end.Add(-interval); t = t.Add(interval) {
			slot := model.TimeSlot{
				StartTime:       t,
				DurationMinutes: interval,
				Status:          model.SlotStatusFree,
			}
			if !yield(slot) {
				return
			}
		}
	}
}
