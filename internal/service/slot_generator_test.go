package service

import (
	"slices"
	"testing"

	"github.com/Freeeeeet/clinic_scheduler/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func starts(seq func(func(model.TimeSlot) bool)) []string {
	var result []string
	for slot := range seq {
		result = append(result, slot.StartTime.String())
	}
	return result
}

func TestGenerateSlots(t *testing.T) {
	tests := []struct {
		name     string
		start    model.TimeOfDay
		end      model.TimeOfDay
		interval int
		want     []string
	}{
		{"even split", model.NewTimeOfDay(9, 0), model.NewTimeOfDay(10, 0), 15, []string{"09:00", "09:15", "09:30", "09:45"}},
		{"partial tail dropped", model.NewTimeOfDay(9, 0), model.NewTimeOfDay(10, 10), 30, []string{"09:00", "09:30"}},
		{"exact single slot", model.NewTimeOfDay(9, 0), model.NewTimeOfDay(10, 0), 60, []string{"09:00"}},
		{"interval longer than window", model.NewTimeOfDay(9, 0), model.NewTimeOfDay(9, 45), 60, nil},
		{"empty window", model.NewTimeOfDay(9, 0), model.NewTimeOfDay(9, 0), 15, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, starts(GenerateSlots(tt.start, tt.end, tt.interval)))
		})
	}
}

func TestGenerateSlots_SlotsAreFreeAndFitWindow(t *testing.T) {
	start, end := model.NewTimeOfDay(8, 0), model.NewTimeOfDay(17, 50)

	slots := slices.Collect(GenerateSlots(start, end, 20))
	require.Len(t, slots, 29)
	for i, slot := range slots {
		assert.Equal(t, model.SlotStatusFree, slot.Status)
		assert.Nil(t, slot.PatientID)
		assert.Equal(t, 20, slot.DurationMinutes)
		assert.False(t, slot.EndTime().After(end))
		if i > 0 {
			assert.Equal(t, slots[i-1].EndTime(), slot.StartTime)
		}
	}
}

func TestGenerateSlots_StopsEarly(t *testing.T) {
	n := 0
	for range GenerateSlots(model.NewTimeOfDay(0, 0), model.NewTimeOfDay(23, 0), 15) {
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3, n)
}

func TestValidateInterval(t *testing.T) {
	for _, interval := range []int{15, 30, 60} {
		assert.NoError(t, ValidateInterval(interval))
	}
	for _, interval := range []int{0, 14, 61, -15} {
		assert.ErrorIs(t, ValidateInterval(interval), ErrInvalidInterval)
	}
}
