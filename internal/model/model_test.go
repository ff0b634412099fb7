package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{"09:00", NewTimeOfDay(9, 0), false},
		{"23:45", NewTimeOfDay(23, 45), false},
		{"08:30:00", NewTimeOfDay(8, 30), false},
		{"08:30:15", 0, true},
		{"24:00", 0, true},
		{"9am", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeOfDay_Text(t *testing.T) {
	tod := NewTimeOfDay(7, 5)
	text, err := tod.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "07:05", string(text))

	var parsed TimeOfDay
	require.NoError(t, parsed.UnmarshalText([]byte("18:40")))
	assert.Equal(t, NewTimeOfDay(18, 40), parsed)
	assert.Error(t, parsed.UnmarshalText([]byte("noon")))
}

func TestWeekday(t *testing.T) {
	assert.Equal(t, Monday, WeekdayOf(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, Sunday, WeekdayOf(time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)))

	w, err := ParseWeekday(" friday ")
	require.NoError(t, err)
	assert.Equal(t, Friday, w)

	_, err = ParseWeekday("FUNDAY")
	assert.Error(t, err)
	assert.Len(t, Weekdays, 7)
}

func TestTimeSlot_HasPassed(t *testing.T) {
	msk := time.FixedZone("MSK", 3*60*60)
	// дата из БД приходит полночью UTC
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	slot := TimeSlot{StartTime: NewTimeOfDay(10, 0), DurationMinutes: 30}

	assert.False(t, slot.HasPassed(date, time.Date(2026, 3, 2, 9, 59, 0, 0, msk)))
	assert.False(t, slot.HasPassed(date, time.Date(2026, 3, 2, 10, 0, 0, 0, msk)))
	assert.True(t, slot.HasPassed(date, time.Date(2026, 3, 2, 10, 0, 1, 0, msk)))
	assert.True(t, slot.HasPassed(date, time.Date(2026, 3, 3, 8, 0, 0, 0, msk)))
	assert.Equal(t, NewTimeOfDay(10, 30), slot.EndTime())
}

func TestWorkWindow_Contains(t *testing.T) {
	w := WorkWindow{Opening: NewTimeOfDay(8, 0), Closing: NewTimeOfDay(16, 0)}

	assert.True(t, w.Contains(NewTimeOfDay(8, 0), NewTimeOfDay(16, 0)))
	assert.False(t, w.Contains(NewTimeOfDay(7, 59), NewTimeOfDay(12, 0)))
	assert.False(t, w.Contains(NewTimeOfDay(12, 0), NewTimeOfDay(16, 1)))
}

func TestArchiveSlotCopiesPatient(t *testing.T) {
	schedule := &DailySchedule{PhysicianID: uuid.New(), Date: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)}
	patientID := uuid.New()
	slot := &TimeSlot{StartTime: NewTimeOfDay(9, 0), DurationMinutes: 15, Status: SlotStatusReserved, PatientID: &patientID}
	archivedAt := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)

	row := ArchiveSlot(schedule, slot, archivedAt)
	assert.Equal(t, schedule.PhysicianID, row.PhysicianID)
	assert.Equal(t, SlotStatusReserved, row.Status)
	assert.Equal(t, 15, row.DurationMinutes)
	assert.Equal(t, archivedAt, row.ArchivedAt)
	require.NotNil(t, row.PatientID)
	assert.Equal(t, patientID, *row.PatientID)

	// копия не связана с исходным слотом
	original := patientID
	*slot.PatientID = uuid.New()
	assert.Equal(t, original, *row.PatientID)
}
