package handlers

import (
	"testing"
	"time"

	"github.com/Freeeeeet/clinic_scheduler/internal/model"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatSchedule_Empty(t *testing.T) {
	text, markup := FormatSchedule(nil)
	assert.Contains(t, text, "нет опубликованного расписания")
	assert.Nil(t, markup)
}

func TestFormatSchedule_ButtonsOnlyForFreeSlots(t *testing.T) {
	free := uuid.New()
	days := []model.PhysicianDaySchedule{{
		ID:        uuid.New(),
		Date:      time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		StartTime: model.NewTimeOfDay(9, 0),
		EndTime:   model.NewTimeOfDay(10, 0),
		Schedule: []model.DayAppointment{
			{ID: free, StartTime: model.NewTimeOfDay(9, 0), Duration: 30, Status: model.SlotStatusFree},
			{ID: uuid.New(), StartTime: model.NewTimeOfDay(9, 30), Duration: 30, Status: model.SlotStatusReserved},
		},
	}}

	text, markup := FormatSchedule(days)
	assert.Contains(t, text, "02.03.2026 (Пн), 09:00-10:00")
	assert.Contains(t, text, "Свободно: 1 из 2")

	kb, ok := markup.(*models.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, kb.InlineKeyboard, 1)
	require.Len(t, kb.InlineKeyboard[0], 1)
	assert.Equal(t, "02.03 09:00", kb.InlineKeyboard[0][0].Text)
	assert.Equal(t, "book:"+free.String(), kb.InlineKeyboard[0][0].CallbackData)
}

func TestFormatSchedule_CapsButtons(t *testing.T) {
	day := model.PhysicianDaySchedule{Date: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)}
	for i := range 60 {
		day.Schedule = append(day.Schedule, model.DayAppointment{
			ID:        uuid.New(),
			StartTime: model.NewTimeOfDay(0, i*15),
			Status:    model.SlotStatusFree,
		})
	}

	_, markup := FormatSchedule([]model.PhysicianDaySchedule{day})
	kb := markup.(*models.InlineKeyboardMarkup)
	total := 0
	for _, row := range kb.InlineKeyboard {
		assert.LessOrEqual(t, len(row), buttonsPerRow)
		total += len(row)
	}
	assert.Equal(t, maxSlotButtons, total)
}

func TestFormatAppointments_ReleaseOnlyUpcoming(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	upcoming := uuid.New()
	items := []model.PatientAppointment{
		{
			ID:              uuid.New(),
			AppointmentDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
			StartTime:       model.NewTimeOfDay(9, 0),
			Physician:       "Иванов Иван (терапевт)",
			Address:         "Москва, ул. Ленина, 1",
		},
		{
			ID:              upcoming,
			AppointmentDate: time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
			StartTime:       model.NewTimeOfDay(10, 30),
			Physician:       "Иванов Иван (терапевт)",
			Address:         "Москва, ул. Ленина, 1",
		},
	}

	text, markup := FormatAppointments(items, now)
	assert.Contains(t, text, "Москва, ул. Ленина, 1")

	kb := markup.(*models.InlineKeyboardMarkup)
	require.Len(t, kb.InlineKeyboard, 1)
	assert.Equal(t, "release:"+upcoming.String(), kb.InlineKeyboard[0][0].CallbackData)
}

func TestFormatAppointments_Empty(t *testing.T) {
	text, markup := FormatAppointments(nil, time.Now())
	assert.Equal(t, "📭 У вас нет записей", text)
	assert.Nil(t, markup)
}

func TestCommandArgUUID(t *testing.T) {
	id := uuid.New()

	got, ok := commandArgUUID("/link " + id.String())
	assert.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = commandArgUUID("/link")
	assert.False(t, ok)
	_, ok = commandArgUUID("/link not-a-uuid")
	assert.False(t, ok)
	_, ok = commandArgUUID("/link " + id.String() + " extra")
	assert.False(t, ok)
}
