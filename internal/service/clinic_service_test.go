package service

import (
	"testing"

	"github.com/Freeeeeet/clinic_scheduler/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClinicService_SetWorkWindow(t *testing.T) {
	env := newTestEnv(t)
	clinics := NewClinicService(env.store.Repositories().WorkWindows, zap.NewNop())

	window, err := clinics.SetWorkWindow(env.ctx, env.clinic.ID, model.Saturday, hm(10, 0), hm(14, 0))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, window.ID)

	// повторная запись обновляет тот же день
	updated, err := clinics.SetWorkWindow(env.ctx, env.clinic.ID, model.Saturday, hm(9, 0), hm(15, 0))
	require.NoError(t, err)
	assert.Equal(t, window.ID, updated.ID)

	windows, err := clinics.ListWorkWindows(env.ctx, env.clinic.ID)
	require.NoError(t, err)
	require.Len(t, windows, 6)
	assert.Equal(t, model.Monday, windows[0].Weekday)
	assert.Equal(t, model.Saturday, windows[5].Weekday)
	assert.Equal(t, hm(9, 0), windows[5].Opening)

	// суббота теперь рабочая
	_, err = env.schedules.GenerateSchedule(env.ctx, env.physician.ID, env.request(env.day(5), "09:00", "12:00", 30))
	assert.NoError(t, err)
}

func TestClinicService_SetWorkWindowRejections(t *testing.T) {
	env := newTestEnv(t)
	clinics := NewClinicService(env.store.Repositories().WorkWindows, zap.NewNop())

	_, err := clinics.SetWorkWindow(env.ctx, uuid.New(), model.Monday, hm(9, 0), hm(18, 0))
	assert.ErrorIs(t, err, ErrClinicNotFound)

	_, err = clinics.SetWorkWindow(env.ctx, env.clinic.ID, model.Monday, hm(18, 0), hm(9, 0))
	assert.ErrorIs(t, err, ErrInvalidTimeRange)

	_, err = clinics.SetWorkWindow(env.ctx, env.clinic.ID, model.Weekday("HOLIDAY"), hm(9, 0), hm(18, 0))
	assert.ErrorIs(t, err, ErrInvalidTimeRange)
}
