package service

import (
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/clinic_scheduler/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeAppointment_ReservesFreeSlot(t *testing.T) {
	env := newTestEnv(t)
	slots := env.publish(env.day(1), "09:00", "10:00", 30)

	require.NoError(t, env.slots.MakeAppointment(env.ctx, env.patient.AccountID, slots[0].ID))

	got := env.slot(slots[0].ID)
	assert.Equal(t, model.SlotStatusReserved, got.Status)
	require.NotNil(t, got.PatientID)
	assert.Equal(t, env.patient.ID, *got.PatientID)
}

func TestMakeAppointment_Rejections(t *testing.T) {
	env := newTestEnv(t)
	slots := env.publish(env.day(1), "09:00", "10:00", 30)
	other := env.addPatient("Пётр")
	require.NoError(t, env.slots.MakeAppointment(env.ctx, other.AccountID, slots[1].ID))

	err := env.slots.MakeAppointment(env.ctx, env.patient.AccountID, uuid.New())
	assert.ErrorIs(t, err, ErrSlotNotFound)

	err = env.slots.MakeAppointment(env.ctx, uuid.New(), slots[0].ID)
	assert.ErrorIs(t, err, ErrPatientNotFound)
	assert.Equal(t, model.SlotStatusFree, env.slot(slots[0].ID).Status)

	err = env.slots.MakeAppointment(env.ctx, env.patient.AccountID, slots[1].ID)
	assert.ErrorIs(t, err, ErrScheduleConflict)
	assert.Equal(t, other.ID, *env.slot(slots[1].ID).PatientID)
}

func TestMakeAppointment_PassedSlotIsMarked(t *testing.T) {
	env := newTestEnv(t)
	slots := env.publish(env.day(0), "09:00", "10:00", 30)

	err := env.slots.MakeAppointment(env.ctx, env.patient.AccountID, slots[0].ID)
	require.ErrorIs(t, err, ErrScheduleConflict)

	got := env.slot(slots[0].ID)
	assert.Equal(t, model.SlotStatusPassed, got.Status)
	assert.Nil(t, got.PatientID)
}

func TestMakeAppointment_InactiveSlot(t *testing.T) {
	env := newTestEnv(t)
	slots := env.publish(env.day(1), "09:00", "10:00", 30)
	require.NoError(t, env.slots.Inactivate(env.ctx, slots[0].ID))

	err := env.slots.MakeAppointment(env.ctx, env.patient.AccountID, slots[0].ID)
	assert.ErrorIs(t, err, ErrScheduleConflict)
}

// Хранилище в памяти сериализует транзакции, так что тест проверяет исход гонки на уровне сервиса.
// Само условное обновление без сериализации проверяет TestSlotRepo_ReserveConcurrentHasOneWinner,
// SQL для Postgres проверяют тесты TimeSlotRepo через pgxmock.
func TestMakeAppointment_ConcurrentBookingsHaveOneWinner(t *testing.T) {
	env := newTestEnv(t)
	slots := env.publish(env.day(1), "09:00", "09:30", 30)
	require.Len(t, slots, 1)

	const n = 20
	patients := make([]model.Patient, n)
	for i := range patients {
		patients[i] = env.addPatient("Пациент")
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes []uuid.UUID
		conflicts int
	)
	start := make(chan struct{})
	for _, p := range patients {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			err := env.slots.MakeAppointment(env.ctx, p.AccountID, slots[0].ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes = append(successes, p.ID)
			case assert.ErrorIs(t, err, ErrScheduleConflict):
				conflicts++
			}
		}()
	}
	close(start)
	wg.Wait()

	require.Len(t, successes, 1)
	assert.Equal(t, n-1, conflicts)

	got := env.slot(slots[0].ID)
	assert.Equal(t, model.SlotStatusReserved, got.Status)
	assert.Equal(t, successes[0], *got.PatientID)
}

func TestReleaseAppointment(t *testing.T) {
	env := newTestEnv(t)
	slots := env.publish(env.day(1), "09:00", "10:00", 30)
	other := env.addPatient("Пётр")
	require.NoError(t, env.slots.MakeAppointment(env.ctx, env.patient.AccountID, slots[0].ID))

	err := env.slots.ReleaseAppointment(env.ctx, other.AccountID, slots[0].ID)
	assert.ErrorIs(t, err, ErrScheduleConflict)
	assert.Equal(t, model.SlotStatusReserved, env.slot(slots[0].ID).Status)

	err = env.slots.ReleaseAppointment(env.ctx, env.patient.AccountID, slots[1].ID)
	assert.ErrorIs(t, err, ErrScheduleConflict)

	err = env.slots.ReleaseAppointment(env.ctx, env.patient.AccountID, uuid.New())
	assert.ErrorIs(t, err, ErrSlotNotFound)

	require.NoError(t, env.slots.ReleaseAppointment(env.ctx, env.patient.AccountID, slots[0].ID))
	got := env.slot(slots[0].ID)
	assert.Equal(t, model.SlotStatusFree, got.Status)
	assert.Nil(t, got.PatientID)

	// освобождённый слот снова можно забронировать
	require.NoError(t, env.slots.MakeAppointment(env.ctx, other.AccountID, slots[0].ID))
}

func TestReleaseAppointment_StartedSlotIsNoOp(t *testing.T) {
	env := newTestEnv(t)
	slots := env.publish(env.day(0), "13:00", "14:00", 30)
	require.NoError(t, env.slots.MakeAppointment(env.ctx, env.patient.AccountID, slots[0].ID))

	env.now = env.now.Add(90 * time.Minute)
	require.NoError(t, env.slots.ReleaseAppointment(env.ctx, env.patient.AccountID, slots[0].ID))

	got := env.slot(slots[0].ID)
	assert.Equal(t, model.SlotStatusReserved, got.Status)
	assert.Equal(t, env.patient.ID, *got.PatientID)
}

func TestInactivate(t *testing.T) {
	env := newTestEnv(t)
	slots := env.publish(env.day(1), "09:00", "10:00", 30)
	require.NoError(t, env.slots.MakeAppointment(env.ctx, env.patient.AccountID, slots[1].ID))

	require.NoError(t, env.slots.Inactivate(env.ctx, slots[0].ID))
	assert.Equal(t, model.SlotStatusInactive, env.slot(slots[0].ID).Status)
	require.NoError(t, env.slots.Inactivate(env.ctx, slots[0].ID))

	err := env.slots.Inactivate(env.ctx, slots[1].ID)
	assert.ErrorIs(t, err, ErrScheduleConflict)
	assert.Equal(t, model.SlotStatusReserved, env.slot(slots[1].ID).Status)

	assert.ErrorIs(t, env.slots.Inactivate(env.ctx, uuid.New()), ErrSlotNotFound)
}

func TestInactivate_StartedSlot(t *testing.T) {
	env := newTestEnv(t)
	slots := env.publish(env.day(0), "09:00", "10:00", 30)

	err := env.slots.Inactivate(env.ctx, slots[0].ID)
	require.ErrorIs(t, err, ErrScheduleConflict)
	assert.Equal(t, model.SlotStatusPassed, env.slot(slots[0].ID).Status)

	err = env.slots.Inactivate(env.ctx, slots[0].ID)
	assert.ErrorIs(t, err, ErrScheduleConflict)
}

func TestGetPatientAppointments(t *testing.T) {
	env := newTestEnv(t)
	tomorrow := env.publish(env.day(1), "09:00", "10:00", 30)
	later := env.publish(env.day(3), "15:00", "16:00", 60)
	require.NoError(t, env.slots.MakeAppointment(env.ctx, env.patient.AccountID, later[0].ID))
	require.NoError(t, env.slots.MakeAppointment(env.ctx, env.patient.AccountID, tomorrow[1].ID))

	items, err := env.slots.GetPatientAppointments(env.ctx, env.patient.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, tomorrow[1].ID, items[0].ID)
	assert.Equal(t, "09:30", items[0].StartTime.String())
	assert.Equal(t, later[0].ID, items[1].ID)
	for _, item := range items {
		assert.Equal(t, env.physician.ID, item.PhysicianID)
		assert.Equal(t, "Анна Петрова, к.м.н., терапевт", item.Physician)
		assert.Equal(t, "Москва, ул. Ленина, 1", item.Address)
	}

	_, err = env.slots.GetPatientAppointments(env.ctx, uuid.New())
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestCheckForPassedTimeSlots(t *testing.T) {
	env := newTestEnv(t)
	slots := env.publish(env.day(0), "09:00", "14:00", 60)
	require.NoError(t, env.slots.MakeAppointment(env.ctx, env.patient.AccountID, slots[4].ID))
	env.publish(env.day(1), "09:00", "10:00", 30)

	n, err := env.slots.CheckForPassedTimeSlots(env.ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	n, err = env.slots.CheckForPassedTimeSlots(env.ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	// начавшийся забронированный слот тоже переходит в passed и сохраняет пациента
	env.now = env.now.Add(2 * time.Hour)
	n, err = env.slots.CheckForPassedTimeSlots(env.ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	got := env.slot(slots[4].ID)
	assert.Equal(t, model.SlotStatusPassed, got.Status)
	assert.Equal(t, env.patient.ID, *got.PatientID)
	for _, slot := range env.daySlots(env.day(1)) {
		assert.Equal(t, model.SlotStatusFree, slot.Status)
	}
}
