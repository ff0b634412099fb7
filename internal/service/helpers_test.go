package service

import (
	"context"
	"testing"
	"time"

	"github.com/Freeeeeet/clinic_scheduler/internal/metrics"
	"github.com/Freeeeeet/clinic_scheduler/internal/model"
	"github.com/Freeeeeet/clinic_scheduler/internal/repository/memory"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var msk = time.FixedZone("MSK", 3*60*60)

// testEnv сервисы поверх хранилища в памяти с управляемыми часами.
// Текущий момент: понедельник 2026-03-02 12:00 MSK.
type testEnv struct {
	t         *testing.T
	ctx       context.Context
	store     *memory.Store
	now       time.Time
	metrics   *metrics.SchedulerMetrics
	clinic    model.Clinic
	physician model.Physician
	patient   model.Patient

	schedules *ScheduleService
	slots     *SlotService
	archive   *ArchiveService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		t:       t,
		ctx:     context.Background(),
		store:   memory.NewStore(),
		now:     time.Date(2026, 3, 2, 12, 0, 0, 0, msk),
		metrics: metrics.NewSchedulerMetrics(prometheus.NewRegistry()),
	}
	clock := func() time.Time { return env.now }
	env.store.SetClock(clock)

	env.clinic = env.store.AddClinic(model.Clinic{Name: "Городская поликлиника", City: "Москва", Address: "ул. Ленина, 1"})
	env.physician = env.store.AddPhysician(model.Physician{
		ClinicID:     env.clinic.ID,
		FirstName:    "Анна",
		LastName:     "Петрова",
		Abbreviation: "к.м.н.",
		Specialty:    "терапевт",
	})
	env.patient = env.store.AddPatient(model.Patient{FirstName: "Иван", LastName: "Иванов", Email: "ivanov@example.com"})

	repos := env.store.Repositories()
	for _, weekday := range []model.Weekday{model.Monday, model.Tuesday, model.Wednesday, model.Thursday, model.Friday} {
		require.NoError(t, repos.WorkWindows.Upsert(env.ctx, &model.WorkWindow{
			ClinicID: env.clinic.ID,
			Weekday:  weekday,
			Opening:  model.NewTimeOfDay(8, 0),
			Closing:  model.NewTimeOfDay(20, 0),
		}))
	}

	logger := zap.NewNop()
	env.schedules = NewScheduleService(repos, env.store, env.metrics, clock, logger)
	env.slots = NewSlotService(repos, env.store, env.metrics, clock, logger)
	env.archive = NewArchiveService(repos, env.store, env.metrics, clock, logger)
	return env
}

// day дата со сдвигом offset дней от сегодняшней
func (e *testEnv) day(offset int) time.Time {
	return model.DateOf(e.now).AddDate(0, 0, offset)
}

func (e *testEnv) request(date time.Time, start, end string, interval int) model.NewDaySchedule {
	e.t.Helper()
	s, err := model.ParseTimeOfDay(start)
	require.NoError(e.t, err)
	en, err := model.ParseTimeOfDay(end)
	require.NoError(e.t, err)
	return model.NewDaySchedule{Date: date, StartTime: s, EndTime: en, TimeSlotInterval: interval}
}

// publish публикует день и возвращает слоты расписания
func (e *testEnv) publish(date time.Time, start, end string, interval int) []model.TimeSlot {
	e.t.Helper()
	_, err := e.schedules.GenerateSchedule(e.ctx, e.physician.ID, e.request(date, start, end, interval))
	require.NoError(e.t, err)
	return e.daySlots(date)
}

func (e *testEnv) daySlots(date time.Time) []model.TimeSlot {
	e.t.Helper()
	sc, err := e.store.Repositories().Schedules.GetByPhysicianAndDate(e.ctx, e.physician.ID, date)
	require.NoError(e.t, err)
	require.NotNil(e.t, sc)
	return sc.Slots
}

func (e *testEnv) slot(id uuid.UUID) *model.SlotWithSchedule {
	e.t.Helper()
	slot, err := e.store.Repositories().Slots.GetByID(e.ctx, id)
	require.NoError(e.t, err)
	require.NotNil(e.t, slot)
	return slot
}

func (e *testEnv) addPatient(first string) model.Patient {
	return e.store.AddPatient(model.Patient{FirstName: first, LastName: "Тестов"})
}
