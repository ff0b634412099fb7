// Package memory хранилище в памяти для STORAGE=memory и тестов сервисов.
// Повторяет поведение Postgres: уникальность (врач, дата), каскадное удаление
// слотов и условные обновления статусов.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Freeeeeet/clinic_scheduler/internal/model"
	"github.com/Freeeeeet/clinic_scheduler/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

type windowKey struct {
	clinicID uuid.UUID
	weekday  model.Weekday
}

type scheduleKey struct {
	physicianID uuid.UUID
	date        string
}

type state struct {
	clinics    map[uuid.UUID]model.Clinic
	physicians map[uuid.UUID]model.Physician
	patients   map[uuid.UUID]model.Patient
	windows    map[windowKey]model.WorkWindow
	schedules  map[uuid.UUID]model.DailySchedule
	byDay      map[scheduleKey]uuid.UUID
	slots      map[uuid.UUID]model.TimeSlot
	archive    []model.ArchivedSchedule
}

func newState() state {
	return state{
		clinics:    make(map[uuid.UUID]model.Clinic),
		physicians: make(map[uuid.UUID]model.Physician),
		patients:   make(map[uuid.UUID]model.Patient),
		windows:    make(map[windowKey]model.WorkWindow),
		schedules:  make(map[uuid.UUID]model.DailySchedule),
		byDay:      make(map[scheduleKey]uuid.UUID),
		slots:      make(map[uuid.UUID]model.TimeSlot),
	}
}

// clone копирует карты; значения не меняются на месте, поэтому поверхностной копии достаточно
func (s state) clone() state {
	c := newState()
	for k, v := range s.clinics {
		c.clinics[k] = v
	}
	for k, v := range s.physicians {
		c.physicians[k] = v
	}
	for k, v := range s.patients {
		c.patients[k] = v
	}
	for k, v := range s.windows {
		c.windows[k] = v
	}
	for k, v := range s.schedules {
		c.schedules[k] = v
	}
	for k, v := range s.byDay {
		c.byDay[k] = v
	}
	for k, v := range s.slots {
		c.slots[k] = v
	}
	c.archive = append([]model.ArchivedSchedule(nil), s.archive...)
	return c
}

type Store struct {
	// txMu сериализует транзакции и записи вне их, mu защищает данные на время одной операции
	txMu  sync.Mutex
	mu    sync.RWMutex
	data  state
	clock func() time.Time
}

func NewStore() *Store {
	return &Store{data: newState(), clock: time.Now}
}

// SetClock подменяет источник времени для created_at и updated_at
func (s *Store) SetClock(clock func() time.Time) {
	s.clock = clock
}

// Repositories набор репозиториев поверх хранилища. Их записи ждут завершения
// текущей транзакции, поэтому откат WithTx не затрагивает чужие изменения.
func (s *Store) Repositories() repository.Repositories {
	return s.repositories(false)
}

func (s *Store) repositories(tx bool) repository.Repositories {
	return repository.Repositories{
		WorkWindows: &workWindowRepo{s: s, tx: tx},
		Physicians:  &physicianRepo{s: s, tx: tx},
		Patients:    &patientRepo{s: s, tx: tx},
		Schedules:   &scheduleRepo{s: s, tx: tx},
		Slots:       &slotRepo{s: s, tx: tx},
		Archive:     &archiveRepo{s: s, tx: tx},
	}
}

// lockWrite блокирует данные на запись. Вне транзакции сначала берётся txMu.
func (s *Store) lockWrite(inTx bool) func() {
	if !inTx {
		s.txMu.Lock()
	}
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		if !inTx {
			s.txMu.Unlock()
		}
	}
}

// WithTx выполняет fn последовательно с другими транзакциями и записями.
// Ошибка или паника в fn восстанавливает снимок.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	defer func() {
		if p := recover(); p != nil {
			s.restore(snapshot)
			panic(p)
		}
	}()

	if err := fn(ctx, s.repositories(true)); err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

func (s *Store) restore(snapshot state) {
	s.mu.Lock()
	s.data = snapshot
	s.mu.Unlock()
}

// AddClinic добавляет клинику в реестр
func (s *Store) AddClinic(c model.Clinic) model.Clinic {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	defer s.lockWrite(false)()
	s.data.clinics[c.ID] = c
	return c
}

// AddPhysician добавляет врача в реестр
func (s *Store) AddPhysician(p model.Physician) model.Physician {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.Clinic = nil
	defer s.lockWrite(false)()
	s.data.physicians[p.ID] = p
	return p
}

// AddPatient добавляет пациента в реестр
func (s *Store) AddPatient(p model.Patient) model.Patient {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.AccountID == uuid.Nil {
		p.AccountID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.clock()
	}
	defer s.lockWrite(false)()
	s.data.patients[p.ID] = p
	return p
}

func dateKey(t time.Time) string {
	return t.Format(model.DateLayout)
}

// storedDate приводит дату к полуночи UTC, как её возвращает Postgres
func storedDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint, Message: "duplicate key value violates unique constraint"}
}

// withSlots собирает расписание со слотами, отсортированными по времени начала
func (s *Store) withSlots(sc model.DailySchedule) *model.DailySchedule {
	sc.Slots = nil
	for _, slot := range s.data.slots {
		if slot.ScheduleID == sc.ID {
			sc.Slots = append(sc.Slots, slot)
		}
	}
	sort.Slice(sc.Slots, func(i, j int) bool { return sc.Slots[i].StartTime < sc.Slots[j].StartTime })
	return &sc
}

func (s *Store) sortedSchedules(keep func(model.DailySchedule) bool) []*model.DailySchedule {
	var result []*model.DailySchedule
	for _, sc := range s.data.schedules {
		if keep(sc) {
			result = append(result, s.withSlots(sc))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].PhysicianID.String() < result[j].PhysicianID.String()
	})
	return result
}

func (s *Store) slotWithSchedule(slot model.TimeSlot) *model.SlotWithSchedule {
	sc := s.data.schedules[slot.ScheduleID]
	return &model.SlotWithSchedule{TimeSlot: slot, Date: sc.Date, PhysicianID: sc.PhysicianID}
}
