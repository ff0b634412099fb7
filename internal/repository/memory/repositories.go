package memory

import (
	"context"
	"sort"
	"time"

	"github.com/Freeeeeet/clinic_scheduler/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

type workWindowRepo struct {
	s  *Store
	tx bool // true внутри WithTx
}

func (r *workWindowRepo) GetByClinicAndWeekday(_ context.Context, clinicID uuid.UUID, weekday model.Weekday) (*model.WorkWindow, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	w, ok := r.s.data.windows[windowKey{clinicID, weekday}]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r *workWindowRepo) ListByClinic(_ context.Context, clinicID uuid.UUID) ([]*model.WorkWindow, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var result []*model.WorkWindow
	for _, day := range model.Weekdays {
		if w, ok := r.s.data.windows[windowKey{clinicID, day}]; ok {
			result = append(result, &w)
		}
	}
	return result, nil
}

func (r *workWindowRepo) Upsert(_ context.Context, w *model.WorkWindow) error {
	defer r.s.lockWrite(r.tx)()
	if _, ok := r.s.data.clinics[w.ClinicID]; !ok {
		return &pgconn.PgError{Code: "23503", ConstraintName: "work_windows_clinic_id_fkey", Message: "clinic does not exist"}
	}
	key := windowKey{w.ClinicID, w.Weekday}
	if existing, ok := r.s.data.windows[key]; ok {
		w.ID = existing.ID
	} else if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	w.UpdatedAt = r.s.clock()
	r.s.data.windows[key] = *w
	return nil
}

type physicianRepo struct {
	s  *Store
	tx bool
}

func (r *physicianRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Physician, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.data.physicians[id]
	if !ok {
		return nil, nil
	}
	if c, ok := r.s.data.clinics[p.ClinicID]; ok {
		p.Clinic = &c
	}
	return &p, nil
}

type patientRepo struct {
	s  *Store
	tx bool
}

func (r *patientRepo) find(match func(model.Patient) bool) *model.Patient {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.data.patients {
		if match(p) {
			return &p
		}
	}
	return nil
}

func (r *patientRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	return r.find(func(p model.Patient) bool { return p.ID == id }), nil
}

func (r *patientRepo) GetByAccountID(_ context.Context, accountID uuid.UUID) (*model.Patient, error) {
	return r.find(func(p model.Patient) bool { return p.AccountID == accountID }), nil
}

func (r *patientRepo) GetByTelegramID(_ context.Context, telegramID int64) (*model.Patient, error) {
	return r.find(func(p model.Patient) bool { return p.TelegramID != nil && *p.TelegramID == telegramID }), nil
}

func (r *patientRepo) GetByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Patient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := make(map[uuid.UUID]*model.Patient, len(ids))
	for _, id := range ids {
		if p, ok := r.s.data.patients[id]; ok {
			result[id] = &p
		}
	}
	return result, nil
}

func (r *patientRepo) LinkTelegram(_ context.Context, accountID uuid.UUID, telegramID int64) (bool, error) {
	defer r.s.lockWrite(r.tx)()
	found := false
	for id, p := range r.s.data.patients {
		switch {
		case p.AccountID == accountID:
			tg := telegramID
			p.TelegramID = &tg
			found = true
		case p.TelegramID != nil && *p.TelegramID == telegramID:
			p.TelegramID = nil
		default:
			continue
		}
		r.s.data.patients[id] = p
	}
	return found, nil
}

type scheduleRepo struct {
	s  *Store
	tx bool
}

func (r *scheduleRepo) GetByPhysicianAndDate(_ context.Context, physicianID uuid.UUID, date time.Time) (*model.DailySchedule, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.data.byDay[scheduleKey{physicianID, dateKey(date)}]
	if !ok {
		return nil, nil
	}
	return r.s.withSlots(r.s.data.schedules[id]), nil
}

// LockByPhysicianAndDate транзакции уже сериализованы, блокировка строки не нужна
func (r *scheduleRepo) LockByPhysicianAndDate(ctx context.Context, physicianID uuid.UUID, date time.Time) (*model.DailySchedule, error) {
	return r.GetByPhysicianAndDate(ctx, physicianID, date)
}

func (r *scheduleRepo) Create(_ context.Context, sc *model.DailySchedule) error {
	defer r.s.lockWrite(r.tx)()
	key := scheduleKey{sc.PhysicianID, dateKey(sc.Date)}
	if _, exists := r.s.data.byDay[key]; exists {
		return uniqueViolation("daily_schedules_physician_id_date_key")
	}
	if sc.ID == uuid.Nil {
		sc.ID = uuid.New()
	}
	now := r.s.clock()
	sc.CreatedAt, sc.UpdatedAt = now, now
	stored := *sc
	stored.Date = storedDate(sc.Date)
	stored.Slots = nil
	r.s.data.schedules[sc.ID] = stored
	r.s.data.byDay[key] = sc.ID
	return nil
}

func (r *scheduleRepo) UpdateRange(_ context.Context, id uuid.UUID, start, end model.TimeOfDay) error {
	defer r.s.lockWrite(r.tx)()
	sc, ok := r.s.data.schedules[id]
	if !ok {
		return nil
	}
	sc.StartTime, sc.EndTime, sc.UpdatedAt = start, end, r.s.clock()
	r.s.data.schedules[id] = sc
	return nil
}

func (r *scheduleRepo) ListByPhysician(_ context.Context, physicianID uuid.UUID) ([]*model.DailySchedule, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.sortedSchedules(func(sc model.DailySchedule) bool { return sc.PhysicianID == physicianID }), nil
}

func (r *scheduleRepo) ListBefore(_ context.Context, date time.Time) ([]*model.DailySchedule, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	limit := dateKey(date)
	return r.s.sortedSchedules(func(sc model.DailySchedule) bool { return dateKey(sc.Date) < limit }), nil
}

func (r *scheduleRepo) ListByPhysicianAfter(_ context.Context, physicianID uuid.UUID, date time.Time) ([]*model.DailySchedule, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	limit := dateKey(date)
	return r.s.sortedSchedules(func(sc model.DailySchedule) bool {
		return sc.PhysicianID == physicianID && dateKey(sc.Date) > limit
	}), nil
}

func (r *scheduleRepo) Delete(_ context.Context, id uuid.UUID) error {
	defer r.s.lockWrite(r.tx)()
	sc, ok := r.s.data.schedules[id]
	if !ok {
		return nil
	}
	delete(r.s.data.schedules, id)
	delete(r.s.data.byDay, scheduleKey{sc.PhysicianID, dateKey(sc.Date)})
	for slotID, slot := range r.s.data.slots {
		if slot.ScheduleID == id {
			delete(r.s.data.slots, slotID)
		}
	}
	return nil
}

type slotRepo struct {
	s  *Store
	tx bool
}

func (r *slotRepo) CreateBatch(_ context.Context, slots []model.TimeSlot) error {
	defer r.s.lockWrite(r.tx)()
	taken := make(map[uuid.UUID]map[model.TimeOfDay]bool)
	for _, slot := range r.s.data.slots {
		if taken[slot.ScheduleID] == nil {
			taken[slot.ScheduleID] = make(map[model.TimeOfDay]bool)
		}
		taken[slot.ScheduleID][slot.StartTime] = true
	}
	for _, slot := range slots {
		if taken[slot.ScheduleID][slot.StartTime] {
			return uniqueViolation("time_slots_schedule_id_start_time_key")
		}
	}

	now := r.s.clock()
	for i := range slots {
		if slots[i].ID == uuid.Nil {
			slots[i].ID = uuid.New()
		}
		slots[i].CreatedAt = now
		r.s.data.slots[slots[i].ID] = slots[i]
	}
	return nil
}

func (r *slotRepo) GetByID(_ context.Context, id uuid.UUID) (*model.SlotWithSchedule, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	slot, ok := r.s.data.slots[id]
	if !ok {
		return nil, nil
	}
	return r.s.slotWithSchedule(slot), nil
}

func (r *slotRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.SlotWithSchedule, error) {
	return r.GetByID(ctx, id)
}

// update применяет fn к слоту под блокировкой; false если слота нет или fn отказал
func (r *slotRepo) update(id uuid.UUID, fn func(*model.TimeSlot) bool) bool {
	defer r.s.lockWrite(r.tx)()
	slot, ok := r.s.data.slots[id]
	if !ok || !fn(&slot) {
		return false
	}
	r.s.data.slots[id] = slot
	return true
}

func (r *slotRepo) Reserve(_ context.Context, slotID, patientID uuid.UUID) (bool, error) {
	return r.update(slotID, func(slot *model.TimeSlot) bool {
		if slot.Status != model.SlotStatusFree {
			return false
		}
		id := patientID
		slot.Status, slot.PatientID = model.SlotStatusReserved, &id
		return true
	}), nil
}

func (r *slotRepo) Release(_ context.Context, slotID, patientID uuid.UUID) (bool, error) {
	return r.update(slotID, func(slot *model.TimeSlot) bool {
		if slot.Status != model.SlotStatusReserved || slot.PatientID == nil || *slot.PatientID != patientID {
			return false
		}
		slot.Status, slot.PatientID = model.SlotStatusFree, nil
		return true
	}), nil
}

func (r *slotRepo) SetStatus(_ context.Context, slotID uuid.UUID, status model.SlotStatus) error {
	r.update(slotID, func(slot *model.TimeSlot) bool {
		slot.Status = status
		return true
	})
	return nil
}

func (r *slotRepo) MarkPassed(_ context.Context, slotID uuid.UUID) (bool, error) {
	return r.update(slotID, markPassed), nil
}

func markPassed(slot *model.TimeSlot) bool {
	if slot.Status != model.SlotStatusFree && slot.Status != model.SlotStatusReserved {
		return false
	}
	slot.Status = model.SlotStatusPassed
	return true
}

func (r *slotRepo) MarkPassedBefore(_ context.Context, now time.Time) (int64, error) {
	defer r.s.lockWrite(r.tx)()
	var n int64
	for id, slot := range r.s.data.slots {
		sc := r.s.data.schedules[slot.ScheduleID]
		if !slot.HasPassed(sc.Date, now) || !markPassed(&slot) {
			continue
		}
		r.s.data.slots[id] = slot
		n++
	}
	return n, nil
}

func (r *slotRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*model.SlotWithSchedule, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var result []*model.SlotWithSchedule
	for _, slot := range r.s.data.slots {
		if slot.PatientID != nil && *slot.PatientID == patientID {
			result = append(result, r.s.slotWithSchedule(slot))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].StartTime < result[j].StartTime
	})
	return result, nil
}

type archiveRepo struct {
	s  *Store
	tx bool
}

func (r *archiveRepo) CreateBatch(_ context.Context, rows []model.ArchivedSchedule) error {
	defer r.s.lockWrite(r.tx)()
	for i := range rows {
		if rows[i].ID == uuid.Nil {
			rows[i].ID = uuid.New()
		}
		row := rows[i]
		row.Date = storedDate(row.Date)
		r.s.data.archive = append(r.s.data.archive, row)
	}
	return nil
}

func (r *archiveRepo) ListByPhysician(_ context.Context, physicianID uuid.UUID) ([]*model.ArchivedSchedule, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var result []*model.ArchivedSchedule
	for _, row := range r.s.data.archive {
		if row.PhysicianID == physicianID {
			row := row
			result = append(result, &row)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].StartTime < result[j].StartTime
	})
	return result, nil
}
