package repository

import (
	"context"
	"time"

	"github.com/Freeeeeet/clinic_scheduler/internal/model"
	"github.com/google/uuid"
)

// Все методы Get* возвращают (nil, nil), если запись не найдена.

type WorkWindowRepository interface {
	GetByClinicAndWeekday(ctx context.Context, clinicID uuid.UUID, weekday model.Weekday) (*model.WorkWindow, error)
	ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]*model.WorkWindow, error)
	Upsert(ctx context.Context, window *model.WorkWindow) error
}

type PhysicianRepository interface {
	// GetByID возвращает врача вместе с клиникой
	GetByID(ctx context.Context, id uuid.UUID) (*model.Physician, error)
}

type PatientRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	GetByAccountID(ctx context.Context, accountID uuid.UUID) (*model.Patient, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.Patient, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Patient, error)
	LinkTelegram(ctx context.Context, accountID uuid.UUID, telegramID int64) (bool, error)
}

type DailyScheduleRepository interface {
	// GetByPhysicianAndDate возвращает расписание со слотами
	GetByPhysicianAndDate(ctx context.Context, physicianID uuid.UUID, date time.Time) (*model.DailySchedule, error)
	// LockByPhysicianAndDate то же самое, но с блокировкой строки расписания до конца транзакции
	LockByPhysicianAndDate(ctx context.Context, physicianID uuid.UUID, date time.Time) (*model.DailySchedule, error)
	Create(ctx context.Context, schedule *model.DailySchedule) error
	UpdateRange(ctx context.Context, id uuid.UUID, start, end model.TimeOfDay) error
	ListByPhysician(ctx context.Context, physicianID uuid.UUID) ([]*model.DailySchedule, error)
	// ListBefore расписания всех врачей с датой строго раньше date
	ListBefore(ctx context.Context, date time.Time) ([]*model.DailySchedule, error)
	// ListByPhysicianAfter расписания врача с датой строго позже date
	ListByPhysicianAfter(ctx context.Context, physicianID uuid.UUID, date time.Time) ([]*model.DailySchedule, error)
	// Delete удаляет расписание, слоты удаляются каскадом
	Delete(ctx context.Context, id uuid.UUID) error
}

type TimeSlotRepository interface {
	CreateBatch(ctx context.Context, slots []model.TimeSlot) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.SlotWithSchedule, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.SlotWithSchedule, error)
	// Reserve атомарно переводит свободный слот в reserved; false если слот уже не свободен
	Reserve(ctx context.Context, slotID, patientID uuid.UUID) (bool, error)
	// Release освобождает слот, только если его держит patientID
	Release(ctx context.Context, slotID, patientID uuid.UUID) (bool, error)
	SetStatus(ctx context.Context, slotID uuid.UUID, status model.SlotStatus) error
	// MarkPassed переводит free/reserved слот в passed
	MarkPassed(ctx context.Context, slotID uuid.UUID) (bool, error)
	// MarkPassedBefore переводит в passed все free/reserved слоты, начавшиеся до now
	MarkPassedBefore(ctx context.Context, now time.Time) (int64, error)
	// ListByPatient все слоты со ссылкой на пациента, по дате и времени
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.SlotWithSchedule, error)
}

type ArchivedScheduleRepository interface {
	CreateBatch(ctx context.Context, rows []model.ArchivedSchedule) error
	ListByPhysician(ctx context.Context, physicianID uuid.UUID) ([]*model.ArchivedSchedule, error)
}

// Repositories набор репозиториев, привязанных к одному соединению или транзакции
type Repositories struct {
	WorkWindows WorkWindowRepository
	Physicians  PhysicianRepository
	Patients    PatientRepository
	Schedules   DailyScheduleRepository
	Slots       TimeSlotRepository
	Archive     ArchivedScheduleRepository
}

// TxManager выполняет fn в одной транзакции; ошибка fn откатывает все изменения
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
