package model

import (
	"time"

	"github.com/google/uuid"
)

type Clinic struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	City    string    `json:"city"`
	Address string    `json:"address"`
}

// WorkWindow часы работы клиники в конкретный день недели
type WorkWindow struct {
	ID        uuid.UUID `json:"id"`
	ClinicID  uuid.UUID `json:"clinic_id"`
	Weekday   Weekday   `json:"weekday"`
	Opening   TimeOfDay `json:"opening"`
	Closing   TimeOfDay `json:"closing"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Contains проверяет, что диапазон [start, end] укладывается в часы работы
func (w *WorkWindow) Contains(start, end TimeOfDay) bool {
	return !start.Before(w.Opening) && !end.After(w.Closing)
}

type Physician struct {
	ID           uuid.UUID `json:"id"`
	ClinicID     uuid.UUID `json:"clinic_id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Abbreviation string    `json:"abbreviation"`
	Specialty    string    `json:"specialty"`
	Clinic       *Clinic   `json:"clinic,omitempty"`
}

// DisplayName "Имя Фамилия, звание, специальность"
func (p *Physician) DisplayName() string {
	name := p.FirstName + " " + p.LastName
	if p.Abbreviation != "" {
		name += ", " + p.Abbreviation
	}
	if p.Specialty != "" {
		name += ", " + p.Specialty
	}
	return name
}
