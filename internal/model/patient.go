package model

import (
	"time"

	"github.com/google/uuid"
)

// Patient пациент из реестра; AccountID связывает его с учётной записью
type Patient struct {
	ID         uuid.UUID `json:"id"`
	AccountID  uuid.UUID `json:"account_id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	TelegramID *int64    `json:"telegram_id"` // привязанный чат бота
	CreatedAt  time.Time `json:"created_at"`
}

// PatientInfo данные пациента для приватного просмотра расписания
type PatientInfo struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
}

func (p *Patient) Info() *PatientInfo {
	if p == nil {
		return nil
	}
	return &PatientInfo{
		ID:        p.ID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		Phone:     p.Phone,
	}
}
