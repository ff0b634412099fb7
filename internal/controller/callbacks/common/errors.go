package common

import (
	"errors"

	"github.com/Freeeeeet/clinic_scheduler/internal/service"
)

var (
	ErrNotLinked     = errors.New("chat is not linked to a patient")
	ErrInvalidFormat = errors.New("invalid callback format")
)

// ErrorMessage возвращает пользовательское сообщение для ошибки
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrNotLinked), errors.Is(err, service.ErrPatientNotFound):
		return "❌ Чат не привязан к пациенту. Используйте /link <ID учётной записи>"
	case errors.Is(err, ErrInvalidFormat):
		return "❌ Неверный формат данных"
	case errors.Is(err, service.ErrSlotNotFound):
		return "❌ Время приёма не найдено"
	case errors.Is(err, service.ErrPhysicianNotFound):
		return "❌ Врач не найден"
	case errors.Is(err, service.ErrScheduleConflict):
		return "⚠️ Это время уже недоступно"
	default:
		return "❌ Произошла ошибка"
	}
}
