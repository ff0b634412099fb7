package callbacks

import (
	"context"
	"errors"

	"github.com/Freeeeeet/clinic_scheduler/internal/controller/callbacks/common"
	"github.com/Freeeeeet/clinic_scheduler/internal/controller/handlers"
	"github.com/Freeeeeet/clinic_scheduler/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HandleCallbackQuery маршрутизирует callback по действию: book:<slotID>, release:<slotID>
func (h *Handler) HandleCallbackQuery(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	callback := update.CallbackQuery

	action, slotID, err := common.ParseCallback(callback.Data)
	if err != nil {
		h.logger.Warn("Unknown callback", zap.String("data", callback.Data))
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}

	patient, err := h.patientService.GetByTelegramID(ctx, callback.From.ID)
	if err != nil {
		if !errors.Is(err, service.ErrPatientNotFound) {
			h.logger.Error("Failed to get patient", zap.Int64("telegram_id", callback.From.ID), zap.Error(err))
		}
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}

	switch action {
	case handlers.CallbackBook:
		h.handleBook(ctx, b, callback, patient.AccountID, slotID)
	case handlers.CallbackRelease:
		h.handleRelease(ctx, b, callback, patient.AccountID, slotID)
	default:
		h.logger.Warn("Unknown callback action", zap.String("action", action))
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(common.ErrInvalidFormat))
	}
}

func (h *Handler) handleBook(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, accountID, slotID uuid.UUID) {
	if err := h.slotService.MakeAppointment(ctx, accountID, slotID); err != nil {
		h.logFailure("Booking via bot failed", err, slotID)
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}

	common.AnswerCallback(ctx, b, callback.ID, "✅ Вы записаны на приём")
	h.notify(ctx, b, callback, "✅ Запись подтверждена. Посмотреть записи: /myappointments")
}

func (h *Handler) handleRelease(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, accountID, slotID uuid.UUID) {
	if err := h.slotService.ReleaseAppointment(ctx, accountID, slotID); err != nil {
		h.logFailure("Release via bot failed", err, slotID)
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}

	common.AnswerCallback(ctx, b, callback.ID, "🗑 Запись отменена")
	h.notify(ctx, b, callback, "🗑 Запись отменена")
}

// notify отправляет подтверждение в чат, из которого нажата кнопка
func (h *Handler) notify(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, text string) {
	msg := common.GetMessageFromCallback(callback)
	if msg == nil {
		return
	}
	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: msg.Chat.ID, Text: text}); err != nil {
		h.logger.Error("Failed to send message", zap.Int64("chat_id", msg.Chat.ID), zap.Error(err))
	}
}

func (h *Handler) logFailure(msg string, err error, slotID uuid.UUID) {
	if errors.Is(err, service.ErrScheduleConflict) || errors.Is(err, service.ErrSlotNotFound) {
		return
	}
	h.logger.Error(msg, zap.String("slot_id", slotID.String()), zap.Error(err))
}
