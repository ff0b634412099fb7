package handlers

import (
	"context"
	"errors"

	"github.com/Freeeeeet/clinic_scheduler/internal/controller/callbacks/common"
	"github.com/Freeeeeet/clinic_scheduler/internal/model"
	"github.com/Freeeeeet/clinic_scheduler/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// requirePatient находит пациента, привязанного к чату
// Возвращает patient и true если OK, nil и false если нет
func (h *Handlers) requirePatient(ctx context.Context, b *bot.Bot, update *models.Update) (*model.Patient, bool) {
	if update.Message == nil || update.Message.From == nil {
		return nil, false
	}

	telegramID := update.Message.From.ID
	patient, err := h.patientService.GetByTelegramID(ctx, telegramID)
	if errors.Is(err, service.ErrPatientNotFound) {
		h.sendError(ctx, b, update.Message.Chat.ID, common.ErrorMessage(common.ErrNotLinked))
		return nil, false
	}
	if err != nil {
		h.logger.Error("Failed to get patient", zap.Int64("telegram_id", telegramID), zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Произошла ошибка. Попробуйте позже.")
		return nil, false
	}

	return patient, true
}

// sendError отправляет сообщение об ошибке и логирует если не удалось
func (h *Handlers) sendError(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error("Failed to send error message",
			zap.Int64("chat_id", chatID),
			zap.String("text", text),
			zap.Error(err))
	}
}

func (h *Handlers) send(ctx context.Context, b *bot.Bot, chatID int64, text string, markup models.ReplyMarkup) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: markup,
	})
	if err != nil {
		h.logger.Error("Failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
