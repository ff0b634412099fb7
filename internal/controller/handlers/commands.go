package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Freeeeeet/clinic_scheduler/internal/controller/callbacks/common"
	"github.com/Freeeeeet/clinic_scheduler/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const helpText = "📚 Справка по командам:\n\n" +
	"/start - Начать работу с ботом\n" +
	"/link <ID учётной записи> - Привязать чат к карте пациента\n" +
	"/schedule <ID врача> - Расписание врача и запись на приём\n" +
	"/myappointments - Мои записи\n" +
	"/help - Показать эту справку"

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	patient, err := h.patientService.GetByTelegramID(ctx, update.Message.From.ID)
	if err != nil && !errors.Is(err, service.ErrPatientNotFound) {
		h.logger.Error("Failed to get patient", zap.Int64("telegram_id", update.Message.From.ID), zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Произошла ошибка. Попробуйте позже.")
		return
	}

	name := update.Message.From.FirstName
	status := "Чат ещё не привязан к карте пациента. Используйте /link <ID учётной записи>."
	if patient != nil {
		name = patient.FirstName
		status = "✅ Чат привязан к вашей карте пациента."
	}

	text := fmt.Sprintf("👋 Здравствуйте, %s!\n\n"+
		"Это бот записи на приём к врачу.\n%s\n\n%s", name, status, helpText)
	h.send(ctx, b, update.Message.Chat.ID, text, nil)
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.send(ctx, b, update.Message.Chat.ID, helpText, nil)
}

// HandleLink обрабатывает команду /link <accountId>
func (h *Handlers) HandleLink(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID

	accountID, ok := commandArgUUID(update.Message.Text)
	if !ok {
		h.sendError(ctx, b, chatID, "❌ Укажите ID учётной записи: /link <ID>")
		return
	}

	patient, err := h.patientService.LinkTelegram(ctx, accountID, update.Message.From.ID)
	if err != nil {
		if !errors.Is(err, service.ErrPatientNotFound) {
			h.logger.Error("Failed to link telegram", zap.Int64("telegram_id", update.Message.From.ID), zap.Error(err))
		}
		h.sendError(ctx, b, chatID, common.ErrorMessage(err))
		return
	}

	h.send(ctx, b, chatID, fmt.Sprintf("✅ Чат привязан к карте пациента %s %s", patient.FirstName, patient.LastName), nil)
}

// HandleSchedule обрабатывает команду /schedule <physicianId>
func (h *Handlers) HandleSchedule(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	physicianID, ok := commandArgUUID(update.Message.Text)
	if !ok {
		h.sendError(ctx, b, chatID, "❌ Укажите ID врача: /schedule <ID>")
		return
	}

	days, err := h.scheduleService.ListPublic(ctx, physicianID)
	if err != nil {
		h.logger.Error("Failed to list schedule", zap.String("physician_id", physicianID.String()), zap.Error(err))
		h.sendError(ctx, b, chatID, common.ErrorMessage(err))
		return
	}

	text, markup := FormatSchedule(days)
	h.send(ctx, b, chatID, text, markup)
}

// HandleMyAppointments обрабатывает команду /myappointments
func (h *Handlers) HandleMyAppointments(ctx context.Context, b *bot.Bot, update *models.Update) {
	patient, ok := h.requirePatient(ctx, b, update)
	if !ok {
		return
	}

	items, err := h.slotService.GetPatientAppointments(ctx, patient.ID)
	if err != nil {
		h.logger.Error("Failed to get appointments", zap.String("patient_id", patient.ID.String()), zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, common.ErrorMessage(err))
		return
	}

	text, markup := FormatAppointments(items, h.clock())
	h.send(ctx, b, update.Message.Chat.ID, text, markup)
}

// commandArgUUID разбирает единственный аргумент команды
func commandArgUUID(text string) (uuid.UUID, bool) {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(fields[1])
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
