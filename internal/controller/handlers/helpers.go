package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/clinic_scheduler/internal/controller/callbacks/common"
	cmdfmt "github.com/Freeeeeet/clinic_scheduler/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/clinic_scheduler/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/clinic_scheduler/internal/model"
	"github.com/go-telegram/bot/models"
)

const (
	CallbackBook    = "book"
	CallbackRelease = "release"

	// Telegram ограничивает количество кнопок в сообщении
	maxSlotButtons = 48
	buttonsPerRow  = 4
)

// FormatSchedule публичное расписание врача и кнопки записи на свободные слоты
func FormatSchedule(days []model.PhysicianDaySchedule) (string, models.ReplyMarkup) {
	if len(days) == 0 {
		return "📭 У врача пока нет опубликованного расписания", nil
	}

	var sb strings.Builder
	sb.WriteString("🗓 Расписание врача:\n")

	var buttons []models.InlineKeyboardButton
	for _, day := range days {
		free := 0
		for _, slot := range day.Schedule {
			if slot.Status != model.SlotStatusFree {
				continue
			}
			free++
			if len(buttons) < maxSlotButtons {
				buttons = append(buttons, keyboard.Button(
					fmt.Sprintf("%s %s", day.Date.Format("02.01"), slot.StartTime),
					common.CallbackData(CallbackBook, slot.ID),
				))
			}
		}
		fmt.Fprintf(&sb, "\n📅 %s, %s\n🟢 Свободно: %d из %d\n",
			cmdfmt.FormatDateWithWeekday(day.Date),
			cmdfmt.FormatTimeRange(day.StartTime, day.EndTime),
			free, len(day.Schedule))
	}

	if len(buttons) == 0 {
		sb.WriteString("\nСвободного времени нет")
	} else {
		sb.WriteString("\nВыберите время для записи:")
	}
	return sb.String(), keyboard.NewBuilder().Grid(buttons, buttonsPerRow).Build()
}

// FormatAppointments записи пациента; будущие можно отменить кнопкой
func FormatAppointments(items []model.PatientAppointment, now time.Time) (string, models.ReplyMarkup) {
	if len(items) == 0 {
		return "📭 У вас нет записей", nil
	}

	var sb strings.Builder
	sb.WriteString("📋 Ваши записи:\n")

	kb := keyboard.NewBuilder()
	for _, item := range items {
		upcoming := appointmentStart(item, now.Location()).After(now)
		mark := "⚪️"
		if upcoming {
			mark = "🔴"
		}
		fmt.Fprintf(&sb, "\n%s %s %s\n👨‍⚕️ %s\n📍 %s\n",
			mark,
			cmdfmt.FormatDateWithWeekday(item.AppointmentDate),
			item.StartTime,
			item.Physician,
			item.Address)

		if upcoming {
			kb.Row(keyboard.Button(
				fmt.Sprintf("❌ Отменить %s %s", item.AppointmentDate.Format("02.01"), item.StartTime),
				common.CallbackData(CallbackRelease, item.ID),
			))
		}
	}
	return sb.String(), kb.Build()
}

func appointmentStart(item model.PatientAppointment, loc *time.Location) time.Time {
	y, m, d := item.AppointmentDate.Date()
	return time.Date(y, m, d, item.StartTime.Hour(), item.StartTime.Minute(), 0, 0, loc)
}
