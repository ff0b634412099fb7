package formatting

import "github.com/Freeeeeet/clinic_scheduler/internal/model"

// SlotStatusDisplay представляет отображение статуса слота
type SlotStatusDisplay struct {
	Emoji string
	Text  string
}

var slotStatusDisplays = map[model.SlotStatus]SlotStatusDisplay{
	model.SlotStatusFree:     {"🟢", "Свободно"},
	model.SlotStatusReserved: {"🔴", "Занято"},
	model.SlotStatusPassed:   {"⚪️", "Прошло"},
	model.SlotStatusInactive: {"⚫️", "Недоступно"},
}

// GetSlotStatusDisplay возвращает emoji и текст для статуса слота
func GetSlotStatusDisplay(status model.SlotStatus) SlotStatusDisplay {
	if display, ok := slotStatusDisplays[status]; ok {
		return display
	}
	return SlotStatusDisplay{"❓", "Неизвестно"}
}
