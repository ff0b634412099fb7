package formatting

import (
	"fmt"
	"time"

	"github.com/Freeeeeet/clinic_scheduler/internal/model"
)

// FormatDate форматирует только дату
func FormatDate(t time.Time) string {
	return t.Format("02.01.2006")
}

// FormatDateWithWeekday "02.01.2006 (Пн)"
func FormatDateWithWeekday(t time.Time) string {
	return fmt.Sprintf("%s (%s)", FormatDate(t), GetWeekdayShortName(model.WeekdayOf(t)))
}

// FormatTimeRange форматирует диапазон времени
func FormatTimeRange(start, end model.TimeOfDay) string {
	return fmt.Sprintf("%s-%s", start, end)
}

// FormatDuration форматирует длительность в минутах
func FormatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d мин", minutes)
	}
	hours := minutes / 60
	mins := minutes % 60
	if mins == 0 {
		return fmt.Sprintf("%d ч", hours)
	}
	return fmt.Sprintf("%d ч %d мин", hours, mins)
}

var weekdayShortNames = map[model.Weekday]string{
	model.Monday:    "Пн",
	model.Tuesday:   "Вт",
	model.Wednesday: "Ср",
	model.Thursday:  "Чт",
	model.Friday:    "Пт",
	model.Saturday:  "Сб",
	model.Sunday:    "Вс",
}

// GetWeekdayShortName возвращает краткое название дня недели на русском
func GetWeekdayShortName(weekday model.Weekday) string {
	if name, ok := weekdayShortNames[weekday]; ok {
		return name
	}
	return "?"
}
