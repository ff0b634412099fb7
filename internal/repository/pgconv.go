package repository

import (
	"time"

	"github.com/Freeeeeet/clinic_scheduler/internal/model"
	"github.com/jackc/pgx/v5/pgtype"
)

const microsPerMinute = int64(time.Minute / time.Microsecond)

func toPGTime(t model.TimeOfDay) pgtype.Time {
	return pgtype.Time{Microseconds: int64(t) * microsPerMinute, Valid: true}
}

func fromPGTime(t pgtype.Time) model.TimeOfDay {
	return model.TimeOfDay(t.Microseconds / microsPerMinute)
}

// toPGDate отбрасывает часовой пояс: в БД хранится только календарная дата
func toPGDate(t time.Time) pgtype.Date {
	y, m, d := t.Date()
	return pgtype.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}

// wallClock передаёт "сейчас" как timestamp без пояса: даты и время слотов хранятся локальными
func wallClock(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
