package model

import (
	"fmt"
	"time"
)

// TimeOfDay время суток в минутах от полуночи
type TimeOfDay int

const MinutesPerDay TimeOfDay = 24 * 60

// NewTimeOfDay собирает время из часов и минут
func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// ParseTimeOfDay принимает "15:04" или "15:04:05" (секунды должны быть нулевыми)
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if t.Second() != 0 {
			return 0, fmt.Errorf("time %q must not carry seconds", s)
		}
		return NewTimeOfDay(t.Hour(), t.Minute()), nil
	}
	return 0, fmt.Errorf("invalid time of day %q", s)
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

// Add сдвигает время на указанное количество минут
func (t TimeOfDay) Add(minutes int) TimeOfDay {
	return t + TimeOfDay(minutes)
}

func (t TimeOfDay) Before(other TimeOfDay) bool { return t < other }
func (t TimeOfDay) After(other TimeOfDay) bool  { return t > other }

// Valid проверяет, что время лежит в пределах суток
func (t TimeOfDay) Valid() bool {
	return t >= 0 && t < MinutesPerDay
}

// On возвращает момент времени для указанной даты в её часовом поясе
func (t TimeOfDay) On(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location())
}

// Of извлекает время суток из момента времени (секунды отбрасываются)
func Of(moment time.Time) TimeOfDay {
	return NewTimeOfDay(moment.Hour(), moment.Minute())
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(text []byte) error {
	parsed, err := ParseTimeOfDay(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
