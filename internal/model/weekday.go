package model

import (
	"fmt"
	"strings"
	"time"
)

// Weekday день недели в том виде, как его хранит клиника
type Weekday string

const (
	Monday    Weekday = "MONDAY"
	Tuesday   Weekday = "TUESDAY"
	Wednesday Weekday = "WEDNESDAY"
	Thursday  Weekday = "THURSDAY"
	Friday    Weekday = "FRIDAY"
	Saturday  Weekday = "SATURDAY"
	Sunday    Weekday = "SUNDAY"
)

// Weekdays дни недели по порядку, начиная с понедельника
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var weekdayByTime = map[time.Weekday]Weekday{
	time.Monday:    Monday,
	time.Tuesday:   Tuesday,
	time.Wednesday: Wednesday,
	time.Thursday:  Thursday,
	time.Friday:    Friday,
	time.Saturday:  Saturday,
	time.Sunday:    Sunday,
}

// WeekdayOf возвращает день недели для даты
func WeekdayOf(date time.Time) Weekday {
	return weekdayByTime[date.Weekday()]
}

// ParseWeekday разбирает название дня недели без учёта регистра
func ParseWeekday(s string) (Weekday, error) {
	w := Weekday(strings.ToUpper(strings.TrimSpace(s)))
	if !w.Valid() {
		return "", fmt.Errorf("unknown weekday %q", s)
	}
	return w, nil
}

func (w Weekday) Valid() bool {
	for _, known := range weekdayByTime {
		if known == w {
			return true
		}
	}
	return false
}
