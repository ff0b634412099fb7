package model

import "time"

const DateLayout = "2006-01-02"

// DateOf обрезает момент времени до календарной даты в его часовом поясе
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ParseDate разбирает дату формата 2006-01-02 в указанном часовом поясе
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, loc)
}
