package service

import (
	"fmt"
	"time"
)

var frenchShortMonths = [...]string{
	"janv.", "févr.", "mars", "avr.", "mai", "juin",
	"juil.", "août", "sept.", "oct.", "nov.", "déc.",
}

// FormatDate renders t as fr-FR "02 janv. 2026".
func FormatDate(t time.Time, loc *time.Location) string {
	t = t.In(loc)
	return fmt.Sprintf("%02d %s %d", t.Day(), frenchShortMonths[t.Month()-1], t.Year())
}

// FormatTime renders t as fr-FR "09:05".
func FormatTime(t time.Time, loc *time.Location) string {
	t = t.In(loc)
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}
