package order

import (
	"time"

	"github.com/jhoicas/pos-api/internal/domain"
)

// Períodos aceptados por las estadísticas.
const (
	PeriodToday = "today"
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"
)

// PeriodRange devuelve [from, to) para el período; vacío = today.
// week arranca el lunes.
func PeriodRange(period string, now time.Time) (time.Time, time.Time, error) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch period {
	case "", PeriodToday:
		return day, day.AddDate(0, 0, 1), nil
	case PeriodWeek:
		offset := (int(day.Weekday()) + 6) % 7
		from := day.AddDate(0, 0, -offset)
		return from, from.AddDate(0, 0, 7), nil
	case PeriodMonth:
		from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return from, from.AddDate(0, 1, 0), nil
	case PeriodYear:
		from := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		return from, from.AddDate(1, 0, 0), nil
	}
	return time.Time{}, time.Time{}, domain.NewValidation("INVALID_PERIOD", "Período inválido. Use today, week, month o year")
}
