package cmv

import (
	"fmt"
	"time"
)

// DateOnly trunca a medianoche UTC; las fechas de conteo y de libro son días calendario.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// isoWeekday: lunes=1 ... domingo=7.
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// NextMonday devuelve el lunes siguiente a t (1 a 7 días después).
// Domingo → +1, sábado → +2, lunes → +7.
func NextMonday(t time.Time) time.Time {
	delta := (8 - isoWeekday(t)) % 7
	if delta == 0 {
		delta = 7
	}
	return DateOnly(t).AddDate(0, 0, delta)
}

// WeeksInYear número de semanas ISO del año (52 o 53).
func WeeksInYear(year int) int {
	_, w := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return w
}

// WeekSpan devuelve el lunes y el domingo de la semana ISO indicada.
func WeekSpan(year, week int) (start, end time.Time, err error) {
	if week < 1 || week > WeeksInYear(year) {
		return time.Time{}, time.Time{}, fmt.Errorf("semana ISO %d fuera de rango para %d", week, year)
	}
	// El 4 de enero siempre cae en la semana 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	week1Monday := jan4.AddDate(0, 0, 1-isoWeekday(jan4))
	start = week1Monday.AddDate(0, 0, (week-1)*7)
	end = start.AddDate(0, 0, 6)
	return start, end, nil
}

// Week identifica una semana ISO.
type Week struct {
	Year int
	Week int
}

// WeeksInRange semanas ISO que se solapan con [from, to], en orden ascendente.
func WeeksInRange(from, to time.Time) []Week {
	from, to = DateOnly(from), DateOnly(to)
	if to.Before(from) {
		return nil
	}
	var weeks []Week
	// Retroceder al lunes de la semana de from.
	cur := from.AddDate(0, 0, 1-isoWeekday(from))
	for !cur.After(to) {
		y, w := cur.ISOWeek()
		weeks = append(weeks, Week{Year: y, Week: w})
		cur = cur.AddDate(0, 0, 7)
	}
	return weeks
}
