package cmv_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cmv-api/internal/domain/cmv"
)

func date(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func TestNextMonday_TodosLosDiasDeLaSemana(t *testing.T) {
	// 2024-06-03 es lunes.
	expected := map[time.Weekday]int{
		time.Monday:    7,
		time.Tuesday:   6,
		time.Wednesday: 5,
		time.Thursday:  4,
		time.Friday:    3,
		time.Saturday:  2,
		time.Sunday:    1,
	}
	for i := 0; i < 7; i++ {
		day := date(2024, 6, 3).AddDate(0, 0, i)
		next := cmv.NextMonday(day)
		delta := int(next.Sub(day).Hours() / 24)

		assert.Equal(t, time.Monday, next.Weekday(), "%s → debe caer en lunes", day.Weekday())
		assert.Equal(t, expected[day.Weekday()], delta, "%s → días hasta el lunes", day.Weekday())
		assert.GreaterOrEqual(t, delta, 1)
		assert.LessOrEqual(t, delta, 7)
	}
}

func TestNextMonday_TruncaLaHora(t *testing.T) {
	sunday := time.Date(2024, 6, 9, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, date(2024, 6, 10), cmv.NextMonday(sunday))
}

func TestWeekSpan(t *testing.T) {
	cases := []struct {
		year, week int
		start, end time.Time
	}{
		{2024, 1, date(2024, 1, 1), date(2024, 1, 7)},
		{2024, 23, date(2024, 6, 3), date(2024, 6, 9)},
		{2021, 1, date(2021, 1, 4), date(2021, 1, 10)},   // el 1 de enero de 2021 pertenece a 2020-W53
		{2020, 53, date(2020, 12, 28), date(2021, 1, 3)}, // año de 53 semanas
	}
	for _, c := range cases {
		start, end, err := cmv.WeekSpan(c.year, c.week)
		require.NoError(t, err)
		assert.Equal(t, c.start, start, "%d-W%02d inicio", c.year, c.week)
		assert.Equal(t, c.end, end, "%d-W%02d fin", c.year, c.week)

		y, w := start.ISOWeek()
		assert.Equal(t, c.year, y)
		assert.Equal(t, c.week, w)
	}
}

func TestWeekSpan_FueraDeRango(t *testing.T) {
	_, _, err := cmv.WeekSpan(2021, 53)
	assert.Error(t, err, "2021 tiene 52 semanas")
	_, _, err = cmv.WeekSpan(2024, 0)
	assert.Error(t, err)
}

func TestWeeksInRange(t *testing.T) {
	// miércoles 2024-06-05 a martes 2024-06-18 → W23, W24, W25
	weeks := cmv.WeeksInRange(date(2024, 6, 5), date(2024, 6, 18))
	assert.Equal(t, []cmv.Week{{2024, 23}, {2024, 24}, {2024, 25}}, weeks)

	assert.Empty(t, cmv.WeeksInRange(date(2024, 6, 18), date(2024, 6, 5)))

	// cruce de año ISO
	weeks = cmv.WeeksInRange(date(2020, 12, 30), date(2021, 1, 5))
	assert.Equal(t, []cmv.Week{{2020, 53}, {2021, 1}}, weeks)
}
