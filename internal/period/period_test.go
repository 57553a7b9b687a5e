package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRange(t *testing.T) {
	t.Run("single period", func(t *testing.T) {
		periods, err := Range(New(2024, time.December), New(2024, time.December))
		require.NoError(t, err)
		assert.Equal(t, []Period{{Year: 2024, Month: time.December}}, periods)
	})

	t.Run("crosses year boundary", func(t *testing.T) {
		periods, err := Range(New(2024, time.December), New(2025, time.February))
		require.NoError(t, err)
		require.Len(t, periods, 3)
		assert.Equal(t, New(2024, time.December), periods[0])
		assert.Equal(t, New(2025, time.January), periods[1])
		assert.Equal(t, New(2025, time.February), periods[2])
	})

	t.Run("reversed bounds rejected", func(t *testing.T) {
		_, err := Range(New(2025, time.January), New(2024, time.December))
		assert.ErrorIs(t, err, ErrReversedRange)
	})

	t.Run("capped at 24 periods", func(t *testing.T) {
		periods, err := Range(New(2024, time.January), New(2025, time.December))
		require.NoError(t, err)
		assert.Len(t, periods, 24)

		_, err = Range(New(2024, time.January), New(2026, time.January))
		assert.ErrorIs(t, err, ErrRangeTooLarge)
	})

	t.Run("invalid month rejected", func(t *testing.T) {
		_, err := Range(Period{Year: 2024, Month: 13}, New(2025, time.January))
		assert.ErrorIs(t, err, ErrInvalidPeriod)
	})
}

func TestClampDay(t *testing.T) {
	assert.Equal(t, 31, ClampDay(31, 2024, time.December))
	assert.Equal(t, 31, ClampDay(31, 2025, time.January))
	assert.Equal(t, 29, ClampDay(31, 2024, time.February)) // leap year
	assert.Equal(t, 28, ClampDay(31, 2025, time.February))
	assert.Equal(t, 30, ClampDay(31, 2025, time.April))
	assert.Equal(t, 1, ClampDay(0, 2025, time.April))
}

func TestDueOn(t *testing.T) {
	due := DueOn(New(2024, time.December), 31)
	assert.Equal(t, time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC), due)

	due = DueOn(New(2025, time.February), 31)
	assert.Equal(t, time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC), due)
}

func TestNights(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2024, time.December, d, 0, 0, 0, 0, time.UTC)
	}

	t.Run("whole days", func(t *testing.T) {
		assert.Equal(t, 4, Nights(day(1), day(5)))
		assert.Equal(t, 1, Nights(day(1), day(2)))
	})

	t.Run("partial day rounds up", func(t *testing.T) {
		checkIn := time.Date(2024, time.December, 1, 15, 0, 0, 0, time.UTC)
		checkOut := time.Date(2024, time.December, 2, 11, 0, 0, 0, time.UTC)
		assert.Equal(t, 1, Nights(checkIn, checkOut))

		checkOut = time.Date(2024, time.December, 3, 11, 0, 0, 0, time.UTC)
		assert.Equal(t, 2, Nights(checkIn, checkOut))
	})

	t.Run("same day plus a few hours bills one night", func(t *testing.T) {
		checkIn := time.Date(2024, time.December, 1, 10, 0, 0, 0, time.UTC)
		checkOut := time.Date(2024, time.December, 1, 18, 0, 0, 0, time.UTC)
		assert.Equal(t, 1, Nights(checkIn, checkOut))
	})

	t.Run("non positive stay", func(t *testing.T) {
		assert.Equal(t, 0, Nights(day(5), day(5)))
		assert.Equal(t, 0, Nights(day(5), day(1)))
	})
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 29, DaysInMonth(2024, time.February))
	assert.Equal(t, 28, DaysInMonth(2025, time.February))
	assert.Equal(t, 31, DaysInMonth(2025, time.January))
	assert.Equal(t, 30, DaysInMonth(2025, time.June))
}
