package localtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoadLocation(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestLocalize_RegularDay(t *testing.T) {
	ny := mustLoadLocation(t, "America/New_York")
	date := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

	// 10:00 летом в Нью-Йорке = 14:00 UTC (EDT, -4)
	instant, ok := Localize(date, 600, ny)
	require.True(t, ok)
	assert.Equal(t, "2026-06-15T14:00:00Z", ToUTC(instant))
}

func TestLocalize_MinuteBounds(t *testing.T) {
	ny := mustLoadLocation(t, "America/New_York")
	date := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

	_, ok := Localize(date, -1, ny)
	assert.False(t, ok)

	_, ok = Localize(date, MinutesPerDay, ny)
	assert.False(t, ok)

	// Полночь и последняя минута суток валидны
	_, ok = Localize(date, 0, ny)
	assert.True(t, ok)

	_, ok = Localize(date, MinutesPerDay-1, ny)
	assert.True(t, ok)
}

func TestLocalize_SpringForwardGap(t *testing.T) {
	ny := mustLoadLocation(t, "America/New_York")
	// 8 марта 2026 часы прыгают с 02:00 на 03:00
	date := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)

	_, ok := Localize(date, 2*60+30, ny)
	assert.False(t, ok, "02:30 in the spring-forward gap must not exist")

	_, ok = Localize(date, 2*60, ny)
	assert.False(t, ok, "02:00 in the spring-forward gap must not exist")

	// Границы разрыва существуют
	before, ok := Localize(date, 1*60+59, ny)
	require.True(t, ok)
	assert.Equal(t, "2026-03-08T06:59:00Z", ToUTC(before))

	after, ok := Localize(date, 3*60, ny)
	require.True(t, ok)
	assert.Equal(t, "2026-03-08T07:00:00Z", ToUTC(after))
}

func TestLocalize_FallBackAmbiguity(t *testing.T) {
	ny := mustLoadLocation(t, "America/New_York")
	// 1 ноября 2026 часы возвращаются с 02:00 на 01:00: 01:30 встречается дважды
	date := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)

	instant, ok := Localize(date, 1*60+30, ny)
	require.True(t, ok)

	// Детерминированно выбирается более раннее вхождение (еще EDT, -4)
	assert.Equal(t, "2026-11-01T05:30:00Z", ToUTC(instant))
}

func TestLocalize_FallBackIsDeterministic(t *testing.T) {
	ny := mustLoadLocation(t, "America/New_York")
	date := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)

	first, ok := Localize(date, 90, ny)
	require.True(t, ok)

	for i := 0; i < 10; i++ {
		next, ok := Localize(date, 90, ny)
		require.True(t, ok)
		assert.True(t, first.Equal(next))
	}
}

func TestLocalizeClock(t *testing.T) {
	msk := mustLoadLocation(t, "Europe/Moscow")
	date := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

	instant, ok := LocalizeClock(date, "12:00", msk)
	require.True(t, ok)
	assert.Equal(t, "2026-06-15T09:00:00Z", ToUTC(instant))

	_, ok = LocalizeClock(date, "25:99", msk)
	assert.False(t, ok)

	_, ok = LocalizeClock(date, "noon", msk)
	assert.False(t, ok)
}

func TestToUTC(t *testing.T) {
	msk := mustLoadLocation(t, "Europe/Moscow")
	instant := time.Date(2026, 6, 15, 12, 30, 0, 0, msk)

	assert.Equal(t, "2026-06-15T09:30:00Z", ToUTC(instant))
}

func TestValidateTimezone(t *testing.T) {
	loc, err := ValidateTimezone("Europe/Moscow")
	require.NoError(t, err)
	assert.Equal(t, "Europe/Moscow", loc.String())

	_, err = ValidateTimezone("")
	assert.Error(t, err)

	_, err = ValidateTimezone("Mars/Olympus")
	assert.Error(t, err)
}
