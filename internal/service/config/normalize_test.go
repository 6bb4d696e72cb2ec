package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/Fidden-SchedulingService/internal/domain"
	"github.com/m04kA/Fidden-SchedulingService/internal/service/config/models"
	"github.com/m04kA/Fidden-SchedulingService/pkg/ptr"
)

// noopLogger заглушка логгера для тестов
type noopLogger struct{}

func (noopLogger) Info(format string, v ...interface{})  {}
func (noopLogger) Warn(format string, v ...interface{})  {}
func (noopLogger) Error(format string, v ...interface{}) {}

func testService() *Service {
	return &Service{logger: noopLogger{}}
}

func TestNormalizeTime(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"09:00", "09:00"},
		{"9:00 AM", "09:00"},
		{"9:00AM", "09:00"},
		{"9 AM", "09:00"},
		{"9pm", "21:00"},
		{"12:30 pm", "12:30"},
		{"12:30 AM", "00:30"},
		{"17:45:30", "17:45"},
		{"  10:00  ", "10:00"},
	}

	for _, tc := range cases {
		got, err := normalizeTime(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got.String(), "input %q", tc.in)
	}
}

func TestNormalizeTime_Invalid(t *testing.T) {
	for _, in := range []string{"", "noon", "25:00", "9:60", "13 PM"} {
		_, err := normalizeTime(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestNormalizeWeekday(t *testing.T) {
	cases := map[string]string{
		"mon":       "mon",
		"Monday":    "mon",
		"TUESDAY":   "tue",
		"tues":      "tue",
		"Thurs":     "thu",
		" friday ":  "fri",
		"saturday":  "sat",
		"SUN":       "sun",
		"wednesday": "wed",
	}

	for in, want := range cases {
		got, err := normalizeWeekday(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, want, got)
	}

	_, err := normalizeWeekday("someday")
	assert.Error(t, err)
}

func TestNormalizeInterval(t *testing.T) {
	iv, err := normalizeInterval(models.TimeIntervalInput{Start: "9:00 AM", End: "5:00 PM"})
	require.NoError(t, err)
	assert.Equal(t, "09:00", iv.Start.String())
	assert.Equal(t, "17:00", iv.End.String())

	// Конец "00:00" означает полночь следующего дня
	iv, err = normalizeInterval(models.TimeIntervalInput{Start: "22:00", End: "00:00"})
	require.NoError(t, err)
	assert.Equal(t, "00:00", iv.End.String())

	// Начало должно быть раньше конца
	_, err = normalizeInterval(models.TimeIntervalInput{Start: "14:00", End: "13:00"})
	assert.Error(t, err)

	_, err = normalizeInterval(models.TimeIntervalInput{Start: "14:00", End: "14:00"})
	assert.Error(t, err)
}

func TestNormalizeWeeklyRules_DropsMalformed(t *testing.T) {
	s := testService()

	weekly := s.normalizeWeeklyRules(map[string][]models.TimeIntervalInput{
		"Monday":  {{Start: "9:00 AM", End: "1:00 PM"}, {Start: "bad", End: "18:00"}},
		"someday": {{Start: "09:00", End: "18:00"}},
	})

	// Битый интервал и неизвестный день отброшены, валидное сохранено
	require.Len(t, weekly, 1)
	require.Len(t, weekly["mon"], 1)
	assert.Equal(t, "09:00", weekly["mon"][0].Start.String())
	assert.Equal(t, "13:00", weekly["mon"][0].End.String())
}

func TestNormalizeBreaks(t *testing.T) {
	s := testService()

	breaks := s.normalizeBreaks([]models.BreakRuleInput{
		{Start: "1:00 PM", End: "2:00 PM", Days: []string{"Monday", "FRI"}},
		{Start: "bad", End: "14:00", Days: []string{"mon"}},
		{Start: "13:00", End: "14:00", Days: []string{"someday"}},
	})

	require.Len(t, breaks, 1)
	assert.Equal(t, "13:00", breaks[0].Start.String())
	assert.Equal(t, []string{"mon", "fri"}, breaks[0].Days)
}

func TestNormalizeBreaks_EmptyDaysMeansEveryDay(t *testing.T) {
	s := testService()

	breaks := s.normalizeBreaks([]models.BreakRuleInput{
		{Start: "13:00", End: "14:00"},
	})

	require.Len(t, breaks, 1)
	assert.Equal(t, domain.WeekdayKeys, breaks[0].Days)
}

func TestBuildRuleSet(t *testing.T) {
	s := testService()

	rs, err := s.buildRuleSet(&models.UpdateRuleSetRequest{
		Name:     "standard week",
		Timezone: "Europe/Moscow",
		WeeklyRules: map[string][]models.TimeIntervalInput{
			"mon": {{Start: "09:00", End: "18:00"}},
		},
		GridIntervalMinutes: ptr.Ptr(15),
	})
	require.NoError(t, err)
	assert.Equal(t, 15, rs.GridIntervalMinutes)
	assert.Equal(t, "Europe/Moscow", rs.Timezone)
	require.Len(t, rs.WeeklyRules["mon"], 1)
}

func TestBuildRuleSet_Invalid(t *testing.T) {
	s := testService()

	// Невалидная таймзона
	_, err := s.buildRuleSet(&models.UpdateRuleSetRequest{
		Timezone:    "Mars/Olympus",
		WeeklyRules: map[string][]models.TimeIntervalInput{"mon": {{Start: "09:00", End: "18:00"}}},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	// Шаг сетки вне границ
	_, err = s.buildRuleSet(&models.UpdateRuleSetRequest{
		Timezone:            "Europe/Moscow",
		WeeklyRules:         map[string][]models.TimeIntervalInput{"mon": {{Start: "09:00", End: "18:00"}}},
		GridIntervalMinutes: ptr.Ptr(3),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	// После нормализации не осталось ни одного рабочего интервала
	_, err = s.buildRuleSet(&models.UpdateRuleSetRequest{
		Timezone:    "Europe/Moscow",
		WeeklyRules: map[string][]models.TimeIntervalInput{"mon": {{Start: "bad", End: "18:00"}}},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestValidateServiceConfig(t *testing.T) {
	s := testService()

	valid := &models.UpsertServiceConfigRequest{
		ShopID:          1,
		DurationMinutes: 60,
	}
	assert.NoError(t, s.validateServiceConfig(valid))

	// Длительность вне границ
	assert.ErrorIs(t, s.validateServiceConfig(&models.UpsertServiceConfigRequest{
		ShopID: 1, DurationMinutes: 2,
	}), ErrInvalidInput)

	// Отрицательный буфер
	assert.ErrorIs(t, s.validateServiceConfig(&models.UpsertServiceConfigRequest{
		ShopID: 1, DurationMinutes: 60, BufferBeforeMinutes: -5,
	}), ErrInvalidInput)

	// Нулевой provider_block
	assert.ErrorIs(t, s.validateServiceConfig(&models.UpsertServiceConfigRequest{
		ShopID: 1, DurationMinutes: 60, ProviderBlockMinutes: ptr.Ptr(0),
	}), ErrInvalidInput)

	// provider_block больше длительности - ошибка конфигурации, не молчаливая подрезка
	assert.ErrorIs(t, s.validateServiceConfig(&models.UpsertServiceConfigRequest{
		ShopID: 1, DurationMinutes: 60, ProviderBlockMinutes: ptr.Ptr(90),
	}), ErrInvalidConfiguration)

	// provider_block равный длительности допустим
	assert.NoError(t, s.validateServiceConfig(&models.UpsertServiceConfigRequest{
		ShopID: 1, DurationMinutes: 60, ProviderBlockMinutes: ptr.Ptr(60),
	}))
}
