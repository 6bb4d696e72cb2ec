package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/Fidden-SchedulingService/internal/domain"
)

// monday 2026-06-15
var testMonday = time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

func newRuleSet(weekly domain.WeeklyRules, breaks []domain.BreakRule) *domain.RuleSet {
	return &domain.RuleSet{
		Name:                "test",
		Timezone:            "Europe/Moscow",
		WeeklyRules:         weekly,
		Breaks:              breaks,
		GridIntervalMinutes: 30,
	}
}

func TestResolveDay_NilRuleSet(t *testing.T) {
	assert.Empty(t, ResolveDay(nil, nil, testMonday))
}

func TestResolveDay_WeeklyRules(t *testing.T) {
	rs := newRuleSet(domain.WeeklyRules{
		"mon": {{Start: "09:00", End: "13:00"}, {Start: "14:00", End: "18:00"}},
	}, nil)

	got := ResolveDay(rs, nil, testMonday)

	assert.Equal(t, []MinuteInterval{
		{Start: 540, End: 780},
		{Start: 840, End: 1080},
	}, got)
}

func TestResolveDay_DayWithoutRules(t *testing.T) {
	rs := newRuleSet(domain.WeeklyRules{
		"tue": {{Start: "09:00", End: "18:00"}},
	}, nil)

	// В понедельник провайдер не работает
	assert.Empty(t, ResolveDay(rs, nil, testMonday))
}

func TestResolveDay_BreaksSubtracted(t *testing.T) {
	rs := newRuleSet(domain.WeeklyRules{
		"mon": {{Start: "09:00", End: "18:00"}},
	}, []domain.BreakRule{
		{Start: "13:00", End: "14:00", Days: []string{"mon", "fri"}},
	})

	got := ResolveDay(rs, nil, testMonday)

	assert.Equal(t, []MinuteInterval{
		{Start: 540, End: 780},
		{Start: 840, End: 1080},
	}, got)
}

func TestResolveDay_BreakForOtherDayIgnored(t *testing.T) {
	rs := newRuleSet(domain.WeeklyRules{
		"mon": {{Start: "09:00", End: "18:00"}},
	}, []domain.BreakRule{
		{Start: "13:00", End: "14:00", Days: []string{"tue"}},
	})

	got := ResolveDay(rs, nil, testMonday)

	assert.Equal(t, []MinuteInterval{{Start: 540, End: 1080}}, got)
}

func TestResolveDay_OverlappingIntervalsMerged(t *testing.T) {
	rs := newRuleSet(domain.WeeklyRules{
		"mon": {{Start: "09:00", End: "13:00"}, {Start: "12:00", End: "18:00"}},
	}, nil)

	got := ResolveDay(rs, nil, testMonday)

	assert.Equal(t, []MinuteInterval{{Start: 540, End: 1080}}, got)
}

func TestResolveDay_MidnightEnd(t *testing.T) {
	rs := newRuleSet(domain.WeeklyRules{
		"mon": {{Start: "22:00", End: "00:00"}},
	}, nil)

	got := ResolveDay(rs, nil, testMonday)

	// Конец "00:00" означает полночь следующего дня
	assert.Equal(t, []MinuteInterval{{Start: 1320, End: 1440}}, got)
}

func TestResolveDay_ClosedException(t *testing.T) {
	rs := newRuleSet(domain.WeeklyRules{
		"mon": {{Start: "09:00", End: "18:00"}},
	}, nil)
	exc := &domain.Exception{ProviderID: 1, Date: testMonday, IsClosed: true}

	assert.Empty(t, ResolveDay(rs, exc, testMonday))
}

func TestResolveDay_OverrideHoursReplaceWeekly(t *testing.T) {
	rs := newRuleSet(domain.WeeklyRules{
		"mon": {{Start: "09:00", End: "18:00"}},
	}, []domain.BreakRule{
		{Start: "13:00", End: "14:00", Days: []string{"mon"}},
	})
	exc := &domain.Exception{
		ProviderID:    1,
		Date:          testMonday,
		OverrideRules: []domain.TimeInterval{{Start: "11:00", End: "15:00"}},
	}

	got := ResolveDay(rs, exc, testMonday)

	// Кастомные часы заменяют недельные правила целиком, перерывы не применяются
	assert.Equal(t, []MinuteInterval{{Start: 660, End: 900}}, got)
}

func TestResolveDay_OverrideHoursWithNilRuleSet(t *testing.T) {
	exc := &domain.Exception{
		ProviderID:    1,
		Date:          testMonday,
		OverrideRules: []domain.TimeInterval{{Start: "10:00", End: "12:00"}},
	}

	got := ResolveDay(nil, exc, testMonday)

	assert.Equal(t, []MinuteInterval{{Start: 600, End: 720}}, got)
}

func TestCeilToGrid(t *testing.T) {
	assert.Equal(t, 540, ceilToGrid(540, 15))
	assert.Equal(t, 555, ceilToGrid(545, 15))
	assert.Equal(t, 540, ceilToGrid(531, 30))
	assert.Equal(t, 531, ceilToGrid(531, 0))
}

func TestSubtractIntervals(t *testing.T) {
	working := []MinuteInterval{{Start: 540, End: 1080}}

	// Блок в середине режет интервал на две части
	got := subtractIntervals(working, []MinuteInterval{{Start: 780, End: 840}})
	assert.Equal(t, []MinuteInterval{{Start: 540, End: 780}, {Start: 840, End: 1080}}, got)

	// Блок, накрывающий интервал целиком, удаляет его
	got = subtractIntervals(working, []MinuteInterval{{Start: 0, End: 1440}})
	assert.Empty(t, got)

	// Блок вне интервала ничего не меняет
	got = subtractIntervals(working, []MinuteInterval{{Start: 0, End: 540}})
	assert.Equal(t, working, got)
}
