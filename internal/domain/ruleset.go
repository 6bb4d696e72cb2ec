package domain

import (
	"time"

	"github.com/m04kA/Fidden-SchedulingService/pkg/types"
)

// TimeInterval локальный интервал времени суток [Start, End)
// После нормализации при сохранении оба значения всегда в 24-часовом формате "HH:MM"
type TimeInterval struct {
	Start types.TimeString `json:"start"`
	End   types.TimeString `json:"end"`
}

// BreakRule перерыв, вычитаемый из рабочих интервалов в указанные дни недели
type BreakRule struct {
	Start types.TimeString `json:"start"`
	End   types.TimeString `json:"end"`
	Days  []string         `json:"days"` // нормализованные ключи: "mon".."sun"
}

// AppliesTo возвращает true, если перерыв действует в указанный день недели
func (b BreakRule) AppliesTo(dayKey string) bool {
	for _, d := range b.Days {
		if d == dayKey {
			return true
		}
	}
	return false
}

// WeeklyRules недельное расписание: ключ дня недели -> упорядоченные интервалы работы
type WeeklyRules map[string][]TimeInterval

// RuleSet правило доступности провайдера или салона.
// Инвариант: в БД хранится только нормализованное представление -
// валидная IANA-таймзона, ключи "mon".."sun", времена "HH:MM" (24ч).
// Нормализация выполняется один раз при сохранении (service/config),
// resolver и grid никогда не парсят сырые строки.
type RuleSet struct {
	ID                  int64
	Name                string
	Timezone            string // валидный IANA id
	WeeklyRules         WeeklyRules
	Breaks              []BreakRule
	GridIntervalMinutes int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IntervalsFor возвращает рабочие интервалы для нормализованного ключа дня недели
func (r *RuleSet) IntervalsFor(dayKey string) []TimeInterval {
	if r.WeeklyRules == nil {
		return nil
	}
	return r.WeeklyRules[dayKey]
}

// BreaksFor возвращает перерывы, действующие в указанный день недели
func (r *RuleSet) BreaksFor(dayKey string) []TimeInterval {
	var result []TimeInterval
	for _, b := range r.Breaks {
		if b.AppliesTo(dayKey) {
			result = append(result, TimeInterval{Start: b.Start, End: b.End})
		}
	}
	return result
}

// WeekdayKey возвращает нормализованный 3-буквенный ключ дня недели для даты
func WeekdayKey(date time.Time) string {
	switch date.Weekday() {
	case time.Monday:
		return "mon"
	case time.Tuesday:
		return "tue"
	case time.Wednesday:
		return "wed"
	case time.Thursday:
		return "thu"
	case time.Friday:
		return "fri"
	case time.Saturday:
		return "sat"
	default:
		return "sun"
	}
}
