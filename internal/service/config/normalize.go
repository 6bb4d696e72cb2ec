package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/Fidden-SchedulingService/internal/domain"
	"github.com/m04kA/Fidden-SchedulingService/internal/service/config/models"
	"github.com/m04kA/Fidden-SchedulingService/pkg/types"
)

// Форматы времени, принимаемые на входе. Храним всегда в 24-часовом "HH:MM".
var acceptedTimeFormats = []string{
	"15:04",
	"15:04:05",
	"3:04 PM",
	"3:04PM",
	"3 PM",
	"3PM",
}

// Принимаемые написания дней недели -> нормализованный трехбуквенный ключ
var weekdayAliases = map[string]string{
	"mon": "mon", "monday": "mon",
	"tue": "tue", "tues": "tue", "tuesday": "tue",
	"wed": "wed", "wednesday": "wed",
	"thu": "thu", "thur": "thu", "thurs": "thu", "thursday": "thu",
	"fri": "fri", "friday": "fri",
	"sat": "sat", "saturday": "sat",
	"sun": "sun", "sunday": "sun",
}

// normalizeTime приводит строку времени к каноническому "HH:MM".
// Понимает 12-часовой формат с AM/PM в любом регистре.
func normalizeTime(raw string) (types.TimeString, error) {
	cleaned := strings.ToUpper(strings.TrimSpace(raw))
	if cleaned == "" {
		return "", fmt.Errorf("empty time value")
	}

	for _, format := range acceptedTimeFormats {
		parsed, err := time.Parse(format, cleaned)
		if err == nil {
			return types.NewTimeString(parsed), nil
		}
	}

	return "", fmt.Errorf("unrecognized time value %q", raw)
}

// normalizeWeekday приводит название дня недели к трехбуквенному ключу
func normalizeWeekday(raw string) (string, error) {
	key, ok := weekdayAliases[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", fmt.Errorf("unrecognized weekday %q", raw)
	}
	return key, nil
}

// normalizeInterval нормализует один интервал.
// Конец "00:00" трактуется как полночь следующего дня и поэтому допустим
// после любого начала; в остальных случаях начало должно быть раньше конца.
func normalizeInterval(input models.TimeIntervalInput) (domain.TimeInterval, error) {
	start, err := normalizeTime(input.Start)
	if err != nil {
		return domain.TimeInterval{}, fmt.Errorf("start: %v", err)
	}

	end, err := normalizeTime(input.End)
	if err != nil {
		return domain.TimeInterval{}, fmt.Errorf("end: %v", err)
	}

	// Времена уже нормализованы, ошибки парсинга исключены
	startMin, _ := start.Minutes()
	endMin, _ := end.Minutes()
	if endMin != 0 && startMin >= endMin {
		return domain.TimeInterval{}, fmt.Errorf("start %s is not before end %s", start, end)
	}

	return domain.TimeInterval{Start: start, End: end}, nil
}

// normalizeWeeklyRules нормализует недельное расписание.
// Некорректные записи отбрасываются с предупреждением в лог - битое правило
// не должно ронять весь набор, провайдер просто получит меньше рабочих часов.
func (s *Service) normalizeWeeklyRules(raw map[string][]models.TimeIntervalInput) map[string][]domain.TimeInterval {
	weekly := make(map[string][]domain.TimeInterval, len(raw))

	for rawDay, intervals := range raw {
		day, err := normalizeWeekday(rawDay)
		if err != nil {
			s.logger.Warn("normalizeWeeklyRules: dropping day entry: %v", err)
			continue
		}

		for _, input := range intervals {
			interval, err := normalizeInterval(input)
			if err != nil {
				s.logger.Warn("normalizeWeeklyRules: dropping interval for %s: %v", day, err)
				continue
			}
			weekly[day] = append(weekly[day], interval)
		}
	}

	return weekly
}

// normalizeBreaks нормализует перерывы. Некорректные записи отбрасываются
// с предупреждением, как и в normalizeWeeklyRules.
func (s *Service) normalizeBreaks(raw []models.BreakRuleInput) []domain.BreakRule {
	breaks := make([]domain.BreakRule, 0, len(raw))

	for i, input := range raw {
		interval, err := normalizeInterval(models.TimeIntervalInput{Start: input.Start, End: input.End})
		if err != nil {
			s.logger.Warn("normalizeBreaks: dropping break #%d: %v", i, err)
			continue
		}

		days := make([]string, 0, len(input.Days))
		valid := true
		for _, rawDay := range input.Days {
			day, err := normalizeWeekday(rawDay)
			if err != nil {
				s.logger.Warn("normalizeBreaks: dropping break #%d: %v", i, err)
				valid = false
				break
			}
			days = append(days, day)
		}
		if !valid {
			continue
		}

		// Пустой список дней означает, что перерыв действует каждый день
		if len(days) == 0 {
			days = append(days, domain.WeekdayKeys...)
		}

		breaks = append(breaks, domain.BreakRule{
			Start: interval.Start,
			End:   interval.End,
			Days:  days,
		})
	}

	return breaks
}
