package schedule

import (
	"time"

	"github.com/m04kA/Fidden-SchedulingService/internal/domain"
	"github.com/m04kA/Fidden-SchedulingService/pkg/localtime"
)

// ResolveDay вычисляет рабочие интервалы провайдера на дату из нормализованного
// RuleSet и опционального исключения на эту дату.
//
// Приоритет:
//  1. Exception с IsClosed - день закрыт, пустой результат
//  2. Exception с собственными часами - ПОЛНОСТЬЮ заменяют недельные правила
//  3. WeeklyRules[день недели] минус перерывы этого дня
//
// Результат упорядочен по возрастанию, обрезан до [00:00, 24:00),
// смежные и пересекающиеся интервалы слиты. Функция чистая: одинаковое
// состояние правил и дата дают одинаковый результат при каждом вызове.
func ResolveDay(ruleset *domain.RuleSet, exception *domain.Exception, date time.Time) []MinuteInterval {
	if exception != nil {
		if exception.IsClosed {
			return []MinuteInterval{}
		}
		if exception.HasOverrideHours() {
			// Кастомные часы исключения заменяют недельные правила целиком,
			// перерывы к ним не применяются
			return mergeIntervals(clipIntervals(toMinuteIntervals(exception.OverrideRules)))
		}
	}

	if ruleset == nil {
		return []MinuteInterval{}
	}

	dayKey := domain.WeekdayKey(date)

	working := clipIntervals(toMinuteIntervals(ruleset.IntervalsFor(dayKey)))
	if len(working) == 0 {
		return []MinuteInterval{}
	}

	breaks := clipIntervals(toMinuteIntervals(ruleset.BreaksFor(dayKey)))

	return mergeIntervals(subtractIntervals(mergeIntervals(working), breaks))
}

// toMinuteIntervals конвертирует нормализованные "HH:MM"-интервалы в минутные.
// Записи, не прошедшие парсинг, отбрасываются: валидация формата уже произошла
// при сохранении RuleSet, сюда попадает только нормализованное представление.
func toMinuteIntervals(intervals []domain.TimeInterval) []MinuteInterval {
	result := make([]MinuteInterval, 0, len(intervals))
	for _, iv := range intervals {
		start, err := iv.Start.Minutes()
		if err != nil {
			continue
		}

		var end int
		if iv.End == "00:00" && start > 0 {
			// Конец "00:00" означает полночь следующего дня
			end = localtime.MinutesPerDay
		} else {
			end, err = iv.End.Minutes()
			if err != nil {
				continue
			}
		}

		result = append(result, MinuteInterval{Start: start, End: end})
	}
	return result
}
