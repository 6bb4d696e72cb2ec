// Package schedule чистое ядро движка доступности: резолвер недельных правил,
// генератор сетки кандидатов и калькулятор окон бронирования.
//
// Пакет не ходит в БД и не знает про HTTP: все входные данные передаются
// явно, все функции детерминированы.
package schedule

import (
	"sort"
	"time"

	"github.com/m04kA/Fidden-SchedulingService/pkg/localtime"
)

// MinuteInterval локальный полуоткрытый интервал [Start, End) в минутах от полуночи
type MinuteInterval struct {
	Start int
	End   int
}

// IsValid возвращает true для непустого интервала в границах суток
func (i MinuteInterval) IsValid() bool {
	return i.Start < i.End && i.Start >= 0 && i.End <= localtime.MinutesPerDay
}

// Interval абсолютный полуоткрытый интервал [Start, End)
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps проверяет пересечение двух полуоткрытых интервалов.
// Граничащие интервалы (конец одного равен началу другого) не пересекаются.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// clipIntervals отбрасывает невалидные интервалы и обрезает выходящие за границы суток
func clipIntervals(intervals []MinuteInterval) []MinuteInterval {
	result := make([]MinuteInterval, 0, len(intervals))
	for _, iv := range intervals {
		if iv.Start < 0 {
			iv.Start = 0
		}
		if iv.End > localtime.MinutesPerDay {
			iv.End = localtime.MinutesPerDay
		}
		if iv.Start < iv.End {
			result = append(result, iv)
		}
	}
	return result
}

// mergeIntervals сортирует интервалы и сливает смежные/пересекающиеся
func mergeIntervals(intervals []MinuteInterval) []MinuteInterval {
	if len(intervals) <= 1 {
		return intervals
	}

	sorted := make([]MinuteInterval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	result := []MinuteInterval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &result[len(result)-1]
		if iv.Start <= last.End {
			if iv.End > last.End {
				last.End = iv.End
			}
			continue
		}
		result = append(result, iv)
	}
	return result
}

// subtractIntervals вычитает blocks из intervals (все полуоткрытые)
func subtractIntervals(intervals, blocks []MinuteInterval) []MinuteInterval {
	if len(blocks) == 0 {
		return intervals
	}

	result := intervals
	for _, block := range blocks {
		if !block.IsValid() {
			continue
		}

		next := make([]MinuteInterval, 0, len(result)+1)
		for _, iv := range result {
			// Нет пересечения - интервал остается как есть
			if block.End <= iv.Start || block.Start >= iv.End {
				next = append(next, iv)
				continue
			}
			// Левый остаток
			if iv.Start < block.Start {
				next = append(next, MinuteInterval{Start: iv.Start, End: block.Start})
			}
			// Правый остаток
			if block.End < iv.End {
				next = append(next, MinuteInterval{Start: block.End, End: iv.End})
			}
		}
		result = next
	}
	return result
}

// ceilToGrid округляет минуты от полуночи вверх до ближайшего кратного grid.
// Пример: 545 (9:05) при grid=15 -> 555 (9:15); 540 (9:00) -> 540.
func ceilToGrid(minutes, grid int) int {
	if grid <= 0 {
		return minutes
	}
	remainder := minutes % grid
	if remainder == 0 {
		return minutes
	}
	return minutes + (grid - remainder)
}
