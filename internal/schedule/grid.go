package schedule

import (
	"time"

	"github.com/m04kA/Fidden-SchedulingService/internal/domain"
	"github.com/m04kA/Fidden-SchedulingService/pkg/localtime"
)

// SequenceParams входные данные генератора кандидатов
type SequenceParams struct {
	Date     time.Time      // дата в таймзоне провайдера
	Location *time.Location // таймзона провайдера
	Windows  []MinuteInterval
	Grid     int // шаг сетки в минутах

	Config *domain.ServiceConfig

	BusyBlocks       []Interval
	ProcessingBlocks []Interval
	MaxConcurrent    int // лимит параллельных processing-окон провайдера

	NotBefore time.Time // слоты не позже этого момента отбрасываются; zero = без фильтра
}

// Sequence ленивая конечная последовательность валидных моментов начала,
// по возрастанию. Последовательность чистая и перезапускаемая: повторный
// обход с теми же входными данными дает тот же результат.
//
// Итерация идет по минутным смещениям от полуночи, а не по прибавлению
// timedelta к aware-моменту - это исключает дрейф сетки при DST-переходах.
type Sequence struct {
	params SequenceParams

	windowIdx  int
	currentMin int
}

// NewSequence создает последовательность кандидатов
func NewSequence(params SequenceParams) *Sequence {
	if params.Grid <= 0 {
		params.Grid = domain.DefaultGridIntervalMinutes
	}
	if params.MaxConcurrent <= 0 {
		params.MaxConcurrent = domain.DefaultMaxConcurrentProcessingJobs
	}
	s := &Sequence{params: params}
	s.Reset()
	return s
}

// Reset перезапускает последовательность с начала
func (s *Sequence) Reset() {
	s.windowIdx = 0
	if len(s.params.Windows) > 0 {
		s.currentMin = ceilToGrid(s.params.Windows[0].Start, s.params.Grid)
	}
}

// Next возвращает следующий валидный момент начала.
// Второе значение false означает конец последовательности.
func (s *Sequence) Next() (time.Time, bool) {
	cfg := s.params.Config
	totalMinutes := cfg.DurationMinutes + cfg.BufferAfterMinutes
	blockMinutes := cfg.EffectiveProviderBlockMinutes()

	for s.windowIdx < len(s.params.Windows) {
		window := s.params.Windows[s.windowIdx]

		// Услуга целиком (включая пост-буфер) должна помещаться в окно
		if s.currentMin >= window.End || s.currentMin+totalMinutes > window.End {
			s.advanceWindow()
			continue
		}

		candidateMin := s.currentMin
		s.currentMin += s.params.Grid

		// Локализуем и начало кандидата, и конец его busy-окна: DST-разрыв
		// может прийтись на середину услуги, а не только на ее начало
		candidate, ok := localtime.Localize(s.params.Date, candidateMin, s.params.Location)
		if !ok {
			continue
		}
		if _, ok := localtime.Localize(s.params.Date, candidateMin+blockMinutes, s.params.Location); !ok {
			continue
		}

		// Прошедшие слоты не предлагаем
		if !s.params.NotBefore.IsZero() && !candidate.After(s.params.NotBefore) {
			continue
		}

		w := ComputeWindow(candidate, cfg)

		// Busy-окно кандидата не должно пересекаться ни с одним busy-блоком
		if s.collidesWithBusy(w) {
			continue
		}

		// Processing-окно ограничено лимитом параллельности
		if w.ProcessingStart != nil && s.processingCount(w) >= s.params.MaxConcurrent {
			continue
		}

		return candidate, true
	}

	return time.Time{}, false
}

// All собирает всю последовательность в слайс (последовательность
// предварительно перезапускается)
func (s *Sequence) All() []time.Time {
	s.Reset()
	result := make([]time.Time, 0)
	for {
		candidate, ok := s.Next()
		if !ok {
			break
		}
		result = append(result, candidate)
	}
	s.Reset()
	return result
}

// Contains проверяет, входит ли точный момент в последовательность.
// Используется для live-ревалидации запрошенного слота под блокировкой.
func (s *Sequence) Contains(instant time.Time) bool {
	s.Reset()
	defer s.Reset()
	for {
		candidate, ok := s.Next()
		if !ok {
			return false
		}
		if candidate.Equal(instant) {
			return true
		}
		if candidate.After(instant) {
			return false
		}
	}
}

func (s *Sequence) advanceWindow() {
	s.windowIdx++
	if s.windowIdx < len(s.params.Windows) {
		s.currentMin = ceilToGrid(s.params.Windows[s.windowIdx].Start, s.params.Grid)
	}
}

func (s *Sequence) collidesWithBusy(w Window) bool {
	for _, block := range s.params.BusyBlocks {
		if Overlaps(w.BusyStart, w.BusyEnd, block.Start, block.End) {
			return true
		}
	}
	return false
}

func (s *Sequence) processingCount(w Window) int {
	count := 0
	for _, block := range s.params.ProcessingBlocks {
		if Overlaps(*w.ProcessingStart, *w.ProcessingEnd, block.Start, block.End) {
			count++
		}
	}
	return count
}
