package schedule

import (
	"time"

	"github.com/m04kA/Fidden-SchedulingService/internal/domain"
)

// Window рассчитанное окно занятости для одного бронирования, все моменты в UTC
type Window struct {
	StartAt         time.Time
	BusyStart       time.Time
	BusyEnd         time.Time
	ProcessingStart *time.Time
	ProcessingEnd   *time.Time
	TotalEnd        time.Time
}

// ComputeWindow чистая функция расчета окна бронирования:
//
//	busy_start      = start - buffer_before
//	busy_end        = start + provider_block (по умолчанию равен duration)
//	processing_*    = [busy_end, start + duration), только если разрешено
//	                  перекрытие и provider_block < duration
//	total_end       = start + duration + buffer_after
//
// Окно вычисляется ровно один раз при создании бронирования и сохраняется
// как есть; побочных эффектов нет.
func ComputeWindow(start time.Time, cfg *domain.ServiceConfig) Window {
	start = start.UTC()

	blockMinutes := cfg.EffectiveProviderBlockMinutes()

	w := Window{
		StartAt:   start,
		BusyStart: start.Add(-time.Duration(cfg.BufferBeforeMinutes) * time.Minute),
		BusyEnd:   start.Add(time.Duration(blockMinutes) * time.Minute),
		TotalEnd:  start.Add(time.Duration(cfg.DurationMinutes+cfg.BufferAfterMinutes) * time.Minute),
	}

	if cfg.HasProcessingWindow() {
		processingStart := w.BusyEnd
		processingEnd := start.Add(time.Duration(cfg.DurationMinutes) * time.Minute)
		w.ProcessingStart = &processingStart
		w.ProcessingEnd = &processingEnd
	}

	return w
}
