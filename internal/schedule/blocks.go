package schedule

import (
	"github.com/m04kA/Fidden-SchedulingService/internal/domain"
)

// BuildBlocks строит busy- и processing-блоки провайдера из его активных бронирований.
//
// Для бронирования без processing-окна жестко занято все окно целиком:
// [BusyStart, TotalEnd) - пред- и пост-буферы включаются в занятость.
// Для бронирования с processing-окном занятость распадается на три части:
//
//	[BusyStart, BusyEnd)        - busy (мастер занят)
//	[ProcessingStart, ProcessingEnd) - processing (мягкая занятость)
//	[ProcessingEnd, TotalEnd)   - busy (завершение/уборка, если есть пост-буфер)
//
// Неактивные бронирования (отмененные, no-show) календарь не блокируют.
func BuildBlocks(bookings []*domain.Booking) (busy, processing []Interval) {
	busy = make([]Interval, 0, len(bookings))
	processing = make([]Interval, 0)

	for _, b := range bookings {
		if !b.IsActive() {
			continue
		}

		if !b.HasProcessingWindow() {
			if b.BusyStart.Before(b.TotalEnd) {
				busy = append(busy, Interval{Start: b.BusyStart, End: b.TotalEnd})
			}
			continue
		}

		if b.BusyStart.Before(b.BusyEnd) {
			busy = append(busy, Interval{Start: b.BusyStart, End: b.BusyEnd})
		}
		if b.ProcessingStart.Before(*b.ProcessingEnd) {
			processing = append(processing, Interval{Start: *b.ProcessingStart, End: *b.ProcessingEnd})
		}
		if b.ProcessingEnd.Before(b.TotalEnd) {
			busy = append(busy, Interval{Start: *b.ProcessingEnd, End: b.TotalEnd})
		}
	}

	return busy, processing
}
