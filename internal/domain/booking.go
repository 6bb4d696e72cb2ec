package domain

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusConfirmed          BookingStatus = "confirmed"
	StatusInProgress         BookingStatus = "in_progress"
	StatusCompleted          BookingStatus = "completed"
	StatusCancelledByUser    BookingStatus = "cancelled_by_user"
	StatusCancelledByCompany BookingStatus = "cancelled_by_company"
	StatusNoShow             BookingStatus = "no_show"
)

// Booking бронирование с рассчитанным окном занятости.
// Окно (BusyStart..TotalEnd) вычисляется ровно один раз калькулятором при
// создании и больше никогда не пересчитывается: отмена освобождает окно для
// будущих запросов доступности, но не мутирует его границы.
type Booking struct {
	ID         int64
	BookingRef uuid.UUID // публичный идентификатор
	UserID     int64
	ShopID     int64
	ProviderID int64
	ServiceID  int64

	BookingDate time.Time // дата в таймзоне провайдера
	TimezoneID  string    // IANA id для отображения на клиенте

	// Границы окна, все в UTC
	StartAt         time.Time  // момент начала услуги
	BusyStart       time.Time  // StartAt - buffer_before
	BusyEnd         time.Time  // StartAt + provider_block
	ProcessingStart *time.Time // nil, если processing-окна нет
	ProcessingEnd   *time.Time
	TotalEnd        time.Time // StartAt + duration + buffer_after

	Status BookingStatus

	// Денормализованные данные для истории
	ServiceName  string
	ServicePrice float64
	Notes        *string

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking still blocks the provider's calendar
func (b *Booking) IsActive() bool {
	return b.Status != StatusCancelledByUser &&
		b.Status != StatusCancelledByCompany &&
		b.Status != StatusNoShow
}

// CanBeCancelled returns true if the booking can be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusConfirmed
}

// IsCancelled returns true if the booking has been cancelled
func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelledByUser || b.Status == StatusCancelledByCompany
}

// HasProcessingWindow returns true if the booking carries a processing window
func (b *Booking) HasProcessingWindow() bool {
	return b.ProcessingStart != nil && b.ProcessingEnd != nil
}

// ProviderBookingsFilter фильтр для получения бронирований провайдера
type ProviderBookingsFilter struct {
	ProviderID      int64      // Обязательный параметр
	Date            *time.Time // Конкретная дата (опционально)
	IncludeInactive bool       // Включать ли отмененные и no-show
}
