package models

import (
	"errors"
	"time"

	"github.com/m04kA/Fidden-SchedulingService/internal/domain"
	"github.com/m04kA/Fidden-SchedulingService/pkg/localtime"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	UserID             int64  `json:"userId"`
	CancellationReason string `json:"cancellationReason"`
}

// UpdateStatusRequest запрос на обновление статуса бронирования
type UpdateStatusRequest struct {
	UserID int64  `json:"userId"`
	Status string `json:"status"`
}

// GetUserBookingsRequest запрос на получение бронирований пользователя
type GetUserBookingsRequest struct {
	UserID int64   `json:"userId"`
	Status *string `json:"status,omitempty"`
}

// GetProviderBookingsRequest запрос на получение бронирований провайдера
type GetProviderBookingsRequest struct {
	UserID          int64      `json:"userId"`
	ProviderID      int64      `json:"providerId"`
	Date            *time.Time `json:"date,omitempty"`            // Фильтр по дате (опционально)
	IncludeInactive bool       `json:"includeInactive,omitempty"` // Включить отменённые бронирования
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetProviderBookingsRequest) ToDomainFilter() domain.ProviderBookingsFilter {
	return domain.ProviderBookingsFilter{
		ProviderID:      r.ProviderID,
		Date:            r.Date,
		IncludeInactive: r.IncludeInactive,
	}
}

// Response модели

// BookingResponse ответ с данными бронирования.
// Все временные метки отдаются в UTC с суффиксом "Z"; TimezoneID позволяет
// клиенту отобразить их в локальном времени салона.
type BookingResponse struct {
	ID          int64  `json:"id"`
	BookingRef  string `json:"bookingRef"`
	UserID      int64  `json:"userId"`
	ShopID      int64  `json:"shopId"`
	ProviderID  int64  `json:"providerId"`
	ServiceID   int64  `json:"serviceId"`
	BookingDate string `json:"bookingDate"` // "2026-06-15"
	TimezoneID  string `json:"timezoneId"`  // IANA идентификатор салона
	StartAt     string `json:"startAt"`     // UTC, "2026-06-15T14:00:00Z"
	TotalEnd    string `json:"totalEnd"`
	Status      string `json:"status"`

	// Окно занятости провайдера
	BusyStart       string  `json:"busyStart"`
	BusyEnd         string  `json:"busyEnd"`
	ProcessingStart *string `json:"processingStart,omitempty"`
	ProcessingEnd   *string `json:"processingEnd,omitempty"`

	// Денормализованные данные услуги
	ServiceName  string  `json:"serviceName"`
	ServicePrice float64 `json:"servicePrice"`
	Notes        *string `json:"notes,omitempty"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:                 b.ID,
		BookingRef:         b.BookingRef.String(),
		UserID:             b.UserID,
		ShopID:             b.ShopID,
		ProviderID:         b.ProviderID,
		ServiceID:          b.ServiceID,
		BookingDate:        b.BookingDate.Format(domain.DateFormat),
		TimezoneID:         b.TimezoneID,
		StartAt:            localtime.ToUTC(b.StartAt),
		TotalEnd:           localtime.ToUTC(b.TotalEnd),
		Status:             string(b.Status),
		BusyStart:          localtime.ToUTC(b.BusyStart),
		BusyEnd:            localtime.ToUTC(b.BusyEnd),
		ServiceName:        b.ServiceName,
		ServicePrice:       b.ServicePrice,
		Notes:              b.Notes,
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}

	if b.ProcessingStart != nil {
		ps := localtime.ToUTC(*b.ProcessingStart)
		resp.ProcessingStart = &ps
	}
	if b.ProcessingEnd != nil {
		pe := localtime.ToUTC(*b.ProcessingEnd)
		resp.ProcessingEnd = &pe
	}
	if b.CancelledAt != nil {
		cancelledStr := b.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	if bookings == nil {
		return &BookingListResponse{
			Bookings: []BookingResponse{},
		}
	}

	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, len(bookings)),
	}

	for i, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings[i] = *bookingResp
		}
	}

	return resp
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s := domain.BookingStatus(status)

	validStatuses := []domain.BookingStatus{
		domain.StatusConfirmed,
		domain.StatusInProgress,
		domain.StatusCompleted,
		domain.StatusCancelledByUser,
		domain.StatusCancelledByCompany,
		domain.StatusNoShow,
	}

	for _, valid := range validStatuses {
		if s == valid {
			return s, nil
		}
	}

	return "", ErrInvalidStatus
}
