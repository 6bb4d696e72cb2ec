package create_booking

import (
	"time"

	"github.com/m04kA/Fidden-SchedulingService/internal/domain"
	createBooking "github.com/m04kA/Fidden-SchedulingService/internal/usecase/create_booking"
	"github.com/m04kA/Fidden-SchedulingService/pkg/types"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	UserID      int64   `json:"userId"`
	ShopID      int64   `json:"shopId"`
	ServiceID   int64   `json:"serviceId"`
	ProviderID  *int64  `json:"providerId,omitempty"` // nil = авто-выбор провайдера
	BookingDate string  `json:"bookingDate"`          // "2026-06-15"
	StartTime   string  `json:"startTime"`            // "10:00", локальное время салона
	Notes       *string `json:"notes,omitempty"`
}

// BookingResponse HTTP response model.
// Все временные метки в UTC с суффиксом "Z".
type BookingResponse struct {
	ID              int64   `json:"id"`
	BookingRef      string  `json:"bookingRef"`
	UserID          int64   `json:"userId"`
	ShopID          int64   `json:"shopId"`
	ProviderID      int64   `json:"providerId"`
	ServiceID       int64   `json:"serviceId"`
	BookingDate     string  `json:"bookingDate"`
	TimezoneID      string  `json:"timezoneId"`
	StartAt         string  `json:"startAt"`
	TotalEnd        string  `json:"totalEnd"`
	Status          string  `json:"status"`
	BusyStart       string  `json:"busyStart"`
	BusyEnd         string  `json:"busyEnd"`
	ProcessingStart *string `json:"processingStart,omitempty"`
	ProcessingEnd   *string `json:"processingEnd,omitempty"`
	ServiceName     string  `json:"serviceName"`
	ServicePrice    float64 `json:"servicePrice"`
	Notes           *string `json:"notes,omitempty"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest() (*createBooking.Request, error) {
	// Парсим дату
	bookingDate, err := time.Parse(domain.DateFormat, r.BookingDate)
	if err != nil {
		return nil, errInvalidDateFormat
	}

	// Парсим время
	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, errInvalidTimeFormat
	}

	return &createBooking.Request{
		UserID:     r.UserID,
		ShopID:     r.ShopID,
		ServiceID:  r.ServiceID,
		ProviderID: r.ProviderID,
		Date:       bookingDate,
		StartTime:  startTime,
		Notes:      r.Notes,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	return &BookingResponse{
		ID:              resp.ID,
		BookingRef:      resp.BookingRef,
		UserID:          resp.UserID,
		ShopID:          resp.ShopID,
		ProviderID:      resp.ProviderID,
		ServiceID:       resp.ServiceID,
		BookingDate:     resp.BookingDate,
		TimezoneID:      resp.TimezoneID,
		StartAt:         resp.StartAt,
		TotalEnd:        resp.TotalEnd,
		Status:          resp.Status,
		BusyStart:       resp.BusyStart,
		BusyEnd:         resp.BusyEnd,
		ProcessingStart: resp.ProcessingStart,
		ProcessingEnd:   resp.ProcessingEnd,
		ServiceName:     resp.ServiceName,
		ServicePrice:    resp.ServicePrice,
		Notes:           resp.Notes,
		CreatedAt:       resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       resp.UpdatedAt.Format(time.RFC3339),
	}
}
