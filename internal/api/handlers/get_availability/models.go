package get_availability

import (
	"time"

	"github.com/m04kA/Fidden-SchedulingService/internal/domain"
	getAvailability "github.com/m04kA/Fidden-SchedulingService/internal/usecase/get_availability"
)

// AvailabilityResponse HTTP response model
type AvailabilityResponse struct {
	Date       string          `json:"date"`
	ShopID     int64           `json:"shopId"`
	ServiceID  int64           `json:"serviceId"`
	ProviderID *int64          `json:"providerId,omitempty"`
	TimezoneID string          `json:"timezoneId"`
	Slots      []AvailableSlot `json:"slots"`
}

// AvailableSlot модель доступного момента начала
type AvailableSlot struct {
	StartAt           string  `json:"startAt"`   // UTC, "2026-06-15T14:00:00Z"
	LocalTime         string  `json:"localTime"` // локальное время салона, "10:00"
	AvailabilityCount int     `json:"availabilityCount"`
	ProviderIDs       []int64 `json:"providerIds"`
}

// ToUseCaseRequest создает запрос use case из path и query параметров
func ToUseCaseRequest(userID, shopID, serviceID int64, providerID *int64, dateStr string) (*getAvailability.Request, error) {
	// Парсим дату
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, err
	}

	return &getAvailability.Request{
		UserID:     userID,
		ShopID:     shopID,
		ServiceID:  serviceID,
		ProviderID: providerID,
		Date:       date,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailability.Response) *AvailabilityResponse {
	slots := make([]AvailableSlot, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = AvailableSlot{
			StartAt:           slot.StartAt,
			LocalTime:         slot.LocalTime.String(),
			AvailabilityCount: slot.AvailabilityCount,
			ProviderIDs:       slot.ProviderIDs,
		}
	}

	return &AvailabilityResponse{
		Date:       resp.Date,
		ShopID:     resp.ShopID,
		ServiceID:  resp.ServiceID,
		ProviderID: resp.ProviderID,
		TimezoneID: resp.TimezoneID,
		Slots:      slots,
	}
}
