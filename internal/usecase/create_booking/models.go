package create_booking

import (
	"time"

	"github.com/m04kA/Fidden-SchedulingService/pkg/types"
)

// Request модель запроса на создание бронирования
type Request struct {
	UserID     int64            // ID пользователя
	ShopID     int64            // ID салона
	ServiceID  int64            // ID услуги
	ProviderID *int64           // ID провайдера; nil = авто-выбор наименее загруженного
	Date       time.Time        // Дата бронирования (без времени)
	StartTime  types.TimeString // Локальное время начала в таймзоне салона ("10:00")
	Notes      *string          // Дополнительные заметки (опционально)
}

// Response модель ответа с созданным бронированием.
// Временные метки в UTC с суффиксом "Z"; TimezoneID - таймзона салона.
type Response struct {
	ID          int64
	BookingRef  string
	UserID      int64
	ShopID      int64
	ProviderID  int64 // Выбранный провайдер (важно при авто-выборе)
	ServiceID   int64
	BookingDate string
	TimezoneID  string
	StartAt     string
	TotalEnd    string
	Status      string

	// Окно занятости провайдера
	BusyStart       string
	BusyEnd         string
	ProcessingStart *string
	ProcessingEnd   *string

	// Денормализованные данные услуги
	ServiceName  string
	ServicePrice float64
	Notes        *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
