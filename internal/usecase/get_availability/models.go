package get_availability

import (
	"time"

	"github.com/m04kA/Fidden-SchedulingService/pkg/types"
)

// Request модель запроса доступных слотов
type Request struct {
	UserID     int64     // ID пользователя (для логирования, не влияет на результат)
	ShopID     int64     // ID салона
	ServiceID  int64     // ID услуги
	ProviderID *int64    // ID провайдера; nil = агрегировать по всем провайдерам услуги
	Date       time.Time // Дата для получения слотов (без времени)
}

// Response модель ответа со списком доступных слотов
type Response struct {
	Date       string // Дата, на которую запрашивались слоты ("2026-06-15")
	ShopID     int64
	ServiceID  int64
	ProviderID *int64
	TimezoneID string // IANA таймзона салона, в которой считалось расписание
	Slots      []Slot // Список доступных слотов по возрастанию времени
}

// Slot момент начала, доступный хотя бы у одного провайдера
type Slot struct {
	StartAt           string           // Момент начала в UTC ("2026-06-15T14:00:00Z")
	LocalTime         types.TimeString // Локальное время салона ("10:00")
	AvailabilityCount int              // Сколько провайдеров свободны в этот момент
	ProviderIDs       []int64          // Свободные провайдеры, по возрастанию ID
}
