package catalogservice

// Shop модель салона из CatalogService
type Shop struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Timezone   string  `json:"timezone"` // IANA идентификатор, например "America/New_York"
	IsActive   bool    `json:"is_active"`
	ManagerIDs []int64 `json:"manager_ids"`
}

// IsManager проверяет, что пользователь является менеджером салона
func (s *Shop) IsManager(userID int64) bool {
	for _, id := range s.ManagerIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Provider модель провайдера (мастера) из CatalogService
type Provider struct {
	ID                          int64   `json:"id"`
	ShopID                      int64   `json:"shop_id"`
	Name                        string  `json:"name"`
	IsActive                    bool    `json:"is_active"`
	AllowAnyProviderBooking     bool    `json:"allow_any_provider_booking"`
	MaxConcurrentProcessingJobs int     `json:"max_concurrent_processing_jobs"`
	ServiceIDs                  []int64 `json:"service_ids"`
}

// OffersService проверяет, что провайдер оказывает услугу
func (p *Provider) OffersService(serviceID int64) bool {
	for _, id := range p.ServiceIDs {
		if id == serviceID {
			return true
		}
	}
	return false
}

// Service модель услуги из CatalogService
type Service struct {
	ID     int64   `json:"id"`
	ShopID int64   `json:"shop_id"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
}

// ErrorResponse модель ошибки от CatalogService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
