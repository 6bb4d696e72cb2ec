package domain

import "time"

// ServiceConfig параметры планирования услуги.
// Инвариант ProviderBlockMinutes <= DurationMinutes проверяется при сохранении
// конфигурации (fatal), а не при каждом бронировании.
type ServiceConfig struct {
	ID                     int64
	ServiceID              int64
	ShopID                 int64
	DurationMinutes        int
	ProviderBlockMinutes   *int // NULL = равен DurationMinutes
	AllowProcessingOverlap bool
	BufferBeforeMinutes    int
	BufferAfterMinutes     int
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// EffectiveProviderBlockMinutes возвращает жестко блокируемую часть услуги
func (c *ServiceConfig) EffectiveProviderBlockMinutes() int {
	if c.ProviderBlockMinutes == nil {
		return c.DurationMinutes
	}
	return *c.ProviderBlockMinutes
}

// HasProcessingWindow возвращает true, если услуга порождает processing-окно
// (мастер "мягко занят" и может брать другую работу до лимита параллельности)
func (c *ServiceConfig) HasProcessingWindow() bool {
	return c.AllowProcessingOverlap && c.EffectiveProviderBlockMinutes() < c.DurationMinutes
}

// ProcessingMinutes возвращает длительность processing-окна
func (c *ServiceConfig) ProcessingMinutes() int {
	if !c.HasProcessingWindow() {
		return 0
	}
	return c.DurationMinutes - c.EffectiveProviderBlockMinutes()
}
