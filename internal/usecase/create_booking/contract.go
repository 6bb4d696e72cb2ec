package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/Fidden-SchedulingService/internal/domain"
	"github.com/m04kA/Fidden-SchedulingService/internal/integrations/catalogservice"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	// GetActiveForDay внутри транзакции блокирует строки через FOR UPDATE
	GetActiveForDay(ctx context.Context, providerID int64, date time.Time) ([]*domain.Booking, error)
	CountActiveForDay(ctx context.Context, providerID int64, date time.Time) (int, error)
}

// RuleSetRepository интерфейс репозитория наборов правил расписания
type RuleSetRepository interface {
	GetByProvider(ctx context.Context, providerID int64) (*domain.RuleSet, error)
	GetShopDefault(ctx context.Context, shopID int64) (*domain.RuleSet, error)
}

// ExceptionRepository интерфейс репозитория исключений расписания
type ExceptionRepository interface {
	GetByProviderAndDate(ctx context.Context, providerID int64, date time.Time) (*domain.Exception, error)
}

// ServiceConfigRepository интерфейс репозитория параметров планирования услуг
type ServiceConfigRepository interface {
	GetByServiceID(ctx context.Context, serviceID int64) (*domain.ServiceConfig, error)
}

// DayLockRepository интерфейс репозитория строк блокировки операционных дней
type DayLockRepository interface {
	// GetOrCreate вызывается до открытия транзакции
	GetOrCreate(ctx context.Context, shopID int64, date time.Time) (*domain.DayLock, error)
	// AcquireForUpdate вызывается внутри транзакции и держит блокировку до её конца
	AcquireForUpdate(ctx context.Context, shopID int64, date time.Time) (*domain.DayLock, error)
}

// CatalogServiceClient интерфейс клиента для CatalogService
type CatalogServiceClient interface {
	GetShop(ctx context.Context, shopID int64) (*catalogservice.Shop, error)
	GetProvider(ctx context.Context, providerID int64) (*catalogservice.Provider, error)
	GetProviders(ctx context.Context, shopID, serviceID int64) ([]*catalogservice.Provider, error)
	GetService(ctx context.Context, serviceID int64) (*catalogservice.Service, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
