package config

import (
	"context"
	"time"

	"github.com/m04kA/Fidden-SchedulingService/internal/domain"
	"github.com/m04kA/Fidden-SchedulingService/internal/integrations/catalogservice"
)

// RuleSetRepository интерфейс репозитория наборов правил расписания
type RuleSetRepository interface {
	Create(ctx context.Context, ruleset *domain.RuleSet) (*domain.RuleSet, error)
	GetByProvider(ctx context.Context, providerID int64) (*domain.RuleSet, error)
	GetShopDefault(ctx context.Context, shopID int64) (*domain.RuleSet, error)
	AssignToProvider(ctx context.Context, providerID, rulesetID int64) error
	AssignToShop(ctx context.Context, shopID, rulesetID int64) error
}

// ExceptionRepository интерфейс репозитория исключений расписания
type ExceptionRepository interface {
	Upsert(ctx context.Context, exc *domain.Exception) (*domain.Exception, error)
	GetByProviderAndDate(ctx context.Context, providerID int64, date time.Time) (*domain.Exception, error)
	DeleteByProviderAndDate(ctx context.Context, providerID int64, date time.Time) error
}

// ServiceConfigRepository интерфейс репозитория параметров планирования услуг
type ServiceConfigRepository interface {
	Upsert(ctx context.Context, cfg *domain.ServiceConfig) (*domain.ServiceConfig, error)
	GetByServiceID(ctx context.Context, serviceID int64) (*domain.ServiceConfig, error)
}

// CatalogServiceClient интерфейс клиента для CatalogService
type CatalogServiceClient interface {
	GetShop(ctx context.Context, shopID int64) (*catalogservice.Shop, error)
	GetProvider(ctx context.Context, providerID int64) (*catalogservice.Provider, error)
	GetService(ctx context.Context, serviceID int64) (*catalogservice.Service, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
