package serviceconfig

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/Fidden-SchedulingService/internal/domain"
	"github.com/m04kA/Fidden-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/Fidden-SchedulingService/pkg/psqlbuilder"
)

// Repository репозиторий параметров планирования услуг
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Upsert создает или заменяет конфигурацию услуги
// Инвариант provider_block <= duration уже проверен сервисом конфигурации
func (r *Repository) Upsert(ctx context.Context, cfg *domain.ServiceConfig) (*domain.ServiceConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("service_configs").
		Columns(
			"service_id",
			"shop_id",
			"duration_minutes",
			"provider_block_minutes",
			"allow_processing_overlap",
			"buffer_before_minutes",
			"buffer_after_minutes",
		).
		Values(
			cfg.ServiceID,
			cfg.ShopID,
			cfg.DurationMinutes,
			cfg.ProviderBlockMinutes,
			cfg.AllowProcessingOverlap,
			cfg.BufferBeforeMinutes,
			cfg.BufferAfterMinutes,
		).
		Suffix(`ON CONFLICT (service_id) DO UPDATE
			SET duration_minutes = EXCLUDED.duration_minutes,
			    provider_block_minutes = EXCLUDED.provider_block_minutes,
			    allow_processing_overlap = EXCLUDED.allow_processing_overlap,
			    buffer_before_minutes = EXCLUDED.buffer_before_minutes,
			    buffer_after_minutes = EXCLUDED.buffer_after_minutes,
			    updated_at = NOW()
			RETURNING id, created_at, updated_at`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&cfg.ID, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute insert: %v", ErrExecQuery, err)
	}

	cfg.CreatedAt = createdAt.Time
	cfg.UpdatedAt = updatedAt.Time

	return cfg, nil
}

// GetByServiceID получает конфигурацию услуги
// Возвращает ErrConfigNotFound, если конфигурация отсутствует
func (r *Repository) GetByServiceID(ctx context.Context, serviceID int64) (*domain.ServiceConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"service_id",
		"shop_id",
		"duration_minutes",
		"provider_block_minutes",
		"allow_processing_overlap",
		"buffer_before_minutes",
		"buffer_after_minutes",
		"created_at",
		"updated_at",
	).
		From("service_configs").
		Where(squirrel.Eq{"service_id": serviceID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByServiceID - build select query: %v", ErrBuildQuery, err)
	}

	var cfg domain.ServiceConfig
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&cfg.ID,
		&cfg.ServiceID,
		&cfg.ShopID,
		&cfg.DurationMinutes,
		&cfg.ProviderBlockMinutes,
		&cfg.AllowProcessingOverlap,
		&cfg.BufferBeforeMinutes,
		&cfg.BufferAfterMinutes,
		&createdAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrConfigNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByServiceID - scan config: %v", ErrScanRow, err)
	}

	cfg.CreatedAt = createdAt.Time
	cfg.UpdatedAt = updatedAt.Time

	return &cfg, nil
}
