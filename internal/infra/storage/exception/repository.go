package exception

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/Fidden-SchedulingService/internal/domain"
	"github.com/m04kA/Fidden-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/Fidden-SchedulingService/pkg/psqlbuilder"
)

// Repository репозиторий исключений расписания (переопределений на конкретные даты)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория исключений
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Upsert создает или заменяет исключение для (провайдер, дата)
func (r *Repository) Upsert(ctx context.Context, exc *domain.Exception) (*domain.Exception, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	rules := exc.OverrideRules
	if rules == nil {
		rules = []domain.TimeInterval{}
	}
	rulesJSON, err := json.Marshal(rules)
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert: %v", ErrMarshalRules, err)
	}

	query, args, err := psqlbuilder.Insert("availability_exceptions").
		Columns("provider_id", "date", "is_closed", "override_rules", "reason").
		Values(exc.ProviderID, exc.Date, exc.IsClosed, rulesJSON, exc.Reason).
		Suffix(`ON CONFLICT (provider_id, date) DO UPDATE
			SET is_closed = EXCLUDED.is_closed,
			    override_rules = EXCLUDED.override_rules,
			    reason = EXCLUDED.reason,
			    updated_at = NOW()
			RETURNING id, created_at, updated_at`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&exc.ID, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute insert: %v", ErrExecQuery, err)
	}

	exc.CreatedAt = createdAt.Time
	exc.UpdatedAt = updatedAt.Time

	return exc, nil
}

// GetByProviderAndDate получает исключение для провайдера на конкретную дату
// Возвращает ErrExceptionNotFound, если исключения нет
func (r *Repository) GetByProviderAndDate(ctx context.Context, providerID int64, date time.Time) (*domain.Exception, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id", "provider_id", "date", "is_closed", "override_rules", "reason", "created_at", "updated_at",
	).
		From("availability_exceptions").
		Where(squirrel.Eq{"provider_id": providerID}).
		Where(squirrel.Eq{"date": date.Format(domain.DateFormat)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByProviderAndDate - build select query: %v", ErrBuildQuery, err)
	}

	var exc domain.Exception
	var rulesJSON []byte
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&exc.ID,
		&exc.ProviderID,
		&exc.Date,
		&exc.IsClosed,
		&rulesJSON,
		&exc.Reason,
		&createdAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrExceptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByProviderAndDate - scan exception: %v", ErrScanRow, err)
	}

	if err := json.Unmarshal(rulesJSON, &exc.OverrideRules); err != nil {
		return nil, fmt.Errorf("%w: GetByProviderAndDate - unmarshal override_rules: %v", ErrScanRow, err)
	}

	exc.CreatedAt = createdAt.Time
	exc.UpdatedAt = updatedAt.Time

	return &exc, nil
}

// DeleteByProviderAndDate удаляет исключение
func (r *Repository) DeleteByProviderAndDate(ctx context.Context, providerID int64, date time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("availability_exceptions").
		Where(squirrel.Eq{"provider_id": providerID}).
		Where(squirrel.Eq{"date": date.Format(domain.DateFormat)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: DeleteByProviderAndDate - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: DeleteByProviderAndDate - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: DeleteByProviderAndDate - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrExceptionNotFound
	}

	return nil
}
