package ruleset

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/Fidden-SchedulingService/internal/domain"
	"github.com/m04kA/Fidden-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/Fidden-SchedulingService/pkg/psqlbuilder"
)

const rulesetColumns = "id, name, timezone, weekly_rules, breaks, grid_interval_minutes, created_at, updated_at"

// Repository репозиторий наборов правил доступности и их привязок
// к провайдерам и салонам
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет новый набор правил (уже нормализованный сервисом конфигурации)
func (r *Repository) Create(ctx context.Context, rs *domain.RuleSet) (*domain.RuleSet, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	rulesJSON, breaksJSON, err := marshalRules(rs)
	if err != nil {
		return nil, err
	}

	query, args, err := psqlbuilder.Insert("rulesets").
		Columns("name", "timezone", "weekly_rules", "breaks", "grid_interval_minutes").
		Values(rs.Name, rs.Timezone, rulesJSON, breaksJSON, rs.GridIntervalMinutes).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&rs.ID, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	rs.CreatedAt = createdAt.Time
	rs.UpdatedAt = updatedAt.Time

	return rs, nil
}

// Update обновляет набор правил
func (r *Repository) Update(ctx context.Context, id int64, rs *domain.RuleSet) (*domain.RuleSet, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	rulesJSON, breaksJSON, err := marshalRules(rs)
	if err != nil {
		return nil, err
	}

	query, args, err := psqlbuilder.Update("rulesets").
		Set("name", rs.Name).
		Set("timezone", rs.Timezone).
		Set("weekly_rules", rulesJSON).
		Set("breaks", breaksJSON).
		Set("grid_interval_minutes", rs.GridIntervalMinutes).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrRuleSetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	rs.ID = id
	rs.CreatedAt = createdAt.Time
	rs.UpdatedAt = updatedAt.Time

	return rs, nil
}

// GetByID получает набор правил по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.RuleSet, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(rulesetColumns).
		From("rulesets").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	return r.scanRuleSet(executor.QueryRowContext(ctx, query, args...), "GetByID")
}

// GetByProvider получает набор правил, назначенный провайдеру
// Возвращает ErrRuleSetNotFound, если у провайдера нет собственного набора
func (r *Repository) GetByProvider(ctx context.Context, providerID int64) (*domain.RuleSet, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"r.id", "r.name", "r.timezone", "r.weekly_rules", "r.breaks", "r.grid_interval_minutes", "r.created_at", "r.updated_at",
	).
		From("rulesets r").
		Join("provider_rulesets pr ON pr.ruleset_id = r.id").
		Where(squirrel.Eq{"pr.provider_id": providerID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByProvider - build select query: %v", ErrBuildQuery, err)
	}

	return r.scanRuleSet(executor.QueryRowContext(ctx, query, args...), "GetByProvider")
}

// GetShopDefault получает набор правил салона по умолчанию
// Возвращает ErrRuleSetNotFound, если у салона нет набора по умолчанию
func (r *Repository) GetShopDefault(ctx context.Context, shopID int64) (*domain.RuleSet, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"r.id", "r.name", "r.timezone", "r.weekly_rules", "r.breaks", "r.grid_interval_minutes", "r.created_at", "r.updated_at",
	).
		From("rulesets r").
		Join("shop_rulesets sr ON sr.ruleset_id = r.id").
		Where(squirrel.Eq{"sr.shop_id": shopID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetShopDefault - build select query: %v", ErrBuildQuery, err)
	}

	return r.scanRuleSet(executor.QueryRowContext(ctx, query, args...), "GetShopDefault")
}

// AssignToProvider привязывает набор правил к провайдеру (замещая предыдущий)
func (r *Repository) AssignToProvider(ctx context.Context, providerID, rulesetID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("provider_rulesets").
		Columns("provider_id", "ruleset_id").
		Values(providerID, rulesetID).
		Suffix("ON CONFLICT (provider_id) DO UPDATE SET ruleset_id = EXCLUDED.ruleset_id").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: AssignToProvider - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: AssignToProvider - execute insert: %v", ErrExecQuery, err)
	}
	return nil
}

// AssignToShop привязывает набор правил к салону как набор по умолчанию
func (r *Repository) AssignToShop(ctx context.Context, shopID, rulesetID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("shop_rulesets").
		Columns("shop_id", "ruleset_id").
		Values(shopID, rulesetID).
		Suffix("ON CONFLICT (shop_id) DO UPDATE SET ruleset_id = EXCLUDED.ruleset_id").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: AssignToShop - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: AssignToShop - execute insert: %v", ErrExecQuery, err)
	}
	return nil
}

// scanRuleSet сканирует одну строку набора правил
func (r *Repository) scanRuleSet(row *sql.Row, op string) (*domain.RuleSet, error) {
	var rs domain.RuleSet
	var rulesJSON, breaksJSON []byte
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&rs.ID,
		&rs.Name,
		&rs.Timezone,
		&rulesJSON,
		&breaksJSON,
		&rs.GridIntervalMinutes,
		&createdAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrRuleSetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan ruleset: %v", ErrScanRow, op, err)
	}

	if err := json.Unmarshal(rulesJSON, &rs.WeeklyRules); err != nil {
		return nil, fmt.Errorf("%w: %s - unmarshal weekly_rules: %v", ErrScanRow, op, err)
	}
	if err := json.Unmarshal(breaksJSON, &rs.Breaks); err != nil {
		return nil, fmt.Errorf("%w: %s - unmarshal breaks: %v", ErrScanRow, op, err)
	}

	rs.CreatedAt = createdAt.Time
	rs.UpdatedAt = updatedAt.Time

	return &rs, nil
}

func marshalRules(rs *domain.RuleSet) ([]byte, []byte, error) {
	weeklyRules := rs.WeeklyRules
	if weeklyRules == nil {
		weeklyRules = domain.WeeklyRules{}
	}
	rulesJSON, err := json.Marshal(weeklyRules)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: weekly_rules: %v", ErrMarshalRules, err)
	}

	breaks := rs.Breaks
	if breaks == nil {
		breaks = []domain.BreakRule{}
	}
	breaksJSON, err := json.Marshal(breaks)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: breaks: %v", ErrMarshalRules, err)
	}

	return rulesJSON, breaksJSON, nil
}
