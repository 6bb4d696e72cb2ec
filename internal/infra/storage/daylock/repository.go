package daylock

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/Fidden-SchedulingService/internal/domain"
	"github.com/m04kA/Fidden-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/Fidden-SchedulingService/pkg/psqlbuilder"
)

// Repository репозиторий строк блокировки операционных дней.
// Строка (shop_id, date) служит точкой сериализации для всех бронирований
// салона на эту дату: SELECT ... FOR UPDATE по ней выстраивает конкурентные
// запросы в очередь.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория блокировок
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetOrCreate возвращает строку блокировки для (салон, дата), создавая её при необходимости.
//
// Вызывается ДО открытия транзакции бронирования: вставка через ON CONFLICT DO NOTHING
// идемпотентна и не держит блокировку, поэтому ленивое создание строки не
// сериализует конкурентные запросы раньше времени.
func (r *Repository) GetOrCreate(ctx context.Context, shopID int64, date time.Time) (*domain.DayLock, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	insertQuery, insertArgs, err := psqlbuilder.Insert("day_locks").
		Columns("shop_id", "date").
		Values(shopID, date.Format(domain.DateFormat)).
		Suffix("ON CONFLICT (shop_id, date) DO NOTHING").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetOrCreate - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return nil, fmt.Errorf("%w: GetOrCreate - execute insert: %v", ErrExecQuery, err)
	}

	return r.get(ctx, shopID, date, false)
}

// AcquireForUpdate захватывает строку блокировки через SELECT ... FOR UPDATE.
// Должен вызываться только внутри транзакции: блокировка держится до коммита
// или отката, гарантируя, что проверка доступности и вставка бронирования
// выполняются атомарно относительно других транзакций этого дня.
func (r *Repository) AcquireForUpdate(ctx context.Context, shopID int64, date time.Time) (*domain.DayLock, error) {
	return r.get(ctx, shopID, date, true)
}

func (r *Repository) get(ctx context.Context, shopID int64, date time.Time, forUpdate bool) (*domain.DayLock, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("id", "shop_id", "date", "created_at").
		From("day_locks").
		Where(squirrel.Eq{"shop_id": shopID}).
		Where(squirrel.Eq{"date": date.Format(domain.DateFormat)})

	if forUpdate {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: get - build select query: %v", ErrBuildQuery, err)
	}

	var lock domain.DayLock
	var createdAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&lock.ID,
		&lock.ShopID,
		&lock.Date,
		&createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrLockNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get - scan lock: %v", ErrScanRow, err)
	}

	lock.CreatedAt = createdAt.Time

	return &lock, nil
}
