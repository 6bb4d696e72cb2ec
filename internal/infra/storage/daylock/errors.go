package daylock

import "errors"

var (
	// ErrLockNotFound возвращается, когда строка блокировки не найдена
	ErrLockNotFound = errors.New("daylock.repository: lock not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("daylock.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("daylock.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("daylock.repository: failed to scan row")
)
