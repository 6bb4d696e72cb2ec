package ruleset

import "errors"

var (
	// ErrRuleSetNotFound возвращается, когда набор правил не найден
	ErrRuleSetNotFound = errors.New("ruleset.repository: ruleset not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("ruleset.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("ruleset.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("ruleset.repository: failed to scan row")

	// ErrMarshalRules возвращается при ошибке сериализации правил в JSON
	ErrMarshalRules = errors.New("ruleset.repository: failed to marshal rules")
)
