package config

import "errors"

var (
	// ErrRuleSetNotFound возвращается, когда набор правил не найден
	ErrRuleSetNotFound = errors.New("ruleset not found")

	// ErrExceptionNotFound возвращается, когда исключение не найдено
	ErrExceptionNotFound = errors.New("exception not found")

	// ErrConfigNotFound возвращается, когда конфигурация услуги не найдена
	ErrConfigNotFound = errors.New("service config not found")

	// ErrShopNotFound возвращается, когда салон не найден
	ErrShopNotFound = errors.New("shop not found")

	// ErrProviderNotFound возвращается, когда провайдер не найден
	ErrProviderNotFound = errors.New("provider not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("service not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInvalidConfiguration возвращается при нарушении инвариантов конфигурации,
	// которые нельзя молча исправить (например, provider_block > duration)
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
