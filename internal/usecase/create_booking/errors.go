package create_booking

import "errors"

var (
	// ErrShopNotFound возвращается, когда салон не найден
	ErrShopNotFound = errors.New("create_booking: shop not found")

	// ErrProviderNotFound возвращается, когда провайдер не найден или не принадлежит салону
	ErrProviderNotFound = errors.New("create_booking: provider not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("create_booking: service not found")

	// ErrServiceNotOffered возвращается, когда провайдер не оказывает услугу
	ErrServiceNotOffered = errors.New("create_booking: provider does not offer this service")

	// ErrInvalidDate возвращается при дате в прошлом
	ErrInvalidDate = errors.New("create_booking: invalid booking date")

	// ErrInvalidTime возвращается, когда запрошенное время не является валидным
	// началом слота: вне рабочих окон, мимо сетки или несуществующее локальное
	// время (DST-разрыв)
	ErrInvalidTime = errors.New("create_booking: invalid start time")

	// ErrSlotTaken возвращается, когда слот у запрошенного провайдера уже занят
	ErrSlotTaken = errors.New("create_booking: slot is already taken")

	// ErrNoProviderAvailable возвращается при авто-выборе, когда ни один
	// провайдер не свободен в запрошенное время
	ErrNoProviderAvailable = errors.New("create_booking: no provider available")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
