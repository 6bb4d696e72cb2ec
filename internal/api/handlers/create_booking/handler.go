package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/Fidden-SchedulingService/internal/api/handlers"
	createBooking "github.com/m04kA/Fidden-SchedulingService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgInvalidDate         = "некорректный формат даты бронирования, ожидается YYYY-MM-DD"
	msgInvalidTimeFormat   = "некорректный формат времени начала, ожидается HH:MM"
	msgShopNotFound        = "салон не найден"
	msgProviderNotFound    = "провайдер не найден"
	msgServiceNotFound     = "услуга не найдена"
	msgServiceNotOffered   = "провайдер не оказывает выбранную услугу"
	msgInvalidBookingDate  = "некорректная дата бронирования"
	msgInvalidTime         = "выбранное время не является допустимым началом слота"
	msgSlotTaken           = "выбранный слот уже занят"
	msgNoProviderAvailable = "нет свободных провайдеров на выбранное время"
	msgInvalidBookingData  = "некорректные данные бронирования"
)

// Машиночитаемые коды ошибок для клиентов
const (
	codeInvalidTime         = "INVALID_TIME"
	codeSlotTaken           = "SLOT_TAKEN"
	codeNoProviderAvailable = "NO_PROVIDER_AVAILABLE"
)

var (
	errInvalidDateFormat = errors.New("invalid booking date format")
	errInvalidTimeFormat = errors.New("invalid start time format")
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Конвертируем HTTP запрос в модель use case (с парсингом даты и времени)
	useCaseReq, err := req.ToUseCaseRequest()
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse request: %v", err)
		if errors.Is(err, errInvalidTimeFormat) {
			handlers.RespondBadRequest(w, msgInvalidTimeFormat)
		} else {
			handlers.RespondBadRequest(w, msgInvalidDate)
		}
		return
	}

	// Вызываем use case
	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrSlotTaken):
			h.logger.Warn("POST /bookings - Slot taken: user_id=%d, shop_id=%d, start_time=%s",
				req.UserID, req.ShopID, req.StartTime)
			handlers.RespondConflict(w, codeSlotTaken, msgSlotTaken)

		case errors.Is(err, createBooking.ErrNoProviderAvailable):
			h.logger.Warn("POST /bookings - No provider available: user_id=%d, shop_id=%d, start_time=%s",
				req.UserID, req.ShopID, req.StartTime)
			handlers.RespondConflict(w, codeNoProviderAvailable, msgNoProviderAvailable)

		case errors.Is(err, createBooking.ErrInvalidTime):
			h.logger.Warn("POST /bookings - Invalid slot time: user_id=%d, shop_id=%d, start_time=%s",
				req.UserID, req.ShopID, req.StartTime)
			handlers.RespondErrorCode(w, http.StatusBadRequest, codeInvalidTime, msgInvalidTime)

		case errors.Is(err, createBooking.ErrShopNotFound):
			h.logger.Warn("POST /bookings - Shop not found: shop_id=%d", req.ShopID)
			handlers.RespondNotFound(w, msgShopNotFound)

		case errors.Is(err, createBooking.ErrProviderNotFound):
			h.logger.Warn("POST /bookings - Provider not found: user_id=%d, shop_id=%d", req.UserID, req.ShopID)
			handlers.RespondNotFound(w, msgProviderNotFound)

		case errors.Is(err, createBooking.ErrServiceNotFound):
			h.logger.Warn("POST /bookings - Service not found: service_id=%d, shop_id=%d", req.ServiceID, req.ShopID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, createBooking.ErrServiceNotOffered):
			h.logger.Warn("POST /bookings - Service not offered by provider: service_id=%d, shop_id=%d",
				req.ServiceID, req.ShopID)
			handlers.RespondBadRequest(w, msgServiceNotOffered)

		case errors.Is(err, createBooking.ErrInvalidDate):
			h.logger.Warn("POST /bookings - Invalid booking date: user_id=%d, shop_id=%d, date=%s",
				req.UserID, req.ShopID, req.BookingDate)
			handlers.RespondBadRequest(w, msgInvalidBookingDate)

		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: user_id=%d, shop_id=%d, error=%v",
				req.UserID, req.ShopID, err)
			handlers.RespondBadRequest(w, msgInvalidBookingData)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: user_id=%d, shop_id=%d, error=%v",
				req.UserID, req.ShopID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	// Формируем HTTP ответ
	response := FromUseCaseResponse(result)

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, user_id=%d, provider_id=%d",
		result.ID, req.UserID, result.ProviderID)
	handlers.RespondJSON(w, http.StatusCreated, response)
}
