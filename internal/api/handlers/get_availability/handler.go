package get_availability

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/Fidden-SchedulingService/internal/api/handlers"
	"github.com/m04kA/Fidden-SchedulingService/internal/api/middleware"
	getAvailability "github.com/m04kA/Fidden-SchedulingService/internal/usecase/get_availability"
)

const (
	msgInvalidShopID     = "некорректный ID салона"
	msgInvalidServiceID  = "некорректный ID услуги"
	msgInvalidProviderID = "некорректный ID провайдера"
	msgMissingServiceID  = "отсутствует параметр serviceId"
	msgMissingDate       = "отсутствует параметр date"
	msgInvalidDate       = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgShopNotFound      = "салон не найден"
	msgProviderNotFound  = "провайдер не найден"
	msgServiceNotFound   = "услуга не найдена"
	msgServiceNotOffered = "провайдер не оказывает выбранную услугу"
	msgInvalidDateRange  = "дата вне допустимого диапазона"
)

type Handler struct {
	useCase GetAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/shops/{shopId}/availability?serviceId=1&date=2026-06-15&providerId=2
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем shopId из URL
	vars := mux.Vars(r)
	shopID, err := strconv.ParseInt(vars["shopId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /shops/{id}/availability - Invalid shop ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidShopID)
		return
	}

	// Обязательные query параметры
	serviceIDStr := r.URL.Query().Get("serviceId")
	if serviceIDStr == "" {
		handlers.RespondBadRequest(w, msgMissingServiceID)
		return
	}
	serviceID, err := strconv.ParseInt(serviceIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /shops/{id}/availability - Invalid service ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return
	}

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	// Опциональный фильтр по провайдеру
	var providerID *int64
	if providerIDStr := r.URL.Query().Get("providerId"); providerIDStr != "" {
		id, err := strconv.ParseInt(providerIDStr, 10, 64)
		if err != nil {
			h.logger.Warn("GET /shops/{id}/availability - Invalid provider ID: %v", err)
			handlers.RespondBadRequest(w, msgInvalidProviderID)
			return
		}
		providerID = &id
	}

	// userID нужен только для логов, доступность публична
	userID, _ := middleware.GetUserID(r.Context())

	useCaseReq, err := ToUseCaseRequest(userID, shopID, serviceID, providerID, dateStr)
	if err != nil {
		h.logger.Warn("GET /shops/{id}/availability - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, getAvailability.ErrShopNotFound):
			h.logger.Warn("GET /shops/{id}/availability - Shop not found: shop_id=%d", shopID)
			handlers.RespondNotFound(w, msgShopNotFound)

		case errors.Is(err, getAvailability.ErrProviderNotFound):
			h.logger.Warn("GET /shops/{id}/availability - Provider not found: shop_id=%d", shopID)
			handlers.RespondNotFound(w, msgProviderNotFound)

		case errors.Is(err, getAvailability.ErrServiceNotFound):
			h.logger.Warn("GET /shops/{id}/availability - Service not found: service_id=%d", serviceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, getAvailability.ErrServiceNotOffered):
			h.logger.Warn("GET /shops/{id}/availability - Service not offered: shop_id=%d, service_id=%d",
				shopID, serviceID)
			handlers.RespondBadRequest(w, msgServiceNotOffered)

		case errors.Is(err, getAvailability.ErrInvalidDate):
			h.logger.Warn("GET /shops/{id}/availability - Invalid date range: shop_id=%d, date=%s", shopID, dateStr)
			handlers.RespondBadRequest(w, msgInvalidDateRange)

		case errors.Is(err, getAvailability.ErrInvalidInput):
			h.logger.Warn("GET /shops/{id}/availability - Invalid input: shop_id=%d, error=%v", shopID, err)
			handlers.RespondBadRequest(w, msgInvalidServiceID)

		default:
			h.logger.Error("GET /shops/{id}/availability - Failed to get availability: shop_id=%d, error=%v",
				shopID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("GET /shops/{id}/availability - Slots retrieved successfully: shop_id=%d, service_id=%d, slots=%d",
		shopID, serviceID, len(response.Slots))
	handlers.RespondJSON(w, http.StatusOK, response)
}
