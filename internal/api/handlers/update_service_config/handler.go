package update_service_config

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/Fidden-SchedulingService/internal/api/handlers"
	"github.com/m04kA/Fidden-SchedulingService/internal/service/config"
	"github.com/m04kA/Fidden-SchedulingService/internal/service/config/models"
)

const (
	msgInvalidServiceID     = "некорректный ID услуги"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgServiceNotFound      = "услуга не найдена"
	msgConfigNotFound       = "конфигурация услуги не найдена"
	msgInvalidConfigData    = "некорректные параметры конфигурации"
	msgInvalidConfiguration = "блокировка провайдера не может превышать длительность услуги"
)

type Handler struct {
	service ConfigService
	logger  Logger
}

func NewHandler(service ConfigService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PUT /api/v1/services/{serviceId}/config
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	serviceID, err := strconv.ParseInt(vars["serviceId"], 10, 64)
	if err != nil {
		h.logger.Warn("PUT /services/{id}/config - Invalid service ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return
	}

	var req models.UpsertServiceConfigRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /services/{id}/config - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.UpsertServiceConfig(r.Context(), serviceID, &req)
	if err != nil {
		switch {
		case errors.Is(err, config.ErrServiceNotFound):
			h.logger.Warn("PUT /services/{id}/config - Service not found: service_id=%d", serviceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, config.ErrInvalidConfiguration):
			h.logger.Warn("PUT /services/{id}/config - Provider block exceeds duration: service_id=%d", serviceID)
			handlers.RespondBadRequest(w, msgInvalidConfiguration)

		case errors.Is(err, config.ErrInvalidInput):
			h.logger.Warn("PUT /services/{id}/config - Invalid config: service_id=%d, error=%v", serviceID, err)
			handlers.RespondBadRequest(w, msgInvalidConfigData)

		default:
			h.logger.Error("PUT /services/{id}/config - Failed to upsert config: service_id=%d, error=%v",
				serviceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /services/{id}/config - Config upserted successfully: service_id=%d, duration=%d",
		serviceID, result.DurationMinutes)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// HandleGet GET /api/v1/services/{serviceId}/config
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	serviceID, err := strconv.ParseInt(vars["serviceId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /services/{id}/config - Invalid service ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return
	}

	result, err := h.service.GetServiceConfig(r.Context(), serviceID)
	if err != nil {
		switch {
		case errors.Is(err, config.ErrConfigNotFound):
			h.logger.Warn("GET /services/{id}/config - Config not found: service_id=%d", serviceID)
			handlers.RespondNotFound(w, msgConfigNotFound)

		default:
			h.logger.Error("GET /services/{id}/config - Failed to get config: service_id=%d, error=%v",
				serviceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /services/{id}/config - Config retrieved successfully: service_id=%d", serviceID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
