package upsert_exception

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/Fidden-SchedulingService/internal/api/handlers"
	"github.com/m04kA/Fidden-SchedulingService/internal/domain"
	"github.com/m04kA/Fidden-SchedulingService/internal/service/config"
	"github.com/m04kA/Fidden-SchedulingService/internal/service/config/models"
)

const (
	msgInvalidProviderID  = "некорректный ID провайдера"
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgProviderNotFound   = "провайдер не найден"
	msgExceptionNotFound  = "исключение не найдено"
	msgInvalidException   = "некорректные данные исключения"
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

// parsePathParams извлекает providerId и дату из URL
func (h *Handler) parsePathParams(w http.ResponseWriter, r *http.Request, method string) (int64, time.Time, bool) {
	vars := mux.Vars(r)

	providerID, err := strconv.ParseInt(vars["providerId"], 10, 64)
	if err != nil {
		h.logger.Warn("%s /providers/{id}/exceptions/{date} - Invalid provider ID: %v", method, err)
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return 0, time.Time{}, false
	}

	date, err := time.Parse(domain.DateFormat, vars["date"])
	if err != nil {
		h.logger.Warn("%s /providers/{id}/exceptions/{date} - Invalid date: %v", method, err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return 0, time.Time{}, false
	}

	return providerID, date, true
}

// Handle PUT /api/v1/providers/{providerId}/exceptions/{date}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	providerID, date, ok := h.parsePathParams(w, r, "PUT")
	if !ok {
		return
	}

	var req models.UpsertExceptionRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /providers/{id}/exceptions/{date} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.UpsertException(r.Context(), providerID, date, &req)
	if err != nil {
		switch {
		case errors.Is(err, config.ErrProviderNotFound):
			h.logger.Warn("PUT /providers/{id}/exceptions/{date} - Provider not found: provider_id=%d", providerID)
			handlers.RespondNotFound(w, msgProviderNotFound)

		case errors.Is(err, config.ErrInvalidInput):
			h.logger.Warn("PUT /providers/{id}/exceptions/{date} - Invalid exception: provider_id=%d, error=%v",
				providerID, err)
			handlers.RespondBadRequest(w, msgInvalidException)

		default:
			h.logger.Error("PUT /providers/{id}/exceptions/{date} - Failed to upsert exception: provider_id=%d, error=%v",
				providerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /providers/{id}/exceptions/{date} - Exception upserted successfully: provider_id=%d, date=%s",
		providerID, result.Date)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// HandleDelete DELETE /api/v1/providers/{providerId}/exceptions/{date}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	providerID, date, ok := h.parsePathParams(w, r, "DELETE")
	if !ok {
		return
	}

	err := h.service.DeleteException(r.Context(), providerID, date)
	if err != nil {
		switch {
		case errors.Is(err, config.ErrExceptionNotFound):
			h.logger.Warn("DELETE /providers/{id}/exceptions/{date} - Exception not found: provider_id=%d, date=%s",
				providerID, date.Format(domain.DateFormat))
			handlers.RespondNotFound(w, msgExceptionNotFound)

		default:
			h.logger.Error("DELETE /providers/{id}/exceptions/{date} - Failed to delete exception: provider_id=%d, error=%v",
				providerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /providers/{id}/exceptions/{date} - Exception deleted successfully: provider_id=%d, date=%s",
		providerID, date.Format(domain.DateFormat))
	handlers.RespondJSON(w, http.StatusNoContent, nil)
}
