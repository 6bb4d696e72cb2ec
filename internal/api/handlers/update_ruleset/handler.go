package update_ruleset

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
	msgInvalidProviderID  = "некорректный ID провайдера"
	msgInvalidShopID      = "некорректный ID салона"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgProviderNotFound   = "провайдер не найден"
	msgShopNotFound       = "салон не найден"
	msgInvalidRules       = "некорректные правила расписания"
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

// HandleProvider PUT /api/v1/providers/{providerId}/ruleset
func (h *Handler) HandleProvider(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	providerID, err := strconv.ParseInt(vars["providerId"], 10, 64)
	if err != nil {
		h.logger.Warn("PUT /providers/{id}/ruleset - Invalid provider ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}

	var req models.UpdateRuleSetRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /providers/{id}/ruleset - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.UpdateProviderRuleSet(r.Context(), providerID, &req)
	if err != nil {
		switch {
		case errors.Is(err, config.ErrProviderNotFound):
			h.logger.Warn("PUT /providers/{id}/ruleset - Provider not found: provider_id=%d", providerID)
			handlers.RespondNotFound(w, msgProviderNotFound)

		case errors.Is(err, config.ErrInvalidInput):
			h.logger.Warn("PUT /providers/{id}/ruleset - Invalid rules: provider_id=%d, error=%v",
				providerID, err)
			handlers.RespondBadRequest(w, msgInvalidRules)

		default:
			h.logger.Error("PUT /providers/{id}/ruleset - Failed to update ruleset: provider_id=%d, error=%v",
				providerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /providers/{id}/ruleset - RuleSet updated successfully: provider_id=%d, ruleset_id=%d",
		providerID, result.ID)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// HandleShop PUT /api/v1/shops/{shopId}/ruleset
//
// Устанавливает дефолтный набор правил салона. Он используется всеми
// провайдерами без собственного набора.
func (h *Handler) HandleShop(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	shopID, err := strconv.ParseInt(vars["shopId"], 10, 64)
	if err != nil {
		h.logger.Warn("PUT /shops/{id}/ruleset - Invalid shop ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidShopID)
		return
	}

	var req models.UpdateRuleSetRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /shops/{id}/ruleset - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.UpdateShopRuleSet(r.Context(), shopID, &req)
	if err != nil {
		switch {
		case errors.Is(err, config.ErrShopNotFound):
			h.logger.Warn("PUT /shops/{id}/ruleset - Shop not found: shop_id=%d", shopID)
			handlers.RespondNotFound(w, msgShopNotFound)

		case errors.Is(err, config.ErrInvalidInput):
			h.logger.Warn("PUT /shops/{id}/ruleset - Invalid rules: shop_id=%d, error=%v", shopID, err)
			handlers.RespondBadRequest(w, msgInvalidRules)

		default:
			h.logger.Error("PUT /shops/{id}/ruleset - Failed to update ruleset: shop_id=%d, error=%v",
				shopID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /shops/{id}/ruleset - RuleSet updated successfully: shop_id=%d, ruleset_id=%d",
		shopID, result.ID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
