package get_ruleset

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/Fidden-SchedulingService/internal/api/handlers"
	"github.com/m04kA/Fidden-SchedulingService/internal/service/config"
)

const (
	msgInvalidProviderID = "некорректный ID провайдера"
	msgProviderNotFound  = "провайдер не найден"
	msgRuleSetNotFound   = "набор правил расписания не найден"
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

// Handle GET /api/v1/providers/{providerId}/ruleset
//
// Возвращает эффективный набор правил: собственный набор провайдера,
// либо дефолтный набор салона, если собственного нет.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем providerId из URL
	vars := mux.Vars(r)
	providerID, err := strconv.ParseInt(vars["providerId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /providers/{id}/ruleset - Invalid provider ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}

	result, err := h.service.GetProviderRuleSet(r.Context(), providerID)
	if err != nil {
		switch {
		case errors.Is(err, config.ErrProviderNotFound):
			h.logger.Warn("GET /providers/{id}/ruleset - Provider not found: provider_id=%d", providerID)
			handlers.RespondNotFound(w, msgProviderNotFound)

		case errors.Is(err, config.ErrRuleSetNotFound):
			h.logger.Warn("GET /providers/{id}/ruleset - RuleSet not found: provider_id=%d", providerID)
			handlers.RespondNotFound(w, msgRuleSetNotFound)

		default:
			h.logger.Error("GET /providers/{id}/ruleset - Failed to get ruleset: provider_id=%d, error=%v",
				providerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /providers/{id}/ruleset - RuleSet retrieved successfully: provider_id=%d, ruleset_id=%d",
		providerID, result.ID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
