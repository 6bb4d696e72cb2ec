package update_ruleset

import (
	"context"

	"github.com/m04kA/Fidden-SchedulingService/internal/service/config/models"
)

type ConfigService interface {
	UpdateProviderRuleSet(ctx context.Context, providerID int64, req *models.UpdateRuleSetRequest) (*models.RuleSetResponse, error)
	UpdateShopRuleSet(ctx context.Context, shopID int64, req *models.UpdateRuleSetRequest) (*models.RuleSetResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
