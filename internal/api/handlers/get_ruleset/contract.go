package get_ruleset

import (
	"context"

	"github.com/m04kA/Fidden-SchedulingService/internal/service/config/models"
)

type ConfigService interface {
	GetProviderRuleSet(ctx context.Context, providerID int64) (*models.RuleSetResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
