package update_service_config

import (
	"context"

	"github.com/m04kA/Fidden-SchedulingService/internal/service/config/models"
)

type ConfigService interface {
	UpsertServiceConfig(ctx context.Context, serviceID int64, req *models.UpsertServiceConfigRequest) (*models.ServiceConfigResponse, error)
	GetServiceConfig(ctx context.Context, serviceID int64) (*models.ServiceConfigResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
