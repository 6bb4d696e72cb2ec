package upsert_exception

import (
	"context"
	"time"

	"github.com/m04kA/Fidden-SchedulingService/internal/service/config/models"
)

type ConfigService interface {
	UpsertException(ctx context.Context, providerID int64, date time.Time, req *models.UpsertExceptionRequest) (*models.ExceptionResponse, error)
	DeleteException(ctx context.Context, providerID int64, date time.Time) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
