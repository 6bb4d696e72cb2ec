package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/Fidden-SchedulingService/internal/domain"
	exceptionRepo "github.com/m04kA/Fidden-SchedulingService/internal/infra/storage/exception"
	rulesetRepo "github.com/m04kA/Fidden-SchedulingService/internal/infra/storage/ruleset"
	serviceconfigRepo "github.com/m04kA/Fidden-SchedulingService/internal/infra/storage/serviceconfig"
	catalogClient "github.com/m04kA/Fidden-SchedulingService/internal/integrations/catalogservice"
	"github.com/m04kA/Fidden-SchedulingService/internal/service/config/models"
	"github.com/m04kA/Fidden-SchedulingService/pkg/localtime"
)

// Service сервис конфигурации расписаний: наборы правил, исключения на даты
// и параметры планирования услуг. Вся нормализация входных данных происходит
// здесь, на записи - чтение отдает уже канонические значения.
type Service struct {
	rulesetRepo   RuleSetRepository
	exceptionRepo ExceptionRepository
	configRepo    ServiceConfigRepository
	catalogClient CatalogServiceClient
	logger        Logger
}

// NewService создает новый экземпляр сервиса конфигурации
func NewService(
	rulesetRepo RuleSetRepository,
	exceptionRepo ExceptionRepository,
	configRepo ServiceConfigRepository,
	catalogClient CatalogServiceClient,
	logger Logger,
) *Service {
	return &Service{
		rulesetRepo:   rulesetRepo,
		exceptionRepo: exceptionRepo,
		configRepo:    configRepo,
		catalogClient: catalogClient,
		logger:        logger,
	}
}

// UpdateProviderRuleSet заменяет набор правил расписания провайдера
func (s *Service) UpdateProviderRuleSet(ctx context.Context, providerID int64, req *models.UpdateRuleSetRequest) (*models.RuleSetResponse, error) {
	s.logger.Info("UpdateProviderRuleSet: updating ruleset for provider=%d", providerID)

	// 1. Проверяем существование провайдера
	if _, err := s.catalogClient.GetProvider(ctx, providerID); err != nil {
		if errors.Is(err, catalogClient.ErrProviderNotFound) {
			s.logger.Warn("UpdateProviderRuleSet: provider id=%d not found", providerID)
			return nil, ErrProviderNotFound
		}
		s.logger.Error("UpdateProviderRuleSet: failed to get provider id=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: failed to get provider: %v", ErrInternal, err)
	}

	// 2. Нормализуем и сохраняем
	ruleset, err := s.buildRuleSet(req)
	if err != nil {
		s.logger.Warn("UpdateProviderRuleSet: validation failed for provider=%d: %v", providerID, err)
		return nil, err
	}

	created, err := s.rulesetRepo.Create(ctx, ruleset)
	if err != nil {
		s.logger.Error("UpdateProviderRuleSet: repository error: %v", err)
		return nil, fmt.Errorf("%w: UpdateProviderRuleSet - repository error: %v", ErrInternal, err)
	}

	// 3. Привязываем к провайдеру
	if err := s.rulesetRepo.AssignToProvider(ctx, providerID, created.ID); err != nil {
		s.logger.Error("UpdateProviderRuleSet: failed to assign ruleset id=%d to provider=%d: %v", created.ID, providerID, err)
		return nil, fmt.Errorf("%w: UpdateProviderRuleSet - assign error: %v", ErrInternal, err)
	}

	s.logger.Info("UpdateProviderRuleSet: successfully assigned ruleset id=%d to provider=%d", created.ID, providerID)
	return models.FromDomainRuleSet(created), nil
}

// UpdateShopRuleSet заменяет набор правил расписания по умолчанию для салона.
// Этот набор используется провайдерами, у которых нет собственного.
func (s *Service) UpdateShopRuleSet(ctx context.Context, shopID int64, req *models.UpdateRuleSetRequest) (*models.RuleSetResponse, error) {
	s.logger.Info("UpdateShopRuleSet: updating default ruleset for shop=%d", shopID)

	if _, err := s.catalogClient.GetShop(ctx, shopID); err != nil {
		if errors.Is(err, catalogClient.ErrShopNotFound) {
			s.logger.Warn("UpdateShopRuleSet: shop id=%d not found", shopID)
			return nil, ErrShopNotFound
		}
		s.logger.Error("UpdateShopRuleSet: failed to get shop id=%d: %v", shopID, err)
		return nil, fmt.Errorf("%w: failed to get shop: %v", ErrInternal, err)
	}

	ruleset, err := s.buildRuleSet(req)
	if err != nil {
		s.logger.Warn("UpdateShopRuleSet: validation failed for shop=%d: %v", shopID, err)
		return nil, err
	}

	created, err := s.rulesetRepo.Create(ctx, ruleset)
	if err != nil {
		s.logger.Error("UpdateShopRuleSet: repository error: %v", err)
		return nil, fmt.Errorf("%w: UpdateShopRuleSet - repository error: %v", ErrInternal, err)
	}

	if err := s.rulesetRepo.AssignToShop(ctx, shopID, created.ID); err != nil {
		s.logger.Error("UpdateShopRuleSet: failed to assign ruleset id=%d to shop=%d: %v", created.ID, shopID, err)
		return nil, fmt.Errorf("%w: UpdateShopRuleSet - assign error: %v", ErrInternal, err)
	}

	s.logger.Info("UpdateShopRuleSet: successfully assigned ruleset id=%d to shop=%d", created.ID, shopID)
	return models.FromDomainRuleSet(created), nil
}

// GetProviderRuleSet получает действующий набор правил провайдера.
// Если собственного набора нет, возвращает набор салона по умолчанию.
func (s *Service) GetProviderRuleSet(ctx context.Context, providerID int64) (*models.RuleSetResponse, error) {
	s.logger.Info("GetProviderRuleSet: fetching ruleset for provider=%d", providerID)

	ruleset, err := s.rulesetRepo.GetByProvider(ctx, providerID)
	if err == nil {
		return models.FromDomainRuleSet(ruleset), nil
	}
	if !errors.Is(err, rulesetRepo.ErrRuleSetNotFound) {
		s.logger.Error("GetProviderRuleSet: repository error for provider=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: GetProviderRuleSet - repository error: %v", ErrInternal, err)
	}

	// Собственного набора нет - пробуем набор салона
	provider, err := s.catalogClient.GetProvider(ctx, providerID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrProviderNotFound) {
			s.logger.Warn("GetProviderRuleSet: provider id=%d not found", providerID)
			return nil, ErrProviderNotFound
		}
		s.logger.Error("GetProviderRuleSet: failed to get provider id=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: failed to get provider: %v", ErrInternal, err)
	}

	ruleset, err = s.rulesetRepo.GetShopDefault(ctx, provider.ShopID)
	if err != nil {
		if errors.Is(err, rulesetRepo.ErrRuleSetNotFound) {
			s.logger.Warn("GetProviderRuleSet: no ruleset for provider=%d or shop=%d", providerID, provider.ShopID)
			return nil, ErrRuleSetNotFound
		}
		s.logger.Error("GetProviderRuleSet: repository error for shop=%d: %v", provider.ShopID, err)
		return nil, fmt.Errorf("%w: GetProviderRuleSet - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainRuleSet(ruleset), nil
}

// UpsertException устанавливает исключение расписания провайдера на дату
func (s *Service) UpsertException(ctx context.Context, providerID int64, date time.Time, req *models.UpsertExceptionRequest) (*models.ExceptionResponse, error) {
	s.logger.Info("UpsertException: setting exception for provider=%d, date=%s", providerID, date.Format(domain.DateFormat))

	if _, err := s.catalogClient.GetProvider(ctx, providerID); err != nil {
		if errors.Is(err, catalogClient.ErrProviderNotFound) {
			s.logger.Warn("UpsertException: provider id=%d not found", providerID)
			return nil, ErrProviderNotFound
		}
		s.logger.Error("UpsertException: failed to get provider id=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: failed to get provider: %v", ErrInternal, err)
	}

	// Закрытый день не может нести переопределенные часы
	if req.IsClosed && len(req.Hours) > 0 {
		s.logger.Warn("UpsertException: closed day with override hours for provider=%d", providerID)
		return nil, fmt.Errorf("%w: closed day cannot have override hours", ErrInvalidInput)
	}

	override := make([]domain.TimeInterval, 0, len(req.Hours))
	for _, input := range req.Hours {
		interval, err := normalizeInterval(input)
		if err != nil {
			s.logger.Warn("UpsertException: dropping override interval: %v", err)
			continue
		}
		override = append(override, interval)
	}

	// Открытый день без валидных часов эквивалентен отсутствию исключения
	if !req.IsClosed && len(override) == 0 {
		s.logger.Warn("UpsertException: no valid override hours for provider=%d", providerID)
		return nil, fmt.Errorf("%w: open-day exception requires at least one valid interval", ErrInvalidInput)
	}

	exc := &domain.Exception{
		ProviderID:    providerID,
		Date:          date,
		IsClosed:      req.IsClosed,
		OverrideRules: override,
		Reason:        req.Reason,
	}

	saved, err := s.exceptionRepo.Upsert(ctx, exc)
	if err != nil {
		s.logger.Error("UpsertException: repository error: %v", err)
		return nil, fmt.Errorf("%w: UpsertException - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpsertException: successfully saved exception id=%d for provider=%d", saved.ID, providerID)
	return models.FromDomainException(saved), nil
}

// DeleteException удаляет исключение расписания провайдера на дату
func (s *Service) DeleteException(ctx context.Context, providerID int64, date time.Time) error {
	s.logger.Info("DeleteException: removing exception for provider=%d, date=%s", providerID, date.Format(domain.DateFormat))

	err := s.exceptionRepo.DeleteByProviderAndDate(ctx, providerID, date)
	if err != nil {
		if errors.Is(err, exceptionRepo.ErrExceptionNotFound) {
			s.logger.Warn("DeleteException: exception not found for provider=%d, date=%s", providerID, date.Format(domain.DateFormat))
			return ErrExceptionNotFound
		}
		s.logger.Error("DeleteException: repository error: %v", err)
		return fmt.Errorf("%w: DeleteException - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("DeleteException: successfully removed exception for provider=%d", providerID)
	return nil
}

// UpsertServiceConfig устанавливает параметры планирования услуги
func (s *Service) UpsertServiceConfig(ctx context.Context, serviceID int64, req *models.UpsertServiceConfigRequest) (*models.ServiceConfigResponse, error) {
	s.logger.Info("UpsertServiceConfig: updating config for service=%d, shop=%d", serviceID, req.ShopID)

	if _, err := s.catalogClient.GetService(ctx, serviceID); err != nil {
		if errors.Is(err, catalogClient.ErrServiceNotFound) {
			s.logger.Warn("UpsertServiceConfig: service id=%d not found", serviceID)
			return nil, ErrServiceNotFound
		}
		s.logger.Error("UpsertServiceConfig: failed to get service id=%d: %v", serviceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	if err := s.validateServiceConfig(req); err != nil {
		s.logger.Warn("UpsertServiceConfig: validation failed for service=%d: %v", serviceID, err)
		return nil, err
	}

	cfg := &domain.ServiceConfig{
		ServiceID:              serviceID,
		ShopID:                 req.ShopID,
		DurationMinutes:        req.DurationMinutes,
		ProviderBlockMinutes:   req.ProviderBlockMinutes,
		AllowProcessingOverlap: req.AllowProcessingOverlap,
		BufferBeforeMinutes:    req.BufferBeforeMinutes,
		BufferAfterMinutes:     req.BufferAfterMinutes,
	}

	saved, err := s.configRepo.Upsert(ctx, cfg)
	if err != nil {
		s.logger.Error("UpsertServiceConfig: repository error: %v", err)
		return nil, fmt.Errorf("%w: UpsertServiceConfig - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpsertServiceConfig: successfully saved config id=%d for service=%d", saved.ID, serviceID)
	return models.FromDomainServiceConfig(saved), nil
}

// GetServiceConfig получает параметры планирования услуги
func (s *Service) GetServiceConfig(ctx context.Context, serviceID int64) (*models.ServiceConfigResponse, error) {
	s.logger.Info("GetServiceConfig: fetching config for service=%d", serviceID)

	cfg, err := s.configRepo.GetByServiceID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, serviceconfigRepo.ErrConfigNotFound) {
			s.logger.Warn("GetServiceConfig: config not found for service=%d", serviceID)
			return nil, ErrConfigNotFound
		}
		s.logger.Error("GetServiceConfig: repository error for service=%d: %v", serviceID, err)
		return nil, fmt.Errorf("%w: GetServiceConfig - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainServiceConfig(cfg), nil
}

// Вспомогательные методы

// buildRuleSet нормализует запрос и собирает доменный набор правил
func (s *Service) buildRuleSet(req *models.UpdateRuleSetRequest) (*domain.RuleSet, error) {
	if _, err := localtime.ValidateTimezone(req.Timezone); err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", ErrInvalidInput, req.Timezone)
	}

	grid := domain.DefaultGridIntervalMinutes
	if req.GridIntervalMinutes != nil {
		grid = *req.GridIntervalMinutes
		if grid < domain.MinGridIntervalMinutes || grid > domain.MaxGridIntervalMinutes {
			return nil, fmt.Errorf("%w: gridIntervalMinutes must be between %d and %d",
				ErrInvalidInput, domain.MinGridIntervalMinutes, domain.MaxGridIntervalMinutes)
		}
	}

	weekly := s.normalizeWeeklyRules(req.WeeklyRules)
	if len(weekly) == 0 {
		return nil, fmt.Errorf("%w: weeklyRules has no valid working intervals", ErrInvalidInput)
	}

	return &domain.RuleSet{
		Name:                req.Name,
		Timezone:            req.Timezone,
		WeeklyRules:         weekly,
		Breaks:              s.normalizeBreaks(req.Breaks),
		GridIntervalMinutes: grid,
	}, nil
}

// validateServiceConfig проверяет инварианты параметров планирования.
// Нарушение provider_block <= duration - ошибка конфигурации, а не повод
// молча подрезать значение: молчаливая правка прятала бы опечатки менеджеров.
func (s *Service) validateServiceConfig(req *models.UpsertServiceConfigRequest) error {
	if req.DurationMinutes < domain.MinDurationMinutes || req.DurationMinutes > domain.MaxDurationMinutes {
		return fmt.Errorf("%w: durationMinutes must be between %d and %d",
			ErrInvalidInput, domain.MinDurationMinutes, domain.MaxDurationMinutes)
	}

	if req.BufferBeforeMinutes < 0 || req.BufferBeforeMinutes > domain.MaxBufferMinutes {
		return fmt.Errorf("%w: bufferBeforeMinutes must be between 0 and %d", ErrInvalidInput, domain.MaxBufferMinutes)
	}
	if req.BufferAfterMinutes < 0 || req.BufferAfterMinutes > domain.MaxBufferMinutes {
		return fmt.Errorf("%w: bufferAfterMinutes must be between 0 and %d", ErrInvalidInput, domain.MaxBufferMinutes)
	}

	if req.ProviderBlockMinutes != nil {
		block := *req.ProviderBlockMinutes
		if block <= 0 {
			return fmt.Errorf("%w: providerBlockMinutes must be positive", ErrInvalidInput)
		}
		if block > req.DurationMinutes {
			return fmt.Errorf("%w: providerBlockMinutes (%d) exceeds durationMinutes (%d)",
				ErrInvalidConfiguration, block, req.DurationMinutes)
		}
	}

	return nil
}
