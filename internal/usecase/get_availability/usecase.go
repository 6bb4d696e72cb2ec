package get_availability

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/m04kA/Fidden-SchedulingService/internal/domain"
	exceptionRepo "github.com/m04kA/Fidden-SchedulingService/internal/infra/storage/exception"
	rulesetRepo "github.com/m04kA/Fidden-SchedulingService/internal/infra/storage/ruleset"
	serviceconfigRepo "github.com/m04kA/Fidden-SchedulingService/internal/infra/storage/serviceconfig"
	catalogClient "github.com/m04kA/Fidden-SchedulingService/internal/integrations/catalogservice"
	"github.com/m04kA/Fidden-SchedulingService/internal/schedule"
	"github.com/m04kA/Fidden-SchedulingService/pkg/localtime"
	"github.com/m04kA/Fidden-SchedulingService/pkg/types"
)

// UseCase use case расчета доступных слотов.
// Для каждого провайдера разворачивает его набор правил в рабочие окна дня,
// прогоняет генератор кандидатов и агрегирует результаты по моменту начала.
type UseCase struct {
	bookingRepo   BookingRepository
	rulesetRepo   RuleSetRepository
	exceptionRepo ExceptionRepository
	configRepo    ServiceConfigRepository
	catalogClient CatalogServiceClient
	timeProvider  TimeProvider
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	rulesetRepo RuleSetRepository,
	exceptionRepo ExceptionRepository,
	configRepo ServiceConfigRepository,
	catalogClient CatalogServiceClient,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:   bookingRepo,
		rulesetRepo:   rulesetRepo,
		exceptionRepo: exceptionRepo,
		configRepo:    configRepo,
		catalogClient: catalogClient,
		timeProvider:  &RealTimeProvider{},
		logger:        logger,
	}
}

// Execute выполняет use case расчета доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailability: user=%d, shop=%d, service=%d, provider=%v, date=%s",
		req.UserID, req.ShopID, req.ServiceID, req.ProviderID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailability: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	// 2. Получаем салон и его таймзону
	shop, err := uc.catalogClient.GetShop(ctx, req.ShopID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrShopNotFound) {
			uc.logger.Warn("GetAvailability: shop id=%d not found", req.ShopID)
			return nil, ErrShopNotFound
		}
		uc.logger.Error("GetAvailability: failed to get shop id=%d: %v", req.ShopID, err)
		return nil, fmt.Errorf("%w: failed to get shop: %v", ErrInternal, err)
	}

	tzID := shop.Timezone
	if tzID == "" {
		tzID = domain.DefaultTimezone
	}
	shopLoc, err := time.LoadLocation(tzID)
	if err != nil {
		uc.logger.Error("GetAvailability: invalid shop timezone %q: %v", tzID, err)
		return nil, fmt.Errorf("%w: invalid shop timezone: %v", ErrInternal, err)
	}

	// 3. Валидация даты относительно "сегодня" в таймзоне салона
	if err := validateDate(req.Date, now, shopLoc); err != nil {
		uc.logger.Warn("GetAvailability: date validation failed: %v", err)
		return nil, err
	}

	// 4. Получаем параметры планирования услуги
	cfg, err := uc.configRepo.GetByServiceID(ctx, req.ServiceID)
	if err != nil {
		if !errors.Is(err, serviceconfigRepo.ErrConfigNotFound) {
			uc.logger.Error("GetAvailability: failed to get service config: %v", err)
			return nil, fmt.Errorf("%w: failed to get service config: %v", ErrInternal, err)
		}
		// Конфигурации нет - услуга планируется с дефолтными параметрами
		cfg = &domain.ServiceConfig{
			ServiceID:       req.ServiceID,
			ShopID:          req.ShopID,
			DurationMinutes: domain.DefaultGridIntervalMinutes,
		}
		uc.logger.Info("GetAvailability: using default config for service=%d", req.ServiceID)
	}

	// 5. Определяем список провайдеров
	providers, err := uc.resolveProviders(ctx, req)
	if err != nil {
		return nil, err
	}

	// 6. Считаем слоты каждого провайдера и агрегируем по моменту начала
	type aggregate struct {
		start       time.Time
		providerIDs []int64
	}
	index := make(map[int64]*aggregate)

	for _, provider := range providers {
		starts, err := uc.providerSlots(ctx, provider, req.Date, cfg, now, shopLoc)
		if err != nil {
			return nil, err
		}

		for _, start := range starts {
			key := start.Unix()
			entry, ok := index[key]
			if !ok {
				entry = &aggregate{start: start}
				index[key] = entry
			}
			entry.providerIDs = append(entry.providerIDs, provider.ID)
		}
	}

	keys := make([]int64, 0, len(index))
	for key := range index {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	slots := make([]Slot, 0, len(keys))
	for _, key := range keys {
		entry := index[key]
		sort.Slice(entry.providerIDs, func(i, j int) bool { return entry.providerIDs[i] < entry.providerIDs[j] })
		slots = append(slots, Slot{
			StartAt:           localtime.ToUTC(entry.start),
			LocalTime:         types.NewTimeString(entry.start.In(shopLoc)),
			AvailabilityCount: len(entry.providerIDs),
			ProviderIDs:       entry.providerIDs,
		})
	}

	uc.logger.Info("GetAvailability: %d slots across %d providers for shop=%d, service=%d, date=%s",
		len(slots), len(providers), req.ShopID, req.ServiceID, req.Date.Format(domain.DateFormat))

	return &Response{
		Date:       req.Date.Format(domain.DateFormat),
		ShopID:     req.ShopID,
		ServiceID:  req.ServiceID,
		ProviderID: req.ProviderID,
		TimezoneID: tzID,
		Slots:      slots,
	}, nil
}

// resolveProviders возвращает провайдеров, по которым считается доступность:
// либо одного запрошенного, либо всех активных провайдеров услуги
func (uc *UseCase) resolveProviders(ctx context.Context, req *Request) ([]*catalogClient.Provider, error) {
	if req.ProviderID == nil {
		providers, err := uc.catalogClient.GetProviders(ctx, req.ShopID, req.ServiceID)
		if err != nil {
			if errors.Is(err, catalogClient.ErrShopNotFound) {
				uc.logger.Warn("GetAvailability: shop id=%d not found while listing providers", req.ShopID)
				return nil, ErrShopNotFound
			}
			uc.logger.Error("GetAvailability: failed to list providers for shop=%d: %v", req.ShopID, err)
			return nil, fmt.Errorf("%w: failed to list providers: %v", ErrInternal, err)
		}
		return providers, nil
	}

	provider, err := uc.catalogClient.GetProvider(ctx, *req.ProviderID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrProviderNotFound) {
			uc.logger.Warn("GetAvailability: provider id=%d not found", *req.ProviderID)
			return nil, ErrProviderNotFound
		}
		uc.logger.Error("GetAvailability: failed to get provider id=%d: %v", *req.ProviderID, err)
		return nil, fmt.Errorf("%w: failed to get provider: %v", ErrInternal, err)
	}

	if provider.ShopID != req.ShopID || !provider.IsActive {
		uc.logger.Warn("GetAvailability: provider id=%d is not an active provider of shop=%d", provider.ID, req.ShopID)
		return nil, ErrProviderNotFound
	}
	if !provider.OffersService(req.ServiceID) {
		uc.logger.Warn("GetAvailability: provider id=%d does not offer service=%d", provider.ID, req.ServiceID)
		return nil, ErrServiceNotOffered
	}

	return []*catalogClient.Provider{provider}, nil
}

// providerSlots считает валидные моменты начала для одного провайдера.
// Провайдер без действующего набора правил молча пропускается: отсутствие
// расписания - нормальное состояние для новых мастеров.
func (uc *UseCase) providerSlots(
	ctx context.Context,
	provider *catalogClient.Provider,
	date time.Time,
	cfg *domain.ServiceConfig,
	now time.Time,
	shopLoc *time.Location,
) ([]time.Time, error) {
	ruleset, err := uc.rulesetRepo.GetByProvider(ctx, provider.ID)
	if errors.Is(err, rulesetRepo.ErrRuleSetNotFound) {
		ruleset, err = uc.rulesetRepo.GetShopDefault(ctx, provider.ShopID)
		if errors.Is(err, rulesetRepo.ErrRuleSetNotFound) {
			uc.logger.Warn("GetAvailability: no ruleset for provider=%d, skipping", provider.ID)
			return nil, nil
		}
	}
	if err != nil {
		uc.logger.Error("GetAvailability: failed to get ruleset for provider=%d: %v", provider.ID, err)
		return nil, fmt.Errorf("%w: failed to get ruleset: %v", ErrInternal, err)
	}

	// Таймзона набора правил имеет приоритет над таймзоной салона
	loc := shopLoc
	if ruleset.Timezone != "" {
		rulesetLoc, err := time.LoadLocation(ruleset.Timezone)
		if err != nil {
			uc.logger.Warn("GetAvailability: invalid ruleset timezone %q for provider=%d, falling back to shop timezone",
				ruleset.Timezone, provider.ID)
		} else {
			loc = rulesetLoc
		}
	}

	exception, err := uc.exceptionRepo.GetByProviderAndDate(ctx, provider.ID, date)
	if err != nil {
		if !errors.Is(err, exceptionRepo.ErrExceptionNotFound) {
			uc.logger.Error("GetAvailability: failed to get exception for provider=%d: %v", provider.ID, err)
			return nil, fmt.Errorf("%w: failed to get exception: %v", ErrInternal, err)
		}
		exception = nil
	}

	windows := schedule.ResolveDay(ruleset, exception, date)
	if len(windows) == 0 {
		return nil, nil
	}

	bookings, err := uc.bookingRepo.GetActiveForDay(ctx, provider.ID, date)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to get bookings for provider=%d: %v", provider.ID, err)
		return nil, fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}

	busy, processing := schedule.BuildBlocks(bookings)

	seq := schedule.NewSequence(schedule.SequenceParams{
		Date:             date,
		Location:         loc,
		Windows:          windows,
		Grid:             ruleset.GridIntervalMinutes,
		Config:           cfg,
		BusyBlocks:       busy,
		ProcessingBlocks: processing,
		MaxConcurrent:    provider.MaxConcurrentProcessingJobs,
		NotBefore:        now,
	})

	return seq.All(), nil
}
