package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/Fidden-SchedulingService/internal/domain"
	exceptionRepo "github.com/m04kA/Fidden-SchedulingService/internal/infra/storage/exception"
	rulesetRepo "github.com/m04kA/Fidden-SchedulingService/internal/infra/storage/ruleset"
	serviceconfigRepo "github.com/m04kA/Fidden-SchedulingService/internal/infra/storage/serviceconfig"
	catalogClient "github.com/m04kA/Fidden-SchedulingService/internal/integrations/catalogservice"
	"github.com/m04kA/Fidden-SchedulingService/internal/schedule"
	"github.com/m04kA/Fidden-SchedulingService/pkg/localtime"
)

// UseCase use case создания бронирования.
//
// Конкурентные запросы на один день салона сериализуются через строку
// day_locks (shop_id, date): строка лениво создается до транзакции, внутри
// транзакции захватывается через SELECT ... FOR UPDATE, после чего слот
// ревалидируется по живым данным и только тогда вставляется бронирование.
type UseCase struct {
	bookingRepo   BookingRepository
	rulesetRepo   RuleSetRepository
	exceptionRepo ExceptionRepository
	configRepo    ServiceConfigRepository
	dayLockRepo   DayLockRepository
	catalogClient CatalogServiceClient
	txManager     TransactionManager
	timeProvider  TimeProvider
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	rulesetRepo RuleSetRepository,
	exceptionRepo ExceptionRepository,
	configRepo ServiceConfigRepository,
	dayLockRepo DayLockRepository,
	catalogClient CatalogServiceClient,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:   bookingRepo,
		rulesetRepo:   rulesetRepo,
		exceptionRepo: exceptionRepo,
		configRepo:    configRepo,
		dayLockRepo:   dayLockRepo,
		catalogClient: catalogClient,
		txManager:     txManager,
		timeProvider:  &RealTimeProvider{},
		logger:        logger,
	}
}

// Execute выполняет use case создания бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: user=%d, shop=%d, service=%d, provider=%v, date=%s, time=%s",
		req.UserID, req.ShopID, req.ServiceID, req.ProviderID, req.Date.Format(domain.DateFormat), req.StartTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	// 2. Получаем салон и его таймзону
	shop, err := uc.catalogClient.GetShop(ctx, req.ShopID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrShopNotFound) {
			uc.logger.Warn("CreateBooking: shop id=%d not found", req.ShopID)
			return nil, ErrShopNotFound
		}
		uc.logger.Error("CreateBooking: failed to get shop id=%d: %v", req.ShopID, err)
		return nil, fmt.Errorf("%w: failed to get shop: %v", ErrInternal, err)
	}

	tzID := shop.Timezone
	if tzID == "" {
		tzID = domain.DefaultTimezone
	}
	shopLoc, err := time.LoadLocation(tzID)
	if err != nil {
		uc.logger.Error("CreateBooking: invalid shop timezone %q: %v", tzID, err)
		return nil, fmt.Errorf("%w: invalid shop timezone: %v", ErrInternal, err)
	}

	// 3. Валидация даты
	if err := validateDate(req.Date, now, shopLoc); err != nil {
		uc.logger.Warn("CreateBooking: date validation failed: %v", err)
		return nil, err
	}

	// 4. Локализуем запрошенное время. Несуществующее локальное время
	// (пропавший при переводе часов час) отклоняется сразу
	startMinutes, err := req.StartTime.Minutes()
	if err != nil {
		uc.logger.Warn("CreateBooking: invalid start time %q: %v", req.StartTime, err)
		return nil, fmt.Errorf("%w: invalid start time: %v", ErrInvalidInput, err)
	}
	startInstant, ok := localtime.Localize(req.Date, startMinutes, shopLoc)
	if !ok {
		uc.logger.Warn("CreateBooking: start time %s does not exist on %s in %s",
			req.StartTime, req.Date.Format(domain.DateFormat), tzID)
		return nil, ErrInvalidTime
	}

	// 5. Получаем услугу для денормализации
	service, err := uc.catalogClient.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrServiceNotFound) {
			uc.logger.Warn("CreateBooking: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateBooking: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	// 6. Параметры планирования услуги
	cfg, err := uc.configRepo.GetByServiceID(ctx, req.ServiceID)
	if err != nil {
		if !errors.Is(err, serviceconfigRepo.ErrConfigNotFound) {
			uc.logger.Error("CreateBooking: failed to get service config: %v", err)
			return nil, fmt.Errorf("%w: failed to get service config: %v", ErrInternal, err)
		}
		cfg = &domain.ServiceConfig{
			ServiceID:       req.ServiceID,
			ShopID:          req.ShopID,
			DurationMinutes: domain.DefaultGridIntervalMinutes,
		}
		uc.logger.Info("CreateBooking: using default config for service=%d", req.ServiceID)
	}

	// 7. Провайдеры-кандидаты
	providers, err := uc.resolveProviders(ctx, req)
	if err != nil {
		return nil, err
	}

	// 8. Лениво создаем строку дневной блокировки ДО транзакции: вставка
	// идемпотентна и не должна держать блокировку раньше времени
	if _, err := uc.dayLockRepo.GetOrCreate(ctx, req.ShopID, req.Date); err != nil {
		uc.logger.Error("CreateBooking: failed to ensure day lock for shop=%d: %v", req.ShopID, err)
		return nil, fmt.Errorf("%w: failed to ensure day lock: %v", ErrInternal, err)
	}

	var result *domain.Booking

	// 9. Транзакция: блокировка дня -> ревалидация -> вставка
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		// 9.1. Захватываем дневную блокировку. Конкурентные запросы на этот
		// день салона встают здесь в очередь до конца транзакции
		if _, err := uc.dayLockRepo.AcquireForUpdate(txCtx, req.ShopID, req.Date); err != nil {
			uc.logger.Error("CreateBooking: failed to acquire day lock for shop=%d: %v", req.ShopID, err)
			return fmt.Errorf("%w: failed to acquire day lock: %v", ErrInternal, err)
		}

		// 9.2. Ранжируем кандидатов по живой загрузке (под блокировкой)
		candidates, err := uc.rankCandidates(txCtx, providers, req.Date)
		if err != nil {
			return err
		}

		// 9.3. Идем по кандидатам в порядке предпочтения и берем первого,
		// у кого запрошенный момент входит в последовательность валидных слотов
		anyValidShape := false
		for _, cand := range candidates {
			valid, available, err := uc.probeSlot(txCtx, cand.provider, req.Date, startInstant, cfg, now, shopLoc)
			if err != nil {
				return err
			}
			if valid {
				anyValidShape = true
			}
			if !available {
				continue
			}

			booking := uc.buildBooking(req, cand.provider, service, cfg, startInstant, tzID)
			created, err := uc.bookingRepo.Create(txCtx, booking)
			if err != nil {
				uc.logger.Error("CreateBooking: failed to create booking: %v", err)
				return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
			}

			uc.logger.Info("CreateBooking: booked provider=%d (load=%d) for user=%d at %s",
				cand.provider.ID, cand.load, req.UserID, localtime.ToUTC(startInstant))
			result = created
			return nil
		}

		// Никто не подошел: различаем невалидное время и занятый слот
		if !anyValidShape {
			uc.logger.Warn("CreateBooking: time %s is not a valid slot start for any candidate", req.StartTime)
			return ErrInvalidTime
		}
		if req.ProviderID != nil {
			uc.logger.Warn("CreateBooking: slot %s already taken for provider=%d", req.StartTime, *req.ProviderID)
			return ErrSlotTaken
		}
		uc.logger.Warn("CreateBooking: no provider available at %s for shop=%d, service=%d",
			req.StartTime, req.ShopID, req.ServiceID)
		return ErrNoProviderAvailable
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%d ref=%s", result.ID, result.BookingRef)

	return uc.buildResponse(result), nil
}

// resolveProviders возвращает провайдеров-кандидатов: либо одного запрошенного,
// либо всех активных провайдеров услуги, разрешающих авто-назначение
func (uc *UseCase) resolveProviders(ctx context.Context, req *Request) ([]*catalogClient.Provider, error) {
	if req.ProviderID != nil {
		provider, err := uc.catalogClient.GetProvider(ctx, *req.ProviderID)
		if err != nil {
			if errors.Is(err, catalogClient.ErrProviderNotFound) {
				uc.logger.Warn("CreateBooking: provider id=%d not found", *req.ProviderID)
				return nil, ErrProviderNotFound
			}
			uc.logger.Error("CreateBooking: failed to get provider id=%d: %v", *req.ProviderID, err)
			return nil, fmt.Errorf("%w: failed to get provider: %v", ErrInternal, err)
		}

		if provider.ShopID != req.ShopID || !provider.IsActive {
			uc.logger.Warn("CreateBooking: provider id=%d is not an active provider of shop=%d", provider.ID, req.ShopID)
			return nil, ErrProviderNotFound
		}
		if !provider.OffersService(req.ServiceID) {
			uc.logger.Warn("CreateBooking: provider id=%d does not offer service=%d", provider.ID, req.ServiceID)
			return nil, ErrServiceNotOffered
		}

		return []*catalogClient.Provider{provider}, nil
	}

	providers, err := uc.catalogClient.GetProviders(ctx, req.ShopID, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrShopNotFound) {
			uc.logger.Warn("CreateBooking: shop id=%d not found while listing providers", req.ShopID)
			return nil, ErrShopNotFound
		}
		uc.logger.Error("CreateBooking: failed to list providers for shop=%d: %v", req.ShopID, err)
		return nil, fmt.Errorf("%w: failed to list providers: %v", ErrInternal, err)
	}

	// Для авто-выбора участвуют только провайдеры, разрешившие назначение без выбора
	eligible := make([]*catalogClient.Provider, 0, len(providers))
	for _, p := range providers {
		if p.AllowAnyProviderBooking {
			eligible = append(eligible, p)
		}
	}

	if len(eligible) == 0 {
		uc.logger.Warn("CreateBooking: no auto-assignable providers for shop=%d, service=%d", req.ShopID, req.ServiceID)
		return nil, ErrNoProviderAvailable
	}

	return eligible, nil
}

// probeSlot проверяет запрошенный момент против расписания провайдера.
// valid - момент является корректным началом слота по правилам (без учета
// занятости), available - слот свободен с учетом текущих бронирований.
func (uc *UseCase) probeSlot(
	ctx context.Context,
	provider *catalogClient.Provider,
	date time.Time,
	startInstant time.Time,
	cfg *domain.ServiceConfig,
	now time.Time,
	shopLoc *time.Location,
) (valid bool, available bool, err error) {
	ruleset, err := uc.rulesetRepo.GetByProvider(ctx, provider.ID)
	if errors.Is(err, rulesetRepo.ErrRuleSetNotFound) {
		ruleset, err = uc.rulesetRepo.GetShopDefault(ctx, provider.ShopID)
		if errors.Is(err, rulesetRepo.ErrRuleSetNotFound) {
			return false, false, nil
		}
	}
	if err != nil {
		uc.logger.Error("CreateBooking: failed to get ruleset for provider=%d: %v", provider.ID, err)
		return false, false, fmt.Errorf("%w: failed to get ruleset: %v", ErrInternal, err)
	}

	loc := shopLoc
	if ruleset.Timezone != "" {
		rulesetLoc, locErr := time.LoadLocation(ruleset.Timezone)
		if locErr != nil {
			uc.logger.Warn("CreateBooking: invalid ruleset timezone %q for provider=%d, falling back to shop timezone",
				ruleset.Timezone, provider.ID)
		} else {
			loc = rulesetLoc
		}
	}

	exception, err := uc.exceptionRepo.GetByProviderAndDate(ctx, provider.ID, date)
	if err != nil {
		if !errors.Is(err, exceptionRepo.ErrExceptionNotFound) {
			uc.logger.Error("CreateBooking: failed to get exception for provider=%d: %v", provider.ID, err)
			return false, false, fmt.Errorf("%w: failed to get exception: %v", ErrInternal, err)
		}
		exception = nil
	}

	windows := schedule.ResolveDay(ruleset, exception, date)
	if len(windows) == 0 {
		return false, false, nil
	}

	params := schedule.SequenceParams{
		Date:          date,
		Location:      loc,
		Windows:       windows,
		Grid:          ruleset.GridIntervalMinutes,
		Config:        cfg,
		MaxConcurrent: provider.MaxConcurrentProcessingJobs,
		NotBefore:     now,
	}

	// Сначала проверяем форму слота без учета занятости
	if !schedule.NewSequence(params).Contains(startInstant) {
		return false, false, nil
	}

	// Затем с живыми блоками занятости (строки заблокированы FOR UPDATE)
	bookings, err := uc.bookingRepo.GetActiveForDay(ctx, provider.ID, date)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to get bookings for provider=%d: %v", provider.ID, err)
		return true, false, fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}

	params.BusyBlocks, params.ProcessingBlocks = schedule.BuildBlocks(bookings)

	return true, schedule.NewSequence(params).Contains(startInstant), nil
}

// buildBooking собирает доменную модель бронирования с рассчитанным окном занятости
func (uc *UseCase) buildBooking(
	req *Request,
	provider *catalogClient.Provider,
	service *catalogClient.Service,
	cfg *domain.ServiceConfig,
	startInstant time.Time,
	tzID string,
) *domain.Booking {
	w := schedule.ComputeWindow(startInstant, cfg)

	return &domain.Booking{
		BookingRef:      uuid.New(),
		UserID:          req.UserID,
		ShopID:          req.ShopID,
		ProviderID:      provider.ID,
		ServiceID:       req.ServiceID,
		BookingDate:     req.Date,
		TimezoneID:      tzID,
		StartAt:         w.StartAt,
		BusyStart:       w.BusyStart,
		BusyEnd:         w.BusyEnd,
		ProcessingStart: w.ProcessingStart,
		ProcessingEnd:   w.ProcessingEnd,
		TotalEnd:        w.TotalEnd,
		Status:          domain.StatusConfirmed,
		ServiceName:     service.Name,
		ServicePrice:    service.Price,
		Notes:           req.Notes,
	}
}

func (uc *UseCase) buildResponse(b *domain.Booking) *Response {
	resp := &Response{
		ID:           b.ID,
		BookingRef:   b.BookingRef.String(),
		UserID:       b.UserID,
		ShopID:       b.ShopID,
		ProviderID:   b.ProviderID,
		ServiceID:    b.ServiceID,
		BookingDate:  b.BookingDate.Format(domain.DateFormat),
		TimezoneID:   b.TimezoneID,
		StartAt:      localtime.ToUTC(b.StartAt),
		TotalEnd:     localtime.ToUTC(b.TotalEnd),
		Status:       string(b.Status),
		BusyStart:    localtime.ToUTC(b.BusyStart),
		BusyEnd:      localtime.ToUTC(b.BusyEnd),
		ServiceName:  b.ServiceName,
		ServicePrice: b.ServicePrice,
		Notes:        b.Notes,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}

	if b.ProcessingStart != nil {
		ps := localtime.ToUTC(*b.ProcessingStart)
		resp.ProcessingStart = &ps
	}
	if b.ProcessingEnd != nil {
		pe := localtime.ToUTC(*b.ProcessingEnd)
		resp.ProcessingEnd = &pe
	}

	return resp
}
