package create_booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/Fidden-SchedulingService/internal/domain"
	exceptionRepo "github.com/m04kA/Fidden-SchedulingService/internal/infra/storage/exception"
	rulesetRepo "github.com/m04kA/Fidden-SchedulingService/internal/infra/storage/ruleset"
	serviceconfigRepo "github.com/m04kA/Fidden-SchedulingService/internal/infra/storage/serviceconfig"
	"github.com/m04kA/Fidden-SchedulingService/internal/integrations/catalogservice"
	"github.com/m04kA/Fidden-SchedulingService/pkg/ptr"
	"github.com/m04kA/Fidden-SchedulingService/pkg/types"
)

// Фейки зависимостей

type noopLogger struct{}

func (noopLogger) Info(format string, v ...interface{})  {}
func (noopLogger) Warn(format string, v ...interface{})  {}
func (noopLogger) Error(format string, v ...interface{}) {}

type fakeBookingRepo struct {
	active  map[int64][]*domain.Booking // providerID -> активные бронирования
	created []*domain.Booking
	nextID  int64
}

func (f *fakeBookingRepo) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	f.nextID++
	booking.ID = f.nextID
	f.created = append(f.created, booking)
	return booking, nil
}

func (f *fakeBookingRepo) GetActiveForDay(ctx context.Context, providerID int64, date time.Time) ([]*domain.Booking, error) {
	return f.active[providerID], nil
}

func (f *fakeBookingRepo) CountActiveForDay(ctx context.Context, providerID int64, date time.Time) (int, error) {
	return len(f.active[providerID]), nil
}

type fakeRuleSetRepo struct {
	byProvider  map[int64]*domain.RuleSet
	shopDefault *domain.RuleSet
}

func (f *fakeRuleSetRepo) GetByProvider(ctx context.Context, providerID int64) (*domain.RuleSet, error) {
	if rs, ok := f.byProvider[providerID]; ok {
		return rs, nil
	}
	return nil, rulesetRepo.ErrRuleSetNotFound
}

func (f *fakeRuleSetRepo) GetShopDefault(ctx context.Context, shopID int64) (*domain.RuleSet, error) {
	if f.shopDefault != nil {
		return f.shopDefault, nil
	}
	return nil, rulesetRepo.ErrRuleSetNotFound
}

type fakeExceptionRepo struct {
	byProvider map[int64]*domain.Exception
}

func (f *fakeExceptionRepo) GetByProviderAndDate(ctx context.Context, providerID int64, date time.Time) (*domain.Exception, error) {
	if exc, ok := f.byProvider[providerID]; ok {
		return exc, nil
	}
	return nil, exceptionRepo.ErrExceptionNotFound
}

type fakeConfigRepo struct {
	cfg *domain.ServiceConfig
}

func (f *fakeConfigRepo) GetByServiceID(ctx context.Context, serviceID int64) (*domain.ServiceConfig, error) {
	if f.cfg == nil {
		return nil, serviceconfigRepo.ErrConfigNotFound
	}
	return f.cfg, nil
}

type fakeDayLockRepo struct {
	ensured  int
	acquired int
}

func (f *fakeDayLockRepo) GetOrCreate(ctx context.Context, shopID int64, date time.Time) (*domain.DayLock, error) {
	f.ensured++
	return &domain.DayLock{ID: 1, ShopID: shopID, Date: date}, nil
}

func (f *fakeDayLockRepo) AcquireForUpdate(ctx context.Context, shopID int64, date time.Time) (*domain.DayLock, error) {
	f.acquired++
	return &domain.DayLock{ID: 1, ShopID: shopID, Date: date}, nil
}

type fakeCatalogClient struct {
	shop      *catalogservice.Shop
	providers map[int64]*catalogservice.Provider
	service   *catalogservice.Service
}

func (f *fakeCatalogClient) GetShop(ctx context.Context, shopID int64) (*catalogservice.Shop, error) {
	if f.shop == nil || f.shop.ID != shopID {
		return nil, catalogservice.ErrShopNotFound
	}
	return f.shop, nil
}

func (f *fakeCatalogClient) GetProvider(ctx context.Context, providerID int64) (*catalogservice.Provider, error) {
	if p, ok := f.providers[providerID]; ok {
		return p, nil
	}
	return nil, catalogservice.ErrProviderNotFound
}

func (f *fakeCatalogClient) GetProviders(ctx context.Context, shopID, serviceID int64) ([]*catalogservice.Provider, error) {
	result := make([]*catalogservice.Provider, 0)
	for _, p := range f.providers {
		if p.ShopID == shopID && p.IsActive && p.OffersService(serviceID) {
			result = append(result, p)
		}
	}
	return result, nil
}

func (f *fakeCatalogClient) GetService(ctx context.Context, serviceID int64) (*catalogservice.Service, error) {
	if f.service == nil || f.service.ID != serviceID {
		return nil, catalogservice.ErrServiceNotFound
	}
	return f.service, nil
}

type fakeTxManager struct {
	calls int
}

func (f *fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

// Окружение теста: салон в Москве, услуга на 60 минут, понедельник 2026-06-15

type env struct {
	bookingRepo *fakeBookingRepo
	rulesets    *fakeRuleSetRepo
	exceptions  *fakeExceptionRepo
	configs     *fakeConfigRepo
	dayLocks    *fakeDayLockRepo
	catalog     *fakeCatalogClient
	txManager   *fakeTxManager
	uc          *UseCase
}

const (
	testShopID    = int64(1)
	testServiceID = int64(5)
	testUserID    = int64(42)
)

var (
	testDate = time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC) // понедельник
	testNow  = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
)

func mondayRuleSet() *domain.RuleSet {
	return &domain.RuleSet{
		ID:       1,
		Name:     "standard week",
		Timezone: "Europe/Moscow",
		WeeklyRules: domain.WeeklyRules{
			"mon": {{Start: "09:00", End: "18:00"}},
		},
		GridIntervalMinutes: 30,
	}
}

func activeProvider(id int64) *catalogservice.Provider {
	return &catalogservice.Provider{
		ID:                      id,
		ShopID:                  testShopID,
		Name:                    "master",
		IsActive:                true,
		AllowAnyProviderBooking: true,
		ServiceIDs:              []int64{testServiceID},
	}
}

func newEnv(providers ...*catalogservice.Provider) *env {
	e := &env{
		bookingRepo: &fakeBookingRepo{active: map[int64][]*domain.Booking{}},
		rulesets:    &fakeRuleSetRepo{byProvider: map[int64]*domain.RuleSet{}},
		exceptions:  &fakeExceptionRepo{byProvider: map[int64]*domain.Exception{}},
		configs:     &fakeConfigRepo{cfg: &domain.ServiceConfig{ServiceID: testServiceID, ShopID: testShopID, DurationMinutes: 60}},
		dayLocks:    &fakeDayLockRepo{},
		catalog: &fakeCatalogClient{
			shop:      &catalogservice.Shop{ID: testShopID, Timezone: "Europe/Moscow", IsActive: true},
			providers: map[int64]*catalogservice.Provider{},
			service:   &catalogservice.Service{ID: testServiceID, ShopID: testShopID, Name: "Стрижка", Price: 1500},
		},
		txManager: &fakeTxManager{},
	}

	for _, p := range providers {
		e.catalog.providers[p.ID] = p
		e.rulesets.byProvider[p.ID] = mondayRuleSet()
	}

	e.uc = NewUseCase(
		e.bookingRepo,
		e.rulesets,
		e.exceptions,
		e.configs,
		e.dayLocks,
		e.catalog,
		e.txManager,
		noopLogger{},
	)
	e.uc.timeProvider = fixedTime{now: testNow}

	return e
}

func request(providerID *int64, startTime types.TimeString) *Request {
	return &Request{
		UserID:     testUserID,
		ShopID:     testShopID,
		ServiceID:  testServiceID,
		ProviderID: providerID,
		Date:       testDate,
		StartTime:  startTime,
	}
}

// busyAt делает активное бронирование, жестко занимающее час с указанного
// московского времени
func busyAt(t *testing.T, clock string) *domain.Booking {
	t.Helper()
	msk, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)

	parsed, err := time.Parse("15:04", clock)
	require.NoError(t, err)
	start := time.Date(2026, 6, 15, parsed.Hour(), parsed.Minute(), 0, 0, msk).UTC()

	return &domain.Booking{
		Status:    domain.StatusConfirmed,
		BusyStart: start,
		BusyEnd:   start.Add(time.Hour),
		TotalEnd:  start.Add(time.Hour),
	}
}

// Тесты

func TestExecute_Success(t *testing.T) {
	e := newEnv(activeProvider(10))

	resp, err := e.uc.Execute(context.Background(), request(ptr.Ptr(int64(10)), "10:00"))
	require.NoError(t, err)

	assert.Equal(t, int64(10), resp.ProviderID)
	assert.Equal(t, "confirmed", resp.Status)
	assert.Equal(t, "2026-06-15", resp.BookingDate)
	assert.Equal(t, "Europe/Moscow", resp.TimezoneID)
	// 10:00 МСК = 07:00 UTC
	assert.Equal(t, "2026-06-15T07:00:00Z", resp.StartAt)
	assert.Equal(t, "2026-06-15T08:00:00Z", resp.TotalEnd)
	assert.Equal(t, "Стрижка", resp.ServiceName)
	assert.NotEmpty(t, resp.BookingRef)

	// Блокировка дня создана до транзакции и захвачена внутри нее
	assert.Equal(t, 1, e.dayLocks.ensured)
	assert.Equal(t, 1, e.dayLocks.acquired)
	assert.Equal(t, 1, e.txManager.calls)
	require.Len(t, e.bookingRepo.created, 1)
}

func TestExecute_DefaultConfigWhenMissing(t *testing.T) {
	e := newEnv(activeProvider(10))
	e.configs.cfg = nil

	resp, err := e.uc.Execute(context.Background(), request(ptr.Ptr(int64(10)), "10:00"))
	require.NoError(t, err)

	// Дефолтная длительность равна шагу сетки
	assert.Equal(t, "2026-06-15T07:00:00Z", resp.StartAt)
	assert.Equal(t, "2026-06-15T07:30:00Z", resp.TotalEnd)
}

func TestExecute_SlotTaken(t *testing.T) {
	e := newEnv(activeProvider(10))
	e.bookingRepo.active[10] = []*domain.Booking{busyAt(t, "10:00")}

	_, err := e.uc.Execute(context.Background(), request(ptr.Ptr(int64(10)), "10:00"))
	assert.ErrorIs(t, err, ErrSlotTaken)
}

func TestExecute_OverlappingSlotTaken(t *testing.T) {
	e := newEnv(activeProvider(10))
	e.bookingRepo.active[10] = []*domain.Booking{busyAt(t, "10:00")}

	// 10:30 пересекается с занятым часом 10:00-11:00
	_, err := e.uc.Execute(context.Background(), request(ptr.Ptr(int64(10)), "10:30"))
	assert.ErrorIs(t, err, ErrSlotTaken)

	// 11:00 граничит с занятым блоком и свободен
	resp, err := e.uc.Execute(context.Background(), request(ptr.Ptr(int64(10)), "11:00"))
	require.NoError(t, err)
	assert.Equal(t, "2026-06-15T08:00:00Z", resp.StartAt)
}

func TestExecute_OffGridTimeInvalid(t *testing.T) {
	e := newEnv(activeProvider(10))

	_, err := e.uc.Execute(context.Background(), request(ptr.Ptr(int64(10)), "10:15"))
	assert.ErrorIs(t, err, ErrInvalidTime)
}

func TestExecute_OutsideWorkingHoursInvalid(t *testing.T) {
	e := newEnv(activeProvider(10))

	_, err := e.uc.Execute(context.Background(), request(ptr.Ptr(int64(10)), "08:00"))
	assert.ErrorIs(t, err, ErrInvalidTime)

	// Услуга не помещается до конца рабочего дня
	_, err = e.uc.Execute(context.Background(), request(ptr.Ptr(int64(10)), "17:30"))
	assert.ErrorIs(t, err, ErrInvalidTime)
}

func TestExecute_SpringForwardGapInvalid(t *testing.T) {
	e := newEnv(activeProvider(10))
	e.catalog.shop.Timezone = "America/New_York"
	rs := mondayRuleSet()
	rs.Timezone = "America/New_York"
	rs.WeeklyRules = domain.WeeklyRules{"sun": {{Start: "00:00", End: "08:00"}}}
	e.rulesets.byProvider[10] = rs

	gapDate := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC) // воскресенье перевода часов
	e.uc.timeProvider = fixedTime{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}

	req := request(ptr.Ptr(int64(10)), "02:30")
	req.Date = gapDate

	_, err := e.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidTime)
}

func TestExecute_PastDateRejected(t *testing.T) {
	e := newEnv(activeProvider(10))

	req := request(ptr.Ptr(int64(10)), "10:00")
	req.Date = time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)

	_, err := e.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestExecute_ValidationErrors(t *testing.T) {
	e := newEnv(activeProvider(10))

	req := request(ptr.Ptr(int64(10)), "10:00")
	req.UserID = 0
	_, err := e.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req = request(ptr.Ptr(int64(10)), "")
	_, err = e.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req = request(ptr.Ptr(int64(10)), "25:99")
	_, err = e.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecute_ShopNotFound(t *testing.T) {
	e := newEnv(activeProvider(10))

	req := request(ptr.Ptr(int64(10)), "10:00")
	req.ShopID = 999

	_, err := e.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrShopNotFound)
}

func TestExecute_ProviderChecks(t *testing.T) {
	foreign := activeProvider(20)
	foreign.ShopID = 777
	inactive := activeProvider(21)
	inactive.IsActive = false
	wrongService := activeProvider(22)
	wrongService.ServiceIDs = []int64{99}

	e := newEnv(activeProvider(10), foreign, inactive, wrongService)

	// Провайдер чужого салона
	_, err := e.uc.Execute(context.Background(), request(ptr.Ptr(int64(20)), "10:00"))
	assert.ErrorIs(t, err, ErrProviderNotFound)

	// Неактивный провайдер
	_, err = e.uc.Execute(context.Background(), request(ptr.Ptr(int64(21)), "10:00"))
	assert.ErrorIs(t, err, ErrProviderNotFound)

	// Провайдер не оказывает услугу
	_, err = e.uc.Execute(context.Background(), request(ptr.Ptr(int64(22)), "10:00"))
	assert.ErrorIs(t, err, ErrServiceNotOffered)

	// Несуществующий провайдер
	_, err = e.uc.Execute(context.Background(), request(ptr.Ptr(int64(404)), "10:00"))
	assert.ErrorIs(t, err, ErrProviderNotFound)
}

func TestExecute_AutoSelectLeastLoaded(t *testing.T) {
	e := newEnv(activeProvider(10), activeProvider(11))
	// Провайдер 10 уже загружен утром, провайдер 11 свободен
	e.bookingRepo.active[10] = []*domain.Booking{busyAt(t, "09:00"), busyAt(t, "12:00")}

	resp, err := e.uc.Execute(context.Background(), request(nil, "15:00"))
	require.NoError(t, err)

	assert.Equal(t, int64(11), resp.ProviderID)
}

func TestExecute_AutoSelectTieBreakByID(t *testing.T) {
	e := newEnv(activeProvider(11), activeProvider(10))

	resp, err := e.uc.Execute(context.Background(), request(nil, "10:00"))
	require.NoError(t, err)

	// При равной загрузке выбирается меньший ID
	assert.Equal(t, int64(10), resp.ProviderID)
}

func TestExecute_AutoSelectSkipsBusyCandidate(t *testing.T) {
	e := newEnv(activeProvider(10), activeProvider(11))
	// Наименее загруженный кандидат занят именно в запрошенный момент
	e.bookingRepo.active[10] = []*domain.Booking{busyAt(t, "10:00")}
	e.bookingRepo.active[11] = []*domain.Booking{busyAt(t, "12:00"), busyAt(t, "14:00")}

	resp, err := e.uc.Execute(context.Background(), request(nil, "10:00"))
	require.NoError(t, err)

	assert.Equal(t, int64(11), resp.ProviderID)
}

func TestExecute_AutoSelectRespectsAllowFlag(t *testing.T) {
	optOut := activeProvider(10)
	optOut.AllowAnyProviderBooking = false

	e := newEnv(optOut)

	_, err := e.uc.Execute(context.Background(), request(nil, "10:00"))
	assert.ErrorIs(t, err, ErrNoProviderAvailable)

	// Но явный выбор такого провайдера работает
	resp, err := e.uc.Execute(context.Background(), request(ptr.Ptr(int64(10)), "10:00"))
	require.NoError(t, err)
	assert.Equal(t, int64(10), resp.ProviderID)
}

func TestExecute_NoProviderAvailable(t *testing.T) {
	e := newEnv(activeProvider(10), activeProvider(11))
	e.bookingRepo.active[10] = []*domain.Booking{busyAt(t, "10:00")}
	e.bookingRepo.active[11] = []*domain.Booking{busyAt(t, "10:00")}

	_, err := e.uc.Execute(context.Background(), request(nil, "10:00"))
	assert.ErrorIs(t, err, ErrNoProviderAvailable)
}

func TestExecute_ShopDefaultRuleSetFallback(t *testing.T) {
	e := newEnv(activeProvider(10))
	delete(e.rulesets.byProvider, 10)
	e.rulesets.shopDefault = mondayRuleSet()

	resp, err := e.uc.Execute(context.Background(), request(ptr.Ptr(int64(10)), "10:00"))
	require.NoError(t, err)
	assert.Equal(t, "2026-06-15T07:00:00Z", resp.StartAt)
}

func TestExecute_NoRuleSetAnywhere(t *testing.T) {
	e := newEnv(activeProvider(10))
	delete(e.rulesets.byProvider, 10)

	// Ни собственного набора, ни дефолтного: слот не имеет валидной формы
	_, err := e.uc.Execute(context.Background(), request(ptr.Ptr(int64(10)), "10:00"))
	assert.ErrorIs(t, err, ErrInvalidTime)
}

func TestExecute_ClosedDayException(t *testing.T) {
	e := newEnv(activeProvider(10))
	e.exceptions.byProvider[10] = &domain.Exception{ProviderID: 10, Date: testDate, IsClosed: true}

	_, err := e.uc.Execute(context.Background(), request(ptr.Ptr(int64(10)), "10:00"))
	assert.ErrorIs(t, err, ErrInvalidTime)
}

func TestExecute_ProcessingOverlapAllowsParallelBooking(t *testing.T) {
	e := newEnv(activeProvider(10))
	cfg := &domain.ServiceConfig{
		ServiceID:              testServiceID,
		ShopID:                 testShopID,
		DurationMinutes:        60,
		ProviderBlockMinutes:   ptr.Ptr(15),
		AllowProcessingOverlap: true,
	}
	e.configs.cfg = cfg
	e.catalog.providers[10].MaxConcurrentProcessingJobs = 2

	// Существующее бронирование 10:00: мастер жестко занят 15 минут,
	// затем только processing-окно
	msk, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)
	start := time.Date(2026, 6, 15, 10, 0, 0, 0, msk).UTC()
	ps := start.Add(15 * time.Minute)
	pe := start.Add(60 * time.Minute)
	e.bookingRepo.active[10] = []*domain.Booking{{
		Status:          domain.StatusConfirmed,
		BusyStart:       start,
		BusyEnd:         ps,
		ProcessingStart: &ps,
		ProcessingEnd:   &pe,
		TotalEnd:        pe,
	}}

	// 10:30 попадает в processing-окно первого бронирования, лимит 2 позволяет
	resp, err := e.uc.Execute(context.Background(), request(ptr.Ptr(int64(10)), "10:30"))
	require.NoError(t, err)
	assert.NotNil(t, resp.ProcessingStart)

	// При лимите 1 тот же слот занят
	e.catalog.providers[10].MaxConcurrentProcessingJobs = 1
	e.bookingRepo.created = nil
	_, err = e.uc.Execute(context.Background(), request(ptr.Ptr(int64(10)), "10:30"))
	assert.ErrorIs(t, err, ErrSlotTaken)
}
