package get_availability

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
)

// Фейки зависимостей

type noopLogger struct{}

func (noopLogger) Info(format string, v ...interface{})  {}
func (noopLogger) Warn(format string, v ...interface{})  {}
func (noopLogger) Error(format string, v ...interface{}) {}

type fakeBookingRepo struct {
	active map[int64][]*domain.Booking
}

func (f *fakeBookingRepo) GetActiveForDay(ctx context.Context, providerID int64, date time.Time) ([]*domain.Booking, error) {
	return f.active[providerID], nil
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

type fakeCatalogClient struct {
	shop      *catalogservice.Shop
	providers map[int64]*catalogservice.Provider
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

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

// Окружение теста: салон в Москве, два мастера, понедельник 2026-06-15

const (
	testShopID    = int64(1)
	testServiceID = int64(5)
)

var (
	testDate = time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC) // понедельник
	testNow  = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
)

type env struct {
	bookingRepo *fakeBookingRepo
	rulesets    *fakeRuleSetRepo
	exceptions  *fakeExceptionRepo
	configs     *fakeConfigRepo
	catalog     *fakeCatalogClient
	uc          *UseCase
}

func shortDayRuleSet() *domain.RuleSet {
	return &domain.RuleSet{
		ID:       1,
		Timezone: "Europe/Moscow",
		WeeklyRules: domain.WeeklyRules{
			"mon": {{Start: "10:00", End: "12:00"}},
		},
		GridIntervalMinutes: 30,
	}
}

func activeProvider(id int64) *catalogservice.Provider {
	return &catalogservice.Provider{
		ID:         id,
		ShopID:     testShopID,
		Name:       "master",
		IsActive:   true,
		ServiceIDs: []int64{testServiceID},
	}
}

func newEnv(providers ...*catalogservice.Provider) *env {
	e := &env{
		bookingRepo: &fakeBookingRepo{active: map[int64][]*domain.Booking{}},
		rulesets:    &fakeRuleSetRepo{byProvider: map[int64]*domain.RuleSet{}},
		exceptions:  &fakeExceptionRepo{byProvider: map[int64]*domain.Exception{}},
		configs:     &fakeConfigRepo{cfg: &domain.ServiceConfig{ServiceID: testServiceID, ShopID: testShopID, DurationMinutes: 60}},
		catalog: &fakeCatalogClient{
			shop:      &catalogservice.Shop{ID: testShopID, Timezone: "Europe/Moscow", IsActive: true},
			providers: map[int64]*catalogservice.Provider{},
		},
	}

	for _, p := range providers {
		e.catalog.providers[p.ID] = p
		e.rulesets.byProvider[p.ID] = shortDayRuleSet()
	}

	e.uc = NewUseCase(e.bookingRepo, e.rulesets, e.exceptions, e.configs, e.catalog, noopLogger{})
	e.uc.timeProvider = fixedTime{now: testNow}

	return e
}

func request(providerID *int64) *Request {
	return &Request{
		UserID:     42,
		ShopID:     testShopID,
		ServiceID:  testServiceID,
		ProviderID: providerID,
		Date:       testDate,
	}
}

// busyAt делает активное бронирование на час с указанного московского времени
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

func localTimes(slots []Slot) []string {
	result := make([]string, 0, len(slots))
	for _, s := range slots {
		result = append(result, s.LocalTime.String())
	}
	return result
}

// Тесты

func TestExecute_AggregatesAcrossProviders(t *testing.T) {
	e := newEnv(activeProvider(10), activeProvider(11))

	resp, err := e.uc.Execute(context.Background(), request(nil))
	require.NoError(t, err)

	assert.Equal(t, "2026-06-15", resp.Date)
	assert.Equal(t, "Europe/Moscow", resp.TimezoneID)
	assert.Nil(t, resp.ProviderID)

	// Окно 10:00-12:00, услуга 60 минут, шаг 30: старты 10:00, 10:30, 11:00
	require.Len(t, resp.Slots, 3)
	assert.Equal(t, []string{"10:00", "10:30", "11:00"}, localTimes(resp.Slots))

	for _, slot := range resp.Slots {
		assert.Equal(t, 2, slot.AvailabilityCount)
		assert.Equal(t, []int64{10, 11}, slot.ProviderIDs)
	}

	// 10:00 МСК = 07:00 UTC
	assert.Equal(t, "2026-06-15T07:00:00Z", resp.Slots[0].StartAt)
}

func TestExecute_BusyProviderDropsFromSlot(t *testing.T) {
	e := newEnv(activeProvider(10), activeProvider(11))
	// Мастер 10 занят 10:00-11:00: у него остается только старт 11:00
	e.bookingRepo.active[10] = []*domain.Booking{busyAt(t, "10:00")}

	resp, err := e.uc.Execute(context.Background(), request(nil))
	require.NoError(t, err)

	require.Len(t, resp.Slots, 3)

	assert.Equal(t, 1, resp.Slots[0].AvailabilityCount)
	assert.Equal(t, []int64{11}, resp.Slots[0].ProviderIDs)
	assert.Equal(t, 1, resp.Slots[1].AvailabilityCount)
	assert.Equal(t, 2, resp.Slots[2].AvailabilityCount)
	assert.Equal(t, []int64{10, 11}, resp.Slots[2].ProviderIDs)
}

func TestExecute_ProviderFilter(t *testing.T) {
	e := newEnv(activeProvider(10), activeProvider(11))
	e.bookingRepo.active[10] = []*domain.Booking{busyAt(t, "10:00")}

	resp, err := e.uc.Execute(context.Background(), request(ptr.Ptr(int64(10))))
	require.NoError(t, err)

	require.NotNil(t, resp.ProviderID)
	assert.Equal(t, int64(10), *resp.ProviderID)

	// Только собственные слоты мастера 10
	require.Len(t, resp.Slots, 1)
	assert.Equal(t, "11:00", resp.Slots[0].LocalTime.String())
	assert.Equal(t, []int64{10}, resp.Slots[0].ProviderIDs)
}

func TestExecute_ClosedDayException(t *testing.T) {
	e := newEnv(activeProvider(10), activeProvider(11))
	e.exceptions.byProvider[10] = &domain.Exception{ProviderID: 10, Date: testDate, IsClosed: true}

	resp, err := e.uc.Execute(context.Background(), request(nil))
	require.NoError(t, err)

	// Закрытый мастер не участвует, слоты остаются у второго
	require.Len(t, resp.Slots, 3)
	for _, slot := range resp.Slots {
		assert.Equal(t, []int64{11}, slot.ProviderIDs)
	}
}

func TestExecute_ProviderWithoutRuleSetSkipped(t *testing.T) {
	e := newEnv(activeProvider(10), activeProvider(11))
	delete(e.rulesets.byProvider, 11)

	resp, err := e.uc.Execute(context.Background(), request(nil))
	require.NoError(t, err)

	require.Len(t, resp.Slots, 3)
	for _, slot := range resp.Slots {
		assert.Equal(t, []int64{10}, slot.ProviderIDs)
	}
}

func TestExecute_ShopDefaultRuleSetFallback(t *testing.T) {
	e := newEnv(activeProvider(10))
	delete(e.rulesets.byProvider, 10)
	e.rulesets.shopDefault = shortDayRuleSet()

	resp, err := e.uc.Execute(context.Background(), request(nil))
	require.NoError(t, err)

	assert.Len(t, resp.Slots, 3)
}

func TestExecute_DefaultConfigWhenMissing(t *testing.T) {
	e := newEnv(activeProvider(10))
	e.configs.cfg = nil

	resp, err := e.uc.Execute(context.Background(), request(nil))
	require.NoError(t, err)

	// Дефолтная длительность 30 минут: стартов на один больше
	assert.Equal(t, []string{"10:00", "10:30", "11:00", "11:30"}, localTimes(resp.Slots))
}

func TestExecute_PastSlotsFiltered(t *testing.T) {
	e := newEnv(activeProvider(10))
	// "Сейчас" - день запроса, 10:30 МСК
	msk, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)
	e.uc.timeProvider = fixedTime{now: time.Date(2026, 6, 15, 10, 30, 0, 0, msk)}

	resp, err := e.uc.Execute(context.Background(), request(nil))
	require.NoError(t, err)

	// 10:00 прошел, 10:30 не строго позже "сейчас" - остается только 11:00
	assert.Equal(t, []string{"11:00"}, localTimes(resp.Slots))
}

func TestExecute_EmptyDayWithoutError(t *testing.T) {
	e := newEnv(activeProvider(10))

	req := request(nil)
	req.Date = time.Date(2026, 6, 16, 0, 0, 0, 0, time.UTC) // вторник, правил нет

	resp, err := e.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
}

func TestExecute_PastDateRejected(t *testing.T) {
	e := newEnv(activeProvider(10))

	req := request(nil)
	req.Date = time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)

	_, err := e.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestExecute_ValidationErrors(t *testing.T) {
	e := newEnv(activeProvider(10))

	req := request(nil)
	req.ShopID = 0
	_, err := e.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req = request(ptr.Ptr(int64(-1)))
	_, err = e.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req = request(nil)
	req.Date = time.Time{}
	_, err = e.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecute_ShopNotFound(t *testing.T) {
	e := newEnv(activeProvider(10))

	req := request(nil)
	req.ShopID = 999

	_, err := e.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrShopNotFound)
}

func TestExecute_ProviderChecks(t *testing.T) {
	foreign := activeProvider(20)
	foreign.ShopID = 777
	wrongService := activeProvider(21)
	wrongService.ServiceIDs = []int64{99}

	e := newEnv(activeProvider(10), foreign, wrongService)

	_, err := e.uc.Execute(context.Background(), request(ptr.Ptr(int64(20))))
	assert.ErrorIs(t, err, ErrProviderNotFound)

	_, err = e.uc.Execute(context.Background(), request(ptr.Ptr(int64(21))))
	assert.ErrorIs(t, err, ErrServiceNotOffered)

	_, err = e.uc.Execute(context.Background(), request(ptr.Ptr(int64(404))))
	assert.ErrorIs(t, err, ErrProviderNotFound)
}

func TestExecute_ProcessingOverlapIncreasesCapacity(t *testing.T) {
	e := newEnv(activeProvider(10))
	e.catalog.providers[10].MaxConcurrentProcessingJobs = 2
	e.configs.cfg = &domain.ServiceConfig{
		ServiceID:              testServiceID,
		ShopID:                 testShopID,
		DurationMinutes:        60,
		ProviderBlockMinutes:   ptr.Ptr(15),
		AllowProcessingOverlap: true,
	}

	// Существующее бронирование 10:00: жестко занято 15 минут, далее processing
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

	resp, err := e.uc.Execute(context.Background(), request(nil))
	require.NoError(t, err)

	// 10:30 и 11:00 доступны несмотря на идущую обработку
	assert.Equal(t, []string{"10:30", "11:00"}, localTimes(resp.Slots))
}

func TestExecute_SlotsSortedAndStable(t *testing.T) {
	e := newEnv(activeProvider(11), activeProvider(10))

	resp, err := e.uc.Execute(context.Background(), request(nil))
	require.NoError(t, err)

	require.Len(t, resp.Slots, 3)
	for i := 1; i < len(resp.Slots); i++ {
		assert.True(t, resp.Slots[i].StartAt > resp.Slots[i-1].StartAt)
	}
	// ID провайдеров в слоте отсортированы независимо от порядка обхода
	for _, slot := range resp.Slots {
		assert.Equal(t, []int64{10, 11}, slot.ProviderIDs)
	}
}
