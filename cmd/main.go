package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelBookingHandler "github.com/m04kA/Fidden-SchedulingService/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/m04kA/Fidden-SchedulingService/internal/api/handlers/create_booking"
	getAvailabilityHandler "github.com/m04kA/Fidden-SchedulingService/internal/api/handlers/get_availability"
	getBookingHandler "github.com/m04kA/Fidden-SchedulingService/internal/api/handlers/get_booking"
	getProviderBookingsHandler "github.com/m04kA/Fidden-SchedulingService/internal/api/handlers/get_provider_bookings"
	getRulesetHandler "github.com/m04kA/Fidden-SchedulingService/internal/api/handlers/get_ruleset"
	getUserBookingsHandler "github.com/m04kA/Fidden-SchedulingService/internal/api/handlers/get_user_bookings"
	updateBookingStatusHandler "github.com/m04kA/Fidden-SchedulingService/internal/api/handlers/update_booking_status"
	updateRulesetHandler "github.com/m04kA/Fidden-SchedulingService/internal/api/handlers/update_ruleset"
	updateServiceConfigHandler "github.com/m04kA/Fidden-SchedulingService/internal/api/handlers/update_service_config"
	upsertExceptionHandler "github.com/m04kA/Fidden-SchedulingService/internal/api/handlers/upsert_exception"
	"github.com/m04kA/Fidden-SchedulingService/internal/api/middleware"
	"github.com/m04kA/Fidden-SchedulingService/internal/config"
	bookingRepo "github.com/m04kA/Fidden-SchedulingService/internal/infra/storage/booking"
	dayLockRepo "github.com/m04kA/Fidden-SchedulingService/internal/infra/storage/daylock"
	exceptionRepo "github.com/m04kA/Fidden-SchedulingService/internal/infra/storage/exception"
	rulesetRepo "github.com/m04kA/Fidden-SchedulingService/internal/infra/storage/ruleset"
	serviceConfigRepo "github.com/m04kA/Fidden-SchedulingService/internal/infra/storage/serviceconfig"
	catalogServiceClient "github.com/m04kA/Fidden-SchedulingService/internal/integrations/catalogservice"
	bookingsService "github.com/m04kA/Fidden-SchedulingService/internal/service/bookings"
	configService "github.com/m04kA/Fidden-SchedulingService/internal/service/config"
	createBookingUC "github.com/m04kA/Fidden-SchedulingService/internal/usecase/create_booking"
	getAvailabilityUC "github.com/m04kA/Fidden-SchedulingService/internal/usecase/get_availability"
	"github.com/m04kA/Fidden-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/Fidden-SchedulingService/pkg/logger"
	"github.com/m04kA/Fidden-SchedulingService/pkg/metrics"
	"github.com/m04kA/Fidden-SchedulingService/pkg/simpletxmanager"
	"github.com/m04kA/Fidden-SchedulingService/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting Fidden-SchedulingService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Инициализируем клиент каталога
	catalogClient := catalogServiceClient.NewClient(
		cfg.CatalogService.URL,
		time.Duration(cfg.CatalogService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (CatalogService=%s timeout=%ds)",
		cfg.CatalogService.URL, cfg.CatalogService.Timeout)

	// Интерфейс для transaction manager (используется в usecases)
	type TxManager interface {
		Do(ctx context.Context, fn func(ctx context.Context) error) error
	}

	// Инициализируем репозитории (с метриками или без)
	var (
		bookingRepository       *bookingRepo.Repository
		rulesetRepository       *rulesetRepo.Repository
		exceptionRepository     *exceptionRepo.Repository
		serviceConfigRepository *serviceConfigRepo.Repository
		dayLockRepository       *dayLockRepo.Repository
		txMgr                   TxManager
	)

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		rulesetRepository = rulesetRepo.NewRepository(wrappedDB)
		exceptionRepository = exceptionRepo.NewRepository(wrappedDB)
		serviceConfigRepository = serviceConfigRepo.NewRepository(wrappedDB)
		dayLockRepository = dayLockRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		bookingRepository = bookingRepo.NewRepository(db)
		rulesetRepository = rulesetRepo.NewRepository(db)
		exceptionRepository = exceptionRepo.NewRepository(db)
		serviceConfigRepository = serviceConfigRepo.NewRepository(db)
		dayLockRepository = dayLockRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		catalogClient,
		log,
	)
	configSvc := configService.NewService(
		rulesetRepository,
		exceptionRepository,
		serviceConfigRepository,
		catalogClient,
		log,
	)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		rulesetRepository,
		exceptionRepository,
		serviceConfigRepository,
		dayLockRepository,
		catalogClient,
		txMgr,
		log,
	)

	getAvailabilityUseCase := getAvailabilityUC.NewUseCase(
		bookingRepository,
		rulesetRepository,
		exceptionRepository,
		serviceConfigRepository,
		catalogClient,
		log,
	)

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getAvailability := getAvailabilityHandler.NewHandler(getAvailabilityUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	updateBookingStatus := updateBookingStatusHandler.NewHandler(bookingSvc, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)
	getProviderBookings := getProviderBookingsHandler.NewHandler(bookingSvc, log)
	getRuleset := getRulesetHandler.NewHandler(configSvc, log)
	updateRuleset := updateRulesetHandler.NewHandler(configSvc, log)
	upsertException := upsertExceptionHandler.NewHandler(configSvc, log)
	updateServiceConfig := updateServiceConfigHandler.NewHandler(configSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(metricsCollector))
		log.Info("HTTP metrics middleware enabled")
	}

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Доступные слоты салона на дату
	api.HandleFunc("/shops/{shopId}/availability", getAvailability.Handle).Methods(http.MethodGet)

	// Эффективный набор правил провайдера
	api.HandleFunc("/providers/{providerId}/ruleset", getRuleset.Handle).Methods(http.MethodGet)

	// Параметры планирования услуги
	api.HandleFunc("/services/{serviceId}/config", updateServiceConfig.HandleGet).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	// Создание бронирования
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)

	// Получение бронирования по ID
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)

	// Отмена бронирования
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)

	// Смена статуса бронирования (для менеджеров)
	protected.HandleFunc("/bookings/{bookingId}", updateBookingStatus.Handle).Methods(http.MethodPatch)

	// История бронирований пользователя
	protected.HandleFunc("/users/{userId}/bookings", getUserBookings.Handle).Methods(http.MethodGet)

	// --- Управление расписанием (для менеджеров) ---
	// Список бронирований провайдера
	protected.HandleFunc("/providers/{providerId}/bookings", getProviderBookings.Handle).Methods(http.MethodGet)

	// Замена набора правил провайдера / дефолтного набора салона
	protected.HandleFunc("/providers/{providerId}/ruleset", updateRuleset.HandleProvider).Methods(http.MethodPut)
	protected.HandleFunc("/shops/{shopId}/ruleset", updateRuleset.HandleShop).Methods(http.MethodPut)

	// Исключения расписания на конкретные даты
	protected.HandleFunc("/providers/{providerId}/exceptions/{date}", upsertException.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/providers/{providerId}/exceptions/{date}", upsertException.HandleDelete).Methods(http.MethodDelete)

	// Параметры планирования услуги
	protected.HandleFunc("/services/{serviceId}/config", updateServiceConfig.Handle).Methods(http.MethodPut)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
