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

	cancelSessionHandler "github.com/m04kA/BSH-SessionService/internal/api/handlers/cancel_session"
	completeSessionHandler "github.com/m04kA/BSH-SessionService/internal/api/handlers/complete_session"
	createSessionHandler "github.com/m04kA/BSH-SessionService/internal/api/handlers/create_session"
	getBarberSessionsHandler "github.com/m04kA/BSH-SessionService/internal/api/handlers/get_barber_sessions"
	getSessionHandler "github.com/m04kA/BSH-SessionService/internal/api/handlers/get_session"
	pauseSessionHandler "github.com/m04kA/BSH-SessionService/internal/api/handlers/pause_session"
	resumeSessionHandler "github.com/m04kA/BSH-SessionService/internal/api/handlers/resume_session"
	startSessionHandler "github.com/m04kA/BSH-SessionService/internal/api/handlers/start_session"
	"github.com/m04kA/BSH-SessionService/internal/api/middleware"
	"github.com/m04kA/BSH-SessionService/internal/config"
	"github.com/m04kA/BSH-SessionService/internal/infra/memstore"
	sessionRepo "github.com/m04kA/BSH-SessionService/internal/infra/storage/session"
	appointmentServiceClient "github.com/m04kA/BSH-SessionService/internal/integrations/appointmentservice"
	"github.com/m04kA/BSH-SessionService/internal/service/capacity"
	sessionsService "github.com/m04kA/BSH-SessionService/internal/service/sessions"
	createSessionUC "github.com/m04kA/BSH-SessionService/internal/usecase/create_session"
	"github.com/m04kA/BSH-SessionService/pkg/dbmetrics"
	"github.com/m04kA/BSH-SessionService/pkg/logger"
	"github.com/m04kA/BSH-SessionService/pkg/metrics"
	"github.com/m04kA/BSH-SessionService/pkg/simpletxmanager"
	"github.com/m04kA/BSH-SessionService/pkg/txmanager"
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

	log.Info("Starting BSH-SessionService...")
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

	// Инициализируем клиент AppointmentService
	appointmentClient := appointmentServiceClient.NewClient(
		cfg.AppointmentService.URL,
		time.Duration(cfg.AppointmentService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration client initialized (AppointmentService=%s timeout=%ds)",
		cfg.AppointmentService.URL, cfg.AppointmentService.Timeout)

	// Инициализируем репозиторий (с метриками или без)
	var sessionRepository *sessionRepo.Repository

	// Интерфейс для transaction manager (используется в usecases)
	type TxManager interface {
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		sessionRepository = sessionRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		sessionRepository = sessionRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем авторитетное in-memory хранилище и прогреваем его
	// незавершенными сессиями: guard ёмкости должен видеть консистентную
	// картину с первого запроса
	store := memstore.New()

	warmupCtx, warmupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	unfinished, err := sessionRepository.ListUnfinished(warmupCtx)
	warmupCancel()
	if err != nil {
		log.Fatal("Failed to load unfinished sessions: %v", err)
	}
	store.Load(unfinished)
	log.Info("Session store warmed up with %d unfinished sessions", len(unfinished))

	// Инициализируем guard ёмкости барберов
	guard := capacity.NewGuard(store)

	// Инициализируем планировщик сессий
	sessionSvc := sessionsService.NewService(
		store,
		guard,
		sessionRepository,
		appointmentClient,
		log,
	)

	// Инициализируем use cases
	createSessionUseCase := createSessionUC.NewUseCase(
		sessionRepository,
		store,
		appointmentClient,
		txMgr,
		log,
	)

	// Инициализируем handlers
	createSession := createSessionHandler.NewHandler(createSessionUseCase, log)
	getSession := getSessionHandler.NewHandler(sessionSvc, log)
	startSession := startSessionHandler.NewHandler(sessionSvc, log)
	pauseSession := pauseSessionHandler.NewHandler(sessionSvc, log)
	resumeSession := resumeSessionHandler.NewHandler(sessionSvc, log)
	completeSession := completeSessionHandler.NewHandler(sessionSvc, log)
	cancelSession := cancelSessionHandler.NewHandler(sessionSvc, log)
	getBarberSessions := getBarberSessionsHandler.NewHandler(sessionSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
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
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Сессии услуг ---
	// Создание сессии при check-in записи
	protected.HandleFunc("/service-sessions", createSession.Handle).Methods(http.MethodPost)

	// Получение сессии по ID
	protected.HandleFunc("/service-sessions/{sessionId}", getSession.Handle).Methods(http.MethodGet)

	// Переходы жизненного цикла сессии
	protected.HandleFunc("/service-sessions/{sessionId}/start", startSession.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/service-sessions/{sessionId}/pause", pauseSession.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/service-sessions/{sessionId}/resume", resumeSession.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/service-sessions/{sessionId}/complete", completeSession.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/service-sessions/{sessionId}/cancel", cancelSession.Handle).Methods(http.MethodPost)

	// --- Сессии барбера ---
	// Незавершенные сессии барбера (активные и на паузе)
	protected.HandleFunc("/barbers/{barberId}/sessions", getBarberSessions.Handle).Methods(http.MethodGet)

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
