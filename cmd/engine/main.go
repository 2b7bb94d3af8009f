package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"AssetCarePlatform/internal/handler"
	enginemetrics "AssetCarePlatform/internal/metrics"
	enginerabbit "AssetCarePlatform/internal/producer/rabbitmq"
	"AssetCarePlatform/internal/repository/postgres"
	redisrepo "AssetCarePlatform/internal/repository/redis"
	"AssetCarePlatform/internal/service"
	"AssetCarePlatform/internal/worker"
	"AssetCarePlatform/pkg/config"
	"AssetCarePlatform/pkg/connection"
	"AssetCarePlatform/pkg/database"
	pkgerrors "AssetCarePlatform/pkg/errors"
	"AssetCarePlatform/pkg/health"
	"AssetCarePlatform/pkg/logger"
	pkg_rabbitmq "AssetCarePlatform/pkg/rabbitmq"
	"AssetCarePlatform/pkg/ratelimit"
	pkg_redis "AssetCarePlatform/pkg/redis"
)

const (
	serviceName    = "maintenance-engine"
	serviceVersion = "v1.0.0"
)

func main() {
	// Определяем путь к конфигурации
	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("Failed to get working directory: %v", err)
	}

	configPath := findConfig(wd)
	if configPath == "" {
		log.Fatalf("Could not find config.yaml file")
	}

	// Инициализация конфигурации
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	appLogger, err := logger.NewLogger(cfg.Environment, cfg.Logger.Level, serviceName)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		if err := appLogger.Sync(); err != nil {
			appLogger.Error("Error syncing logger", logger.Error(err))
		}
	}()

	appLogger.Info("Starting maintenance engine",
		logger.String("version", serviceVersion),
		logger.String("service", serviceName))

	// Инициализация retry конфигурации
	retryConfig := connection.DefaultRetryConfig()

	// Инициализируем метрики, имя пространства без дефисов для Prometheus
	engineMetrics := enginemetrics.NewEngineMetrics("maintenance_engine")

	ctx := context.Background()

	// Инициализируем базу данных
	dbConfig := database.NewConfig()
	dbConfig.Host = cfg.Database.Host
	dbConfig.Port = cfg.Database.Port
	dbConfig.User = cfg.Database.User
	dbConfig.Password = cfg.Database.Password
	dbConfig.Database = cfg.Database.Name
	dbConfig.SSLMode = cfg.Database.SSLMode

	var db *database.Postgres
	err = connection.WithRetry(ctx, retryConfig, func(ctx context.Context) error {
		var err error
		db, err = database.Connect(ctx, dbConfig)
		return err
	})
	if err != nil {
		appLogger.Error("Failed to connect to database", logger.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	appLogger.Info("Connected to database", logger.String("database", dbConfig.Database))

	// Инициализируем Redis
	redisConfig := pkg_redis.NewConfig()
	redisConfig.Addr = cfg.Redis.Addr
	redisConfig.Password = cfg.Redis.Password
	redisConfig.DB = cfg.Redis.DB

	redisClient, err := pkg_redis.Connect(ctx, redisConfig)
	if err != nil {
		appLogger.Error("Failed to connect to Redis", logger.Error(err))
		os.Exit(1)
	}
	defer redisClient.Close()

	// Инициализируем RabbitMQ
	rabbitConfig := pkg_rabbitmq.NewConfig()
	rabbitConfig.URL = cfg.RabbitMQ.URL
	rabbitConfig.Exchange = cfg.RabbitMQ.Exchange
	rabbitConfig.RoutingKey = cfg.RabbitMQ.RoutingKey
	rabbitConfig.Queue = cfg.RabbitMQ.Queue

	rabbitConn, err := pkg_rabbitmq.Connect(rabbitConfig)
	if err != nil {
		appLogger.Error("Failed to connect to RabbitMQ", logger.Error(err))
		os.Exit(1)
	}
	defer rabbitConn.Close()

	producer := enginerabbit.NewEngineProducer(rabbitConn, rabbitConfig, appLogger)

	// Инициализируем репозитории
	taskRepo := postgres.NewTaskRepository(db.Pool)
	incidentRepo := postgres.NewIncidentRepository(db.Pool)
	equipmentRepo := postgres.NewEquipmentRepository(db.Pool)
	technicianRepo := postgres.NewTechnicianRepository(db.Pool)
	auditRepo := postgres.NewAuditRepository(db.Pool)
	txManager := postgres.NewTxManager(db.Pool)
	lockRepo := redisrepo.NewLockRepository(redisClient.Client)

	// Инициализируем worker pool для пакетного планирования
	poolConfig := worker.DefaultConfig()
	poolConfig.WorkerCount = cfg.Engine.PlanWorkerCount

	pool, err := worker.NewPool(poolConfig, appLogger)
	if err != nil {
		appLogger.Error("Failed to create worker pool", logger.Error(err))
		os.Exit(1)
	}

	// Инициализируем сервисы
	clock := service.SystemClock{}
	upstreamTimeout := time.Duration(cfg.Engine.UpstreamTimeoutSec) * time.Second

	maintenanceConfig := &service.MaintenanceConfig{
		UpstreamTimeout: upstreamTimeout,
		TaskLockTTL:     time.Duration(cfg.Engine.TaskLockTTLSec) * time.Second,
	}
	maintenanceService := service.NewMaintenanceService(
		taskRepo, equipmentRepo, lockRepo, txManager,
		producer, pool, clock, maintenanceConfig, appLogger, engineMetrics,
	)

	incidentConfig := &service.IncidentConfig{
		EscalationGrace: time.Duration(cfg.Engine.EscalationGraceSec) * time.Second,
		UpstreamTimeout: upstreamTimeout,
	}
	incidentService := service.NewIncidentService(
		incidentRepo, equipmentRepo, txManager, technicianRepo,
		service.NewFirstAvailableAllocator(), producer, clock,
		incidentConfig, appLogger, engineMetrics,
	)

	riskService := service.NewRiskService(auditRepo, clock, upstreamTimeout, appLogger, engineMetrics)

	// Инициализируем периодический обход расписания
	sweepConfig := service.DefaultSweepConfig()
	sweepConfig.Schedule = cfg.Engine.SweepSchedule
	sweepConfig.AlertWindowDays = cfg.Engine.AlertWindowDays

	sweepService := service.NewSweepService(maintenanceService, incidentService, lockRepo, producer, sweepConfig, appLogger)
	if err := sweepService.Start(); err != nil {
		appLogger.Error("Failed to start schedule sweep", logger.Error(err))
		os.Exit(1)
	}

	// Инициализируем health checker
	healthChecker := health.NewCompositeHealthChecker(serviceVersion, 5*time.Second)
	healthChecker.AddCheck("postgres", db.HealthCheck)
	healthChecker.AddCheck("redis", redisClient.HealthCheck)
	healthChecker.AddCheck("rabbitmq", func(ctx context.Context) error {
		if !rabbitConn.IsConnected() {
			return fmt.Errorf("rabbitmq connection is closed")
		}
		return nil
	})

	// Запускаем HTTP сервер
	mux := http.NewServeMux()

	engineHandler := handler.NewEngineHandler(maintenanceService, incidentService, riskService, appLogger)
	engineHandler.Register(mux)

	mux.HandleFunc("/health", health.Handler(healthChecker))
	mux.HandleFunc("/ready", health.ReadyHandler(healthChecker))
	mux.HandleFunc("/live", health.LiveHandler())
	mux.Handle("/metrics", engineMetrics.Base().GetHandler())

	rateLimiter := ratelimit.NewRedisRateLimiter(redisClient.Client)

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: pkgerrors.Middleware(ratelimit.Middleware(rateLimiter, cfg.Server.RequestsPerMinute, mux)),
	}

	go func() {
		appLogger.Info("HTTP server started", logger.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed", logger.Error(err))
		}
	}()

	appLogger.Info("Maintenance engine started successfully")

	// Ожидаем сигналы для graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down maintenance engine...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sweepService.Stop()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Failed to shut down HTTP server", logger.Error(err))
	}

	appLogger.Info("Maintenance engine stopped gracefully")
}

// findConfig ищет config.yaml рядом с бинарником и в родительских директориях
func findConfig(wd string) string {
	candidate := filepath.Join(wd, "config", "config.yaml")
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}

	parentDir := wd
	for i := 0; i < 5; i++ {
		candidate = filepath.Join(parentDir, "config", "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parentDir = filepath.Dir(parentDir)
	}

	return ""
}
