package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/clinic_scheduler/internal/app"
	"github.com/Freeeeeet/clinic_scheduler/internal/config"
	"github.com/Freeeeeet/clinic_scheduler/internal/controller"
	"github.com/Freeeeeet/clinic_scheduler/internal/httpapi"
	"github.com/Freeeeeet/clinic_scheduler/internal/lock"
	"github.com/Freeeeeet/clinic_scheduler/internal/metrics"
	"github.com/Freeeeeet/clinic_scheduler/internal/model"
	"github.com/Freeeeeet/clinic_scheduler/internal/repository"
	"github.com/Freeeeeet/clinic_scheduler/internal/repository/memory"
	"github.com/Freeeeeet/clinic_scheduler/internal/service"
	"github.com/Freeeeeet/clinic_scheduler/migrations"
	"github.com/go-telegram/bot"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment, cfg.LogLevel)
	defer logger.Sync()

	logger.Sugar().Infow("Starting clinic scheduler",
		"environment", cfg.Environment,
		"storage", cfg.Storage,
		"timezone", cfg.Timezone.String(),
		"telegram_enabled", cfg.TelegramToken != "")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Clinic scheduler stopped with error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("Clinic scheduler stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	clock := func() time.Time { return time.Now().In(cfg.Timezone) }

	repos, tx, closeStorage, err := openStorage(ctx, cfg, clock, logger)
	if err != nil {
		return err
	}
	defer closeStorage()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewSchedulerMetrics(registry)

	// Сервисы
	scheduleService := service.NewScheduleService(repos, tx, m, clock, logger)
	slotService := service.NewSlotService(repos, tx, m, clock, logger)
	archiveService := service.NewArchiveService(repos, tx, m, clock, logger)
	clinicService := service.NewClinicService(repos.WorkWindows, logger)
	patientService := service.NewPatientService(repos.Patients, logger)

	// Фоновые задачи
	locker, closeLocker, err := openLocker(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeLocker()

	scheduler := app.NewScheduler([]app.Job{
		{
			Name: "archive",
			Spec: cfg.ArchiveCron,
			Run: func(ctx context.Context) error {
				_, err := archiveService.ArchiveSchedules(ctx)
				return err
			},
		},
		{
			Name: "passed_sweep",
			Spec: cfg.PassedSweepCron,
			Run: func(ctx context.Context) error {
				_, err := slotService.CheckForPassedTimeSlots(ctx)
				return err
			},
		},
	}, locker, cfg.JobLockTTL, cfg.Timezone, m, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	// HTTP
	handler := httpapi.NewHandler(scheduleService, slotService, archiveService, clinicService, cfg.Timezone, logger)
	server := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: httpapi.NewRouter(handler, httpapi.RouterConfig{
			CORSOrigins:      cfg.CORSOrigins,
			BookingRateLimit: cfg.BookingRateLimit,
			Gatherer:         registry,
		}, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	// Telegram
	if cfg.TelegramToken != "" {
		b, err := bot.New(cfg.TelegramToken)
		if err != nil {
			return fmt.Errorf("create telegram bot: %w", err)
		}
		botController := controller.NewBotController(b, patientService, scheduleService, slotService, clock, logger)
		if err := botController.RegisterHandlers(ctx); err != nil {
			logger.Warn("Bot commands menu not set", zap.Error(err))
		}
		go func() {
			if err := botController.Start(ctx); err != nil {
				errCh <- fmt.Errorf("telegram bot: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	return runErr
}

// openStorage выбирает хранилище по STORAGE
func openStorage(ctx context.Context, cfg *config.Config, clock func() time.Time, logger *zap.Logger) (repository.Repositories, repository.TxManager, func(), error) {
	if cfg.Storage == config.StorageMemory {
		store := memory.NewStore()
		store.SetClock(clock)
		seedDemo(store, logger)
		return store.Repositories(), store, func() {}, nil
	}

	pool, err := app.NewPool(ctx, cfg.DBDSN, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return repository.Repositories{}, nil, nil, err
	}

	migrator, err := app.NewMigrator(pool, migrations.FS, logger)
	if err != nil {
		pool.Close()
		return repository.Repositories{}, nil, nil, err
	}
	defer migrator.Close()
	if err := migrator.Run(ctx); err != nil {
		pool.Close()
		return repository.Repositories{}, nil, nil, err
	}

	logger.Info("Connected to PostgreSQL", zap.Int32("max_conns", cfg.DBMaxConns))
	return repository.NewRepositories(pool), repository.NewTxManager(pool, logger), pool.Close, nil
}

// openLocker Redis при заданном REDIS_ADDR, иначе блокировка в процессе
func openLocker(ctx context.Context, cfg *config.Config, logger *zap.Logger) (lock.Locker, func(), error) {
	if cfg.RedisAddr == "" {
		logger.Info("REDIS_ADDR not set, using in-process job locks")
		return lock.NewLocalLocker(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}

	logger.Info("Connected to Redis", zap.String("addr", cfg.RedisAddr))
	return lock.NewRedisLocker(client, "clinic_scheduler:"), func() { client.Close() }, nil
}

// seedDemo наполняет хранилище в памяти, чтобы API можно было попробовать без БД
func seedDemo(store *memory.Store, logger *zap.Logger) {
	clinic := store.AddClinic(model.Clinic{Name: "Демо-клиника", City: "Москва", Address: "ул. Примерная, 1"})
	physician := store.AddPhysician(model.Physician{
		ClinicID:  clinic.ID,
		FirstName: "Анна",
		LastName:  "Петрова",
		Specialty: "терапевт",
	})
	patient := store.AddPatient(model.Patient{FirstName: "Иван", LastName: "Иванов", Email: "ivanov@example.com"})

	for _, weekday := range model.Weekdays {
		window := model.WorkWindow{
			ClinicID: clinic.ID,
			Weekday:  weekday,
			Opening:  model.NewTimeOfDay(8, 0),
			Closing:  model.NewTimeOfDay(20, 0),
		}
		if err := store.Repositories().WorkWindows.Upsert(context.Background(), &window); err != nil {
			logger.Warn("Failed to seed work window", zap.String("weekday", string(weekday)), zap.Error(err))
		}
	}

	logger.Info("Seeded demo data",
		zap.String("clinic_id", clinic.ID.String()),
		zap.String("physician_id", physician.ID.String()),
		zap.String("patient_id", patient.ID.String()),
		zap.String("account_id", patient.AccountID.String()))
}
