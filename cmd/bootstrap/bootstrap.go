package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/peter-abel/healthcare/config"
	deliveryHttp "github.com/peter-abel/healthcare/internal/delivery/http"
	"github.com/peter-abel/healthcare/internal/delivery/http/handler"
	"github.com/peter-abel/healthcare/internal/delivery/http/middleware"
	"github.com/peter-abel/healthcare/internal/delivery/worker"
	"github.com/peter-abel/healthcare/internal/infrastructure/cache"
	"github.com/peter-abel/healthcare/internal/infrastructure/database"
	"github.com/peter-abel/healthcare/internal/infrastructure/queue"
	"github.com/peter-abel/healthcare/internal/repository"
	"github.com/peter-abel/healthcare/internal/service"
	"github.com/peter-abel/healthcare/internal/usecase"
	"github.com/peter-abel/healthcare/pkg/jwt"
	"github.com/peter-abel/healthcare/pkg/validator"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	Location    *time.Location
	DB          *gorm.DB
	RedisClient *redis.Client
	TaskClient  *asynq.Client

	Doctors       usecase.DoctorProfileUsecase
	Coordinator   usecase.BookingCoordinator
	Notifications usecase.NotificationUsecase
	Schedules     usecase.DoctorScheduleUsecase
	AuditLogs     usecase.AuditLogUsecase
	Records       usecase.MedicalRecordUsecase
}

// Migrator is the subset of database.Migrator the CLI drives
type Migrator interface {
	Up() error
	Down() error
	Steps(n int) error
	Version() (uint, bool, error)
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	// Setup logger
	app.Log = setupLogger(cfg.App.LogLevel)
	app.Log.Info("Configuration loaded successfully")

	loc, err := cfg.App.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.App.Timezone, err)
	}
	app.Location = loc

	// Initialize database
	db, err := database.NewPostgresConnection(cfg, app.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis, app.Log)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient

	// Initialize task queue client
	taskClient, err := queue.NewClient(cfg, app.Log)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to task queue: %w", err)
	}
	app.TaskClient = taskClient

	app.initializeUsecases()

	return app, nil
}

// NewMigrator opens only the database; migrations need neither Redis nor the queue
func NewMigrator() (Migrator, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log := setupLogger(cfg.App.LogLevel)

	db, err := database.NewPostgresConnection(cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}

	migrator, err := database.NewMigrator(db, log)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return migrator, closeFn, nil
}

// setupLogger configures the logrus logger
func setupLogger(level string) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)
	return log
}

func (app *App) initializeUsecases() {
	cfg, db, log := app.Config, app.DB, app.Log

	// Initialize repositories
	appointmentRepo := repository.NewAppointmentRepository(app.Location)
	scheduleRepo := repository.NewDoctorScheduleRepository()
	doctorProfileRepo := repository.NewDoctorProfileRepository()
	patientProfileRepo := repository.NewPatientProfileRepository()
	auditLogRepo := repository.NewAuditLogRepository()
	medicalRecordRepo := repository.NewMedicalRecordRepository()

	// Initialize services
	auditService := service.NewAuditService(log, auditLogRepo)
	slotCache := service.NewRedisSlotCache(app.RedisClient, log)
	notificationSink := service.NewAsynqNotificationSink(app.TaskClient, cfg.Worker.NotifyMaxRetry, log)
	mailer := service.NewLogMailer(log)

	// Initialize usecases
	app.Coordinator = usecase.NewBookingCoordinator(db, log, usecase.SchedulingOptions{
		Location:     app.Location,
		SlotInterval: cfg.Scheduling.SlotInterval,
		SlotCacheTTL: cfg.Scheduling.SlotCacheTTL,
	}, appointmentRepo, scheduleRepo, doctorProfileRepo, patientProfileRepo, auditService, slotCache, notificationSink)
	app.Doctors = usecase.NewDoctorProfileUsecase(db, log, doctorProfileRepo)
	app.Schedules = usecase.NewDoctorScheduleUsecase(db, log, scheduleRepo, doctorProfileRepo, auditService, slotCache)
	app.AuditLogs = usecase.NewAuditLogUsecase(db, log, auditLogRepo)
	app.Records = usecase.NewMedicalRecordUsecase(db, log, medicalRecordRepo, appointmentRepo, patientProfileRepo, auditService)
	app.Notifications = usecase.NewNotificationUsecase(db, log, appointmentRepo, mailer)
}

// newServer creates and configures the HTTP server
func (app *App) newServer() *http.Server {
	// Initialize JWT service
	jwtService := jwt.NewJWTService(app.Config.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(map[string]handler.HealthCheck{
		"postgres": func(ctx context.Context) error {
			sqlDB, err := app.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		"redis": func(ctx context.Context) error {
			return app.RedisClient.Ping(ctx).Err()
		},
	})
	doctorHandler := handler.NewDoctorHandler(app.Doctors)
	bookingHandler := handler.NewBookingHandler(app.Coordinator, customValidator, app.Location)
	doctorScheduleHandler := handler.NewDoctorScheduleHandler(app.Schedules, customValidator)
	auditLogHandler := handler.NewAuditLogHandler(app.AuditLogs)
	medicalRecordHandler := handler.NewMedicalRecordHandler(app.Records, customValidator)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, app.RedisClient)
	corsMiddleware := middleware.NewCORSMiddleware(app.Config.App.AllowedOrigins)

	// Initialize router
	router := deliveryHttp.NewRouter(healthHandler, doctorHandler, bookingHandler, doctorScheduleHandler, auditLogHandler, medicalRecordHandler, authMiddleware, corsMiddleware)

	return &http.Server{
		Addr:              fmt.Sprintf(":%s", app.Config.App.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() error {
	server := app.newServer()
	errCh := make(chan error, 1)

	// Start server in goroutine
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	select {
	case err := <-errCh:
		app.Close()
		return fmt.Errorf("failed to start server: %w", err)
	case <-app.waitForSignal():
	}

	app.Log.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	app.Log.Info("Server shutdown complete")
	return nil
}

// RunWorker consumes queued notifications and drives the periodic sweeps until interrupted
func (app *App) RunWorker() error {
	server := queue.NewServer(app.Config, app.Log)
	scheduler, err := queue.NewScheduler(app.Config, app.Location, app.Log)
	if err != nil {
		app.Close()
		return err
	}

	mux := asynq.NewServeMux()
	worker.NewHandler(app.Log, app.Location, app.Coordinator, app.Notifications).Register(mux)

	if err := server.Start(mux); err != nil {
		app.Close()
		return fmt.Errorf("failed to start worker: %w", err)
	}
	if err := scheduler.Start(); err != nil {
		server.Shutdown()
		app.Close()
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	app.Log.Info("Worker started")

	<-app.waitForSignal()
	app.Log.Info("Shutting down worker...")

	scheduler.Shutdown()
	server.Shutdown()
	app.Close()

	app.Log.Info("Worker shutdown complete")
	return nil
}

func (app *App) waitForSignal() <-chan os.Signal {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	return quit
}

// Close closes all connections (database, redis, etc.)
func (app *App) Close() {
	if app.TaskClient != nil {
		app.TaskClient.Close()
	}

	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
