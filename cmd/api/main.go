package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-timesheet-go/internal/config"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/notification"
	appHTTP "github.com/cmlabs-hris/hris-timesheet-go/internal/handler/http"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/cloud"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/email"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/messaging"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/telemetry"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/repository/postgresql"
	approvalService "github.com/cmlabs-hris/hris-timesheet-go/internal/service/approval"
	attendanceService "github.com/cmlabs-hris/hris-timesheet-go/internal/service/attendance"
	employeeService "github.com/cmlabs-hris/hris-timesheet-go/internal/service/employee"
	notificationService "github.com/cmlabs-hris/hris-timesheet-go/internal/service/notification"
	reportService "github.com/cmlabs-hris/hris-timesheet-go/internal/service/report"
	scheduleService "github.com/cmlabs-hris/hris-timesheet-go/internal/service/schedule"
	timesheetService "github.com/cmlabs-hris/hris-timesheet-go/internal/service/timesheet"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})).With(
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
	))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.InitTracer(ctx, telemetry.Config{
		ServiceName:  cfg.Telemetry.ServiceName,
		Exporter:     cfg.Telemetry.Exporter,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		Insecure:     cfg.Telemetry.Insecure,
	})
	if err != nil {
		return fmt.Errorf("initializing tracer: %w", err)
	}

	dsn := cfg.DatabaseURL()
	if cfg.Database.AutoMigrate {
		if err := migrate(dsn); err != nil {
			return err
		}
	}

	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolOptions{MaxConns: cfg.Database.MaxConns})
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()
	slog.Info("database connected", "host", cfg.Database.Host, "name", cfg.Database.Name)

	tx := postgresql.NewTransactor(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	scheduleRepo := postgresql.NewScheduleRepository(db)
	timeEventRepo := postgresql.NewTimeEventRepository(db)
	requestRepo := postgresql.NewRequestRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.SSETTL)

	awsCfg, err := cloud.LoadAWSConfig(ctx, cloud.AWSConfig{
		Region:          cfg.AWS.Region,
		Endpoint:        cfg.AWS.Endpoint,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
	})
	if err != nil {
		return err
	}

	var deliverer notification.Deliverer
	if cfg.Notification.EmailEnabled {
		mailer, err := email.NewMailer(cloud.NewSESClient(awsCfg, cfg.AWS.Endpoint), email.Config{
			Sender: cfg.AWS.SESSender,
			AppURL: cfg.App.FrontendURL,
		})
		if err != nil {
			return err
		}
		deliverer = email.NewNotificationDeliverer(mailer, employeeRepo)
		slog.Info("email notifications enabled", "sender", cfg.AWS.SESSender)
	}

	var publisher approval.DecisionPublisher
	if cfg.AWS.SQSQueueURL != "" {
		publisher = messaging.NewSQSPublisher(cloud.NewSQSClient(awsCfg, cfg.AWS.Endpoint), cfg.AWS.SQSQueueURL)
		slog.Info("decision events published to sqs", "queue_url", cfg.AWS.SQSQueueURL)
	}

	hub := sse.NewHub()
	var broker sse.Broker = hub
	var bridge *sse.RedisBridge
	healthChecks := map[string]appHTTP.Pinger{"postgres": db}
	if cfg.Redis.Enabled() {
		rdb, err := sse.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer rdb.Close()
		bridge = sse.NewRedisBridge(rdb, cfg.Redis.Channel, hub)
		broker = bridge
		healthChecks["redis"] = appHTTP.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}

	notifSvc := notificationService.NewNotificationService(notificationRepo, broker, deliverer, notificationService.Config{
		BatchSize:     cfg.Notification.BatchSize,
		FlushInterval: cfg.Notification.FlushInterval,
		WorkerCount:   cfg.Notification.WorkerCount,
		QueueSize:     cfg.Notification.QueueSize,
	})

	employeeSvc := employeeService.NewEmployeeService(employeeRepo)
	scheduleSvc := scheduleService.NewScheduleService(tx, scheduleRepo, employeeRepo)
	timesheetSvc := timesheetService.NewTimesheetService(tx, timeEventRepo, scheduleRepo, nil)
	approvalSvc := approvalService.NewApprovalService(tx, requestRepo, employeeRepo, notifSvc, publisher, nil)
	attendanceSvc := attendanceService.NewAttendanceService(scheduleRepo, timesheetSvc, approvalSvc, attendanceService.NewCalculator())
	reportSvc := reportService.NewReportService(approvalSvc, attendanceSvc, employeeRepo, cfg.Report.Concurrency)

	scheduler := cron.NewScheduler()
	cron.NewApprovalJobs(approvalSvc, cfg.Cron.PendingReminderAge, cfg.Cron.Interval).RegisterJobs(scheduler)
	scheduler.Start()

	router := appHTTP.NewRouter(appHTTP.RouterConfig{
		AppName:        cfg.App.Name,
		Version:        cfg.App.Version,
		Env:            cfg.App.Env,
		AllowedOrigins: cfg.App.AllowedOrigins,
		LogLevel:       cfg.SlogLevel(),
	}, JWTService, appHTTP.Handlers{
		Health:       appHTTP.NewHealthHandler(healthChecks),
		Employee:     appHTTP.NewEmployeeHandler(employeeSvc),
		Schedule:     appHTTP.NewScheduleHandler(scheduleSvc),
		Timesheet:    appHTTP.NewTimesheetHandler(timesheetSvc),
		Attendance:   appHTTP.NewAttendanceHandler(attendanceSvc),
		Request:      appHTTP.NewRequestHandler(approvalSvc),
		Report:       appHTTP.NewReportHandler(reportSvc),
		Notification: appHTTP.NewNotificationHandler(notifSvc, JWTService),
	})

	// Request contexts end when shutdown begins so open SSE streams return.
	baseCtx, cancelRequests := context.WithCancel(context.Background())
	defer cancelRequests()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	server.RegisterOnShutdown(cancelRequests)

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.App.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown", "error", err)
	}
	scheduler.Stop()
	notifSvc.Stop()
	if bridge != nil {
		if err := bridge.Close(); err != nil {
			slog.Error("closing redis bridge", "error", err)
		}
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		slog.Error("tracer shutdown", "error", err)
	}

	slog.Info("server stopped")
	return nil
}

func migrate(dsn string) error {
	sqlDB, err := database.OpenSQL(dsn)
	if err != nil {
		return fmt.Errorf("opening migration connection: %w", err)
	}
	defer sqlDB.Close()

	if err := database.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}
