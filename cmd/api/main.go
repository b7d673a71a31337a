package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/config"
	appHTTP "github.com/cmlabs-hris/payroll-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/payroll-backend-go/internal/repository/postgresql"
	companyService "github.com/cmlabs-hris/payroll-backend-go/internal/service/company"
	declarationService "github.com/cmlabs-hris/payroll-backend-go/internal/service/declaration"
	employeeService "github.com/cmlabs-hris/payroll-backend-go/internal/service/employee"
	payrollService "github.com/cmlabs-hris/payroll-backend-go/internal/service/payroll"
	structureService "github.com/cmlabs-hris/payroll-backend-go/internal/service/salarystructure"
	taxconfigService "github.com/cmlabs-hris/payroll-backend-go/internal/service/taxconfig"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	setupLogger(cfg.App.LogLevel)

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		slog.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	var fileStorage storage.FileStorage
	switch cfg.Storage.Type {
	case "local":
		fileStorage, err = storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
		if err != nil {
			slog.Error("failed to initialize local storage", slog.Any("error", err))
			os.Exit(1)
		}
	default:
		slog.Error("unsupported storage type", slog.String("type", cfg.Storage.Type))
		os.Exit(1)
	}

	jwtService := jwt.NewService(cfg.JWT.Secret)

	companyRepo := postgresql.NewCompanyRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	taxConfigRepo := postgresql.NewTaxConfigurationRepository(db)
	structureRepo := postgresql.NewSalaryStructureRepository(db)
	declarationRepo := postgresql.NewTaxDeclarationRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)

	companySvc := companyService.NewCompanyService(db, companyRepo)
	employeeSvc := employeeService.NewEmployeeService(db, employeeRepo)
	taxConfigSvc := taxconfigService.NewTaxConfigurationService(db, taxConfigRepo)
	structureSvc := structureService.NewSalaryStructureService(db, structureRepo, employeeRepo)
	declarationSvc := declarationService.NewTaxDeclarationService(db, declarationRepo, employeeRepo)
	payrollSvc := payrollService.NewPayrollService(
		db,
		payrollRepo,
		employeeRepo,
		taxConfigRepo,
		structureRepo,
		declarationRepo,
		fileStorage,
		cfg.Payroll.Workers,
	)

	companyHandler := appHTTP.NewCompanyHandler(companySvc)
	employeeHandler := appHTTP.NewEmployeeHandler(employeeSvc)
	taxConfigHandler := appHTTP.NewTaxConfigurationHandler(taxConfigSvc)
	structureHandler := appHTTP.NewSalaryStructureHandler(structureSvc)
	declarationHandler := appHTTP.NewTaxDeclarationHandler(declarationSvc)
	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc)

	router := appHTTP.NewRouter(
		cfg,
		jwtService,
		companyHandler,
		employeeHandler,
		taxConfigHandler,
		structureHandler,
		declarationHandler,
		payrollHandler,
	)

	retention := time.Duration(cfg.Payroll.RunRetentionDays) * 24 * time.Hour
	scheduler := cron.NewScheduler()
	scheduler.AddJob("lock-stale-payroll-runs", 24*time.Hour, func(ctx context.Context) error {
		locked, err := payrollSvc.LockStaleRuns(ctx, retention)
		if err != nil {
			return err
		}
		if locked > 0 {
			slog.Info("locked stale payroll runs", slog.Int("count", locked))
		}
		return nil
	})
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server started", slog.Int("port", cfg.App.Port), slog.String("env", cfg.App.Env))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", slog.Any("error", err))
	}
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
}
