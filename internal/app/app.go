package app

import (
	"context"
	"fmt"
	"io"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/andy/timesheet/internal/config"
	"github.com/andy/timesheet/internal/crypto"
	"github.com/andy/timesheet/internal/db"
	"github.com/andy/timesheet/internal/domain"
	"github.com/andy/timesheet/internal/logging"
	"github.com/andy/timesheet/internal/repository"
	"github.com/andy/timesheet/internal/service"
)

// App is the dependency injection container for all application components
type App struct {
	Config *config.Config
	DB     *db.DB
	Log    zerolog.Logger

	// Repositories
	EmployeeRepo  repository.EmployeeRepository
	CustomerRepo  repository.CustomerRepository
	ActivityRepo  repository.ActivityTypeRepository
	ProjectRepo   repository.ProjectRepository
	TaskRepo      repository.TaskRepository
	TimesheetRepo repository.TimesheetRepository
	InvoiceRepo   repository.InvoiceRepository
	TimerRepo     repository.TimerRepository

	// Services
	TimesheetService service.TimesheetService
	InvoiceService   service.InvoiceService
	MapperService    service.MapperService
	TimerService     service.TimerService
	ReportService    service.ReportService

	logCloser io.Closer
}

// New loads the default config, unlocks the database and wires every
// component
func New(ctx context.Context) (*App, error) {
	cfg, err := config.LoadDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return NewWithConfig(ctx, cfg)
}

// NewWithConfig creates an App with a provided config
func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	password, err := encryptionKey(crypto.NewKeyring())
	if err != nil {
		return nil, err
	}

	return Open(ctx, cfg, password)
}

// Open wires the application against an explicit database key, skipping
// the keyring
func Open(ctx context.Context, cfg *config.Config, password string) (*App, error) {
	logger, closer, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	database, err := db.Open(cfg.Database.Path, password)
	if err != nil {
		closer.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := database.RunMigrations(); err != nil {
		database.Close()
		closer.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Debug().Str("path", cfg.Database.Path).Msg("database ready")

	a := &App{
		Config:        cfg,
		DB:            database,
		Log:           logger,
		EmployeeRepo:  repository.NewEmployeeRepo(database),
		CustomerRepo:  repository.NewCustomerRepo(database),
		ActivityRepo:  repository.NewActivityTypeRepo(database),
		ProjectRepo:   repository.NewProjectRepo(database),
		TaskRepo:      repository.NewTaskRepo(database),
		TimesheetRepo: repository.NewTimesheetRepo(database),
		InvoiceRepo:   repository.NewInvoiceRepo(database),
		TimerRepo:     repository.NewTimerRepo(database),
		logCloser:     closer,
	}

	a.TimesheetService = service.NewTimesheetService(
		a.TimesheetRepo, a.EmployeeRepo, a.ActivityRepo,
		service.TimesheetOptions{
			NumberPrefix: cfg.Timesheet.NumberPrefix,
			Overlap: domain.OverlapSettings{
				IgnoreEmployeeTimeOverlap: cfg.Projects.IgnoreEmployeeTimeOverlap,
			},
		},
		logger,
	)
	a.InvoiceService = service.NewInvoiceService(
		a.InvoiceRepo, a.TimesheetRepo, a.CustomerRepo, a.ProjectRepo,
		service.InvoiceOptions{
			NumberPrefix:    cfg.Invoice.NumberPrefix,
			DefaultItem:     cfg.Invoice.DefaultItem,
			DefaultCurrency: cfg.Invoice.DefaultCurrency,
			DueDays:         cfg.Invoice.DefaultDueDays,
		},
		logger,
	)
	a.MapperService = service.NewMapperService(a.ProjectRepo, a.TaskRepo)
	a.TimerService = service.NewTimerService(a.TimerRepo, a.EmployeeRepo, a.ActivityRepo, a.TimesheetService, logger)
	a.ReportService = service.NewReportService(a.TimesheetRepo, a.InvoiceRepo)

	return a, nil
}

// RetryPolicy returns the configured shift-and-retry bounds
func (a *App) RetryPolicy() service.RetryPolicy {
	return service.RetryPolicy{
		MaxAttempts: a.Config.Projects.OverlapRetry.MaxAttempts,
		Step:        a.Config.Projects.OverlapRetry.Step,
	}
}

// Close cleanly shuts down the application
func (a *App) Close() error {
	var err error
	if a.DB != nil {
		err = a.DB.Close()
	}
	if a.logCloser != nil {
		if cerr := a.logCloser.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// RecoverTimer reports a timer left running by a previous invocation
func (a *App) RecoverTimer(ctx context.Context) (*domain.ActiveTimer, error) {
	return a.TimerService.RecoverFromCrash(ctx)
}

// SaveConfig saves the current configuration to disk
func (a *App) SaveConfig() error {
	return a.Config.Save(config.DefaultConfigPath())
}

func encryptionKey(keyring crypto.Keyring) (string, error) {
	password, err := keyring.GetKey()
	if err == nil {
		return password, nil
	}

	fmt.Println("Setting up database encryption for the first time...")
	password, err = promptForPassword()
	if err != nil {
		return "", fmt.Errorf("failed to set password: %w", err)
	}

	if err := keyring.SetKey(password); err != nil {
		return "", fmt.Errorf("failed to store encryption key: %w", err)
	}
	return password, nil
}

// promptForPassword reads a new database password twice without echo
func promptForPassword() (string, error) {
	fmt.Println()
	fmt.Println("Timesheet data is encrypted with a password kept in your system keyring.")
	fmt.Println()
	fmt.Print("Enter a password for database encryption: ")

	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if len(password) == 0 {
		return "", fmt.Errorf("password cannot be empty")
	}

	fmt.Print("Confirm password: ")
	confirm, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read confirmation: %w", err)
	}

	if string(password) != string(confirm) {
		return "", fmt.Errorf("passwords do not match")
	}

	return string(password), nil
}
