package di

import (
	"fmt"

	"github.com/theoboldt/juvem-sub001/internal/handler"
	"github.com/theoboldt/juvem-sub001/internal/messaging"
	"github.com/theoboldt/juvem-sub001/internal/pdf"
	"github.com/theoboldt/juvem-sub001/internal/render"
	"github.com/theoboldt/juvem-sub001/internal/repository"
	"github.com/theoboldt/juvem-sub001/internal/service"
	"github.com/theoboldt/juvem-sub001/pkg/blob"
	"github.com/theoboldt/juvem-sub001/pkg/config"
	"github.com/theoboldt/juvem-sub001/pkg/database"
	"github.com/theoboldt/juvem-sub001/pkg/i18n"
	"github.com/theoboldt/juvem-sub001/pkg/logger"
	pkgredis "github.com/theoboldt/juvem-sub001/pkg/redis"
	"github.com/theoboldt/juvem-sub001/pkg/telemetry"
)

// Container holds all dependencies of the juvem API
type Container struct {
	// Infrastructure
	DB         *database.PostgresDB
	Redis      *pkgredis.Client
	Publisher  messaging.Publisher
	Store      blob.Store
	Converter  pdf.Converter
	Translator *i18n.Translator
	Renderer   *render.Renderer
	Metrics    *telemetry.Metrics

	// Repositories
	Repos *repository.Repositories

	// Services
	EventService         service.EventService
	AttributeService     service.AttributeService
	ParticipationService service.ParticipationService
	EmployeeService      service.EmployeeService
	PaymentService       service.PaymentService
	InvoiceService       service.InvoiceService
	AttendanceService    service.AttendanceService
	CommentService       service.CommentService
	GraphService         service.GraphService
	ProfileService       service.ProfileService
	ExportService        service.ExportService
	MigrationService     service.FilloutMigrationService

	// Handlers
	Handlers *handler.Handlers
}

// ContainerConfig contains configuration for building the container.
// DB and Redis are optional; Publisher, Store and Converter fall back to
// no-op or in-memory implementations when nil.
type ContainerConfig struct {
	DB        *database.PostgresDB
	Redis     *pkgredis.Client
	Repos     *repository.Repositories
	Publisher messaging.Publisher
	Store     blob.Store
	Converter pdf.Converter
	Logger    *logger.Logger
	App       config.AppConfig
	Invoice   config.InvoiceConfig
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) (*Container, error) {
	if cfg.Repos == nil {
		return nil, fmt.Errorf("container: repositories are required")
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Get()
	}

	c := &Container{
		DB:        cfg.DB,
		Redis:     cfg.Redis,
		Repos:     cfg.Repos,
		Publisher: cfg.Publisher,
		Store:     cfg.Store,
		Converter: cfg.Converter,
	}
	if c.Publisher == nil {
		c.Publisher = messaging.NewNoopPublisher()
	}
	if c.Store == nil {
		c.Store = blob.NewMemory()
	}
	if c.Converter == nil {
		c.Converter = pdf.NewNoOpConverter()
	}

	locale := cfg.App.Locale
	if locale == "" {
		locale = "de"
	}
	currency := cfg.Invoice.Currency
	if currency == "" {
		currency = "EUR"
	}

	var err error
	if c.Translator, err = i18n.NewTranslator(locale); err != nil {
		return nil, fmt.Errorf("container: translator: %w", err)
	}
	if c.Renderer, err = render.New(c.Translator, currency); err != nil {
		return nil, fmt.Errorf("container: renderer: %w", err)
	}
	if c.Metrics, err = telemetry.NewMetrics(telemetry.GetMeter()); err != nil {
		return nil, fmt.Errorf("container: metrics: %w", err)
	}

	// Initialize services
	formulas := service.NewFormulaEngine()
	repos := c.Repos
	c.EventService = service.NewEventService(repos.Events, repos.Attributes)
	c.AttributeService = service.NewAttributeService(repos.Attributes, formulas, c.Translator)
	c.ParticipationService = service.NewParticipationService(repos, c.AttributeService, c.Publisher, c.Metrics, log)
	c.EmployeeService = service.NewEmployeeService(repos, c.AttributeService)
	c.PaymentService = service.NewPaymentService(repos, c.AttributeService, formulas, c.Publisher, c.Metrics, log)
	c.InvoiceService = service.NewInvoiceService(service.InvoiceDeps{
		Repositories: repos,
		Payments:     c.PaymentService,
		Renderer:     c.Renderer,
		Converter:    c.Converter,
		Store:        c.Store,
		Publisher:    c.Publisher,
		Metrics:      c.Metrics,
		Logger:       log,
		Config:       cfg.Invoice,
	})
	c.AttendanceService = service.NewAttendanceService(repos)
	c.CommentService = service.NewCommentService(repos)
	c.GraphService = service.NewGraphService(repos)
	c.ProfileService = service.NewProfileService(repos, c.AttributeService, c.PaymentService, c.Renderer, c.Converter, c.Metrics)
	c.ExportService = service.NewExportService(repos, c.AttributeService, c.PaymentService, c.Translator)
	c.MigrationService = service.NewFilloutMigrationService(repos.Fillouts, repos.Attributes, log)

	// Initialize handlers
	checks := map[string]handler.HealthChecker{}
	if c.DB != nil {
		checks["database"] = c.DB
	}
	if c.Redis != nil {
		checks["redis"] = c.Redis
	}
	c.Handlers = &handler.Handlers{
		Health:        handler.NewHealthHandler(checks),
		Events:        handler.NewEventHandler(c.EventService),
		Attributes:    handler.NewAttributeHandler(c.AttributeService),
		Participation: handler.NewParticipationHandler(c.ParticipationService, c.ProfileService, locale),
		Employees:     handler.NewEmployeeHandler(c.EmployeeService),
		Payments:      handler.NewPaymentHandler(c.PaymentService),
		Invoices:      handler.NewInvoiceHandler(c.InvoiceService),
		Attendance:    handler.NewAttendanceHandler(c.AttendanceService),
		Comments:      handler.NewCommentHandler(c.CommentService),
		Graph:         handler.NewGraphHandler(c.GraphService),
		Exports:       handler.NewExportHandler(c.ExportService, locale),
	}

	return c, nil
}

// Close releases the infrastructure held by the container
func (c *Container) Close() {
	c.Publisher.Close()
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.DB != nil {
		c.DB.Close()
	}
}
