package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/theoboldt/juvem-sub001/pkg/logger"
	"github.com/theoboldt/juvem-sub001/pkg/middleware"
)

// Handlers groups every HTTP handler of the API
type Handlers struct {
	Health        *HealthHandler
	Events        *EventHandler
	Attributes    *AttributeHandler
	Participation *ParticipationHandler
	Employees     *EmployeeHandler
	Payments      *PaymentHandler
	Invoices      *InvoiceHandler
	Attendance    *AttendanceHandler
	Comments      *CommentHandler
	Graph         *GraphHandler
	Exports       *ExportHandler
}

// RouterConfig holds the middleware settings of the router
type RouterConfig struct {
	JWT            *middleware.JWTConfig
	AllowedOrigins []string
	Logger         *logger.Logger
	// RegistrationLimiter throttles public registrations, nil disables it
	RegistrationLimiter middleware.Limiter
	RegistrationLimit   middleware.RateLimitConfig
	// Audit records mutating admin requests, nil disables it
	Audit *middleware.AuditLogger
}

// NewRouter builds the gin engine with all routes
func NewRouter(h *Handlers, cfg RouterConfig) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = logger.Get()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.GET("/health", h.Health.Health)

	public := r.Group("/api/v1/public")
	{
		public.GET("/events", h.Events.ListPublic)

		register := []gin.HandlerFunc{}
		if cfg.RegistrationLimiter != nil {
			register = append(register, middleware.RateLimiter(cfg.RegistrationLimiter, cfg.RegistrationLimit, log))
		}
		register = append(register, h.Participation.Register)
		public.POST("/events/:eid/participations", register...)
	}

	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.JWTMiddleware(cfg.JWT))
	admin.Use(middleware.RequireRole(middleware.RoleAdmin, middleware.RoleEmployee))
	admin.Use(middleware.ActorContext())
	if cfg.Audit != nil {
		admin.Use(middleware.AuditMiddleware(cfg.Audit))
	}
	adminOnly := middleware.RequireRole(middleware.RoleAdmin)

	admin.GET("/attributes", h.Attributes.List)
	admin.POST("/attributes", adminOnly, h.Attributes.Create)
	admin.GET("/attributes/:id", h.Attributes.Get)
	admin.PUT("/attributes/:id", adminOnly, h.Attributes.Update)
	admin.DELETE("/attributes/:id", adminOnly, h.Attributes.Delete)
	admin.POST("/attributes/:id/options", adminOnly, h.Attributes.AddOption)
	admin.PUT("/attributes/:id/options/:oid", adminOnly, h.Attributes.UpdateOption)
	admin.DELETE("/attributes/:id/options/:oid", adminOnly, h.Attributes.DeleteOption)

	admin.GET("/comments", h.Comments.List)
	admin.GET("/comments/count", h.Comments.Count)
	admin.POST("/comments", h.Comments.Create)
	admin.PUT("/comments/:id", h.Comments.Update)
	admin.DELETE("/comments/:id", h.Comments.Delete)

	admin.GET("/events", h.Events.List)
	admin.POST("/events", adminOnly, h.Events.Create)

	event := admin.Group("/events/:eid")
	{
		event.GET("", h.Events.Get)
		event.PUT("", adminOnly, h.Events.Update)
		event.DELETE("", adminOnly, h.Events.Delete)
		event.POST("/restore", adminOnly, h.Events.Restore)
		event.PUT("/attributes", adminOnly, h.Events.AssignAttributes)

		event.GET("/participations", h.Participation.List)
		event.GET("/participations/:pid", h.Participation.Get)
		event.PUT("/participations/:pid", h.Participation.UpdateContact)
		event.DELETE("/participations/:pid", h.Participation.Delete)
		event.POST("/participations/:pid/restore", h.Participation.Restore)
		event.GET("/participations/:pid/payments", h.Payments.ParticipationSummary)
		event.POST("/participations/:pid/payments", h.Payments.RecordPayment)
		event.GET("/participations/:pid/invoices/latest", h.Invoices.Latest)

		event.GET("/participants/:aid", h.Participation.GetParticipant)
		event.PUT("/participants/:aid", h.Participation.UpdateParticipant)
		event.DELETE("/participants/:aid", h.Participation.DeleteParticipant)
		event.POST("/participants/:aid/restore", h.Participation.RestoreParticipant)
		event.GET("/participants/:aid/status", h.Participation.StatusHistory)
		event.POST("/participants/:aid/status", h.Participation.ChangeStatus)
		event.GET("/participants/:aid/payments", h.Payments.ParticipantSummary)
		event.GET("/participants/:aid/profile", h.Participation.Profile)

		event.GET("/employees", h.Employees.List)
		event.POST("/employees", h.Employees.Create)
		event.GET("/employees/:id", h.Employees.Get)
		event.PUT("/employees/:id", h.Employees.Update)
		event.DELETE("/employees/:id", h.Employees.Delete)
		event.POST("/employees/:id/restore", h.Employees.Restore)

		event.GET("/payments/summary", h.Payments.EventSummary)
		event.POST("/prices", h.Payments.SetPrice)

		event.GET("/invoices", h.Invoices.List)
		event.POST("/invoices", h.Invoices.Create)
		event.GET("/invoices/:iid/download", h.Invoices.Download)

		event.GET("/attendance", h.Attendance.List)
		event.POST("/attendance", h.Attendance.Create)
		event.GET("/attendance/:lid", h.Attendance.Get)
		event.PUT("/attendance/:lid", h.Attendance.Update)
		event.DELETE("/attendance/:lid", h.Attendance.Delete)
		event.POST("/attendance/:lid/columns", h.Attendance.AddColumn)
		event.DELETE("/attendance/:lid/columns/:cid", h.Attendance.DeleteColumn)
		event.POST("/attendance/:lid/columns/:cid/choices", h.Attendance.AddChoice)
		event.DELETE("/attendance/:lid/columns/:cid/choices/:chid", h.Attendance.DeleteChoice)
		event.GET("/attendance/:lid/data", h.Attendance.Data)
		event.PUT("/attendance/:lid/fillouts", h.Attendance.SetFillout)
		event.DELETE("/attendance/:lid/fillouts", h.Attendance.ClearFillout)

		event.GET("/graph", h.Graph.Build)
		event.GET("/export/:kind", h.Exports.Export)
	}

	return r
}
