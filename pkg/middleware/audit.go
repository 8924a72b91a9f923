package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/theoboldt/juvem-sub001/pkg/logger"
)

// AuditAction represents the type of action being audited
type AuditAction string

const (
	AuditActionCreate       AuditAction = "create"
	AuditActionUpdate       AuditAction = "update"
	AuditActionDelete       AuditAction = "delete"
	AuditActionRestore      AuditAction = "restore"
	AuditActionStatusChange AuditAction = "status_change"
	AuditActionPayment      AuditAction = "payment"
	AuditActionPriceSet     AuditAction = "price_set"
	AuditActionInvoice      AuditAction = "invoice"
	AuditActionView         AuditAction = "view"
)

// Context keys for audit data set by handlers
const (
	ContextKeyAuditResourceType = "audit_resource_type"
	ContextKeyAuditResourceID   = "audit_resource_id"
	ContextKeyAuditMetadata     = "audit_metadata"
	contextKeyAuditSkip         = "audit_skip"
)

// AuditEntry represents a single audit log entry
type AuditEntry struct {
	ID           string                 `json:"id"`
	UserID       *string                `json:"user_id,omitempty"`
	UserEmail    string                 `json:"user_email,omitempty"`
	UserRole     string                 `json:"user_role,omitempty"`
	Action       AuditAction            `json:"action"`
	ResourceType string                 `json:"resource_type"`
	ResourceID   *string                `json:"resource_id,omitempty"`
	EventID      *string                `json:"event_id,omitempty"`
	Status       int                    `json:"status"`
	IPAddress    string                 `json:"ip_address,omitempty"`
	UserAgent    string                 `json:"user_agent,omitempty"`
	RequestID    string                 `json:"request_id,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}

// AuditSink persists flushed batches of audit entries
type AuditSink interface {
	Write(ctx context.Context, entries []*AuditEntry) error
}

// PostgresAuditSink inserts entries into audit_logs in one pgx batch
type PostgresAuditSink struct {
	pool *pgxpool.Pool
}

// NewPostgresAuditSink creates a sink backed by pool
func NewPostgresAuditSink(pool *pgxpool.Pool) *PostgresAuditSink {
	return &PostgresAuditSink{pool: pool}
}

const insertAuditQuery = `
	INSERT INTO audit_logs (
		id, user_id, user_email, user_role, action, resource_type, resource_id,
		event_id, status, ip_address, user_agent, request_id, metadata, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
`

func (s *PostgresAuditSink) Write(ctx context.Context, entries []*AuditEntry) error {
	batch := &pgx.Batch{}
	for _, e := range entries {
		metadata, err := json.Marshal(e.Metadata)
		if err != nil || e.Metadata == nil {
			metadata = []byte("{}")
		}
		batch.Queue(insertAuditQuery,
			e.ID, e.UserID, e.UserEmail, e.UserRole, string(e.Action), e.ResourceType, e.ResourceID,
			e.EventID, e.Status, e.IPAddress, e.UserAgent, e.RequestID, metadata, e.CreatedAt,
		)
	}
	return s.pool.SendBatch(ctx, batch).Close()
}

// MemoryAuditSink collects entries in memory
type MemoryAuditSink struct {
	mu      sync.Mutex
	entries []*AuditEntry
}

func (s *MemoryAuditSink) Write(_ context.Context, entries []*AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entries...)
	return nil
}

// Entries returns a copy of everything written so far
func (s *MemoryAuditSink) Entries() []*AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*AuditEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// AuditConfig holds configuration for the audit middleware
type AuditConfig struct {
	Sink          AuditSink
	BufferSize    int
	FlushInterval time.Duration
	BatchSize     int
	SkipPaths     []string
	// SkipMethods defaults to read-only methods
	SkipMethods []string
	Logger      *logger.Logger
}

// DefaultAuditConfig returns default configuration
func DefaultAuditConfig(sink AuditSink) *AuditConfig {
	return &AuditConfig{
		Sink:          sink,
		BufferSize:    1000,
		FlushInterval: 5 * time.Second,
		BatchSize:     100,
		SkipPaths:     []string{"/health"},
		SkipMethods:   []string{http.MethodGet, http.MethodHead, http.MethodOptions},
	}
}

// AuditLogger buffers entries and flushes them from a background worker
type AuditLogger struct {
	config    *AuditConfig
	buffer    chan *AuditEntry
	wg        sync.WaitGroup
	closeOnce sync.Once
	log       *logger.Logger
}

// NewAuditLogger creates a new audit logger and starts its worker
func NewAuditLogger(config *AuditConfig) *AuditLogger {
	if config.BufferSize <= 0 {
		config.BufferSize = 1000
	}
	if config.FlushInterval <= 0 {
		config.FlushInterval = 5 * time.Second
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}
	log := config.Logger
	if log == nil {
		log = logger.Get()
	}

	al := &AuditLogger{
		config: config,
		buffer: make(chan *AuditEntry, config.BufferSize),
		log:    log,
	}

	al.wg.Add(1)
	go al.worker()

	return al
}

// Log adds an entry to the buffer; entries are dropped when it is full
func (al *AuditLogger) Log(entry *AuditEntry) {
	select {
	case al.buffer <- entry:
	default:
		al.log.Warn("audit buffer full, dropping entry",
			zap.String("action", string(entry.Action)),
			zap.String("resource_type", entry.ResourceType),
		)
	}
}

// Close flushes pending entries and stops the worker
func (al *AuditLogger) Close() error {
	al.closeOnce.Do(func() {
		close(al.buffer)
		al.wg.Wait()
	})
	return nil
}

func (al *AuditLogger) worker() {
	defer al.wg.Done()

	ticker := time.NewTicker(al.config.FlushInterval)
	defer ticker.Stop()

	batch := make([]*AuditEntry, 0, al.config.BatchSize)

	for {
		select {
		case entry, ok := <-al.buffer:
			if !ok {
				al.flush(batch)
				return
			}
			batch = append(batch, entry)
			if len(batch) >= al.config.BatchSize {
				al.flush(batch)
				batch = make([]*AuditEntry, 0, al.config.BatchSize)
			}
		case <-ticker.C:
			if len(batch) > 0 {
				al.flush(batch)
				batch = make([]*AuditEntry, 0, al.config.BatchSize)
			}
		}
	}
}

func (al *AuditLogger) flush(entries []*AuditEntry) {
	if len(entries) == 0 || al.config.Sink == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := al.config.Sink.Write(ctx, entries); err != nil {
		al.log.Error("failed to write audit entries", zap.Int("count", len(entries)), zap.Error(err))
	}
}

// AuditMiddleware records one entry per mutating admin request
func AuditMiddleware(al *AuditLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		config := al.config

		for _, path := range config.SkipPaths {
			if c.Request.URL.Path == path {
				c.Next()
				return
			}
		}
		for _, method := range config.SkipMethods {
			if c.Request.Method == method {
				c.Next()
				return
			}
		}

		startTime := time.Now()

		c.Next()

		if skip, exists := c.Get(contextKeyAuditSkip); exists && skip.(bool) {
			return
		}

		entry := &AuditEntry{
			ID:        uuid.New().String(),
			Action:    actionFor(c.Request.Method, c.Request.URL.Path),
			Status:    c.Writer.Status(),
			IPAddress: c.ClientIP(),
			UserAgent: c.GetHeader("User-Agent"),
			RequestID: c.GetString(ContextKeyRequestID),
			CreatedAt: startTime,
		}

		if userID, ok := GetUserID(c); ok && userID != "" {
			entry.UserID = &userID
		}
		entry.UserEmail, _ = GetEmail(c)
		entry.UserRole, _ = GetRole(c)

		resourceType, resourceID, eventID := extractResource(c.Request.URL.Path)
		entry.ResourceType = resourceType
		if resourceID != "" {
			entry.ResourceID = &resourceID
		}
		if eventID != "" {
			entry.EventID = &eventID
		}

		if rt, exists := c.Get(ContextKeyAuditResourceType); exists {
			entry.ResourceType = rt.(string)
		}
		if rid, exists := c.Get(ContextKeyAuditResourceID); exists {
			if s, ok := rid.(string); ok && s != "" {
				entry.ResourceID = &s
			}
		}
		if meta, exists := c.Get(ContextKeyAuditMetadata); exists {
			entry.Metadata, _ = meta.(map[string]interface{})
		}

		al.Log(entry)
	}
}

// actionFor derives the audit action from the request path and method
func actionFor(method, path string) AuditAction {
	last := path[strings.LastIndex(path, "/")+1:]
	switch last {
	case "restore":
		return AuditActionRestore
	case "status":
		return AuditActionStatusChange
	case "payments":
		if method == http.MethodPost {
			return AuditActionPayment
		}
	case "prices":
		return AuditActionPriceSet
	case "invoices":
		if method == http.MethodPost {
			return AuditActionInvoice
		}
	}

	switch method {
	case http.MethodPost:
		return AuditActionCreate
	case http.MethodPut, http.MethodPatch:
		return AuditActionUpdate
	case http.MethodDelete:
		return AuditActionDelete
	default:
		return AuditActionView
	}
}

// extractResource returns the innermost collection/id pair of an admin path
// plus the event id when the path is scoped to an event.
// /api/v1/admin/events/e1/participants/p1/status -> ("participant", "p1", "e1")
func extractResource(path string) (resourceType, resourceID, eventID string) {
	parts := strings.Split(strings.Trim(path, "/"), "/")

	start := 0
	for i, part := range parts {
		if part == "admin" || part == "public" {
			start = i + 1
			break
		}
	}
	parts = parts[start:]
	if len(parts) == 0 {
		return "unknown", "", ""
	}

	for i := 0; i < len(parts); i += 2 {
		collection := parts[i]
		var id string
		if i+1 < len(parts) {
			id = parts[i+1]
		}
		if collection == "events" && id != "" {
			eventID = id
		}
		if i+1 < len(parts) || resourceType == "" {
			resourceType = singular(collection)
			resourceID = id
		}
	}
	return resourceType, resourceID, eventID
}

func singular(s string) string {
	switch {
	case s == "attendance":
		return "attendance_list"
	case strings.HasSuffix(s, "ies"):
		return strings.TrimSuffix(s, "ies") + "y"
	case strings.HasSuffix(s, "s"):
		return strings.TrimSuffix(s, "s")
	}
	return s
}

// SetAuditResource overrides the resource recorded for the current request
func SetAuditResource(c *gin.Context, resourceType, resourceID string) {
	c.Set(ContextKeyAuditResourceType, resourceType)
	c.Set(ContextKeyAuditResourceID, resourceID)
}

// SetAuditMetadata sets additional metadata for audit logging
func SetAuditMetadata(c *gin.Context, metadata map[string]interface{}) {
	c.Set(ContextKeyAuditMetadata, metadata)
}

// SkipAudit marks the current request to skip audit logging
func SkipAudit(c *gin.Context) {
	c.Set(contextKeyAuditSkip, true)
}
