package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoboldt/juvem-sub001/pkg/logger"
)

func TestActionFor(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		path     string
		expected AuditAction
	}{
		{"POST creates", "POST", "/api/v1/admin/events", AuditActionCreate},
		{"PUT updates", "PUT", "/api/v1/admin/events/e1", AuditActionUpdate},
		{"DELETE deletes", "DELETE", "/api/v1/admin/events/e1", AuditActionDelete},
		{"GET views", "GET", "/api/v1/admin/events", AuditActionView},
		{"restore", "POST", "/api/v1/admin/events/e1/restore", AuditActionRestore},
		{"status change", "POST", "/api/v1/admin/events/e1/participants/a1/status", AuditActionStatusChange},
		{"payment", "POST", "/api/v1/admin/events/e1/participations/p1/payments", AuditActionPayment},
		{"price set", "POST", "/api/v1/admin/events/e1/prices", AuditActionPriceSet},
		{"invoice", "POST", "/api/v1/admin/events/e1/invoices", AuditActionInvoice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, actionFor(tt.method, tt.path))
		})
	}
}

func TestExtractResource(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		wantType  string
		wantID    string
		wantEvent string
	}{
		{"collection", "/api/v1/admin/events", "event", "", ""},
		{"event", "/api/v1/admin/events/e1", "event", "e1", "e1"},
		{"nested participant", "/api/v1/admin/events/e1/participants/a1/status", "participant", "a1", "e1"},
		{"nested collection", "/api/v1/admin/events/e1/prices", "event", "e1", "e1"},
		{"attendance column", "/api/v1/admin/events/e1/attendance/l1/columns/c1", "column", "c1", "e1"},
		{"comment", "/api/v1/admin/comments/c9", "comment", "c9", ""},
		{"public registration", "/api/v1/public/events/e1/participations", "event", "e1", "e1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, id, ev := extractResource(tt.path)
			assert.Equal(t, tt.wantType, rt)
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantEvent, ev)
		})
	}
}

func TestAuditMiddleware(t *testing.T) {
	sink := &MemoryAuditSink{}
	cfg := DefaultAuditConfig(sink)
	cfg.FlushInterval = time.Hour
	cfg.Logger = logger.NewNop()
	al := NewAuditLogger(cfg)

	router := gin.New()
	router.Use(RequestID())
	router.Use(func(c *gin.Context) {
		c.Set(ContextKeyUserID, "user-1")
		c.Set(ContextKeyRole, RoleAdmin)
		c.Next()
	})
	router.Use(AuditMiddleware(al))
	router.POST("/api/v1/admin/events/:eid/participants/:aid/status", func(c *gin.Context) {
		SetAuditMetadata(c, map[string]interface{}{"to": "confirmed"})
		c.Status(http.StatusOK)
	})
	router.GET("/api/v1/admin/events", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.DELETE("/api/v1/admin/comments/:id", func(c *gin.Context) {
		SkipAudit(c)
		c.Status(http.StatusNoContent)
	})

	for _, r := range []struct{ method, path string }{
		{http.MethodPost, "/api/v1/admin/events/e1/participants/a1/status"},
		{http.MethodGet, "/api/v1/admin/events"},
		{http.MethodDelete, "/api/v1/admin/comments/c1"},
	} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(r.method, r.path, nil))
	}

	require.NoError(t, al.Close())

	entries := sink.Entries()
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, AuditActionStatusChange, e.Action)
	assert.Equal(t, "participant", e.ResourceType)
	require.NotNil(t, e.ResourceID)
	assert.Equal(t, "a1", *e.ResourceID)
	require.NotNil(t, e.EventID)
	assert.Equal(t, "e1", *e.EventID)
	require.NotNil(t, e.UserID)
	assert.Equal(t, "user-1", *e.UserID)
	assert.Equal(t, http.StatusOK, e.Status)
	assert.NotEmpty(t, e.RequestID)
	assert.Equal(t, "confirmed", e.Metadata["to"])
}

func TestAuditLogger_FlushesOnBatchSize(t *testing.T) {
	sink := &MemoryAuditSink{}
	cfg := DefaultAuditConfig(sink)
	cfg.BatchSize = 2
	cfg.FlushInterval = time.Hour
	cfg.Logger = logger.NewNop()
	al := NewAuditLogger(cfg)
	defer al.Close()

	al.Log(&AuditEntry{ID: "1"})
	al.Log(&AuditEntry{ID: "2"})

	assert.Eventually(t, func() bool { return len(sink.Entries()) == 2 }, time.Second, 10*time.Millisecond)
}
