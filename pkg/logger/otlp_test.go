package logger

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type otlpCollector struct {
	mu       sync.Mutex
	payloads []otlpPayload
}

func (c *otlpCollector) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	var p otlpPayload
	if err := json.Unmarshal(body, &p); err == nil {
		c.mu.Lock()
		c.payloads = append(c.payloads, p)
		c.mu.Unlock()
	}
	w.WriteHeader(http.StatusOK)
}

func (c *otlpCollector) records() []otlpRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []otlpRecord
	for _, p := range c.payloads {
		for _, rl := range p.ResourceLogs {
			for _, sl := range rl.ScopeLogs {
				out = append(out, sl.LogRecords...)
			}
		}
	}
	return out
}

func TestOTLPExport(t *testing.T) {
	collector := &otlpCollector{}
	srv := httptest.NewServer(collector)
	defer srv.Close()

	l, err := New(&Config{
		Level:             "info",
		ServiceName:       "juvem-test",
		OutputPath:        "stderr",
		OTLPLogsURL:       srv.URL,
		OTLPFlushInterval: time.Hour,
	})
	require.NoError(t, err)

	l.Debug("dropped")
	l.Warn("capacity reached", zap.String("event_id", "ev-1"), zap.Float64("ratio", 0.5))
	_ = l.Close()

	records := collector.records()
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, "capacity reached", *rec.Body.StringValue)
	assert.Equal(t, int32(13), rec.SeverityNumber)
	assert.Equal(t, "WARN", rec.SeverityText)

	attrs := map[string]otlpValue{}
	for _, kv := range rec.Attributes {
		attrs[kv.Key] = kv.Value
	}
	require.Contains(t, attrs, "event_id")
	assert.Equal(t, "ev-1", *attrs["event_id"].StringValue)
	require.Contains(t, attrs, "ratio")
	assert.Equal(t, 0.5, *attrs["ratio"].DoubleValue)
	require.Contains(t, attrs, "service")
	assert.Equal(t, "juvem-test", *attrs["service"].StringValue)

	collector.mu.Lock()
	resource := collector.payloads[0].ResourceLogs[0].Resource.Attributes
	collector.mu.Unlock()
	assert.Equal(t, "service.name", resource[0].Key)
	assert.Equal(t, "juvem-test", *resource[0].Value.StringValue)
}

func TestOTLPCore_WithTrace(t *testing.T) {
	core := newOTLPCore(&Config{OTLPLogsURL: "http://127.0.0.1:0", OTLPFlushInterval: time.Hour}, zapcore.InfoLevel)
	defer func() {
		core.shared.mu.Lock()
		core.shared.records = nil
		core.shared.mu.Unlock()
		core.close()
	}()

	traced := core.With([]zapcore.Field{
		zap.String("trace_id", "abc"),
		zap.String("span_id", "def"),
		zap.Int("attempt", 2),
	})
	require.NoError(t, traced.Write(zapcore.Entry{Level: zapcore.InfoLevel, Message: "hi", Time: time.Now()}, nil))

	core.shared.mu.Lock()
	defer core.shared.mu.Unlock()
	require.Len(t, core.shared.records, 1)
	rec := core.shared.records[0]
	assert.Equal(t, "abc", rec.TraceID)
	assert.Equal(t, "def", rec.SpanID)
	require.Len(t, rec.Attributes, 1)
	assert.Equal(t, "attempt", rec.Attributes[0].Key)
	assert.Equal(t, "2", *rec.Attributes[0].Value.IntValue)
}

func TestToKeyValue(t *testing.T) {
	kv, ok := toKeyValue(zap.Bool("paid", true))
	require.True(t, ok)
	assert.True(t, *kv.Value.BoolValue)

	kv, ok = toKeyValue(zap.Duration("took", 1500*time.Millisecond))
	require.True(t, ok)
	assert.Equal(t, "1.5s", *kv.Value.StringValue)

	kv, ok = toKeyValue(zap.Error(assert.AnError))
	require.True(t, ok)
	assert.Equal(t, assert.AnError.Error(), *kv.Value.StringValue)

	_, ok = toKeyValue(zap.Skip())
	assert.False(t, ok)
}

func TestSeverity(t *testing.T) {
	assert.Equal(t, int32(5), severity(zapcore.DebugLevel))
	assert.Equal(t, int32(9), severity(zapcore.InfoLevel))
	assert.Equal(t, int32(17), severity(zapcore.ErrorLevel))
	assert.Equal(t, int32(21), severity(zapcore.FatalLevel))
}
