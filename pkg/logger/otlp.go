package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"os"
	"sync"
	"time"

	"go.uber.org/zap/zapcore"
)

// otlpRecord is one log record of the OTLP/HTTP JSON encoding
type otlpRecord struct {
	TimeUnixNano         string         `json:"timeUnixNano"`
	ObservedTimeUnixNano string         `json:"observedTimeUnixNano"`
	SeverityNumber       int32          `json:"severityNumber"`
	SeverityText         string         `json:"severityText"`
	Body                 otlpValue      `json:"body"`
	Attributes           []otlpKeyValue `json:"attributes,omitempty"`
	TraceID              string         `json:"traceId,omitempty"`
	SpanID               string         `json:"spanId,omitempty"`
}

type otlpKeyValue struct {
	Key   string    `json:"key"`
	Value otlpValue `json:"value"`
}

type otlpValue struct {
	StringValue *string  `json:"stringValue,omitempty"`
	IntValue    *string  `json:"intValue,omitempty"`
	DoubleValue *float64 `json:"doubleValue,omitempty"`
	BoolValue   *bool    `json:"boolValue,omitempty"`
}

type otlpPayload struct {
	ResourceLogs []otlpResourceLogs `json:"resourceLogs"`
}

type otlpResourceLogs struct {
	Resource struct {
		Attributes []otlpKeyValue `json:"attributes"`
	} `json:"resource"`
	ScopeLogs []otlpScopeLogs `json:"scopeLogs"`
}

type otlpScopeLogs struct {
	Scope struct {
		Name string `json:"name"`
	} `json:"scope"`
	LogRecords []otlpRecord `json:"logRecords"`
}

func stringValue(s string) otlpValue { return otlpValue{StringValue: &s} }

// otlpCore is a zapcore.Core that batches entries and posts them to an
// OTLP/HTTP logs endpoint. Export failures never block logging.
type otlpCore struct {
	zapcore.LevelEnabler
	url         string
	serviceName string
	client      *http.Client
	fields      []otlpKeyValue
	trace       [2]string // trace_id, span_id bound via With

	shared *otlpBuffer
}

type otlpBuffer struct {
	mu        sync.Mutex
	records   []otlpRecord
	batchSize int
	stop      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

func newOTLPCore(cfg *Config, level zapcore.LevelEnabler) *otlpCore {
	batchSize := cfg.OTLPBatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	interval := cfg.OTLPFlushInterval
	if interval <= 0 {
		interval = time.Second
	}

	c := &otlpCore{
		LevelEnabler: level,
		url:          cfg.OTLPLogsURL,
		serviceName:  cfg.ServiceName,
		client:       &http.Client{Timeout: 5 * time.Second},
		shared: &otlpBuffer{
			records:   make([]otlpRecord, 0, batchSize),
			batchSize: batchSize,
			stop:      make(chan struct{}),
		},
	}
	c.shared.wg.Add(1)
	go c.flushLoop(interval)
	return c
}

func (c *otlpCore) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	clone.fields = append(make([]otlpKeyValue, 0, len(c.fields)+len(fields)), c.fields...)
	for _, f := range fields {
		switch f.Key {
		case "trace_id":
			clone.trace[0] = f.String
		case "span_id":
			clone.trace[1] = f.String
		default:
			if kv, ok := toKeyValue(f); ok {
				clone.fields = append(clone.fields, kv)
			}
		}
	}
	return &clone
}

func (c *otlpCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *otlpCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	record := otlpRecord{
		TimeUnixNano:         fmt.Sprint(ent.Time.UnixNano()),
		ObservedTimeUnixNano: fmt.Sprint(time.Now().UnixNano()),
		SeverityNumber:       severity(ent.Level),
		SeverityText:         ent.Level.CapitalString(),
		Body:                 stringValue(ent.Message),
		TraceID:              c.trace[0],
		SpanID:               c.trace[1],
	}

	attrs := append(make([]otlpKeyValue, 0, len(c.fields)+len(fields)+1), c.fields...)
	if ent.Caller.Defined {
		attrs = append(attrs, otlpKeyValue{Key: "code.caller", Value: stringValue(ent.Caller.TrimmedPath())})
	}
	for _, f := range fields {
		switch f.Key {
		case "trace_id":
			record.TraceID = f.String
		case "span_id":
			record.SpanID = f.String
		default:
			if kv, ok := toKeyValue(f); ok {
				attrs = append(attrs, kv)
			}
		}
	}
	record.Attributes = attrs

	b := c.shared
	b.mu.Lock()
	b.records = append(b.records, record)
	full := len(b.records) >= b.batchSize
	b.mu.Unlock()

	if full {
		go c.flush()
	}
	return nil
}

func (c *otlpCore) Sync() error {
	c.flush()
	return nil
}

// close stops the flush loop and sends what is left
func (c *otlpCore) close() {
	c.shared.stopOnce.Do(func() {
		close(c.shared.stop)
		c.shared.wg.Wait()
		c.flush()
	})
}

func (c *otlpCore) flushLoop(interval time.Duration) {
	defer c.shared.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.flush()
		case <-c.shared.stop:
			return
		}
	}
}

func (c *otlpCore) flush() {
	b := c.shared
	b.mu.Lock()
	if len(b.records) == 0 {
		b.mu.Unlock()
		return
	}
	records := b.records
	b.records = make([]otlpRecord, 0, b.batchSize)
	b.mu.Unlock()

	var rl otlpResourceLogs
	rl.Resource.Attributes = []otlpKeyValue{
		{Key: "service.name", Value: stringValue(c.serviceName)},
		{Key: "service.namespace", Value: stringValue("juvem")},
	}
	scope := otlpScopeLogs{LogRecords: records}
	scope.Scope.Name = "go.uber.org/zap"
	rl.ScopeLogs = []otlpScopeLogs{scope}

	data, err := json.Marshal(otlpPayload{ResourceLogs: []otlpResourceLogs{rl}})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: encode otlp payload: %v\n", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(data))
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: build otlp request: %v\n", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		fmt.Fprintf(os.Stderr, "logger: otlp export failed with status %d\n", resp.StatusCode)
	}
}

// severity maps zap levels onto OTLP severity numbers
func severity(level zapcore.Level) int32 {
	switch level {
	case zapcore.DebugLevel:
		return 5
	case zapcore.InfoLevel:
		return 9
	case zapcore.WarnLevel:
		return 13
	case zapcore.ErrorLevel:
		return 17
	case zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return 21
	default:
		return 0
	}
}

func toKeyValue(f zapcore.Field) (otlpKeyValue, bool) {
	kv := otlpKeyValue{Key: f.Key}
	switch f.Type {
	case zapcore.StringType:
		kv.Value = stringValue(f.String)
	case zapcore.Int64Type, zapcore.Int32Type, zapcore.Int16Type, zapcore.Int8Type,
		zapcore.Uint64Type, zapcore.Uint32Type, zapcore.Uint16Type, zapcore.Uint8Type:
		s := fmt.Sprint(f.Integer)
		kv.Value = otlpValue{IntValue: &s}
	case zapcore.Float64Type:
		v := math.Float64frombits(uint64(f.Integer))
		kv.Value = otlpValue{DoubleValue: &v}
	case zapcore.Float32Type:
		v := float64(math.Float32frombits(uint32(f.Integer)))
		kv.Value = otlpValue{DoubleValue: &v}
	case zapcore.BoolType:
		v := f.Integer == 1
		kv.Value = otlpValue{BoolValue: &v}
	case zapcore.DurationType:
		kv.Value = stringValue(time.Duration(f.Integer).String())
	case zapcore.TimeType:
		kv.Value = stringValue(time.Unix(0, f.Integer).UTC().Format(time.RFC3339Nano))
	case zapcore.ErrorType:
		err, ok := f.Interface.(error)
		if !ok {
			return kv, false
		}
		kv.Value = stringValue(err.Error())
	case zapcore.StringerType:
		s, ok := f.Interface.(fmt.Stringer)
		if !ok {
			return kv, false
		}
		kv.Value = stringValue(s.String())
	default:
		if f.Interface == nil {
			return kv, false
		}
		data, err := json.Marshal(f.Interface)
		if err != nil {
			return kv, false
		}
		kv.Value = stringValue(string(data))
	}
	return kv, true
}
