package observability

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// SQLiteExporterConfig configures the SQLite exporters. Spans and metrics
// land in plain tables, queryable with regular SQL. Useful for single-node
// deployments that already carry a SQLite store.
type SQLiteExporterConfig struct {
	// DB is the SQLite database connection.
	DB *sql.DB

	// SpansTable is the table name for spans (default: "command_spans").
	SpansTable string

	// MetricsTable is the table name for metrics (default: "command_metrics").
	MetricsTable string

	// RetentionDays removes data older than this (0 = keep forever).
	RetentionDays int
}

// DefaultSQLiteExporterConfig returns sensible defaults.
func DefaultSQLiteExporterConfig(db *sql.DB) *SQLiteExporterConfig {
	return &SQLiteExporterConfig{
		DB:            db,
		SpansTable:    "command_spans",
		MetricsTable:  "command_metrics",
		RetentionDays: 7,
	}
}

// SQLiteTraceExporter exports spans to SQLite. Implements
// sdktrace.SpanExporter.
type SQLiteTraceExporter struct {
	config *SQLiteExporterConfig
	mu     sync.Mutex
}

// NewSQLiteTraceExporter creates the exporter and its table.
func NewSQLiteTraceExporter(config *SQLiteExporterConfig) (*SQLiteTraceExporter, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if config.DB == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if config.SpansTable == "" {
		config.SpansTable = "command_spans"
	}

	e := &SQLiteTraceExporter{config: config}
	if err := e.createTable(); err != nil {
		return nil, fmt.Errorf("failed to create spans table: %w", err)
	}
	return e, nil
}

func (e *SQLiteTraceExporter) createTable() error {
	spansSQL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			span_id TEXT PRIMARY KEY,
			trace_id TEXT NOT NULL,
			parent_span_id TEXT,
			name TEXT NOT NULL,
			kind INTEGER NOT NULL,
			start_time INTEGER NOT NULL,
			end_time INTEGER NOT NULL,
			status_code INTEGER NOT NULL,
			status_message TEXT,
			attributes TEXT,
			events TEXT,
			resource_attributes TEXT
		)
	`, e.config.SpansTable)

	indexSQL := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS idx_%[1]s_trace_id ON %[1]s(trace_id);
		CREATE INDEX IF NOT EXISTS idx_%[1]s_start_time ON %[1]s(start_time);
		CREATE INDEX IF NOT EXISTS idx_%[1]s_name ON %[1]s(name);
	`, e.config.SpansTable)

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.config.DB.Exec(spansSQL); err != nil {
		return err
	}
	if _, err := e.config.DB.Exec(indexSQL); err != nil {
		return err
	}
	return nil
}

// ExportSpans implements sdktrace.SpanExporter.
func (e *SQLiteTraceExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	if len(spans) == 0 {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	tx, err := e.config.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
		INSERT OR REPLACE INTO %s (
			span_id, trace_id, parent_span_id, name, kind,
			start_time, end_time, status_code, status_message,
			attributes, events, resource_attributes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.config.SpansTable))
	if err != nil {
		return fmt.Errorf("prepare span statement: %w", err)
	}
	defer stmt.Close()

	for _, span := range spans {
		spanCtx := span.SpanContext()

		var parentSpanID *string
		if span.Parent().SpanID().IsValid() {
			sid := span.Parent().SpanID().String()
			parentSpanID = &sid
		}

		attrs, _ := json.Marshal(attributesToMap(span.Attributes()))
		events, _ := json.Marshal(eventsToSlice(span.Events()))
		resourceAttrs, _ := json.Marshal(attributesToMap(span.Resource().Attributes()))

		if _, err := stmt.ExecContext(ctx,
			spanCtx.SpanID().String(),
			spanCtx.TraceID().String(),
			parentSpanID,
			span.Name(),
			int(span.SpanKind()),
			span.StartTime().UnixNano(),
			span.EndTime().UnixNano(),
			int(span.Status().Code),
			span.Status().Description,
			string(attrs),
			string(events),
			string(resourceAttrs),
		); err != nil {
			return fmt.Errorf("insert span: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	if e.config.RetentionDays > 0 {
		go e.cleanup()
	}

	return nil
}

// Shutdown implements sdktrace.SpanExporter. The connection is managed
// externally.
func (e *SQLiteTraceExporter) Shutdown(ctx context.Context) error {
	return nil
}

func (e *SQLiteTraceExporter) cleanup() {
	cutoff := time.Now().Add(-time.Duration(e.config.RetentionDays) * 24 * time.Hour).UnixNano()

	e.mu.Lock()
	defer e.mu.Unlock()

	_, _ = e.config.DB.Exec(fmt.Sprintf(`
		DELETE FROM %s WHERE start_time < ?
	`, e.config.SpansTable), cutoff)
}

// SpanRecord is one exported span read back from SQLite.
type SpanRecord struct {
	SpanID        string
	TraceID       string
	ParentSpanID  string
	Name          string
	Kind          string
	StartTime     time.Time
	EndTime       time.Time
	Status        string
	StatusMessage string
	Attributes    map[string]any
}

// RecentSpans reads back the most recent spans, newest first.
func RecentSpans(db *sql.DB, spansTable string, limit int) ([]SpanRecord, error) {
	if spansTable == "" {
		spansTable = "command_spans"
	}
	rows, err := db.Query(fmt.Sprintf(`
		SELECT span_id, trace_id, parent_span_id, name, kind,
		       start_time, end_time, status_code, status_message, attributes
		FROM %s ORDER BY start_time DESC LIMIT ?
	`, spansTable), limit)
	if err != nil {
		return nil, fmt.Errorf("query spans: %w", err)
	}
	defer rows.Close()

	var records []SpanRecord
	for rows.Next() {
		var (
			rec          SpanRecord
			parent       sql.NullString
			kind         int
			start, end   int64
			statusCode   int
			attributeRaw sql.NullString
		)
		if err := rows.Scan(&rec.SpanID, &rec.TraceID, &parent, &rec.Name, &kind,
			&start, &end, &statusCode, &rec.StatusMessage, &attributeRaw); err != nil {
			return nil, fmt.Errorf("scan span: %w", err)
		}
		rec.ParentSpanID = parent.String
		rec.Kind = spanKindToString(trace.SpanKind(kind))
		rec.StartTime = time.Unix(0, start)
		rec.EndTime = time.Unix(0, end)
		rec.Status = statusCodeToString(codes.Code(statusCode))
		if attributeRaw.Valid && attributeRaw.String != "" {
			_ = json.Unmarshal([]byte(attributeRaw.String), &rec.Attributes)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SQLiteMetricExporter exports metrics to SQLite. Implements
// sdkmetric.Exporter.
type SQLiteMetricExporter struct {
	config *SQLiteExporterConfig
	mu     sync.Mutex
}

// NewSQLiteMetricExporter creates the exporter and its table.
func NewSQLiteMetricExporter(config *SQLiteExporterConfig) (*SQLiteMetricExporter, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if config.DB == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if config.MetricsTable == "" {
		config.MetricsTable = "command_metrics"
	}

	e := &SQLiteMetricExporter{config: config}
	if err := e.createTable(); err != nil {
		return nil, fmt.Errorf("failed to create metrics table: %w", err)
	}
	return e, nil
}

func (e *SQLiteMetricExporter) createTable() error {
	metricsSQL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			description TEXT,
			unit TEXT,
			type TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			value REAL,
			count INTEGER,
			sum REAL,
			min REAL,
			max REAL,
			attributes TEXT,
			resource_attributes TEXT
		)
	`, e.config.MetricsTable)

	indexSQL := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS idx_%[1]s_name ON %[1]s(name);
		CREATE INDEX IF NOT EXISTS idx_%[1]s_timestamp ON %[1]s(timestamp);
	`, e.config.MetricsTable)

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.config.DB.Exec(metricsSQL); err != nil {
		return err
	}
	if _, err := e.config.DB.Exec(indexSQL); err != nil {
		return err
	}
	return nil
}

// Export implements sdkmetric.Exporter.
func (e *SQLiteMetricExporter) Export(ctx context.Context, rm *metricdata.ResourceMetrics) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	tx, err := e.config.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (
			name, description, unit, type, timestamp,
			value, count, sum, min, max, attributes, resource_attributes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.config.MetricsTable))
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	resourceAttrs, _ := json.Marshal(attributesToMap(rm.Resource.Attributes()))
	timestamp := time.Now().Unix()

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if err := e.exportMetric(ctx, stmt, m, string(resourceAttrs), timestamp); err != nil {
				return fmt.Errorf("export metric %s: %w", m.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	if e.config.RetentionDays > 0 {
		go e.cleanupMetrics()
	}

	return nil
}

func (e *SQLiteMetricExporter) exportMetric(ctx context.Context, stmt *sql.Stmt, m metricdata.Metrics, resourceAttrs string, timestamp int64) error {
	switch data := m.Data.(type) {
	case metricdata.Gauge[int64]:
		for _, dp := range data.DataPoints {
			attrs, _ := json.Marshal(attributeSetToMap(dp.Attributes))
			if _, err := stmt.ExecContext(ctx,
				m.Name, m.Description, m.Unit, "gauge", timestamp,
				float64(dp.Value), nil, nil, nil, nil, string(attrs), resourceAttrs,
			); err != nil {
				return err
			}
		}
	case metricdata.Gauge[float64]:
		for _, dp := range data.DataPoints {
			attrs, _ := json.Marshal(attributeSetToMap(dp.Attributes))
			if _, err := stmt.ExecContext(ctx,
				m.Name, m.Description, m.Unit, "gauge", timestamp,
				dp.Value, nil, nil, nil, nil, string(attrs), resourceAttrs,
			); err != nil {
				return err
			}
		}
	case metricdata.Sum[int64]:
		for _, dp := range data.DataPoints {
			attrs, _ := json.Marshal(attributeSetToMap(dp.Attributes))
			if _, err := stmt.ExecContext(ctx,
				m.Name, m.Description, m.Unit, "sum", timestamp,
				float64(dp.Value), nil, nil, nil, nil, string(attrs), resourceAttrs,
			); err != nil {
				return err
			}
		}
	case metricdata.Sum[float64]:
		for _, dp := range data.DataPoints {
			attrs, _ := json.Marshal(attributeSetToMap(dp.Attributes))
			if _, err := stmt.ExecContext(ctx,
				m.Name, m.Description, m.Unit, "sum", timestamp,
				dp.Value, nil, nil, nil, nil, string(attrs), resourceAttrs,
			); err != nil {
				return err
			}
		}
	case metricdata.Histogram[int64]:
		for _, dp := range data.DataPoints {
			attrs, _ := json.Marshal(attributeSetToMap(dp.Attributes))
			var minVal, maxVal *float64
			if minV, ok := dp.Min.Value(); ok {
				v := float64(minV)
				minVal = &v
			}
			if maxV, ok := dp.Max.Value(); ok {
				v := float64(maxV)
				maxVal = &v
			}
			if _, err := stmt.ExecContext(ctx,
				m.Name, m.Description, m.Unit, "histogram", timestamp,
				nil, dp.Count, float64(dp.Sum), minVal, maxVal, string(attrs), resourceAttrs,
			); err != nil {
				return err
			}
		}
	case metricdata.Histogram[float64]:
		for _, dp := range data.DataPoints {
			attrs, _ := json.Marshal(attributeSetToMap(dp.Attributes))
			var minVal, maxVal *float64
			if minV, ok := dp.Min.Value(); ok {
				minVal = &minV
			}
			if maxV, ok := dp.Max.Value(); ok {
				maxVal = &maxV
			}
			if _, err := stmt.ExecContext(ctx,
				m.Name, m.Description, m.Unit, "histogram", timestamp,
				nil, dp.Count, dp.Sum, minVal, maxVal, string(attrs), resourceAttrs,
			); err != nil {
				return err
			}
		}
	}
	return nil
}

// Temporality implements sdkmetric.Exporter.
func (e *SQLiteMetricExporter) Temporality(kind sdkmetric.InstrumentKind) metricdata.Temporality {
	return metricdata.CumulativeTemporality
}

// Aggregation implements sdkmetric.Exporter.
func (e *SQLiteMetricExporter) Aggregation(kind sdkmetric.InstrumentKind) sdkmetric.Aggregation {
	return sdkmetric.DefaultAggregationSelector(kind)
}

// ForceFlush implements sdkmetric.Exporter.
func (e *SQLiteMetricExporter) ForceFlush(ctx context.Context) error {
	return nil
}

// Shutdown implements sdkmetric.Exporter.
func (e *SQLiteMetricExporter) Shutdown(ctx context.Context) error {
	return nil
}

func (e *SQLiteMetricExporter) cleanupMetrics() {
	cutoff := time.Now().Add(-time.Duration(e.config.RetentionDays) * 24 * time.Hour).Unix()

	e.mu.Lock()
	defer e.mu.Unlock()

	_, _ = e.config.DB.Exec(fmt.Sprintf(`
		DELETE FROM %s WHERE timestamp < ?
	`, e.config.MetricsTable), cutoff)
}

func attributesToMap(attrs []attribute.KeyValue) map[string]any {
	m := make(map[string]any, len(attrs))
	for _, attr := range attrs {
		m[string(attr.Key)] = attr.Value.AsInterface()
	}
	return m
}

func attributeSetToMap(attrs attribute.Set) map[string]any {
	m := make(map[string]any)
	iter := attrs.Iter()
	for iter.Next() {
		kv := iter.Attribute()
		m[string(kv.Key)] = kv.Value.AsInterface()
	}
	return m
}

func eventsToSlice(events []sdktrace.Event) []map[string]any {
	result := make([]map[string]any, len(events))
	for i, event := range events {
		result[i] = map[string]any{
			"name":       event.Name,
			"timestamp":  event.Time.UnixNano(),
			"attributes": attributesToMap(event.Attributes),
		}
	}
	return result
}

func statusCodeToString(code codes.Code) string {
	switch code {
	case codes.Ok:
		return "OK"
	case codes.Error:
		return "ERROR"
	default:
		return "UNSET"
	}
}

func spanKindToString(kind trace.SpanKind) string {
	switch kind {
	case trace.SpanKindInternal:
		return "INTERNAL"
	case trace.SpanKindServer:
		return "SERVER"
	case trace.SpanKindClient:
		return "CLIENT"
	case trace.SpanKindProducer:
		return "PRODUCER"
	case trace.SpanKindConsumer:
		return "CONSUMER"
	default:
		return "UNSPECIFIED"
	}
}
