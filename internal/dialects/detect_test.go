package dialects

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	_ "modernc.org/sqlite"

	"github.com/coregx/sqlforge/internal/errs"
	"github.com/coregx/sqlforge/internal/tracer"
)

type logEntry struct {
	msg  string
	args []any
}

type recordingLog struct {
	entries []logEntry
}

func (l *recordingLog) Debug(msg string, args ...any) { l.record(msg, args) }
func (l *recordingLog) Info(msg string, args ...any)  { l.record(msg, args) }
func (l *recordingLog) Warn(msg string, args ...any)  { l.record(msg, args) }
func (l *recordingLog) Error(msg string, args ...any) { l.record(msg, args) }

func (l *recordingLog) record(msg string, args []any) {
	l.entries = append(l.entries, logEntry{msg: msg, args: args})
}

func (l *recordingLog) find(msg string) *logEntry {
	for i := range l.entries {
		if l.entries[i].msg == msg {
			return &l.entries[i]
		}
	}
	return nil
}

type recordingSpan struct {
	attrs    []attribute.KeyValue
	recorded []error
	status   codes.Code
	ended    bool
}

func (s *recordingSpan) SetAttributes(attrs ...attribute.KeyValue) {
	s.attrs = append(s.attrs, attrs...)
}
func (s *recordingSpan) RecordError(err error) { s.recorded = append(s.recorded, err) }

func (s *recordingSpan) SetStatus(c codes.Code, _ string) { s.status = c }

func (s *recordingSpan) End() { s.ended = true }

type recordingTracer struct {
	names []string
	spans []*recordingSpan
}

func (t *recordingTracer) StartSpan(ctx context.Context, name string) (context.Context, tracer.Span) {
	span := &recordingSpan{}
	t.names = append(t.names, name)
	t.spans = append(t.spans, span)
	return ctx, span
}

func attrValue(attrs []attribute.KeyValue, key string) (interface{}, bool) {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value.AsInterface(), true
		}
	}
	return nil, false
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name            string
		driver          string
		versionQuery    string
		versionRow      string
		expectedName    string
		expectedVersion int
	}{
		{
			name:            "postgres",
			driver:          "postgres",
			versionQuery:    "SHOW server_version",
			versionRow:      "16.2 (Debian 16.2-1.pgdg120+2)",
			expectedName:    "postgres",
			expectedVersion: 16,
		},
		{
			name:            "pgx alias",
			driver:          "pgx",
			versionQuery:    "SHOW server_version",
			versionRow:      "14.11",
			expectedName:    "postgres",
			expectedVersion: 14,
		},
		{
			name:            "mysql",
			driver:          "mysql",
			versionQuery:    "SELECT VERSION()",
			versionRow:      "8.0.36",
			expectedName:    "mysql",
			expectedVersion: 8,
		},
		{
			name:            "mariadb reports through mysql driver",
			driver:          "mysql",
			versionQuery:    "SELECT VERSION()",
			versionRow:      "10.11.2-MariaDB",
			expectedName:    "mysql",
			expectedVersion: 10,
		},
		{
			name:            "sqlserver",
			driver:          "sqlserver",
			versionQuery:    "SELECT CAST(SERVERPROPERTY('ProductVersion') AS VARCHAR(128))",
			versionRow:      "15.00.2000.5",
			expectedName:    "sqlserver",
			expectedVersion: 15,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectQuery(regexp.QuoteMeta(tt.versionQuery)).
				WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(tt.versionRow))

			d, err := Detect(context.Background(), db, tt.driver)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedName, d.Name())
			assert.Equal(t, tt.expectedVersion, d.Version())
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// Version gates must follow the probed version, not the default.
func TestDetect_VersionGatesFollowProbe(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT CAST(SERVERPROPERTY('ProductVersion') AS VARCHAR(128))")).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("15.00.2000.5"))

	d, err := Detect(context.Background(), db, "sqlserver")
	require.NoError(t, err)
	assert.True(t, d.SupportsGroupByAll())
}

func TestDetect_ProbeFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SHOW server_version")).
		WillReturnError(errors.New("connection reset"))

	log := &recordingLog{}
	d, err := Detect(context.Background(), db, "postgres", WithLogger(log))
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())
	assert.Equal(t, DefaultPostgresVersion, d.Version())

	warn := log.find("version probe failed, assuming default version")
	require.NotNil(t, warn)
	assert.Contains(t, warn.args, "dialect")
	assert.Contains(t, warn.args, "postgres")
}

func TestDetect_UnknownDriver(t *testing.T) {
	_, err := Detect(context.Background(), nil, "oracle")
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrUnknownDialect)
}

func TestDetect_NilDBSkipsProbe(t *testing.T) {
	trace := &recordingTracer{}
	d, err := Detect(context.Background(), nil, "mysql", WithTracer(trace))
	require.NoError(t, err)
	assert.Equal(t, "mysql", d.Name())
	assert.Equal(t, DefaultMySQLVersion, d.Version())
	assert.Empty(t, trace.names)
}

func TestDetect_RecordsSpan(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT VERSION()")).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("8.0.36"))

	trace := &recordingTracer{}
	_, err = Detect(context.Background(), db, "mysql", WithTracer(trace))
	require.NoError(t, err)

	require.Equal(t, []string{"sqlforge.dialect.detect"}, trace.names)
	span := trace.spans[0]
	assert.True(t, span.ended)
	assert.Equal(t, codes.Ok, span.status)
	assert.Empty(t, span.recorded)

	system, ok := attrValue(span.attrs, "db.system")
	require.True(t, ok)
	assert.Equal(t, "mysql", system)

	raw, ok := attrValue(span.attrs, "db.version")
	require.True(t, ok)
	assert.Equal(t, "8.0.36", raw)

	major, ok := attrValue(span.attrs, "db.version.major")
	require.True(t, ok)
	assert.Equal(t, int64(8), major)
}

// Runs the real probe against an in-memory SQLite database (pure Go, no Docker).
func TestDetect_SQLiteInMemory(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	d, err := Detect(context.Background(), db, "sqlite")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())
	assert.Equal(t, 3, d.Version())
}
