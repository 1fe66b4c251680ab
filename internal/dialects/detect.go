package dialects

import (
	"context"
	"database/sql"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/coregx/sqlforge/internal/errs"
	"github.com/coregx/sqlforge/internal/logger"
	"github.com/coregx/sqlforge/internal/tracer"
)

// VersionQuerier is the subset of *sql.DB needed to probe a server version.
type VersionQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// family describes how a driver name maps to a dialect and how to ask the
// server for its version.
type family struct {
	name         string
	versionQuery string
}

var families = map[string]family{
	"postgres":   {"postgres", "SHOW server_version"},
	"postgresql": {"postgres", "SHOW server_version"},
	"pgx":        {"postgres", "SHOW server_version"},
	"mysql":      {"mysql", "SELECT VERSION()"},
	"sqlite":     {"sqlite", "SELECT sqlite_version()"},
	"sqlite3":    {"sqlite", "SELECT sqlite_version()"},
	"sqlserver":  {"sqlserver", "SELECT CAST(SERVERPROPERTY('ProductVersion') AS VARCHAR(128))"},
	"mssql":      {"sqlserver", "SELECT CAST(SERVERPROPERTY('ProductVersion') AS VARCHAR(128))"},
}

// detector carries the observability hooks used during detection.
type detector struct {
	log   logger.Logger
	trace tracer.Tracer
}

// DetectOption configures dialect detection.
type DetectOption func(*detector)

// WithLogger sets the logger used during detection.
func WithLogger(l logger.Logger) DetectOption {
	return func(d *detector) { d.log = l }
}

// WithTracer sets the tracer used during detection.
func WithTracer(t tracer.Tracer) DetectOption {
	return func(d *detector) { d.trace = t }
}

// Detect resolves the dialect for driverName, probing the server version over
// db. A failed probe is not fatal: the dialect's default version is assumed.
// A nil db skips the probe entirely.
func Detect(ctx context.Context, db VersionQuerier, driverName string, opts ...DetectOption) (Dialect, error) {
	det := &detector{
		log:   &logger.NoopLogger{},
		trace: &tracer.NoopTracer{},
	}
	for _, opt := range opts {
		opt(det)
	}

	fam, ok := families[driverName]
	if !ok {
		return nil, errs.UnknownDialectf(driverName)
	}
	if db == nil {
		return New(fam.name, 0)
	}

	ctx, span := det.trace.StartSpan(ctx, "sqlforge.dialect.detect")
	defer span.End()
	span.SetAttributes(attribute.String("db.system", fam.name))

	major := 0
	var raw string
	if err := db.QueryRowContext(ctx, fam.versionQuery).Scan(&raw); err != nil {
		det.log.Warn("version probe failed, assuming default version",
			"dialect", fam.name,
			"error", err)
		span.RecordError(err)
	} else {
		major = parseMajor(raw)
		span.SetAttributes(attribute.String("db.version", raw))
	}

	d, err := New(fam.name, major)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("db.version.major", d.Version()))
	span.SetStatus(codes.Ok, "")
	det.log.Debug("dialect detected",
		"dialect", d.Name(),
		"version", d.Version())
	return d, nil
}

// parseMajor extracts the leading integer of a server version string, e.g.
// "16.2 (Debian 16.2-1)" or "8.0.36" or "10.11.2-MariaDB". Returns 0 when the
// string does not start with digits.
func parseMajor(version string) int {
	major := 0
	seen := false
	for _, r := range version {
		if r < '0' || r > '9' {
			break
		}
		major = major*10 + int(r-'0')
		seen = true
	}
	if !seen {
		return 0
	}
	return major
}
