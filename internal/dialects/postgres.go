package dialects

import (
	"fmt"
	"strings"
)

// DefaultPostgresVersion is the major version assumed when detection is
// skipped or the version probe fails.
const DefaultPostgresVersion = 16

// PostgresDialect implements PostgreSQL-specific SQL generation.
type PostgresDialect struct {
	major int
}

func init() {
	RegisterDialect("postgres", NewPostgres)
	RegisterDialect("postgresql", NewPostgres)
	RegisterDialect("pgx", NewPostgres)
}

// NewPostgres returns the PostgreSQL dialect targeting the given major version.
func NewPostgres(major int) Dialect {
	if major <= 0 {
		major = DefaultPostgresVersion
	}
	return &PostgresDialect{major: major}
}

// Name returns "postgres".
func (d *PostgresDialect) Name() string { return "postgres" }

// Version returns the targeted major version.
func (d *PostgresDialect) Version() int { return d.major }

// QuoteIdentifier quotes a PostgreSQL identifier using double quotes.
func (d *PostgresDialect) QuoteIdentifier(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Placeholder returns PostgreSQL placeholder format ($1, $2, etc.).
func (d *PostgresDialect) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index)
}

// LimitOffset renders LIMIT/OFFSET. PostgreSQL accepts a bare OFFSET, so an
// offset without a limit needs no sentinel limit value.
func (d *PostgresDialect) LimitOffset(limit, offset int64) string {
	switch {
	case limit >= 0 && offset > 0:
		return fmt.Sprintf("LIMIT %d OFFSET %d", limit, offset)
	case limit >= 0:
		return fmt.Sprintf("LIMIT %d", limit)
	case offset > 0:
		return fmt.Sprintf("OFFSET %d", offset)
	default:
		return ""
	}
}

// UUIDExpr returns gen_random_uuid(), available without extensions since
// PostgreSQL 13.
func (d *PostgresDialect) UUIDExpr() (string, error) {
	if d.major < 13 {
		return "", unsupportedVersionf(d, "gen_random_uuid()", 13)
	}
	return "gen_random_uuid()", nil
}

// SequenceNextExpr returns nextval for the named sequence.
func (d *PostgresDialect) SequenceNextExpr(name string) (string, error) {
	return fmt.Sprintf("nextval(%s)", quoteStringLiteral(name)), nil
}

// RegexpOp returns the ~ operator.
func (d *PostgresDialect) RegexpOp() (string, error) {
	return "~", nil
}

// SupportsGroupByAll reports false; PostgreSQL has no GROUP BY ALL.
func (d *PostgresDialect) SupportsGroupByAll() bool { return false }

// SupportsCTEMaterialization reports whether MATERIALIZED hints are accepted
// (PostgreSQL 12 and later).
func (d *PostgresDialect) SupportsCTEMaterialization() bool { return d.major >= 12 }

// SupportsUpsert reports true; PostgreSQL supports ON CONFLICT.
func (d *PostgresDialect) SupportsUpsert() bool { return true }

// UpsertSQL generates PostgreSQL UPSERT syntax using ON CONFLICT.
func (d *PostgresDialect) UpsertSQL(_ string, conflictColumns, updateCols []string) string {
	if updateCols == nil {
		// DO NOTHING case
		if len(conflictColumns) > 0 {
			return fmt.Sprintf(" ON CONFLICT (%s) DO NOTHING", strings.Join(conflictColumns, ", "))
		}
		return " ON CONFLICT DO NOTHING"
	}

	// DO UPDATE case
	return fmt.Sprintf(" ON CONFLICT (%s) DO UPDATE SET %s",
		strings.Join(conflictColumns, ", "),
		buildUpdateSet(updateCols),
	)
}

// buildUpdateSet builds the SET clause for UPDATE.
func buildUpdateSet(cols []string) string {
	parts := make([]string, len(cols))
	for i, col := range cols {
		parts[i] = fmt.Sprintf("%s = EXCLUDED.%s", col, col)
	}
	return strings.Join(parts, ", ")
}

// FormatPath renders the text[] path literal body: {a,b,0}.
func (d *PostgresDialect) FormatPath(path Path) (string, error) {
	if err := validatePath(path, true); err != nil {
		return "", err
	}
	return bracesPath(path), nil
}

// CastExpr casts with the :: operator; both json and jsonb are valid targets.
func (d *PostgresDialect) CastExpr(expr string, typ JSONType) (string, error) {
	return expr + "::" + typ.String(), nil
}

// MergeExpr concatenates a bound document with the || operator. The operator
// is defined for jsonb only.
func (d *PostgresDialect) MergeExpr(col string, typ JSONType) (string, error) {
	if err := d.jsonbOnly(typ, "|| merge"); err != nil {
		return "", err
	}
	return col + " || ?::jsonb", nil
}

// SetPathExpr sets the value at path using jsonb_set.
func (d *PostgresDialect) SetPathExpr(col string, typ JSONType, path Path) (string, error) {
	if err := d.jsonbOnly(typ, "jsonb_set"); err != nil {
		return "", err
	}
	p, err := d.FormatPath(path)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("jsonb_set(%s, %s, ?::jsonb)", col, quoteStringLiteral(p)), nil
}

// RemoveKeyExpr removes a top-level key with the - operator.
func (d *PostgresDialect) RemoveKeyExpr(col string, typ JSONType, key string) (string, error) {
	if err := d.jsonbOnly(typ, "- key removal"); err != nil {
		return "", err
	}
	if key == "" {
		return "", errInvalidJSONKey()
	}
	return col + " - " + quoteStringLiteral(key), nil
}

// RemovePathExpr removes the value at path with the #- operator.
func (d *PostgresDialect) RemovePathExpr(col string, typ JSONType, path Path) (string, error) {
	if err := d.jsonbOnly(typ, "#- path removal"); err != nil {
		return "", err
	}
	p, err := d.FormatPath(path)
	if err != nil {
		return "", err
	}
	return col + " #- " + quoteStringLiteral(p), nil
}

// ArrayAppendExpr inserts a bound value after the last element of the array
// at path using jsonb_insert.
func (d *PostgresDialect) ArrayAppendExpr(col string, typ JSONType, path Path) (string, error) {
	if err := d.jsonbOnly(typ, "jsonb_insert"); err != nil {
		return "", err
	}
	p, err := d.FormatPath(append(append(Path{}, path...), -1))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("jsonb_insert(%s, %s, ?::jsonb, true)", col, quoteStringLiteral(p)), nil
}

// ArrayPrependExpr inserts a bound value before the first element of the
// array at path using jsonb_insert.
func (d *PostgresDialect) ArrayPrependExpr(col string, typ JSONType, path Path) (string, error) {
	if err := d.jsonbOnly(typ, "jsonb_insert"); err != nil {
		return "", err
	}
	p, err := d.FormatPath(append(append(Path{}, path...), 0))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("jsonb_insert(%s, %s, ?::jsonb)", col, quoteStringLiteral(p)), nil
}

// StripNullsExpr removes null object fields. PostgreSQL ships both the json
// and jsonb variants of strip_nulls.
func (d *PostgresDialect) StripNullsExpr(col string, typ JSONType) (string, error) {
	if typ == JSONB {
		return fmt.Sprintf("jsonb_strip_nulls(%s)", col), nil
	}
	return fmt.Sprintf("json_strip_nulls(%s)", col), nil
}

// jsonbOnly rejects operator-backed JSON constructs on the plain json type;
// PostgreSQL defines them for jsonb only.
func (d *PostgresDialect) jsonbOnly(typ JSONType, construct string) error {
	if typ != JSONB {
		return unsupportedJSONTypef(d, construct, typ)
	}
	return nil
}
