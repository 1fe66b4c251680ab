package dialects

import (
	"fmt"
	"strings"
)

// DefaultSQLiteVersion is the major version assumed when detection is skipped
// or the version probe fails.
const DefaultSQLiteVersion = 3

// SQLiteDialect implements SQLite-specific SQL generation.
type SQLiteDialect struct {
	major int
}

func init() {
	RegisterDialect("sqlite", NewSQLite)
	RegisterDialect("sqlite3", NewSQLite)
}

// NewSQLite returns the SQLite dialect targeting the given major version.
func NewSQLite(major int) Dialect {
	if major <= 0 {
		major = DefaultSQLiteVersion
	}
	return &SQLiteDialect{major: major}
}

// Name returns "sqlite".
func (d *SQLiteDialect) Name() string { return "sqlite" }

// Version returns the targeted major version.
func (d *SQLiteDialect) Version() int { return d.major }

// QuoteIdentifier quotes a SQLite identifier using double quotes.
func (d *SQLiteDialect) QuoteIdentifier(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Placeholder returns SQLite placeholder format (always "?").
func (d *SQLiteDialect) Placeholder(_ int) string {
	return "?"
}

// LimitOffset renders LIMIT/OFFSET. SQLite requires a LIMIT before OFFSET;
// LIMIT -1 is the documented "no limit" spelling.
func (d *SQLiteDialect) LimitOffset(limit, offset int64) string {
	switch {
	case limit >= 0 && offset > 0:
		return fmt.Sprintf("LIMIT %d OFFSET %d", limit, offset)
	case limit >= 0:
		return fmt.Sprintf("LIMIT %d", limit)
	case offset > 0:
		return fmt.Sprintf("LIMIT -1 OFFSET %d", offset)
	default:
		return ""
	}
}

// UUIDExpr returns an error; SQLite ships no UUID generator.
func (d *SQLiteDialect) UUIDExpr() (string, error) {
	return "", unsupportedConstructf(d, "UUID generation")
}

// SequenceNextExpr returns an error; SQLite has no sequence objects.
func (d *SQLiteDialect) SequenceNextExpr(string) (string, error) {
	return "", unsupportedConstructf(d, "sequences")
}

// RegexpOp returns the REGEXP operator. SQLite parses it natively; executing
// the statement requires a regexp() application-defined function.
func (d *SQLiteDialect) RegexpOp() (string, error) {
	return "REGEXP", nil
}

// SupportsGroupByAll reports false; SQLite has no GROUP BY ALL.
func (d *SQLiteDialect) SupportsGroupByAll() bool { return false }

// SupportsCTEMaterialization reports true; SQLite accepts MATERIALIZED hints
// on common table expressions.
func (d *SQLiteDialect) SupportsCTEMaterialization() bool { return true }

// SupportsUpsert reports true; SQLite supports ON CONFLICT.
func (d *SQLiteDialect) SupportsUpsert() bool { return true }

// UpsertSQL generates SQLite UPSERT syntax using ON CONFLICT.
func (d *SQLiteDialect) UpsertSQL(_ string, conflictColumns, updateCols []string) string {
	if updateCols == nil {
		// DO NOTHING case
		if len(conflictColumns) > 0 {
			return fmt.Sprintf(" ON CONFLICT (%s) DO NOTHING", strings.Join(conflictColumns, ", "))
		}
		return " ON CONFLICT DO NOTHING"
	}

	// DO UPDATE case
	updates := make([]string, len(updateCols))
	for i, col := range updateCols {
		updates[i] = fmt.Sprintf("%s = excluded.%s", col, col)
	}

	return fmt.Sprintf(" ON CONFLICT (%s) DO UPDATE SET %s",
		strings.Join(conflictColumns, ", "),
		strings.Join(updates, ", "))
}

// FormatPath renders the $.a.b[0] path syntax.
func (d *SQLiteDialect) FormatPath(path Path) (string, error) {
	if err := validatePath(path, false); err != nil {
		return "", err
	}
	return dollarPath(path), nil
}

// CastExpr normalizes an expression through the json() function; SQLite has
// no JSON column type to cast to.
func (d *SQLiteDialect) CastExpr(expr string, typ JSONType) (string, error) {
	if err := d.jsonOnly(typ, "json()"); err != nil {
		return "", err
	}
	return fmt.Sprintf("json(%s)", expr), nil
}

// MergeExpr merges a bound document using json_patch (RFC 7396 semantics).
func (d *SQLiteDialect) MergeExpr(col string, typ JSONType) (string, error) {
	if err := d.jsonOnly(typ, "json_patch"); err != nil {
		return "", err
	}
	return fmt.Sprintf("json_patch(%s, ?)", col), nil
}

// SetPathExpr sets the value at path using json_set.
func (d *SQLiteDialect) SetPathExpr(col string, typ JSONType, path Path) (string, error) {
	if err := d.jsonOnly(typ, "json_set"); err != nil {
		return "", err
	}
	p, err := d.FormatPath(path)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("json_set(%s, %s, ?)", col, quoteStringLiteral(p)), nil
}

// RemoveKeyExpr removes a top-level key using json_remove.
func (d *SQLiteDialect) RemoveKeyExpr(col string, typ JSONType, key string) (string, error) {
	if err := d.jsonOnly(typ, "json_remove"); err != nil {
		return "", err
	}
	if key == "" {
		return "", errInvalidJSONKey()
	}
	return fmt.Sprintf("json_remove(%s, %s)", col, quoteStringLiteral(dollarPath(Path{key}))), nil
}

// RemovePathExpr removes the value at path using json_remove.
func (d *SQLiteDialect) RemovePathExpr(col string, typ JSONType, path Path) (string, error) {
	if err := d.jsonOnly(typ, "json_remove"); err != nil {
		return "", err
	}
	p, err := d.FormatPath(path)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("json_remove(%s, %s)", col, quoteStringLiteral(p)), nil
}

// ArrayAppendExpr appends a bound value using json_insert with the [#]
// end-of-array subscript.
func (d *SQLiteDialect) ArrayAppendExpr(col string, typ JSONType, path Path) (string, error) {
	if err := d.jsonOnly(typ, "json_insert"); err != nil {
		return "", err
	}
	p, err := d.FormatPath(path)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("json_insert(%s, %s, ?)", col, quoteStringLiteral(p+"[#]")), nil
}

// ArrayPrependExpr returns an error; SQLite's json_insert cannot shift
// existing array elements.
func (d *SQLiteDialect) ArrayPrependExpr(string, JSONType, Path) (string, error) {
	return "", unsupportedConstructf(d, "JSON array prepend")
}

// StripNullsExpr returns an error; SQLite ships no strip-nulls function.
func (d *SQLiteDialect) StripNullsExpr(string, JSONType) (string, error) {
	return "", unsupportedConstructf(d, "JSON strip-nulls")
}

// jsonOnly rejects the binary JSON type; SQLite stores JSON as text.
func (d *SQLiteDialect) jsonOnly(typ JSONType, construct string) error {
	if typ != JSON {
		return unsupportedJSONTypef(d, construct, typ)
	}
	return nil
}
