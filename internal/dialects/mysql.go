package dialects

import (
	"fmt"
	"strings"
)

// DefaultMySQLVersion is the major version assumed when detection is skipped
// or the version probe fails.
const DefaultMySQLVersion = 8

// mysqlNoLimit is the documented sentinel for "no limit" when MySQL needs an
// OFFSET without a LIMIT.
const mysqlNoLimit = "18446744073709551615"

// MySQLDialect implements MySQL-specific SQL generation.
type MySQLDialect struct {
	major int
}

func init() {
	RegisterDialect("mysql", NewMySQL)
}

// NewMySQL returns the MySQL dialect targeting the given major version.
func NewMySQL(major int) Dialect {
	if major <= 0 {
		major = DefaultMySQLVersion
	}
	return &MySQLDialect{major: major}
}

// Name returns "mysql".
func (d *MySQLDialect) Name() string { return "mysql" }

// Version returns the targeted major version.
func (d *MySQLDialect) Version() int { return d.major }

// QuoteIdentifier quotes a MySQL identifier using backticks.
func (d *MySQLDialect) QuoteIdentifier(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

// Placeholder returns MySQL placeholder format (always "?").
func (d *MySQLDialect) Placeholder(_ int) string {
	return "?"
}

// LimitOffset renders LIMIT/OFFSET. MySQL has no bare OFFSET form, so an
// offset without a limit uses the documented maximum row count sentinel.
func (d *MySQLDialect) LimitOffset(limit, offset int64) string {
	switch {
	case limit >= 0 && offset > 0:
		return fmt.Sprintf("LIMIT %d OFFSET %d", limit, offset)
	case limit >= 0:
		return fmt.Sprintf("LIMIT %d", limit)
	case offset > 0:
		return fmt.Sprintf("LIMIT %s OFFSET %d", mysqlNoLimit, offset)
	default:
		return ""
	}
}

// UUIDExpr returns UUID().
func (d *MySQLDialect) UUIDExpr() (string, error) {
	return "UUID()", nil
}

// SequenceNextExpr returns an error; MySQL has no sequence objects.
func (d *MySQLDialect) SequenceNextExpr(string) (string, error) {
	return "", unsupportedConstructf(d, "sequences")
}

// RegexpOp returns the REGEXP operator.
func (d *MySQLDialect) RegexpOp() (string, error) {
	return "REGEXP", nil
}

// SupportsGroupByAll reports false; MySQL has no GROUP BY ALL.
func (d *MySQLDialect) SupportsGroupByAll() bool { return false }

// SupportsCTEMaterialization reports false; MySQL accepts no hints on CTEs.
func (d *MySQLDialect) SupportsCTEMaterialization() bool { return false }

// SupportsUpsert reports true; MySQL supports ON DUPLICATE KEY UPDATE.
func (d *MySQLDialect) SupportsUpsert() bool { return true }

// UpsertSQL generates MySQL UPSERT syntax using ON DUPLICATE KEY UPDATE.
func (d *MySQLDialect) UpsertSQL(_ string, conflictColumns, updateCols []string) string {
	if updateCols == nil {
		// MySQL has no DO NOTHING form; assigning a conflict column to itself
		// turns the duplicate insert into a no-op row update.
		if len(conflictColumns) > 0 {
			col := conflictColumns[0]
			return fmt.Sprintf(" ON DUPLICATE KEY UPDATE %s = %s", col, col)
		}
		return ""
	}

	updates := make([]string, len(updateCols))
	for i, col := range updateCols {
		updates[i] = fmt.Sprintf("%s = VALUES(%s)", col, col)
	}

	return fmt.Sprintf(" ON DUPLICATE KEY UPDATE %s",
		strings.Join(updates, ", "))
}

// FormatPath renders the $.a.b[0] path syntax.
func (d *MySQLDialect) FormatPath(path Path) (string, error) {
	if err := validatePath(path, false); err != nil {
		return "", err
	}
	return dollarPath(path), nil
}

// CastExpr casts an expression to the JSON type.
func (d *MySQLDialect) CastExpr(expr string, typ JSONType) (string, error) {
	if err := d.jsonOnly(typ, "CAST"); err != nil {
		return "", err
	}
	return fmt.Sprintf("CAST(%s AS JSON)", expr), nil
}

// MergeExpr merges a bound document using JSON_MERGE_PATCH (RFC 7396 semantics).
func (d *MySQLDialect) MergeExpr(col string, typ JSONType) (string, error) {
	if err := d.jsonOnly(typ, "JSON_MERGE_PATCH"); err != nil {
		return "", err
	}
	return fmt.Sprintf("JSON_MERGE_PATCH(%s, ?)", col), nil
}

// SetPathExpr sets the value at path using JSON_SET.
func (d *MySQLDialect) SetPathExpr(col string, typ JSONType, path Path) (string, error) {
	if err := d.jsonOnly(typ, "JSON_SET"); err != nil {
		return "", err
	}
	p, err := d.FormatPath(path)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("JSON_SET(%s, %s, ?)", col, quoteStringLiteral(p)), nil
}

// RemoveKeyExpr removes a top-level key using JSON_REMOVE.
func (d *MySQLDialect) RemoveKeyExpr(col string, typ JSONType, key string) (string, error) {
	if err := d.jsonOnly(typ, "JSON_REMOVE"); err != nil {
		return "", err
	}
	if key == "" {
		return "", errInvalidJSONKey()
	}
	return fmt.Sprintf("JSON_REMOVE(%s, %s)", col, quoteStringLiteral(dollarPath(Path{key}))), nil
}

// RemovePathExpr removes the value at path using JSON_REMOVE.
func (d *MySQLDialect) RemovePathExpr(col string, typ JSONType, path Path) (string, error) {
	if err := d.jsonOnly(typ, "JSON_REMOVE"); err != nil {
		return "", err
	}
	p, err := d.FormatPath(path)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("JSON_REMOVE(%s, %s)", col, quoteStringLiteral(p)), nil
}

// ArrayAppendExpr appends a bound value using JSON_ARRAY_APPEND.
func (d *MySQLDialect) ArrayAppendExpr(col string, typ JSONType, path Path) (string, error) {
	if err := d.jsonOnly(typ, "JSON_ARRAY_APPEND"); err != nil {
		return "", err
	}
	p, err := d.FormatPath(path)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("JSON_ARRAY_APPEND(%s, %s, ?)", col, quoteStringLiteral(p)), nil
}

// ArrayPrependExpr inserts a bound value at index 0 using JSON_ARRAY_INSERT.
func (d *MySQLDialect) ArrayPrependExpr(col string, typ JSONType, path Path) (string, error) {
	if err := d.jsonOnly(typ, "JSON_ARRAY_INSERT"); err != nil {
		return "", err
	}
	p, err := d.FormatPath(append(append(Path{}, path...), 0))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("JSON_ARRAY_INSERT(%s, %s, ?)", col, quoteStringLiteral(p)), nil
}

// StripNullsExpr returns an error; MySQL ships no strip-nulls function.
func (d *MySQLDialect) StripNullsExpr(string, JSONType) (string, error) {
	return "", unsupportedConstructf(d, "JSON strip-nulls")
}

// jsonOnly rejects the binary JSON type; MySQL has a single JSON representation.
func (d *MySQLDialect) jsonOnly(typ JSONType, construct string) error {
	if typ != JSON {
		return unsupportedJSONTypef(d, construct, typ)
	}
	return nil
}
