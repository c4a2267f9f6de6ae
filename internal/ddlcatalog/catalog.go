// Package ddlcatalog provides the pluggable DDL->table-catalog reader
// the manifest linter depends on through the TableCatalog interface.
// One dialect-specific comment marker selects the identifier-quoting
// family used while scanning the CREATE TABLE statements that follow;
// per-DBMS DDL grammar parsing beyond that is explicitly out of scope
// (the original system shipped a small lexer per DBMS — this compiler
// only needs the column inventory a CREATE TABLE block already carries
// in a close-enough-to-universal shape).
package ddlcatalog

import (
	"bufio"
	"strings"
)

// Column is one physical column reported by a CREATE TABLE statement.
type Column struct {
	Name     string
	Type     string
	Nullable bool
	Comment  string
}

// Table is one physical table reported by the DDL.
type Table struct {
	Database string
	Schema   string
	Name     string
	Columns  []Column
}

// TableCatalog is the interface the linter consumes; each dialect
// marker resolves to a provider satisfying it.
type TableCatalog interface {
	Tables() ([]Table, error)
}

type catalog struct {
	tables []Table
}

func (c *catalog) Tables() ([]Table, error) { return c.tables, nil }

// dialectMarkers maps the leading `-- marker` comment to the
// identifier-quote character used while lexing the statements below it.
var dialectMarkers = map[string]byte{
	"mysql":      '`',
	"bigquery":   '`',
	"postgres":   '"',
	"postgresql": '"',
	"snowflake":  '"',
	"duckdb":     '"',
	"sqlite":     '"',
	"oracle":     '"',
	"mssql":      '[',
	"tsql":       '[',
}

// ParseDDL reads a ddl.sql document: the first non-blank line must be a
// `-- <dialect>` comment naming one of the dialect identifiers, and the
// remainder is a sequence of CREATE TABLE statements.
func ParseDDL(sql string) (TableCatalog, error) {
	marker, body, err := splitDialectMarker(sql)
	if err != nil {
		return nil, err
	}
	quote := dialectMarkers[marker]
	tables, err := parseCreateTables(body, quote)
	if err != nil {
		return nil, err
	}
	return &catalog{tables: tables}, nil
}

func splitDialectMarker(sql string) (dialect, body string, err error) {
	scanner := bufio.NewScanner(strings.NewReader(sql))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var markerLine string
	var rest strings.Builder
	found := false
	for scanner.Scan() {
		line := scanner.Text()
		if !found && strings.TrimSpace(line) == "" {
			continue
		}
		if !found {
			markerLine = strings.TrimSpace(line)
			found = true
			continue
		}
		rest.WriteString(line)
		rest.WriteByte('\n')
	}
	if !found || !strings.HasPrefix(markerLine, "--") {
		return "", "", errDialect("ddl.sql must start with a `-- <dialect>` comment")
	}
	dialect = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(markerLine, "--")))
	if _, ok := dialectMarkers[dialect]; !ok {
		return "", "", errDialect("unknown dialect marker %q", dialect)
	}
	return dialect, rest.String(), nil
}
