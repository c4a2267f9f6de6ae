package sqlast

import "strings"

// Dialect identifies the target SQL engine's identifier-quoting family.
// Only identifier quoting varies by dialect; every other rendering rule
// is shared.
type Dialect string

const (
	DialectBigQuery   Dialect = "bigquery"
	DialectPostgres   Dialect = "postgres"
	DialectPostgreSQL Dialect = "postgresql"
	DialectMySQL      Dialect = "mysql"
	DialectOracle     Dialect = "oracle"
	DialectMSSQL      Dialect = "mssql"
	DialectTSQL       Dialect = "tsql"
	DialectSnowflake  Dialect = "snowflake"
	DialectDuckDB     Dialect = "duckdb"
	DialectSQLite     Dialect = "sqlite"
)

// quoteFamily groups dialects by which character they use to quote
// identifiers.
type quoteFamily int

const (
	familyBacktick    quoteFamily = iota // bigquery, mysql
	familyDoubleQuote                    // postgres, oracle, snowflake, duckdb, sqlite
	familyBracket                        // mssql / tsql
)

func (d Dialect) family() quoteFamily {
	switch Dialect(strings.ToLower(string(d))) {
	case DialectBigQuery, DialectMySQL:
		return familyBacktick
	case DialectMSSQL, DialectTSQL:
		return familyBracket
	default:
		return familyDoubleQuote
	}
}

// Valid reports whether d is a recognized dialect identifier.
func (d Dialect) Valid() bool {
	switch Dialect(strings.ToLower(string(d))) {
	case DialectBigQuery, DialectPostgres, DialectPostgreSQL, DialectMySQL,
		DialectOracle, DialectMSSQL, DialectTSQL, DialectSnowflake,
		DialectDuckDB, DialectSQLite:
		return true
	default:
		return false
	}
}

// specialChars are the reserved characters the backtick-family dialects
// require to be rewritten to underscore before an identifier is quoted.
const specialChars = "!\"$()*,./;?@[]\\^`{}~"

// backtickSafe replaces every reserved special character in s with an
// underscore and collapses internal whitespace, matching the backtick
// dialect's identifier-sanitization rule.
func backtickSafe(s string) string {
	var b strings.Builder
	lastWasSpace := false
	for _, r := range s {
		switch {
		case strings.ContainsRune(specialChars, r):
			b.WriteByte('_')
			lastWasSpace = false
		case r == ' ' || r == '\t' || r == '\n':
			if !lastWasSpace {
				b.WriteByte(' ')
			}
			lastWasSpace = true
		default:
			b.WriteRune(r)
			lastWasSpace = false
		}
	}
	return b.String()
}

// QuoteIdent quotes ident for the given dialect family, applying the
// backtick-family's special-character substitution first.
func QuoteIdent(d Dialect, ident string) string {
	switch d.family() {
	case familyBacktick:
		return "`" + backtickSafe(ident) + "`"
	case familyBracket:
		return "[" + strings.ReplaceAll(ident, "]", "]]") + "]"
	default:
		return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
	}
}
