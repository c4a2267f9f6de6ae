package ddlcatalog

import "strings"

// parseCreateTables scans a sequence of CREATE TABLE statements, each
// terminated by a semicolon, extracting the table's qualified name and
// its column list. quote is the dialect's identifier-quote opening
// character (` " or [); identifiers may also appear unquoted.
func parseCreateTables(body string, quote byte) ([]Table, error) {
	var tables []Table
	for _, stmt := range splitStatements(body) {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		upper := strings.ToUpper(stmt)
		if !strings.HasPrefix(upper, "CREATE TABLE") {
			continue
		}
		tbl, err := parseOneCreateTable(stmt, quote)
		if err != nil {
			return nil, err
		}
		tables = append(tables, tbl)
	}
	return tables, nil
}

func splitStatements(body string) []string {
	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ';':
			if depth == 0 {
				out = append(out, body[start:i])
				start = i + 1
			}
		}
	}
	if start < len(body) {
		out = append(out, body[start:])
	}
	return out
}

func parseOneCreateTable(stmt string, quote byte) (Table, error) {
	rest := stmt[len("CREATE TABLE"):]
	rest = strings.TrimSpace(rest)
	if strings.HasPrefix(strings.ToUpper(rest), "IF NOT EXISTS") {
		rest = strings.TrimSpace(rest[len("IF NOT EXISTS"):])
	}

	openIdx := strings.IndexByte(rest, '(')
	if openIdx < 0 {
		return Table{}, errDialect("CREATE TABLE missing column list: %q", stmt)
	}
	qualifiedName := strings.TrimSpace(rest[:openIdx])
	colsBlock := strings.TrimSpace(rest[openIdx:])
	colsBlock = strings.TrimSuffix(strings.TrimSpace(colsBlock), ")")
	colsBlock = strings.TrimPrefix(colsBlock, "(")
	if strings.HasSuffix(colsBlock, ")") {
		colsBlock = colsBlock[:len(colsBlock)-1]
	}

	db, schema, name := splitQualifiedName(qualifiedName, quote)

	var cols []Column
	for _, part := range splitColumnDefs(colsBlock) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		upperPart := strings.ToUpper(part)
		if strings.HasPrefix(upperPart, "PRIMARY KEY") ||
			strings.HasPrefix(upperPart, "FOREIGN KEY") ||
			strings.HasPrefix(upperPart, "CONSTRAINT") ||
			strings.HasPrefix(upperPart, "UNIQUE") {
			continue
		}
		col, ok := parseColumnDef(part, quote)
		if ok {
			cols = append(cols, col)
		}
	}

	return Table{Database: db, Schema: schema, Name: name, Columns: cols}, nil
}

// splitColumnDefs splits a column list on top-level commas (commas
// nested inside parens, e.g. DECIMAL(10,2), are not split points).
func splitColumnDefs(block string) []string {
	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(block); i++ {
		switch block[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, block[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, block[start:])
	return out
}

func closingQuote(open byte) byte {
	switch open {
	case '[':
		return ']'
	default:
		return open
	}
}

func unquote(s string, quote byte) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == quote && s[len(s)-1] == closingQuote(quote) {
		return s[1 : len(s)-1]
	}
	return s
}

func splitQualifiedName(s string, quote byte) (db, schema, name string) {
	parts := splitOnUnquotedDots(s, quote)
	for i, p := range parts {
		parts[i] = unquote(p, quote)
	}
	switch len(parts) {
	case 1:
		return "", "", parts[0]
	case 2:
		return "", parts[0], parts[1]
	default:
		return parts[0], parts[1], parts[2]
	}
}

func splitOnUnquotedDots(s string, quote byte) []string {
	var out []string
	inQuote := false
	start := 0
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch == quote || (quote == '[' && ch == ']') {
			inQuote = !inQuote
			continue
		}
		if ch == '.' && !inQuote {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

func parseColumnDef(def string, quote byte) (Column, bool) {
	fields := strings.Fields(def)
	if len(fields) < 2 {
		return Column{}, false
	}
	name := unquote(fields[0], quote)
	typ := fields[1]

	upperDef := strings.ToUpper(def)
	nullable := !strings.Contains(upperDef, "NOT NULL")

	comment := ""
	if idx := strings.Index(upperDef, "COMMENT"); idx >= 0 {
		rest := def[idx+len("COMMENT"):]
		rest = strings.TrimSpace(rest)
		rest = strings.Trim(rest, "'\"")
		comment = rest
	}

	return Column{Name: name, Type: typ, Nullable: nullable, Comment: comment}, true
}
