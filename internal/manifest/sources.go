package manifest

import "regexp"

// SourceTable is one physical table resolved from sources.yml: the
// (source_name, table) pair maps to a (database, schema, table) triple.
type SourceTable struct {
	Database string
	Schema   string
	Table    string
}

// sourcesFile mirrors the on-disk shape of sources.yml.
type sourcesFile struct {
	Sources []struct {
		Name   string `yaml:"name"`
		Tables []struct {
			Name     string `yaml:"name"`
			Database string `yaml:"database"`
			Schema   string `yaml:"schema"`
			Table    string `yaml:"table"`
		} `yaml:"tables"`
	} `yaml:"sources"`
}

// sourceRefPattern matches the node_relation textual shape SOURCE('x.y')
// or SOURCE('table') used by semantic models to reference a source.
var sourceRefPattern = regexp.MustCompile(`^SOURCE\('([^']+)'\)$`)

// ParseSourceRef extracts the inner reference text from a node_relation
// string shaped like SOURCE('source_name.table_name') or
// SOURCE('table_name'). ok is false when the string isn't in that shape.
func ParseSourceRef(nodeRelation string) (ref string, ok bool) {
	m := sourceRefPattern.FindStringSubmatch(nodeRelation)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// sourceIndex resolves (source_name, table_name) -> SourceTable, built
// from a parsed sourcesFile.
type sourceIndex map[string]SourceTable

func (f sourcesFile) index() sourceIndex {
	idx := make(sourceIndex)
	for _, src := range f.Sources {
		for _, tbl := range src.Tables {
			key := src.Name + "." + tbl.Name
			idx[key] = SourceTable{Database: tbl.Database, Schema: tbl.Schema, Table: tbl.Table}
			// Also index by bare table name, to support
			// SOURCE('table_name') refs that omit the source qualifier.
			// When two sources share a table name, the later one wins.
			idx[tbl.Name] = SourceTable{Database: tbl.Database, Schema: tbl.Schema, Table: tbl.Table}
		}
	}
	return idx
}
