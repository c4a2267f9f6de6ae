// Package metacollect scans the final, written SELECT list and
// resolves each output column's name, declared or inferred data type,
// and display label, grounded on original_source's
// backend/semantic/utils/metadata.py.
package metacollect

import (
	"fmt"

	"github.com/rkddus222/smqc/internal/manifest"
	"github.com/rkddus222/smqc/internal/sqlast"
)

// Column is one resolved output column's metadata.
type Column struct {
	Name  string
	Type  manifest.ColumnType
	Label string
}

// Collect walks final's projection list in order and resolves one
// Column per entry: an explicit alias or bare column/identifier name
// for Name, the manifest's declared type (metric, else dimension or
// measure, else an inferred type) for Type, and the manifest's
// declared label (falling back to Name) for Label. The result always
// has exactly len(final.List) entries (invariant 6).
func Collect(final *sqlast.Select, m *manifest.Manifest) ([]Column, error) {
	out := make([]Column, 0, len(final.List))
	for _, e := range final.List {
		name := sqlast.NameOf(e)
		if name == "" {
			return nil, fmt.Errorf("metacollect: select item %s has no output name", sqlast.FormatExpr(sqlast.DialectDuckDB, e))
		}
		typ, label := resolveColumn(e, name, m)
		out = append(out, Column{Name: name, Type: typ, Label: label})
	}
	if len(out) != len(final.List) {
		return nil, fmt.Errorf("metacollect: collected %d columns for %d select items", len(out), len(final.List))
	}
	return out, nil
}

// resolveColumn resolves e's type and label in the spec's declared
// priority order: a matching global metric first, then a dimension or
// measure on the model the column is qualified to (or, when
// unqualified, the first model that declares a matching name), and
// finally arithmetic type inference over e's dependency columns.
func resolveColumn(e sqlast.Expr, name string, m *manifest.Manifest) (manifest.ColumnType, string) {
	inner := e
	if a, ok := e.(*sqlast.Alias); ok {
		inner = a.Inner
	}

	if metric, ok := m.MetricByName(name); ok {
		typ := metric.DataType
		if typ == "" {
			typ = manifest.ColumnType("numeric")
		}
		label := metric.Label
		if label == "" {
			label = name
		}
		return typ, label
	}

	if col, ok := inner.(*sqlast.Column); ok {
		if t, label, ok := lookupNamed(m, col.Table, col.Name); ok {
			return t, label
		}
	}
	if ident, ok := inner.(*sqlast.Identifier); ok {
		if t, label, ok := lookupNamed(m, "", ident.Name); ok {
			return t, label
		}
	}

	return inferType(dependencyNames(inner), inner, m), name
}

// lookupNamed resolves name as a dimension or measure, preferring the
// model named by table when given, and otherwise scanning every model
// in manifest order for the first match.
func lookupNamed(m *manifest.Manifest, table, name string) (manifest.ColumnType, string, bool) {
	if table != "" {
		if sm, ok := m.Model(table); ok {
			if d, ok := sm.Dimension(name); ok {
				return d.Type, d.DimensionLabel(), true
			}
			if meas, ok := sm.Measure(name); ok {
				return meas.Type, meas.MeasureLabel(), true
			}
		}
		return "", "", false
	}
	for _, sm := range m.SemanticModels {
		if d, ok := sm.Dimension(name); ok {
			return d.Type, d.DimensionLabel(), true
		}
		if meas, ok := sm.Measure(name); ok {
			return meas.Type, meas.MeasureLabel(), true
		}
	}
	return "", "", false
}

// dependencyNames returns the name of every Column or Identifier leaf
// reachable from e, in document order, duplicates included (matching
// find_all(exp.Column) in the original).
func dependencyNames(e sqlast.Expr) []string {
	var out []string
	sqlast.Walk(e, func(n sqlast.Node) bool {
		switch v := n.(type) {
		case *sqlast.Column:
			out = append(out, v.Name)
		case *sqlast.Identifier:
			out = append(out, v.Name)
		}
		return true
	})
	return out
}
