package metacollect

import (
	"github.com/rkddus222/smqc/internal/manifest"
	"github.com/rkddus222/smqc/internal/sqlast"
)

// typePriority ranks dependency types when an expression mixes more
// than one, per spec.md §4.8: decimal > float > bigint > integer >
// string. "numeric" is the fallback sentinel for a metric with no
// declared data type and ranks alongside decimal.
var typePriority = map[manifest.ColumnType]int{
	manifest.TypeDecimal:           5,
	manifest.ColumnType("numeric"): 5,
	manifest.TypeFloat:             4,
	manifest.TypeBigint:            3,
	manifest.TypeInteger:           2,
	manifest.TypeString:            1,
}

// inferType infers a compound expression's output type from the types
// of the named columns/identifiers it depends on: when every
// dependency shares one type, that type wins (promoted to decimal if
// expr contains a division and the shared type is an integer kind);
// when dependencies disagree, the highest-priority type wins, with the
// same division promotion applied to it.
func inferType(deps []string, expr sqlast.Expr, m *manifest.Manifest) manifest.ColumnType {
	if len(deps) == 0 {
		return manifest.ColumnType("numeric")
	}

	var depTypes []manifest.ColumnType
	for _, d := range deps {
		if t, ok := lookupType(d, m); ok {
			depTypes = append(depTypes, t)
		}
	}
	if len(depTypes) == 0 {
		return manifest.ColumnType("numeric")
	}

	allSame := true
	for _, t := range depTypes[1:] {
		if t != depTypes[0] {
			allSame = false
			break
		}
	}

	var winner manifest.ColumnType
	if allSame {
		winner = depTypes[0]
	} else {
		winner = depTypes[0]
		for _, t := range depTypes[1:] {
			if typePriority[t] > typePriority[winner] {
				winner = t
			}
		}
	}

	if hasDivision(expr) && isIntegerish(winner) {
		return manifest.TypeDecimal
	}
	return winner
}

// lookupType resolves a bare dependency name against the manifest: a
// global metric's declared data type (defaulting to "numeric"), else
// the first model declaring a matching dimension or measure.
func lookupType(name string, m *manifest.Manifest) (manifest.ColumnType, bool) {
	if metric, ok := m.MetricByName(name); ok {
		if metric.DataType != "" {
			return metric.DataType, true
		}
		return manifest.ColumnType("numeric"), true
	}
	for _, sm := range m.SemanticModels {
		if d, ok := sm.Dimension(name); ok {
			return d.Type, true
		}
		if meas, ok := sm.Measure(name); ok {
			return meas.Type, true
		}
	}
	return "", false
}

func isIntegerish(t manifest.ColumnType) bool {
	return t == manifest.TypeInteger || t == manifest.TypeBigint
}

// hasDivision reports whether e contains a "/" binary operator
// anywhere in its tree.
func hasDivision(e sqlast.Expr) bool {
	found := false
	sqlast.Walk(e, func(n sqlast.Node) bool {
		if b, ok := n.(*sqlast.BinaryOp); ok && b.Op == "/" {
			found = true
			return false
		}
		return true
	})
	return found
}
