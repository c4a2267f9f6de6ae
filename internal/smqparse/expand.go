package smqparse

import (
	"github.com/rkddus222/smqc/internal/manifest"
	"github.com/rkddus222/smqc/internal/sqlast"
)

const maxExpansionDepth = 10

// expansion carries the result of recursively resolving a metric's
// expression: the rewritten AST (bare metric/measure identifiers
// replaced with Column references), whether any measure it touches
// needs to flow through an aggregation layer before this expression can
// be evaluated (i.e. whether the metric belongs in deriv rather than
// agg), and which (model, measure) pairs were touched along the way so
// the caller can project them.
type expansion struct {
	Expr        sqlast.Expr
	NeedsDeriv  bool
	TouchedMeas []touchedMeasure
}

type touchedMeasure struct {
	Model   string
	Measure manifest.Measure
}

// ExpandMetric resolves a top-level bare metric reference into an
// expression over measure columns, expanding nested metric references
// up to a depth of 10 and detecting cycles via the visited-path
// argument (which doubles as the diagnostic path on failure).
func ExpandMetric(m *manifest.Manifest, name string, visited []string) (expansion, error) {
	return expandMetricName(m, name, visited)
}

func expandMetricName(m *manifest.Manifest, name string, visited []string) (expansion, error) {
	if len(visited) >= maxExpansionDepth {
		return expansion{}, errExpansionLimit(append(visited, name))
	}
	for _, v := range visited {
		if v == name {
			return expansion{}, errCycle(append(visited, name))
		}
	}
	path := append(append([]string{}, visited...), name)

	met, ok := m.MetricByName(name)
	if !ok {
		return expansion{}, errInput("unknown metric %q", name)
	}

	tree, err := sqlast.ParseExpr(met.Expr)
	if err != nil {
		return expansion{}, errInput("metric %q has unparsable expr %q: %v", name, met.Expr, err)
	}

	needsDeriv := met.MetricType != manifest.MetricSimple
	var touched []touchedMeasure

	rewritten := sqlast.TransformExpr(tree, func(e sqlast.Expr) sqlast.Expr {
		ident, ok := e.(*sqlast.Identifier)
		if !ok {
			return e
		}
		resolved, nested, touchedHere, derivHere, rerr := resolveMetricIdentifier(m, ident.Name, path)
		if rerr != nil {
			err = rerr
			return e
		}
		if derivHere {
			needsDeriv = true
		}
		touched = append(touched, touchedHere...)
		if nested {
			return resolved
		}
		return resolved
	})
	if err != nil {
		return expansion{}, err
	}

	// A simple metric whose expr is more than a bare identifier performs
	// arithmetic over an already-aggregated value, so it must live in
	// deriv even though its declared type is "simple".
	if _, bare := tree.(*sqlast.Identifier); !bare {
		needsDeriv = true
	}

	return expansion{Expr: rewritten, NeedsDeriv: needsDeriv, TouchedMeas: touched}, nil
}

// resolveMetricIdentifier resolves one bare identifier found inside a
// metric expr: first as another metric (recurse), falling back to a
// measure lookup across every semantic model (the first match wins;
// disambiguating a measure name that exists on more than one model is a
// manifest authoring concern, not something this compiler arbitrates).
func resolveMetricIdentifier(m *manifest.Manifest, name string, path []string) (resolved sqlast.Expr, isNested bool, touched []touchedMeasure, needsDeriv bool, err error) {
	if _, ok := m.MetricByName(name); ok {
		nestedExp, nerr := expandMetricName(m, name, path)
		if nerr != nil {
			return nil, false, nil, false, nerr
		}
		return nestedExp.Expr, true, nestedExp.TouchedMeas, nestedExp.NeedsDeriv, nil
	}
	for _, sm := range m.SemanticModels {
		if meas, ok := sm.Measure(name); ok {
			agg := AggregateExpr(*meas)
			return agg, false, []touchedMeasure{{Model: sm.Name, Measure: *meas}}, false, nil
		}
	}
	return nil, false, nil, false, errInput("metric expr references unknown name %q", name)
}

// aggFuncName maps a measure's declared aggregation to its SQL function
// name.
var aggFuncName = map[manifest.AggType]string{
	manifest.AggSum:   "SUM",
	manifest.AggCount: "COUNT",
	manifest.AggAvg:   "AVG",
	manifest.AggMin:   "MIN",
	manifest.AggMax:   "MAX",
}

// AggregateExpr wraps a measure reference in its declared aggregate
// function, e.g. order_total/sum -> SUM(order_total). The composer's
// push-down pass later extracts any such call found inside the deriv
// layer into its own agg-layer alias; completeDerivPrerequisites calls
// this directly when synthesizing a missing agg-layer reference to a
// measure.
func AggregateExpr(meas manifest.Measure) sqlast.Expr {
	fn := aggFuncName[meas.Agg]
	if fn == "" {
		fn = "SUM"
	}
	return sqlast.NewAggregate(fn, sqlast.NewColumn("", meas.MeasureExpr()))
}

func errExpansionLimit(path []string) *ExpansionLimitError {
	return &ExpansionLimitError{Path: path}
}

func errCycle(path []string) *ExpansionLimitError {
	return &ExpansionLimitError{Path: path, Cycle: true}
}
