package compose

import (
	"fmt"
	"strings"

	"github.com/rkddus222/smqc/internal/ir"
	"github.com/rkddus222/smqc/internal/manifest"
	"github.com/rkddus222/smqc/internal/sqlast"
)

// aggSuffix names the synthetic agg-layer alias generated for an
// aggregate call hoisted out of a deriv expression, keyed by its SQL
// function name.
var aggSuffix = map[string]string{
	"SUM":   "합계",
	"COUNT": "개수",
	"AVG":   "평균",
	"MAX":   "최대",
	"MIN":   "최소",
}

// pushDownAggFromDeriv finds every aggregate function call embedded
// inside a deriv-layer expression (arithmetic over measures that was
// never itself wrapped in its own metric), hoists each distinct call
// into its own agg-layer alias, and replaces its occurrence in deriv
// with a bare reference to that alias. Manifest is accepted for
// parallelism with the other prerequisite passes; this pass needs no
// manifest lookups of its own since the aggregate calls it hoists are
// already fully resolved expressions.
func pushDownAggFromDeriv(doc *ir.Document, _ *manifest.Manifest) error {
	if !doc.Has(ir.Deriv) {
		return nil
	}
	deriv := doc.Layer(ir.Deriv)
	agg := doc.Layer(ir.Agg)

	type hoisted struct {
		expr  sqlast.Expr
		alias string
	}
	var done []hoisted
	counter := map[string]int{}

	hoist := func(node sqlast.Expr) sqlast.Expr {
		fn, ok := node.(*sqlast.Func)
		if !ok || fn.Kind != sqlast.FuncAggregate {
			return node
		}
		for _, h := range done {
			if sqlast.Equal(h.expr, fn) {
				return sqlast.NewColumn("", h.alias)
			}
		}
		suffix, ok := aggSuffix[strings.ToUpper(fn.Name)]
		if !ok {
			suffix = "기타"
		}
		base := aggArgName(fn) + "_" + suffix
		alias := base
		if n := counter[base]; n > 0 {
			alias = fmt.Sprintf("%s_%d", base, n+1)
		}
		counter[base]++
		agg.AddMetric(sqlast.NewAlias(fn, alias))
		done = append(done, hoisted{expr: fn, alias: alias})
		return sqlast.NewColumn("", alias)
	}

	rewriteInPlace(deriv.Metrics, hoist)
	rewriteInPlace(deriv.Filters, hoist)
	rewriteOrdersInPlace(deriv.Orders, hoist)
	return nil
}

// aggArgName names the column an aggregate call reduces over, for use
// as the `<col>_<agg>` alias prefix: the bare name of a column
// argument, "all" for COUNT(*), or "expr" when the argument is neither
// (an arithmetic expression rather than a single column reference).
func aggArgName(fn *sqlast.Func) string {
	if len(fn.Args) != 1 {
		return "expr"
	}
	switch arg := fn.Args[0].(type) {
	case *sqlast.Column:
		return arg.Name
	case *sqlast.Identifier:
		if arg.Name == "*" {
			return "all"
		}
		return arg.Name
	default:
		return "expr"
	}
}
