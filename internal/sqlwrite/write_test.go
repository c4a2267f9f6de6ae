package sqlwrite

import (
	"strings"
	"testing"

	"github.com/rkddus222/smqc/internal/ir"
	"github.com/rkddus222/smqc/internal/manifest"
	"github.com/rkddus222/smqc/internal/sqlast"
	"github.com/stretchr/testify/require"
)

func testManifest() *manifest.Manifest {
	m := &manifest.Manifest{
		SemanticModels: []manifest.SemanticModel{
			{
				Name: "orders",
				Entities: []manifest.Entity{
					{Name: "order_id", Type: manifest.EntityPrimary},
					{Name: "customer_id", Type: manifest.EntityForeign},
				},
				Dimensions: []manifest.Dimension{
					{Name: "order_date", Type: manifest.TypeDate},
				},
				Measures: []manifest.Measure{
					{Name: "order_total", Type: manifest.TypeDecimal, Agg: manifest.AggSum},
				},
			},
			{
				Name: "customers",
				Entities: []manifest.Entity{
					{Name: "customer_id", Type: manifest.EntityPrimary},
				},
				Dimensions: []manifest.Dimension{
					{Name: "customer_region", Type: manifest.TypeString},
				},
			},
		},
	}
	m.Index()
	return m
}

func TestWrite_SingleModel_NoDeriv_SplitsWhereAndQualify(t *testing.T) {
	m := testManifest()
	doc := ir.NewDocument()

	proj := doc.Layer(ir.Projection("orders"))
	proj.AddMetric(sqlast.NewAlias(sqlast.NewColumn("", "order_date"), "order_date"))
	proj.AddMetric(sqlast.NewAlias(sqlast.NewColumn("", "order_total"), "order_total"))

	agg := doc.Layer(ir.Agg)
	sum := sqlast.NewAlias(sqlast.NewAggregate("SUM", sqlast.NewColumn("orders", "order_total")), "합계")
	agg.AddMetric(sum) // added before the dimension, to prove reordering happens
	agg.AddMetric(sqlast.NewAlias(sqlast.NewColumn("orders", "order_date"), "order_date"))
	agg.AddGroup(sqlast.NewColumn("orders", "order_date"))
	agg.AddFilter(sqlast.NewBinaryOp(">", sqlast.NewColumn("orders", "order_date"), sqlast.NewStringLiteral("2024-01-01")))
	agg.AddFilter(sqlast.NewBinaryOp(">", sqlast.NewColumn("", "합계"), sqlast.NewNumberLiteral("100")))

	w, err := Write(doc, m, sqlast.DialectDuckDB)
	require.NoError(t, err)
	require.Len(t, w.CTEs, 1)
	require.Equal(t, "orders", w.CTEs[0].Name)

	require.Len(t, w.Query.List, 2, "dimension-first ordering should still yield exactly the two metrics")
	first, ok := w.Query.List[0].(*sqlast.Alias)
	require.True(t, ok)
	require.Equal(t, "order_date", first.Name, "plain dimension must sort before the aggregate")
	second, ok := w.Query.List[1].(*sqlast.Alias)
	require.True(t, ok)
	require.Equal(t, "합계", second.Name)

	whereBin, ok := w.Query.Where.(*sqlast.BinaryOp)
	require.True(t, ok, "the plain row-level filter belongs in WHERE")
	whereCol, ok := whereBin.LHS.(*sqlast.Column)
	require.True(t, ok)
	require.Equal(t, "order_date", whereCol.Name)

	qualifyBin, ok := w.Query.Qualify.(*sqlast.BinaryOp)
	require.True(t, ok, "a filter referencing the aggregate alias by name belongs in QUALIFY")
	qualifyCol, ok := qualifyBin.LHS.(*sqlast.Column)
	require.True(t, ok)
	require.Equal(t, "합계", qualifyCol.Name)

	fromTable, ok := w.Query.From.(*sqlast.Table)
	require.True(t, ok)
	require.Equal(t, "orders", fromTable.Name)
	require.Empty(t, fromTable.Alias, "a single-CTE FROM needs no alias; the CTE name is already the correlation name")

	rendered := sqlast.Format(sqlast.DialectDuckDB, w)
	require.Contains(t, rendered, "WITH")
	require.Contains(t, rendered, "QUALIFY")
}

func TestWrite_TwoModels_DerivUppermost_FoldsJoinAndSkipsQualifyAtDeriv(t *testing.T) {
	m := testManifest()
	doc := ir.NewDocument()

	orders := doc.Layer(ir.Projection("orders"))
	orders.AddMetric(sqlast.NewAlias(sqlast.NewColumn("", "order_total"), "order_total"))
	orders.AddMetric(sqlast.NewAlias(sqlast.NewColumn("", "customer_id"), "customer_id"))

	customers := doc.Layer(ir.Projection("customers"))
	customers.AddMetric(sqlast.NewAlias(sqlast.NewColumn("", "customer_region"), "customer_region"))
	customers.AddMetric(sqlast.NewAlias(sqlast.NewColumn("", "customer_id"), "customer_id"))

	agg := doc.Layer(ir.Agg)
	agg.AddMetric(sqlast.NewAlias(sqlast.NewColumn("customers", "customer_region"), "customer_region"))
	agg.AddMetric(sqlast.NewAlias(sqlast.NewAggregate("SUM", sqlast.NewColumn("orders", "order_total")), "합계"))
	agg.AddGroup(sqlast.NewColumn("customers", "customer_region"))
	agg.Joins = []*sqlast.Join{{
		Left:  &sqlast.Table{Name: "orders", Alias: "orders"},
		Right: &sqlast.Table{Name: "customers", Alias: "customers"},
		On: sqlast.NewBinaryOp("=",
			sqlast.NewColumn("orders", "customer_id"),
			sqlast.NewColumn("customers", "customer_id")),
		Kind: sqlast.JoinLeft,
	}}

	deriv := doc.Layer(ir.Deriv)
	deriv.AddMetric(sqlast.NewColumn("", "customer_region"))
	pct := sqlast.NewBinaryOp("/", sqlast.NewColumn("", "합계"), sqlast.NewNumberLiteral("100"))
	deriv.AddMetric(sqlast.NewAlias(pct, "pct"))
	deriv.AddFilter(sqlast.NewBinaryOp(">", sqlast.NewColumn("", "pct"), sqlast.NewNumberLiteral("0")))

	w, err := Write(doc, m, sqlast.DialectDuckDB)
	require.NoError(t, err)
	require.Len(t, w.CTEs, 3, "two projection CTEs plus the agg CTE")
	require.Equal(t, "orders", w.CTEs[0].Name)
	require.Equal(t, "customers", w.CTEs[1].Name)
	require.Equal(t, "agg", w.CTEs[2].Name)

	aggSel := w.CTEs[2].Query
	join, ok := aggSel.From.(*sqlast.Join)
	require.True(t, ok, "two projection layers fold into a single join tree")
	leftTbl, ok := join.Left.(*sqlast.Table)
	require.True(t, ok)
	require.Equal(t, "orders", leftTbl.Name)
	rightTbl, ok := join.Right.(*sqlast.Table)
	require.True(t, ok)
	require.Equal(t, "customers", rightTbl.Name)

	require.Nil(t, aggSel.OrderBy, "an intermediate CTE carries no ORDER BY")
	require.Nil(t, aggSel.Limit, "an intermediate CTE carries no LIMIT")

	finalFrom, ok := w.Query.From.(*sqlast.Table)
	require.True(t, ok)
	require.Equal(t, "agg", finalFrom.Name)

	require.Len(t, w.Query.List, 2)
	require.Nil(t, w.Query.Qualify, "deriv filters a plain column of the agg CTE, never an embedded aggregate")
	whereBin, ok := w.Query.Where.(*sqlast.BinaryOp)
	require.True(t, ok)
	whereCol, ok := whereBin.LHS.(*sqlast.Column)
	require.True(t, ok)
	require.Equal(t, "pct", whereCol.Name)
}

func TestInline_CollapsesCTEsIntoNestedSubqueriesInDeclarationOrder(t *testing.T) {
	m := testManifest()
	doc := ir.NewDocument()

	orders := doc.Layer(ir.Projection("orders"))
	orders.AddMetric(sqlast.NewAlias(sqlast.NewColumn("", "order_total"), "order_total"))
	orders.AddMetric(sqlast.NewAlias(sqlast.NewColumn("", "customer_id"), "customer_id"))

	customers := doc.Layer(ir.Projection("customers"))
	customers.AddMetric(sqlast.NewAlias(sqlast.NewColumn("", "customer_region"), "customer_region"))
	customers.AddMetric(sqlast.NewAlias(sqlast.NewColumn("", "customer_id"), "customer_id"))

	agg := doc.Layer(ir.Agg)
	agg.AddMetric(sqlast.NewAlias(sqlast.NewColumn("customers", "customer_region"), "customer_region"))
	agg.AddMetric(sqlast.NewAlias(sqlast.NewAggregate("SUM", sqlast.NewColumn("orders", "order_total")), "합계"))
	agg.Joins = []*sqlast.Join{{
		Left:  &sqlast.Table{Name: "orders", Alias: "orders"},
		Right: &sqlast.Table{Name: "customers", Alias: "customers"},
		On: sqlast.NewBinaryOp("=",
			sqlast.NewColumn("orders", "customer_id"),
			sqlast.NewColumn("customers", "customer_id")),
		Kind: sqlast.JoinLeft,
	}}

	w, err := Write(doc, m, sqlast.DialectDuckDB)
	require.NoError(t, err)

	inlined := Inline(w)
	require.NotNil(t, inlined.From)

	outerJoin, ok := inlined.From.(*sqlast.Join)
	require.True(t, ok, "agg's join tree is now the outermost FROM")
	leftSub, ok := outerJoin.Left.(*sqlast.Subquery)
	require.True(t, ok, "the orders CTE became a nested subquery")
	require.Equal(t, "orders", leftSub.Alias)
	rightSub, ok := outerJoin.Right.(*sqlast.Subquery)
	require.True(t, ok, "the customers CTE became a nested subquery")
	require.Equal(t, "customers", rightSub.Alias)

	rendered := sqlast.Format(sqlast.DialectDuckDB, inlined)
	require.False(t, strings.HasPrefix(rendered, "WITH"), "the WITH clause must be gone after inlining")
	require.Contains(t, rendered, "AS \"orders\"")
	require.Contains(t, rendered, "AS \"customers\"")
}

func TestRouteFilters_PlainPredicateGoesToWhereNotQualify(t *testing.T) {
	layer := &ir.Layer{
		Metrics: []sqlast.Expr{sqlast.NewAlias(sqlast.NewColumn("orders", "order_date"), "order_date")},
		Filters: []sqlast.Expr{sqlast.NewBinaryOp("=", sqlast.NewColumn("orders", "order_date"), sqlast.NewStringLiteral("2024-01-01"))},
	}
	where, qualify := routeFilters(layer)
	require.Len(t, where, 1)
	require.Empty(t, qualify)
}

func TestRouteFilters_WindowFunctionPredicateGoesToQualify(t *testing.T) {
	rank := &sqlast.Func{Name: "ROW_NUMBER", Kind: sqlast.FuncWindow, Window: &sqlast.WindowSpec{}}
	layer := &ir.Layer{
		Filters: []sqlast.Expr{sqlast.NewBinaryOp("=", rank, sqlast.NewNumberLiteral("1"))},
	}
	where, qualify := routeFilters(layer)
	require.Empty(t, where)
	require.Len(t, qualify, 1)
}

func TestSortDimensionFirst_PreservesOrderWithinEachGroup(t *testing.T) {
	a := sqlast.NewAlias(sqlast.NewAggregate("SUM", sqlast.NewColumn("orders", "x")), "sum_x")
	b := sqlast.NewAlias(sqlast.NewColumn("orders", "region"), "region")
	c := sqlast.NewAlias(sqlast.NewAggregate("COUNT", sqlast.NewColumn("orders", "y")), "count_y")
	d := sqlast.NewAlias(sqlast.NewColumn("orders", "channel"), "channel")

	sorted := sortDimensionFirst([]sqlast.Expr{a, b, c, d})
	require.Equal(t, []sqlast.Expr{b, d, a, c}, sorted)
}

func TestFoldJoins_BuildsLeftDeepChainFromIndependentSteps(t *testing.T) {
	joins := []*sqlast.Join{
		{Left: &sqlast.Table{Name: "orders"}, Right: &sqlast.Table{Name: "customers"}, Kind: sqlast.JoinLeft},
		{Left: &sqlast.Table{Name: "orders"}, Right: &sqlast.Table{Name: "products"}, Kind: sqlast.JoinLeft},
	}
	from := foldJoins(joins)
	outer, ok := from.(*sqlast.Join)
	require.True(t, ok)
	rightTbl, ok := outer.Right.(*sqlast.Table)
	require.True(t, ok)
	require.Equal(t, "products", rightTbl.Name)
	inner, ok := outer.Left.(*sqlast.Join)
	require.True(t, ok)
	innerRight, ok := inner.Right.(*sqlast.Table)
	require.True(t, ok)
	require.Equal(t, "customers", innerRight.Name)
}
