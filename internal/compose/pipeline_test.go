package compose

import (
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
					{Name: "order_count", Type: manifest.TypeBigint, Agg: manifest.AggCount, Expr: "order_id"},
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
		Metrics: []manifest.Metric{
			{Name: "total_revenue", MetricType: manifest.MetricSimple, Expr: "order_total", InputMeasure: "order_total"},
			{Name: "avg_order_value", MetricType: manifest.MetricRatio, Expr: "total_revenue / order_count"},
		},
	}
	m.Index()
	return m
}

func TestPushDownAggFromDeriv_HoistsAndDedups(t *testing.T) {
	m := testManifest()
	doc := ir.NewDocument()
	agg := doc.Layer(ir.Agg)
	deriv := doc.Layer(ir.Deriv)

	sum := sqlast.NewAggregate("SUM", sqlast.NewColumn("", "order_total"))
	expr := sqlast.NewBinaryOp("/", sum, sqlast.NewAggregate("SUM", sqlast.NewColumn("", "order_total")))
	deriv.AddMetric(sqlast.NewAlias(expr, "self_ratio"))

	require.NoError(t, pushDownAggFromDeriv(doc, m))

	require.Len(t, agg.Metrics, 1, "both identical SUM(order_total) calls should collapse into a single hoisted alias")
	alias, ok := agg.Metrics[0].(*sqlast.Alias)
	require.True(t, ok)
	require.Equal(t, "order_total_합계", alias.Name)

	rewritten, ok := deriv.Metrics[0].(*sqlast.Alias)
	require.True(t, ok)
	bin, ok := rewritten.Inner.(*sqlast.BinaryOp)
	require.True(t, ok)
	lhs, ok := bin.LHS.(*sqlast.Column)
	require.True(t, ok)
	require.Equal(t, "order_total_합계", lhs.Name)
}

func TestPushDownAggFromDeriv_DistinctColumnsKeepDistinctAliases(t *testing.T) {
	m := testManifest()
	doc := ir.NewDocument()
	agg := doc.Layer(ir.Agg)
	deriv := doc.Layer(ir.Deriv)

	sumA := sqlast.NewAggregate("SUM", sqlast.NewColumn("", "order_total"))
	sumB := sqlast.NewAggregate("SUM", sqlast.NewColumn("", "order_count"))
	expr := sqlast.NewBinaryOp("/", sumA, sumB)
	deriv.AddMetric(sqlast.NewAlias(expr, "weighted"))

	require.NoError(t, pushDownAggFromDeriv(doc, m))

	require.Len(t, agg.Metrics, 2, "two distinct SUM columns hoist to two distinct aliases")
	first, ok := agg.Metrics[0].(*sqlast.Alias)
	require.True(t, ok)
	second, ok := agg.Metrics[1].(*sqlast.Alias)
	require.True(t, ok)
	require.Equal(t, "order_total_합계", first.Name)
	require.Equal(t, "order_count_합계", second.Name, "distinct source columns must not collapse into the same alias or counter suffix")
}

func TestMoveDimensionExprToDeriv_CopiesAggMetricsIntoDeriv(t *testing.T) {
	doc := ir.NewDocument()
	agg := doc.Layer(ir.Agg)
	agg.AddMetric(sqlast.NewAlias(sqlast.NewColumn("", "customer_region"), "customer_region"))
	doc.Layer(ir.Deriv) // touch it into existence

	moveDimensionExprToDeriv(doc)

	deriv := doc.Layer(ir.Deriv)
	require.Len(t, deriv.Metrics, 1)
	require.Equal(t, "customer_region", sqlast.NameOf(deriv.Metrics[0]))
}

func TestMoveDimensionExprToDeriv_NoopWithoutDeriv(t *testing.T) {
	doc := ir.NewDocument()
	agg := doc.Layer(ir.Agg)
	agg.AddMetric(sqlast.NewAlias(sqlast.NewColumn("", "customer_region"), "customer_region"))

	moveDimensionExprToDeriv(doc)

	require.False(t, doc.Has(ir.Deriv))
}

func TestMoveGroupsToMetrics_AppendsMissingGroupColumn(t *testing.T) {
	doc := ir.NewDocument()
	agg := doc.Layer(ir.Agg)
	agg.AddGroup(sqlast.NewColumn("", "customer_region"))

	moveGroupsToMetrics(doc)

	require.Len(t, agg.Metrics, 1)
	require.Equal(t, "customer_region", sqlast.NameOf(agg.Metrics[0]))
}

func TestIncludeOriginalMetrics_StripsModelPrefix(t *testing.T) {
	doc := ir.NewDocument()
	doc.Layer(ir.Agg)

	includeOriginalMetrics(doc, []string{"orders__order_total", "total_revenue"})

	uppermost := doc.Uppermost()
	require.Len(t, uppermost.Metrics, 2)
	require.Equal(t, "order_total", sqlast.NameOf(uppermost.Metrics[0]))
	require.Equal(t, "total_revenue", sqlast.NameOf(uppermost.Metrics[1]))
}

func TestReplaceAnonymousFuncs_PromotesRecognizedNames(t *testing.T) {
	doc := ir.NewDocument()
	agg := doc.Layer(ir.Agg)
	anon := &sqlast.Func{Name: "average", Kind: sqlast.FuncAnonymous, Args: []sqlast.Expr{sqlast.NewColumn("", "order_total")}}
	agg.AddMetric(sqlast.NewAlias(anon, "avg_total"))

	replaceAnonymousFuncs(doc)

	alias := agg.Metrics[0].(*sqlast.Alias)
	fn, ok := alias.Inner.(*sqlast.Func)
	require.True(t, ok)
	require.Equal(t, "AVG", fn.Name)
	require.Equal(t, sqlast.FuncAggregate, fn.Kind)
}

func TestReplaceAnonymousFuncs_LeavesUnrecognizedNamesAlone(t *testing.T) {
	doc := ir.NewDocument()
	agg := doc.Layer(ir.Agg)
	anon := &sqlast.Func{Name: "custom_udf", Kind: sqlast.FuncAnonymous, Args: nil}
	agg.AddMetric(sqlast.NewAlias(anon, "x"))

	replaceAnonymousFuncs(doc)

	alias := agg.Metrics[0].(*sqlast.Alias)
	fn := alias.Inner.(*sqlast.Func)
	require.Equal(t, sqlast.FuncAnonymous, fn.Kind)
}

func TestReplaceSubqueryFroms_ResolvesPhysicalTableAndStripsPrefix(t *testing.T) {
	m := testManifest()
	sm, _ := m.Model("customers")
	sm.Physical = manifest.SourceTable{Database: "analytics", Schema: "public", Table: "dim_customers"}
	m.Index()

	doc := ir.NewDocument()
	agg := doc.Layer(ir.Agg)
	sub := &sqlast.Subquery{Select: &sqlast.Select{
		List: []sqlast.Expr{sqlast.NewColumn("customers", "customer_id")},
		From: &sqlast.Table{Name: "customers"},
	}}
	agg.AddFilter(&sqlast.Predicate{
		Op:       0,
		Operands: []sqlast.Expr{sqlast.NewColumn("", "customer_id"), sub},
	})

	replaceSubqueryFroms(doc, m)

	tbl, ok := sub.Select.From.(*sqlast.Table)
	require.True(t, ok)
	require.Equal(t, "dim_customers", tbl.Name)
	require.Equal(t, "analytics", tbl.Database)

	col, ok := sub.Select.List[0].(*sqlast.Column)
	require.True(t, ok)
	require.Equal(t, "", col.Table)
	require.Equal(t, "customer_id", col.Name)
}

func TestCompleteDerivPrerequisites_SynthesizesMissingMeasureReference(t *testing.T) {
	m := testManifest()
	doc := ir.NewDocument()
	doc.Layer(ir.Agg)
	deriv := doc.Layer(ir.Deriv)
	deriv.AddFilter(sqlast.NewBinaryOp(">", sqlast.NewColumn("", "order_count"), sqlast.NewNumberLiteral("0")))

	require.NoError(t, completeDerivPrerequisites(doc, m))

	agg := doc.Layer(ir.Agg)
	require.True(t, layerHasName(agg, "order_count"))
	proj := doc.Layer(ir.Projection("orders"))
	require.True(t, layerHasName(proj, "order_count"))
}

func TestCompleteDerivPrerequisites_UnknownNameErrors(t *testing.T) {
	m := testManifest()
	doc := ir.NewDocument()
	doc.Layer(ir.Agg)
	deriv := doc.Layer(ir.Deriv)
	deriv.AddMetric(sqlast.NewColumn("", "not_a_real_thing"))

	err := completeDerivPrerequisites(doc, m)
	require.Error(t, err)
}

func TestCheckGroupSelectParity_AddsMissingGroupForNonAggregateMetric(t *testing.T) {
	doc := ir.NewDocument()
	agg := doc.Layer(ir.Agg)
	agg.AddMetric(sqlast.NewAlias(sqlast.NewColumn("", "customer_region"), "customer_region"))
	agg.AddMetric(sqlast.NewAlias(sqlast.NewAggregate("SUM", sqlast.NewColumn("", "order_total")), "revenue"))

	checkGroupSelectParity(doc)

	require.Len(t, agg.Groups, 1)
	col, ok := agg.Groups[0].(*sqlast.Column)
	require.True(t, ok)
	require.Equal(t, "customer_region", col.Name)
}

func TestCompleteAggPrerequisites_SynthesizesMissingQualifiedColumn(t *testing.T) {
	m := testManifest()
	doc := ir.NewDocument()
	agg := doc.Layer(ir.Agg)
	agg.AddGroup(sqlast.NewColumn("customers", "customer_region"))

	require.NoError(t, completeAggPrerequisites(doc, m))

	proj := doc.Layer(ir.Projection("customers"))
	require.True(t, layerHasName(proj, "customer_region"))
}

func TestCompleteAggPrerequisites_UnknownModelErrors(t *testing.T) {
	m := testManifest()
	doc := ir.NewDocument()
	agg := doc.Layer(ir.Agg)
	agg.AddGroup(sqlast.NewColumn("nope", "whatever"))

	err := completeAggPrerequisites(doc, m)
	require.Error(t, err)
}

func TestSynthesizeDefaultJoin_BuildsSpanningTreeAndSurfacesKeys(t *testing.T) {
	m := testManifest()
	doc := ir.NewDocument()
	doc.Layer(ir.Projection("orders"))
	doc.Layer(ir.Projection("customers"))
	doc.Layer(ir.Agg)

	require.NoError(t, synthesizeDefaultJoin(doc, m))

	agg := doc.Layer(ir.Agg)
	require.Len(t, agg.Joins, 1)
	require.True(t, layerHasName(doc.Layer(ir.Projection("orders")), "customer_id"))
	require.True(t, layerHasName(doc.Layer(ir.Projection("customers")), "customer_id"))
}

func TestSynthesizeDefaultJoin_SkipsWhenExplicitJoinPresent(t *testing.T) {
	m := testManifest()
	doc := ir.NewDocument()
	doc.Layer(ir.Projection("orders"))
	doc.Layer(ir.Projection("customers"))
	agg := doc.Layer(ir.Agg)
	agg.Joins = append(agg.Joins, &sqlast.Join{
		Left:  &sqlast.Table{Name: "orders"},
		Right: &sqlast.Table{Name: "customers"},
		On:    sqlast.NewBinaryOp("=", sqlast.NewColumn("orders", "customer_id"), sqlast.NewColumn("customers", "customer_id")),
		Kind:  sqlast.JoinInner,
	})

	require.NoError(t, synthesizeDefaultJoin(doc, m))
	require.Len(t, agg.Joins, 1)
	require.Equal(t, sqlast.JoinInner, agg.Joins[0].Kind)
}

func TestAliasUnaliasedUppermostExprs_WrapsCompoundExprOnly(t *testing.T) {
	doc := ir.NewDocument()
	agg := doc.Layer(ir.Agg)
	agg.Metrics = append(agg.Metrics,
		sqlast.NewColumn("", "customer_region"),
		sqlast.NewBinaryOp("/", sqlast.NewColumn("", "revenue"), sqlast.NewColumn("", "order_count")),
	)

	aliasUnaliasedUppermostExprs(doc, sqlast.DialectDuckDB)

	require.IsType(t, &sqlast.Column{}, agg.Metrics[0])
	alias, ok := agg.Metrics[1].(*sqlast.Alias)
	require.True(t, ok)
	require.NotEmpty(t, alias.Name)
}

func TestApplyDialectQuoting_MarksEveryColumn(t *testing.T) {
	doc := ir.NewDocument()
	agg := doc.Layer(ir.Agg)
	col := sqlast.NewColumn("orders", "order_total")
	agg.AddMetric(sqlast.NewAlias(col, "order_total"))

	applyDialectQuoting(doc, sqlast.DialectBigQuery)

	require.True(t, col.Quoted)
}

func TestRun_EndToEnd_DerivedRatioMetricOverTwoModels(t *testing.T) {
	m := testManifest()
	doc := ir.NewDocument()
	doc.Layer(ir.Projection("orders")).AddMetric(sqlast.NewAlias(sqlast.NewColumn("", "order_total"), "order_total"))
	doc.Layer(ir.Projection("customers")).AddMetric(sqlast.NewAlias(sqlast.NewColumn("", "customer_region"), "customer_region"))

	agg := doc.Layer(ir.Agg)
	agg.AddMetric(sqlast.NewColumn("", "customer_region"))
	agg.AddGroup(sqlast.NewColumn("", "customer_region"))
	agg.AddMetric(sqlast.NewAlias(sqlast.NewAggregate("SUM", sqlast.NewColumn("", "order_total")), "order_total"))
	agg.AddMetric(sqlast.NewAlias(sqlast.NewAggregate("COUNT", sqlast.NewColumn("", "order_id")), "order_count"))

	deriv := doc.Layer(ir.Deriv)
	deriv.AddMetric(sqlast.NewAlias(
		sqlast.NewBinaryOp("/", sqlast.NewColumn("", "order_total"), sqlast.NewColumn("", "order_count")),
		"avg_order_value",
	))

	out, err := Run(doc, Input{
		Manifest:       m,
		Dialect:        sqlast.DialectDuckDB,
		OriginalMetric: []string{"avg_order_value", "customers__customer_region"},
	})
	require.NoError(t, err)

	uppermost := out.Uppermost()
	require.True(t, out.Has(ir.Deriv), "uppermost should be deriv once a deriv layer exists")
	require.Same(t, deriv, uppermost)
	require.True(t, layerHasName(uppermost, "avg_order_value"))
	require.True(t, layerHasName(uppermost, "customer_region"))

	aggOut := out.Layer(ir.Agg)
	require.Len(t, aggOut.Joins, 1, "two distinct projection layers with no explicit join get one synthesized")
	require.True(t, layerHasName(doc.Layer(ir.Projection("orders")), "customer_id"))
}
