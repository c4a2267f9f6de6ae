// Package manifest models the semantic layer manifest: semantic models,
// their entities/dimensions/measures, global metrics, and the project
// configuration, assembled from a directory of YAML files. The DDL
// catalog (internal/ddlcatalog) is not read here.
package manifest

import "strings"

// EntityType distinguishes a primary entity (the model's grain) from a
// foreign entity (a join target).
type EntityType string

const (
	EntityPrimary EntityType = "primary"
	EntityForeign EntityType = "foreign"
)

// Entity declares a join key on a semantic model.
type Entity struct {
	Name string
	Type EntityType
	Expr string // optional; defaults to Name when empty
	Line int    // 1-based source line, for linter diagnostics
}

// ColumnType is the declared logical type of a dimension or measure.
type ColumnType string

const (
	TypeString  ColumnType = "string"
	TypeInteger ColumnType = "integer"
	TypeBigint  ColumnType = "bigint"
	TypeFloat   ColumnType = "float"
	TypeDecimal ColumnType = "decimal"
	TypeBoolean ColumnType = "boolean"
	TypeDate    ColumnType = "date"
	TypeTime    ColumnType = "time"
)

func (t ColumnType) Valid() bool {
	switch t {
	case TypeString, TypeInteger, TypeBigint, TypeFloat, TypeDecimal, TypeBoolean, TypeDate, TypeTime:
		return true
	}
	return false
}

// Dimension is a non-aggregated, group-by-able column on a semantic model.
type Dimension struct {
	Name  string
	Type  ColumnType
	Expr  string // optional; defaults to Name when empty
	Label string // optional; defaults to Name when empty
	Line  int
}

// AggType is the aggregation function a measure applies.
type AggType string

const (
	AggSum   AggType = "sum"
	AggCount AggType = "count"
	AggAvg   AggType = "avg"
	AggMin   AggType = "min"
	AggMax   AggType = "max"
)

func (a AggType) Valid() bool {
	switch a {
	case AggSum, AggCount, AggAvg, AggMin, AggMax:
		return true
	}
	return false
}

// Measure is an aggregatable column on a semantic model.
type Measure struct {
	Name  string
	Type  ColumnType
	Agg   AggType
	Expr  string // optional; defaults to Name when empty
	Label string // optional; defaults to Name when empty
	Line  int
}

// SemanticModel is one node_relation-backed model in the manifest.
type SemanticModel struct {
	Name          string
	NodeRelation  string // SOURCE('TABLE') reference, resolved via sources.yml
	Entities      []Entity
	Dimensions    []Dimension
	Measures      []Measure
	PrimaryEntity string // optional

	Physical SourceTable // resolved from NodeRelation via sources.yml; zero value if unresolved

	File string // source file, for linter diagnostics
	Line int     // line of the `name:` key
}

// MetricType enumerates the five metric expression shapes.
type MetricType string

const (
	MetricSimple     MetricType = "simple"
	MetricRatio      MetricType = "ratio"
	MetricDerived    MetricType = "derived"
	MetricConversion MetricType = "conversion"
	MetricCumulative MetricType = "cumulative"
)

func (t MetricType) Valid() bool {
	switch t {
	case MetricSimple, MetricRatio, MetricDerived, MetricConversion, MetricCumulative:
		return true
	}
	return false
}

// Metric is a globally-named, globally-unique derived or simple
// aggregation defined in terms of measures or other metrics.
type Metric struct {
	Name         string
	MetricType   MetricType
	DataType     ColumnType // optional declared data type, distinct from MetricType's simple/ratio/... classification
	Expr         string
	InputMeasure string // default measure reference for simple metrics
	Label        string
	Format       string

	File string
	Line int
}

// TimeSpine declares the project's canonical time-series join table.
// Parsed and retained but not consumed by any composer pass.
type TimeSpine struct {
	TableName     string
	PrimaryColumn string
	Grain         string
}

// ProjectConfiguration carries project-wide settings; currently only the
// optional time spine.
type ProjectConfiguration struct {
	TimeSpine *TimeSpine
}

// Manifest is the fully assembled, validated semantic layer: every
// semantic model, every global metric, and the project configuration.
// It is read-only after Assemble returns and may be shared across
// concurrent compiles.
type Manifest struct {
	SemanticModels []SemanticModel
	Metrics        []Metric
	Project        ProjectConfiguration

	modelByName  map[string]*SemanticModel
	metricByName map[string]*Metric
}

// Index builds the name lookup maps used by Model/MetricByName. Called
// once by Assemble; safe to call again if Manifest is constructed by
// hand (e.g. in tests).
func (m *Manifest) Index() {
	m.modelByName = make(map[string]*SemanticModel, len(m.SemanticModels))
	for i := range m.SemanticModels {
		m.modelByName[m.SemanticModels[i].Name] = &m.SemanticModels[i]
	}
	m.metricByName = make(map[string]*Metric, len(m.Metrics))
	for i := range m.Metrics {
		m.metricByName[m.Metrics[i].Name] = &m.Metrics[i]
	}
}

// Model looks up a semantic model by name.
func (m *Manifest) Model(name string) (*SemanticModel, bool) {
	if m.modelByName == nil {
		m.Index()
	}
	mod, ok := m.modelByName[name]
	return mod, ok
}

// MetricByName looks up a global metric by name.
func (m *Manifest) MetricByName(name string) (*Metric, bool) {
	if m.metricByName == nil {
		m.Index()
	}
	met, ok := m.metricByName[name]
	return met, ok
}

// Dimension looks up a dimension by name on a semantic model.
func (sm *SemanticModel) Dimension(name string) (*Dimension, bool) {
	for i := range sm.Dimensions {
		if sm.Dimensions[i].Name == name {
			return &sm.Dimensions[i], true
		}
	}
	return nil, false
}

// Measure looks up a measure by name on a semantic model.
func (sm *SemanticModel) Measure(name string) (*Measure, bool) {
	for i := range sm.Measures {
		if sm.Measures[i].Name == name {
			return &sm.Measures[i], true
		}
	}
	return nil, false
}

// Entity looks up an entity by name on a semantic model.
func (sm *SemanticModel) Entity(name string) (*Entity, bool) {
	for i := range sm.Entities {
		if sm.Entities[i].Name == name {
			return &sm.Entities[i], true
		}
	}
	return nil, false
}

// PhysicalTableName returns the resolved physical table name for sm,
// falling back to the bare table name embedded in NodeRelation when
// sources.yml didn't resolve one, and finally to the model name itself.
func (sm SemanticModel) PhysicalTableName() string {
	if sm.Physical.Table != "" {
		return sm.Physical.Table
	}
	if ref, ok := ParseSourceRef(sm.NodeRelation); ok {
		if idx := strings.LastIndex(ref, "."); idx >= 0 {
			return ref[idx+1:]
		}
		return ref
	}
	return sm.Name
}

// PhysicalTable returns the (database, schema, table) triple the SQL
// writer's FROM clause should use for sm.
func (sm SemanticModel) PhysicalTable() (database, schema, table string) {
	if sm.Physical.Table != "" {
		return sm.Physical.Database, sm.Physical.Schema, sm.Physical.Table
	}
	return "", "", sm.PhysicalTableName()
}

// EntityExpr returns the entity's join-key expression, defaulting to its
// name when Expr is unset.
func (e Entity) EntityExpr() string {
	if e.Expr != "" {
		return e.Expr
	}
	return e.Name
}

// DimensionExpr returns the dimension's expression, defaulting to its
// name when Expr is unset.
func (d Dimension) DimensionExpr() string {
	if d.Expr != "" {
		return d.Expr
	}
	return d.Name
}

// MeasureExpr returns the measure's expression, defaulting to its name
// when Expr is unset.
func (ms Measure) MeasureExpr() string {
	if ms.Expr != "" {
		return ms.Expr
	}
	return ms.Name
}

// DimensionLabel returns the dimension's declared label, defaulting to
// its name when Label is unset.
func (d Dimension) DimensionLabel() string {
	if d.Label != "" {
		return d.Label
	}
	return d.Name
}

// MeasureLabel returns the measure's declared label, defaulting to its
// name when Label is unset.
func (ms Measure) MeasureLabel() string {
	if ms.Label != "" {
		return ms.Label
	}
	return ms.Name
}
