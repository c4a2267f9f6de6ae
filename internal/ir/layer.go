// Package ir holds the per-layer intermediate representation the SMQ
// parser produces and the composer pipeline rewrites: one layer per
// involved semantic model (a projection layer), plus the synthetic
// aggregation ("agg") and derivation ("deriv") layers.
package ir

import "github.com/rkddus222/smqc/internal/sqlast"

// Kind distinguishes the three layer shapes a query can contain.
type Kind int

const (
	KindProjection Kind = iota
	KindAgg
	KindDeriv
)

// LayerID is the tagged-union key identifying one layer: a projection
// layer carries the semantic model name it projects from; agg and
// deriv are singletons.
type LayerID struct {
	Kind  Kind
	Model string // populated only when Kind == KindProjection
}

func Projection(model string) LayerID { return LayerID{Kind: KindProjection, Model: model} }

var Agg = LayerID{Kind: KindAgg}
var Deriv = LayerID{Kind: KindDeriv}

func (id LayerID) String() string {
	switch id.Kind {
	case KindAgg:
		return "agg"
	case KindDeriv:
		return "deriv"
	default:
		return id.Model
	}
}

// Layer is the mutable rewrite target for one layer of the query: its
// projected metrics/dimensions, its filter predicates, its group-by and
// order-by expressions, any joins it owns, and an optional row limit.
type Layer struct {
	ID      LayerID
	Metrics []sqlast.Expr
	Filters []sqlast.Expr
	Groups  []sqlast.Expr
	Orders  []*sqlast.Order
	Joins   []*sqlast.Join
	Limit   *int
}

func newLayer(id LayerID) *Layer { return &Layer{ID: id} }

// AddMetric appends e to the layer's projection list, deduping by
// structural equality, name, and alias per the per-layer append rule.
func (l *Layer) AddMetric(e sqlast.Expr) {
	l.Metrics = sqlast.AppendUnique(l.Metrics, e)
}

// AddFilter appends e to the layer's filter list with the same dedup rule.
func (l *Layer) AddFilter(e sqlast.Expr) {
	l.Filters = sqlast.AppendUnique(l.Filters, e)
}

// AddGroup appends e to the layer's GROUP BY list with the same dedup rule.
func (l *Layer) AddGroup(e sqlast.Expr) {
	l.Groups = sqlast.AppendUnique(l.Groups, e)
}

// Document is the full per-layer IR for one compile: a dense set of
// layers indexed by LayerID, built and rewritten in document order.
type Document struct {
	order []LayerID
	byID  map[LayerID]*Layer
}

// NewDocument returns an empty IR document.
func NewDocument() *Document {
	return &Document{byID: make(map[LayerID]*Layer)}
}

// Layer returns the layer for id, creating it (and recording its
// insertion order) on first access.
func (d *Document) Layer(id LayerID) *Layer {
	if l, ok := d.byID[id]; ok {
		return l
	}
	l := newLayer(id)
	d.byID[id] = l
	d.order = append(d.order, id)
	return l
}

// Has reports whether id has been created in this document.
func (d *Document) Has(id LayerID) bool {
	_, ok := d.byID[id]
	return ok
}

// ProjectionLayers returns every projection layer in the order it was
// first created (document order), which is also left-to-right SMQ
// clause order per the spec's determinism requirement.
func (d *Document) ProjectionLayers() []*Layer {
	var out []*Layer
	for _, id := range d.order {
		if id.Kind == KindProjection {
			out = append(out, d.byID[id])
		}
	}
	return out
}

// ProjectionLayerIDs returns the model names of every projection layer,
// in document order.
func (d *Document) ProjectionLayerIDs() []string {
	var out []string
	for _, l := range d.ProjectionLayers() {
		out = append(out, l.ID.Model)
	}
	return out
}

// Uppermost returns the Deriv layer if present, else the Agg layer.
// Matches the SQL writer's "uppermost layer" rule (spec.md §4.7).
func (d *Document) Uppermost() *Layer {
	if d.Has(Deriv) {
		return d.Layer(Deriv)
	}
	return d.Layer(Agg)
}
