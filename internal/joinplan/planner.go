// Package joinplan builds the entity relationship graph across the
// semantic models a query touches and synthesizes the LEFT-JOIN spine
// connecting them when the SMQ supplied no explicit join.
package joinplan

import (
	"sort"

	"github.com/rkddus222/smqc/internal/manifest"
	"github.com/rkddus222/smqc/internal/sqlast"
)

// KeyPair is one (left expr, right expr) equality forming part of a
// join's ON clause. A join with more than one KeyPair is a composite
// key, AND-joined.
type KeyPair struct {
	LeftExpr  string
	RightExpr string
}

// Step is one edge of the synthesized join spine: LEFT JOIN Right ON
// the AND of KeyPairs, with Left already present in the FROM clause.
type Step struct {
	Left     string
	Right    string
	KeyPairs []KeyPair
}

// Plan is the ordered sequence of LEFT JOIN steps that connects every
// requested model, in BFS order from the first model.
type Plan struct {
	Steps []Step
}

// edge is one undirected connection between two models, discovered by
// matching a foreign entity on one side to a primary entity on the
// other (in either direction).
type edge struct {
	a, b     string
	keyPairs []KeyPair // always expressed as (a-side expr, b-side expr)
}

// BuildGraph constructs the undirected entity graph restricted to
// models, collapsing every matching entity-name pair between two models
// into a single (possibly composite) edge.
func BuildGraph(models []string, m *manifest.Manifest) map[string][]edge {
	set := make(map[string]bool, len(models))
	for _, n := range models {
		set[n] = true
	}

	pairEdges := make(map[[2]string]*edge)
	for _, aName := range models {
		a, ok := m.Model(aName)
		if !ok {
			continue
		}
		for _, bName := range models {
			if aName == bName || !set[bName] {
				continue
			}
			b, ok := m.Model(bName)
			if !ok {
				continue
			}
			for _, fk := range a.Entities {
				if fk.Type != manifest.EntityForeign {
					continue
				}
				for _, pk := range b.Entities {
					if pk.Type != manifest.EntityPrimary {
						continue
					}
					if pk.Name != fk.Name {
						continue
					}
					key := pairKey(aName, bName)
					e, ok := pairEdges[key]
					if !ok {
						e = &edge{a: key[0], b: key[1]}
						pairEdges[key] = e
					}
					if key[0] == aName {
						e.keyPairs = append(e.keyPairs, KeyPair{LeftExpr: fk.EntityExpr(), RightExpr: pk.EntityExpr()})
					} else {
						e.keyPairs = append(e.keyPairs, KeyPair{LeftExpr: pk.EntityExpr(), RightExpr: fk.EntityExpr()})
					}
				}
			}
		}
	}

	adj := make(map[string][]edge, len(models))
	for _, e := range pairEdges {
		adj[e.a] = append(adj[e.a], *e)
		adj[e.b] = append(adj[e.b], edge{a: e.b, b: e.a, keyPairs: swapAll(e.keyPairs)})
	}
	return adj
}

func swapAll(pairs []KeyPair) []KeyPair {
	out := make([]KeyPair, len(pairs))
	for i, p := range pairs {
		out[i] = KeyPair{LeftExpr: p.RightExpr, RightExpr: p.LeftExpr}
	}
	return out
}

func pairKey(a, b string) [2]string {
	if a < b {
		return [2]string{a, b}
	}
	return [2]string{b, a}
}

// ConnectedComponents partitions models into connected sets using the
// graph adj. Each component's model names are sorted; components appear
// in the order their first member appears in models.
func ConnectedComponents(models []string, adj map[string][]edge) [][]string {
	visited := make(map[string]bool, len(models))
	var components [][]string

	for _, start := range models {
		if visited[start] {
			continue
		}
		var comp []string
		queue := []string{start}
		visited[start] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			comp = append(comp, cur)
			for _, e := range adj[cur] {
				if !visited[e.b] {
					visited[e.b] = true
					queue = append(queue, e.b)
				}
			}
		}
		sort.Strings(comp)
		components = append(components, comp)
	}
	return components
}

// Build plans the LEFT-JOIN spanning tree for models against m via BFS
// from models[0]. It returns a *JoinError when models split across more
// than one connected component, listing every component's model set so
// the caller can split the SMQ and compile each partition separately.
func Build(models []string, m *manifest.Manifest) (*Plan, error) {
	if len(models) == 0 {
		return &Plan{}, nil
	}
	if len(models) == 1 {
		return &Plan{}, nil
	}

	adj := BuildGraph(models, m)
	components := ConnectedComponents(models, adj)
	if len(components) > 1 {
		return nil, &JoinError{ModelSets: components}
	}

	visited := map[string]bool{models[0]: true}
	queue := []string{models[0]}
	var steps []Step

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		edges := append([]edge{}, adj[cur]...)
		sort.Slice(edges, func(i, j int) bool { return edges[i].b < edges[j].b })

		for _, e := range edges {
			if visited[e.b] {
				continue
			}
			visited[e.b] = true
			steps = append(steps, Step{Left: cur, Right: e.b, KeyPairs: e.keyPairs})
			queue = append(queue, e.b)
		}
	}

	return &Plan{Steps: steps}, nil
}

// ToJoins renders every step of plan into a LEFT JOIN AST node, in
// step order, ready for direct inclusion in the agg layer's join list.
func (p *Plan) ToJoins() []*sqlast.Join {
	joins := make([]*sqlast.Join, 0, len(p.Steps))
	for _, s := range p.Steps {
		var on sqlast.Expr = keyPairPredicate(s.Left, s.Right, s.KeyPairs[0])
		for _, kp := range s.KeyPairs[1:] {
			on = sqlast.NewAnd(on, keyPairPredicate(s.Left, s.Right, kp))
		}
		joins = append(joins, &sqlast.Join{
			Left:  &sqlast.Table{Name: s.Left, Alias: s.Left},
			Right: &sqlast.Table{Name: s.Right, Alias: s.Right},
			On:    on,
			Kind:  sqlast.JoinLeft,
		})
	}
	return joins
}

func keyPairPredicate(left, right string, kp KeyPair) sqlast.Expr {
	return &sqlast.BinaryOp{
		Op:  "=",
		LHS: &sqlast.Column{Table: left, Name: kp.LeftExpr},
		RHS: &sqlast.Column{Table: right, Name: kp.RightExpr},
	}
}
