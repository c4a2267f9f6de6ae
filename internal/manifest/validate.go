package manifest

import (
	"strings"
)

// Validate checks required fields, duplicate/overlapping names, enum
// values, and reference integrity across the assembled manifest,
// returning the first violation as an *Error. The linter runs the same
// checks non-fatally (see internal/lint); this is the fail-fast form
// used by Assemble.
func Validate(m *Manifest) error {
	seenModelNames := make(map[string]bool)
	seenMetricNames := make(map[string]bool)

	for _, sm := range m.SemanticModels {
		if sm.Name == "" {
			return ErrManifest("%s: semantic model missing required field 'name'", sm.File)
		}
		if sm.NodeRelation == "" {
			return ErrManifest("%s: semantic model %q missing required field 'node_relation'", sm.File, sm.Name)
		}
		if seenModelNames[sm.Name] {
			return ErrManifest("%s: duplicate semantic model name %q", sm.File, sm.Name)
		}
		seenModelNames[sm.Name] = true

		if _, ok := ParseSourceRef(sm.NodeRelation); !ok {
			return ErrManifest("%s: semantic model %q has invalid node_relation %q, expected SOURCE('...')", sm.File, sm.Name, sm.NodeRelation)
		}
		if sm.Physical == (SourceTable{}) {
			return ErrManifest("%s: semantic model %q node_relation %q names no table in sources.yml", sm.File, sm.Name, sm.NodeRelation)
		}

		names := make(map[string]string) // name -> kind, across entities/dims/measures
		for _, e := range sm.Entities {
			if e.Name == "" {
				return ErrManifest("%s: semantic model %q has an entity with no name", sm.File, sm.Name)
			}
			if e.Type != EntityPrimary && e.Type != EntityForeign {
				return ErrManifest("%s: semantic model %q entity %q has invalid type %q", sm.File, sm.Name, e.Name, e.Type)
			}
			if kind, dup := names[e.Name]; dup {
				return ErrManifest("%s: semantic model %q has colliding names: entity %q collides with %s", sm.File, sm.Name, e.Name, kind)
			}
			names[e.Name] = "entity"
		}
		for _, d := range sm.Dimensions {
			if d.Name == "" {
				return ErrManifest("%s: semantic model %q has a dimension with no name", sm.File, sm.Name)
			}
			if !d.Type.Valid() {
				return ErrManifest("%s: semantic model %q dimension %q has invalid type %q", sm.File, sm.Name, d.Name, d.Type)
			}
			if kind, dup := names[d.Name]; dup {
				return ErrManifest("%s: semantic model %q has colliding names: dimension %q collides with %s", sm.File, sm.Name, d.Name, kind)
			}
			names[d.Name] = "dimension"
		}
		for _, ms := range sm.Measures {
			if ms.Name == "" {
				return ErrManifest("%s: semantic model %q has a measure with no name", sm.File, sm.Name)
			}
			if !ms.Type.Valid() {
				return ErrManifest("%s: semantic model %q measure %q has invalid type %q", sm.File, sm.Name, ms.Name, ms.Type)
			}
			if !ms.Agg.Valid() {
				return ErrManifest("%s: semantic model %q measure %q has invalid agg %q", sm.File, sm.Name, ms.Name, ms.Agg)
			}
			if kind, dup := names[ms.Name]; dup {
				return ErrManifest("%s: semantic model %q has colliding names: measure %q collides with %s", sm.File, sm.Name, ms.Name, kind)
			}
			names[ms.Name] = "measure"
		}

		if sm.PrimaryEntity != "" {
			if _, ok := sm.Entity(sm.PrimaryEntity); !ok {
				return ErrManifest("%s: semantic model %q declares unknown primary_entity %q", sm.File, sm.Name, sm.PrimaryEntity)
			}
		}
	}

	for _, met := range m.Metrics {
		if met.Name == "" {
			return ErrManifest("%s: metric missing required field 'name'", met.File)
		}
		if seenMetricNames[met.Name] {
			return ErrManifest("%s: duplicate metric name %q", met.File, met.Name)
		}
		seenMetricNames[met.Name] = true
		if !met.MetricType.Valid() {
			return ErrManifest("%s: metric %q has invalid type %q", met.File, met.Name, met.MetricType)
		}
		if met.Expr == "" {
			return ErrManifest("%s: metric %q missing required field 'expr'", met.File, met.Name)
		}
		if err := validateMetricExprShape(met); err != nil {
			return err
		}
	}

	return nil
}

// validateMetricExprShape rejects a metric whose expr is empty or only
// whitespace. The expr is not parsed here, so its shape and the names it
// references are not checked.
func validateMetricExprShape(met Metric) error {
	expr := strings.TrimSpace(met.Expr)
	if expr == "" {
		return ErrManifest("%s: metric %q has empty expr", met.File, met.Name)
	}
	return nil
}
