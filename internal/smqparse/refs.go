package smqparse

import (
	"strings"

	"github.com/rkddus222/smqc/internal/manifest"
)

// ref is a parsed textual expression: either a qualified MODEL__COLUMN
// reference to a dimension or measure, or a bare NAME reference to a
// metric.
type ref struct {
	Qualified bool
	Model     string // set when Qualified
	Column    string // set when Qualified
	Name      string // set when !Qualified
}

// parseRef splits a textual expression on the first "__" separator. A
// qualified ref names MODEL__COLUMN; anything without "__" is a bare
// metric-name reference.
func parseRef(text string) ref {
	if idx := strings.Index(text, "__"); idx >= 0 {
		return ref{Qualified: true, Model: text[:idx], Column: text[idx+2:]}
	}
	return ref{Name: text}
}

// resolveQualified looks up a qualified ref against the manifest,
// returning the owning model, and whichever of dimension/measure it
// names (exactly one will be non-nil on success).
func resolveQualified(m *manifest.Manifest, r ref) (*manifest.SemanticModel, *manifest.Dimension, *manifest.Measure, error) {
	model, ok := m.Model(r.Model)
	if !ok {
		return nil, nil, nil, errInput("unknown semantic model %q", r.Model)
	}
	if dim, ok := model.Dimension(r.Column); ok {
		return model, dim, nil, nil
	}
	if meas, ok := model.Measure(r.Column); ok {
		return model, nil, meas, nil
	}
	return nil, nil, nil, errInput("%s has no dimension or measure named %q", r.Model, r.Column)
}
