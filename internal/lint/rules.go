package lint

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rkddus222/smqc/internal/ddlcatalog"
	"github.com/rkddus222/smqc/internal/manifest"
)

const defaultSimilarityThreshold = 0.6

// Lint loads baseDir the lenient way (manifest.LoadRaw) and runs every
// rule non-fatally, returning a sorted Report. Every file that cannot
// be read or parsed becomes its own SEM002 violation rather than an
// error, so callers always get a report to render; a missing
// sources.yml, semantic_models directory or base directory is not
// reported at all. Equivalent to LintWithThreshold(baseDir, 0.6).
func Lint(baseDir string) (*Report, error) {
	return LintWithThreshold(baseDir, defaultSimilarityThreshold)
}

// LintWithThreshold runs the same checks as Lint, but accepts the
// similarity threshold SEM014's did-you-mean suggestion requires before
// treating an unknown identifier as a likely typo. The CLI's lint command
// passes its own flag value here; sqlcfg.Config.SimilarityThreshold is
// not read by this package.
func LintWithThreshold(baseDir string, threshold float64) (*Report, error) {
	m, loadErrs := manifest.LoadRaw(baseDir)

	var vs []Violation
	for _, err := range loadErrs {
		vs = append(vs, Violation{File: baseDir, Line: 1, RuleID: "SEM002", Severity: SeverityError, Message: err.Error()})
	}

	vs = append(vs, lintModels(m)...)
	vs = append(vs, lintMetrics(m, threshold)...)
	vs = append(vs, lintFilenames(m)...)
	vs = append(vs, lintOrphanForeignEntities(m)...)
	vs = append(vs, lintUnusedDDLColumns(baseDir, m)...)

	return newReport(vs), nil
}

func lintModels(m *manifest.Manifest) []Violation {
	var vs []Violation
	seenModel := map[string]bool{}

	for _, sm := range m.SemanticModels {
		if sm.Name == "" {
			vs = append(vs, Violation{File: sm.File, Line: sm.Line, RuleID: "SEM002", Severity: SeverityError, Message: "semantic model missing required field 'name'"})
			continue
		}
		if sm.NodeRelation == "" {
			vs = append(vs, Violation{File: sm.File, Line: sm.Line, RuleID: "SEM002", Severity: SeverityError, Message: "model " + sm.Name + " missing required field 'node_relation'"})
		} else if _, ok := manifest.ParseSourceRef(sm.NodeRelation); !ok {
			vs = append(vs, Violation{File: sm.File, Line: sm.Line, RuleID: "SEM005", Severity: SeverityError, Message: "model " + sm.Name + " has invalid node_relation " + sm.NodeRelation})
		}
		if seenModel[sm.Name] {
			vs = append(vs, Violation{File: sm.File, Line: sm.Line, RuleID: "SEM006", Severity: SeverityError, Message: "duplicate semantic model name " + sm.Name})
		}
		seenModel[sm.Name] = true

		names := map[string]string{}
		for _, e := range sm.Entities {
			if e.Name == "" {
				vs = append(vs, Violation{File: sm.File, Line: e.Line, RuleID: "SEM007", Severity: SeverityError, Message: "model " + sm.Name + " has an entity with no name"})
				continue
			}
			if e.Type != manifest.EntityPrimary && e.Type != manifest.EntityForeign {
				vs = append(vs, Violation{File: sm.File, Line: e.Line, RuleID: "SEM007", Severity: SeverityError, Message: "entity " + e.Name + " has invalid type " + string(e.Type)})
			}
			recordCollision(&vs, sm.File, e.Line, sm.Name, e.Name, "entity", names)
		}
		for _, d := range sm.Dimensions {
			if d.Name == "" {
				vs = append(vs, Violation{File: sm.File, Line: d.Line, RuleID: "SEM008", Severity: SeverityError, Message: "model " + sm.Name + " has a dimension with no name"})
				continue
			}
			if !d.Type.Valid() {
				vs = append(vs, Violation{File: sm.File, Line: d.Line, RuleID: "SEM008", Severity: SeverityError, Message: "dimension " + d.Name + " has invalid type " + string(d.Type)})
			}
			recordCollision(&vs, sm.File, d.Line, sm.Name, d.Name, "dimension", names)
		}
		for _, ms := range sm.Measures {
			if ms.Name == "" {
				vs = append(vs, Violation{File: sm.File, Line: ms.Line, RuleID: "SEM009", Severity: SeverityError, Message: "model " + sm.Name + " has a measure with no name"})
				continue
			}
			if !ms.Type.Valid() {
				vs = append(vs, Violation{File: sm.File, Line: ms.Line, RuleID: "SEM009", Severity: SeverityError, Message: "measure " + ms.Name + " has invalid type " + string(ms.Type)})
			}
			if !ms.Agg.Valid() {
				vs = append(vs, Violation{File: sm.File, Line: ms.Line, RuleID: "SEM009", Severity: SeverityError, Message: "measure " + ms.Name + " has invalid agg " + string(ms.Agg)})
			}
			recordCollision(&vs, sm.File, ms.Line, sm.Name, ms.Name, "measure", names)
		}

		if sm.PrimaryEntity != "" {
			if _, ok := sm.Entity(sm.PrimaryEntity); !ok {
				vs = append(vs, Violation{File: sm.File, Line: sm.Line, RuleID: "SEM013", Severity: SeverityError, Message: "model " + sm.Name + " declares unknown primary_entity " + sm.PrimaryEntity})
			}
		}
	}
	return vs
}

func recordCollision(vs *[]Violation, file string, line int, model, name, kind string, names map[string]string) {
	if prior, dup := names[name]; dup {
		*vs = append(*vs, Violation{File: file, Line: line, RuleID: "SEM012", Severity: SeverityError,
			Message: "model " + model + " has colliding names: " + kind + " " + name + " collides with " + prior})
		return
	}
	names[name] = kind
}

func lintMetrics(m *manifest.Manifest, threshold float64) []Violation {
	var vs []Violation
	seen := map[string]bool{}

	allNames := candidateIdentifiers(m)

	for _, met := range m.Metrics {
		if met.Name == "" {
			vs = append(vs, Violation{File: met.File, Line: met.Line, RuleID: "SEM021", Severity: SeverityError, Message: "metric missing required field 'name'"})
			continue
		}
		if seen[met.Name] {
			vs = append(vs, Violation{File: met.File, Line: met.Line, RuleID: "SEM021", Severity: SeverityError, Message: "duplicate metric name " + met.Name})
		}
		seen[met.Name] = true
		if !met.MetricType.Valid() {
			vs = append(vs, Violation{File: met.File, Line: met.Line, RuleID: "SEM021", Severity: SeverityError, Message: "metric " + met.Name + " has invalid type " + string(met.MetricType)})
		}
		if strings.TrimSpace(met.Expr) == "" {
			vs = append(vs, Violation{File: met.File, Line: met.Line, RuleID: "SEM021", Severity: SeverityError, Message: "metric " + met.Name + " has empty expr"})
			continue
		}
		for _, tok := range identifierTokens(met.Expr) {
			if allNames[tok] {
				continue
			}
			if suggestion, ok := didYouMean(tok, allNames, threshold); ok {
				vs = append(vs, Violation{File: met.File, Line: met.Line, RuleID: "SEM014", Severity: SeverityWarning,
					Message: "metric " + met.Name + " references unknown identifier " + tok + ", did you mean " + suggestion + "?"})
			} else {
				vs = append(vs, Violation{File: met.File, Line: met.Line, RuleID: "SEM014", Severity: SeverityWarning,
					Message: "metric " + met.Name + " references unknown identifier " + tok})
			}
		}
	}
	return vs
}

// candidateIdentifiers is the set of every measure and metric name in
// the manifest, the universe SEM014 checks metric exprs against.
func candidateIdentifiers(m *manifest.Manifest) map[string]bool {
	out := map[string]bool{}
	for _, sm := range m.SemanticModels {
		for _, ms := range sm.Measures {
			out[ms.Name] = true
		}
	}
	for _, met := range m.Metrics {
		out[met.Name] = true
	}
	return out
}

// identifierTokens extracts bare word tokens from a metric expr,
// skipping arithmetic operators and numeric literals.
func identifierTokens(expr string) []string {
	var toks []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() == 0 {
			return
		}
		tok := cur.String()
		cur.Reset()
		if isNumeric(tok) {
			return
		}
		toks = append(toks, tok)
	}
	for _, r := range expr {
		switch {
		case r == '_' || r == '.' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			cur.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return toks
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	return true
}

// didYouMean finds the closest candidate to tok by a Levenshtein-derived
// similarity ratio, accepting matches at or above threshold.
func didYouMean(tok string, candidates map[string]bool, threshold float64) (string, bool) {
	best := ""
	bestRatio := 0.0
	for c := range candidates {
		r := similarityRatio(tok, c)
		if r > bestRatio {
			bestRatio = r
			best = c
		}
	}
	if bestRatio >= threshold {
		return best, true
	}
	return "", false
}

func similarityRatio(a, b string) float64 {
	dist := levenshtein(a, b)
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(dist)/float64(maxLen)
}

func levenshtein(a, b string) int {
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}
	prev := make([]int, lb+1)
	cur := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		cur[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := cur[j-1] + 1
			sub := prev[j-1] + cost
			m := del
			if ins < m {
				m = ins
			}
			if sub < m {
				m = sub
			}
			cur[j] = m
		}
		prev, cur = cur, prev
	}
	return prev[lb]
}

// lintFilenames flags SEM501: a semantic_models/*.yml file whose base
// name (minus extension) doesn't match the model name it defines.
func lintFilenames(m *manifest.Manifest) []Violation {
	var vs []Violation
	for _, sm := range m.SemanticModels {
		if sm.File == "" {
			continue
		}
		base := strings.TrimSuffix(filepath.Base(sm.File), filepath.Ext(sm.File))
		if base != sm.Name {
			vs = append(vs, Violation{File: sm.File, Line: sm.Line, RuleID: "SEM501", Severity: SeverityWarning,
				Message: "file name " + base + " does not match model name " + sm.Name})
		}
	}
	return vs
}

// lintOrphanForeignEntities flags SEM502: a foreign entity whose name
// matches no primary entity on any other model in the manifest, so the
// join planner can never route through it.
func lintOrphanForeignEntities(m *manifest.Manifest) []Violation {
	primaryNames := map[string]bool{}
	for _, sm := range m.SemanticModels {
		for _, e := range sm.Entities {
			if e.Type == manifest.EntityPrimary {
				primaryNames[e.Name] = true
			}
		}
	}

	var vs []Violation
	for _, sm := range m.SemanticModels {
		for _, e := range sm.Entities {
			if e.Type != manifest.EntityForeign {
				continue
			}
			if !primaryNames[e.Name] {
				vs = append(vs, Violation{File: sm.File, Line: e.Line, RuleID: "SEM502", Severity: SeverityWarning,
					Message: "model " + sm.Name + " foreign entity " + e.Name + " matches no primary entity in the manifest"})
			}
		}
	}
	return vs
}

// lintUnusedDDLColumns flags SEM600: a physical column present in
// ddl.sql for a model's source table that no dimension or measure expr
// ever references, via ddlcatalog.
func lintUnusedDDLColumns(baseDir string, m *manifest.Manifest) []Violation {
	data, err := os.ReadFile(filepath.Join(baseDir, "ddl.sql"))
	if err != nil {
		return nil
	}
	cat, err := ddlcatalog.ParseDDL(string(data))
	if err != nil {
		return nil
	}
	tables, err := cat.Tables()
	if err != nil {
		return nil
	}

	tableByName := map[string]ddlcatalog.Table{}
	for _, t := range tables {
		tableByName[t.Name] = t
	}

	var vs []Violation
	for _, sm := range m.SemanticModels {
		ref, ok := manifest.ParseSourceRef(sm.NodeRelation)
		if !ok {
			continue
		}
		bareName := ref
		if idx := strings.LastIndex(ref, "."); idx >= 0 {
			bareName = ref[idx+1:]
		}
		table, ok := tableByName[ref]
		if !ok {
			table, ok = tableByName[bareName]
		}
		if !ok {
			continue
		}

		used := map[string]bool{}
		for _, d := range sm.Dimensions {
			used[d.DimensionExpr()] = true
		}
		for _, ms := range sm.Measures {
			used[ms.MeasureExpr()] = true
		}

		for _, col := range table.Columns {
			if !used[col.Name] {
				vs = append(vs, Violation{File: sm.File, Line: sm.Line, RuleID: "SEM600", Severity: SeverityInfo,
					Message: "column " + col.Name + " in table " + ref + " is not referenced by model " + sm.Name})
			}
		}
	}
	return vs
}
