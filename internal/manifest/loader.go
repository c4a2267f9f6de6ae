package manifest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// yamlSemanticModel mirrors one semantic_models/*.yml document.
type yamlSemanticModel struct {
	Name          string `yaml:"name"`
	NodeRelation  string `yaml:"node_relation"`
	PrimaryEntity string `yaml:"primary_entity"`
	Entities      []struct {
		Name string `yaml:"name"`
		Type string `yaml:"type"`
		Expr string `yaml:"expr"`
	} `yaml:"entities"`
	Dimensions []struct {
		Name  string `yaml:"name"`
		Type  string `yaml:"type"`
		Expr  string `yaml:"expr"`
		Label string `yaml:"label"`
	} `yaml:"dimensions"`
	Measures []struct {
		Name  string `yaml:"name"`
		Type  string `yaml:"type"`
		Agg   string `yaml:"agg"`
		Expr  string `yaml:"expr"`
		Label string `yaml:"label"`
	} `yaml:"measures"`
	Metrics []struct {
		Name         string `yaml:"name"`
		Type         string `yaml:"type"`
		DataType     string `yaml:"data_type"`
		Expr         string `yaml:"expr"`
		InputMeasure string `yaml:"input_measure"`
		Label        string `yaml:"label"`
		Format       string `yaml:"format"`
	} `yaml:"metrics"`
}

// projectConfigFile mirrors the optional project_configuration.yml.
type projectConfigFile struct {
	TimeSpine *struct {
		TableName     string `yaml:"table_name"`
		PrimaryColumn string `yaml:"primary_column"`
		Grain         string `yaml:"grain"`
	} `yaml:"time_spine"`
}

// Assemble loads sources.yml, semantic_models/*.yml, and the optional
// project_configuration.yml from baseDir, resolves node_relation
// references against the source map, validates the result, and returns
// a read-only Manifest. All I/O happens before Assemble returns.
func Assemble(baseDir string) (*Manifest, error) {
	info, err := os.Stat(baseDir)
	if err != nil {
		return nil, ErrManifest(fmt.Sprintf("manifest directory: %v", err))
	}
	if !info.IsDir() {
		return nil, ErrManifest(fmt.Sprintf("%s is not a directory", baseDir))
	}

	srcIdx, err := loadSources(filepath.Join(baseDir, "sources.yml"))
	if err != nil {
		return nil, err
	}

	modelFiles, err := listYAMLFiles(filepath.Join(baseDir, "semantic_models"))
	if err != nil {
		return nil, err
	}

	m := &Manifest{}
	var lineErrs []string
	for _, path := range modelFiles {
		model, metrics, err := loadSemanticModelFile(path, srcIdx)
		if err != nil {
			lineErrs = append(lineErrs, err.Error())
			continue
		}
		m.SemanticModels = append(m.SemanticModels, *model)
		m.Metrics = append(m.Metrics, metrics...)
	}
	if len(lineErrs) > 0 {
		return nil, ErrManifest(strings.Join(lineErrs, "; "))
	}

	proj, err := loadProjectConfig(filepath.Join(baseDir, "project_configuration.yml"))
	if err != nil {
		return nil, err
	}
	m.Project = proj

	normalizeMetrics(m)
	m.Index()

	if err := Validate(m); err != nil {
		return nil, err
	}

	return m, nil
}

// LoadRaw loads sources.yml and every semantic_models/*.yml file from
// baseDir the same way Assemble does, but never fails fast: parse
// errors are collected and returned alongside whatever manifest could
// be built from the files that did parse. internal/lint uses this to
// keep linting the rest of the project when one file is broken.
func LoadRaw(baseDir string) (*Manifest, []error) {
	var errs []error

	srcIdx, err := loadSources(filepath.Join(baseDir, "sources.yml"))
	if err != nil {
		errs = append(errs, err)
		srcIdx = sourceIndex{}
	}

	modelFiles, err := listYAMLFiles(filepath.Join(baseDir, "semantic_models"))
	if err != nil {
		errs = append(errs, err)
	}

	m := &Manifest{}
	for _, path := range modelFiles {
		model, metrics, err := loadSemanticModelFile(path, srcIdx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		m.SemanticModels = append(m.SemanticModels, *model)
		m.Metrics = append(m.Metrics, metrics...)
	}

	proj, err := loadProjectConfig(filepath.Join(baseDir, "project_configuration.yml"))
	if err != nil {
		errs = append(errs, err)
	}
	m.Project = proj

	normalizeMetrics(m)
	m.Index()
	return m, errs
}

func loadSources(path string) (sourceIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return sourceIndex{}, nil
		}
		return nil, ErrManifest(fmt.Sprintf("read sources.yml: %v", err))
	}
	var f sourcesFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, ErrManifest(fmt.Sprintf("parse sources.yml: %v", err))
	}
	return f.index(), nil
}

func listYAMLFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, ErrManifest(fmt.Sprintf("read semantic_models: %v", err))
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), ".yml") || strings.HasSuffix(e.Name(), ".yaml") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func loadSemanticModelFile(path string, srcIdx sourceIndex) (*SemanticModel, []Metric, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, ErrManifest(fmt.Sprintf("read %s: %v", path, err))
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, ErrManifest(fmt.Sprintf("parse %s: %v", path, err))
	}

	var raw yamlSemanticModel
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		return nil, nil, ErrManifest(fmt.Sprintf("parse %s: %v", path, err))
	}
	if raw.Name == "" {
		return nil, nil, ErrManifest(fmt.Sprintf("%s: missing required field 'name'", path))
	}

	model := &SemanticModel{
		Name:          raw.Name,
		NodeRelation:  raw.NodeRelation,
		PrimaryEntity: raw.PrimaryEntity,
		File:          path,
		Line:          nameLine(&doc),
	}
	if ref, ok := ParseSourceRef(raw.NodeRelation); ok {
		if phys, ok := srcIdx[ref]; ok {
			model.Physical = phys
		}
	}
	for _, e := range raw.Entities {
		model.Entities = append(model.Entities, Entity{
			Name: e.Name, Type: EntityType(e.Type), Expr: e.Expr,
			Line: fieldLine(&doc, "entities", e.Name),
		})
	}
	for _, d := range raw.Dimensions {
		model.Dimensions = append(model.Dimensions, Dimension{
			Name: d.Name, Type: ColumnType(d.Type), Expr: d.Expr, Label: d.Label,
			Line: fieldLine(&doc, "dimensions", d.Name),
		})
	}
	for _, ms := range raw.Measures {
		model.Measures = append(model.Measures, Measure{
			Name: ms.Name, Type: ColumnType(ms.Type), Agg: AggType(ms.Agg), Expr: ms.Expr, Label: ms.Label,
			Line: fieldLine(&doc, "measures", ms.Name),
		})
	}

	var metrics []Metric
	for _, mt := range raw.Metrics {
		metrics = append(metrics, Metric{
			Name: mt.Name, MetricType: MetricType(mt.Type), DataType: ColumnType(mt.DataType), Expr: mt.Expr,
			InputMeasure: mt.InputMeasure, Label: mt.Label, Format: mt.Format,
			File: path, Line: fieldLine(&doc, "metrics", mt.Name),
		})
	}

	return model, metrics, nil
}

func loadProjectConfig(path string) (ProjectConfiguration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ProjectConfiguration{}, nil
		}
		return ProjectConfiguration{}, ErrManifest(fmt.Sprintf("read project_configuration.yml: %v", err))
	}
	var f projectConfigFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return ProjectConfiguration{}, ErrManifest(fmt.Sprintf("parse project_configuration.yml: %v", err))
	}
	var cfg ProjectConfiguration
	if f.TimeSpine != nil {
		cfg.TimeSpine = &TimeSpine{
			TableName:     f.TimeSpine.TableName,
			PrimaryColumn: f.TimeSpine.PrimaryColumn,
			Grain:         f.TimeSpine.Grain,
		}
	}
	return cfg, nil
}

// nameLine returns the 1-based line of the top-level `name:` key in a
// decoded YAML document, for linter/assembler diagnostics.
func nameLine(doc *yaml.Node) int {
	return fieldLine(doc, "", "")
}

// fieldLine walks doc looking for a mapping entry under the given
// top-level sequence key (e.g. "entities") whose "name" scalar equals
// name, and returns its line. When key is "" it returns the line of the
// document's top-level "name:" mapping entry instead.
func fieldLine(doc *yaml.Node, key, name string) int {
	if doc == nil || len(doc.Content) == 0 {
		return 1
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return 1
	}
	if key == "" {
		for i := 0; i+1 < len(root.Content); i += 2 {
			if root.Content[i].Value == "name" {
				return root.Content[i].Line
			}
		}
		return 1
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != key {
			continue
		}
		seq := root.Content[i+1]
		if seq.Kind != yaml.SequenceNode {
			return root.Content[i].Line
		}
		for _, item := range seq.Content {
			if item.Kind != yaml.MappingNode {
				continue
			}
			for j := 0; j+1 < len(item.Content); j += 2 {
				if item.Content[j].Value == "name" && item.Content[j+1].Value == name {
					return item.Content[j].Line
				}
			}
		}
		return root.Content[i].Line
	}
	return 1
}

// normalizeMetrics applies the spec's default-filling rules: simple
// metrics default InputMeasure from their expr when absent, and a
// metric's MetricType defaults to "simple" when the field is omitted.
func normalizeMetrics(m *Manifest) {
	for i := range m.Metrics {
		met := &m.Metrics[i]
		if met.MetricType == "" {
			met.MetricType = MetricSimple
		}
		if met.MetricType == MetricSimple && met.InputMeasure == "" {
			met.InputMeasure = met.Expr
		}
	}
}
