package manifest

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ContentHash computes a content hash over every .yml, .yaml and .sql
// file under baseDir (sources.yml, semantic_models/*.yml,
// project_configuration.yml, ddl.sql) in a fixed, path-sorted order.
// Callers can compare this hash across Assemble calls to skip
// re-assembling an unchanged manifest directory.
func ContentHash(baseDir string) (uint64, error) {
	var paths []string
	_ = filepath.Walk(baseDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".yml") || strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".sql") {
			paths = append(paths, path)
		}
		return nil
	})
	sort.Strings(paths)

	h := xxhash.New()
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return 0, ErrManifest("hash %s: %v", p, err)
		}
		_, _ = h.Write([]byte(p))
		_, _ = h.Write(data)
	}
	return h.Sum64(), nil
}
