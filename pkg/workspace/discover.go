package workspace

import (
	"os"
	"path/filepath"
	"strings"
)

// Discover walks the configured scan paths looking for .sv/threads.jsonl
// exports and returns the export paths found, in a deterministic order.
func Discover(cfg DiscoveryConfig) []string {
	var results []string
	for _, scanPath := range cfg.ScanPaths {
		maxDepth := cfg.MaxDepth
		if maxDepth <= 0 {
			maxDepth = 3
		}
		results = append(results, scanForExports(scanPath, maxDepth)...)
	}
	return results
}

// scanForExports walks a directory tree up to maxDepth levels deep,
// collecting directories that contain an .sv/threads.jsonl export.
func scanForExports(root string, maxDepth int) []string {
	root = expandHome(root)
	var results []string

	rootDepth := strings.Count(filepath.Clean(root), string(filepath.Separator))

	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return filepath.SkipDir
		}
		if !d.IsDir() {
			return nil
		}

		currentDepth := strings.Count(filepath.Clean(path), string(filepath.Separator)) - rootDepth
		if currentDepth > maxDepth {
			return filepath.SkipDir
		}

		// Skip hidden directories (except .sv itself, which we want)
		name := d.Name()
		if strings.HasPrefix(name, ".") && name != ".sv" && path != root {
			return filepath.SkipDir
		}

		export := filepath.Join(path, ".sv", "threads.jsonl")
		if info, err := os.Stat(export); err == nil && !info.IsDir() {
			results = append(results, export)
			return filepath.SkipDir // don't recurse into projects
		}
		return nil
	})

	return results
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
