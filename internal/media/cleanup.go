package media

import (
	"os"
	"path/filepath"
	"strings"
)

// RemoveResult records the outcome of one best-effort file removal.
type RemoveResult struct {
	Path    string
	Removed bool
	Err     error
}

// RemoveFiles deletes the given absolute paths, ignoring failures. After each
// removal the parent directory is pruned if it became empty, so per-transformer
// and per-inspection directories disappear with their last file. Pruning stops
// at the given root.
func RemoveFiles(root string, paths []string) []RemoveResult {
	results := make([]RemoveResult, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		res := RemoveResult{Path: p}
		if err := os.Remove(p); err != nil {
			if !os.IsNotExist(err) {
				res.Err = err
			}
		} else {
			res.Removed = true
			pruneEmptyParents(root, filepath.Dir(p))
		}
		results = append(results, res)
	}
	return results
}

func pruneEmptyParents(root, dir string) {
	root = filepath.Clean(root)
	for {
		dir = filepath.Clean(dir)
		if dir == root || !strings.HasPrefix(dir, root+string(os.PathSeparator)) {
			return
		}
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if err := os.Remove(dir); err != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}
