package hashdoc

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// CollectFiles expands paths into document files. Files are taken as given;
// directories are walked for files with a configured extension, skipping
// hidden directories.
func (h *Hashdoc) CollectFiles(paths []string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, root := range paths {
		info, err := h.Runtime.Stat(root, true)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", root, err)
		}
		if !info.IsDir() {
			add(root)
			continue
		}
		if err := h.walk(root, add); err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (h *Hashdoc) walk(dir string, add func(string)) error {
	entries, err := h.Runtime.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if e.IsDir() {
			if strings.HasPrefix(e.Name(), ".") {
				continue
			}
			if err := h.walk(path, add); err != nil {
				return err
			}
			continue
		}
		if h.Config.HasExtension(path) {
			add(path)
		}
	}
	return nil
}
