package batch

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DiscoverVideos walks root recursively and returns files matching the
// given extensions, sorted lexicographically for deterministic order.
// Hidden directories are pruned.
func DiscoverVideos(root string, extensions []string) ([]string, error) {
	wanted := extensionSet(extensions)
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if wanted[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// DiscoverAudio lists matching audio files directly inside dir without
// descending into subdirectories, so previous output directories are never
// re-processed. Files already carrying skipPrefix are excluded.
func DiscoverAudio(dir string, extensions []string, skipPrefix string) ([]string, error) {
	wanted := extensionSet(extensions)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if skipPrefix != "" && strings.HasPrefix(name, skipPrefix) {
			continue
		}
		if wanted[strings.ToLower(filepath.Ext(name))] {
			files = append(files, filepath.Join(dir, name))
		}
	}
	sort.Strings(files)
	return files, nil
}

func extensionSet(extensions []string) map[string]bool {
	set := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = true
	}
	return set
}
