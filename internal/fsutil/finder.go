// Package fsutil provides file system utility functions.
package fsutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/specialistvlad/gridflow/internal/ctxlog"
)

// FindFilesByExtension returns the files directly inside dir whose names end
// with the specified extension. Subdirectories are not searched. The result
// is sorted.
func FindFilesByExtension(dir string, extension string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), extension) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// ResolveScriptPath takes a path and returns the script files it denotes.
// A file must carry the extension and is returned as is. A directory yields
// the files with the extension directly inside it, sorted, so scripts kept in
// subdirectories are only loaded through include.
func ResolveScriptPath(ctx context.Context, path, extension string) ([]string, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Resolving script path.", "path", path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("script path not found: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("error accessing path %s: %w", path, err)
	}

	if !info.IsDir() {
		if filepath.Ext(path) != extension {
			return nil, fmt.Errorf("specified file is not a %s file: %s", extension, path)
		}
		return []string{path}, nil
	}

	logger.Debug("Path is a directory, scanning for script files.", "directory", path)
	files, err := FindFilesByExtension(path, extension)
	if err != nil {
		return nil, fmt.Errorf("error scanning directory %s: %w", path, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s files found in %s", extension, path)
	}
	return files, nil
}
