// Package loader finds the table definition files of a model tree and parses
// them into tables.
package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ThaylaOliveira/powerbi-model-manager/internal/tmdl"
)

// DefaultModelSuffix is the name suffix of the folder holding a model.
const DefaultModelSuffix = ".SemanticModel"

var (
	// ErrModelNotFound is returned when no model folder exists under a root.
	ErrModelNotFound = errors.New("semantic model folder not found")
	// ErrTablesNotFound is returned when a model folder has no definition folder.
	ErrTablesNotFound = errors.New("table definition folder not found")
)

// FindSemanticModelDir returns the first folder under root whose name ends
// with suffix, ignoring case. Folders are visited in lexical walk order.
// Root itself is returned when it matches and no folder below it does.
func FindSemanticModelDir(root, suffix string) (string, error) {
	if suffix == "" {
		suffix = DefaultModelSuffix
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s does not exist or is not a folder", ErrModelNotFound, root)
	}

	found := ""
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root || !d.IsDir() {
			return nil
		}
		if hasSuffixFold(d.Name(), suffix) {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("search %s: %w", root, err)
	}
	if found != "" {
		return found, nil
	}
	if hasSuffixFold(filepath.Base(filepath.Clean(root)), suffix) {
		return root, nil
	}
	return "", fmt.Errorf("%w: no *%s folder under %s", ErrModelNotFound, suffix, root)
}

// TablesDir returns definition/tables under modelDir when it exists, else
// definition.
func TablesDir(modelDir string) (string, error) {
	for _, dir := range []string{
		filepath.Join(modelDir, "definition", "tables"),
		filepath.Join(modelDir, "definition"),
	} {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir, nil
		}
	}
	return "", fmt.Errorf("%w: %s has no definition folder", ErrTablesNotFound, modelDir)
}

// ListTableFiles returns the table definition files directly inside dir,
// sorted by name ignoring case.
func ListTableFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.EqualFold(filepath.Ext(e.Name()), tmdl.FileExtension) {
			names = append(names, e.Name())
		}
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})

	files := make([]string, len(names))
	for i, name := range names {
		files[i] = filepath.Join(dir, name)
	}
	return files, nil
}

func hasSuffixFold(name, suffix string) bool {
	return len(name) >= len(suffix) && strings.EqualFold(name[len(name)-len(suffix):], suffix)
}
