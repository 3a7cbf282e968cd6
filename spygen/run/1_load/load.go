// Package load reads the Go files of a package directory into DST form.
package load

import (
	"errors"
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"

	"github.com/dave/dst"
	"github.com/dave/dst/decorator"
)

// Exported variables.
var (
	ErrNoPackagesFound = errors.New("no packages found")
)

// PackageDST parses every .go file in dir, test files included, and returns
// the DST files with their FileSet. Files that fail to parse are skipped.
func PackageDST(dir string) ([]*dst.File, *token.FileSet, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	goFiles := make([]string, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".go") {
			continue
		}

		// Our own output is regenerated, never read back.
		if strings.HasPrefix(entry.Name(), "generated_") {
			continue
		}

		goFiles = append(goFiles, filepath.Join(dir, entry.Name()))
	}

	if len(goFiles) == 0 {
		return nil, nil, fmt.Errorf("%w: no .go files in %s", ErrNoPackagesFound, dir)
	}

	fset := token.NewFileSet()
	dec := decorator.NewDecorator(fset)

	files := make([]*dst.File, 0, len(goFiles))

	for _, goFile := range goFiles {
		// The parser hands back a partial AST on error; decorating it panics.
		astFile, err := parser.ParseFile(fset, goFile, nil, parser.ParseComments)
		if err != nil {
			continue
		}

		file, err := dec.DecorateFile(astFile)
		if err != nil {
			continue
		}

		files = append(files, file)
	}

	if len(files) == 0 {
		return nil, nil, fmt.Errorf("%w: failed to parse any .go files in %s", ErrNoPackagesFound, dir)
	}

	return files, fset, nil
}
