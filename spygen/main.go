// spygen generates typed spy objects for Go interfaces.
// Add `//go:generate spygen <Interface>` to a file in the package declaring the interface. The spy struct is named
// <Interface>Spy unless `--name` is given, and its SpyObject label defaults to the interface name with a lowercase
// first letter unless `--object` is given. Output goes to generated_<SpyName>.go, or generated_<SpyName>_test.go
// when the directive sits in a test file or test package.
package main

import (
	"fmt"
	"os"

	"github.com/dave/dst"
	"github.com/toejough/impspy/spygen/run"
	load "github.com/toejough/impspy/spygen/run/1_load"
)

func main() {
	err := run.Run(os.Args, os.Getenv, &realFileSystem{}, &realPackageLoader{}, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// realFileSystem implements run.FileSystem using the os package.
type realFileSystem struct{}

// WriteFile writes data to the file named by name.
func (fs *realFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	err := os.WriteFile(name, data, perm)
	if err != nil {
		return fmt.Errorf("failed to write file %s: %w", name, err)
	}

	return nil
}

// realPackageLoader implements run.PackageLoader with direct DST parsing.
type realPackageLoader struct{}

// Load parses the package in dir.
func (pl *realPackageLoader) Load(dir string) ([]*dst.File, error) {
	files, _, err := load.PackageDST(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load package in %q: %w", dir, err)
	}

	return files, nil
}
