// Package run implements the main logic for the spygen tool in a testable way.
package run

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alexflint/go-arg"
	"github.com/dave/dst"
	detect "github.com/toejough/impspy/spygen/run/2_detect"
	generate "github.com/toejough/impspy/spygen/run/3_generate"
	output "github.com/toejough/impspy/spygen/run/4_output"
)

// FileSystem interface for writing generated files.
type FileSystem interface {
	WriteFile(name string, data []byte, perm os.FileMode) error
}

// PackageLoader loads the parsed Go files of a package directory.
type PackageLoader interface {
	Load(dir string) ([]*dst.File, error)
}

// Run executes the spygen tool logic. It takes command-line arguments, an environment variable getter, a FileSystem
// for writing, a PackageLoader for reading the current package, and a writer for progress output. On success it
// writes generated_<SpyName>.go (or _test.go) implementing a typed spy for the named interface.
func Run(args []string, getEnv func(string) string, fileSys FileSystem, pkgLoader PackageLoader, out io.Writer) error {
	parsed, err := parseArgs(args)
	if err != nil {
		return err
	}

	pkgName := getEnv("GOPACKAGE")
	if pkgName == "" {
		return fmt.Errorf("%w: GOPACKAGE is not set (run spygen through go generate)", errMissingEnv)
	}

	files, err := pkgLoader.Load(".")
	if err != nil {
		return fmt.Errorf("failed to load package %s: %w", pkgName, err)
	}

	iface, err := detect.FindInterface(packageFiles(files, pkgName), parsed.Interface)
	if err != nil {
		return err
	}

	spyName := parsed.Name
	if spyName == "" {
		spyName = parsed.Interface + "Spy"
	}

	code, err := generate.SpyCode(iface, generate.Info{
		PkgName:    pkgName,
		SpyName:    spyName,
		ObjectName: parsed.Object,
	})
	if err != nil {
		return err
	}

	filename := output.FileName(spyName, pkgName, getEnv("GOFILE"))

	return output.WriteGeneratedCode(code, filename, fileSys, out)
}

// unexported variables.
var (
	errMissingEnv = errors.New("missing environment")
)

// cliArgs defines the command-line arguments for the generator.
type cliArgs struct {
	Interface string `arg:"positional,required" help:"interface to spy on, declared in the current package"`
	Name      string `arg:"--name"              help:"name for the generated spy struct (defaults to <Interface>Spy)"`
	Object    string `arg:"--object"            help:"diagnostic label for the spy object (defaults to the interface name, lowercased)"`
}

// parseArgs parses command-line arguments into cliArgs.
func parseArgs(args []string) (cliArgs, error) {
	var parsed cliArgs

	parser, err := arg.NewParser(arg.Config{Program: "spygen"}, &parsed)
	if err != nil {
		return cliArgs{}, fmt.Errorf("failed to create argument parser: %w", err)
	}

	var cmdArgs []string
	if len(args) > 1 {
		cmdArgs = args[1:]
	}

	err = parser.Parse(cmdArgs)
	if err != nil {
		return cliArgs{}, fmt.Errorf("failed to parse arguments: %w", err)
	}

	return parsed, nil
}

// packageFiles keeps the files of package pkgName, dropping the other half of
// a directory that holds both pkg and pkg_test.
func packageFiles(files []*dst.File, pkgName string) []*dst.File {
	kept := make([]*dst.File, 0, len(files))

	for _, file := range files {
		if file.Name != nil && file.Name.Name == pkgName {
			kept = append(kept, file)
		}
	}

	return kept
}
