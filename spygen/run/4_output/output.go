// Package output writes generated spy code next to the go:generate directive.
package output

import (
	"fmt"
	"go/parser"
	"go/token"
	"io"
	"os"
	"strings"

	"github.com/toejough/go-reorder"
)

// Writer interface for writing generated code.
type Writer interface {
	WriteFile(name string, data []byte, perm os.FileMode) error
}

// FileName returns generated_<spyName>.go, or generated_<spyName>_test.go when
// the directive lives in a test package or a _test.go file.
func FileName(spyName, pkgName, goFile string) string {
	isTestFile := strings.HasSuffix(pkgName, "_test") || strings.HasSuffix(goFile, "_test.go")
	if isTestFile {
		return "generated_" + spyName + "_test.go"
	}

	return "generated_" + spyName + ".go"
}

// Normalize orders declarations by the project's conventions.
// It returns code unchanged, with the reorder error, if the source cannot be reordered.
func Normalize(code string) (string, error) {
	// reorder panics on source it cannot decorate, so reject it up front.
	_, err := parser.ParseFile(token.NewFileSet(), "", code, parser.ParseComments)
	if err != nil {
		return code, fmt.Errorf("failed to parse generated code: %w", err)
	}

	reordered, err := reorder.Source(code)
	if err != nil {
		return code, fmt.Errorf("failed to reorder declarations: %w", err)
	}

	return reordered, nil
}

// WriteGeneratedCode normalizes code and writes it to filename.
func WriteGeneratedCode(code, filename string, fileWriter Writer, out io.Writer) error {
	const generatedFilePermissions = 0o600

	normalized, err := Normalize(code)
	if err != nil {
		// If reordering fails, warn but continue with the original code
		_, _ = fmt.Fprintf(out, "Warning: %s: %v\n", filename, err)
	}

	err = fileWriter.WriteFile(filename, []byte(normalized), generatedFilePermissions)
	if err != nil {
		return fmt.Errorf("error writing %s: %w", filename, err)
	}

	_, _ = fmt.Fprintf(out, "%s written successfully.\n", filename)

	return nil
}
