//go:build targ

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/akedrou/textdiff"
	"github.com/toejough/go-reorder"
	"github.com/toejough/targ"
	"github.com/toejough/targ/file"
	"github.com/toejough/targ/sh"
)

// Build builds the local spygen binary.
func Build() error {
	fmt.Println("Building spygen...")

	if err := os.MkdirAll("bin", 0o755); err != nil {
		return fmt.Errorf("failed to create bin directory: %w", err)
	}

	return sh.Run("go", "build", "-o", "bin/spygen", "./spygen")
}

// Check runs all checks & fixes on the code, in order of correctness.
func Check() error {
	fmt.Println("Checking...")

	return targ.Deps(
		Tidy,          // clean up the module dependencies
		FixImports,    // fix imports to remove unused ones
		CheckCoverage, // does our code work?
		ReorderDecls,  // linter will yell about declaration order if not correct
		Lint,
	)
}

// CheckCoverage checks each package's least-covered function against that package's floor.
func CheckCoverage() error {
	fmt.Println("Checking coverage...")

	if err := targ.Deps(Test); err != nil {
		return err
	}

	out, err := output("go", "tool", "cover", "-func=coverage.out")
	if err != nil {
		return err
	}

	packages, err := packageCoverage(out)
	if err != nil {
		return err
	}

	var failures []string

	for _, pkg := range packages {
		floor := floorFor(pkg.path)
		fmt.Printf("%-50s %3d funcs, lowest %5.1f%% (%s), floor %.0f%%\n",
			pkg.path, pkg.funcs, pkg.lowest.percent, pkg.lowest.name, floor)

		if pkg.lowest.percent < floor {
			failures = append(failures, fmt.Sprintf("%s: %s at %.1f%%", pkg.path, pkg.lowest.name, pkg.lowest.percent))
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("%w:\n  %s", errCoverageBelowFloor, strings.Join(failures, "\n  "))
	}

	return nil
}

// CheckForFail runs all checks on the code for determining whether any fail.
func CheckForFail() error {
	fmt.Println("Checking...")

	// Checks from fastest to slowest
	return targ.Deps(
		ReorderDeclsCheck,
		LintForFail,
		TestForFail,
		CheckCoverage,
	)
}

// Clean cleans up the dev env.
func Clean() {
	fmt.Println("Cleaning...")
	os.Remove("coverage.out")
	os.RemoveAll("bin")
}

// FixImports fixes all imports in the codebase.
func FixImports() error {
	fmt.Println("Fixing imports...")
	return sh.Run("goimports", "-w", ".")
}

// Generate runs go generate on all packages using the locally-built spygen binary.
func Generate() error {
	fmt.Println("Generating...")

	if err := targ.Deps(Build); err != nil {
		return err
	}

	binDir, err := filepath.Abs("bin")
	if err != nil {
		return fmt.Errorf("failed to get absolute path for bin: %w", err)
	}

	cmd := exec.Command("go", "generate", "./...")
	cmd.Env = append(os.Environ(), "PATH="+binDir+string(filepath.ListSeparator)+os.Getenv("PATH"))
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}

// Lint lints the codebase.
func Lint() error {
	fmt.Println("Linting...")
	return sh.Run("golangci-lint", "run")
}

// LintForFail lints the codebase purely to find out whether anything fails.
func LintForFail() error {
	fmt.Println("Linting to check for overall pass/fail...")

	return sh.Run(
		"golangci-lint", "run",
		"--fix=false",
		"--max-issues-per-linter=1",
		"--max-same-issues=1",
	)
}

// Mutate runs the mutation tests.
func Mutate() error {
	fmt.Println("Running mutation tests...")

	if err := targ.Deps(TestForFail); err != nil {
		return err
	}

	return sh.Run(
		"go",
		"test",
		"-timeout=6000s",
		"-tags=mutation",
		"-ooze.v",
		"./dev/...",
		"-run=TestMutation",
	)
}

// ReorderDecls reorders declarations in Go files per conventions.
func ReorderDecls() error {
	fmt.Println("Reordering declarations...")

	changes, err := reorderSources()
	if err != nil {
		return err
	}

	for _, change := range changes {
		err = os.WriteFile(change.path, []byte(change.reordered), 0o600)
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", change.path, err)
		}

		fmt.Printf("  Reordered: %s\n", change.path)
	}

	fmt.Printf("Reordered %d file(s).\n", len(changes))

	return nil
}

// ReorderDeclsCheck reports, with a diff, every file whose declarations are out of order.
func ReorderDeclsCheck() error {
	fmt.Println("Checking declaration order...")

	changes, err := reorderSources()
	if err != nil {
		return err
	}

	for _, change := range changes {
		fmt.Printf("\n%s\n", textdiff.Unified(change.path+" (current)", change.path+" (reordered)",
			change.current, change.reordered))
	}

	if len(changes) > 0 {
		return fmt.Errorf("%d file(s) need reordering; run 'targ reorder-decls'", len(changes))
	}

	fmt.Println("All files are correctly ordered.")

	return nil
}

// Test runs the unit tests.
func Test() error {
	fmt.Println("Running unit tests...")

	if err := targ.Deps(Generate); err != nil {
		return err
	}

	// Use -count=1 to disable caching so coverage is regenerated
	return sh.Run(
		"go",
		"test",
		"-timeout=2m",
		"-race",
		"-count=1",
		"-coverprofile=coverage.out",
		"-coverpkg=./...",
		"-cover",
		"./...",
	)
}

// TestForFail runs the unit tests purely to find out whether any fail.
func TestForFail() error {
	fmt.Println("Running unit tests for overall pass/fail...")

	if err := targ.Deps(Generate); err != nil {
		return err
	}

	return sh.Run("go", "test", "-timeout=30s", "./...", "-failfast")
}

// Tidy tidies up go.mod.
func Tidy() error {
	fmt.Println("Tidying go.mod...")
	return sh.Run("go", "mod", "tidy")
}

// Watch re-runs Check whenever files change.
func Watch(ctx context.Context) error {
	fmt.Println("Watching...")

	return file.Watch(ctx, []string{"**/*.go", "**/*.toml"}, file.WatchOptions{}, func(changes file.ChangeSet) error {
		if !hasRelevantChanges(changes) {
			return nil
		}

		fmt.Println("Change detected...")

		targ.ResetDeps() // Clear execution cache so targets run again

		err := Check()
		if err != nil {
			fmt.Println("continuing to watch after check failure (see errors above)")
		} else {
			fmt.Println("continuing to watch after all checks passed!")
		}

		return nil // Don't stop watching on error
	})
}

const modulePath = "github.com/toejough/impspy"

var (
	//nolint:gochecknoglobals // Minimum function coverage; the longest matching package prefix wins
	coverageFloors = map[string]float64{
		modulePath:                    80,
		modulePath + "/internal/core": 90,
		modulePath + "/match":         90,
	}
	errCoverageBelowFloor = errors.New("function coverage below package floor")
	errNoCoverage         = errors.New("no coverage lines found")
)

type funcCoverage struct {
	name    string
	percent float64
}

type pkgCoverage struct {
	path   string
	funcs  int
	lowest funcCoverage
}

type reorderChange struct {
	path      string
	current   string
	reordered string
}

// floorFor returns the coverage floor of the longest configured prefix of pkgPath.
func floorFor(pkgPath string) float64 {
	best, floor := "", 0.0

	for prefix, value := range coverageFloors {
		if (pkgPath == prefix || strings.HasPrefix(pkgPath, prefix+"/")) && len(prefix) > len(best) {
			best, floor = prefix, value
		}
	}

	return floor
}

// hasRelevantChanges returns true if the changeset contains files we care about.
func hasRelevantChanges(changes file.ChangeSet) bool {
	allFiles := append(append(changes.Added, changes.Removed...), changes.Modified...)

	for _, f := range allFiles {
		if strings.Contains(f, "generated_") || strings.HasSuffix(f, "coverage.out") {
			continue
		}

		return true
	}

	return false
}

func isGeneratedFile(path string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	buf := make([]byte, 200)

	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return bytes.Contains(buf[:n], []byte("Code generated")), nil
}

// output runs a command and captures stdout only (stderr goes to os.Stderr).
func output(command string, args ...string) (string, error) {
	buf := &bytes.Buffer{}
	cmd := exec.Command(command, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = buf
	cmd.Stderr = os.Stderr
	err := cmd.Run()

	return strings.TrimSuffix(buf.String(), "\n"), err
}

// packageCoverage groups `go tool cover -func` output by package, skipping
// generated code, main packages and the total line. Packages are sorted by path.
func packageCoverage(coverFunc string) ([]pkgCoverage, error) {
	byPath := map[string]*pkgCoverage{}

	for _, line := range strings.Split(coverFunc, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 || fields[0] == "total:" {
			continue
		}

		location := strings.SplitN(fields[0], ":", 2)[0]
		if strings.Contains(location, "generated_") || strings.HasSuffix(location, "/main.go") {
			continue
		}

		percent, err := strconv.ParseFloat(strings.TrimSuffix(fields[len(fields)-1], "%"), 64)
		if err != nil {
			return nil, fmt.Errorf("bad coverage line %q: %w", line, err)
		}

		pkgPath := path.Dir(location)
		current := funcCoverage{name: fields[1], percent: percent}

		pkg, ok := byPath[pkgPath]
		if !ok {
			byPath[pkgPath] = &pkgCoverage{path: pkgPath, funcs: 1, lowest: current}

			continue
		}

		pkg.funcs++
		if current.percent < pkg.lowest.percent {
			pkg.lowest = current
		}
	}

	if len(byPath) == 0 {
		return nil, errNoCoverage
	}

	packages := make([]pkgCoverage, 0, len(byPath))
	for _, pkg := range byPath {
		packages = append(packages, *pkg)
	}

	slices.SortFunc(packages, func(a, b pkgCoverage) int {
		return strings.Compare(a.path, b.path)
	})

	return packages, nil
}

// reorderSources returns the hand-written files whose declarations go-reorder would move.
func reorderSources() ([]reorderChange, error) {
	files, err := sourceFiles()
	if err != nil {
		return nil, err
	}

	var changes []reorderChange

	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}

		reordered, err := reorder.Source(string(content))
		if err != nil {
			fmt.Printf("Warning: failed to reorder %s: %v\n", file, err)

			continue
		}

		if string(content) != reordered {
			changes = append(changes, reorderChange{path: file, current: string(content), reordered: reordered})
		}
	}

	return changes, nil
}

// sourceFiles lists the hand-written Go files subject to declaration ordering.
func sourceFiles() ([]string, error) {
	files := []string{}

	err := filepath.WalkDir(".", func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("unable to walk %s: %w", path, err)
		}

		name := entry.Name()
		if entry.IsDir() {
			if path != "." && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "vendor") {
				return filepath.SkipDir
			}

			return nil
		}

		if filepath.Ext(path) != ".go" || strings.HasPrefix(name, "generated_") {
			return nil
		}

		isGenerated, err := isGeneratedFile(path)
		if err != nil {
			return err
		}

		if !isGenerated {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find Go files: %w", err)
	}

	return files, nil
}
