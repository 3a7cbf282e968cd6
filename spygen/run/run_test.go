package run_test

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/dave/dst"
	"github.com/dave/dst/decorator"
	. "github.com/onsi/gomega"
	"github.com/toejough/impspy/spygen/run"
	detect "github.com/toejough/impspy/spygen/run/2_detect"
)

const controllerSource = `package aeris

import "context"

//go:generate spygen Controller --name ControllerSpy

type Controller interface {
	Render(data any) error
	Close() error
}

type Fetcher interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}
`

const fetcherTestSource = `package aeris_test

import "context"

type Fetcher interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
	Logf(format string, args ...any)
}

type Controller interface {
	Render(data any) error
	Reset()
}

type Ticker interface {
	Tick() int
}
`

func TestRun_WritesSpyFile(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fs := newMockFileSystem()
	loader := newMockPackageLoader(t, controllerSource)

	var out bytes.Buffer

	err := run.Run(
		[]string{"spygen", "Controller", "--name", "ControllerSpy"},
		envFor("aeris", "controller.go"), fs, loader, &out,
	)
	g.Expect(err).NotTo(HaveOccurred())

	code, ok := fs.files["generated_ControllerSpy.go"]
	g.Expect(ok).To(BeTrue(), "expected generated_ControllerSpy.go to be written")
	g.Expect(string(code)).To(HavePrefix("// Code generated by spygen. DO NOT EDIT."))
	g.Expect(string(code)).To(ContainSubstring("package aeris"))
	g.Expect(string(code)).To(ContainSubstring(`impspy.New("controller", "Render", "Close")`))
	g.Expect(string(code)).To(ContainSubstring("func (impl controllerSpyImpl) Close() error {"))
	g.Expect(out.String()).To(Equal("generated_ControllerSpy.go written successfully.\n"))
}

func TestRun_DefaultsAndTestPackage(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fs := newMockFileSystem()
	loader := newMockPackageLoader(t, controllerSource, fetcherTestSource)

	err := run.Run(
		[]string{"spygen", "Fetcher", "--object", "remote"},
		envFor("aeris_test", "fetcher_test.go"), fs, loader, &bytes.Buffer{},
	)
	g.Expect(err).NotTo(HaveOccurred())

	code, ok := fs.files["generated_FetcherSpy_test.go"]
	g.Expect(ok).To(BeTrue(), "expected the spy to land in a test file")
	g.Expect(string(code)).To(ContainSubstring("package aeris_test"))
	g.Expect(string(code)).To(ContainSubstring(`"context"`))
	g.Expect(string(code)).To(ContainSubstring("type FetcherSpy struct {"))
	g.Expect(string(code)).To(ContainSubstring(`impspy.New("remote", "Fetch", "Logf")`))
	g.Expect(string(code)).To(ContainSubstring("impl.spy.Logf.Invoke(format, args)"))
}

func TestRun_UsesOnlyTheGeneratingPackage(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fs := newMockFileSystem()
	loader := newMockPackageLoader(t, fetcherTestSource, controllerSource)

	err := run.Run(
		[]string{"spygen", "Controller"},
		envFor("aeris", "controller.go"), fs, loader, &bytes.Buffer{},
	)
	g.Expect(err).NotTo(HaveOccurred())

	code := string(fs.files["generated_ControllerSpy.go"])
	g.Expect(code).To(ContainSubstring(`impspy.New("controller", "Render", "Close")`))
	g.Expect(code).NotTo(ContainSubstring("Reset"))
}

func TestRun_IgnoresExternalTestPackageInterfaces(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fs := newMockFileSystem()
	loader := newMockPackageLoader(t, controllerSource, fetcherTestSource)

	err := run.Run(
		[]string{"spygen", "Fetcher"},
		envFor("aeris", "controller.go"), fs, loader, &bytes.Buffer{},
	)
	g.Expect(err).NotTo(HaveOccurred())

	code := string(fs.files["generated_FetcherSpy.go"])
	g.Expect(code).To(ContainSubstring(`impspy.New("fetcher", "Fetch")`))
	g.Expect(code).NotTo(ContainSubstring("Logf"))

	err = run.Run(
		[]string{"spygen", "Ticker"},
		envFor("aeris", "controller.go"), newMockFileSystem(), loader, &bytes.Buffer{},
	)
	g.Expect(err).To(MatchError(detect.ErrInterfaceNotFound))
}

func TestRun_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		env     func(string) string
		loadErr error
		check   func(g Gomega, err error)
	}{
		{
			name: "missing interface argument",
			args: []string{"spygen"},
			env:  envFor("aeris", "controller.go"),
			check: func(g Gomega, err error) {
				g.Expect(err).To(MatchError(ContainSubstring("failed to parse arguments")))
			},
		},
		{
			name: "missing GOPACKAGE",
			args: []string{"spygen", "Controller"},
			env:  envFor("", ""),
			check: func(g Gomega, err error) {
				g.Expect(err).To(MatchError(ContainSubstring("GOPACKAGE is not set")))
			},
		},
		{
			name:    "load failure",
			args:    []string{"spygen", "Controller"},
			env:     envFor("aeris", "controller.go"),
			loadErr: errors.New("permission denied"),
			check: func(g Gomega, err error) {
				g.Expect(err).To(MatchError(ContainSubstring("permission denied")))
			},
		},
		{
			name: "unknown interface",
			args: []string{"spygen", "Renderer"},
			env:  envFor("aeris", "controller.go"),
			check: func(g Gomega, err error) {
				g.Expect(err).To(MatchError(detect.ErrInterfaceNotFound))
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			g := NewWithT(t)

			fs := newMockFileSystem()
			loader := newMockPackageLoader(t, controllerSource)
			loader.err = tc.loadErr

			err := run.Run(tc.args, tc.env, fs, loader, &bytes.Buffer{})
			tc.check(g, err)
			g.Expect(fs.files).To(BeEmpty())
		})
	}
}

func envFor(pkg, file string) func(string) string {
	return func(key string) string {
		switch key {
		case "GOPACKAGE":
			return pkg
		case "GOFILE":
			return file
		default:
			return ""
		}
	}
}

type mockFileSystem struct {
	files map[string][]byte
}

func newMockFileSystem() *mockFileSystem {
	return &mockFileSystem{files: make(map[string][]byte)}
}

func (fs *mockFileSystem) WriteFile(name string, data []byte, _ os.FileMode) error {
	fs.files[name] = data

	return nil
}

type mockPackageLoader struct {
	files []*dst.File
	err   error
}

func newMockPackageLoader(t *testing.T, sources ...string) *mockPackageLoader {
	t.Helper()

	loader := &mockPackageLoader{}

	for _, src := range sources {
		file, err := decorator.Parse(strings.TrimSpace(src) + "\n")
		if err != nil {
			t.Fatalf("failed to parse fixture: %v", err)
		}

		loader.files = append(loader.files, file)
	}

	return loader
}

func (l *mockPackageLoader) Load(_ string) ([]*dst.File, error) {
	if l.err != nil {
		return nil, l.err
	}

	return l.files, nil
}
