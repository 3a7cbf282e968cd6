package generate_test

import (
	"go/parser"
	"go/token"
	"testing"

	. "github.com/onsi/gomega"
	detect "github.com/toejough/impspy/spygen/run/2_detect"
	generate "github.com/toejough/impspy/spygen/run/3_generate"
	"pgregory.net/rapid"
)

func TestSpyCode_Controller(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	code, err := generate.SpyCode(controller(), generate.Info{PkgName: "aeris", SpyName: "ControllerSpy"})
	g.Expect(err).NotTo(HaveOccurred())

	_, err = parser.ParseFile(token.NewFileSet(), "generated_ControllerSpy.go", code, parser.ParseComments)
	g.Expect(err).NotTo(HaveOccurred(), code)

	g.Expect(code).To(HavePrefix("// Code generated by spygen. DO NOT EDIT.\n\npackage aeris\n"))
	g.Expect(code).To(ContainSubstring(`"github.com/toejough/impspy"`))
	g.Expect(code).To(ContainSubstring("type ControllerSpy struct {"))
	g.Expect(code).To(ContainSubstring(`obj, err := impspy.New("controller", "Render", "Close")`))
	g.Expect(code).To(ContainSubstring(`Render: obj.MustSpy("Render"),`))
	g.Expect(code).To(ContainSubstring("func (s *ControllerSpy) Interface() Controller {"))
	g.Expect(code).To(ContainSubstring("func (impl controllerSpyImpl) Render(data any) error {"))
	g.Expect(code).To(ContainSubstring("results := impl.spy.Render.Invoke(data)"))
	g.Expect(code).To(ContainSubstring("return impspy.Result[error](results, 0)"))
}

func TestSpyCode_ImportsAndShapes(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	iface := detect.Interface{
		Name: "Renderer",
		Methods: []detect.Method{
			{
				Name:    "Render",
				Params:  []detect.Param{{Name: "ctx", Type: "context.Context"}, {Name: "tmpl", Type: "*tpl.Template"}},
				Results: []string{"string", "error"},
			},
			{
				Name:     "Logf",
				Params:   []detect.Param{{Name: "format", Type: "string"}, {Name: "args", Type: "...any"}},
				Variadic: true,
			},
		},
		Imports: []detect.Import{{Path: "context"}, {Name: "tpl", Path: "html/template"}},
	}

	code, err := generate.SpyCode(iface, generate.Info{PkgName: "ui_test", SpyName: "FakeRenderer", ObjectName: "view"})
	g.Expect(err).NotTo(HaveOccurred())

	_, err = parser.ParseFile(token.NewFileSet(), "generated_FakeRenderer_test.go", code, 0)
	g.Expect(err).NotTo(HaveOccurred(), code)

	g.Expect(code).To(ContainSubstring(`tpl "html/template"`))
	g.Expect(code).To(ContainSubstring(`"context"`))
	g.Expect(code).To(ContainSubstring(`impspy.New("view", "Render", "Logf")`))
	g.Expect(code).To(ContainSubstring("func (impl fakeRendererImpl) Logf(format string, args ...any) {"))
	g.Expect(code).To(ContainSubstring("impl.spy.Logf.Invoke(format, args)"))
	g.Expect(code).To(ContainSubstring(
		"return impspy.Result[string](results, 0), impspy.Result[error](results, 1)",
	))
}

func TestSpyCode_DotImport(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	iface := detect.Interface{
		Name: "Thing",
		Methods: []detect.Method{
			{Name: "Build", Params: []detect.Param{{Name: "b", Type: "*Builder"}}, Results: []string{"error"}},
		},
		Imports: []detect.Import{{Name: ".", Path: "strings"}},
	}

	code, err := generate.SpyCode(iface, generate.Info{PkgName: "things", SpyName: "ThingSpy"})
	g.Expect(err).NotTo(HaveOccurred())

	_, err = parser.ParseFile(token.NewFileSet(), "generated_ThingSpy.go", code, 0)
	g.Expect(err).NotTo(HaveOccurred(), code)
	g.Expect(code).To(ContainSubstring(`. "strings"`))
	g.Expect(code).To(ContainSubstring("func (impl thingSpyImpl) Build(b *Builder) error {"))
}

func TestSpyCode_ReservedMethodNames(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"Object", "Interface", "spy"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			g := NewWithT(t)

			iface := detect.Interface{Name: "Odd", Methods: []detect.Method{
				{Name: "Run", Results: []string{"error"}},
				{Name: name, Results: []string{"int"}},
			}}

			_, err := generate.SpyCode(iface, generate.Info{PkgName: "odd", SpyName: "OddSpy"})
			g.Expect(err).To(MatchError(generate.ErrReservedMethod))
		})
	}
}

func TestSpyCode_AlwaysParses(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		names := rapid.SliceOfDistinct(
			rapid.StringMatching(`[A-HJ-NP-Z][a-z0-9]{0,6}`), rapid.ID[string],
		).Draw(rt, "methods")

		iface := detect.Interface{Name: "Thing"}
		for _, name := range names {
			iface.Methods = append(iface.Methods, detect.Method{
				Name:    name,
				Params:  []detect.Param{{Name: "value", Type: "int"}},
				Results: []string{"error"},
			})
		}

		code, err := generate.SpyCode(iface, generate.Info{PkgName: "things", SpyName: "ThingSpy"})
		if err != nil {
			rt.Fatalf("unexpected error: %v", err)
		}

		_, err = parser.ParseFile(token.NewFileSet(), "generated_ThingSpy.go", code, 0)
		if err != nil {
			rt.Fatalf("generated code does not parse: %v\n%s", err, code)
		}
	})
}

func TestDefaultObjectName(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	g.Expect(generate.DefaultObjectName("Controller")).To(Equal("controller"))
	g.Expect(generate.DefaultObjectName("HTTPClient")).To(Equal("hTTPClient"))
	g.Expect(generate.DefaultObjectName("")).To(Equal(""))
}

func controller() detect.Interface {
	return detect.Interface{
		Name: "Controller",
		Methods: []detect.Method{
			{Name: "Render", Params: []detect.Param{{Name: "data", Type: "any"}}, Results: []string{"error"}},
			{Name: "Close", Results: []string{"error"}},
		},
	}
}
