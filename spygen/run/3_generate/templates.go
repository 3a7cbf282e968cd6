package generate

import (
	"bytes"
	"fmt"
	"text/template"
)

// TemplateRegistry holds the parsed text templates for a spy file.
type TemplateRegistry struct {
	headerTmpl      *template.Template
	spyStructTmpl   *template.Template
	constructorTmpl *template.Template
	interfaceTmpl   *template.Template
	implStructTmpl  *template.Template
	implMethodTmpl  *template.Template
}

// NewTemplateRegistry parses all templates.
// Templates are hardcoded constants, so parsing cannot fail at runtime.
func NewTemplateRegistry() *TemplateRegistry {
	return &TemplateRegistry{
		headerTmpl:      template.Must(template.New("header").Parse(headerTemplate)),
		spyStructTmpl:   template.Must(template.New("spyStruct").Parse(spyStructTemplate)),
		constructorTmpl: template.Must(template.New("constructor").Parse(constructorTemplate)),
		interfaceTmpl:   template.Must(template.New("interface").Parse(interfaceTemplate)),
		implStructTmpl:  template.Must(template.New("implStruct").Parse(implStructTemplate)),
		implMethodTmpl:  template.Must(template.New("implMethod").Parse(implMethodTemplate)),
	}
}

// WriteConstructor writes the New<Spy> constructor.
func (r *TemplateRegistry) WriteConstructor(buf *bytes.Buffer, data any) {
	execute(r.constructorTmpl, buf, data)
}

// WriteHeader writes the generated-file header, package clause and imports.
func (r *TemplateRegistry) WriteHeader(buf *bytes.Buffer, data any) {
	execute(r.headerTmpl, buf, data)
}

// WriteImplMethod writes one forwarding method of the interface implementation.
func (r *TemplateRegistry) WriteImplMethod(buf *bytes.Buffer, data any) {
	execute(r.implMethodTmpl, buf, data)
}

// WriteImplStruct writes the unexported implementation struct.
func (r *TemplateRegistry) WriteImplStruct(buf *bytes.Buffer, data any) {
	execute(r.implStructTmpl, buf, data)
}

// WriteInterfaceMethod writes the Interface() accessor.
func (r *TemplateRegistry) WriteInterfaceMethod(buf *bytes.Buffer, data any) {
	execute(r.interfaceTmpl, buf, data)
}

// WriteSpyStruct writes the exported spy struct.
func (r *TemplateRegistry) WriteSpyStruct(buf *bytes.Buffer, data any) {
	execute(r.spyStructTmpl, buf, data)
}

// unexported constants.
const (
	constructorTemplate = `
// New{{.SpyName}} creates a {{.SpyName}} with a fresh call history.
func New{{.SpyName}}() *{{.SpyName}} {
	obj, err := impspy.New({{printf "%q" .ObjectName}}{{range .Methods}}, {{printf "%q" .Name}}{{end}})
	if err != nil {
		panic(err)
	}

	return &{{.SpyName}}{
		Object: obj,
{{- range .Methods}}
		{{.Name}}: obj.MustSpy({{printf "%q" .Name}}),
{{- end}}
	}
}
`
	headerTemplate = `// Code generated by spygen. DO NOT EDIT.

package {{.PkgName}}

import (
	"github.com/toejough/impspy"
{{- range .Imports}}
	{{if .Name}}{{.Name}} {{end}}{{printf "%q" .Path}}
{{- end}}
)
`
	implMethodTemplate = `
// {{.Name}} records the call on {{.SpyName}}.{{.Name}}.
func (impl {{.ImplName}}) {{.Name}}{{.Signature}} {
{{- if .Results}}
	results := impl.spy.{{.Name}}.Invoke({{.ArgNames}})

	return {{.ReturnList}}
{{- else}}
	impl.spy.{{.Name}}.Invoke({{.ArgNames}})
{{- end}}
}
`
	implStructTemplate = `
// {{.ImplName}} implements {{.InterfaceName}} by forwarding to the spies.
type {{.ImplName}} struct {
	spy *{{.SpyName}}
}
`
	interfaceTemplate = `
// Interface returns the spy as a {{.InterfaceName}} implementation.
func (s *{{.SpyName}}) Interface() {{.InterfaceName}} {
	return {{.ImplName}}{spy: s}
}
`
	spyStructTemplate = `
// {{.SpyName}} is a spy object for the {{.InterfaceName}} interface.
type {{.SpyName}} struct {
	Object *impspy.SpyObject
{{- range .Methods}}
	{{.Name}} *impspy.Spy
{{- end}}
}
`
)

func execute(tmpl *template.Template, buf *bytes.Buffer, data any) {
	err := tmpl.Execute(buf, data)
	if err != nil {
		panic(fmt.Sprintf("failed to execute %s template: %v", tmpl.Name(), err))
	}
}
