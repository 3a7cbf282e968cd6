// Package generate renders the Go source of a typed spy for an interface.
package generate

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	detect "github.com/toejough/impspy/spygen/run/2_detect"
	"golang.org/x/tools/imports"
)

// Exported variables.
var (
	ErrReservedMethod = errors.New("method name collides with generated spy member")
)

// Info names what is being generated.
type Info struct {
	PkgName    string // package the spy is written into
	SpyName    string // exported spy struct name, e.g. ControllerSpy
	ObjectName string // diagnostic label for the SpyObject
}

// SpyCode returns the formatted source of a spy for iface.
func SpyCode(iface detect.Interface, info Info) (string, error) {
	for _, method := range iface.Methods {
		if reservedMembers[method.Name] {
			return "", fmt.Errorf("%w: %s.%s", ErrReservedMethod, iface.Name, method.Name)
		}
	}

	data := newTemplateData(iface, info)
	templates := NewTemplateRegistry()

	var buf bytes.Buffer

	templates.WriteHeader(&buf, data)
	templates.WriteSpyStruct(&buf, data)
	templates.WriteConstructor(&buf, data)
	templates.WriteInterfaceMethod(&buf, data)
	templates.WriteImplStruct(&buf, data)

	for _, method := range data.sortedMethods() {
		templates.WriteImplMethod(&buf, method)
	}

	formatted, err := imports.Process(data.SpyName+".go", buf.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8, //nolint:mnd // gofmt's tab width
		FormatOnly: true,
	})
	if err != nil {
		return "", fmt.Errorf("error formatting generated code: %w", err)
	}

	return string(formatted), nil
}

// DefaultObjectName derives a SpyObject label from an interface name:
// the name with its first letter lowercased.
func DefaultObjectName(interfaceName string) string {
	first, size := utf8.DecodeRuneInString(interfaceName)
	if first == utf8.RuneError {
		return interfaceName
	}

	return string(unicode.ToLower(first)) + interfaceName[size:]
}

// unexported variables.
var (
	// Members of the spy struct and of its impl struct.
	//nolint:gochecknoglobals // Fixed set of generated member names
	reservedMembers = map[string]bool{"Object": true, "Interface": true, "spy": true}
)

type methodData struct {
	detect.Method

	SpyName  string
	ImplName string
}

// ReturnList renders the typed conversion of each result.
func (m methodData) ReturnList() string {
	parts := make([]string, len(m.Results))
	for i, result := range m.Results {
		parts[i] = fmt.Sprintf("impspy.Result[%s](results, %d)", result, i)
	}

	return strings.Join(parts, ", ")
}

type templateData struct {
	PkgName       string
	InterfaceName string
	SpyName       string
	ImplName      string
	ObjectName    string
	Imports       []detect.Import
	Methods       []methodData
}

func (d templateData) sortedMethods() []methodData {
	methods := make([]methodData, len(d.Methods))
	copy(methods, d.Methods)

	sort.Slice(methods, func(i, j int) bool {
		return methods[i].Name < methods[j].Name
	})

	return methods
}

func newTemplateData(iface detect.Interface, info Info) templateData {
	implName := DefaultObjectName(info.SpyName) + "Impl"

	objectName := info.ObjectName
	if objectName == "" {
		objectName = DefaultObjectName(iface.Name)
	}

	methods := make([]methodData, len(iface.Methods))
	for i, method := range iface.Methods {
		methods[i] = methodData{Method: method, SpyName: info.SpyName, ImplName: implName}
	}

	return templateData{
		PkgName:       info.PkgName,
		InterfaceName: iface.Name,
		SpyName:       info.SpyName,
		ImplName:      implName,
		ObjectName:    objectName,
		Imports:       iface.Imports,
		Methods:       methods,
	}
}
