// Package detect finds a named interface in parsed package files and
// flattens it into the method list a spy needs.
package detect

import (
	"errors"
	"fmt"
	"go/token"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/dave/dst"
)

// Exported variables.
var (
	ErrInterfaceNotFound = errors.New("interface not found")
	ErrUnsupported       = errors.New("unsupported interface")
)

// Import is a package referenced by a method signature.
type Import struct {
	Name string // alias, empty when the default package name is used
	Path string
}

// Interface is an interface declaration flattened to its full method set.
type Interface struct {
	Name    string
	Methods []Method
	Imports []Import
}

// Method is one method of an interface.
type Method struct {
	Name     string
	Params   []Param
	Results  []string
	Variadic bool
}

// ArgNames returns the parameter names joined for a call expression.
func (m Method) ArgNames() string {
	names := make([]string, len(m.Params))
	for i, param := range m.Params {
		names[i] = param.Name
	}

	return strings.Join(names, ", ")
}

// Signature returns the parameter list and result list as Go source.
func (m Method) Signature() string {
	params := make([]string, len(m.Params))
	for i, param := range m.Params {
		params[i] = param.Name + " " + param.Type
	}

	sig := "(" + strings.Join(params, ", ") + ")"

	switch len(m.Results) {
	case 0:
		return sig
	case 1:
		return sig + " " + m.Results[0]
	default:
		return sig + " (" + strings.Join(m.Results, ", ") + ")"
	}
}

// Param is one named parameter of a method.
type Param struct {
	Name string
	Type string
}

// FindInterface locates interfaceName among files and expands embedded
// interfaces declared in the same package.
func FindInterface(files []*dst.File, interfaceName string) (Interface, error) {
	index := indexInterfaces(files)

	decl, ok := index[interfaceName]
	if !ok {
		return Interface{}, fmt.Errorf("%w: %s", ErrInterfaceNotFound, interfaceName)
	}

	if decl.spec.TypeParams != nil && len(decl.spec.TypeParams.List) > 0 {
		return Interface{}, fmt.Errorf("%w: %s is generic", ErrUnsupported, interfaceName)
	}

	collector := &methodCollector{
		index:    index,
		declared: declaredNames(files),
		seen:     make(map[string]bool),
		visited:  make(map[string]bool),
		imports:  make(map[string]Import),
	}

	err := collector.collect(interfaceName)
	if err != nil {
		return Interface{}, err
	}

	return Interface{
		Name:    interfaceName,
		Methods: collector.methods,
		Imports: collector.sortedImports(),
	}, nil
}

// unexported variables.
var (
	majorVersionSuffix = regexp.MustCompile(`^v[0-9]+$`)
	//nolint:gochecknoglobals // Universe scope names usable in a type expression
	predeclared = map[string]bool{
		"any": true, "bool": true, "byte": true, "comparable": true, "complex64": true, "complex128": true,
		"error": true, "float32": true, "float64": true, "int": true, "int8": true, "int16": true, "int32": true,
		"int64": true, "rune": true, "string": true, "uint": true, "uint8": true, "uint16": true, "uint32": true,
		"uint64": true, "uintptr": true, "true": true, "false": true, "iota": true, "nil": true,
	}
	reservedNames = map[string]bool{"impl": true, "results": true, "impspy": true}
)

type interfaceDecl struct {
	spec  *dst.TypeSpec
	iface *dst.InterfaceType
	file  *dst.File
}

type methodCollector struct {
	index    map[string]interfaceDecl
	declared map[string]bool
	seen     map[string]bool
	visited  map[string]bool
	methods  []Method
	imports  map[string]Import
}

func (c *methodCollector) addMethod(name string, funcType *dst.FuncType, file *dst.File) error {
	if c.seen[name] {
		return nil
	}

	if funcType.TypeParams != nil && len(funcType.TypeParams.List) > 0 {
		return fmt.Errorf("%w: method %s has type parameters", ErrUnsupported, name)
	}

	method := Method{Name: name}

	for _, field := range fieldsOf(funcType.Params) {
		err := c.noteImports(field.Type, file)
		if err != nil {
			return fmt.Errorf("method %s: %w", name, err)
		}

		typeStr := StringifyExpr(field.Type)
		if _, ok := field.Type.(*dst.Ellipsis); ok {
			method.Variadic = true
		}

		for _, paramName := range namesOf(field) {
			method.Params = append(method.Params, Param{
				Name: paramIdent(paramName, len(method.Params)),
				Type: typeStr,
			})
		}
	}

	for _, field := range fieldsOf(funcType.Results) {
		err := c.noteImports(field.Type, file)
		if err != nil {
			return fmt.Errorf("method %s: %w", name, err)
		}

		typeStr := StringifyExpr(field.Type)
		for range namesOf(field) {
			method.Results = append(method.Results, typeStr)
		}
	}

	c.seen[name] = true
	c.methods = append(c.methods, method)

	return nil
}

func (c *methodCollector) collect(interfaceName string) error {
	if c.visited[interfaceName] {
		return nil
	}

	c.visited[interfaceName] = true

	decl, ok := c.index[interfaceName]
	if !ok {
		return fmt.Errorf("%w: embedded interface %s is not declared in this package", ErrUnsupported, interfaceName)
	}

	for _, field := range fieldsOf(decl.iface.Methods) {
		switch typed := field.Type.(type) {
		case *dst.FuncType:
			for _, name := range field.Names {
				err := c.addMethod(name.Name, typed, decl.file)
				if err != nil {
					return err
				}
			}
		case *dst.Ident:
			err := c.collect(typed.Name)
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: %s embeds %s", ErrUnsupported, interfaceName, StringifyExpr(field.Type))
		}
	}

	return nil
}

// noteDotImport records the dot import that must supply the unqualified name.
// Without type information a name can only be attributed when file has exactly one dot import.
func (c *methodCollector) noteDotImport(name string, file *dst.File) error {
	var dotPaths []string

	for _, spec := range file.Imports {
		if spec.Name != nil && spec.Name.Name == "." {
			dotPaths = append(dotPaths, strings.Trim(spec.Path.Value, `"`))
		}
	}

	switch len(dotPaths) {
	case 0:
		return nil
	case 1:
		c.imports[dotPaths[0]] = Import{Name: ".", Path: dotPaths[0]}

		return nil
	default:
		return fmt.Errorf("%w: %s may come from any of the dot imports %v", ErrUnsupported, name, dotPaths)
	}
}

// noteImports records the imports of file that expr refers to, including a
// dot import supplying a name the package does not declare.
func (c *methodCollector) noteImports(expr dst.Expr, file *dst.File) error {
	var err error

	dst.Inspect(expr, func(node dst.Node) bool {
		if err != nil {
			return false
		}

		switch typed := node.(type) {
		case *dst.Field:
			// Parameter, result and field names are not references.
			err = c.noteImports(typed.Type, file)

			return false
		case *dst.Ident:
			if !predeclared[typed.Name] && !c.declared[typed.Name] {
				err = c.noteDotImport(typed.Name, file)
			}

			return false
		case *dst.SelectorExpr:
			c.noteQualifiedImport(typed, file)

			return false
		default:
			return true
		}
	})

	return err
}

func (c *methodCollector) noteQualifiedImport(selector *dst.SelectorExpr, file *dst.File) {
	pkgIdent, ok := selector.X.(*dst.Ident)
	if !ok {
		return
	}

	for _, spec := range file.Imports {
		importPath := strings.Trim(spec.Path.Value, `"`)

		name, alias := importName(spec, importPath)
		if name != pkgIdent.Name {
			continue
		}

		c.imports[importPath] = Import{Name: alias, Path: importPath}
	}
}

func (c *methodCollector) sortedImports() []Import {
	imports := make([]Import, 0, len(c.imports))
	for _, imp := range c.imports {
		imports = append(imports, imp)
	}

	sort.Slice(imports, func(i, j int) bool {
		return imports[i].Path < imports[j].Path
	})

	return imports
}

// declaredNames returns every package-level name declared in files.
func declaredNames(files []*dst.File) map[string]bool {
	names := make(map[string]bool)

	for _, file := range files {
		for _, decl := range file.Decls {
			switch typed := decl.(type) {
			case *dst.FuncDecl:
				if typed.Recv == nil {
					names[typed.Name.Name] = true
				}
			case *dst.GenDecl:
				for _, spec := range typed.Specs {
					switch spec := spec.(type) {
					case *dst.TypeSpec:
						names[spec.Name.Name] = true
					case *dst.ValueSpec:
						for _, name := range spec.Names {
							names[name.Name] = true
						}
					}
				}
			}
		}
	}

	return names
}

func fieldsOf(fields *dst.FieldList) []*dst.Field {
	if fields == nil {
		return nil
	}

	return fields.List
}

// importName returns the name a file uses for an import, and the explicit
// alias if there is one.
func importName(spec *dst.ImportSpec, importPath string) (name, alias string) {
	if spec.Name != nil {
		return spec.Name.Name, spec.Name.Name
	}

	base := path.Base(importPath)
	if majorVersionSuffix.MatchString(base) {
		base = path.Base(path.Dir(importPath))
	}

	return strings.ReplaceAll(base, "-", "_"), ""
}

func indexInterfaces(files []*dst.File) map[string]interfaceDecl {
	index := make(map[string]interfaceDecl)

	for _, file := range files {
		for _, decl := range file.Decls {
			genDecl, ok := decl.(*dst.GenDecl)
			if !ok || genDecl.Tok != token.TYPE {
				continue
			}

			for _, spec := range genDecl.Specs {
				typeSpec, ok := spec.(*dst.TypeSpec)
				if !ok {
					continue
				}

				iface, ok := typeSpec.Type.(*dst.InterfaceType)
				if !ok {
					continue
				}

				index[typeSpec.Name.Name] = interfaceDecl{spec: typeSpec, iface: iface, file: file}
			}
		}
	}

	return index
}

// namesOf returns the declared names of field, or a single empty name for an
// unnamed field.
func namesOf(field *dst.Field) []string {
	if len(field.Names) == 0 {
		return []string{""}
	}

	names := make([]string, len(field.Names))
	for i, name := range field.Names {
		names[i] = name.Name
	}

	return names
}

// paramIdent keeps a declared parameter name unless it is blank or would
// collide with an identifier the generated body uses.
func paramIdent(name string, position int) string {
	if name == "" || name == "_" || reservedNames[name] {
		return fmt.Sprintf("arg%d", position)
	}

	return name
}
