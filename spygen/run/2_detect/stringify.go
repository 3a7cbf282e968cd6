package detect

import (
	"strings"

	"github.com/dave/dst"
)

// StringifyExpr renders a DST type expression as Go source.
//
//nolint:cyclop // Type-switch dispatcher over DST expression kinds
func StringifyExpr(expr dst.Expr) string {
	switch typed := expr.(type) {
	case nil:
		return ""
	case *dst.Ident:
		return typed.Name
	case *dst.BasicLit:
		return typed.Value
	case *dst.SelectorExpr:
		return StringifyExpr(typed.X) + "." + typed.Sel.Name
	case *dst.StarExpr:
		return "*" + StringifyExpr(typed.X)
	case *dst.Ellipsis:
		return "..." + StringifyExpr(typed.Elt)
	case *dst.ParenExpr:
		return "(" + StringifyExpr(typed.X) + ")"
	case *dst.ArrayType:
		if typed.Len != nil {
			return "[" + StringifyExpr(typed.Len) + "]" + StringifyExpr(typed.Elt)
		}

		return "[]" + StringifyExpr(typed.Elt)
	case *dst.MapType:
		return "map[" + StringifyExpr(typed.Key) + "]" + StringifyExpr(typed.Value)
	case *dst.ChanType:
		switch typed.Dir {
		case dst.SEND:
			return "chan<- " + StringifyExpr(typed.Value)
		case dst.RECV:
			return "<-chan " + StringifyExpr(typed.Value)
		default:
			return "chan " + StringifyExpr(typed.Value)
		}
	case *dst.FuncType:
		return "func" + stringifySignature(typed)
	case *dst.IndexExpr:
		return StringifyExpr(typed.X) + "[" + StringifyExpr(typed.Index) + "]"
	case *dst.IndexListExpr:
		return StringifyExpr(typed.X) + "[" + joinExprs(typed.Indices) + "]"
	case *dst.InterfaceType:
		return stringifyInterface(typed)
	case *dst.StructType:
		return stringifyStruct(typed)
	default:
		return ""
	}
}

func joinExprs(exprs []dst.Expr) string {
	parts := make([]string, len(exprs))
	for i, expr := range exprs {
		parts[i] = StringifyExpr(expr)
	}

	return strings.Join(parts, ", ")
}

func stringifyFields(fields *dst.FieldList, sep string) string {
	if fields == nil {
		return ""
	}

	parts := make([]string, 0, len(fields.List))

	for _, field := range fields.List {
		typeStr := StringifyExpr(field.Type)
		if len(field.Names) == 0 {
			parts = append(parts, typeStr)

			continue
		}

		names := make([]string, len(field.Names))
		for i, name := range field.Names {
			names[i] = name.Name
		}

		parts = append(parts, strings.Join(names, ", ")+" "+typeStr)
	}

	return strings.Join(parts, sep)
}

func stringifyInterface(iface *dst.InterfaceType) string {
	if iface.Methods == nil || len(iface.Methods.List) == 0 {
		return "interface{}"
	}

	parts := make([]string, 0, len(iface.Methods.List))

	for _, field := range iface.Methods.List {
		funcType, ok := field.Type.(*dst.FuncType)
		if !ok || len(field.Names) == 0 {
			parts = append(parts, StringifyExpr(field.Type))

			continue
		}

		parts = append(parts, field.Names[0].Name+stringifySignature(funcType))
	}

	return "interface{ " + strings.Join(parts, "; ") + " }"
}

func stringifySignature(funcType *dst.FuncType) string {
	sig := "(" + stringifyFields(funcType.Params, ", ") + ")"

	if funcType.Results == nil || len(funcType.Results.List) == 0 {
		return sig
	}

	results := stringifyFields(funcType.Results, ", ")
	if len(funcType.Results.List) == 1 && len(funcType.Results.List[0].Names) == 0 {
		return sig + " " + results
	}

	return sig + " (" + results + ")"
}

func stringifyStruct(structType *dst.StructType) string {
	if structType.Fields == nil || len(structType.Fields.List) == 0 {
		return "struct{}"
	}

	return "struct{ " + stringifyFields(structType.Fields, "; ") + " }"
}
