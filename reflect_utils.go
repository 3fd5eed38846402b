package gobind

import (
	"go/build"
	"reflect"
	"strings"
	"sync"
)

// TagName is the struct tag read by Describe.
const TagName = "bind"

// fieldTag is the parsed form of a `bind:"..."` tag.
type fieldTag struct {
	name      string
	skip      bool
	required  bool
	optional  bool
	readOnly  bool
	qualifier string
}

// ResolveStructKey applies the repository-wide rule to resolve a struct
// field's wire name.
// Priority: bind:"name=..." > json tag name > field name; "-" disables the field.
func ResolveStructKey(sf reflect.StructField) string {
	ft := parseFieldTag(sf)
	if ft.skip {
		return "-"
	}
	return ft.name
}

func parseFieldTag(sf reflect.StructField) fieldTag {
	ft := fieldTag{name: sf.Name}
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			ft.skip = true
		} else if n, _, _ := strings.Cut(jt, ","); n != "" {
			ft.name = n
		}
	}
	bt, ok := sf.Tag.Lookup(TagName)
	if !ok {
		return ft
	}
	if bt == "-" {
		ft.skip = true
		return ft
	}
	for _, p := range strings.Split(bt, ",") {
		p = strings.TrimSpace(p)
		switch {
		case strings.HasPrefix(p, "name="):
			ft.name = strings.TrimPrefix(p, "name=")
			ft.skip = false
		case strings.HasPrefix(p, "qualifier="):
			ft.qualifier = strings.TrimPrefix(p, "qualifier=")
		case p == "required":
			ft.required = true
		case p == "optional":
			ft.optional = true
		case p == "readonly":
			ft.readOnly = true
		}
	}
	return ft
}

// assignValue stores a decoded value into a settable field. nil stores the
// zero value.
func assignValue(dst reflect.Value, val any) error {
	if val == nil {
		dst.SetZero()
		return nil
	}
	rv := reflect.ValueOf(val)
	switch {
	case rv.Type().AssignableTo(dst.Type()):
		dst.Set(rv)
	case rv.Kind() == dst.Kind() && rv.Type().ConvertibleTo(dst.Type()):
		dst.Set(rv.Convert(dst.Type()))
	default:
		return &assignError{from: rv.Type(), to: dst.Type()}
	}
	return nil
}

type assignError struct{ from, to reflect.Type }

func (e *assignError) Error() string {
	return "cannot assign " + e.from.String() + " to " + e.to.String()
}

// IsStdlibType reports whether t, or its element for pointers, is a
// predeclared named type or is declared in a standard library package.
// Unnamed types (anonymous structs, composites) are never platform types.
func IsStdlibType(t reflect.Type) bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	pkg := t.PkgPath()
	if pkg == "" {
		return t.Name() != ""
	}
	return isStdlibPackage(pkg)
}

// stdlibPkgs caches GOROOT lookups per package path.
var stdlibPkgs sync.Map

// isStdlibPackage reports whether pkg lives under GOROOT. Without a GOROOT
// source tree nothing is treated as standard library.
func isStdlibPackage(pkg string) bool {
	if v, ok := stdlibPkgs.Load(pkg); ok {
		return v.(bool)
	}
	std := false
	if pkg != "main" && build.Default.GOROOT != "" {
		p, err := build.Default.Import(pkg, "", build.FindOnly)
		std = err == nil && p.Goroot
	}
	stdlibPkgs.Store(pkg, std)
	return std
}
