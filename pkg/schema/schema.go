// Package schema reflects command input structs into a field schema used to
// cast raw attribute maps, validate values, and publish JSON Schema
// manifests.
//
// Field names come from `json` tags. Non-pointer fields are required,
// pointer fields optional. `valid` tags run govalidator rules after
// structural casting. `sensitive:"true"` marks fields whose values must be
// masked in logs and disclosed in manifests.
package schema

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind is the structural type of a field as seen by the caster.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindInt
	KindUint
	KindFloat
	KindDecimal
	KindTime
	// KindJSON covers nested structs, slices and maps, cast through a JSON
	// round-trip.
	KindJSON
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindDecimal:
		return "decimal"
	case KindTime:
		return "time"
	case KindJSON:
		return "json"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Field describes one input attribute.
type Field struct {
	// Name is the attribute name on the wire (json tag, or the lowercased
	// Go name when untagged).
	Name string

	// GoName is the struct field name.
	GoName string

	// Kind drives casting.
	Kind Kind

	// Required is true for non-pointer fields: the attribute must be
	// present and non-null.
	Required bool

	// Sensitive fields are masked in logs and flagged in manifests.
	Sensitive bool

	// Rules holds the raw govalidator tag, if any.
	Rules string

	index int
	typ   reflect.Type // field type with pointer stripped
	ptr   bool
}

var (
	decimalType = reflect.TypeOf(decimal.Decimal{})
	timeType    = reflect.TypeOf(time.Time{})
)

// Schema is the reflected shape of an inputs struct T. Build it once per
// command definition; it is immutable and safe for concurrent use.
type Schema[T any] struct {
	typ    reflect.Type
	fields []*Field
	byName map[string]*Field
	byGo   map[string]*Field
}

// For reflects T, which must be a struct type.
func For[T any]() (*Schema[T], error) {
	typ := reflect.TypeFor[T]()
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("schema: inputs type %s is not a struct", typ)
	}

	s := &Schema[T]{
		typ:    typ,
		byName: make(map[string]*Field),
		byGo:   make(map[string]*Field),
	}

	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		if !sf.IsExported() {
			continue
		}

		name := strings.ToLower(sf.Name)
		if tag, ok := sf.Tag.Lookup("json"); ok {
			parts := strings.Split(tag, ",")
			if parts[0] == "-" {
				continue
			}
			if parts[0] != "" {
				name = parts[0]
			}
		}
		if _, dup := s.byName[name]; dup {
			return nil, fmt.Errorf("schema: duplicate attribute name %q on %s", name, typ)
		}

		ft := sf.Type
		ptr := ft.Kind() == reflect.Pointer
		if ptr {
			ft = ft.Elem()
		}

		f := &Field{
			Name:      name,
			GoName:    sf.Name,
			Kind:      kindOf(ft),
			Required:  !ptr,
			Sensitive: sf.Tag.Get("sensitive") == "true",
			Rules:     sf.Tag.Get("valid"),
			index:     i,
			typ:       ft,
			ptr:       ptr,
		}
		s.fields = append(s.fields, f)
		s.byName[name] = f
		s.byGo[sf.Name] = f
	}

	return s, nil
}

// MustFor reflects T or panics. Intended for definition-time use where a bad
// inputs struct is an authoring error.
func MustFor[T any]() *Schema[T] {
	s, err := For[T]()
	if err != nil {
		panic(err)
	}
	return s
}

func kindOf(t reflect.Type) Kind {
	switch {
	case t == decimalType:
		return KindDecimal
	case t == timeType:
		return KindTime
	}
	switch t.Kind() {
	case reflect.String:
		return KindString
	case reflect.Bool:
		return KindBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return KindInt
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return KindUint
	case reflect.Float32, reflect.Float64:
		return KindFloat
	default:
		return KindJSON
	}
}

// Fields returns the schema's fields in declaration order.
func (s *Schema[T]) Fields() []*Field {
	out := make([]*Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Field looks up a field by attribute name.
func (s *Schema[T]) Field(name string) (*Field, bool) {
	f, ok := s.byName[name]
	return f, ok
}

// SensitiveFields returns the attribute names marked sensitive, in
// declaration order.
func (s *Schema[T]) SensitiveFields() []string {
	var out []string
	for _, f := range s.fields {
		if f.Sensitive {
			out = append(out, f.Name)
		}
	}
	return out
}
