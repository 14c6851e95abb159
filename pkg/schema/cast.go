package schema

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// Error symbols produced by casting and validation.
const (
	SymbolCannotCast               = "cannot_cast"
	SymbolMissingRequiredAttribute = "missing_required_attribute"
	SymbolUnexpectedAttribute      = "unexpected_attribute"
	SymbolInvalidAttribute         = "invalid_attribute"
)

// FieldError is one casting or validation failure for one attribute.
// Failures are independent: casting an attribute map can produce several.
type FieldError struct {
	Path    []string
	Symbol  string
	Message string
	Context map[string]any
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Symbol, e.Message)
}

// Cast builds a T from raw attributes. Every invalid attribute yields its own
// FieldError; errors come in field declaration order, unknown attributes
// sorted last, tag-rule failures after that. A non-empty error slice means
// the returned T must not be used.
func (s *Schema[T]) Cast(attrs map[string]any) (T, []*FieldError) {
	var out T
	v := reflect.ValueOf(&out).Elem()

	var errs []*FieldError
	bad := make(map[string]bool)

	for _, f := range s.fields {
		raw, present := attrs[f.Name]
		if !present || raw == nil {
			if f.Required {
				errs = append(errs, &FieldError{
					Path:    []string{f.Name},
					Symbol:  SymbolMissingRequiredAttribute,
					Message: fmt.Sprintf("%s is required", f.Name),
				})
				bad[f.GoName] = true
			}
			continue
		}

		val, ferr := castValue(f, raw)
		if ferr != nil {
			errs = append(errs, ferr)
			bad[f.GoName] = true
			continue
		}

		target := v.Field(f.index)
		if f.ptr {
			p := reflect.New(f.typ)
			p.Elem().Set(val)
			target.Set(p)
		} else {
			target.Set(val)
		}
	}

	var unknown []string
	for k := range attrs {
		if _, ok := s.byName[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	for _, k := range unknown {
		errs = append(errs, &FieldError{
			Path:    []string{k},
			Symbol:  SymbolUnexpectedAttribute,
			Message: fmt.Sprintf("unexpected attribute %s", k),
		})
	}

	errs = append(errs, s.ruleErrors(out, bad)...)
	return out, errs
}

// Validate runs the `valid` tag rules against an already-typed value. The
// typed entry path uses it in place of Cast.
func (s *Schema[T]) Validate(v T) []*FieldError {
	return s.ruleErrors(v, nil)
}

// ruleErrors maps govalidator failures onto FieldErrors, skipping fields that
// already failed structurally.
func (s *Schema[T]) ruleErrors(v T, skip map[string]bool) []*FieldError {
	tagged := false
	for _, f := range s.fields {
		if f.Rules != "" {
			tagged = true
			break
		}
	}
	if !tagged {
		return nil
	}

	ok, err := govalidator.ValidateStruct(v)
	if ok || err == nil {
		return nil
	}

	byField := govalidator.ErrorsByField(err)
	var out []*FieldError
	for _, f := range s.fields {
		if skip[f.GoName] {
			continue
		}
		msg, found := byField[f.GoName]
		if !found {
			msg, found = byField[f.Name]
		}
		if !found {
			continue
		}
		out = append(out, &FieldError{
			Path:    []string{f.Name},
			Symbol:  SymbolInvalidAttribute,
			Message: msg,
			Context: map[string]any{"rules": f.Rules},
		})
	}
	return out
}

func castValue(f *Field, raw any) (reflect.Value, *FieldError) {
	switch f.Kind {
	case KindString:
		s, ok := raw.(string)
		if !ok {
			return reflect.Value{}, cannotCast(f, raw)
		}
		return reflect.ValueOf(s).Convert(f.typ), nil

	case KindBool:
		switch b := raw.(type) {
		case bool:
			return reflect.ValueOf(b).Convert(f.typ), nil
		case string:
			parsed, err := strconv.ParseBool(b)
			if err != nil {
				return reflect.Value{}, cannotCast(f, raw)
			}
			return reflect.ValueOf(parsed).Convert(f.typ), nil
		}
		return reflect.Value{}, cannotCast(f, raw)

	case KindInt:
		i, ok := toInt64(raw)
		if !ok {
			return reflect.Value{}, cannotCast(f, raw)
		}
		v := reflect.New(f.typ).Elem()
		if v.OverflowInt(i) {
			return reflect.Value{}, cannotCast(f, raw)
		}
		v.SetInt(i)
		return v, nil

	case KindUint:
		i, ok := toInt64(raw)
		if !ok || i < 0 {
			return reflect.Value{}, cannotCast(f, raw)
		}
		v := reflect.New(f.typ).Elem()
		if v.OverflowUint(uint64(i)) {
			return reflect.Value{}, cannotCast(f, raw)
		}
		v.SetUint(uint64(i))
		return v, nil

	case KindFloat:
		fl, ok := toFloat64(raw)
		if !ok {
			return reflect.Value{}, cannotCast(f, raw)
		}
		v := reflect.New(f.typ).Elem()
		if v.OverflowFloat(fl) {
			return reflect.Value{}, cannotCast(f, raw)
		}
		v.SetFloat(fl)
		return v, nil

	case KindDecimal:
		d, ok := toDecimal(raw)
		if !ok {
			return reflect.Value{}, cannotCast(f, raw)
		}
		return reflect.ValueOf(d), nil

	case KindTime:
		switch t := raw.(type) {
		case time.Time:
			return reflect.ValueOf(t), nil
		case string:
			parsed, err := time.Parse(time.RFC3339, t)
			if err != nil {
				return reflect.Value{}, cannotCast(f, raw)
			}
			return reflect.ValueOf(parsed), nil
		}
		return reflect.Value{}, cannotCast(f, raw)

	default: // KindJSON
		data, err := json.Marshal(raw)
		if err != nil {
			return reflect.Value{}, cannotCast(f, raw)
		}
		p := reflect.New(f.typ)
		if err := json.Unmarshal(data, p.Interface()); err != nil {
			return reflect.Value{}, cannotCast(f, raw)
		}
		return p.Elem(), nil
	}
}

func cannotCast(f *Field, raw any) *FieldError {
	return &FieldError{
		Path:    []string{f.Name},
		Symbol:  SymbolCannotCast,
		Message: fmt.Sprintf("cannot cast %T to %s", raw, f.Kind),
		Context: map[string]any{
			"received_type": fmt.Sprintf("%T", raw),
			"expected":      f.Kind.String(),
		},
	}
}

// toInt64 accepts integral values in the shapes attribute maps actually
// carry: Go ints, whole floats (JSON numbers decode as float64), json.Number
// and numeric strings.
func toInt64(raw any) (int64, bool) {
	switch n := raw.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float32:
		return wholeFloat(float64(n))
	case float64:
		return wholeFloat(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		if f, err := n.Float64(); err == nil {
			return wholeFloat(f)
		}
		return 0, false
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}

func wholeFloat(f float64) (int64, bool) {
	if math.Trunc(f) != f || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

func toFloat64(raw any) (float64, bool) {
	switch n := raw.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func toDecimal(raw any) (decimal.Decimal, bool) {
	switch n := raw.(type) {
	case decimal.Decimal:
		return n, true
	case string:
		d, err := decimal.NewFromString(n)
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(n), true
	case float32:
		return decimal.NewFromFloat32(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	}
	return decimal.Decimal{}, false
}
