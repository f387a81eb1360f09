package openfeature

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindDate
	KindList
	KindStructure
)

// Value is a closed tagged union over the types a flag value or context
// attribute may hold: null, bool, int, float, string, date, list, structure.
// The zero Value is Null. Values are immutable once constructed; construct
// them with the typed helpers below.
type Value struct {
	kind Kind
	val  any
}

// Null returns the null Value.
func Null() Value { return Value{} }

// Bool returns a boolean Value.
func Bool(v bool) Value { return Value{kind: KindBool, val: v} }

// Int returns an integer Value.
func Int(v int) Value { return Value{kind: KindInt, val: v} }

// Float returns a floating-point Value.
func Float(v float64) Value { return Value{kind: KindFloat, val: v} }

// String returns a string Value.
func String(v string) Value { return Value{kind: KindString, val: v} }

// Date returns a timestamp Value.
func Date(v time.Time) Value { return Value{kind: KindDate, val: v} }

// List returns a list Value holding the given items in order.
func List(items ...Value) Value {
	copied := make([]Value, len(items))
	copy(copied, items)
	return Value{kind: KindList, val: copied}
}

// Structure returns a structure Value holding a copy of the given fields.
func Structure(fields map[string]Value) Value {
	copied := make(map[string]Value, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return Value{kind: KindStructure, val: copied}
}

// Kind reports which variant the Value holds.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the Value is the null variant.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean content. The second result is false when the
// Value holds a different variant.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.val.(bool), true
}

func (v Value) AsInt() (int, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.val.(int), true
}

func (v Value) AsFloat() (float64, bool) {
	if v.kind != KindFloat {
		return 0, false
	}
	return v.val.(float64), true
}

func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.val.(string), true
}

func (v Value) AsDate() (time.Time, bool) {
	if v.kind != KindDate {
		return time.Time{}, false
	}
	return v.val.(time.Time), true
}

func (v Value) AsList() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return v.val.([]Value), true
}

func (v Value) AsStructure() (map[string]Value, bool) {
	if v.kind != KindStructure {
		return nil, false
	}
	return v.val.(map[string]Value), true
}

// Native projects the Value onto plain Go types: nil, bool, int, float64,
// string, time.Time, []any, or map[string]any.
func (v Value) Native() any {
	switch v.kind {
	case KindList:
		items := v.val.([]Value)
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = item.Native()
		}
		return out
	case KindStructure:
		fields := v.val.(map[string]Value)
		out := make(map[string]any, len(fields))
		for k, field := range fields {
			out[k] = field.Native()
		}
		return out
	default:
		return v.val
	}
}

// MarshalJSON encodes the Value as its natural JSON shape. Dates are encoded
// as RFC 3339 strings since JSON has no timestamp literal.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.jsonValue())
}

func (v Value) jsonValue() any {
	switch v.kind {
	case KindDate:
		return v.val.(time.Time).UTC().Format(time.RFC3339)
	case KindList:
		items := v.val.([]Value)
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = item.jsonValue()
		}
		return out
	case KindStructure:
		fields := v.val.(map[string]Value)
		out := make(map[string]any, len(fields))
		for k, field := range fields {
			out[k] = field.jsonValue()
		}
		return out
	default:
		return v.val
	}
}

// UnmarshalJSON decodes an arbitrary JSON document into the union. Objects
// become structures, arrays become lists (order preserved), and numbers
// resolve to Int when integer-representable, otherwise to Float.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*v = fromDecoded(raw)
	return nil
}

func fromDecoded(raw any) Value {
	switch t := raw.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(t)
	case string:
		return String(t)
	case json.Number:
		return fromNumber(t)
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = fromDecoded(item)
		}
		return Value{kind: KindList, val: items}
	case map[string]any:
		fields := make(map[string]Value, len(t))
		for k, field := range t {
			fields[k] = fromDecoded(field)
		}
		return Value{kind: KindStructure, val: fields}
	default:
		// Unreachable for well-formed decoder output.
		return Null()
	}
}

// fromNumber keeps small integers as Int so they round-trip without turning
// into floats; everything else becomes Float.
func fromNumber(n json.Number) Value {
	if i, err := strconv.ParseInt(n.String(), 10, strconv.IntSize); err == nil {
		return Int(int(i))
	}
	if f, err := strconv.ParseFloat(n.String(), 64); err == nil {
		return Float(f)
	}
	return Null()
}
