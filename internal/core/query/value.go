package query

import (
	"encoding/json"
	"fmt"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindNumber
	KindBool
	KindList
	KindObject
)

// Value is an opaque filter or variable value: string, number, boolean, null,
// list or string-keyed object. Object keys keep insertion order so the
// serialized payload mirrors the request. The zero Value is null.
type Value struct {
	kind ValueKind
	str  string
	num  float64
	b    bool
	list []Value
	obj  *orderedmap.OrderedMap[string, Value]
}

// Null returns the null value.
func Null() Value { return Value{} }

// String wraps s.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number wraps f.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Int wraps n as a number.
func Int(n int) Value { return Number(float64(n)) }

// Bool wraps b.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// List wraps items.
func List(items ...Value) Value {
	return Value{kind: KindList, list: append([]Value{}, items...)}
}

// Strings wraps a string slice as a list of strings.
func Strings(items []string) Value {
	v := Value{kind: KindList, list: make([]Value, 0, len(items))}
	for _, s := range items {
		v.list = append(v.list, String(s))
	}
	return v
}

// Object returns an empty object. Objects share their storage across copies,
// so Set on a copy is visible through the original.
func Object() Value {
	return Value{kind: KindObject, obj: orderedmap.New[string, Value]()}
}

// Kind returns the variant of v.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Str returns the string payload, or "" for other kinds.
func (v Value) Str() string { return v.str }

// Items returns the elements of a list.
func (v Value) Items() []Value { return v.list }

// Len returns the number of list elements or object keys.
func (v Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.list)
	case KindObject:
		return v.obj.Len()
	}
	return 0
}

// Set stores key on an object value. It panics on other kinds.
func (v Value) Set(key string, val Value) {
	if v.kind != KindObject {
		panic(fmt.Sprintf("query: Set on non-object value of kind %d", v.kind))
	}
	v.obj.Set(key, val)
}

// Get returns the value stored under key on an object.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	return v.obj.Get(key)
}

// Keys returns object keys in insertion order.
func (v Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}
	keys := make([]string, 0, v.obj.Len())
	for pair := v.obj.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Append adds val to a list value and returns the result.
func (v Value) Append(val Value) Value {
	if v.kind != KindList {
		return List(v, val)
	}
	v.list = append(v.list, val)
	return v
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return []byte(strconv.FormatFloat(v.num, 'f', -1, 64)), nil
	case KindBool:
		return []byte(strconv.FormatBool(v.b)), nil
	case KindList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	case KindObject:
		return v.obj.MarshalJSON()
	default:
		return []byte("null"), nil
	}
}

// String renders v as compact JSON, for logs.
func (v Value) String() string {
	b, err := v.MarshalJSON()
	if err != nil {
		return "<invalid>"
	}
	return string(b)
}
