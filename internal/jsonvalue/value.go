// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package jsonvalue holds decoded JSON as a typed value that keeps object
// members in document order.
//
// encoding/json decodes objects into maps, which loses member order. The
// response extractor searches "the first matching field in traversal order",
// so order has to survive decoding.
//
// Numbers keep the literal text they were decoded from, so Pretty prints
// 1.0e2 as 1.0e2 rather than normalizing it to 100. The value is the same;
// only its spelling is preserved.
package jsonvalue

import (
	"encoding/json"
)

// Kind identifies which shape a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns the JSON type name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Member is one key/value pair of an object.
type Member struct {
	Key   string
	Value Value
}

// Value is a decoded JSON value. The zero Value is JSON null.
type Value struct {
	kind    Kind
	b       bool
	num     json.Number
	str     string
	elems   []Value
	members []Member
}

// Null returns the JSON null value.
func Null() Value { return Value{} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number wraps a number literal. The literal is kept verbatim.
func Number(n json.Number) Value { return Value{kind: KindNumber, num: n} }

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Array builds an array from elems.
func Array(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{kind: KindArray, elems: elems}
}

// Object builds an object from members in the given order. A repeated key
// replaces the earlier value in the earlier position, matching how browsers
// parse duplicate keys.
func Object(members ...Member) Value {
	out := make([]Member, 0, len(members))
	for _, m := range members {
		out = setMember(out, m.Key, m.Value)
	}
	return Value{kind: KindObject, members: out}
}

func setMember(members []Member, key string, v Value) []Member {
	for i := range members {
		if members[i].Key == key {
			members[i].Value = v
			return members
		}
	}
	return append(members, Member{Key: key, Value: v})
}

// Kind reports the shape of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is JSON null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Str returns the string payload and whether v is a string.
func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// BoolValue returns the boolean payload and whether v is a boolean.
func (v Value) BoolValue() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// NumberValue returns the number literal and whether v is a number.
func (v Value) NumberValue() (json.Number, bool) {
	if v.kind != KindNumber {
		return "", false
	}
	return v.num, true
}

// Elements returns the elements of an array, or nil for other kinds.
func (v Value) Elements() []Value {
	if v.kind != KindArray {
		return nil
	}
	return v.elems
}

// Members returns the members of an object in document order, or nil for
// other kinds.
func (v Value) Members() []Member {
	if v.kind != KindObject {
		return nil
	}
	return v.members
}

// Field looks up a member of an object by exact key.
func (v Value) Field(key string) (Value, bool) {
	for _, m := range v.Members() {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Len returns the number of elements or members; zero for scalars.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.elems)
	case KindObject:
		return len(v.members)
	default:
		return 0
	}
}
