// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package jsonvalue

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// MaxNesting bounds how deep Decode will follow arrays and objects.
const MaxNesting = 512

var (
	// ErrEmpty is returned when the input holds no JSON value at all.
	ErrEmpty = errors.New("empty JSON document")

	// ErrTrailingData is returned when more input follows the first value.
	ErrTrailingData = errors.New("unexpected data after JSON value")

	// ErrTooDeep is returned when nesting exceeds MaxNesting.
	ErrTooDeep = errors.New("JSON nesting too deep")
)

// Decode parses exactly one JSON document.
func Decode(data []byte) (Value, error) {
	return DecodeReader(bytes.NewReader(data))
}

// DecodeReader parses exactly one JSON document from r.
func DecodeReader(r io.Reader) (Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	v, err := decodeValue(dec, 0)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Value{}, ErrEmpty
		}
		return Value{}, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, ErrTrailingData
	}
	return v, nil
}

// UnmarshalJSON lets Value be used as a field in encoding/json structs.
func (v *Value) UnmarshalJSON(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

func decodeValue(dec *json.Decoder, depth int) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}

	switch t := tok.(type) {
	case json.Delim:
		if depth >= MaxNesting {
			return Value{}, ErrTooDeep
		}
		switch t {
		case '{':
			return decodeObject(dec, depth+1)
		case '[':
			return decodeArray(dec, depth+1)
		default:
			return Value{}, fmt.Errorf("unexpected delimiter %q", t)
		}
	case string:
		return String(t), nil
	case json.Number:
		return Number(t), nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null(), nil
	default:
		return Value{}, fmt.Errorf("unexpected token %T", tok)
	}
}

// truncated turns an EOF inside a container into io.ErrUnexpectedEOF so
// that only a document with no value at all reports ErrEmpty.
func truncated(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

func decodeObject(dec *json.Decoder, depth int) (Value, error) {
	members := []Member{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return Value{}, truncated(err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return Value{}, fmt.Errorf("object key is %T, not string", keyTok)
		}
		val, err := decodeValue(dec, depth)
		if err != nil {
			return Value{}, truncated(err)
		}
		members = setMember(members, key, val)
	}
	// Closing '}'.
	if _, err := dec.Token(); err != nil {
		return Value{}, truncated(err)
	}
	return Value{kind: KindObject, members: members}, nil
}

func decodeArray(dec *json.Decoder, depth int) (Value, error) {
	elems := []Value{}
	for dec.More() {
		val, err := decodeValue(dec, depth)
		if err != nil {
			return Value{}, truncated(err)
		}
		elems = append(elems, val)
	}
	if _, err := dec.Token(); err != nil {
		return Value{}, truncated(err)
	}
	return Value{kind: KindArray, elems: elems}, nil
}
