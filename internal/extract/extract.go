// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package extract locates the answer text inside an arbitrarily shaped
// webhook payload.
//
// Lookup order, first match wins:
//
//  1. the payload itself when it is a string
//  2. a top-level "response" string
//  3. a top-level "answer" string
//  4. a top-level "output" string
//  5. the first nested "output" string, depth-first in document order
//  6. the whole payload pretty-printed as JSON
//
// Steps 2-4 skip empty strings. In step 5 an object whose own "output" is a
// string ends the search of that subtree: a non-empty value is the answer,
// an empty one moves the search on to the next sibling without visiting the
// object's children. An empty top-level "output" therefore falls through to
// step 6. Decoded JSON cannot contain cycles, so the nested search needs no
// cycle detection; MaxDepth only bounds pathological nesting.
package extract

import (
	"github.com/jeranaias/orb-tui/internal/jsonvalue"
)

// MaxDepth bounds how many container levels the nested search descends.
const MaxDepth = 64

// Source records which rule produced the text.
type Source int

const (
	SourceString Source = iota
	SourceResponse
	SourceAnswer
	SourceOutput
	SourceNested
	SourceFallback
)

// String returns a short label for logging.
func (s Source) String() string {
	switch s {
	case SourceString:
		return "string"
	case SourceResponse:
		return "response"
	case SourceAnswer:
		return "answer"
	case SourceOutput:
		return "output"
	case SourceNested:
		return "nested_output"
	case SourceFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// topLevelFields are checked in priority order.
var topLevelFields = []struct {
	key    string
	source Source
}{
	{"response", SourceResponse},
	{"answer", SourceAnswer},
	{"output", SourceOutput},
}

// nestedField is the key the depth-first search looks for.
const nestedField = "output"

// Result is the extracted text and the rule that produced it.
type Result struct {
	Text   string
	Source Source
}

// Extract applies the lookup rules to v. It never fails: when nothing
// matches, the pretty-printed payload is the answer.
func Extract(v jsonvalue.Value) Result {
	if s, ok := v.Str(); ok {
		return Result{Text: s, Source: SourceString}
	}

	if v.Kind() == jsonvalue.KindObject {
		for _, f := range topLevelFields {
			if s, ok := nonEmptyString(v, f.key); ok {
				return Result{Text: s, Source: f.source}
			}
		}
		if s, ok := findNested(v, 0); ok {
			return Result{Text: s, Source: SourceNested}
		}
	}

	return Result{Text: v.Pretty(), Source: SourceFallback}
}

func nonEmptyString(obj jsonvalue.Value, key string) (string, bool) {
	field, ok := obj.Field(key)
	if !ok {
		return "", false
	}
	s, ok := field.Str()
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// findNested checks the container's own "output" member before descending
// into its children in order. A string "output" stops the descent even when
// it is empty.
func findNested(v jsonvalue.Value, depth int) (string, bool) {
	if depth > MaxDepth {
		return "", false
	}

	switch v.Kind() {
	case jsonvalue.KindObject:
		if field, ok := v.Field(nestedField); ok {
			if s, ok := field.Str(); ok {
				return s, s != ""
			}
		}
		for _, m := range v.Members() {
			if s, ok := findNested(m.Value, depth+1); ok {
				return s, true
			}
		}
	case jsonvalue.KindArray:
		for _, e := range v.Elements() {
			if s, ok := findNested(e, depth+1); ok {
				return s, true
			}
		}
	}
	return "", false
}
