// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package jsonvalue

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Scalars(t *testing.T) {
	tests := []struct {
		in   string
		kind Kind
	}{
		{`"hello"`, KindString},
		{`42`, KindNumber},
		{`-1.5e3`, KindNumber},
		{`true`, KindBool},
		{`null`, KindNull},
		{`[]`, KindArray},
		{`{}`, KindObject},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			v, err := Decode([]byte(tc.in))
			require.NoError(t, err)
			assert.Equal(t, tc.kind, v.Kind())
		})
	}
}

func TestDecode_PreservesMemberOrder(t *testing.T) {
	v, err := Decode([]byte(`{"zeta":1,"alpha":2,"mid":{"b":true,"a":false}}`))
	require.NoError(t, err)

	var keys []string
	for _, m := range v.Members() {
		keys = append(keys, m.Key)
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, keys)

	mid, ok := v.Field("mid")
	require.True(t, ok)
	assert.Equal(t, "b", mid.Members()[0].Key)
}

func TestDecode_DuplicateKeysKeepFirstPosition(t *testing.T) {
	v, err := Decode([]byte(`{"a":"one","b":"two","a":"three"}`))
	require.NoError(t, err)

	require.Equal(t, 2, v.Len())
	assert.Equal(t, "a", v.Members()[0].Key)
	s, _ := v.Members()[0].Value.Str()
	assert.Equal(t, "three", s)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"empty", ``, ErrEmpty},
		{"whitespace", "   \n", ErrEmpty},
		{"trailing", `{"a":1} {"b":2}`, ErrTrailingData},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode([]byte(tc.in))
			assert.True(t, errors.Is(err, tc.want), "got %v, want %v", err, tc.want)
		})
	}

	_, err := Decode([]byte(`{"a":`))
	assert.Error(t, err)
	_, err = Decode([]byte(`<html>`))
	assert.Error(t, err)
}

func TestDecode_TooDeep(t *testing.T) {
	doc := strings.Repeat("[", MaxNesting+1) + strings.Repeat("]", MaxNesting+1)
	_, err := Decode([]byte(doc))
	assert.ErrorIs(t, err, ErrTooDeep)

	ok := strings.Repeat("[", MaxNesting) + strings.Repeat("]", MaxNesting)
	_, err = Decode([]byte(ok))
	assert.NoError(t, err)
}

func TestPretty(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty object", `{}`, "{}"},
		{"empty array", `[]`, "[]"},
		{"flat", `{"foo":"bar"}`, "{\n  \"foo\": \"bar\"\n}"},
		{"number", `7`, "7"},
		{"number literal kept", `{"n":1.0e2}`, "{\n  \"n\": 1.0e2\n}"},
		{"nested", `{"a":[1,{"b":null}]}`, "{\n  \"a\": [\n    1,\n    {\n      \"b\": null\n    }\n  ]\n}"},
		{"no html escaping", `{"t":"<b>&</b>"}`, "{\n  \"t\": \"<b>&</b>\"\n}"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v, err := Decode([]byte(tc.in))
			require.NoError(t, err)
			assert.Equal(t, tc.want, v.Pretty())
		})
	}
}

func TestPretty_MatchesStdlibForFlatObject(t *testing.T) {
	v := Object(Member{Key: "foo", Value: String("bar")})
	want, err := json.MarshalIndent(map[string]string{"foo": "bar"}, "", "  ")
	require.NoError(t, err)
	assert.Equal(t, string(want), v.Pretty())
}

func TestValue_InStruct(t *testing.T) {
	var envelope struct {
		Data Value `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"data":{"y":1,"x":2}}`), &envelope))
	assert.Equal(t, "y", envelope.Data.Members()[0].Key)

	out, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	assert.Equal(t, `{"y":1,"x":2}`, string(out))
}

func TestAccessors_WrongKind(t *testing.T) {
	v := Number("3")
	_, ok := v.Str()
	assert.False(t, ok)
	assert.Nil(t, v.Members())
	assert.Nil(t, v.Elements())
	_, ok = v.Field("x")
	assert.False(t, ok)
	assert.True(t, Null().IsNull())
	assert.Equal(t, "object", KindObject.String())
}
