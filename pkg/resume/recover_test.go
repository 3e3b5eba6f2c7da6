package resume

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{name: "whole object", in: `{"a":1}`, want: `{"a":1}`, ok: true},
		{name: "surrounding whitespace", in: "\n  {\"a\":1}\n", want: `{"a":1}`, ok: true},
		{name: "prose around object", in: `Here is the JSON: {"a": [1,2]} hope it helps`, want: `{"a": [1,2]}`, ok: true},
		{name: "fenced block", in: "```json\n{\"personal\":{\"name\":\"Jane\"}}\n```", want: `{"personal":{"name":"Jane"}}`, ok: true},
		{name: "whole array", in: `["go","sql"]`, want: `["go","sql"]`, ok: true},
		{name: "array in prose without braces", in: `Skills: ["Go","SQL"]`, ok: false},
		{name: "array after broken brace span", in: `[{"a":1}, {"b":2}] trailing }`, want: `[{"a":1}, {"b":2}]`, ok: true},
		{name: "scalar reply", in: `42`, want: `42`, ok: true},
		{name: "null reply", in: `null`, want: `null`, ok: true},
		{name: "no json", in: "Sorry, I can't help with that.", ok: false},
		{name: "empty", in: "", ok: false},
		{name: "unbalanced", in: `{"a": 1`, ok: false},
		{name: "reversed braces", in: `} nothing {`, ok: false},
		{name: "brace in prose breaks span", in: `Note {x}: {"a":1}`, ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := RecoverJSON(tt.in)
			require.Equal(t, tt.ok, ok)
			if !tt.ok {
				assert.Nil(t, got)
				return
			}
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestRecoverJSONIdempotent(t *testing.T) {
	inputs := []string{
		`{"a":1}`,
		"text before {\"b\": {\"c\": null}} and after",
		`[1, 2, {"x": "y"}]`,
	}
	for _, in := range inputs {
		v, ok := RecoverJSON(in)
		require.True(t, ok, in)
		again, ok := RecoverJSON(string(v))
		require.True(t, ok)
		assert.JSONEq(t, string(v), string(again))
	}
}

func TestRecoverJSONRoundTripsEncodedValues(t *testing.T) {
	values := []any{
		map[string]any{"name": "Jane", "skills": []any{"Go"}},
		[]any{"a", 1.5, true, nil},
		"plain string",
	}
	for _, v := range values {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		got, ok := RecoverJSON(string(b))
		require.True(t, ok)
		assert.JSONEq(t, string(b), string(got))
	}
}

func TestIsEmptyResult(t *testing.T) {
	for _, v := range []string{"null", " null ", "false", "0", "0.0", "-0", `""`} {
		assert.True(t, isEmptyResult(json.RawMessage(v)), v)
	}
	for _, v := range []string{`"null"`, `{}`, `[]`, "true", "1", `"x"`} {
		assert.False(t, isEmptyResult(json.RawMessage(v)), v)
	}
}
