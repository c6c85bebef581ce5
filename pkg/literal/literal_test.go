package literal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEval(t *testing.T) {
	tests := []struct {
		src  string
		want interface{}
	}{
		{`[1, 2, 3]`, []interface{}{int64(1), int64(2), int64(3)}},
		{`{'a': 1, 'b': [2.5, 'x']}`, map[string]interface{}{
			"a": int64(1),
			"b": []interface{}{2.5, "x"},
		}},
		{`(1, 'two')`, []interface{}{int64(1), "two"}},
		{`'hello'`, "hello"},
		{`"hello"`, "hello"},
		{`3.14`, 3.14},
		{`True`, true},
		{`None`, nil},
	}
	for _, test := range tests {
		t.Run(test.src, func(t *testing.T) {
			got, err := Eval(test.src)
			require.NoError(t, err)
			require.Equal(t, test.want, got)
		})
	}
}

func TestEvalMalformed(t *testing.T) {
	for _, src := range []string{
		`[1, 2`,
		`hello`, // bare name, not a literal
		`{'a': }`,
	} {
		t.Run(src, func(t *testing.T) {
			_, err := Eval(src)
			require.Error(t, err)
		})
	}
}

func TestEvalJSON(t *testing.T) {
	got, err := EvalJSON(`{'k': [1, 2], 'ok': True}`)
	require.NoError(t, err)
	require.JSONEq(t, `{"k": [1, 2], "ok": true}`, got)

	got, err = EvalJSON(`[1, 2, 3]`)
	require.NoError(t, err)
	require.Equal(t, `[1,2,3]`, got)
}

func TestEvalRejectsNonStringDictKeys(t *testing.T) {
	_, err := Eval(`{1: 'a'}`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "dict key")
}
