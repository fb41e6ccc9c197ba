package shopee

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexInt(t *testing.T) {
	tests := map[string]struct {
		input string
		want  flexInt
	}{
		"number":        {input: `42`, want: 42},
		"string":        {input: `"42"`, want: 42},
		"padded string": {input: `" 42 "`, want: 42},
		"float":         {input: `41.6`, want: 42},
		"null":          {input: `null`, want: 0},
		"empty string":  {input: `""`, want: 0},
		"large id":      {input: `"9007199254740993"`, want: 9007199254740993},
		"negative":      {input: `-3`, want: -3},
		"exponent":      {input: `1e3`, want: 1000},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var got flexInt
			require.NoError(t, json.Unmarshal([]byte(tt.input), &got))
			assert.Equal(t, tt.want, got)
		})
	}

	var bad flexInt
	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &bad))
}

func TestFlexFloat(t *testing.T) {
	var v struct {
		A flexFloat `json:"a"`
		B flexFloat `json:"b"`
		C flexFloat `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":4.5,"b":"4.75","c":null}`), &v))

	assert.Equal(t, flexFloat(4.5), v.A)
	assert.Equal(t, flexFloat(4.75), v.B)
	assert.Equal(t, flexFloat(0), v.C)
}

func TestFlexPercent(t *testing.T) {
	tests := map[string]flexPercent{
		`20`:      20,
		`"20"`:    20,
		`"20%"`:   20,
		`" 15% "`: 15,
		`null`:    0,
	}

	for input, want := range tests {
		var got flexPercent
		require.NoError(t, json.Unmarshal([]byte(input), &got), input)
		assert.Equal(t, want, got, input)
	}
}

func TestCategoryList(t *testing.T) {
	var v struct {
		Categories categoryList `json:"categories"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"categories":["Moda", {"display_name":"Calçados"}, {"name":"Tênis"}, " "]}`), &v))
	assert.Equal(t, categoryList{"Moda", "Calçados", "Tênis"}, v.Categories)

	require.NoError(t, json.Unmarshal([]byte(`{"categories":null}`), &v))
	assert.Nil(t, v.Categories)

	assert.Error(t, json.Unmarshal([]byte(`{"categories":"Moda"}`), &v))
}
