package serialize

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/dalemusser/fhurl/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type account struct {
	Name string
}

func (a account) ToJSON() any {
	return map[string]any{"name": a.Name}
}

type ptrJSONer struct{ n int }

func (p *ptrJSONer) ToJSON() any { return p.n }

type rawID string

func (r rawID) MarshalJSON() ([]byte, error) {
	return []byte(`{ "id" : "` + string(r) + `" }`), nil
}

func TestMarshal_Primitives(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, `null`},
		{"bool", true, `true`},
		{"int", -3, `-3`},
		{"uint8", uint8(7), `7`},
		{"float", 1.5, `1.5`},
		{"string escapes", "a\"<b>", `"a\"\u003cb\u003e"`},
		{"slice", []any{1, "x", nil}, `[1,"x",null]`},
		{"array", [2]int{1, 2}, `[1,2]`},
		{"nil slice", []string(nil), `null`},
		{"sorted map", map[string]int{"b": 2, "a": 1, "c": 3}, `{"a":1,"b":2,"c":3}`},
		{"nested errors", map[string][]string{"username": {"This field is required."}}, `{"username":["This field is required."]}`},
		{"pointer", func() *int { n := 4; return &n }(), `4`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Marshal(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestMarshal_Times(t *testing.T) {
	ts := time.Date(2024, time.March, 5, 14, 7, 9, 123, time.UTC)

	got, err := Marshal(map[string]any{"at": ts, "on": DateOf(ts), "ptr": &ts})
	require.NoError(t, err)
	assert.Equal(t, `{"at":"2024-03-05T14:07:09","on":"2024-03-05","ptr":"2024-03-05T14:07:09"}`, string(got))
}

func TestMarshal_LazyStrings(t *testing.T) {
	b := i18n.NewBundle("en")
	b.AddMessages("fr", map[string]string{"greet": "Bonjour"})

	got, err := Marshal([]any{i18n.Lazy("greet")}, WithLocalizer(b.Localizer("fr")))
	require.NoError(t, err)
	assert.Equal(t, `["Bonjour"]`, string(got))

	got, err = Marshal(i18n.LazyDefault("greet", "Hello"))
	require.NoError(t, err)
	assert.Equal(t, `"Hello"`, string(got))
}

func TestMarshal_OptIns(t *testing.T) {
	got, err := Marshal(map[string]any{"user": account{Name: "john"}})
	require.NoError(t, err)
	assert.Equal(t, `{"user":{"name":"john"}}`, string(got))

	got, err = Marshal(&ptrJSONer{n: 9})
	require.NoError(t, err)
	assert.Equal(t, `9`, string(got))

	got, err = Marshal(rawID("x1"))
	require.NoError(t, err)
	assert.Equal(t, `{"id":"x1"}`, string(got))
}

func TestMarshal_Unsupported(t *testing.T) {
	tests := []struct {
		name     string
		in       any
		wantPath string
		wantType string
	}{
		{"plain struct", struct{ A int }{1}, "$", "struct { A int }"},
		{"struct in map", map[string]any{"user": struct{ A int }{1}}, "$.user", "struct { A int }"},
		{"func in slice", []any{1, func() {}}, "$[1]", "func()"},
		{"int keyed map", map[int]string{1: "a"}, "$", "map[int]string"},
		{"chan", make(chan int), "$", "chan int"},
		{"nan", math.NaN(), "$", "float64"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Marshal(tt.in)
			var se *SerializationError
			require.True(t, errors.As(err, &se), "got %v", err)
			assert.Equal(t, tt.wantPath, se.Path)
			assert.Equal(t, tt.wantType, se.Type)
		})
	}
}

func TestMarshal_Deterministic(t *testing.T) {
	v := map[string]any{"z": map[string]any{"b": 1, "a": 2}, "y": []string{"q"}}
	first, err := Marshal(v)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := Marshal(v)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.True(t, json.Valid(first))
}
