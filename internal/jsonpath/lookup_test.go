package jsonpath

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestGet(t *testing.T) {
	doc := decode(t, `{
		"data": {"data": {"title": "Lamp", "tags": ["a", "b"], "empty": null}},
		"count": 3
	}`)

	tests := []struct {
		name   string
		path   string
		want   any
		wantOK bool
	}{
		{"root", "", doc, true},
		{"nested string", "data.data.title", "Lamp", true},
		{"array index", "data.data.tags.1", "b", true},
		{"array out of range", "data.data.tags.5", nil, false},
		{"array non numeric", "data.data.tags.x", nil, false},
		{"null value", "data.data.empty", nil, false},
		{"missing key", "data.missing.title", nil, false},
		{"through scalar", "count.value", nil, false},
		{"number", "count", float64(3), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Get(doc, tt.path)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLookupDefaults(t *testing.T) {
	doc := decode(t, `{"productDetails": {"Brand": "Acme"}, "rating": 4.5}`)

	assert.Equal(t, "Acme", Lookup(doc, "productDetails.Brand", nil))
	assert.Nil(t, Lookup(doc, "productDetails.Color", nil))
	assert.Equal(t, "n/a", Lookup(nil, "a.b", "n/a"))

	assert.Equal(t, "Acme", LookupAs(doc, "productDetails.Brand", ""))
	assert.Equal(t, "fallback", LookupAs(doc, "rating", "fallback"))
	assert.Equal(t, 4.5, LookupAs(doc, "rating", 0.0))
	assert.Equal(t, "", String(doc, "productDetails"))
}
