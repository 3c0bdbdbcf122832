package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_LoadsEmbeddedTypesInOrder(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	types := c.Types()
	require.NotEmpty(t, types)
	assert.Equal(t, "Laptop", types[0].Name)
	assert.Equal(t, "LT", types[0].Prefix)
	assert.Equal(t, "Other", types[len(types)-1].Name)
}

func TestTagPrefix(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	tests := []struct {
		name      string
		assetType string
		assetName string
		want      string
	}{
		{name: "catalog entry", assetType: "Monitor", assetName: "Dell U2720Q", want: "MN"},
		{name: "catalog lookup ignores case", assetType: "laptop", assetName: "x", want: "LT"},
		{name: "unknown type uses its letters", assetType: "projector", assetName: "Epson", want: "PR"},
		{name: "empty type falls back to name", assetType: "", assetName: "dock", want: "DO"},
		{name: "skips punctuation", assetType: "-k", assetName: "", want: "AS"},
		{name: "nothing usable", assetType: "", assetName: "", want: DefaultPrefix},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.TagPrefix(tt.assetType, tt.assetName))
		})
	}
}

func TestTagPrefix_NilCatalog(t *testing.T) {
	var c *Catalog
	assert.Equal(t, "LA", c.TagPrefix("Laptop", ""))
}

func TestParse_RejectsBadPrefix(t *testing.T) {
	_, err := Parse([]byte("version: 1\ntypes:\n  Widget:\n    prefix: W\n"))
	assert.Error(t, err)
}

func TestParse_RejectsDuplicateNames(t *testing.T) {
	_, err := Parse([]byte("version: 1\ntypes:\n  Widget:\n    prefix: WI\n  widget:\n    prefix: WD\n"))
	assert.Error(t, err)
}
