package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractBrand_CapitalizedRun(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"single capitalized word", "show me all Vans", "Vans"},
		{"multi-word run wins by length", "do you have US Polo Assn shirts", "US Polo Assn"},
		{"longest of several runs", "is Nike better than Converse", "Converse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractBrand(tt.query)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractBrand_KeywordFallback(t *testing.T) {
	got, ok := ExtractBrand("show me nike sneakers")
	assert.True(t, ok)
	assert.Equal(t, "Nike", got)

	got, ok = ExtractBrand("any vans in stock?")
	assert.True(t, ok)
	assert.Equal(t, "Vans", got)
}

func TestExtractBrand_NoHint(t *testing.T) {
	_, ok := ExtractBrand("show me some red sneakers")
	assert.False(t, ok)

	_, ok = ExtractBrand("")
	assert.False(t, ok)
}

func TestWantsAll(t *testing.T) {
	assert.True(t, WantsAll("list all shoes"))
	assert.True(t, WantsAll("show me ALL of them"))
	assert.True(t, WantsAll("what others do you have"))
	assert.True(t, WantsAll("show everything"))
	assert.True(t, WantsAll("any more like this?"))

	assert.False(t, WantsAll("show me a red sneaker"))
	// Whole-word matching: "tall" and "smallest" must not trigger.
	assert.False(t, WantsAll("tall boots for the smallest size"))
	assert.False(t, WantsAll(""))
}
