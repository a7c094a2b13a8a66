package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	type nested struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	t.Run("structs become plain maps", func(t *testing.T) {
		value := Sanitize(&nested{Name: "a", Count: 2})
		asMap, ok := value.(map[string]interface{})
		assert.True(t, ok)
		assert.Equal(t, "a", asMap["name"])
		assert.Equal(t, float64(2), asMap["count"])
	})

	t.Run("nil passes through as no result", func(t *testing.T) {
		assert.Nil(t, Sanitize(nil))
	})

	t.Run("unserializable values fall back to their string form", func(t *testing.T) {
		value := Sanitize(func() {})
		_, ok := value.(string)
		assert.True(t, ok)
	})

	t.Run("scalars survive the round trip", func(t *testing.T) {
		assert.Equal(t, "hello", Sanitize("hello"))
		assert.Equal(t, float64(42), Sanitize(42))
		assert.Equal(t, true, Sanitize(true))
	})
}
