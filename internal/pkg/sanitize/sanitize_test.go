package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	t.Run("strips tags", func(t *testing.T) {
		assert.Equal(t, "hello world", Text("<b>hello</b> <script>alert(1)</script>world"))
	})

	t.Run("keeps plain punctuation", func(t *testing.T) {
		assert.Equal(t, "Tom & Jerry's \"show\"", Text("  Tom & Jerry's \"show\" "))
	})
}

func TestOptionalText(t *testing.T) {
	assert.Nil(t, OptionalText(nil))

	blank := "<i></i>  "
	assert.Nil(t, OptionalText(&blank))

	v := "<p>Dhaka</p>"
	out := OptionalText(&v)
	if assert.NotNil(t, out) {
		assert.Equal(t, "Dhaka", *out)
	}
}
