package sanitize_test

import (
	"testing"

	"github.com/mariocromia/centroservice/pkg/sanitize"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	t.Run("trims surrounding whitespace", func(t *testing.T) {
		assert.Equal(t, "Maria Souza", sanitize.Clean("  Maria Souza \t\n"))
	})

	t.Run("escapes HTML reserved characters", func(t *testing.T) {
		assert.Equal(t, "&lt;script&gt;alert(1)&lt;/script&gt;", sanitize.Clean("<script>alert(1)</script>"))
		assert.Equal(t, "a &amp; b", sanitize.Clean("a & b"))
		assert.Equal(t, "&#34;aspas&#34; e &#39;apóstrofo&#39;", sanitize.Clean(`"aspas" e 'apóstrofo'`))
	})

	t.Run("removes NUL bytes and escape backslashes", func(t *testing.T) {
		assert.Equal(t, "abc", sanitize.Clean("a\x00bc"))
		assert.Equal(t, "O&#39;Brien", sanitize.Clean(`O\'Brien`))
		assert.Equal(t, `c:\temp`, sanitize.Clean(`c:\\temp`))
	})

	t.Run("keeps interior newlines", func(t *testing.T) {
		assert.Equal(t, "linha 1\nlinha 2", sanitize.Clean("linha 1\nlinha 2"))
	})

	t.Run("never fails on odd input", func(t *testing.T) {
		assert.Equal(t, "", sanitize.Clean("   "))
		assert.Equal(t, "", sanitize.Clean("\\"))
	})
}

func TestDigits(t *testing.T) {
	assert.Equal(t, "21965982113", sanitize.Digits("(21) 96598-2113"))
	assert.Equal(t, "", sanitize.Digits("abc"))
}
