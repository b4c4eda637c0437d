package wpmirror_test

import (
	"testing"

	"github.com/fwojciec/wpmirror"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	t.Run("empty input yields empty output", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "", wpmirror.Normalize(""))
	})

	t.Run("removes share widgets", func(t *testing.T) {
		t.Parallel()

		raw := `<p>Hello</p><div class="sharethis-inline-share-buttons" data-url="x">X</div>`
		assert.Equal(t, "<p>Hello</p>", wpmirror.Normalize(raw))
	})

	t.Run("removes ad containers and scripts", func(t *testing.T) {
		t.Parallel()

		raw := "<p>Body</p>\n<div class=\"adsbygoogle ad-slot\">ad\nmarkup</div>\n<script type=\"text/javascript\">track();</script>"
		assert.Equal(t, "<p>Body</p>", wpmirror.Normalize(raw))
	})

	t.Run("removes block-editor wrappers and time elements", func(t *testing.T) {
		t.Parallel()

		raw := `<div class="wp-block-group">wrapper</div><time datetime="2024-01-01T00:00:00">Jan 1</time><p>Kept</p>`
		assert.Equal(t, "<p>Kept</p>", wpmirror.Normalize(raw))
	})

	t.Run("strips style and data attributes", func(t *testing.T) {
		t.Parallel()

		raw := `<p style="color:red" data-token="abc123">Hi</p>`
		assert.Equal(t, "<p >Hi</p>", wpmirror.Normalize(raw))
	})

	t.Run("strips auto-generated numeric ids and classes", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, `<p >x</p>`, wpmirror.Normalize(`<p id="widget-1718291822123">x</p>`))
		assert.Equal(t, `<p class="intro">x</p>`, wpmirror.Normalize(`<p class="intro">x</p>`))
	})

	t.Run("removes shells left behind by attribute stripping", func(t *testing.T) {
		t.Parallel()

		raw := `<p>Hi</p><div class="holder">  </div><span style="x"> </span>`
		assert.Equal(t, "<p>Hi</p>", wpmirror.Normalize(raw))
	})

	t.Run("decodes entities and collapses whitespace", func(t *testing.T) {
		t.Parallel()

		raw := "<p>Fish &amp;   Chips</p>\n\n  <p>More</p>  "
		assert.Equal(t, "<p>Fish & Chips</p> <p>More</p>", wpmirror.Normalize(raw))
	})

	t.Run("is idempotent", func(t *testing.T) {
		t.Parallel()

		inputs := []string{
			"",
			"<p>Plain paragraph</p>",
			`<p>Hello</p><div class="sharethis-inline">X</div>`,
			"<p style=\"x\">Fish &amp; Chips</p>\n<script>a()</script>",
			`<div class="social-share"><a href="#">share</a></div><p>Body &hellip; text</p>`,
		}
		for _, raw := range inputs {
			once := wpmirror.Normalize(raw)
			assert.Equal(t, once, wpmirror.Normalize(once), "input: %q", raw)
		}
	})
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	t.Run("stable under markup noise", func(t *testing.T) {
		t.Parallel()

		clean := `<p>Hello</p>`
		assert.Equal(t, wpmirror.Fingerprint(clean), wpmirror.Fingerprint(`<p>Hello</p><div class='sharethis-inline'>X</div>`))
		assert.Equal(t, wpmirror.Fingerprint(clean), wpmirror.Fingerprint(`<p>Hello</p><div class="ad-container" data-slot="991">buy</div><script>g()</script>`))
	})

	t.Run("stable under entity encoding style", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t,
			wpmirror.Fingerprint("<p>Fish &amp; Chips</p>"),
			wpmirror.Fingerprint("<p>Fish &#38; Chips</p>"))
	})

	t.Run("stable under inline styles and data attributes", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t,
			wpmirror.Fingerprint(`<p>Hello</p>`),
			wpmirror.Fingerprint(`<p style="margin:0" data-reactid="r-8912">Hello</p>`))
	})

	t.Run("sensitive to real content changes", func(t *testing.T) {
		t.Parallel()

		assert.NotEqual(t,
			wpmirror.Fingerprint("<p>Hello</p>"),
			wpmirror.Fingerprint("<p>Hello, world</p>"))
	})

	t.Run("deterministic", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t,
			"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
			wpmirror.Fingerprint(""))
	})
}
