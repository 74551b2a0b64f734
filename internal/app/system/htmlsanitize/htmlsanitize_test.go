package htmlsanitize

import (
	"strings"
	"testing"
)

func TestSanitize_StripsScripts(t *testing.T) {
	in := `<p>Welcome</p><script>alert("x")</script>`
	out := Sanitize(in)
	if strings.Contains(out, "<script") || strings.Contains(out, "alert") {
		t.Errorf("script content survived sanitization: %q", out)
	}
	if !strings.Contains(out, "<p>Welcome</p>") {
		t.Errorf("safe markup should be preserved: %q", out)
	}
}

func TestSanitize_StripsEventHandlers(t *testing.T) {
	out := Sanitize(`<img src="x.png" onerror="steal()">`)
	if strings.Contains(out, "onerror") {
		t.Errorf("event handler survived sanitization: %q", out)
	}
}

func TestSanitize_StripsJavascriptURLs(t *testing.T) {
	out := Sanitize(`<a href="javascript:alert(1)">click</a>`)
	if strings.Contains(out, "javascript:") {
		t.Errorf("javascript URL survived sanitization: %q", out)
	}
}

func TestSanitize_KeepsLinksAndFormatting(t *testing.T) {
	in := `<h1>Title</h1><a href="https://example.com" rel="nofollow">site</a><strong>bold</strong>`
	out := Sanitize(in)
	for _, want := range []string{"<h1>Title</h1>", `href="https://example.com"`, "<strong>bold</strong>"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got %q", want, out)
		}
	}
}

func TestSanitize_Empty(t *testing.T) {
	if out := Sanitize(""); out != "" {
		t.Errorf("expected empty output for empty input, got %q", out)
	}
}
