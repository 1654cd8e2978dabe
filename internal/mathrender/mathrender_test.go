package mathrender

import "testing"

func TestNoopRenderer_AlwaysErrors(t *testing.T) {
	var r Renderer = NoopRenderer{}

	html, err := r.Render(`x^2`, false)
	if err == nil {
		t.Fatal("expected NoopRenderer.Render to return an error")
	}
	if html != "" {
		t.Errorf("html = %q, want empty on error", html)
	}

	html, err = r.Render(`\sum_{i=0}^n i`, true)
	if err == nil {
		t.Fatal("expected NoopRenderer.Render to return an error in display mode too")
	}
	if html != "" {
		t.Errorf("html = %q, want empty on error", html)
	}
}
