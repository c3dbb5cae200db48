package htmldoc

import (
	"os"
	"strings"
	"testing"
)

func renderToString(t *testing.T, text string, opts ...Option) string {
	t.Helper()
	path, cleanup, err := Render(text, opts...)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	t.Cleanup(cleanup)

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading rendered document: %v", err)
	}
	return string(raw)
}

func TestRenderEscapesMarkup(t *testing.T) {
	doc := renderToString(t, `evil <script>alert("x")</script> & more`)

	if strings.Contains(doc, "<script>alert") {
		t.Error("raw script tag leaked into the document")
	}
	if !strings.Contains(doc, "&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt;") {
		t.Errorf("expected escaped markup in document:\n%s", doc)
	}
	if !strings.Contains(doc, "&amp; more") {
		t.Error("ampersand was not escaped")
	}
}

func TestRenderPreservesLinesAndIndentation(t *testing.T) {
	doc := renderToString(t, "first\n    second\nthird")

	if !strings.Contains(doc, "&emsp;first<br>&emsp;&emsp;second<br>&emsp;third") {
		t.Errorf("line breaks or indentation lost:\n%s", doc)
	}
}

func TestRenderThemePersistence(t *testing.T) {
	doc := renderToString(t, "hello")

	for _, marker := range []string{
		`<body class="dark">`,
		`localStorage.setItem('theme', 'light')`,
		`localStorage.setItem('theme', 'dark')`,
		`localStorage.getItem('theme')`,
		`class="theme-toggle"`,
	} {
		if !strings.Contains(doc, marker) {
			t.Errorf("document missing %q", marker)
		}
	}
}

func TestRenderTitleOverride(t *testing.T) {
	doc := renderToString(t, "hello", WithTitle("My <Doc>"))

	if !strings.Contains(doc, "<title>My &lt;Doc&gt;</title>") {
		t.Errorf("title not escaped or not applied:\n%s", doc)
	}

	defaultDoc := renderToString(t, "hello")
	if !strings.Contains(defaultDoc, "<title>Shovel</title>") {
		t.Error("default title not applied")
	}
}

func TestRenderCSSOverride(t *testing.T) {
	doc := renderToString(t, "hello", WithCSS("body { color: red; }"))

	if !strings.Contains(doc, "body { color: red; }") {
		t.Error("custom stylesheet not applied")
	}
	if strings.Contains(doc, "--bg-color: #121212") {
		t.Error("default stylesheet still present with override")
	}
}

func TestRenderUniquePathsAndSuffix(t *testing.T) {
	pathA, cleanupA, err := Render("a")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	defer cleanupA()
	pathB, cleanupB, err := Render("b")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	defer cleanupB()

	if pathA == pathB {
		t.Error("two renders produced the same path")
	}
	if !strings.HasSuffix(pathA, ".html") {
		t.Errorf("path %q does not end in .html", pathA)
	}
}

func TestCleanupRemovesFileAndIsIdempotent(t *testing.T) {
	path, cleanup, err := Render("bye")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	cleanup()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("file still exists after cleanup: %v", err)
	}
	// Second call must be a no-op, not a panic or error.
	cleanup()
}
