// Package htmldoc renders arbitrary reply text into a standalone HTML
// document. The bot falls back to it when Telegram rejects an inline
// reply, typically over broken markup or the message size limit.
package htmldoc

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const DefaultTitle = "Shovel"

// defaultCSS covers the dark theme plus a light override toggled by the
// "light" class on body.
const defaultCSS = `
    :root {
        --bg-color: #121212;
        --text-color: #e0e0e0;
        --header-color: #bb86fc;
        --button-bg: #333;
        --button-text: #e0e0e0;
    }

    body.light {
        --bg-color: #f9f9f9;
        --text-color: #333;
        --header-color: #555;
        --button-bg: #ddd;
        --button-text: #333;
    }

    body {
        background-color: var(--bg-color);
        color: var(--text-color);
        font-family: Arial, sans-serif;
        line-height: 1.6;
        padding: 20px;
        transition: background-color 0.3s, color 0.3s;
    }
    h1, h2, h3 {
        color: var(--header-color);
    }
    p {
        margin-bottom: 10px;
    }
    pre {
        background-color: #2e2e2e;
        padding: 10px;
        border-radius: 5px;
        overflow-x: auto;
        white-space: pre-wrap;
        color: var(--text-color);
    }
    body.light pre {
        background-color: #f0f0f0;
        color: #333;
    }
    .theme-toggle {
        position: fixed;
        top: 20px;
        right: 20px;
        background-color: var(--button-bg);
        color: var(--button-text);
        border: none;
        padding: 10px 20px;
        border-radius: 5px;
        cursor: pointer;
        transition: background-color 0.3s, color 0.3s;
    }
    .theme-toggle:hover {
        opacity: 0.8;
    }
`

// themeScript persists the toggle choice in localStorage under "theme"
// and restores it on load.
const themeScript = `
        function toggleTheme() {
            const body = document.body;
            const isLight = body.classList.toggle('light');
            if (isLight) {
                localStorage.setItem('theme', 'light');
            } else {
                localStorage.setItem('theme', 'dark');
            }
        }

        (function() {
            const savedTheme = localStorage.getItem('theme');
            if (savedTheme === 'light') {
                document.body.classList.add('light');
            }
        })();
`

type options struct {
	title string
	css   string
}

type Option func(*options)

func WithTitle(title string) Option {
	return func(o *options) { o.title = title }
}

// WithCSS replaces the whole default stylesheet.
func WithCSS(css string) Option {
	return func(o *options) { o.css = css }
}

// Render writes the document to a uniquely named temp file and returns
// its path together with an idempotent cleanup func. Callers must defer
// cleanup immediately so the file is removed on every exit path.
func Render(text string, opts ...Option) (string, func(), error) {
	o := options{title: DefaultTitle, css: defaultCSS}
	for _, opt := range opts {
		opt(&o)
	}

	doc := document(text, o)

	path := filepath.Join(os.TempDir(), "shovel-"+uuid.NewString()+".html")
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		return "", nil, fmt.Errorf("writing fallback document: %w", err)
	}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			os.Remove(path)
		})
	}
	return path, cleanup, nil
}

func document(text string, o options) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString("    <meta charset=\"UTF-8\">\n")
	b.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	b.WriteString("    <title>" + html.EscapeString(o.title) + "</title>\n")
	b.WriteString("    <style>" + o.css + "</style>\n")
	b.WriteString("</head>\n<body class=\"dark\">\n")
	b.WriteString("    <button class=\"theme-toggle\" onclick=\"toggleTheme()\">Switch theme</button>\n")
	b.WriteString("    <pre>" + formatBody(text) + "</pre>\n")
	b.WriteString("    <script>" + themeScript + "    </script>\n")
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

// formatBody escapes the text first, then synthesizes markup: lines are
// joined with <br>, each gets a leading &emsp;, and 4-space indent runs
// become &emsp; so indentation stays visible.
func formatBody(text string) string {
	lines := strings.Split(text, "\n")
	formatted := make([]string, len(lines))
	for i, line := range lines {
		escaped := html.EscapeString(line)
		formatted[i] = "&emsp;" + strings.ReplaceAll(escaped, "    ", "&emsp;")
	}
	return strings.Join(formatted, "<br>")
}
