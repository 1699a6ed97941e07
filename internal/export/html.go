// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter writes a standalone page with embedded CSS. Answers are
// rendered from markdown; raw HTML inside an answer is dropped.
type HTMLExporter struct {
	options *Options
	md      goldmark.Markdown
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	o := *opts
	if o.Theme != "light" {
		o.Theme = "dark"
	}
	return &HTMLExporter{
		options: &o,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
		),
	}
}

type htmlExchange struct {
	Query  string
	Answer template.HTML
	Time   string
}

type htmlPage struct {
	Title      string
	Session    string
	Theme      string
	ExportedAt string
	Count      int
	Exchanges  []htmlExchange
}

// Export converts a document to HTML.
func (e *HTMLExporter) Export(doc Document) ([]byte, error) {
	at := doc.ExportedAt
	if at.IsZero() {
		at = time.Now()
	}
	page := htmlPage{
		Title:      doc.Title,
		Session:    doc.Session,
		Theme:      e.options.Theme,
		ExportedAt: at.Format(time.RFC3339),
		Count:      len(doc.Exchanges),
		Exchanges:  make([]htmlExchange, 0, len(doc.Exchanges)),
	}
	if page.Title == "" {
		page.Title = "Conversation"
	}

	for _, ex := range doc.Exchanges {
		answer, err := e.renderMarkdown(ex.Response)
		if err != nil {
			return nil, fmt.Errorf("render answer %s: %w", ex.ID, err)
		}
		item := htmlExchange{Query: ex.Query, Answer: answer}
		if e.options.IncludeTimestamps && ex.Timestamp > 0 {
			item.Time = ex.CreatedAt().Format("2006-01-02 15:04:05")
		}
		page.Exchanges = append(page.Exchanges, item)
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, page); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderMarkdown converts an answer to HTML. goldmark omits raw HTML
// unless the unsafe renderer option is set, so the output is trusted.
func (e *HTMLExporter) renderMarkdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := e.md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string { return ".html" }

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string { return "text/html" }

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <meta name="generator" content="orb">
    <meta name="date" content="{{.ExportedAt}}">
    <title>{{.Title}}</title>
    <style>` + pageCSS + `</style>
</head>
<body class="{{.Theme}}-theme">
    <div class="container">
        <header class="header">
            <h1>{{.Title}}</h1>
            <div class="metadata">
                {{if .Session}}<span>Session {{.Session}}</span>{{end}}
                <span>{{.Count}} exchanges</span>
                <span>Exported {{.ExportedAt}}</span>
            </div>
        </header>
        <main class="conversation">
{{- range .Exchanges}}
            <section class="exchange">
                <div class="message user">
                    <div class="role">You{{if .Time}} <span class="time">{{.Time}}</span>{{end}}</div>
                    <div class="content"><p>{{.Query}}</p></div>
                </div>
                <div class="message answer">
                    <div class="role">Answer</div>
                    <div class="content">{{.Answer}}</div>
                </div>
            </section>
{{- else}}
            <p class="empty">No exchanges yet.</p>
{{- end}}
        </main>
    </div>
</body>
</html>
`))

const pageCSS = `
        * { margin: 0; padding: 0; box-sizing: border-box; }

        :root {
            --font-sans: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif;
            --font-mono: "SF Mono", "Monaco", "Inconsolata", "Fira Code", "Source Code Pro", monospace;
        }

        .dark-theme {
            --bg-primary: #14121f;
            --bg-secondary: #1e1b2e;
            --bg-tertiary: #2c2842;
            --text-primary: #e6e1f5;
            --text-muted: #8a84a3;
            --border-color: #3a3556;
            --user-bg: #262238;
            --code-bg: #14121f;
            --accent: #b48cff;
        }

        .light-theme {
            --bg-primary: #ffffff;
            --bg-secondary: #f7f6fb;
            --bg-tertiary: #ebe8f4;
            --text-primary: #221f2e;
            --text-muted: #6b6680;
            --border-color: #dcd8e8;
            --user-bg: #efecf8;
            --code-bg: #f2f0f7;
            --accent: #6f42c1;
        }

        body {
            font-family: var(--font-sans);
            font-size: 16px;
            line-height: 1.6;
            color: var(--text-primary);
            background: var(--bg-primary);
            padding: 20px;
        }

        .container {
            max-width: 900px;
            margin: 0 auto;
            background: var(--bg-secondary);
            border-radius: 12px;
            overflow: hidden;
        }

        .header { padding: 32px; background: var(--bg-tertiary); border-bottom: 2px solid var(--border-color); }
        .header h1 { font-size: 28px; margin-bottom: 12px; }
        .metadata { display: flex; flex-wrap: wrap; gap: 16px; font-size: 14px; color: var(--text-muted); }

        .conversation { padding: 24px 32px; }
        .exchange { margin-bottom: 28px; }
        .message { padding: 14px 18px; border-radius: 10px; margin-bottom: 10px; }
        .message.user { background: var(--user-bg); }
        .message.answer { border-left: 3px solid var(--accent); }
        .role { font-size: 13px; font-weight: 600; color: var(--accent); margin-bottom: 6px; }
        .time { font-weight: 400; color: var(--text-muted); margin-left: 8px; }
        .content p, .content ul, .content ol, .content pre, .content table { margin-bottom: 10px; }
        .content ul, .content ol { padding-left: 24px; }
        .content code { font-family: var(--font-mono); font-size: 14px; background: var(--code-bg); padding: 1px 4px; border-radius: 4px; }
        .content pre { background: var(--code-bg); padding: 12px; border-radius: 8px; overflow-x: auto; }
        .content pre code { padding: 0; }
        .content table { border-collapse: collapse; }
        .content th, .content td { border: 1px solid var(--border-color); padding: 4px 10px; }
        .empty { color: var(--text-muted); }
`
