package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	pdf "github.com/dslipak/pdf"
	"golang.org/x/net/html"

	"github.com/AndresFMC/RAG-powered-AI-assistant/internal/rag"
)

// IsSupported reports whether the loader can extract text from the
// file.
func IsSupported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".md", ".txt", ".html", ".htm":
		return true
	}
	return false
}

// LoadDocument extracts the ordered pages of a source file. PDFs keep
// their real page numbers; single-stream formats load as one page.
func LoadDocument(path string) (*rag.Document, error) {
	doc := &rag.Document{SourceFile: filepath.Base(path)}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		pages, err := extractPDFPages(path)
		if err != nil {
			return nil, fmt.Errorf("read pdf %s: %w", path, err)
		}
		doc.Pages = pages

	case ".html", ".htm":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if text := cleanText(extractMainText(string(data))); text != "" {
			doc.Pages = []rag.Page{{Number: 1, Text: text}}
		}

	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if text := cleanText(string(data)); text != "" {
			doc.Pages = []rag.Page{{Number: 1, Text: text}}
		}
	}

	return doc, nil
}

func extractPDFPages(path string) ([]rag.Page, error) {
	r, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}

	var pages []rag.Page
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		if text = cleanText(text); text != "" {
			pages = append(pages, rag.Page{Number: i, Text: text})
		}
	}
	return pages, nil
}

// extractMainText pulls visible text out of an HTML document, skipping
// script/style subtrees.
func extractMainText(htmlStr string) string {
	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return ""
	}

	var b strings.Builder
	var walk func(*html.Node, bool)

	walk = func(n *html.Node, skip bool) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				skip = true
			}
		}

		if n.Type == html.TextNode && !skip {
			t := strings.TrimSpace(n.Data)
			if t != "" {
				b.WriteString(t)
				b.WriteString("\n")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, skip)
		}
	}
	walk(doc, false)

	lines := strings.Split(b.String(), "\n")
	var filtered []string
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if len(l) > 1 {
			filtered = append(filtered, l)
		}
	}
	return strings.Join(filtered, "\n")
}

func cleanText(s string) string {
	return strings.TrimSpace(sanitizeUTF8(s))
}

// sanitizeUTF8 drops invalid bytes so downstream stores never see
// malformed strings.
func sanitizeUTF8(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError && size == 1 {
			s = s[1:]
			continue
		}
		b.WriteRune(r)
		s = s[size:]
	}
	return b.String()
}
