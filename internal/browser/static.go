package browser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// StaticOpener serves a saved HTML document as a page. Every Open parses
// the document again, so sessions never share state.
type StaticOpener struct {
	html []byte
}

func NewStaticOpener(doc []byte) *StaticOpener {
	return &StaticOpener{html: doc}
}

// NewStaticOpenerFromFile reads a page saved from a browser
func NewStaticOpenerFromFile(path string) (*StaticOpener, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read saved page: %w", err)
	}
	return NewStaticOpener(data), nil
}

func (o *StaticOpener) Open(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(o.html))
	if err != nil {
		return nil, fmt.Errorf("could not parse saved page: %w", err)
	}
	return &staticSession{doc: doc}, nil
}

type staticSession struct {
	doc    *goquery.Document
	url    string
	closed bool
}

// Navigate only records the URL; the document is already loaded.
func (s *staticSession) Navigate(url string) error {
	if s.closed {
		return ErrClosed
	}
	s.url = url
	return nil
}

// WaitFor answers immediately since a static document never changes.
func (s *staticSession) WaitFor(selector string, timeout time.Duration) error {
	if s.closed {
		return ErrClosed
	}
	if s.doc.Find(selector).Length() == 0 {
		return fmt.Errorf("%w: %s after %s", ErrTimeout, selector, timeout)
	}
	return nil
}

func (s *staticSession) FindOne(selectors ...string) (Element, error) {
	if s.closed {
		return nil, ErrClosed
	}
	for _, sel := range selectors {
		if found := s.doc.Find(sel).First(); found.Length() > 0 {
			return &staticElement{sel: found}, nil
		}
	}
	return nil, ErrNotFound
}

func (s *staticSession) ScrollToBottom() error {
	if s.closed {
		return ErrClosed
	}
	return nil
}

func (s *staticSession) Screenshot(string) error {
	return fmt.Errorf("static page: %w", errors.ErrUnsupported)
}

func (s *staticSession) Close() error {
	s.closed = true
	return nil
}

type staticElement struct {
	sel *goquery.Selection
}

func (e *staticElement) Text() (string, error) {
	return strings.Join(strings.Fields(e.sel.Text()), " "), nil
}

func (e *staticElement) RenderedText() (string, error) {
	var w textWriter
	for _, n := range e.sel.Nodes {
		w.walk(n)
	}
	return w.String(), nil
}

// Activate has nothing to expand: the saved markup already holds the full text.
func (e *staticElement) Activate() error {
	return nil
}

var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"dd": true, "div": true, "dl": true, "dt": true, "figcaption": true,
	"figure": true, "footer": true, "form": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "header": true,
	"hr": true, "li": true, "main": true, "nav": true, "ol": true,
	"p": true, "pre": true, "section": true, "table": true, "tr": true,
	"ul": true,
}

var hiddenElements = map[string]bool{
	"head": true, "noscript": true, "script": true, "style": true, "template": true,
}

// textWriter approximates innerText: whitespace runs collapse to one space,
// block elements start and end a line and <br> forces a line break.
type textWriter struct {
	b     strings.Builder
	space bool
}

func (w *textWriter) atLineStart() bool {
	s := w.b.String()
	return s == "" || s[len(s)-1] == '\n'
}

func (w *textWriter) lineBreak() {
	w.b.WriteByte('\n')
	w.space = false
}

func (w *textWriter) blockBoundary() {
	if !w.atLineStart() {
		w.lineBreak()
	}
}

func (w *textWriter) text(s string) {
	words := strings.Fields(s)
	if len(words) == 0 {
		if s != "" {
			w.space = true
		}
		return
	}
	if s[0] == ' ' || s[0] == '\t' || s[0] == '\n' || s[0] == '\r' {
		w.space = true
	}
	for i, word := range words {
		if (i > 0 || w.space) && !w.atLineStart() {
			w.b.WriteByte(' ')
		}
		w.b.WriteString(word)
		w.space = false
	}
	last := s[len(s)-1]
	w.space = last == ' ' || last == '\t' || last == '\n' || last == '\r'
}

func (w *textWriter) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.text(n.Data)
		return
	case html.ElementNode:
		if hiddenElements[n.Data] {
			return
		}
		if n.Data == "br" {
			w.lineBreak()
			return
		}
	}

	block := n.Type == html.ElementNode && blockElements[n.Data]
	if block {
		w.blockBoundary()
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
	if block {
		w.blockBoundary()
	}
}

func (w *textWriter) String() string {
	lines := strings.Split(w.b.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
