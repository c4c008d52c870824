// Package format extracts structure from documentation files and
// converts them to a canonical markdown-like text. Each supported
// format has its own handler; dispatch is by file extension through a
// registry.
package format

import (
	"path/filepath"
	"strings"
)

// Header is one document heading with its nesting level.
type Header struct {
	Level int
	Text  string
}

// CodeBlock is one fenced or literal code block.
type CodeBlock struct {
	Language string
	Code     string
}

// Extraction is the structured view of a document.
type Extraction struct {
	Format      string
	Frontmatter map[string]any
	Headers     []Header
	CodeBlocks  []CodeBlock
	Directives  []string          // rst only
	Attributes  map[string]string // asciidoc only
	Imports     []string          // mdx only
	Components  []string          // mdx only
	Content     string
}

// Handler processes one documentation format.
type Handler interface {
	// CanHandle reports whether the handler accepts the file path.
	CanHandle(path string) bool
	// Extract parses structure out of raw file content.
	Extract(content string) (*Extraction, error)
	// ToText converts raw content to canonical markdown-like text
	// suitable for indexing.
	ToText(content string) string
}

// Registry dispatches to the handler registered for a file extension.
type Registry struct {
	byExt map[string]Handler
	order []Handler
}

// NewRegistry returns a registry with all built-in handlers.
func NewRegistry() *Registry {
	r := &Registry{byExt: make(map[string]Handler)}
	r.register(&MarkdownHandler{}, ".md", ".markdown")
	r.register(&MDXHandler{}, ".mdx")
	r.register(&RSTHandler{}, ".rst")
	r.register(&AsciiDocHandler{}, ".adoc", ".asciidoc")
	r.register(&NotebookHandler{}, ".ipynb")
	return r
}

func (r *Registry) register(h Handler, exts ...string) {
	r.order = append(r.order, h)
	for _, ext := range exts {
		r.byExt[ext] = h
	}
}

// HandlerFor returns the handler for path, or nil when the format is
// not supported.
func (r *Registry) HandlerFor(path string) Handler {
	return r.byExt[strings.ToLower(filepath.Ext(path))]
}

// IsSupported reports whether any handler accepts the path.
func (r *Registry) IsSupported(path string) bool {
	return r.HandlerFor(path) != nil
}

// SupportedExtensions lists every registered extension.
func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	return exts
}
