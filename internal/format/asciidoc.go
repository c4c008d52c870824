package format

import (
	"regexp"
	"strings"
)

var (
	adocHeaderRe    = regexp.MustCompile(`(?m)^(=+)\s+(.+)$`)
	adocSourceRe    = regexp.MustCompile(`(?s)\[source,(\w+)\]\n----\n(.*?)\n----`)
	adocPlainRe     = regexp.MustCompile(`(?s)----\n(.*?)\n----`)
	adocAttributeRe = regexp.MustCompile(`(?m)^:(\w+):\s*(.*)$`)
	adocLinkRe      = regexp.MustCompile(`link:([^\[]+)\[([^\]]+)\]`)
)

// AsciiDocHandler processes AsciiDoc.
type AsciiDocHandler struct{}

func (h *AsciiDocHandler) CanHandle(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".adoc") || strings.HasSuffix(lower, ".asciidoc")
}

func (h *AsciiDocHandler) Extract(content string) (*Extraction, error) {
	ex := &Extraction{
		Format:     "asciidoc",
		Attributes: make(map[string]string),
		Content:    content,
	}

	for _, m := range adocHeaderRe.FindAllStringSubmatch(content, -1) {
		ex.Headers = append(ex.Headers, Header{Level: len(m[1]), Text: m[2]})
	}

	// Typed source blocks first, then untyped listing blocks from the
	// remaining text so a [source] block is not counted twice.
	remainder := content
	for _, m := range adocSourceRe.FindAllStringSubmatch(content, -1) {
		ex.CodeBlocks = append(ex.CodeBlocks, CodeBlock{Language: m[1], Code: m[2]})
	}
	remainder = adocSourceRe.ReplaceAllString(remainder, "")
	for _, m := range adocPlainRe.FindAllStringSubmatch(remainder, -1) {
		ex.CodeBlocks = append(ex.CodeBlocks, CodeBlock{Code: m[1]})
	}

	for _, m := range adocAttributeRe.FindAllStringSubmatch(content, -1) {
		ex.Attributes[m[1]] = m[2]
	}
	return ex, nil
}

func (h *AsciiDocHandler) ToText(content string) string {
	content = adocHeaderRe.ReplaceAllStringFunc(content, func(match string) string {
		m := adocHeaderRe.FindStringSubmatch(match)
		return strings.Repeat("#", len(m[1])) + " " + m[2]
	})
	content = adocSourceRe.ReplaceAllString(content, "```$1\n$2\n```")
	content = adocPlainRe.ReplaceAllString(content, "```\n$1\n```")
	content = adocLinkRe.ReplaceAllString(content, "[$2]($1)")
	content = adocAttributeRe.ReplaceAllString(content, "")
	return strings.TrimSpace(content)
}
