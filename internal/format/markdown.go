package format

import (
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	mdHeaderRe    = regexp.MustCompile(`(?m)^(#{1,6})\s+(.+)$`)
	mdCodeBlockRe = regexp.MustCompile("(?s)```(\\w*)\n(.*?)```")
)

// MarkdownHandler processes plain markdown, including optional YAML
// frontmatter.
type MarkdownHandler struct{}

func (h *MarkdownHandler) CanHandle(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".md") || strings.HasSuffix(lower, ".markdown")
}

func (h *MarkdownHandler) Extract(content string) (*Extraction, error) {
	frontmatter, body := splitFrontmatter(content)

	ex := &Extraction{
		Format:      "markdown",
		Frontmatter: frontmatter,
		Content:     body,
	}
	for _, m := range mdHeaderRe.FindAllStringSubmatch(body, -1) {
		ex.Headers = append(ex.Headers, Header{Level: len(m[1]), Text: m[2]})
	}
	for _, m := range mdCodeBlockRe.FindAllStringSubmatch(body, -1) {
		ex.CodeBlocks = append(ex.CodeBlocks, CodeBlock{Language: m[1], Code: m[2]})
	}
	return ex, nil
}

func (h *MarkdownHandler) ToText(content string) string {
	// Markdown is already the canonical form; frontmatter is dropped
	// because it is metadata, not prose.
	_, body := splitFrontmatter(content)
	return body
}

// splitFrontmatter separates a leading YAML frontmatter block from the
// document body. Malformed frontmatter is left in place.
func splitFrontmatter(content string) (map[string]any, string) {
	if !strings.HasPrefix(content, "---") {
		return nil, content
	}
	parts := strings.SplitN(content, "---", 3)
	if len(parts) < 3 {
		return nil, content
	}
	var frontmatter map[string]any
	if err := yaml.Unmarshal([]byte(parts[1]), &frontmatter); err != nil {
		return nil, content
	}
	return frontmatter, parts[2]
}
