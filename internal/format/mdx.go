package format

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var (
	mdxImportRe    = regexp.MustCompile(`(?m)^import\s+.*$`)
	mdxComponentRe = regexp.MustCompile(`<(\w+)[^>]*>`)
	mdxTagRe       = regexp.MustCompile(`<[^>]+>`)
)

// mdxCallouts maps JSX callout components to blockquote prefixes used
// during conversion.
var mdxCallouts = []struct {
	re     *regexp.Regexp
	prefix string
}{
	{regexp.MustCompile(`(?s)<Callout[^>]*>(.*?)</Callout>`), "> **Note:** "},
	{regexp.MustCompile(`(?s)<Warning[^>]*>(.*?)</Warning>`), "> **Warning:** "},
	{regexp.MustCompile(`(?s)<Info[^>]*>(.*?)</Info>`), "> **Info:** "},
}

var mdxCodeBlockComponentRe = regexp.MustCompile(`(?s)<CodeBlock[^>]*>(.*?)</CodeBlock>`)

// MDXHandler processes markdown with embedded JSX.
type MDXHandler struct{}

func (h *MDXHandler) CanHandle(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".mdx")
}

func (h *MDXHandler) Extract(content string) (*Extraction, error) {
	imports := mdxImportRe.FindAllString(content, -1)

	seen := map[string]bool{}
	var components []string
	for _, m := range mdxComponentRe.FindAllStringSubmatch(content, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			components = append(components, m[1])
		}
	}
	sort.Strings(components)

	// Strip JSX so the markdown structure underneath is parseable.
	cleaned := mdxTagRe.ReplaceAllString(content, "")
	md := &MarkdownHandler{}
	ex, err := md.Extract(cleaned)
	if err != nil {
		return nil, err
	}
	ex.Format = "mdx"
	ex.Imports = imports
	ex.Components = components
	return ex, nil
}

func (h *MDXHandler) ToText(content string) string {
	content = mdxImportRe.ReplaceAllString(content, "")

	for _, c := range mdxCallouts {
		content = c.re.ReplaceAllStringFunc(content, func(match string) string {
			inner := c.re.FindStringSubmatch(match)[1]
			return c.prefix + strings.TrimSpace(inner)
		})
	}
	content = mdxCodeBlockComponentRe.ReplaceAllStringFunc(content, func(match string) string {
		inner := mdxCodeBlockComponentRe.FindStringSubmatch(match)[1]
		return fmt.Sprintf("```\n%s\n```", strings.TrimSpace(inner))
	})

	content = mdxTagRe.ReplaceAllString(content, "")
	return strings.TrimSpace(content)
}
