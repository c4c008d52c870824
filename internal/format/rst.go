package format

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	rstCodeBlockRe = regexp.MustCompile(`::\s*(\w*)\n\n((?:    .*\n)*)`)
	rstDirectiveRe = regexp.MustCompile(`(?m)^\.\. (\w+)::`)
	rstLinkRe      = regexp.MustCompile("`([^<]+) <([^>]+)>`_")
)

// RSTHandler processes reStructuredText.
type RSTHandler struct{}

func (h *RSTHandler) CanHandle(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".rst")
}

func (h *RSTHandler) Extract(content string) (*Extraction, error) {
	ex := &Extraction{Format: "rst", Content: content}

	// Headers are lines underlined with punctuation at least as long
	// as the title.
	lines := strings.Split(content, "\n")
	for i := 0; i < len(lines)-1; i++ {
		title := strings.TrimSpace(lines[i])
		underline := strings.TrimSpace(lines[i+1])
		if title == "" || underline == "" {
			continue
		}
		if isUnderline(underline, "=-~^\"") && len(underline) >= len(title) {
			ex.Headers = append(ex.Headers, Header{Level: underlineLevel(underline[0]), Text: title})
		}
	}

	for _, m := range rstCodeBlockRe.FindAllStringSubmatch(content, -1) {
		ex.CodeBlocks = append(ex.CodeBlocks, CodeBlock{
			Language: m[1],
			Code:     strings.TrimSpace(m[2]),
		})
	}
	for _, m := range rstDirectiveRe.FindAllStringSubmatch(content, -1) {
		ex.Directives = append(ex.Directives, m[1])
	}
	return ex, nil
}

func (h *RSTHandler) ToText(content string) string {
	lines := strings.Split(content, "\n")
	var out []string
	for i := 0; i < len(lines); i++ {
		if i < len(lines)-1 && lines[i] != "" && lines[i+1] != "" {
			title := lines[i]
			underline := strings.TrimSpace(lines[i+1])
			if len(underline) >= len(strings.TrimSpace(title)) {
				var prefix string
				switch {
				case isUnderline(underline, "="):
					prefix = "# "
				case isUnderline(underline, "-"):
					prefix = "## "
				case isUnderline(underline, "~"):
					prefix = "### "
				}
				if prefix != "" {
					out = append(out, prefix+title)
					i++
					continue
				}
			}
		}
		out = append(out, lines[i])
	}
	converted := strings.Join(out, "\n")

	converted = rstCodeBlockRe.ReplaceAllStringFunc(converted, func(match string) string {
		m := rstCodeBlockRe.FindStringSubmatch(match)
		return fmt.Sprintf("```%s\n%s\n```", m[1], strings.TrimSpace(m[2]))
	})
	converted = rstLinkRe.ReplaceAllString(converted, "[$1]($2)")
	return converted
}

func isUnderline(s, chars string) bool {
	for _, c := range s {
		if !strings.ContainsRune(chars, c) {
			return false
		}
	}
	return len(s) > 0
}

func underlineLevel(c byte) int {
	switch c {
	case '=':
		return 1
	case '-':
		return 2
	case '~':
		return 3
	default:
		return 4
	}
}
