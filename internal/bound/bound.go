// Package bound renders result sets as text under a hard byte ceiling.
// Oversized MCP responses cause protocol-level disconnects, so the
// ceiling is absolute: the returned payload never exceeds it, and any
// omission is stated in the output rather than applied silently.
package bound

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/unifieddocs/docshub/internal/store"
)

// Per-field character budgets.
const (
	snippetChars     = 200
	descriptionChars = 100
	listDescChars    = 60
)

// clampReserve is held back from the ceiling by the final clamp so the
// truncation notice always fits.
const clampReserve = 100

const truncationNotice = "\n\n[Response truncated due to size limits]"

// Limits configures the bounder. Zero values fall back to defaults.
type Limits struct {
	MaxBytes            int // hard response ceiling
	MaxSearchResults    int // search result cap, applied before sizing
	MaxListItems        int // list item cap
	ContentPreviewChars int // per-document content budget
}

// DefaultLimits returns the production limits.
func DefaultLimits() Limits {
	return Limits{
		MaxBytes:            500 * 1024,
		MaxSearchResults:    20,
		MaxListItems:        50,
		ContentPreviewChars: 1000,
	}
}

func (l Limits) normalized() Limits {
	d := DefaultLimits()
	if l.MaxBytes <= 0 {
		l.MaxBytes = d.MaxBytes
	}
	if l.MaxSearchResults <= 0 {
		l.MaxSearchResults = d.MaxSearchResults
	}
	if l.MaxListItems <= 0 {
		l.MaxListItems = d.MaxListItems
	}
	if l.ContentPreviewChars <= 0 {
		l.ContentPreviewChars = d.ContentPreviewChars
	}
	return l
}

// TruncateText cuts text to at most max bytes, replacing the tail with
// an ellipsis marker. Cuts back off to a rune boundary so the result
// is always valid UTF-8.
func TruncateText(text string, max int) string {
	if len(text) <= max {
		return text
	}
	const marker = " ..."
	if max <= len(marker) {
		return strings.Repeat(".", max)
	}
	cut := max - len(marker)
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + marker
}

// ListItem is one row of a bounded list rendering.
type ListItem struct {
	Name        string
	Stars       int
	Category    string
	Description string
}

// FormatSearchResponse renders ranked search results. Results beyond
// the count cap are never considered; within the cap, items are
// appended until the running size reaches 80% of the ceiling, at which
// point the remainder is reported as not shown.
func (l Limits) FormatSearchResponse(results []store.SearchResult, query string) string {
	l = l.normalized()
	if len(results) == 0 {
		return fmt.Sprintf("No results found for '%s'", query)
	}

	capped := results
	if len(capped) > l.MaxSearchResults {
		capped = capped[:l.MaxSearchResults]
	}

	softCeiling := l.MaxBytes * 8 / 10
	var sb strings.Builder
	shown := 0
	for _, r := range capped {
		var item strings.Builder
		fmt.Fprintf(&item, "%s (%d stars)\n", r.FullName, r.Stars)
		if r.Category != "" {
			fmt.Fprintf(&item, "   Category: %s\n", r.Category)
		}
		fmt.Fprintf(&item, "   File: %s\n", r.Path)
		if r.Description != "" {
			fmt.Fprintf(&item, "   About: %s\n", TruncateText(r.Description, descriptionChars))
		}
		if r.Snippet != "" {
			fmt.Fprintf(&item, "   Preview: %s\n", TruncateText(r.Snippet, snippetChars))
		}
		item.WriteString("\n")

		if sb.Len()+item.Len() > softCeiling {
			break
		}
		sb.WriteString(item.String())
		shown++
	}

	header := fmt.Sprintf("Search results for '%s'\nShowing %d of %d results\n\n", query, shown, len(results))
	out := header + sb.String()
	if remaining := len(results) - shown; remaining > 0 {
		out += fmt.Sprintf("[%d more results not shown due to size limits]\n", remaining)
	}
	return l.clamp(out)
}

// FormatDocsResponse renders a repository's documents with per-document
// content previews, stopping at 90% of the ceiling.
func (l Limits) FormatDocsResponse(docs []store.RepoDocument, repoName string) string {
	l = l.normalized()
	if len(docs) == 0 {
		return fmt.Sprintf("No documentation found for '%s'", repoName)
	}

	softCeiling := l.MaxBytes * 9 / 10
	divider := strings.Repeat("=", 50)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Documentation for %s\n\n", repoName)

	for i, doc := range docs {
		var section strings.Builder
		fmt.Fprintf(&section, "%s\n%s\n%s\n", divider, doc.Path, divider)
		section.WriteString(TruncateText(doc.Content, l.ContentPreviewChars))
		if len(doc.Content) > l.ContentPreviewChars {
			section.WriteString("\n\n[Content truncated - fetch the file directly for full content]")
		}
		section.WriteString("\n\n")

		if sb.Len()+section.Len() > softCeiling {
			fmt.Fprintf(&sb, "[%d more documents not shown due to size limits]\n", len(docs)-i)
			break
		}
		sb.WriteString(section.String())
	}
	return l.clamp(sb.String())
}

// FormatListResponse renders a capped bullet list under the title.
func (l Limits) FormatListResponse(items []ListItem, title string) string {
	l = l.normalized()

	var sb strings.Builder
	sb.WriteString(title)
	sb.WriteString("\n\n")

	capped := items
	if len(capped) > l.MaxListItems {
		capped = capped[:l.MaxListItems]
	}
	for _, item := range capped {
		sb.WriteString("- ")
		sb.WriteString(item.Name)
		if item.Stars > 0 {
			fmt.Fprintf(&sb, " (%d stars)", item.Stars)
		}
		if item.Category != "" {
			fmt.Fprintf(&sb, " [%s]", item.Category)
		}
		if item.Description != "" {
			fmt.Fprintf(&sb, " - %s", TruncateText(item.Description, listDescChars))
		}
		sb.WriteString("\n")
	}
	if len(items) > l.MaxListItems {
		fmt.Fprintf(&sb, "\n... and %d more\n", len(items)-l.MaxListItems)
	}
	return l.clamp(sb.String())
}

// FormatText bounds an arbitrary pre-rendered report.
func (l Limits) FormatText(text string) string {
	return l.normalized().clamp(text)
}

// clamp enforces the absolute ceiling. Anything that slipped past the
// soft accumulation stages is cut here, with the cut announced.
func (l Limits) clamp(text string) string {
	if len(text) <= l.MaxBytes {
		return text
	}
	cut := l.MaxBytes - clampReserve
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + truncationNotice
}
