package format

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/unifieddocs/docshub/internal/errors"
)

// notebookOutputLimit caps how much cell output is carried into the
// converted text.
const notebookOutputLimit = 500

type notebookCell struct {
	CellType string           `json:"cell_type"`
	Source   []string         `json:"source"`
	Outputs  []notebookOutput `json:"outputs"`
}

type notebookOutput struct {
	OutputType string              `json:"output_type"`
	Text       []string            `json:"text"`
	Data       map[string][]string `json:"data"`
}

type notebook struct {
	Cells    []notebookCell `json:"cells"`
	Metadata struct {
		LanguageInfo struct {
			Name string `json:"name"`
		} `json:"language_info"`
	} `json:"metadata"`
}

// NotebookHandler processes Jupyter notebooks.
type NotebookHandler struct{}

func (h *NotebookHandler) CanHandle(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".ipynb")
}

func (h *NotebookHandler) Extract(content string) (*Extraction, error) {
	var nb notebook
	if err := json.Unmarshal([]byte(content), &nb); err != nil {
		return nil, errors.ValidationError(fmt.Sprintf("parse notebook: %v", err), err)
	}

	language := nb.Metadata.LanguageInfo.Name
	if language == "" {
		language = "python"
	}

	ex := &Extraction{Format: "jupyter", Content: content}
	for _, cell := range nb.Cells {
		source := strings.Join(cell.Source, "")
		switch cell.CellType {
		case "markdown":
			for _, m := range mdHeaderRe.FindAllStringSubmatch(source, -1) {
				ex.Headers = append(ex.Headers, Header{Level: len(m[1]), Text: m[2]})
			}
		case "code":
			ex.CodeBlocks = append(ex.CodeBlocks, CodeBlock{Language: language, Code: source})
		}
	}
	return ex, nil
}

func (h *NotebookHandler) ToText(content string) string {
	var nb notebook
	if err := json.Unmarshal([]byte(content), &nb); err != nil {
		return ""
	}

	language := nb.Metadata.LanguageInfo.Name
	if language == "" {
		language = "python"
	}

	var parts []string
	for _, cell := range nb.Cells {
		source := strings.Join(cell.Source, "")
		switch cell.CellType {
		case "markdown":
			parts = append(parts, source)
		case "code":
			if strings.TrimSpace(source) == "" {
				continue
			}
			parts = append(parts, fmt.Sprintf("```%s\n%s\n```", language, source))

			// At most two outputs per cell, and only small ones.
			outputs := cell.Outputs
			if len(outputs) > 2 {
				outputs = outputs[:2]
			}
			for _, out := range outputs {
				var text string
				switch out.OutputType {
				case "stream":
					text = strings.Join(out.Text, "")
				case "execute_result":
					text = strings.Join(out.Data["text/plain"], "")
				}
				if text != "" && len(text) < notebookOutputLimit {
					parts = append(parts, fmt.Sprintf("Output:\n```\n%s\n```", text))
				}
			}
		}
	}
	return strings.Join(parts, "\n\n")
}
