// Package intake reads quote submissions from batch input files. JSON
// (array or line-delimited) and XLSX spreadsheets are supported; the
// extension decides which parser runs.
package intake

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/laknarayana9/AgenticUnderwriting/internal/model"
)

// ReadFile loads all submissions from the given file based on its extension.
func ReadFile(path string) ([]model.QuoteSubmission, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonl", ".ndjson":
		return ReadJSON(path)
	case ".xlsx":
		return ReadXLSX(path, XLSXOptions{SkipRows: 1})
	default:
		return nil, eris.Errorf("intake: unsupported file extension %q", filepath.Ext(path))
	}
}
