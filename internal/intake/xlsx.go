package intake

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/laknarayana9/AgenticUnderwriting/internal/model"
)

// XLSXOptions configures the XLSX parser.
type XLSXOptions struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
	SkipRows   int    // rows before the data start, including the header
}

// ReadXLSX reads submissions from a spreadsheet. The first row is the
// header; columns are matched to submission fields by name so column order
// does not matter. Unknown columns are ignored.
func ReadXLSX(path string, opts XLSXOptions) ([]model.QuoteSubmission, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "intake: open xlsx file")
	}

	sheet, err := getSheet(f, opts)
	if err != nil {
		return nil, err
	}
	if len(sheet.Rows) == 0 {
		return nil, nil
	}

	header := rowToStrings(sheet.Rows[0])
	cols := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		key = strings.ReplaceAll(key, " ", "_")
		cols[key] = i
	}

	skip := opts.SkipRows
	if skip < 1 {
		skip = 1
	}

	var subs []model.QuoteSubmission
	for i := skip; i < len(sheet.Rows); i++ {
		cells := rowToStrings(sheet.Rows[i])
		if emptyRow(cells) {
			continue
		}

		sub, err := rowToSubmission(cells, cols)
		if err != nil {
			return nil, eris.Wrapf(err, "intake: xlsx row %d", i+1)
		}
		subs = append(subs, sub)
	}

	return subs, nil
}

func rowToSubmission(cells []string, cols map[string]int) (model.QuoteSubmission, error) {
	cell := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(cells) {
			return ""
		}
		return strings.TrimSpace(cells[idx])
	}

	sub := model.QuoteSubmission{
		ApplicantName:  cell("applicant_name"),
		Address:        cell("address"),
		PropertyType:   cell("property_type"),
		RoofType:       cell("roof_type"),
		FoundationType: cell("foundation_type"),
		Notes:          cell("notes"),
	}

	if v := cell("coverage_amount"); v != "" {
		amount, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return sub, eris.Wrapf(err, "parse coverage_amount %q", v)
		}
		sub.CoverageAmount = amount
	}
	if v := cell("construction_year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return sub, eris.Wrapf(err, "parse construction_year %q", v)
		}
		sub.ConstructionYear = &year
	}
	if v := cell("square_footage"); v != "" {
		sqft, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return sub, eris.Wrapf(err, "parse square_footage %q", v)
		}
		sub.SquareFootage = &sqft
	}

	return sub, nil
}

func getSheet(f *xlsx.File, opts XLSXOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("intake: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}

	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("intake: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}

	return f.Sheets[opts.SheetIndex], nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for i, c := range row.Cells {
		cells[i] = c.String()
	}
	return cells
}

func emptyRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
