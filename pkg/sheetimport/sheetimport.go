// Package sheetimport reads collectible catalog rows out of an xlsx
// spreadsheet export, mapping the sheet's column headers onto post fields.
package sheetimport

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row is one imported catalog entry.
type Row struct {
	BoxNumber       string
	ToyNumber       string
	Title           string
	Year            int
	Series          string
	WheelVariations []string
	FrontImage      string
	BackImage       string
}

// columnMapping ties sheet headers to Row fields. Headers not present in
// the sheet are simply skipped.
var columnMapping = map[string]string{
	"Box #":            "boxNumber",
	"Toy #":            "toyNumber",
	"Model Name":       "title",
	"Origin":           "year",
	"Series":           "series",
	"Wheel Variations": "wheelVariations",
	"Front Image":      "frontImage",
	"Back Image":       "backImage",
}

// requiredColumns must all be present, and their cells non-empty per row.
var requiredColumns = []string{"Box #", "Toy #", "Model Name"}

// Read parses the given xlsx stream. sheet may be empty to use the
// workbook's first sheet.
func Read(r io.Reader, sheet string) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("sheetimport: open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("sheetimport: read sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("sheetimport: no data rows in sheet %q", sheet)
	}

	headers := rows[0]
	index := map[string]int{}
	for i, h := range headers {
		index[strings.TrimSpace(h)] = i
	}
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("sheetimport: missing required columns: %s", strings.Join(missing, ", "))
	}

	var out []Row
	for n, cells := range rows[1:] {
		if isEmptyRow(cells) {
			continue
		}
		row, err := mapRow(cells, index)
		if err != nil {
			return nil, fmt.Errorf("sheetimport: row %d: %w", n+2, err)
		}
		out = append(out, row)
	}
	return out, nil
}

func isEmptyRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func cellAt(cells []string, i int) string {
	if i < 0 || i >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[i])
}

func mapRow(cells []string, index map[string]int) (Row, error) {
	var row Row
	for header, field := range columnMapping {
		i, ok := index[header]
		if !ok {
			continue
		}
		value := cellAt(cells, i)
		switch field {
		case "boxNumber":
			row.BoxNumber = value
		case "toyNumber":
			row.ToyNumber = value
		case "title":
			row.Title = value
		case "year":
			if value != "" {
				y, err := strconv.Atoi(value)
				if err != nil {
					return Row{}, fmt.Errorf("bad year %q", value)
				}
				row.Year = y
			}
		case "series":
			row.Series = value
		case "wheelVariations":
			if value != "" {
				for _, v := range strings.Split(value, ",") {
					if v = strings.TrimSpace(v); v != "" {
						row.WheelVariations = append(row.WheelVariations, v)
					}
				}
			}
		case "frontImage":
			row.FrontImage = value
		case "backImage":
			row.BackImage = value
		}
	}
	if row.BoxNumber == "" || row.ToyNumber == "" || row.Title == "" {
		return Row{}, fmt.Errorf("missing required fields (Box #, Toy #, or Model Name)")
	}
	return row, nil
}
