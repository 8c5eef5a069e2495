package extract

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"BondLens/internal/normalize"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// Workbook is one disclosure file read into memory, sheet by sheet.
// AMCs publish .xlsx, legacy .xls and the occasional CSV export, so opening
// tries each format in turn.
type Workbook struct {
	Sheets []string
	rows   map[string][][]string
}

// Rows returns the cell grid of one sheet.
func (w *Workbook) Rows(sheet string) [][]string {
	return w.rows[sheet]
}

// OpenWorkbook reads a disclosure file. Open failures are infrastructure
// errors and propagate to the caller.
func OpenWorkbook(path string) (*Workbook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workbook %s: %w", path, err)
	}

	if xl, err := excelize.OpenReader(bytes.NewReader(data)); err == nil {
		defer xl.Close()
		wb := &Workbook{rows: make(map[string][][]string)}
		for _, name := range xl.GetSheetList() {
			rows, err := xl.GetRows(name)
			if err != nil {
				return nil, fmt.Errorf("read sheet %s of %s: %w", name, path, err)
			}
			wb.Sheets = append(wb.Sheets, name)
			wb.rows[name] = rows
		}
		return wb, nil
	}

	if book, err := xls.OpenReader(bytes.NewReader(data), "utf-8"); err == nil {
		wb := &Workbook{rows: make(map[string][][]string)}
		for i := 0; i < book.NumSheets(); i++ {
			sheet := book.GetSheet(i)
			if sheet == nil {
				continue
			}
			var rows [][]string
			for r := 0; r <= int(sheet.MaxRow); r++ {
				row := sheet.Row(r)
				if row == nil {
					rows = append(rows, nil)
					continue
				}
				cells := make([]string, row.LastCol())
				for c := row.FirstCol(); c < row.LastCol(); c++ {
					cells[c] = row.Col(c)
				}
				rows = append(rows, cells)
			}
			wb.Sheets = append(wb.Sheets, sheet.Name)
			wb.rows[sheet.Name] = rows
		}
		if len(wb.Sheets) > 0 {
			return wb, nil
		}
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s as xlsx, xls or csv: %w", path, err)
	}
	return &Workbook{Sheets: []string{"Sheet1"}, rows: map[string][][]string{"Sheet1": rows}}, nil
}

// ResolveSheet picks the sheet matching a configured hint: normalized exact
// match first, then a sheet whose name contains every word of the hint, then
// the first sheet. Returns ErrSheetNotFound only for an empty workbook.
func (w *Workbook) ResolveSheet(hint string) (string, error) {
	if len(w.Sheets) == 0 {
		return "", ErrSheetNotFound
	}
	if hint == "" {
		return w.Sheets[0], nil
	}
	want := normalize.NormAlias(hint)
	for _, s := range w.Sheets {
		if normalize.NormAlias(s) == want {
			return s, nil
		}
	}
	words := strings.Fields(want)
	for _, s := range w.Sheets {
		name := normalize.NormAlias(s)
		all := true
		for _, word := range words {
			if !strings.Contains(name, word) {
				all = false
				break
			}
		}
		if all {
			return s, nil
		}
	}
	return w.Sheets[0], nil
}
