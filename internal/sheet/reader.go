package sheet

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrNoSheets is returned for workbooks without any worksheet.
var ErrNoSheets = errors.New("workbook has no sheets")

// Workbook is an opened xlsx document.
type Workbook struct {
	f *excelize.File
}

// Open decodes an xlsx document.
func Open(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	return &Workbook{f: f}, nil
}

// Close releases the workbook's temporary resources.
func (w *Workbook) Close() error {
	return w.f.Close()
}

// FirstSheet returns the title of the first worksheet.
func (w *Workbook) FirstSheet() (string, error) {
	sheets := w.f.GetSheetList()
	if len(sheets) == 0 {
		return "", ErrNoSheets
	}
	return sheets[0], nil
}

// Rows returns every row of sheet as typed cells. Trailing empty cells of a
// row are omitted, as in the stored document.
func (w *Workbook) Rows(sheet string) ([][]Cell, error) {
	raw, err := w.f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read rows of %q: %w", sheet, err)
	}

	out := make([][]Cell, len(raw))
	for r, values := range raw {
		row := make([]Cell, len(values))
		for c := range values {
			name, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, err
			}
			row[c] = w.cell(sheet, name)
		}
		out[r] = row
	}
	return out, nil
}

// cell reads one cell. Lookup failures degrade to an empty cell.
func (w *Workbook) cell(sheet, name string) Cell {
	if formula, err := w.f.GetCellFormula(sheet, name); err == nil && formula != "" {
		c := Cell{Kind: KindFormula, Formula: formula, DateFormatted: w.isDateFormatted(sheet, name)}
		if v, err := w.f.CalcCellValue(sheet, name, excelize.Options{RawCellValue: true}); err == nil {
			c.Result, c.Evaluated = v, true
		}
		return c
	}

	typ, err := w.f.GetCellType(sheet, name)
	if err != nil {
		return Cell{}
	}
	value, err := w.f.GetCellValue(sheet, name, excelize.Options{RawCellValue: true})
	if err != nil {
		return Cell{}
	}

	switch typ {
	case excelize.CellTypeError:
		return Cell{Kind: KindError, Text: value}
	case excelize.CellTypeBool:
		return Cell{Kind: KindBool, Bool: value == "1" || strings.EqualFold(value, "true")}
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
		if value == "" {
			return Cell{}
		}
		return Text(value)
	}

	if value == "" {
		return Cell{}
	}
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return Text(value)
	}
	if w.isDateFormatted(sheet, name) {
		return Cell{Kind: KindDate, Number: n, DateFormatted: true}
	}
	return Number(n)
}

func (w *Workbook) isDateFormatted(sheet, name string) bool {
	idx, err := w.f.GetCellStyle(sheet, name)
	if err != nil || idx == 0 {
		return false
	}
	style, err := w.f.GetStyle(idx)
	if err != nil || style == nil {
		return false
	}
	if style.CustomNumFmt != nil {
		return isDateFormat(*style.CustomNumFmt)
	}
	return isBuiltinDateFormat(style.NumFmt)
}

func isBuiltinDateFormat(id int) bool {
	switch {
	case id >= 14 && id <= 22:
		return true
	case id >= 27 && id <= 36:
		return true
	case id >= 45 && id <= 47:
		return true
	case id >= 50 && id <= 58:
		return true
	}
	return false
}

// isDateFormat reports whether a custom number format renders a date. Quoted
// literals and bracketed sections (colors, locales) are ignored.
func isDateFormat(format string) bool {
	var inQuote, inBracket bool
	for _, r := range strings.ToLower(format) {
		switch {
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case inBracket:
		case r == 'd' || r == 'y':
			return true
		}
	}
	return false
}
