// Package sheet converts spreadsheet cells into canonical strings and reads
// and writes xlsx workbooks.
package sheet

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// DateLayout is the canonical date rendering (dd-MM-yyyy).
const DateLayout = "02-01-2006"

// Kind identifies what a raw cell holds.
type Kind int

const (
	KindEmpty Kind = iota
	KindText
	KindNumber
	KindBool
	KindDate
	KindFormula
	KindError
)

// Cell is a raw spreadsheet cell.
//
// Number holds the serial value for KindDate. For KindFormula, Formula is the
// expression, Result the evaluated value, Evaluated whether evaluation
// succeeded and DateFormatted whether the cell carries a date number format.
type Cell struct {
	Kind          Kind
	Text          string
	Number        float64
	Bool          bool
	Formula       string
	Result        string
	Evaluated     bool
	DateFormatted bool
}

// Text returns a text cell.
func Text(s string) Cell { return Cell{Kind: KindText, Text: s} }

// Number returns a numeric cell.
func Number(n float64) Cell { return Cell{Kind: KindNumber, Number: n} }

// Date returns a date-formatted numeric cell for t.
func Date(t time.Time) Cell {
	return Cell{Kind: KindDate, Number: toSerial(t), DateFormatted: true}
}

// Texts builds a row of text cells.
func Texts(values ...string) []Cell {
	row := make([]Cell, len(values))
	for i, v := range values {
		row[i] = Text(v)
	}
	return row
}

var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

func toSerial(t time.Time) float64 {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return d.Sub(excelEpoch).Hours() / 24
}

// Normalize renders c as a canonical string. It never fails: unrecognized
// or unreadable cells yield "".
func Normalize(c Cell) string {
	switch c.Kind {
	case KindText:
		return strings.TrimSpace(c.Text)
	case KindNumber:
		return formatNumber(c.Number)
	case KindBool:
		return strconv.FormatBool(c.Bool)
	case KindDate:
		return formatSerial(c.Number)
	case KindFormula:
		if !c.Evaluated {
			return strings.TrimSpace(c.Formula)
		}
		if c.DateFormatted {
			if n, err := strconv.ParseFloat(strings.TrimSpace(c.Result), 64); err == nil {
				if s := formatSerial(n); s != "" {
					return s
				}
			}
		}
		return strings.TrimSpace(c.Result)
	default:
		return ""
	}
}

func formatNumber(n float64) string {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return ""
	}
	if n == math.Trunc(n) && math.Abs(n) < 1e15 {
		return strconv.FormatInt(int64(n), 10)
	}
	return decimal.NewFromFloat(n).String()
}

func formatSerial(serial float64) string {
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return ""
	}
	return t.Format(DateLayout)
}
