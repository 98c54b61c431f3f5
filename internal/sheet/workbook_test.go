package sheet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", "Plan"))

	require.NoError(t, f.SetCellValue("Plan", "A1", "Number"))
	require.NoError(t, f.SetCellValue("Plan", "A2", " 1.2 "))
	require.NoError(t, f.SetCellValue("Plan", "B2", 7))
	require.NoError(t, f.SetCellFormula("Plan", "C2", "B2*2"))
	require.NoError(t, f.SetCellValue("Plan", "D2", 2.5))
	require.NoError(t, f.SetCellValue("Plan", "E2", true))
	require.NoError(t, f.SetCellValue("Plan", "F2", 45356))

	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Plan", "F2", "F2", dateStyle))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestWorkbook_Rows(t *testing.T) {
	wb, err := Open(bytes.NewReader(buildWorkbook(t)))
	require.NoError(t, err)
	defer wb.Close()

	name, err := wb.FirstSheet()
	require.NoError(t, err)
	assert.Equal(t, "Plan", name)

	rows, err := wb.Rows(name)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	row := rows[1]
	require.Len(t, row, 6)

	got := make([]string, len(row))
	for i, c := range row {
		got[i] = Normalize(c)
	}
	assert.Equal(t, []string{"1.2", "7", "14", "2.5", "true", "05-03-2024"}, got)

	assert.Equal(t, KindFormula, row[2].Kind)
	assert.Equal(t, KindDate, row[5].Kind)
}

func TestOpen_RejectsGarbage(t *testing.T) {
	_, err := Open(bytes.NewReader([]byte("not a workbook")))
	assert.Error(t, err)
}

func TestWrite(t *testing.T) {
	data, err := Write("Indicators", []string{"Number", "Goal"}, [][]string{
		{"1.", "First"},
		{"2.", ""},
	})
	require.NoError(t, err)

	wb, err := Open(bytes.NewReader(data))
	require.NoError(t, err)
	defer wb.Close()

	name, err := wb.FirstSheet()
	require.NoError(t, err)
	assert.Equal(t, "Indicators", name)

	rows, err := wb.Rows(name)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Number", Normalize(rows[0][0]))
	assert.Equal(t, "First", Normalize(rows[1][1]))
	assert.Equal(t, "2.", Normalize(rows[2][0]))
}
