package schema

// Column is the 0-based position of a field in an imported row.
type Column int

const (
	ColNumber Column = iota
	ColStructure
	ColLevel
	ColGoal
	ColDeadlineStart
	ColDeadlineEnd
	ColDivisions
	ColOwner
	ColCoordinator
	ColResponsibles
	ColAdditionalResponsibles
	ColBusiness

	// ColumnCount is the number of positional import columns.
	ColumnCount int = iota
)

// ColumnSpec describes one indicator field across the spreadsheet and the database.
type ColumnSpec struct {
	Column   Column
	Header   string // export header text
	DBColumn string // column name in both indicator tables
}

// IndicatorColumns lists the indicator fields in import and export order.
var IndicatorColumns = []ColumnSpec{
	{Column: ColNumber, Header: "Number", DBColumn: "number"},
	{Column: ColStructure, Header: "Structure", DBColumn: "structure"},
	{Column: ColLevel, Header: "Level", DBColumn: "level"},
	{Column: ColGoal, Header: "Goal", DBColumn: "goal"},
	{Column: ColDeadlineStart, Header: "Deadline", DBColumn: "deadline_start"},
	{Column: ColDeadlineEnd, Header: "DeadlineEnd", DBColumn: "deadline_end"},
	{Column: ColDivisions, Header: "Divisions", DBColumn: "divisions"},
	{Column: ColOwner, Header: "Owner", DBColumn: "owner"},
	{Column: ColCoordinator, Header: "Coordinator", DBColumn: "coordinator"},
	{Column: ColResponsibles, Header: "Responsibles", DBColumn: "responsibles"},
	{Column: ColAdditionalResponsibles, Header: "AdditionalResponsibles", DBColumn: "additional_responsibles"},
	{Column: ColBusiness, Header: "Business", DBColumn: "business"},
}

// ErrorMessageHeader is the extra column of the quarantine export.
const ErrorMessageHeader = "ErrorMessage"

// ExportSheet is the sheet title of exported workbooks.
const ExportSheet = "Indicators"

// MainHeaders returns the header row of the valid-record export.
func MainHeaders() []string {
	out := make([]string, len(IndicatorColumns))
	for i, c := range IndicatorColumns {
		out[i] = c.Header
	}
	return out
}

// ErrorHeaders returns the header row of the quarantine export.
func ErrorHeaders() []string {
	return append(MainHeaders(), ErrorMessageHeader)
}

// DBColumns returns the database column names in field order.
func DBColumns() []string {
	out := make([]string, len(IndicatorColumns))
	for i, c := range IndicatorColumns {
		out[i] = c.DBColumn
	}
	return out
}
