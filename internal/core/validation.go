package core

// validation.go turns one spreadsheet row into a candidate record.
//
// Every field is validated in a fixed order and produces a FieldResult: the
// value to store plus zero or more reason codes. A failure never stops the
// remaining fields from being checked, so a quarantined row reports every
// problem at once. Cross-field rules (numbering vs. structure, deadline
// order, per-kind requirements) read values produced by earlier steps.

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/JonMunkholm/indicators/internal/division"
	"github.com/JonMunkholm/indicators/internal/schema"
	"github.com/JonMunkholm/indicators/internal/sheet"
)

// DefaultGoalMaxLength is the longest goal kept before truncation.
const DefaultGoalMaxLength = 254

// FieldResult is the outcome of validating one field.
type FieldResult struct {
	Column  schema.Column
	Value   string
	Reasons []string
}

// OK reports whether the field passed.
func (r FieldResult) OK() bool { return len(r.Reasons) == 0 }

// RowReport is the outcome of validating a row.
type RowReport struct {
	Fields  Fields
	Results []FieldResult
}

// Failed reports whether any field failed.
func (r RowReport) Failed() bool {
	for _, res := range r.Results {
		if !res.OK() {
			return true
		}
	}
	return false
}

// Reasons returns all reason codes in validation order.
func (r RowReport) Reasons() []string {
	var out []string
	for _, res := range r.Results {
		out = append(out, res.Reasons...)
	}
	return out
}

// ErrorMessage joins the sheet-level reasons, then the row's own reasons.
func (r RowReport) ErrorMessage(global ...string) string {
	return strings.Join(append(append([]string{}, global...), r.Reasons()...), ReasonSeparator)
}

// ValidatorConfig configures a RowValidator.
type ValidatorConfig struct {
	IdentifierPattern string
	GoalMaxLength     int
}

// RowValidator validates imported rows. It holds no per-row state and is
// safe for concurrent use.
type RowValidator struct {
	ids     *IdentifierValidator
	goalMax int
}

// NewRowValidator builds a validator.
func NewRowValidator(cfg ValidatorConfig) (*RowValidator, error) {
	ids, err := NewIdentifierValidator(cfg.IdentifierPattern)
	if err != nil {
		return nil, err
	}
	goalMax := cfg.GoalMaxLength
	if goalMax <= 0 {
		goalMax = DefaultGoalMaxLength
	}
	return &RowValidator{ids: ids, goalMax: goalMax}, nil
}

// Identifiers returns the identifier validator in use.
func (v *RowValidator) Identifiers() *IdentifierValidator { return v.ids }

// Validate checks one row against divs. Missing trailing cells count as empty.
func (v *RowValidator) Validate(row []sheet.Cell, divs *division.Snapshot) RowReport {
	cell := func(c schema.Column) sheet.Cell {
		if int(c) < len(row) {
			return row[c]
		}
		return sheet.Cell{}
	}
	text := func(c schema.Column) string { return sheet.Normalize(cell(c)) }

	var rep RowReport
	add := func(r FieldResult) FieldResult {
		rep.Results = append(rep.Results, r)
		return r
	}

	number := add(v.number(text(schema.ColNumber)))
	rep.Fields.Number = number.Value

	kind, structure := v.structure(cell(schema.ColStructure), number)
	add(structure)
	rep.Fields.Structure = kind
	rule := RuleFor(kind)

	rep.Fields.Level = add(v.level(cell(schema.ColLevel))).Value
	rep.Fields.Goal = add(v.goal(text(schema.ColGoal))).Value

	start, end := v.deadlines(text(schema.ColDeadlineStart), text(schema.ColDeadlineEnd), rule)
	rep.Fields.DeadlineStart = add(start).Value
	rep.Fields.DeadlineEnd = add(end).Value

	rep.Fields.Divisions = add(v.divisions(text(schema.ColDivisions), divs)).Value
	rep.Fields.Owner = add(v.owner(text(schema.ColOwner), rule)).Value
	rep.Fields.Coordinator = add(v.coordinator(text(schema.ColCoordinator), rule)).Value
	rep.Fields.Responsibles = add(v.identifierList(schema.ColResponsibles, text(schema.ColResponsibles), ReasonInvalidResponsibles)).Value
	rep.Fields.AdditionalResponsibles = add(v.identifierList(schema.ColAdditionalResponsibles, text(schema.ColAdditionalResponsibles), ReasonInvalidAdditionalResponsibles)).Value

	rep.Fields.Business = add(FieldResult{Column: schema.ColBusiness, Value: text(schema.ColBusiness)}).Value

	return rep
}

func (v *RowValidator) number(raw string) FieldResult {
	res := FieldResult{Column: schema.ColNumber, Value: NormalizeNumber(raw)}
	if res.Value == "" {
		res.Reasons = append(res.Reasons, ReasonEmptyNumber)
		return res
	}
	if !validNumber(res.Value) {
		res.Reasons = append(res.Reasons, ReasonInvalidNumber)
	}
	return res
}

// validNumber reports whether every segment of a normalized number is a
// non-empty run of ASCII digits.
func validNumber(number string) bool {
	for _, seg := range NumberSegments(number) {
		if seg == "" {
			return false
		}
		for i := 0; i < len(seg); i++ {
			if seg[i] < '0' || seg[i] > '9' {
				return false
			}
		}
	}
	return true
}

func (v *RowValidator) structure(c sheet.Cell, number FieldResult) (StructureKind, FieldResult) {
	raw := sheet.Normalize(c)
	if c.Kind == sheet.KindText && raw == "" {
		raw = c.Text
	}
	kind := ParseStructure(raw)
	res := FieldResult{Column: schema.ColStructure, Value: kind.String()}

	switch kind {
	case KindEmpty, KindSpace:
		res.Reasons = append(res.Reasons, ReasonEmptyStructure)
		return kind, res
	case KindError:
		res.Reasons = append(res.Reasons, ReasonInvalidStructure)
		return kind, res
	}

	if !number.OK() {
		return kind, res
	}
	root := len(NumberSegments(number.Value)) == 1
	switch RuleFor(kind).Placement {
	case PlaceRootOnly:
		if !root {
			res.Reasons = append(res.Reasons, ReasonNumberStructureMismatch)
		}
	case PlaceNestedOnly:
		if root {
			res.Reasons = append(res.Reasons, ReasonNumberStructureMismatch)
		}
	}
	return kind, res
}

func (v *RowValidator) level(c sheet.Cell) FieldResult {
	res := FieldResult{Column: schema.ColLevel}
	switch {
	case c.Kind == sheet.KindError:
		res.Value = PlaceholderLevel
		res.Reasons = append(res.Reasons, ReasonInvalidLevel)
	case c.Kind == sheet.KindDate, c.Kind == sheet.KindFormula && c.DateFormatted:
		res.Value = strings.ToUpper(sheet.Normalize(c))
	default:
		res.Value = sheet.Normalize(c)
	}
	return res
}

func (v *RowValidator) goal(raw string) FieldResult {
	res := FieldResult{Column: schema.ColGoal, Value: raw}
	if utf8.RuneCountInString(raw) > v.goalMax {
		res.Value = string([]rune(raw)[:v.goalMax])
		res.Reasons = append(res.Reasons, ReasonGoalTooLong)
	}
	return res
}

func (v *RowValidator) deadlines(rawStart, rawEnd string, rule KindRule) (FieldResult, FieldResult) {
	start := FieldResult{Column: schema.ColDeadlineStart}
	end := FieldResult{Column: schema.ColDeadlineEnd}

	startAt, startOK := v.deadline(&start, rawStart, rule.RequiresDeadlines, ReasonEmptyDeadlineStart, ReasonInvalidDeadlineStart)
	endAt, endOK := v.deadline(&end, rawEnd, rule.RequiresDeadlines, ReasonEmptyDeadlineEnd, ReasonInvalidDeadlineEnd)

	if rule.RequiresDeadlines && startOK && endOK && !endAt.After(startAt) {
		end.Reasons = append(end.Reasons, ReasonInvalidDeadlineRange)
	}
	return start, end
}

func (v *RowValidator) deadline(res *FieldResult, raw string, required bool, emptyCode, invalidCode string) (time.Time, bool) {
	if raw == "" {
		if required {
			res.Value = PlaceholderDate
			res.Reasons = append(res.Reasons, emptyCode)
		}
		return time.Time{}, false
	}
	t, parsed := ParseDate(raw)
	if !parsed {
		res.Value = raw
		res.Reasons = append(res.Reasons, invalidCode)
		return time.Time{}, false
	}
	res.Value = FormatDate(t)
	return t, true
}

func (v *RowValidator) divisions(raw string, divs *division.Snapshot) FieldResult {
	res := FieldResult{Column: schema.ColDivisions}
	list := divs.ParseList(raw)
	if len(list) == 0 {
		res.Reasons = append(res.Reasons, ReasonEmptyDivisions)
		return res
	}
	if division.ContainsError(list) {
		res.Value = division.ErrorName
		res.Reasons = append(res.Reasons, ReasonInvalidDivisions)
		return res
	}
	res.Value = division.Render(list)
	return res
}

func (v *RowValidator) owner(raw string, rule KindRule) FieldResult {
	tokens := SplitIdentifiers(raw)
	res := FieldResult{Column: schema.ColOwner, Value: JoinIdentifiers(tokens)}
	switch {
	case len(tokens) > 1:
		res.Reasons = append(res.Reasons, ReasonMultipleOwners)
	case !rule.RequiresOwner:
	case len(tokens) == 0:
		res.Reasons = append(res.Reasons, ReasonEmptyOwner)
	case !v.ids.Valid(tokens[0]):
		res.Reasons = append(res.Reasons, ReasonInvalidOwner)
	}
	return res
}

func (v *RowValidator) coordinator(raw string, rule KindRule) FieldResult {
	tokens := SplitIdentifiers(raw)
	res := FieldResult{Column: schema.ColCoordinator, Value: JoinIdentifiers(tokens)}
	if !rule.RequiresCoordinator {
		if len(tokens) > 1 {
			res.Reasons = append(res.Reasons, ReasonMultipleCoordinators)
		}
		return res
	}
	switch {
	case len(tokens) == 0:
		res.Reasons = append(res.Reasons, ReasonEmptyCoordinator)
	case !v.ids.AllValid(tokens):
		res.Reasons = append(res.Reasons, ReasonInvalidCoordinator)
	}
	return res
}

func (v *RowValidator) identifierList(col schema.Column, raw, invalidCode string) FieldResult {
	tokens := SplitIdentifiers(raw)
	res := FieldResult{Column: col, Value: JoinIdentifiers(tokens)}
	if !v.ids.AllValid(tokens) {
		res.Reasons = append(res.Reasons, invalidCode)
	}
	return res
}
