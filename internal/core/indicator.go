package core

import (
	"strings"
	"time"
)

// StructureKind is the hierarchy level of an indicator.
type StructureKind int

const (
	KindEvent StructureKind = iota
	KindSection
	KindSubsection
	KindGoal
	KindSubgoal
	KindTask
	KindSubtask

	// Sentinels. None of them is ever stored as a valid record.
	KindEmpty
	KindSpace
	KindError
)

type kindInfo struct {
	name    string
	aliases []string
}

var kindTable = map[StructureKind]kindInfo{
	KindEvent:      {name: "Event", aliases: []string{"Мероприятие"}},
	KindSection:    {name: "Section", aliases: []string{"Раздел"}},
	KindSubsection: {name: "Subsection", aliases: []string{"Подраздел"}},
	KindGoal:       {name: "Goal", aliases: []string{"Цель"}},
	KindSubgoal:    {name: "Subgoal", aliases: []string{"Подцель"}},
	KindTask:       {name: "Task", aliases: []string{"Задача"}},
	KindSubtask:    {name: "Subtask", aliases: []string{"Подзадача"}},
	KindEmpty:      {name: ""},
	KindSpace:      {name: " "},
	KindError:      {name: "error"},
}

var kindByName = func() map[string]StructureKind {
	m := make(map[string]StructureKind)
	for _, k := range StructureKinds() {
		info := kindTable[k]
		m[strings.ToLower(info.name)] = k
		for _, a := range info.aliases {
			m[strings.ToLower(a)] = k
		}
	}
	return m
}()

// StructureKinds returns the real kinds in hierarchy order.
func StructureKinds() []StructureKind {
	return []StructureKind{KindEvent, KindSection, KindSubsection, KindGoal, KindSubgoal, KindTask, KindSubtask}
}

// ParseStructure maps a cell value to a kind. Matching is case-insensitive
// over display names and aliases. Blank input yields KindEmpty or KindSpace,
// anything unrecognized yields KindError.
func ParseStructure(s string) StructureKind {
	if s == "" {
		return KindEmpty
	}
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return KindSpace
	}
	if k, ok := kindByName[strings.ToLower(trimmed)]; ok {
		return k
	}
	return KindError
}

// String returns the display name.
func (k StructureKind) String() string {
	if info, ok := kindTable[k]; ok {
		return info.name
	}
	return kindTable[KindError].name
}

// IsConcrete reports whether k is a real kind rather than a sentinel.
func (k StructureKind) IsConcrete() bool {
	return k >= KindEvent && k <= KindSubtask
}

// MarshalText implements encoding.TextMarshaler.
func (k StructureKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown names decode to
// KindError.
func (k *StructureKind) UnmarshalText(b []byte) error {
	*k = ParseStructure(string(b))
	return nil
}

// Placement restricts where a kind may appear in the numbering hierarchy.
type Placement int

const (
	PlaceAnywhere Placement = iota
	PlaceRootOnly
	PlaceNestedOnly
)

// KindRule holds the per-kind field requirements applied by the row validator.
type KindRule struct {
	Placement Placement

	// RequiresDeadlines makes both deadlines mandatory and checks their order.
	RequiresDeadlines bool

	// RequiresOwner makes owner mandatory and well-formed. More than one
	// owner is rejected for every kind.
	RequiresOwner bool

	// RequiresCoordinator makes coordinator mandatory with every identifier
	// well-formed. Without it, more than one coordinator is rejected.
	RequiresCoordinator bool
}

// leafRule is also applied to sentinel kinds.
var leafRule = KindRule{
	RequiresDeadlines:   true,
	RequiresOwner:       true,
	RequiresCoordinator: true,
}

// KindRules is the requirement table keyed by kind.
var KindRules = map[StructureKind]KindRule{
	KindEvent:      leafRule,
	KindSection:    {Placement: PlaceRootOnly},
	KindSubsection: {Placement: PlaceNestedOnly},
	KindGoal:       leafRule,
	KindSubgoal:    {Placement: PlaceNestedOnly, RequiresDeadlines: true, RequiresOwner: true, RequiresCoordinator: true},
	KindTask:       {Placement: PlaceNestedOnly, RequiresDeadlines: true, RequiresOwner: true, RequiresCoordinator: true},
	KindSubtask:    {Placement: PlaceNestedOnly, RequiresDeadlines: true, RequiresOwner: true, RequiresCoordinator: true},
}

// RuleFor returns the requirements for k.
func RuleFor(k StructureKind) KindRule {
	if r, ok := KindRules[k]; ok {
		return r
	}
	return leafRule
}

// Fields is the field set shared by valid and quarantined records.
type Fields struct {
	Number                 string        `json:"number"`
	Structure              StructureKind `json:"structure"`
	Level                  string        `json:"level"`
	Goal                   string        `json:"goal"`
	DeadlineStart          string        `json:"deadline"`
	DeadlineEnd            string        `json:"deadlineEnd"`
	Divisions              string        `json:"divisions"`
	Owner                  string        `json:"owner"`
	Coordinator            string        `json:"coordinator"`
	Responsibles           string        `json:"responsibles"`
	AdditionalResponsibles string        `json:"additionalResponsibles"`
	Business               string        `json:"business"`
}

// Values returns the fields as strings in column order.
func (f Fields) Values() []string {
	return []string{
		f.Number,
		f.Structure.String(),
		f.Level,
		f.Goal,
		f.DeadlineStart,
		f.DeadlineEnd,
		f.Divisions,
		f.Owner,
		f.Coordinator,
		f.Responsibles,
		f.AdditionalResponsibles,
		f.Business,
	}
}

// StatusValid is the status of every record in the valid store.
const StatusValid = "valid"

// Indicator is a record of the valid store.
type Indicator struct {
	ID int64 `json:"id"`
	Fields
	Status    string    `json:"status"`
	ImportID  string    `json:"importId"`
	CreatedAt time.Time `json:"createdAt"`
}

// QuarantinedIndicator is a record that failed validation.
type QuarantinedIndicator struct {
	ID int64 `json:"id"`
	Fields
	ErrorMessage string    `json:"errorMessage"`
	ImportID     string    `json:"importId"`
	CreatedAt    time.Time `json:"createdAt"`
}
