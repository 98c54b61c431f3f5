package core

// Reason codes recorded for failed fields. A quarantined record's error
// message is its codes joined with ReasonSeparator.
const (
	ReasonEmptyNumber             = "empty_number"
	ReasonInvalidNumber           = "invalid_number"
	ReasonNumberStructureMismatch = "number_structure_mismatch"

	ReasonEmptyStructure   = "empty_structure"
	ReasonInvalidStructure = "invalid_structure"

	ReasonInvalidLevel = "invalid_level"
	ReasonGoalTooLong  = "goal_too_long"

	ReasonEmptyDeadlineStart   = "empty_deadline_start"
	ReasonEmptyDeadlineEnd     = "empty_deadline_end"
	ReasonInvalidDeadlineStart = "invalid_deadline_start"
	ReasonInvalidDeadlineEnd   = "invalid_deadline_end"
	ReasonInvalidDeadlineRange = "invalid_deadline_range"

	ReasonEmptyDivisions   = "empty_divisions"
	ReasonInvalidDivisions = "invalid_divisions"

	ReasonEmptyOwner     = "empty_owner"
	ReasonMultipleOwners = "multiple_owners"
	ReasonInvalidOwner   = "invalid_owner"

	ReasonEmptyCoordinator     = "empty_coordinator"
	ReasonMultipleCoordinators = "multiple_coordinators"
	ReasonInvalidCoordinator   = "invalid_coordinator"

	ReasonInvalidResponsibles           = "invalid_responsibles"
	ReasonInvalidAdditionalResponsibles = "invalid_additional_responsibles"

	// ReasonInvalidSheetName is the sheet-level code prepended to every row
	// of an import whose first sheet has an unexpected title.
	ReasonInvalidSheetName = "invalid_sheet_name"
)

// ReasonSeparator joins reason codes.
const ReasonSeparator = "|"

// Placeholders substituted for unusable required values.
const (
	PlaceholderLevel = "No level"
	PlaceholderDate  = "No date"
)
