// Package core implements the indicator import pipeline.
//
// This package holds all domain logic independent of any transport. It is
// used by the HTTP server, the admin CLI and tests without modification.
//
// # Data Flow
//
//	xlsx -> sheet.Cell rows -> RowValidator (division.Snapshot) -> valid store
//	                                                            -> quarantine store
//	quarantine store -> Service.Promote -> valid store
//	either store -> Service.Export -> xlsx
//
// # Row Validation
//
// [RowValidator.Validate] checks the fields of a row in a fixed order and
// never stops at the first failure. Each field yields a [FieldResult]; the
// row's reason codes (see reasons.go) are joined with "|" into the
// quarantined record's error message. Per-kind requirements live in
// [KindRules] rather than in branches of the validator.
//
// # Stores
//
// A [Store] holds both collections. [Store.InTx] gives imports and
// promotions an all-or-nothing boundary: an import writes all of its rows or
// none, and a promotion batch either moves every listed record or leaves
// both collections untouched.
//
// # Numbering
//
// Indicator numbers are dotted and always end with the delimiter once
// normalized ("1.2."). [CompareNumbers] orders them by integer segments, so
// "1.2." sorts before "1.10.".
package core
