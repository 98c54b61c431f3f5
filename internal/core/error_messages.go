package core

// error_messages.go maps technical errors to user-facing messages with
// codes that support staff can look up.
//
// Codes by category:
//
//	FILE001 file too large          FILE002 not an xlsx spreadsheet
//	FILE003 workbook has no sheets  FILE004 no file provided
//	IMP001  too many imports        REQ001  invalid request
//	REC001  record not found        PRM001  record cannot be promoted
//	DB001   duplicate key           DB002   connection refused
//	DB003   connection reset        DB004   timeout
//	DB005   deadlock                UPL001  request cancelled
//	UPL002  request timed out       RATE001 rate limited
//	ERR000  unknown error
//
// Sentinel errors are matched first with errors.Is. Everything else is matched
// case-insensitively against message patterns; the first match wins.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/indicators/internal/sheet"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type sentinelMessage struct {
	err error
	msg UserMessage
}

// sentinelMessages is ordered: wrapped sentinels precede the ones they wrap.
var sentinelMessages = []sentinelMessage{
	{ErrUnpromotable, UserMessage{
		Message: "A selected record still has an invalid structure or division",
		Action:  "Correct the record in the error list before transferring it",
		Code:    "PRM001",
	}},
	{ErrNotFound, UserMessage{
		Message: "Record not found",
		Action:  "Refresh the list; the record may have been transferred or cleared",
		Code:    "REC001",
	}},
	{ErrInvalidArgument, UserMessage{
		Message: "The request is invalid",
		Action:  "Check the submitted values and try again",
		Code:    "REQ001",
	}},
	{ErrNotSpreadsheet, UserMessage{
		Message: "The file is not an Excel workbook",
		Action:  "Upload a .xlsx file",
		Code:    "FILE002",
	}},
	{sheet.ErrNoSheets, UserMessage{
		Message: "The workbook has no sheets",
		Action:  "Check that the file contains the indicator sheet",
		Code:    "FILE003",
	}},
	{ErrTooManyImports, UserMessage{
		Message: "The system is busy importing other files",
		Action:  "Please wait a moment and try again",
		Code:    "IMP001",
	}},
	{context.Canceled, UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "UPL001",
	}},
	{context.DeadlineExceeded, UserMessage{
		Message: "Request timed out",
		Action:  "Try a smaller file or try again later",
		Code:    "UPL002",
	}},
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{"request body too large", UserMessage{
		Message: "File exceeds the maximum size",
		Action:  "Split the workbook into smaller files",
		Code:    "FILE001",
	}},
	{"file too large", UserMessage{
		Message: "File exceeds the maximum size",
		Action:  "Split the workbook into smaller files",
		Code:    "FILE001",
	}},
	{"zip: not a valid zip file", UserMessage{
		Message: "The file is not an Excel workbook",
		Action:  "Upload a .xlsx file",
		Code:    "FILE002",
	}},
	{"open workbook", UserMessage{
		Message: "The workbook could not be read",
		Action:  "Re-save the file in Excel as .xlsx and upload it again",
		Code:    "FILE002",
	}},
	{"no file provided", UserMessage{
		Message: "No file was selected",
		Action:  "Please select a .xlsx file to upload",
		Code:    "FILE004",
	}},
	{"duplicate key", UserMessage{
		Message: "A record with this ID already exists",
		Action:  "Refresh the list and try again",
		Code:    "DB001",
	}},
	{"connection refused", UserMessage{
		Message: "Unable to connect to database",
		Action:  "Please try again in a few moments",
		Code:    "DB002",
	}},
	{"connection reset", UserMessage{
		Message: "Database connection was interrupted",
		Action:  "Please try again",
		Code:    "DB003",
	}},
	{"timeout", UserMessage{
		Message: "Operation timed out",
		Action:  "Try a smaller file or try again later",
		Code:    "DB004",
	}},
	{"deadlock", UserMessage{
		Message: "Database was busy with conflicting operations",
		Action:  "Please try again",
		Code:    "DB005",
	}},
	{"rate limit", UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
//	msg := MapError(fmt.Errorf("promote 9: %w", ErrNotFound))
//	// msg.Code == "REC001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}
	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.err) {
			return sm.msg
		}
	}
	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError renders "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}
