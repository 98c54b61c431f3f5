package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/indicators/internal/sheet"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{name: "nil error returns empty", err: nil, wantCode: ""},
		{name: "wrapped not found", err: fmt.Errorf("promote 9: %w", ErrNotFound), wantCode: "REC001"},
		{name: "unpromotable wins over invalid argument", err: fmt.Errorf("promote 3: %w", ErrUnpromotable), wantCode: "PRM001"},
		{name: "invalid argument", err: fmt.Errorf("empty id list: %w", ErrInvalidArgument), wantCode: "REQ001"},
		{name: "not a spreadsheet", err: ErrNotSpreadsheet, wantCode: "FILE002"},
		{name: "no sheets", err: fmt.Errorf("import: %w", sheet.ErrNoSheets), wantCode: "FILE003"},
		{name: "too many imports", err: ErrTooManyImports, wantCode: "IMP001"},
		{name: "cancelled", err: fmt.Errorf("import: %w", context.Canceled), wantCode: "UPL001"},
		{name: "deadline", err: context.DeadlineExceeded, wantCode: "UPL002"},
		{name: "body too large", err: errors.New("http: request body too large"), wantCode: "FILE001"},
		{name: "broken zip", err: errors.New("open workbook: zip: not a valid zip file"), wantCode: "FILE002"},
		{name: "duplicate key", err: errors.New("ERROR: duplicate key value violates unique constraint"), wantCode: "DB001"},
		{name: "connection refused", err: errors.New("dial tcp: connection refused"), wantCode: "DB002"},
		{name: "pattern is case insensitive", err: errors.New("DEADLOCK detected"), wantCode: "DB005"},
		{name: "unknown error", err: errors.New("something odd"), wantCode: "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError(%v).Code = %q, want %q", tt.err, got.Code, tt.wantCode)
			}
			if tt.err != nil && (got.Message == "" || got.Action == "") {
				t.Errorf("MapError(%v) returned incomplete message %+v", tt.err, got)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}

	got := FormatUserError(ErrTooManyImports)
	want := "The system is busy importing other files (Code: IMP001). Please wait a moment and try again"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}
}
