package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors. Callers test with errors.Is.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrNotSpreadsheet  = errors.New("file is not an xlsx spreadsheet")

	// ErrUnpromotable marks quarantined records that still carry a sentinel
	// structure kind or an unknown division.
	ErrUnpromotable = fmt.Errorf("record cannot be promoted: %w", ErrInvalidArgument)
)

// Store persists the two record collections. Implementations assign IDs on
// save. InTx runs fn against a transactional view: if fn returns an error
// nothing fn wrote is visible afterwards.
type Store interface {
	SaveIndicator(ctx context.Context, ind *Indicator) error
	SaveQuarantined(ctx context.Context, q *QuarantinedIndicator) error

	GetIndicator(ctx context.Context, id int64) (Indicator, error)
	GetQuarantined(ctx context.Context, id int64) (QuarantinedIndicator, error)

	UpdateIndicator(ctx context.Context, ind Indicator) error
	UpdateQuarantined(ctx context.Context, q QuarantinedIndicator) error

	DeleteQuarantined(ctx context.Context, id int64) error

	ListIndicators(ctx context.Context) ([]Indicator, error)
	ListQuarantined(ctx context.Context) ([]QuarantinedIndicator, error)

	DeleteAllIndicators(ctx context.Context) (int64, error)
	DeleteAllQuarantined(ctx context.Context) (int64, error)

	InTx(ctx context.Context, fn func(tx Store) error) error
}

// Observer receives operation outcomes, typically for metrics.
type Observer interface {
	ImportFinished(valid, quarantined int, err error)
	Promoted(n int, err error)
}

type nopObserver struct{}

func (nopObserver) ImportFinished(int, int, error) {}
func (nopObserver) Promoted(int, error)            {}

// ExportKind selects the collection to export.
type ExportKind string

const (
	ExportMain   ExportKind = "main"
	ExportErrors ExportKind = "errors"
)

// ParseExportKind validates a kind name.
func ParseExportKind(s string) (ExportKind, error) {
	switch k := ExportKind(strings.ToLower(strings.TrimSpace(s))); k {
	case ExportMain, ExportErrors:
		return k, nil
	}
	return "", fmt.Errorf("export type %q: %w", s, ErrInvalidArgument)
}

// RowOutcome describes one quarantined row of an import.
type RowOutcome struct {
	Row     int      `json:"row"` // 1-based sheet row
	Number  string   `json:"number"`
	Reasons []string `json:"reasons"`
}

// ImportResult summarizes an import.
type ImportResult struct {
	ImportID    string        `json:"importId"`
	FileName    string        `json:"fileName,omitempty"`
	Sheet       string        `json:"sheet"`
	Rows        int           `json:"rows"`
	Valid       int           `json:"valid"`
	Quarantined int           `json:"quarantined"`
	Skipped     int           `json:"skipped"`
	Rejected    []RowOutcome  `json:"rejected,omitempty"`
	Duration    time.Duration `json:"-"`
}

// DataSnapshot is everything a client needs to render both collections.
type DataSnapshot struct {
	Indicators  []Indicator            `json:"indicators"`
	Quarantined []QuarantinedIndicator `json:"errors"`
	Structures  []string               `json:"structures"`
	Divisions   []string               `json:"divisions"`
}
