package core

import (
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/indicators/internal/division"
)

// Options configures a Service.
type Options struct {
	// HeaderRows leading rows of every imported sheet are skipped.
	HeaderRows int

	// SheetName, when set, is the title the first sheet must carry. Imports of
	// any other sheet quarantine every row with ReasonInvalidSheetName.
	SheetName string

	Validator ValidatorConfig

	MaxConcurrentImports int
	MaxImportWait        time.Duration

	// ImportTimeout bounds a single import. Zero means no bound.
	ImportTimeout time.Duration

	Observer Observer
}

// Service is the entry point for every indicator operation.
type Service struct {
	store      Store
	divisions  *division.Registry
	validator  *RowValidator
	limiter    *ImportLimiter
	observer   Observer
	headerRows int
	sheetName  string
	timeout    time.Duration
	now        func() time.Time
}

// NewService wires a service over store and the division registry.
func NewService(store Store, divisions *division.Registry, opts Options) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("new service: nil store: %w", ErrInvalidArgument)
	}
	if divisions == nil {
		return nil, fmt.Errorf("new service: nil division registry: %w", ErrInvalidArgument)
	}
	if opts.HeaderRows < 0 {
		return nil, fmt.Errorf("new service: negative header rows: %w", ErrInvalidArgument)
	}

	validator, err := NewRowValidator(opts.Validator)
	if err != nil {
		return nil, fmt.Errorf("new service: %w", err)
	}

	observer := opts.Observer
	if observer == nil {
		observer = nopObserver{}
	}

	return &Service{
		store:      store,
		divisions:  divisions,
		validator:  validator,
		limiter:    NewImportLimiter(opts.MaxConcurrentImports, opts.MaxImportWait),
		observer:   observer,
		headerRows: opts.HeaderRows,
		sheetName:  opts.SheetName,
		timeout:    opts.ImportTimeout,
		now:        time.Now,
	}, nil
}

// Divisions returns the currently known division names.
func (s *Service) Divisions() []string {
	return s.divisions.Names()
}

// Structures returns the display names of the real structure kinds.
func Structures() []string {
	kinds := StructureKinds()
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = k.String()
	}
	return out
}

// WaitForImports blocks until running imports finish or ctx ends.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.Drain(ctx)
}

// ActiveImports returns the number of imports in progress.
func (s *Service) ActiveImports() int {
	return s.limiter.Active()
}
