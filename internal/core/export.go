package core

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/indicators/internal/logging"
	"github.com/JonMunkholm/indicators/internal/schema"
	"github.com/JonMunkholm/indicators/internal/sheet"
)

// Export renders one collection as an xlsx workbook. Main rows are ordered
// by number; Errors rows keep store order and gain an ErrorMessage column.
func (s *Service) Export(ctx context.Context, kind ExportKind) ([]byte, error) {
	var (
		header []string
		rows   [][]string
	)

	switch kind {
	case ExportMain:
		list, err := s.ListIndicators(ctx)
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", kind, err)
		}
		header = schema.MainHeaders()
		rows = make([][]string, len(list))
		for i, ind := range list {
			rows[i] = exportValues(ind.Fields)
		}
	case ExportErrors:
		list, err := s.store.ListQuarantined(ctx)
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", kind, err)
		}
		header = schema.ErrorHeaders()
		rows = make([][]string, len(list))
		for i, q := range list {
			rows[i] = append(exportValues(q.Fields), q.ErrorMessage)
		}
	default:
		return nil, fmt.Errorf("export type %q: %w", kind, ErrInvalidArgument)
	}

	data, err := sheet.Write(schema.ExportSheet, header, rows)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", kind, err)
	}
	logging.FromContext(ctx).Info("export written", "kind", string(kind), "rows", len(rows), "bytes", len(data))
	return data, nil
}

// exportValues renders f for a spreadsheet row. Blank sentinel kinds become
// empty cells; the error kind stays visible.
func exportValues(f Fields) []string {
	values := f.Values()
	if !f.Structure.IsConcrete() && f.Structure != KindError {
		values[schema.ColStructure] = ""
	}
	return values
}
