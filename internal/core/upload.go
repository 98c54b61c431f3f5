package core

// upload.go runs the import pipeline.
//
// The first sheet of the workbook is read into typed cells, header rows are
// skipped, and every remaining non-empty row goes through the RowValidator.
// Rows without failures are written to the valid store, the others to the
// quarantine store with their joined reason codes. All writes of one import
// share a transaction: a store failure aborts the import and writes nothing,
// while a validation failure only ever affects its own row.

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/JonMunkholm/indicators/internal/logging"
	"github.com/JonMunkholm/indicators/internal/sheet"
)

const (
	xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	zipMIME  = "application/zip"
)

// DetectSpreadsheet returns ErrNotSpreadsheet unless data is an xlsx
// workbook or at least a zip container. The detector only inspects the head
// of the file, so a workbook whose first zip entry is large is reported as a
// plain zip; the decoder has the final word.
func DetectSpreadsheet(data []byte) error {
	for mt := mimetype.Detect(data); mt != nil; mt = mt.Parent() {
		if mt.Is(xlsxMIME) || mt.Is(zipMIME) {
			return nil
		}
	}
	return ErrNotSpreadsheet
}

// Import reads an xlsx workbook and imports its first sheet.
func (s *Service) Import(ctx context.Context, r io.Reader, fileName string) (*ImportResult, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("import %s: read: %w", fileName, err)
	}
	if err := DetectSpreadsheet(data); err != nil {
		return nil, fmt.Errorf("import %s: %w", fileName, err)
	}

	wb, err := sheet.Open(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("import %s: %w: %w", fileName, ErrNotSpreadsheet, err)
	}
	defer wb.Close()

	name, err := wb.FirstSheet()
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", fileName, err)
	}
	rows, err := wb.Rows(name)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", fileName, err)
	}

	res, err := s.ImportRows(ctx, name, rows)
	if res != nil {
		res.FileName = fileName
	}
	return res, err
}

// ImportRows validates and stores already decoded rows of sheetName.
func (s *Service) ImportRows(ctx context.Context, sheetName string, rows [][]sheet.Cell) (*ImportResult, error) {
	start := time.Now()
	importID := uuid.NewString()
	ctx = logging.WithImportID(ctx, importID)
	logger := logging.WithFields(ctx, callerAttrs(ctx)...)

	var global []string
	if s.sheetName != "" && sheetName != s.sheetName {
		global = append(global, ReasonInvalidSheetName)
		logger.Warn("unexpected sheet name, quarantining every row",
			"sheet", sheetName,
			"expected", s.sheetName,
		)
	}

	res := &ImportResult{ImportID: importID, Sheet: sheetName}
	divs := s.divisions.Snapshot()
	createdAt := s.now().UTC()

	err := s.store.InTx(ctx, func(tx Store) error {
		for i, row := range rows {
			if i < s.headerRows {
				continue
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if isEmptyRow(row) {
				res.Skipped++
				continue
			}
			res.Rows++

			rep := s.validator.Validate(row, divs)
			if len(global) == 0 && !rep.Failed() {
				ind := &Indicator{Fields: rep.Fields, Status: StatusValid, ImportID: importID, CreatedAt: createdAt}
				if err := tx.SaveIndicator(ctx, ind); err != nil {
					return fmt.Errorf("row %d: %w", i+1, err)
				}
				res.Valid++
				continue
			}

			q := &QuarantinedIndicator{
				Fields:       rep.Fields,
				ErrorMessage: rep.ErrorMessage(global...),
				ImportID:     importID,
				CreatedAt:    createdAt,
			}
			if err := tx.SaveQuarantined(ctx, q); err != nil {
				return fmt.Errorf("row %d: %w", i+1, err)
			}
			res.Quarantined++
			res.Rejected = append(res.Rejected, RowOutcome{
				Row:     i + 1,
				Number:  rep.Fields.Number,
				Reasons: append(append([]string{}, global...), rep.Reasons()...),
			})
		}
		return nil
	})
	res.Duration = time.Since(start)

	if err != nil {
		s.observer.ImportFinished(0, 0, err)
		logger.Error("import failed", "sheet", sheetName, "error", err)
		return nil, fmt.Errorf("import: %w", err)
	}
	s.observer.ImportFinished(res.Valid, res.Quarantined, nil)

	logger.Info("import finished",
		"sheet", sheetName,
		"rows", res.Rows,
		"valid", res.Valid,
		"quarantined", res.Quarantined,
		"skipped", res.Skipped,
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// isEmptyRow reports whether every cell normalizes to "".
func isEmptyRow(row []sheet.Cell) bool {
	for _, c := range row {
		if sheet.Normalize(c) != "" {
			return false
		}
	}
	return true
}
