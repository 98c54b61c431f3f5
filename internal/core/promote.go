package core

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/indicators/internal/division"
	"github.com/JonMunkholm/indicators/internal/logging"
)

// Promote moves the quarantined records ids into the valid store, in list
// order, inside one transaction. Any failure (unknown id, unpromotable
// record, store error) leaves both stores as they were.
func (s *Service) Promote(ctx context.Context, ids []int64) ([]Indicator, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("promote: empty id list: %w", ErrInvalidArgument)
	}
	logger := logging.WithFields(ctx, callerAttrs(ctx)...)

	var promoted []Indicator
	err := s.store.InTx(ctx, func(tx Store) error {
		promoted = promoted[:0]
		for _, id := range ids {
			q, err := tx.GetQuarantined(ctx, id)
			if err != nil {
				return fmt.Errorf("promote %d: %w", id, err)
			}
			if err := checkPromotable(q); err != nil {
				return fmt.Errorf("promote %d: %w", id, err)
			}

			ind := Indicator{
				Fields:    q.Fields,
				Status:    StatusValid,
				ImportID:  q.ImportID,
				CreatedAt: s.now().UTC(),
			}
			ind.Number = NormalizeNumber(ind.Number)
			if err := tx.SaveIndicator(ctx, &ind); err != nil {
				return fmt.Errorf("promote %d: %w", id, err)
			}
			if err := tx.DeleteQuarantined(ctx, id); err != nil {
				return fmt.Errorf("promote %d: %w", id, err)
			}
			promoted = append(promoted, ind)
		}
		return nil
	})
	if err != nil {
		s.observer.Promoted(0, err)
		logger.Warn("promotion rolled back", "ids", ids, "error", err)
		return nil, err
	}

	s.observer.Promoted(len(promoted), nil)
	logger.Info("records promoted", "ids", ids, "count", len(promoted))
	return promoted, nil
}

// checkPromotable enforces the valid-store invariants on a quarantined record.
func checkPromotable(q QuarantinedIndicator) error {
	if !q.Structure.IsConcrete() {
		return fmt.Errorf("structure %q: %w", q.Structure, ErrUnpromotable)
	}
	for _, tok := range division.SplitTokens(q.Divisions) {
		if tok == division.ErrorName {
			return fmt.Errorf("divisions %q: %w", q.Divisions, ErrUnpromotable)
		}
	}
	return nil
}
