package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/JonMunkholm/indicators/internal/division"
	"github.com/JonMunkholm/indicators/internal/logging"
)

// IndicatorPatch carries a partial update. Nil fields are left unchanged.
type IndicatorPatch struct {
	Number                 *string `json:"number" validate:"omitempty,max=64"`
	Structure              *string `json:"structure" validate:"omitempty,max=64"`
	Level                  *string `json:"level" validate:"omitempty,max=255"`
	Goal                   *string `json:"goal" validate:"omitempty,max=1024"`
	DeadlineStart          *string `json:"deadline" validate:"omitempty,max=64"`
	DeadlineEnd            *string `json:"deadlineEnd" validate:"omitempty,max=64"`
	Divisions              *string `json:"divisions" validate:"omitempty,max=1024"`
	Owner                  *string `json:"owner" validate:"omitempty,max=255"`
	Coordinator            *string `json:"coordinator" validate:"omitempty,max=1024"`
	Responsibles           *string `json:"responsibles" validate:"omitempty,max=2048"`
	AdditionalResponsibles *string `json:"additionalResponsibles" validate:"omitempty,max=2048"`
	Business               *string `json:"business" validate:"omitempty,max=1024"`

	// ErrorMessage only applies to quarantined records.
	ErrorMessage *string `json:"errorMessage" validate:"omitempty,max=2048"`
}

// apply copies the provided fields verbatim.
func (p IndicatorPatch) apply(f *Fields) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&f.Number, p.Number)
	if p.Structure != nil {
		f.Structure = ParseStructure(*p.Structure)
	}
	set(&f.Level, p.Level)
	set(&f.Goal, p.Goal)
	set(&f.DeadlineStart, p.DeadlineStart)
	set(&f.DeadlineEnd, p.DeadlineEnd)
	set(&f.Divisions, p.Divisions)
	set(&f.Owner, p.Owner)
	set(&f.Coordinator, p.Coordinator)
	set(&f.Responsibles, p.Responsibles)
	set(&f.AdditionalResponsibles, p.AdditionalResponsibles)
	set(&f.Business, p.Business)
}

// UpdateIndicator applies patch to a valid record. The result must still
// satisfy the valid-store invariants: a real structure kind, known
// divisions, a normalized number and parseable deadlines.
func (s *Service) UpdateIndicator(ctx context.Context, id int64, patch IndicatorPatch) (Indicator, error) {
	var updated Indicator
	err := s.store.InTx(ctx, func(tx Store) error {
		ind, err := tx.GetIndicator(ctx, id)
		if err != nil {
			return err
		}
		patch.apply(&ind.Fields)
		if err := s.normalizeValid(&ind.Fields, patch); err != nil {
			return err
		}
		if err := tx.UpdateIndicator(ctx, ind); err != nil {
			return err
		}
		updated = ind
		return nil
	})
	if err != nil {
		return Indicator{}, fmt.Errorf("update indicator %d: %w", id, err)
	}
	logging.FromContext(ctx).Info("indicator updated", "id", id)
	return updated, nil
}

func (s *Service) normalizeValid(f *Fields, patch IndicatorPatch) error {
	if patch.Number != nil {
		f.Number = NormalizeNumber(f.Number)
		if f.Number == "" || !validNumber(f.Number) {
			return fmt.Errorf("number %q: %w", f.Number, ErrInvalidArgument)
		}
	}
	if !f.Structure.IsConcrete() {
		return fmt.Errorf("structure %q: %w", f.Structure, ErrInvalidArgument)
	}
	if patch.Divisions != nil {
		list := s.divisions.ParseList(f.Divisions)
		if len(list) == 0 || division.ContainsError(list) {
			return fmt.Errorf("divisions %q: %w", f.Divisions, ErrInvalidArgument)
		}
		f.Divisions = division.Render(list)
	}
	for _, d := range []*string{&f.DeadlineStart, &f.DeadlineEnd} {
		if *d == "" {
			continue
		}
		t, ok := ParseDate(*d)
		if !ok {
			return fmt.Errorf("deadline %q: %w", *d, ErrInvalidArgument)
		}
		*d = FormatDate(t)
	}
	return nil
}

// UpdateQuarantined applies patch to a quarantined record without any
// validation, so partially corrected rows can be saved.
func (s *Service) UpdateQuarantined(ctx context.Context, id int64, patch IndicatorPatch) (QuarantinedIndicator, error) {
	var updated QuarantinedIndicator
	err := s.store.InTx(ctx, func(tx Store) error {
		q, err := tx.GetQuarantined(ctx, id)
		if err != nil {
			return err
		}
		patch.apply(&q.Fields)
		if patch.ErrorMessage != nil {
			q.ErrorMessage = strings.TrimSpace(*patch.ErrorMessage)
		}
		if err := tx.UpdateQuarantined(ctx, q); err != nil {
			return err
		}
		updated = q
		return nil
	})
	if err != nil {
		return QuarantinedIndicator{}, fmt.Errorf("update quarantined %d: %w", id, err)
	}
	logging.FromContext(ctx).Info("quarantined record updated", "id", id)
	return updated, nil
}

// ClearIndicators deletes every valid record.
func (s *Service) ClearIndicators(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteAllIndicators(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear indicators: %w", err)
	}
	logging.WithFields(ctx, callerAttrs(ctx)...).Info("valid store cleared", "deleted", n)
	return n, nil
}

// ClearQuarantined deletes every quarantined record.
func (s *Service) ClearQuarantined(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteAllQuarantined(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear quarantined: %w", err)
	}
	logging.WithFields(ctx, callerAttrs(ctx)...).Info("quarantine store cleared", "deleted", n)
	return n, nil
}
