package core

import (
	"context"
	"fmt"
)

// ListIndicators returns the valid store ordered by number.
func (s *Service) ListIndicators(ctx context.Context) ([]Indicator, error) {
	list, err := s.store.ListIndicators(ctx)
	if err != nil {
		return nil, fmt.Errorf("list indicators: %w", err)
	}
	SortIndicators(list)
	return list, nil
}

// ListQuarantined returns the quarantine store in store order.
func (s *Service) ListQuarantined(ctx context.Context) ([]QuarantinedIndicator, error) {
	list, err := s.store.ListQuarantined(ctx)
	if err != nil {
		return nil, fmt.Errorf("list quarantined: %w", err)
	}
	return list, nil
}

// Snapshot returns both collections plus the catalogues a client needs to
// edit records.
func (s *Service) Snapshot(ctx context.Context) (*DataSnapshot, error) {
	indicators, err := s.ListIndicators(ctx)
	if err != nil {
		return nil, err
	}
	quarantined, err := s.ListQuarantined(ctx)
	if err != nil {
		return nil, err
	}
	if indicators == nil {
		indicators = []Indicator{}
	}
	if quarantined == nil {
		quarantined = []QuarantinedIndicator{}
	}
	return &DataSnapshot{
		Indicators:  indicators,
		Quarantined: quarantined,
		Structures:  Structures(),
		Divisions:   s.Divisions(),
	}, nil
}
