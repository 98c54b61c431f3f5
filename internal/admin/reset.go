// Package admin provides administrative operations on the record stores.
package admin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/indicators/internal/core"
	"github.com/JonMunkholm/indicators/internal/logging"
)

// ResetTimeout is the maximum duration for a reset.
const ResetTimeout = 30 * time.Second

// Target selects the collections a reset clears.
type Target string

const (
	TargetValid  Target = "valid"
	TargetErrors Target = "errors"
	TargetAll    Target = "all"
)

// ParseTarget validates a target name.
func ParseTarget(s string) (Target, error) {
	switch t := Target(strings.ToLower(strings.TrimSpace(s))); t {
	case TargetValid, TargetErrors, TargetAll:
		return t, nil
	}
	return "", fmt.Errorf("reset target %q (want valid, errors or all): %w", s, core.ErrInvalidArgument)
}

// Clearer empties the record collections. *core.Service implements it.
type Clearer interface {
	ClearIndicators(ctx context.Context) (int64, error)
	ClearQuarantined(ctx context.Context) (int64, error)
}

// ResetResult counts the deleted records per collection.
type ResetResult struct {
	Indicators  int64
	Quarantined int64
}

// Total returns the number of deleted records.
func (r ResetResult) Total() int64 { return r.Indicators + r.Quarantined }

type resetFn func(ctx context.Context) (int64, error)

// Reset clears the collections named by target. This is destructive.
func Reset(ctx context.Context, c Clearer, target Target) (ResetResult, error) {
	ctx, cancel := context.WithTimeout(ctx, ResetTimeout)
	defer cancel()

	var res ResetResult
	var resets []resetFn
	var counts []*int64
	if target == TargetValid || target == TargetAll {
		resets = append(resets, c.ClearIndicators)
		counts = append(counts, &res.Indicators)
	}
	if target == TargetErrors || target == TargetAll {
		resets = append(resets, c.ClearQuarantined)
		counts = append(counts, &res.Quarantined)
	}
	if len(resets) == 0 {
		return res, fmt.Errorf("reset target %q: %w", target, core.ErrInvalidArgument)
	}

	for i, reset := range resets {
		n, err := reset(ctx)
		if err != nil {
			return res, fmt.Errorf("reset %s: %w", target, err)
		}
		*counts[i] = n
	}

	logging.FromContext(ctx).Info("records reset",
		"target", string(target),
		"indicators", res.Indicators,
		"quarantined", res.Quarantined,
	)
	return res, nil
}
