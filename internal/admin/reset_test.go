package admin

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/indicators/internal/core"
)

type fakeClearer struct {
	indicators, quarantined int64
	err                     error
	calls                   []string
}

func (f *fakeClearer) ClearIndicators(context.Context) (int64, error) {
	f.calls = append(f.calls, "valid")
	return f.indicators, f.err
}

func (f *fakeClearer) ClearQuarantined(context.Context) (int64, error) {
	f.calls = append(f.calls, "errors")
	return f.quarantined, nil
}

func TestReset(t *testing.T) {
	tests := []struct {
		target    Target
		want      ResetResult
		wantCalls []string
	}{
		{TargetValid, ResetResult{Indicators: 3}, []string{"valid"}},
		{TargetErrors, ResetResult{Quarantined: 2}, []string{"errors"}},
		{TargetAll, ResetResult{Indicators: 3, Quarantined: 2}, []string{"valid", "errors"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.target), func(t *testing.T) {
			c := &fakeClearer{indicators: 3, quarantined: 2}
			got, err := Reset(context.Background(), c, tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantCalls, c.calls)
		})
	}
}

func TestReset_StopsOnError(t *testing.T) {
	c := &fakeClearer{err: errors.New("connection refused")}
	_, err := Reset(context.Background(), c, TargetAll)
	require.Error(t, err)
	assert.Equal(t, []string{"valid"}, c.calls)
}

func TestParseTarget(t *testing.T) {
	got, err := ParseTarget(" Errors ")
	require.NoError(t, err)
	assert.Equal(t, TargetErrors, got)

	_, err = ParseTarget("everything")
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	_, err = Reset(context.Background(), &fakeClearer{}, Target("bogus"))
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}
