package division

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type failingProvider struct{}

func (failingProvider) Load(context.Context) ([]string, error) {
	return nil, errors.New("settings unavailable")
}

func TestFileProvider_Load(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "setting.txt")
	require.NoError(t, os.WriteFile(path, []byte("# divisions\napp.divisions=HR, Finance  IT\nother=1\n"), 0o644))

	names, err := NewFileProvider(path, "").Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"HR", "Finance", "IT"}, names)
}

func TestFileProvider_Errors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "setting.txt")
	require.NoError(t, os.WriteFile(path, []byte("other=1\n"), 0o644))

	_, err := NewFileProvider(path, "").Load(context.Background())
	assert.ErrorContains(t, err, "app.divisions")

	_, err = NewFileProvider(filepath.Join(dir, "missing.txt"), "").Load(context.Background())
	assert.Error(t, err)
}

func TestParseNames(t *testing.T) {
	assert.Nil(t, ParseNames(""))
	assert.Equal(t, []string{"A", "B", "C"}, ParseNames(" A,B   C, "))
}

func TestRefresher_ReloadKeepsPreviousOnError(t *testing.T) {
	reg := NewRegistry("HR", "IT")

	var gotErr error
	r := NewRefresher(reg, failingProvider{}, time.Hour,
		WithLogger(quietLogger()),
		WithReloadHook(func(_ int, err error) { gotErr = err }),
	)

	err := r.Reload(context.Background())
	require.Error(t, err)
	assert.Equal(t, err, gotErr)
	assert.Equal(t, []string{"HR", "IT"}, reg.Names())
}

func TestRefresher_ReloadReplaces(t *testing.T) {
	reg := NewRegistry("HR")

	var count int
	r := NewRefresher(reg, StaticProvider{"Ops", "Legal"}, time.Hour,
		WithLogger(quietLogger()),
		WithReloadHook(func(n int, _ error) { count = n }),
	)

	require.NoError(t, r.Reload(context.Background()))
	assert.Equal(t, []string{"Ops", "Legal"}, reg.Names())
	assert.Equal(t, 2, count)
}

func TestRefresher_RunWatchesFile(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "setting.txt")
	require.NoError(t, os.WriteFile(path, []byte("app.divisions=HR\n"), 0o644))

	reg := NewRegistry()
	r := NewRefresher(reg, NewFileProvider(path, ""), time.Hour,
		WithWatch(path),
		WithLogger(quietLogger()),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool {
		names := reg.Names()
		return len(names) == 1 && names[0] == "HR"
	}, 2*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("app.divisions=HR,IT\n"), 0o644)
		return len(reg.Names()) == 2
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("refresher did not stop")
	}
}

func TestRefresher_RunWithoutWatchStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	reg := NewRegistry()
	r := NewRefresher(reg, StaticProvider{"HR"}, time.Hour, WithLogger(quietLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool { return len(reg.Names()) == 1 }, time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestRefresher_RunSurvivesMissingSettingsDir(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "absent", "config", "setting.txt")
	reg := NewRegistry("HR")

	var reloads atomic.Int32
	r := NewRefresher(reg, NewFileProvider(path, ""), time.Hour,
		WithWatch(path),
		WithLogger(quietLogger()),
		WithReloadHook(func(int, error) { reloads.Add(1) }),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool { return reloads.Load() == 1 }, time.Second, 10*time.Millisecond)

	select {
	case err := <-done:
		t.Fatalf("Run returned before cancel: %v", err)
	case <-time.After(200 * time.Millisecond):
	}
	assert.Equal(t, []string{"HR"}, reg.Names())

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("refresher did not stop")
	}
}
