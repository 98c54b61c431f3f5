package application

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/indicators/internal/config"
	"github.com/JonMunkholm/indicators/internal/core"
)

func memoryConfig(t *testing.T) *config.Config {
	t.Helper()
	file := filepath.Join(t.TempDir(), "setting.txt")
	require.NoError(t, os.WriteFile(file, []byte("app.divisions=HR, IT\n"), 0o600))

	return &config.Config{
		Database: config.DatabaseConfig{Driver: config.DriverMemory},
		Upload:   config.UploadConfig{MaxConcurrent: 2, MaxWaitTime: time.Second},
		Import:   config.ImportConfig{HeaderRows: 1, GoalMaxLength: 254},
		Divisions: config.DivisionsConfig{
			File:            file,
			Key:             "app.divisions",
			RefreshInterval: time.Minute,
		},
	}
}

func TestNew_MemoryStore(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, memoryConfig(t), prometheus.NewRegistry())
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, []string{"HR", "IT"}, a.Service.Divisions(), "divisions loaded before New returns")
	assert.NoError(t, a.Health(ctx))

	snap, err := a.Service.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Indicators)
	assert.Empty(t, snap.Quarantined)
}

func TestNew_BadIdentifierPattern(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Import.IdentifierPattern = "("

	_, err := New(context.Background(), cfg, prometheus.NewRegistry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create service")
}

func TestNew_BadDatabaseURL(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Database.Driver = config.DriverPostgres
	cfg.Database.URL = "postgres://%zz"

	_, err := New(context.Background(), cfg, prometheus.NewRegistry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse database URL")
}

func TestNew_ServiceUsesStore(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, memoryConfig(t), prometheus.NewRegistry())
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.LoadDivisions(ctx))
	assert.Equal(t, 2, len(a.Registry.Names()))

	_, err = a.Service.Promote(ctx, []int64{1})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestNew_MissingDivisionSettings(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Divisions.File = filepath.Join(t.TempDir(), "absent", "setting.txt")

	a, err := New(context.Background(), cfg, prometheus.NewRegistry())
	require.NoError(t, err)
	defer a.Close()
	assert.Empty(t, a.Service.Divisions())
}
