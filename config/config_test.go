package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/forcegraph/logging"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "grid", cfg.Backend)
	assert.Equal(t, 20.0, cfg.Physics.RepelDistance)
	assert.Equal(t, 7.0, cfg.Camera.ScaleMax)
	assert.Equal(t, 60.0, cfg.Frame.MaxFPS)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero repel distance", func(c *Config) { c.Physics.RepelDistance = 0 }, "Physics.RepelDistance"},
		{"grid smaller than repel distance", func(c *Config) { c.Physics.GridSize = 10 }, "Physics.GridSize"},
		{"inertia above one", func(c *Config) { c.Physics.InertiaStrength = 1.5 }, "Physics.InertiaStrength"},
		{"unknown backend", func(c *Config) { c.Backend = "octree" }, "Backend"},
		{"unknown seed", func(c *Config) { c.Seed.Policy = "circle" }, "Seed.Policy"},
		{"scale below one", func(c *Config) { c.Camera.InitialScale = 0.5 }, "Camera.InitialScale"},
		{"initial above max", func(c *Config) { c.Camera.InitialScale = 9 }, "Camera.InitialScale"},
		{"missing addr", func(c *Config) { c.Server.Addr = "" }, "Server.Addr"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "Log.Level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forcegraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
backend: quadtree
physics:
  repel_distance: 25
seed:
  policy: noise
  value: 7
frame:
  idle_delay: 2s
server:
  addr: ":9090"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "quadtree", cfg.Backend)
	assert.Equal(t, 25.0, cfg.Physics.RepelDistance)
	assert.Equal(t, 0.4, cfg.Physics.RepelStrength, "unset fields keep defaults")
	assert.Equal(t, "noise", cfg.Seed.Policy)
	assert.Equal(t, int64(7), cfg.Seed.Value)
	assert.Equal(t, 2*time.Second, cfg.Frame.IdleDelay)
	assert.Equal(t, ":9090", cfg.Server.Addr)
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forcegraph.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
backend = "grid"

[camera]
scale_max = 5.0
initial_scale = 1.5

[log]
level = "debug"
format = "text"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5.0, cfg.Camera.ScaleMax)
	assert.Equal(t, 1.5, cfg.Camera.InitialScale)
	assert.Equal(t, logging.Config{Level: "debug", Format: "text"}, cfg.Log)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	ini := filepath.Join(dir, "forcegraph.ini")
	require.NoError(t, os.WriteFile(ini, []byte("backend=grid"), 0o644))
	_, err = Load(ini)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("backend: octree\n"), 0o644))
	_, err = Load(bad)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{"out.yaml", "out.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			want := Default()
			want.Backend = "quadtree"
			want.Camera.ScaleMax = 9

			require.NoError(t, Save(path, want))
			got, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestRestartRequired(t *testing.T) {
	a, b := Default(), Default()
	b.Camera.DragInertia = 0.5
	b.Frame.MaxFPS = 30
	assert.False(t, a.RestartRequired(b))

	b.Physics.LinkStrength = 0.05
	assert.True(t, a.RestartRequired(b))
}

func TestWatchAppliesValidChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forcegraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: grid\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, logging.Discard(), func(c *Config) { got <- c })
	}()

	// give the watcher time to register before writing
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("backend: octree\n"), 0o644))
	time.Sleep(300 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("camera:\n  scale_max: 4\n"), 0o644))

	select {
	case cfg := <-got:
		assert.Equal(t, 4.0, cfg.Camera.ScaleMax)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload observed")
	}

	cancel()
	require.NoError(t, <-done)
}
