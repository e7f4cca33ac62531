package app

import (
	"bytes"
	"context"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roman-kulish/mission-control/internal/mission"
	"github.com/roman-kulish/mission-control/internal/storage"
)

const planFile = `
params:
  targetVelocity: [5, 5, 2]
items:
  - type: Init
  - type: Takeoff
    altitude: 10
  - type: Waypoint
    localOffset: [20, 0, 0]
  - type: Waypoint
    localOffset: [20, 20, 0]
  - type: Delay
    duration: 2s
  - type: Land
`

type testEnv struct {
	app  *App
	out  *bytes.Buffer
	dir  string
	plan string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	config := NewConfig()
	config.Storage.DataDirectory = filepath.Join(dir, "data")
	config.Preview.Width, config.Preview.Height, config.Preview.Margin = 320, 240, 20

	plan := filepath.Join(dir, "mission.yaml")
	require.NoError(t, os.WriteFile(plan, []byte(planFile), 0o644))

	var out bytes.Buffer
	a := New(config, slog.New(slog.NewTextHandler(io.Discard, nil)), &out)
	a.ids = mission.NewSequenceIDs(uuid.NameSpaceDNS)

	return &testEnv{app: a, out: &out, dir: dir, plan: plan}
}

func TestRun_Commands(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	assert.Error(t, env.app.Run(ctx, nil))
	assert.ErrorIs(t, env.app.Run(ctx, []string{"fly"}), ErrUnknownCommand)
	assert.Contains(t, env.out.String(), "journal [-topic name]... <session id>")
}

func TestTopics(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.app.Run(context.Background(), []string{"topics"}))
	out := env.out.String()
	for _, want := range []string{"local_position", "global_position", "yaw", "control/in", "control/out", "mission/step", "mission/update", "mission.Plan"} {
		assert.Contains(t, out, want)
	}
}

func TestShow(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.app.Run(context.Background(), []string{"show", env.plan}))
	out := env.out.String()
	assert.Contains(t, out, "Takeoff { altitude: 10.0 }")
	assert.Contains(t, out, "Waypoint(LocalOffset([20.0, 0.0, 0.0]))")
	assert.Contains(t, out, "6 nodes")
	assert.Contains(t, out, "on mission/update")

	assert.Error(t, env.app.Run(context.Background(), []string{"show"}))
	assert.Error(t, env.app.Run(context.Background(), []string{"show", filepath.Join(env.dir, "missing.yaml")}))
}

func TestRecordJournalPreview(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	assert.Error(t, env.app.Run(ctx, []string{"journal", "1"}), "journal before any recording")

	require.NoError(t, env.app.Run(ctx, []string{"record", env.plan}))
	assert.Contains(t, env.out.String(), "session 1: Mission ")

	store := storage.NewSqliteStore(filepath.Join(env.app.config.Storage.DataDirectory, env.app.config.Storage.Database))
	plans, err := store.Plans(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.Len(t, plans, 1)

	env.out.Reset()
	require.NoError(t, env.app.Run(ctx, []string{"journal", "1"}))
	assert.Contains(t, env.out.String(), "mission/update")
	assert.Contains(t, env.out.String(), "1 messages, 0 undecodable")

	env.out.Reset()
	require.NoError(t, env.app.Run(ctx, []string{"journal", "-topic", "yaw", "1"}))
	assert.Contains(t, env.out.String(), "0 messages")

	assert.Error(t, env.app.Run(ctx, []string{"journal", "-topic", "battery", "1"}))
	assert.Error(t, env.app.Run(ctx, []string{"journal", "first"}))

	for _, ref := range []string{env.plan, plans[0].ID.String()} {
		output := filepath.Join(env.dir, "preview.png")
		require.NoError(t, env.app.Run(ctx, []string{"preview", "-o", output, ref}))

		f, err := os.Open(output)
		require.NoError(t, err)
		img, err := png.Decode(f)
		require.NoError(t, f.Close())
		require.NoError(t, err)
		assert.Equal(t, 320, img.Bounds().Dx())
		assert.Equal(t, 240, img.Bounds().Dy())
	}

	assert.Error(t, env.app.Run(ctx, []string{"preview", env.plan}), "output is required")
	assert.ErrorIs(t, env.app.Run(ctx, []string{"preview", "-o", filepath.Join(env.dir, "x.png"), uuid.NewString()}), storage.ErrPlanNotFound)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
settings:
  logLevel: debug
storage:
  dataDirectory: /var/lib/missions
vehicle:
  id: px4-sitl
journal:
  window: 15m
preview:
  width: 800
`), 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, config.Settings.LogLevel)
	assert.Equal(t, "/var/lib/missions", config.Storage.DataDirectory)
	assert.Equal(t, defaultDatabase, config.Storage.Database)
	assert.Equal(t, "px4-sitl", config.Vehicle.ID)
	assert.Equal(t, 15*time.Minute, config.Journal.Window.Duration())
	assert.Equal(t, 800, config.Preview.Width)
	assert.Equal(t, NewConfig().Preview.Height, config.Preview.Height)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	config, err = LoadConfig(empty)
	require.NoError(t, err)
	assert.Equal(t, NewConfig(), config)

	for name, body := range map[string]string{
		"unknown.yaml":  "settings:\n  colour: red\n",
		"duration.yaml": "journal:\n  window: forever\n",
		"vehicle.yaml":  "vehicle:\n  id: \"\"\n",
	} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
		_, err = LoadConfig(p)
		assert.Error(t, err, name)
	}

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
