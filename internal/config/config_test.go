package config

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"caustics/internal/pipeline"
	"caustics/internal/profiles"
	_ "caustics/internal/profiles/classic"
	_ "caustics/internal/profiles/lite"
	_ "caustics/internal/profiles/retro"
	_ "caustics/internal/profiles/soft"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) *Config {
	t.Helper()
	c := NewConfig()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	c.Bind(fs)
	require.NoError(t, fs.Parse(args))
	return c
}

func TestBindDefaults(t *testing.T) {
	c := parse(t)
	assert.Equal(t, "", c.Profile)
	assert.Equal(t, 60, c.FPS)
	assert.Equal(t, 2*time.Second, c.IdleTimeout)

	cfg, err := c.Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultProfile, cfg.Name)
}

func TestBindFlags(t *testing.T) {
	c := parse(t, "-profile", "retro", "-scale", "0.25", "-fps", "0", "-idle-timeout", "500ms",
		"-set", "tiling=0.9", "-set", "crt=false")
	assert.Equal(t, 500*time.Millisecond, c.IdleTimeout)

	cfg, err := c.Load()
	require.NoError(t, err)
	assert.Equal(t, "retro", cfg.Name)
	assert.Equal(t, 0.25, cfg.RenderScale)
	assert.Equal(t, 0.9, cfg.Camera.Tiling)
	assert.False(t, cfg.PostFX.CRT.Enabled)
	assert.True(t, cfg.PostFX.Echo.Enabled)
}

func TestSetRejectsMalformedPair(t *testing.T) {
	c := NewConfig()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	c.Bind(fs)
	assert.Error(t, fs.Parse([]string{"-set", "tiling"}))
}

func TestKVListMap(t *testing.T) {
	l := KVList{"a=1", " b = two ", "a=3", "c=x=y"}
	assert.Equal(t, map[string]string{"a": "3", "b": "two", "c": "x=y"}, l.Map())
	assert.Equal(t, "a=1, b = two ,a=3,c=x=y", l.String())
}

func TestUnknownProfile(t *testing.T) {
	_, err := parse(t, "-profile", "ocean").Load()
	assert.ErrorIs(t, err, profiles.ErrUnknownProfile)
}

func TestParseFormats(t *testing.T) {
	tomlFile, err := Parse([]byte("profile = \"soft\"\n[overrides]\ntiling = 1.25\npasses = 3\nvignette = false\n"), ".toml")
	require.NoError(t, err)
	yamlFile, err := Parse([]byte("profile: soft\noverrides:\n  tiling: 1.25\n  passes: 3\n  vignette: false\n"), ".YML")
	require.NoError(t, err)

	want := map[string]string{"tiling": "1.25", "passes": "3", "vignette": "false"}
	assert.Equal(t, want, tomlFile.OverrideMap())
	assert.Equal(t, want, yamlFile.OverrideMap())
	assert.Equal(t, []string{"passes", "tiling", "vignette"}, tomlFile.Keys())

	_, err = Parse([]byte("{}"), ".json")
	assert.Error(t, err)
	_, err = Parse([]byte("profile = ["), ".toml")
	assert.Error(t, err)
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestFlagsOverrideFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "caustics.toml", "profile = \"retro\"\n[overrides]\ntiling = 1.5\npixelate = 4\n")

	c := parse(t, "-config", path, "-set", "pixelate=3")
	cfg, err := c.Load()
	require.NoError(t, err)
	assert.Equal(t, "retro", cfg.Name)
	assert.Equal(t, 1.5, cfg.Camera.Tiling)
	assert.Equal(t, 3.0, cfg.PostFX.Pixelate)

	c = parse(t, "-config", path, "-profile", "classic")
	cfg, err = c.Load()
	require.NoError(t, err)
	assert.Equal(t, "classic", cfg.Name)
	assert.Equal(t, 1.5, cfg.Camera.Tiling)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileOverridesAreValidated(t *testing.T) {
	f := File{Profile: "classic", Overrides: map[string]any{"low_edge": 0.9, "high_edge": 0.1}}
	_, err := NewConfig().Pipeline(&f)
	assert.ErrorIs(t, err, pipeline.ErrInvalidConfig)
}

func TestWatcherReloads(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "live.yaml", "profile: classic\n")

	w, err := NewWatcher(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan File, 16)
	go w.Run(ctx, func(f File) { got <- f })

	writeFile(t, dir, "other.yaml", "profile: lite\n")
	writeFile(t, dir, "live.yaml", "profile: retro\n")

	deadline := time.After(5 * time.Second)
	for {
		select {
		case f := <-got:
			require.NotEqual(t, "lite", f.Profile, "unrelated files are ignored")
			if f.Profile == "retro" {
				return
			}
		case <-deadline:
			t.Fatal("no reload observed")
		}
	}
}
