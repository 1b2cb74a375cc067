package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/work")

	if cfg.WorkDir != "/work" {
		t.Errorf("expected WorkDir=/work, got %s", cfg.WorkDir)
	}
	if cfg.SceneThreshold != DefaultSceneThreshold {
		t.Errorf("expected SceneThreshold=%g, got %g", DefaultSceneThreshold, cfg.SceneThreshold)
	}
	if cfg.Backend != BackendMagick {
		t.Errorf("expected Backend=magick, got %s", cfg.Backend)
	}
	if !cfg.Review {
		t.Error("expected Review enabled by default")
	}
	if cfg.WidthFactor != 0.94 || cfg.HeightFactor != 0.82 || cfg.MarginRatioX != 0.04 || cfg.VerticalMarginDivisor != 5 {
		t.Errorf("unexpected layout defaults: %+v", cfg.LayoutParams())
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name         string
		modify       func(*Config)
		wantErr      bool
		wantSentinel error
	}{
		{
			name:    "default config with resolution is valid",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:         "missing resolution",
			modify:       func(c *Config) { c.Resolutions = "  " },
			wantErr:      true,
			wantSentinel: ErrMissingResolution,
		},
		{
			name:         "width factor above one",
			modify:       func(c *Config) { c.WidthFactor = 1.2 },
			wantErr:      true,
			wantSentinel: ErrInvalidFactor,
		},
		{
			name:         "height factor zero",
			modify:       func(c *Config) { c.HeightFactor = 0 },
			wantErr:      true,
			wantSentinel: ErrInvalidFactor,
		},
		{
			name:         "negative margin",
			modify:       func(c *Config) { c.MarginRatioX = -0.1 },
			wantErr:      true,
			wantSentinel: ErrInvalidMargin,
		},
		{
			name:         "zero divisor",
			modify:       func(c *Config) { c.VerticalMarginDivisor = 0 },
			wantErr:      true,
			wantSentinel: ErrInvalidMargin,
		},
		{
			name:         "threshold of one",
			modify:       func(c *Config) { c.SceneThreshold = 1 },
			wantErr:      true,
			wantSentinel: ErrInvalidThreshold,
		},
		{
			name:         "negative workers",
			modify:       func(c *Config) { c.Workers = -2 },
			wantErr:      true,
			wantSentinel: ErrInvalidWorkers,
		},
		{
			name:         "unknown backend",
			modify:       func(c *Config) { c.Backend = "gimp" },
			wantErr:      true,
			wantSentinel: ErrInvalidBackend,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig("/work")
			cfg.Resolutions = "1920x1080"
			tt.modify(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantSentinel != nil && !errors.Is(err, tt.wantSentinel) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantSentinel)
			}
		})
	}
}

func TestValidateDerivesPaths(t *testing.T) {
	cfg := NewConfig("/work")
	cfg.Resolutions = "1920x1080"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cfg.FramesDir != filepath.Join("/work", "frames") {
		t.Errorf("FramesDir = %s", cfg.FramesDir)
	}
	if cfg.PreprocessedDir != filepath.Join("/work", "frames_scaled") {
		t.Errorf("PreprocessedDir = %s", cfg.PreprocessedDir)
	}
	if cfg.OutputDir != "/work" {
		t.Errorf("OutputDir = %s", cfg.OutputDir)
	}

	explicit := NewConfig("/work")
	explicit.Resolutions = "1920x1080"
	explicit.FramesDir = "/elsewhere/raw"
	if err := explicit.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if explicit.FramesDir != "/elsewhere/raw" {
		t.Errorf("explicit FramesDir overwritten: %s", explicit.FramesDir)
	}
}

func TestValidateMakesPathsAbsolute(t *testing.T) {
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	cfg := NewConfig("run")
	cfg.Resolutions = "1920x1080"
	cfg.Input = "movie.mkv"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cfg.WorkDir != filepath.Join(cwd, "run") {
		t.Errorf("WorkDir = %s", cfg.WorkDir)
	}
	if cfg.PreprocessedDir != filepath.Join(cwd, "run", "frames_scaled") {
		t.Errorf("PreprocessedDir = %s", cfg.PreprocessedDir)
	}
	if cfg.Input != filepath.Join(cwd, "movie.mkv") {
		t.Errorf("Input = %s", cfg.Input)
	}
}

func TestParseBackend(t *testing.T) {
	for in, want := range map[string]Backend{
		"magick":      BackendMagick,
		"ImageMagick": BackendMagick,
		" native ":    BackendNative,
		"go":          BackendNative,
	} {
		got, err := ParseBackend(in)
		if err != nil || got != want {
			t.Errorf("ParseBackend(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseBackend("vips"); !errors.Is(err, ErrInvalidBackend) {
		t.Errorf("ParseBackend(vips) error = %v", err)
	}
}

func TestLoadAndApplyFileConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
resolution = "2560x1440,3840x2160"
work_dir = "/films/run1"
skip = true
review = false
workers = 6
backend = "native"

[layout]
width_factor = 0.9
vertical_margin_divisor = 4.0
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig() error = %v", err)
	}

	cfg := NewConfig(".")
	cfg.Workers = 2
	changed := map[string]bool{"workers": true}
	if err := ApplyFileConfig(cfg, fc, changed); err != nil {
		t.Fatalf("ApplyFileConfig() error = %v", err)
	}

	if cfg.Resolutions != "2560x1440,3840x2160" {
		t.Errorf("Resolutions = %q", cfg.Resolutions)
	}
	if cfg.WorkDir != "/films/run1" {
		t.Errorf("WorkDir = %q", cfg.WorkDir)
	}
	if !cfg.SkipPreprocess {
		t.Error("SkipPreprocess should be true")
	}
	if cfg.Review {
		t.Error("Review should be false")
	}
	if cfg.Workers != 2 {
		t.Errorf("Workers = %d, changed flag should win", cfg.Workers)
	}
	if cfg.Backend != BackendNative {
		t.Errorf("Backend = %s", cfg.Backend)
	}
	if cfg.WidthFactor != 0.9 || cfg.VerticalMarginDivisor != 4 {
		t.Errorf("layout = %+v", cfg.LayoutParams())
	}
	if cfg.HeightFactor != 0.82 {
		t.Errorf("HeightFactor should keep default, got %g", cfg.HeightFactor)
	}
}

func TestLoadFileConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("workers = [nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFileConfig(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestApplyEnvConfig(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		changed map[string]bool
		check   func(t *testing.T, c *Config)
		wantErr bool
	}{
		{
			name: "applies values",
			envVars: map[string]string{
				"MOVIE_WALLPAPER_RESOLUTION":      "1920x1080",
				"MOVIE_WALLPAPER_WORKERS":         "3",
				"MOVIE_WALLPAPER_SCENE_THRESHOLD": "0.4",
				"MOVIE_WALLPAPER_SKIP":            "1",
				"MOVIE_WALLPAPER_BACKEND":         "native",
			},
			changed: map[string]bool{},
			check: func(t *testing.T, c *Config) {
				if c.Resolutions != "1920x1080" || c.Workers != 3 || c.SceneThreshold != 0.4 || !c.SkipPreprocess || c.Backend != BackendNative {
					t.Errorf("unexpected config: %+v", c)
				}
			},
		},
		{
			name:    "respects changed flags",
			envVars: map[string]string{"MOVIE_WALLPAPER_RESOLUTION": "1920x1080"},
			changed: map[string]bool{"resolution": true},
			check: func(t *testing.T, c *Config) {
				if c.Resolutions != "" {
					t.Errorf("Resolutions = %q, flag should win", c.Resolutions)
				}
			},
		},
		{
			name:    "invalid int",
			envVars: map[string]string{"MOVIE_WALLPAPER_WORKERS": "many"},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name:    "invalid float",
			envVars: map[string]string{"MOVIE_WALLPAPER_SCENE_THRESHOLD": "high"},
			changed: map[string]bool{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}
			cfg := NewConfig(".")
			err := ApplyEnvConfig(cfg, tt.changed)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ApplyEnvConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}
