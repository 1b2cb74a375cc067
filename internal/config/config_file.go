package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config for TOML files. Pointer booleans distinguish unset from false.
type FileConfig struct {
	WorkDir         string  `toml:"work_dir"`
	FramesDir       string  `toml:"frames_dir"`
	PreprocessedDir string  `toml:"preprocessed_dir"`
	OutputDir       string  `toml:"output_dir"`
	LogDir          string  `toml:"log_dir"`
	Resolutions     string  `toml:"resolution"`
	Skip            *bool   `toml:"skip"`
	Review          *bool   `toml:"review"`
	Workers         int     `toml:"workers"`
	SceneThreshold  float64 `toml:"scene_threshold"`
	Backend         string  `toml:"backend"`
	MagickBinary    string  `toml:"magick"`
	FFmpegBinary    string  `toml:"ffmpeg"`
	FFprobeBinary   string  `toml:"ffprobe"`
	MetricsFile     string  `toml:"metrics_file"`

	Layout FileLayout `toml:"layout"`
}

// FileLayout is the [layout] table.
type FileLayout struct {
	WidthFactor           float64 `toml:"width_factor"`
	HeightFactor          float64 `toml:"height_factor"`
	MarginRatioX          float64 `toml:"margin_ratio_x"`
	VerticalMarginDivisor float64 `toml:"vertical_margin_divisor"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, fmt.Errorf("parse %s: %w", path, err)
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.config/movie-wallpaper/config.toml, or "" if
// the user config directory is unknown.
func DefaultConfigPath() string {
	if d, err := os.UserConfigDir(); err == nil {
		return filepath.Join(d, "movie-wallpaper", "config.toml")
	}
	return ""
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// ApplyFileConfig applies file values to cfg, skipping flags set on the command line.
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("work-dir", fc.WorkDir, &cfg.WorkDir)
	s.setString("frames-dir", fc.FramesDir, &cfg.FramesDir)
	s.setString("preprocessed-dir", fc.PreprocessedDir, &cfg.PreprocessedDir)
	s.setString("output-dir", fc.OutputDir, &cfg.OutputDir)
	s.setString("log-dir", fc.LogDir, &cfg.LogDir)
	s.setString("resolution", fc.Resolutions, &cfg.Resolutions)
	s.setString("magick", fc.MagickBinary, &cfg.MagickBinary)
	s.setString("ffmpeg", fc.FFmpegBinary, &cfg.FFmpegBinary)
	s.setString("ffprobe", fc.FFprobeBinary, &cfg.FFprobeBinary)
	s.setString("metrics-file", fc.MetricsFile, &cfg.MetricsFile)

	s.setBool("skip", fc.Skip, &cfg.SkipPreprocess)
	if fc.Review != nil && !changed["no-review"] {
		cfg.Review = *fc.Review
	}

	s.setInt("workers", fc.Workers, &cfg.Workers)
	s.setFloat("scene-threshold", fc.SceneThreshold, &cfg.SceneThreshold)
	s.setFloat("width-factor", fc.Layout.WidthFactor, &cfg.WidthFactor)
	s.setFloat("height-factor", fc.Layout.HeightFactor, &cfg.HeightFactor)
	s.setFloat("margin-ratio-x", fc.Layout.MarginRatioX, &cfg.MarginRatioX)
	s.setFloat("vertical-margin-divisor", fc.Layout.VerticalMarginDivisor, &cfg.VerticalMarginDivisor)

	if fc.Backend != "" && !changed["backend"] {
		b, err := ParseBackend(fc.Backend)
		if err != nil {
			return err
		}
		cfg.Backend = b
	}

	return nil
}

// ApplyEnvConfig applies MOVIE_WALLPAPER_* variables, skipping flags set on the command line.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("work-dir", os.Getenv(EnvPrefix+"WORK_DIR"), &cfg.WorkDir)
	s.setString("output-dir", os.Getenv(EnvPrefix+"OUTPUT_DIR"), &cfg.OutputDir)
	s.setString("log-dir", os.Getenv(EnvPrefix+"LOG_DIR"), &cfg.LogDir)
	s.setString("resolution", os.Getenv(EnvPrefix+"RESOLUTION"), &cfg.Resolutions)
	s.setString("magick", os.Getenv(EnvPrefix+"MAGICK"), &cfg.MagickBinary)
	s.setString("ffmpeg", os.Getenv(EnvPrefix+"FFMPEG"), &cfg.FFmpegBinary)
	s.setString("ffprobe", os.Getenv(EnvPrefix+"FFPROBE"), &cfg.FFprobeBinary)
	s.setString("metrics-file", os.Getenv(EnvPrefix+"METRICS_FILE"), &cfg.MetricsFile)

	if v := os.Getenv(EnvPrefix + "WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %sWORKERS: %w", EnvPrefix, err)
		}
		s.setInt("workers", n, &cfg.Workers)
	}
	if v := os.Getenv(EnvPrefix + "SCENE_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parse %sSCENE_THRESHOLD: %w", EnvPrefix, err)
		}
		s.setFloat("scene-threshold", f, &cfg.SceneThreshold)
	}
	if v := os.Getenv(EnvPrefix + "SKIP"); v != "" {
		b := parseBool(v)
		s.setBool("skip", &b, &cfg.SkipPreprocess)
	}
	if v := os.Getenv(EnvPrefix + "BACKEND"); v != "" && !changed["backend"] {
		b, err := ParseBackend(v)
		if err != nil {
			return err
		}
		cfg.Backend = b
	}

	return nil
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// configSetter applies values only if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setFloat(flag string, value float64, dst *float64) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}
