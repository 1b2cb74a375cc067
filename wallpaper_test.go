package wallpaper

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mwerrors "github.com/five82/movie-wallpaper/internal/errors"
	"github.com/five82/movie-wallpaper/internal/procexec"
)

const probeJSON = `{
  "streams": [{"codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080}],
  "format": {"duration": "120.0"}
}`

// scriptedRunner stands in for ffprobe, ffmpeg and magick.
type scriptedRunner struct {
	mu          sync.Mutex
	scenes      int
	failMontage string
	commands    []procexec.Command
}

func (r *scriptedRunner) Run(_ context.Context, c procexec.Command) (procexec.Output, error) {
	r.mu.Lock()
	r.commands = append(r.commands, c)
	r.mu.Unlock()

	last := c.Args[len(c.Args)-1]
	switch {
	case c.Name == "ffprobe":
		return procexec.Output{Stdout: probeJSON}, nil
	case c.Name == "ffmpeg":
		for i := 1; i <= r.scenes; i++ {
			if err := os.WriteFile(filepath.Join(c.Dir, fmt.Sprintf("%06d.png", i)), nil, 0o644); err != nil {
				return procexec.Output{}, err
			}
		}
		if c.OnStderrLine != nil {
			c.OnStderrLine("frame=    6 fps=0.0 q=-0.0 size=N/A time=00:01:00.00 bitrate=N/A speed=4.0x")
		}
		return procexec.Output{}, nil
	case c.Args[0] == "identify":
		return procexec.Output{Stdout: "1920x1080"}, nil
	case c.Args[0] == "montage":
		if r.failMontage != "" && strings.HasSuffix(last, r.failMontage) {
			return procexec.Output{Stderr: "montage: cache resources exhausted"},
				mwerrors.NewCommandFailedError("magick montage", 1, "montage: cache resources exhausted")
		}
		return procexec.Output{}, os.WriteFile(last, []byte("png"), 0o644)
	default:
		return procexec.Output{}, os.WriteFile(filepath.Join(c.Dir, last), nil, 0o644)
	}
}

func (r *scriptedRunner) names(arg0 string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.commands {
		if c.Name == "magick" && c.Args[0] == arg0 {
			n++
		}
	}
	return n
}

func newTestGenerator(t *testing.T, runner *scriptedRunner, resolutions string, opts ...Option) (*Generator, string) {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, "movie.mkv")
	require.NoError(t, os.WriteFile(input, []byte("video"), 0o644))

	base := []Option{WithInput(input), WithWorkDir(dir), WithReview(false), WithoutLogging(), WithWorkers(2)}
	g, err := New(resolutions, append(base, opts...)...)
	require.NoError(t, err)
	g.runner = runner
	return g, dir
}

func TestGenerate(t *testing.T) {
	runner := &scriptedRunner{scenes: 6}
	g, dir := newTestGenerator(t, runner, "1920x1080,3840x2160",
		WithMetricsFile(filepath.Join(t.TempDir(), "wallpaper.prom")))

	res, err := g.Generate(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "montage-1920x1080.png"),
		filepath.Join(dir, "montage-3840x2160.png"),
	}, res.Outputs)
	assert.Equal(t, 6, res.FrameCount)
	assert.Equal(t, 1920, res.FrameWidth)
	assert.Equal(t, 1080, res.FrameHeight)
	require.Len(t, res.Montages, 2)
	for _, m := range res.Montages {
		assert.NoError(t, m.Err)
		assert.NotEmpty(t, m.Geometry)
		assert.Positive(t, m.Columns)
		assert.FileExists(t, m.Path)
	}

	assert.Equal(t, 6, runner.countPreprocess())
	assert.Equal(t, 1, runner.names("identify"))
	assert.Equal(t, 2, runner.names("montage"))

	metrics, err := os.ReadFile(g.config.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), `movie_wallpaper_jobs_total{kind="compose",status="ok"} 2`)
	assert.Contains(t, string(metrics), "movie_wallpaper_last_run_success 1")
}

func (r *scriptedRunner) countPreprocess() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.commands {
		if c.Name == "magick" && c.Args[0] != "identify" && c.Args[0] != "montage" {
			n++
		}
	}
	return n
}

func TestGenerateMontageCommandRunsInPreprocessedDir(t *testing.T) {
	runner := &scriptedRunner{scenes: 3}
	g, dir := newTestGenerator(t, runner, "1920x1080")

	_, err := g.Generate(context.Background(), nil)
	require.NoError(t, err)

	for _, c := range runner.commands {
		if c.Name == "magick" && c.Args[0] == "montage" {
			assert.Equal(t, filepath.Join(dir, "frames_scaled"), c.Dir)
			assert.Equal(t, "*.png", c.Args[1])
		}
		if c.Name == "ffmpeg" {
			assert.Equal(t, filepath.Join(dir, "frames"), c.Dir)
		}
	}
}

func TestGenerateIncomplete(t *testing.T) {
	runner := &scriptedRunner{scenes: 4, failMontage: "montage-3840x2160.png"}
	g, dir := newTestGenerator(t, runner, "1920x1080,3840x2160")

	res, err := g.Generate(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIncomplete))
	assert.Equal(t, []string{filepath.Join(dir, "montage-1920x1080.png")}, res.Outputs)
	require.Len(t, res.ComposeFailures, 1)
	assert.Contains(t, res.ComposeFailures[0].Error(), "3840x2160")
	assert.Error(t, res.Montages[1].Err)
	assert.Empty(t, res.Montages[1].Path)
}

func TestGenerateNoScenes(t *testing.T) {
	g, _ := newTestGenerator(t, &scriptedRunner{scenes: 0}, "1920x1080")

	_, err := g.Generate(context.Background(), nil)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrIncomplete))
	assert.True(t, mwerrors.IsKind(err, mwerrors.KindIO))
}

func TestGenerateWritesLog(t *testing.T) {
	logDir := t.TempDir()
	g, _ := newTestGenerator(t, &scriptedRunner{scenes: 2}, "1920x1080", WithLogging(logDir, false))

	res, err := g.Generate(context.Background(), nil)
	require.NoError(t, err)
	require.NotEmpty(t, res.LogFile)
	assert.Equal(t, logDir, filepath.Dir(res.LogFile))
	assert.NotEmpty(t, res.RunID)

	data, err := os.ReadFile(res.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), res.RunID)
}

func TestNewErrors(t *testing.T) {
	_, err := New("")
	assert.True(t, mwerrors.IsParse(err), "missing resolution: %v", err)

	_, err = New("1920x1080,abc")
	assert.True(t, mwerrors.IsParse(err), "bad token: %v", err)

	_, err = New("1920x1080", WithSceneThreshold(1.5))
	assert.True(t, mwerrors.IsInvalidConfig(err), "bad threshold: %v", err)

	_, err = New("1920x1080", WithBackend("vips"))
	assert.True(t, mwerrors.IsInvalidConfig(err), "bad backend: %v", err)
}

func TestResolutionsPreserveOrder(t *testing.T) {
	g, err := New("3840x2160, 1920x1080,2560x1440", WithoutLogging())
	require.NoError(t, err)
	assert.Equal(t, []string{"3840x2160", "1920x1080", "2560x1440"}, g.Resolutions())
}

func TestParseBackend(t *testing.T) {
	b, err := ParseBackend("native")
	require.NoError(t, err)
	assert.Equal(t, BackendNative, b)

	_, err = ParseBackend("gimp")
	assert.Error(t, err)
}
