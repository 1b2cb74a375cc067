// Package ffmpeg extracts scene-change frames from a video with ffmpeg.
package ffmpeg

import (
	"context"

	mwerrors "github.com/five82/movie-wallpaper/internal/errors"
	"github.com/five82/movie-wallpaper/internal/procexec"
	"github.com/five82/movie-wallpaper/internal/util"
)

const (
	// DefaultSceneThreshold is the scene score above which a frame is kept.
	DefaultSceneThreshold = 0.33
	// FramePattern names extracted frames 000001.png, 000002.png, ...
	FramePattern = "%06d.png"
)

// ExtractParams describes one extraction run.
type ExtractParams struct {
	Input     string
	OutputDir string
	Threshold float64
	// Duration of the input in seconds, used for progress percentages.
	// Zero disables percentages.
	Duration float64
}

// BuildExtractArgs returns the ffmpeg arguments for scene extraction. The
// output pattern is relative; the command runs inside OutputDir.
func BuildExtractArgs(p ExtractParams) []string {
	threshold := p.Threshold
	if threshold <= 0 {
		threshold = DefaultSceneThreshold
	}
	filter := NewVideoFilterChain().AddSceneSelect(threshold).Build()
	return []string{
		"-i", p.Input,
		"-vf", filter,
		"-vsync", "vfr",
		FramePattern,
	}
}

// Extractor runs ffmpeg frame extraction.
type Extractor struct {
	Binary string
	Runner procexec.Runner
}

// NewExtractor creates an extractor; an empty binary means "ffmpeg".
func NewExtractor(binary string, runner procexec.Runner) *Extractor {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Extractor{Binary: binary, Runner: runner}
}

// Extract writes one PNG per detected scene change into p.OutputDir,
// creating the directory if needed.
func (e *Extractor) Extract(ctx context.Context, p ExtractParams, callback ProgressCallback) (procexec.Output, error) {
	if err := util.EnsureDirectory(p.OutputDir); err != nil {
		return procexec.Output{}, mwerrors.NewIOError("failed to create frames directory "+p.OutputDir, err)
	}

	cmd := procexec.Command{
		Name: e.Binary,
		Args: BuildExtractArgs(p),
		Dir:  p.OutputDir,
	}
	if callback != nil {
		cmd.OnStderrLine = func(line string) {
			if progress := ParseProgressLine(line, p.Duration); progress != nil {
				callback(*progress)
			}
		}
	}
	return e.Runner.Run(ctx, cmd)
}
