// Package ffprobe reads source video properties with ffprobe.
package ffprobe

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	mwerrors "github.com/five82/movie-wallpaper/internal/errors"
	"github.com/five82/movie-wallpaper/internal/procexec"
)

// VideoInfo describes the first video stream of a file.
type VideoInfo struct {
	Duration  float64
	Width     int64
	Height    int64
	CodecName string
	// TotalFrames is zero when the container does not record it.
	TotalFrames uint64
}

// ffprobeOutput represents the JSON output from ffprobe.
type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

type ffprobeStream struct {
	CodecType string `json:"codec_type"`
	CodecName string `json:"codec_name"`
	Width     int64  `json:"width"`
	Height    int64  `json:"height"`
	NbFrames  string `json:"nb_frames"`
	Duration  string `json:"duration"`
}

// Prober runs ffprobe.
type Prober struct {
	Binary string
	Runner procexec.Runner
}

// NewProber creates a prober; an empty binary means "ffprobe".
func NewProber(binary string, runner procexec.Runner) *Prober {
	if binary == "" {
		binary = "ffprobe"
	}
	return &Prober{Binary: binary, Runner: runner}
}

// BuildArgs returns the ffprobe arguments used for inputPath.
func BuildArgs(inputPath string) []string {
	return []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		inputPath,
	}
}

// Probe returns the video properties of inputPath.
func (p *Prober) Probe(ctx context.Context, inputPath string) (*VideoInfo, error) {
	out, err := p.Runner.Run(ctx, procexec.Command{Name: p.Binary, Args: BuildArgs(inputPath)})
	if err != nil {
		return nil, err
	}
	probe, err := parseFFprobeOutput([]byte(out.Stdout))
	if err != nil {
		return nil, mwerrors.NewExternalToolError("failed to parse ffprobe output for "+inputPath, err)
	}
	info, err := extractVideoInfo(probe)
	if err != nil {
		return nil, mwerrors.NewExternalToolError(inputPath, err)
	}
	return info, nil
}

func parseFFprobeOutput(data []byte) (*ffprobeOutput, error) {
	var result ffprobeOutput
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func extractVideoInfo(probe *ffprobeOutput) (*VideoInfo, error) {
	var video *ffprobeStream
	for i := range probe.Streams {
		if probe.Streams[i].CodecType == "video" {
			video = &probe.Streams[i]
			break
		}
	}
	if video == nil {
		return nil, fmt.Errorf("no video stream found")
	}
	if video.Width <= 0 || video.Height <= 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d", video.Width, video.Height)
	}

	info := &VideoInfo{
		Width:     video.Width,
		Height:    video.Height,
		CodecName: video.CodecName,
	}

	// Container duration first, stream duration as a fallback.
	for _, d := range []string{probe.Format.Duration, video.Duration} {
		if d == "" {
			continue
		}
		if secs, err := strconv.ParseFloat(d, 64); err == nil && secs > 0 {
			info.Duration = secs
			break
		}
	}

	if video.NbFrames != "" {
		if frames, err := strconv.ParseUint(video.NbFrames, 10, 64); err == nil {
			info.TotalFrames = frames
		}
	}

	return info, nil
}
