package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// JSONReporter outputs one JSON object per line (NDJSON).
type JSONReporter struct {
	writer             io.Writer
	mu                 sync.Mutex
	now                func() time.Time
	lastProgressBucket int
	lastProgressTime   time.Time
}

// NewJSONReporter creates a new JSON reporter that writes to stdout.
func NewJSONReporter() *JSONReporter {
	return NewJSONReporterWithWriter(os.Stdout)
}

// NewJSONReporterWithWriter creates a JSON reporter with a custom writer.
func NewJSONReporterWithWriter(w io.Writer) *JSONReporter {
	return &JSONReporter{
		writer:             w,
		now:                time.Now,
		lastProgressBucket: -1,
	}
}

func (r *JSONReporter) timestamp() int64 {
	return r.now().Unix()
}

func (r *JSONReporter) write(v map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintln(r.writer, string(data))
}

func (r *JSONReporter) Hardware(summary HardwareSummary) {
	r.write(map[string]interface{}{
		"type":      "hardware",
		"hostname":  summary.Hostname,
		"num_cpu":   summary.NumCPU,
		"os":        summary.OS,
		"arch":      summary.Arch,
		"timestamp": r.timestamp(),
	})
}

func (r *JSONReporter) RunStarted(summary RunSummary) {
	r.write(map[string]interface{}{
		"type":        "run_started",
		"run_id":      summary.RunID,
		"input_file":  summary.Input,
		"work_dir":    summary.WorkDir,
		"output_dir":  summary.OutputDir,
		"resolutions": summary.Resolutions,
		"backend":     summary.Backend,
		"workers":     summary.Workers,
		"skip":        summary.Skip,
		"timestamp":   r.timestamp(),
	})
}

func (r *JSONReporter) StageChanged(update StageChange) {
	r.write(map[string]interface{}{
		"type":      "stage_changed",
		"stage":     update.Stage,
		"message":   update.Message,
		"timestamp": r.timestamp(),
	})
}

// ExtractionProgress emits at most one event per percent, or every five
// seconds when the percentage is stuck (unknown duration).
func (r *JSONReporter) ExtractionProgress(progress ExtractionSnapshot) {
	const minInterval = 5 * time.Second

	bucket := int(progress.Percent)
	now := r.now()

	r.mu.Lock()
	intervalElapsed := r.lastProgressTime.IsZero() || now.Sub(r.lastProgressTime) >= minInterval
	shouldEmit := bucket > r.lastProgressBucket || intervalElapsed || progress.Percent >= 99.0
	if !shouldEmit {
		r.mu.Unlock()
		return
	}
	if bucket > r.lastProgressBucket {
		r.lastProgressBucket = bucket
	}
	r.lastProgressTime = now
	r.mu.Unlock()

	r.write(map[string]interface{}{
		"type":         "extraction_progress",
		"stage":        "extracting",
		"scenes_found": progress.ScenesFound,
		"percent":      progress.Percent,
		"speed":        progress.Speed,
		"eta_seconds":  int64(progress.ETA.Seconds()),
		"timestamp":    r.timestamp(),
	})
}

func (r *JSONReporter) ReviewPaused(info ReviewInfo) {
	r.write(map[string]interface{}{
		"type":        "review_paused",
		"frames_dir":  info.FramesDir,
		"frame_count": info.FrameCount,
		"timestamp":   r.timestamp(),
	})
}

func (r *JSONReporter) ReviewFrameRemoved(update ReviewUpdate) {
	r.write(map[string]interface{}{
		"type":      "review_frame_removed",
		"frame":     update.Removed,
		"remaining": update.Remaining,
		"timestamp": r.timestamp(),
	})
}

func (r *JSONReporter) JobsStarted(kind string, total int) {
	r.write(map[string]interface{}{
		"type":      "jobs_started",
		"kind":      kind,
		"total":     total,
		"timestamp": r.timestamp(),
	})
}

func (r *JSONReporter) JobProgress(snapshot JobSnapshot) {
	event := map[string]interface{}{
		"type":      "job_progress",
		"kind":      snapshot.Kind,
		"item":      snapshot.Item,
		"complete":  snapshot.Complete,
		"failed":    snapshot.Failed,
		"total":     snapshot.Total,
		"timestamp": r.timestamp(),
	}
	if snapshot.Err != nil {
		event["error"] = snapshot.Err.Error()
	}
	r.write(event)
}

func (r *JSONReporter) FramesDiscovered(summary FrameSummary) {
	r.write(map[string]interface{}{
		"type":         "frames_discovered",
		"count":        summary.Count,
		"frame_width":  summary.Width,
		"frame_height": summary.Height,
		"source_dir":   summary.SourceDir,
		"timestamp":    r.timestamp(),
	})
}

func (r *JSONReporter) LayoutComputed(summary LayoutSummary) {
	r.write(map[string]interface{}{
		"type":        "layout_computed",
		"resolution":  summary.Resolution,
		"geometry":    summary.Geometry,
		"columns":     summary.Columns,
		"rows":        summary.Rows,
		"grid_width":  summary.GridWidth,
		"grid_height": summary.GridHeight,
		"overflows":   summary.Overflows,
		"timestamp":   r.timestamp(),
	})
}

func (r *JSONReporter) MontageComplete(outcome MontageOutcome) {
	r.write(map[string]interface{}{
		"type":        "montage_complete",
		"resolution":  outcome.Resolution,
		"output_path": outcome.OutputPath,
		"size":        outcome.Size,
		"duration_ms": outcome.Duration.Milliseconds(),
		"timestamp":   r.timestamp(),
	})
}

func (r *JSONReporter) Warning(message string) {
	r.write(map[string]interface{}{
		"type":      "warning",
		"message":   message,
		"timestamp": r.timestamp(),
	})
}

func (r *JSONReporter) Error(err ReporterError) {
	r.write(map[string]interface{}{
		"type":       "error",
		"title":      err.Title,
		"message":    err.Message,
		"context":    err.Context,
		"suggestion": err.Suggestion,
		"timestamp":  r.timestamp(),
	})
}

func (r *JSONReporter) RunComplete(summary RunOutcome) {
	outputs := summary.Outputs
	if outputs == nil {
		outputs = []string{}
	}
	r.write(map[string]interface{}{
		"type":                "run_complete",
		"outputs":             outputs,
		"preprocess_failures": summary.PreprocessFailures,
		"compose_failures":    summary.ComposeFailures,
		"success":             summary.PreprocessFailures+summary.ComposeFailures == 0,
		"duration_seconds":    summary.TotalTime.Seconds(),
		"timestamp":           r.timestamp(),
	})
}

func (r *JSONReporter) Verbose(message string) {
	r.write(map[string]interface{}{
		"type":      "verbose",
		"message":   message,
		"timestamp": r.timestamp(),
	})
}
