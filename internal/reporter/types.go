// Package reporter provides progress reporting interfaces and implementations.
package reporter

import "time"

// HardwareSummary contains host information.
type HardwareSummary struct {
	Hostname string
	NumCPU   int
	OS       string
	Arch     string
}

// RunSummary describes a run before it starts.
type RunSummary struct {
	RunID       string
	Input       string // empty when reusing extracted frames
	WorkDir     string
	OutputDir   string
	Resolutions []string
	Backend     string
	Workers     int
	Skip        bool
}

// StageChange announces a pipeline state transition.
type StageChange struct {
	Stage   string
	Message string
}

// ExtractionSnapshot contains scene extraction progress.
type ExtractionSnapshot struct {
	ScenesFound uint64
	Percent     float32
	Speed       float32
	ETA         time.Duration
}

// ReviewInfo is reported when the run pauses for manual frame culling.
type ReviewInfo struct {
	FramesDir  string
	FrameCount int
}

// ReviewUpdate is reported when a frame is removed during review.
type ReviewUpdate struct {
	Removed   string
	Remaining int
}

// JobSnapshot reports progress through a fan-out list.
type JobSnapshot struct {
	Kind     string // "preprocess" or "compose"
	Item     string
	Complete int
	Failed   int
	Total    int
	Err      error // set when Item just failed
}

// FrameSummary describes the discovered frame population.
type FrameSummary struct {
	Count     int
	Width     int
	Height    int
	SourceDir string // where the dimensions were read
}

// LayoutSummary describes the grid computed for one resolution.
type LayoutSummary struct {
	Resolution string
	Geometry   string
	Columns    int
	Rows       int
	GridWidth  int
	GridHeight int
	Overflows  bool
}

// MontageOutcome is reported once per composed resolution.
type MontageOutcome struct {
	Resolution string
	OutputPath string
	Size       uint64
	Duration   time.Duration
}

// RunOutcome summarizes a finished run.
type RunOutcome struct {
	Outputs            []string
	PreprocessFailures int
	ComposeFailures    int
	TotalTime          time.Duration
}

// ReporterError contains error information.
type ReporterError struct {
	Title      string
	Message    string
	Context    string
	Suggestion string
}
