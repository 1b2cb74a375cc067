package reporter

// Reporter defines the interface for progress reporting.
type Reporter interface {
	Hardware(summary HardwareSummary)
	RunStarted(summary RunSummary)
	StageChanged(update StageChange)
	ExtractionProgress(progress ExtractionSnapshot)
	ReviewPaused(info ReviewInfo)
	ReviewFrameRemoved(update ReviewUpdate)
	JobsStarted(kind string, total int)
	JobProgress(snapshot JobSnapshot)
	FramesDiscovered(summary FrameSummary)
	LayoutComputed(summary LayoutSummary)
	MontageComplete(outcome MontageOutcome)
	Warning(message string)
	Error(err ReporterError)
	RunComplete(summary RunOutcome)
	Verbose(message string)
}

// NullReporter is a no-op reporter that discards all updates.
type NullReporter struct{}

func (NullReporter) Hardware(HardwareSummary)              {}
func (NullReporter) RunStarted(RunSummary)                 {}
func (NullReporter) StageChanged(StageChange)              {}
func (NullReporter) ExtractionProgress(ExtractionSnapshot) {}
func (NullReporter) ReviewPaused(ReviewInfo)               {}
func (NullReporter) ReviewFrameRemoved(ReviewUpdate)       {}
func (NullReporter) JobsStarted(string, int)               {}
func (NullReporter) JobProgress(JobSnapshot)               {}
func (NullReporter) FramesDiscovered(FrameSummary)         {}
func (NullReporter) LayoutComputed(LayoutSummary)          {}
func (NullReporter) MontageComplete(MontageOutcome)        {}
func (NullReporter) Warning(string)                        {}
func (NullReporter) Error(ReporterError)                   {}
func (NullReporter) RunComplete(RunOutcome)                {}
func (NullReporter) Verbose(string)                        {}
