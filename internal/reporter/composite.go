package reporter

// CompositeReporter fans out events to multiple reporters.
type CompositeReporter struct {
	reporters []Reporter
}

// NewCompositeReporter creates a composite reporter.
func NewCompositeReporter(reporters ...Reporter) *CompositeReporter {
	return &CompositeReporter{reporters: reporters}
}

func (c *CompositeReporter) each(fn func(Reporter)) {
	for _, r := range c.reporters {
		fn(r)
	}
}

func (c *CompositeReporter) Hardware(summary HardwareSummary) {
	c.each(func(r Reporter) { r.Hardware(summary) })
}

func (c *CompositeReporter) RunStarted(summary RunSummary) {
	c.each(func(r Reporter) { r.RunStarted(summary) })
}

func (c *CompositeReporter) StageChanged(update StageChange) {
	c.each(func(r Reporter) { r.StageChanged(update) })
}

func (c *CompositeReporter) ExtractionProgress(progress ExtractionSnapshot) {
	c.each(func(r Reporter) { r.ExtractionProgress(progress) })
}

func (c *CompositeReporter) ReviewPaused(info ReviewInfo) {
	c.each(func(r Reporter) { r.ReviewPaused(info) })
}

func (c *CompositeReporter) ReviewFrameRemoved(update ReviewUpdate) {
	c.each(func(r Reporter) { r.ReviewFrameRemoved(update) })
}

func (c *CompositeReporter) JobsStarted(kind string, total int) {
	c.each(func(r Reporter) { r.JobsStarted(kind, total) })
}

func (c *CompositeReporter) JobProgress(snapshot JobSnapshot) {
	c.each(func(r Reporter) { r.JobProgress(snapshot) })
}

func (c *CompositeReporter) FramesDiscovered(summary FrameSummary) {
	c.each(func(r Reporter) { r.FramesDiscovered(summary) })
}

func (c *CompositeReporter) LayoutComputed(summary LayoutSummary) {
	c.each(func(r Reporter) { r.LayoutComputed(summary) })
}

func (c *CompositeReporter) MontageComplete(outcome MontageOutcome) {
	c.each(func(r Reporter) { r.MontageComplete(outcome) })
}

func (c *CompositeReporter) Warning(message string) {
	c.each(func(r Reporter) { r.Warning(message) })
}

func (c *CompositeReporter) Error(err ReporterError) {
	c.each(func(r Reporter) { r.Error(err) })
}

func (c *CompositeReporter) RunComplete(summary RunOutcome) {
	c.each(func(r Reporter) { r.RunComplete(summary) })
}

func (c *CompositeReporter) Verbose(message string) {
	c.each(func(r Reporter) { r.Verbose(message) })
}
