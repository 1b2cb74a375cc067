package reporter

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
)

func decodeEvents(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var events []map[string]any
	scanner := bufio.NewScanner(buf)
	for scanner.Scan() {
		var ev map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			t.Fatalf("invalid NDJSON line %q: %v", scanner.Text(), err)
		}
		events = append(events, ev)
	}
	return events
}

func TestJSONReporterEvents(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONReporterWithWriter(&buf)

	r.StageChanged(StageChange{Stage: "composing", Message: "2 resolutions"})
	r.LayoutComputed(LayoutSummary{Resolution: "1920x1080", Geometry: "409x230+16+36", Columns: 4, Rows: 3, Overflows: true})
	r.JobProgress(JobSnapshot{Kind: "compose", Item: "3840x2160", Failed: 1, Total: 2, Err: errors.New("exit status 1")})
	r.RunComplete(RunOutcome{ComposeFailures: 1, TotalTime: 1500 * time.Millisecond})

	events := decodeEvents(t, &buf)
	if len(events) != 4 {
		t.Fatalf("got %d events, want 4", len(events))
	}

	wantTypes := []string{"stage_changed", "layout_computed", "job_progress", "run_complete"}
	for i, want := range wantTypes {
		if events[i]["type"] != want {
			t.Errorf("event %d type = %v, want %s", i, events[i]["type"], want)
		}
		if _, ok := events[i]["timestamp"]; !ok {
			t.Errorf("event %d missing timestamp", i)
		}
	}

	if events[1]["geometry"] != "409x230+16+36" || events[1]["overflows"] != true {
		t.Errorf("layout event = %v", events[1])
	}
	if events[2]["error"] != "exit status 1" {
		t.Errorf("job event = %v", events[2])
	}
	if events[3]["success"] != false || events[3]["duration_seconds"] != 1.5 {
		t.Errorf("run_complete event = %v", events[3])
	}
	if outputs, ok := events[3]["outputs"].([]any); !ok || len(outputs) != 0 {
		t.Errorf("outputs should be an empty array, got %v", events[3]["outputs"])
	}
}

func TestJSONReporterThrottlesExtraction(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONReporterWithWriter(&buf)
	clock := time.Unix(1000, 0)
	r.now = func() time.Time { return clock }

	r.ExtractionProgress(ExtractionSnapshot{Percent: 10.1})
	r.ExtractionProgress(ExtractionSnapshot{Percent: 10.5}) // same bucket, too soon
	r.ExtractionProgress(ExtractionSnapshot{Percent: 11.0}) // new bucket
	clock = clock.Add(6 * time.Second)
	r.ExtractionProgress(ExtractionSnapshot{Percent: 11.2}) // interval elapsed
	r.ExtractionProgress(ExtractionSnapshot{Percent: 99.5}) // near the end

	events := decodeEvents(t, &buf)
	if len(events) != 4 {
		t.Fatalf("got %d extraction events, want 4", len(events))
	}
}

func TestCompositeFansOut(t *testing.T) {
	var a, b bytes.Buffer
	c := NewCompositeReporter(NewJSONReporterWithWriter(&a), NullReporter{}, NewJSONReporterWithWriter(&b))

	c.Warning("grid for 1920x1080 overflows the usable height")
	c.MontageComplete(MontageOutcome{Resolution: "1920x1080", OutputPath: "/w/montage-1920x1080.png"})

	for _, buf := range []*bytes.Buffer{&a, &b} {
		events := decodeEvents(t, buf)
		if len(events) != 2 || events[0]["type"] != "warning" || events[1]["type"] != "montage_complete" {
			t.Errorf("unexpected events %v", events)
		}
	}
}

func TestTerminalReporterOutput(t *testing.T) {
	color.NoColor = true
	var out, errOut bytes.Buffer
	r := NewTerminalReporterWithWriters(&out, &errOut, false)

	r.RunStarted(RunSummary{WorkDir: "/w", OutputDir: "/w", Resolutions: []string{"1920x1080", "2560x1440"}, Backend: "magick", Workers: 4})
	r.StageChanged(StageChange{Stage: "composing", Message: "2 resolutions"})
	r.StageChanged(StageChange{Stage: "composing"})
	r.LayoutComputed(LayoutSummary{Resolution: "1920x1080", Geometry: "409x230+16+36", Columns: 4, Rows: 3, GridWidth: 1764, GridHeight: 906, Overflows: true})
	r.Verbose("hidden")
	r.Error(ReporterError{Title: "Composing failed", Message: "magick exited 1", Suggestion: "check ImageMagick"})
	r.RunComplete(RunOutcome{Outputs: []string{"/w/montage-2560x1440.png"}, ComposeFailures: 1})

	text := out.String()
	for _, want := range []string{
		"none, reusing extracted frames",
		"1920x1080, 2560x1440",
		"COMPOSING",
		"409x230+16+36, 4 columns x 3 rows, grid 1764x906 overflows",
		"/w/montage-2560x1440.png",
		"0 preprocess and 1 compose failures",
		"Created 1 wallpaper with errors",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("terminal output missing %q:\n%s", want, text)
		}
	}
	if strings.Count(text, "COMPOSING") != 1 {
		t.Error("stage header should print once per stage")
	}
	if strings.Contains(text, "hidden") {
		t.Error("verbose message printed without verbose mode")
	}
	if !strings.Contains(errOut.String(), "ERROR Composing failed") || !strings.Contains(errOut.String(), "Suggestion: check ImageMagick") {
		t.Errorf("stderr = %q", errOut.String())
	}
}
