package pipeline

import "fmt"

// State is the orchestrator's position in a run.
type State int

const (
	Idle State = iota
	Extracting
	Preprocessing
	Discovering
	Composing
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Extracting:
		return "extracting"
	case Preprocessing:
		return "preprocessing"
	case Discovering:
		return "discovering"
	case Composing:
		return "composing"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further transitions follow s.
func (s State) Terminal() bool {
	return s == Done || s == Failed
}

// stageName names a working state in error messages.
func stageName(s State) string {
	switch s {
	case Extracting:
		return "scene extraction"
	case Preprocessing:
		return "preprocessing"
	case Discovering:
		return "frame discovery"
	case Composing:
		return "composition"
	default:
		return s.String()
	}
}

// StageError is a fatal failure of one pipeline stage.
type StageError struct {
	Stage State
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", stageName(e.Stage), e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// ItemError is the failure of one fan-out job: a frame during
// preprocessing or a resolution during composition.
type ItemError struct {
	Item string
	Err  error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("%s: %v", e.Item, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}
