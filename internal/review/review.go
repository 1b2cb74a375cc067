// Package review pauses a run so the user can delete unwanted frames
// before they are preprocessed.
package review

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/term"

	mwerrors "github.com/five82/movie-wallpaper/internal/errors"
	"github.com/five82/movie-wallpaper/internal/frames"
	"github.com/five82/movie-wallpaper/internal/util"
)

// ErrNotInteractive is returned when stdin is not a terminal.
var ErrNotInteractive = errors.New("stdin is not a terminal")

const ctrlC = 0x03

// KeyWaiter blocks until the user presses a key.
type KeyWaiter func(ctx context.Context) error

// Options configures a review pause.
type Options struct {
	FramesDir string
	// OnRemoved is called for each frame deleted while waiting.
	OnRemoved func(name string, remaining int)
	// OnWatchError receives watcher failures; the pause continues without
	// live updates.
	OnWatchError func(err error)
	// WaitKey defaults to a single raw keypress on stdin.
	WaitKey KeyWaiter
}

// Result summarizes the review.
type Result struct {
	Removed   []string
	Remaining int
}

// IsInteractive reports whether f is a terminal.
func IsInteractive(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// Wait watches FramesDir and blocks until the user presses a key. With the
// default key waiter it returns ErrNotInteractive when stdin is not a
// terminal, and a Cancelled error for Ctrl-C.
func Wait(ctx context.Context, opts Options) (Result, error) {
	waitKey := opts.WaitKey
	if waitKey == nil {
		if !IsInteractive(os.Stdin) {
			return Result{}, ErrNotInteractive
		}
		waitKey = StdinKey
	}

	initial, err := frames.List(opts.FramesDir)
	if err != nil {
		return Result{}, err
	}

	var (
		mu      sync.Mutex
		removed []string
		present = make(map[string]bool, len(initial))
	)
	for _, f := range initial {
		present[filepath.Base(f)] = true
	}

	watchCtx, stop := context.WithCancel(ctx)
	var wg sync.WaitGroup
	if watcher, err := fsnotify.NewWatcher(); err != nil {
		notify(opts.OnWatchError, err)
	} else if err := watcher.Add(opts.FramesDir); err != nil {
		_ = watcher.Close()
		notify(opts.OnWatchError, err)
	} else {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer watcher.Close()
			for {
				select {
				case <-watchCtx.Done():
					return
				case event, ok := <-watcher.Events:
					if !ok {
						return
					}
					if event.Op&(fsnotify.Remove|fsnotify.Rename) == 0 {
						continue
					}
					name := filepath.Base(event.Name)
					mu.Lock()
					if !present[name] {
						mu.Unlock()
						continue
					}
					delete(present, name)
					removed = append(removed, name)
					remaining := len(present)
					mu.Unlock()
					if opts.OnRemoved != nil {
						opts.OnRemoved(name, remaining)
					}
				case err, ok := <-watcher.Errors:
					if !ok {
						return
					}
					notify(opts.OnWatchError, err)
				}
			}
		}()
	}

	keyErr := waitKey(ctx)
	stop()
	wg.Wait()
	if keyErr != nil {
		return Result{}, keyErr
	}

	count, err := frames.Count(opts.FramesDir)
	if err != nil {
		return Result{}, err
	}
	mu.Lock()
	defer mu.Unlock()
	return Result{Removed: removed, Remaining: count}, nil
}

func notify(fn func(error), err error) {
	if fn != nil {
		fn(err)
	}
}

// StdinKey puts the terminal in raw mode and waits for one byte.
func StdinKey(ctx context.Context) error {
	fd := int(os.Stdin.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return mwerrors.NewIOError("cannot switch terminal to raw mode", err)
	}
	defer func() { _ = term.Restore(fd, state) }()

	keys := make(chan byte, 1)
	readErr := make(chan error, 1)
	go func() {
		buf := make([]byte, 1)
		if _, err := os.Stdin.Read(buf); err != nil {
			readErr <- err
			return
		}
		keys <- buf[0]
	}()

	select {
	case <-ctx.Done():
		return mwerrors.NewCancelledError()
	case err := <-readErr:
		return mwerrors.NewIOError("cannot read key from terminal", err)
	case k := <-keys:
		// Raw mode swallows SIGINT, so treat Ctrl-C as cancellation.
		if k == ctrlC {
			return mwerrors.NewCancelledError()
		}
		return nil
	}
}

// Describe returns a short summary like "3 frames removed, 9 kept".
func (r Result) Describe() string {
	return util.Plural(len(r.Removed), "frame") + " removed, " + util.Plural(r.Remaining, "frame") + " kept"
}
