// Package frames lists the PNG frames the pipeline works on.
package frames

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	mwerrors "github.com/five82/movie-wallpaper/internal/errors"
	"github.com/five82/movie-wallpaper/internal/util"
)

// Logger defines the interface for discovery logging.
type Logger interface {
	Info(format string, args ...any)
	Debug(format string, args ...any)
}

// List returns the PNG files in dir sorted by name, which for extracted
// frames is scene order. Hidden files and subdirectories are ignored.
func List(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, mwerrors.NewIOError("frame directory does not exist: "+dir, err)
	}
	if !info.IsDir() {
		return nil, mwerrors.NewIOError(dir+" is not a directory", nil)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, mwerrors.NewIOError("cannot read frame directory "+dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") || !util.IsPNG(name) {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}

	sort.Strings(files)
	return files, nil
}

// Count returns the number of PNG frames in dir.
func Count(dir string) (int, error) {
	files, err := List(dir)
	if err != nil {
		return 0, err
	}
	return len(files), nil
}

// RequireFrames is List that fails with an IOError when dir holds no frames.
func RequireFrames(dir string) ([]string, error) {
	files, err := List(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, mwerrors.NewIOError("no PNG frames found in "+dir, nil)
	}
	return files, nil
}

// LogListing logs the first 5 frames plus a count summary.
func LogListing(dir string, files []string, logger Logger) {
	if logger == nil {
		return
	}
	if len(files) == 0 {
		logger.Info("No frames found in %s", dir)
		return
	}

	logger.Info("Found %s in %s", util.Plural(len(files), "frame"), dir)

	maxToLog := min(5, len(files))
	for i := 0; i < maxToLog; i++ {
		logger.Debug("  %s", filepath.Base(files[i]))
	}
	if len(files) > 5 {
		logger.Debug("  ... and %d more", len(files)-5)
	}
}
