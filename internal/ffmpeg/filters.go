package ffmpeg

import (
	"fmt"
	"strconv"
	"strings"
)

// VideoFilterChain builds video filter chains.
type VideoFilterChain struct {
	filters []string
}

// NewVideoFilterChain creates a new empty filter chain.
func NewVideoFilterChain() *VideoFilterChain {
	return &VideoFilterChain{}
}

// AddSceneSelect keeps only frames whose scene-change score exceeds threshold.
// The comma inside the expression is escaped so the filtergraph parser does
// not split on it.
func (c *VideoFilterChain) AddSceneSelect(threshold float64) *VideoFilterChain {
	return c.AddFilter(SceneSelectFilter(threshold))
}

// AddFilter adds a custom filter to the chain.
func (c *VideoFilterChain) AddFilter(filter string) *VideoFilterChain {
	if filter != "" {
		c.filters = append(c.filters, filter)
	}
	return c
}

// Build builds the filter chain into a single filter string.
// Returns empty string if no filters are present.
func (c *VideoFilterChain) Build() string {
	if len(c.filters) == 0 {
		return ""
	}
	return strings.Join(c.filters, ",")
}

// SceneSelectFilter returns select='gt(scene\,T)' for the given threshold.
func SceneSelectFilter(threshold float64) string {
	return fmt.Sprintf(`select='gt(scene\,%s)'`, strconv.FormatFloat(threshold, 'f', -1, 64))
}
