// Package resolution parses and formats lists of target display resolutions.
package resolution

import (
	"fmt"
	"strconv"
	"strings"

	mwerrors "github.com/five82/movie-wallpaper/internal/errors"
)

const (
	// ListSeparator separates resolution tokens in a list.
	ListSeparator = ","
	// DimensionSeparator separates width from height inside a token.
	DimensionSeparator = "x"
)

// Resolution is an immutable width/height pair in pixels.
type Resolution struct {
	Width  int
	Height int
}

// String formats the resolution as WIDTHxHEIGHT.
func (r Resolution) String() string {
	return fmt.Sprintf("%d%s%d", r.Width, DimensionSeparator, r.Height)
}

// OutputName returns the montage file name for this resolution.
func (r Resolution) OutputName() string {
	return fmt.Sprintf("montage-%s.png", r)
}

// Ratio returns width divided by height.
func (r Resolution) Ratio() float64 {
	return float64(r.Width) / float64(r.Height)
}

// Valid reports whether both dimensions are positive.
func (r Resolution) Valid() bool {
	return r.Width > 0 && r.Height > 0
}

// Parse splits a comma-separated list of WIDTHxHEIGHT tokens.
// Order is preserved and the first malformed token fails the whole list.
func Parse(list string) ([]Resolution, error) {
	list = strings.TrimSpace(list)
	if list == "" {
		return nil, mwerrors.NewMissingArgumentError("resolution list")
	}

	tokens := strings.Split(list, ListSeparator)
	out := make([]Resolution, 0, len(tokens))
	for _, tok := range tokens {
		r, err := ParseToken(tok)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// ParseToken parses a single WIDTHxHEIGHT token.
func ParseToken(token string) (Resolution, error) {
	trimmed := strings.TrimSpace(token)

	w, h, ok := strings.Cut(trimmed, DimensionSeparator)
	if !ok {
		return Resolution{}, mwerrors.NewParseError(token, "missing 'x' separator")
	}

	width, err := parseDimension(w)
	if err != nil {
		return Resolution{}, mwerrors.NewParseError(token, "width "+err.Error())
	}
	height, err := parseDimension(h)
	if err != nil {
		return Resolution{}, mwerrors.NewParseError(token, "height "+err.Error())
	}

	return Resolution{Width: width, Height: height}, nil
}

func parseDimension(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("is empty")
	}
	// ParseUint rejects signs, which Atoi would accept.
	v, err := strconv.ParseUint(s, 10, 31)
	if err != nil {
		return 0, fmt.Errorf("is not a positive integer")
	}
	if v == 0 {
		return 0, fmt.Errorf("must be greater than zero")
	}
	return int(v), nil
}

// Format joins resolutions back into the list form accepted by Parse.
func Format(rs []Resolution) string {
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = r.String()
	}
	return strings.Join(parts, ListSeparator)
}
