// Package config provides configuration types and defaults for movie-wallpaper.
package config

import "errors"

// Sentinel errors for configuration validation.
var (
	// ErrMissingResolution indicates no target resolution was supplied.
	ErrMissingResolution = errors.New("resolution list is required")

	// ErrInvalidFactor indicates a usable-area factor outside (0,1].
	ErrInvalidFactor = errors.New("usable-area factor out of range")

	// ErrInvalidMargin indicates a negative margin ratio or non-positive divisor.
	ErrInvalidMargin = errors.New("margin configuration invalid")

	// ErrInvalidThreshold indicates a scene threshold outside (0,1).
	ErrInvalidThreshold = errors.New("scene threshold out of range")

	// ErrInvalidWorkers indicates a negative worker count.
	ErrInvalidWorkers = errors.New("worker count out of range")

	// ErrInvalidBackend indicates an unknown toolchain backend name.
	ErrInvalidBackend = errors.New("invalid backend")
)
