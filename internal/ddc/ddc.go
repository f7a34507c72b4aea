// Package ddc reads and writes VCP features over DDC/CI. The platform
// operations are behind the Device interface so the retry and pacing
// policy can be exercised against a scripted double.
package ddc

import "errors"

var (
	// ErrUnsupported means the monitor replied that it does not support
	// the requested feature code. Definitive, never retried.
	ErrUnsupported = errors.New("vcp feature not supported")

	// ErrTimeout means the monitor did not reply within the platform
	// window. Transient, retried.
	ErrTimeout = errors.New("ddc/ci timeout")

	// ErrCommFailure covers every other transport-level failure.
	// Transient, retried.
	ErrCommFailure = errors.New("ddc/ci communication failure")

	// ErrInvalidValue means a write value is outside the feature's legal
	// range. Raised before any hardware access.
	ErrInvalidValue = errors.New("value out of range")
)

// Device is the platform boundary: one open DDC/CI channel to one
// physical monitor. Implementations are not safe for concurrent use;
// DDC/CI is a serial protocol and callers issue one command at a time.
type Device interface {
	// GetVCPFeature returns the current and maximum value of a feature.
	GetVCPFeature(code uint8) (current, max uint32, err error)

	// SetVCPFeature writes a feature value to the monitor.
	SetVCPFeature(code uint8, value uint32) error

	// CapabilitiesString fetches the monitor's raw capabilities report.
	CapabilitiesString() (string, error)

	// Description returns the monitor's human-readable description.
	Description() string

	// Close releases the underlying monitor handle.
	Close() error
}
