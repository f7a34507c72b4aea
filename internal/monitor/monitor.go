// Package monitor discovers DDC/CI-capable displays. Enumeration order is
// stable within one invocation; the slice index is the user-facing
// display ID. Handles are never cached across runs.
package monitor

import (
	"errors"
	"fmt"

	"github.com/dispman/dispman/internal/ddc"
)

var (
	// ErrEnumeration signals an unrecoverable platform-API failure.
	// Zero connected monitors is not an error.
	ErrEnumeration = errors.New("display enumeration failed")

	// ErrDisplayNotFound signals a --display index with no live display.
	ErrDisplayNotFound = errors.New("display not found")
)

// Display is one enumerated physical monitor.
type Display struct {
	Index       int        `json:"id"`
	Description string     `json:"description"`
	Device      ddc.Device `json:"-"`
}

// Select resolves a user-supplied display index against the enumerated
// set. Out-of-range indexes fail with ErrDisplayNotFound.
func Select(displays []*Display, index int) (*Display, error) {
	if index < 0 || index >= len(displays) {
		return nil, fmt.Errorf("%w: display %d (%d connected)",
			ErrDisplayNotFound, index, len(displays))
	}
	return displays[index], nil
}

// CloseAll releases every display's monitor handle.
func CloseAll(displays []*Display) {
	for _, d := range displays {
		if d.Device != nil {
			d.Device.Close()
		}
	}
}
