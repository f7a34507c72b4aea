//go:build !windows

package monitor

import "fmt"

// Enumerate is only implemented for Windows, where DDC/CI is reachable
// through the dxva2 physical-monitor API.
func Enumerate() ([]*Display, error) {
	return nil, fmt.Errorf("%w: ddc/ci control is only supported on windows", ErrEnumeration)
}
