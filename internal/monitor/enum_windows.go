//go:build windows

package monitor

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/dispman/dispman/internal/ddc"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")
	dxva2  = windows.NewLazySystemDLL("dxva2.dll")

	procEnumDisplayMonitors                 = user32.NewProc("EnumDisplayMonitors")
	procGetNumberOfPhysicalMonitorsFromHMON = dxva2.NewProc("GetNumberOfPhysicalMonitorsFromHMONITOR")
	procGetPhysicalMonitorsFromHMONITOR     = dxva2.NewProc("GetPhysicalMonitorsFromHMONITOR")
)

// physicalMonitor mirrors the dxva2 PHYSICAL_MONITOR struct.
type physicalMonitor struct {
	handle      windows.Handle
	description [128]uint16
}

// Enumerate walks the display monitors and expands each into its physical
// monitors. Descriptions are enriched from WMI when available. An HMONITOR
// without physical monitors (e.g. a headless adapter) is skipped, so zero
// DDC/CI-capable displays yields an empty slice and no error.
func Enumerate() ([]*Display, error) {
	var hmonitors []uintptr
	cb := windows.NewCallback(func(hmon, hdc, rect, lparam uintptr) uintptr {
		hmonitors = append(hmonitors, hmon)
		return 1 // continue enumeration
	})

	r1, _, callErr := procEnumDisplayMonitors.Call(0, 0, cb, 0)
	if r1 == 0 {
		return nil, fmt.Errorf("%w: EnumDisplayMonitors: %v", ErrEnumeration, callErr)
	}

	friendly := wmiDescriptions()

	var displays []*Display
	for _, hmon := range hmonitors {
		var count uint32
		r1, _, _ := procGetNumberOfPhysicalMonitorsFromHMON.Call(
			hmon, uintptr(unsafe.Pointer(&count)))
		if r1 == 0 || count == 0 {
			continue
		}

		phys := make([]physicalMonitor, count)
		r1, _, _ = procGetPhysicalMonitorsFromHMONITOR.Call(
			hmon, uintptr(count), uintptr(unsafe.Pointer(&phys[0])))
		if r1 == 0 {
			continue
		}

		for _, pm := range phys {
			idx := len(displays)
			desc := windows.UTF16ToString(pm.description[:])
			if idx < len(friendly) && friendly[idx] != "" {
				desc = friendly[idx]
			}
			displays = append(displays, &Display{
				Index:       idx,
				Description: desc,
				Device:      ddc.NewPhysicalDevice(pm.handle, desc),
			})
		}
	}

	return displays, nil
}
