//go:build windows

package monitor

import (
	"github.com/yusufpapurcu/wmi"
	"golang.org/x/sys/windows"
)

type wmiMonitorID struct {
	ManufacturerName []uint16
	UserFriendlyName []uint16
}

// wmiDescriptions returns friendly monitor names from the root\wmi
// WmiMonitorID class, in reported order. Best effort only: on any failure
// callers keep the physical-monitor description, and the WMI order is not
// guaranteed to match enumeration order on every driver.
func wmiDescriptions() []string {
	var ids []wmiMonitorID
	q := "SELECT ManufacturerName, UserFriendlyName FROM WmiMonitorID"
	if err := wmi.QueryNamespace(q, &ids, `root\wmi`); err != nil {
		return nil
	}

	out := make([]string, len(ids))
	for i, id := range ids {
		name := windows.UTF16ToString(id.UserFriendlyName)
		mfr := windows.UTF16ToString(id.ManufacturerName)
		switch {
		case name != "" && mfr != "":
			out[i] = mfr + " " + name
		case name != "":
			out[i] = name
		default:
			out[i] = mfr
		}
	}
	return out
}
