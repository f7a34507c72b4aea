//go:build windows

package ddc

import (
	"bytes"
	"errors"
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	dxva2 = windows.NewLazySystemDLL("dxva2.dll")

	procGetVCPFeatureAndVCPFeatureReply         = dxva2.NewProc("GetVCPFeatureAndVCPFeatureReply")
	procSetVCPFeature                           = dxva2.NewProc("SetVCPFeature")
	procGetCapabilitiesStringLength             = dxva2.NewProc("GetCapabilitiesStringLength")
	procCapabilitiesRequestAndCapabilitiesReply = dxva2.NewProc("CapabilitiesRequestAndCapabilitiesReply")
	procDestroyPhysicalMonitor                  = dxva2.NewProc("DestroyPhysicalMonitor")
)

// DDC/CI failures surface through GetLastError with codes from the
// graphics facility.
const (
	errGraphicsDdcciVcpNotSupported = syscall.Errno(0xC0262580)
)

type physicalDevice struct {
	handle windows.Handle
	desc   string
}

// NewPhysicalDevice wraps an open physical-monitor handle as a Device.
// The caller owns enumeration; Close destroys the handle.
func NewPhysicalDevice(handle windows.Handle, desc string) Device {
	return &physicalDevice{handle: handle, desc: desc}
}

func (d *physicalDevice) GetVCPFeature(code uint8) (uint32, uint32, error) {
	var cur, max uint32
	r1, _, callErr := procGetVCPFeatureAndVCPFeatureReply.Call(
		uintptr(d.handle),
		uintptr(code),
		0, // vcp code type, not needed
		uintptr(unsafe.Pointer(&cur)),
		uintptr(unsafe.Pointer(&max)),
	)
	if r1 == 0 {
		return 0, 0, classify(callErr)
	}
	return cur, max, nil
}

func (d *physicalDevice) SetVCPFeature(code uint8, value uint32) error {
	r1, _, callErr := procSetVCPFeature.Call(
		uintptr(d.handle),
		uintptr(code),
		uintptr(value),
	)
	if r1 == 0 {
		return classify(callErr)
	}
	return nil
}

func (d *physicalDevice) CapabilitiesString() (string, error) {
	var length uint32
	r1, _, callErr := procGetCapabilitiesStringLength.Call(
		uintptr(d.handle),
		uintptr(unsafe.Pointer(&length)),
	)
	if r1 == 0 {
		return "", classify(callErr)
	}
	if length == 0 {
		return "", nil
	}

	buf := make([]byte, length)
	r1, _, callErr = procCapabilitiesRequestAndCapabilitiesReply.Call(
		uintptr(d.handle),
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(length),
	)
	if r1 == 0 {
		return "", classify(callErr)
	}
	return string(bytes.TrimRight(buf, "\x00")), nil
}

func (d *physicalDevice) Description() string { return d.desc }

func (d *physicalDevice) Close() error {
	r1, _, callErr := procDestroyPhysicalMonitor.Call(uintptr(d.handle))
	if r1 == 0 {
		return fmt.Errorf("destroy physical monitor: %v", callErr)
	}
	return nil
}

// classify maps a GetLastError value onto the transport error taxonomy.
func classify(callErr error) error {
	var errno syscall.Errno
	if errors.As(callErr, &errno) {
		switch errno {
		case errGraphicsDdcciVcpNotSupported:
			return ErrUnsupported
		case syscall.Errno(windows.WAIT_TIMEOUT), windows.ERROR_TIMEOUT:
			return ErrTimeout
		}
	}
	return fmt.Errorf("%w: %v", ErrCommFailure, callErr)
}
