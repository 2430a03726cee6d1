//go:build windows
// +build windows

// File: affinity/affinity_windows.go
// Author: momentics <momentics@gmail.com>
//
// Windows-specific implementation for setting thread CPU affinity.

package affinity

import (
	"golang.org/x/sys/windows"
)

// setAffinityPlatform sets thread affinity to a given CPU for Windows.
func setAffinityPlatform(cpuID int) error {
	h, err := windows.GetCurrentThread()
	if err != nil {
		return err
	}
	mask := uintptr(1) << uint(cpuID)
	if _, err := windows.SetThreadAffinityMask(h, mask); err != nil {
		return err
	}
	return nil
}
