//go:build linux

// File: hostenv/sysinfo_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux physical memory discovery via sysinfo(2).

package hostenv

import "golang.org/x/sys/unix"

func physicalMemoryBytes() int64 {
	var si unix.Sysinfo_t
	if err := unix.Sysinfo(&si); err != nil {
		return fallbackMemoryBytes
	}
	return int64(si.Totalram) * int64(si.Unit)
}
