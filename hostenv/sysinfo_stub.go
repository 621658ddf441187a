//go:build !linux

// File: hostenv/sysinfo_stub.go
// Author: momentics <momentics@gmail.com>
//
// Fallback memory discovery for platforms without sysinfo support.

package hostenv

func physicalMemoryBytes() int64 {
	return fallbackMemoryBytes
}
