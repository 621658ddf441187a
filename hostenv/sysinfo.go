// File: hostenv/sysinfo.go
// Author: momentics <momentics@gmail.com>

package hostenv

// fallbackMemoryBytes is assumed when the platform cannot report physical
// memory. Deliberately conservative: pools budget a fraction of this.
const fallbackMemoryBytes = 4 << 30
