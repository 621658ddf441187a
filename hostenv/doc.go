// Package hostenv
// Author: momentics <momentics@gmail.com>
//
// Host environment facts for pool budgeting: logical processor count and
// the heap ceiling the process should assume. Platform-specific memory
// discovery lives in sysinfo_linux.go with a conservative stub elsewhere.
package hostenv
