// Package api
// Author: momentics <momentics@gmail.com>
//
// Contract layer for hioload-mem: buffer, composite buffer, memory manager,
// monitoring probe and host environment interfaces. Implementations live in
// core/buffer, pool, control and hostenv.
package api
