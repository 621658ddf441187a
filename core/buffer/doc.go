// Package buffer
// Author: momentics <momentics@gmail.com>
//
// Concrete byte buffer implementations for hioload-mem: the contiguous
// ByteBuf with NIO-style cursors and zero-copy views, the segment-backed
// Composite, and cursor helpers shared with the pool layer.
package buffer
