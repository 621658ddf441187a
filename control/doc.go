// Package control
// Author: momentics <momentics@gmail.com>
//
// Monitoring and introspection for hioload-mem: the probe registry the
// pools notify on buffer lifecycle events, a go-metrics probe adapter, a
// bounded probe event history, and named debug state probes.
package control
