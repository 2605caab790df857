// Package scheduler drives evaluation cycles on the configured refresh
// interval.
//
// Cycles run one at a time on a single goroutine; a tick that comes due
// while a cycle is in flight is simply taken after it finishes. The
// configuration is re-read from the Holder before every cycle, so a reload
// that changes the base URL, window, interval or refresh toggle applies on
// the next tick without restarting anything.
//
// With refresh disabled no cycles run until Trigger is called.
package scheduler
